package converter

import (
	"dental-clinic-api/internal/delivery/dto"
	"dental-clinic-api/internal/domain/entity"
)

// TreatmentRecordToResponse converts a TreatmentRecord entity to its response DTO
func TreatmentRecordToResponse(record *entity.TreatmentRecord) *dto.TreatmentRecordResponse {
	if record == nil {
		return nil
	}

	images := make([]string, 0, len(record.Images))
	for _, img := range record.Images {
		if s, ok := img.(string); ok {
			images = append(images, s)
		}
	}

	return &dto.TreatmentRecordResponse{
		ID:            record.ID,
		Date:          record.Date,
		TreatmentType: record.TreatmentType,
		Description:   record.Description,
		PerformedBy:   record.PerformedBy,
		DoctorName:    record.DoctorName,
		Notes:         record.Notes,
		Images:        images,
	}
}

// DentalHistoryToResponse converts a DentalHistory entity to its response DTO
func DentalHistoryToResponse(history *entity.DentalHistory) *dto.DentalHistoryResponse {
	if history == nil {
		return nil
	}

	records := make([]dto.TreatmentRecordResponse, len(history.TreatmentRecords))
	for i, record := range history.TreatmentRecords {
		resp := TreatmentRecordToResponse(&record)
		if resp != nil {
			records[i] = *resp
		}
	}

	return &dto.DentalHistoryResponse{
		ID:                   history.ID,
		PatientID:            history.PatientID,
		MedicalConditions:    emptyIfNil(history.MedicalConditions),
		Allergies:            emptyIfNil(history.Allergies),
		CurrentMedications:   emptyIfNil(history.CurrentMedications),
		TeethCondition:       history.TeethCondition,
		XrayHistory:          history.XrayHistory,
		FamilyDentalHistory:  history.FamilyDentalHistory,
		OralHygieneHabits:    history.OralHygieneHabits,
		TreatmentPlan:        history.TreatmentPlan,
		LastCheckupDate:      history.LastCheckupDate,
		NextRecommendedVisit: history.NextRecommendedVisit,
		TreatmentRecords:     records,
		CreatedAt:            history.CreatedAt,
		UpdatedAt:            history.UpdatedAt,
	}
}

func emptyIfNil(list entity.JSONList) []interface{} {
	if list == nil {
		return []interface{}{}
	}
	return list
}
