package converter

import (
	"dental-clinic-api/internal/delivery/dto"
	"dental-clinic-api/internal/domain/entity"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	return &dto.AppointmentResponse{
		ID:              appointment.ID,
		Title:           appointment.Title,
		AppointmentType: appointment.AppointmentType,
		Date:            appointment.Date.Format("2006-01-02"),
		Time:            appointment.Time,
		DurationMinutes: appointment.DurationMinutes,
		Description:     appointment.Description,
		PatientID:       appointment.PatientID,
		PatientName:     appointment.PatientName,
		DoctorID:        appointment.DoctorID,
		DoctorName:      appointment.DoctorName,
		Status:          string(appointment.Status),
		Notes:           appointment.Notes,
		UpdatedBy:       appointment.UpdatedBy,
		CreatedAt:       appointment.CreatedAt,
		UpdatedAt:       appointment.UpdatedAt,
	}
}

// AppointmentsToResponses converts a slice of Appointment entities to response DTOs
func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i, appointment := range appointments {
		resp := AppointmentToResponse(&appointment)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
