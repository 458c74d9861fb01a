package converter

import (
	"dental-clinic-api/internal/delivery/dto"
	"dental-clinic-api/internal/domain/entity"
)

// DoctorToResponse converts a Doctor entity to DoctorResponse DTO
func DoctorToResponse(doctor *entity.Doctor) *dto.DoctorResponse {
	if doctor == nil {
		return nil
	}

	return &dto.DoctorResponse{
		ID:        doctor.ID,
		UserID:    doctor.UserID,
		Name:      doctor.Name,
		Email:     doctor.Email,
		Specialty: doctor.Specialty,
		CreatedAt: doctor.CreatedAt,
		UpdatedAt: doctor.UpdatedAt,
	}
}

// DoctorsToResponses converts a slice of Doctor entities to response DTOs
func DoctorsToResponses(doctors []entity.Doctor) []dto.DoctorResponse {
	responses := make([]dto.DoctorResponse, len(doctors))
	for i, doctor := range doctors {
		resp := DoctorToResponse(&doctor)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
