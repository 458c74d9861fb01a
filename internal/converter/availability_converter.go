package converter

import (
	"dental-clinic-api/internal/delivery/dto"
	"dental-clinic-api/internal/domain/entity"
)

// AvailabilityToResponse converts an Availability entity to its response DTO
func AvailabilityToResponse(availability *entity.Availability) *dto.AvailabilityResponse {
	if availability == nil {
		return nil
	}

	return &dto.AvailabilityResponse{
		ID:        availability.ID,
		DoctorID:  availability.DoctorID,
		Date:      availability.Date.Format("2006-01-02"),
		StartTime: availability.StartTime,
		EndTime:   availability.EndTime,
		CreatedAt: availability.CreatedAt,
	}
}

// AvailabilitiesToResponses converts a slice of Availability entities to response DTOs
func AvailabilitiesToResponses(availabilities []entity.Availability) []dto.AvailabilityResponse {
	responses := make([]dto.AvailabilityResponse, len(availabilities))
	for i, availability := range availabilities {
		resp := AvailabilityToResponse(&availability)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
