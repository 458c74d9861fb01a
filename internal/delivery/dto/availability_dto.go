package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type SetAvailabilityRequest struct {
	DoctorID  uuid.UUID `json:"doctor_id" validate:"required"`
	Date      string    `json:"date" validate:"required"`       // Format: YYYY-MM-DD
	StartTime string    `json:"start_time" validate:"required"` // Format: HH:MM
	EndTime   string    `json:"end_time" validate:"required"`   // Format: HH:MM
}

// Response DTOs

type AvailabilityResponse struct {
	ID        int       `json:"id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	Date      string    `json:"date"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	CreatedAt time.Time `json:"created_at"`
}

type AvailabilityListResponse struct {
	Availabilities []AvailabilityResponse `json:"availabilities"`
	Total          int                    `json:"total"`
}
