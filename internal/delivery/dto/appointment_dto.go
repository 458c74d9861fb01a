package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateAppointmentRequest struct {
	DoctorID        uuid.UUID `json:"doctor_id" validate:"required"`
	Title           string    `json:"title" validate:"required,min=2,max=255"`
	AppointmentType string    `json:"appointment_type" validate:"required,min=2,max=100"`
	Date            string    `json:"date" validate:"required"` // Format: YYYY-MM-DD
	Time            string    `json:"time" validate:"required"` // Format: HH:MM
	Description     string    `json:"description" validate:"omitempty"`
}

type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Notes  string `json:"notes" validate:"omitempty"`
}

type AppointmentListFilter struct {
	StartAt     string `json:"start_at" validate:"omitempty,datetime=2006-01-02"`
	EndAt       string `json:"end_at" validate:"omitempty,datetime=2006-01-02"`
	DoctorName  string `json:"doctor_name" validate:"omitempty"`
	PatientName string `json:"patient_name" validate:"omitempty"`
	Status      string `json:"status" validate:"omitempty"`
}

// Response DTOs

type AppointmentResponse struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	AppointmentType string     `json:"appointment_type"`
	Date            string     `json:"date"`
	Time            string     `json:"time"`
	DurationMinutes int        `json:"duration_minutes"`
	Description     string     `json:"description,omitempty"`
	PatientID       uuid.UUID  `json:"patient_id"`
	PatientName     string     `json:"patient_name"`
	DoctorID        uuid.UUID  `json:"doctor_id"`
	DoctorName      string     `json:"doctor_name"`
	Status          string     `json:"status"`
	Notes           string     `json:"notes,omitempty"`
	UpdatedBy       *uuid.UUID `json:"updated_by,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}
