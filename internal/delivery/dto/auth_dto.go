package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type RegisterPatientRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	FullName    string `json:"full_name" validate:"required,min=2"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,min=7,max=20"`
	Address     string `json:"address" validate:"omitempty"`
	Gender      string `json:"gender" validate:"omitempty,oneof=male female other"`
	DateOfBirth string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type UpdateProfileRequest struct {
	FullName         string `json:"full_name" validate:"omitempty,min=2"`
	PhoneNumber      string `json:"phone_number" validate:"omitempty,min=7,max=20"`
	Address          string `json:"address" validate:"omitempty"`
	Gender           string `json:"gender" validate:"omitempty,oneof=male female other"`
	DateOfBirth      string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	EmergencyContact string `json:"emergency_contact" validate:"omitempty"`
	InsuranceInfo    string `json:"insurance_info" validate:"omitempty"`
}

// Response DTOs

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type UserResponse struct {
	ID               uuid.UUID  `json:"id"`
	Email            string     `json:"email"`
	FullName         string     `json:"full_name"`
	Role             string     `json:"role"`
	PhoneNumber      string     `json:"phone_number,omitempty"`
	Address          string     `json:"address,omitempty"`
	Gender           string     `json:"gender,omitempty"`
	DateOfBirth      *time.Time `json:"date_of_birth,omitempty"`
	EmergencyContact string     `json:"emergency_contact,omitempty"`
	InsuranceInfo    string     `json:"insurance_info,omitempty"`
	DoctorID         *uuid.UUID `json:"doctor_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
