package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type AddTreatmentRecordRequest struct {
	PatientID     uuid.UUID `json:"patient_id" validate:"required"`
	TreatmentType string    `json:"treatment_type" validate:"required,min=2,max=100"`
	Description   string    `json:"description" validate:"required"`
	Notes         string    `json:"notes" validate:"omitempty"`
	Images        []string  `json:"images" validate:"omitempty"`
}

type UpdateMedicalInfoRequest struct {
	MedicalConditions   []string                 `json:"medical_conditions" validate:"omitempty"`
	Allergies           []string                 `json:"allergies" validate:"omitempty"`
	CurrentMedications  []map[string]interface{} `json:"current_medications" validate:"omitempty"`
	FamilyDentalHistory string                   `json:"family_dental_history" validate:"omitempty"`
	OralHygieneHabits   string                   `json:"oral_hygiene_habits" validate:"omitempty"`
}

type AddXrayRecordRequest struct {
	Type     string `json:"type" validate:"required,min=2,max=100"`
	ImageURL string `json:"image_url" validate:"omitempty,url"`
	Findings string `json:"findings" validate:"omitempty"`
}

type UpdateTreatmentPlanRequest struct {
	TreatmentPlan        string `json:"treatment_plan" validate:"omitempty"`
	NextRecommendedVisit string `json:"next_recommended_visit" validate:"omitempty,datetime=2006-01-02"`
}

type UpdateTeethConditionRequest struct {
	MissingTeeth []int `json:"missing_teeth" validate:"omitempty,dive,min=1,max=32"`
	FilledTeeth  []int `json:"filled_teeth" validate:"omitempty,dive,min=1,max=32"`
	Implants     []int `json:"implants" validate:"omitempty,dive,min=1,max=32"`
	Crowns       []int `json:"crowns" validate:"omitempty,dive,min=1,max=32"`
}

// Response DTOs

type TreatmentRecordResponse struct {
	ID            int64      `json:"id"`
	Date          time.Time  `json:"date"`
	TreatmentType string     `json:"treatment_type"`
	Description   string     `json:"description"`
	PerformedBy   *uuid.UUID `json:"performed_by,omitempty"`
	DoctorName    string     `json:"doctor_name,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	Images        []string   `json:"images,omitempty"`
}

type XrayRecordResponse struct {
	Date     time.Time `json:"date"`
	Type     string    `json:"type"`
	ImageURL string    `json:"image_url,omitempty"`
	Findings string    `json:"findings,omitempty"`
}

type DentalHistoryResponse struct {
	ID                   int64                     `json:"id"`
	PatientID            uuid.UUID                 `json:"patient_id"`
	MedicalConditions    []interface{}             `json:"medical_conditions"`
	Allergies            []interface{}             `json:"allergies"`
	CurrentMedications   []interface{}             `json:"current_medications"`
	TeethCondition       map[string]interface{}    `json:"teeth_condition,omitempty"`
	XrayHistory          []interface{}             `json:"xray_history,omitempty"`
	FamilyDentalHistory  string                    `json:"family_dental_history,omitempty"`
	OralHygieneHabits    string                    `json:"oral_hygiene_habits,omitempty"`
	TreatmentPlan        string                    `json:"treatment_plan,omitempty"`
	LastCheckupDate      *time.Time                `json:"last_checkup_date,omitempty"`
	NextRecommendedVisit *time.Time                `json:"next_recommended_visit,omitempty"`
	TreatmentRecords     []TreatmentRecordResponse `json:"treatment_records"`
	CreatedAt            time.Time                 `json:"created_at"`
	UpdatedAt            time.Time                 `json:"updated_at"`
}
