package entity

import (
	"time"

	"github.com/google/uuid"
)

// DentalHistory is the per-patient dental record. One row per patient,
// created lazily on first access. List-shaped attributes live in JSONB
// columns; treatment records are a child table.
type DentalHistory struct {
	ID                   int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	PatientID            uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"patient_id"`
	MedicalConditions    JSONList   `gorm:"type:jsonb" json:"medical_conditions,omitempty"`
	Allergies            JSONList   `gorm:"type:jsonb" json:"allergies,omitempty"`
	CurrentMedications   JSONList   `gorm:"type:jsonb" json:"current_medications,omitempty"`
	TeethCondition       JSON       `gorm:"type:jsonb" json:"teeth_condition,omitempty"`
	XrayHistory          JSONList   `gorm:"type:jsonb" json:"xray_history,omitempty"`
	FamilyDentalHistory  string     `gorm:"type:text" json:"family_dental_history,omitempty"`
	OralHygieneHabits    string     `gorm:"type:text" json:"oral_hygiene_habits,omitempty"`
	TreatmentPlan        string     `gorm:"type:text" json:"treatment_plan,omitempty"`
	LastCheckupDate      *time.Time `gorm:"type:date" json:"last_checkup_date,omitempty"`
	NextRecommendedVisit *time.Time `gorm:"type:date" json:"next_recommended_visit,omitempty"`
	CreatedAt            time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Patient          User              `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	TreatmentRecords []TreatmentRecord `gorm:"foreignKey:HistoryID" json:"treatment_records,omitempty"`
}

func (DentalHistory) TableName() string {
	return "dental_histories"
}

// TreatmentRecord is a single performed treatment noted in a patient's
// dental history.
type TreatmentRecord struct {
	ID            int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	HistoryID     int64      `gorm:"not null;index" json:"history_id"`
	Date          time.Time  `gorm:"not null" json:"date"`
	TreatmentType string     `gorm:"type:varchar(100);not null" json:"treatment_type"`
	Description   string     `gorm:"type:text;not null" json:"description"`
	PerformedBy   *uuid.UUID `gorm:"type:uuid" json:"performed_by,omitempty"`
	DoctorName    string     `gorm:"type:varchar(255)" json:"doctor_name,omitempty"`
	Notes         string     `gorm:"type:text" json:"notes,omitempty"`
	Images        JSONList   `gorm:"type:jsonb" json:"images,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

func (TreatmentRecord) TableName() string {
	return "treatment_records"
}
