package entity

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusRejected  AppointmentStatus = "rejected"
)

// ErrInvalidClockTime is returned when a clock string is not "HH:MM"
var ErrInvalidClockTime = errors.New("invalid clock time, use HH:MM")

// Appointment represents a one-hour slot booked by a patient with a doctor.
// Date carries the calendar day, Time the clinic-local start as "HH:MM";
// the two together define the half-open interval [StartAt, EndAt).
type Appointment struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Title           string            `gorm:"type:varchar(255);not null" json:"title"`
	AppointmentType string            `gorm:"type:varchar(100);not null" json:"appointment_type"`
	Date            time.Time         `gorm:"type:date;not null;index" json:"date"`
	Time            string            `gorm:"type:varchar(5);not null" json:"time"`
	DurationMinutes int               `gorm:"not null;default:60" json:"duration_minutes"`
	Description     string            `gorm:"type:text" json:"description,omitempty"`
	PatientID       uuid.UUID         `gorm:"type:uuid;not null;index" json:"patient_id"`
	PatientName     string            `gorm:"type:varchar(255);not null" json:"patient_name"`
	DoctorID        uuid.UUID         `gorm:"type:uuid;not null;index" json:"doctor_id"`
	DoctorName      string            `gorm:"type:varchar(255);not null" json:"doctor_name"`
	Status          AppointmentStatus `gorm:"type:appointment_status;not null;default:'pending';index" json:"status"`
	Notes           string            `gorm:"type:text" json:"notes,omitempty"`
	UpdatedBy       *uuid.UUID        `gorm:"type:uuid" json:"updated_by,omitempty"`
	CreatedAt       time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Patient User   `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor  Doctor `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// ValidAppointmentStatus reports whether s is a member of the status enum.
// Transitions are unrestricted beyond membership: the status field is a flat
// enum, any value may move to any other.
func ValidAppointmentStatus(s string) bool {
	switch AppointmentStatus(s) {
	case AppointmentStatusPending, AppointmentStatusConfirmed, AppointmentStatusCompleted,
		AppointmentStatusCancelled, AppointmentStatusRejected:
		return true
	}
	return false
}

// IsInactive reports whether the appointment no longer holds its slot.
func (a *Appointment) IsInactive() bool {
	return a.Status == AppointmentStatusCancelled || a.Status == AppointmentStatusRejected
}

// ParseClockTime parses "HH:MM" into hour and minute components. Minutes must
// be 0-59; the hour is returned as parsed so callers can apply their own
// bounds (an hour of 25 is a clinic-hours violation, not a format error).
func ParseClockTime(clock string) (hour, minute int, err error) {
	parts := strings.Split(clock, ":")
	if len(parts) != 2 {
		return 0, 0, ErrInvalidClockTime
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 {
		return 0, 0, ErrInvalidClockTime
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, ErrInvalidClockTime
	}
	return hour, minute, nil
}

// FormatClockTime renders an hour and minute as zero-padded "HH:MM", the
// canonical form persisted and compared throughout (ParseClockTime accepts
// "9:30" but stored values must be "09:30").
func FormatClockTime(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// StartAt computes the appointment's start instant from Date and Time.
func (a *Appointment) StartAt() (time.Time, error) {
	hour, minute, err := ParseClockTime(a.Time)
	if err != nil {
		return time.Time{}, err
	}
	day := a.Date
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location()), nil
}

// EndAt is StartAt plus the appointment duration.
func (a *Appointment) EndAt() (time.Time, error) {
	start, err := a.StartAt()
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(time.Duration(a.DurationMinutes) * time.Minute), nil
}

// ConflictsWith reports whether the half-open interval [start, end) collides
// with this appointment's slot. Identical starts are checked explicitly so a
// zero-width request can never share a start instant with an existing booking.
func (a *Appointment) ConflictsWith(start, end time.Time) (bool, error) {
	existingStart, err := a.StartAt()
	if err != nil {
		return false, err
	}
	existingEnd := existingStart.Add(time.Duration(a.DurationMinutes) * time.Minute)

	if start.Before(existingEnd) && end.After(existingStart) {
		return true, nil
	}
	return start.Equal(existingStart), nil
}
