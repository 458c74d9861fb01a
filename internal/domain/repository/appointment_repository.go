package repository

import (
	"time"

	"dental-clinic-api/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(db *gorm.DB, appointment *entity.Appointment) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	// FindByDoctorAndDay returns every appointment for the doctor whose date
	// falls on the given calendar day, regardless of status.
	FindByDoctorAndDay(db *gorm.DB, doctorID uuid.UUID, day time.Time) ([]entity.Appointment, error)
	FindByDoctorID(db *gorm.DB, doctorID uuid.UUID) ([]entity.Appointment, error)
	FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.Appointment, error)
	FindAll(db *gorm.DB, filter *entity.AppointmentFilter) ([]entity.Appointment, error)
	Update(db *gorm.DB, appointment *entity.Appointment) error
	Delete(db *gorm.DB, id uuid.UUID) (int64, error)
}
