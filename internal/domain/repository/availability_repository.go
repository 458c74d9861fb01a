package repository

import (
	"time"

	"dental-clinic-api/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AvailabilityRepository interface {
	Create(db *gorm.DB, availability *entity.Availability) error
	FindByDoctorAndDay(db *gorm.DB, doctorID uuid.UUID, day time.Time) ([]entity.Availability, error)
	FindByDoctorID(db *gorm.DB, doctorID uuid.UUID) ([]entity.Availability, error)
	Delete(db *gorm.DB, id int) (int64, error)
}
