package repository

import (
	"time"

	"dental-clinic-api/internal/domain/entity"
	domainRepo "dental-clinic-api/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type availabilityRepository struct{}

func NewAvailabilityRepository() domainRepo.AvailabilityRepository {
	return &availabilityRepository{}
}

func (r *availabilityRepository) Create(db *gorm.DB, availability *entity.Availability) error {
	return db.Create(availability).Error
}

func (r *availabilityRepository) FindByDoctorAndDay(db *gorm.DB, doctorID uuid.UUID, day time.Time) ([]entity.Availability, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	var availabilities []entity.Availability
	err := db.Where("doctor_id = ? AND date >= ? AND date < ?", doctorID, dayStart, dayEnd).
		Find(&availabilities).Error
	if err != nil {
		return nil, err
	}
	return availabilities, nil
}

func (r *availabilityRepository) FindByDoctorID(db *gorm.DB, doctorID uuid.UUID) ([]entity.Availability, error) {
	var availabilities []entity.Availability
	err := db.Where("doctor_id = ?", doctorID).
		Order("date ASC, start_time ASC").
		Find(&availabilities).Error
	if err != nil {
		return nil, err
	}
	return availabilities, nil
}

func (r *availabilityRepository) Delete(db *gorm.DB, id int) (int64, error) {
	affected := db.Where("id = ?", id).Delete(&entity.Availability{})
	return affected.RowsAffected, affected.Error
}
