package repository

import (
	"dental-clinic-api/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DentalHistoryRepository interface {
	Create(db *gorm.DB, history *entity.DentalHistory) error
	FindByPatientID(db *gorm.DB, patientID uuid.UUID) (*entity.DentalHistory, error)
	Update(db *gorm.DB, history *entity.DentalHistory) error
	AddTreatmentRecord(db *gorm.DB, record *entity.TreatmentRecord) error
	FindTreatmentRecords(db *gorm.DB, historyID int64) ([]entity.TreatmentRecord, error)
}
