package repository

import (
	"errors"

	"dental-clinic-api/internal/domain/entity"
	domainRepo "dental-clinic-api/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type dentalHistoryRepository struct{}

func NewDentalHistoryRepository() domainRepo.DentalHistoryRepository {
	return &dentalHistoryRepository{}
}

func (r *dentalHistoryRepository) Create(db *gorm.DB, history *entity.DentalHistory) error {
	return db.Create(history).Error
}

func (r *dentalHistoryRepository) FindByPatientID(db *gorm.DB, patientID uuid.UUID) (*entity.DentalHistory, error) {
	var history entity.DentalHistory
	err := db.Preload("TreatmentRecords").Where("patient_id = ?", patientID).First(&history).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &history, nil
}

func (r *dentalHistoryRepository) Update(db *gorm.DB, history *entity.DentalHistory) error {
	return db.Omit("Patient", "TreatmentRecords").Save(history).Error
}

func (r *dentalHistoryRepository) AddTreatmentRecord(db *gorm.DB, record *entity.TreatmentRecord) error {
	return db.Create(record).Error
}

func (r *dentalHistoryRepository) FindTreatmentRecords(db *gorm.DB, historyID int64) ([]entity.TreatmentRecord, error) {
	var records []entity.TreatmentRecord
	err := db.Where("history_id = ?", historyID).
		Order("date DESC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
