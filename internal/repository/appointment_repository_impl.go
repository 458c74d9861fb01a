package repository

import (
	"errors"
	"time"

	"dental-clinic-api/internal/domain/entity"
	domainRepo "dental-clinic-api/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

func (r *appointmentRepository) Create(db *gorm.DB, appointment *entity.Appointment) error {
	return db.Create(appointment).Error
}

func (r *appointmentRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.Where("id = ?", id).First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindByDoctorAndDay(db *gorm.DB, doctorID uuid.UUID, day time.Time) ([]entity.Appointment, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	var appointments []entity.Appointment
	err := db.Where("doctor_id = ? AND date >= ? AND date < ?", doctorID, dayStart, dayEnd).
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindByDoctorID(db *gorm.DB, doctorID uuid.UUID) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.Where("doctor_id = ?", doctorID).
		Order("date ASC, time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.Preload("Doctor").
		Where("patient_id = ?", patientID).
		Order("date ASC, time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// FindAll returns appointments across all doctors, optionally narrowed by
// date range, doctor/patient name, or status.
func (r *appointmentRepository) FindAll(db *gorm.DB, filter *entity.AppointmentFilter) ([]entity.Appointment, error) {
	query := db.Model(&entity.Appointment{})

	if filter != nil {
		if filter.StartAt != "" {
			query = query.Where("appointments.date >= ?", filter.StartAt)
		}
		if filter.EndAt != "" {
			query = query.Where("appointments.date <= ?", filter.EndAt)
		}
		if filter.DoctorName != "" {
			query = query.Where("appointments.doctor_name ILIKE ?", "%"+filter.DoctorName+"%")
		}
		if filter.PatientName != "" {
			query = query.Where("appointments.patient_name ILIKE ?", "%"+filter.PatientName+"%")
		}
		if filter.Status != "" {
			query = query.Where("appointments.status = ?", filter.Status)
		}
	}

	var appointments []entity.Appointment
	err := query.Order("date ASC, time ASC").Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) Update(db *gorm.DB, appointment *entity.Appointment) error {
	return db.Omit("Doctor", "Patient").Save(appointment).Error
}

func (r *appointmentRepository) Delete(db *gorm.DB, id uuid.UUID) (int64, error) {
	affected := db.Where("id = ?", id).Delete(&entity.Appointment{})
	return affected.RowsAffected, affected.Error
}
