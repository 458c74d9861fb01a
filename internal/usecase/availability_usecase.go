package usecase

import (
	"context"
	"errors"
	"time"

	"dental-clinic-api/internal/converter"
	"dental-clinic-api/internal/delivery/dto"
	"dental-clinic-api/internal/delivery/http/middleware"
	"dental-clinic-api/internal/domain/entity"
	"dental-clinic-api/internal/domain/repository"
	"dental-clinic-api/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrInvalidTimeRange     = errors.New("start time must be before end time")
	ErrAvailabilityOverlap  = errors.New("availability window overlaps an existing window")
	ErrNotOwnAvailability   = errors.New("doctors can only manage their own availability")
	ErrAvailabilityNotFound = errors.New("availability window not found")
)

type AvailabilityUsecase interface {
	SetAvailability(ctx context.Context, req *dto.SetAvailabilityRequest) (*dto.AvailabilityResponse, error)
	GetAvailability(ctx context.Context, doctorID uuid.UUID) (*dto.AvailabilityListResponse, error)
	DeleteAvailability(ctx context.Context, id int) error
}

type availabilityUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	availabilityRepo repository.AvailabilityRepository
	doctorRepo       repository.DoctorRepository
	auditService     service.AuditService
}

func NewAvailabilityUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	availabilityRepo repository.AvailabilityRepository,
	doctorRepo repository.DoctorRepository,
	auditService service.AuditService,
) AvailabilityUsecase {
	return &availabilityUsecase{
		db:               db,
		log:              log,
		availabilityRepo: availabilityRepo,
		doctorRepo:       doctorRepo,
		auditService:     auditService,
	}
}

// SetAvailability records a working window for one day. A doctor may only
// set windows on their own directory row; admins may set any.
func (u *availabilityUsecase) SetAvailability(ctx context.Context, req *dto.SetAvailabilityRequest) (*dto.AvailabilityResponse, error) {
	actorID, _ := middleware.GetUserIDFromContext(ctx)
	roleID, _ := middleware.GetRoleIDFromContext(ctx)

	doctor, err := u.doctorRepo.FindByID(u.db.WithContext(ctx), req.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", req.DoctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}
	if roleID == entity.RoleIDDoctor && doctor.UserID != actorID {
		return nil, ErrNotOwnAvailability
	}

	day, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, ErrInvalidDateFormat
	}

	startHour, startMinute, err := entity.ParseClockTime(req.StartTime)
	if err != nil {
		return nil, ErrInvalidTimeFormat
	}
	endHour, endMinute, err := entity.ParseClockTime(req.EndTime)
	if err != nil {
		return nil, ErrInvalidTimeFormat
	}
	if startHour*60+startMinute >= endHour*60+endMinute {
		return nil, ErrInvalidTimeRange
	}

	// Persisted windows are zero-padded, so comparisons below stay valid
	// even when the request says "9:30" instead of "09:30".
	startTime := entity.FormatClockTime(startHour, startMinute)
	endTime := entity.FormatClockTime(endHour, endMinute)

	existing, err := u.availabilityRepo.FindByDoctorAndDay(u.db.WithContext(ctx), req.DoctorID, day)
	if err != nil {
		u.log.Warnf("Failed to load windows for doctor %s on %s: %+v", req.DoctorID, req.Date, err)
		return nil, err
	}
	for i := range existing {
		if existing[i].OverlapsWindow(startTime, endTime) {
			return nil, ErrAvailabilityOverlap
		}
	}

	availability := &entity.Availability{
		DoctorID:  req.DoctorID,
		Date:      day,
		StartTime: startTime,
		EndTime:   endTime,
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.availabilityRepo.Create(tx, availability); err != nil {
		u.log.Warnf("Failed to create availability: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(tx, &actorID, entity.AuditActionAvailabilitySet, "availability", req.DoctorID.String(), availability); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.Infof("Availability set: doctor=%s, date=%s, %s-%s", req.DoctorID, req.Date, startTime, endTime)
	return converter.AvailabilityToResponse(availability), nil
}

// GetAvailability lists a doctor's windows, soonest first.
func (u *availabilityUsecase) GetAvailability(ctx context.Context, doctorID uuid.UUID) (*dto.AvailabilityListResponse, error) {
	doctor, err := u.doctorRepo.FindByID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	availabilities, err := u.availabilityRepo.FindByDoctorID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to list availability for doctor %s: %+v", doctorID, err)
		return nil, err
	}

	return &dto.AvailabilityListResponse{
		Availabilities: converter.AvailabilitiesToResponses(availabilities),
		Total:          len(availabilities),
	}, nil
}

func (u *availabilityUsecase) DeleteAvailability(ctx context.Context, id int) error {
	affected, err := u.availabilityRepo.Delete(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to delete availability %d: %+v", id, err)
		return err
	}
	if affected == 0 {
		return ErrAvailabilityNotFound
	}
	return nil
}
