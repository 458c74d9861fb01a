package usecase

import (
	"context"
	"errors"
	"time"

	"dental-clinic-api/config"
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
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrPatientNotFound     = errors.New("patient not found")
	ErrInvalidTimeFormat   = errors.New("invalid time format, use HH:MM")
	ErrOutsideClinicHours  = errors.New("appointments can only be booked within clinic hours")
	ErrSlotTaken           = errors.New("appointments must be at least one hour long and cannot overlap with existing bookings")
	ErrInvalidStatus       = errors.New("invalid status value")
	ErrNotAppointmentOwner = errors.New("only the patient, the assigned doctor, or an admin can delete this appointment")
)

type AppointmentUsecase interface {
	RequestBooking(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	UpdateStatus(ctx context.Context, appointmentID uuid.UUID, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error)
	GetMyAppointments(ctx context.Context) (*dto.AppointmentListResponse, error)
	GetDoctorAppointments(ctx context.Context, doctorID uuid.UUID) (*dto.AppointmentListResponse, error)
	GetAllAppointments(ctx context.Context, filter *dto.AppointmentListFilter) (*dto.AppointmentListResponse, error)
	DeleteAppointment(ctx context.Context, appointmentID uuid.UUID) error
}

type appointmentUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	clinic          config.ClinicConfig
	appointmentRepo repository.AppointmentRepository
	doctorRepo      repository.DoctorRepository
	userRepo        repository.UserRepository
	slotLocks       *service.SlotLockService
	auditService    service.AuditService
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	clinic config.ClinicConfig,
	appointmentRepo repository.AppointmentRepository,
	doctorRepo repository.DoctorRepository,
	userRepo repository.UserRepository,
	slotLocks *service.SlotLockService,
	auditService service.AuditService,
) AppointmentUsecase {
	return &appointmentUsecase{
		db:              db,
		log:             log,
		clinic:          clinic,
		appointmentRepo: appointmentRepo,
		doctorRepo:      doctorRepo,
		userRepo:        userRepo,
		slotLocks:       slotLocks,
		auditService:    auditService,
	}
}

// RequestBooking admits or rejects a booking request.
//
// Flow:
// 1. Resolve patient and doctor identities
// 2. Parse date and clock time, validate the clinic operating window
// 3. Lock the (doctor, day) slot key
// 4. Scan the doctor's same-day appointments for overlap
// 5. Persist a pending appointment
func (u *appointmentUsecase) RequestBooking(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	patientID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	patient, err := u.userRepo.FindByID(u.db.WithContext(ctx), patientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", patientID, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	doctor, err := u.doctorRepo.FindByID(u.db.WithContext(ctx), req.DoctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", req.DoctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	day, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, ErrInvalidDateFormat
	}

	hour, minute, err := entity.ParseClockTime(req.Time)
	if err != nil {
		return nil, ErrInvalidTimeFormat
	}

	// The start must fall inside [open, close]; a start exactly at close is
	// caught by the end-of-window check below.
	if hour < u.clinic.OpenHour || hour > u.clinic.CloseHour || (hour == u.clinic.CloseHour && minute > 0) {
		return nil, ErrOutsideClinicHours
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
	end := start.Add(time.Duration(u.clinic.SlotMinutes) * time.Minute)

	// The appointment must fully complete by closing time on the same day.
	closeAt := time.Date(day.Year(), day.Month(), day.Day(), u.clinic.CloseHour, 0, 0, 0, day.Location())
	if end.After(closeAt) {
		return nil, ErrOutsideClinicHours
	}

	// Serialize the check-then-act sequence per doctor and day so two
	// concurrent requests cannot both pass the scan.
	unlock := u.slotLocks.Lock(req.DoctorID, day)
	defer unlock()

	existing, err := u.appointmentRepo.FindByDoctorAndDay(u.db.WithContext(ctx), req.DoctorID, day)
	if err != nil {
		u.log.Warnf("Failed to load appointments for doctor %s on %s: %+v", req.DoctorID, req.Date, err)
		return nil, err
	}

	for i := range existing {
		appt := &existing[i]
		if !u.clinic.ConflictScanAllStatuses && appt.IsInactive() {
			continue
		}
		conflict, err := appt.ConflictsWith(start, end)
		if err != nil {
			u.log.Warnf("Skipping appointment %s with unparseable time %q: %+v", appt.ID, appt.Time, err)
			continue
		}
		if conflict {
			return nil, ErrSlotTaken
		}
	}

	appointment := &entity.Appointment{
		Title:           req.Title,
		AppointmentType: req.AppointmentType,
		Date:            day,
		Time:            entity.FormatClockTime(hour, minute),
		DurationMinutes: u.clinic.SlotMinutes,
		Description:     req.Description,
		PatientID:       patient.ID,
		PatientName:     patient.FullName,
		DoctorID:        doctor.ID,
		DoctorName:      doctor.Name,
		Status:          entity.AppointmentStatusPending,
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.appointmentRepo.Create(tx, appointment); err != nil {
		// The unique index on (doctor_id, date, time) backstops deployments
		// with more than one instance, where the in-process lock cannot help.
		if isDuplicateKeyError(err, "appointments_doctor_slot") {
			return nil, ErrSlotTaken
		}
		u.log.Warnf("Failed to create appointment: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(tx, &patientID, entity.AuditActionAppointmentCreate, "appointment", appointment.ID.String(), appointment); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.Infof("Appointment created: id=%s, doctor=%s, date=%s, time=%s", appointment.ID, doctor.ID, req.Date, req.Time)
	return converter.AppointmentToResponse(appointment), nil
}

// UpdateStatus moves an appointment to a new status. The status field is a
// flat enum: membership is validated, but no transition graph is enforced.
func (u *appointmentUsecase) UpdateStatus(ctx context.Context, appointmentID uuid.UUID, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error) {
	actorID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	if !entity.ValidAppointmentStatus(req.Status) {
		return nil, ErrInvalidStatus
	}

	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	oldStatus := appointment.Status
	appointment.Status = entity.AppointmentStatus(req.Status)
	if req.Notes != "" {
		appointment.Notes = req.Notes
	}
	appointment.UpdatedBy = &actorID

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.appointmentRepo.Update(tx, appointment); err != nil {
		u.log.Warnf("Failed to update appointment %s: %+v", appointmentID, err)
		return nil, err
	}

	if err := u.auditService.LogUpdate(tx, &actorID, entity.AuditActionAppointmentStatus, "appointment", appointment.ID.String(),
		map[string]interface{}{"status": string(oldStatus)},
		map[string]interface{}{"status": req.Status, "notes": appointment.Notes}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.Infof("Appointment status updated: id=%s, %s -> %s", appointmentID, oldStatus, req.Status)
	return converter.AppointmentToResponse(appointment), nil
}

// GetMyAppointments returns all appointments for the logged-in patient,
// ordered by date then time.
func (u *appointmentUsecase) GetMyAppointments(ctx context.Context) (*dto.AppointmentListResponse, error) {
	patientID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	appointments, err := u.appointmentRepo.FindByPatientID(u.db.WithContext(ctx), patientID)
	if err != nil {
		u.log.Warnf("Failed to find appointments for patient %s: %+v", patientID, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

// GetDoctorAppointments returns all appointments for a doctor. An unknown
// doctor id yields an empty list, not an error.
func (u *appointmentUsecase) GetDoctorAppointments(ctx context.Context, doctorID uuid.UUID) (*dto.AppointmentListResponse, error) {
	appointments, err := u.appointmentRepo.FindByDoctorID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find appointments for doctor %s: %+v", doctorID, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

func (u *appointmentUsecase) GetAllAppointments(ctx context.Context, filter *dto.AppointmentListFilter) (*dto.AppointmentListResponse, error) {
	var domainFilter *entity.AppointmentFilter
	if filter != nil {
		domainFilter = &entity.AppointmentFilter{
			StartAt:     filter.StartAt,
			EndAt:       filter.EndAt,
			DoctorName:  filter.DoctorName,
			PatientName: filter.PatientName,
			Status:      filter.Status,
		}
	}

	appointments, err := u.appointmentRepo.FindAll(u.db.WithContext(ctx), domainFilter)
	if err != nil {
		u.log.Warnf("Failed to find all appointments: %+v", err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

// DeleteAppointment removes an appointment. Allowed for the owning patient,
// the assigned doctor, or an admin.
func (u *appointmentUsecase) DeleteAppointment(ctx context.Context, appointmentID uuid.UUID) error {
	actorID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return errors.New("user not found in context")
	}
	roleID, _ := middleware.GetRoleIDFromContext(ctx)

	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return err
	}
	if appointment == nil {
		return ErrAppointmentNotFound
	}

	if !u.mayDelete(ctx, roleID, actorID, appointment) {
		return ErrNotAppointmentOwner
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	affected, err := u.appointmentRepo.Delete(tx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to delete appointment %s: %+v", appointmentID, err)
		return err
	}
	if affected == 0 {
		return ErrAppointmentNotFound
	}

	if err := u.auditService.LogDelete(tx, &actorID, entity.AuditActionAppointmentDelete, "appointment", appointmentID.String(), appointment); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	u.log.Infof("Appointment deleted: id=%s, by=%s", appointmentID, actorID)
	return nil
}

func (u *appointmentUsecase) mayDelete(ctx context.Context, roleID int, actorID uuid.UUID, appointment *entity.Appointment) bool {
	if roleID == entity.RoleIDAdmin {
		return true
	}
	if appointment.PatientID == actorID {
		return true
	}
	if roleID == entity.RoleIDDoctor {
		doctor, err := u.doctorRepo.FindByUserID(u.db.WithContext(ctx), actorID)
		if err != nil {
			u.log.Warnf("Failed to resolve doctor for user %s: %+v", actorID, err)
			return false
		}
		return doctor != nil && doctor.ID == appointment.DoctorID
	}
	return false
}
