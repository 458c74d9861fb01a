package usecase

import (
	"context"
	"io"
	"sort"
	"testing"
	"time"

	"dental-clinic-api/config"
	"dental-clinic-api/internal/delivery/dto"
	"dental-clinic-api/internal/delivery/http/middleware"
	"dental-clinic-api/internal/domain/entity"
	"dental-clinic-api/internal/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type fakeUserRepo struct {
	users map[uuid.UUID]*entity.User
}

func (f *fakeUserRepo) Create(db *gorm.DB, user *entity.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.User, error) {
	return f.users[id], nil
}

func (f *fakeUserRepo) FindByEmail(db *gorm.DB, email string) (*entity.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) Update(db *gorm.DB, user *entity.User) error {
	f.users[user.ID] = user
	return nil
}

type fakeDoctorRepo struct {
	doctors map[uuid.UUID]*entity.Doctor
}

func (f *fakeDoctorRepo) Create(db *gorm.DB, doctor *entity.Doctor) error {
	f.doctors[doctor.ID] = doctor
	return nil
}

func (f *fakeDoctorRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Doctor, error) {
	return f.doctors[id], nil
}

func (f *fakeDoctorRepo) FindByUserID(db *gorm.DB, userID uuid.UUID) (*entity.Doctor, error) {
	for _, doctor := range f.doctors {
		if doctor.UserID == userID {
			return doctor, nil
		}
	}
	return nil, nil
}

func (f *fakeDoctorRepo) FindByEmail(db *gorm.DB, email string) (*entity.Doctor, error) {
	for _, doctor := range f.doctors {
		if doctor.Email == email {
			return doctor, nil
		}
	}
	return nil, nil
}

func (f *fakeDoctorRepo) FindAll(db *gorm.DB) ([]entity.Doctor, error) {
	doctors := make([]entity.Doctor, 0, len(f.doctors))
	for _, doctor := range f.doctors {
		doctors = append(doctors, *doctor)
	}
	return doctors, nil
}

func (f *fakeDoctorRepo) Update(db *gorm.DB, doctor *entity.Doctor) error {
	f.doctors[doctor.ID] = doctor
	return nil
}

func (f *fakeDoctorRepo) Delete(db *gorm.DB, id uuid.UUID) (int64, error) {
	if _, ok := f.doctors[id]; !ok {
		return 0, nil
	}
	delete(f.doctors, id)
	return 1, nil
}

type fakeAppointmentRepo struct {
	appointments map[uuid.UUID]*entity.Appointment
}

func (f *fakeAppointmentRepo) Create(db *gorm.DB, appointment *entity.Appointment) error {
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	stored := *appointment
	f.appointments[appointment.ID] = &stored
	return nil
}

func (f *fakeAppointmentRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	if appt, ok := f.appointments[id]; ok {
		cp := *appt
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeAppointmentRepo) FindByDoctorAndDay(db *gorm.DB, doctorID uuid.UUID, day time.Time) ([]entity.Appointment, error) {
	var out []entity.Appointment
	for _, appt := range f.appointments {
		if appt.DoctorID == doctorID && appt.Date.Equal(day) {
			out = append(out, *appt)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) FindByDoctorID(db *gorm.DB, doctorID uuid.UUID) ([]entity.Appointment, error) {
	var out []entity.Appointment
	for _, appt := range f.appointments {
		if appt.DoctorID == doctorID {
			out = append(out, *appt)
		}
	}
	sortChronologically(out)
	return out, nil
}

func (f *fakeAppointmentRepo) FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.Appointment, error) {
	var out []entity.Appointment
	for _, appt := range f.appointments {
		if appt.PatientID == patientID {
			out = append(out, *appt)
		}
	}
	sortChronologically(out)
	return out, nil
}

func (f *fakeAppointmentRepo) FindAll(db *gorm.DB, filter *entity.AppointmentFilter) ([]entity.Appointment, error) {
	var out []entity.Appointment
	for _, appt := range f.appointments {
		out = append(out, *appt)
	}
	sortChronologically(out)
	return out, nil
}

// Mirrors the date ASC, time ASC ordering the SQL finders apply.
func sortChronologically(appointments []entity.Appointment) {
	sort.Slice(appointments, func(i, j int) bool {
		if !appointments[i].Date.Equal(appointments[j].Date) {
			return appointments[i].Date.Before(appointments[j].Date)
		}
		return appointments[i].Time < appointments[j].Time
	})
}

func (f *fakeAppointmentRepo) Update(db *gorm.DB, appointment *entity.Appointment) error {
	stored := *appointment
	f.appointments[appointment.ID] = &stored
	return nil
}

func (f *fakeAppointmentRepo) Delete(db *gorm.DB, id uuid.UUID) (int64, error) {
	if _, ok := f.appointments[id]; !ok {
		return 0, nil
	}
	delete(f.appointments, id)
	return 1, nil
}

type fakeAuditService struct {
	actions []string
}

func (f *fakeAuditService) LogCreate(tx *gorm.DB, userID *uuid.UUID, action, entityName, entityID string, newValue interface{}) error {
	f.actions = append(f.actions, action)
	return nil
}

func (f *fakeAuditService) LogUpdate(tx *gorm.DB, userID *uuid.UUID, action, entityName, entityID string, oldValue, newValue interface{}) error {
	f.actions = append(f.actions, action)
	return nil
}

func (f *fakeAuditService) LogDelete(tx *gorm.DB, userID *uuid.UUID, action, entityName, entityID string, oldValue interface{}) error {
	f.actions = append(f.actions, action)
	return nil
}

type bookingFixture struct {
	usecase   AppointmentUsecase
	mock      sqlmock.Sqlmock
	appts     *fakeAppointmentRepo
	audit     *fakeAuditService
	patientID uuid.UUID
	doctorID  uuid.UUID
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()

	db, mock := newTestDB(t)
	log := newTestLogger()

	patientID := uuid.New()
	doctorID := uuid.New()

	userRepo := &fakeUserRepo{users: map[uuid.UUID]*entity.User{
		patientID: {ID: patientID, RoleID: entity.RoleIDPatient, Email: "pat@example.com", FullName: "Pat Doe"},
	}}
	doctorRepo := &fakeDoctorRepo{doctors: map[uuid.UUID]*entity.Doctor{
		doctorID: {ID: doctorID, UserID: uuid.New(), Name: "Dr. Smith", Email: "smith@example.com", Specialty: "Orthodontics"},
	}}
	apptRepo := &fakeAppointmentRepo{appointments: map[uuid.UUID]*entity.Appointment{}}
	audit := &fakeAuditService{}

	clinic := config.ClinicConfig{
		OpenHour:                9,
		CloseHour:               23,
		SlotMinutes:             60,
		ConflictScanAllStatuses: true,
	}

	slotLocks := service.NewSlotLockService(log)
	t.Cleanup(slotLocks.Stop)

	fixture := &bookingFixture{
		mock:      mock,
		appts:     apptRepo,
		audit:     audit,
		patientID: patientID,
		doctorID:  doctorID,
	}
	fixture.usecase = NewAppointmentUsecase(db, log, clinic, apptRepo, doctorRepo, userRepo, slotLocks, audit)
	return fixture
}

func (f *bookingFixture) patientContext() context.Context {
	ctx := context.WithValue(context.Background(), middleware.UserIDKey, f.patientID)
	ctx = context.WithValue(ctx, middleware.RoleIDKey, entity.RoleIDPatient)
	return ctx
}

func (f *bookingFixture) bookingRequest(clock string) *dto.CreateAppointmentRequest {
	return &dto.CreateAppointmentRequest{
		DoctorID:        f.doctorID,
		Title:           "Checkup",
		AppointmentType: "general",
		Date:            "2026-03-10",
		Time:            clock,
	}
}

func (f *bookingFixture) expectTx() {
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
}

func TestRequestBookingWithinHours(t *testing.T) {
	f := newBookingFixture(t)
	f.expectTx()

	appt, err := f.usecase.RequestBooking(f.patientContext(), f.bookingRequest("09:00"))
	require.NoError(t, err)
	assert.Equal(t, "pending", appt.Status)
	assert.Equal(t, "09:00", appt.Time)
	assert.Equal(t, 60, appt.DurationMinutes)
	assert.Equal(t, "Pat Doe", appt.PatientName)
	assert.Equal(t, "Dr. Smith", appt.DoctorName)
	assert.Contains(t, f.audit.actions, entity.AuditActionAppointmentCreate)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestRequestBookingLastFullSlot(t *testing.T) {
	f := newBookingFixture(t)
	f.expectTx()

	// 22:00 ends exactly at close; allowed.
	appt, err := f.usecase.RequestBooking(f.patientContext(), f.bookingRequest("22:00"))
	require.NoError(t, err)
	assert.Equal(t, "22:00", appt.Time)
}

func TestRequestBookingOutsideHours(t *testing.T) {
	f := newBookingFixture(t)

	for _, clock := range []string{"08:59", "08:00", "22:30", "23:00", "23:30", "00:00", "25:00"} {
		_, err := f.usecase.RequestBooking(f.patientContext(), f.bookingRequest(clock))
		assert.ErrorIs(t, err, ErrOutsideClinicHours, clock)
	}
	assert.Empty(t, f.appts.appointments)
}

func TestRequestBookingInvalidFormats(t *testing.T) {
	f := newBookingFixture(t)

	req := f.bookingRequest("09:00")
	req.Date = "10-03-2026"
	_, err := f.usecase.RequestBooking(f.patientContext(), req)
	assert.ErrorIs(t, err, ErrInvalidDateFormat)

	for _, clock := range []string{"9am", "0900", "09:60", "09:xx", ""} {
		_, err := f.usecase.RequestBooking(f.patientContext(), f.bookingRequest(clock))
		assert.ErrorIs(t, err, ErrInvalidTimeFormat, clock)
	}
}

func TestRequestBookingNormalizesClockTime(t *testing.T) {
	f := newBookingFixture(t)
	f.expectTx()

	appt, err := f.usecase.RequestBooking(f.patientContext(), f.bookingRequest("9:00"))
	require.NoError(t, err)
	assert.Equal(t, "09:00", appt.Time)

	// The padded form of the same slot collides with the unpadded booking.
	_, err = f.usecase.RequestBooking(f.patientContext(), f.bookingRequest("09:00"))
	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestRequestBookingUnknownDoctor(t *testing.T) {
	f := newBookingFixture(t)

	req := f.bookingRequest("09:00")
	req.DoctorID = uuid.New()
	_, err := f.usecase.RequestBooking(f.patientContext(), req)
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}

func TestRequestBookingBackToBackSlots(t *testing.T) {
	f := newBookingFixture(t)
	f.expectTx()
	f.expectTx()

	_, err := f.usecase.RequestBooking(f.patientContext(), f.bookingRequest("09:00"))
	require.NoError(t, err)

	// [09:00, 10:00) and [10:00, 11:00) share a boundary, not an overlap.
	_, err = f.usecase.RequestBooking(f.patientContext(), f.bookingRequest("10:00"))
	require.NoError(t, err)
	assert.Len(t, f.appts.appointments, 2)
}

func TestRequestBookingSlotConflicts(t *testing.T) {
	f := newBookingFixture(t)
	f.expectTx()

	_, err := f.usecase.RequestBooking(f.patientContext(), f.bookingRequest("10:00"))
	require.NoError(t, err)

	for _, clock := range []string{"10:00", "10:30", "09:30"} {
		_, err = f.usecase.RequestBooking(f.patientContext(), f.bookingRequest(clock))
		assert.ErrorIs(t, err, ErrSlotTaken, clock)
	}
	assert.Len(t, f.appts.appointments, 1)
}

func TestRequestBookingCancelledStillBlocks(t *testing.T) {
	f := newBookingFixture(t)
	f.expectTx()

	_, err := f.usecase.RequestBooking(f.patientContext(), f.bookingRequest("10:00"))
	require.NoError(t, err)

	for _, appt := range f.appts.appointments {
		appt.Status = entity.AppointmentStatusCancelled
	}

	// Default policy scans every status, so the cancelled slot still holds.
	_, err = f.usecase.RequestBooking(f.patientContext(), f.bookingRequest("10:00"))
	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestRequestBookingInactiveSkippedWhenConfigured(t *testing.T) {
	db, mock := newTestDB(t)
	log := newTestLogger()

	patientID := uuid.New()
	doctorID := uuid.New()
	userRepo := &fakeUserRepo{users: map[uuid.UUID]*entity.User{
		patientID: {ID: patientID, RoleID: entity.RoleIDPatient, FullName: "Pat Doe"},
	}}
	doctorRepo := &fakeDoctorRepo{doctors: map[uuid.UUID]*entity.Doctor{
		doctorID: {ID: doctorID, Name: "Dr. Smith"},
	}}
	day, _ := time.Parse("2006-01-02", "2026-03-10")
	cancelled := &entity.Appointment{
		ID: uuid.New(), DoctorID: doctorID, PatientID: patientID,
		Date: day, Time: "10:00", DurationMinutes: 60,
		Status: entity.AppointmentStatusCancelled,
	}
	apptRepo := &fakeAppointmentRepo{appointments: map[uuid.UUID]*entity.Appointment{cancelled.ID: cancelled}}

	clinic := config.ClinicConfig{OpenHour: 9, CloseHour: 23, SlotMinutes: 60, ConflictScanAllStatuses: false}
	slotLocks := service.NewSlotLockService(log)
	t.Cleanup(slotLocks.Stop)

	u := NewAppointmentUsecase(db, log, clinic, apptRepo, doctorRepo, userRepo, slotLocks, &fakeAuditService{})

	mock.ExpectBegin()
	mock.ExpectCommit()

	ctx := context.WithValue(context.Background(), middleware.UserIDKey, patientID)
	_, err := u.RequestBooking(ctx, &dto.CreateAppointmentRequest{
		DoctorID: doctorID, Title: "Checkup", AppointmentType: "general",
		Date: "2026-03-10", Time: "10:00",
	})
	require.NoError(t, err)
}

func TestUpdateStatusInvalidValueLeavesAppointment(t *testing.T) {
	f := newBookingFixture(t)
	f.expectTx()

	created, err := f.usecase.RequestBooking(f.patientContext(), f.bookingRequest("09:00"))
	require.NoError(t, err)

	_, err = f.usecase.UpdateStatus(f.patientContext(), created.ID, &dto.UpdateAppointmentStatusRequest{Status: "approved"})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	stored := f.appts.appointments[created.ID]
	assert.Equal(t, entity.AppointmentStatusPending, stored.Status)
}

func TestUpdateStatusTransitions(t *testing.T) {
	f := newBookingFixture(t)
	f.expectTx()

	created, err := f.usecase.RequestBooking(f.patientContext(), f.bookingRequest("09:00"))
	require.NoError(t, err)

	// The status enum is flat: any member can move to any other.
	for _, status := range []string{"confirmed", "completed", "cancelled", "rejected", "pending"} {
		f.expectTx()
		updated, err := f.usecase.UpdateStatus(f.patientContext(), created.ID, &dto.UpdateAppointmentStatusRequest{Status: status})
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
	}
}

func TestUpdateStatusUnknownAppointment(t *testing.T) {
	f := newBookingFixture(t)

	_, err := f.usecase.UpdateStatus(f.patientContext(), uuid.New(), &dto.UpdateAppointmentStatusRequest{Status: "confirmed"})
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestDeleteAppointmentAuthorization(t *testing.T) {
	f := newBookingFixture(t)
	f.expectTx()

	created, err := f.usecase.RequestBooking(f.patientContext(), f.bookingRequest("09:00"))
	require.NoError(t, err)

	strangerCtx := context.WithValue(context.Background(), middleware.UserIDKey, uuid.New())
	strangerCtx = context.WithValue(strangerCtx, middleware.RoleIDKey, entity.RoleIDPatient)
	err = f.usecase.DeleteAppointment(strangerCtx, created.ID)
	assert.ErrorIs(t, err, ErrNotAppointmentOwner)

	f.expectTx()
	err = f.usecase.DeleteAppointment(f.patientContext(), created.ID)
	require.NoError(t, err)
	assert.Empty(t, f.appts.appointments)
}

func TestGetMyAppointments(t *testing.T) {
	f := newBookingFixture(t)
	f.expectTx()
	f.expectTx()

	// Booked latest-first; the listing must still come back chronological.
	_, err := f.usecase.RequestBooking(f.patientContext(), f.bookingRequest("11:00"))
	require.NoError(t, err)
	_, err = f.usecase.RequestBooking(f.patientContext(), f.bookingRequest("09:00"))
	require.NoError(t, err)

	list, err := f.usecase.GetMyAppointments(f.patientContext())
	require.NoError(t, err)
	assert.Equal(t, 2, list.Total)
	require.Len(t, list.Appointments, 2)
	assert.Equal(t, "09:00", list.Appointments[0].Time)
	assert.Equal(t, "11:00", list.Appointments[1].Time)

	// Listing has no side effects; a second call returns the same result.
	again, err := f.usecase.GetMyAppointments(f.patientContext())
	require.NoError(t, err)
	assert.Equal(t, list, again)
}
