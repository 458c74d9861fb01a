package usecase

import (
	"context"
	"testing"
	"time"

	"dental-clinic-api/internal/delivery/dto"
	"dental-clinic-api/internal/delivery/http/middleware"
	"dental-clinic-api/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeAvailabilityRepo struct {
	nextID  int
	windows map[int]*entity.Availability
}

func (f *fakeAvailabilityRepo) Create(db *gorm.DB, availability *entity.Availability) error {
	f.nextID++
	availability.ID = f.nextID
	stored := *availability
	f.windows[availability.ID] = &stored
	return nil
}

func (f *fakeAvailabilityRepo) FindByDoctorAndDay(db *gorm.DB, doctorID uuid.UUID, day time.Time) ([]entity.Availability, error) {
	var out []entity.Availability
	for _, w := range f.windows {
		if w.DoctorID == doctorID && w.Date.Equal(day) {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (f *fakeAvailabilityRepo) FindByDoctorID(db *gorm.DB, doctorID uuid.UUID) ([]entity.Availability, error) {
	var out []entity.Availability
	for _, w := range f.windows {
		if w.DoctorID == doctorID {
			out = append(out, *w)
		}
	}
	return out, nil
}

func (f *fakeAvailabilityRepo) Delete(db *gorm.DB, id int) (int64, error) {
	if _, ok := f.windows[id]; !ok {
		return 0, nil
	}
	delete(f.windows, id)
	return 1, nil
}

type availabilityFixture struct {
	usecase      AvailabilityUsecase
	windows      *fakeAvailabilityRepo
	doctorID     uuid.UUID
	doctorUserID uuid.UUID
	expectTx     func()
}

func newAvailabilityFixture(t *testing.T) *availabilityFixture {
	t.Helper()

	db, mock := newTestDB(t)
	log := newTestLogger()

	doctorID := uuid.New()
	doctorUserID := uuid.New()
	doctorRepo := &fakeDoctorRepo{doctors: map[uuid.UUID]*entity.Doctor{
		doctorID: {ID: doctorID, UserID: doctorUserID, Name: "Dr. Smith"},
	}}
	windows := &fakeAvailabilityRepo{windows: map[int]*entity.Availability{}}

	return &availabilityFixture{
		usecase:      NewAvailabilityUsecase(db, log, windows, doctorRepo, &fakeAuditService{}),
		windows:      windows,
		doctorID:     doctorID,
		doctorUserID: doctorUserID,
		expectTx: func() {
			mock.ExpectBegin()
			mock.ExpectCommit()
		},
	}
}

func (f *availabilityFixture) doctorContext() context.Context {
	ctx := context.WithValue(context.Background(), middleware.UserIDKey, f.doctorUserID)
	ctx = context.WithValue(ctx, middleware.RoleIDKey, entity.RoleIDDoctor)
	return ctx
}

func (f *availabilityFixture) windowRequest(start, end string) *dto.SetAvailabilityRequest {
	return &dto.SetAvailabilityRequest{
		DoctorID:  f.doctorID,
		Date:      "2026-03-10",
		StartTime: start,
		EndTime:   end,
	}
}

func TestSetAvailability(t *testing.T) {
	f := newAvailabilityFixture(t)
	f.expectTx()

	window, err := f.usecase.SetAvailability(f.doctorContext(), f.windowRequest("09:00", "13:00"))
	require.NoError(t, err)
	assert.Equal(t, "09:00", window.StartTime)
	assert.Equal(t, "13:00", window.EndTime)
	assert.Len(t, f.windows.windows, 1)
}

func TestSetAvailabilityRejectsOverlap(t *testing.T) {
	f := newAvailabilityFixture(t)
	f.expectTx()

	_, err := f.usecase.SetAvailability(f.doctorContext(), f.windowRequest("09:00", "13:00"))
	require.NoError(t, err)

	_, err = f.usecase.SetAvailability(f.doctorContext(), f.windowRequest("12:00", "15:00"))
	assert.ErrorIs(t, err, ErrAvailabilityOverlap)

	// Adjacent windows share a boundary, not an overlap.
	f.expectTx()
	_, err = f.usecase.SetAvailability(f.doctorContext(), f.windowRequest("13:00", "17:00"))
	require.NoError(t, err)
}

func TestSetAvailabilityNormalizesClockTimes(t *testing.T) {
	f := newAvailabilityFixture(t)
	f.expectTx()

	window, err := f.usecase.SetAvailability(f.doctorContext(), f.windowRequest("9:30", "10:30"))
	require.NoError(t, err)
	assert.Equal(t, "09:30", window.StartTime)
	assert.Equal(t, "10:30", window.EndTime)

	// The unpadded form still overlaps its padded equivalent.
	_, err = f.usecase.SetAvailability(f.doctorContext(), f.windowRequest("9:45", "10:15"))
	assert.ErrorIs(t, err, ErrAvailabilityOverlap)
}

func TestSetAvailabilityValidation(t *testing.T) {
	f := newAvailabilityFixture(t)

	_, err := f.usecase.SetAvailability(f.doctorContext(), f.windowRequest("13:00", "09:00"))
	assert.ErrorIs(t, err, ErrInvalidTimeRange)

	_, err = f.usecase.SetAvailability(f.doctorContext(), f.windowRequest("9am", "13:00"))
	assert.ErrorIs(t, err, ErrInvalidTimeFormat)

	req := f.windowRequest("09:00", "13:00")
	req.Date = "March 10"
	_, err = f.usecase.SetAvailability(f.doctorContext(), req)
	assert.ErrorIs(t, err, ErrInvalidDateFormat)

	req = f.windowRequest("09:00", "13:00")
	req.DoctorID = uuid.New()
	_, err = f.usecase.SetAvailability(f.doctorContext(), req)
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}

func TestSetAvailabilityOtherDoctorForbidden(t *testing.T) {
	f := newAvailabilityFixture(t)

	otherCtx := context.WithValue(context.Background(), middleware.UserIDKey, uuid.New())
	otherCtx = context.WithValue(otherCtx, middleware.RoleIDKey, entity.RoleIDDoctor)

	_, err := f.usecase.SetAvailability(otherCtx, f.windowRequest("09:00", "13:00"))
	assert.ErrorIs(t, err, ErrNotOwnAvailability)
}

func TestDeleteAvailability(t *testing.T) {
	f := newAvailabilityFixture(t)
	f.expectTx()

	window, err := f.usecase.SetAvailability(f.doctorContext(), f.windowRequest("09:00", "13:00"))
	require.NoError(t, err)

	require.NoError(t, f.usecase.DeleteAvailability(f.doctorContext(), window.ID))
	assert.ErrorIs(t, f.usecase.DeleteAvailability(f.doctorContext(), window.ID), ErrAvailabilityNotFound)
}
