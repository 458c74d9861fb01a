package usecase

import (
	"context"
	"testing"
	"time"

	"dental-clinic-api/internal/delivery/dto"
	"dental-clinic-api/internal/delivery/http/middleware"
	"dental-clinic-api/internal/domain/entity"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeDentalHistoryRepo struct {
	nextID    int64
	histories map[uuid.UUID]*entity.DentalHistory
	records   map[int64][]entity.TreatmentRecord
}

func (f *fakeDentalHistoryRepo) Create(db *gorm.DB, history *entity.DentalHistory) error {
	f.nextID++
	history.ID = f.nextID
	stored := *history
	f.histories[history.PatientID] = &stored
	return nil
}

func (f *fakeDentalHistoryRepo) FindByPatientID(db *gorm.DB, patientID uuid.UUID) (*entity.DentalHistory, error) {
	if history, ok := f.histories[patientID]; ok {
		cp := *history
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeDentalHistoryRepo) Update(db *gorm.DB, history *entity.DentalHistory) error {
	stored := *history
	f.histories[history.PatientID] = &stored
	return nil
}

func (f *fakeDentalHistoryRepo) AddTreatmentRecord(db *gorm.DB, record *entity.TreatmentRecord) error {
	record.ID = int64(len(f.records[record.HistoryID]) + 1)
	f.records[record.HistoryID] = append(f.records[record.HistoryID], *record)
	return nil
}

func (f *fakeDentalHistoryRepo) FindTreatmentRecords(db *gorm.DB, historyID int64) ([]entity.TreatmentRecord, error) {
	return f.records[historyID], nil
}

type historyFixture struct {
	usecase   DentalHistoryUsecase
	mock      sqlmock.Sqlmock
	histories *fakeDentalHistoryRepo
	audit     *fakeAuditService
	patientID uuid.UUID
	doctorID  uuid.UUID
}

func newHistoryFixture(t *testing.T) *historyFixture {
	t.Helper()

	db, mock := newTestDB(t)
	log := newTestLogger()

	patientID := uuid.New()
	doctorUserID := uuid.New()

	userRepo := &fakeUserRepo{users: map[uuid.UUID]*entity.User{
		patientID:    {ID: patientID, RoleID: entity.RoleIDPatient, Email: "pat@example.com", FullName: "Pat Doe"},
		doctorUserID: {ID: doctorUserID, RoleID: entity.RoleIDDoctor, Email: "smith@example.com", FullName: "Dr. Smith"},
	}}
	doctorRepo := &fakeDoctorRepo{doctors: map[uuid.UUID]*entity.Doctor{}}
	histories := &fakeDentalHistoryRepo{
		histories: map[uuid.UUID]*entity.DentalHistory{},
		records:   map[int64][]entity.TreatmentRecord{},
	}
	audit := &fakeAuditService{}

	return &historyFixture{
		usecase:   NewDentalHistoryUsecase(db, log, histories, userRepo, doctorRepo, audit),
		mock:      mock,
		histories: histories,
		audit:     audit,
		patientID: patientID,
		doctorID:  doctorUserID,
	}
}

func (f *historyFixture) doctorContext() context.Context {
	ctx := context.WithValue(context.Background(), middleware.UserIDKey, f.doctorID)
	ctx = context.WithValue(ctx, middleware.UserNameKey, "Dr. Smith")
	ctx = context.WithValue(ctx, middleware.RoleIDKey, entity.RoleIDDoctor)
	return ctx
}

func (f *historyFixture) seedHistory() {
	f.histories.nextID++
	f.histories.histories[f.patientID] = &entity.DentalHistory{
		ID:        f.histories.nextID,
		PatientID: f.patientID,
	}
}

func (f *historyFixture) expectTx() {
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
}

func TestGetPatientHistoryCreatesLazily(t *testing.T) {
	f := newHistoryFixture(t)

	history, err := f.usecase.GetPatientHistory(f.doctorContext(), f.patientID)
	require.NoError(t, err)
	assert.Equal(t, f.patientID, history.PatientID)
	assert.Len(t, f.histories.histories, 1)
}

func TestGetPatientHistoryOtherPatientForbidden(t *testing.T) {
	f := newHistoryFixture(t)

	ctx := context.WithValue(context.Background(), middleware.UserIDKey, uuid.New())
	ctx = context.WithValue(ctx, middleware.RoleIDKey, entity.RoleIDPatient)

	_, err := f.usecase.GetPatientHistory(ctx, f.patientID)
	assert.ErrorIs(t, err, ErrNotOwnHistory)
}

func TestAddTreatmentRecordStampsActor(t *testing.T) {
	f := newHistoryFixture(t)
	f.seedHistory()
	f.expectTx()

	record, err := f.usecase.AddTreatmentRecord(f.doctorContext(), &dto.AddTreatmentRecordRequest{
		PatientID:     f.patientID,
		TreatmentType: "filling",
		Description:   "Composite filling, lower left molar",
	})
	require.NoError(t, err)
	assert.Equal(t, "Dr. Smith", record.DoctorName)
	require.NotNil(t, record.PerformedBy)
	assert.Equal(t, f.doctorID, *record.PerformedBy)
	assert.NotNil(t, f.histories.histories[f.patientID].LastCheckupDate)
	assert.Contains(t, f.audit.actions, entity.AuditActionTreatmentRecordAdd)
}

func TestAddXrayRecord(t *testing.T) {
	f := newHistoryFixture(t)
	f.seedHistory()
	f.expectTx()

	record, err := f.usecase.AddXrayRecord(f.doctorContext(), f.patientID, &dto.AddXrayRecordRequest{
		Type:     "panoramic",
		ImageURL: "https://pacs.example.com/images/123.png",
		Findings: "Impacted wisdom tooth, lower right",
	})
	require.NoError(t, err)
	assert.Equal(t, "panoramic", record.Type)
	assert.False(t, record.Date.IsZero())

	history := f.histories.histories[f.patientID]
	require.Len(t, history.XrayHistory, 1)
	entry, ok := history.XrayHistory[0].(entity.JSON)
	require.True(t, ok)
	assert.Equal(t, "panoramic", entry["type"])
	assert.Contains(t, f.audit.actions, entity.AuditActionXrayRecordAdd)
}

func TestAddXrayRecordUnknownHistory(t *testing.T) {
	f := newHistoryFixture(t)

	_, err := f.usecase.AddXrayRecord(f.doctorContext(), uuid.New(), &dto.AddXrayRecordRequest{Type: "bitewing"})
	assert.ErrorIs(t, err, ErrHistoryNotFound)
}

func TestUpdateTreatmentPlan(t *testing.T) {
	f := newHistoryFixture(t)
	f.seedHistory()
	f.expectTx()

	history, err := f.usecase.UpdateTreatmentPlan(f.doctorContext(), f.patientID, &dto.UpdateTreatmentPlanRequest{
		TreatmentPlan:        "Root canal, then crown in six weeks",
		NextRecommendedVisit: "2026-04-20",
	})
	require.NoError(t, err)
	assert.Equal(t, "Root canal, then crown in six weeks", history.TreatmentPlan)
	require.NotNil(t, history.NextRecommendedVisit)
	assert.Equal(t, time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC), *history.NextRecommendedVisit)
	assert.Contains(t, f.audit.actions, entity.AuditActionTreatmentPlanSet)

	// Sending only a visit date keeps the existing plan text.
	f.expectTx()
	history, err = f.usecase.UpdateTreatmentPlan(f.doctorContext(), f.patientID, &dto.UpdateTreatmentPlanRequest{
		NextRecommendedVisit: "2026-05-04",
	})
	require.NoError(t, err)
	assert.Equal(t, "Root canal, then crown in six weeks", history.TreatmentPlan)
}

func TestUpdateTreatmentPlanValidation(t *testing.T) {
	f := newHistoryFixture(t)
	f.seedHistory()

	_, err := f.usecase.UpdateTreatmentPlan(f.doctorContext(), f.patientID, &dto.UpdateTreatmentPlanRequest{
		NextRecommendedVisit: "20-04-2026",
	})
	assert.ErrorIs(t, err, ErrInvalidDateFormat)

	_, err = f.usecase.UpdateTreatmentPlan(f.doctorContext(), uuid.New(), &dto.UpdateTreatmentPlanRequest{
		TreatmentPlan: "Whitening",
	})
	assert.ErrorIs(t, err, ErrHistoryNotFound)
}

func TestUpdateTeethConditionRange(t *testing.T) {
	f := newHistoryFixture(t)
	f.seedHistory()

	_, err := f.usecase.UpdateTeethCondition(f.doctorContext(), f.patientID, &dto.UpdateTeethConditionRequest{
		MissingTeeth: []int{33},
	})
	assert.ErrorIs(t, err, ErrTeethOutOfRange)
}
