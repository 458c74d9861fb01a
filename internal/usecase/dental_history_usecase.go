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
	ErrHistoryNotFound = errors.New("dental history not found")
	ErrNotOwnHistory   = errors.New("patients can only view their own dental history")
	ErrTeethOutOfRange = errors.New("tooth numbers must be between 1 and 32")
)

type DentalHistoryUsecase interface {
	GetPatientHistory(ctx context.Context, patientID uuid.UUID) (*dto.DentalHistoryResponse, error)
	AddTreatmentRecord(ctx context.Context, req *dto.AddTreatmentRecordRequest) (*dto.TreatmentRecordResponse, error)
	AddXrayRecord(ctx context.Context, patientID uuid.UUID, req *dto.AddXrayRecordRequest) (*dto.XrayRecordResponse, error)
	UpdateMedicalInfo(ctx context.Context, patientID uuid.UUID, req *dto.UpdateMedicalInfoRequest) (*dto.DentalHistoryResponse, error)
	UpdateTreatmentPlan(ctx context.Context, patientID uuid.UUID, req *dto.UpdateTreatmentPlanRequest) (*dto.DentalHistoryResponse, error)
	UpdateTeethCondition(ctx context.Context, patientID uuid.UUID, req *dto.UpdateTeethConditionRequest) (*dto.DentalHistoryResponse, error)
}

type dentalHistoryUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	historyRepo  repository.DentalHistoryRepository
	userRepo     repository.UserRepository
	doctorRepo   repository.DoctorRepository
	auditService service.AuditService
}

func NewDentalHistoryUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	historyRepo repository.DentalHistoryRepository,
	userRepo repository.UserRepository,
	doctorRepo repository.DoctorRepository,
	auditService service.AuditService,
) DentalHistoryUsecase {
	return &dentalHistoryUsecase{
		db:           db,
		log:          log,
		historyRepo:  historyRepo,
		userRepo:     userRepo,
		doctorRepo:   doctorRepo,
		auditService: auditService,
	}
}

// GetPatientHistory returns the patient's dental record, creating an empty
// one on first access. Patients can only read their own record.
func (u *dentalHistoryUsecase) GetPatientHistory(ctx context.Context, patientID uuid.UUID) (*dto.DentalHistoryResponse, error) {
	actorID, _ := middleware.GetUserIDFromContext(ctx)
	roleID, _ := middleware.GetRoleIDFromContext(ctx)

	if roleID == entity.RoleIDPatient && actorID != patientID {
		return nil, ErrNotOwnHistory
	}

	history, err := u.findOrCreate(ctx, patientID)
	if err != nil {
		return nil, err
	}

	records, err := u.historyRepo.FindTreatmentRecords(u.db.WithContext(ctx), history.ID)
	if err != nil {
		u.log.Warnf("Failed to load treatment records for history %d: %+v", history.ID, err)
		return nil, err
	}
	history.TreatmentRecords = records

	return converter.DentalHistoryToResponse(history), nil
}

// AddTreatmentRecord appends a performed treatment to the patient's record.
// The acting doctor is stamped as the performer.
func (u *dentalHistoryUsecase) AddTreatmentRecord(ctx context.Context, req *dto.AddTreatmentRecordRequest) (*dto.TreatmentRecordResponse, error) {
	actorID, _ := middleware.GetUserIDFromContext(ctx)
	actorName, _ := middleware.GetUserNameFromContext(ctx)

	history, err := u.findOrCreate(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}

	record := &entity.TreatmentRecord{
		HistoryID:     history.ID,
		Date:          time.Now(),
		TreatmentType: req.TreatmentType,
		Description:   req.Description,
		PerformedBy:   &actorID,
		DoctorName:    actorName,
		Notes:         req.Notes,
		Images:        stringsToJSONList(req.Images),
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.historyRepo.AddTreatmentRecord(tx, record); err != nil {
		u.log.Warnf("Failed to add treatment record: %+v", err)
		return nil, err
	}

	// A performed treatment doubles as a checkup for recall purposes.
	now := time.Now()
	history.LastCheckupDate = &now
	if err := u.historyRepo.Update(tx, history); err != nil {
		u.log.Warnf("Failed to update history %d: %+v", history.ID, err)
		return nil, err
	}

	if err := u.auditService.LogCreate(tx, &actorID, entity.AuditActionTreatmentRecordAdd, "treatment_record", req.PatientID.String(), record); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.Infof("Treatment record added: patient=%s, type=%s", req.PatientID, req.TreatmentType)
	return converter.TreatmentRecordToResponse(record), nil
}

// AddXrayRecord appends an x-ray entry to the patient's record. Unlike the
// treatment path the record must already exist.
func (u *dentalHistoryUsecase) AddXrayRecord(ctx context.Context, patientID uuid.UUID, req *dto.AddXrayRecordRequest) (*dto.XrayRecordResponse, error) {
	actorID, _ := middleware.GetUserIDFromContext(ctx)

	history, err := u.historyRepo.FindByPatientID(u.db.WithContext(ctx), patientID)
	if err != nil {
		u.log.Warnf("Failed to find history for patient %s: %+v", patientID, err)
		return nil, err
	}
	if history == nil {
		return nil, ErrHistoryNotFound
	}

	taken := time.Now()
	entry := entity.JSON{
		"date":      taken.Format(time.RFC3339),
		"type":      req.Type,
		"image_url": req.ImageURL,
		"findings":  req.Findings,
	}
	history.XrayHistory = append(history.XrayHistory, entry)

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.historyRepo.Update(tx, history); err != nil {
		u.log.Warnf("Failed to update history %d: %+v", history.ID, err)
		return nil, err
	}

	if err := u.auditService.LogCreate(tx, &actorID, entity.AuditActionXrayRecordAdd, "dental_history", patientID.String(), entry); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.Infof("X-ray record added: patient=%s, type=%s", patientID, req.Type)
	return &dto.XrayRecordResponse{
		Date:     taken,
		Type:     req.Type,
		ImageURL: req.ImageURL,
		Findings: req.Findings,
	}, nil
}

func (u *dentalHistoryUsecase) UpdateMedicalInfo(ctx context.Context, patientID uuid.UUID, req *dto.UpdateMedicalInfoRequest) (*dto.DentalHistoryResponse, error) {
	actorID, _ := middleware.GetUserIDFromContext(ctx)

	history, err := u.findOrCreate(ctx, patientID)
	if err != nil {
		return nil, err
	}

	old := *history
	if req.MedicalConditions != nil {
		history.MedicalConditions = stringsToJSONList(req.MedicalConditions)
	}
	if req.Allergies != nil {
		history.Allergies = stringsToJSONList(req.Allergies)
	}
	if req.CurrentMedications != nil {
		meds := make(entity.JSONList, 0, len(req.CurrentMedications))
		for _, m := range req.CurrentMedications {
			meds = append(meds, m)
		}
		history.CurrentMedications = meds
	}
	if req.FamilyDentalHistory != "" {
		history.FamilyDentalHistory = req.FamilyDentalHistory
	}
	if req.OralHygieneHabits != "" {
		history.OralHygieneHabits = req.OralHygieneHabits
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.historyRepo.Update(tx, history); err != nil {
		u.log.Warnf("Failed to update history %d: %+v", history.ID, err)
		return nil, err
	}

	if err := u.auditService.LogUpdate(tx, &actorID, entity.AuditActionMedicalInfoUpdate, "dental_history", patientID.String(), old, history); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.DentalHistoryToResponse(history), nil
}

// UpdateTreatmentPlan sets the ongoing plan text and the recommended next
// visit; either field may be sent on its own.
func (u *dentalHistoryUsecase) UpdateTreatmentPlan(ctx context.Context, patientID uuid.UUID, req *dto.UpdateTreatmentPlanRequest) (*dto.DentalHistoryResponse, error) {
	actorID, _ := middleware.GetUserIDFromContext(ctx)

	history, err := u.historyRepo.FindByPatientID(u.db.WithContext(ctx), patientID)
	if err != nil {
		u.log.Warnf("Failed to find history for patient %s: %+v", patientID, err)
		return nil, err
	}
	if history == nil {
		return nil, ErrHistoryNotFound
	}

	old := *history
	if req.TreatmentPlan != "" {
		history.TreatmentPlan = req.TreatmentPlan
	}
	if req.NextRecommendedVisit != "" {
		visit, err := time.Parse("2006-01-02", req.NextRecommendedVisit)
		if err != nil {
			return nil, ErrInvalidDateFormat
		}
		history.NextRecommendedVisit = &visit
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.historyRepo.Update(tx, history); err != nil {
		u.log.Warnf("Failed to update history %d: %+v", history.ID, err)
		return nil, err
	}

	if err := u.auditService.LogUpdate(tx, &actorID, entity.AuditActionTreatmentPlanSet, "dental_history", patientID.String(), old, history); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.DentalHistoryToResponse(history), nil
}

// UpdateTeethCondition replaces the tooth chart. Unlike the other update
// paths it requires the record to already exist.
func (u *dentalHistoryUsecase) UpdateTeethCondition(ctx context.Context, patientID uuid.UUID, req *dto.UpdateTeethConditionRequest) (*dto.DentalHistoryResponse, error) {
	actorID, _ := middleware.GetUserIDFromContext(ctx)

	history, err := u.historyRepo.FindByPatientID(u.db.WithContext(ctx), patientID)
	if err != nil {
		u.log.Warnf("Failed to find history for patient %s: %+v", patientID, err)
		return nil, err
	}
	if history == nil {
		return nil, ErrHistoryNotFound
	}

	for _, teeth := range [][]int{req.MissingTeeth, req.FilledTeeth, req.Implants, req.Crowns} {
		for _, tooth := range teeth {
			if tooth < 1 || tooth > 32 {
				return nil, ErrTeethOutOfRange
			}
		}
	}

	old := *history
	history.TeethCondition = entity.JSON{
		"missing_teeth": intsToJSONList(req.MissingTeeth),
		"filled_teeth":  intsToJSONList(req.FilledTeeth),
		"implants":      intsToJSONList(req.Implants),
		"crowns":        intsToJSONList(req.Crowns),
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.historyRepo.Update(tx, history); err != nil {
		u.log.Warnf("Failed to update history %d: %+v", history.ID, err)
		return nil, err
	}

	if err := u.auditService.LogUpdate(tx, &actorID, entity.AuditActionMedicalInfoUpdate, "dental_history", patientID.String(), old.TeethCondition, history.TeethCondition); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.DentalHistoryToResponse(history), nil
}

func (u *dentalHistoryUsecase) findOrCreate(ctx context.Context, patientID uuid.UUID) (*entity.DentalHistory, error) {
	history, err := u.historyRepo.FindByPatientID(u.db.WithContext(ctx), patientID)
	if err != nil {
		u.log.Warnf("Failed to find history for patient %s: %+v", patientID, err)
		return nil, err
	}
	if history != nil {
		return history, nil
	}

	patient, err := u.userRepo.FindByID(u.db.WithContext(ctx), patientID)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", patientID, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	history = &entity.DentalHistory{PatientID: patientID}
	if err := u.historyRepo.Create(u.db.WithContext(ctx), history); err != nil {
		// A concurrent first access may have created the row already.
		if isDuplicateKeyError(err, "") {
			return u.historyRepo.FindByPatientID(u.db.WithContext(ctx), patientID)
		}
		u.log.Warnf("Failed to create history for patient %s: %+v", patientID, err)
		return nil, err
	}
	return history, nil
}

func stringsToJSONList(values []string) entity.JSONList {
	if values == nil {
		return nil
	}
	list := make(entity.JSONList, 0, len(values))
	for _, v := range values {
		list = append(list, v)
	}
	return list
}

func intsToJSONList(values []int) entity.JSONList {
	list := make(entity.JSONList, 0, len(values))
	for _, v := range values {
		list = append(list, v)
	}
	return list
}
