package usecase

import (
	"context"
	"errors"

	"dental-clinic-api/internal/converter"
	"dental-clinic-api/internal/delivery/dto"
	"dental-clinic-api/internal/delivery/http/middleware"
	"dental-clinic-api/internal/domain/entity"
	"dental-clinic-api/internal/domain/repository"
	"dental-clinic-api/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrDoctorNotFound = errors.New("doctor not found")

type DoctorUsecase interface {
	CreateDoctor(ctx context.Context, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error)
	GetDoctor(ctx context.Context, id uuid.UUID) (*dto.DoctorResponse, error)
	ListDoctors(ctx context.Context) (*dto.DoctorListResponse, error)
	UpdateDoctor(ctx context.Context, id uuid.UUID, req *dto.UpdateDoctorRequest) (*dto.DoctorResponse, error)
	DeleteDoctor(ctx context.Context, id uuid.UUID) error
}

type doctorUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	doctorRepo   repository.DoctorRepository
	userRepo     repository.UserRepository
	auditService service.AuditService
}

func NewDoctorUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	doctorRepo repository.DoctorRepository,
	userRepo repository.UserRepository,
	auditService service.AuditService,
) DoctorUsecase {
	return &doctorUsecase{
		db:           db,
		log:          log,
		doctorRepo:   doctorRepo,
		userRepo:     userRepo,
		auditService: auditService,
	}
}

// CreateDoctor creates the login account and the directory row in one
// transaction. Admin only, enforced at the router.
func (u *doctorUsecase) CreateDoctor(ctx context.Context, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error) {
	actorID, _ := middleware.GetUserIDFromContext(ctx)

	existing, err := u.userRepo.FindByEmail(u.db.WithContext(ctx), req.Email)
	if err != nil {
		u.log.Warnf("Failed to check email %s: %+v", req.Email, err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	user := &entity.User{
		RoleID:   entity.RoleIDDoctor,
		Email:    req.Email,
		Password: string(hashed),
		FullName: req.Name,
		IsActive: true,
	}
	if err := u.userRepo.Create(tx, user); err != nil {
		if isDuplicateKeyError(err, "") {
			return nil, ErrEmailAlreadyExists
		}
		u.log.Warnf("Failed to create doctor account: %+v", err)
		return nil, err
	}

	doctor := &entity.Doctor{
		UserID:    user.ID,
		Name:      req.Name,
		Email:     req.Email,
		Specialty: req.Specialty,
	}
	if err := u.doctorRepo.Create(tx, doctor); err != nil {
		if isDuplicateKeyError(err, "") {
			return nil, ErrEmailAlreadyExists
		}
		u.log.Warnf("Failed to create doctor: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(tx, &actorID, entity.AuditActionDoctorCreate, "doctor", doctor.ID.String(), doctor); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.Infof("Doctor created: id=%s, email=%s", doctor.ID, doctor.Email)
	return converter.DoctorToResponse(doctor), nil
}

func (u *doctorUsecase) GetDoctor(ctx context.Context, id uuid.UUID) (*dto.DoctorResponse, error) {
	doctor, err := u.doctorRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", id, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}
	return converter.DoctorToResponse(doctor), nil
}

// ListDoctors is the public directory listing, used by patients to pick a
// doctor when booking.
func (u *doctorUsecase) ListDoctors(ctx context.Context) (*dto.DoctorListResponse, error) {
	doctors, err := u.doctorRepo.FindAll(u.db.WithContext(ctx))
	if err != nil {
		u.log.Warnf("Failed to list doctors: %+v", err)
		return nil, err
	}
	return &dto.DoctorListResponse{
		Doctors: converter.DoctorsToResponses(doctors),
		Total:   len(doctors),
	}, nil
}

func (u *doctorUsecase) UpdateDoctor(ctx context.Context, id uuid.UUID, req *dto.UpdateDoctorRequest) (*dto.DoctorResponse, error) {
	actorID, _ := middleware.GetUserIDFromContext(ctx)

	doctor, err := u.doctorRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", id, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	old := *doctor
	if req.Name != "" {
		doctor.Name = req.Name
	}
	if req.Specialty != "" {
		doctor.Specialty = req.Specialty
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.doctorRepo.Update(tx, doctor); err != nil {
		u.log.Warnf("Failed to update doctor %s: %+v", id, err)
		return nil, err
	}

	// Keep the denormalized account name in sync with the directory row.
	if req.Name != "" {
		user, err := u.userRepo.FindByID(tx, doctor.UserID)
		if err != nil {
			return nil, err
		}
		if user != nil {
			user.FullName = req.Name
			if err := u.userRepo.Update(tx, user); err != nil {
				u.log.Warnf("Failed to update doctor account %s: %+v", doctor.UserID, err)
				return nil, err
			}
		}
	}

	if err := u.auditService.LogUpdate(tx, &actorID, entity.AuditActionDoctorUpdate, "doctor", doctor.ID.String(), old, doctor); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.Infof("Doctor updated: id=%s", id)
	return converter.DoctorToResponse(doctor), nil
}

func (u *doctorUsecase) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	actorID, _ := middleware.GetUserIDFromContext(ctx)

	doctor, err := u.doctorRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", id, err)
		return err
	}
	if doctor == nil {
		return ErrDoctorNotFound
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	affected, err := u.doctorRepo.Delete(tx, id)
	if err != nil {
		if isForeignKeyError(err) {
			u.log.Warnf("Doctor %s still referenced by appointments: %+v", id, err)
		}
		return err
	}
	if affected == 0 {
		return ErrDoctorNotFound
	}

	// Disable the login rather than deleting it, so audit rows keep a user.
	user, err := u.userRepo.FindByID(tx, doctor.UserID)
	if err != nil {
		return err
	}
	if user != nil {
		user.IsActive = false
		if err := u.userRepo.Update(tx, user); err != nil {
			u.log.Warnf("Failed to disable doctor account %s: %+v", doctor.UserID, err)
			return err
		}
	}

	if err := u.auditService.LogDelete(tx, &actorID, entity.AuditActionDoctorDelete, "doctor", id.String(), doctor); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}

	u.log.Infof("Doctor deleted: id=%s", id)
	return nil
}
