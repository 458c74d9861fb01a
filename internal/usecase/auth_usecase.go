package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dental-clinic-api/internal/converter"
	"dental-clinic-api/internal/delivery/dto"
	"dental-clinic-api/internal/delivery/http/middleware"
	"dental-clinic-api/internal/domain/entity"
	"dental-clinic-api/internal/domain/repository"
	"dental-clinic-api/internal/service"
	"dental-clinic-api/pkg/jwt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrUserNotFound       = errors.New("user not found")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrInvalidDateFormat  = errors.New("invalid date format, use YYYY-MM-DD")
)

type AuthUsecase interface {
	Register(ctx context.Context, req *dto.RegisterPatientRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context) error
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	Me(ctx context.Context) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
}

type authUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	userRepo     repository.UserRepository
	doctorRepo   repository.DoctorRepository
	jwtService   *jwt.JWTService
	redisClient  *redis.Client
	auditService service.AuditService
}

func NewAuthUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	doctorRepo repository.DoctorRepository,
	jwtService *jwt.JWTService,
	redisClient *redis.Client,
	auditService service.AuditService,
) AuthUsecase {
	return &authUsecase{
		db:           db,
		log:          log,
		userRepo:     userRepo,
		doctorRepo:   doctorRepo,
		jwtService:   jwtService,
		redisClient:  redisClient,
		auditService: auditService,
	}
}

// Register creates a patient account. Doctor and admin accounts are created
// through the admin doctor management endpoints and seeding respectively.
func (u *authUsecase) Register(ctx context.Context, req *dto.RegisterPatientRequest) (*dto.UserResponse, error) {
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

	user := &entity.User{
		RoleID:      entity.RoleIDPatient,
		Email:       req.Email,
		Password:    string(hashed),
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		Gender:      req.Gender,
		IsActive:    true,
	}

	if req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return nil, ErrInvalidDateFormat
		}
		user.DateOfBirth = &dob
	}

	if err := u.userRepo.Create(u.db.WithContext(ctx), user); err != nil {
		if isDuplicateKeyError(err, "") {
			return nil, ErrEmailAlreadyExists
		}
		u.log.Warnf("Failed to create user: %+v", err)
		return nil, err
	}

	u.log.Infof("Patient registered: id=%s, email=%s", user.ID, user.Email)
	return converter.UserToResponse(user, nil), nil
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := u.userRepo.FindByEmail(u.db.WithContext(ctx), req.Email)
	if err != nil {
		u.log.Warnf("Failed to find user %s: %+v", req.Email, err)
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	tokens, err := u.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := u.auditService.LogCreate(u.db.WithContext(ctx), &user.ID, entity.AuditActionUserLogin, "user", user.ID.String(),
		map[string]interface{}{"email": user.Email}); err != nil {
		u.log.Warnf("Failed to audit login for %s: %+v", user.ID, err)
	}

	u.log.Infof("User logged in: id=%s, email=%s", user.ID, user.Email)
	return tokens, nil
}

// Logout revokes the current access token and any refresh tokens for the user.
func (u *authUsecase) Logout(ctx context.Context) error {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return errors.New("user not found in context")
	}
	tokenID, ok := middleware.GetTokenIDFromContext(ctx)
	if !ok {
		return errors.New("token not found in context")
	}

	accessKey := fmt.Sprintf("access_token:%s:%s", userID, tokenID)
	if err := u.redisClient.Del(ctx, accessKey).Err(); err != nil {
		u.log.Warnf("Failed to revoke access token: %+v", err)
		return err
	}

	pattern := fmt.Sprintf("refresh_token:%s:*", userID)
	iter := u.redisClient.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := u.redisClient.Del(ctx, iter.Val()).Err(); err != nil {
			u.log.Warnf("Failed to revoke refresh token %s: %+v", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		u.log.Warnf("Failed to scan refresh tokens: %+v", err)
		return err
	}

	u.log.Infof("User logged out: id=%s", userID)
	return nil
}

// RefreshToken rotates the token pair. The presented refresh token is
// consumed and cannot be used again.
func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := u.jwtService.ValidateToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != jwt.RefreshToken {
		return nil, ErrInvalidToken
	}

	refreshKey := fmt.Sprintf("refresh_token:%s:%s", claims.UserID, claims.TokenID)
	exists, err := u.redisClient.Exists(ctx, refreshKey).Result()
	if err != nil {
		u.log.Warnf("Failed to check refresh token: %+v", err)
		return nil, err
	}
	if exists == 0 {
		return nil, ErrInvalidToken
	}

	user, err := u.userRepo.FindByID(u.db.WithContext(ctx), claims.UserID)
	if err != nil {
		u.log.Warnf("Failed to find user %s: %+v", claims.UserID, err)
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, ErrInvalidToken
	}

	if err := u.redisClient.Del(ctx, refreshKey).Err(); err != nil {
		u.log.Warnf("Failed to consume refresh token: %+v", err)
		return nil, err
	}

	return u.issueTokens(ctx, user)
}

func (u *authUsecase) Me(ctx context.Context) (*dto.UserResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	user, err := u.userRepo.FindByID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find user %s: %+v", userID, err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return converter.UserToResponse(user, u.doctorIDForUser(ctx, user)), nil
}

func (u *authUsecase) UpdateProfile(ctx context.Context, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, errors.New("user not found in context")
	}

	user, err := u.userRepo.FindByID(u.db.WithContext(ctx), userID)
	if err != nil {
		u.log.Warnf("Failed to find user %s: %+v", userID, err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.PhoneNumber != "" {
		user.PhoneNumber = req.PhoneNumber
	}
	if req.Address != "" {
		user.Address = req.Address
	}
	if req.Gender != "" {
		user.Gender = req.Gender
	}
	if req.EmergencyContact != "" {
		user.EmergencyContact = req.EmergencyContact
	}
	if req.InsuranceInfo != "" {
		user.InsuranceInfo = req.InsuranceInfo
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			return nil, ErrInvalidDateFormat
		}
		user.DateOfBirth = &dob
	}

	if err := u.userRepo.Update(u.db.WithContext(ctx), user); err != nil {
		u.log.Warnf("Failed to update user %s: %+v", userID, err)
		return nil, err
	}

	u.log.Infof("Profile updated: id=%s", userID)
	return converter.UserToResponse(user, u.doctorIDForUser(ctx, user)), nil
}

func (u *authUsecase) issueTokens(ctx context.Context, user *entity.User) (*dto.TokenResponse, error) {
	accessToken, accessID, err := u.jwtService.GenerateAccessToken(user.ID, user.Email, user.FullName, user.RoleID)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refreshToken, refreshID, err := u.jwtService.GenerateRefreshToken(user.ID, user.Email, user.FullName, user.RoleID)
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	accessKey := fmt.Sprintf("access_token:%s:%s", user.ID, accessID)
	if err := u.redisClient.Set(ctx, accessKey, "1", u.jwtService.GetAccessExpiry()).Err(); err != nil {
		u.log.Warnf("Failed to store access token: %+v", err)
		return nil, err
	}

	refreshKey := fmt.Sprintf("refresh_token:%s:%s", user.ID, refreshID)
	if err := u.redisClient.Set(ctx, refreshKey, "1", u.jwtService.GetRefreshExpiry()).Err(); err != nil {
		u.log.Warnf("Failed to store refresh token: %+v", err)
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(u.jwtService.GetAccessExpiry().Seconds()),
	}, nil
}

func (u *authUsecase) doctorIDForUser(ctx context.Context, user *entity.User) *uuid.UUID {
	if user.RoleID != entity.RoleIDDoctor {
		return nil
	}
	doctor, err := u.doctorRepo.FindByUserID(u.db.WithContext(ctx), user.ID)
	if err != nil || doctor == nil {
		return nil
	}
	return &doctor.ID
}
