package converter

import (
	"dental-clinic-api/internal/delivery/dto"
	"dental-clinic-api/internal/domain/entity"

	"github.com/google/uuid"
)

// UserToResponse converts a user entity. doctorID is non-nil only for
// accounts that back a doctor directory row.
func UserToResponse(user *entity.User, doctorID *uuid.UUID) *dto.UserResponse {
	if user == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:               user.ID,
		Email:            user.Email,
		FullName:         user.FullName,
		Role:             entity.RoleNameByID(user.RoleID),
		PhoneNumber:      user.PhoneNumber,
		Address:          user.Address,
		Gender:           user.Gender,
		DateOfBirth:      user.DateOfBirth,
		EmergencyContact: user.EmergencyContact,
		InsuranceInfo:    user.InsuranceInfo,
		DoctorID:         doctorID,
		CreatedAt:        user.CreatedAt,
		UpdatedAt:        user.UpdatedAt,
	}
}
