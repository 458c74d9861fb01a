package entity

import (
	"time"

	"github.com/google/uuid"
)

// User represents the centralized account table. Patients and admins log in
// against it; doctors additionally carry a row in the doctors directory.
type User struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	RoleID           int        `gorm:"not null;index" json:"role_id"`
	Email            string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password         string     `gorm:"type:text;not null" json:"-"`
	FullName         string     `gorm:"type:varchar(255);not null" json:"full_name"`
	PhoneNumber      string     `gorm:"type:varchar(20)" json:"phone_number,omitempty"`
	Address          string     `gorm:"type:text" json:"address,omitempty"`
	Gender           string     `gorm:"type:varchar(10)" json:"gender,omitempty"`
	DateOfBirth      *time.Time `gorm:"type:date" json:"date_of_birth,omitempty"`
	EmergencyContact string     `gorm:"type:varchar(255)" json:"emergency_contact,omitempty"`
	InsuranceInfo    string     `gorm:"type:text" json:"insurance_info,omitempty"`
	IsActive         bool       `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Role   Role    `gorm:"foreignKey:RoleID" json:"role,omitempty"`
	Doctor *Doctor `gorm:"foreignKey:UserID" json:"doctor,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// Gender constants
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)
