package entity

import (
	"time"

	"github.com/google/uuid"
)

// Doctor is the clinic's doctor directory. Appointments and availability
// windows reference the doctor id, not the backing user account, so the
// directory row is what the scheduling path resolves against.
type Doctor struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Specialty string    `gorm:"type:varchar(100);not null;index" json:"specialty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	User           User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Appointments   []Appointment  `gorm:"foreignKey:DoctorID" json:"appointments,omitempty"`
	Availabilities []Availability `gorm:"foreignKey:DoctorID" json:"availabilities,omitempty"`
}

func (Doctor) TableName() string {
	return "doctors"
}
