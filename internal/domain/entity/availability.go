package entity

import (
	"time"

	"github.com/google/uuid"
)

// Availability is a doctor-declared working window for one calendar day.
// Windows are stored for the booking UI; the appointment conflict check does
// not consult them.
type Availability struct {
	ID        int       `gorm:"primaryKey;autoIncrement" json:"id"`
	DoctorID  uuid.UUID `gorm:"type:uuid;not null;index" json:"doctor_id"`
	Date      time.Time `gorm:"type:date;not null;index" json:"date"`
	StartTime string    `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime   string    `gorm:"type:varchar(5);not null" json:"end_time"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Doctor Doctor `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (Availability) TableName() string {
	return "availabilities"
}

// OverlapsWindow reports whether [startTime, endTime) collides with this
// window on a plain "HH:MM" string comparison, which orders correctly for
// zero-padded clock times.
func (a *Availability) OverlapsWindow(startTime, endTime string) bool {
	return startTime < a.EndTime && endTime > a.StartTime
}
