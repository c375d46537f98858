package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Appointment represents a medical appointment shared within a group
type Appointment struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Title      string    `gorm:"size:200;not null" json:"title"`
	Start      time.Time `gorm:"not null;index" json:"start"`
	End        time.Time `gorm:"not null" json:"end"`
	GroupID    string    `gorm:"size:36;not null;index" json:"group"`
	CreatedBy  string    `gorm:"size:255;not null" json:"created_by"`
	Location   string    `gorm:"size:255" json:"location,omitempty"`
	DoctorName string    `gorm:"size:100" json:"doctor_name,omitempty"`
	Purpose    string    `gorm:"size:255" json:"purpose,omitempty"`
	Summary    string    `gorm:"type:text" json:"summary,omitempty"`
	Completed  bool      `gorm:"not null;default:false" json:"completed"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

// BeforeCreate hook assigns an ID to new appointments
func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = now
	}
	return nil
}

// BeforeSave hook is called before saving the appointment
func (a *Appointment) BeforeSave(tx *gorm.DB) error {
	a.UpdatedAt = time.Now()
	return nil
}

// TableName specifies the table name for the Appointment model
func (Appointment) TableName() string {
	return "appointment"
}

// CreateAppointmentRequest represents the data needed to create an appointment
type CreateAppointmentRequest struct {
	Title      string    `json:"title" binding:"required"`
	Start      time.Time `json:"start" binding:"required"`
	End        time.Time `json:"end" binding:"required"`
	Location   string    `json:"location"`
	DoctorName string    `json:"doctor_name"`
	Purpose    string    `json:"purpose"`
	Summary    string    `json:"summary"`
}

// UpdateAppointmentRequest carries a partial appointment update
type UpdateAppointmentRequest struct {
	Title      *string    `json:"title"`
	Start      *time.Time `json:"start"`
	End        *time.Time `json:"end"`
	Location   *string    `json:"location"`
	DoctorName *string    `json:"doctor_name"`
	Purpose    *string    `json:"purpose"`
	Summary    *string    `json:"summary"`
}

// ReminderSent tracks which reminder emails have already gone out for an
// appointment, so the worker never sends the same reminder twice
type ReminderSent struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	AppointmentID string    `gorm:"size:36;not null;index" json:"appointment_id"`
	ReminderType  string    `gorm:"size:20;not null" json:"reminder_type"` // "24hour" or "1hour"
	SentAt        time.Time `gorm:"not null" json:"sent_at"`
}

// TableName specifies the table name for the ReminderSent model
func (ReminderSent) TableName() string {
	return "reminder_sent"
}
