package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Administration records that a dose of a medication was given, by whom and when.
// Events live inside the parent medication's JSON column and have no lifecycle of
// their own; they are addressed by their generated ID.
type Administration struct {
	ID             string    `json:"id"`
	AdministeredBy string    `json:"administered_by"`
	Timestamp      time.Time `json:"timestamp"`
}

// AdministrationList is the ordered administration history of a medication
type AdministrationList []Administration

func (l AdministrationList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return json.Marshal(l)
}

func (l *AdministrationList) Scan(value interface{}) error {
	if value == nil {
		*l = make([]Administration, 0)
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported type for AdministrationList: %T", value)
	}
}

// Medication represents a shared medication belonging to exactly one group
type Medication struct {
	ID              string             `gorm:"primaryKey;size:36" json:"id"`
	Name            string             `gorm:"size:100;not null" json:"name"`
	Dosage          string             `gorm:"size:100;not null" json:"dosage"`
	RecipientName   string             `gorm:"size:100;not null" json:"recipient_name"`
	GroupID         string             `gorm:"size:36;not null;index" json:"group"`
	PhotoURL        string             `gorm:"size:255" json:"photo_url,omitempty"`
	Administrations AdministrationList `gorm:"type:json" json:"administrations"`
	CreatedAt       time.Time          `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time          `gorm:"not null" json:"updated_at"`
}

// BeforeCreate hook assigns an ID and initializes the administration history
func (m *Medication) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Administrations == nil {
		m.Administrations = make([]Administration, 0)
	}
	now := time.Now()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = now
	}
	return nil
}

// BeforeSave hook is called before saving the medication
func (m *Medication) BeforeSave(tx *gorm.DB) error {
	m.UpdatedAt = time.Now()
	return nil
}

// TableName specifies the table name for the Medication model
func (Medication) TableName() string {
	return "medication"
}

// Administer appends a new administration event and returns it
func (m *Medication) Administer(administeredBy string) Administration {
	event := Administration{
		ID:             uuid.NewString(),
		AdministeredBy: administeredBy,
		Timestamp:      time.Now(),
	}
	m.Administrations = append(m.Administrations, event)
	return event
}

// FindAdministration returns the event with the given ID, or nil
func (m *Medication) FindAdministration(eventID string) *Administration {
	for i := range m.Administrations {
		if m.Administrations[i].ID == eventID {
			return &m.Administrations[i]
		}
	}
	return nil
}

// RemoveAdministration deletes the event with the given ID, preserving order.
// It reports whether an event was removed.
func (m *Medication) RemoveAdministration(eventID string) bool {
	for i := range m.Administrations {
		if m.Administrations[i].ID == eventID {
			m.Administrations = append(m.Administrations[:i], m.Administrations[i+1:]...)
			return true
		}
	}
	return false
}

// CreateMedicationRequest represents the data needed to create a medication
type CreateMedicationRequest struct {
	Name          string `json:"name" binding:"required"`
	Dosage        string `json:"dosage" binding:"required"`
	RecipientName string `json:"recipient_name" binding:"required"`
}

// UpdateMedicationRequest carries a partial medication update
type UpdateMedicationRequest struct {
	Name          *string `json:"name"`
	Dosage        *string `json:"dosage"`
	RecipientName *string `json:"recipient_name"`
}

// UpdateAdministrationRequest carries an update to a single administration event
type UpdateAdministrationRequest struct {
	AdministeredBy string     `json:"administered_by" binding:"required"`
	Timestamp      *time.Time `json:"timestamp"`
}
