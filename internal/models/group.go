package models

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Invite codes are drawn from uppercase letters and digits; comparison is
// case-insensitive with input normalized to uppercase before lookup.
const (
	InviteCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	InviteCodeLength   = 6
)

// Group represents a family care group sharing medications and appointments.
// Members holds user IDs in join order; the first entry is the owner and the
// only one allowed to delete the group outright.
type Group struct {
	ID         string                      `gorm:"primaryKey;size:36" json:"id"`
	Name       string                      `gorm:"size:100;not null" json:"name"`
	Members    datatypes.JSONSlice[string] `json:"members"`
	InviteCode string                      `gorm:"uniqueIndex;size:6;not null" json:"invite_code"`
	CreatedAt  time.Time                   `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time                   `gorm:"not null" json:"updated_at"`
}

// NewInviteCode generates a random 6-character invite code
func NewInviteCode() (string, error) {
	buf := make([]byte, InviteCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate invite code: %w", err)
	}
	for i, b := range buf {
		buf[i] = InviteCodeAlphabet[int(b)%len(InviteCodeAlphabet)]
	}
	return string(buf), nil
}

// BeforeCreate hook assigns an ID and an invite code when missing
func (g *Group) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.InviteCode == "" {
		code, err := NewInviteCode()
		if err != nil {
			return err
		}
		g.InviteCode = code
	}
	now := time.Now()
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	if g.UpdatedAt.IsZero() {
		g.UpdatedAt = now
	}
	return nil
}

// BeforeSave hook is called before saving the group
func (g *Group) BeforeSave(tx *gorm.DB) error {
	g.UpdatedAt = time.Now()
	return nil
}

// TableName specifies the table name for the Group model
func (Group) TableName() string {
	return "care_group"
}

// Owner returns the user ID of the group owner (first member)
func (g *Group) Owner() string {
	if len(g.Members) == 0 {
		return ""
	}
	return g.Members[0]
}

// HasMember reports whether the given user ID is in the member list
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// RemoveMember removes the given user ID, preserving the order of the rest
func (g *Group) RemoveMember(userID string) {
	members := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		if m != userID {
			members = append(members, m)
		}
	}
	g.Members = members
}

// JoinGroupRequest represents the data needed to join a group by invite code
type JoinGroupRequest struct {
	InviteCode string `json:"invite_code" binding:"required,len=6"`
}

// EmailInviteRequest represents the data needed to email an invite code
type EmailInviteRequest struct {
	Email string `json:"email" binding:"required,email"`
}
