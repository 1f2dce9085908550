package model

import (
	"time"

	"github.com/google/uuid"
)

// Audit action constants
const (
	ActionCreateRequest   = "CREATE_REQUEST"
	ActionApproveRequest  = "APPROVE_REQUEST"
	ActionRejectRequest   = "REJECT_REQUEST"
	ActionSetLetterNumber = "SET_LETTER_NUMBER"
	ActionRegisterUser    = "REGISTER_USER"
	ActionChangePassword  = "CHANGE_PASSWORD"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Request ID or user UUID
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
