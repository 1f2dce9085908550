package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Role enumerates the positions in the approval chain. REQUESTER never
// approves anything; the other four are drawn from per-type hierarchies.
type Role string

const (
	RoleRequester    Role = "REQUESTER"
	RoleGroupLead    Role = "GROUP_LEAD"
	RoleDeputy       Role = "DEPUTY"
	RoleNetworkHead  Role = "NETWORK_HEAD"
	RoleNetworkAdmin Role = "NETWORK_ADMIN"
)

// AllRoles lists every valid role, used for registration validation.
var AllRoles = []Role{RoleRequester, RoleGroupLead, RoleDeputy, RoleNetworkHead, RoleNetworkAdmin}

// IsValid reports whether r is one of the defined roles.
func (r Role) IsValid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}

// Status enum for a request row and for individual history entries.
// APPROVED only ever appears inside the approval history; a request row
// itself is PENDING until the last approver acts (COMPLETED) or someone
// rejects (REJECTED).
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusCompleted Status = "COMPLETED"
)

// IsTerminal reports whether no further transitions are permitted.
func (s Status) IsTerminal() bool {
	return s == StatusRejected || s == StatusCompleted
}

// RequestType enum constants
type RequestType string

const (
	RequestTypeFileTransfer RequestType = "FILE_TRANSFER"
	RequestTypeBackup       RequestType = "BACKUP"
	RequestTypeVDI          RequestType = "VDI"
)

// Approval is one immutable entry in a request's approval history.
// Entries are appended by the state machine and never edited afterwards.
type Approval struct {
	ApproverRole    Role      `json:"approverRole"`
	ApproverName    string    `json:"approverName"`
	Status          Status    `json:"status"` // APPROVED, REJECTED or COMPLETED
	Date            time.Time `json:"date"`
	RejectionReason string    `json:"rejectionReason,omitempty"`
}

// ApprovalLog is the append-only history column, stored as a jsonb array.
type ApprovalLog []Approval

// Request represents one submitted request routed through its type's
// approval hierarchy until completed or rejected.
type Request struct {
	ID              string         `gorm:"type:varchar(20);primaryKey" json:"id"` // human-readable, e.g. "req-007"
	RequesterID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"requester_id"`
	Requester       *User          `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	RequesterName   string         `gorm:"type:varchar(255);not null" json:"requester_name"`
	Department      string         `gorm:"type:varchar(255)" json:"department"`
	RequestType     RequestType    `gorm:"type:varchar(20);not null;index" json:"request_type"`
	Payload         datatypes.JSON `gorm:"type:jsonb;not null" json:"payload"` // type-specific detail rows, tagged by RequestType
	Status          Status         `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	CurrentApprover *Role          `gorm:"type:varchar(20);index" json:"current_approver"` // null once terminal
	ApprovalHistory ApprovalLog    `gorm:"type:jsonb;serializer:json;not null;default:'[]'" json:"approval_history"`
	RejectionReason string         `gorm:"type:text" json:"rejection_reason,omitempty"` // set iff status == REJECTED
	CreatedAt       time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}
