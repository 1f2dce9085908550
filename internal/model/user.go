package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// AdminGroupID is the sentinel group granting action on any group's requests.
const AdminGroupID = 0

// User represents an account in the approval system. GroupIDs scopes which
// requesters an approver may act for; membership in group 0 lifts the scope
// entirely.
type User struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name       string         `gorm:"type:varchar(255);not null" json:"name"`
	Username   string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	Password   string         `gorm:"type:varchar(255);not null" json:"-"` // Omit password from JSON requests/responses
	Role       Role           `gorm:"type:varchar(20);not null" json:"role"`
	Department string         `gorm:"type:varchar(255)" json:"department"`
	GroupIDs   pq.Int64Array  `gorm:"type:integer[]" json:"group_ids"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"` // GORM soft delete
}

// IsAdminGroup reports whether the user belongs to the any-group sentinel.
func (u *User) IsAdminGroup() bool {
	for _, g := range u.GroupIDs {
		if g == AdminGroupID {
			return true
		}
	}
	return false
}

// RefreshToken stores long-lived tokens allowing users to request new access tokens
type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Token     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
