// Package domain contains core types for the auth service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// User represents an operator account. Accounts start inactive and are
// activated through the emailed link.
type User struct {
	ID                  snowflake.ID      `gorm:"primaryKey;autoIncrement:false"`
	Username            string            `gorm:"size:150;not null;uniqueIndex"`
	Email               string            `gorm:"size:254;not null;uniqueIndex"`
	FirstName           string            `gorm:"size:150;not null"`
	LastName            string            `gorm:"size:150;not null"`
	PasswordHash        string            `gorm:"type:text;not null"`
	IsActive            bool              `gorm:"not null"`
	LastPasswordChanged *time.Time        `gorm:"column:last_password_changed"`
	LastLogin           *time.Time        `gorm:"column:last_login"`
	Metadata            datatypes.JSONMap `gorm:"not null"`
	CreatedAt           time.Time         `gorm:"not null"`
	UpdatedAt           time.Time         `gorm:"not null"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// Session holds one access/refresh token pair. Only SHA-256 hashes of the
// raw tokens are stored.
type Session struct {
	ID               snowflake.ID `gorm:"primaryKey;autoIncrement:false"`
	UserID           snowflake.ID `gorm:"column:user_id;not null;index"`
	AccessTokenHash  string       `gorm:"column:access_token_hash;size:64;not null;uniqueIndex"`
	RefreshTokenHash string       `gorm:"column:refresh_token_hash;size:64;not null;uniqueIndex"`
	UserAgent        string       `gorm:"column:user_agent;type:text"`
	IPAddress        string       `gorm:"column:ip_address;size:64"`
	AccessExpiresAt  time.Time    `gorm:"column:access_expires_at;not null"`
	RefreshExpiresAt time.Time    `gorm:"column:refresh_expires_at;not null;index"`
	RevokedAt        *time.Time   `gorm:"column:revoked_at"`
	CreatedAt        time.Time    `gorm:"column:created_at;not null"`
	LastSeenAt       time.Time    `gorm:"column:last_seen_at;not null"`
}

// TableName sets the database table name.
func (Session) TableName() string { return "sessions" }

// UserResponse is the public view of a user; it never carries the hash.
type UserResponse struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	IsActive  bool       `json:"is_active"`
	LastLogin *time.Time `json:"last_login"`
	CreatedAt time.Time  `json:"date_joined"`
}

func (u User) Response() UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsActive:  u.IsActive,
		LastLogin: u.LastLogin,
		CreatedAt: u.CreatedAt,
	}
}
