package domain

import (
	"context"
	"time"
)

type Service interface {
	// Register creates an inactive user and mails the activation link.
	Register(ctx context.Context, req RegisterRequest) (*UserResponse, error)
	Activate(ctx context.Context, uidb64, token string) error
	RequestPasswordReset(ctx context.Context, email string) (*UserResponse, error)
	CheckResetLink(ctx context.Context, uidb64, token string) error
	SetNewPassword(ctx context.Context, req SetPasswordRequest) (*UserResponse, error)

	IssueTokens(ctx context.Context, req TokenRequest) (*TokenPair, error)
	Refresh(ctx context.Context, rawRefresh string) (*TokenPair, error)
	Authenticate(ctx context.Context, rawAccess string) (*User, error)

	List(ctx context.Context) ([]UserResponse, error)
	GetByUsername(ctx context.Context, username string) (*UserResponse, error)
	Update(ctx context.Context, username string, req UpdateUserRequest) (*UserResponse, error)
	Delete(ctx context.Context, username string) error
}

type RegisterRequest struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// UpdateUserRequest changes only the non-nil fields.
type UpdateUserRequest struct {
	Username  *string
	Email     *string
	FirstName *string
	LastName  *string
	Password  *string
}

type SetPasswordRequest struct {
	Username string
	Password string
	UID      string
	Token    string
}

type TokenRequest struct {
	Username  string
	Password  string
	UserAgent string
	IPAddress string
}

type TokenPair struct {
	Access           string    `json:"access"`
	Refresh          string    `json:"refresh,omitempty"`
	AccessExpiresAt  time.Time `json:"-"`
	RefreshExpiresAt time.Time `json:"-"`
}

// Notifier delivers account links to users.
type Notifier interface {
	SendActivation(ctx context.Context, user UserResponse, link string) error
	SendPasswordReset(ctx context.Context, user UserResponse, link string) error
}

// RoleAssigner grants the default role to new users and drops the
// grants of deleted ones.
type RoleAssigner interface {
	AssignDefaultRole(ctx context.Context, userID string) error
	RemoveUser(ctx context.Context, userID string) error
}
