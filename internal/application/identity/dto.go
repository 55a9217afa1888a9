package identity

import (
	"time"

	"github.com/cultivo/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// SignupInput contains the input for account registration
type SignupInput struct {
	Email           string
	Password        string
	FullName        string
	InvitationToken string
}

// SignupResult contains the created profile
type SignupResult struct {
	User                 UserInfo
	RequiresVerification bool
}

// LoginInput contains the input for user login
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
	User                  UserInfo
}

// RefreshTokenResult contains the result of a token refresh
type RefreshTokenResult struct {
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
	TokenType             string
}

// ChangePasswordInput contains the input for password change
type ChangePasswordInput struct {
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

// UserInfo is the public view of a profile
type UserInfo struct {
	ID            uuid.UUID              `json:"id"`
	Email         string                 `json:"email"`
	FullName      string                 `json:"full_name"`
	Role          identity.Role          `json:"role"`
	Status        identity.ProfileStatus `json:"status"`
	EmailVerified bool                   `json:"email_verified"`
	LastLoginAt   *time.Time             `json:"last_login_at"`
	CreatedAt     time.Time              `json:"created_at"`
}

// ToUserInfo converts a profile to its public view
func ToUserInfo(p identity.Profile) UserInfo {
	return UserInfo{
		ID:            p.ID,
		Email:         p.Email,
		FullName:      p.FullName,
		Role:          p.Role,
		Status:        p.Status,
		EmailVerified: p.EmailVerified,
		LastLoginAt:   p.LastLoginAt,
		CreatedAt:     p.CreatedAt,
	}
}

// UpdateUserRequest changes the role or status of a profile
type UpdateUserRequest struct {
	Role   *identity.Role          `json:"role" binding:"omitempty,oneof=admin manager qa_manager operator viewer"`
	Status *identity.ProfileStatus `json:"status" binding:"omitempty,oneof=active inactive suspended"`
}

// InviteUserRequest invites an email address with a preassigned role
type InviteUserRequest struct {
	Email string        `json:"email" binding:"required,email,max=200"`
	Role  identity.Role `json:"role" binding:"required,oneof=admin manager qa_manager operator viewer"`
}
