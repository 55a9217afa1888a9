package identity

import (
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Password cost for bcrypt
const bcryptCost = 12

// Role is the coarse permission level of a profile
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleManager   Role = "manager"
	RoleQAManager Role = "qa_manager"
	RoleOperator  Role = "operator"
	RoleViewer    Role = "viewer"
)

// IsValid checks if the role is known
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleQAManager, RoleOperator, RoleViewer:
		return true
	}
	return false
}

// ProfileStatus represents the account status of a profile
type ProfileStatus string

const (
	ProfileStatusPending   ProfileStatus = "pending"
	ProfileStatusActive    ProfileStatus = "active"
	ProfileStatusInactive  ProfileStatus = "inactive"
	ProfileStatusSuspended ProfileStatus = "suspended"
)

// ProfileStatusTransitions is the allowed status graph for profiles
var ProfileStatusTransitions = shared.NewTransitions("profile status", map[ProfileStatus][]ProfileStatus{
	ProfileStatusPending:   {ProfileStatusActive, ProfileStatusInactive},
	ProfileStatusActive:    {ProfileStatusInactive, ProfileStatusSuspended},
	ProfileStatusInactive:  {ProfileStatusActive},
	ProfileStatusSuspended: {ProfileStatusActive, ProfileStatusInactive},
})

// Profile is an application user
type Profile struct {
	shared.BaseEntity
	Email             string        `gorm:"type:varchar(200);not null;uniqueIndex" json:"email"`
	PasswordHash      string        `gorm:"type:varchar(255);not null" json:"-"`
	FullName          string        `gorm:"type:varchar(200)" json:"full_name"`
	Role              Role          `gorm:"type:varchar(20);not null;default:'viewer';index" json:"role"`
	Status            ProfileStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	EmailVerified     bool          `gorm:"not null;default:false" json:"email_verified"`
	VerificationToken *string       `gorm:"type:varchar(100);index" json:"-"`
	ResetToken        *string       `gorm:"type:varchar(100);index" json:"-"`
	ResetExpiresAt    *time.Time    `json:"-"`
	LastLoginAt       *time.Time    `json:"last_login_at"`
}

// TableName returns the table name for GORM
func (Profile) TableName() string {
	return "profiles"
}

// NewProfile creates a pending profile with a verification token
func NewProfile(email, password, fullName string, role Role) (*Profile, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, shared.NewInvalidInputError("Invalid role")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	token := uuid.NewString()
	return &Profile{
		BaseEntity:        shared.NewBaseEntity(),
		Email:             email,
		PasswordHash:      hash,
		FullName:          strings.TrimSpace(fullName),
		Role:              role,
		Status:            ProfileStatusPending,
		VerificationToken: &token,
	}, nil
}

// NormalizeEmail lower-cases and validates an address
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", shared.NewInvalidInputError("Email is required")
	}
	if len(email) > 200 {
		return "", shared.NewInvalidInputError("Email cannot exceed 200 characters")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", shared.NewInvalidInputError("Invalid email format")
	}
	return email, nil
}

// IsActive reports whether the profile may use the API
func (p *Profile) IsActive() bool {
	return p.Status == ProfileStatusActive
}

// DisplayName returns the full name, or the email when no name is set
func (p *Profile) DisplayName() string {
	if p.FullName != "" {
		return p.FullName
	}
	return p.Email
}

// VerifyPassword checks a plaintext password against the stored hash
func (p *Profile) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)) == nil
}

// SetPassword validates and hashes a new password, clearing any reset token
func (p *Profile) SetPassword(password string) error {
	if err := validatePassword(password); err != nil {
		return err
	}
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	p.PasswordHash = hash
	p.ResetToken = nil
	p.ResetExpiresAt = nil
	p.Touch()
	return nil
}

// ChangePassword replaces the password after checking the current one
func (p *Profile) ChangePassword(oldPassword, newPassword string) error {
	if !p.VerifyPassword(oldPassword) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}
	return p.SetPassword(newPassword)
}

// Activate marks the profile active and verified
func (p *Profile) Activate() error {
	if p.Status == ProfileStatusActive {
		return nil
	}
	if err := ProfileStatusTransitions.Check(p.Status, ProfileStatusActive); err != nil {
		return err
	}
	p.Status = ProfileStatusActive
	p.EmailVerified = true
	p.VerificationToken = nil
	p.Touch()
	return nil
}

// ChangeStatus moves the profile along the status graph
func (p *Profile) ChangeStatus(target ProfileStatus) error {
	if target == ProfileStatusActive {
		return p.Activate()
	}
	if err := ProfileStatusTransitions.Check(p.Status, target); err != nil {
		return err
	}
	p.Status = target
	p.Touch()
	return nil
}

// ChangeRole assigns a new role
func (p *Profile) ChangeRole(role Role) error {
	if !role.IsValid() {
		return shared.NewInvalidInputError("Invalid role")
	}
	p.Role = role
	p.Touch()
	return nil
}

// IssueResetToken sets a password reset token valid for ttl
func (p *Profile) IssueResetToken(ttl time.Duration) string {
	token := uuid.NewString()
	expires := time.Now().Add(ttl)
	p.ResetToken = &token
	p.ResetExpiresAt = &expires
	p.Touch()
	return token
}

// ResetTokenValid reports whether the reset token is present and unexpired
func (p *Profile) ResetTokenValid(now time.Time) bool {
	return p.ResetToken != nil && p.ResetExpiresAt != nil && now.Before(*p.ResetExpiresAt)
}

// RecordLogin stores the login time
func (p *Profile) RecordLogin() {
	now := time.Now()
	p.LastLoginAt = &now
	p.UpdatedAt = now
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	var hasLetter, hasNumber bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasNumber = true
		}
	}
	if !hasLetter || !hasNumber {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
