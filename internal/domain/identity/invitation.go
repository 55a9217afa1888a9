package identity

import (
	"time"

	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InvitationStatus represents the state of an invitation
type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusRevoked  InvitationStatus = "revoked"
	InvitationStatusExpired  InvitationStatus = "expired"
)

// InvitationStatusTransitions is the allowed status graph for invitations
var InvitationStatusTransitions = shared.NewTransitions("invitation status", map[InvitationStatus][]InvitationStatus{
	InvitationStatusPending:  {InvitationStatusAccepted, InvitationStatusRevoked, InvitationStatusExpired},
	InvitationStatusAccepted: {},
	InvitationStatusRevoked:  {},
	InvitationStatusExpired:  {},
})

// Invitation lets an admin pre-assign a role to an email address
type Invitation struct {
	shared.BaseEntity
	Email      string           `gorm:"type:varchar(200);not null;index" json:"email"`
	Role       Role             `gorm:"type:varchar(20);not null" json:"role"`
	Token      string           `gorm:"type:varchar(100);not null;uniqueIndex" json:"-"`
	InvitedBy  uuid.UUID        `gorm:"type:uuid;not null" json:"invited_by"`
	ExpiresAt  time.Time        `gorm:"not null" json:"expires_at"`
	AcceptedAt *time.Time       `json:"accepted_at"`
	Status     InvitationStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
}

// TableName returns the table name for GORM
func (Invitation) TableName() string {
	return "user_invitations"
}

// NewInvitation creates a pending invitation valid for ttl
func NewInvitation(email string, role Role, invitedBy uuid.UUID, ttl time.Duration) (*Invitation, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, shared.NewInvalidInputError("Invalid role")
	}
	return &Invitation{
		BaseEntity: shared.NewBaseEntity(),
		Email:      email,
		Role:       role,
		Token:      uuid.NewString(),
		InvitedBy:  invitedBy,
		ExpiresAt:  time.Now().Add(ttl),
		Status:     InvitationStatusPending,
	}, nil
}

// Usable reports whether the invitation can still be accepted for email
func (i *Invitation) Usable(email string, now time.Time) bool {
	return i.Status == InvitationStatusPending && now.Before(i.ExpiresAt) && i.Email == email
}

// Accept marks the invitation accepted
func (i *Invitation) Accept() error {
	if time.Now().After(i.ExpiresAt) && i.Status == InvitationStatusPending {
		i.Status = InvitationStatusExpired
		i.Touch()
		return shared.NewInvalidStateError("Invitation has expired")
	}
	if err := InvitationStatusTransitions.Check(i.Status, InvitationStatusAccepted); err != nil {
		return err
	}
	now := time.Now()
	i.Status = InvitationStatusAccepted
	i.AcceptedAt = &now
	i.UpdatedAt = now
	return nil
}

// Revoke cancels a pending invitation
func (i *Invitation) Revoke() error {
	if err := InvitationStatusTransitions.Check(i.Status, InvitationStatusRevoked); err != nil {
		return err
	}
	i.Status = InvitationStatusRevoked
	i.Touch()
	return nil
}
