package identity

import (
	"context"

	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProfileRepository defines the persistence operations for profiles
type ProfileRepository interface {
	shared.Repository[Profile]
	FindByEmail(ctx context.Context, email string) (*Profile, error)
	FindByVerificationToken(ctx context.Context, token string) (*Profile, error)
	FindByResetToken(ctx context.Context, token string) (*Profile, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Profile, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// InvitationRepository defines the persistence operations for invitations
type InvitationRepository interface {
	shared.Repository[Invitation]
	FindByToken(ctx context.Context, token string) (*Invitation, error)
}

// AuditLogRepository defines the persistence operations for the audit log
type AuditLogRepository interface {
	Create(ctx context.Context, entry *AuditLog) error
	FindAll(ctx context.Context, filter shared.Filter) ([]AuditLog, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
