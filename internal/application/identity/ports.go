package identity

import (
	"context"
	"time"

	"github.com/cultivo/backend/internal/domain/identity"
)

// Notifier delivers account emails. Links are built by the implementation.
type Notifier interface {
	SendVerification(ctx context.Context, to, name, token string) error
	SendPasswordReset(ctx context.Context, to, name, token string, expiresAt time.Time) error
	SendInvitation(ctx context.Context, to string, role identity.Role, token string, expiresAt time.Time) error
}
