package persistence

import (
	"fmt"

	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/cultivo/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrIdentityRequired is returned when a write on the restricted handle carries no caller
var ErrIdentityRequired = shared.NewDomainError("UNAUTHORIZED", "Authenticated identity required for this operation")

// ErrInvalidIdentity is returned when the caller id in the context is not a uuid
var ErrInvalidIdentity = shared.NewDomainError("UNAUTHORIZED", "Invalid identity in request context")

// IdentityGuard rejects writes that do not carry an authenticated caller
type IdentityGuard struct {
	required bool
}

// NewIdentityGuard creates a guard. When required is false, missing identities are allowed.
func NewIdentityGuard(required bool) *IdentityGuard {
	return &IdentityGuard{required: required}
}

// RegisterIdentityGuard installs the guard on the write callbacks of db
func RegisterIdentityGuard(db *gorm.DB, required bool) error {
	g := NewIdentityGuard(required)
	if err := db.Callback().Create().Before("gorm:create").Register("identity:before_create", g.check); err != nil {
		return fmt.Errorf("failed to register create guard: %w", err)
	}
	if err := db.Callback().Update().Before("gorm:update").Register("identity:before_update", g.check); err != nil {
		return fmt.Errorf("failed to register update guard: %w", err)
	}
	if err := db.Callback().Delete().Before("gorm:delete").Register("identity:before_delete", g.check); err != nil {
		return fmt.Errorf("failed to register delete guard: %w", err)
	}
	return nil
}

// RemoveIdentityGuard removes the callbacks installed by RegisterIdentityGuard
func RemoveIdentityGuard(db *gorm.DB) {
	_ = db.Callback().Create().Remove("identity:before_create")
	_ = db.Callback().Update().Remove("identity:before_update")
	_ = db.Callback().Delete().Remove("identity:before_delete")
}

func (g *IdentityGuard) check(db *gorm.DB) {
	if db.Statement.Context == nil {
		if g.required {
			_ = db.AddError(ErrIdentityRequired)
		}
		return
	}
	userID := logger.UserID(db.Statement.Context)
	if userID == "" {
		if g.required {
			_ = db.AddError(ErrIdentityRequired)
		}
		return
	}
	if _, err := uuid.Parse(userID); err != nil {
		_ = db.AddError(ErrInvalidIdentity)
	}
}
