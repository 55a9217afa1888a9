package persistence

import (
	"context"

	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/cultivo/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
)

type txKey struct{}

// Transactor implements shared.Transactor with gorm transactions. The transaction
// travels in the context, so repositories called with that context join it.
type Transactor struct {
	db *gorm.DB
}

// NewTransactor creates a Transactor on db
func NewTransactor(db *gorm.DB) *Transactor {
	return &Transactor{db: db}
}

// WithinTransaction runs fn in a transaction. A nested call reuses the outer transaction.
func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := setLocalIdentity(tx, logger.UserID(ctx)); err != nil {
			return err
		}
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// setLocalIdentity exposes the caller to row-level policies for the rest of the transaction
func setLocalIdentity(tx *gorm.DB, userID string) error {
	if userID == "" || !isPostgres(tx) {
		return nil
	}
	return tx.Exec("SELECT set_config('app.current_user_id', ?, true)", userID).Error
}

// conn returns the transaction carried by ctx, or db bound to ctx
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

func isPostgres(db *gorm.DB) bool {
	return db.Dialector != nil && db.Dialector.Name() == "postgres"
}

var _ shared.Transactor = (*Transactor)(nil)
