package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/cultivo/backend/internal/infrastructure/config"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Gateway holds the two database handles the application runs on.
// Privileged uses the admin credentials and bypasses row-level rules; Restricted
// uses the restricted credentials and is subject to the caller's identity.
type Gateway struct {
	Privileged *gorm.DB
	Restricted *gorm.DB
}

// NewGateway opens both handles and verifies they are reachable
func NewGateway(cfg *config.DatabaseConfig, gormLogger gormlogger.Interface, log *zap.Logger) (*Gateway, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if gormLogger == nil {
		gormLogger = gormlogger.Default.LogMode(gormlogger.Silent)
	}

	privileged, err := open(cfg.DSN(), cfg, gormLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to open privileged handle: %w", err)
	}

	if !cfg.HasRestrictedCredentials() {
		log.Warn("Restricted database credentials not configured, falling back to privileged credentials",
			zap.String("user", cfg.User))
	}
	restricted, err := open(cfg.RestrictedDSN(), cfg, gormLogger)
	if err != nil {
		closeHandle(privileged)
		return nil, fmt.Errorf("failed to open restricted handle: %w", err)
	}
	if err := RegisterIdentityGuard(restricted, true); err != nil {
		closeHandle(privileged)
		closeHandle(restricted)
		return nil, err
	}

	return &Gateway{Privileged: privileged, Restricted: restricted}, nil
}

// NewGatewayFromDB wraps existing handles, mainly for tests
func NewGatewayFromDB(privileged, restricted *gorm.DB) *Gateway {
	if restricted == nil {
		restricted = privileged
	}
	return &Gateway{Privileged: privileged, Restricted: restricted}
}

func open(dsn string, cfg *config.DatabaseConfig, gormLogger gormlogger.Interface) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func closeHandle(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Transaction runs fn inside a transaction on the restricted handle
func (g *Gateway) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return NewTransactor(g.Restricted).WithinTransaction(ctx, fn)
}

// Ping checks that both handles are alive
func (g *Gateway) Ping(ctx context.Context) error {
	for name, db := range g.handles() {
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("failed to get underlying sql.DB (%s): %w", name, err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return fmt.Errorf("%s handle: %w", name, err)
		}
	}
	return nil
}

// Close closes both connection pools. Handles that share a pool are closed once.
func (g *Gateway) Close() error {
	var firstErr error
	for _, db := range g.handles() {
		if err := closeHandle(db); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (g *Gateway) handles() map[string]*gorm.DB {
	out := map[string]*gorm.DB{"privileged": g.Privileged}
	if g.Restricted != nil && g.Restricted != g.Privileged {
		out["restricted"] = g.Restricted
	}
	return out
}

// Stats returns pool statistics of the restricted handle, which serves most traffic
func (g *Gateway) Stats() (ConnectionStats, error) {
	sqlDB, err := g.Restricted.DB()
	if err != nil {
		return ConnectionStats{}, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	stats := sqlDB.Stats()
	return ConnectionStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration,
		MaxIdleClosed:      stats.MaxIdleClosed,
		MaxIdleTimeClosed:  stats.MaxIdleTimeClosed,
		MaxLifetimeClosed:  stats.MaxLifetimeClosed,
	}, nil
}

// ConnectionStats holds database connection pool statistics
type ConnectionStats struct {
	MaxOpenConnections int
	OpenConnections    int
	InUse              int
	Idle               int
	WaitCount          int64
	WaitDuration       time.Duration
	MaxIdleClosed      int64
	MaxIdleTimeClosed  int64
	MaxLifetimeClosed  int64
}
