package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cultivo/backend/internal/domain/qms"
	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/cultivo/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockHandle creates a postgres gorm handle on a mocked SQL connection
func newMockHandle(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func withCaller(id uuid.UUID) context.Context {
	ctx, _ := logger.WithUserID(context.Background(), zap.NewNop(), id.String())
	return ctx
}

type guardModel struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string
}

func TestConnectionStats_Struct(t *testing.T) {
	stats := ConnectionStats{OpenConnections: 10, InUse: 6, Idle: 4}
	assert.Equal(t, stats.OpenConnections, stats.InUse+stats.Idle)
}

func TestNewGatewayFromDB(t *testing.T) {
	t.Run("restricted defaults to privileged", func(t *testing.T) {
		db, _, mockDB := newMockHandle(t)
		defer mockDB.Close()

		gw := NewGatewayFromDB(db, nil)
		assert.Same(t, gw.Privileged, gw.Restricted)
		assert.Len(t, gw.handles(), 1)
	})

	t.Run("keeps distinct handles", func(t *testing.T) {
		priv, _, privDB := newMockHandle(t)
		defer privDB.Close()
		restr, _, restrDB := newMockHandle(t)
		defer restrDB.Close()

		gw := NewGatewayFromDB(priv, restr)
		assert.NotSame(t, gw.Privileged, gw.Restricted)
		assert.Len(t, gw.handles(), 2)
	})
}

func TestGateway_Ping(t *testing.T) {
	t.Run("successful ping", func(t *testing.T) {
		db, mock, mockDB := newMockHandle(t)
		defer mockDB.Close()

		mock.ExpectPing()

		gw := NewGatewayFromDB(db, nil)
		assert.NoError(t, gw.Ping(context.Background()))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ping failure is reported", func(t *testing.T) {
		db, mock, mockDB := newMockHandle(t)
		defer mockDB.Close()

		mock.ExpectPing().WillReturnError(assert.AnError)

		gw := NewGatewayFromDB(db, nil)
		err := gw.Ping(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "privileged")
	})
}

func TestGateway_Close(t *testing.T) {
	db, mock, _ := newMockHandle(t)

	mock.ExpectClose()

	gw := NewGatewayFromDB(db, db)
	assert.NoError(t, gw.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGateway_Stats(t *testing.T) {
	db, _, mockDB := newMockHandle(t)
	defer mockDB.Close()

	stats, err := NewGatewayFromDB(db, nil).Stats()
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, stats.OpenConnections, 0)
	assert.GreaterOrEqual(t, stats.WaitDuration, time.Duration(0))
}

func TestGateway_Transaction(t *testing.T) {
	t.Run("commits and sets the caller for row-level policies", func(t *testing.T) {
		db, mock, mockDB := newMockHandle(t)
		defer mockDB.Close()

		caller := uuid.New()
		mock.ExpectBegin()
		mock.ExpectExec(`SELECT set_config\('app.current_user_id', \$1, true\)`).
			WithArgs(caller.String()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO "guard_models"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		gw := NewGatewayFromDB(db, nil)
		err := gw.Transaction(withCaller(caller), func(ctx context.Context) error {
			return conn(ctx, gw.Restricted).Create(&guardModel{ID: uuid.New(), Name: "x"}).Error
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		db, mock, mockDB := newMockHandle(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		gw := NewGatewayFromDB(db, nil)
		err := gw.Transaction(context.Background(), func(ctx context.Context) error {
			return assert.AnError
		})

		assert.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nested calls share one transaction", func(t *testing.T) {
		db, mock, mockDB := newMockHandle(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectCommit()

		tr := NewTransactor(db)
		calls := 0
		err := tr.WithinTransaction(context.Background(), func(ctx context.Context) error {
			return tr.WithinTransaction(ctx, func(inner context.Context) error {
				calls++
				assert.Same(t, ctx.Value(txKey{}), inner.Value(txKey{}))
				return nil
			})
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEbrRepository_WritesSetCallerFirst(t *testing.T) {
	db, mock, mockDB := newMockHandle(t)
	defer mockDB.Close()
	require.NoError(t, RegisterIdentityGuard(db, true))

	caller := uuid.New()
	ctx := withCaller(caller)
	record, err := qms.NewEbrRecord(qms.BatchSnapshot{BatchID: uuid.New(), BatchName: "Blue Dream #1"}, caller)
	require.NoError(t, err)

	tr := NewTransactor(db)
	repo := NewGormEbrRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`SELECT set_config\('app.current_user_id', \$1, true\)`).
		WithArgs(caller.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO "qms_ebr"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectBegin()
	mock.ExpectExec(`SELECT set_config\('app.current_user_id', \$1, true\)`).
		WithArgs(caller.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "qms_ebr" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, tr.WithinTransaction(ctx, func(ctx context.Context) error {
		return repo.Create(ctx, record)
	}))
	require.NoError(t, record.Approve(caller, "Released"))
	require.NoError(t, tr.WithinTransaction(ctx, func(ctx context.Context) error {
		return repo.Save(ctx, record)
	}))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdentityGuard(t *testing.T) {
	t.Run("rejects writes without a caller", func(t *testing.T) {
		db, mock, mockDB := newMockHandle(t)
		defer mockDB.Close()
		require.NoError(t, RegisterIdentityGuard(db, true))

		err := db.WithContext(context.Background()).Create(&guardModel{ID: uuid.New()}).Error
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrUnauthorized)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects a malformed caller id", func(t *testing.T) {
		db, _, mockDB := newMockHandle(t)
		defer mockDB.Close()
		require.NoError(t, RegisterIdentityGuard(db, true))

		ctx, _ := logger.WithUserID(context.Background(), zap.NewNop(), "not-a-uuid")
		err := db.WithContext(ctx).Create(&guardModel{ID: uuid.New()}).Error
		assert.ErrorIs(t, err, ErrInvalidIdentity)
	})

	t.Run("allows writes with a caller", func(t *testing.T) {
		db, mock, mockDB := newMockHandle(t)
		defer mockDB.Close()
		require.NoError(t, RegisterIdentityGuard(db, true))

		mock.ExpectExec(`INSERT INTO "guard_models"`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := db.WithContext(withCaller(uuid.New())).Create(&guardModel{ID: uuid.New(), Name: "ok"}).Error
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("installs on every write callback", func(t *testing.T) {
		db, _, mockDB := newMockHandle(t)
		defer mockDB.Close()

		require.NoError(t, RegisterIdentityGuard(db, true))
		assert.NotNil(t, db.Callback().Create().Get("identity:before_create"))
		assert.NotNil(t, db.Callback().Update().Get("identity:before_update"))
		assert.NotNil(t, db.Callback().Delete().Get("identity:before_delete"))

		RemoveIdentityGuard(db)
		assert.Nil(t, db.Callback().Create().Get("identity:before_create"))
	})

	t.Run("optional guard lets anonymous writes through", func(t *testing.T) {
		db, mock, mockDB := newMockHandle(t)
		defer mockDB.Close()
		require.NoError(t, RegisterIdentityGuard(db, false))

		mock.ExpectExec(`INSERT INTO "guard_models"`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := db.WithContext(context.Background()).Create(&guardModel{ID: uuid.New()}).Error
		assert.NoError(t, err)
	})
}

func TestStockLevelRepository_LocksOnPostgres(t *testing.T) {
	db, mock, mockDB := newMockHandle(t)
	defer mockDB.Close()

	lotID := uuid.New()
	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM "stock_levels" WHERE lot_id = \$1 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "lot_id", "available_quantity", "reserved_quantity", "created_at", "updated_at"}).
			AddRow(uuid.NewString(), lotID.String(), "10", "0", now, now))

	level, err := NewGormStockLevelRepository(db).FindByLotForUpdate(context.Background(), lotID)
	require.NoError(t, err)
	assert.Equal(t, "10", level.AvailableQuantity.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}
