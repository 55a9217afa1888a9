package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cultivo/backend/internal/domain/identity"
	"github.com/cultivo/backend/internal/domain/inventory"
	"github.com/cultivo/backend/internal/domain/qms"
	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/cultivo/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newSQLiteDB opens an in-memory database with every table migrated
func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a single connection keeps the in-memory database alive
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	return db
}

func newEbr(t *testing.T, batchName string, createdAt time.Time) *qms.EbrRecord {
	t.Helper()
	r, err := qms.NewEbrRecord(qms.BatchSnapshot{
		BatchID:     uuid.New(),
		BatchName:   batchName,
		Strain:      "Blue Dream",
		Stage:       "flowering",
		TotalPlants: 40,
	}, uuid.New())
	require.NoError(t, err)
	r.CreatedAt = createdAt
	r.UpdatedAt = createdAt
	return r
}

func TestAuditRepository_Pagination(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormAuditRepository(db)
	ctx := context.Background()
	base := time.Now().Add(-time.Hour)

	for i := 0; i < 12; i++ {
		a, err := qms.NewAudit(fmt.Sprintf("Audit %02d", i), qms.AuditTypeInternal, "GMP", base.Add(time.Duration(i)*time.Minute), "QA", uuid.New())
		require.NoError(t, err)
		a.Status = qms.AuditStatusCompleted
		require.NoError(t, repo.Create(ctx, a))
	}
	for i := 0; i < 3; i++ {
		a, err := qms.NewAudit(fmt.Sprintf("Scheduled %d", i), qms.AuditTypeExternal, "", base, "", uuid.New())
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, a))
	}

	filter := shared.DefaultFilter().With("status", string(qms.AuditStatusCompleted))
	filter.Page = 2
	filter.PageSize = 5

	records, err := repo.FindAll(ctx, filter)
	require.NoError(t, err)
	total, err := repo.Count(ctx, filter)
	require.NoError(t, err)

	page := shared.NewPageResult(records, total, filter.Page, filter.PageSize)
	assert.Len(t, page.Records, 5)
	assert.Equal(t, int64(12), page.Total)
	assert.Equal(t, 3, page.TotalPages)
	for _, a := range page.Records {
		assert.Equal(t, qms.AuditStatusCompleted, a.Status)
	}
}

func TestEbrRepository(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormEbrRepository(db)
	ctx := context.Background()
	now := time.Now()

	older := newEbr(t, "North Room Batch", now.Add(-2*time.Hour))
	newer := newEbr(t, "South Room Batch", now.Add(-time.Hour))
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	t.Run("lists newest first", func(t *testing.T) {
		records, err := repo.FindAll(ctx, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, newer.ID, records[0].ID)
		assert.Equal(t, older.ID, records[1].ID)
	})

	t.Run("free-text search is case-insensitive", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Search = "NORTH"
		records, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, older.ID, records[0].ID)
	})

	t.Run("filters by batch", func(t *testing.T) {
		count, err := repo.Count(ctx, shared.DefaultFilter().With("batch_id", newer.BatchID))
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("find by batch returns nil when absent", func(t *testing.T) {
		r, err := repo.FindByBatch(ctx, uuid.New())
		assert.NoError(t, err)
		assert.Nil(t, r)

		r, err = repo.FindByBatch(ctx, older.BatchID)
		require.NoError(t, err)
		require.NotNil(t, r)
		assert.Equal(t, older.ID, r.ID)
	})

	t.Run("missing record is NOT_FOUND", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		require.Error(t, err)
		assert.True(t, shared.IsNotFound(err))
		assert.Equal(t, "eBR record not found", err.Error())
	})

	t.Run("second record for a batch is ALREADY_EXISTS", func(t *testing.T) {
		dup := newEbr(t, "Duplicate", now)
		dup.BatchID = older.BatchID
		err := repo.Create(ctx, dup)
		require.Error(t, err)
		assert.True(t, shared.IsAlreadyExists(err))
	})

	t.Run("score rows feed the statistics", func(t *testing.T) {
		require.NoError(t, newer.Approve(uuid.New(), "ok"))
		require.NoError(t, repo.Save(ctx, newer))

		rows, err := repo.ScoreRows(ctx)
		require.NoError(t, err)
		stats := qms.ComputeEbrStatistics(rows)
		assert.Equal(t, 2, stats.TotalRecords)
		assert.Equal(t, 1, stats.PassCount)
		assert.Equal(t, 50.0, stats.ComplianceRate)
	})
}

func TestChecklistRepository_OrderedAscending(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormChecklistRepository(db)
	ctx := context.Background()
	ebrID := uuid.New()
	base := time.Now().Add(-time.Hour)

	texts := []string{"Batch record signed", "Deviations closed", "Labels verified"}
	for i := len(texts) - 1; i >= 0; i-- {
		item, err := qms.NewChecklistItem(ebrID, uuid.New(), texts[i], qms.ItemCategoryDocumentation, nil, "", []string{"s3://e/1"})
		require.NoError(t, err)
		item.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(ctx, item))
	}

	items, err := repo.FindByEbr(ctx, ebrID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	for i, item := range items {
		assert.Equal(t, texts[i], item.ChecklistText)
	}
	assert.Equal(t, shared.StringList{"s3://e/1"}, items[0].EvidenceURLs)
}

func TestDispatchRepository_SaveReplacesItems(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormDispatchRepository(db)
	ctx := context.Background()

	lotA, lotB := uuid.New(), uuid.New()
	d, err := trade.NewDispatch(uuid.New(), nil, "first", []trade.DispatchLine{
		{LotID: lotA, Quantity: decimal.NewFromInt(4)},
	}, uuid.New())
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, d))

	require.NoError(t, d.SetItems([]trade.DispatchLine{
		{LotID: lotA, Quantity: decimal.NewFromInt(2)},
		{LotID: lotB, Quantity: decimal.NewFromInt(3)},
	}))
	require.NoError(t, repo.Save(ctx, d))

	loaded, err := repo.FindByIDForUpdate(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 2)
	assert.ElementsMatch(t, []uuid.UUID{lotA, lotB}, loaded.LotIDs())

	var count int64
	require.NoError(t, db.Model(&trade.DispatchItem{}).Where("dispatch_id = ?", d.ID).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestLotRepository_SummarizeByBatch(t *testing.T) {
	db := newSQLiteDB(t)
	lots := NewGormLotRepository(db)
	levels := NewGormStockLevelRepository(db)
	ctx := context.Background()

	batchID := uuid.New()
	require.NoError(t, db.Exec("INSERT INTO batches (id, batch_number, name, strain_id, growth_cycle_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		batchID.String(), "B-001", "Batch one", uuid.NewString(), uuid.NewString(), time.Now(), time.Now()).Error)

	for _, qty := range []int64{10, 5} {
		lot, err := inventory.NewLot("", &batchID, "Dried flower", "flower", "g", decimal.NewFromInt(qty), nil, "Vault", uuid.New())
		require.NoError(t, err)
		require.NoError(t, lots.Create(ctx, lot))
		require.NoError(t, levels.Create(ctx, inventory.NewStockLevel(lot.ID, decimal.NewFromInt(qty))))
	}
	orphan, err := inventory.NewLot("", nil, "Seeds", "seed", "unit", decimal.NewFromInt(1), nil, "", uuid.New())
	require.NoError(t, err)
	require.NoError(t, lots.Create(ctx, orphan))

	summary, err := lots.SummarizeByBatch(ctx)
	require.NoError(t, err)
	require.Len(t, summary, 1)
	assert.Equal(t, "B-001", summary[0].BatchNumber)
	assert.Equal(t, int64(2), summary[0].LotCount)
	assert.True(t, decimal.NewFromInt(15).Equal(summary[0].TotalAvailable))
}

func TestStockMovementRepository_FindByLot(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormStockMovementRepository(db)
	ctx := context.Background()
	lotID := uuid.New()

	for i := 1; i <= 3; i++ {
		m := inventory.NewStockMovement(lotID, inventory.MovementTypeAdjustment, decimal.NewFromInt(int64(i)), decimal.NewFromInt(int64(10+i)), "", nil, "", uuid.New())
		m.CreatedAt = time.Now().Add(time.Duration(i) * time.Second)
		require.NoError(t, repo.Create(ctx, m))
	}
	require.NoError(t, repo.Create(ctx, inventory.NewStockMovement(uuid.New(), inventory.MovementTypeReceipt, decimal.NewFromInt(1), decimal.NewFromInt(1), "", nil, "", uuid.Nil)))

	filter := shared.DefaultFilter()
	filter.PageSize = 2
	movements, total, err := repo.FindByLot(ctx, lotID, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, movements, 2)
	assert.True(t, decimal.NewFromInt(3).Equal(movements[0].Quantity))
}

func TestProfileRepository_FindByEmail(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormProfileRepository(db)
	ctx := context.Background()

	p, err := identity.NewProfile("qa@example.com", "secret123", "QA Lead", identity.RoleQAManager)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, p))

	found, err := repo.FindByEmail(ctx, "  QA@Example.com ")
	require.NoError(t, err)
	assert.Equal(t, p.ID, found.ID)

	exists, err := repo.ExistsByEmail(ctx, "qa@EXAMPLE.com")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.FindByResetToken(ctx, "")
	assert.True(t, shared.IsNotFound(err))

	byToken, err := repo.FindByVerificationToken(ctx, *p.VerificationToken)
	require.NoError(t, err)
	assert.Equal(t, p.ID, byToken.ID)
}

func TestAuditLogRepository_Filters(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormAuditLogRepository(db)
	ctx := context.Background()
	actor := uuid.New()

	require.NoError(t, repo.Create(ctx, identity.NewAuditLog(actor, "ebr.approved", "EbrRecord", uuid.New(), map[string]string{"reason": "ok"})))
	require.NoError(t, repo.Create(ctx, identity.NewAuditLog(actor, "user.invited", "Invitation", uuid.New(), nil)))
	require.NoError(t, repo.Create(ctx, identity.NewAuditLog(uuid.New(), "ebr.rejected", "EbrRecord", uuid.New(), nil)))

	filter := shared.DefaultFilter().With("entity_type", "EbrRecord")
	entries, err := repo.FindAll(ctx, filter)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	count, err := repo.Count(ctx, shared.DefaultFilter().With("actor_id", actor))
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestEnvironmentRepository_SummarizeRooms(t *testing.T) {
	db := newSQLiteDB(t)
	repo := NewGormEnvironmentRepository(db)
	ctx := context.Background()
	th := qms.AlertThresholds{MaxTemperature: decimal.NewFromInt(30)}
	batchID := uuid.New()

	readings := []struct {
		room string
		temp int64
		at   time.Time
	}{
		{"Flower A", 24, time.Now().Add(-2 * time.Hour)},
		{"Flower A", 33, time.Now().Add(-time.Hour)},
		{"Veg 1", 22, time.Now().Add(-time.Hour)},
	}
	for _, r := range readings {
		at := r.at
		reading, err := qms.NewEnvironmentalReading(r.room, &batchID, decimal.NewNullDecimal(decimal.NewFromInt(r.temp)), decimal.NullDecimal{}, decimal.NullDecimal{}, decimal.NullDecimal{}, &at, uuid.New(), th)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, reading))
	}

	summary, err := repo.SummarizeRooms(ctx)
	require.NoError(t, err)
	require.Len(t, summary, 2)
	assert.Equal(t, "Flower A", summary[0].Room)
	assert.Equal(t, int64(2), summary[0].ReadingCount)
	assert.Equal(t, int64(1), summary[0].AlertCount)
	require.NotNil(t, summary[0].LatestReading)
	assert.True(t, summary[0].LatestReading.IsAlert)

	alerts, err := repo.CountAlertsByBatch(ctx, batchID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), alerts)
}
