package persistence

import (
	"context"

	"github.com/cultivo/backend/internal/domain/qms"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormEbrRepository implements qms.EbrRepository
type GormEbrRepository struct {
	gormRepository[qms.EbrRecord]
}

// NewGormEbrRepository creates a new GormEbrRepository
func NewGormEbrRepository(db *gorm.DB) *GormEbrRepository {
	return &GormEbrRepository{newGormRepository[qms.EbrRecord](db, "eBR record", listSpec{
		sortFields:    EbrSortFields,
		defaultSort:   "created_at",
		searchColumns: []string{"ebr_number", "batch_name", "strain", "review_notes"},
		filters: map[string]string{
			"batch_id":          "batch_id",
			"compliance_status": "compliance_status",
			"pass_fail_status":  "pass_fail_status",
		},
	})}
}

// FindByBatch returns the eBR of a batch, or nil when the batch has none
func (r *GormEbrRepository) FindByBatch(ctx context.Context, batchID uuid.UUID) (*qms.EbrRecord, error) {
	records := make([]qms.EbrRecord, 0, 1)
	if err := conn(ctx, r.db).Where("batch_id = ?", batchID).Limit(1).Find(&records).Error; err != nil {
		return nil, dbError(err, r.entity, "find")
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// ExistsByBatch checks whether the batch already has an eBR
func (r *GormEbrRepository) ExistsByBatch(ctx context.Context, batchID uuid.UUID) (bool, error) {
	return r.exists(ctx, "batch_id = ?", batchID)
}

// ScoreRows returns the verdict and score of every eBR
func (r *GormEbrRepository) ScoreRows(ctx context.Context) ([]qms.EbrScoreRow, error) {
	rows := make([]qms.EbrScoreRow, 0)
	if err := conn(ctx, r.db).Model(&qms.EbrRecord{}).
		Select("pass_fail_status", "compliance_score").
		Scan(&rows).Error; err != nil {
		return nil, dbError(err, r.entity, "aggregate")
	}
	return rows, nil
}

// GormChecklistRepository implements qms.ChecklistRepository
type GormChecklistRepository struct {
	db *gorm.DB
}

// NewGormChecklistRepository creates a new GormChecklistRepository
func NewGormChecklistRepository(db *gorm.DB) *GormChecklistRepository {
	return &GormChecklistRepository{db: db}
}

// FindByID finds a checklist item by its ID
func (r *GormChecklistRepository) FindByID(ctx context.Context, id uuid.UUID) (*qms.ChecklistItem, error) {
	var item qms.ChecklistItem
	if err := conn(ctx, r.db).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, dbError(err, "Checklist item", "find")
	}
	return &item, nil
}

// FindByEbr returns the checklist of an eBR in review order
func (r *GormChecklistRepository) FindByEbr(ctx context.Context, ebrID uuid.UUID) ([]qms.ChecklistItem, error) {
	items := make([]qms.ChecklistItem, 0)
	if err := conn(ctx, r.db).
		Where("ebr_id = ?", ebrID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, dbError(err, "Checklist item", "list")
	}
	return items, nil
}

// Create inserts a checklist item
func (r *GormChecklistRepository) Create(ctx context.Context, item *qms.ChecklistItem) error {
	return dbError(conn(ctx, r.db).Create(item).Error, "Checklist item", "create")
}

// Save updates a checklist item
func (r *GormChecklistRepository) Save(ctx context.Context, item *qms.ChecklistItem) error {
	return dbError(conn(ctx, r.db).Save(item).Error, "Checklist item", "save")
}

// GormDeviationRepository implements qms.DeviationRepository
type GormDeviationRepository struct {
	gormRepository[qms.Deviation]
}

// NewGormDeviationRepository creates a new GormDeviationRepository
func NewGormDeviationRepository(db *gorm.DB) *GormDeviationRepository {
	return &GormDeviationRepository{newGormRepository[qms.Deviation](db, "Deviation", listSpec{
		sortFields:    DeviationSortFields,
		defaultSort:   "created_at",
		searchColumns: []string{"deviation_number", "title", "description"},
		filters: map[string]string{
			"status":   "status",
			"severity": "severity",
			"batch_id": "batch_id",
		},
	})}
}

// CountByBatchAndSeverity counts the deviations of a batch with the given severity
func (r *GormDeviationRepository) CountByBatchAndSeverity(ctx context.Context, batchID uuid.UUID, severity qms.Severity) (int64, error) {
	return r.countWhere(ctx, "batch_id = ? AND severity = ?", batchID, severity)
}

// GormCapaRepository implements qms.CapaRepository
type GormCapaRepository struct {
	gormRepository[qms.Capa]
}

// NewGormCapaRepository creates a new GormCapaRepository
func NewGormCapaRepository(db *gorm.DB) *GormCapaRepository {
	return &GormCapaRepository{newGormRepository[qms.Capa](db, "CAPA", listSpec{
		sortFields:    CapaSortFields,
		defaultSort:   "created_at",
		searchColumns: []string{"capa_number", "title", "description"},
		filters: map[string]string{
			"status":       "status",
			"action_type":  "action_type",
			"deviation_id": "deviation_id",
			"assigned_to":  "assigned_to",
		},
	})}
}

// GormAuditRepository implements qms.AuditRepository
type GormAuditRepository struct {
	gormRepository[qms.Audit]
}

// NewGormAuditRepository creates a new GormAuditRepository
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{newGormRepository[qms.Audit](db, "Audit", listSpec{
		sortFields:    AuditSortFields,
		defaultSort:   "scheduled_date",
		searchColumns: []string{"title", "scope", "lead_auditor"},
		dateColumn:    "scheduled_date",
		filters:       map[string]string{"status": "status", "audit_type": "audit_type"},
	})}
}

// GormSopRepository implements qms.SopRepository
type GormSopRepository struct {
	gormRepository[qms.Sop]
}

// NewGormSopRepository creates a new GormSopRepository
func NewGormSopRepository(db *gorm.DB) *GormSopRepository {
	return &GormSopRepository{newGormRepository[qms.Sop](db, "SOP", listSpec{
		sortFields:    SopSortFields,
		defaultSort:   "document_number",
		searchColumns: []string{"document_number", "title", "content"},
		filters:       map[string]string{"status": "status", "category": "category"},
	})}
}

// ExistsByDocumentNumber checks whether the document number is taken
func (r *GormSopRepository) ExistsByDocumentNumber(ctx context.Context, documentNumber string) (bool, error) {
	return r.exists(ctx, "document_number = ?", documentNumber)
}

// GormTrainingRepository implements qms.TrainingRepository
type GormTrainingRepository struct {
	gormRepository[qms.TrainingRecord]
}

// NewGormTrainingRepository creates a new GormTrainingRepository
func NewGormTrainingRepository(db *gorm.DB) *GormTrainingRepository {
	return &GormTrainingRepository{newGormRepository[qms.TrainingRecord](db, "Training record", listSpec{
		sortFields:    TrainingSortFields,
		defaultSort:   "created_at",
		searchColumns: []string{"title", "notes"},
		filters: map[string]string{
			"status":  "status",
			"user_id": "user_id",
			"sop_id":  "sop_id",
		},
	})}
}

// GormEnvironmentRepository implements qms.EnvironmentRepository
type GormEnvironmentRepository struct {
	gormRepository[qms.EnvironmentalReading]
}

// NewGormEnvironmentRepository creates a new GormEnvironmentRepository
func NewGormEnvironmentRepository(db *gorm.DB) *GormEnvironmentRepository {
	return &GormEnvironmentRepository{newGormRepository[qms.EnvironmentalReading](db, "Environmental reading", listSpec{
		sortFields:  EnvironmentSortFields,
		defaultSort: "recorded_at",
		dateColumn:  "recorded_at",
		filters: map[string]string{
			"room":        "room",
			"batch_id":    "batch_id",
			"alerts_only": "is_alert",
		},
	})}
}

// CountAlertsByBatch counts the flagged readings linked to a batch
func (r *GormEnvironmentRepository) CountAlertsByBatch(ctx context.Context, batchID uuid.UUID) (int64, error) {
	return r.countWhere(ctx, "batch_id = ? AND is_alert = ?", batchID, true)
}

type roomCounts struct {
	Room         string
	ReadingCount int64
	AlertCount   int64
}

// SummarizeRooms returns reading counts and the latest reading per room, ordered by room
func (r *GormEnvironmentRepository) SummarizeRooms(ctx context.Context) ([]qms.RoomSummary, error) {
	counts := make([]roomCounts, 0)
	if err := conn(ctx, r.db).Model(&qms.EnvironmentalReading{}).
		Select("room, COUNT(*) AS reading_count, SUM(CASE WHEN is_alert THEN 1 ELSE 0 END) AS alert_count").
		Group("room").
		Order("room ASC").
		Scan(&counts).Error; err != nil {
		return nil, dbError(err, r.entity, "summarize")
	}

	out := make([]qms.RoomSummary, 0, len(counts))
	for _, c := range counts {
		var latest qms.EnvironmentalReading
		if err := conn(ctx, r.db).
			Where("room = ?", c.Room).
			Order("recorded_at DESC").
			First(&latest).Error; err != nil {
			return nil, dbError(err, r.entity, "summarize")
		}
		out = append(out, qms.RoomSummary{
			Room:          c.Room,
			ReadingCount:  c.ReadingCount,
			AlertCount:    c.AlertCount,
			LatestReading: &latest,
		})
	}
	return out, nil
}

// GormQualityRecordRepository implements qms.QualityRecordRepository
type GormQualityRecordRepository struct {
	gormRepository[qms.QualityRecord]
}

// NewGormQualityRecordRepository creates a new GormQualityRecordRepository
func NewGormQualityRecordRepository(db *gorm.DB) *GormQualityRecordRepository {
	return &GormQualityRecordRepository{newGormRepository[qms.QualityRecord](db, "Quality record", listSpec{
		sortFields:    QualityRecordSortFields,
		defaultSort:   "recorded_at",
		searchColumns: []string{"record_number", "title", "description"},
		dateColumn:    "recorded_at",
		filters: map[string]string{
			"record_type": "record_type",
			"result":      "result",
			"batch_id":    "batch_id",
			"lot_id":      "lot_id",
		},
	})}
}

var (
	_ qms.EbrRepository           = (*GormEbrRepository)(nil)
	_ qms.ChecklistRepository     = (*GormChecklistRepository)(nil)
	_ qms.DeviationRepository     = (*GormDeviationRepository)(nil)
	_ qms.CapaRepository          = (*GormCapaRepository)(nil)
	_ qms.AuditRepository         = (*GormAuditRepository)(nil)
	_ qms.SopRepository           = (*GormSopRepository)(nil)
	_ qms.TrainingRepository      = (*GormTrainingRepository)(nil)
	_ qms.EnvironmentRepository   = (*GormEnvironmentRepository)(nil)
	_ qms.QualityRecordRepository = (*GormQualityRecordRepository)(nil)
)
