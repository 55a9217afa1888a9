package persistence

import (
	"github.com/cultivo/backend/internal/domain/cultivation"
	"github.com/cultivo/backend/internal/domain/identity"
	"github.com/cultivo/backend/internal/domain/inventory"
	"github.com/cultivo/backend/internal/domain/partner"
	"github.com/cultivo/backend/internal/domain/qms"
	"github.com/cultivo/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// Models returns every persisted entity, in dependency order.
// Production schemas come from the SQL migrations; this list drives AutoMigrate in tests.
func Models() []any {
	return []any{
		&identity.Profile{},
		&identity.Invitation{},
		&identity.AuditLog{},
		&cultivation.Strain{},
		&cultivation.GrowthCycle{},
		&cultivation.Stage{},
		&cultivation.Batch{},
		&cultivation.BatchStage{},
		&cultivation.DailyLog{},
		&cultivation.StageReview{},
		&cultivation.PackagingRecord{},
		&cultivation.FinishedGood{},
		&cultivation.WasteRecord{},
		&qms.EbrRecord{},
		&qms.ChecklistItem{},
		&qms.Deviation{},
		&qms.Capa{},
		&qms.Audit{},
		&qms.Sop{},
		&qms.TrainingRecord{},
		&qms.EnvironmentalReading{},
		&qms.QualityRecord{},
		&inventory.Lot{},
		&inventory.StockLevel{},
		&inventory.StockMovement{},
		&partner.Supplier{},
		&partner.Client{},
		&trade.PurchaseOrder{},
		&trade.PurchaseOrderItem{},
		&trade.Dispatch{},
		&trade.DispatchItem{},
	}
}

// AutoMigrate creates or updates the tables of every model
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
