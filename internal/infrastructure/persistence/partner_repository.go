package persistence

import (
	"context"
	"strings"

	"github.com/cultivo/backend/internal/domain/partner"
	"gorm.io/gorm"
)

// GormSupplierRepository implements partner.SupplierRepository
type GormSupplierRepository struct {
	gormRepository[partner.Supplier]
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{newGormRepository[partner.Supplier](db, "Supplier", listSpec{
		sortFields:    SupplierSortFields,
		defaultSort:   "name",
		searchColumns: []string{"name", "contact_name", "email", "license_number"},
		filters:       map[string]string{"status": "status"},
	})}
}

// GormClientRepository implements partner.ClientRepository
type GormClientRepository struct {
	gormRepository[partner.Client]
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{newGormRepository[partner.Client](db, "Client", listSpec{
		sortFields:    ClientSortFields,
		defaultSort:   "name",
		searchColumns: []string{"name", "email", "license_number"},
		filters: map[string]string{
			"status":      "status",
			"client_type": "client_type",
		},
	})}
}

// ExistsByEmail checks if a client uses the email address
func (r *GormClientRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", strings.ToLower(strings.TrimSpace(email)))
}

var (
	_ partner.SupplierRepository = (*GormSupplierRepository)(nil)
	_ partner.ClientRepository   = (*GormClientRepository)(nil)
)
