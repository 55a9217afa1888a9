package partner

import (
	"context"

	"github.com/cultivo/backend/internal/domain/partner"
	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SupplierService handles supplier-related business operations
type SupplierService struct {
	supplierRepo partner.SupplierRepository
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(supplierRepo partner.SupplierRepository) *SupplierService {
	return &SupplierService{supplierRepo: supplierRepo}
}

// List returns a page of suppliers
func (s *SupplierService) List(ctx context.Context, filter shared.Filter) (shared.PageResult[partner.Supplier], error) {
	return shared.ListPage[partner.Supplier](ctx, s.supplierRepo, filter)
}

// GetByID returns a supplier
func (s *SupplierService) GetByID(ctx context.Context, id uuid.UUID) (*partner.Supplier, error) {
	return s.supplierRepo.FindByID(ctx, id)
}

// Create registers a new supplier
func (s *SupplierService) Create(ctx context.Context, actorID uuid.UUID, req CreateSupplierRequest) (*partner.Supplier, error) {
	supplier, err := partner.NewSupplier(req.Name, req.ContactName, req.Email, req.Phone, req.Address, req.LicenseNumber, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.supplierRepo.Create(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

// Update applies a partial update to a supplier
func (s *SupplierService) Update(ctx context.Context, id uuid.UUID, req UpdateSupplierRequest) (*partner.Supplier, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	var status *partner.SupplierStatus
	if req.Status != nil {
		v := partner.SupplierStatus(*req.Status)
		status = &v
	}
	if err := supplier.Update(req.details(), status); err != nil {
		return nil, err
	}
	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}
