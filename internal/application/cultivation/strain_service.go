package cultivation

import (
	"context"
	"strings"

	"github.com/cultivo/backend/internal/domain/cultivation"
	"github.com/cultivo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StrainService handles the strain catalog
type StrainService struct {
	repo cultivation.StrainRepository
}

// NewStrainService creates a new StrainService
func NewStrainService(repo cultivation.StrainRepository) *StrainService {
	return &StrainService{repo: repo}
}

// List returns a page of strains
func (s *StrainService) List(ctx context.Context, filter shared.Filter) (shared.PageResult[cultivation.Strain], error) {
	return shared.ListPage[cultivation.Strain](ctx, s.repo, filter)
}

// GetByID returns a strain
func (s *StrainService) GetByID(ctx context.Context, id uuid.UUID) (*cultivation.Strain, error) {
	return s.repo.FindByID(ctx, id)
}

// Create registers a strain; names are unique
func (s *StrainService) Create(ctx context.Context, actorID uuid.UUID, req CreateStrainRequest) (*cultivation.Strain, error) {
	exists, err := s.repo.ExistsByName(ctx, strings.TrimSpace(req.Name))
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewAlreadyExistsError("Strain with this name already exists")
	}

	strain, err := cultivation.NewStrain(req.Name, cultivation.StrainType(req.StrainType), orZero(req.THCPercentage), orZero(req.CBDPercentage), req.Description, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, strain); err != nil {
		return nil, err
	}
	return strain, nil
}

// Update applies a partial update to a strain
func (s *StrainService) Update(ctx context.Context, id uuid.UUID, req UpdateStrainRequest) (*cultivation.Strain, error) {
	strain, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil && !strings.EqualFold(strings.TrimSpace(*req.Name), strain.Name) {
		exists, err := s.repo.ExistsByName(ctx, strings.TrimSpace(*req.Name))
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewAlreadyExistsError("Strain with this name already exists")
		}
	}

	var strainType *cultivation.StrainType
	if req.StrainType != nil {
		t := cultivation.StrainType(*req.StrainType)
		strainType = &t
	}
	if err := strain.Update(req.Name, strainType, req.THCPercentage, req.CBDPercentage, req.Description); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, strain); err != nil {
		return nil, err
	}
	return strain, nil
}

func orZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
