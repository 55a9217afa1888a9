package partner

import (
	"context"

	"github.com/cultivo/backend/internal/domain/shared"
)

// SupplierRepository defines the persistence operations for suppliers
type SupplierRepository interface {
	shared.Repository[Supplier]
}

// ClientRepository defines the persistence operations for clients
type ClientRepository interface {
	shared.Repository[Client]
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
