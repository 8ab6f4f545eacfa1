package catalog

import (
	"context"

	"github.com/distribo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByIDForOrg finds a product by ID within an organization
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*Product, error)

	// FindByIDsForUpdate finds products by ID and takes row locks on them.
	// Must be called inside a transaction. Rows are locked in ascending id
	// order so concurrent multi-product operations cannot deadlock.
	FindByIDsForUpdate(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) ([]Product, error)

	// FindByCode finds a product by its code within an organization
	FindByCode(ctx context.Context, orgID uuid.UUID, code string) (*Product, error)

	// FindAllForOrg finds all products for an organization
	FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]Product, error)

	// CountForOrg counts products for an organization
	CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error)

	// Save creates or updates a product. Updates use the aggregate
	// version as an optimistic guard and fail with ErrConcurrencyConflict
	// when the row moved underneath.
	Save(ctx context.Context, product *Product) error
}
