package partner

import (
	"context"
	"time"

	"github.com/distribo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	// FindByIDForOrg finds a customer by ID within an organization
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*Customer, error)

	// FindByIDForUpdate finds a customer and takes a row lock on it.
	// Must be called inside a transaction; the lock serializes concurrent
	// debt mutations for the same customer.
	FindByIDForUpdate(ctx context.Context, orgID, id uuid.UUID) (*Customer, error)

	// FindByCode finds a customer by its code within an organization
	FindByCode(ctx context.Context, orgID uuid.UUID, code string) (*Customer, error)

	// FindAllForOrg finds all customers for an organization
	FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]Customer, error)

	// CountForOrg counts customers for an organization
	CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error)

	// Save creates or updates a customer. Updates use the aggregate
	// version as an optimistic guard and fail with ErrConcurrencyConflict
	// when the row moved underneath.
	Save(ctx context.Context, customer *Customer) error
}

// DebtTransactionRepository persists the immutable debt audit trail
type DebtTransactionRepository interface {
	// Save inserts a debt transaction; records are never updated
	Save(ctx context.Context, tx *DebtTransaction) error

	// FindByCustomer returns movements for a customer ordered by date ascending
	FindByCustomer(ctx context.Context, orgID, customerID uuid.UUID, from, to time.Time) ([]DebtTransaction, error)

	// FindBySource returns movements caused by a given source document
	FindBySource(ctx context.Context, orgID uuid.UUID, sourceType DebtSourceType, sourceID uuid.UUID) ([]DebtTransaction, error)
}
