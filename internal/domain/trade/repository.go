package trade

import (
	"context"
	"fmt"
	"time"

	"github.com/distribo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByIDForOrg finds an order with its items within an organization
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*Order, error)

	// FindByIDForUpdate finds an order and takes a row lock on it.
	// Must be called inside a transaction.
	FindByIDForUpdate(ctx context.Context, orgID, id uuid.UUID) (*Order, error)

	// FindByOrderNumber finds an order by its human-readable number
	FindByOrderNumber(ctx context.Context, orgID uuid.UUID, orderNumber string) (*Order, error)

	// FindOpenByCustomer returns non-cancelled orders with an unpaid
	// remainder for a customer, oldest first. FIFO payment allocation
	// walks this list. Rows are locked when forUpdate is set.
	FindOpenByCustomer(ctx context.Context, orgID, customerID uuid.UUID, forUpdate bool) ([]Order, error)

	// FindByCustomer returns all orders for a customer matching the filter
	FindByCustomer(ctx context.Context, orgID, customerID uuid.UUID, filter shared.Filter) ([]Order, error)

	// FindAllForOrg finds all orders for an organization
	FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]Order, error)

	// FindOpenAsOf returns non-cancelled orders created on or before the
	// given date that still carry an unpaid remainder; the aging report
	// buckets these by order age.
	FindOpenAsOf(ctx context.Context, orgID uuid.UUID, asOf time.Time) ([]Order, error)

	// CountForOrg counts orders for an organization
	CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error)

	// Save creates or updates an order together with its items
	Save(ctx context.Context, order *Order) error
}

// OrderNumberGenerator issues human-readable sequential order numbers,
// unique per organization per calendar day (ORD-YYYYMMDD-NNNN). The
// sequence is monotonic within a day and gap tolerant: a failed order
// creation may burn a number. Implementations hold their own counter-row
// lock, decoupled from the debt and stock locks.
type OrderNumberGenerator interface {
	Next(ctx context.Context, orgID uuid.UUID, day time.Time) (string, error)
}

// FormatOrderNumber renders PREFIX-YYYYMMDD-NNNN, the canonical order
// number layout shared by all generator implementations
func FormatOrderNumber(prefix string, day time.Time, seq int) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, day.Format("20060102"), seq)
}
