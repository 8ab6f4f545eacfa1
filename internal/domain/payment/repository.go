package payment

import (
	"context"

	"github.com/distribo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PaymentRepository defines the interface for payment persistence.
// Payments and their allocations are insert-only.
type PaymentRepository interface {
	// FindByIDForOrg finds a payment with its allocations
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*Payment, error)

	// FindByCustomer returns payments for a customer matching the filter
	FindByCustomer(ctx context.Context, orgID, customerID uuid.UUID, filter shared.Filter) ([]Payment, error)

	// Save inserts a payment together with its allocation rows
	Save(ctx context.Context, payment *Payment) error
}
