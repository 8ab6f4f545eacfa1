package delivery

import (
	"context"
	"time"

	"github.com/distribo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DeliveryRepository defines the interface for delivery persistence
type DeliveryRepository interface {
	// FindByIDForOrg finds a delivery within an organization
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*Delivery, error)

	// FindByIDForUpdate finds a delivery and takes a row lock on it.
	// Must be called inside a transaction.
	FindByIDForUpdate(ctx context.Context, orgID, id uuid.UUID) (*Delivery, error)

	// FindByOrder returns all delivery attempts for an order, newest first
	FindByOrder(ctx context.Context, orgID, orderID uuid.UUID) ([]Delivery, error)

	// FindByDeliverer returns deliveries for a deliverer on a given day
	FindByDeliverer(ctx context.Context, orgID, delivererID uuid.UUID, date time.Time, filter shared.Filter) ([]Delivery, error)

	// Save creates or updates a delivery
	Save(ctx context.Context, delivery *Delivery) error
}

// CashRegisterRepository defines the interface for register persistence
type CashRegisterRepository interface {
	// FindByIDForUpdate finds a register and takes a row lock on it.
	// Must be called inside a transaction.
	FindByIDForUpdate(ctx context.Context, orgID, id uuid.UUID) (*DailyCashRegister, error)

	// FindByIDForOrg finds a register within an organization
	FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*DailyCashRegister, error)

	// FindByDelivererAndDate returns the register for (deliverer, date),
	// locking the row when forUpdate is set; ErrNotFound when absent.
	FindByDelivererAndDate(ctx context.Context, orgID, delivererID uuid.UUID, date time.Time, forUpdate bool) (*DailyCashRegister, error)

	// Save creates or updates a register
	Save(ctx context.Context, register *DailyCashRegister) error

	// SaveAdjustment inserts a correction entry for a closed register
	SaveAdjustment(ctx context.Context, adjustment *RegisterAdjustment) error

	// FindAdjustments returns correction entries for a register
	FindAdjustments(ctx context.Context, orgID, registerID uuid.UUID) ([]RegisterAdjustment, error)
}
