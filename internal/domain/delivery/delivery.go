package delivery

import (
	"time"

	paymentdomain "github.com/distribo/backend/internal/domain/payment"
	"github.com/distribo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DeliveryStatus represents the status of a delivery attempt
type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "pending"
	DeliveryStatusAssigned  DeliveryStatus = "assigned"
	DeliveryStatusPickedUp  DeliveryStatus = "picked_up"
	DeliveryStatusInTransit DeliveryStatus = "in_transit"
	DeliveryStatusArrived   DeliveryStatus = "arrived"
	DeliveryStatusDelivered DeliveryStatus = "delivered"
	DeliveryStatusFailed    DeliveryStatus = "failed"
)

// deliveryTransitions encodes transition legality as a table.
// Completion is legal from picked_up, in_transit and arrived: field
// deliverers frequently close out a stop without posting the
// intermediate statuses first.
var deliveryTransitions = map[DeliveryStatus][]DeliveryStatus{
	DeliveryStatusPending:   {DeliveryStatusAssigned, DeliveryStatusFailed},
	DeliveryStatusAssigned:  {DeliveryStatusPickedUp, DeliveryStatusFailed},
	DeliveryStatusPickedUp:  {DeliveryStatusInTransit, DeliveryStatusDelivered, DeliveryStatusFailed},
	DeliveryStatusInTransit: {DeliveryStatusArrived, DeliveryStatusDelivered, DeliveryStatusFailed},
	DeliveryStatusArrived:   {DeliveryStatusDelivered, DeliveryStatusFailed},
	DeliveryStatusDelivered: {},
	DeliveryStatusFailed:    {},
}

// IsValid checks if the status is a valid DeliveryStatus
func (s DeliveryStatus) IsValid() bool {
	_, ok := deliveryTransitions[s]
	return ok
}

// String returns the string representation of DeliveryStatus
func (s DeliveryStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s DeliveryStatus) CanTransitionTo(target DeliveryStatus) bool {
	for _, next := range deliveryTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status has no outgoing transitions
func (s DeliveryStatus) IsTerminal() bool {
	return len(deliveryTransitions[s]) == 0
}

// Delivery is one attempt to deliver an order and collect against the
// customer's outstanding debt. A failed attempt is never reused; a
// reschedule creates a fresh pending record linked through
// PreviousDeliveryID.
type Delivery struct {
	shared.OrgAggregateRoot
	OrderID            uuid.UUID                 `gorm:"type:uuid;not null;index"`
	DelivererID        uuid.UUID                 `gorm:"type:uuid;not null;index"`
	Status             DeliveryStatus            `gorm:"type:varchar(20);not null;default:'pending'"`
	TotalToCollect     decimal.Decimal           `gorm:"type:decimal(18,2);not null"`
	AmountCollected    decimal.Decimal           `gorm:"type:decimal(18,2);not null;default:0"`
	CollectionMode     paymentdomain.PaymentMode `gorm:"type:varchar(20)"`
	ProofOfDelivery    string                    `gorm:"type:text"`
	FailureReason      string                    `gorm:"type:text"`
	ScheduledDate      time.Time                 `gorm:"not null;index"`
	DeliveredAt        *time.Time
	FailedAt           *time.Time
	PreviousDeliveryID *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (Delivery) TableName() string {
	return "deliveries"
}

// NewDelivery schedules a delivery attempt for an order.
// totalToCollect is the order's amount due plus any standing debt
// bundled for collection at the door.
func NewDelivery(orgID, orderID, delivererID uuid.UUID, totalToCollect decimal.Decimal, scheduledDate time.Time) (*Delivery, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if delivererID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_DELIVERER", "Deliverer ID cannot be empty")
	}
	if totalToCollect.IsNegative() {
		return nil, shared.NewValidationError("INVALID_AMOUNT", "Total to collect cannot be negative")
	}

	return &Delivery{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		OrderID:          orderID,
		DelivererID:      delivererID,
		Status:           DeliveryStatusPending,
		TotalToCollect:   totalToCollect.Round(2),
		AmountCollected:  decimal.Zero,
		ScheduledDate:    scheduledDate,
	}, nil
}

// TransitionTo moves the delivery along the status machine
func (d *Delivery) TransitionTo(target DeliveryStatus) error {
	if !target.IsValid() {
		return shared.NewValidationError("INVALID_STATUS", "Unknown delivery status")
	}
	if !d.Status.CanTransitionTo(target) {
		return shared.ErrInvalidStateTransition.
			WithDetail("from", d.Status.String()).
			WithDetail("to", target.String())
	}
	d.Status = target
	d.Touch()
	d.IncrementVersion()
	return nil
}

// Complete records the collection outcome and transitions to delivered.
// Collecting less than TotalToCollect is legal: the shortfall stays as
// open customer debt already booked by the order.
func (d *Delivery) Complete(amountCollected decimal.Decimal, mode paymentdomain.PaymentMode, proof string) error {
	if !d.Status.CanTransitionTo(DeliveryStatusDelivered) {
		return shared.ErrInvalidStateTransition.
			WithDetail("from", d.Status.String()).
			WithDetail("to", DeliveryStatusDelivered.String())
	}
	if amountCollected.IsNegative() {
		return shared.NewValidationError("INVALID_AMOUNT", "Collected amount cannot be negative")
	}
	if amountCollected.GreaterThan(d.TotalToCollect) {
		return shared.NewDomainError("COLLECTION_EXCEEDS_DUE", "Collected amount cannot exceed the total to collect").
			WithDetail("total_to_collect", d.TotalToCollect.StringFixed(2))
	}
	if amountCollected.IsPositive() && !mode.IsValid() {
		return shared.NewValidationError("INVALID_PAYMENT_MODE", "Unknown collection mode")
	}

	now := time.Now()
	d.Status = DeliveryStatusDelivered
	d.AmountCollected = amountCollected.Round(2)
	d.CollectionMode = mode
	d.ProofOfDelivery = proof
	d.DeliveredAt = &now
	d.Touch()
	d.IncrementVersion()

	d.AddDomainEvent(NewDeliveryCompletedEvent(d))

	return nil
}

// Fail marks the attempt as failed. Customer debt is untouched: only a
// full order cancellation reverses debt.
func (d *Delivery) Fail(reason string) error {
	if !d.Status.CanTransitionTo(DeliveryStatusFailed) {
		return shared.ErrInvalidStateTransition.
			WithDetail("from", d.Status.String()).
			WithDetail("to", DeliveryStatusFailed.String())
	}
	if reason == "" {
		return shared.NewValidationError("INVALID_REASON", "Failure reason cannot be empty")
	}

	now := time.Now()
	d.Status = DeliveryStatusFailed
	d.FailureReason = reason
	d.FailedAt = &now
	d.Touch()
	d.IncrementVersion()

	d.AddDomainEvent(NewDeliveryFailedEvent(d))

	return nil
}

// Reschedule creates the follow-up attempt for a failed delivery.
// The failed record keeps its identity; the new attempt links back.
func (d *Delivery) Reschedule(delivererID uuid.UUID, scheduledDate time.Time) (*Delivery, error) {
	if d.Status != DeliveryStatusFailed {
		return nil, shared.ErrInvalidStateTransition.WithMessage("Only failed deliveries can be rescheduled")
	}

	next, err := NewDelivery(d.OrgID, d.OrderID, delivererID, d.TotalToCollect, scheduledDate)
	if err != nil {
		return nil, err
	}
	next.PreviousDeliveryID = &d.ID
	return next, nil
}

// Shortfall returns the part of TotalToCollect that was not collected
func (d *Delivery) Shortfall() decimal.Decimal {
	return d.TotalToCollect.Sub(d.AmountCollected)
}
