package delivery

import (
	"github.com/distribo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeDelivery = "Delivery"
	AggregateTypeRegister = "DailyCashRegister"
)

// Event type constants
const (
	EventTypeDeliveryCompleted = "DeliveryCompleted"
	EventTypeDeliveryFailed    = "DeliveryFailed"
	EventTypeRegisterClosed    = "RegisterClosed"
)

// DeliveryCompletedEvent is published when a delivery settles
type DeliveryCompletedEvent struct {
	shared.BaseDomainEvent
	DeliveryID      uuid.UUID       `json:"delivery_id"`
	OrderID         uuid.UUID       `json:"order_id"`
	DelivererID     uuid.UUID       `json:"deliverer_id"`
	TotalToCollect  decimal.Decimal `json:"total_to_collect"`
	AmountCollected decimal.Decimal `json:"amount_collected"`
}

// NewDeliveryCompletedEvent creates a new DeliveryCompletedEvent
func NewDeliveryCompletedEvent(d *Delivery) *DeliveryCompletedEvent {
	return &DeliveryCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDeliveryCompleted, AggregateTypeDelivery, d.ID, d.OrgID),
		DeliveryID:      d.ID,
		OrderID:         d.OrderID,
		DelivererID:     d.DelivererID,
		TotalToCollect:  d.TotalToCollect,
		AmountCollected: d.AmountCollected,
	}
}

// DeliveryFailedEvent is published when a delivery attempt fails.
// The dispatch scheduler consumes it to plan the follow-up attempt.
type DeliveryFailedEvent struct {
	shared.BaseDomainEvent
	DeliveryID  uuid.UUID `json:"delivery_id"`
	OrderID     uuid.UUID `json:"order_id"`
	DelivererID uuid.UUID `json:"deliverer_id"`
	Reason      string    `json:"reason"`
}

// NewDeliveryFailedEvent creates a new DeliveryFailedEvent
func NewDeliveryFailedEvent(d *Delivery) *DeliveryFailedEvent {
	return &DeliveryFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDeliveryFailed, AggregateTypeDelivery, d.ID, d.OrgID),
		DeliveryID:      d.ID,
		OrderID:         d.OrderID,
		DelivererID:     d.DelivererID,
		Reason:          d.FailureReason,
	}
}

// RegisterClosedEvent is published when a daily cash register closes
type RegisterClosedEvent struct {
	shared.BaseDomainEvent
	RegisterID       uuid.UUID       `json:"register_id"`
	DelivererID      uuid.UUID       `json:"deliverer_id"`
	ActualCollection decimal.Decimal `json:"actual_collection"`
	CashHandedOver   decimal.Decimal `json:"cash_handed_over"`
	Discrepancy      decimal.Decimal `json:"discrepancy"`
}

// NewRegisterClosedEvent creates a new RegisterClosedEvent
func NewRegisterClosedEvent(r *DailyCashRegister) *RegisterClosedEvent {
	return &RegisterClosedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeRegisterClosed, AggregateTypeRegister, r.ID, r.OrgID),
		RegisterID:       r.ID,
		DelivererID:      r.DelivererID,
		ActualCollection: r.ActualCollection,
		CashHandedOver:   r.CashHandedOver,
		Discrepancy:      r.Discrepancy(),
	}
}
