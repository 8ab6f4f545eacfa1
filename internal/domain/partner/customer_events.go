package partner

import (
	"github.com/distribo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeCustomer = "Customer"

// Event type constants
const (
	EventTypeCustomerCreated     = "CustomerCreated"
	EventTypeCustomerDebtChanged = "CustomerDebtChanged"
)

// CustomerCreatedEvent is published when a new customer is created
type CustomerCreatedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID `json:"customer_id"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
}

// NewCustomerCreatedEvent creates a new CustomerCreatedEvent
func NewCustomerCreatedEvent(customer *Customer) *CustomerCreatedEvent {
	return &CustomerCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerCreated, AggregateTypeCustomer, customer.ID, customer.OrgID),
		CustomerID:      customer.ID,
		Code:            customer.Code,
		Name:            customer.Name,
	}
}

// CustomerDebtChangedEvent is published after a committed debt mutation
type CustomerDebtChangedEvent struct {
	shared.BaseDomainEvent
	CustomerID      uuid.UUID           `json:"customer_id"`
	TransactionType DebtTransactionType `json:"transaction_type"`
	DebtBefore      decimal.Decimal     `json:"debt_before"`
	DebtAfter       decimal.Decimal     `json:"debt_after"`
}

// NewCustomerDebtChangedEvent creates a new CustomerDebtChangedEvent
func NewCustomerDebtChangedEvent(customer *Customer, tx *DebtTransaction) *CustomerDebtChangedEvent {
	return &CustomerDebtChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCustomerDebtChanged, AggregateTypeCustomer, customer.ID, customer.OrgID),
		CustomerID:      customer.ID,
		TransactionType: tx.TransactionType,
		DebtBefore:      tx.DebtBefore,
		DebtAfter:       tx.DebtAfter,
	}
}
