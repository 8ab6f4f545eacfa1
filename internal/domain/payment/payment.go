package payment

import (
	"time"

	"github.com/distribo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMode represents how a payment was collected
type PaymentMode string

const (
	PaymentModeCash     PaymentMode = "cash"
	PaymentModeCheck    PaymentMode = "check"
	PaymentModeTransfer PaymentMode = "transfer"
	PaymentModeMobile   PaymentMode = "mobile"
)

// IsValid checks if the mode is a valid PaymentMode
func (m PaymentMode) IsValid() bool {
	switch m {
	case PaymentModeCash, PaymentModeCheck, PaymentModeTransfer, PaymentModeMobile:
		return true
	}
	return false
}

// PaymentType distinguishes collections from refunds. A refund is a new
// record with its own type, never an edit of the original payment.
type PaymentType string

const (
	PaymentTypeCollection PaymentType = "COLLECTION"
	PaymentTypeRefund     PaymentType = "REFUND"
)

// Allocation records how much of a payment was applied to one order
type Allocation struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	PaymentID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	OrderID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	AmountApplied decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Position      int             `gorm:"not null"` // allocation order within the payment
	CreatedAt     time.Time
}

// TableName returns the table name for GORM
func (Allocation) TableName() string {
	return "payment_allocations"
}

// Payment is an immutable record of money received against customer
// debt, with before/after debt snapshots as the audit trail and an
// ordered allocation breakdown across orders.
type Payment struct {
	shared.OrgAggregateRoot
	CustomerID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type           PaymentType     `gorm:"type:varchar(20);not null;default:'COLLECTION'"`
	Amount         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Mode           PaymentMode     `gorm:"type:varchar(20);not null"`
	OrderID        *uuid.UUID      `gorm:"type:uuid"` // explicit allocation target, if any
	DebtBefore     decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	DebtAfter      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Allocations    []Allocation    `gorm:"foreignKey:PaymentID"`
	ReceivedBy     *uuid.UUID      `gorm:"type:uuid"`
	Remark         string          `gorm:"type:text"`
	IdempotencyKey string          `gorm:"type:varchar(128)"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment creates a collection payment. Snapshots and allocations are
// attached by the allocator before the record is persisted; after that
// the record is never mutated.
func NewPayment(orgID, customerID uuid.UUID, amount decimal.Decimal, mode PaymentMode) (*Payment, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !mode.IsValid() {
		return nil, shared.NewValidationError("INVALID_PAYMENT_MODE", "Unknown payment mode")
	}

	payment := &Payment{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		CustomerID:       customerID,
		Type:             PaymentTypeCollection,
		Amount:           amount.Round(2),
		Mode:             mode,
		Allocations:      make([]Allocation, 0),
	}

	return payment, nil
}

// NewRefund creates a refund record: money returned to the customer,
// restoring the matching amount of debt. Refunds never allocate to
// orders.
func NewRefund(orgID, customerID uuid.UUID, amount decimal.Decimal, mode PaymentMode) (*Payment, error) {
	refund, err := NewPayment(orgID, customerID, amount, mode)
	if err != nil {
		return nil, err
	}
	refund.Type = PaymentTypeRefund
	return refund, nil
}

// SetDebtSnapshots records the customer debt before and after the
// payment was applied
func (p *Payment) SetDebtSnapshots(before, after decimal.Decimal) {
	p.DebtBefore = before.Round(2)
	p.DebtAfter = after.Round(2)
}

// SetExplicitOrder marks the order this payment targets first
func (p *Payment) SetExplicitOrder(orderID uuid.UUID) {
	p.OrderID = &orderID
}

// AddAllocation appends one order allocation to the breakdown
func (p *Payment) AddAllocation(orderID uuid.UUID, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewValidationError("INVALID_AMOUNT", "Allocation amount must be positive")
	}
	p.Allocations = append(p.Allocations, Allocation{
		ID:            uuid.New(),
		PaymentID:     p.ID,
		OrderID:       orderID,
		AmountApplied: amount.Round(2),
		Position:      len(p.Allocations),
		CreatedAt:     time.Now(),
	})
	return nil
}

// AllocatedTotal returns the sum of all allocations
func (p *Payment) AllocatedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, a := range p.Allocations {
		total = total.Add(a.AmountApplied)
	}
	return total
}

// Unallocated returns the part of the payment not applied to any order.
// Non-zero only when the customer's open orders were all settled.
func (p *Payment) Unallocated() decimal.Decimal {
	return p.Amount.Sub(p.AllocatedTotal())
}
