package trade

import (
	"time"

	"github.com/distribo/backend/internal/domain/shared"
	"github.com/distribo/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of a sales order
type OrderStatus string

const (
	OrderStatusDraft      OrderStatus = "draft"
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusPreparing  OrderStatus = "preparing"
	OrderStatusReady      OrderStatus = "ready"
	OrderStatusAssigned   OrderStatus = "assigned"
	OrderStatusInDelivery OrderStatus = "in_delivery"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// orderTransitions encodes transition legality as a table.
// Cancellation is legal only before the order is handed to a delivery;
// from assigned onward the delivery-failure flow applies instead.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusDraft:      {OrderStatusPending, OrderStatusCancelled},
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPreparing:  {OrderStatusReady, OrderStatusCancelled},
	OrderStatusReady:      {OrderStatusAssigned, OrderStatusCancelled},
	OrderStatusAssigned:   {OrderStatusInDelivery},
	OrderStatusInDelivery: {OrderStatusDelivered},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	for _, next := range orderTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// IsCancellable reports whether an order in this status may still be cancelled
func (s OrderStatus) IsCancellable() bool {
	return s.CanTransitionTo(OrderStatusCancelled)
}

// IsTerminal reports whether the status has no outgoing transitions
func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

// OrderItem is a line item in an order. Unit price and line total are
// immutable snapshots taken at order-creation time; later product price
// changes never affect them.
type OrderItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	ProductCode string          `gorm:"type:varchar(50);not null"`
	Quantity    int64           `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt   time.Time
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "order_items"
}

// NewOrderItem snapshots a product into an order line
func NewOrderItem(orderID, productID uuid.UUID, productName, productCode string, quantity int64, unitPrice valueobject.Money) (*OrderItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewValidationError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewValidationError("INVALID_PRICE", "Unit price cannot be negative")
	}

	return &OrderItem{
		ID:          uuid.New(),
		OrderID:     orderID,
		ProductID:   productID,
		ProductName: productName,
		ProductCode: productCode,
		Quantity:    quantity,
		UnitPrice:   unitPrice.Amount().Round(2),
		LineTotal:   unitPrice.MultiplyByInt(quantity).Amount().Round(2),
		CreatedAt:   time.Now(),
	}, nil
}

// Order is the aggregate root for a customer order.
// Total is immutable once computed. AmountDue is always derived from
// Total and AmountPaid, never stored.
type Order struct {
	shared.OrgAggregateRoot
	OrderNumber    string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_order_org_number,priority:2"`
	CustomerID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerName   string          `gorm:"type:varchar(200);not null"`
	Items          []OrderItem     `gorm:"foreignKey:OrderID"`
	Total          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	AmountPaid     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Status         OrderStatus     `gorm:"type:varchar(20);not null;default:'pending'"`
	Remark         string          `gorm:"type:text"`
	CancelledAt    *time.Time
	CancelReason   string     `gorm:"type:text"`
	CancelledBy    *uuid.UUID `gorm:"type:uuid"`
	IdempotencyKey string     `gorm:"type:varchar(128)"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates an order in pending status with the given snapshotted
// items. The total is computed once from the line totals and is fixed.
func NewOrder(orgID uuid.UUID, orderNumber string, customerID uuid.UUID, customerName string) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewValidationError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}

	order := &Order{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		OrderNumber:      orderNumber,
		CustomerID:       customerID,
		CustomerName:     customerName,
		Items:            make([]OrderItem, 0),
		Total:            decimal.Zero,
		AmountPaid:       decimal.Zero,
		Status:           OrderStatusPending,
	}

	return order, nil
}

// AddItem appends a snapshotted line and extends the total. Only legal
// while the order has not been persisted with a final total, i.e. during
// assembly in pending status with nothing paid yet.
func (o *Order) AddItem(productID uuid.UUID, productName, productCode string, quantity int64, unitPrice valueobject.Money) (*OrderItem, error) {
	if o.Status != OrderStatusPending && o.Status != OrderStatusDraft {
		return nil, shared.ErrInvalidStateTransition.WithMessage("Cannot add items to an order past assembly")
	}
	if !o.AmountPaid.IsZero() {
		return nil, shared.NewDomainError("ORDER_ALREADY_PAID", "Cannot change items on a partially paid order")
	}

	for _, item := range o.Items {
		if item.ProductID == productID {
			return nil, shared.NewDomainError("DUPLICATE_PRODUCT", "Product already exists in order")
		}
	}

	item, err := NewOrderItem(o.ID, productID, productName, productCode, quantity, unitPrice)
	if err != nil {
		return nil, err
	}

	o.Items = append(o.Items, *item)
	o.Total = o.Total.Add(item.LineTotal)
	o.Touch()

	return item, nil
}

// AmountDue returns the unpaid remainder, derived on every call
func (o *Order) AmountDue() decimal.Decimal {
	return o.Total.Sub(o.AmountPaid)
}

// IsOpen reports whether the order still carries unpaid debt
func (o *Order) IsOpen() bool {
	return o.Status != OrderStatusCancelled && o.AmountDue().IsPositive()
}

// TransitionTo moves the order along the status machine
func (o *Order) TransitionTo(target OrderStatus) error {
	if !target.IsValid() {
		return shared.NewValidationError("INVALID_STATUS", "Unknown order status")
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.ErrInvalidStateTransition.
			WithDetail("from", o.Status.String()).
			WithDetail("to", target.String())
	}
	o.Status = target
	o.Touch()
	o.IncrementVersion()
	return nil
}

// ApplyPayment increases AmountPaid. The paid amount is monotone and may
// never exceed the total.
func (o *Order) ApplyPayment(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewValidationError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if o.Status == OrderStatusCancelled {
		return shared.ErrInvalidStateTransition.WithMessage("Cannot apply payment to a cancelled order")
	}
	newPaid := o.AmountPaid.Add(amount)
	if newPaid.GreaterThan(o.Total) {
		return shared.NewDomainError("PAYMENT_EXCEEDS_TOTAL", "Paid amount cannot exceed order total").
			WithDetail("amount_due", o.AmountDue().StringFixed(2))
	}
	o.AmountPaid = newPaid
	o.Touch()
	o.IncrementVersion()
	return nil
}

// Cancel soft-cancels the order, recording reason, actor and time.
// Legal only from the cancellable status set; cancelling twice fails
// with an invalid-transition error rather than double-reversing.
func (o *Order) Cancel(reason string, actorID uuid.UUID) error {
	if !o.Status.IsCancellable() {
		return shared.ErrInvalidStateTransition.
			WithDetail("from", o.Status.String()).
			WithDetail("to", OrderStatusCancelled.String())
	}
	if reason == "" {
		return shared.NewValidationError("INVALID_REASON", "Cancellation reason cannot be empty")
	}

	now := time.Now()
	o.Status = OrderStatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.CancelledBy = &actorID
	o.Touch()
	o.IncrementVersion()

	o.AddDomainEvent(NewOrderCancelledEvent(o, reason))

	return nil
}

// UnpaidRemainder returns the debt to release when the order is
// cancelled: already-paid amounts are refunded separately, never
// un-booked here.
func (o *Order) UnpaidRemainder() decimal.Decimal {
	return o.Total.Sub(o.AmountPaid)
}

// TotalMoney returns the order total as a Money value object
func (o *Order) TotalMoney() valueobject.Money {
	return valueobject.NewMoneyFromDecimal(o.Total)
}
