package trade

import (
	"time"

	"github.com/distribo/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateOrderRequest is the request to create an order
type CreateOrderRequest struct {
	CustomerID     uuid.UUID          `json:"customer_id" binding:"required"`
	Items          []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Remark         string             `json:"remark"`
	IdempotencyKey string             `json:"idempotency_key" binding:"omitempty,max=128"`
	CreatedBy      *uuid.UUID         `json:"-"`
}

// OrderItemRequest is one requested order line
type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int64     `json:"quantity" binding:"required,gt=0"`
}

// CancelOrderRequest is the request to cancel an order
type CancelOrderRequest struct {
	Reason  string    `json:"reason" binding:"required,min=1,max=500"`
	ActorID uuid.UUID `json:"-"`
}

// TransitionOrderRequest moves an order to a new status
type TransitionOrderRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderListFilter is the filter for listing orders
type OrderListFilter struct {
	CustomerID *uuid.UUID `form:"customer_id"`
	Status     string     `form:"status"`
	Search     string     `form:"search"`
	Page       int        `form:"page"`
	PageSize   int        `form:"page_size"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir"`
}

// OrderItemResponse is one order line in a response
type OrderItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	ProductCode string          `json:"product_code"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// OrderResponse is the response representation of an order
type OrderResponse struct {
	ID           uuid.UUID           `json:"id"`
	OrderNumber  string              `json:"order_number"`
	CustomerID   uuid.UUID           `json:"customer_id"`
	CustomerName string              `json:"customer_name"`
	Items        []OrderItemResponse `json:"items"`
	Total        decimal.Decimal     `json:"total"`
	AmountPaid   decimal.Decimal     `json:"amount_paid"`
	AmountDue    decimal.Decimal     `json:"amount_due"`
	Status       string              `json:"status"`
	Remark       string              `json:"remark,omitempty"`
	CancelReason string              `json:"cancel_reason,omitempty"`
	CancelledAt  *time.Time          `json:"cancelled_at,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// ToOrderResponse converts an order aggregate to its response form
func ToOrderResponse(order *trade.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			ProductCode: item.ProductCode,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			LineTotal:   item.LineTotal,
		})
	}
	return OrderResponse{
		ID:           order.ID,
		OrderNumber:  order.OrderNumber,
		CustomerID:   order.CustomerID,
		CustomerName: order.CustomerName,
		Items:        items,
		Total:        order.Total,
		AmountPaid:   order.AmountPaid,
		AmountDue:    order.AmountDue(),
		Status:       order.Status.String(),
		Remark:       order.Remark,
		CancelReason: order.CancelReason,
		CancelledAt:  order.CancelledAt,
		CreatedAt:    order.CreatedAt,
		UpdatedAt:    order.UpdatedAt,
	}
}
