package payment

import (
	"time"

	paymentdomain "github.com/distribo/backend/internal/domain/payment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordPaymentRequest is the request to record a customer payment
type RecordPaymentRequest struct {
	CustomerID     uuid.UUID       `json:"customer_id" binding:"required"`
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	Mode           string          `json:"mode" binding:"required"`
	OrderID        *uuid.UUID      `json:"order_id"` // explicit allocation target
	Remark         string          `json:"remark"`
	IdempotencyKey string          `json:"idempotency_key" binding:"omitempty,max=128"`
	ReceivedBy     *uuid.UUID      `json:"-"`
}

// RecordRefundRequest is the request to return money to a customer
type RecordRefundRequest struct {
	CustomerID uuid.UUID       `json:"customer_id" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	Mode       string          `json:"mode" binding:"required"`
	Remark     string          `json:"remark" binding:"required,min=1,max=500"`
	ReceivedBy *uuid.UUID      `json:"-"`
}

// AllocationResponse is one order allocation in a payment response
type AllocationResponse struct {
	OrderID       uuid.UUID       `json:"order_id"`
	AmountApplied decimal.Decimal `json:"amount_applied"`
	Position      int             `json:"position"`
}

// PaymentResponse is the response representation of a payment
type PaymentResponse struct {
	ID          uuid.UUID            `json:"id"`
	CustomerID  uuid.UUID            `json:"customer_id"`
	Type        string               `json:"type"`
	Amount      decimal.Decimal      `json:"amount"`
	Mode        string               `json:"mode"`
	OrderID     *uuid.UUID           `json:"order_id,omitempty"`
	DebtBefore  decimal.Decimal      `json:"debt_before"`
	DebtAfter   decimal.Decimal      `json:"debt_after"`
	Allocations []AllocationResponse `json:"allocations"`
	Unallocated decimal.Decimal      `json:"unallocated"`
	Remark      string               `json:"remark,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}

// ToPaymentResponse converts a payment aggregate to its response form
func ToPaymentResponse(p *paymentdomain.Payment) PaymentResponse {
	allocations := make([]AllocationResponse, 0, len(p.Allocations))
	for _, a := range p.Allocations {
		allocations = append(allocations, AllocationResponse{
			OrderID:       a.OrderID,
			AmountApplied: a.AmountApplied,
			Position:      a.Position,
		})
	}
	return PaymentResponse{
		ID:          p.ID,
		CustomerID:  p.CustomerID,
		Type:        string(p.Type),
		Amount:      p.Amount,
		Mode:        string(p.Mode),
		OrderID:     p.OrderID,
		DebtBefore:  p.DebtBefore,
		DebtAfter:   p.DebtAfter,
		Allocations: allocations,
		Unallocated: p.Unallocated(),
		Remark:      p.Remark,
		CreatedAt:   p.CreatedAt,
	}
}
