package delivery

import (
	"time"

	"github.com/distribo/backend/internal/domain/delivery"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ScheduleDeliveryRequest schedules a delivery attempt for an order
type ScheduleDeliveryRequest struct {
	OrderID       uuid.UUID `json:"order_id" binding:"required"`
	DelivererID   uuid.UUID `json:"deliverer_id" binding:"required"`
	ScheduledDate time.Time `json:"scheduled_date" binding:"required"`
}

// TransitionDeliveryRequest moves a delivery to a new status
type TransitionDeliveryRequest struct {
	Status string `json:"status" binding:"required"`
}

// CompleteDeliveryRequest settles a delivery at the door
type CompleteDeliveryRequest struct {
	AmountCollected decimal.Decimal `json:"amount_collected"`
	Mode            string          `json:"mode"`
	ProofOfDelivery string          `json:"proof_of_delivery"`
	IdempotencyKey  string          `json:"idempotency_key" binding:"omitempty,max=128"`
	CollectedBy     *uuid.UUID      `json:"-"`
}

// FailDeliveryRequest marks a delivery attempt as failed
type FailDeliveryRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// RescheduleDeliveryRequest creates the follow-up attempt for a failed delivery
type RescheduleDeliveryRequest struct {
	DelivererID   uuid.UUID `json:"deliverer_id" binding:"required"`
	ScheduledDate time.Time `json:"scheduled_date" binding:"required"`
}

// DeliveryResponse is the response representation of a delivery
type DeliveryResponse struct {
	ID                 uuid.UUID       `json:"id"`
	OrderID            uuid.UUID       `json:"order_id"`
	DelivererID        uuid.UUID       `json:"deliverer_id"`
	Status             string          `json:"status"`
	TotalToCollect     decimal.Decimal `json:"total_to_collect"`
	AmountCollected    decimal.Decimal `json:"amount_collected"`
	Shortfall          decimal.Decimal `json:"shortfall"`
	CollectionMode     string          `json:"collection_mode,omitempty"`
	ProofOfDelivery    string          `json:"proof_of_delivery,omitempty"`
	FailureReason      string          `json:"failure_reason,omitempty"`
	ScheduledDate      time.Time       `json:"scheduled_date"`
	DeliveredAt        *time.Time      `json:"delivered_at,omitempty"`
	FailedAt           *time.Time      `json:"failed_at,omitempty"`
	PreviousDeliveryID *uuid.UUID      `json:"previous_delivery_id,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

// ToDeliveryResponse converts a delivery aggregate to its response form
func ToDeliveryResponse(d *delivery.Delivery) DeliveryResponse {
	return DeliveryResponse{
		ID:                 d.ID,
		OrderID:            d.OrderID,
		DelivererID:        d.DelivererID,
		Status:             d.Status.String(),
		TotalToCollect:     d.TotalToCollect,
		AmountCollected:    d.AmountCollected,
		Shortfall:          d.Shortfall(),
		CollectionMode:     string(d.CollectionMode),
		ProofOfDelivery:    d.ProofOfDelivery,
		FailureReason:      d.FailureReason,
		ScheduledDate:      d.ScheduledDate,
		DeliveredAt:        d.DeliveredAt,
		FailedAt:           d.FailedAt,
		PreviousDeliveryID: d.PreviousDeliveryID,
		CreatedAt:          d.CreatedAt,
	}
}

// CloseRegisterRequest closes a deliverer's daily cash register
type CloseRegisterRequest struct {
	CashHandedOver decimal.Decimal `json:"cash_handed_over"`
	Notes          string          `json:"notes"`
	ClosedBy       uuid.UUID       `json:"-"`
}

// RegisterAdjustmentRequest corrects a closed register
type RegisterAdjustmentRequest struct {
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Reason    string          `json:"reason" binding:"required,min=1,max=500"`
	CreatedBy uuid.UUID       `json:"-"`
}

// RegisterAdjustmentResponse is one correction entry on a closed register
type RegisterAdjustmentResponse struct {
	ID        uuid.UUID       `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason"`
	CreatedBy uuid.UUID       `json:"created_by"`
	CreatedAt time.Time       `json:"created_at"`
}

// RegisterResponse is the response representation of a daily cash register
type RegisterResponse struct {
	ID                 uuid.UUID                    `json:"id"`
	DelivererID        uuid.UUID                    `json:"deliverer_id"`
	Date               time.Time                    `json:"date"`
	ExpectedCollection decimal.Decimal              `json:"expected_collection"`
	ActualCollection   decimal.Decimal              `json:"actual_collection"`
	NewDebtCreated     decimal.Decimal              `json:"new_debt_created"`
	IsClosed           bool                         `json:"is_closed"`
	CashHandedOver     decimal.Decimal              `json:"cash_handed_over"`
	Discrepancy        decimal.Decimal              `json:"discrepancy"`
	ClosedAt           *time.Time                   `json:"closed_at,omitempty"`
	CloseNotes         string                       `json:"close_notes,omitempty"`
	Adjustments        []RegisterAdjustmentResponse `json:"adjustments,omitempty"`
}

// ToRegisterResponse converts a register aggregate to its response form
func ToRegisterResponse(r *delivery.DailyCashRegister, adjustments []delivery.RegisterAdjustment) RegisterResponse {
	adjs := make([]RegisterAdjustmentResponse, 0, len(adjustments))
	for _, a := range adjustments {
		adjs = append(adjs, RegisterAdjustmentResponse{
			ID:        a.ID,
			Amount:    a.Amount,
			Reason:    a.Reason,
			CreatedBy: a.CreatedBy,
			CreatedAt: a.CreatedAt,
		})
	}
	return RegisterResponse{
		ID:                 r.ID,
		DelivererID:        r.DelivererID,
		Date:               r.Date,
		ExpectedCollection: r.ExpectedCollection,
		ActualCollection:   r.ActualCollection,
		NewDebtCreated:     r.NewDebtCreated,
		IsClosed:           r.IsClosed,
		CashHandedOver:     r.CashHandedOver,
		Discrepancy:        r.Discrepancy(),
		ClosedAt:           r.ClosedAt,
		CloseNotes:         r.CloseNotes,
		Adjustments:        adjs,
	}
}
