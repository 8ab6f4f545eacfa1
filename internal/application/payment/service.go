package payment

import (
	"context"
	"errors"

	"github.com/distribo/backend/internal/application/ledger"
	"github.com/distribo/backend/internal/domain/partner"
	paymentdomain "github.com/distribo/backend/internal/domain/payment"
	"github.com/distribo/backend/internal/domain/shared"
	"github.com/distribo/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service records customer payments and refunds. A payment settles debt
// and is allocated across the customer's open orders oldest first; an
// explicitly targeted order is settled before the FIFO walk.
type Service struct {
	scope          ledger.TransactionScope
	ledger         *ledger.Service
	eventPublisher shared.EventPublisher
}

// NewService creates a new payment Service
func NewService(scope ledger.TransactionScope, ledgerSvc *ledger.Service) *Service {
	return &Service{scope: scope, ledger: ledgerSvc}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Record records a payment in its own transaction. Retries with the
// same idempotency key return the committed payment.
func (s *Service) Record(ctx context.Context, orgID uuid.UUID, req RecordPaymentRequest) (*PaymentResponse, error) {
	if replay, err := s.findByIdempotencyKey(ctx, orgID, req.IdempotencyKey); err != nil {
		return nil, err
	} else if replay != nil {
		return replay, nil
	}

	var (
		payment  *paymentdomain.Payment
		customer *partner.Customer
	)
	err := s.scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		var err error
		payment, customer, err = s.RecordInScope(ctx, repos, orgID, req)
		if err != nil {
			return err
		}
		if req.IdempotencyKey != "" {
			record := shared.NewIdempotencyRecord(orgID, req.IdempotencyKey, "payment.record", payment.ID)
			if err := repos.Idempotency().Save(ctx, record); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) && req.IdempotencyKey != "" {
			if replay, ferr := s.findByIdempotencyKey(ctx, orgID, req.IdempotencyKey); ferr == nil && replay != nil {
				return replay, nil
			}
		}
		return nil, err
	}

	s.publishEvents(ctx, customer.GetDomainEvents())
	customer.ClearDomainEvents()

	response := ToPaymentResponse(payment)
	return &response, nil
}

// RecordInScope records a payment inside the caller's transaction.
// Delivery settlement uses this to book the door collection in the same
// transaction that completes the delivery.
//
// The full amount is validated against the customer's outstanding debt
// first: overpayment is rejected, never silently capped. Allocation then
// walks the explicit target order, if any, and the remaining open
// orders oldest first.
func (s *Service) RecordInScope(ctx context.Context, repos ledger.TransactionalRepositories, orgID uuid.UUID, req RecordPaymentRequest) (*paymentdomain.Payment, *partner.Customer, error) {
	payment, err := paymentdomain.NewPayment(orgID, req.CustomerID, req.Amount, paymentdomain.PaymentMode(req.Mode))
	if err != nil {
		return nil, nil, err
	}
	payment.ReceivedBy = req.ReceivedBy
	payment.Remark = req.Remark
	payment.IdempotencyKey = req.IdempotencyKey

	customer, err := repos.Customers().FindByIDForUpdate(ctx, orgID, req.CustomerID)
	if err != nil {
		return nil, nil, err
	}
	if payment.Amount.GreaterThan(customer.CurrentDebt) {
		return nil, nil, shared.ErrOverpayment.
			WithDetail("current_debt", customer.CurrentDebt.StringFixed(2))
	}

	remaining := payment.Amount
	allocated := make(map[uuid.UUID]bool)

	if req.OrderID != nil {
		order, err := repos.Orders().FindByIDForUpdate(ctx, orgID, *req.OrderID)
		if err != nil {
			return nil, nil, err
		}
		if order.CustomerID != req.CustomerID {
			return nil, nil, shared.NewValidationError("ORDER_CUSTOMER_MISMATCH", "Order belongs to a different customer")
		}
		payment.SetExplicitOrder(order.ID)
		applied := decimal.Min(remaining, order.AmountDue())
		if applied.IsPositive() {
			if err := s.applyToOrder(ctx, repos, payment, order, applied); err != nil {
				return nil, nil, err
			}
			allocated[order.ID] = true
			remaining = remaining.Sub(applied)
		}
	}

	if remaining.IsPositive() {
		open, err := repos.Orders().FindOpenByCustomer(ctx, orgID, req.CustomerID, true)
		if err != nil {
			return nil, nil, err
		}
		for i := range open {
			if remaining.IsZero() {
				break
			}
			order := &open[i]
			if allocated[order.ID] {
				continue
			}
			applied := decimal.Min(remaining, order.AmountDue())
			if !applied.IsPositive() {
				continue
			}
			if err := s.applyToOrder(ctx, repos, payment, order, applied); err != nil {
				return nil, nil, err
			}
			remaining = remaining.Sub(applied)
		}
	}
	// Any remainder left here settles debt that no open order carries,
	// e.g. debt from manual adjustments. It stays unallocated.

	_, debtTx, err := s.ledger.AdjustDebt(ctx, repos, orgID, ledger.DebtAdjustment{
		CustomerID: req.CustomerID,
		Delta:      payment.Amount.Neg(),
		Type:       partner.DebtTransactionTypePayment,
		SourceType: partner.DebtSourceTypePayment,
		SourceID:   &payment.ID,
		OperatorID: req.ReceivedBy,
		Remark:     req.Remark,
	})
	if err != nil {
		return nil, nil, err
	}
	payment.SetDebtSnapshots(debtTx.DebtBefore, debtTx.DebtAfter)

	if err := repos.Payments().Save(ctx, payment); err != nil {
		return nil, nil, err
	}
	return payment, customer, nil
}

// RecordRefund returns money to a customer, restoring the refunded
// amount as debt. The refund is its own immutable record; the original
// payment is never edited.
func (s *Service) RecordRefund(ctx context.Context, orgID uuid.UUID, req RecordRefundRequest) (*PaymentResponse, error) {
	var (
		refund   *paymentdomain.Payment
		customer *partner.Customer
	)
	err := s.scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		var err error
		refund, err = paymentdomain.NewRefund(orgID, req.CustomerID, req.Amount, paymentdomain.PaymentMode(req.Mode))
		if err != nil {
			return err
		}
		refund.ReceivedBy = req.ReceivedBy
		refund.Remark = req.Remark

		var debtTx *partner.DebtTransaction
		customer, debtTx, err = s.ledger.AdjustDebt(ctx, repos, orgID, ledger.DebtAdjustment{
			CustomerID: req.CustomerID,
			Delta:      refund.Amount,
			Reversal:   true,
			Type:       partner.DebtTransactionTypeRefund,
			SourceType: partner.DebtSourceTypePayment,
			SourceID:   &refund.ID,
			OperatorID: req.ReceivedBy,
			Remark:     req.Remark,
		})
		if err != nil {
			return err
		}
		refund.SetDebtSnapshots(debtTx.DebtBefore, debtTx.DebtAfter)

		return repos.Payments().Save(ctx, refund)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, customer.GetDomainEvents())
	customer.ClearDomainEvents()

	response := ToPaymentResponse(refund)
	return &response, nil
}

// GetByID retrieves a payment by ID
func (s *Service) GetByID(ctx context.Context, orgID, paymentID uuid.UUID) (*PaymentResponse, error) {
	var response PaymentResponse
	err := s.scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		p, err := repos.Payments().FindByIDForOrg(ctx, orgID, paymentID)
		if err != nil {
			return err
		}
		response = ToPaymentResponse(p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// ListByCustomer retrieves a customer's payments
func (s *Service) ListByCustomer(ctx context.Context, orgID, customerID uuid.UUID, filter shared.Filter) ([]PaymentResponse, error) {
	var out []PaymentResponse
	err := s.scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		payments, err := repos.Payments().FindByCustomer(ctx, orgID, customerID, filter)
		if err != nil {
			return err
		}
		out = make([]PaymentResponse, 0, len(payments))
		for i := range payments {
			out = append(out, ToPaymentResponse(&payments[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) applyToOrder(ctx context.Context, repos ledger.TransactionalRepositories, payment *paymentdomain.Payment, order *trade.Order, amount decimal.Decimal) error {
	if err := order.ApplyPayment(amount); err != nil {
		return err
	}
	if err := payment.AddAllocation(order.ID, amount); err != nil {
		return err
	}
	return repos.Orders().Save(ctx, order)
}

func (s *Service) findByIdempotencyKey(ctx context.Context, orgID uuid.UUID, key string) (*PaymentResponse, error) {
	if key == "" {
		return nil, nil
	}
	var response *PaymentResponse
	err := s.scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		record, err := repos.Idempotency().Find(ctx, orgID, key)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil
			}
			return err
		}
		p, err := repos.Payments().FindByIDForOrg(ctx, orgID, record.ResultID)
		if err != nil {
			return err
		}
		r := ToPaymentResponse(p)
		response = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

func (s *Service) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
}
