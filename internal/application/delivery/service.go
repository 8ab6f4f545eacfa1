package delivery

import (
	"context"
	"errors"
	"time"

	"github.com/distribo/backend/internal/application/ledger"
	apppayment "github.com/distribo/backend/internal/application/payment"
	"github.com/distribo/backend/internal/domain/delivery"
	paymentdomain "github.com/distribo/backend/internal/domain/payment"
	"github.com/distribo/backend/internal/domain/shared"
	"github.com/distribo/backend/internal/domain/trade"
	"github.com/google/uuid"
)

// Service drives the delivery lifecycle. Completing a delivery settles
// the collected money as a payment and posts the outcome into the
// deliverer's daily cash register, all in one transaction.
type Service struct {
	scope          ledger.TransactionScope
	payments       *apppayment.Service
	eventPublisher shared.EventPublisher
}

// NewService creates a new delivery Service
func NewService(scope ledger.TransactionScope, payments *apppayment.Service) *Service {
	return &Service{scope: scope, payments: payments}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Schedule creates a pending delivery for an order. The amount to
// collect at the door is the order's unpaid remainder at scheduling
// time. The order moves to assigned when its status allows it.
func (s *Service) Schedule(ctx context.Context, orgID uuid.UUID, req ScheduleDeliveryRequest) (*DeliveryResponse, error) {
	var d *delivery.Delivery
	err := s.scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		order, err := repos.Orders().FindByIDForUpdate(ctx, orgID, req.OrderID)
		if err != nil {
			return err
		}
		if order.Status == trade.OrderStatusCancelled {
			return shared.ErrInvalidStateTransition.WithMessage("Cannot schedule delivery for a cancelled order")
		}

		d, err = delivery.NewDelivery(orgID, order.ID, req.DelivererID, order.AmountDue(), req.ScheduledDate)
		if err != nil {
			return err
		}
		if err := d.TransitionTo(delivery.DeliveryStatusAssigned); err != nil {
			return err
		}

		if order.Status.CanTransitionTo(trade.OrderStatusAssigned) {
			if err := order.TransitionTo(trade.OrderStatusAssigned); err != nil {
				return err
			}
			if err := repos.Orders().Save(ctx, order); err != nil {
				return err
			}
		}

		return repos.Deliveries().Save(ctx, d)
	})
	if err != nil {
		return nil, err
	}
	response := ToDeliveryResponse(d)
	return &response, nil
}

// Transition moves a delivery along its status machine. Picking up
// moves the order into in_delivery when its status allows it.
func (s *Service) Transition(ctx context.Context, orgID, deliveryID uuid.UUID, req TransitionDeliveryRequest) (*DeliveryResponse, error) {
	target := delivery.DeliveryStatus(req.Status)
	var d *delivery.Delivery
	err := s.scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		var err error
		d, err = repos.Deliveries().FindByIDForUpdate(ctx, orgID, deliveryID)
		if err != nil {
			return err
		}
		if err := d.TransitionTo(target); err != nil {
			return err
		}

		if target == delivery.DeliveryStatusPickedUp {
			order, err := repos.Orders().FindByIDForUpdate(ctx, orgID, d.OrderID)
			if err != nil {
				return err
			}
			if order.Status.CanTransitionTo(trade.OrderStatusInDelivery) {
				if err := order.TransitionTo(trade.OrderStatusInDelivery); err != nil {
					return err
				}
				if err := repos.Orders().Save(ctx, order); err != nil {
					return err
				}
			}
		}

		return repos.Deliveries().Save(ctx, d)
	})
	if err != nil {
		return nil, err
	}
	response := ToDeliveryResponse(d)
	return &response, nil
}

// Complete settles a delivery: marks it delivered, books the collected
// amount as a payment allocated to the order, posts the collection into
// the deliverer's register for the day, and moves the order to
// delivered. Collecting less than the amount due is legal; the
// shortfall stays as open customer debt.
func (s *Service) Complete(ctx context.Context, orgID, deliveryID uuid.UUID, req CompleteDeliveryRequest) (*DeliveryResponse, error) {
	if replay, err := s.findByIdempotencyKey(ctx, orgID, req.IdempotencyKey); err != nil {
		return nil, err
	} else if replay != nil {
		return replay, nil
	}

	var d *delivery.Delivery
	err := s.scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		// Learn the customer before locking, then lock in the canonical
		// order: customer, delivery, order.
		peek, err := repos.Deliveries().FindByIDForOrg(ctx, orgID, deliveryID)
		if err != nil {
			return err
		}
		orderPeek, err := repos.Orders().FindByIDForOrg(ctx, orgID, peek.OrderID)
		if err != nil {
			return err
		}
		if _, err := repos.Customers().FindByIDForUpdate(ctx, orgID, orderPeek.CustomerID); err != nil {
			return err
		}
		d, err = repos.Deliveries().FindByIDForUpdate(ctx, orgID, deliveryID)
		if err != nil {
			return err
		}
		order, err := repos.Orders().FindByIDForUpdate(ctx, orgID, d.OrderID)
		if err != nil {
			return err
		}

		mode := paymentdomain.PaymentMode(req.Mode)
		if err := d.Complete(req.AmountCollected, mode, req.ProofOfDelivery); err != nil {
			return err
		}

		if req.AmountCollected.IsPositive() {
			if _, _, err := s.payments.RecordInScope(ctx, repos, orgID, apppayment.RecordPaymentRequest{
				CustomerID: order.CustomerID,
				Amount:     req.AmountCollected,
				Mode:       req.Mode,
				OrderID:    &order.ID,
				ReceivedBy: req.CollectedBy,
				Remark:     "delivery collection",
			}); err != nil {
				return err
			}
			// the payment updated the order; reload before transitioning
			order, err = repos.Orders().FindByIDForUpdate(ctx, orgID, d.OrderID)
			if err != nil {
				return err
			}
		}

		if order.Status.CanTransitionTo(trade.OrderStatusDelivered) {
			if err := order.TransitionTo(trade.OrderStatusDelivered); err != nil {
				return err
			}
			if err := repos.Orders().Save(ctx, order); err != nil {
				return err
			}
		}

		if err := s.postToRegister(ctx, repos, orgID, d); err != nil {
			return err
		}
		if err := repos.Deliveries().Save(ctx, d); err != nil {
			return err
		}

		if req.IdempotencyKey != "" {
			record := shared.NewIdempotencyRecord(orgID, req.IdempotencyKey, "delivery.complete", d.ID)
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

	s.publishEvents(ctx, d.GetDomainEvents())
	d.ClearDomainEvents()

	response := ToDeliveryResponse(d)
	return &response, nil
}

// Fail marks a delivery attempt as failed. The customer's debt is
// untouched: the order stays open and can be rescheduled or cancelled.
func (s *Service) Fail(ctx context.Context, orgID, deliveryID uuid.UUID, req FailDeliveryRequest) (*DeliveryResponse, error) {
	var d *delivery.Delivery
	err := s.scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		var err error
		d, err = repos.Deliveries().FindByIDForUpdate(ctx, orgID, deliveryID)
		if err != nil {
			return err
		}
		if err := d.Fail(req.Reason); err != nil {
			return err
		}
		return repos.Deliveries().Save(ctx, d)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, d.GetDomainEvents())
	d.ClearDomainEvents()

	response := ToDeliveryResponse(d)
	return &response, nil
}

// Reschedule creates a fresh pending attempt for a failed delivery,
// linked to the failed one
func (s *Service) Reschedule(ctx context.Context, orgID, deliveryID uuid.UUID, req RescheduleDeliveryRequest) (*DeliveryResponse, error) {
	var next *delivery.Delivery
	err := s.scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		failed, err := repos.Deliveries().FindByIDForUpdate(ctx, orgID, deliveryID)
		if err != nil {
			return err
		}
		next, err = failed.Reschedule(req.DelivererID, req.ScheduledDate)
		if err != nil {
			return err
		}
		return repos.Deliveries().Save(ctx, next)
	})
	if err != nil {
		return nil, err
	}
	response := ToDeliveryResponse(next)
	return &response, nil
}

// GetByID retrieves a delivery by ID
func (s *Service) GetByID(ctx context.Context, orgID, deliveryID uuid.UUID) (*DeliveryResponse, error) {
	var response DeliveryResponse
	err := s.scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		d, err := repos.Deliveries().FindByIDForOrg(ctx, orgID, deliveryID)
		if err != nil {
			return err
		}
		response = ToDeliveryResponse(d)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// ListByOrder retrieves all delivery attempts for an order, newest first
func (s *Service) ListByOrder(ctx context.Context, orgID, orderID uuid.UUID) ([]DeliveryResponse, error) {
	var out []DeliveryResponse
	err := s.scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		deliveries, err := repos.Deliveries().FindByOrder(ctx, orgID, orderID)
		if err != nil {
			return err
		}
		out = make([]DeliveryResponse, 0, len(deliveries))
		for i := range deliveries {
			out = append(out, ToDeliveryResponse(&deliveries[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// postToRegister posts a settled delivery into the deliverer's register
// for today, opening the register lazily on the first settlement of the
// day
func (s *Service) postToRegister(ctx context.Context, repos ledger.TransactionalRepositories, orgID uuid.UUID, d *delivery.Delivery) error {
	day := time.Now()
	register, err := repos.Registers().FindByDelivererAndDate(ctx, orgID, d.DelivererID, day, true)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		register, err = delivery.NewDailyCashRegister(orgID, d.DelivererID, day)
		if err != nil {
			return err
		}
	}
	if err := register.RecordCollection(d.TotalToCollect, d.AmountCollected); err != nil {
		return err
	}
	return repos.Registers().Save(ctx, register)
}

func (s *Service) findByIdempotencyKey(ctx context.Context, orgID uuid.UUID, key string) (*DeliveryResponse, error) {
	if key == "" {
		return nil, nil
	}
	var response *DeliveryResponse
	err := s.scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		record, err := repos.Idempotency().Find(ctx, orgID, key)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil
			}
			return err
		}
		d, err := repos.Deliveries().FindByIDForOrg(ctx, orgID, record.ResultID)
		if err != nil {
			return err
		}
		r := ToDeliveryResponse(d)
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
