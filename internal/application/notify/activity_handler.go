package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/distribo/backend/internal/domain/delivery"
	"github.com/distribo/backend/internal/domain/partner"
	"github.com/distribo/backend/internal/domain/shared"
	"github.com/distribo/backend/internal/domain/trade"
)

// ActivityLogHandler turns committed domain events into a structured
// activity feed. It is the notification fan-out point; real channels
// (SMS to the deliverer, owner digest) hang off the same events.
type ActivityLogHandler struct {
	logger *zap.Logger
}

// NewActivityLogHandler creates an activity log handler
func NewActivityLogHandler(logger *zap.Logger) *ActivityLogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityLogHandler{logger: logger.Named("activity")}
}

// EventTypes lists the events this handler consumes
func (h *ActivityLogHandler) EventTypes() []string {
	return []string{
		trade.EventTypeOrderCreated,
		trade.EventTypeOrderCancelled,
		partner.EventTypeCustomerDebtChanged,
		delivery.EventTypeDeliveryCompleted,
		delivery.EventTypeDeliveryFailed,
		delivery.EventTypeRegisterClosed,
	}
}

// Handle writes one activity line per event
func (h *ActivityLogHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("org_id", event.OrgID().String()),
		zap.String("aggregate_id", event.AggregateID().String()),
	}

	switch e := event.(type) {
	case *trade.OrderCreatedEvent:
		fields = append(fields,
			zap.String("order_number", e.OrderNumber),
			zap.String("total", e.Total.String()),
		)
		h.logger.Info("order created", fields...)
	case *trade.OrderCancelledEvent:
		fields = append(fields,
			zap.String("order_number", e.OrderNumber),
			zap.String("released", e.Released.String()),
			zap.String("reason", e.Reason),
		)
		h.logger.Info("order cancelled", fields...)
	case *partner.CustomerDebtChangedEvent:
		fields = append(fields,
			zap.String("transaction_type", string(e.TransactionType)),
			zap.String("debt_before", e.DebtBefore.String()),
			zap.String("debt_after", e.DebtAfter.String()),
		)
		h.logger.Info("customer debt changed", fields...)
	case *delivery.DeliveryCompletedEvent:
		fields = append(fields,
			zap.String("order_id", e.OrderID.String()),
			zap.String("collected", e.AmountCollected.String()),
			zap.String("to_collect", e.TotalToCollect.String()),
		)
		h.logger.Info("delivery completed", fields...)
	case *delivery.DeliveryFailedEvent:
		fields = append(fields,
			zap.String("order_id", e.OrderID.String()),
			zap.String("reason", e.Reason),
		)
		h.logger.Warn("delivery failed", fields...)
	case *delivery.RegisterClosedEvent:
		fields = append(fields,
			zap.String("deliverer_id", e.DelivererID.String()),
			zap.String("actual", e.ActualCollection.String()),
			zap.String("discrepancy", e.Discrepancy.String()),
		)
		h.logger.Info("register closed", fields...)
	default:
		h.logger.Info("domain event", append(fields, zap.String("event_type", event.EventType()))...)
	}
	return nil
}

var _ shared.EventHandler = (*ActivityLogHandler)(nil)
