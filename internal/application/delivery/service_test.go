package delivery

import (
	"context"
	"testing"
	"time"

	"github.com/distribo/backend/internal/application/ledger"
	"github.com/distribo/backend/internal/application/ledger/ledgertest"
	apppayment "github.com/distribo/backend/internal/application/payment"
	"github.com/distribo/backend/internal/domain/partner"
	"github.com/distribo/backend/internal/domain/shared"
	"github.com/distribo/backend/internal/domain/shared/valueobject"
	"github.com/distribo/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type deliveryFixture struct {
	scope     *ledger.StaticScope
	ledger    *ledger.Service
	service   *Service
	registers *RegisterService
	orgID     uuid.UUID
	customer  *partner.Customer
	deliverer uuid.UUID
	seq       int
}

func newDeliveryFixture(t *testing.T) *deliveryFixture {
	t.Helper()
	scope := ledgertest.NewScope()
	ledgerSvc := ledger.NewService()
	paymentSvc := apppayment.NewService(scope, ledgerSvc)
	orgID := uuid.New()

	customer, err := partner.NewCustomer(orgID, "CUST-1", "Corner Store")
	require.NoError(t, err)
	require.NoError(t, scope.CustomerRepo.Save(context.Background(), customer))

	return &deliveryFixture{
		scope:     scope,
		ledger:    ledgerSvc,
		service:   NewService(scope, paymentSvc),
		registers: NewRegisterService(scope),
		orgID:     orgID,
		customer:  customer,
		deliverer: uuid.New(),
	}
}

// addOrderReadyForDelivery books an order with the given total, bumps
// the customer's debt, and walks the order to the ready status
func (f *deliveryFixture) addOrderReadyForDelivery(t *testing.T, total int64) *trade.Order {
	t.Helper()
	ctx := context.Background()
	f.seq++
	number := trade.FormatOrderNumber("ORD", time.Now(), f.seq)
	order, err := trade.NewOrder(f.orgID, number, f.customer.ID, f.customer.Name)
	require.NoError(t, err)
	_, err = order.AddItem(uuid.New(), "Widget", "W-1", total, valueobject.NewMoneyFromDecimal(decimal.NewFromInt(1)))
	require.NoError(t, err)
	for _, status := range []trade.OrderStatus{trade.OrderStatusConfirmed, trade.OrderStatusPreparing, trade.OrderStatusReady} {
		require.NoError(t, order.TransitionTo(status))
	}
	require.NoError(t, f.scope.OrderRepo.Save(ctx, order))

	_, _, err = f.ledger.AdjustDebt(ctx, f.scope, f.orgID, ledger.DebtAdjustment{
		CustomerID: f.customer.ID,
		Delta:      order.Total,
		Type:       partner.DebtTransactionTypeOrderCharge,
		SourceType: partner.DebtSourceTypeOrder,
		SourceID:   &order.ID,
		Reference:  order.OrderNumber,
	})
	require.NoError(t, err)
	return order
}

// scheduleAndPickUp schedules a delivery for the order and advances it
// to picked_up, mirroring the order into in_delivery
func (f *deliveryFixture) scheduleAndPickUp(t *testing.T, orderID uuid.UUID) *DeliveryResponse {
	t.Helper()
	ctx := context.Background()
	scheduled, err := f.service.Schedule(ctx, f.orgID, ScheduleDeliveryRequest{
		OrderID:       orderID,
		DelivererID:   f.deliverer,
		ScheduledDate: time.Now(),
	})
	require.NoError(t, err)
	pickedUp, err := f.service.Transition(ctx, f.orgID, scheduled.ID, TransitionDeliveryRequest{Status: "picked_up"})
	require.NoError(t, err)
	return pickedUp
}

func TestDeliveryService_Schedule(t *testing.T) {
	ctx := context.Background()
	f := newDeliveryFixture(t)
	order := f.addOrderReadyForDelivery(t, 250)

	resp, err := f.service.Schedule(ctx, f.orgID, ScheduleDeliveryRequest{
		OrderID:       order.ID,
		DelivererID:   f.deliverer,
		ScheduledDate: time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, "assigned", resp.Status)
	assert.Equal(t, "250.00", resp.TotalToCollect.StringFixed(2))

	// the ready order moved to assigned
	got, err := f.scope.OrderRepo.FindByIDForOrg(ctx, f.orgID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, trade.OrderStatusAssigned, got.Status)
}

func TestDeliveryService_Schedule_CancelledOrder(t *testing.T) {
	ctx := context.Background()
	f := newDeliveryFixture(t)
	order := f.addOrderReadyForDelivery(t, 100)
	require.NoError(t, order.Cancel("stock damaged", uuid.New()))
	require.NoError(t, f.scope.OrderRepo.Save(ctx, order))

	_, err := f.service.Schedule(ctx, f.orgID, ScheduleDeliveryRequest{
		OrderID:       order.ID,
		DelivererID:   f.deliverer,
		ScheduledDate: time.Now(),
	})
	assert.Equal(t, "INVALID_STATE_TRANSITION", shared.CodeOf(err))
}

func TestDeliveryService_Complete_FullCollection(t *testing.T) {
	ctx := context.Background()
	f := newDeliveryFixture(t)
	order := f.addOrderReadyForDelivery(t, 300)
	d := f.scheduleAndPickUp(t, order.ID)

	resp, err := f.service.Complete(ctx, f.orgID, d.ID, CompleteDeliveryRequest{
		AmountCollected: decimal.NewFromInt(300),
		Mode:            "cash",
		ProofOfDelivery: "signature.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, "delivered", resp.Status)
	assert.True(t, resp.Shortfall.IsZero())

	// the collection settled the customer's debt through a payment
	customer, err := f.scope.CustomerRepo.FindByIDForOrg(ctx, f.orgID, f.customer.ID)
	require.NoError(t, err)
	assert.True(t, customer.CurrentDebt.IsZero())

	payments, err := f.scope.PaymentRepo.FindByCustomer(ctx, f.orgID, f.customer.ID, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, payments, 1)
	require.Len(t, payments[0].Allocations, 1)
	assert.Equal(t, order.ID, payments[0].Allocations[0].OrderID)
	assert.Equal(t, "300.00", payments[0].Allocations[0].AmountApplied.StringFixed(2))

	// the order is fully paid and delivered
	got, err := f.scope.OrderRepo.FindByIDForOrg(ctx, f.orgID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, trade.OrderStatusDelivered, got.Status)
	assert.True(t, got.AmountDue().IsZero())

	// the register opened lazily and recorded the collection
	register, err := f.registers.GetForDeliverer(ctx, f.orgID, f.deliverer, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "300.00", register.ExpectedCollection.StringFixed(2))
	assert.Equal(t, "300.00", register.ActualCollection.StringFixed(2))
	assert.True(t, register.NewDebtCreated.IsZero())
}

func TestDeliveryService_Complete_PartialCollection(t *testing.T) {
	ctx := context.Background()
	f := newDeliveryFixture(t)
	order := f.addOrderReadyForDelivery(t, 500)
	d := f.scheduleAndPickUp(t, order.ID)

	resp, err := f.service.Complete(ctx, f.orgID, d.ID, CompleteDeliveryRequest{
		AmountCollected: decimal.NewFromInt(350),
		Mode:            "cash",
	})
	require.NoError(t, err)
	assert.Equal(t, "150.00", resp.Shortfall.StringFixed(2))

	// the shortfall stays as open customer debt
	customer, err := f.scope.CustomerRepo.FindByIDForOrg(ctx, f.orgID, f.customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "150.00", customer.CurrentDebt.StringFixed(2))

	register, err := f.registers.GetForDeliverer(ctx, f.orgID, f.deliverer, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "150.00", register.NewDebtCreated.StringFixed(2))
}

func TestDeliveryService_Complete_ZeroCollection(t *testing.T) {
	ctx := context.Background()
	f := newDeliveryFixture(t)
	order := f.addOrderReadyForDelivery(t, 200)
	d := f.scheduleAndPickUp(t, order.ID)

	_, err := f.service.Complete(ctx, f.orgID, d.ID, CompleteDeliveryRequest{
		AmountCollected: decimal.Zero,
	})
	require.NoError(t, err)

	// no payment was recorded, the full amount stays as debt
	payments, err := f.scope.PaymentRepo.FindByCustomer(ctx, f.orgID, f.customer.ID, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Empty(t, payments)
	customer, _ := f.scope.CustomerRepo.FindByIDForOrg(ctx, f.orgID, f.customer.ID)
	assert.Equal(t, "200.00", customer.CurrentDebt.StringFixed(2))
}

func TestDeliveryService_Complete_OverCollection(t *testing.T) {
	ctx := context.Background()
	f := newDeliveryFixture(t)
	order := f.addOrderReadyForDelivery(t, 100)
	d := f.scheduleAndPickUp(t, order.ID)

	_, err := f.service.Complete(ctx, f.orgID, d.ID, CompleteDeliveryRequest{
		AmountCollected: decimal.NewFromFloat(100.01),
		Mode:            "cash",
	})
	assert.Equal(t, "COLLECTION_EXCEEDS_DUE", shared.CodeOf(err))
}

func TestDeliveryService_Complete_IdempotentReplay(t *testing.T) {
	ctx := context.Background()
	f := newDeliveryFixture(t)
	order := f.addOrderReadyForDelivery(t, 300)
	d := f.scheduleAndPickUp(t, order.ID)

	req := CompleteDeliveryRequest{
		AmountCollected: decimal.NewFromInt(300),
		Mode:            "cash",
		IdempotencyKey:  "deliv-42",
	}
	first, err := f.service.Complete(ctx, f.orgID, d.ID, req)
	require.NoError(t, err)
	second, err := f.service.Complete(ctx, f.orgID, d.ID, req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	// settled once: debt zero, one payment, register totals unchanged
	customer, _ := f.scope.CustomerRepo.FindByIDForOrg(ctx, f.orgID, f.customer.ID)
	assert.True(t, customer.CurrentDebt.IsZero())
	payments, _ := f.scope.PaymentRepo.FindByCustomer(ctx, f.orgID, f.customer.ID, shared.DefaultFilter())
	assert.Len(t, payments, 1)
	register, err := f.registers.GetForDeliverer(ctx, f.orgID, f.deliverer, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "300.00", register.ActualCollection.StringFixed(2))
}

func TestDeliveryService_FailAndReschedule(t *testing.T) {
	ctx := context.Background()
	f := newDeliveryFixture(t)
	order := f.addOrderReadyForDelivery(t, 180)
	d := f.scheduleAndPickUp(t, order.ID)

	failed, err := f.service.Fail(ctx, f.orgID, d.ID, FailDeliveryRequest{Reason: "customer not home"})
	require.NoError(t, err)
	assert.Equal(t, "failed", failed.Status)
	assert.Equal(t, "customer not home", failed.FailureReason)

	// a failed attempt never reverses debt
	customer, err := f.scope.CustomerRepo.FindByIDForOrg(ctx, f.orgID, f.customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "180.00", customer.CurrentDebt.StringFixed(2))

	tomorrow := time.Now().Add(24 * time.Hour)
	next, err := f.service.Reschedule(ctx, f.orgID, d.ID, RescheduleDeliveryRequest{
		DelivererID:   f.deliverer,
		ScheduledDate: tomorrow,
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", next.Status)
	assert.Equal(t, order.ID, next.OrderID)
	require.NotNil(t, next.PreviousDeliveryID)
	assert.Equal(t, d.ID, *next.PreviousDeliveryID)

	attempts, err := f.service.ListByOrder(ctx, f.orgID, order.ID)
	require.NoError(t, err)
	assert.Len(t, attempts, 2)
}
