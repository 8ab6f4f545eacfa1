package trade

import (
	"context"
	"testing"

	"github.com/distribo/backend/internal/application/ledger"
	"github.com/distribo/backend/internal/application/ledger/ledgertest"
	"github.com/distribo/backend/internal/domain/catalog"
	"github.com/distribo/backend/internal/domain/partner"
	"github.com/distribo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderFixture struct {
	scope    *ledger.StaticScope
	service  *OrderService
	orgID    uuid.UUID
	customer *partner.Customer
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	scope := ledgertest.NewScope()
	svc := NewOrderService(scope, ledger.NewService(), &ledgertest.SequentialNumbers{})
	orgID := uuid.New()

	customer, err := partner.NewCustomer(orgID, "CUST-1", "Corner Store")
	require.NoError(t, err)
	require.NoError(t, scope.CustomerRepo.Save(context.Background(), customer))

	return &orderFixture{scope: scope, service: svc, orgID: orgID, customer: customer}
}

func (f *orderFixture) addProduct(t *testing.T, code string, price float64, stock int64) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(f.orgID, code, "Product "+code, decimal.NewFromFloat(price), stock)
	require.NoError(t, err)
	require.NoError(t, f.scope.ProductRepo.Save(context.Background(), p))
	return p
}

func TestOrderService_Create(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	p1 := f.addProduct(t, "P1", 25.50, 100)
	p2 := f.addProduct(t, "P2", 10, 40)

	resp, err := f.service.Create(ctx, f.orgID, CreateOrderRequest{
		CustomerID: f.customer.ID,
		Items: []OrderItemRequest{
			{ProductID: p1.ID, Quantity: 4},
			{ProductID: p2.ID, Quantity: 3},
		},
	})
	require.NoError(t, err)

	assert.Regexp(t, `^ORD-\d{8}-\d{4}$`, resp.OrderNumber)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "132.00", resp.Total.StringFixed(2))
	assert.Equal(t, "132.00", resp.AmountDue.StringFixed(2))
	assert.Len(t, resp.Items, 2)

	// stock consumed
	gotP1, err := f.scope.ProductRepo.FindByIDForOrg(ctx, f.orgID, p1.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(96), gotP1.CurrentStock)
	gotP2, err := f.scope.ProductRepo.FindByIDForOrg(ctx, f.orgID, p2.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(37), gotP2.CurrentStock)

	// debt booked with an audit record
	customer, err := f.scope.CustomerRepo.FindByIDForOrg(ctx, f.orgID, f.customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "132.00", customer.CurrentDebt.StringFixed(2))

	txs := f.scope.DebtTxRepo.(*ledgertest.DebtTransactionRepo).All()
	require.Len(t, txs, 1)
	assert.Equal(t, partner.DebtTransactionTypeOrderCharge, txs[0].TransactionType)
	assert.Equal(t, resp.OrderNumber, txs[0].Reference)
}

func TestOrderService_Create_SequentialNumbers(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	p := f.addProduct(t, "P1", 10, 100)

	first, err := f.service.Create(ctx, f.orgID, CreateOrderRequest{
		CustomerID: f.customer.ID,
		Items:      []OrderItemRequest{{ProductID: p.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	second, err := f.service.Create(ctx, f.orgID, CreateOrderRequest{
		CustomerID: f.customer.ID,
		Items:      []OrderItemRequest{{ProductID: p.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.OrderNumber, second.OrderNumber)
}

func TestOrderService_Create_InsufficientStock(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	p := f.addProduct(t, "P1", 10, 2)

	_, err := f.service.Create(ctx, f.orgID, CreateOrderRequest{
		CustomerID: f.customer.ID,
		Items:      []OrderItemRequest{{ProductID: p.ID, Quantity: 3}},
	})
	require.Error(t, err)
	assert.Equal(t, "INSUFFICIENT_STOCK", shared.CodeOf(err))

	var derr *shared.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, int64(2), derr.Details["available_stock"])

	got, err := f.scope.ProductRepo.FindByIDForOrg(ctx, f.orgID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.CurrentStock)
}

func TestOrderService_Create_CreditLimit(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	p := f.addProduct(t, "P1", 100, 10)
	require.NoError(t, f.customer.SetCreditLimit(decimal.NewFromInt(150)))
	require.NoError(t, f.scope.CustomerRepo.Save(ctx, f.customer))

	_, err := f.service.Create(ctx, f.orgID, CreateOrderRequest{
		CustomerID: f.customer.ID,
		Items:      []OrderItemRequest{{ProductID: p.ID, Quantity: 2}},
	})
	require.Error(t, err)
	assert.Equal(t, "CREDIT_LIMIT_EXCEEDED", shared.CodeOf(err))
}

func TestOrderService_Create_InactiveCustomer(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	p := f.addProduct(t, "P1", 10, 10)
	f.customer.Deactivate()
	require.NoError(t, f.scope.CustomerRepo.Save(ctx, f.customer))

	_, err := f.service.Create(ctx, f.orgID, CreateOrderRequest{
		CustomerID: f.customer.ID,
		Items:      []OrderItemRequest{{ProductID: p.ID, Quantity: 1}},
	})
	assert.Equal(t, "CUSTOMER_INACTIVE", shared.CodeOf(err))
}

func TestOrderService_Create_InactiveProduct(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	p := f.addProduct(t, "P1", 10, 10)
	p.Deactivate()
	require.NoError(t, f.scope.ProductRepo.Save(ctx, p))

	_, err := f.service.Create(ctx, f.orgID, CreateOrderRequest{
		CustomerID: f.customer.ID,
		Items:      []OrderItemRequest{{ProductID: p.ID, Quantity: 1}},
	})
	assert.Equal(t, "PRODUCT_UNAVAILABLE", shared.CodeOf(err))
}

func TestOrderService_Create_IdempotentReplay(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	p := f.addProduct(t, "P1", 10, 100)

	req := CreateOrderRequest{
		CustomerID:     f.customer.ID,
		Items:          []OrderItemRequest{{ProductID: p.ID, Quantity: 5}},
		IdempotencyKey: "req-abc-123",
	}

	first, err := f.service.Create(ctx, f.orgID, req)
	require.NoError(t, err)
	second, err := f.service.Create(ctx, f.orgID, req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.OrderNumber, second.OrderNumber)

	// the replay applied no second stock deduction
	got, err := f.scope.ProductRepo.FindByIDForOrg(ctx, f.orgID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(95), got.CurrentStock)

	customer, err := f.scope.CustomerRepo.FindByIDForOrg(ctx, f.orgID, f.customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "50.00", customer.CurrentDebt.StringFixed(2))
}

func TestOrderService_Cancel(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	p := f.addProduct(t, "P1", 20, 50)

	created, err := f.service.Create(ctx, f.orgID, CreateOrderRequest{
		CustomerID: f.customer.ID,
		Items:      []OrderItemRequest{{ProductID: p.ID, Quantity: 10}},
	})
	require.NoError(t, err)

	cancelled, err := f.service.Cancel(ctx, f.orgID, created.ID, CancelOrderRequest{
		Reason:  "customer changed their mind",
		ActorID: uuid.New(),
	})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)
	assert.Equal(t, "customer changed their mind", cancelled.CancelReason)

	// stock restored
	got, err := f.scope.ProductRepo.FindByIDForOrg(ctx, f.orgID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), got.CurrentStock)

	// debt released
	customer, err := f.scope.CustomerRepo.FindByIDForOrg(ctx, f.orgID, f.customer.ID)
	require.NoError(t, err)
	assert.True(t, customer.CurrentDebt.IsZero())

	// reversal recorded in the audit trail
	txs := f.scope.DebtTxRepo.(*ledgertest.DebtTransactionRepo).All()
	require.Len(t, txs, 2)
	assert.Equal(t, partner.DebtTransactionTypeOrderReversal, txs[1].TransactionType)

	// cancelling twice fails without double-reversing
	_, err = f.service.Cancel(ctx, f.orgID, created.ID, CancelOrderRequest{Reason: "again", ActorID: uuid.New()})
	assert.Equal(t, "INVALID_STATE_TRANSITION", shared.CodeOf(err))
	customer, _ = f.scope.CustomerRepo.FindByIDForOrg(ctx, f.orgID, f.customer.ID)
	assert.True(t, customer.CurrentDebt.IsZero())
}

func TestOrderService_Cancel_ReleasesOnlyUnpaidRemainder(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	p := f.addProduct(t, "P1", 50, 10)

	created, err := f.service.Create(ctx, f.orgID, CreateOrderRequest{
		CustomerID: f.customer.ID,
		Items:      []OrderItemRequest{{ProductID: p.ID, Quantity: 4}}, // total 200
	})
	require.NoError(t, err)

	// simulate a partial payment of 80 booked against the order
	order, err := f.scope.OrderRepo.FindByIDForOrg(ctx, f.orgID, created.ID)
	require.NoError(t, err)
	require.NoError(t, order.ApplyPayment(decimal.NewFromInt(80)))
	require.NoError(t, f.scope.OrderRepo.Save(ctx, order))
	_, _, err = ledger.NewService().AdjustDebt(ctx, f.scope, f.orgID, ledger.DebtAdjustment{
		CustomerID: f.customer.ID,
		Delta:      decimal.NewFromInt(-80),
		Type:       partner.DebtTransactionTypePayment,
		SourceType: partner.DebtSourceTypePayment,
	})
	require.NoError(t, err)

	_, err = f.service.Cancel(ctx, f.orgID, created.ID, CancelOrderRequest{Reason: "short shipped", ActorID: uuid.New()})
	require.NoError(t, err)

	// only the unpaid 120 was released; the paid 80 stays settled
	customer, err := f.scope.CustomerRepo.FindByIDForOrg(ctx, f.orgID, f.customer.ID)
	require.NoError(t, err)
	assert.True(t, customer.CurrentDebt.IsZero())
	txs := f.scope.DebtTxRepo.(*ledgertest.DebtTransactionRepo).All()
	last := txs[len(txs)-1]
	assert.Equal(t, "120.00", last.Amount.StringFixed(2))
}

func TestOrderService_Transition(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	p := f.addProduct(t, "P1", 10, 10)

	created, err := f.service.Create(ctx, f.orgID, CreateOrderRequest{
		CustomerID: f.customer.ID,
		Items:      []OrderItemRequest{{ProductID: p.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	resp, err := f.service.Transition(ctx, f.orgID, created.ID, TransitionOrderRequest{Status: "confirmed"})
	require.NoError(t, err)
	assert.Equal(t, "confirmed", resp.Status)

	_, err = f.service.Transition(ctx, f.orgID, created.ID, TransitionOrderRequest{Status: "delivered"})
	assert.Equal(t, "INVALID_STATE_TRANSITION", shared.CodeOf(err))
}

func TestOrderService_GetByNumber(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)
	p := f.addProduct(t, "P1", 10, 10)

	created, err := f.service.Create(ctx, f.orgID, CreateOrderRequest{
		CustomerID: f.customer.ID,
		Items:      []OrderItemRequest{{ProductID: p.ID, Quantity: 1}},
	})
	require.NoError(t, err)

	got, err := f.service.GetByNumber(ctx, f.orgID, created.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = f.service.GetByID(ctx, f.orgID, uuid.New())
	assert.True(t, shared.IsNotFound(err))
}
