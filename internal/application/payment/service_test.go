package payment

import (
	"context"
	"testing"
	"time"

	"github.com/distribo/backend/internal/application/ledger"
	"github.com/distribo/backend/internal/application/ledger/ledgertest"
	"github.com/distribo/backend/internal/domain/partner"
	"github.com/distribo/backend/internal/domain/shared"
	"github.com/distribo/backend/internal/domain/shared/valueobject"
	"github.com/distribo/backend/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type paymentFixture struct {
	scope    *ledger.StaticScope
	ledger   *ledger.Service
	service  *Service
	orgID    uuid.UUID
	customer *partner.Customer
	seq      int
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	scope := ledgertest.NewScope()
	ledgerSvc := ledger.NewService()
	orgID := uuid.New()

	customer, err := partner.NewCustomer(orgID, "CUST-1", "Corner Store")
	require.NoError(t, err)
	require.NoError(t, scope.CustomerRepo.Save(context.Background(), customer))

	return &paymentFixture{
		scope:    scope,
		ledger:   ledgerSvc,
		service:  NewService(scope, ledgerSvc),
		orgID:    orgID,
		customer: customer,
	}
}

// addOpenOrder books an order with the given total directly, bumping the
// customer's debt the way order creation would
func (f *paymentFixture) addOpenOrder(t *testing.T, total int64) *trade.Order {
	t.Helper()
	ctx := context.Background()
	f.seq++
	number := trade.FormatOrderNumber("ORD", time.Now(), f.seq)
	order, err := trade.NewOrder(f.orgID, number, f.customer.ID, f.customer.Name)
	require.NoError(t, err)
	_, err = order.AddItem(uuid.New(), "Widget", "W-1", total, valueobject.NewMoneyFromDecimal(decimal.NewFromInt(1)))
	require.NoError(t, err)
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
	// orders must sort oldest first in the fakes
	time.Sleep(time.Millisecond)
	return order
}

func TestPaymentService_Record_FIFO(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)
	oldest := f.addOpenOrder(t, 100)
	middle := f.addOpenOrder(t, 200)
	newest := f.addOpenOrder(t, 300)

	resp, err := f.service.Record(ctx, f.orgID, RecordPaymentRequest{
		CustomerID: f.customer.ID,
		Amount:     decimal.NewFromInt(250),
		Mode:       "cash",
	})
	require.NoError(t, err)

	// oldest settled in full, middle partially, newest untouched
	require.Len(t, resp.Allocations, 2)
	assert.Equal(t, oldest.ID, resp.Allocations[0].OrderID)
	assert.Equal(t, "100.00", resp.Allocations[0].AmountApplied.StringFixed(2))
	assert.Equal(t, middle.ID, resp.Allocations[1].OrderID)
	assert.Equal(t, "150.00", resp.Allocations[1].AmountApplied.StringFixed(2))
	assert.True(t, resp.Unallocated.IsZero())

	assert.Equal(t, "600.00", resp.DebtBefore.StringFixed(2))
	assert.Equal(t, "350.00", resp.DebtAfter.StringFixed(2))

	gotOldest, _ := f.scope.OrderRepo.FindByIDForOrg(ctx, f.orgID, oldest.ID)
	assert.True(t, gotOldest.AmountDue().IsZero())
	gotMiddle, _ := f.scope.OrderRepo.FindByIDForOrg(ctx, f.orgID, middle.ID)
	assert.Equal(t, "50.00", gotMiddle.AmountDue().StringFixed(2))
	gotNewest, _ := f.scope.OrderRepo.FindByIDForOrg(ctx, f.orgID, newest.ID)
	assert.Equal(t, "300.00", gotNewest.AmountDue().StringFixed(2))
}

func TestPaymentService_Record_ExplicitOrderFirst(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)
	oldest := f.addOpenOrder(t, 100)
	target := f.addOpenOrder(t, 200)

	resp, err := f.service.Record(ctx, f.orgID, RecordPaymentRequest{
		CustomerID: f.customer.ID,
		Amount:     decimal.NewFromInt(250),
		Mode:       "transfer",
		OrderID:    &target.ID,
	})
	require.NoError(t, err)

	// the explicit target settles before the FIFO walk reaches oldest
	require.Len(t, resp.Allocations, 2)
	assert.Equal(t, target.ID, resp.Allocations[0].OrderID)
	assert.Equal(t, "200.00", resp.Allocations[0].AmountApplied.StringFixed(2))
	assert.Equal(t, oldest.ID, resp.Allocations[1].OrderID)
	assert.Equal(t, "50.00", resp.Allocations[1].AmountApplied.StringFixed(2))
}

func TestPaymentService_Record_OverpaymentRejected(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)
	f.addOpenOrder(t, 100)

	_, err := f.service.Record(ctx, f.orgID, RecordPaymentRequest{
		CustomerID: f.customer.ID,
		Amount:     decimal.NewFromFloat(100.01),
		Mode:       "cash",
	})
	require.Error(t, err)
	assert.Equal(t, "OVERPAYMENT_NOT_SUPPORTED", shared.CodeOf(err))

	var derr *shared.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "100.00", derr.Details["current_debt"])

	// nothing was recorded
	payments, err := f.scope.PaymentRepo.FindByCustomer(ctx, f.orgID, f.customer.ID, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestPaymentService_Record_UnallocatedRemainder(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)

	// manual debt with no backing order
	_, _, err := f.ledger.AdjustDebt(ctx, f.scope, f.orgID, ledger.DebtAdjustment{
		CustomerID: f.customer.ID,
		Delta:      decimal.NewFromInt(80),
		Type:       partner.DebtTransactionTypeAdjustment,
		SourceType: partner.DebtSourceTypeManual,
	})
	require.NoError(t, err)

	resp, err := f.service.Record(ctx, f.orgID, RecordPaymentRequest{
		CustomerID: f.customer.ID,
		Amount:     decimal.NewFromInt(80),
		Mode:       "cash",
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Allocations)
	assert.Equal(t, "80.00", resp.Unallocated.StringFixed(2))
	assert.True(t, resp.DebtAfter.IsZero())
}

func TestPaymentService_Record_OrderCustomerMismatch(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)
	f.addOpenOrder(t, 100)

	other, err := partner.NewCustomer(f.orgID, "CUST-2", "Other Store")
	require.NoError(t, err)
	require.NoError(t, f.scope.CustomerRepo.Save(ctx, other))
	foreign, err := trade.NewOrder(f.orgID, "ORD-20260831-9999", other.ID, other.Name)
	require.NoError(t, err)
	require.NoError(t, f.scope.OrderRepo.Save(ctx, foreign))

	_, err = f.service.Record(ctx, f.orgID, RecordPaymentRequest{
		CustomerID: f.customer.ID,
		Amount:     decimal.NewFromInt(50),
		Mode:       "cash",
		OrderID:    &foreign.ID,
	})
	assert.Equal(t, "ORDER_CUSTOMER_MISMATCH", shared.CodeOf(err))
}

func TestPaymentService_Record_IdempotentReplay(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)
	f.addOpenOrder(t, 500)

	req := RecordPaymentRequest{
		CustomerID:     f.customer.ID,
		Amount:         decimal.NewFromInt(200),
		Mode:           "cash",
		IdempotencyKey: "pay-789",
	}
	first, err := f.service.Record(ctx, f.orgID, req)
	require.NoError(t, err)
	second, err := f.service.Record(ctx, f.orgID, req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)

	// debt settled once, not twice
	customer, err := f.scope.CustomerRepo.FindByIDForOrg(ctx, f.orgID, f.customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "300.00", customer.CurrentDebt.StringFixed(2))
}

func TestPaymentService_RecordRefund(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)
	f.addOpenOrder(t, 300)

	_, err := f.service.Record(ctx, f.orgID, RecordPaymentRequest{
		CustomerID: f.customer.ID,
		Amount:     decimal.NewFromInt(300),
		Mode:       "cash",
	})
	require.NoError(t, err)

	resp, err := f.service.RecordRefund(ctx, f.orgID, RecordRefundRequest{
		CustomerID: f.customer.ID,
		Amount:     decimal.NewFromInt(50),
		Mode:       "cash",
		Remark:     "returned damaged goods",
	})
	require.NoError(t, err)

	assert.Equal(t, "REFUND", resp.Type)
	assert.Equal(t, "0.00", resp.DebtBefore.StringFixed(2))
	assert.Equal(t, "50.00", resp.DebtAfter.StringFixed(2))
	assert.Empty(t, resp.Allocations)

	customer, err := f.scope.CustomerRepo.FindByIDForOrg(ctx, f.orgID, f.customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "50.00", customer.CurrentDebt.StringFixed(2))
}

func TestPaymentService_Record_InvalidMode(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t)
	f.addOpenOrder(t, 100)

	_, err := f.service.Record(ctx, f.orgID, RecordPaymentRequest{
		CustomerID: f.customer.ID,
		Amount:     decimal.NewFromInt(50),
		Mode:       "barter",
	})
	assert.Equal(t, "INVALID_PAYMENT_MODE", shared.CodeOf(err))
}
