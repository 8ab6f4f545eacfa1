package partner

import (
	"context"
	"testing"
	"time"

	"github.com/distribo/backend/internal/application/ledger"
	"github.com/distribo/backend/internal/application/ledger/ledgertest"
	"github.com/distribo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCustomerService(t *testing.T) (*CustomerService, *ledger.StaticScope, uuid.UUID) {
	t.Helper()
	scope := ledgertest.NewScope()
	return NewCustomerService(scope, ledger.NewService()), scope, uuid.New()
}

func TestCustomerService_Create(t *testing.T) {
	ctx := context.Background()
	svc, _, orgID := newCustomerService(t)

	resp, err := svc.Create(ctx, orgID, CreateCustomerRequest{
		Code:        "CUST-1",
		Name:        "Corner Store",
		ContactName: "Ana",
		Phone:       "+351-900-000-001",
	})
	require.NoError(t, err)
	assert.Equal(t, "CUST-1", resp.Code)
	assert.Equal(t, "Ana", resp.ContactName)
	assert.Equal(t, "active", resp.Status)
	assert.True(t, resp.CurrentDebt.IsZero())
	assert.False(t, resp.CreditLimitEnabled)
}

func TestCustomerService_Create_DuplicateCode(t *testing.T) {
	ctx := context.Background()
	svc, _, orgID := newCustomerService(t)

	_, err := svc.Create(ctx, orgID, CreateCustomerRequest{Code: "CUST-1", Name: "First"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, orgID, CreateCustomerRequest{Code: "CUST-1", Name: "Second"})
	require.Error(t, err)
	assert.Equal(t, "ALREADY_EXISTS", shared.CodeOf(err))
}

func TestCustomerService_Create_SameCodeOtherOrg(t *testing.T) {
	ctx := context.Background()
	svc, _, orgID := newCustomerService(t)

	_, err := svc.Create(ctx, orgID, CreateCustomerRequest{Code: "CUST-1", Name: "First"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, uuid.New(), CreateCustomerRequest{Code: "CUST-1", Name: "Second"})
	assert.NoError(t, err)
}

func TestCustomerService_SetCreditLimit(t *testing.T) {
	ctx := context.Background()
	svc, _, orgID := newCustomerService(t)

	created, err := svc.Create(ctx, orgID, CreateCustomerRequest{Code: "CUST-1", Name: "Store"})
	require.NoError(t, err)

	resp, err := svc.SetCreditLimit(ctx, orgID, created.ID, SetCreditLimitRequest{Limit: decimal.NewFromInt(500)})
	require.NoError(t, err)
	assert.True(t, resp.CreditLimitEnabled)
	assert.Equal(t, "500", resp.CreditLimit.String())
	assert.Equal(t, "500", resp.AvailableCredit.String())

	_, err = svc.SetCreditLimit(ctx, orgID, created.ID, SetCreditLimitRequest{Limit: decimal.NewFromInt(-1)})
	require.Error(t, err)
	assert.Equal(t, "INVALID_CREDIT_LIMIT", shared.CodeOf(err))
}

func TestCustomerService_AdjustDebt(t *testing.T) {
	ctx := context.Background()
	svc, _, orgID := newCustomerService(t)

	created, err := svc.Create(ctx, orgID, CreateCustomerRequest{Code: "CUST-1", Name: "Store"})
	require.NoError(t, err)

	resp, err := svc.AdjustDebt(ctx, orgID, created.ID, AdjustDebtRequest{
		Amount: decimal.NewFromInt(120),
		Reason: "opening balance migration",
	})
	require.NoError(t, err)
	assert.Equal(t, "120", resp.CurrentDebt.String())

	resp, err = svc.AdjustDebt(ctx, orgID, created.ID, AdjustDebtRequest{
		Amount: decimal.NewFromInt(-20),
		Reason: "billing correction",
	})
	require.NoError(t, err)
	assert.Equal(t, "100", resp.CurrentDebt.String())

	history, err := svc.DebtHistory(ctx, orgID, created.ID, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "ADJUSTMENT", history[0].Type)
	assert.Equal(t, "MANUAL", history[0].SourceType)
	assert.Equal(t, "opening balance migration", history[0].Remark)
	assert.Equal(t, "-20", history[1].Amount.String())
	assert.Equal(t, "100", history[1].DebtAfter.String())
}

func TestCustomerService_AdjustDebt_Guards(t *testing.T) {
	ctx := context.Background()
	svc, _, orgID := newCustomerService(t)

	created, err := svc.Create(ctx, orgID, CreateCustomerRequest{Code: "CUST-1", Name: "Store"})
	require.NoError(t, err)

	_, err = svc.AdjustDebt(ctx, orgID, created.ID, AdjustDebtRequest{
		Amount: decimal.Zero,
		Reason: "noop",
	})
	require.Error(t, err)
	assert.Equal(t, "INVALID_AMOUNT", shared.CodeOf(err))

	// balance is zero, a decrease would take it negative
	_, err = svc.AdjustDebt(ctx, orgID, created.ID, AdjustDebtRequest{
		Amount: decimal.NewFromInt(-10),
		Reason: "bad correction",
	})
	require.Error(t, err)
	assert.Equal(t, "DEBT_BELOW_ZERO", shared.CodeOf(err))

	// manual increases respect the credit limit like any charge
	_, err = svc.SetCreditLimit(ctx, orgID, created.ID, SetCreditLimitRequest{Limit: decimal.NewFromInt(50)})
	require.NoError(t, err)
	_, err = svc.AdjustDebt(ctx, orgID, created.ID, AdjustDebtRequest{
		Amount: decimal.NewFromInt(60),
		Reason: "too much",
	})
	require.Error(t, err)
	assert.Equal(t, "CREDIT_LIMIT_EXCEEDED", shared.CodeOf(err))
}

func TestCustomerService_DeactivateActivate(t *testing.T) {
	ctx := context.Background()
	svc, _, orgID := newCustomerService(t)

	created, err := svc.Create(ctx, orgID, CreateCustomerRequest{Code: "CUST-1", Name: "Store"})
	require.NoError(t, err)

	resp, err := svc.Deactivate(ctx, orgID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "inactive", resp.Status)

	resp, err = svc.Activate(ctx, orgID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "active", resp.Status)
}

func TestCustomerService_GetByCode_NotFound(t *testing.T) {
	svc, _, orgID := newCustomerService(t)
	_, err := svc.GetByCode(context.Background(), orgID, "NOPE")
	require.Error(t, err)
	assert.True(t, shared.IsNotFound(err))
}
