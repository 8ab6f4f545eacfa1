package partner

import (
	"testing"

	"github.com/distribo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestCustomer(t *testing.T) *Customer {
	customer, err := NewCustomer(uuid.New(), "CUST-001", "Acme Wholesale")
	require.NoError(t, err)
	return customer
}

func TestNewCustomer(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		custName string
		wantErr  string
	}{
		{"valid", "CUST-001", "Acme Wholesale", ""},
		{"lowercase code normalized", "cust-002", "Acme", ""},
		{"empty code", "", "Acme", "INVALID_CUSTOMER_CODE"},
		{"code with spaces", "bad code", "Acme", "INVALID_CUSTOMER_CODE"},
		{"empty name", "CUST-003", "", "INVALID_CUSTOMER_NAME"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			customer, err := NewCustomer(uuid.New(), tt.code, tt.custName)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, shared.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.True(t, customer.IsActive())
			assert.True(t, customer.CurrentDebt.IsZero())
			assert.False(t, customer.CreditLimitEnabled)
			assert.Len(t, customer.GetDomainEvents(), 1)
		})
	}
}

func TestCustomer_CodeIsUppercased(t *testing.T) {
	customer, err := NewCustomer(uuid.New(), "cust-001", "Acme")
	require.NoError(t, err)
	assert.Equal(t, "CUST-001", customer.Code)
}

func TestCustomer_CheckCredit(t *testing.T) {
	customer := createTestCustomer(t)
	require.NoError(t, customer.SetCreditLimit(decimal.NewFromInt(10000)))

	// exactly at the limit passes
	assert.NoError(t, customer.CheckCredit(decimal.NewFromInt(10000)))

	// one cent over fails with available credit in the payload
	err := customer.CheckCredit(decimal.NewFromFloat(10000.01))
	require.Error(t, err)
	de, ok := err.(*shared.DomainError)
	require.True(t, ok)
	assert.Equal(t, "CREDIT_LIMIT_EXCEEDED", de.Code)
	assert.Equal(t, "10000.00", de.Details["available_credit"])
}

func TestCustomer_CheckCredit_Unlimited(t *testing.T) {
	customer := createTestCustomer(t)
	// no credit limit enabled: any amount passes
	assert.NoError(t, customer.CheckCredit(decimal.NewFromInt(1_000_000)))
}

func TestCustomer_ApplyDebtDelta(t *testing.T) {
	customer := createTestCustomer(t)
	require.NoError(t, customer.SetCreditLimit(decimal.NewFromInt(100)))

	require.NoError(t, customer.ApplyDebtDelta(decimal.NewFromInt(80), false))
	assert.Equal(t, "80.00", customer.CurrentDebt.StringFixed(2))

	// exceeding the limit is rejected
	err := customer.ApplyDebtDelta(decimal.NewFromInt(30), false)
	require.Error(t, err)
	assert.Equal(t, "CREDIT_LIMIT_EXCEEDED", shared.CodeOf(err))
	assert.Equal(t, "80.00", customer.CurrentDebt.StringFixed(2))

	// reversal-mode positive delta skips the limit check
	require.NoError(t, customer.ApplyDebtDelta(decimal.NewFromInt(30), true))
	assert.Equal(t, "110.00", customer.CurrentDebt.StringFixed(2))

	// payments decrease debt
	require.NoError(t, customer.ApplyDebtDelta(decimal.NewFromInt(-110), false))
	assert.True(t, customer.CurrentDebt.IsZero())
}

func TestCustomer_ApplyDebtDelta_NeverNegative(t *testing.T) {
	customer := createTestCustomer(t)
	require.NoError(t, customer.ApplyDebtDelta(decimal.NewFromInt(50), false))

	err := customer.ApplyDebtDelta(decimal.NewFromFloat(-50.01), false)
	require.Error(t, err)
	assert.Equal(t, "DEBT_BELOW_ZERO", shared.CodeOf(err))
	assert.Equal(t, "50.00", customer.CurrentDebt.StringFixed(2))
}

func TestCustomer_AvailableCredit(t *testing.T) {
	customer := createTestCustomer(t)

	_, limited := customer.AvailableCredit()
	assert.False(t, limited)

	require.NoError(t, customer.SetCreditLimit(decimal.NewFromInt(500)))
	require.NoError(t, customer.ApplyDebtDelta(decimal.NewFromInt(120), false))

	available, limited := customer.AvailableCredit()
	assert.True(t, limited)
	assert.Equal(t, "380.00", available.StringFixed(2))
}

func TestCustomer_Deactivate(t *testing.T) {
	customer := createTestCustomer(t)
	version := customer.GetVersion()

	customer.Deactivate()
	assert.False(t, customer.IsActive())
	assert.Equal(t, version+1, customer.GetVersion())

	customer.Activate()
	assert.True(t, customer.IsActive())
}

func TestCustomer_SetCreditLimit_Negative(t *testing.T) {
	customer := createTestCustomer(t)
	err := customer.SetCreditLimit(decimal.NewFromInt(-1))
	require.Error(t, err)
	assert.Equal(t, "INVALID_CREDIT_LIMIT", shared.CodeOf(err))
}
