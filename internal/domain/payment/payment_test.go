package payment

import (
	"testing"

	"github.com/distribo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentMode_IsValid(t *testing.T) {
	tests := []struct {
		mode    PaymentMode
		isValid bool
	}{
		{PaymentModeCash, true},
		{PaymentModeCheck, true},
		{PaymentModeTransfer, true},
		{PaymentModeMobile, true},
		{PaymentMode("crypto"), false},
		{PaymentMode(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.mode.IsValid())
		})
	}
}

func TestNewPayment(t *testing.T) {
	p, err := NewPayment(uuid.New(), uuid.New(), decimal.NewFromFloat(300.005), PaymentModeCash)
	require.NoError(t, err)
	assert.Equal(t, PaymentTypeCollection, p.Type)
	assert.Equal(t, "300.01", p.Amount.StringFixed(2))
	assert.Empty(t, p.Allocations)
}

func TestNewPayment_Validation(t *testing.T) {
	orgID := uuid.New()
	customerID := uuid.New()

	_, err := NewPayment(orgID, uuid.Nil, decimal.NewFromInt(10), PaymentModeCash)
	assert.Equal(t, "INVALID_CUSTOMER", shared.CodeOf(err))

	_, err = NewPayment(orgID, customerID, decimal.Zero, PaymentModeCash)
	assert.Equal(t, "INVALID_AMOUNT", shared.CodeOf(err))

	_, err = NewPayment(orgID, customerID, decimal.NewFromInt(-5), PaymentModeCash)
	assert.Equal(t, "INVALID_AMOUNT", shared.CodeOf(err))

	_, err = NewPayment(orgID, customerID, decimal.NewFromInt(10), PaymentMode("iou"))
	assert.Equal(t, "INVALID_PAYMENT_MODE", shared.CodeOf(err))
}

func TestPayment_Allocations(t *testing.T) {
	p, err := NewPayment(uuid.New(), uuid.New(), decimal.NewFromInt(500), PaymentModeCash)
	require.NoError(t, err)

	first := uuid.New()
	second := uuid.New()
	require.NoError(t, p.AddAllocation(first, decimal.NewFromInt(300)))
	require.NoError(t, p.AddAllocation(second, decimal.NewFromInt(150)))

	assert.Equal(t, "450.00", p.AllocatedTotal().StringFixed(2))
	assert.Equal(t, "50.00", p.Unallocated().StringFixed(2))

	// allocation order is preserved
	require.Len(t, p.Allocations, 2)
	assert.Equal(t, first, p.Allocations[0].OrderID)
	assert.Equal(t, 0, p.Allocations[0].Position)
	assert.Equal(t, second, p.Allocations[1].OrderID)
	assert.Equal(t, 1, p.Allocations[1].Position)
}

func TestPayment_AddAllocation_Invalid(t *testing.T) {
	p, err := NewPayment(uuid.New(), uuid.New(), decimal.NewFromInt(100), PaymentModeCheck)
	require.NoError(t, err)

	err = p.AddAllocation(uuid.New(), decimal.Zero)
	require.Error(t, err)
	assert.Equal(t, "INVALID_AMOUNT", shared.CodeOf(err))
}

func TestPayment_SetDebtSnapshots(t *testing.T) {
	p, err := NewPayment(uuid.New(), uuid.New(), decimal.NewFromInt(100), PaymentModeTransfer)
	require.NoError(t, err)

	p.SetDebtSnapshots(decimal.NewFromInt(800), decimal.NewFromInt(700))
	assert.Equal(t, "800.00", p.DebtBefore.StringFixed(2))
	assert.Equal(t, "700.00", p.DebtAfter.StringFixed(2))
}
