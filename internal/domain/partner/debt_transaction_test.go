package partner

import (
	"testing"

	"github.com/distribo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebtTransactionType_IsValid(t *testing.T) {
	tests := []struct {
		txType  DebtTransactionType
		isValid bool
	}{
		{DebtTransactionTypeOrderCharge, true},
		{DebtTransactionTypeOrderReversal, true},
		{DebtTransactionTypePayment, true},
		{DebtTransactionTypeRefund, true},
		{DebtTransactionTypeAdjustment, true},
		{DebtTransactionType("BOGUS"), false},
		{DebtTransactionType(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.txType), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.txType.IsValid())
		})
	}
}

func TestNewDebtTransaction(t *testing.T) {
	orgID := uuid.New()
	customerID := uuid.New()

	tx, err := NewDebtTransaction(
		orgID, customerID,
		DebtTransactionTypeOrderCharge,
		decimal.NewFromInt(800),
		decimal.Zero,
		decimal.NewFromInt(800),
		DebtSourceTypeOrder,
	)
	require.NoError(t, err)
	assert.Equal(t, "800.00", tx.Amount.StringFixed(2))
	assert.Equal(t, "800.00", tx.Delta().StringFixed(2))
	assert.False(t, tx.TransactionDate.IsZero())
}

func TestNewDebtTransaction_Validation(t *testing.T) {
	orgID := uuid.New()
	customerID := uuid.New()
	amount := decimal.NewFromInt(10)

	tests := []struct {
		name    string
		mutate  func() (*DebtTransaction, error)
		wantErr string
	}{
		{
			"nil org",
			func() (*DebtTransaction, error) {
				return NewDebtTransaction(uuid.Nil, customerID, DebtTransactionTypePayment, amount, amount, decimal.Zero, DebtSourceTypePayment)
			},
			"INVALID_ORG",
		},
		{
			"nil customer",
			func() (*DebtTransaction, error) {
				return NewDebtTransaction(orgID, uuid.Nil, DebtTransactionTypePayment, amount, amount, decimal.Zero, DebtSourceTypePayment)
			},
			"INVALID_CUSTOMER",
		},
		{
			"bad type",
			func() (*DebtTransaction, error) {
				return NewDebtTransaction(orgID, customerID, DebtTransactionType("X"), amount, amount, decimal.Zero, DebtSourceTypePayment)
			},
			"INVALID_TRANSACTION_TYPE",
		},
		{
			"zero amount",
			func() (*DebtTransaction, error) {
				return NewDebtTransaction(orgID, customerID, DebtTransactionTypePayment, decimal.Zero, amount, amount, DebtSourceTypePayment)
			},
			"INVALID_AMOUNT",
		},
		{
			"negative snapshot",
			func() (*DebtTransaction, error) {
				return NewDebtTransaction(orgID, customerID, DebtTransactionTypePayment, amount, decimal.NewFromInt(-1), decimal.Zero, DebtSourceTypePayment)
			},
			"INVALID_DEBT_SNAPSHOT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.mutate()
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, shared.CodeOf(err))
		})
	}
}

func TestDebtTransaction_Delta(t *testing.T) {
	orgID := uuid.New()
	customerID := uuid.New()

	payment, err := NewDebtTransaction(
		orgID, customerID,
		DebtTransactionTypePayment,
		decimal.NewFromInt(300),
		decimal.NewFromInt(500),
		decimal.NewFromInt(200),
		DebtSourceTypePayment,
	)
	require.NoError(t, err)
	assert.Equal(t, "-300.00", payment.Delta().StringFixed(2))
}

func TestDebtTransaction_Builders(t *testing.T) {
	orgID := uuid.New()
	sourceID := uuid.New()
	operatorID := uuid.New()

	tx, err := NewDebtTransaction(
		orgID, uuid.New(),
		DebtTransactionTypeAdjustment,
		decimal.NewFromInt(5),
		decimal.NewFromInt(5),
		decimal.NewFromInt(10),
		DebtSourceTypeManual,
	)
	require.NoError(t, err)

	tx.WithSource(sourceID, "REG-42").WithOperator(operatorID).WithRemark("register correction")

	require.NotNil(t, tx.SourceID)
	assert.Equal(t, sourceID, *tx.SourceID)
	assert.Equal(t, "REG-42", tx.Reference)
	require.NotNil(t, tx.OperatorID)
	assert.Equal(t, operatorID, *tx.OperatorID)
	assert.Equal(t, "register correction", tx.Remark)
}
