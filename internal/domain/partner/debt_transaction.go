package partner

import (
	"time"

	"github.com/distribo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DebtTransactionType represents the type of debt ledger movement
type DebtTransactionType string

const (
	// DebtTransactionTypeOrderCharge books new debt when an order is created
	DebtTransactionTypeOrderCharge DebtTransactionType = "ORDER_CHARGE"
	// DebtTransactionTypeOrderReversal releases the unpaid remainder on cancellation
	DebtTransactionTypeOrderReversal DebtTransactionType = "ORDER_REVERSAL"
	// DebtTransactionTypePayment records debt settled by a payment
	DebtTransactionTypePayment DebtTransactionType = "PAYMENT"
	// DebtTransactionTypeRefund records debt restored by a refund
	DebtTransactionTypeRefund DebtTransactionType = "REFUND"
	// DebtTransactionTypeAdjustment records a manual correction
	DebtTransactionTypeAdjustment DebtTransactionType = "ADJUSTMENT"
)

// String returns the string representation of DebtTransactionType
func (t DebtTransactionType) String() string {
	return string(t)
}

// IsValid returns true if the transaction type is valid
func (t DebtTransactionType) IsValid() bool {
	switch t {
	case DebtTransactionTypeOrderCharge,
		DebtTransactionTypeOrderReversal,
		DebtTransactionTypePayment,
		DebtTransactionTypeRefund,
		DebtTransactionTypeAdjustment:
		return true
	}
	return false
}

// DebtSourceType identifies the document that caused a debt movement
type DebtSourceType string

const (
	DebtSourceTypeOrder    DebtSourceType = "ORDER"
	DebtSourceTypePayment  DebtSourceType = "PAYMENT"
	DebtSourceTypeDelivery DebtSourceType = "DELIVERY"
	DebtSourceTypeManual   DebtSourceType = "MANUAL"
)

// DebtTransaction is an immutable record of a customer debt change.
// It is the audit trail: replaying transactions in order must reproduce
// the customer's CurrentDebt exactly. Corrections are new transactions,
// never edits.
type DebtTransaction struct {
	shared.BaseEntity
	OrgID           uuid.UUID           `gorm:"type:uuid;not null;index"`
	CustomerID      uuid.UUID           `gorm:"type:uuid;not null;index:idx_debt_tx_customer_date"`
	TransactionType DebtTransactionType `gorm:"type:varchar(20);not null"`
	Amount          decimal.Decimal     `gorm:"type:decimal(18,2);not null"` // always positive
	DebtBefore      decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	DebtAfter       decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	SourceType      DebtSourceType      `gorm:"type:varchar(20);not null"`
	SourceID        *uuid.UUID          `gorm:"type:uuid"`
	Reference       string              `gorm:"type:varchar(100)"`
	Remark          string              `gorm:"type:text"`
	OperatorID      *uuid.UUID          `gorm:"type:uuid"`
	TransactionDate time.Time           `gorm:"not null;index:idx_debt_tx_customer_date"`
}

// TableName returns the table name for GORM
func (DebtTransaction) TableName() string {
	return "debt_transactions"
}

// NewDebtTransaction creates an immutable debt movement record
func NewDebtTransaction(
	orgID uuid.UUID,
	customerID uuid.UUID,
	txType DebtTransactionType,
	amount decimal.Decimal,
	debtBefore decimal.Decimal,
	debtAfter decimal.Decimal,
	sourceType DebtSourceType,
) (*DebtTransaction, error) {
	if orgID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_ORG", "Organization ID cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if !txType.IsValid() {
		return nil, shared.NewValidationError("INVALID_TRANSACTION_TYPE", "Invalid debt transaction type")
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("INVALID_AMOUNT", "Amount must be positive")
	}
	if debtBefore.IsNegative() || debtAfter.IsNegative() {
		return nil, shared.NewValidationError("INVALID_DEBT_SNAPSHOT", "Debt snapshots cannot be negative")
	}

	return &DebtTransaction{
		BaseEntity:      shared.NewBaseEntity(),
		OrgID:           orgID,
		CustomerID:      customerID,
		TransactionType: txType,
		Amount:          amount.Round(2),
		DebtBefore:      debtBefore.Round(2),
		DebtAfter:       debtAfter.Round(2),
		SourceType:      sourceType,
		TransactionDate: time.Now(),
	}, nil
}

// WithSource attaches the source document reference
func (t *DebtTransaction) WithSource(sourceID uuid.UUID, reference string) *DebtTransaction {
	t.SourceID = &sourceID
	t.Reference = reference
	return t
}

// WithOperator attaches the acting user
func (t *DebtTransaction) WithOperator(operatorID uuid.UUID) *DebtTransaction {
	t.OperatorID = &operatorID
	return t
}

// WithRemark attaches a free-form note
func (t *DebtTransaction) WithRemark(remark string) *DebtTransaction {
	t.Remark = remark
	return t
}

// Delta returns the signed balance change this movement applied
func (t *DebtTransaction) Delta() decimal.Decimal {
	return t.DebtAfter.Sub(t.DebtBefore)
}
