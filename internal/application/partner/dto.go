package partner

import (
	"time"

	"github.com/distribo/backend/internal/domain/partner"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateCustomerRequest is the request to create a customer
type CreateCustomerRequest struct {
	Code        string `json:"code" binding:"required,min=1,max=50"`
	Name        string `json:"name" binding:"required,min=1,max=200"`
	ContactName string `json:"contact_name" binding:"omitempty,max=100"`
	Phone       string `json:"phone" binding:"omitempty,max=50"`
	Address     string `json:"address"`
}

// UpdateCustomerContactRequest updates a customer's contact details
type UpdateCustomerContactRequest struct {
	ContactName string `json:"contact_name" binding:"omitempty,max=100"`
	Phone       string `json:"phone" binding:"omitempty,max=50"`
	Address     string `json:"address"`
}

// SetCreditLimitRequest enables a customer's credit limit
type SetCreditLimitRequest struct {
	Limit decimal.Decimal `json:"limit" binding:"required"`
}

// AdjustDebtRequest is a manual correction to a customer's debt balance.
// A positive amount increases the debt, a negative one decreases it.
type AdjustDebtRequest struct {
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	Reason     string          `json:"reason" binding:"required,min=1,max=500"`
	OperatorID *uuid.UUID      `json:"-"`
}

// CustomerListFilter is the filter for listing customers
type CustomerListFilter struct {
	Status   string `form:"status"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir"`
}

// CustomerResponse is the response representation of a customer
type CustomerResponse struct {
	ID                 uuid.UUID       `json:"id"`
	Code               string          `json:"code"`
	Name               string          `json:"name"`
	ContactName        string          `json:"contact_name,omitempty"`
	Phone              string          `json:"phone,omitempty"`
	Address            string          `json:"address,omitempty"`
	CreditLimit        decimal.Decimal `json:"credit_limit"`
	CreditLimitEnabled bool            `json:"credit_limit_enabled"`
	CurrentDebt        decimal.Decimal `json:"current_debt"`
	AvailableCredit    decimal.Decimal `json:"available_credit,omitempty"`
	Status             string          `json:"status"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// DebtTransactionResponse is one movement in a customer's debt history
type DebtTransactionResponse struct {
	ID         uuid.UUID       `json:"id"`
	Type       string          `json:"type"`
	Amount     decimal.Decimal `json:"amount"`
	DebtBefore decimal.Decimal `json:"debt_before"`
	DebtAfter  decimal.Decimal `json:"debt_after"`
	SourceType string          `json:"source_type"`
	Reference  string          `json:"reference,omitempty"`
	Remark     string          `json:"remark,omitempty"`
	Date       time.Time       `json:"date"`
}

// ToCustomerResponse converts a customer aggregate to its response form
func ToCustomerResponse(customer *partner.Customer) CustomerResponse {
	resp := CustomerResponse{
		ID:                 customer.ID,
		Code:               customer.Code,
		Name:               customer.Name,
		ContactName:        customer.ContactName,
		Phone:              customer.Phone,
		Address:            customer.Address,
		CreditLimit:        customer.CreditLimit,
		CreditLimitEnabled: customer.CreditLimitEnabled,
		CurrentDebt:        customer.CurrentDebt,
		Status:             string(customer.Status),
		CreatedAt:          customer.CreatedAt,
		UpdatedAt:          customer.UpdatedAt,
	}
	if available, enabled := customer.AvailableCredit(); enabled {
		resp.AvailableCredit = available
	}
	return resp
}

// ToDebtTransactionResponse converts a debt transaction to its response form
func ToDebtTransactionResponse(tx *partner.DebtTransaction) DebtTransactionResponse {
	return DebtTransactionResponse{
		ID:         tx.ID,
		Type:       tx.TransactionType.String(),
		Amount:     tx.Delta(),
		DebtBefore: tx.DebtBefore,
		DebtAfter:  tx.DebtAfter,
		SourceType: string(tx.SourceType),
		Reference:  tx.Reference,
		Remark:     tx.Remark,
		Date:       tx.TransactionDate,
	}
}
