package partner

import (
	"regexp"
	"strings"

	"github.com/distribo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerStatus represents the status of a customer
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusInactive CustomerStatus = "inactive"
)

// IsValid checks if the status is a valid CustomerStatus
func (s CustomerStatus) IsValid() bool {
	switch s {
	case CustomerStatusActive, CustomerStatusInactive:
		return true
	}
	return false
}

// Customer is the aggregate root for a buying customer.
// CurrentDebt is the revolving balance the customer owes; it is mutated
// only through the ledger primitives, never assigned directly by callers.
type Customer struct {
	shared.OrgAggregateRoot
	Code               string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_customer_org_code,priority:2"`
	Name               string          `gorm:"type:varchar(200);not null"`
	ContactName        string          `gorm:"type:varchar(100)"`
	Phone              string          `gorm:"type:varchar(50);index"`
	Address            string          `gorm:"type:text"`
	CreditLimit        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	CreditLimitEnabled bool            `gorm:"not null;default:false"`
	CurrentDebt        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Status             CustomerStatus  `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a new active customer with no credit limit
func NewCustomer(orgID uuid.UUID, code, name string) (*Customer, error) {
	if err := validateCustomerCode(code); err != nil {
		return nil, err
	}
	if err := validateCustomerName(name); err != nil {
		return nil, err
	}

	customer := &Customer{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		Code:             strings.ToUpper(code),
		Name:             name,
		CreditLimit:      decimal.Zero,
		CurrentDebt:      decimal.Zero,
		Status:           CustomerStatusActive,
	}

	customer.AddDomainEvent(NewCustomerCreatedEvent(customer))

	return customer, nil
}

// IsActive returns true if the customer may place orders
func (c *Customer) IsActive() bool {
	return c.Status == CustomerStatusActive
}

// Activate enables the customer
func (c *Customer) Activate() {
	c.Status = CustomerStatusActive
	c.Touch()
	c.IncrementVersion()
}

// Deactivate disables the customer; existing debt remains collectible
func (c *Customer) Deactivate() {
	c.Status = CustomerStatusInactive
	c.Touch()
	c.IncrementVersion()
}

// SetCreditLimit enables the credit limit at the given amount
func (c *Customer) SetCreditLimit(limit decimal.Decimal) error {
	if limit.IsNegative() {
		return shared.NewValidationError("INVALID_CREDIT_LIMIT", "Credit limit cannot be negative")
	}
	c.CreditLimit = limit.Round(2)
	c.CreditLimitEnabled = true
	c.Touch()
	c.IncrementVersion()
	return nil
}

// DisableCreditLimit removes the credit cap (unlimited credit)
func (c *Customer) DisableCreditLimit() {
	c.CreditLimitEnabled = false
	c.Touch()
	c.IncrementVersion()
}

// AvailableCredit returns the remaining credit headroom.
// The second return is false when the customer has no limit.
func (c *Customer) AvailableCredit() (decimal.Decimal, bool) {
	if !c.CreditLimitEnabled {
		return decimal.Zero, false
	}
	return c.CreditLimit.Sub(c.CurrentDebt), true
}

// CheckCredit verifies that incurring amount of new debt stays within
// the credit limit. The error carries the available credit so callers
// can present an actionable message.
func (c *Customer) CheckCredit(amount decimal.Decimal) error {
	available, limited := c.AvailableCredit()
	if !limited {
		return nil
	}
	if c.CurrentDebt.Add(amount).GreaterThan(c.CreditLimit) {
		return shared.ErrCreditLimitExceeded.WithDetail("available_credit", available.StringFixed(2))
	}
	return nil
}

// ApplyDebtDelta mutates the customer's debt balance. Positive deltas are
// subject to the credit limit unless reversal is set; reversals correct
// debt booked by a once-valid operation and always pass the limit check.
// The balance may never go below zero.
func (c *Customer) ApplyDebtDelta(delta decimal.Decimal, reversal bool) error {
	if delta.IsPositive() && !reversal {
		if err := c.CheckCredit(delta); err != nil {
			return err
		}
	}

	newDebt := c.CurrentDebt.Add(delta)
	if newDebt.IsNegative() {
		return shared.NewDomainError("DEBT_BELOW_ZERO", "Debt balance cannot go below zero").
			WithDetail("current_debt", c.CurrentDebt.StringFixed(2))
	}

	c.CurrentDebt = newDebt
	c.Touch()
	c.IncrementVersion()
	return nil
}

// UpdateContact updates the customer's contact information
func (c *Customer) UpdateContact(contactName, phone, address string) error {
	if contactName != "" && len(contactName) > 100 {
		return shared.NewValidationError("INVALID_CONTACT_NAME", "Contact name cannot exceed 100 characters")
	}
	if phone != "" {
		if err := validatePhone(phone); err != nil {
			return err
		}
	}

	c.ContactName = contactName
	c.Phone = phone
	c.Address = address
	c.Touch()
	c.IncrementVersion()
	return nil
}

var (
	customerCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,50}$`)
	phonePattern        = regexp.MustCompile(`^[0-9+\-() ]{5,50}$`)
)

func validateCustomerCode(code string) error {
	if code == "" {
		return shared.NewValidationError("INVALID_CUSTOMER_CODE", "Customer code cannot be empty")
	}
	if !customerCodePattern.MatchString(code) {
		return shared.NewValidationError("INVALID_CUSTOMER_CODE", "Customer code may contain only letters, digits, dashes and underscores")
	}
	return nil
}

func validateCustomerName(name string) error {
	if name == "" {
		return shared.NewValidationError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewValidationError("INVALID_CUSTOMER_NAME", "Customer name cannot exceed 200 characters")
	}
	return nil
}

func validatePhone(phone string) error {
	if !phonePattern.MatchString(phone) {
		return shared.NewValidationError("INVALID_PHONE", "Phone number format is invalid")
	}
	return nil
}
