package partner

import (
	"context"
	"errors"
	"time"

	"github.com/distribo/backend/internal/application/ledger"
	"github.com/distribo/backend/internal/domain/partner"
	"github.com/distribo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CustomerService manages the customer master data and exposes the
// manual side of the debt ledger. All balance mutations go through the
// ledger primitives so every change leaves an audit record.
type CustomerService struct {
	scope          ledger.TransactionScope
	ledger         *ledger.Service
	eventPublisher shared.EventPublisher
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(scope ledger.TransactionScope, ledgerSvc *ledger.Service) *CustomerService {
	return &CustomerService{scope: scope, ledger: ledgerSvc}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *CustomerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create registers a new customer. Codes are unique per organization.
func (s *CustomerService) Create(ctx context.Context, orgID uuid.UUID, req CreateCustomerRequest) (*CustomerResponse, error) {
	customer, err := partner.NewCustomer(orgID, req.Code, req.Name)
	if err != nil {
		return nil, err
	}
	if req.ContactName != "" || req.Phone != "" || req.Address != "" {
		if err := customer.UpdateContact(req.ContactName, req.Phone, req.Address); err != nil {
			return nil, err
		}
	}

	err = s.scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		existing, err := repos.Customers().FindByCode(ctx, orgID, req.Code)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if existing != nil {
			return shared.ErrAlreadyExists.WithDetail("code", req.Code)
		}
		return repos.Customers().Save(ctx, customer)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, customer.GetDomainEvents())
	customer.ClearDomainEvents()

	resp := ToCustomerResponse(customer)
	return &resp, nil
}

// UpdateContact updates a customer's contact details
func (s *CustomerService) UpdateContact(ctx context.Context, orgID, customerID uuid.UUID, req UpdateCustomerContactRequest) (*CustomerResponse, error) {
	var resp CustomerResponse
	err := s.scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		customer, err := repos.Customers().FindByIDForOrg(ctx, orgID, customerID)
		if err != nil {
			return err
		}
		if err := customer.UpdateContact(req.ContactName, req.Phone, req.Address); err != nil {
			return err
		}
		if err := repos.Customers().Save(ctx, customer); err != nil {
			return err
		}
		resp = ToCustomerResponse(customer)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// SetCreditLimit enables the customer's credit limit at the given amount.
// An existing balance above the new limit stays; only further charges
// are blocked.
func (s *CustomerService) SetCreditLimit(ctx context.Context, orgID, customerID uuid.UUID, req SetCreditLimitRequest) (*CustomerResponse, error) {
	var resp CustomerResponse
	err := s.scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		customer, err := repos.Customers().FindByIDForUpdate(ctx, orgID, customerID)
		if err != nil {
			return err
		}
		if err := customer.SetCreditLimit(req.Limit); err != nil {
			return err
		}
		if err := repos.Customers().Save(ctx, customer); err != nil {
			return err
		}
		resp = ToCustomerResponse(customer)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// DisableCreditLimit removes the customer's credit limit
func (s *CustomerService) DisableCreditLimit(ctx context.Context, orgID, customerID uuid.UUID) (*CustomerResponse, error) {
	var resp CustomerResponse
	err := s.scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		customer, err := repos.Customers().FindByIDForUpdate(ctx, orgID, customerID)
		if err != nil {
			return err
		}
		customer.DisableCreditLimit()
		if err := repos.Customers().Save(ctx, customer); err != nil {
			return err
		}
		resp = ToCustomerResponse(customer)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Activate re-enables a deactivated customer
func (s *CustomerService) Activate(ctx context.Context, orgID, customerID uuid.UUID) (*CustomerResponse, error) {
	return s.setStatus(ctx, orgID, customerID, true)
}

// Deactivate blocks a customer from placing new orders. Existing debt
// and open orders are unaffected.
func (s *CustomerService) Deactivate(ctx context.Context, orgID, customerID uuid.UUID) (*CustomerResponse, error) {
	return s.setStatus(ctx, orgID, customerID, false)
}

func (s *CustomerService) setStatus(ctx context.Context, orgID, customerID uuid.UUID, active bool) (*CustomerResponse, error) {
	var resp CustomerResponse
	err := s.scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		customer, err := repos.Customers().FindByIDForOrg(ctx, orgID, customerID)
		if err != nil {
			return err
		}
		if active {
			customer.Activate()
		} else {
			customer.Deactivate()
		}
		if err := repos.Customers().Save(ctx, customer); err != nil {
			return err
		}
		resp = ToCustomerResponse(customer)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// AdjustDebt applies a manual correction to the customer's balance.
// Decreases are treated as corrections and only guard against a
// negative balance; increases are checked against the credit limit
// like any other charge.
func (s *CustomerService) AdjustDebt(ctx context.Context, orgID, customerID uuid.UUID, req AdjustDebtRequest) (*CustomerResponse, error) {
	if req.Amount.IsZero() {
		return nil, shared.NewValidationError("INVALID_AMOUNT", "Adjustment amount cannot be zero")
	}

	var (
		resp   CustomerResponse
		events []shared.DomainEvent
	)
	err := s.scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		adj := ledger.DebtAdjustment{
			CustomerID: customerID,
			Delta:      req.Amount,
			Type:       partner.DebtTransactionTypeAdjustment,
			SourceType: partner.DebtSourceTypeManual,
			Remark:     req.Reason,
			OperatorID: req.OperatorID,
		}
		customer, _, err := s.ledger.AdjustDebt(ctx, repos, orgID, adj)
		if err != nil {
			return err
		}
		resp = ToCustomerResponse(customer)
		events = customer.GetDomainEvents()
		customer.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, events)
	return &resp, nil
}

// GetByID returns one customer
func (s *CustomerService) GetByID(ctx context.Context, orgID, customerID uuid.UUID) (*CustomerResponse, error) {
	var resp CustomerResponse
	err := s.scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		customer, err := repos.Customers().FindByIDForOrg(ctx, orgID, customerID)
		if err != nil {
			return err
		}
		resp = ToCustomerResponse(customer)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetByCode returns one customer looked up by its code
func (s *CustomerService) GetByCode(ctx context.Context, orgID uuid.UUID, code string) (*CustomerResponse, error) {
	var resp CustomerResponse
	err := s.scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		customer, err := repos.Customers().FindByCode(ctx, orgID, code)
		if err != nil {
			return err
		}
		resp = ToCustomerResponse(customer)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// List returns a page of customers
func (s *CustomerService) List(ctx context.Context, orgID uuid.UUID, filter CustomerListFilter) (*shared.Paginated[CustomerResponse], error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	domainFilter.Search = filter.Search
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	var page shared.Paginated[CustomerResponse]
	err := s.scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		customers, err := repos.Customers().FindAllForOrg(ctx, orgID, domainFilter)
		if err != nil {
			return err
		}
		total, err := repos.Customers().CountForOrg(ctx, orgID, domainFilter)
		if err != nil {
			return err
		}

		items := make([]CustomerResponse, 0, len(customers))
		for i := range customers {
			items = append(items, ToCustomerResponse(&customers[i]))
		}
		page = shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// DebtHistory returns a customer's debt movements in a date range,
// oldest first
func (s *CustomerService) DebtHistory(ctx context.Context, orgID, customerID uuid.UUID, from, to time.Time) ([]DebtTransactionResponse, error) {
	var out []DebtTransactionResponse
	err := s.scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		if _, err := repos.Customers().FindByIDForOrg(ctx, orgID, customerID); err != nil {
			return err
		}
		movements, err := repos.DebtTransactions().FindByCustomer(ctx, orgID, customerID, from, to)
		if err != nil {
			return err
		}
		out = make([]DebtTransactionResponse, 0, len(movements))
		for i := range movements {
			out = append(out, ToDebtTransactionResponse(&movements[i]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *CustomerService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
}
