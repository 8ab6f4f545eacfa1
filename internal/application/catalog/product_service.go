package catalog

import (
	"context"
	"errors"

	"github.com/distribo/backend/internal/application/ledger"
	"github.com/distribo/backend/internal/domain/catalog"
	"github.com/distribo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductService manages the product master data. Stock corrections go
// through the ledger primitives so they take the same row locks as
// order stock movements.
type ProductService struct {
	scope          ledger.TransactionScope
	ledger         *ledger.Service
	eventPublisher shared.EventPublisher
}

// NewProductService creates a new ProductService
func NewProductService(scope ledger.TransactionScope, ledgerSvc *ledger.Service) *ProductService {
	return &ProductService{scope: scope, ledger: ledgerSvc}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create registers a new product. Codes are unique per organization.
func (s *ProductService) Create(ctx context.Context, orgID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(orgID, req.Code, req.Name, req.Price, req.InitialStock)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		existing, err := repos.Products().FindByCode(ctx, orgID, req.Code)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		if existing != nil {
			return shared.ErrAlreadyExists.WithDetail("code", req.Code)
		}
		return repos.Products().Save(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, product.GetDomainEvents())
	product.ClearDomainEvents()

	resp := ToProductResponse(product)
	return &resp, nil
}

// UpdatePrice sets a new unit price. Open orders keep the price they
// were booked at.
func (s *ProductService) UpdatePrice(ctx context.Context, orgID, productID uuid.UUID, req UpdatePriceRequest) (*ProductResponse, error) {
	var resp ProductResponse
	err := s.scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		product, err := repos.Products().FindByIDForOrg(ctx, orgID, productID)
		if err != nil {
			return err
		}
		if err := product.UpdatePrice(req.Price); err != nil {
			return err
		}
		if err := repos.Products().Save(ctx, product); err != nil {
			return err
		}
		resp = ToProductResponse(product)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// AdjustStock applies a manual stock correction through the ledger,
// taking the product row lock like any order movement would
func (s *ProductService) AdjustStock(ctx context.Context, orgID, productID uuid.UUID, req AdjustStockRequest) (*ProductResponse, error) {
	if req.Delta == 0 {
		return nil, shared.NewValidationError("INVALID_AMOUNT", "Stock delta cannot be zero")
	}

	var (
		resp   ProductResponse
		events []shared.DomainEvent
	)
	err := s.scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		product, err := s.ledger.AdjustStock(ctx, repos, orgID, productID, req.Delta)
		if err != nil {
			return err
		}
		resp = ToProductResponse(product)
		events = product.GetDomainEvents()
		product.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, events)
	return &resp, nil
}

// Activate re-enables a deactivated product
func (s *ProductService) Activate(ctx context.Context, orgID, productID uuid.UUID) (*ProductResponse, error) {
	return s.setStatus(ctx, orgID, productID, true)
}

// Deactivate blocks a product from new orders. Stock on hand and open
// orders referencing it are unaffected.
func (s *ProductService) Deactivate(ctx context.Context, orgID, productID uuid.UUID) (*ProductResponse, error) {
	return s.setStatus(ctx, orgID, productID, false)
}

func (s *ProductService) setStatus(ctx context.Context, orgID, productID uuid.UUID, active bool) (*ProductResponse, error) {
	var resp ProductResponse
	err := s.scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		product, err := repos.Products().FindByIDForOrg(ctx, orgID, productID)
		if err != nil {
			return err
		}
		if active {
			product.Activate()
		} else {
			product.Deactivate()
		}
		if err := repos.Products().Save(ctx, product); err != nil {
			return err
		}
		resp = ToProductResponse(product)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetByID returns one product
func (s *ProductService) GetByID(ctx context.Context, orgID, productID uuid.UUID) (*ProductResponse, error) {
	var resp ProductResponse
	err := s.scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		product, err := repos.Products().FindByIDForOrg(ctx, orgID, productID)
		if err != nil {
			return err
		}
		resp = ToProductResponse(product)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetByCode returns one product looked up by its code
func (s *ProductService) GetByCode(ctx context.Context, orgID uuid.UUID, code string) (*ProductResponse, error) {
	var resp ProductResponse
	err := s.scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		product, err := repos.Products().FindByCode(ctx, orgID, code)
		if err != nil {
			return err
		}
		resp = ToProductResponse(product)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// List returns a page of products
func (s *ProductService) List(ctx context.Context, orgID uuid.UUID, filter ProductListFilter) (*shared.Paginated[ProductResponse], error) {
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

	var page shared.Paginated[ProductResponse]
	err := s.scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		products, err := repos.Products().FindAllForOrg(ctx, orgID, domainFilter)
		if err != nil {
			return err
		}
		total, err := repos.Products().CountForOrg(ctx, orgID, domainFilter)
		if err != nil {
			return err
		}

		items := make([]ProductResponse, 0, len(products))
		for i := range products {
			items = append(items, ToProductResponse(&products[i]))
		}
		page = shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *ProductService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
}
