package trade

import (
	"context"
	"errors"
	"time"

	"github.com/distribo/backend/internal/application/ledger"
	"github.com/distribo/backend/internal/domain/partner"
	"github.com/distribo/backend/internal/domain/shared"
	"github.com/distribo/backend/internal/domain/shared/valueobject"
	"github.com/distribo/backend/internal/domain/trade"
	"github.com/google/uuid"
)

// OrderService handles the order lifecycle: creation books debt and
// consumes stock atomically, cancellation releases both.
type OrderService struct {
	scope          ledger.TransactionScope
	ledger         *ledger.Service
	numbers        trade.OrderNumberGenerator
	eventPublisher shared.EventPublisher
}

// NewOrderService creates a new OrderService
func NewOrderService(scope ledger.TransactionScope, ledgerSvc *ledger.Service, numbers trade.OrderNumberGenerator) *OrderService {
	return &OrderService{
		scope:   scope,
		ledger:  ledgerSvc,
		numbers: numbers,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates an order: snapshots product prices into items, deducts
// stock, books the total as customer debt, and stores the order, all in
// one transaction. A request that fails credit or stock checks changes
// nothing. Retries with the same idempotency key return the committed
// order instead of creating a second one.
func (s *OrderService) Create(ctx context.Context, orgID uuid.UUID, req CreateOrderRequest) (*OrderResponse, error) {
	if replay, err := s.findByIdempotencyKey(ctx, orgID, req.IdempotencyKey); err != nil {
		return nil, err
	} else if replay != nil {
		return replay, nil
	}

	// The number comes from its own counter transaction before the main
	// one. A failed creation burns the number; the sequence stays
	// monotonic per organization and day.
	orderNumber, err := s.numbers.Next(ctx, orgID, time.Now())
	if err != nil {
		return nil, err
	}

	var order *trade.Order
	err = s.scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		customer, err := repos.Customers().FindByIDForUpdate(ctx, orgID, req.CustomerID)
		if err != nil {
			return err
		}
		if !customer.IsActive() {
			return shared.ErrCustomerInactive.WithDetail("customer_code", customer.Code)
		}

		order, err = trade.NewOrder(orgID, orderNumber, customer.ID, customer.Name)
		if err != nil {
			return err
		}
		order.Remark = req.Remark
		order.IdempotencyKey = req.IdempotencyKey
		if req.CreatedBy != nil {
			order.SetCreatedBy(*req.CreatedBy)
		}

		adjustments := make([]ledger.StockAdjustment, 0, len(req.Items))
		quantities := make(map[uuid.UUID]int64, len(req.Items))
		for _, item := range req.Items {
			adjustments = append(adjustments, ledger.StockAdjustment{ProductID: item.ProductID, Delta: -item.Quantity})
			quantities[item.ProductID] += item.Quantity
		}

		products, err := s.ledger.AdjustStockBatch(ctx, repos, orgID, adjustments)
		if err != nil {
			return err
		}
		for i := range products {
			p := &products[i]
			if !p.IsActive() {
				return shared.ErrProductUnavailable.WithDetail("product_code", p.Code)
			}
			price := valueobject.NewMoneyFromDecimal(p.Price)
			if _, err := order.AddItem(p.ID, p.Name, p.Code, quantities[p.ID], price); err != nil {
				return err
			}
		}

		if _, _, err := s.ledger.AdjustDebt(ctx, repos, orgID, ledger.DebtAdjustment{
			CustomerID: customer.ID,
			Delta:      order.Total,
			Type:       partner.DebtTransactionTypeOrderCharge,
			SourceType: partner.DebtSourceTypeOrder,
			SourceID:   &order.ID,
			Reference:  order.OrderNumber,
			OperatorID: req.CreatedBy,
		}); err != nil {
			return err
		}

		order.AddDomainEvent(trade.NewOrderCreatedEvent(order))
		if err := repos.Orders().Save(ctx, order); err != nil {
			return err
		}
		if req.IdempotencyKey != "" {
			record := shared.NewIdempotencyRecord(orgID, req.IdempotencyKey, "order.create", order.ID)
			if err := repos.Idempotency().Save(ctx, record); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// A concurrent request with the same key may have won the race
		// on the unique (org, key) index; return its order.
		if errors.Is(err, shared.ErrAlreadyExists) && req.IdempotencyKey != "" {
			if replay, ferr := s.findByIdempotencyKey(ctx, orgID, req.IdempotencyKey); ferr == nil && replay != nil {
				return replay, nil
			}
		}
		return nil, err
	}

	s.publishEvents(ctx, order.GetDomainEvents())
	order.ClearDomainEvents()

	response := ToOrderResponse(order)
	return &response, nil
}

// Cancel cancels an order, restoring the stock its items consumed and
// releasing the unpaid remainder from the customer's debt. Paid amounts
// are not touched; refunds are separate payment records.
func (s *OrderService) Cancel(ctx context.Context, orgID, orderID uuid.UUID, req CancelOrderRequest) (*OrderResponse, error) {
	var order *trade.Order
	err := s.scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		// Peek at the order to learn the customer, then take locks in
		// the canonical order: customer first, then the order row.
		peek, err := repos.Orders().FindByIDForOrg(ctx, orgID, orderID)
		if err != nil {
			return err
		}
		if _, err := repos.Customers().FindByIDForUpdate(ctx, orgID, peek.CustomerID); err != nil {
			return err
		}
		order, err = repos.Orders().FindByIDForUpdate(ctx, orgID, orderID)
		if err != nil {
			return err
		}

		remainder := order.UnpaidRemainder()
		if err := order.Cancel(req.Reason, req.ActorID); err != nil {
			return err
		}

		adjustments := make([]ledger.StockAdjustment, 0, len(order.Items))
		for _, item := range order.Items {
			adjustments = append(adjustments, ledger.StockAdjustment{ProductID: item.ProductID, Delta: item.Quantity})
		}
		if _, err := s.ledger.AdjustStockBatch(ctx, repos, orgID, adjustments); err != nil {
			return err
		}

		if remainder.IsPositive() {
			if _, _, err := s.ledger.AdjustDebt(ctx, repos, orgID, ledger.DebtAdjustment{
				CustomerID: order.CustomerID,
				Delta:      remainder.Neg(),
				Reversal:   true,
				Type:       partner.DebtTransactionTypeOrderReversal,
				SourceType: partner.DebtSourceTypeOrder,
				SourceID:   &order.ID,
				Reference:  order.OrderNumber,
				OperatorID: &req.ActorID,
				Remark:     req.Reason,
			}); err != nil {
				return err
			}
		}

		return repos.Orders().Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, order.GetDomainEvents())
	order.ClearDomainEvents()

	response := ToOrderResponse(order)
	return &response, nil
}

// Transition moves an order to a new lifecycle status
func (s *OrderService) Transition(ctx context.Context, orgID, orderID uuid.UUID, req TransitionOrderRequest) (*OrderResponse, error) {
	target := trade.OrderStatus(req.Status)
	var order *trade.Order
	err := s.scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		var err error
		order, err = repos.Orders().FindByIDForUpdate(ctx, orgID, orderID)
		if err != nil {
			return err
		}
		if err := order.TransitionTo(target); err != nil {
			return err
		}
		return repos.Orders().Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order)
	return &response, nil
}

// GetByID retrieves an order by ID
func (s *OrderService) GetByID(ctx context.Context, orgID, orderID uuid.UUID) (*OrderResponse, error) {
	var response OrderResponse
	err := s.scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		order, err := repos.Orders().FindByIDForOrg(ctx, orgID, orderID)
		if err != nil {
			return err
		}
		response = ToOrderResponse(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// GetByNumber retrieves an order by its human-readable number
func (s *OrderService) GetByNumber(ctx context.Context, orgID uuid.UUID, orderNumber string) (*OrderResponse, error) {
	var response OrderResponse
	err := s.scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		order, err := repos.Orders().FindByOrderNumber(ctx, orgID, orderNumber)
		if err != nil {
			return err
		}
		response = ToOrderResponse(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// List retrieves orders with filtering and pagination
func (s *OrderService) List(ctx context.Context, orgID uuid.UUID, filter OrderListFilter) (*shared.Paginated[OrderResponse], error) {
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

	var page shared.Paginated[OrderResponse]
	err := s.scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		var (
			orders []trade.Order
			err    error
		)
		if filter.CustomerID != nil {
			orders, err = repos.Orders().FindByCustomer(ctx, orgID, *filter.CustomerID, domainFilter)
		} else {
			orders, err = repos.Orders().FindAllForOrg(ctx, orgID, domainFilter)
		}
		if err != nil {
			return err
		}
		total, err := repos.Orders().CountForOrg(ctx, orgID, domainFilter)
		if err != nil {
			return err
		}

		items := make([]OrderResponse, 0, len(orders))
		for i := range orders {
			items = append(items, ToOrderResponse(&orders[i]))
		}
		page = shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *OrderService) findByIdempotencyKey(ctx context.Context, orgID uuid.UUID, key string) (*OrderResponse, error) {
	if key == "" {
		return nil, nil
	}
	var response *OrderResponse
	err := s.scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
		record, err := repos.Idempotency().Find(ctx, orgID, key)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil
			}
			return err
		}
		order, err := repos.Orders().FindByIDForOrg(ctx, orgID, record.ResultID)
		if err != nil {
			return err
		}
		r := ToOrderResponse(order)
		response = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return response, nil
}

func (s *OrderService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	// Event delivery is best effort; the transaction already committed.
	_ = s.eventPublisher.Publish(ctx, events...)
}
