package ledger

import (
	"bytes"
	"context"
	"sort"

	"github.com/distribo/backend/internal/domain/catalog"
	"github.com/distribo/backend/internal/domain/partner"
	"github.com/distribo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service implements the two primitives every money- or stock-moving
// operation is composed from: stock deltas on products and debt deltas
// on customers. Debt deltas always leave an immutable debt transaction
// behind; replaying a customer's transactions reproduces CurrentDebt.
//
// The service is stateless. Callers pass the transaction-scoped
// repositories so that the delta lands in the caller's transaction
// together with whatever else the operation writes.
type Service struct{}

// NewService creates the ledger primitive service
func NewService() *Service {
	return &Service{}
}

// StockAdjustment is one signed stock delta for a product
type StockAdjustment struct {
	ProductID uuid.UUID
	Delta     int64
}

// DebtAdjustment is one signed debt delta for a customer.
// Reversal marks deltas that undo a prior charge; they skip the credit
// limit check, since reversing never increases exposure beyond what was
// already accepted.
type DebtAdjustment struct {
	CustomerID uuid.UUID
	Delta      decimal.Decimal
	Reversal   bool
	Type       partner.DebtTransactionType
	SourceType partner.DebtSourceType
	SourceID   *uuid.UUID
	Reference  string
	Remark     string
	OperatorID *uuid.UUID
}

// AdjustStock applies a single stock delta and persists the product
func (s *Service) AdjustStock(ctx context.Context, repos TransactionalRepositories, orgID, productID uuid.UUID, delta int64) (*catalog.Product, error) {
	products, err := s.AdjustStockBatch(ctx, repos, orgID, []StockAdjustment{{ProductID: productID, Delta: delta}})
	if err != nil {
		return nil, err
	}
	return &products[0], nil
}

// AdjustStockBatch applies stock deltas to several products atomically
// within the caller's transaction. Products are locked in ascending id
// order regardless of the order adjustments were given in. Deltas for
// the same product are merged before applying, so a partial success can
// never leave one line applied and another rejected.
func (s *Service) AdjustStockBatch(ctx context.Context, repos TransactionalRepositories, orgID uuid.UUID, adjustments []StockAdjustment) ([]catalog.Product, error) {
	if len(adjustments) == 0 {
		return nil, nil
	}

	deltas := make(map[uuid.UUID]int64, len(adjustments))
	ids := make([]uuid.UUID, 0, len(adjustments))
	for _, adj := range adjustments {
		if _, ok := deltas[adj.ProductID]; !ok {
			ids = append(ids, adj.ProductID)
		}
		deltas[adj.ProductID] += adj.Delta
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})

	products, err := repos.Products().FindByIDsForUpdate(ctx, orgID, ids)
	if err != nil {
		return nil, err
	}
	if len(products) != len(ids) {
		found := make(map[uuid.UUID]bool, len(products))
		for i := range products {
			found[products[i].ID] = true
		}
		for _, id := range ids {
			if !found[id] {
				return nil, shared.NewNotFoundError("PRODUCT_NOT_FOUND", "Product not found").
					WithDetail("product_id", id.String())
			}
		}
	}

	for i := range products {
		if err := products[i].AdjustStock(deltas[products[i].ID]); err != nil {
			return nil, err
		}
		if err := repos.Products().Save(ctx, &products[i]); err != nil {
			return nil, err
		}
	}
	return products, nil
}

// AdjustDebt applies a signed debt delta to a customer under a row lock
// and records the matching debt transaction with before/after snapshots.
// Positive non-reversal deltas are subject to the customer's credit
// limit; the resulting debt can never go below zero.
func (s *Service) AdjustDebt(ctx context.Context, repos TransactionalRepositories, orgID uuid.UUID, adj DebtAdjustment) (*partner.Customer, *partner.DebtTransaction, error) {
	if adj.Delta.IsZero() {
		return nil, nil, shared.NewValidationError("INVALID_AMOUNT", "Debt delta cannot be zero")
	}

	customer, err := repos.Customers().FindByIDForUpdate(ctx, orgID, adj.CustomerID)
	if err != nil {
		return nil, nil, err
	}

	before := customer.CurrentDebt
	if err := customer.ApplyDebtDelta(adj.Delta, adj.Reversal); err != nil {
		return nil, nil, err
	}

	debtTx, err := partner.NewDebtTransaction(
		orgID,
		customer.ID,
		adj.Type,
		adj.Delta.Abs(),
		before,
		customer.CurrentDebt,
		adj.SourceType,
	)
	if err != nil {
		return nil, nil, err
	}
	if adj.SourceID != nil {
		debtTx.WithSource(*adj.SourceID, adj.Reference)
	}
	if adj.OperatorID != nil {
		debtTx.WithOperator(*adj.OperatorID)
	}
	if adj.Remark != "" {
		debtTx.WithRemark(adj.Remark)
	}
	customer.AddDomainEvent(partner.NewCustomerDebtChangedEvent(customer, debtTx))

	if err := repos.Customers().Save(ctx, customer); err != nil {
		return nil, nil, err
	}
	if err := repos.DebtTransactions().Save(ctx, debtTx); err != nil {
		return nil, nil, err
	}

	return customer, debtTx, nil
}
