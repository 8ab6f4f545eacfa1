package catalog

import (
	"context"
	"testing"

	"github.com/distribo/backend/internal/application/ledger"
	"github.com/distribo/backend/internal/application/ledger/ledgertest"
	"github.com/distribo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProductService(t *testing.T) (*ProductService, *ledger.StaticScope, uuid.UUID) {
	t.Helper()
	scope := ledgertest.NewScope()
	return NewProductService(scope, ledger.NewService()), scope, uuid.New()
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()
	svc, _, orgID := newProductService(t)

	resp, err := svc.Create(ctx, orgID, CreateProductRequest{
		Code:         "SKU-1",
		Name:         "Widget",
		Price:        decimal.NewFromFloat(9.99),
		InitialStock: 40,
	})
	require.NoError(t, err)
	assert.Equal(t, "SKU-1", resp.Code)
	assert.Equal(t, "9.99", resp.Price.String())
	assert.Equal(t, int64(40), resp.CurrentStock)
	assert.Equal(t, "active", resp.Status)
}

func TestProductService_Create_DuplicateCode(t *testing.T) {
	ctx := context.Background()
	svc, _, orgID := newProductService(t)

	_, err := svc.Create(ctx, orgID, CreateProductRequest{Code: "SKU-1", Name: "Widget", Price: decimal.NewFromInt(5)})
	require.NoError(t, err)

	_, err = svc.Create(ctx, orgID, CreateProductRequest{Code: "SKU-1", Name: "Other", Price: decimal.NewFromInt(5)})
	require.Error(t, err)
	assert.Equal(t, "ALREADY_EXISTS", shared.CodeOf(err))
}

func TestProductService_UpdatePrice(t *testing.T) {
	ctx := context.Background()
	svc, _, orgID := newProductService(t)

	created, err := svc.Create(ctx, orgID, CreateProductRequest{Code: "SKU-1", Name: "Widget", Price: decimal.NewFromInt(5)})
	require.NoError(t, err)

	resp, err := svc.UpdatePrice(ctx, orgID, created.ID, UpdatePriceRequest{Price: decimal.NewFromFloat(7.5)})
	require.NoError(t, err)
	assert.Equal(t, "7.5", resp.Price.String())

	_, err = svc.UpdatePrice(ctx, orgID, created.ID, UpdatePriceRequest{Price: decimal.NewFromInt(-1)})
	require.Error(t, err)
	assert.Equal(t, "INVALID_PRICE", shared.CodeOf(err))
}

func TestProductService_AdjustStock(t *testing.T) {
	ctx := context.Background()
	svc, _, orgID := newProductService(t)

	created, err := svc.Create(ctx, orgID, CreateProductRequest{
		Code: "SKU-1", Name: "Widget", Price: decimal.NewFromInt(5), InitialStock: 10,
	})
	require.NoError(t, err)

	resp, err := svc.AdjustStock(ctx, orgID, created.ID, AdjustStockRequest{Delta: 25, Reason: "goods received"})
	require.NoError(t, err)
	assert.Equal(t, int64(35), resp.CurrentStock)

	resp, err = svc.AdjustStock(ctx, orgID, created.ID, AdjustStockRequest{Delta: -5, Reason: "breakage"})
	require.NoError(t, err)
	assert.Equal(t, int64(30), resp.CurrentStock)
}

func TestProductService_AdjustStock_Guards(t *testing.T) {
	ctx := context.Background()
	svc, scope, orgID := newProductService(t)

	created, err := svc.Create(ctx, orgID, CreateProductRequest{
		Code: "SKU-1", Name: "Widget", Price: decimal.NewFromInt(5), InitialStock: 10,
	})
	require.NoError(t, err)

	_, err = svc.AdjustStock(ctx, orgID, created.ID, AdjustStockRequest{Delta: 0, Reason: "noop"})
	require.Error(t, err)
	assert.Equal(t, "INVALID_AMOUNT", shared.CodeOf(err))

	_, err = svc.AdjustStock(ctx, orgID, created.ID, AdjustStockRequest{Delta: -11, Reason: "over write-off"})
	require.Error(t, err)
	assert.Equal(t, "INSUFFICIENT_STOCK", shared.CodeOf(err))

	// the failed write-off left stock untouched
	stored, err := scope.ProductRepo.FindByIDForOrg(ctx, orgID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), stored.CurrentStock)

	_, err = svc.AdjustStock(ctx, orgID, uuid.New(), AdjustStockRequest{Delta: 1, Reason: "ghost"})
	require.Error(t, err)
	assert.Equal(t, "PRODUCT_NOT_FOUND", shared.CodeOf(err))
}

func TestProductService_DeactivateActivate(t *testing.T) {
	ctx := context.Background()
	svc, _, orgID := newProductService(t)

	created, err := svc.Create(ctx, orgID, CreateProductRequest{Code: "SKU-1", Name: "Widget", Price: decimal.NewFromInt(5)})
	require.NoError(t, err)

	resp, err := svc.Deactivate(ctx, orgID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "inactive", resp.Status)

	resp, err = svc.Activate(ctx, orgID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "active", resp.Status)
}

func TestProductService_GetByCode_NotFound(t *testing.T) {
	svc, _, orgID := newProductService(t)
	_, err := svc.GetByCode(context.Background(), orgID, "NOPE")
	require.Error(t, err)
	assert.True(t, shared.IsNotFound(err))
}
