package catalog

import (
	"time"

	"github.com/distribo/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductRequest is the request to create a product
type CreateProductRequest struct {
	Code         string          `json:"code" binding:"required,min=1,max=50"`
	Name         string          `json:"name" binding:"required,min=1,max=200"`
	Price        decimal.Decimal `json:"price" binding:"required"`
	InitialStock int64           `json:"initial_stock" binding:"omitempty,gte=0"`
}

// UpdatePriceRequest changes a product's unit price
type UpdatePriceRequest struct {
	Price decimal.Decimal `json:"price" binding:"required"`
}

// AdjustStockRequest is a manual stock correction. A positive delta
// receives stock, a negative one writes it off.
type AdjustStockRequest struct {
	Delta  int64  `json:"delta" binding:"required"`
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// ProductListFilter is the filter for listing products
type ProductListFilter struct {
	Status   string `form:"status"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir"`
}

// ProductResponse is the response representation of a product
type ProductResponse struct {
	ID           uuid.UUID       `json:"id"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	CurrentStock int64           `json:"current_stock"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ToProductResponse converts a product aggregate to its response form
func ToProductResponse(product *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:           product.ID,
		Code:         product.Code,
		Name:         product.Name,
		Price:        product.Price,
		CurrentStock: product.CurrentStock,
		Status:       string(product.Status),
		CreatedAt:    product.CreatedAt,
		UpdatedAt:    product.UpdatedAt,
	}
}
