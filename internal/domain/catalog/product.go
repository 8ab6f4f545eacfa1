package catalog

import (
	"strings"

	"github.com/distribo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// IsValid checks if the status is a valid ProductStatus
func (s ProductStatus) IsValid() bool {
	switch s {
	case ProductStatusActive, ProductStatusInactive:
		return true
	}
	return false
}

// Product is the aggregate root for a sellable item.
// CurrentStock is mutated only through the ledger primitives and can
// never go negative; every stock change is paired with an order item
// quantity change.
type Product struct {
	shared.OrgAggregateRoot
	Code         string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_product_org_code,priority:2"`
	Name         string          `gorm:"type:varchar(200);not null"`
	Price        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	CurrentStock int64           `gorm:"not null;default:0"`
	Status       ProductStatus   `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new active product
func NewProduct(orgID uuid.UUID, code, name string, price decimal.Decimal, initialStock int64) (*Product, error) {
	if code == "" {
		return nil, shared.NewValidationError("INVALID_PRODUCT_CODE", "Product code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewValidationError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewValidationError("INVALID_PRICE", "Product price cannot be negative")
	}
	if initialStock < 0 {
		return nil, shared.NewValidationError("INVALID_STOCK", "Initial stock cannot be negative")
	}

	product := &Product{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		Code:             strings.ToUpper(code),
		Name:             name,
		Price:            price.Round(2),
		CurrentStock:     initialStock,
		Status:           ProductStatusActive,
	}

	product.AddDomainEvent(NewProductCreatedEvent(product))

	return product, nil
}

// IsActive returns true if the product may be ordered
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// Activate enables the product
func (p *Product) Activate() {
	p.Status = ProductStatusActive
	p.Touch()
	p.IncrementVersion()
}

// Deactivate disables the product; existing orders are unaffected
func (p *Product) Deactivate() {
	p.Status = ProductStatusInactive
	p.Touch()
	p.IncrementVersion()
}

// UpdatePrice sets a new unit price. Existing orders keep their
// snapshotted prices; only future orders see the change.
func (p *Product) UpdatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewValidationError("INVALID_PRICE", "Product price cannot be negative")
	}
	p.Price = price.Round(2)
	p.Touch()
	p.IncrementVersion()
	return nil
}

// AdjustStock applies a signed stock delta. Rejects any delta that would
// drive stock negative, reporting the available quantity.
func (p *Product) AdjustStock(delta int64) error {
	newStock := p.CurrentStock + delta
	if newStock < 0 {
		return shared.ErrInsufficientStock.
			WithDetail("product_code", p.Code).
			WithDetail("available_stock", p.CurrentStock)
	}
	p.CurrentStock = newStock
	p.Touch()
	p.IncrementVersion()
	p.AddDomainEvent(NewProductStockChangedEvent(p, delta))
	return nil
}

// HasStock returns true if at least quantity units are on hand
func (p *Product) HasStock(quantity int64) bool {
	return p.CurrentStock >= quantity
}
