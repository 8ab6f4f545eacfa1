package persistence

import (
	"bytes"
	"context"
	"errors"
	"sort"

	"github.com/distribo/backend/internal/domain/catalog"
	"github.com/distribo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByIDForOrg finds a product by ID within an organization
func (r *GormProductRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	product.MarkPersisted()
	return &product, nil
}

// FindByIDsForUpdate finds products by ID and takes row locks on them.
// Rows are locked in ascending id order so concurrent multi-product
// operations cannot deadlock.
func (r *GormProductRepository) FindByIDsForUpdate(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}

	sorted := make([]uuid.UUID, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i][:], sorted[j][:]) < 0
	})

	var products []catalog.Product
	if err := lockForUpdate(r.db.WithContext(ctx)).
		Where("org_id = ? AND id IN ?", orgID, sorted).
		Order("id ASC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	for i := range products {
		products[i].MarkPersisted()
	}
	return products, nil
}

// FindByCode finds a product by its code within an organization
func (r *GormProductRepository) FindByCode(ctx context.Context, orgID uuid.UUID, code string) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND code = ?", orgID, code).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	product.MarkPersisted()
	return &product, nil
}

// FindAllForOrg finds all products for an organization
func (r *GormProductRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	var products []catalog.Product
	query := r.applyFilter(r.db.WithContext(ctx).Model(&catalog.Product{}).Where("org_id = ?", orgID), filter, true)
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	for i := range products {
		products[i].MarkPersisted()
	}
	return products, nil
}

// CountForOrg counts products for an organization
func (r *GormProductRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&catalog.Product{}).Where("org_id = ?", orgID), filter, false)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a product. Updates use the aggregate version
// as an optimistic guard; insert-vs-update goes by the persistence flag.
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	db := r.db.WithContext(ctx)

	if !product.IsPersisted() {
		if err := db.Create(product).Error; err != nil {
			return err
		}
		product.MarkPersisted()
		return nil
	}

	result := db.Model(&catalog.Product{}).
		Where("id = ? AND version = ?", product.ID, product.Version-1).
		Updates(map[string]interface{}{
			"name":          product.Name,
			"price":         product.Price,
			"current_stock": product.CurrentStock,
			"status":        product.Status,
			"version":       product.Version,
			"updated_at":    product.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

func (r *GormProductRepository) applyFilter(query *gorm.DB, filter shared.Filter, paginate bool) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR code LIKE ?", pattern, pattern)
	}
	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}

	if !paginate {
		return query
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, ProductSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	return query
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
