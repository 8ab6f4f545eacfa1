package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/distribo/backend/internal/domain/shared"
	"github.com/distribo/backend/internal/domain/trade"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM.
// Order items are written once at creation; later saves only touch the
// order row itself.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByIDForOrg finds an order with its items within an organization
func (r *GormOrderRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*trade.Order, error) {
	var order trade.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("org_id = ? AND id = ?", orgID, id).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	order.MarkPersisted()
	return &order, nil
}

// FindByIDForUpdate finds an order and takes a row lock on it
func (r *GormOrderRepository) FindByIDForUpdate(ctx context.Context, orgID, id uuid.UUID) (*trade.Order, error) {
	var order trade.Order
	if err := lockForUpdate(r.db.WithContext(ctx)).
		Preload("Items").
		Where("org_id = ? AND id = ?", orgID, id).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	order.MarkPersisted()
	return &order, nil
}

// FindByOrderNumber finds an order by its human-readable number
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, orgID uuid.UUID, orderNumber string) (*trade.Order, error) {
	var order trade.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("org_id = ? AND order_number = ?", orgID, orderNumber).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	order.MarkPersisted()
	return &order, nil
}

// FindOpenByCustomer returns non-cancelled orders with an unpaid
// remainder for a customer, oldest first
func (r *GormOrderRepository) FindOpenByCustomer(ctx context.Context, orgID, customerID uuid.UUID, forUpdate bool) ([]trade.Order, error) {
	db := r.db.WithContext(ctx)
	if forUpdate {
		db = lockForUpdate(db)
	}

	var orders []trade.Order
	if err := db.
		Preload("Items").
		Where("org_id = ? AND customer_id = ? AND status <> ? AND amount_paid < total",
			orgID, customerID, trade.OrderStatusCancelled).
		Order("created_at ASC, id ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].MarkPersisted()
	}
	return orders, nil
}

// FindByCustomer returns all orders for a customer matching the filter
func (r *GormOrderRepository) FindByCustomer(ctx context.Context, orgID, customerID uuid.UUID, filter shared.Filter) ([]trade.Order, error) {
	var orders []trade.Order
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&trade.Order{}).
			Where("org_id = ? AND customer_id = ?", orgID, customerID),
		filter, true,
	)
	if err := query.Preload("Items").Find(&orders).Error; err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].MarkPersisted()
	}
	return orders, nil
}

// FindAllForOrg finds all orders for an organization
func (r *GormOrderRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]trade.Order, error) {
	var orders []trade.Order
	query := r.applyFilter(r.db.WithContext(ctx).Model(&trade.Order{}).Where("org_id = ?", orgID), filter, true)
	if err := query.Preload("Items").Find(&orders).Error; err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].MarkPersisted()
	}
	return orders, nil
}

// FindOpenAsOf returns non-cancelled orders created on or before the
// given date that still carry an unpaid remainder
func (r *GormOrderRepository) FindOpenAsOf(ctx context.Context, orgID uuid.UUID, asOf time.Time) ([]trade.Order, error) {
	var orders []trade.Order
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND status <> ? AND amount_paid < total AND created_at <= ?",
			orgID, trade.OrderStatusCancelled, asOf).
		Order("created_at ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].MarkPersisted()
	}
	return orders, nil
}

// CountForOrg counts orders for an organization
func (r *GormOrderRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&trade.Order{}).Where("org_id = ?", orgID), filter, false)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates an order. Creation inserts the order together
// with its item rows; updates touch the order row only, guarded by the
// aggregate version. Insert-vs-update goes by the persistence flag, the
// version counter may exceed 1 before the first save.
func (r *GormOrderRepository) Save(ctx context.Context, order *trade.Order) error {
	db := r.db.WithContext(ctx)

	if !order.IsPersisted() {
		if err := db.Create(order).Error; err != nil {
			return err
		}
		order.MarkPersisted()
		return nil
	}

	result := db.Model(&trade.Order{}).
		Where("id = ? AND version = ?", order.ID, order.Version-1).
		Updates(map[string]interface{}{
			"amount_paid":   order.AmountPaid,
			"status":        order.Status,
			"remark":        order.Remark,
			"cancel_reason": order.CancelReason,
			"cancelled_at":  order.CancelledAt,
			"cancelled_by":  order.CancelledBy,
			"version":       order.Version,
			"updated_at":    order.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter, paginate bool) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("order_number LIKE ? OR customer_name LIKE ?", pattern, pattern)
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
	orderBy := ValidateSortField(filter.OrderBy, OrderSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	return query
}

// Ensure GormOrderRepository implements OrderRepository
var _ trade.OrderRepository = (*GormOrderRepository)(nil)
