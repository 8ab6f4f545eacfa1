package persistence

import (
	"context"
	"errors"

	"github.com/distribo/backend/internal/domain/payment"
	"github.com/distribo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentRepository implements PaymentRepository using GORM.
// Payments and their allocations are insert-only.
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByIDForOrg finds a payment with its allocations
func (r *GormPaymentRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*payment.Payment, error) {
	var p payment.Payment
	if err := r.db.WithContext(ctx).
		Preload("Allocations", allocationOrder).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByCustomer returns payments for a customer matching the filter
func (r *GormPaymentRepository) FindByCustomer(ctx context.Context, orgID, customerID uuid.UUID, filter shared.Filter) ([]payment.Payment, error) {
	query := r.db.WithContext(ctx).Model(&payment.Payment{}).
		Where("org_id = ? AND customer_id = ?", orgID, customerID)

	if mode, ok := filter.Filters["mode"]; ok {
		query = query.Where("mode = ?", mode)
	}
	if pType, ok := filter.Filters["type"]; ok {
		query = query.Where("type = ?", pType)
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, PaymentSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	var payments []payment.Payment
	if err := query.Preload("Allocations", allocationOrder).Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

// allocationOrder keeps preloaded allocations in their application order
func allocationOrder(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// Save inserts a payment together with its allocation rows
func (r *GormPaymentRepository) Save(ctx context.Context, p *payment.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// Ensure GormPaymentRepository implements PaymentRepository
var _ payment.PaymentRepository = (*GormPaymentRepository)(nil)
