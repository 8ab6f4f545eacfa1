package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/distribo/backend/internal/domain/partner"
	"github.com/distribo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCustomerRepository implements CustomerRepository using GORM
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GormCustomerRepository
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// FindByIDForOrg finds a customer by ID within an organization
func (r *GormCustomerRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*partner.Customer, error) {
	var customer partner.Customer
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	customer.MarkPersisted()
	return &customer, nil
}

// FindByIDForUpdate finds a customer and takes a row lock on it
func (r *GormCustomerRepository) FindByIDForUpdate(ctx context.Context, orgID, id uuid.UUID) (*partner.Customer, error) {
	var customer partner.Customer
	if err := lockForUpdate(r.db.WithContext(ctx)).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	customer.MarkPersisted()
	return &customer, nil
}

// FindByCode finds a customer by its code within an organization
func (r *GormCustomerRepository) FindByCode(ctx context.Context, orgID uuid.UUID, code string) (*partner.Customer, error) {
	var customer partner.Customer
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND code = ?", orgID, code).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	customer.MarkPersisted()
	return &customer, nil
}

// FindAllForOrg finds all customers for an organization
func (r *GormCustomerRepository) FindAllForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) ([]partner.Customer, error) {
	var customers []partner.Customer
	query := r.applyFilter(r.db.WithContext(ctx).Model(&partner.Customer{}).Where("org_id = ?", orgID), filter, true)
	if err := query.Find(&customers).Error; err != nil {
		return nil, err
	}
	for i := range customers {
		customers[i].MarkPersisted()
	}
	return customers, nil
}

// CountForOrg counts customers for an organization
func (r *GormCustomerRepository) CountForOrg(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&partner.Customer{}).Where("org_id = ?", orgID), filter, false)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a customer. Updates use the aggregate version
// as an optimistic guard; insert-vs-update goes by the persistence flag.
func (r *GormCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	db := r.db.WithContext(ctx)

	if !customer.IsPersisted() {
		if err := db.Create(customer).Error; err != nil {
			return err
		}
		customer.MarkPersisted()
		return nil
	}

	result := db.Model(&partner.Customer{}).
		Where("id = ? AND version = ?", customer.ID, customer.Version-1).
		Updates(map[string]interface{}{
			"name":                 customer.Name,
			"contact_name":         customer.ContactName,
			"phone":                customer.Phone,
			"address":              customer.Address,
			"credit_limit":         customer.CreditLimit,
			"credit_limit_enabled": customer.CreditLimitEnabled,
			"current_debt":         customer.CurrentDebt,
			"status":               customer.Status,
			"version":              customer.Version,
			"updated_at":           customer.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

func (r *GormCustomerRepository) applyFilter(query *gorm.DB, filter shared.Filter, paginate bool) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR code LIKE ? OR phone LIKE ?", pattern, pattern, pattern)
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
	orderBy := ValidateSortField(filter.OrderBy, CustomerSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))
	return query
}

// Ensure GormCustomerRepository implements CustomerRepository
var _ partner.CustomerRepository = (*GormCustomerRepository)(nil)

// GormDebtTransactionRepository implements DebtTransactionRepository using GORM.
// Rows are insert-only; the audit trail is never rewritten.
type GormDebtTransactionRepository struct {
	db *gorm.DB
}

// NewGormDebtTransactionRepository creates a new GormDebtTransactionRepository
func NewGormDebtTransactionRepository(db *gorm.DB) *GormDebtTransactionRepository {
	return &GormDebtTransactionRepository{db: db}
}

// Save inserts a debt transaction
func (r *GormDebtTransactionRepository) Save(ctx context.Context, tx *partner.DebtTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

// FindByCustomer returns movements for a customer in a date range,
// ordered by date ascending
func (r *GormDebtTransactionRepository) FindByCustomer(ctx context.Context, orgID, customerID uuid.UUID, from, to time.Time) ([]partner.DebtTransaction, error) {
	var movements []partner.DebtTransaction
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND customer_id = ? AND transaction_date >= ? AND transaction_date <= ?",
			orgID, customerID, from, to).
		Order("transaction_date ASC, id ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindBySource returns movements caused by a specific source document
func (r *GormDebtTransactionRepository) FindBySource(ctx context.Context, orgID uuid.UUID, sourceType partner.DebtSourceType, sourceID uuid.UUID) ([]partner.DebtTransaction, error) {
	var movements []partner.DebtTransaction
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND source_type = ? AND source_id = ?", orgID, sourceType, sourceID).
		Order("transaction_date ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// Ensure GormDebtTransactionRepository implements DebtTransactionRepository
var _ partner.DebtTransactionRepository = (*GormDebtTransactionRepository)(nil)
