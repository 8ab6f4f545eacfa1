package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/distribo/backend/internal/domain/delivery"
	"github.com/distribo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormDeliveryRepository implements DeliveryRepository using GORM
type GormDeliveryRepository struct {
	db *gorm.DB
}

// NewGormDeliveryRepository creates a new GormDeliveryRepository
func NewGormDeliveryRepository(db *gorm.DB) *GormDeliveryRepository {
	return &GormDeliveryRepository{db: db}
}

// FindByIDForOrg finds a delivery within an organization
func (r *GormDeliveryRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*delivery.Delivery, error) {
	var d delivery.Delivery
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	d.MarkPersisted()
	return &d, nil
}

// FindByIDForUpdate finds a delivery and takes a row lock on it
func (r *GormDeliveryRepository) FindByIDForUpdate(ctx context.Context, orgID, id uuid.UUID) (*delivery.Delivery, error) {
	var d delivery.Delivery
	if err := lockForUpdate(r.db.WithContext(ctx)).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	d.MarkPersisted()
	return &d, nil
}

// FindByOrder returns all delivery attempts for an order, newest first
func (r *GormDeliveryRepository) FindByOrder(ctx context.Context, orgID, orderID uuid.UUID) ([]delivery.Delivery, error) {
	var deliveries []delivery.Delivery
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND order_id = ?", orgID, orderID).
		Order("created_at DESC").
		Find(&deliveries).Error; err != nil {
		return nil, err
	}
	for i := range deliveries {
		deliveries[i].MarkPersisted()
	}
	return deliveries, nil
}

// FindByDeliverer returns deliveries for a deliverer on a given day
func (r *GormDeliveryRepository) FindByDeliverer(ctx context.Context, orgID, delivererID uuid.UUID, date time.Time, filter shared.Filter) ([]delivery.Delivery, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	query := r.db.WithContext(ctx).Model(&delivery.Delivery{}).
		Where("org_id = ? AND deliverer_id = ? AND scheduled_date >= ? AND scheduled_date < ?",
			orgID, delivererID, dayStart, dayEnd)

	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, DeliverySortFields, "scheduled_date")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	var deliveries []delivery.Delivery
	if err := query.Find(&deliveries).Error; err != nil {
		return nil, err
	}
	for i := range deliveries {
		deliveries[i].MarkPersisted()
	}
	return deliveries, nil
}

// Save creates or updates a delivery, guarded by the aggregate version.
// A scheduled delivery is already past version 1 when it is first saved,
// so insert-vs-update goes by the persistence flag, not the counter.
func (r *GormDeliveryRepository) Save(ctx context.Context, d *delivery.Delivery) error {
	db := r.db.WithContext(ctx)

	if !d.IsPersisted() {
		if err := db.Create(d).Error; err != nil {
			return err
		}
		d.MarkPersisted()
		return nil
	}

	result := db.Model(&delivery.Delivery{}).
		Where("id = ? AND version = ?", d.ID, d.Version-1).
		Updates(map[string]interface{}{
			"status":            d.Status,
			"amount_collected":  d.AmountCollected,
			"collection_mode":   d.CollectionMode,
			"proof_of_delivery": d.ProofOfDelivery,
			"failure_reason":    d.FailureReason,
			"delivered_at":      d.DeliveredAt,
			"failed_at":         d.FailedAt,
			"version":           d.Version,
			"updated_at":        d.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Ensure GormDeliveryRepository implements DeliveryRepository
var _ delivery.DeliveryRepository = (*GormDeliveryRepository)(nil)

// GormCashRegisterRepository implements CashRegisterRepository using GORM
type GormCashRegisterRepository struct {
	db *gorm.DB
}

// NewGormCashRegisterRepository creates a new GormCashRegisterRepository
func NewGormCashRegisterRepository(db *gorm.DB) *GormCashRegisterRepository {
	return &GormCashRegisterRepository{db: db}
}

// FindByIDForUpdate finds a register and takes a row lock on it
func (r *GormCashRegisterRepository) FindByIDForUpdate(ctx context.Context, orgID, id uuid.UUID) (*delivery.DailyCashRegister, error) {
	var register delivery.DailyCashRegister
	if err := lockForUpdate(r.db.WithContext(ctx)).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&register).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	register.MarkPersisted()
	return &register, nil
}

// FindByIDForOrg finds a register within an organization
func (r *GormCashRegisterRepository) FindByIDForOrg(ctx context.Context, orgID, id uuid.UUID) (*delivery.DailyCashRegister, error) {
	var register delivery.DailyCashRegister
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&register).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	register.MarkPersisted()
	return &register, nil
}

// FindByDelivererAndDate returns the register for (deliverer, date)
func (r *GormCashRegisterRepository) FindByDelivererAndDate(ctx context.Context, orgID, delivererID uuid.UUID, date time.Time, forUpdate bool) (*delivery.DailyCashRegister, error) {
	db := r.db.WithContext(ctx)
	if forUpdate {
		db = lockForUpdate(db)
	}

	// Window on the same UTC bucket NewDailyCashRegister stores.
	dayStart := delivery.RegisterDay(date)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var register delivery.DailyCashRegister
	if err := db.
		Where("org_id = ? AND deliverer_id = ? AND date >= ? AND date < ?",
			orgID, delivererID, dayStart, dayEnd).
		First(&register).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	register.MarkPersisted()
	return &register, nil
}

// Save creates or updates a register, guarded by the aggregate version.
// A lazily opened register has already recorded its first collection by
// the time it is saved, so insert-vs-update goes by the persistence flag.
func (r *GormCashRegisterRepository) Save(ctx context.Context, register *delivery.DailyCashRegister) error {
	db := r.db.WithContext(ctx)

	if !register.IsPersisted() {
		if err := db.Create(register).Error; err != nil {
			return err
		}
		register.MarkPersisted()
		return nil
	}

	result := db.Model(&delivery.DailyCashRegister{}).
		Where("id = ? AND version = ?", register.ID, register.Version-1).
		Updates(map[string]interface{}{
			"expected_collection": register.ExpectedCollection,
			"actual_collection":   register.ActualCollection,
			"new_debt_created":    register.NewDebtCreated,
			"is_closed":           register.IsClosed,
			"cash_handed_over":    register.CashHandedOver,
			"closed_at":           register.ClosedAt,
			"closed_by":           register.ClosedBy,
			"close_notes":         register.CloseNotes,
			"version":             register.Version,
			"updated_at":          register.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// SaveAdjustment inserts a correction entry for a closed register
func (r *GormCashRegisterRepository) SaveAdjustment(ctx context.Context, adjustment *delivery.RegisterAdjustment) error {
	return r.db.WithContext(ctx).Create(adjustment).Error
}

// FindAdjustments returns correction entries for a register
func (r *GormCashRegisterRepository) FindAdjustments(ctx context.Context, orgID, registerID uuid.UUID) ([]delivery.RegisterAdjustment, error) {
	var adjustments []delivery.RegisterAdjustment
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND register_id = ?", orgID, registerID).
		Order("created_at ASC").
		Find(&adjustments).Error; err != nil {
		return nil, err
	}
	return adjustments, nil
}

// Ensure GormCashRegisterRepository implements CashRegisterRepository
var _ delivery.CashRegisterRepository = (*GormCashRegisterRepository)(nil)
