package persistence

import (
	"context"
	"errors"

	"github.com/distribo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormIdempotencyRepository implements IdempotencyRepository using GORM
type GormIdempotencyRepository struct {
	db *gorm.DB
}

// NewGormIdempotencyRepository creates a new GormIdempotencyRepository
func NewGormIdempotencyRepository(db *gorm.DB) *GormIdempotencyRepository {
	return &GormIdempotencyRepository{db: db}
}

// Find returns the record for (org, key), or ErrNotFound
func (r *GormIdempotencyRepository) Find(ctx context.Context, orgID uuid.UUID, key string) (*shared.IdempotencyRecord, error) {
	var record shared.IdempotencyRecord
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND key = ?", orgID, key).
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// Save inserts a record; ErrAlreadyExists on duplicate (org, key)
func (r *GormIdempotencyRepository) Save(ctx context.Context, record *shared.IdempotencyRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Ensure GormIdempotencyRepository implements IdempotencyRepository
var _ shared.IdempotencyRepository = (*GormIdempotencyRepository)(nil)
