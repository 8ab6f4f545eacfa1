package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/distribo/backend/internal/domain/trade"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderNumberCounter is one counter row per organization per calendar day
type OrderNumberCounter struct {
	OrgID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Day     string    `gorm:"type:varchar(8);primaryKey"` // YYYYMMDD
	LastSeq int       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (OrderNumberCounter) TableName() string {
	return "order_number_counters"
}

// GormOrderNumberGenerator issues sequential order numbers from a
// per-day counter row. Each Next call runs its own short transaction,
// decoupled from the caller's business transaction: a failed order
// creation burns the number rather than holding the counter lock.
type GormOrderNumberGenerator struct {
	db     *gorm.DB
	prefix string
}

// NewGormOrderNumberGenerator creates a generator with the given prefix
func NewGormOrderNumberGenerator(db *gorm.DB, prefix string) *GormOrderNumberGenerator {
	return &GormOrderNumberGenerator{db: db, prefix: prefix}
}

// Next returns the next order number for the organization and day
func (g *GormOrderNumberGenerator) Next(ctx context.Context, orgID uuid.UUID, day time.Time) (string, error) {
	dayKey := day.Format("20060102")

	var seq int
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var counter OrderNumberCounter
		err := lockForUpdate(tx).
			Where("org_id = ? AND day = ?", orgID, dayKey).
			First(&counter).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			counter = OrderNumberCounter{OrgID: orgID, Day: dayKey, LastSeq: 1}
			if err := tx.Create(&counter).Error; err != nil {
				// another request created the row first; take the lock and retry
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					if err := lockForUpdate(tx).
						Where("org_id = ? AND day = ?", orgID, dayKey).
						First(&counter).Error; err != nil {
						return err
					}
					counter.LastSeq++
					if err := tx.Model(&OrderNumberCounter{}).
						Where("org_id = ? AND day = ?", orgID, dayKey).
						Update("last_seq", counter.LastSeq).Error; err != nil {
						return err
					}
				} else {
					return err
				}
			}
		case err != nil:
			return err
		default:
			counter.LastSeq++
			if err := tx.Model(&OrderNumberCounter{}).
				Where("org_id = ? AND day = ?", orgID, dayKey).
				Update("last_seq", counter.LastSeq).Error; err != nil {
				return err
			}
		}
		seq = counter.LastSeq
		return nil
	})
	if err != nil {
		return "", err
	}

	return trade.FormatOrderNumber(g.prefix, day, seq), nil
}

// Ensure GormOrderNumberGenerator implements OrderNumberGenerator
var _ trade.OrderNumberGenerator = (*GormOrderNumberGenerator)(nil)
