package shared

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// IdempotencyStore is a fast-path store of seen idempotency keys.
// Returns from here are advisory only; the durable record lives in the
// idempotency_keys table and is written inside the business transaction.
type IdempotencyStore interface {
	// MarkProcessed marks a key as processed with a TTL.
	// Returns true if the key was newly marked, false if it was already present.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a key has already been processed
	IsProcessed(ctx context.Context, key string) (bool, error)

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyRecord is the durable outcome of an idempotent operation.
// A retried request with the same (org, key) pair returns the committed
// result instead of re-applying the mutation.
type IdempotencyRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrgID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_idem_org_key,priority:1"`
	Key       string    `gorm:"type:varchar(128);not null;uniqueIndex:idx_idem_org_key,priority:2"`
	Operation string    `gorm:"type:varchar(64);not null"`
	ResultID  uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (IdempotencyRecord) TableName() string {
	return "idempotency_keys"
}

// NewIdempotencyRecord creates a durable idempotency record
func NewIdempotencyRecord(orgID uuid.UUID, key, operation string, resultID uuid.UUID) *IdempotencyRecord {
	return &IdempotencyRecord{
		ID:        uuid.New(),
		OrgID:     orgID,
		Key:       key,
		Operation: operation,
		ResultID:  resultID,
		CreatedAt: time.Now(),
	}
}

// IdempotencyRepository persists idempotency records
type IdempotencyRepository interface {
	// Find returns the record for (org, key), or ErrNotFound
	Find(ctx context.Context, orgID uuid.UUID, key string) (*IdempotencyRecord, error)
	// Save inserts a record; ErrAlreadyExists on duplicate (org, key)
	Save(ctx context.Context, record *IdempotencyRecord) error
}
