package delivery

import (
	"time"

	"github.com/distribo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DailyCashRegister reconciles one deliverer's day: what they were sent
// out to collect, what they actually collected, and what they handed
// over at close. One register exists per (deliverer, date), created
// lazily on the first delivery of the day. Closing is terminal.
type DailyCashRegister struct {
	shared.OrgAggregateRoot
	DelivererID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_register_deliverer_date,priority:1"`
	Date               time.Time       `gorm:"type:date;not null;uniqueIndex:idx_register_deliverer_date,priority:2"`
	ExpectedCollection decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	ActualCollection   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	NewDebtCreated     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	IsClosed           bool            `gorm:"not null;default:false"`
	CashHandedOver     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	ClosedAt           *time.Time
	ClosedBy           *uuid.UUID `gorm:"type:uuid"`
	CloseNotes         string     `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (DailyCashRegister) TableName() string {
	return "daily_cash_registers"
}

// RegisterDay canonicalizes a timestamp to the register's calendar day.
// Registers bucket by UTC midnight so the day a collection is posted
// under does not depend on the server's local zone; lookups must use
// the same bucket.
func RegisterDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NewDailyCashRegister opens a register for a deliverer and day
func NewDailyCashRegister(orgID, delivererID uuid.UUID, date time.Time) (*DailyCashRegister, error) {
	if delivererID == uuid.Nil {
		return nil, shared.NewValidationError("INVALID_DELIVERER", "Deliverer ID cannot be empty")
	}

	return &DailyCashRegister{
		OrgAggregateRoot:   shared.NewOrgAggregateRoot(orgID),
		DelivererID:        delivererID,
		Date:               RegisterDay(date),
		ExpectedCollection: decimal.Zero,
		ActualCollection:   decimal.Zero,
		NewDebtCreated:     decimal.Zero,
		CashHandedOver:     decimal.Zero,
	}, nil
}

// RecordCollection posts one settled delivery into the register.
// expected is the delivery's TotalToCollect, actual what was collected;
// the gap accumulates into NewDebtCreated. Rejected once closed.
func (r *DailyCashRegister) RecordCollection(expected, actual decimal.Decimal) error {
	if r.IsClosed {
		return shared.ErrRegisterClosed
	}
	if expected.IsNegative() || actual.IsNegative() {
		return shared.NewValidationError("INVALID_AMOUNT", "Collection amounts cannot be negative")
	}
	if actual.GreaterThan(expected) {
		return shared.NewValidationError("INVALID_AMOUNT", "Actual collection cannot exceed expected collection")
	}

	r.ExpectedCollection = r.ExpectedCollection.Add(expected.Round(2))
	r.ActualCollection = r.ActualCollection.Add(actual.Round(2))
	r.NewDebtCreated = r.NewDebtCreated.Add(expected.Sub(actual).Round(2))
	r.Touch()
	r.IncrementVersion()
	return nil
}

// Close settles the register exactly once. The discrepancy between the
// cash handed over and what was collected is computed here and frozen;
// later corrections go through adjustment entries, never edits.
func (r *DailyCashRegister) Close(cashHandedOver decimal.Decimal, closedBy uuid.UUID, notes string) error {
	if r.IsClosed {
		return shared.ErrRegisterClosed
	}
	if cashHandedOver.IsNegative() {
		return shared.NewValidationError("INVALID_AMOUNT", "Cash handed over cannot be negative")
	}

	now := time.Now()
	r.IsClosed = true
	r.CashHandedOver = cashHandedOver.Round(2)
	r.ClosedAt = &now
	r.ClosedBy = &closedBy
	r.CloseNotes = notes
	r.Touch()
	r.IncrementVersion()

	r.AddDomainEvent(NewRegisterClosedEvent(r))

	return nil
}

// Discrepancy returns cashHandedOver - actualCollection, derived on
// every read. Meaningful only after close.
func (r *DailyCashRegister) Discrepancy() decimal.Decimal {
	return r.CashHandedOver.Sub(r.ActualCollection)
}

// RegisterAdjustment corrects a closed register. It references the
// register but never mutates it.
type RegisterAdjustment struct {
	shared.BaseEntity
	OrgID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	RegisterID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,2);not null"` // signed correction
	Reason     string          `gorm:"type:text;not null"`
	CreatedBy  uuid.UUID       `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (RegisterAdjustment) TableName() string {
	return "register_adjustments"
}

// NewRegisterAdjustment creates a correction entry for a closed register
func NewRegisterAdjustment(register *DailyCashRegister, amount decimal.Decimal, reason string, createdBy uuid.UUID) (*RegisterAdjustment, error) {
	if !register.IsClosed {
		return nil, shared.NewDomainError("REGISTER_NOT_CLOSED", "Adjustments apply only to closed registers")
	}
	if amount.IsZero() {
		return nil, shared.NewValidationError("INVALID_AMOUNT", "Adjustment amount cannot be zero")
	}
	if reason == "" {
		return nil, shared.NewValidationError("INVALID_REASON", "Adjustment reason cannot be empty")
	}

	return &RegisterAdjustment{
		BaseEntity: shared.NewBaseEntity(),
		OrgID:      register.OrgID,
		RegisterID: register.ID,
		Amount:     amount.Round(2),
		Reason:     reason,
		CreatedBy:  createdBy,
	}, nil
}
