package delivery

import (
	"testing"
	"time"

	"github.com/distribo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestRegister(t *testing.T) *DailyCashRegister {
	t.Helper()
	r, err := NewDailyCashRegister(uuid.New(), uuid.New(), time.Now())
	require.NoError(t, err)
	return r
}

func TestNewDailyCashRegister(t *testing.T) {
	r := createTestRegister(t)
	assert.False(t, r.IsClosed)
	assert.True(t, r.ExpectedCollection.IsZero())
	assert.True(t, r.ActualCollection.IsZero())
	assert.True(t, r.NewDebtCreated.IsZero())

	_, err := NewDailyCashRegister(uuid.New(), uuid.Nil, time.Now())
	assert.Equal(t, "INVALID_DELIVERER", shared.CodeOf(err))
}

func TestRegisterDay(t *testing.T) {
	jakarta := time.FixedZone("UTC+7", 7*60*60)
	localMorning := time.Date(2026, 3, 11, 5, 30, 0, 0, jakarta)

	day := RegisterDay(localMorning)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), day)
	assert.True(t, day.Equal(RegisterDay(localMorning.UTC())))
}

func TestRegister_RecordCollection(t *testing.T) {
	r := createTestRegister(t)

	require.NoError(t, r.RecordCollection(decimal.NewFromInt(500), decimal.NewFromInt(500)))
	require.NoError(t, r.RecordCollection(decimal.NewFromInt(300), decimal.NewFromInt(120)))

	assert.Equal(t, "800.00", r.ExpectedCollection.StringFixed(2))
	assert.Equal(t, "620.00", r.ActualCollection.StringFixed(2))
	assert.Equal(t, "180.00", r.NewDebtCreated.StringFixed(2))
}

func TestRegister_RecordCollection_Validation(t *testing.T) {
	r := createTestRegister(t)

	err := r.RecordCollection(decimal.NewFromInt(-1), decimal.Zero)
	assert.Equal(t, "INVALID_AMOUNT", shared.CodeOf(err))

	err = r.RecordCollection(decimal.NewFromInt(100), decimal.NewFromInt(101))
	assert.Equal(t, "INVALID_AMOUNT", shared.CodeOf(err))
}

func TestRegister_Close(t *testing.T) {
	r := createTestRegister(t)
	require.NoError(t, r.RecordCollection(decimal.NewFromInt(500), decimal.NewFromInt(450)))

	closer := uuid.New()
	err := r.Close(decimal.NewFromInt(440), closer, "10 short, counting error")
	require.NoError(t, err)

	assert.True(t, r.IsClosed)
	assert.Equal(t, "440.00", r.CashHandedOver.StringFixed(2))
	assert.Equal(t, "-10.00", r.Discrepancy().StringFixed(2))
	require.NotNil(t, r.ClosedBy)
	assert.Equal(t, closer, *r.ClosedBy)
	assert.NotNil(t, r.ClosedAt)
	assert.Len(t, r.GetDomainEvents(), 1)
}

func TestRegister_Close_Twice(t *testing.T) {
	r := createTestRegister(t)
	require.NoError(t, r.Close(decimal.Zero, uuid.New(), ""))

	err := r.Close(decimal.Zero, uuid.New(), "")
	assert.ErrorIs(t, err, shared.ErrRegisterClosed)
}

func TestRegister_RecordCollection_AfterClose(t *testing.T) {
	r := createTestRegister(t)
	require.NoError(t, r.Close(decimal.Zero, uuid.New(), ""))

	err := r.RecordCollection(decimal.NewFromInt(100), decimal.NewFromInt(100))
	assert.ErrorIs(t, err, shared.ErrRegisterClosed)
}

func TestNewRegisterAdjustment(t *testing.T) {
	r := createTestRegister(t)
	require.NoError(t, r.RecordCollection(decimal.NewFromInt(500), decimal.NewFromInt(450)))
	require.NoError(t, r.Close(decimal.NewFromInt(450), uuid.New(), ""))

	adj, err := NewRegisterAdjustment(r, decimal.NewFromInt(-20), "counted banknotes again, 20 missing", uuid.New())
	require.NoError(t, err)
	assert.Equal(t, r.ID, adj.RegisterID)
	assert.Equal(t, r.OrgID, adj.OrgID)
	assert.Equal(t, "-20.00", adj.Amount.StringFixed(2))

	// register itself is untouched
	assert.Equal(t, "450.00", r.CashHandedOver.StringFixed(2))
}

func TestNewRegisterAdjustment_Validation(t *testing.T) {
	open := createTestRegister(t)
	_, err := NewRegisterAdjustment(open, decimal.NewFromInt(5), "reason", uuid.New())
	assert.Equal(t, "REGISTER_NOT_CLOSED", shared.CodeOf(err))

	closed := createTestRegister(t)
	require.NoError(t, closed.Close(decimal.Zero, uuid.New(), ""))

	_, err = NewRegisterAdjustment(closed, decimal.Zero, "reason", uuid.New())
	assert.Equal(t, "INVALID_AMOUNT", shared.CodeOf(err))

	_, err = NewRegisterAdjustment(closed, decimal.NewFromInt(5), "", uuid.New())
	assert.Equal(t, "INVALID_REASON", shared.CodeOf(err))
}
