package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/distribo/backend/internal/domain/delivery"
	paymentdomain "github.com/distribo/backend/internal/domain/payment"
	"github.com/distribo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormDeliveryRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormDeliveryRepository(db)
	ctx := context.Background()
	orgID := uuid.New()
	delivererID := uuid.New()
	scheduled := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("creates and reads back a delivery", func(t *testing.T) {
		d, err := delivery.NewDelivery(orgID, uuid.New(), delivererID, decimal.NewFromInt(150), scheduled)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, d))

		found, err := repo.FindByIDForOrg(ctx, orgID, d.ID)
		require.NoError(t, err)
		assert.Equal(t, delivery.DeliveryStatusPending, found.Status)
		assert.True(t, found.TotalToCollect.Equal(decimal.NewFromInt(150)))
	})

	t.Run("updates persist the collection outcome", func(t *testing.T) {
		d, err := delivery.NewDelivery(orgID, uuid.New(), delivererID, decimal.NewFromInt(200), scheduled)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, d))

		require.NoError(t, d.TransitionTo(delivery.DeliveryStatusAssigned))
		require.NoError(t, d.TransitionTo(delivery.DeliveryStatusPickedUp))
		require.NoError(t, d.Complete(decimal.NewFromInt(180), paymentdomain.PaymentModeCash, "signature.jpg"))
		require.NoError(t, repo.Save(ctx, d))

		found, err := repo.FindByIDForOrg(ctx, orgID, d.ID)
		require.NoError(t, err)
		assert.Equal(t, delivery.DeliveryStatusDelivered, found.Status)
		assert.True(t, found.AmountCollected.Equal(decimal.NewFromInt(180)))
		assert.Equal(t, "signature.jpg", found.ProofOfDelivery)
		require.NotNil(t, found.DeliveredAt)
	})

	t.Run("first save of an already assigned delivery inserts", func(t *testing.T) {
		d, err := delivery.NewDelivery(orgID, uuid.New(), delivererID, decimal.NewFromInt(120), scheduled)
		require.NoError(t, err)
		require.NoError(t, d.TransitionTo(delivery.DeliveryStatusAssigned))
		require.NoError(t, repo.Save(ctx, d))

		found, err := repo.FindByIDForOrg(ctx, orgID, d.ID)
		require.NoError(t, err)
		assert.Equal(t, delivery.DeliveryStatusAssigned, found.Status)
		assert.Equal(t, 2, found.Version)
	})

	t.Run("stale save fails with a concurrency conflict", func(t *testing.T) {
		d, err := delivery.NewDelivery(orgID, uuid.New(), delivererID, decimal.NewFromInt(80), scheduled)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, d))

		stale, err := repo.FindByIDForOrg(ctx, orgID, d.ID)
		require.NoError(t, err)

		require.NoError(t, d.TransitionTo(delivery.DeliveryStatusAssigned))
		require.NoError(t, repo.Save(ctx, d))

		require.NoError(t, stale.Fail("customer unreachable"))
		err = repo.Save(ctx, stale)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})

	t.Run("FindByOrder returns attempts newest first", func(t *testing.T) {
		orderID := uuid.New()

		failed, err := delivery.NewDelivery(orgID, orderID, delivererID, decimal.NewFromInt(100), scheduled)
		require.NoError(t, err)
		failed.CreatedAt = scheduled.Add(-48 * time.Hour)
		require.NoError(t, repo.Save(ctx, failed))

		retry, err := delivery.NewDelivery(orgID, orderID, delivererID, decimal.NewFromInt(100), scheduled)
		require.NoError(t, err)
		retry.CreatedAt = scheduled.Add(-time.Hour)
		require.NoError(t, repo.Save(ctx, retry))

		attempts, err := repo.FindByOrder(ctx, orgID, orderID)
		require.NoError(t, err)
		require.Len(t, attempts, 2)
		assert.Equal(t, retry.ID, attempts[0].ID)
		assert.Equal(t, failed.ID, attempts[1].ID)
	})

	t.Run("FindByDeliverer scopes to the day", func(t *testing.T) {
		todayDeliverer := uuid.New()

		today, err := delivery.NewDelivery(orgID, uuid.New(), todayDeliverer, decimal.NewFromInt(60), scheduled)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, today))

		tomorrow, err := delivery.NewDelivery(orgID, uuid.New(), todayDeliverer, decimal.NewFromInt(70), scheduled.AddDate(0, 0, 1))
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, tomorrow))

		deliveries, err := repo.FindByDeliverer(ctx, orgID, todayDeliverer, scheduled, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, deliveries, 1)
		assert.Equal(t, today.ID, deliveries[0].ID)
	})
}

func TestGormCashRegisterRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormCashRegisterRepository(db)
	ctx := context.Background()
	orgID := uuid.New()
	delivererID := uuid.New()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("creates and finds by deliverer and date", func(t *testing.T) {
		register, err := delivery.NewDailyCashRegister(orgID, delivererID, day)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, register))

		found, err := repo.FindByDelivererAndDate(ctx, orgID, delivererID, day.Add(15*time.Hour), false)
		require.NoError(t, err)
		assert.Equal(t, register.ID, found.ID)
		assert.False(t, found.IsClosed)

		_, err = repo.FindByDelivererAndDate(ctx, orgID, delivererID, day.AddDate(0, 0, 1), false)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		_, err = repo.FindByDelivererAndDate(ctx, orgID, uuid.New(), day, false)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("first save after recording a collection inserts", func(t *testing.T) {
		register, err := delivery.NewDailyCashRegister(orgID, uuid.New(), day)
		require.NoError(t, err)
		require.NoError(t, register.RecordCollection(decimal.NewFromInt(90), decimal.NewFromInt(90)))
		require.NoError(t, repo.Save(ctx, register))

		found, err := repo.FindByIDForOrg(ctx, orgID, register.ID)
		require.NoError(t, err)
		assert.True(t, found.ExpectedCollection.Equal(decimal.NewFromInt(90)))
		assert.Equal(t, 2, found.Version)
	})

	t.Run("zone of the query time does not change the day bucket", func(t *testing.T) {
		jakarta := time.FixedZone("UTC+7", 7*60*60)
		// 2026-03-11 05:30 in Jakarta is still 2026-03-10 in UTC.
		localMorning := time.Date(2026, 3, 11, 5, 30, 0, 0, jakarta)
		del := uuid.New()

		register, err := delivery.NewDailyCashRegister(orgID, del, localMorning)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, register))

		found, err := repo.FindByDelivererAndDate(ctx, orgID, del, localMorning, false)
		require.NoError(t, err)
		assert.Equal(t, register.ID, found.ID)

		sameInstantUTC := localMorning.UTC()
		found, err = repo.FindByDelivererAndDate(ctx, orgID, del, sameInstantUTC, false)
		require.NoError(t, err)
		assert.Equal(t, register.ID, found.ID)
	})

	t.Run("updates persist collections and closing", func(t *testing.T) {
		register, err := delivery.NewDailyCashRegister(orgID, uuid.New(), day)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, register))

		require.NoError(t, register.RecordCollection(decimal.NewFromInt(300), decimal.NewFromInt(280)))
		require.NoError(t, repo.Save(ctx, register))

		closer := uuid.New()
		require.NoError(t, register.Close(decimal.NewFromInt(280), closer, "20 short at the kiosk"))
		require.NoError(t, repo.Save(ctx, register))

		found, err := repo.FindByIDForOrg(ctx, orgID, register.ID)
		require.NoError(t, err)
		assert.True(t, found.IsClosed)
		assert.True(t, found.ExpectedCollection.Equal(decimal.NewFromInt(300)))
		assert.True(t, found.ActualCollection.Equal(decimal.NewFromInt(280)))
		assert.True(t, found.CashHandedOver.Equal(decimal.NewFromInt(280)))
		require.NotNil(t, found.ClosedBy)
		assert.Equal(t, closer, *found.ClosedBy)
		assert.Equal(t, "20 short at the kiosk", found.CloseNotes)
	})

	t.Run("adjustments are recorded against a closed register", func(t *testing.T) {
		register, err := delivery.NewDailyCashRegister(orgID, uuid.New(), day)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, register))
		require.NoError(t, register.Close(decimal.Zero, uuid.New(), ""))
		require.NoError(t, repo.Save(ctx, register))

		adjustment, err := delivery.NewRegisterAdjustment(register, decimal.NewFromInt(-20), "counting error", uuid.New())
		require.NoError(t, err)
		require.NoError(t, repo.SaveAdjustment(ctx, adjustment))

		adjustments, err := repo.FindAdjustments(ctx, orgID, register.ID)
		require.NoError(t, err)
		require.Len(t, adjustments, 1)
		assert.True(t, adjustments[0].Amount.Equal(decimal.NewFromInt(-20)))
		assert.Equal(t, "counting error", adjustments[0].Reason)
	})
}
