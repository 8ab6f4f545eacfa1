package persistence

import (
	"testing"

	"github.com/distribo/backend/internal/domain/catalog"
	"github.com/distribo/backend/internal/domain/delivery"
	"github.com/distribo/backend/internal/domain/partner"
	paymentdomain "github.com/distribo/backend/internal/domain/payment"
	"github.com/distribo/backend/internal/domain/shared"
	"github.com/distribo/backend/internal/domain/trade"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database with the full schema.
// TranslateError is on so duplicate-key detection behaves like it does
// against Postgres.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// each connection to :memory: gets its own database
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&partner.Customer{},
		&partner.DebtTransaction{},
		&catalog.Product{},
		&trade.Order{},
		&trade.OrderItem{},
		&paymentdomain.Payment{},
		&paymentdomain.Allocation{},
		&delivery.Delivery{},
		&delivery.DailyCashRegister{},
		&delivery.RegisterAdjustment{},
		&shared.IdempotencyRecord{},
		&OrderNumberCounter{},
	)
	require.NoError(t, err)

	return db
}
