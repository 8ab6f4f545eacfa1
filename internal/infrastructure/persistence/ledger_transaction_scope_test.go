package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/distribo/backend/internal/application/ledger"
	"github.com/distribo/backend/internal/domain/partner"
	"github.com/distribo/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormTransactionScope(t *testing.T) {
	db := setupTestDB(t)
	scope := NewGormTransactionScope(db)
	ctx := context.Background()
	orgID := uuid.New()

	t.Run("commits all writes together", func(t *testing.T) {
		customer, err := partner.NewCustomer(orgID, "CUST-500", "Scoped Store")
		require.NoError(t, err)

		err = scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
			if err := repos.Customers().Save(ctx, customer); err != nil {
				return err
			}
			tx, err := partner.NewDebtTransaction(orgID, customer.ID,
				partner.DebtTransactionTypeOrderCharge,
				decimal.NewFromInt(100), decimal.Zero, decimal.NewFromInt(100),
				partner.DebtSourceTypeOrder)
			if err != nil {
				return err
			}
			return repos.DebtTransactions().Save(ctx, tx)
		})
		require.NoError(t, err)

		found, err := NewGormCustomerRepository(db).FindByIDForOrg(ctx, orgID, customer.ID)
		require.NoError(t, err)
		assert.Equal(t, "CUST-500", found.Code)
	})

	t.Run("rolls back all writes when the function fails", func(t *testing.T) {
		customer, err := partner.NewCustomer(orgID, "CUST-501", "Phantom Store")
		require.NoError(t, err)

		boom := errors.New("allocation failed")
		err = scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
			if err := repos.Customers().Save(ctx, customer); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = NewGormCustomerRepository(db).FindByIDForOrg(ctx, orgID, customer.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("repositories share the transaction", func(t *testing.T) {
		customer, err := partner.NewCustomer(orgID, "CUST-502", "Visible In Tx")
		require.NoError(t, err)

		err = scope.Execute(ctx, func(repos ledger.TransactionalRepositories) error {
			if err := repos.Customers().Save(ctx, customer); err != nil {
				return err
			}
			// the uncommitted row must be visible through the same scope
			found, err := repos.Customers().FindByIDForOrg(ctx, orgID, customer.ID)
			if err != nil {
				return err
			}
			if found.Code != "CUST-502" {
				return errors.New("unexpected customer")
			}
			return nil
		})
		assert.NoError(t, err)
	})
}
