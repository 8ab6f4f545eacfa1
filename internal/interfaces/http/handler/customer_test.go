package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainpartner "github.com/distribo/backend/internal/domain/partner"
)

func seedCustomer(t *testing.T, env *handlerEnv, code, name string) *domainpartner.Customer {
	t.Helper()
	customer, err := domainpartner.NewCustomer(env.orgID, code, name)
	require.NoError(t, err)
	require.NoError(t, env.scope.CustomerRepo.Save(context.Background(), customer))
	return customer
}

func TestCustomerHandler_Create(t *testing.T) {
	env := newHandlerEnv(t)

	t.Run("creates a customer", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/customers", map[string]interface{}{
			"code": "CUST-001",
			"name": "Corner Store",
		})

		require.Equal(t, http.StatusCreated, w.Code)
		resp := decodeResponse(t, w)
		assert.True(t, resp.Success)
		assert.Equal(t, "CUST-001", dataField(t, resp, "code"))
		assert.Equal(t, "Corner Store", dataField(t, resp, "name"))
	})

	t.Run("rejects a missing name", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/customers", map[string]interface{}{
			"code": "CUST-002",
		})

		require.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.False(t, resp.Success)
	})

	t.Run("rejects a duplicate code", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/customers", map[string]interface{}{
			"code": "CUST-001",
			"name": "Another Store",
		})

		require.Equal(t, http.StatusConflict, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, "ALREADY_EXISTS", resp.Error.Code)
	})
}

func TestCustomerHandler_Get(t *testing.T) {
	env := newHandlerEnv(t)
	customer := seedCustomer(t, env, "CUST-010", "Kiosk North")

	t.Run("returns the customer", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/customers/"+customer.ID.String(), nil)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, "Kiosk North", dataField(t, resp, "name"))
	})

	t.Run("404 for an unknown id", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/customers/"+uuid.NewString(), nil)
		require.Equal(t, http.StatusNotFound, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	})

	t.Run("400 for a malformed id", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/customers/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCustomerHandler_AdjustDebt(t *testing.T) {
	env := newHandlerEnv(t)
	customer := seedCustomer(t, env, "CUST-020", "Depot South")

	t.Run("increases debt with an audit reason", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/customers/"+customer.ID.String()+"/debt-adjustments",
			map[string]interface{}{"amount": "75.50", "reason": "opening balance carried over"})

		require.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, "75.5", dataField(t, resp, "current_debt"))
	})

	t.Run("rejects an adjustment below zero", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/customers/"+customer.ID.String()+"/debt-adjustments",
			map[string]interface{}{"amount": "-100", "reason": "typo correction"})

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, "DEBT_BELOW_ZERO", resp.Error.Code)
	})

	t.Run("rejects a missing reason", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/customers/"+customer.ID.String()+"/debt-adjustments",
			map[string]interface{}{"amount": "10"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
