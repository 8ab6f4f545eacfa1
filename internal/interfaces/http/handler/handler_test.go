package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/distribo/backend/internal/application/catalog"
	"github.com/distribo/backend/internal/application/delivery"
	"github.com/distribo/backend/internal/application/ledger"
	"github.com/distribo/backend/internal/application/ledger/ledgertest"
	"github.com/distribo/backend/internal/application/partner"
	"github.com/distribo/backend/internal/application/payment"
	"github.com/distribo/backend/internal/application/trade"
	"github.com/distribo/backend/internal/interfaces/http/dto"
	"github.com/distribo/backend/internal/interfaces/http/middleware"
)

// handlerEnv wires real services over in-memory repositories behind a gin
// engine with a stubbed authenticated identity.
type handlerEnv struct {
	engine  *gin.Engine
	scope   *ledger.StaticScope
	orgID   uuid.UUID
	actorID uuid.UUID

	customers *partner.CustomerService
	products  *catalog.ProductService
	orders    *trade.OrderService
	payments  *payment.Service
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	scope := ledgertest.NewScope()
	ledgerSvc := ledger.NewService()
	env := &handlerEnv{
		scope:     scope,
		orgID:     uuid.New(),
		actorID:   uuid.New(),
		customers: partner.NewCustomerService(scope, ledgerSvc),
		products:  catalog.NewProductService(scope, ledgerSvc),
		orders:    trade.NewOrderService(scope, ledgerSvc, &ledgertest.SequentialNumbers{}),
	}
	env.payments = payment.NewService(scope, ledgerSvc)
	deliveries := delivery.NewService(scope, env.payments)

	engine := gin.New()
	api := engine.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Set(middleware.OrgIDKey, env.orgID)
		c.Set(middleware.ActorIDKey, env.actorID)
		c.Next()
	})
	NewCustomerHandler(env.customers).RegisterRoutes(api)
	NewProductHandler(env.products).RegisterRoutes(api)
	NewOrderHandler(env.orders, deliveries).RegisterRoutes(api)
	NewPaymentHandler(env.payments).RegisterRoutes(api)
	env.engine = engine
	return env
}

func (e *handlerEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func dataField(t *testing.T, resp dto.Response, key string) interface{} {
	t.Helper()
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "data is not an object")
	return data[key]
}
