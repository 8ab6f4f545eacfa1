package handler

import (
	"github.com/gin-gonic/gin"

	appdelivery "github.com/distribo/backend/internal/application/delivery"
	"github.com/distribo/backend/internal/application/trade"
)

// OrderHandler serves the order lifecycle endpoints
type OrderHandler struct {
	BaseHandler
	orders     *trade.OrderService
	deliveries *appdelivery.Service
}

// NewOrderHandler creates an order handler
func NewOrderHandler(orders *trade.OrderService, deliveries *appdelivery.Service) *OrderHandler {
	return &OrderHandler{orders: orders, deliveries: deliveries}
}

// RegisterRoutes registers order routes on the given group
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.POST("", h.Create)
		orders.GET("", h.List)
		orders.GET("/:id", h.Get)
		orders.GET("/number/:number", h.GetByNumber)
		orders.POST("/:id/cancel", h.Cancel)
		orders.POST("/:id/transition", h.Transition)
		orders.GET("/:id/deliveries", h.ListDeliveries)
	}
}

// Create godoc
// @Summary Create an order
// @Description Charges the order total to the customer's debt and consumes
// @Description stock. Safe to retry with the same Idempotency-Key.
// @Tags orders
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replay key"
// @Param request body trade.CreateOrderRequest true "Order"
// @Success 201 {object} dto.Response{data=trade.OrderResponse}
// @Router /orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	orgID, ok := h.OrgID(c)
	if !ok {
		return
	}
	actorID, ok := h.ActorID(c)
	if !ok {
		return
	}

	var req trade.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.IdempotencyKey = h.IdempotencyKey(c, req.IdempotencyKey)
	req.CreatedBy = &actorID

	resp, err := h.orders.Create(c.Request.Context(), orgID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List godoc
// @Summary List orders
// @Tags orders
// @Produce json
// @Param customer_id query string false "Filter by customer"
// @Param status query string false "Filter by status"
// @Param search query string false "Search in order numbers"
// @Success 200 {object} dto.Response{data=[]trade.OrderResponse}
// @Router /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	orgID, ok := h.OrgID(c)
	if !ok {
		return
	}

	var filter trade.OrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.orders.List(c.Request.Context(), orgID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(200, pageResponse(page))
}

// Get godoc
// @Summary Get an order by id
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} dto.Response{data=trade.OrderResponse}
// @Router /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	orgID, ok := h.OrgID(c)
	if !ok {
		return
	}
	orderID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.orders.GetByID(c.Request.Context(), orgID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetByNumber godoc
// @Summary Get an order by its order number
// @Tags orders
// @Produce json
// @Param number path string true "Order number"
// @Success 200 {object} dto.Response{data=trade.OrderResponse}
// @Router /orders/number/{number} [get]
func (h *OrderHandler) GetByNumber(c *gin.Context) {
	orgID, ok := h.OrgID(c)
	if !ok {
		return
	}

	resp, err := h.orders.GetByNumber(c.Request.Context(), orgID, c.Param("number"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Cancel godoc
// @Summary Cancel an order
// @Description Reverses the unpaid portion of the order from the customer's
// @Description debt and restores stock.
// @Tags orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body trade.CancelOrderRequest true "Cancellation"
// @Success 200 {object} dto.Response{data=trade.OrderResponse}
// @Router /orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *gin.Context) {
	orgID, ok := h.OrgID(c)
	if !ok {
		return
	}
	actorID, ok := h.ActorID(c)
	if !ok {
		return
	}
	orderID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req trade.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.ActorID = actorID

	resp, err := h.orders.Cancel(c.Request.Context(), orgID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Transition godoc
// @Summary Move an order to the next workflow status
// @Tags orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param request body trade.TransitionOrderRequest true "Target status"
// @Success 200 {object} dto.Response{data=trade.OrderResponse}
// @Router /orders/{id}/transition [post]
func (h *OrderHandler) Transition(c *gin.Context) {
	orgID, ok := h.OrgID(c)
	if !ok {
		return
	}
	orderID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req trade.TransitionOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.orders.Transition(c.Request.Context(), orgID, orderID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListDeliveries godoc
// @Summary List deliveries for an order
// @Tags orders
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} dto.Response{data=[]delivery.DeliveryResponse}
// @Router /orders/{id}/deliveries [get]
func (h *OrderHandler) ListDeliveries(c *gin.Context) {
	orgID, ok := h.OrgID(c)
	if !ok {
		return
	}
	orderID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.deliveries.ListByOrder(c.Request.Context(), orgID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
