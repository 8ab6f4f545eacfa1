package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/distribo/backend/internal/application/payment"
	"github.com/distribo/backend/internal/domain/shared"
)

// PaymentHandler serves the payment and refund endpoints
type PaymentHandler struct {
	BaseHandler
	payments *payment.Service
}

// NewPaymentHandler creates a payment handler
func NewPaymentHandler(payments *payment.Service) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// RegisterRoutes registers payment routes on the given group
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	{
		payments.POST("", h.Record)
		payments.POST("/refunds", h.RecordRefund)
		payments.GET("/:id", h.Get)
	}
	rg.GET("/customers/:id/payments", h.ListByCustomer)
}

// paymentListQuery filters a customer's payment history
type paymentListQuery struct {
	Type string `form:"type"`
	Mode string `form:"mode"`
	Page int    `form:"page"`
	Size int    `form:"page_size"`
}

// Record godoc
// @Summary Record a customer payment
// @Description Allocates the amount across the customer's open orders oldest
// @Description first, or against a single order when order_id is given. Safe
// @Description to retry with the same Idempotency-Key.
// @Tags payments
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replay key"
// @Param request body payment.RecordPaymentRequest true "Payment"
// @Success 201 {object} dto.Response{data=payment.PaymentResponse}
// @Router /payments [post]
func (h *PaymentHandler) Record(c *gin.Context) {
	orgID, ok := h.OrgID(c)
	if !ok {
		return
	}
	actorID, ok := h.ActorID(c)
	if !ok {
		return
	}

	var req payment.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.IdempotencyKey = h.IdempotencyKey(c, req.IdempotencyKey)
	req.ReceivedBy = &actorID

	resp, err := h.payments.Record(c.Request.Context(), orgID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// RecordRefund godoc
// @Summary Record a refund to a customer
// @Description Increases the customer's debt balance by the refunded amount.
// @Tags payments
// @Accept json
// @Produce json
// @Param request body payment.RecordRefundRequest true "Refund"
// @Success 201 {object} dto.Response{data=payment.PaymentResponse}
// @Router /payments/refunds [post]
func (h *PaymentHandler) RecordRefund(c *gin.Context) {
	orgID, ok := h.OrgID(c)
	if !ok {
		return
	}
	actorID, ok := h.ActorID(c)
	if !ok {
		return
	}

	var req payment.RecordRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.ReceivedBy = &actorID

	resp, err := h.payments.RecordRefund(c.Request.Context(), orgID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get godoc
// @Summary Get a payment by id
// @Tags payments
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} dto.Response{data=payment.PaymentResponse}
// @Router /payments/{id} [get]
func (h *PaymentHandler) Get(c *gin.Context) {
	orgID, ok := h.OrgID(c)
	if !ok {
		return
	}
	paymentID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.payments.GetByID(c.Request.Context(), orgID, paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListByCustomer godoc
// @Summary List a customer's payments
// @Tags payments
// @Produce json
// @Param id path string true "Customer ID"
// @Param type query string false "Filter by type (PAYMENT or REFUND)"
// @Param mode query string false "Filter by payment mode"
// @Success 200 {object} dto.Response{data=[]payment.PaymentResponse}
// @Router /customers/{id}/payments [get]
func (h *PaymentHandler) ListByCustomer(c *gin.Context) {
	orgID, ok := h.OrgID(c)
	if !ok {
		return
	}
	customerID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}

	var q paymentListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := shared.DefaultFilter()
	if q.Page > 0 {
		filter.Page = q.Page
	}
	if q.Size > 0 {
		filter.PageSize = q.Size
	}
	if q.Type != "" {
		filter.Filters["type"] = q.Type
	}
	if q.Mode != "" {
		filter.Filters["mode"] = q.Mode
	}

	resp, err := h.payments.ListByCustomer(c.Request.Context(), orgID, customerID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
