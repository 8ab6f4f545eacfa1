package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/distribo/backend/internal/application/delivery"
)

// DeliveryHandler serves the delivery lifecycle endpoints
type DeliveryHandler struct {
	BaseHandler
	deliveries *delivery.Service
}

// NewDeliveryHandler creates a delivery handler
func NewDeliveryHandler(deliveries *delivery.Service) *DeliveryHandler {
	return &DeliveryHandler{deliveries: deliveries}
}

// RegisterRoutes registers delivery routes on the given group
func (h *DeliveryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	deliveries := rg.Group("/deliveries")
	{
		deliveries.POST("", h.Schedule)
		deliveries.GET("/:id", h.Get)
		deliveries.POST("/:id/transition", h.Transition)
		deliveries.POST("/:id/complete", h.Complete)
		deliveries.POST("/:id/fail", h.Fail)
		deliveries.POST("/:id/reschedule", h.Reschedule)
	}
}

// Schedule godoc
// @Summary Schedule a delivery for an order
// @Tags deliveries
// @Accept json
// @Produce json
// @Param request body delivery.ScheduleDeliveryRequest true "Delivery"
// @Success 201 {object} dto.Response{data=delivery.DeliveryResponse}
// @Router /deliveries [post]
func (h *DeliveryHandler) Schedule(c *gin.Context) {
	orgID, ok := h.OrgID(c)
	if !ok {
		return
	}

	var req delivery.ScheduleDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.deliveries.Schedule(c.Request.Context(), orgID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get godoc
// @Summary Get a delivery by id
// @Tags deliveries
// @Produce json
// @Param id path string true "Delivery ID"
// @Success 200 {object} dto.Response{data=delivery.DeliveryResponse}
// @Router /deliveries/{id} [get]
func (h *DeliveryHandler) Get(c *gin.Context) {
	orgID, ok := h.OrgID(c)
	if !ok {
		return
	}
	deliveryID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.deliveries.GetByID(c.Request.Context(), orgID, deliveryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Transition godoc
// @Summary Move a delivery along its route
// @Tags deliveries
// @Accept json
// @Produce json
// @Param id path string true "Delivery ID"
// @Param request body delivery.TransitionDeliveryRequest true "Target status"
// @Success 200 {object} dto.Response{data=delivery.DeliveryResponse}
// @Router /deliveries/{id}/transition [post]
func (h *DeliveryHandler) Transition(c *gin.Context) {
	orgID, ok := h.OrgID(c)
	if !ok {
		return
	}
	deliveryID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req delivery.TransitionDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.deliveries.Transition(c.Request.Context(), orgID, deliveryID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Complete godoc
// @Summary Complete a delivery and settle cash collected
// @Description Applies the collected amount as a payment against the
// @Description customer's open orders and posts it to the deliverer's daily
// @Description register. Collecting less than the amount due is allowed; the
// @Description shortfall stays on the customer's debt. Safe to retry with the
// @Description same Idempotency-Key.
// @Tags deliveries
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replay key"
// @Param id path string true "Delivery ID"
// @Param request body delivery.CompleteDeliveryRequest true "Settlement"
// @Success 200 {object} dto.Response{data=delivery.DeliveryResponse}
// @Router /deliveries/{id}/complete [post]
func (h *DeliveryHandler) Complete(c *gin.Context) {
	orgID, ok := h.OrgID(c)
	if !ok {
		return
	}
	actorID, ok := h.ActorID(c)
	if !ok {
		return
	}
	deliveryID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req delivery.CompleteDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.IdempotencyKey = h.IdempotencyKey(c, req.IdempotencyKey)
	req.CollectedBy = &actorID

	resp, err := h.deliveries.Complete(c.Request.Context(), orgID, deliveryID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Fail godoc
// @Summary Mark a delivery as failed
// @Description The order's debt stands; the goods come back and the delivery
// @Description can be rescheduled.
// @Tags deliveries
// @Accept json
// @Produce json
// @Param id path string true "Delivery ID"
// @Param request body delivery.FailDeliveryRequest true "Failure reason"
// @Success 200 {object} dto.Response{data=delivery.DeliveryResponse}
// @Router /deliveries/{id}/fail [post]
func (h *DeliveryHandler) Fail(c *gin.Context) {
	orgID, ok := h.OrgID(c)
	if !ok {
		return
	}
	deliveryID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req delivery.FailDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.deliveries.Fail(c.Request.Context(), orgID, deliveryID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Reschedule godoc
// @Summary Schedule a replacement for a failed delivery
// @Tags deliveries
// @Accept json
// @Produce json
// @Param id path string true "Delivery ID"
// @Param request body delivery.RescheduleDeliveryRequest true "New schedule"
// @Success 201 {object} dto.Response{data=delivery.DeliveryResponse}
// @Router /deliveries/{id}/reschedule [post]
func (h *DeliveryHandler) Reschedule(c *gin.Context) {
	orgID, ok := h.OrgID(c)
	if !ok {
		return
	}
	deliveryID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req delivery.RescheduleDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.deliveries.Reschedule(c.Request.Context(), orgID, deliveryID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}
