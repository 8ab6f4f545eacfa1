package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/distribo/backend/internal/application/delivery"
)

// RegisterHandler serves the daily cash register endpoints
type RegisterHandler struct {
	BaseHandler
	registers *delivery.RegisterService
}

// NewRegisterHandler creates a cash register handler
func NewRegisterHandler(registers *delivery.RegisterService) *RegisterHandler {
	return &RegisterHandler{registers: registers}
}

// RegisterRoutes registers cash register routes on the given group
func (h *RegisterHandler) RegisterRoutes(rg *gin.RouterGroup) {
	registers := rg.Group("/registers")
	{
		registers.GET("", h.GetForDeliverer)
		registers.GET("/:id", h.Get)
		registers.POST("/:id/close", h.Close)
		registers.POST("/:id/adjustments", h.AddAdjustment)
	}
}

// GetForDeliverer godoc
// @Summary Get a deliverer's register for a day
// @Tags registers
// @Produce json
// @Param deliverer_id query string true "Deliverer ID"
// @Param date query string false "Day (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.Response{data=delivery.RegisterResponse}
// @Router /registers [get]
func (h *RegisterHandler) GetForDeliverer(c *gin.Context) {
	orgID, ok := h.OrgID(c)
	if !ok {
		return
	}

	delivererID, err := uuid.Parse(c.Query("deliverer_id"))
	if err != nil {
		h.BadRequest(c, "Invalid deliverer_id parameter")
		return
	}
	date, err := parseDateQuery(c, "date", time.Now().UTC())
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.registers.GetForDeliverer(c.Request.Context(), orgID, delivererID, date)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Get godoc
// @Summary Get a register by id
// @Tags registers
// @Produce json
// @Param id path string true "Register ID"
// @Success 200 {object} dto.Response{data=delivery.RegisterResponse}
// @Router /registers/{id} [get]
func (h *RegisterHandler) Get(c *gin.Context) {
	orgID, ok := h.OrgID(c)
	if !ok {
		return
	}
	registerID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.registers.GetByID(c.Request.Context(), orgID, registerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Close godoc
// @Summary Close a register at end of day
// @Description Freezes the register's totals. Later corrections go through
// @Description adjustments; the closed figures never change.
// @Tags registers
// @Accept json
// @Produce json
// @Param id path string true "Register ID"
// @Param request body delivery.CloseRegisterRequest true "Closing figures"
// @Success 200 {object} dto.Response{data=delivery.RegisterResponse}
// @Router /registers/{id}/close [post]
func (h *RegisterHandler) Close(c *gin.Context) {
	orgID, ok := h.OrgID(c)
	if !ok {
		return
	}
	actorID, ok := h.ActorID(c)
	if !ok {
		return
	}
	registerID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req delivery.CloseRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.ClosedBy = actorID

	resp, err := h.registers.Close(c.Request.Context(), orgID, registerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AddAdjustment godoc
// @Summary Record a correction against a closed register
// @Tags registers
// @Accept json
// @Produce json
// @Param id path string true "Register ID"
// @Param request body delivery.RegisterAdjustmentRequest true "Adjustment"
// @Success 200 {object} dto.Response{data=delivery.RegisterResponse}
// @Router /registers/{id}/adjustments [post]
func (h *RegisterHandler) AddAdjustment(c *gin.Context) {
	orgID, ok := h.OrgID(c)
	if !ok {
		return
	}
	actorID, ok := h.ActorID(c)
	if !ok {
		return
	}
	registerID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req delivery.RegisterAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.CreatedBy = actorID

	resp, err := h.registers.AddAdjustment(c.Request.Context(), orgID, registerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
