package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/distribo/backend/internal/application/partner"
)

// CustomerHandler serves the customer and debt ledger endpoints
type CustomerHandler struct {
	BaseHandler
	customers *partner.CustomerService
}

// NewCustomerHandler creates a customer handler
func NewCustomerHandler(customers *partner.CustomerService) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

// RegisterRoutes registers customer routes on the given group
func (h *CustomerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	customers := rg.Group("/customers")
	{
		customers.POST("", h.Create)
		customers.GET("", h.List)
		customers.GET("/:id", h.Get)
		customers.GET("/code/:code", h.GetByCode)
		customers.PUT("/:id/contact", h.UpdateContact)
		customers.PUT("/:id/credit-limit", h.SetCreditLimit)
		customers.DELETE("/:id/credit-limit", h.DisableCreditLimit)
		customers.POST("/:id/activate", h.Activate)
		customers.POST("/:id/deactivate", h.Deactivate)
		customers.POST("/:id/debt-adjustments", h.AdjustDebt)
		customers.GET("/:id/debt-history", h.DebtHistory)
	}
}

// Create godoc
// @Summary Create a customer
// @Tags customers
// @Accept json
// @Produce json
// @Param request body partner.CreateCustomerRequest true "Customer"
// @Success 201 {object} dto.Response{data=partner.CustomerResponse}
// @Router /customers [post]
func (h *CustomerHandler) Create(c *gin.Context) {
	orgID, ok := h.OrgID(c)
	if !ok {
		return
	}

	var req partner.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.customers.Create(c.Request.Context(), orgID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List godoc
// @Summary List customers
// @Tags customers
// @Produce json
// @Param status query string false "Filter by status"
// @Param search query string false "Search in code and name"
// @Success 200 {object} dto.Response{data=[]partner.CustomerResponse}
// @Router /customers [get]
func (h *CustomerHandler) List(c *gin.Context) {
	orgID, ok := h.OrgID(c)
	if !ok {
		return
	}

	var filter partner.CustomerListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.customers.List(c.Request.Context(), orgID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(200, pageResponse(page))
}

// Get godoc
// @Summary Get a customer by id
// @Tags customers
// @Produce json
// @Param id path string true "Customer ID"
// @Success 200 {object} dto.Response{data=partner.CustomerResponse}
// @Router /customers/{id} [get]
func (h *CustomerHandler) Get(c *gin.Context) {
	orgID, ok := h.OrgID(c)
	if !ok {
		return
	}
	customerID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.customers.GetByID(c.Request.Context(), orgID, customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetByCode godoc
// @Summary Get a customer by code
// @Tags customers
// @Produce json
// @Param code path string true "Customer code"
// @Success 200 {object} dto.Response{data=partner.CustomerResponse}
// @Router /customers/code/{code} [get]
func (h *CustomerHandler) GetByCode(c *gin.Context) {
	orgID, ok := h.OrgID(c)
	if !ok {
		return
	}

	resp, err := h.customers.GetByCode(c.Request.Context(), orgID, c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateContact godoc
// @Summary Update a customer's contact details
// @Tags customers
// @Accept json
// @Produce json
// @Param id path string true "Customer ID"
// @Param request body partner.UpdateCustomerContactRequest true "Contact details"
// @Success 200 {object} dto.Response{data=partner.CustomerResponse}
// @Router /customers/{id}/contact [put]
func (h *CustomerHandler) UpdateContact(c *gin.Context) {
	orgID, ok := h.OrgID(c)
	if !ok {
		return
	}
	customerID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req partner.UpdateCustomerContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.customers.UpdateContact(c.Request.Context(), orgID, customerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// SetCreditLimit godoc
// @Summary Enable or change a customer's credit limit
// @Tags customers
// @Accept json
// @Produce json
// @Param id path string true "Customer ID"
// @Param request body partner.SetCreditLimitRequest true "Credit limit"
// @Success 200 {object} dto.Response{data=partner.CustomerResponse}
// @Router /customers/{id}/credit-limit [put]
func (h *CustomerHandler) SetCreditLimit(c *gin.Context) {
	orgID, ok := h.OrgID(c)
	if !ok {
		return
	}
	customerID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req partner.SetCreditLimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.customers.SetCreditLimit(c.Request.Context(), orgID, customerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// DisableCreditLimit godoc
// @Summary Remove a customer's credit limit
// @Tags customers
// @Produce json
// @Param id path string true "Customer ID"
// @Success 200 {object} dto.Response{data=partner.CustomerResponse}
// @Router /customers/{id}/credit-limit [delete]
func (h *CustomerHandler) DisableCreditLimit(c *gin.Context) {
	orgID, ok := h.OrgID(c)
	if !ok {
		return
	}
	customerID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.customers.DisableCreditLimit(c.Request.Context(), orgID, customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Activate godoc
// @Summary Activate a customer
// @Tags customers
// @Produce json
// @Param id path string true "Customer ID"
// @Success 200 {object} dto.Response{data=partner.CustomerResponse}
// @Router /customers/{id}/activate [post]
func (h *CustomerHandler) Activate(c *gin.Context) {
	h.setStatus(c, true)
}

// Deactivate godoc
// @Summary Deactivate a customer
// @Tags customers
// @Produce json
// @Param id path string true "Customer ID"
// @Success 200 {object} dto.Response{data=partner.CustomerResponse}
// @Router /customers/{id}/deactivate [post]
func (h *CustomerHandler) Deactivate(c *gin.Context) {
	h.setStatus(c, false)
}

func (h *CustomerHandler) setStatus(c *gin.Context, active bool) {
	orgID, ok := h.OrgID(c)
	if !ok {
		return
	}
	customerID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}

	var (
		resp *partner.CustomerResponse
		err  error
	)
	if active {
		resp, err = h.customers.Activate(c.Request.Context(), orgID, customerID)
	} else {
		resp, err = h.customers.Deactivate(c.Request.Context(), orgID, customerID)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AdjustDebt godoc
// @Summary Apply a manual debt adjustment
// @Tags customers
// @Accept json
// @Produce json
// @Param id path string true "Customer ID"
// @Param request body partner.AdjustDebtRequest true "Adjustment"
// @Success 200 {object} dto.Response{data=partner.CustomerResponse}
// @Router /customers/{id}/debt-adjustments [post]
func (h *CustomerHandler) AdjustDebt(c *gin.Context) {
	orgID, ok := h.OrgID(c)
	if !ok {
		return
	}
	actorID, ok := h.ActorID(c)
	if !ok {
		return
	}
	customerID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req partner.AdjustDebtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	req.OperatorID = &actorID

	resp, err := h.customers.AdjustDebt(c.Request.Context(), orgID, customerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// DebtHistory godoc
// @Summary List a customer's debt transactions
// @Tags customers
// @Produce json
// @Param id path string true "Customer ID"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} dto.Response{data=[]partner.DebtTransactionResponse}
// @Router /customers/{id}/debt-history [get]
func (h *CustomerHandler) DebtHistory(c *gin.Context) {
	orgID, ok := h.OrgID(c)
	if !ok {
		return
	}
	customerID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}

	from, to, err := dateRangeQuery(c, time.Time{}, time.Now().UTC())
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.customers.DebtHistory(c.Request.Context(), orgID, customerID, from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
