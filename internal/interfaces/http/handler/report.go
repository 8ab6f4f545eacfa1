package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/distribo/backend/internal/application/report"
)

// ReportHandler serves the statement and aging report endpoints
type ReportHandler struct {
	BaseHandler
	statements   *report.StatementService
	maxRangeDays int
}

// NewReportHandler creates a report handler. maxRangeDays caps the statement
// window a client may request; zero disables the cap.
func NewReportHandler(statements *report.StatementService, maxRangeDays int) *ReportHandler {
	return &ReportHandler{statements: statements, maxRangeDays: maxRangeDays}
}

// RegisterRoutes registers report routes on the given group
func (h *ReportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reports := rg.Group("/reports")
	{
		reports.GET("/customers/:id/statement", h.CustomerStatement)
		reports.GET("/aging", h.AgingReport)
	}
}

// CustomerStatement godoc
// @Summary Customer debt statement for a date range
// @Tags reports
// @Produce json
// @Param id path string true "Customer ID"
// @Param from query string true "Start date (YYYY-MM-DD)"
// @Param to query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} dto.Response{data=report.CustomerStatementResponse}
// @Router /reports/customers/{id}/statement [get]
func (h *ReportHandler) CustomerStatement(c *gin.Context) {
	orgID, ok := h.OrgID(c)
	if !ok {
		return
	}
	customerID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}

	now := time.Now().UTC()
	from, to, err := dateRangeQuery(c, now.AddDate(0, -1, 0), now)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if h.maxRangeDays > 0 && to.Sub(from) > time.Duration(h.maxRangeDays)*24*time.Hour {
		h.BadRequest(c, fmt.Sprintf("Statement range must not exceed %d days", h.maxRangeDays))
		return
	}

	resp, err := h.statements.CustomerStatement(c.Request.Context(), orgID, customerID, from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AgingReport godoc
// @Summary Open order debt bucketed by age
// @Tags reports
// @Produce json
// @Param as_of query string false "Reference date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.Response{data=report.AgingReportResponse}
// @Router /reports/aging [get]
func (h *ReportHandler) AgingReport(c *gin.Context) {
	orgID, ok := h.OrgID(c)
	if !ok {
		return
	}

	asOf, err := parseDateQuery(c, "as_of", time.Now().UTC())
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.statements.AgingReport(c.Request.Context(), orgID, asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
