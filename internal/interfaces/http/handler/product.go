package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/distribo/backend/internal/application/catalog"
)

// ProductHandler serves the product catalog endpoints
type ProductHandler struct {
	BaseHandler
	products *catalog.ProductService
}

// NewProductHandler creates a product handler
func NewProductHandler(products *catalog.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// RegisterRoutes registers product routes on the given group
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/products")
	{
		products.POST("", h.Create)
		products.GET("", h.List)
		products.GET("/:id", h.Get)
		products.GET("/code/:code", h.GetByCode)
		products.PUT("/:id/price", h.UpdatePrice)
		products.POST("/:id/stock-adjustments", h.AdjustStock)
		products.POST("/:id/activate", h.Activate)
		products.POST("/:id/deactivate", h.Deactivate)
	}
}

// Create godoc
// @Summary Create a product
// @Tags products
// @Accept json
// @Produce json
// @Param request body catalog.CreateProductRequest true "Product"
// @Success 201 {object} dto.Response{data=catalog.ProductResponse}
// @Router /products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	orgID, ok := h.OrgID(c)
	if !ok {
		return
	}

	var req catalog.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.products.Create(c.Request.Context(), orgID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// List godoc
// @Summary List products
// @Tags products
// @Produce json
// @Param status query string false "Filter by status"
// @Param search query string false "Search in code and name"
// @Success 200 {object} dto.Response{data=[]catalog.ProductResponse}
// @Router /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	orgID, ok := h.OrgID(c)
	if !ok {
		return
	}

	var filter catalog.ProductListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.products.List(c.Request.Context(), orgID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(200, pageResponse(page))
}

// Get godoc
// @Summary Get a product by id
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} dto.Response{data=catalog.ProductResponse}
// @Router /products/{id} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	orgID, ok := h.OrgID(c)
	if !ok {
		return
	}
	productID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := h.products.GetByID(c.Request.Context(), orgID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetByCode godoc
// @Summary Get a product by code
// @Tags products
// @Produce json
// @Param code path string true "Product code"
// @Success 200 {object} dto.Response{data=catalog.ProductResponse}
// @Router /products/code/{code} [get]
func (h *ProductHandler) GetByCode(c *gin.Context) {
	orgID, ok := h.OrgID(c)
	if !ok {
		return
	}

	resp, err := h.products.GetByCode(c.Request.Context(), orgID, c.Param("code"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdatePrice godoc
// @Summary Change a product's unit price
// @Tags products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param request body catalog.UpdatePriceRequest true "New price"
// @Success 200 {object} dto.Response{data=catalog.ProductResponse}
// @Router /products/{id}/price [put]
func (h *ProductHandler) UpdatePrice(c *gin.Context) {
	orgID, ok := h.OrgID(c)
	if !ok {
		return
	}
	productID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req catalog.UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.products.UpdatePrice(c.Request.Context(), orgID, productID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AdjustStock godoc
// @Summary Apply a manual stock correction
// @Tags products
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param request body catalog.AdjustStockRequest true "Adjustment"
// @Success 200 {object} dto.Response{data=catalog.ProductResponse}
// @Router /products/{id}/stock-adjustments [post]
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	orgID, ok := h.OrgID(c)
	if !ok {
		return
	}
	productID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req catalog.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.products.AdjustStock(c.Request.Context(), orgID, productID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Activate godoc
// @Summary Activate a product
// @Tags products
// @Param id path string true "Product ID"
// @Success 200 {object} dto.Response{data=catalog.ProductResponse}
// @Router /products/{id}/activate [post]
func (h *ProductHandler) Activate(c *gin.Context) {
	h.setStatus(c, true)
}

// Deactivate godoc
// @Summary Deactivate a product
// @Tags products
// @Param id path string true "Product ID"
// @Success 200 {object} dto.Response{data=catalog.ProductResponse}
// @Router /products/{id}/deactivate [post]
func (h *ProductHandler) Deactivate(c *gin.Context) {
	h.setStatus(c, false)
}

func (h *ProductHandler) setStatus(c *gin.Context, active bool) {
	orgID, ok := h.OrgID(c)
	if !ok {
		return
	}
	productID, ok := h.UUIDParam(c, "id")
	if !ok {
		return
	}

	var (
		resp *catalog.ProductResponse
		err  error
	)
	if active {
		resp, err = h.products.Activate(c.Request.Context(), orgID, productID)
	} else {
		resp, err = h.products.Deactivate(c.Request.Context(), orgID, productID)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
