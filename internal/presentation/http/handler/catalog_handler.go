package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/confreg/registration-api/internal/application/service"
	"github.com/confreg/registration-api/internal/domain/enum"
	"github.com/confreg/registration-api/internal/domain/repository"
	"github.com/confreg/registration-api/internal/presentation/http/dto/request"
	"github.com/confreg/registration-api/internal/presentation/http/dto/response"
	"github.com/confreg/registration-api/pkg/pagination"
)

// CategoryHandler handles category-related HTTP requests
type CategoryHandler struct {
	catalogService *service.CatalogService
	availability   *service.AvailabilityService
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(catalogService *service.CatalogService, availability *service.AvailabilityService) *CategoryHandler {
	return &CategoryHandler{catalogService: catalogService, availability: availability}
}

// List handles the attendee-facing category listing. Categories the
// user cannot currently see are omitted; sold-out ones are flagged.
func (h *CategoryHandler) List(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	categories, err := h.availability.VisibleCategories(c.Request.Context(), *userID, time.Now())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Categories retrieved successfully", gin.H{
		"categories": categories,
	})
}

// ListAll handles the staff listing of every category
func (h *CategoryHandler) ListAll(c *gin.Context) {
	categories, err := h.catalogService.ListCategories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Categories retrieved successfully", gin.H{
		"categories": categories,
	})
}

// Get handles getting a single category
func (h *CategoryHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid category ID")
		return
	}

	category, err := h.catalogService.GetCategory(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Category retrieved successfully", category)
}

// Create handles creating a category
func (h *CategoryHandler) Create(c *gin.Context) {
	var req request.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	category, err := h.catalogService.CreateCategory(c.Request.Context(), &service.CreateCategoryInput{
		Name:         req.Name,
		Description:  req.Description,
		LimitPerUser: req.LimitPerUser,
		Required:     req.Required,
		Order:        req.Order,
		RenderType:   enum.RenderType(req.RenderType),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Category created successfully", category)
}

// Update handles updating a category
func (h *CategoryHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid category ID")
		return
	}

	var req request.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	input := &service.UpdateCategoryInput{
		Name:         req.Name,
		Description:  req.Description,
		LimitPerUser: req.LimitPerUser,
		Required:     req.Required,
		Order:        req.Order,
	}
	if req.RenderType != nil {
		rt := enum.RenderType(*req.RenderType)
		input.RenderType = &rt
	}

	category, err := h.catalogService.UpdateCategory(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Category updated successfully", category)
}

// Delete handles deleting a category
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid category ID")
		return
	}

	if err := h.catalogService.DeleteCategory(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	catalogService *service.CatalogService
	availability   *service.AvailabilityService
}

// NewProductHandler creates a new product handler
func NewProductHandler(catalogService *service.CatalogService, availability *service.AvailabilityService) *ProductHandler {
	return &ProductHandler{catalogService: catalogService, availability: availability}
}

// List handles listing products with pagination and filters
func (h *ProductHandler) List(c *gin.Context) {
	var filter request.ProductFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	params := &repository.ProductFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    filter.Page,
			PerPage: filter.PerPage,
		},
		Search:    filter.Search,
		SortBy:    filter.SortBy,
		SortOrder: filter.SortOrder,
	}

	if filter.CategoryID != "" {
		catID, err := uuid.Parse(filter.CategoryID)
		if err == nil {
			params.CategoryID = &catID
		}
	}

	products, total, err := h.catalogService.ListProducts(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	params.Pagination.Validate()
	result := pagination.NewPaginatedResult(products, pagination.NewPagination(
		params.Pagination.Page, params.Pagination.PerPage, total,
	))

	response.SuccessWithPagination(c, 200, "Products retrieved successfully", result)
}

// Get handles getting a single product
func (h *ProductHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product retrieved successfully", product)
}

// Available lists the products in a category together with the current
// user's availability verdict for each.
func (h *ProductHandler) Available(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid category ID")
		return
	}

	verdicts, err := h.availability.VisibleProducts(c.Request.Context(), *userID, categoryID, time.Now())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product availability retrieved successfully", gin.H{
		"products": verdicts,
	})
}

// Create handles creating a product
func (h *ProductHandler) Create(c *gin.Context) {
	var req request.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	product, err := h.catalogService.CreateProduct(c.Request.Context(), &service.CreateProductInput{
		CategoryID:          req.CategoryID,
		Name:                req.Name,
		Description:         req.Description,
		Price:               req.Price,
		LimitPerUser:        req.LimitPerUser,
		ReservationDuration: time.Duration(req.ReservationSeconds) * time.Second,
		Order:               req.Order,
		CeilingIDs:          req.CeilingIDs,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Product created successfully", product)
}

// Update handles updating a product
func (h *ProductHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	var req request.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	input := &service.UpdateProductInput{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		LimitPerUser: req.LimitPerUser,
		Order:        req.Order,
		CeilingIDs:   req.CeilingIDs,
	}
	if req.ReservationSeconds != nil {
		d := time.Duration(*req.ReservationSeconds) * time.Second
		input.ReservationDuration = &d
	}

	product, err := h.catalogService.UpdateProduct(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product updated successfully", product)
}

// Delete handles deleting a product
func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	if err := h.catalogService.DeleteProduct(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// CeilingHandler handles ceiling-related HTTP requests
type CeilingHandler struct {
	catalogService *service.CatalogService
}

// NewCeilingHandler creates a new ceiling handler
func NewCeilingHandler(catalogService *service.CatalogService) *CeilingHandler {
	return &CeilingHandler{catalogService: catalogService}
}

// List handles listing ceilings
func (h *CeilingHandler) List(c *gin.Context) {
	ceilings, err := h.catalogService.ListCeilings(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Ceilings retrieved successfully", gin.H{
		"ceilings": ceilings,
	})
}

// Get handles getting a single ceiling
func (h *CeilingHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid ceiling ID")
		return
	}

	ceiling, err := h.catalogService.GetCeiling(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Ceiling retrieved successfully", ceiling)
}

// Create handles creating a ceiling
func (h *CeilingHandler) Create(c *gin.Context) {
	var req request.CreateCeilingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	ceiling, err := h.catalogService.CreateCeiling(c.Request.Context(), &service.CreateCeilingInput{
		Name:           req.Name,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		TotalAvailable: req.TotalAvailable,
		ProductIDs:     req.ProductIDs,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Ceiling created successfully", ceiling)
}

// Update handles updating a ceiling
func (h *CeilingHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid ceiling ID")
		return
	}

	var req request.UpdateCeilingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	ceiling, err := h.catalogService.UpdateCeiling(c.Request.Context(), id, &service.UpdateCeilingInput{
		Name:           req.Name,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		TotalAvailable: req.TotalAvailable,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Ceiling updated successfully", ceiling)
}

// Delete handles deleting a ceiling
func (h *CeilingHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid ceiling ID")
		return
	}

	if err := h.catalogService.DeleteCeiling(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
