package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/confreg/registration-api/internal/application/service"
	"github.com/confreg/registration-api/internal/domain/entity"
	"github.com/confreg/registration-api/internal/domain/enum"
	"github.com/confreg/registration-api/internal/presentation/http/dto/request"
	"github.com/confreg/registration-api/internal/presentation/http/dto/response"
)

// DiscountHandler handles discount management HTTP requests
type DiscountHandler struct {
	discountService *service.DiscountService
}

// NewDiscountHandler creates a new discount handler
func NewDiscountHandler(discountService *service.DiscountService) *DiscountHandler {
	return &DiscountHandler{discountService: discountService}
}

// List handles listing discounts
func (h *DiscountHandler) List(c *gin.Context) {
	discounts, err := h.discountService.ListDiscounts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Discounts retrieved successfully", gin.H{
		"discounts": discounts,
	})
}

// Get handles getting a single discount
func (h *DiscountHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid discount ID")
		return
	}

	discount, err := h.discountService.GetDiscount(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Discount retrieved successfully", discount)
}

// Create handles creating a discount
func (h *DiscountHandler) Create(c *gin.Context) {
	var req request.CreateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	discount, err := h.discountService.CreateDiscount(c.Request.Context(), &service.CreateDiscountInput{
		Description:      req.Description,
		Kind:             enum.DiscountKind(req.Kind),
		VoucherID:        req.VoucherID,
		RoleID:           req.RoleID,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		Limit:            req.Limit,
		EnablingProducts: req.EnablingProducts,
		ProductLines:     toProductLines(req.ProductLines),
		CategoryLines:    toCategoryLines(req.CategoryLines),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Discount created successfully", discount)
}

// Update handles updating a discount
func (h *DiscountHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid discount ID")
		return
	}

	var req request.UpdateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	discount, err := h.discountService.UpdateDiscount(c.Request.Context(), id, &service.UpdateDiscountInput{
		Description:   req.Description,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Limit:         req.Limit,
		ProductLines:  toProductLines(req.ProductLines),
		CategoryLines: toCategoryLines(req.CategoryLines),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Discount updated successfully", discount)
}

// Delete handles deleting a discount
func (h *DiscountHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid discount ID")
		return
	}

	if err := h.discountService.DeleteDiscount(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

func toProductLines(lines []request.DiscountProductLine) []entity.DiscountProduct {
	out := make([]entity.DiscountProduct, 0, len(lines))
	for _, l := range lines {
		out = append(out, entity.DiscountProduct{
			ProductID:  l.ProductID,
			Percentage: l.Percentage,
			Amount:     l.Amount,
			Quantity:   l.Quantity,
		})
	}
	return out
}

func toCategoryLines(lines []request.DiscountCategoryLine) []entity.DiscountCategory {
	out := make([]entity.DiscountCategory, 0, len(lines))
	for _, l := range lines {
		out = append(out, entity.DiscountCategory{
			CategoryID: l.CategoryID,
			Percentage: l.Percentage,
			Quantity:   l.Quantity,
		})
	}
	return out
}
