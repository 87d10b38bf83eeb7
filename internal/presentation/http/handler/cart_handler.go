package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/confreg/registration-api/internal/application/service"
	"github.com/confreg/registration-api/internal/domain/entity"
	"github.com/confreg/registration-api/internal/presentation/http/dto/request"
	"github.com/confreg/registration-api/internal/presentation/http/dto/response"
)

// CartHandler handles cart-related HTTP requests
type CartHandler struct {
	cartService *service.CartService
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// PriceChangeNotice flags a cart line whose catalog price moved between
// the client displaying it and the mutation committing. The mutation
// commits at the current price either way.
type PriceChangeNotice struct {
	ProductID      uuid.UUID       `json:"product_id"`
	DisplayedPrice decimal.Decimal `json:"displayed_price"`
	CurrentPrice   decimal.Decimal `json:"current_price"`
}

func priceChanges(cart *entity.Cart, displayed map[uuid.UUID]decimal.Decimal) []PriceChangeNotice {
	var notices []PriceChangeNotice
	for _, item := range cart.Items {
		want, ok := displayed[item.ProductID]
		if !ok {
			continue
		}
		if !item.Product.Price.Equal(want) {
			notices = append(notices, PriceChangeNotice{
				ProductID:      item.ProductID,
				DisplayedPrice: want,
				CurrentPrice:   item.Product.Price,
			})
		}
	}
	return notices
}

// Get returns the current user's active cart, creating one if needed
func (h *CartHandler) Get(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	cart, err := h.cartService.GetOrCreateCart(c.Request.Context(), *userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Cart retrieved successfully", cart)
}

// SetQuantities sets the quantities of one or more products in the cart
func (h *CartHandler) SetQuantities(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.SetQuantitiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	quantities := make(map[uuid.UUID]int, len(req.Items))
	displayed := make(map[uuid.UUID]decimal.Decimal)
	for _, item := range req.Items {
		quantities[item.ProductID] = item.Quantity
		if item.DisplayedPrice != nil {
			displayed[item.ProductID] = *item.DisplayedPrice
		}
	}

	cart, err := h.cartService.SetQuantities(c.Request.Context(), *userID, quantities)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Cart updated successfully", gin.H{
		"cart":          cart,
		"price_changes": priceChanges(cart, displayed),
	})
}

// AddItem adds a quantity of a product on top of what the cart holds
func (h *CartHandler) AddItem(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	cart, err := h.cartService.AddToCart(c.Request.Context(), *userID, req.ProductID, req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}

	displayed := make(map[uuid.UUID]decimal.Decimal)
	if req.DisplayedPrice != nil {
		displayed[req.ProductID] = *req.DisplayedPrice
	}

	response.OK(c, "Product added to cart", gin.H{
		"cart":          cart,
		"price_changes": priceChanges(cart, displayed),
	})
}

// ApplyVoucher applies a voucher code to the cart
func (h *CartHandler) ApplyVoucher(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.ApplyVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	cart, err := h.cartService.ApplyVoucher(c.Request.Context(), *userID, req.Code)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Voucher applied successfully", cart)
}

// RemoveVoucher removes a voucher from the cart
func (h *CartHandler) RemoveVoucher(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	voucherID, err := uuid.Parse(c.Param("voucherId"))
	if err != nil {
		response.BadRequest(c, "Invalid voucher ID")
		return
	}

	cart, err := h.cartService.RemoveVoucher(c.Request.Context(), *userID, voucherID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Voucher removed successfully", cart)
}

// Validate re-checks the cart contents against current availability
func (h *CartHandler) Validate(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	failures, err := h.cartService.ValidateCart(c.Request.Context(), *userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Cart validated", gin.H{
		"valid":    len(failures) == 0,
		"failures": failures,
	})
}

// FixErrors removes or caps cart items that are no longer available
func (h *CartHandler) FixErrors(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	cart, err := h.cartService.FixSimpleErrors(c.Request.Context(), *userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Cart errors fixed", cart)
}
