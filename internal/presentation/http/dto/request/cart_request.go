package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SetQuantitiesRequest sets the desired quantity for one or more
// products in the current cart. A quantity of zero removes the item.
type SetQuantitiesRequest struct {
	Items []CartItemQuantity `json:"items" binding:"required,min=1,dive"`
}

// CartItemQuantity is a single product/quantity pair. DisplayedPrice is
// the unit price the client last showed the user; when it no longer
// matches the catalog the mutation still commits at the current price
// and the response carries a price-change notice.
type CartItemQuantity struct {
	ProductID      uuid.UUID        `json:"product_id" binding:"required"`
	Quantity       int              `json:"quantity" binding:"min=0"`
	DisplayedPrice *decimal.Decimal `json:"displayed_price,omitempty"`
}

// AddToCartRequest adds a quantity of one product to the current cart
type AddToCartRequest struct {
	ProductID      uuid.UUID        `json:"product_id" binding:"required"`
	Quantity       int              `json:"quantity" binding:"required,min=1"`
	DisplayedPrice *decimal.Decimal `json:"displayed_price,omitempty"`
}

// ApplyVoucherRequest applies a voucher code to the current cart
type ApplyVoucherRequest struct {
	Code string `json:"code" binding:"required,min=1,max=100"`
}
