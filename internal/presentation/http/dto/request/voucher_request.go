package request

// CreateVoucherRequest represents a voucher creation request. A blank
// code gets a generated one.
type CreateVoucherRequest struct {
	Recipient string `json:"recipient" binding:"required,min=2,max=255"`
	Code      string `json:"code" binding:"omitempty,max=100"`
	Limit     int    `json:"limit" binding:"required,min=1"`
}

// UpdateVoucherRequest represents a voucher update request
type UpdateVoucherRequest struct {
	Recipient *string `json:"recipient" binding:"omitempty,min=2,max=255"`
	Limit     *int    `json:"limit" binding:"omitempty,min=1"`
}
