package request

// PrintReceiptRequest is the request body for printing an invoice
// receipt at the registration desk.
type PrintReceiptRequest struct {
	InvoiceID string `json:"invoice_id" binding:"required,uuid"`
}

// PrintBadgeRequest is the request body for printing an attendee badge.
// Either the user ID or the profile access code identifies the
// attendee.
type PrintBadgeRequest struct {
	UserID     string `json:"user_id" binding:"omitempty,uuid"`
	AccessCode string `json:"access_code" binding:"omitempty,min=6,max=12"`
}
