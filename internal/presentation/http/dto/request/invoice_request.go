package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecordPaymentRequest records a manual payment against an invoice
type RecordPaymentRequest struct {
	Reference string          `json:"reference" binding:"required,min=1,max=255"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
}

// ApplyCreditNoteRequest applies an unclaimed credit note to an invoice
type ApplyCreditNoteRequest struct {
	CreditNoteID uuid.UUID `json:"credit_note_id" binding:"required"`
}

// RefundRequest refunds an invoice
type RefundRequest struct {
	Reference string `json:"reference" binding:"required,min=1,max=255"`
}

// CashOutRequest marks a credit note as refunded outside the system
type CashOutRequest struct {
	Reference string `json:"reference" binding:"required,min=1,max=255"`
}
