package entity

import (
	"time"

	"github.com/confreg/registration-api/internal/domain/enum"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice freezes a cart at a given revision into a priced document. If
// the cart moves on (its revision changes) the invoice is void; a paid
// invoice retires its cart.
type Invoice struct {
	ID           uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceNo    string             `gorm:"size:100;unique;not null" json:"invoice_no"`
	UserID       uuid.UUID          `gorm:"type:uuid;not null;index" json:"user_id"`
	CartID       *uuid.UUID         `gorm:"type:uuid;index" json:"cart_id,omitempty"`
	CartRevision *int               `gorm:"index" json:"cart_revision,omitempty"`
	Status       enum.InvoiceStatus `gorm:"default:0;index" json:"status"`
	Recipient    string             `gorm:"size:1024" json:"recipient"`
	IssueTime    time.Time          `gorm:"not null" json:"issue_time"`
	DueTime      time.Time          `gorm:"not null" json:"due_time"`
	Value        decimal.Decimal    `gorm:"type:numeric(8,2);not null" json:"value"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`

	// Relationships
	User      User       `gorm:"foreignKey:UserID" json:"-"`
	Cart      *Cart      `gorm:"foreignKey:CartID" json:"-"`
	LineItems []LineItem `gorm:"foreignKey:InvoiceID" json:"line_items,omitempty"`
	Payments  []Payment  `gorm:"foreignKey:InvoiceID" json:"payments,omitempty"`
}

// BeforeCreate generates a UUID before creating a new invoice
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

func (i *Invoice) IsUnpaid() bool   { return i.Status == enum.InvoiceStatusUnpaid }
func (i *Invoice) IsPaid() bool     { return i.Status == enum.InvoiceStatusPaid }
func (i *Invoice) IsRefunded() bool { return i.Status == enum.InvoiceStatusRefunded }
func (i *Invoice) IsVoid() bool     { return i.Status == enum.InvoiceStatusVoid }

// TotalPayments sums the signed amounts of the loaded payments
func (i *Invoice) TotalPayments() decimal.Decimal {
	total := decimal.Zero
	for _, p := range i.Payments {
		total = total.Add(p.Amount)
	}
	return total
}

// LineItem is a denormalised invoice line. Product lines carry positive
// prices; discount lines carry negative ones.
type LineItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	ProductID   *uuid.UUID      `gorm:"type:uuid;index" json:"product_id,omitempty"`
	Description string          `gorm:"size:255;not null" json:"description"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	Price       decimal.Decimal `gorm:"type:numeric(8,2);not null" json:"price"`
	CreatedAt   time.Time       `json:"created_at"`

	// Relationships
	Invoice Invoice  `gorm:"foreignKey:InvoiceID" json:"-"`
	Product *Product `gorm:"foreignKey:ProductID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new line item
func (l *LineItem) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the LineItem model
func (LineItem) TableName() string {
	return "line_items"
}

// Total is quantity times unit price
func (l *LineItem) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Payment is money applied to an invoice. Negative amounts are refunds
// or credit-note generation.
type Payment struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceID uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	Time      time.Time       `gorm:"not null" json:"time"`
	Reference string          `gorm:"size:255;not null" json:"reference"`
	Amount    decimal.Decimal `gorm:"type:numeric(8,2);not null" json:"amount"`

	// Relationships
	Invoice Invoice `gorm:"foreignKey:InvoiceID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new payment
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Time.IsZero() {
		p.Time = time.Now()
	}
	return nil
}

// TableName returns the table name for the Payment model
func (Payment) TableName() string {
	return "payments"
}

// CreditNote tracks money in the system that is not attached to any
// invoice: overpayments and refunds. A note is spent exactly once and in
// full, either by application to another invoice or by cash-out.
type CreditNote struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	InvoiceID uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	Value     decimal.Decimal `gorm:"type:numeric(8,2);not null" json:"value"`
	Reference string          `gorm:"size:255" json:"reference"`
	IssueTime time.Time       `gorm:"not null" json:"issue_time"`

	AppliedToInvoiceID *uuid.UUID `gorm:"type:uuid;index" json:"applied_to_invoice_id,omitempty"`
	AppliedAt          *time.Time `json:"applied_at,omitempty"`
	RefundReference    *string    `gorm:"size:255" json:"refund_reference,omitempty"`
	RefundedAt         *time.Time `json:"refunded_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	User             User     `gorm:"foreignKey:UserID" json:"-"`
	Invoice          Invoice  `gorm:"foreignKey:InvoiceID" json:"-"`
	AppliedToInvoice *Invoice `gorm:"foreignKey:AppliedToInvoiceID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new credit note
func (n *CreditNote) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.IssueTime.IsZero() {
		n.IssueTime = time.Now()
	}
	return nil
}

// TableName returns the table name for the CreditNote model
func (CreditNote) TableName() string {
	return "credit_notes"
}

// IsClaimed reports whether the note has been consumed
func (n *CreditNote) IsClaimed() bool {
	return n.AppliedToInvoiceID != nil || n.RefundedAt != nil
}

// StatusText describes what became of the note
func (n *CreditNote) StatusText() string {
	if n.AppliedToInvoiceID != nil {
		return "Applied to invoice " + n.AppliedToInvoiceID.String()
	}
	if n.RefundedAt != nil && n.RefundReference != nil {
		return "Refunded with reference: " + *n.RefundReference
	}
	return "Unclaimed"
}
