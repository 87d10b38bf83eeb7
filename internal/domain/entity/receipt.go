package entity

// ReceiptHeader holds the conference header printed at the top of a receipt.
type ReceiptHeader struct {
	ConferenceName string `json:"conference_name"`
	Address        string `json:"address,omitempty"`
	TaxID          string `json:"tax_id,omitempty"`
}

// ReceiptItem represents a single line item on a receipt.
type ReceiptItem struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
}

// Receipt is a value object representing a printable registration-desk
// receipt. It is not a database entity; it is composed from invoice
// data at print time.
type Receipt struct {
	Header    ReceiptHeader `json:"header"`
	InvoiceNo string        `json:"invoice_no"`
	Date      string        `json:"date"`
	Attendee  string        `json:"attendee,omitempty"`
	Items     []ReceiptItem `json:"items"`
	Total     float64       `json:"total"`
	Paid      float64       `json:"paid"`
}

// Badge is a value object for a printable attendee badge.
type Badge struct {
	ConferenceName string `json:"conference_name"`
	BadgeName      string `json:"badge_name"`
	Company        string `json:"company,omitempty"`
	Pronouns       string `json:"pronouns,omitempty"`
	AccessCode     string `json:"access_code"`
}
