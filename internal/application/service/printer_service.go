package service

import (
	"context"
	"fmt"
	"log"

	"github.com/confreg/registration-api/internal/domain/entity"
	"github.com/confreg/registration-api/internal/domain/repository"
	"github.com/confreg/registration-api/pkg/apperror"
	"github.com/confreg/registration-api/pkg/printer"
	"github.com/google/uuid"
)

// PrinterService drives the registration desk thermal printer: invoice
// receipts and attendee badges.
type PrinterService struct {
	printer        printer.Printer
	invoiceRepo    repository.InvoiceRepository
	profileRepo    repository.ProfileRepository
	conferenceName string
	printerType    string
}

// NewPrinterService creates a new printer service.
func NewPrinterService(
	p printer.Printer,
	invoiceRepo repository.InvoiceRepository,
	profileRepo repository.ProfileRepository,
	conferenceName string,
	printerType string,
) *PrinterService {
	return &PrinterService{
		printer:        p,
		invoiceRepo:    invoiceRepo,
		profileRepo:    profileRepo,
		conferenceName: conferenceName,
		printerType:    printerType,
	}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
}

// GetStatus returns printer connection status.
func (s *PrinterService) GetStatus() *PrinterStatus {
	return &PrinterStatus{
		Configured: s.printerType != "none" && s.printerType != "",
		Connected:  s.printer.IsConnected(),
		Type:       s.printerType,
	}
}

// TestPrint sends a test page to the printer.
// Returns the receipt data so the handler can return it as JSON when printer is disabled.
func (s *PrinterService) TestPrint() (*entity.Receipt, error) {
	receipt := &entity.Receipt{
		Header: entity.ReceiptHeader{
			ConferenceName: "PRINTER TEST",
			Address:        "Test Venue",
		},
		InvoiceNo: "TEST-001",
		Date:      "Test Date",
		Items: []entity.ReceiptItem{
			{Description: "Test Item 1", Quantity: 1, UnitPrice: 10.00, Total: 10.00},
			{Description: "Test Item 2", Quantity: 2, UnitPrice: 5.00, Total: 10.00},
		},
		Total: 20.00,
		Paid:  20.00,
	}

	data := FormatReceipt(receipt)
	if err := s.printer.Print(data); err != nil {
		return receipt, fmt.Errorf("test print failed: %w", err)
	}

	return receipt, nil
}

// PrintInvoiceReceipt fetches an invoice and prints its receipt.
func (s *PrinterService) PrintInvoiceReceipt(ctx context.Context, invoiceID uuid.UUID) (*entity.Receipt, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}

	receipt := &entity.Receipt{
		Header: entity.ReceiptHeader{
			ConferenceName: s.conferenceName,
		},
		InvoiceNo: invoice.InvoiceNo,
		Date:      invoice.IssueTime.Format("2006-01-02 15:04"),
		Attendee:  invoice.Recipient,
		Total:     invoice.Value.InexactFloat64(),
		Paid:      invoice.TotalPayments().InexactFloat64(),
	}

	for _, line := range invoice.LineItems {
		receipt.Items = append(receipt.Items, entity.ReceiptItem{
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.Price.InexactFloat64(),
			Total:       line.Total().InexactFloat64(),
		})
	}

	data := FormatReceipt(receipt)
	if err := s.printer.Print(data); err != nil {
		log.Printf("Printer error (invoice %s): %v", invoiceID, err)
		return receipt, fmt.Errorf("failed to print receipt: %w", err)
	}

	return receipt, nil
}

// PrintBadge prints an attendee's badge from their profile.
func (s *PrinterService) PrintBadge(ctx context.Context, userID uuid.UUID) (*entity.Badge, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperror.NewNotFoundError("Profile")
	}

	badge := &entity.Badge{
		ConferenceName: s.conferenceName,
		BadgeName:      profile.BadgeName,
		AccessCode:     profile.AccessCode,
	}
	if profile.Company != nil {
		badge.Company = *profile.Company
	}
	if profile.Pronouns != nil {
		badge.Pronouns = *profile.Pronouns
	}

	data := FormatBadge(badge)
	if err := s.printer.Print(data); err != nil {
		log.Printf("Printer error (badge for %s): %v", userID, err)
		return badge, fmt.Errorf("failed to print badge: %w", err)
	}

	return badge, nil
}

// FormatReceipt converts a Receipt into ESC/POS bytes.
func FormatReceipt(r *entity.Receipt) []byte {
	doc := printer.NewDocument(32) // 58mm paper = 32 chars

	// Header
	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetFontSize(printer.FontDouble).
		Text(r.Header.ConferenceName).
		SetFontSize(printer.FontNormal).
		SetBold(false)

	if r.Header.Address != "" {
		doc.Text(r.Header.Address)
	}
	if r.Header.TaxID != "" {
		doc.TextF("Tax ID: %s", r.Header.TaxID)
	}

	doc.SetAlign(printer.AlignLeft).
		Separator('-')

	// Invoice info
	doc.KeyValue("Invoice:", r.InvoiceNo).
		KeyValue("Date:", r.Date)

	if r.Attendee != "" {
		doc.KeyValue("Attendee:", r.Attendee)
	}

	doc.Separator('-')

	// Items
	for _, item := range r.Items {
		doc.ItemLine(item.Quantity, item.Description, fmt.Sprintf("%.2f", item.Total))
		if item.Quantity > 1 {
			doc.TextF("  @ %.2f each", item.UnitPrice)
		}
	}

	doc.Separator('-')

	// Totals
	doc.SetBold(true).
		KeyValue("TOTAL:", fmt.Sprintf("%.2f", r.Total)).
		SetBold(false)

	if r.Paid > 0 {
		doc.KeyValue("Paid:", fmt.Sprintf("%.2f", r.Paid))
	}

	doc.Separator('-')

	// Footer
	doc.SetAlign(printer.AlignCenter).
		LineFeed().
		Text("See you at the conference!").
		LineFeed().
		SetAlign(printer.AlignLeft)

	doc.FeedLines(3).
		PartialCut()

	return doc.Bytes()
}

// FormatBadge converts a Badge into ESC/POS bytes.
func FormatBadge(b *entity.Badge) []byte {
	doc := printer.NewDocument(32)

	doc.SetAlign(printer.AlignCenter).
		Text(b.ConferenceName).
		Separator('=').
		SetBold(true).
		SetFontSize(printer.FontDouble).
		Text(b.BadgeName).
		SetFontSize(printer.FontNormal).
		SetBold(false)

	if b.Pronouns != "" {
		doc.Text("(" + b.Pronouns + ")")
	}
	if b.Company != "" {
		doc.LineFeed().Text(b.Company)
	}

	doc.Separator('=').
		TextF("Code: %s", b.AccessCode).
		SetAlign(printer.AlignLeft)

	doc.FeedLines(3).
		PartialCut()

	return doc.Bytes()
}
