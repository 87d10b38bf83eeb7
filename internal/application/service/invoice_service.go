package service

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/confreg/registration-api/internal/domain/entity"
	"github.com/confreg/registration-api/internal/domain/enum"
	"github.com/confreg/registration-api/internal/domain/repository"
	"github.com/confreg/registration-api/pkg/apperror"
	"github.com/confreg/registration-api/pkg/email"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceService freezes carts into invoices and runs the payment state
// machine over them.
type InvoiceService struct {
	txManager      repository.TxManager
	invoiceRepo    repository.InvoiceRepository
	paymentRepo    repository.PaymentRepository
	creditNoteRepo repository.CreditNoteRepository
	cartRepo       repository.CartRepository
	userRepo       repository.UserRepository
	profileRepo    repository.ProfileRepository
	cartService    *CartService
	discounts      *DiscountService
	emailService   *email.EmailService
	// unpaid invoices fall due this long after issue
	dueAfter time.Duration
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	txManager repository.TxManager,
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
	creditNoteRepo repository.CreditNoteRepository,
	cartRepo repository.CartRepository,
	userRepo repository.UserRepository,
	profileRepo repository.ProfileRepository,
	cartService *CartService,
	discounts *DiscountService,
	emailService *email.EmailService,
	dueAfter time.Duration,
) *InvoiceService {
	return &InvoiceService{
		txManager:      txManager,
		invoiceRepo:    invoiceRepo,
		paymentRepo:    paymentRepo,
		creditNoteRepo: creditNoteRepo,
		cartRepo:       cartRepo,
		userRepo:       userRepo,
		profileRepo:    profileRepo,
		cartService:    cartService,
		discounts:      discounts,
		emailService:   emailService,
		dueAfter:       dueAfter,
	}
}

// InvoiceForCart freezes the user's active cart at its current revision
// and returns the invoice. Calling it again without touching the cart
// returns the same invoice. A zero-value invoice is settled on the
// spot, and unclaimed credit flows onto the new invoice automatically.
func (s *InvoiceService) InvoiceForCart(ctx context.Context, userID uuid.UUID) (*entity.Invoice, error) {
	var out *entity.Invoice
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		now := time.Now()

		cart, err := s.cartRepo.GetActiveByUser(ctx, userID)
		if err != nil {
			return err
		}
		if cart == nil || len(cart.Items) == 0 {
			return apperror.ErrEmptyCart
		}

		failures, err := s.cartService.ValidateCart(ctx, userID)
		if err != nil {
			return err
		}
		if len(failures) > 0 {
			return apperror.NewUnavailableError(failures[0].Reason)
		}

		existing, err := s.invoiceRepo.GetByCartAndRevision(ctx, cart.ID, cart.Revision)
		if err != nil {
			return err
		}
		if existing != nil {
			out = existing
			return nil
		}

		invoice, err := s.buildInvoice(ctx, cart, now)
		if err != nil {
			return err
		}
		if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
			return err
		}

		if invoice.Value.LessThanOrEqual(decimal.Zero) {
			if err := s.settle(ctx, invoice); err != nil {
				return err
			}
		} else {
			if err := s.applyUnclaimedCredit(ctx, invoice, now); err != nil {
				return err
			}
		}

		out, err = s.invoiceRepo.GetByID(ctx, invoice.ID)
		return err
	})
	if err == nil && out != nil && out.Status == enum.InvoiceStatusUnpaid {
		s.emailInvoice(ctx, out)
	}
	return out, err
}

// emailInvoice sends the invoice summary to attendees who opted in to
// email receipts. Failures are logged, never surfaced to the caller.
func (s *InvoiceService) emailInvoice(ctx context.Context, invoice *entity.Invoice) {
	if s.emailService == nil {
		return
	}

	profile, err := s.profileRepo.GetByUserID(ctx, invoice.UserID)
	if err != nil || profile == nil || !profile.EmailReceipts {
		return
	}
	user, err := s.userRepo.GetByID(ctx, invoice.UserID)
	if err != nil || user == nil {
		return
	}

	if err := s.emailService.SendInvoiceEmail(
		user.Email,
		invoice.Recipient,
		invoice.InvoiceNo,
		invoice.Value.StringFixed(2),
		invoice.DueTime.Format("2 January 2006"),
	); err != nil {
		log.Printf("Warning: failed to email invoice %s: %v", invoice.InvoiceNo, err)
	}
}

func (s *InvoiceService) buildInvoice(ctx context.Context, cart *entity.Cart, now time.Time) (*entity.Invoice, error) {
	recipient, err := s.invoiceRecipient(ctx, cart.UserID)
	if err != nil {
		return nil, err
	}

	items := make([]entity.CartItem, len(cart.Items))
	copy(items, cart.Items)
	sort.SliceStable(items, func(i, j int) bool {
		ci, cj := items[i].Product.Category, items[j].Product.Category
		if ci != nil && cj != nil && ci.Order != cj.Order {
			return ci.Order < cj.Order
		}
		return items[i].Product.Order < items[j].Product.Order
	})

	var lines []entity.LineItem
	total := decimal.Zero
	for _, item := range items {
		pid := item.ProductID
		line := entity.LineItem{
			ProductID:   &pid,
			Description: item.Product.DisplayName(),
			Quantity:    item.Quantity,
			Price:       item.Product.Price,
		}
		lines = append(lines, line)
		total = total.Add(line.Total())
	}

	for i := range cart.DiscountItems {
		di := &cart.DiscountItems[i]
		var product *entity.Product
		for j := range items {
			if items[j].ProductID == di.ProductID {
				product = &items[j].Product
				break
			}
		}
		if product == nil {
			continue
		}
		value, err := s.discounts.ValueOfItem(ctx, di, product)
		if err != nil {
			return nil, err
		}
		pid := di.ProductID
		line := entity.LineItem{
			ProductID:   &pid,
			Description: di.Discount.Description + " (" + product.DisplayName() + ")",
			Quantity:    di.Quantity,
			Price:       value.Neg(),
		}
		lines = append(lines, line)
		total = total.Add(line.Total())
	}

	revision := cart.Revision
	cartID := cart.ID
	return &entity.Invoice{
		InvoiceNo:    "INV-" + strings.ToUpper(uuid.New().String()[:8]),
		UserID:       cart.UserID,
		CartID:       &cartID,
		CartRevision: &revision,
		Status:       enum.InvoiceStatusUnpaid,
		Recipient:    recipient,
		IssueTime:    now,
		DueTime:      now.Add(s.dueAfter),
		Value:        total,
		LineItems:    lines,
	}, nil
}

func (s *InvoiceService) invoiceRecipient(ctx context.Context, userID uuid.UUID) (string, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		return "", err
	}
	if profile != nil {
		if recipient := profile.InvoiceRecipient(); recipient != "" {
			return recipient, nil
		}
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", apperror.NewNotFoundError("User")
	}
	return strings.TrimSpace(user.FirstName+" "+user.LastName) + " <" + user.Email + ">", nil
}

// GetInvoice retrieves an invoice by ID, refreshing its validity
// against the cart it was captured from
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}
	if err := s.refreshValidity(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

// ListUserInvoices lists a user's invoices
func (s *InvoiceService) ListUserInvoices(ctx context.Context, userID uuid.UUID) ([]entity.Invoice, error) {
	return s.invoiceRepo.ListByUser(ctx, userID)
}

// ListOverdue lists unpaid invoices past their due time
func (s *InvoiceService) ListOverdue(ctx context.Context) ([]entity.Invoice, error) {
	return s.invoiceRepo.ListOverdue(ctx, time.Now())
}

// refreshValidity voids an unpaid invoice with no money on it whose
// cart has moved to a newer revision
func (s *InvoiceService) refreshValidity(ctx context.Context, invoice *entity.Invoice) error {
	if !invoice.IsUnpaid() || invoice.CartID == nil || invoice.CartRevision == nil {
		return nil
	}
	if !invoice.TotalPayments().IsZero() {
		return nil
	}
	cart, err := s.cartRepo.GetByID(ctx, *invoice.CartID)
	if err != nil {
		return err
	}
	if cart == nil || cart.Revision == *invoice.CartRevision {
		return nil
	}
	invoice.Status = enum.InvoiceStatusVoid
	return s.invoiceRepo.UpdateStatus(ctx, invoice.ID, enum.InvoiceStatusVoid)
}

// ValidateAllowedToPay reports whether money may be applied to the
// invoice right now
func (s *InvoiceService) ValidateAllowedToPay(ctx context.Context, invoice *entity.Invoice) error {
	if err := s.refreshValidity(ctx, invoice); err != nil {
		return err
	}
	if !invoice.IsUnpaid() {
		return apperror.ErrNotPayable
	}
	return nil
}

// RecordPayment applies a received payment to an invoice. Paying the
// full amount settles the invoice and retires its cart; an overpayment
// settles it and returns the excess as a credit note. Amounts must be
// positive: negative adjustments reverse money through Refund, which
// also voids the invoice and issues the credit note.
func (s *InvoiceService) RecordPayment(ctx context.Context, invoiceID uuid.UUID, reference string, amount decimal.Decimal) (*entity.Invoice, error) {
	if !amount.IsPositive() {
		return nil, apperror.NewUnprocessableEntityError("Payment amount must be positive")
	}
	var out *entity.Invoice
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		invoice, err := s.invoiceRepo.GetByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return apperror.NewNotFoundError("Invoice")
		}
		if err := s.ValidateAllowedToPay(ctx, invoice); err != nil {
			return err
		}

		payment := &entity.Payment{
			InvoiceID: invoice.ID,
			Reference: reference,
			Amount:    amount,
		}
		if err := s.paymentRepo.Create(ctx, payment); err != nil {
			return err
		}

		total, err := s.paymentRepo.SumForInvoice(ctx, invoice.ID)
		if err != nil {
			return err
		}
		if total.GreaterThanOrEqual(invoice.Value) {
			if excess := total.Sub(invoice.Value); excess.IsPositive() {
				if err := s.spawnCreditNote(ctx, invoice, excess, "Excess payment on "+invoice.InvoiceNo); err != nil {
					return err
				}
			}
			if err := s.settle(ctx, invoice); err != nil {
				return err
			}
		}

		out, err = s.invoiceRepo.GetByID(ctx, invoice.ID)
		return err
	})
	return out, err
}

// ApplyCreditNote consumes a credit note against an invoice. Notes are
// spent whole; whatever the invoice does not absorb comes back as a
// fresh note.
func (s *InvoiceService) ApplyCreditNote(ctx context.Context, noteID uuid.UUID, invoiceID uuid.UUID) (*entity.Invoice, error) {
	var out *entity.Invoice
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		note, err := s.creditNoteRepo.GetByID(ctx, noteID)
		if err != nil {
			return err
		}
		if note == nil {
			return apperror.NewNotFoundError("Credit note")
		}
		if note.IsClaimed() {
			return apperror.ErrCreditNoteClaimed
		}

		invoice, err := s.invoiceRepo.GetByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return apperror.NewNotFoundError("Invoice")
		}
		if invoice.UserID != note.UserID {
			return apperror.ErrForbidden
		}
		if err := s.ValidateAllowedToPay(ctx, invoice); err != nil {
			return err
		}

		if err := s.creditNoteRepo.MarkApplied(ctx, note.ID, invoice.ID, time.Now()); err != nil {
			return err
		}

		payment := &entity.Payment{
			InvoiceID: invoice.ID,
			Reference: "Credit note " + note.ID.String(),
			Amount:    note.Value,
		}
		if err := s.paymentRepo.Create(ctx, payment); err != nil {
			return err
		}

		total, err := s.paymentRepo.SumForInvoice(ctx, invoice.ID)
		if err != nil {
			return err
		}
		if total.GreaterThanOrEqual(invoice.Value) {
			if excess := total.Sub(invoice.Value); excess.IsPositive() {
				if err := s.spawnCreditNote(ctx, invoice, excess, "Residual of credit note "+note.ID.String()); err != nil {
					return err
				}
			}
			if err := s.settle(ctx, invoice); err != nil {
				return err
			}
		}

		out, err = s.invoiceRepo.GetByID(ctx, invoice.ID)
		return err
	})
	return out, err
}

// Refund reverses an invoice. Captured money comes back as a credit
// note, a paid invoice becomes refunded, an unpaid one becomes void,
// and either way the cart is released so its items return to the pool.
func (s *InvoiceService) Refund(ctx context.Context, invoiceID uuid.UUID, reference string) (*entity.Invoice, error) {
	var out *entity.Invoice
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		invoice, err := s.invoiceRepo.GetByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return apperror.NewNotFoundError("Invoice")
		}
		if invoice.IsVoid() || invoice.IsRefunded() {
			return apperror.NewConflictError("Invoice has already been reversed")
		}

		total, err := s.paymentRepo.SumForInvoice(ctx, invoice.ID)
		if err != nil {
			return err
		}
		if total.IsPositive() {
			payment := &entity.Payment{
				InvoiceID: invoice.ID,
				Reference: reference,
				Amount:    total.Neg(),
			}
			if err := s.paymentRepo.Create(ctx, payment); err != nil {
				return err
			}
			if err := s.spawnCreditNote(ctx, invoice, total, reference); err != nil {
				return err
			}
		}

		status := enum.InvoiceStatusVoid
		if invoice.IsPaid() {
			status = enum.InvoiceStatusRefunded
		}
		if err := s.invoiceRepo.UpdateStatus(ctx, invoice.ID, status); err != nil {
			return err
		}

		if invoice.CartID != nil {
			if err := s.cartRepo.SetStatus(ctx, *invoice.CartID, enum.CartStatusReleased); err != nil {
				return err
			}
		}

		out, err = s.invoiceRepo.GetByID(ctx, invoice.ID)
		return err
	})
	return out, err
}

// settle marks the invoice paid and retires its cart
func (s *InvoiceService) settle(ctx context.Context, invoice *entity.Invoice) error {
	if err := s.invoiceRepo.UpdateStatus(ctx, invoice.ID, enum.InvoiceStatusPaid); err != nil {
		return err
	}
	if invoice.CartID != nil {
		if err := s.cartRepo.SetStatus(ctx, *invoice.CartID, enum.CartStatusPaid); err != nil {
			return err
		}
	}
	return nil
}

func (s *InvoiceService) spawnCreditNote(ctx context.Context, invoice *entity.Invoice, value decimal.Decimal, reference string) error {
	note := &entity.CreditNote{
		UserID:    invoice.UserID,
		InvoiceID: invoice.ID,
		Value:     value,
		Reference: reference,
	}
	return s.creditNoteRepo.Create(ctx, note)
}

// applyUnclaimedCredit spends the user's unclaimed credit notes, oldest
// first, against a freshly issued invoice
func (s *InvoiceService) applyUnclaimedCredit(ctx context.Context, invoice *entity.Invoice, now time.Time) error {
	notes, err := s.creditNoteRepo.ListUnclaimedByUser(ctx, invoice.UserID)
	if err != nil {
		return err
	}

	total, err := s.paymentRepo.SumForInvoice(ctx, invoice.ID)
	if err != nil {
		return err
	}

	for i := range notes {
		if total.GreaterThanOrEqual(invoice.Value) {
			break
		}
		note := &notes[i]

		if err := s.creditNoteRepo.MarkApplied(ctx, note.ID, invoice.ID, now); err != nil {
			return err
		}
		payment := &entity.Payment{
			InvoiceID: invoice.ID,
			Reference: "Credit note " + note.ID.String(),
			Amount:    note.Value,
		}
		if err := s.paymentRepo.Create(ctx, payment); err != nil {
			return err
		}
		total = total.Add(note.Value)
	}

	if total.GreaterThanOrEqual(invoice.Value) {
		if excess := total.Sub(invoice.Value); excess.IsPositive() {
			if err := s.spawnCreditNote(ctx, invoice, excess, "Residual credit on "+invoice.InvoiceNo); err != nil {
				return err
			}
		}
		return s.settle(ctx, invoice)
	}
	return nil
}
