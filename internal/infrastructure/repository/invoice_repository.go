package repository

import (
	"context"
	"errors"
	"time"

	"github.com/confreg/registration-api/internal/domain/entity"
	"github.com/confreg/registration-api/internal/domain/enum"
	domainRepo "github.com/confreg/registration-api/internal/domain/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB) domainRepo.InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *entity.Invoice) error {
	return dbFromContext(ctx, r.db).Create(invoice).Error
}

func (r *invoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := dbFromContext(ctx, r.db).
		Preload("LineItems").Preload("Payments").
		First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &invoice, err
}

func (r *invoiceRepository) GetByInvoiceNo(ctx context.Context, invoiceNo string) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := dbFromContext(ctx, r.db).
		Preload("LineItems").Preload("Payments").
		First(&invoice, "invoice_no = ?", invoiceNo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &invoice, err
}

func (r *invoiceRepository) GetByCartAndRevision(ctx context.Context, cartID uuid.UUID, revision int) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := dbFromContext(ctx, r.db).
		Preload("LineItems").Preload("Payments").
		Where("cart_id = ? AND cart_revision = ? AND status <> ?",
			cartID, revision, enum.InvoiceStatusVoid).
		First(&invoice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &invoice, err
}

func (r *invoiceRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.Invoice, error) {
	var invoices []entity.Invoice
	err := dbFromContext(ctx, r.db).
		Preload("LineItems").
		Where("user_id = ?", userID).
		Order("issue_time DESC").
		Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepository) ListByStatus(ctx context.Context, status enum.InvoiceStatus) ([]entity.Invoice, error) {
	var invoices []entity.Invoice
	err := dbFromContext(ctx, r.db).
		Where("status = ?", status).
		Order("issue_time DESC").
		Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepository) ListOverdue(ctx context.Context, now time.Time) ([]entity.Invoice, error) {
	var invoices []entity.Invoice
	err := dbFromContext(ctx, r.db).
		Where("status = ? AND due_time < ?", enum.InvoiceStatusUnpaid, now).
		Order("due_time ASC").
		Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.InvoiceStatus) error {
	return dbFromContext(ctx, r.db).Model(&entity.Invoice{}).
		Where("id = ?", id).
		Update("status", status).Error
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) domainRepo.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	return dbFromContext(ctx, r.db).Create(payment).Error
}

func (r *paymentRepository) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]entity.Payment, error) {
	var payments []entity.Payment
	err := dbFromContext(ctx, r.db).
		Where("invoice_id = ?", invoiceID).
		Order("time ASC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) SumForInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error) {
	var raw decimal.NullDecimal
	err := dbFromContext(ctx, r.db).Model(&entity.Payment{}).
		Select("SUM(amount)").
		Where("invoice_id = ?", invoiceID).
		Scan(&raw).Error
	if err != nil || !raw.Valid {
		return decimal.Zero, err
	}
	return raw.Decimal, nil
}

type creditNoteRepository struct {
	db *gorm.DB
}

// NewCreditNoteRepository creates a new credit note repository
func NewCreditNoteRepository(db *gorm.DB) domainRepo.CreditNoteRepository {
	return &creditNoteRepository{db: db}
}

func (r *creditNoteRepository) Create(ctx context.Context, note *entity.CreditNote) error {
	return dbFromContext(ctx, r.db).Create(note).Error
}

func (r *creditNoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.CreditNote, error) {
	var note entity.CreditNote
	err := dbFromContext(ctx, r.db).First(&note, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &note, err
}

func (r *creditNoteRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.CreditNote, error) {
	var notes []entity.CreditNote
	err := dbFromContext(ctx, r.db).
		Where("user_id = ?", userID).
		Order("issue_time ASC").
		Find(&notes).Error
	return notes, err
}

func (r *creditNoteRepository) ListUnclaimedByUser(ctx context.Context, userID uuid.UUID) ([]entity.CreditNote, error) {
	var notes []entity.CreditNote
	err := dbFromContext(ctx, r.db).
		Where("user_id = ? AND applied_to_invoice_id IS NULL AND refunded_at IS NULL", userID).
		Order("issue_time ASC").
		Find(&notes).Error
	return notes, err
}

func (r *creditNoteRepository) ListUnclaimed(ctx context.Context) ([]entity.CreditNote, error) {
	var notes []entity.CreditNote
	err := dbFromContext(ctx, r.db).
		Where("applied_to_invoice_id IS NULL AND refunded_at IS NULL").
		Order("issue_time ASC").
		Find(&notes).Error
	return notes, err
}

func (r *creditNoteRepository) MarkApplied(ctx context.Context, id uuid.UUID, invoiceID uuid.UUID, at time.Time) error {
	return dbFromContext(ctx, r.db).Model(&entity.CreditNote{}).
		Where("id = ? AND applied_to_invoice_id IS NULL AND refunded_at IS NULL", id).
		Updates(map[string]interface{}{
			"applied_to_invoice_id": invoiceID,
			"applied_at":            at,
		}).Error
}

func (r *creditNoteRepository) MarkRefunded(ctx context.Context, id uuid.UUID, reference string, at time.Time) error {
	return dbFromContext(ctx, r.db).Model(&entity.CreditNote{}).
		Where("id = ? AND applied_to_invoice_id IS NULL AND refunded_at IS NULL", id).
		Updates(map[string]interface{}{
			"refund_reference": reference,
			"refunded_at":      at,
		}).Error
}
