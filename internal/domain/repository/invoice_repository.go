package repository

import (
	"context"
	"time"

	"github.com/confreg/registration-api/internal/domain/entity"
	"github.com/confreg/registration-api/internal/domain/enum"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceRepository defines the interface for invoice data operations
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	GetByInvoiceNo(ctx context.Context, invoiceNo string) (*entity.Invoice, error)
	// GetByCartAndRevision returns the non-void invoice captured from
	// the given cart at the given revision, if one exists.
	GetByCartAndRevision(ctx context.Context, cartID uuid.UUID, revision int) (*entity.Invoice, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.Invoice, error)
	ListByStatus(ctx context.Context, status enum.InvoiceStatus) ([]entity.Invoice, error)
	ListOverdue(ctx context.Context, now time.Time) ([]entity.Invoice, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enum.InvoiceStatus) error
}

// PaymentRepository defines the interface for payment data operations
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]entity.Payment, error)
	SumForInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error)
}

// CreditNoteRepository defines the interface for credit note data operations
type CreditNoteRepository interface {
	Create(ctx context.Context, note *entity.CreditNote) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.CreditNote, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.CreditNote, error)
	ListUnclaimedByUser(ctx context.Context, userID uuid.UUID) ([]entity.CreditNote, error)
	ListUnclaimed(ctx context.Context) ([]entity.CreditNote, error)
	MarkApplied(ctx context.Context, id uuid.UUID, invoiceID uuid.UUID, at time.Time) error
	MarkRefunded(ctx context.Context, id uuid.UUID, reference string, at time.Time) error
}
