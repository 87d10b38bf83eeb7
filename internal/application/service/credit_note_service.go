package service

import (
	"context"
	"time"

	"github.com/confreg/registration-api/internal/domain/entity"
	"github.com/confreg/registration-api/internal/domain/repository"
	"github.com/confreg/registration-api/pkg/apperror"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditNoteService exposes the credit-note pool: listing a user's
// notes, listing the outstanding pool for the organisers, and cashing a
// note out.
type CreditNoteService struct {
	txManager      repository.TxManager
	creditNoteRepo repository.CreditNoteRepository
}

// NewCreditNoteService creates a new credit note service
func NewCreditNoteService(
	txManager repository.TxManager,
	creditNoteRepo repository.CreditNoteRepository,
) *CreditNoteService {
	return &CreditNoteService{
		txManager:      txManager,
		creditNoteRepo: creditNoteRepo,
	}
}

// GetCreditNote retrieves a credit note by ID
func (s *CreditNoteService) GetCreditNote(ctx context.Context, id uuid.UUID) (*entity.CreditNote, error) {
	note, err := s.creditNoteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, apperror.NewNotFoundError("Credit note")
	}
	return note, nil
}

// ListUserCreditNotes lists a user's credit notes, claimed or not
func (s *CreditNoteService) ListUserCreditNotes(ctx context.Context, userID uuid.UUID) ([]entity.CreditNote, error) {
	return s.creditNoteRepo.ListByUser(ctx, userID)
}

// ListUnclaimed lists every unclaimed credit note, the money the
// organisers still owe out
func (s *CreditNoteService) ListUnclaimed(ctx context.Context) ([]entity.CreditNote, error) {
	return s.creditNoteRepo.ListUnclaimed(ctx)
}

// UnclaimedTotal sums the outstanding pool
func (s *CreditNoteService) UnclaimedTotal(ctx context.Context) (decimal.Decimal, error) {
	notes, err := s.creditNoteRepo.ListUnclaimed(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, note := range notes {
		total = total.Add(note.Value)
	}
	return total, nil
}

// CashOut records that a credit note was settled outside the system,
// with a reference to the manual transaction. The note is consumed in
// full and cannot be reused.
func (s *CreditNoteService) CashOut(ctx context.Context, noteID uuid.UUID, reference string) (*entity.CreditNote, error) {
	var out *entity.CreditNote
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

		if err := s.creditNoteRepo.MarkRefunded(ctx, note.ID, reference, time.Now()); err != nil {
			return err
		}

		out, err = s.creditNoteRepo.GetByID(ctx, note.ID)
		return err
	})
	return out, err
}
