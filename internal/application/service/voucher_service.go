package service

import (
	"context"
	"strings"

	"github.com/confreg/registration-api/internal/domain/entity"
	"github.com/confreg/registration-api/internal/domain/repository"
	"github.com/confreg/registration-api/pkg/apperror"
	"github.com/confreg/registration-api/pkg/pagination"
	"github.com/google/uuid"
)

// VoucherService handles voucher administration. Redemption lives on
// the cart side.
type VoucherService struct {
	voucherRepo repository.VoucherRepository
}

// NewVoucherService creates a new voucher service
func NewVoucherService(voucherRepo repository.VoucherRepository) *VoucherService {
	return &VoucherService{voucherRepo: voucherRepo}
}

// CreateVoucherInput represents the create voucher input
type CreateVoucherInput struct {
	Recipient string
	Code      string
	Limit     int
}

// CreateVoucher creates a new voucher. A blank code gets a generated
// one.
func (s *VoucherService) CreateVoucher(ctx context.Context, input *CreateVoucherInput) (*entity.Voucher, error) {
	if input.Limit < 1 {
		return nil, apperror.NewBadRequestError("Voucher limit must be at least 1")
	}

	code := entity.NormaliseVoucherCode(input.Code)
	if code == "" {
		code = strings.ToUpper(uuid.New().String()[:8])
	}

	existing, err := s.voucherRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Voucher code already exists")
	}

	voucher := &entity.Voucher{
		Recipient: input.Recipient,
		Code:      code,
		Limit:     input.Limit,
	}
	if err := s.voucherRepo.Create(ctx, voucher); err != nil {
		return nil, err
	}
	return voucher, nil
}

// UpdateVoucherInput represents the update voucher input
type UpdateVoucherInput struct {
	Recipient *string
	Limit     *int
}

// UpdateVoucher updates a voucher's recipient or limit. The code is
// immutable once issued.
func (s *VoucherService) UpdateVoucher(ctx context.Context, id uuid.UUID, input *UpdateVoucherInput) (*entity.Voucher, error) {
	voucher, err := s.voucherRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if voucher == nil {
		return nil, apperror.NewNotFoundError("Voucher")
	}

	if input.Recipient != nil {
		voucher.Recipient = *input.Recipient
	}
	if input.Limit != nil {
		if *input.Limit < 1 {
			return nil, apperror.NewBadRequestError("Voucher limit must be at least 1")
		}
		voucher.Limit = *input.Limit
	}

	if err := s.voucherRepo.Update(ctx, voucher); err != nil {
		return nil, err
	}
	return voucher, nil
}

// GetVoucher retrieves a voucher by ID
func (s *VoucherService) GetVoucher(ctx context.Context, id uuid.UUID) (*entity.Voucher, error) {
	voucher, err := s.voucherRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if voucher == nil {
		return nil, apperror.NewNotFoundError("Voucher")
	}
	return voucher, nil
}

// ListVouchers lists vouchers with pagination
func (s *VoucherService) ListVouchers(ctx context.Context, params *pagination.PaginationParams) ([]entity.Voucher, int64, error) {
	return s.voucherRepo.List(ctx, params)
}

// DeleteVoucher deletes a voucher
func (s *VoucherService) DeleteVoucher(ctx context.Context, id uuid.UUID) error {
	voucher, err := s.voucherRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if voucher == nil {
		return apperror.NewNotFoundError("Voucher")
	}
	return s.voucherRepo.Delete(ctx, id)
}
