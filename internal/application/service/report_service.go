package service

import (
	"context"
	"time"

	"github.com/confreg/registration-api/internal/domain/entity"
	"github.com/confreg/registration-api/internal/domain/repository"
)

// ReportService aggregates registration numbers for the organisers
type ReportService struct {
	reportRepo  repository.ReportRepository
	invoiceRepo repository.InvoiceRepository
}

// NewReportService creates a new report service
func NewReportService(
	reportRepo repository.ReportRepository,
	invoiceRepo repository.InvoiceRepository,
) *ReportService {
	return &ReportService{
		reportRepo:  reportRepo,
		invoiceRepo: invoiceRepo,
	}
}

// RegistrationOverview represents the headline numbers on the
// organiser dashboard
type RegistrationOverview struct {
	TotalRevenue    float64                                 `json:"total_revenue"`
	CreditNotePool  float64                                 `json:"credit_note_pool"`
	OverdueInvoices int                                     `json:"overdue_invoices"`
	Products        []repository.ProductRegistrationResult  `json:"products"`
	Categories      []repository.CategoryRegistrationResult `json:"categories"`
	Ceilings        []repository.CeilingUtilisationResult   `json:"ceilings"`
	DailyRevenue    []repository.DailyRevenueResult         `json:"daily_revenue"`
}

// GetOverview returns the headline registration numbers
func (s *ReportService) GetOverview(ctx context.Context) (*RegistrationOverview, error) {
	now := time.Now()
	overview := &RegistrationOverview{}

	revenue, err := s.reportRepo.GetTotalRevenue(ctx)
	if err != nil {
		return nil, err
	}
	overview.TotalRevenue = revenue

	pool, err := s.reportRepo.GetCreditNotePool(ctx)
	if err != nil {
		return nil, err
	}
	overview.CreditNotePool = pool

	overdue, err := s.invoiceRepo.ListOverdue(ctx, now)
	if err != nil {
		return nil, err
	}
	overview.OverdueInvoices = len(overdue)

	products, err := s.reportRepo.GetProductRegistrations(ctx, now)
	if err != nil {
		return nil, err
	}
	overview.Products = products

	categories, err := s.reportRepo.GetCategoryRegistrations(ctx)
	if err != nil {
		return nil, err
	}
	overview.Categories = categories

	ceilings, err := s.reportRepo.GetCeilingUtilisation(ctx, now)
	if err != nil {
		return nil, err
	}
	overview.Ceilings = ceilings

	daily, err := s.reportRepo.GetDailyRevenue(ctx, 7)
	if err != nil {
		return nil, err
	}
	overview.DailyRevenue = daily

	return overview, nil
}

// GetProductRegistrations returns per-product paid and reserved counts
func (s *ReportService) GetProductRegistrations(ctx context.Context) ([]repository.ProductRegistrationResult, error) {
	return s.reportRepo.GetProductRegistrations(ctx, time.Now())
}

// GetCeilingUtilisation returns remaining capacity under each ceiling
func (s *ReportService) GetCeilingUtilisation(ctx context.Context) ([]repository.CeilingUtilisationResult, error) {
	return s.reportRepo.GetCeilingUtilisation(ctx, time.Now())
}

// GetVoucherUsage returns redemption counts for every voucher
func (s *ReportService) GetVoucherUsage(ctx context.Context) ([]repository.VoucherUsageResult, error) {
	return s.reportRepo.GetVoucherUsage(ctx, time.Now())
}

// GetOverdueInvoices lists unpaid invoices past their due time
func (s *ReportService) GetOverdueInvoices(ctx context.Context) ([]entity.Invoice, error) {
	return s.invoiceRepo.ListOverdue(ctx, time.Now())
}
