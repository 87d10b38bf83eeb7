package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ProductRegistrationResult represents per-product registration counts
type ProductRegistrationResult struct {
	ProductID     uuid.UUID
	ProductName   string
	CategoryName  string
	PaidCount     int
	ReservedCount int
	Revenue       float64
}

// CategoryRegistrationResult represents registrations aggregated by category
type CategoryRegistrationResult struct {
	CategoryID   uuid.UUID
	CategoryName string
	PaidCount    int
	Revenue      float64
}

// CeilingUtilisationResult represents remaining capacity under a ceiling
type CeilingUtilisationResult struct {
	CeilingID      uuid.UUID
	CeilingName    string
	TotalAvailable *int
	Reserved       int
	Remaining      *int
}

// DailyRevenueResult represents payment volume for a single day
type DailyRevenueResult struct {
	Date    time.Time
	Revenue float64
	Refunds float64
}

// VoucherUsageResult represents redemption counts for a voucher
type VoucherUsageResult struct {
	VoucherID uuid.UUID
	Code      string
	Recipient string
	Limit     int
	Redeemed  int
}

// ReportRepository defines interface for reporting/aggregation queries
type ReportRepository interface {
	// GetProductRegistrations returns paid and reserved counts per product
	GetProductRegistrations(ctx context.Context, now time.Time) ([]ProductRegistrationResult, error)

	// GetCategoryRegistrations returns paid counts aggregated by category
	GetCategoryRegistrations(ctx context.Context) ([]CategoryRegistrationResult, error)

	// GetCeilingUtilisation returns reserved quantity against each ceiling's limit
	GetCeilingUtilisation(ctx context.Context, now time.Time) ([]CeilingUtilisationResult, error)

	// GetDailyRevenue returns payment and refund volume for the last N days
	GetDailyRevenue(ctx context.Context, days int) ([]DailyRevenueResult, error)

	// GetVoucherUsage returns redemption counts per voucher
	GetVoucherUsage(ctx context.Context, now time.Time) ([]VoucherUsageResult, error)

	// GetTotalRevenue returns total captured payments net of refunds
	GetTotalRevenue(ctx context.Context) (float64, error)

	// GetCreditNotePool returns the total value of unclaimed credit notes
	GetCreditNotePool(ctx context.Context) (float64, error)
}
