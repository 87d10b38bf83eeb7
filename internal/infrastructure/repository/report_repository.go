package repository

import (
	"context"
	"time"

	domainRepo "github.com/confreg/registration-api/internal/domain/repository"
	"gorm.io/gorm"
)

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *gorm.DB) domainRepo.ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) GetProductRegistrations(ctx context.Context, now time.Time) ([]domainRepo.ProductRegistrationResult, error) {
	var results []domainRepo.ProductRegistrationResult

	err := dbFromContext(ctx, r.db).Raw(`
		SELECT
			p.id as product_id,
			p.name as product_name,
			c.name as category_name,
			COALESCE(SUM(ci.quantity) FILTER (WHERE ca.status = 1), 0) as paid_count,
			COALESCE(SUM(ci.quantity) FILTER (WHERE ca.status = 1 OR (ca.status = 0 AND
				ca.time_last_updated + (ca.reservation_duration / 1000000000.0) * INTERVAL '1 second' >= ?)), 0) as reserved_count,
			COALESCE(SUM(ci.quantity * p.price) FILTER (WHERE ca.status = 1), 0) as revenue
		FROM products p
		JOIN categories c ON c.id = p.category_id
		LEFT JOIN cart_items ci ON ci.product_id = p.id
		LEFT JOIN carts ca ON ca.id = ci.cart_id
		GROUP BY p.id, p.name, c.name, c."order", p."order"
		ORDER BY c."order", p."order"
	`, now).Scan(&results).Error

	if err != nil {
		return nil, err
	}

	return results, nil
}

func (r *reportRepository) GetCategoryRegistrations(ctx context.Context) ([]domainRepo.CategoryRegistrationResult, error) {
	var results []domainRepo.CategoryRegistrationResult

	err := dbFromContext(ctx, r.db).Raw(`
		SELECT
			c.id as category_id,
			c.name as category_name,
			COALESCE(SUM(ci.quantity), 0) as paid_count,
			COALESCE(SUM(ci.quantity * p.price), 0) as revenue
		FROM categories c
		LEFT JOIN products p ON p.category_id = c.id
		LEFT JOIN cart_items ci ON ci.product_id = p.id
		LEFT JOIN carts ca ON ca.id = ci.cart_id AND ca.status = 1
		GROUP BY c.id, c.name, c."order"
		ORDER BY c."order"
	`).Scan(&results).Error

	if err != nil {
		return nil, err
	}

	return results, nil
}

func (r *reportRepository) GetCeilingUtilisation(ctx context.Context, now time.Time) ([]domainRepo.CeilingUtilisationResult, error) {
	var results []domainRepo.CeilingUtilisationResult

	err := dbFromContext(ctx, r.db).Raw(`
		SELECT
			cl.id as ceiling_id,
			cl.name as ceiling_name,
			cl.total_available,
			COALESCE(SUM(ci.quantity), 0) as reserved,
			CASE WHEN cl.total_available IS NULL THEN NULL
				ELSE cl.total_available - COALESCE(SUM(ci.quantity), 0) END as remaining
		FROM ceilings cl
		LEFT JOIN product_ceilings pc ON pc.ceiling_id = cl.id
		LEFT JOIN cart_items ci ON ci.product_id = pc.product_id
		LEFT JOIN carts ca ON ca.id = ci.cart_id
			AND (ca.status = 1 OR (ca.status = 0 AND
				ca.time_last_updated + (ca.reservation_duration / 1000000000.0) * INTERVAL '1 second' >= ?))
		GROUP BY cl.id, cl.name, cl.total_available
		ORDER BY cl.name
	`, now).Scan(&results).Error

	if err != nil {
		return nil, err
	}

	return results, nil
}

func (r *reportRepository) GetDailyRevenue(ctx context.Context, days int) ([]domainRepo.DailyRevenueResult, error) {
	var results []domainRepo.DailyRevenueResult

	err := dbFromContext(ctx, r.db).Raw(`
		SELECT
			DATE(p.time) as date,
			COALESCE(SUM(p.amount) FILTER (WHERE p.amount > 0), 0) as revenue,
			COALESCE(-SUM(p.amount) FILTER (WHERE p.amount < 0), 0) as refunds
		FROM payments p
		WHERE p.time >= CURRENT_DATE - make_interval(days => ?)
		GROUP BY DATE(p.time)
		ORDER BY date ASC
	`, days).Scan(&results).Error

	if err != nil {
		return nil, err
	}

	return results, nil
}

func (r *reportRepository) GetVoucherUsage(ctx context.Context, now time.Time) ([]domainRepo.VoucherUsageResult, error) {
	var results []domainRepo.VoucherUsageResult

	err := dbFromContext(ctx, r.db).Raw(`
		SELECT
			v.id as voucher_id,
			v.code,
			v.recipient,
			v."limit",
			COUNT(ca.id) FILTER (WHERE ca.status = 1 OR (ca.status = 0 AND
				ca.time_last_updated + (ca.reservation_duration / 1000000000.0) * INTERVAL '1 second' >= ?)) as redeemed
		FROM vouchers v
		LEFT JOIN cart_vouchers cv ON cv.voucher_id = v.id
		LEFT JOIN carts ca ON ca.id = cv.cart_id
		GROUP BY v.id, v.code, v.recipient, v."limit"
		ORDER BY v.code
	`, now).Scan(&results).Error

	if err != nil {
		return nil, err
	}

	return results, nil
}

func (r *reportRepository) GetTotalRevenue(ctx context.Context) (float64, error) {
	var total float64
	err := dbFromContext(ctx, r.db).Raw(`
		SELECT COALESCE(SUM(amount), 0) FROM payments
	`).Scan(&total).Error
	return total, err
}

func (r *reportRepository) GetCreditNotePool(ctx context.Context) (float64, error) {
	var total float64
	err := dbFromContext(ctx, r.db).Raw(`
		SELECT COALESCE(SUM(value), 0)
		FROM credit_notes
		WHERE applied_to_invoice_id IS NULL AND refunded_at IS NULL
	`).Scan(&total).Error
	return total, err
}
