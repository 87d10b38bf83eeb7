package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/confreg/registration-api/internal/application/service"
	"github.com/confreg/registration-api/internal/presentation/http/dto/response"
)

// ReportHandler handles registration reporting HTTP requests
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Overview returns the registration overview dashboard
func (h *ReportHandler) Overview(c *gin.Context) {
	overview, err := h.reportService.GetOverview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Registration overview retrieved successfully", overview)
}

// ProductRegistrations returns per-product registration counts
func (h *ReportHandler) ProductRegistrations(c *gin.Context) {
	results, err := h.reportService.GetProductRegistrations(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product registrations retrieved successfully", gin.H{
		"products": results,
	})
}

// CeilingUtilisation returns reserved counts against each ceiling
func (h *ReportHandler) CeilingUtilisation(c *gin.Context) {
	results, err := h.reportService.GetCeilingUtilisation(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Ceiling utilisation retrieved successfully", gin.H{
		"ceilings": results,
	})
}

// VoucherUsage returns per-voucher redemption counts
func (h *ReportHandler) VoucherUsage(c *gin.Context) {
	results, err := h.reportService.GetVoucherUsage(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Voucher usage retrieved successfully", gin.H{
		"vouchers": results,
	})
}
