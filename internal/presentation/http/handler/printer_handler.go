package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/confreg/registration-api/internal/application/service"
	"github.com/confreg/registration-api/internal/presentation/http/dto/request"
	"github.com/confreg/registration-api/internal/presentation/http/dto/response"
)

// PrinterHandler handles registration desk printer HTTP requests
type PrinterHandler struct {
	printerService *service.PrinterService
	profileService *service.ProfileService
}

// NewPrinterHandler creates a new printer handler
func NewPrinterHandler(printerService *service.PrinterService, profileService *service.ProfileService) *PrinterHandler {
	return &PrinterHandler{printerService: printerService, profileService: profileService}
}

// Status returns the printer connection status
func (h *PrinterHandler) Status(c *gin.Context) {
	response.OK(c, "Printer status retrieved successfully", h.printerService.GetStatus())
}

// TestPrint sends a test page to the printer
func (h *PrinterHandler) TestPrint(c *gin.Context) {
	receipt, err := h.printerService.TestPrint()
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Test page printed", receipt)
}

// PrintReceipt prints a receipt for an invoice
func (h *PrinterHandler) PrintReceipt(c *gin.Context) {
	var req request.PrintReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	invoiceID, err := uuid.Parse(req.InvoiceID)
	if err != nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	receipt, err := h.printerService.PrintInvoiceReceipt(c.Request.Context(), invoiceID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt printed", receipt)
}

// PrintBadge prints an attendee badge, identified by user ID or by the
// profile access code shown at the desk.
func (h *PrinterHandler) PrintBadge(c *gin.Context) {
	var req request.PrintBadgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	var userID uuid.UUID
	switch {
	case req.UserID != "":
		id, err := uuid.Parse(req.UserID)
		if err != nil {
			response.BadRequest(c, "Invalid user ID")
			return
		}
		userID = id
	case req.AccessCode != "":
		profile, err := h.profileService.GetProfileByAccessCode(c.Request.Context(), req.AccessCode)
		if err != nil {
			response.Error(c, err)
			return
		}
		userID = profile.UserID
	default:
		response.BadRequest(c, "Either user_id or access_code is required")
		return
	}

	badge, err := h.printerService.PrintBadge(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Badge printed", badge)
}
