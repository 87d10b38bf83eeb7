package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/confreg/registration-api/internal/application/service"
	"github.com/confreg/registration-api/internal/presentation/http/dto/request"
	"github.com/confreg/registration-api/internal/presentation/http/dto/response"
)

// InvoiceHandler handles invoice-related HTTP requests
type InvoiceHandler struct {
	invoiceService *service.InvoiceService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// hasPermission reports whether the authenticated user carries the
// given permission in their token.
func hasPermission(c *gin.Context, permission string) bool {
	for _, p := range GetUserPermissions(c) {
		if p == permission {
			return true
		}
	}
	return false
}

// Checkout generates an invoice for the current user's active cart
func (h *InvoiceHandler) Checkout(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	invoice, err := h.invoiceService.InvoiceForCart(c.Request.Context(), *userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Invoice generated successfully", invoice)
}

// ListMine lists the current user's invoices
func (h *InvoiceHandler) ListMine(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	invoices, err := h.invoiceService.ListUserInvoices(c.Request.Context(), *userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoices retrieved successfully", gin.H{
		"invoices": invoices,
	})
}

// Get returns a single invoice. Attendees can only see their own;
// staff with the manage-invoices permission can see any.
func (h *InvoiceHandler) Get(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	if invoice.UserID != *userID && !hasPermission(c, "manage-invoices") && !IsAdmin(c) {
		response.Forbidden(c, "You do not have access to this invoice")
		return
	}

	response.OK(c, "Invoice retrieved successfully", invoice)
}

// RecordPayment records a manual payment against an invoice
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req request.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	invoice, err := h.invoiceService.RecordPayment(c.Request.Context(), id, req.Reference, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment recorded successfully", invoice)
}

// ApplyCreditNote applies one of the user's credit notes to an invoice
func (h *InvoiceHandler) ApplyCreditNote(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req request.ApplyCreditNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	invoice, err := h.invoiceService.ApplyCreditNote(c.Request.Context(), req.CreditNoteID, id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Credit note applied successfully", invoice)
}

// Refund refunds a paid invoice, or voids an unpaid one
func (h *InvoiceHandler) Refund(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req request.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	invoice, err := h.invoiceService.Refund(c.Request.Context(), id, req.Reference)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice refunded successfully", invoice)
}

// ListOverdue lists unpaid invoices past their due time
func (h *InvoiceHandler) ListOverdue(c *gin.Context) {
	invoices, err := h.invoiceService.ListOverdue(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Overdue invoices retrieved successfully", gin.H{
		"invoices": invoices,
	})
}
