package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/confreg/registration-api/internal/application/service"
	"github.com/confreg/registration-api/internal/presentation/http/dto/request"
	"github.com/confreg/registration-api/internal/presentation/http/dto/response"
)

// CreditNoteHandler handles credit note HTTP requests
type CreditNoteHandler struct {
	creditNoteService *service.CreditNoteService
}

// NewCreditNoteHandler creates a new credit note handler
func NewCreditNoteHandler(creditNoteService *service.CreditNoteService) *CreditNoteHandler {
	return &CreditNoteHandler{creditNoteService: creditNoteService}
}

// ListMine lists the current user's credit notes
func (h *CreditNoteHandler) ListMine(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	notes, err := h.creditNoteService.ListUserCreditNotes(c.Request.Context(), *userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Credit notes retrieved successfully", gin.H{
		"credit_notes": notes,
	})
}

// Get returns a single credit note. Attendees can only see their own;
// staff with the manage-credit-notes permission can see any.
func (h *CreditNoteHandler) Get(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid credit note ID")
		return
	}

	note, err := h.creditNoteService.GetCreditNote(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	if note.UserID != *userID && !hasPermission(c, "manage-credit-notes") {
		response.Forbidden(c, "You do not have access to this credit note")
		return
	}

	response.OK(c, "Credit note retrieved successfully", note)
}

// ListUnclaimed lists all unclaimed credit notes with their total
func (h *CreditNoteHandler) ListUnclaimed(c *gin.Context) {
	notes, err := h.creditNoteService.ListUnclaimed(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	total, err := h.creditNoteService.UnclaimedTotal(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Unclaimed credit notes retrieved successfully", gin.H{
		"credit_notes": notes,
		"total":        total,
	})
}

// CashOut marks a credit note as refunded outside the system
func (h *CreditNoteHandler) CashOut(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid credit note ID")
		return
	}

	var req request.CashOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	note, err := h.creditNoteService.CashOut(c.Request.Context(), id, req.Reference)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Credit note cashed out successfully", note)
}
