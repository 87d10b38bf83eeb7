package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/confreg/registration-api/internal/application/service"
	"github.com/confreg/registration-api/internal/domain/enum"
	"github.com/confreg/registration-api/internal/presentation/http/dto/request"
	"github.com/confreg/registration-api/internal/presentation/http/dto/response"
)

// ConditionHandler handles enabling condition HTTP requests
type ConditionHandler struct {
	conditionService *service.ConditionService
}

// NewConditionHandler creates a new condition handler
func NewConditionHandler(conditionService *service.ConditionService) *ConditionHandler {
	return &ConditionHandler{conditionService: conditionService}
}

// List handles listing conditions
func (h *ConditionHandler) List(c *gin.Context) {
	conditions, err := h.conditionService.ListConditions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Conditions retrieved successfully", gin.H{
		"conditions": conditions,
	})
}

// Get handles getting a single condition
func (h *ConditionHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid condition ID")
		return
	}

	condition, err := h.conditionService.GetCondition(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Condition retrieved successfully", condition)
}

// Create handles creating a condition
func (h *ConditionHandler) Create(c *gin.Context) {
	var req request.CreateConditionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	condition, err := h.conditionService.CreateCondition(c.Request.Context(), &service.CreateConditionInput{
		Description:        req.Description,
		Kind:               enum.ConditionKind(req.Kind),
		Mandatory:          req.Mandatory,
		EnablingCategoryID: req.EnablingCategoryID,
		VoucherID:          req.VoucherID,
		RoleID:             req.RoleID,
		StartTime:          req.StartTime,
		EndTime:            req.EndTime,
		Limit:              req.Limit,
		ProductIDs:         req.ProductIDs,
		CategoryIDs:        req.CategoryIDs,
		EnablingProductIDs: req.EnablingProductIDs,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Condition created successfully", condition)
}

// Update handles updating a condition
func (h *ConditionHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid condition ID")
		return
	}

	var req request.UpdateConditionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	condition, err := h.conditionService.UpdateCondition(c.Request.Context(), id, &service.UpdateConditionInput{
		Description:        req.Description,
		Mandatory:          req.Mandatory,
		StartTime:          req.StartTime,
		EndTime:            req.EndTime,
		Limit:              req.Limit,
		ProductIDs:         req.ProductIDs,
		CategoryIDs:        req.CategoryIDs,
		EnablingProductIDs: req.EnablingProductIDs,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Condition updated successfully", condition)
}

// Delete handles deleting a condition
func (h *ConditionHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid condition ID")
		return
	}

	if err := h.conditionService.DeleteCondition(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
