package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"clubhub_backend/internal/models"
	"clubhub_backend/internal/services"
	"clubhub_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// EquipmentHandler holds the equipment service.
type EquipmentHandler struct {
	equipmentService services.EquipmentService
}

// NewEquipmentHandler creates a new EquipmentHandler.
func NewEquipmentHandler(es services.EquipmentService) *EquipmentHandler {
	return &EquipmentHandler{equipmentService: es}
}

// CreateEquipment handles registering a new equipment item for a club.
func (h *EquipmentHandler) CreateEquipment(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}

	clubID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid club ID format.", err.Error()))
		return
	}

	var req services.CreateEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	equipment, err := h.equipmentService.CreateEquipment(clubID, callerID, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrClubNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Club not found.", err.Error()))
		case errors.Is(err, services.ErrNotEquipmentManager):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, err.Error(), ""))
		case errors.Is(err, services.ErrInvalidCondition):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		default:
			utils.LogError(err, "CreateEquipment: Error from equipmentService.CreateEquipment")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create equipment.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, equipment)
}

// GetClubEquipment handles listing a club's equipment.
func (h *EquipmentHandler) GetClubEquipment(c *gin.Context) {
	clubID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid club ID format.", err.Error()))
		return
	}

	fieldErrors := map[string]string{}
	filters := models.EquipmentFilters{Type: c.Query("type")}

	if s := c.Query("available"); s != "" {
		v, parseErr := strconv.ParseBool(s)
		if parseErr != nil {
			fieldErrors["available"] = "must be a boolean"
		} else {
			filters.AvailableOnly = v
		}
	}
	if s := c.Query("page"); s != "" {
		v, parseErr := strconv.Atoi(s)
		if parseErr != nil || v <= 0 {
			fieldErrors["page"] = "must be a positive integer"
		} else {
			filters.Page = v
		}
	}
	if s := c.Query("limit"); s != "" {
		v, parseErr := strconv.Atoi(s)
		if parseErr != nil || v <= 0 {
			fieldErrors["limit"] = "must be a positive integer"
		} else {
			filters.PageSize = v
		}
	}
	if len(fieldErrors) > 0 {
		utils.RespondWithError(c, utils.NewFieldValidationError(fieldErrors))
		return
	}

	items, totalCount, err := h.equipmentService.GetClubEquipment(clubID, filters)
	if err != nil {
		if errors.Is(err, services.ErrClubNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Club not found.", err.Error()))
			return
		}
		utils.LogError(err, "GetClubEquipment: Error from equipmentService.GetClubEquipment")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch equipment.", "Internal error"))
		return
	}

	if items == nil {
		items = []models.Equipment{}
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	limit := filters.PageSize
	if limit <= 0 {
		limit = services.DefaultPageSize
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       items,
		"pagination": models.NewPagination(page, limit, totalCount),
	})
}

// CheckoutEquipment handles opening a checkout for the caller.
func (h *EquipmentHandler) CheckoutEquipment(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}

	equipmentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid equipment ID format.", err.Error()))
		return
	}

	var req services.CheckoutEquipmentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
			return
		}
	}

	checkout, err := h.equipmentService.CheckoutEquipment(equipmentID, callerID, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEquipmentNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Equipment not found.", err.Error()))
		case errors.Is(err, services.ErrNotClubMember):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, err.Error(), ""))
		case errors.Is(err, services.ErrEquipmentCheckedOut):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
		default:
			utils.LogError(err, "CheckoutEquipment: Error from equipmentService.CheckoutEquipment")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to check out equipment.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, checkout)
}

// ReturnEquipment handles closing the open checkout for an equipment item.
func (h *EquipmentHandler) ReturnEquipment(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}

	equipmentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid equipment ID format.", err.Error()))
		return
	}

	var req services.ReturnEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	checkout, err := h.equipmentService.ReturnEquipment(equipmentID, callerID, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEquipmentNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Equipment not found.", err.Error()))
		case errors.Is(err, services.ErrNoOpenCheckout):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
		case errors.Is(err, services.ErrNotBorrowerOrManager):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, err.Error(), ""))
		case errors.Is(err, services.ErrInvalidCondition):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		default:
			utils.LogError(err, "ReturnEquipment: Error from equipmentService.ReturnEquipment")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to return equipment.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, checkout)
}
