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

// ClubHandler holds the club service.
type ClubHandler struct {
	clubService services.ClubService
}

// NewClubHandler creates a new ClubHandler.
func NewClubHandler(cs services.ClubService) *ClubHandler {
	return &ClubHandler{clubService: cs}
}

// currentUserID extracts the authenticated caller from the gin context.
// AuthMiddleware must have run on the route.
func currentUserID(c *gin.Context) (int64, bool) {
	value, exists := c.Get("userID")
	if !exists {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "User not authenticated.", ""))
		return 0, false
	}
	userID, ok := value.(int64)
	if !ok {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Invalid caller identity in context.", ""))
		return 0, false
	}
	return userID, true
}

// parseClubFilters parses and validates every search query parameter,
// collecting per-field messages so the caller sees all problems at once.
// Nothing reaches the store when any field is malformed.
func parseClubFilters(c *gin.Context) (models.ClubFilters, map[string]string) {
	fieldErrors := map[string]string{}
	var filters models.ClubFilters

	filters.Search = c.Query("search")
	filters.Country = c.Query("country")
	filters.City = c.Query("city")
	filters.SkillLevel = c.Query("skillLevel")
	filters.SortBy = c.DefaultQuery("sortBy", models.SortByName)
	filters.SortOrder = c.DefaultQuery("sortOrder", models.SortOrderAsc)

	if s := c.Query("welcomesBeginners"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			fieldErrors["welcomesBeginners"] = "must be a boolean"
		} else {
			filters.WelcomesBeginners = &v
		}
	}
	if s := c.Query("isVerified"); s != "" {
		v, err := strconv.ParseBool(s)
		if err != nil {
			fieldErrors["isVerified"] = "must be a boolean"
		} else {
			filters.IsVerified = &v
		}
	}
	if s := c.Query("lat"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		switch {
		case err != nil:
			fieldErrors["lat"] = "must be a number"
		case v < -90 || v > 90:
			fieldErrors["lat"] = "must be between -90 and 90"
		default:
			filters.Lat = &v
		}
	}
	if s := c.Query("lng"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		switch {
		case err != nil:
			fieldErrors["lng"] = "must be a number"
		case v < -180 || v > 180:
			fieldErrors["lng"] = "must be between -180 and 180"
		default:
			filters.Lng = &v
		}
	}
	if s := c.Query("radius"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		switch {
		case err != nil:
			fieldErrors["radius"] = "must be a number"
		case v <= 0:
			fieldErrors["radius"] = "must be positive"
		default:
			filters.RadiusKm = v
		}
	}
	if s := c.Query("page"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v <= 0 {
			fieldErrors["page"] = "must be a positive integer"
		} else {
			filters.Page = v
		}
	}
	if s := c.Query("limit"); s != "" {
		v, err := strconv.Atoi(s)
		switch {
		case err != nil || v <= 0:
			fieldErrors["limit"] = "must be a positive integer"
		case v > services.MaxPageSize:
			fieldErrors["limit"] = "must not exceed " + strconv.Itoa(services.MaxPageSize)
		default:
			filters.PageSize = v
		}
	}

	return filters, fieldErrors
}

// GetClubs handles the club search with filtering, sorting and pagination.
func (h *ClubHandler) GetClubs(c *gin.Context) {
	filters, fieldErrors := parseClubFilters(c)
	if len(fieldErrors) > 0 {
		utils.RespondWithError(c, utils.NewFieldValidationError(fieldErrors))
		return
	}

	clubs, totalCount, err := h.clubService.SearchClubs(filters)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
			return
		}
		utils.LogError(err, "GetClubs: Error from clubService.SearchClubs")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to search clubs.", "Internal error"))
		return
	}

	if clubs == nil {
		clubs = []models.Club{}
	}
	// The service applied defaulting/clamping; re-normalize for the metadata.
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	limit := filters.PageSize
	if limit <= 0 {
		limit = services.DefaultPageSize
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       clubs,
		"pagination": models.NewPagination(page, limit, totalCount),
	})
}

// GetClubByID handles fetching a single club.
func (h *ClubHandler) GetClubByID(c *gin.Context) {
	clubID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid club ID format.", err.Error()))
		return
	}

	club, err := h.clubService.GetClubByID(clubID)
	if err != nil {
		if errors.Is(err, services.ErrClubNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Club not found.", err.Error()))
			return
		}
		utils.LogError(err, "GetClubByID: Error from clubService.GetClubByID")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch club.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, club)
}

// CreateClub handles the creation of a new club; the caller becomes OWNER.
func (h *ClubHandler) CreateClub(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateClubRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	club, err := h.clubService.CreateClub(callerID, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		case errors.Is(err, services.ErrSlugConflict):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
		default:
			utils.LogError(err, "CreateClub: Error from clubService.CreateClub")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create club.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, club)
}

// UpdateClub handles club profile updates by club admins.
func (h *ClubHandler) UpdateClub(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}

	clubID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid club ID format.", err.Error()))
		return
	}

	var req services.UpdateClubRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	club, err := h.clubService.UpdateClub(clubID, callerID, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrClubNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Club not found.", err.Error()))
		case errors.Is(err, services.ErrNotClubAdmin):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, err.Error(), ""))
		case errors.Is(err, services.ErrValidation):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		case errors.Is(err, services.ErrSlugConflict):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
		default:
			utils.LogError(err, "UpdateClub: Error from clubService.UpdateClub")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update club.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, club)
}

// DeleteClub handles owner-initiated club deletion.
func (h *ClubHandler) DeleteClub(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}

	clubID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid club ID format.", err.Error()))
		return
	}

	if err := h.clubService.DeleteClub(clubID, callerID); err != nil {
		switch {
		case errors.Is(err, services.ErrClubNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Club not found.", err.Error()))
		case errors.Is(err, services.ErrNotClubOwner):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, err.Error(), ""))
		default:
			utils.LogError(err, "DeleteClub: Error from clubService.DeleteClub")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete club.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Club deleted successfully"})
}
