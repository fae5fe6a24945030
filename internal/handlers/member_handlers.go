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

// MemberHandler holds the membership service.
type MemberHandler struct {
	membershipService services.MembershipService
}

// NewMemberHandler creates a new MemberHandler.
func NewMemberHandler(ms services.MembershipService) *MemberHandler {
	return &MemberHandler{membershipService: ms}
}

// GetClubMembers handles listing a club's members with role/search/pagination filters.
func (h *MemberHandler) GetClubMembers(c *gin.Context) {
	clubID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid club ID format.", err.Error()))
		return
	}

	fieldErrors := map[string]string{}
	filters := models.MemberFilters{
		Role:       c.Query("role"),
		Search:     c.Query("search"),
		ActiveOnly: true,
	}

	if s := c.Query("includeInactive"); s != "" {
		v, parseErr := strconv.ParseBool(s)
		if parseErr != nil {
			fieldErrors["includeInactive"] = "must be a boolean"
		} else {
			filters.ActiveOnly = !v
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

	members, totalCount, err := h.membershipService.GetClubMembers(clubID, filters)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrClubNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Club not found.", err.Error()))
		case errors.Is(err, services.ErrInvalidRole):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		default:
			utils.LogError(err, "GetClubMembers: Error from membershipService.GetClubMembers")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch club members.", "Internal error"))
		}
		return
	}

	if members == nil {
		members = []models.ClubMember{}
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
		"data":       members,
		"pagination": models.NewPagination(page, limit, totalCount),
	})
}

// JoinClub handles a join-type request: self-join/reactivation for regular
// callers, membership upsert for club admins naming a target user.
func (h *MemberHandler) JoinClub(c *gin.Context) {
	callerID, ok := currentUserID(c)
	if !ok {
		return
	}

	clubID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid club ID format.", err.Error()))
		return
	}

	var req services.JoinClubRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
			return
		}
	}

	member, err := h.membershipService.JoinClub(clubID, callerID, req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrClubNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Club not found.", err.Error()))
		case errors.Is(err, services.ErrUserNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Target user not found.", err.Error()))
		case errors.Is(err, services.ErrAlreadyMember):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), ""))
		case errors.Is(err, services.ErrNotClubAdmin):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, err.Error(), ""))
		case errors.Is(err, services.ErrInvalidRole):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), ""))
		default:
			utils.LogError(err, "JoinClub: Error from membershipService.JoinClub")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to join club.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, member)
}
