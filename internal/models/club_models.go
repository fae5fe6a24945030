package models

import "time"

// Skill levels a club can advertise.
const (
	SkillLevelBeginner     = "beginner"
	SkillLevelIntermediate = "intermediate"
	SkillLevelAdvanced     = "advanced"
	SkillLevelAll          = "all"
)

// IsValidSkillLevel reports whether s is a known skill level.
func IsValidSkillLevel(s string) bool {
	switch s {
	case SkillLevelBeginner, SkillLevelIntermediate, SkillLevelAdvanced, SkillLevelAll:
		return true
	default:
		return false
	}
}

// Sort fields accepted by the club search.
const (
	SortByName      = "name"
	SortByCreatedAt = "createdAt"
	SortByDistance  = "distance"

	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"
)

// Club represents a community organization with a public profile and geolocation.
type Club struct {
	ID                int64     `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	Slug              string    `json:"slug" db:"slug"`
	Description       *string   `json:"description,omitempty" db:"description"`
	Country           string    `json:"country" db:"country"`
	City              string    `json:"city" db:"city"`
	Latitude          float64   `json:"latitude" db:"latitude"`
	Longitude         float64   `json:"longitude" db:"longitude"`
	SkillLevel        string    `json:"skill_level" db:"skill_level"`
	WelcomesBeginners bool      `json:"welcomes_beginners" db:"welcomes_beginners"`
	IsVerified        bool      `json:"is_verified" db:"is_verified"`
	IsActive          bool      `json:"is_active" db:"is_active"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`

	// AverageRating is the mean of the club's rating records rounded to one
	// decimal place; nil when the club has no ratings.
	AverageRating *float64 `json:"average_rating"`
	// DistanceKm is populated only when the search supplied a center point.
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

// ClubFilters carries the search/filter/pagination parameters for club queries.
type ClubFilters struct {
	Search            string
	Country           string
	City              string
	SkillLevel        string
	WelcomesBeginners *bool
	IsVerified        *bool

	Lat      *float64
	Lng      *float64
	RadiusKm float64

	Page     int
	PageSize int

	SortBy    string
	SortOrder string
}

// Pagination is the page metadata returned alongside list responses.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewPagination computes TotalPages from the total row count.
func NewPagination(page, limit, total int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}
