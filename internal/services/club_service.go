package services

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"

	"clubhub_backend/internal/models"
	"clubhub_backend/internal/repositories"
	"clubhub_backend/pkg/geo"
	"clubhub_backend/pkg/utils"
)

// Search defaults and limits.
const (
	DefaultRadiusKm = 50.0
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Custom errors shared across the services package.
var (
	ErrValidation   = errors.New("validation error")
	ErrClubNotFound = errors.New("club not found")
	ErrNotClubAdmin = errors.New("caller does not hold an administrative role in this club")
	ErrNotClubOwner = errors.New("only the club owner may perform this action")
	ErrSlugConflict = errors.New("club slug already taken")
)

// --- Data Transfer Objects (DTOs) ---

// CreateClubRequest is used for creating a new club.
type CreateClubRequest struct {
	Name              string   `json:"name" binding:"required"`
	Description       *string  `json:"description"`
	Country           string   `json:"country" binding:"required"`
	City              string   `json:"city" binding:"required"`
	Latitude          *float64 `json:"latitude" binding:"required"`
	Longitude         *float64 `json:"longitude" binding:"required"`
	SkillLevel        string   `json:"skill_level"`
	WelcomesBeginners bool     `json:"welcomes_beginners"`
}

// UpdateClubRequest is used for updating a club profile. Nil fields are left untouched.
type UpdateClubRequest struct {
	Name              *string  `json:"name"`
	Description       *string  `json:"description"`
	Country           *string  `json:"country"`
	City              *string  `json:"city"`
	Latitude          *float64 `json:"latitude"`
	Longitude         *float64 `json:"longitude"`
	SkillLevel        *string  `json:"skill_level"`
	WelcomesBeginners *bool    `json:"welcomes_beginners"`
	IsActive          *bool    `json:"is_active"`
}

// --- ClubService Interface ---

type ClubService interface {
	// SearchClubs returns a page of clubs matching the filters plus the total
	// predicate count. For distance-sorted queries the total reflects the
	// bounding-box predicate, not the exact-radius post-filter.
	SearchClubs(filters models.ClubFilters) ([]models.Club, int, error)
	GetClubByID(clubID int64) (*models.Club, error)
	CreateClub(callerID int64, req CreateClubRequest) (*models.Club, error)
	UpdateClub(clubID, callerID int64, req UpdateClubRequest) (*models.Club, error)
	DeleteClub(clubID, callerID int64) error
}

type clubService struct {
	clubRepo   repositories.ClubRepository
	memberRepo repositories.MemberRepository
	db         *sql.DB // For managing transactions
}

// NewClubService creates a new instance of ClubService.
func NewClubService(cr repositories.ClubRepository, mr repositories.MemberRepository, db *sql.DB) ClubService {
	return &clubService{clubRepo: cr, memberRepo: mr, db: db}
}

// --- Method Implementations ---

func (s *clubService) SearchClubs(filters models.ClubFilters) ([]models.Club, int, error) {
	if err := normalizeClubFilters(&filters); err != nil {
		return nil, 0, err
	}

	var bounds *geo.Bounds
	if filters.Lat != nil && filters.Lng != nil {
		b := geo.BoundsAround(*filters.Lat, *filters.Lng, filters.RadiusKm)
		bounds = &b
	}

	if filters.SortBy != models.SortByDistance {
		clubs, totalCount, err := s.clubRepo.GetClubs(filters, bounds)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to query clubs: %w", err)
		}
		enrichClubs(clubs, filters.Lat, filters.Lng)
		return clubs, totalCount, nil
	}

	// Distance sort: the store cannot order by a derived value, so fetch the
	// whole bounding-box candidate set, compute exact distances, discard
	// candidates outside the radius (the box is a superset of the circle),
	// sort and paginate in memory. totalCount intentionally stays the
	// predicate count.
	clubs, totalCount, err := s.clubRepo.GetClubsUnpaged(filters, bounds)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query clubs for distance sort: %w", err)
	}
	enrichClubs(clubs, filters.Lat, filters.Lng)

	withinRadius := clubs[:0]
	for _, club := range clubs {
		if club.DistanceKm != nil && *club.DistanceKm <= filters.RadiusKm {
			withinRadius = append(withinRadius, club)
		}
	}

	sort.SliceStable(withinRadius, func(i, j int) bool {
		if filters.SortOrder == models.SortOrderDesc {
			return *withinRadius[i].DistanceKm > *withinRadius[j].DistanceKm
		}
		return *withinRadius[i].DistanceKm < *withinRadius[j].DistanceKm
	})

	offset := (filters.Page - 1) * filters.PageSize
	if offset >= len(withinRadius) {
		return []models.Club{}, totalCount, nil
	}
	end := offset + filters.PageSize
	if end > len(withinRadius) {
		end = len(withinRadius)
	}
	return withinRadius[offset:end], totalCount, nil
}

// normalizeClubFilters applies defaults and rejects out-of-range input before
// any store access.
func normalizeClubFilters(filters *models.ClubFilters) error {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = DefaultPageSize
	}
	if filters.PageSize > MaxPageSize {
		filters.PageSize = MaxPageSize
	}

	if filters.SortBy == "" {
		filters.SortBy = models.SortByName
	}
	switch filters.SortBy {
	case models.SortByName, models.SortByCreatedAt, models.SortByDistance:
	default:
		return fmt.Errorf("%w: unknown sort field %q", ErrValidation, filters.SortBy)
	}

	if filters.SortOrder == "" {
		filters.SortOrder = models.SortOrderAsc
	}
	if filters.SortOrder != models.SortOrderAsc && filters.SortOrder != models.SortOrderDesc {
		return fmt.Errorf("%w: unknown sort order %q", ErrValidation, filters.SortOrder)
	}

	if filters.SkillLevel != "" && !models.IsValidSkillLevel(filters.SkillLevel) {
		return fmt.Errorf("%w: unknown skill level %q", ErrValidation, filters.SkillLevel)
	}

	if (filters.Lat == nil) != (filters.Lng == nil) {
		return fmt.Errorf("%w: lat and lng must be supplied together", ErrValidation)
	}
	if filters.Lat != nil {
		if *filters.Lat < -90 || *filters.Lat > 90 {
			return fmt.Errorf("%w: latitude must be between -90 and 90", ErrValidation)
		}
		if *filters.Lng < -180 || *filters.Lng > 180 {
			return fmt.Errorf("%w: longitude must be between -180 and 180", ErrValidation)
		}
		if filters.RadiusKm < 0 {
			return fmt.Errorf("%w: radius must be positive", ErrValidation)
		}
		if filters.RadiusKm == 0 {
			filters.RadiusKm = DefaultRadiusKm
		}
	}
	if filters.SortBy == models.SortByDistance && filters.Lat == nil {
		return fmt.Errorf("%w: distance sort requires lat and lng", ErrValidation)
	}

	return nil
}

// enrichClubs rounds average ratings to one decimal place and, when a center
// point was supplied, computes each club's great-circle distance from it.
func enrichClubs(clubs []models.Club, lat, lng *float64) {
	for i := range clubs {
		if clubs[i].AverageRating != nil {
			rounded := math.Round(*clubs[i].AverageRating*10) / 10
			clubs[i].AverageRating = &rounded
		}
		if lat != nil && lng != nil {
			d := geo.HaversineKm(*lat, *lng, clubs[i].Latitude, clubs[i].Longitude)
			clubs[i].DistanceKm = &d
		}
	}
}

func (s *clubService) GetClubByID(clubID int64) (*models.Club, error) {
	club, err := s.clubRepo.GetClubByID(clubID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("failed to get club by ID: %w", err)
	}
	if club.AverageRating != nil {
		rounded := math.Round(*club.AverageRating*10) / 10
		club.AverageRating = &rounded
	}
	return club, nil
}

func (s *clubService) CreateClub(callerID int64, req CreateClubRequest) (*models.Club, error) {
	if err := validateCoordinates(req.Latitude, req.Longitude); err != nil {
		return nil, err
	}
	if req.SkillLevel == "" {
		req.SkillLevel = models.SkillLevelAll
	}
	if !models.IsValidSkillLevel(req.SkillLevel) {
		return nil, fmt.Errorf("%w: unknown skill level %q", ErrValidation, req.SkillLevel)
	}

	slug, err := s.generateUniqueSlug(req.Name)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	club := models.Club{
		Name:              req.Name,
		Slug:              slug,
		Description:       req.Description,
		Country:           req.Country,
		City:              req.City,
		Latitude:          *req.Latitude,
		Longitude:         *req.Longitude,
		SkillLevel:        req.SkillLevel,
		WelcomesBeginners: req.WelcomesBeginners,
		IsVerified:        false,
		IsActive:          true,
	}

	if _, err := s.clubRepo.CreateClub(tx, &club); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrSlugConflict
		}
		return nil, fmt.Errorf("failed to create club record: %w", err)
	}

	// The creating caller becomes OWNER in the same transaction.
	ownerMembership := models.ClubMember{
		ClubID:   club.ID,
		UserID:   callerID,
		Role:     models.RoleOwner,
		IsActive: true,
	}
	if _, err := s.memberRepo.CreateMembership(tx, &ownerMembership); err != nil {
		return nil, fmt.Errorf("failed to create owner membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit club creation transaction: %w", err)
	}
	return &club, nil
}

func (s *clubService) UpdateClub(clubID, callerID int64, req UpdateClubRequest) (*models.Club, error) {
	club, err := s.clubRepo.GetClubByID(clubID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("failed to fetch club for update: %w", err)
	}

	if err := s.requireClubRole(clubID, callerID, models.IsClubAdminRole, ErrNotClubAdmin); err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != club.Name {
		club.Name = *req.Name
		// Renaming re-derives the slug, with collision suffixing as at creation.
		slug, slugErr := s.generateUniqueSlug(club.Name)
		if slugErr != nil {
			return nil, slugErr
		}
		club.Slug = slug
	}
	if req.Description != nil {
		club.Description = req.Description
	}
	if req.Country != nil {
		club.Country = *req.Country
	}
	if req.City != nil {
		club.City = *req.City
	}
	if req.Latitude != nil || req.Longitude != nil {
		lat, lng := club.Latitude, club.Longitude
		if req.Latitude != nil {
			lat = *req.Latitude
		}
		if req.Longitude != nil {
			lng = *req.Longitude
		}
		if err := validateCoordinates(&lat, &lng); err != nil {
			return nil, err
		}
		club.Latitude, club.Longitude = lat, lng
	}
	if req.SkillLevel != nil {
		if !models.IsValidSkillLevel(*req.SkillLevel) {
			return nil, fmt.Errorf("%w: unknown skill level %q", ErrValidation, *req.SkillLevel)
		}
		club.SkillLevel = *req.SkillLevel
	}
	if req.WelcomesBeginners != nil {
		club.WelcomesBeginners = *req.WelcomesBeginners
	}
	if req.IsActive != nil {
		club.IsActive = *req.IsActive
	}

	updated, err := s.clubRepo.UpdateClub(s.db, club)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrClubNotFound
		}
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrSlugConflict
		}
		return nil, fmt.Errorf("failed to update club: %w", err)
	}
	return updated, nil
}

func (s *clubService) DeleteClub(clubID, callerID int64) error {
	if _, err := s.clubRepo.GetClubByID(clubID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrClubNotFound
		}
		return fmt.Errorf("failed to fetch club for deletion: %w", err)
	}

	ownerOnly := func(role string) bool { return role == models.RoleOwner }
	if err := s.requireClubRole(clubID, callerID, ownerOnly, ErrNotClubOwner); err != nil {
		return err
	}

	if err := s.clubRepo.DeleteClub(s.db, clubID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrClubNotFound
		}
		return fmt.Errorf("failed to delete club: %w", err)
	}
	return nil
}

// requireClubRole re-derives the caller's role from the store on every call;
// privileges are never cached across requests.
func (s *clubService) requireClubRole(clubID, callerID int64, allowed func(string) bool, denyErr error) error {
	membership, err := s.memberRepo.GetMembership(nil, clubID, callerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return denyErr
		}
		return fmt.Errorf("failed to resolve caller membership: %w", err)
	}
	if !membership.IsActive || !allowed(membership.Role) {
		return denyErr
	}
	return nil
}

// generateUniqueSlug derives a slug from name and appends a numeric suffix
// until it no longer collides with an existing club.
func (s *clubService) generateUniqueSlug(name string) (string, error) {
	base := utils.Slugify(name)
	if base == "" {
		return "", fmt.Errorf("%w: club name must contain at least one alphanumeric character", ErrValidation)
	}

	candidate := base
	for suffix := 1; ; suffix++ {
		exists, err := s.clubRepo.SlugExists(candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check slug availability: %w", err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, suffix)
	}
}

func validateCoordinates(lat, lng *float64) error {
	if lat == nil || lng == nil {
		return fmt.Errorf("%w: latitude and longitude are required", ErrValidation)
	}
	if *lat < -90 || *lat > 90 {
		return fmt.Errorf("%w: latitude must be between -90 and 90", ErrValidation)
	}
	if *lng < -180 || *lng > 180 {
		return fmt.Errorf("%w: longitude must be between -180 and 180", ErrValidation)
	}
	return nil
}
