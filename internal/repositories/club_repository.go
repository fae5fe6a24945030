package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"clubhub_backend/internal/models"
	"clubhub_backend/pkg/geo"

	"github.com/lib/pq"
)

// ClubRepository defines the interface for club-related database operations.
type ClubRepository interface {
	CreateClub(executor SQLExecutor, club *models.Club) (*models.Club, error)
	GetClubByID(id int64) (*models.Club, error) // joins ratings for the average
	SlugExists(slug string) (bool, error)
	// GetClubs applies the filter predicate with store-side ordering and
	// offset/limit pagination. Returns clubs and the total predicate count.
	GetClubs(filters models.ClubFilters, bounds *geo.Bounds) ([]models.Club, int, error)
	// GetClubsUnpaged applies the same predicate without pagination. Used for
	// distance sorting, where ordering happens in memory; the returned total is
	// the predicate count, not the post-radius-filter count.
	GetClubsUnpaged(filters models.ClubFilters, bounds *geo.Bounds) ([]models.Club, int, error)
	UpdateClub(executor SQLExecutor, club *models.Club) (*models.Club, error)
	DeleteClub(executor SQLExecutor, id int64) error
}

type clubRepository struct {
	db *sql.DB
}

// NewClubRepository creates a new instance of ClubRepository.
func NewClubRepository(db *sql.DB) ClubRepository {
	return &clubRepository{db: db}
}

const selectClubFields = `
	c.id, c.name, c.slug, c.description, c.country, c.city, c.latitude, c.longitude,
	c.skill_level, c.welcomes_beginners, c.is_verified, c.is_active,
	c.created_at, c.updated_at, AVG(r.rating) AS average_rating
`

const clubRatingJoin = `
	FROM clubs c
	LEFT JOIN club_ratings r ON r.club_id = c.id
`

// scanClubRow scans a single club row with its averaged rating.
// The raw average is carried as-is; rounding is the service's concern.
func scanClubRow(row scanner, isList bool) (*models.Club, int, error) {
	var club models.Club
	var avgRating sql.NullFloat64
	var totalCount int

	scanDest := []interface{}{
		&club.ID, &club.Name, &club.Slug, &club.Description, &club.Country, &club.City,
		&club.Latitude, &club.Longitude, &club.SkillLevel,
		&club.WelcomesBeginners, &club.IsVerified, &club.IsActive,
		&club.CreatedAt, &club.UpdatedAt, &avgRating,
	}
	if isList {
		scanDest = append(scanDest, &totalCount)
	}

	if err := row.Scan(scanDest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, fmt.Errorf("%w: scanning club: %v", ErrDatabaseError, err)
	}

	if avgRating.Valid {
		club.AverageRating = &avgRating.Float64
	}
	return &club, totalCount, nil
}

// buildClubPredicate translates filters (and an optional bounding box) into SQL
// conditions. Only active clubs are ever returned from list queries.
func buildClubPredicate(filters models.ClubFilters, bounds *geo.Bounds) ([]string, []interface{}) {
	conditions := []string{"c.is_active = TRUE"}
	var args []interface{}
	argCount := 1

	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		conditions = append(conditions, fmt.Sprintf(
			"(c.name ILIKE $%d OR c.description ILIKE $%d OR c.city ILIKE $%d OR c.country ILIKE $%d)",
			argCount, argCount, argCount, argCount))
		args = append(args, pattern)
		argCount++
	}
	if filters.Country != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(c.country) = LOWER($%d)", argCount))
		args = append(args, filters.Country)
		argCount++
	}
	if filters.City != "" {
		conditions = append(conditions, fmt.Sprintf("c.city ILIKE $%d", argCount))
		args = append(args, "%"+filters.City+"%")
		argCount++
	}
	if filters.SkillLevel != "" {
		conditions = append(conditions, fmt.Sprintf("c.skill_level = $%d", argCount))
		args = append(args, filters.SkillLevel)
		argCount++
	}
	if filters.WelcomesBeginners != nil {
		conditions = append(conditions, fmt.Sprintf("c.welcomes_beginners = $%d", argCount))
		args = append(args, *filters.WelcomesBeginners)
		argCount++
	}
	if filters.IsVerified != nil {
		conditions = append(conditions, fmt.Sprintf("c.is_verified = $%d", argCount))
		args = append(args, *filters.IsVerified)
		argCount++
	}
	if bounds != nil {
		conditions = append(conditions, fmt.Sprintf(
			"c.latitude BETWEEN $%d AND $%d AND c.longitude BETWEEN $%d AND $%d",
			argCount, argCount+1, argCount+2, argCount+3))
		args = append(args, bounds.MinLat, bounds.MaxLat, bounds.MinLng, bounds.MaxLng)
	}

	return conditions, args
}

// clubSortColumn maps an API sort field to its ORDER BY expression.
// Distance is not here: the store cannot order by a derived value.
func clubSortColumn(sortBy string) string {
	if sortBy == models.SortByCreatedAt {
		return "c.created_at"
	}
	return "c.name"
}

func (r *clubRepository) queryClubs(filters models.ClubFilters, bounds *geo.Bounds, paged bool) ([]models.Club, int, error) {
	clubs := []models.Club{}
	var totalCount int

	conditions, args := buildClubPredicate(filters, bounds)

	var queryBuilder strings.Builder
	queryBuilder.WriteString("SELECT " + selectClubFields + ", COUNT(*) OVER() AS total_count " + clubRatingJoin)
	queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	queryBuilder.WriteString(" GROUP BY c.id")

	if paged {
		order := " ASC"
		if filters.SortOrder == models.SortOrderDesc {
			order = " DESC"
		}
		queryBuilder.WriteString(" ORDER BY " + clubSortColumn(filters.SortBy) + order)

		argCount := len(args) + 1
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
		args = append(args, filters.PageSize, (filters.Page-1)*filters.PageSize)
	} else {
		// Stable order so in-memory ties break deterministically.
		queryBuilder.WriteString(" ORDER BY c.id ASC")
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying clubs: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		club, scannedTotalCount, scanErr := scanClubRow(rows, true)
		if scanErr != nil {
			return nil, 0, scanErr
		}
		clubs = append(clubs, *club)
		totalCount = scannedTotalCount
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating club rows: %v", ErrDatabaseError, err)
	}
	return clubs, totalCount, nil
}

func (r *clubRepository) GetClubs(filters models.ClubFilters, bounds *geo.Bounds) ([]models.Club, int, error) {
	return r.queryClubs(filters, bounds, true)
}

func (r *clubRepository) GetClubsUnpaged(filters models.ClubFilters, bounds *geo.Bounds) ([]models.Club, int, error) {
	return r.queryClubs(filters, bounds, false)
}

func (r *clubRepository) GetClubByID(id int64) (*models.Club, error) {
	query := "SELECT " + selectClubFields + clubRatingJoin + " WHERE c.id = $1 GROUP BY c.id"
	club, _, err := scanClubRow(r.db.QueryRow(query, id), false)
	return club, err
}

func (r *clubRepository) SlugExists(slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRow("SELECT EXISTS(SELECT 1 FROM clubs WHERE slug = $1)", slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: checking slug existence: %v", ErrDatabaseError, err)
	}
	return exists, nil
}

func (r *clubRepository) CreateClub(executor SQLExecutor, club *models.Club) (*models.Club, error) {
	query := `INSERT INTO clubs
	            (name, slug, description, country, city, latitude, longitude, skill_level,
	             welcomes_beginners, is_verified, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	          RETURNING id, created_at, updated_at`

	currentTime := time.Now()
	club.CreatedAt = currentTime
	club.UpdatedAt = currentTime

	err := executor.QueryRow(query,
		club.Name, club.Slug, club.Description, club.Country, club.City,
		club.Latitude, club.Longitude, club.SkillLevel,
		club.WelcomesBeginners, club.IsVerified, club.IsActive,
		club.CreatedAt, club.UpdatedAt,
	).Scan(&club.ID, &club.CreatedAt, &club.UpdatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("%w: creating club: %v", ErrDatabaseError, err)
	}
	return club, nil
}

func (r *clubRepository) UpdateClub(executor SQLExecutor, club *models.Club) (*models.Club, error) {
	query := `UPDATE clubs SET
	            name = $1, slug = $2, description = $3, country = $4, city = $5,
	            latitude = $6, longitude = $7, skill_level = $8,
	            welcomes_beginners = $9, is_verified = $10, is_active = $11, updated_at = $12
	          WHERE id = $13
	          RETURNING updated_at`
	club.UpdatedAt = time.Now()

	err := executor.QueryRow(query,
		club.Name, club.Slug, club.Description, club.Country, club.City,
		club.Latitude, club.Longitude, club.SkillLevel,
		club.WelcomesBeginners, club.IsVerified, club.IsActive,
		club.UpdatedAt, club.ID,
	).Scan(&club.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("%w: updating club ID %d: %v", ErrDatabaseError, club.ID, err)
	}
	return club, nil
}

func (r *clubRepository) DeleteClub(executor SQLExecutor, id int64) error {
	result, err := executor.Exec("DELETE FROM clubs WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("%w: deleting club ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
