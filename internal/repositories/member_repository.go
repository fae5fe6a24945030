package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"clubhub_backend/internal/models"
)

// MemberRepository defines the interface for club membership database operations.
type MemberRepository interface {
	// GetMembership resolves the single row for (clubID, userID), active or not.
	GetMembership(executor SQLExecutor, clubID, userID int64) (*models.ClubMember, error)
	// GetMembershipWithUser is GetMembership plus the joined user projection.
	GetMembershipWithUser(clubID, userID int64) (*models.ClubMember, error)
	CreateMembership(executor SQLExecutor, member *models.ClubMember) (*models.ClubMember, error)
	// UpdateMembership persists role and is_active for an existing row.
	UpdateMembership(executor SQLExecutor, member *models.ClubMember) (*models.ClubMember, error)
	GetMembers(clubID int64, filters models.MemberFilters) ([]models.ClubMember, int, error)
}

type memberRepository struct {
	db *sql.DB
}

// NewMemberRepository creates a new instance of MemberRepository.
func NewMemberRepository(db *sql.DB) MemberRepository {
	return &memberRepository{db: db}
}

const selectMemberFields = `
	m.id, m.club_id, m.user_id, m.role, m.is_active, m.joined_at, m.updated_at
`

const selectMemberUserFields = selectMemberFields + `,
	u.id, u.full_name, u.image_url
`

const memberUserJoin = `
	FROM club_members m
	JOIN users u ON m.user_id = u.id
`

func scanMemberRow(row scanner) (*models.ClubMember, error) {
	var member models.ClubMember
	err := row.Scan(
		&member.ID, &member.ClubID, &member.UserID, &member.Role,
		&member.IsActive, &member.JoinedAt, &member.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning club member: %v", ErrDatabaseError, err)
	}
	return &member, nil
}

func scanMemberWithUserRow(row scanner, isList bool) (*models.ClubMember, int, error) {
	var member models.ClubMember
	var user models.UserSummary
	var totalCount int

	scanDest := []interface{}{
		&member.ID, &member.ClubID, &member.UserID, &member.Role,
		&member.IsActive, &member.JoinedAt, &member.UpdatedAt,
		&user.ID, &user.FullName, &user.ImageURL,
	}
	if isList {
		scanDest = append(scanDest, &totalCount)
	}

	if err := row.Scan(scanDest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, fmt.Errorf("%w: scanning club member with user: %v", ErrDatabaseError, err)
	}

	member.User = &user
	return &member, totalCount, nil
}

func (r *memberRepository) GetMembership(executor SQLExecutor, clubID, userID int64) (*models.ClubMember, error) {
	if executor == nil {
		executor = r.db
	}
	query := "SELECT " + selectMemberFields + " FROM club_members m WHERE m.club_id = $1 AND m.user_id = $2"
	return scanMemberRow(executor.QueryRow(query, clubID, userID))
}

func (r *memberRepository) GetMembershipWithUser(clubID, userID int64) (*models.ClubMember, error) {
	query := "SELECT " + selectMemberUserFields + memberUserJoin + " WHERE m.club_id = $1 AND m.user_id = $2"
	member, _, err := scanMemberWithUserRow(r.db.QueryRow(query, clubID, userID), false)
	return member, err
}

func (r *memberRepository) CreateMembership(executor SQLExecutor, member *models.ClubMember) (*models.ClubMember, error) {
	query := `INSERT INTO club_members (club_id, user_id, role, is_active, joined_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id, joined_at, updated_at`

	currentTime := time.Now()
	member.JoinedAt = currentTime
	member.UpdatedAt = currentTime

	err := executor.QueryRow(query,
		member.ClubID, member.UserID, member.Role, member.IsActive,
		member.JoinedAt, member.UpdatedAt,
	).Scan(&member.ID, &member.JoinedAt, &member.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("%w: creating club membership: %v", ErrDatabaseError, err)
	}
	return member, nil
}

func (r *memberRepository) UpdateMembership(executor SQLExecutor, member *models.ClubMember) (*models.ClubMember, error) {
	query := `UPDATE club_members SET role = $1, is_active = $2, updated_at = $3
	          WHERE id = $4
	          RETURNING updated_at`
	member.UpdatedAt = time.Now()

	err := executor.QueryRow(query,
		member.Role, member.IsActive, member.UpdatedAt, member.ID,
	).Scan(&member.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: updating club membership ID %d: %v", ErrDatabaseError, member.ID, err)
	}
	return member, nil
}

func (r *memberRepository) GetMembers(clubID int64, filters models.MemberFilters) ([]models.ClubMember, int, error) {
	members := []models.ClubMember{}
	var totalCount int

	var queryBuilder strings.Builder
	queryBuilder.WriteString("SELECT " + selectMemberUserFields + ", COUNT(*) OVER() AS total_count " + memberUserJoin)

	conditions := []string{"m.club_id = $1"}
	args := []interface{}{clubID}
	argCount := 2

	if filters.ActiveOnly {
		conditions = append(conditions, "m.is_active = TRUE")
	}
	if filters.Role != "" {
		conditions = append(conditions, fmt.Sprintf("m.role = $%d", argCount))
		args = append(args, filters.Role)
		argCount++
	}
	if filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf("u.full_name ILIKE $%d", argCount))
		args = append(args, "%"+filters.Search+"%")
		argCount++
	}

	queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	queryBuilder.WriteString(" ORDER BY m.joined_at ASC")

	if filters.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCount))
		args = append(args, filters.PageSize)
		argCount++
		if filters.Page > 0 {
			queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCount))
			args = append(args, (filters.Page-1)*filters.PageSize)
		}
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying club members: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		member, scannedTotalCount, scanErr := scanMemberWithUserRow(rows, true)
		if scanErr != nil {
			return nil, 0, scanErr
		}
		members = append(members, *member)
		totalCount = scannedTotalCount
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating club member rows: %v", ErrDatabaseError, err)
	}
	return members, totalCount, nil
}
