package services

import (
	"database/sql"
	"errors"
	"fmt"

	"clubhub_backend/internal/models"
	"clubhub_backend/internal/repositories"
)

// Custom errors for membership operations.
var (
	ErrAlreadyMember      = errors.New("user is already an active member of this club")
	ErrUserNotFound       = errors.New("target user not found")
	ErrInvalidRole        = errors.New("invalid club role")
	ErrMembershipNotFound = errors.New("club membership not found")
)

// --- Data Transfer Objects (DTOs) ---

// JoinClubRequest is the body of a join-type request. The meaning of the body
// depends on caller privilege: OWNER/ADMIN callers may name a target user and
// role (administrative add/role update); everyone else may only act on their
// own membership and must leave both fields empty.
type JoinClubRequest struct {
	TargetUserID *int64  `json:"user_id"`
	Role         *string `json:"role"`
}

// --- MembershipService Interface ---

type MembershipService interface {
	JoinClub(clubID, callerID int64, req JoinClubRequest) (*models.ClubMember, error)
	GetClubMembers(clubID int64, filters models.MemberFilters) ([]models.ClubMember, int, error)
}

type membershipService struct {
	memberRepo repositories.MemberRepository
	clubRepo   repositories.ClubRepository
	userRepo   repositories.UserRepository
	db         *sql.DB // For managing transactions
}

// NewMembershipService creates a new instance of MembershipService.
func NewMembershipService(
	mr repositories.MemberRepository,
	cr repositories.ClubRepository,
	ur repositories.UserRepository,
	db *sql.DB,
) MembershipService {
	return &membershipService{memberRepo: mr, clubRepo: cr, userRepo: ur, db: db}
}

// --- Method Implementations ---

func (s *membershipService) JoinClub(clubID, callerID int64, req JoinClubRequest) (*models.ClubMember, error) {
	if _, err := s.clubRepo.GetClubByID(clubID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("failed to fetch club for join: %w", err)
	}

	// Caller privilege is resolved before the body is interpreted, because the
	// body means different things for admins and non-admins.
	callerMembership, err := s.memberRepo.GetMembership(nil, clubID, callerID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to resolve caller membership: %w", err)
	}
	callerIsAdmin := callerMembership != nil && callerMembership.IsActive &&
		models.IsClubAdminRole(callerMembership.Role)

	if callerIsAdmin && req.TargetUserID != nil {
		return s.adminAddMember(clubID, *req.TargetUserID, req.Role)
	}

	// Non-admins may only act on their own membership; a named target or role
	// cannot mean what the caller intended, so it is rejected outright.
	if req.TargetUserID != nil && *req.TargetUserID != callerID {
		return nil, ErrNotClubAdmin
	}
	if req.Role != nil {
		return nil, ErrNotClubAdmin
	}

	return s.selfJoin(clubID, callerID, callerMembership)
}

// adminAddMember upserts the target's membership: created with the requested
// role when absent, role-updated and forced active when present.
func (s *membershipService) adminAddMember(clubID, targetUserID int64, requestedRole *string) (*models.ClubMember, error) {
	role := models.RoleMember
	if requestedRole != nil {
		if !models.IsValidRole(*requestedRole) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRole, *requestedRole)
		}
		role = *requestedRole
	}

	if _, err := s.userRepo.GetUserByID(targetUserID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch target user: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	existing, err := s.memberRepo.GetMembership(tx, clubID, targetUserID)
	switch {
	case err == nil:
		existing.Role = role
		existing.IsActive = true
		if _, err := s.memberRepo.UpdateMembership(tx, existing); err != nil {
			return nil, fmt.Errorf("failed to update membership role: %w", err)
		}
	case errors.Is(err, repositories.ErrNotFound):
		created := models.ClubMember{ClubID: clubID, UserID: targetUserID, Role: role, IsActive: true}
		if _, err := s.memberRepo.CreateMembership(tx, &created); err != nil {
			return nil, fmt.Errorf("failed to create membership: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to resolve target membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit membership transaction: %w", err)
	}
	return s.membershipWithUser(clubID, targetUserID)
}

// selfJoin handles the non-admin path: reactivate an inactive row without
// touching its role, create a MEMBER row when none exists, conflict otherwise.
func (s *membershipService) selfJoin(clubID, callerID int64, existing *models.ClubMember) (*models.ClubMember, error) {
	if existing != nil {
		if existing.IsActive {
			return nil, ErrAlreadyMember
		}
		existing.IsActive = true
		if _, err := s.memberRepo.UpdateMembership(s.db, existing); err != nil {
			return nil, fmt.Errorf("failed to reactivate membership: %w", err)
		}
		return s.membershipWithUser(clubID, callerID)
	}

	if _, err := s.userRepo.GetUserByID(callerID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to fetch caller user: %w", err)
	}

	created := models.ClubMember{ClubID: clubID, UserID: callerID, Role: models.RoleMember, IsActive: true}
	if _, err := s.memberRepo.CreateMembership(s.db, &created); err != nil {
		return nil, fmt.Errorf("failed to create membership: %w", err)
	}
	return s.membershipWithUser(clubID, callerID)
}

// membershipWithUser re-reads the resulting row with its user projection for
// the response.
func (s *membershipService) membershipWithUser(clubID, userID int64) (*models.ClubMember, error) {
	member, err := s.memberRepo.GetMembershipWithUser(clubID, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMembershipNotFound
		}
		return nil, fmt.Errorf("failed to fetch resulting membership: %w", err)
	}
	return member, nil
}

func (s *membershipService) GetClubMembers(clubID int64, filters models.MemberFilters) ([]models.ClubMember, int, error) {
	if _, err := s.clubRepo.GetClubByID(clubID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, 0, ErrClubNotFound
		}
		return nil, 0, fmt.Errorf("failed to fetch club for member listing: %w", err)
	}

	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = DefaultPageSize
	}
	if filters.PageSize > MaxPageSize {
		filters.PageSize = MaxPageSize
	}
	if filters.Role != "" && !models.IsValidRole(filters.Role) {
		return nil, 0, fmt.Errorf("%w: %q", ErrInvalidRole, filters.Role)
	}

	members, totalCount, err := s.memberRepo.GetMembers(clubID, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get club members: %w", err)
	}
	return members, totalCount, nil
}
