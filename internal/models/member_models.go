package models

import "time"

// Club roles, ordered from most to least privileged.
const (
	RoleOwner              = "OWNER"
	RoleAdmin              = "ADMIN"
	RoleCoach              = "COACH"
	RoleEquipmentManager   = "EQUIPMENT_MANAGER"
	RoleTreasurer          = "TREASURER"
	RoleSessionCoordinator = "SESSION_COORDINATOR"
	RoleMember             = "MEMBER"
)

// IsValidRole reports whether role is a known club role.
func IsValidRole(role string) bool {
	switch role {
	case RoleOwner, RoleAdmin, RoleCoach, RoleEquipmentManager,
		RoleTreasurer, RoleSessionCoordinator, RoleMember:
		return true
	default:
		return false
	}
}

// IsClubAdminRole reports whether role may administer club membership and profile.
func IsClubAdminRole(role string) bool {
	return role == RoleOwner || role == RoleAdmin
}

// IsEquipmentAdminRole reports whether role may manage equipment and force returns.
func IsEquipmentAdminRole(role string) bool {
	return role == RoleOwner || role == RoleAdmin || role == RoleEquipmentManager
}

// ClubMember links a user to a club with a role. At most one row exists per
// (club_id, user_id) pair; leaving toggles IsActive off, rejoining toggles it
// back on, the row itself is never deleted.
type ClubMember struct {
	ID        int64     `json:"id" db:"id"`
	ClubID    int64     `json:"club_id" db:"club_id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Role      string    `json:"role" db:"role"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	JoinedAt  time.Time `json:"joined_at" db:"joined_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	User *UserSummary `json:"user,omitempty"`
}

// MemberFilters carries the list parameters for club member queries.
type MemberFilters struct {
	Role       string
	Search     string // substring match over the member's display name
	ActiveOnly bool
	Page       int
	PageSize   int
}
