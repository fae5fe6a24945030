package models

import "time"

// Equipment conditions.
const (
	ConditionNew  = "NEW"
	ConditionGood = "GOOD"
	ConditionFair = "FAIR"
	ConditionPoor = "POOR"
)

// IsValidCondition reports whether c is a known equipment condition.
func IsValidCondition(c string) bool {
	switch c {
	case ConditionNew, ConditionGood, ConditionFair, ConditionPoor:
		return true
	default:
		return false
	}
}

// Equipment is a shared physical item owned by a club. IsAvailable and
// Condition change only as a side effect of checkout/return transitions.
type Equipment struct {
	ID          int64     `json:"id" db:"id"`
	ClubID      int64     `json:"club_id" db:"club_id"`
	Type        string    `json:"type" db:"type"`
	Condition   string    `json:"condition" db:"condition"`
	IsAvailable bool      `json:"is_available" db:"is_available"`
	Size        *string   `json:"size,omitempty" db:"size"`
	Brand       *string   `json:"brand,omitempty" db:"brand"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// EquipmentCheckout is a borrowing record for one equipment item.
// A nil ReturnedAt means the item is currently out; for a given equipment id
// at most one row may be open at any time.
type EquipmentCheckout struct {
	ID           int64      `json:"id" db:"id"`
	EquipmentID  int64      `json:"equipment_id" db:"equipment_id"`
	UserID       int64      `json:"user_id" db:"user_id"`
	CheckedOutAt time.Time  `json:"checked_out_at" db:"checked_out_at"`
	ReturnedAt   *time.Time `json:"returned_at,omitempty" db:"returned_at"`
	ConditionOut string     `json:"condition_out" db:"condition_out"`
	ConditionIn  *string    `json:"condition_in,omitempty" db:"condition_in"`
	PhotoOutURL  *string    `json:"photo_out_url,omitempty" db:"photo_out_url"`
	PhotoInURL   *string    `json:"photo_in_url,omitempty" db:"photo_in_url"`
	Notes        *string    `json:"notes,omitempty" db:"notes"`

	Equipment *Equipment   `json:"equipment,omitempty"`
	User      *UserSummary `json:"user,omitempty"`
}

// EquipmentFilters carries the list parameters for per-club equipment queries.
type EquipmentFilters struct {
	Type          string
	AvailableOnly bool
	Page          int
	PageSize      int
}
