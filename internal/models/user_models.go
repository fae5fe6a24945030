package models

import "time"

// User mirrors the externally-owned identity record. Only the fields this
// service reads for projections and existence checks are modelled.
type User struct {
	ID        int64     `json:"id" db:"id"`
	FullName  string    `json:"full_name" db:"full_name"`
	ImageURL  *string   `json:"image_url,omitempty" db:"image_url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// UserSummary is the short user projection embedded in membership and
// checkout responses.
type UserSummary struct {
	ID       int64   `json:"id"`
	FullName string  `json:"full_name"`
	ImageURL *string `json:"image_url,omitempty"`
}

// Summary returns the projection of u used in nested responses.
func (u *User) Summary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{ID: u.ID, FullName: u.FullName, ImageURL: u.ImageURL}
}
