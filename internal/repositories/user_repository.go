package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"clubhub_backend/internal/models"
)

// UserRepository reads the externally-owned user records this service projects
// into responses. No mutation methods: identity management is not ours.
type UserRepository interface {
	GetUserByID(id int64) (*models.User, error)
}

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetUserByID(id int64) (*models.User, error) {
	query := `SELECT id, full_name, image_url, created_at FROM users WHERE id = $1`

	var user models.User
	err := r.db.QueryRow(query, id).Scan(&user.ID, &user.FullName, &user.ImageURL, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: fetching user ID %d: %v", ErrDatabaseError, id, err)
	}
	return &user, nil
}
