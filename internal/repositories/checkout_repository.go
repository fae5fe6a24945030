package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"clubhub_backend/internal/models"

	"github.com/lib/pq"
)

// CheckoutRepository defines the interface for equipment checkout database
// operations. A checkout is "open" while returned_at IS NULL; the store
// backstops the one-open-checkout-per-equipment invariant with a partial
// unique index, so CreateCheckout can report ErrDuplicateKey under races.
type CheckoutRepository interface {
	// GetOpenCheckout returns the single open row for the equipment, or ErrNotFound.
	GetOpenCheckout(executor SQLExecutor, equipmentID int64) (*models.EquipmentCheckout, error)
	CreateCheckout(executor SQLExecutor, checkout *models.EquipmentCheckout) (*models.EquipmentCheckout, error)
	// CloseCheckout sets returned_at/condition_in and appends the return note to
	// any existing notes, newline-joined, in a single UPDATE. It refuses to
	// touch rows that are already closed.
	CloseCheckout(executor SQLExecutor, checkoutID int64, returnedAt time.Time, conditionIn string, photoInURL *string, note *string) error
	// GetCheckoutWithDetails loads a checkout with its nested equipment and
	// user summaries for response assembly.
	GetCheckoutWithDetails(checkoutID int64) (*models.EquipmentCheckout, error)
}

type checkoutRepository struct {
	db *sql.DB
}

// NewCheckoutRepository creates a new instance of CheckoutRepository.
func NewCheckoutRepository(db *sql.DB) CheckoutRepository {
	return &checkoutRepository{db: db}
}

const selectCheckoutFields = `
	co.id, co.equipment_id, co.user_id, co.checked_out_at, co.returned_at,
	co.condition_out, co.condition_in, co.photo_out_url, co.photo_in_url, co.notes
`

func scanCheckoutRow(row scanner) (*models.EquipmentCheckout, error) {
	var checkout models.EquipmentCheckout
	err := row.Scan(
		&checkout.ID, &checkout.EquipmentID, &checkout.UserID,
		&checkout.CheckedOutAt, &checkout.ReturnedAt,
		&checkout.ConditionOut, &checkout.ConditionIn,
		&checkout.PhotoOutURL, &checkout.PhotoInURL, &checkout.Notes,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning equipment checkout: %v", ErrDatabaseError, err)
	}
	return &checkout, nil
}

func (r *checkoutRepository) GetOpenCheckout(executor SQLExecutor, equipmentID int64) (*models.EquipmentCheckout, error) {
	if executor == nil {
		executor = r.db
	}
	query := "SELECT " + selectCheckoutFields + ` FROM equipment_checkouts co
	          WHERE co.equipment_id = $1 AND co.returned_at IS NULL`
	return scanCheckoutRow(executor.QueryRow(query, equipmentID))
}

func (r *checkoutRepository) CreateCheckout(executor SQLExecutor, checkout *models.EquipmentCheckout) (*models.EquipmentCheckout, error) {
	query := `INSERT INTO equipment_checkouts
	            (equipment_id, user_id, checked_out_at, condition_out, photo_out_url, notes)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id, checked_out_at`

	err := executor.QueryRow(query,
		checkout.EquipmentID, checkout.UserID, checkout.CheckedOutAt,
		checkout.ConditionOut, checkout.PhotoOutURL, checkout.Notes,
	).Scan(&checkout.ID, &checkout.CheckedOutAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("%w: creating equipment checkout: %v", ErrDatabaseError, err)
	}
	return checkout, nil
}

func (r *checkoutRepository) CloseCheckout(executor SQLExecutor, checkoutID int64, returnedAt time.Time, conditionIn string, photoInURL *string, note *string) error {
	query := `UPDATE equipment_checkouts SET
	            returned_at = $1,
	            condition_in = $2,
	            photo_in_url = COALESCE($3, photo_in_url),
	            notes = CASE
	                WHEN $4::text IS NULL OR $4::text = '' THEN notes
	                WHEN notes IS NULL OR notes = '' THEN $4::text
	                ELSE notes || E'\n' || $4::text
	            END
	          WHERE id = $5 AND returned_at IS NULL`

	result, err := executor.Exec(query, returnedAt, conditionIn, photoInURL, note, checkoutID)
	if err != nil {
		return fmt.Errorf("%w: closing equipment checkout ID %d: %v", ErrDatabaseError, checkoutID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *checkoutRepository) GetCheckoutWithDetails(checkoutID int64) (*models.EquipmentCheckout, error) {
	query := "SELECT " + selectCheckoutFields + ", " + selectEquipmentFields + `,
	          u.id, u.full_name, u.image_url
	          FROM equipment_checkouts co
	          JOIN equipment e ON co.equipment_id = e.id
	          JOIN users u ON co.user_id = u.id
	          WHERE co.id = $1`

	var checkout models.EquipmentCheckout
	var equipment models.Equipment
	var user models.UserSummary

	err := r.db.QueryRow(query, checkoutID).Scan(
		&checkout.ID, &checkout.EquipmentID, &checkout.UserID,
		&checkout.CheckedOutAt, &checkout.ReturnedAt,
		&checkout.ConditionOut, &checkout.ConditionIn,
		&checkout.PhotoOutURL, &checkout.PhotoInURL, &checkout.Notes,
		&equipment.ID, &equipment.ClubID, &equipment.Type, &equipment.Condition,
		&equipment.IsAvailable, &equipment.Size, &equipment.Brand, &equipment.Description,
		&equipment.CreatedAt, &equipment.UpdatedAt,
		&user.ID, &user.FullName, &user.ImageURL,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: fetching checkout ID %d with details: %v", ErrDatabaseError, checkoutID, err)
	}

	checkout.Equipment = &equipment
	checkout.User = &user
	return &checkout, nil
}
