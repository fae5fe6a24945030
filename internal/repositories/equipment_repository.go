package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"clubhub_backend/internal/models"
)

// EquipmentRepository defines the interface for equipment database operations.
type EquipmentRepository interface {
	CreateEquipment(executor SQLExecutor, equipment *models.Equipment) (*models.Equipment, error)
	GetEquipmentByID(id int64) (*models.Equipment, error)
	// GetEquipmentForUpdate loads the row under a row lock (SELECT ... FOR UPDATE)
	// so checkout transitions serialize per equipment item. Must run inside a
	// transaction.
	GetEquipmentForUpdate(executor SQLExecutor, id int64) (*models.Equipment, error)
	GetClubEquipment(clubID int64, filters models.EquipmentFilters) ([]models.Equipment, int, error)
	// SetAvailability flips is_available and condition together. Only checkout
	// transitions may call this; the two fields never change independently
	// while a checkout is open.
	SetAvailability(executor SQLExecutor, id int64, isAvailable bool, condition string) error
}

type equipmentRepository struct {
	db *sql.DB
}

// NewEquipmentRepository creates a new instance of EquipmentRepository.
func NewEquipmentRepository(db *sql.DB) EquipmentRepository {
	return &equipmentRepository{db: db}
}

const selectEquipmentFields = `
	e.id, e.club_id, e.type, e.condition, e.is_available, e.size, e.brand, e.description,
	e.created_at, e.updated_at
`

func scanEquipmentRow(row scanner, isList bool) (*models.Equipment, int, error) {
	var equipment models.Equipment
	var totalCount int

	scanDest := []interface{}{
		&equipment.ID, &equipment.ClubID, &equipment.Type, &equipment.Condition,
		&equipment.IsAvailable, &equipment.Size, &equipment.Brand, &equipment.Description,
		&equipment.CreatedAt, &equipment.UpdatedAt,
	}
	if isList {
		scanDest = append(scanDest, &totalCount)
	}

	if err := row.Scan(scanDest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, fmt.Errorf("%w: scanning equipment: %v", ErrDatabaseError, err)
	}
	return &equipment, totalCount, nil
}

func (r *equipmentRepository) CreateEquipment(executor SQLExecutor, equipment *models.Equipment) (*models.Equipment, error) {
	query := `INSERT INTO equipment
	            (club_id, type, condition, is_available, size, brand, description, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING id, created_at, updated_at`

	currentTime := time.Now()
	equipment.CreatedAt = currentTime
	equipment.UpdatedAt = currentTime

	err := executor.QueryRow(query,
		equipment.ClubID, equipment.Type, equipment.Condition, equipment.IsAvailable,
		equipment.Size, equipment.Brand, equipment.Description,
		equipment.CreatedAt, equipment.UpdatedAt,
	).Scan(&equipment.ID, &equipment.CreatedAt, &equipment.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("%w: creating equipment: %v", ErrDatabaseError, err)
	}
	return equipment, nil
}

func (r *equipmentRepository) GetEquipmentByID(id int64) (*models.Equipment, error) {
	query := "SELECT " + selectEquipmentFields + " FROM equipment e WHERE e.id = $1"
	equipment, _, err := scanEquipmentRow(r.db.QueryRow(query, id), false)
	return equipment, err
}

func (r *equipmentRepository) GetEquipmentForUpdate(executor SQLExecutor, id int64) (*models.Equipment, error) {
	query := "SELECT " + selectEquipmentFields + " FROM equipment e WHERE e.id = $1 FOR UPDATE OF e"
	equipment, _, err := scanEquipmentRow(executor.QueryRow(query, id), false)
	return equipment, err
}

func (r *equipmentRepository) GetClubEquipment(clubID int64, filters models.EquipmentFilters) ([]models.Equipment, int, error) {
	items := []models.Equipment{}
	var totalCount int

	var queryBuilder strings.Builder
	queryBuilder.WriteString("SELECT " + selectEquipmentFields + ", COUNT(*) OVER() AS total_count FROM equipment e")

	conditions := []string{"e.club_id = $1"}
	args := []interface{}{clubID}
	argCount := 2

	if filters.Type != "" {
		conditions = append(conditions, fmt.Sprintf("e.type = $%d", argCount))
		args = append(args, filters.Type)
		argCount++
	}
	if filters.AvailableOnly {
		conditions = append(conditions, "e.is_available = TRUE")
	}

	queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	queryBuilder.WriteString(" ORDER BY e.type ASC, e.id ASC")

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
		return nil, 0, fmt.Errorf("%w: querying equipment: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		equipment, scannedTotalCount, scanErr := scanEquipmentRow(rows, true)
		if scanErr != nil {
			return nil, 0, scanErr
		}
		items = append(items, *equipment)
		totalCount = scannedTotalCount
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating equipment rows: %v", ErrDatabaseError, err)
	}
	return items, totalCount, nil
}

func (r *equipmentRepository) SetAvailability(executor SQLExecutor, id int64, isAvailable bool, condition string) error {
	query := `UPDATE equipment SET is_available = $1, condition = $2, updated_at = $3 WHERE id = $4`
	result, err := executor.Exec(query, isAvailable, condition, time.Now(), id)
	if err != nil {
		return fmt.Errorf("%w: updating equipment availability for ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
