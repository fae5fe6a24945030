package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"clubhub_backend/internal/models"
	"clubhub_backend/internal/repositories"
)

// Custom errors for equipment and checkout operations.
var (
	ErrEquipmentNotFound    = errors.New("equipment not found")
	ErrEquipmentCheckedOut  = errors.New("equipment already has an open checkout")
	ErrNoOpenCheckout       = errors.New("equipment has no open checkout to return")
	ErrInvalidCondition     = errors.New("invalid equipment condition")
	ErrNotClubMember        = errors.New("caller is not an active member of the owning club")
	ErrNotEquipmentManager  = errors.New("caller may not manage equipment for this club")
	ErrNotBorrowerOrManager = errors.New("caller is neither the borrower nor an equipment manager for this club")
)

// --- Data Transfer Objects (DTOs) ---

// CreateEquipmentRequest is used for registering a club-owned equipment item.
type CreateEquipmentRequest struct {
	Type        string  `json:"type" binding:"required"`
	Condition   string  `json:"condition"`
	Size        *string `json:"size"`
	Brand       *string `json:"brand"`
	Description *string `json:"description"`
}

// CheckoutEquipmentRequest is used for opening a checkout.
type CheckoutEquipmentRequest struct {
	PhotoOutURL *string `json:"photo_out_url"`
	Notes       *string `json:"notes"`
}

// ReturnEquipmentRequest is used for closing the open checkout.
type ReturnEquipmentRequest struct {
	ConditionIn string  `json:"condition_in" binding:"required"`
	PhotoInURL  *string `json:"photo_in_url"`
	Notes       *string `json:"notes"`
}

// --- EquipmentService Interface ---

type EquipmentService interface {
	CreateEquipment(clubID, callerID int64, req CreateEquipmentRequest) (*models.Equipment, error)
	GetClubEquipment(clubID int64, filters models.EquipmentFilters) ([]models.Equipment, int, error)
	// CheckoutEquipment opens a checkout for the caller. The open-checkout row
	// is the source of truth for exclusivity; is_available must agree and both
	// are checked and written inside one transaction under a row lock.
	CheckoutEquipment(equipmentID, callerID int64, req CheckoutEquipmentRequest) (*models.EquipmentCheckout, error)
	// ReturnEquipment closes the open checkout and flips the equipment back to
	// available with the reported condition, atomically.
	ReturnEquipment(equipmentID, callerID int64, req ReturnEquipmentRequest) (*models.EquipmentCheckout, error)
}

type equipmentService struct {
	equipmentRepo repositories.EquipmentRepository
	checkoutRepo  repositories.CheckoutRepository
	memberRepo    repositories.MemberRepository
	clubRepo      repositories.ClubRepository
	db            *sql.DB // For managing transactions
}

// NewEquipmentService creates a new instance of EquipmentService.
func NewEquipmentService(
	er repositories.EquipmentRepository,
	chr repositories.CheckoutRepository,
	mr repositories.MemberRepository,
	cr repositories.ClubRepository,
	db *sql.DB,
) EquipmentService {
	return &equipmentService{
		equipmentRepo: er,
		checkoutRepo:  chr,
		memberRepo:    mr,
		clubRepo:      cr,
		db:            db,
	}
}

// --- Method Implementations ---

func (s *equipmentService) CreateEquipment(clubID, callerID int64, req CreateEquipmentRequest) (*models.Equipment, error) {
	if _, err := s.clubRepo.GetClubByID(clubID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("failed to fetch club for equipment creation: %w", err)
	}

	if err := s.requireEquipmentManager(clubID, callerID, ErrNotEquipmentManager); err != nil {
		return nil, err
	}

	if req.Condition == "" {
		req.Condition = models.ConditionGood
	}
	if !models.IsValidCondition(req.Condition) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCondition, req.Condition)
	}

	equipment := models.Equipment{
		ClubID:      clubID,
		Type:        req.Type,
		Condition:   req.Condition,
		IsAvailable: true,
		Size:        req.Size,
		Brand:       req.Brand,
		Description: req.Description,
	}
	if _, err := s.equipmentRepo.CreateEquipment(s.db, &equipment); err != nil {
		return nil, fmt.Errorf("failed to create equipment record: %w", err)
	}
	return &equipment, nil
}

func (s *equipmentService) GetClubEquipment(clubID int64, filters models.EquipmentFilters) ([]models.Equipment, int, error) {
	if _, err := s.clubRepo.GetClubByID(clubID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, 0, ErrClubNotFound
		}
		return nil, 0, fmt.Errorf("failed to fetch club for equipment listing: %w", err)
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

	items, totalCount, err := s.equipmentRepo.GetClubEquipment(clubID, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get club equipment: %w", err)
	}
	return items, totalCount, nil
}

func (s *equipmentService) CheckoutEquipment(equipmentID, callerID int64, req CheckoutEquipmentRequest) (*models.EquipmentCheckout, error) {
	equipment, err := s.equipmentRepo.GetEquipmentByID(equipmentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEquipmentNotFound
		}
		return nil, fmt.Errorf("failed to fetch equipment for checkout: %w", err)
	}

	// Any active member of the owning club may borrow.
	if err := s.requireActiveMembership(equipment.ClubID, callerID); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	// Re-read under a row lock so two concurrent borrowers serialize here
	// rather than both observing "available".
	equipment, err = s.equipmentRepo.GetEquipmentForUpdate(tx, equipmentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEquipmentNotFound
		}
		return nil, fmt.Errorf("failed to lock equipment for checkout: %w", err)
	}

	_, err = s.checkoutRepo.GetOpenCheckout(tx, equipmentID)
	if err == nil {
		return nil, ErrEquipmentCheckedOut
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for open checkout: %w", err)
	}
	if !equipment.IsAvailable {
		// No open row but flagged unavailable: the flag and the row must agree,
		// so refuse rather than guess.
		return nil, ErrEquipmentCheckedOut
	}

	checkout := models.EquipmentCheckout{
		EquipmentID:  equipmentID,
		UserID:       callerID,
		CheckedOutAt: time.Now(),
		ConditionOut: equipment.Condition,
		PhotoOutURL:  req.PhotoOutURL,
		Notes:        req.Notes,
	}
	if _, err := s.checkoutRepo.CreateCheckout(tx, &checkout); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrEquipmentCheckedOut
		}
		return nil, fmt.Errorf("failed to create checkout record: %w", err)
	}

	if err := s.equipmentRepo.SetAvailability(tx, equipmentID, false, equipment.Condition); err != nil {
		return nil, fmt.Errorf("failed to mark equipment unavailable: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit checkout transaction: %w", err)
	}
	return s.checkoutWithDetails(checkout.ID)
}

func (s *equipmentService) ReturnEquipment(equipmentID, callerID int64, req ReturnEquipmentRequest) (*models.EquipmentCheckout, error) {
	if !models.IsValidCondition(req.ConditionIn) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCondition, req.ConditionIn)
	}

	equipment, err := s.equipmentRepo.GetEquipmentByID(equipmentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEquipmentNotFound
		}
		return nil, fmt.Errorf("failed to fetch equipment for return: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := s.equipmentRepo.GetEquipmentForUpdate(tx, equipmentID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEquipmentNotFound
		}
		return nil, fmt.Errorf("failed to lock equipment for return: %w", err)
	}

	openCheckout, err := s.checkoutRepo.GetOpenCheckout(tx, equipmentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNoOpenCheckout
		}
		return nil, fmt.Errorf("failed to fetch open checkout: %w", err)
	}

	// The borrower may return their own checkout; otherwise an administrative
	// club role (OWNER, ADMIN, EQUIPMENT_MANAGER) is required.
	if openCheckout.UserID != callerID {
		if err := s.requireEquipmentManager(equipment.ClubID, callerID, ErrNotBorrowerOrManager); err != nil {
			return nil, err
		}
	}

	// Close the checkout and flip the equipment back to available in the same
	// transaction: applied separately, a concurrent borrower could observe an
	// available item with an open checkout, or the reverse.
	returnedAt := time.Now()
	if err := s.checkoutRepo.CloseCheckout(tx, openCheckout.ID, returnedAt, req.ConditionIn, req.PhotoInURL, req.Notes); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNoOpenCheckout
		}
		return nil, fmt.Errorf("failed to close checkout: %w", err)
	}
	if err := s.equipmentRepo.SetAvailability(tx, equipmentID, true, req.ConditionIn); err != nil {
		return nil, fmt.Errorf("failed to mark equipment available: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit return transaction: %w", err)
	}
	return s.checkoutWithDetails(openCheckout.ID)
}

func (s *equipmentService) checkoutWithDetails(checkoutID int64) (*models.EquipmentCheckout, error) {
	checkout, err := s.checkoutRepo.GetCheckoutWithDetails(checkoutID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch checkout details: %w", err)
	}
	return checkout, nil
}

func (s *equipmentService) requireActiveMembership(clubID, callerID int64) error {
	membership, err := s.memberRepo.GetMembership(nil, clubID, callerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotClubMember
		}
		return fmt.Errorf("failed to resolve caller membership: %w", err)
	}
	if !membership.IsActive {
		return ErrNotClubMember
	}
	return nil
}

func (s *equipmentService) requireEquipmentManager(clubID, callerID int64, denyErr error) error {
	membership, err := s.memberRepo.GetMembership(nil, clubID, callerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return denyErr
		}
		return fmt.Errorf("failed to resolve caller membership: %w", err)
	}
	if !membership.IsActive || !models.IsEquipmentAdminRole(membership.Role) {
		return denyErr
	}
	return nil
}
