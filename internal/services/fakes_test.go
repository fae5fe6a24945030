package services

import (
	"time"

	"clubhub_backend/internal/models"
	"clubhub_backend/internal/repositories"
	"clubhub_backend/pkg/geo"
)

// Hand-written repository fakes. Each method delegates to a function field;
// calling a method a test did not stub is a test bug, so it panics loudly.

type fakeClubRepo struct {
	createClub      func(executor repositories.SQLExecutor, club *models.Club) (*models.Club, error)
	getClubByID     func(id int64) (*models.Club, error)
	slugExists      func(slug string) (bool, error)
	getClubs        func(filters models.ClubFilters, bounds *geo.Bounds) ([]models.Club, int, error)
	getClubsUnpaged func(filters models.ClubFilters, bounds *geo.Bounds) ([]models.Club, int, error)
	updateClub      func(executor repositories.SQLExecutor, club *models.Club) (*models.Club, error)
	deleteClub      func(executor repositories.SQLExecutor, id int64) error
}

func (f *fakeClubRepo) CreateClub(executor repositories.SQLExecutor, club *models.Club) (*models.Club, error) {
	if f.createClub == nil {
		panic("unexpected call to CreateClub")
	}
	return f.createClub(executor, club)
}

func (f *fakeClubRepo) GetClubByID(id int64) (*models.Club, error) {
	if f.getClubByID == nil {
		panic("unexpected call to GetClubByID")
	}
	return f.getClubByID(id)
}

func (f *fakeClubRepo) SlugExists(slug string) (bool, error) {
	if f.slugExists == nil {
		panic("unexpected call to SlugExists")
	}
	return f.slugExists(slug)
}

func (f *fakeClubRepo) GetClubs(filters models.ClubFilters, bounds *geo.Bounds) ([]models.Club, int, error) {
	if f.getClubs == nil {
		panic("unexpected call to GetClubs")
	}
	return f.getClubs(filters, bounds)
}

func (f *fakeClubRepo) GetClubsUnpaged(filters models.ClubFilters, bounds *geo.Bounds) ([]models.Club, int, error) {
	if f.getClubsUnpaged == nil {
		panic("unexpected call to GetClubsUnpaged")
	}
	return f.getClubsUnpaged(filters, bounds)
}

func (f *fakeClubRepo) UpdateClub(executor repositories.SQLExecutor, club *models.Club) (*models.Club, error) {
	if f.updateClub == nil {
		panic("unexpected call to UpdateClub")
	}
	return f.updateClub(executor, club)
}

func (f *fakeClubRepo) DeleteClub(executor repositories.SQLExecutor, id int64) error {
	if f.deleteClub == nil {
		panic("unexpected call to DeleteClub")
	}
	return f.deleteClub(executor, id)
}

type fakeMemberRepo struct {
	getMembership         func(executor repositories.SQLExecutor, clubID, userID int64) (*models.ClubMember, error)
	getMembershipWithUser func(clubID, userID int64) (*models.ClubMember, error)
	createMembership      func(executor repositories.SQLExecutor, member *models.ClubMember) (*models.ClubMember, error)
	updateMembership      func(executor repositories.SQLExecutor, member *models.ClubMember) (*models.ClubMember, error)
	getMembers            func(clubID int64, filters models.MemberFilters) ([]models.ClubMember, int, error)
}

func (f *fakeMemberRepo) GetMembership(executor repositories.SQLExecutor, clubID, userID int64) (*models.ClubMember, error) {
	if f.getMembership == nil {
		panic("unexpected call to GetMembership")
	}
	return f.getMembership(executor, clubID, userID)
}

func (f *fakeMemberRepo) GetMembershipWithUser(clubID, userID int64) (*models.ClubMember, error) {
	if f.getMembershipWithUser == nil {
		panic("unexpected call to GetMembershipWithUser")
	}
	return f.getMembershipWithUser(clubID, userID)
}

func (f *fakeMemberRepo) CreateMembership(executor repositories.SQLExecutor, member *models.ClubMember) (*models.ClubMember, error) {
	if f.createMembership == nil {
		panic("unexpected call to CreateMembership")
	}
	return f.createMembership(executor, member)
}

func (f *fakeMemberRepo) UpdateMembership(executor repositories.SQLExecutor, member *models.ClubMember) (*models.ClubMember, error) {
	if f.updateMembership == nil {
		panic("unexpected call to UpdateMembership")
	}
	return f.updateMembership(executor, member)
}

func (f *fakeMemberRepo) GetMembers(clubID int64, filters models.MemberFilters) ([]models.ClubMember, int, error) {
	if f.getMembers == nil {
		panic("unexpected call to GetMembers")
	}
	return f.getMembers(clubID, filters)
}

type fakeUserRepo struct {
	getUserByID func(id int64) (*models.User, error)
}

func (f *fakeUserRepo) GetUserByID(id int64) (*models.User, error) {
	if f.getUserByID == nil {
		panic("unexpected call to GetUserByID")
	}
	return f.getUserByID(id)
}

type fakeEquipmentRepo struct {
	createEquipment       func(executor repositories.SQLExecutor, equipment *models.Equipment) (*models.Equipment, error)
	getEquipmentByID      func(id int64) (*models.Equipment, error)
	getEquipmentForUpdate func(executor repositories.SQLExecutor, id int64) (*models.Equipment, error)
	getClubEquipment      func(clubID int64, filters models.EquipmentFilters) ([]models.Equipment, int, error)
	setAvailability       func(executor repositories.SQLExecutor, id int64, isAvailable bool, condition string) error
}

func (f *fakeEquipmentRepo) CreateEquipment(executor repositories.SQLExecutor, equipment *models.Equipment) (*models.Equipment, error) {
	if f.createEquipment == nil {
		panic("unexpected call to CreateEquipment")
	}
	return f.createEquipment(executor, equipment)
}

func (f *fakeEquipmentRepo) GetEquipmentByID(id int64) (*models.Equipment, error) {
	if f.getEquipmentByID == nil {
		panic("unexpected call to GetEquipmentByID")
	}
	return f.getEquipmentByID(id)
}

func (f *fakeEquipmentRepo) GetEquipmentForUpdate(executor repositories.SQLExecutor, id int64) (*models.Equipment, error) {
	if f.getEquipmentForUpdate == nil {
		panic("unexpected call to GetEquipmentForUpdate")
	}
	return f.getEquipmentForUpdate(executor, id)
}

func (f *fakeEquipmentRepo) GetClubEquipment(clubID int64, filters models.EquipmentFilters) ([]models.Equipment, int, error) {
	if f.getClubEquipment == nil {
		panic("unexpected call to GetClubEquipment")
	}
	return f.getClubEquipment(clubID, filters)
}

func (f *fakeEquipmentRepo) SetAvailability(executor repositories.SQLExecutor, id int64, isAvailable bool, condition string) error {
	if f.setAvailability == nil {
		panic("unexpected call to SetAvailability")
	}
	return f.setAvailability(executor, id, isAvailable, condition)
}

type fakeCheckoutRepo struct {
	getOpenCheckout        func(executor repositories.SQLExecutor, equipmentID int64) (*models.EquipmentCheckout, error)
	createCheckout         func(executor repositories.SQLExecutor, checkout *models.EquipmentCheckout) (*models.EquipmentCheckout, error)
	closeCheckout          func(executor repositories.SQLExecutor, checkoutID int64, returnedAt time.Time, conditionIn string, photoInURL *string, note *string) error
	getCheckoutWithDetails func(checkoutID int64) (*models.EquipmentCheckout, error)
}

func (f *fakeCheckoutRepo) GetOpenCheckout(executor repositories.SQLExecutor, equipmentID int64) (*models.EquipmentCheckout, error) {
	if f.getOpenCheckout == nil {
		panic("unexpected call to GetOpenCheckout")
	}
	return f.getOpenCheckout(executor, equipmentID)
}

func (f *fakeCheckoutRepo) CreateCheckout(executor repositories.SQLExecutor, checkout *models.EquipmentCheckout) (*models.EquipmentCheckout, error) {
	if f.createCheckout == nil {
		panic("unexpected call to CreateCheckout")
	}
	return f.createCheckout(executor, checkout)
}

func (f *fakeCheckoutRepo) CloseCheckout(executor repositories.SQLExecutor, checkoutID int64, returnedAt time.Time, conditionIn string, photoInURL *string, note *string) error {
	if f.closeCheckout == nil {
		panic("unexpected call to CloseCheckout")
	}
	return f.closeCheckout(executor, checkoutID, returnedAt, conditionIn, photoInURL, note)
}

func (f *fakeCheckoutRepo) GetCheckoutWithDetails(checkoutID int64) (*models.EquipmentCheckout, error) {
	if f.getCheckoutWithDetails == nil {
		panic("unexpected call to GetCheckoutWithDetails")
	}
	return f.getCheckoutWithDetails(checkoutID)
}
