package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubhub_backend/internal/models"
	"clubhub_backend/internal/repositories"
	"clubhub_backend/pkg/geo"
)

func f64(v float64) *float64 { return &v }

// Three clubs due north of (40, -74) at roughly 2, 8 and 15 km.
func seededClubs() []models.Club {
	return []models.Club{
		{ID: 1, Name: "Near Club", Latitude: 40.018, Longitude: -74.0},
		{ID: 2, Name: "Mid Club", Latitude: 40.072, Longitude: -74.0},
		{ID: 3, Name: "Far Club", Latitude: 40.135, Longitude: -74.0},
	}
}

func TestSearchClubsDistanceSortFiltersAndOrders(t *testing.T) {
	clubRepo := &fakeClubRepo{
		getClubsUnpaged: func(filters models.ClubFilters, bounds *geo.Bounds) ([]models.Club, int, error) {
			require.NotNil(t, bounds)
			return seededClubs(), 3, nil
		},
	}
	svc := NewClubService(clubRepo, &fakeMemberRepo{}, nil)

	clubs, total, err := svc.SearchClubs(models.ClubFilters{
		Lat:      f64(40.0),
		Lng:      f64(-74.0),
		RadiusKm: 10,
		SortBy:   models.SortByDistance,
	})
	require.NoError(t, err)

	// The 15 km club is inside the bounding box but outside the radius, so it
	// is dropped from the page while the total keeps counting it.
	require.Len(t, clubs, 2)
	assert.Equal(t, "Near Club", clubs[0].Name)
	assert.Equal(t, "Mid Club", clubs[1].Name)
	assert.Equal(t, 3, total)

	for _, club := range clubs {
		require.NotNil(t, club.DistanceKm)
		assert.LessOrEqual(t, *club.DistanceKm, 10.0)
	}
	assert.InDelta(t, 2.0, *clubs[0].DistanceKm, 0.1)
	assert.InDelta(t, 8.0, *clubs[1].DistanceKm, 0.1)
}

func TestSearchClubsDistanceSortDescending(t *testing.T) {
	clubRepo := &fakeClubRepo{
		getClubsUnpaged: func(models.ClubFilters, *geo.Bounds) ([]models.Club, int, error) {
			return seededClubs(), 3, nil
		},
	}
	svc := NewClubService(clubRepo, &fakeMemberRepo{}, nil)

	clubs, _, err := svc.SearchClubs(models.ClubFilters{
		Lat:       f64(40.0),
		Lng:       f64(-74.0),
		RadiusKm:  10,
		SortBy:    models.SortByDistance,
		SortOrder: models.SortOrderDesc,
	})
	require.NoError(t, err)
	require.Len(t, clubs, 2)
	assert.Equal(t, "Mid Club", clubs[0].Name)
	assert.Equal(t, "Near Club", clubs[1].Name)
}

func TestSearchClubsDistanceSortPagination(t *testing.T) {
	clubRepo := &fakeClubRepo{
		getClubsUnpaged: func(models.ClubFilters, *geo.Bounds) ([]models.Club, int, error) {
			return seededClubs(), 3, nil
		},
	}
	svc := NewClubService(clubRepo, &fakeMemberRepo{}, nil)

	clubs, total, err := svc.SearchClubs(models.ClubFilters{
		Lat:      f64(40.0),
		Lng:      f64(-74.0),
		RadiusKm: 10,
		SortBy:   models.SortByDistance,
		Page:     2,
		PageSize: 1,
	})
	require.NoError(t, err)
	require.Len(t, clubs, 1)
	assert.Equal(t, "Mid Club", clubs[0].Name)
	assert.Equal(t, 3, total)

	// A page past the end is empty, not an error.
	clubs, _, err = svc.SearchClubs(models.ClubFilters{
		Lat:      f64(40.0),
		Lng:      f64(-74.0),
		RadiusKm: 10,
		SortBy:   models.SortByDistance,
		Page:     5,
		PageSize: 1,
	})
	require.NoError(t, err)
	assert.Empty(t, clubs)
}

func TestSearchClubsDefaultsAndClamping(t *testing.T) {
	var captured models.ClubFilters
	clubRepo := &fakeClubRepo{
		getClubs: func(filters models.ClubFilters, bounds *geo.Bounds) ([]models.Club, int, error) {
			captured = filters
			return []models.Club{}, 0, nil
		},
	}
	svc := NewClubService(clubRepo, &fakeMemberRepo{}, nil)

	_, _, err := svc.SearchClubs(models.ClubFilters{})
	require.NoError(t, err)
	assert.Equal(t, 1, captured.Page)
	assert.Equal(t, DefaultPageSize, captured.PageSize)
	assert.Equal(t, models.SortByName, captured.SortBy)
	assert.Equal(t, models.SortOrderAsc, captured.SortOrder)

	_, _, err = svc.SearchClubs(models.ClubFilters{PageSize: 500})
	require.NoError(t, err)
	assert.Equal(t, MaxPageSize, captured.PageSize)

	// Radius defaults only when a center point is present.
	_, _, err = svc.SearchClubs(models.ClubFilters{Lat: f64(40), Lng: f64(-74)})
	require.NoError(t, err)
	assert.Equal(t, DefaultRadiusKm, captured.RadiusKm)
}

func TestSearchClubsValidation(t *testing.T) {
	svc := NewClubService(&fakeClubRepo{}, &fakeMemberRepo{}, nil)

	cases := []struct {
		name    string
		filters models.ClubFilters
	}{
		{"unknown sort field", models.ClubFilters{SortBy: "popularity"}},
		{"unknown sort order", models.ClubFilters{SortOrder: "sideways"}},
		{"unknown skill level", models.ClubFilters{SkillLevel: "pro"}},
		{"lat without lng", models.ClubFilters{Lat: f64(40)}},
		{"lat out of range", models.ClubFilters{Lat: f64(95), Lng: f64(0)}},
		{"lng out of range", models.ClubFilters{Lat: f64(0), Lng: f64(181)}},
		{"negative radius", models.ClubFilters{Lat: f64(0), Lng: f64(0), RadiusKm: -1}},
		{"distance sort without center", models.ClubFilters{SortBy: models.SortByDistance}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.SearchClubs(tc.filters)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestSearchClubsRoundsAverageRating(t *testing.T) {
	clubRepo := &fakeClubRepo{
		getClubs: func(models.ClubFilters, *geo.Bounds) ([]models.Club, int, error) {
			return []models.Club{{ID: 1, Name: "Rated", AverageRating: f64(4.2666)}}, 1, nil
		},
	}
	svc := NewClubService(clubRepo, &fakeMemberRepo{}, nil)

	clubs, _, err := svc.SearchClubs(models.ClubFilters{})
	require.NoError(t, err)
	require.Len(t, clubs, 1)
	require.NotNil(t, clubs[0].AverageRating)
	assert.Equal(t, 4.3, *clubs[0].AverageRating)
}

func TestCreateClubAssignsOwnerAndUniqueSlug(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	var createdClub *models.Club
	clubRepo := &fakeClubRepo{
		slugExists: func(slug string) (bool, error) {
			// The base slug is taken; the first suffixed candidate is free.
			return slug == "sydney-club", nil
		},
		createClub: func(_ repositories.SQLExecutor, club *models.Club) (*models.Club, error) {
			club.ID = 42
			createdClub = club
			return club, nil
		},
	}
	var createdMembership *models.ClubMember
	memberRepo := &fakeMemberRepo{
		createMembership: func(_ repositories.SQLExecutor, member *models.ClubMember) (*models.ClubMember, error) {
			member.ID = 7
			createdMembership = member
			return member, nil
		},
	}
	svc := NewClubService(clubRepo, memberRepo, db)

	club, err := svc.CreateClub(99, CreateClubRequest{
		Name:      "Sydney Club",
		Country:   "Australia",
		City:      "Sydney",
		Latitude:  f64(-33.8688),
		Longitude: f64(151.2093),
	})
	require.NoError(t, err)

	assert.Equal(t, "sydney-club-1", club.Slug)
	assert.Equal(t, models.SkillLevelAll, club.SkillLevel)
	assert.True(t, club.IsActive)
	assert.False(t, club.IsVerified)
	require.NotNil(t, createdClub)

	require.NotNil(t, createdMembership)
	assert.Equal(t, int64(42), createdMembership.ClubID)
	assert.Equal(t, int64(99), createdMembership.UserID)
	assert.Equal(t, models.RoleOwner, createdMembership.Role)
	assert.True(t, createdMembership.IsActive)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateClubRejectsBadInput(t *testing.T) {
	svc := NewClubService(&fakeClubRepo{}, &fakeMemberRepo{}, nil)

	_, err := svc.CreateClub(1, CreateClubRequest{Name: "X", Country: "NZ", City: "Wellington"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateClub(1, CreateClubRequest{
		Name: "X", Country: "NZ", City: "Wellington",
		Latitude: f64(-91), Longitude: f64(0),
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateClub(1, CreateClubRequest{
		Name: "X", Country: "NZ", City: "Wellington",
		Latitude: f64(0), Longitude: f64(0), SkillLevel: "elite",
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateClubChecksExistenceBeforeRole(t *testing.T) {
	clubRepo := &fakeClubRepo{
		getClubByID: func(int64) (*models.Club, error) { return nil, repositories.ErrNotFound },
	}
	// The membership lookup must not run for a missing club; the fake panics if it does.
	svc := NewClubService(clubRepo, &fakeMemberRepo{}, nil)

	_, err := svc.UpdateClub(1, 2, UpdateClubRequest{})
	assert.ErrorIs(t, err, ErrClubNotFound)
}

func TestUpdateClubRequiresAdminRole(t *testing.T) {
	clubRepo := &fakeClubRepo{
		getClubByID: func(int64) (*models.Club, error) {
			return &models.Club{ID: 1, Name: "Club"}, nil
		},
	}
	memberRepo := &fakeMemberRepo{
		getMembership: func(_ repositories.SQLExecutor, clubID, userID int64) (*models.ClubMember, error) {
			return &models.ClubMember{ClubID: clubID, UserID: userID, Role: models.RoleCoach, IsActive: true}, nil
		},
	}
	svc := NewClubService(clubRepo, memberRepo, nil)

	_, err := svc.UpdateClub(1, 2, UpdateClubRequest{})
	assert.ErrorIs(t, err, ErrNotClubAdmin)
}

func TestUpdateClubRenameRegeneratesSlug(t *testing.T) {
	existing := &models.Club{ID: 1, Name: "Old Name", Slug: "old-name"}
	var updated *models.Club
	clubRepo := &fakeClubRepo{
		getClubByID: func(int64) (*models.Club, error) { return existing, nil },
		slugExists:  func(string) (bool, error) { return false, nil },
		updateClub: func(_ repositories.SQLExecutor, club *models.Club) (*models.Club, error) {
			updated = club
			return club, nil
		},
	}
	memberRepo := &fakeMemberRepo{
		getMembership: func(_ repositories.SQLExecutor, clubID, userID int64) (*models.ClubMember, error) {
			return &models.ClubMember{Role: models.RoleAdmin, IsActive: true}, nil
		},
	}
	svc := NewClubService(clubRepo, memberRepo, nil)

	newName := "Fresh Name"
	_, err := svc.UpdateClub(1, 2, UpdateClubRequest{Name: &newName})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "fresh-name", updated.Slug)
}

func TestDeleteClubOwnerOnly(t *testing.T) {
	clubRepo := &fakeClubRepo{
		getClubByID: func(int64) (*models.Club, error) { return &models.Club{ID: 1}, nil },
	}
	memberRepo := &fakeMemberRepo{
		getMembership: func(_ repositories.SQLExecutor, clubID, userID int64) (*models.ClubMember, error) {
			return &models.ClubMember{Role: models.RoleAdmin, IsActive: true}, nil
		},
	}
	svc := NewClubService(clubRepo, memberRepo, nil)

	// ADMIN is not enough; deletion is reserved for the OWNER.
	err := svc.DeleteClub(1, 2)
	assert.ErrorIs(t, err, ErrNotClubOwner)
}

func TestDeleteClubByOwner(t *testing.T) {
	deleted := false
	clubRepo := &fakeClubRepo{
		getClubByID: func(int64) (*models.Club, error) { return &models.Club{ID: 1}, nil },
		deleteClub: func(_ repositories.SQLExecutor, id int64) error {
			deleted = true
			return nil
		},
	}
	memberRepo := &fakeMemberRepo{
		getMembership: func(_ repositories.SQLExecutor, clubID, userID int64) (*models.ClubMember, error) {
			return &models.ClubMember{Role: models.RoleOwner, IsActive: true}, nil
		},
	}
	svc := NewClubService(clubRepo, memberRepo, nil)

	require.NoError(t, svc.DeleteClub(1, 2))
	assert.True(t, deleted)
}

func TestGetClubByIDNotFound(t *testing.T) {
	clubRepo := &fakeClubRepo{
		getClubByID: func(int64) (*models.Club, error) { return nil, repositories.ErrNotFound },
	}
	svc := NewClubService(clubRepo, &fakeMemberRepo{}, nil)

	_, err := svc.GetClubByID(404)
	assert.ErrorIs(t, err, ErrClubNotFound)
}
