package router

import (
	"database/sql"

	"clubhub_backend/internal/handlers"
	"clubhub_backend/internal/repositories"
	"clubhub_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB) {
	// Initialize Repositories
	clubRepo := repositories.NewClubRepository(db)
	memberRepo := repositories.NewMemberRepository(db)
	userRepo := repositories.NewUserRepository(db)
	equipmentRepo := repositories.NewEquipmentRepository(db)
	checkoutRepo := repositories.NewCheckoutRepository(db)

	// Initialize Services
	clubService := services.NewClubService(clubRepo, memberRepo, db)
	membershipService := services.NewMembershipService(memberRepo, clubRepo, userRepo, db)
	equipmentService := services.NewEquipmentService(equipmentRepo, checkoutRepo, memberRepo, clubRepo, db)

	// Initialize Handlers
	clubHandler := handlers.NewClubHandler(clubService)
	memberHandler := handlers.NewMemberHandler(membershipService)
	equipmentHandler := handlers.NewEquipmentHandler(equipmentService)

	apiV1 := engine.Group("/api/v1")

	SetupClubRoutes(apiV1, clubHandler, memberHandler, equipmentHandler)
	SetupEquipmentRoutes(apiV1, equipmentHandler)
}
