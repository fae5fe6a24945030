package router

import (
	"clubhub_backend/internal/handlers"
	"clubhub_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupClubRoutes sets up club discovery, membership and per-club equipment routes.
// Search and club profiles are public; everything that mutates requires a caller
// identity. Club-level roles are checked in the services, not here, since they
// depend on the caller's membership row.
func SetupClubRoutes(
	apiGroup *gin.RouterGroup,
	clubHandler *handlers.ClubHandler,
	memberHandler *handlers.MemberHandler,
	equipmentHandler *handlers.EquipmentHandler,
) {
	clubRoutes := apiGroup.Group("/clubs")
	{
		clubRoutes.GET("", clubHandler.GetClubs)
		clubRoutes.GET("/:id", clubHandler.GetClubByID)

		authed := clubRoutes.Group("")
		authed.Use(middleware.AuthMiddleware())
		{
			authed.POST("", clubHandler.CreateClub)
			authed.PUT("/:id", clubHandler.UpdateClub)
			authed.DELETE("/:id", clubHandler.DeleteClub)

			authed.GET("/:id/members", memberHandler.GetClubMembers)
			authed.POST("/:id/members", memberHandler.JoinClub)

			authed.GET("/:id/equipment", equipmentHandler.GetClubEquipment)
			authed.POST("/:id/equipment", equipmentHandler.CreateEquipment)
		}
	}
}

// SetupEquipmentRoutes sets up the checkout/return routes addressed by equipment ID.
func SetupEquipmentRoutes(apiGroup *gin.RouterGroup, equipmentHandler *handlers.EquipmentHandler) {
	equipmentRoutes := apiGroup.Group("/equipment")
	equipmentRoutes.Use(middleware.AuthMiddleware())
	{
		equipmentRoutes.POST("/:id/checkout", equipmentHandler.CheckoutEquipment)
		equipmentRoutes.POST("/:id/return", equipmentHandler.ReturnEquipment)
	}
}
