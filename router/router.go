package router

import (
	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-floorplan/config"
	"github.com/yeremiapane/restaurant-floorplan/controllers"
	"github.com/yeremiapane/restaurant-floorplan/hub"
	"github.com/yeremiapane/restaurant-floorplan/middlewares"
	"github.com/yeremiapane/restaurant-floorplan/services"
)

func SetupRouter(store *services.FloorPlanStore, h *hub.Hub, cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middlewares.RequestID())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(cfg.CORSOrigins))
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).RateLimit())

	// Inisialisasi controller
	floorCtrl := controllers.NewFloorPlanController(store, h, cfg.FloorAreas())
	reservationCtrl := controllers.NewReservationController(store, h)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	// Live updates
	r.GET("/ws", controllers.HubHandler(h))

	// FLOOR PLAN
	r.GET("/floorplan", floorCtrl.GetFloorPlan)
	r.POST("/lock/toggle", floorCtrl.ToggleLock)

	// AREAS
	areas := r.Group("/areas/:area_id")
	{
		areas.POST("/tables", floorCtrl.CreateTable)
		areas.PUT("/removal", floorCtrl.SelectForRemoval)
		areas.POST("/removal/confirm", floorCtrl.ConfirmRemoval)
	}

	// TABLES
	tables := r.Group("/tables")
	{
		tables.GET("", floorCtrl.GetAllTables)
		tables.GET("/:table_id", floorCtrl.GetTableByID)
		tables.PATCH("/:table_id/toggle", floorCtrl.ToggleTable)
		tables.PATCH("/:table_id/position", floorCtrl.MoveTable)
		tables.DELETE("/:table_id", floorCtrl.DeleteTable)
	}

	// RESERVATIONS
	reservations := r.Group("/reservations")
	{
		reservations.GET("", reservationCtrl.GetReservations)
		reservations.POST("", reservationCtrl.CreateReservation)
		reservations.POST("/:index/cancel", reservationCtrl.CancelReservation)
	}

	return r
}
