package handlers

import (
	"os"
	"time"

	"kinnect/internal/auth"
	"kinnect/internal/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the full Kinnect API router
func NewRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(metrics.Middleware())

	clientOrigin := os.Getenv("CLIENT_ORIGIN")
	if clientOrigin == "" {
		clientOrigin = "http://localhost:3000"
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{clientOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", auth.TokenHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Basic routes
	router.GET("/", HomeHandler)
	router.GET("/health", HealthHandler)
	router.GET("/metrics", metrics.Handler())

	api := router.Group("/api")

	// User routes (no auth required)
	api.POST("/users/register", Register)
	api.POST("/users/login", Login)

	// Protected routes (auth required)
	protected := api.Group("")
	protected.Use(auth.AuthMiddleware())
	{
		protected.GET("/users/me", GetCurrentUser)
		protected.DELETE("/users/me", DeleteAccount)

		protected.POST("/groups", CreateGroup)
		protected.POST("/groups/join", JoinGroup)
		protected.POST("/groups/leave", LeaveGroup)
		protected.DELETE("/groups", DeleteGroup)
		protected.POST("/groups/invite", EmailInvite)

		protected.GET("/medications", ListMedications)
		protected.POST("/medications", CreateMedication)
		protected.PUT("/medications/:id", UpdateMedication)
		protected.DELETE("/medications/:id", DeleteMedication)
		protected.POST("/medications/:id/administer", RecordAdministration)
		protected.PUT("/medications/:id/administrations/:adminId", UpdateAdministration)
		protected.DELETE("/medications/:id/administrations/:adminId", DeleteAdministration)
		protected.POST("/medications/:id/photo", UploadMedicationPhoto)

		protected.GET("/appointments", ListAppointments)
		protected.POST("/appointments", CreateAppointment)
		protected.PUT("/appointments/:id", UpdateAppointment)
		protected.DELETE("/appointments/:id", DeleteAppointment)
		protected.PATCH("/appointments/:id/complete", CompleteAppointment)
		protected.GET("/appointments/places", SearchPlaces)
	}

	return router
}
