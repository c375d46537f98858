package main

import (
	"fmt"
	"os"

	"kinnect/internal/database"
	"kinnect/internal/handlers"
	"kinnect/internal/services"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func main() {
	// Load .env in development; in production config comes from the platform
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	// Initialize database
	if err := database.InitDB(); err != nil {
		log.Fatal("Failed to initialize database: ", err)
	}

	// Appointment reminders need an email provider
	if os.Getenv("SENDGRID_API_KEY") != "" {
		services.NewReminderWorker().Start()
		log.Println("Appointment reminder worker started")
	} else {
		log.Println("SENDGRID_API_KEY not set, reminder worker disabled")
	}

	router := handlers.NewRouter()

	// Configure trusted proxies
	router.SetTrustedProxies([]string{"127.0.0.1"})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	fmt.Printf("Server starting on port %s...\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
