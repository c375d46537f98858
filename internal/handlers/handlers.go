package handlers

import (
	"net/http"

	"kinnect/internal/auth"
	"kinnect/internal/database"
	"kinnect/internal/models"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// handleError provides a consistent way to handle and log errors
func handleError(c *gin.Context, status int, message string, err error) {
	log.Printf("Error: %v", err)
	c.JSON(status, gin.H{"error": message})
}

// currentUser loads the authenticated caller's user record. The auth
// middleware guarantees a user ID is present; the record may still be gone if
// the account was deleted after the token was issued.
func currentUser(c *gin.Context) (*models.User, error) {
	var user models.User
	if err := database.GetDB().Where("id = ?", auth.CurrentUserID(c)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// HomeHandler handles requests to the root path "/"
func HomeHandler(c *gin.Context) {
	c.String(http.StatusOK, "Welcome to Kinnect!")
}

// HealthHandler is a simple health check endpoint
func HealthHandler(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}
