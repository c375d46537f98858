package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"kinnect/internal/auth"
	"kinnect/internal/database"
	"kinnect/internal/models"
	"kinnect/internal/utils"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Register handles new user registration
func Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	if err := auth.ValidatePassword(req.Password); err != nil {
		handleError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	db := database.GetDB()

	// Reject duplicates up front for a friendlier message than a constraint error
	var existing models.User
	if err := db.Where("username = ? OR email = ?", req.Username, strings.ToLower(req.Email)).
		First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User with that email or username already exists"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		handleError(c, http.StatusInternalServerError, "Failed to register user", err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to register user", err)
		return
	}

	user := models.User{
		Username:   req.Username,
		Email:      req.Email,
		HashedPass: hash,
	}
	if err := db.Create(&user).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to register user", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
}

// Login handles user authentication and token issuance
func Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	db := database.GetDB()
	var user models.User
	if err := db.Where("email = ?", strings.ToLower(req.Email)).First(&user).Error; err != nil {
		handleError(c, http.StatusBadRequest, "Invalid credentials", err)
		return
	}

	if !auth.CheckPassword(user.HashedPass, req.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := auth.GenerateToken(user.ID)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to generate token", err)
		return
	}

	entry := models.LoginLog{
		Username:  user.Username,
		IP:        utils.GetRealClientIP(c),
		CreatedAt: time.Now(),
	}
	if err := db.Create(&entry).Error; err != nil {
		log.Printf("Warning: Failed to record login: %v", err)
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// GetCurrentUser returns the caller's profile with their group populated
func GetCurrentUser(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		handleError(c, http.StatusNotFound, "User not found", err)
		return
	}

	// A stale group reference reads as no group; anything else is a real failure
	var group *models.Group
	if user.InGroup() {
		var g models.Group
		err := database.GetDB().Where("id = ?", *user.GroupID).First(&g).Error
		switch {
		case err == nil:
			group = &g
		case !errors.Is(err, gorm.ErrRecordNotFound):
			handleError(c, http.StatusInternalServerError, "Failed to fetch group", err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"email":      user.Email,
		"group":      group,
		"created_at": user.CreatedAt,
	})
}

// DeleteAccount removes the caller's account. If they belong to a group, the
// group's medications and appointments are wiped, but the group record and any
// remaining members are left untouched.
func DeleteAccount(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		handleError(c, http.StatusNotFound, "User not found", err)
		return
	}

	db := database.GetDB()
	err = db.Transaction(func(tx *gorm.DB) error {
		if user.InGroup() {
			if err := tx.Where("group_id = ?", *user.GroupID).Delete(&models.Medication{}).Error; err != nil {
				return err
			}
			if err := tx.Where("group_id = ?", *user.GroupID).Delete(&models.Appointment{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(user).Error
	})
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to delete account", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User account and associated data deleted successfully"})
}
