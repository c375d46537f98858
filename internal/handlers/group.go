package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"kinnect/internal/database"
	"kinnect/internal/models"
	"kinnect/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// inviteCodeAttempts bounds retries when a generated code collides
const inviteCodeAttempts = 5

// createGroupWithCode inserts the group, regenerating the invite code on a
// uniqueness collision. Each attempt runs under a savepoint: Postgres aborts
// the enclosing transaction after a failed statement, so without the rollback
// a retry would only ever see the abort error.
func createGroupWithCode(tx *gorm.DB, group *models.Group) error {
	var err error
	for attempt := 0; attempt < inviteCodeAttempts; attempt++ {
		if err = tx.SavePoint("create_group").Error; err != nil {
			return err
		}
		err = tx.Create(group).Error
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "invite_code") {
			return err
		}
		if err := tx.RollbackTo("create_group").Error; err != nil {
			return err
		}
		group.InviteCode = ""
	}
	return fmt.Errorf("could not generate a unique invite code: %w", err)
}

// CreateGroup creates a new group with the caller as sole member and owner
func CreateGroup(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		handleError(c, http.StatusNotFound, "User not found", err)
		return
	}

	if user.InGroup() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User already in a group"})
		return
	}

	group := models.Group{
		Name:    fmt.Sprintf("%s's Family Group", user.Username),
		Members: []string{user.ID}, // The creator is the first member
	}

	db := database.GetDB()
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := createGroupWithCode(tx, &group); err != nil {
			return err
		}
		user.GroupID = &group.ID
		return tx.Save(user).Error
	})
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to create group", err)
		return
	}

	c.JSON(http.StatusOK, group)
}

// JoinGroup adds the caller to the group matching the invite code
func JoinGroup(c *gin.Context) {
	var req models.JoinGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	user, err := currentUser(c)
	if err != nil {
		handleError(c, http.StatusNotFound, "User not found", err)
		return
	}

	if user.InGroup() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User already in a group"})
		return
	}

	db := database.GetDB()
	var group models.Group
	if err := db.Where("invite_code = ?", strings.ToUpper(req.InviteCode)).First(&group).Error; err != nil {
		handleError(c, http.StatusNotFound, "Group not found", err)
		return
	}

	// Membership order is append-only so ownership stays well-defined
	group.Members = append(group.Members, user.ID)
	user.GroupID = &group.ID

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&group).Error; err != nil {
			return err
		}
		return tx.Save(user).Error
	})
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to join group", err)
		return
	}

	c.JSON(http.StatusOK, group)
}

// LeaveGroup removes the caller from their group. The last member leaving
// deletes the group and everything that belongs to it.
func LeaveGroup(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		handleError(c, http.StatusNotFound, "User not found", err)
		return
	}

	if !user.InGroup() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User is not in a group"})
		return
	}

	db := database.GetDB()
	var group models.Group
	if err := db.Where("id = ?", *user.GroupID).First(&group).Error; err != nil {
		handleError(c, http.StatusNotFound, "Group not found", err)
		return
	}

	group.RemoveMember(user.ID)
	user.GroupID = nil

	err = db.Transaction(func(tx *gorm.DB) error {
		if len(group.Members) == 0 {
			if err := tx.Where("group_id = ?", group.ID).Delete(&models.Medication{}).Error; err != nil {
				return err
			}
			if err := tx.Where("group_id = ?", group.ID).Delete(&models.Appointment{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&group).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Save(&group).Error; err != nil {
				return err
			}
		}
		return tx.Save(user).Error
	})
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to leave group", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Successfully left the group"})
}

// DeleteGroup deletes the caller's group outright, along with all dependent
// data. Only the owner (first member) may do this.
func DeleteGroup(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		handleError(c, http.StatusNotFound, "User not found", err)
		return
	}

	if !user.InGroup() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User is not in a group"})
		return
	}

	db := database.GetDB()
	var group models.Group
	if err := db.Where("id = ?", *user.GroupID).First(&group).Error; err != nil {
		handleError(c, http.StatusNotFound, "Group not found", err)
		return
	}

	if group.Owner() != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the group owner can delete the group"})
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", group.ID).Delete(&models.Medication{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", group.ID).Delete(&models.Appointment{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.User{}).Where("group_id = ?", group.ID).
			Update("group_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&group).Error
	})
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to delete group", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Group and all associated data deleted successfully"})
}

// EmailInvite sends the caller's group invite code to the given address
func EmailInvite(c *gin.Context) {
	var req models.EmailInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	user, err := currentUser(c)
	if err != nil {
		handleError(c, http.StatusNotFound, "User not found", err)
		return
	}

	if !user.InGroup() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User is not in a group"})
		return
	}

	db := database.GetDB()
	var group models.Group
	if err := db.Where("id = ?", *user.GroupID).First(&group).Error; err != nil {
		handleError(c, http.StatusNotFound, "Group not found", err)
		return
	}

	emailService := services.NewEmailService()
	if err := emailService.SendGroupInviteEmail(req.Email, user.DisplayName(), group.Name, group.InviteCode); err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to send invite email", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invite sent"})
}
