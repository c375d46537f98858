package handlers

import (
	"net/http"

	"kinnect/internal/database"
	"kinnect/internal/models"
	"kinnect/internal/services"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// scopedMedication loads the medication with the given ID and verifies it
// belongs to the caller's group. A record outside the caller's group reports
// not-found rather than forbidden, so callers can't probe other groups' data.
func scopedMedication(c *gin.Context, id string) (*models.Medication, bool) {
	var medication models.Medication
	if err := database.GetDB().Where("id = ?", id).First(&medication).Error; err != nil {
		handleError(c, http.StatusNotFound, "Medication not found", err)
		return nil, false
	}

	user, err := currentUser(c)
	if err != nil {
		handleError(c, http.StatusNotFound, "User not found", err)
		return nil, false
	}
	if !user.InGroup() || *user.GroupID != medication.GroupID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Medication not found"})
		return nil, false
	}

	return &medication, true
}

// ListMedications returns the caller's group medications, newest first.
// A caller without a group gets an empty list, not an error.
func ListMedications(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		handleError(c, http.StatusNotFound, "User not found", err)
		return
	}

	if !user.InGroup() {
		c.JSON(http.StatusOK, []models.Medication{})
		return
	}

	var medications []models.Medication
	if err := database.GetDB().
		Where("group_id = ?", *user.GroupID).
		Order("created_at DESC").
		Find(&medications).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to fetch medications", err)
		return
	}

	c.JSON(http.StatusOK, medications)
}

// CreateMedication adds a medication to the caller's group
func CreateMedication(c *gin.Context) {
	var req models.CreateMedicationRequest
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
		c.JSON(http.StatusBadRequest, gin.H{"error": "User does not belong to a group"})
		return
	}

	medication := models.Medication{
		Name:          req.Name,
		Dosage:        req.Dosage,
		RecipientName: req.RecipientName,
		GroupID:       *user.GroupID,
	}
	if err := database.GetDB().Create(&medication).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to create medication", err)
		return
	}

	c.JSON(http.StatusOK, medication)
}

// UpdateMedication applies a partial update to a medication
func UpdateMedication(c *gin.Context) {
	var req models.UpdateMedicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	medication, ok := scopedMedication(c, c.Param("id"))
	if !ok {
		return
	}

	if req.Name != nil {
		medication.Name = *req.Name
	}
	if req.Dosage != nil {
		medication.Dosage = *req.Dosage
	}
	if req.RecipientName != nil {
		medication.RecipientName = *req.RecipientName
	}

	if err := database.GetDB().Save(medication).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to update medication", err)
		return
	}

	c.JSON(http.StatusOK, medication)
}

// DeleteMedication removes a medication
func DeleteMedication(c *gin.Context) {
	medication, ok := scopedMedication(c, c.Param("id"))
	if !ok {
		return
	}

	if err := database.GetDB().Delete(medication).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to delete medication", err)
		return
	}

	// Best-effort label photo cleanup; the record is already gone
	if medication.PhotoURL != "" {
		if imageService, err := services.NewImageService(); err == nil {
			if err := imageService.DeleteLabelPhoto(medication.ID); err != nil {
				log.Printf("Warning: Failed to delete label photo for medication %s: %v", medication.ID, err)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Medication removed"})
}

// RecordAdministration appends an administration event stamped with the
// caller's display identity and the current time
func RecordAdministration(c *gin.Context) {
	medication, ok := scopedMedication(c, c.Param("id"))
	if !ok {
		return
	}

	user, err := currentUser(c)
	if err != nil {
		handleError(c, http.StatusNotFound, "User not found", err)
		return
	}

	medication.Administer(user.DisplayName())

	if err := database.GetDB().Save(medication).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to record administration", err)
		return
	}

	c.JSON(http.StatusOK, medication)
}

// UpdateAdministration edits a single administration event by ID
func UpdateAdministration(c *gin.Context) {
	var req models.UpdateAdministrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	medication, ok := scopedMedication(c, c.Param("id"))
	if !ok {
		return
	}

	event := medication.FindAdministration(c.Param("adminId"))
	if event == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Administration event not found"})
		return
	}

	event.AdministeredBy = req.AdministeredBy
	if req.Timestamp != nil {
		event.Timestamp = *req.Timestamp
	}

	if err := database.GetDB().Save(medication).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to update administration", err)
		return
	}

	c.JSON(http.StatusOK, medication)
}

// DeleteAdministration removes a single administration event by ID
func DeleteAdministration(c *gin.Context) {
	medication, ok := scopedMedication(c, c.Param("id"))
	if !ok {
		return
	}

	if !medication.RemoveAdministration(c.Param("adminId")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Administration event not found"})
		return
	}

	if err := database.GetDB().Save(medication).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to delete administration", err)
		return
	}

	c.JSON(http.StatusOK, medication)
}

// UploadMedicationPhoto attaches a label photo to a medication
func UploadMedicationPhoto(c *gin.Context) {
	medication, ok := scopedMedication(c, c.Param("id"))
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		handleError(c, http.StatusBadRequest, "Missing photo file", err)
		return
	}
	defer file.Close()

	imageService, err := services.NewImageService()
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Image uploads are not configured", err)
		return
	}

	url, err := imageService.UploadLabelPhoto(file, header.Filename, medication.ID)
	if err != nil {
		handleError(c, http.StatusBadRequest, err.Error(), err)
		return
	}

	medication.PhotoURL = url
	if err := database.GetDB().Save(medication).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to save medication photo", err)
		return
	}

	c.JSON(http.StatusOK, medication)
}
