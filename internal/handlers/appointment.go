package handlers

import (
	"net/http"

	"kinnect/internal/database"
	"kinnect/internal/models"
	"kinnect/internal/services"

	"github.com/gin-gonic/gin"
)

// scopedAppointment loads the appointment with the given ID and verifies it
// belongs to the caller's group; mismatches report not-found
func scopedAppointment(c *gin.Context, id string) (*models.Appointment, bool) {
	var appointment models.Appointment
	if err := database.GetDB().Where("id = ?", id).First(&appointment).Error; err != nil {
		handleError(c, http.StatusNotFound, "Appointment not found", err)
		return nil, false
	}

	user, err := currentUser(c)
	if err != nil {
		handleError(c, http.StatusNotFound, "User not found", err)
		return nil, false
	}
	if !user.InGroup() || *user.GroupID != appointment.GroupID {
		c.JSON(http.StatusNotFound, gin.H{"error": "Appointment not found"})
		return nil, false
	}

	return &appointment, true
}

// ListAppointments returns the caller's group appointments ordered by start
// time. A caller without a group gets an empty list, not an error.
func ListAppointments(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		handleError(c, http.StatusNotFound, "User not found", err)
		return
	}

	if !user.InGroup() {
		c.JSON(http.StatusOK, []models.Appointment{})
		return
	}

	var appointments []models.Appointment
	if err := database.GetDB().
		Where("group_id = ?", *user.GroupID).
		Order("start ASC").
		Find(&appointments).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to fetch appointments", err)
		return
	}

	c.JSON(http.StatusOK, appointments)
}

// CreateAppointment adds an appointment to the caller's group
func CreateAppointment(c *gin.Context) {
	var req models.CreateAppointmentRequest
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

	appointment := models.Appointment{
		Title:      req.Title,
		Start:      req.Start,
		End:        req.End,
		GroupID:    *user.GroupID,
		CreatedBy:  user.DisplayName(),
		Location:   req.Location,
		DoctorName: req.DoctorName,
		Purpose:    req.Purpose,
		Summary:    req.Summary,
	}
	if err := database.GetDB().Create(&appointment).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to create appointment", err)
		return
	}

	c.JSON(http.StatusCreated, appointment)
}

// UpdateAppointment applies a partial update to an appointment
func UpdateAppointment(c *gin.Context) {
	var req models.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	appointment, ok := scopedAppointment(c, c.Param("id"))
	if !ok {
		return
	}

	if req.Title != nil {
		appointment.Title = *req.Title
	}
	if req.Start != nil {
		appointment.Start = *req.Start
	}
	if req.End != nil {
		appointment.End = *req.End
	}
	if req.Location != nil {
		appointment.Location = *req.Location
	}
	if req.DoctorName != nil {
		appointment.DoctorName = *req.DoctorName
	}
	if req.Purpose != nil {
		appointment.Purpose = *req.Purpose
	}
	if req.Summary != nil {
		appointment.Summary = *req.Summary
	}

	if err := database.GetDB().Save(appointment).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to update appointment", err)
		return
	}

	c.JSON(http.StatusOK, appointment)
}

// DeleteAppointment removes an appointment
func DeleteAppointment(c *gin.Context) {
	appointment, ok := scopedAppointment(c, c.Param("id"))
	if !ok {
		return
	}

	if err := database.GetDB().Delete(appointment).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to delete appointment", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Appointment deleted successfully"})
}

// CompleteAppointment marks an appointment as completed
func CompleteAppointment(c *gin.Context) {
	appointment, ok := scopedAppointment(c, c.Param("id"))
	if !ok {
		return
	}

	appointment.Completed = true
	if err := database.GetDB().Save(appointment).Error; err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to update appointment", err)
		return
	}

	c.JSON(http.StatusOK, appointment)
}

// SearchPlaces looks up venues for the appointment location picker
func SearchPlaces(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter is required"})
		return
	}

	suggestions, err := services.SearchPlaces(query)
	if err != nil {
		handleError(c, http.StatusInternalServerError, "Failed to search places", err)
		return
	}

	c.JSON(http.StatusOK, suggestions)
}
