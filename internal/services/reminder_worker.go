package services

import (
	"time"

	"kinnect/internal/database"
	"kinnect/internal/models"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Reminder windows checked by the worker
const (
	Reminder24Hour = "24hour"
	Reminder1Hour  = "1hour"
)

type ReminderWorker struct {
	db           *gorm.DB
	emailService *EmailService
	interval     time.Duration
}

func NewReminderWorker() *ReminderWorker {
	return &ReminderWorker{
		db:           database.GetDB(),
		emailService: NewEmailService(),
		interval:     time.Minute * 5, // Check every 5 minutes
	}
}

func (w *ReminderWorker) Start() {
	go w.run()
}

func (w *ReminderWorker) run() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for range ticker.C {
		w.checkUpcomingAppointments()
	}
}

// isWithinReminderWindow reports whether the appointment falls inside the
// window without being more than one poll interval past its leading edge
func isWithinReminderWindow(start time.Time, now time.Time, window time.Duration) bool {
	untilStart := start.Sub(now)
	return untilStart <= window && untilStart > (window-10*time.Minute)
}

// hasReminderBeenSent checks whether this reminder already went out
func (w *ReminderWorker) hasReminderBeenSent(appointmentID string, reminderType string) bool {
	var count int64
	w.db.Model(&models.ReminderSent{}).
		Where("appointment_id = ? AND reminder_type = ?", appointmentID, reminderType).
		Count(&count)
	return count > 0
}

func (w *ReminderWorker) checkUpcomingAppointments() {
	now := time.Now()

	var appointments []models.Appointment
	if err := w.db.Where("start > ? AND start <= ? AND completed = ?",
		now, now.Add(24*time.Hour+10*time.Minute), false).
		Find(&appointments).Error; err != nil {
		log.Printf("Warning: Reminder worker failed to fetch appointments: %v", err)
		return
	}

	for _, appointment := range appointments {
		if isWithinReminderWindow(appointment.Start, now, 24*time.Hour) {
			w.sendReminder(appointment, Reminder24Hour)
		}
		if isWithinReminderWindow(appointment.Start, now, time.Hour) {
			w.sendReminder(appointment, Reminder1Hour)
		}
	}
}

func (w *ReminderWorker) sendReminder(appointment models.Appointment, reminderType string) {
	if w.hasReminderBeenSent(appointment.ID, reminderType) {
		return
	}

	var members []models.User
	if err := w.db.Where("group_id = ?", appointment.GroupID).Find(&members).Error; err != nil {
		log.Printf("Warning: Failed to fetch members for appointment %s: %v", appointment.ID, err)
		return
	}
	if len(members) == 0 {
		return
	}

	if err := w.emailService.SendAppointmentReminderToGroup(appointment, members, reminderType); err != nil {
		log.Printf("Warning: Failed to send %s reminder for appointment %s: %v", reminderType, appointment.ID, err)
		return
	}

	sent := models.ReminderSent{
		AppointmentID: appointment.ID,
		ReminderType:  reminderType,
		SentAt:        time.Now(),
	}
	if err := w.db.Create(&sent).Error; err != nil {
		log.Printf("Warning: Failed to record %s reminder for appointment %s: %v", reminderType, appointment.ID, err)
	}
}
