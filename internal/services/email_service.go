package services

import (
	"fmt"
	"os"

	"kinnect/internal/models"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type EmailService struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
}

func NewEmailService() *EmailService {
	apiKey := os.Getenv("SENDGRID_API_KEY")
	fromEmail := os.Getenv("SENDGRID_NOTIFICATIONS_FROM_EMAIL")
	fromName := os.Getenv("SENDGRID_FROM_NAME")

	client := sendgrid.NewSendClient(apiKey)

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

// SendGroupInviteEmail sends a group's invite code to a prospective member
func (s *EmailService) SendGroupInviteEmail(toEmail, inviterName, groupName, inviteCode string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(toEmail, toEmail)
	subject := fmt.Sprintf("%s invited you to join %s on Kinnect", inviterName, groupName)
	plainContent := fmt.Sprintf("%s has invited you to join '%s'. Use invite code %s after signing up.",
		inviterName, groupName, inviteCode)
	htmlContent := fmt.Sprintf("<p>%s has invited you to join '<strong>%s</strong>'.</p><p>Use invite code <strong>%s</strong> after signing up.</p>",
		inviterName, groupName, inviteCode)

	message := mail.NewSingleEmail(from, subject, to, plainContent, htmlContent)
	response, err := s.client.Send(message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("failed to send invite email to %s: %d", toEmail, response.StatusCode)
	}
	return nil
}

// SendAppointmentReminderToGroup sends appointment reminders to all group members
func (s *EmailService) SendAppointmentReminderToGroup(appointment models.Appointment, members []models.User, reminderType string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)

	subject := ""
	if reminderType == "24hour" {
		subject = fmt.Sprintf("Reminder: %s is tomorrow", appointment.Title)
	} else {
		subject = fmt.Sprintf("Reminder: %s starts in 1 hour", appointment.Title)
	}

	where := appointment.Location
	if where == "" {
		where = "no location set"
	}

	// Send individual emails to each member
	for _, member := range members {
		to := mail.NewEmail(member.Username, member.Email)

		plainContent := fmt.Sprintf("Hello %s, the appointment %s is coming up at %s (%s).",
			member.Username, appointment.Title, appointment.Start.Format("Mon Jan 2, 3:04 PM"), where)
		htmlContent := fmt.Sprintf("<p>Hello %s,</p><p>The appointment <strong>%s</strong> is coming up at %s (%s).</p>",
			member.Username, appointment.Title, appointment.Start.Format("Mon Jan 2, 3:04 PM"), where)

		message := mail.NewSingleEmail(from, subject, to, plainContent, htmlContent)

		response, err := s.client.Send(message)
		if err != nil {
			return err
		}

		if response.StatusCode >= 400 {
			return fmt.Errorf("failed to send email to %s: %d", member.Email, response.StatusCode)
		}
	}

	return nil
}
