package services

import (
	"fmt"

	"go.uber.org/zap"
)

// EmailService is a placeholder for a real email sending service.
type EmailService struct {
	log *zap.Logger
}

func NewEmailService(log *zap.Logger) *EmailService {
	return &EmailService{log: log}
}

// SendReminderEmail simulates sending a reminder for an unfinished
// survey submission.
func (s *EmailService) SendReminderEmail(email string, surveyID uint) {
	s.log.Info("Sending reminder email",
		zap.String("to", email),
		zap.Uint("surveyID", surveyID),
	)
	// In a real application, you would use an SMTP client like go-mail
	// to send a templated HTML email here. // TODO
	fmt.Printf("--- SIMULATING EMAIL ---\nTo: %s\nSubject: Reminder to finish your survey\nYou have an unfinished survey (id %d) waiting for you.\n\n", email, surveyID)
}
