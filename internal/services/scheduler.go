package services

import (
	"context"
	"time"

	"surveyreg/internal/config"
	"surveyreg/internal/repository"

	"go.uber.org/zap"
)

// Scheduler periodically reminds users about in-progress submissions
// that have gone stale.
type Scheduler struct {
	log          *zap.Logger
	emailService *EmailService
}

func NewScheduler(log *zap.Logger, emailService *EmailService) *Scheduler {
	return &Scheduler{
		log:          log,
		emailService: emailService,
	}
}

// Start runs the scheduler in a goroutine.
func (s *Scheduler) Start() {
	reminderConf := config.Conf.Reminder
	if !reminderConf.Enabled {
		s.log.Info("Reminder scheduler disabled")
		return
	}
	s.log.Info("Starting reminder scheduler",
		zap.Duration("interval", reminderConf.Interval),
		zap.Duration("staleAfter", reminderConf.StaleAfter),
	)
	go func() {
		ticker := time.NewTicker(reminderConf.Interval)
		defer ticker.Stop()

		for {
			<-ticker.C
			s.runReminderCheck()
		}
	}()
}

func (s *Scheduler) runReminderCheck() {
	cutoff := time.Now().UTC().Add(-config.Conf.Reminder.StaleAfter)
	s.log.Debug("Running reminder check", zap.Time("cutoff", cutoff))

	stale, err := repository.ListStaleSubmissions(context.Background(), cutoff)
	if err != nil {
		s.log.Error("Failed to list stale submissions", zap.Error(err))
		return
	}
	for _, submission := range stale {
		go s.emailService.SendReminderEmail(submission.Email, submission.SurveyID)
	}
}
