package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/teammanager/server-go/internal/email"
	"github.com/teammanager/server-go/internal/model"
	"github.com/teammanager/server-go/internal/repository"
)

const (
	reminderWindow   = 48 * time.Hour
	escalationWindow = 24 * time.Hour
	invitationMaxAge = 30 * 24 * time.Hour
	jobTimeout       = 30 * time.Second
)

// ReminderJob nudges players who have not responded to an upcoming event.
// Two days ahead the player gets a notification (and optionally an email),
// one day ahead the team's trainers are informed. It also prunes invitations
// nobody accepted within a month.
type ReminderJob struct {
	attendance  repository.AttendanceRepository
	roles       repository.RoleRepository
	users       repository.UserRepository
	notifier    repository.NotificationRepository
	invitations repository.InvitationRepository
	sender      email.Sender
	interval    time.Duration
	done        chan struct{}
}

func NewReminderJob(
	attendance repository.AttendanceRepository,
	roles repository.RoleRepository,
	users repository.UserRepository,
	notifier repository.NotificationRepository,
	invitations repository.InvitationRepository,
	sender email.Sender,
	interval time.Duration,
) *ReminderJob {
	return &ReminderJob{
		attendance:  attendance,
		roles:       roles,
		users:       users,
		notifier:    notifier,
		invitations: invitations,
		sender:      sender,
		interval:    interval,
		done:        make(chan struct{}),
	}
}

func (j *ReminderJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("reminder job started")
}

func (j *ReminderJob) Stop() {
	close(j.done)
	log.Info().Msg("reminder job stopped")
}

func (j *ReminderJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.tick()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.tick()
		}
	}
}

func (j *ReminderJob) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	for _, typ := range []model.EventType{model.EventGame, model.EventTraining} {
		j.sendReminders(ctx, typ)
		j.sendEscalations(ctx, typ)
	}
	j.cleanupInvitations(ctx)
}

func (j *ReminderJob) sendReminders(ctx context.Context, typ model.EventType) {
	candidates, err := j.attendance.ListPendingReminders(ctx, typ, time.Now().Add(reminderWindow))
	if err != nil {
		log.Error().Err(err).Str("eventType", string(typ)).Msg("loading reminder candidates failed")
		return
	}

	handled := make([]int64, 0, len(candidates))
	for _, c := range candidates {
		_, err := j.notifier.Create(ctx, model.CreateNotificationParams{
			UserID:        c.UserID,
			Type:          "attendance_reminder",
			Title:         "Rückmeldung ausstehend",
			Message:       fmt.Sprintf("Bitte melden Sie sich für %s am %s zurück.", c.EventTitle, c.EventDate.Format("02.01.2006")),
			ReferenceType: string(c.EventType),
			ReferenceID:   c.EventID,
		})
		if err != nil {
			log.Error().Err(err).Int64("userId", c.UserID).Msg("creating reminder notification failed")
			continue
		}

		j.maybeEmail(ctx, c)
		handled = append(handled, c.AttendanceID)
	}

	if err := j.attendance.MarkReminded(ctx, handled); err != nil {
		log.Error().Err(err).Msg("marking reminders failed")
	} else if len(handled) > 0 {
		log.Info().Int("count", len(handled)).Str("eventType", string(typ)).Msg("attendance reminders sent")
	}
}

// maybeEmail respects the user's notification settings.
func (j *ReminderJob) maybeEmail(ctx context.Context, c model.ReminderCandidate) {
	settings, err := j.notifier.GetSettings(ctx, c.UserID)
	if err != nil || !settings.EmailEnabled {
		return
	}
	user, err := j.users.FindByID(ctx, c.UserID)
	if err != nil || user == nil {
		return
	}

	subject := "Rückmeldung ausstehend"
	body := fmt.Sprintf(
		"Hallo %s,\n\nfür %s am %s steht Ihre Rückmeldung noch aus. Bitte sagen Sie zu oder ab.",
		user.Username, c.EventTitle, c.EventDate.Format("02.01.2006"),
	)
	if err := j.sender.Send(user.Email, subject, body); err != nil {
		log.Warn().Err(err).Int64("userId", c.UserID).Msg("sending reminder email failed")
	}
}

func (j *ReminderJob) sendEscalations(ctx context.Context, typ model.EventType) {
	candidates, err := j.attendance.ListPendingEscalations(ctx, typ, time.Now().Add(escalationWindow))
	if err != nil {
		log.Error().Err(err).Str("eventType", string(typ)).Msg("loading escalation candidates failed")
		return
	}

	handled := make([]int64, 0, len(candidates))
	for _, c := range candidates {
		user, err := j.users.FindByID(ctx, c.UserID)
		if err != nil || user == nil {
			continue
		}

		trainerIDs, err := j.roles.ListTrainerIDsByTeam(ctx, c.TeamID)
		if err != nil {
			log.Error().Err(err).Int64("teamId", c.TeamID).Msg("loading trainers failed")
			continue
		}

		for _, trainerID := range trainerIDs {
			_, err := j.notifier.Create(ctx, model.CreateNotificationParams{
				UserID:        trainerID,
				Type:          "attendance_escalation",
				Title:         "Fehlende Rückmeldung",
				Message:       fmt.Sprintf("%s hat sich für %s am %s noch nicht zurückgemeldet.", user.Username, c.EventTitle, c.EventDate.Format("02.01.2006")),
				ReferenceType: string(c.EventType),
				ReferenceID:   c.EventID,
			})
			if err != nil {
				log.Error().Err(err).Int64("trainerId", trainerID).Msg("creating escalation notification failed")
			}
		}

		handled = append(handled, c.AttendanceID)
	}

	if err := j.attendance.MarkEscalated(ctx, handled); err != nil {
		log.Error().Err(err).Msg("marking escalations failed")
	} else if len(handled) > 0 {
		log.Info().Int("count", len(handled)).Str("eventType", string(typ)).Msg("attendance escalations sent")
	}
}

func (j *ReminderJob) cleanupInvitations(ctx context.Context) {
	count, err := j.invitations.DeleteStaleUnaccepted(ctx, time.Now().Add(-invitationMaxAge))
	if err != nil {
		log.Error().Err(err).Msg("cleaning up stale invitations failed")
	} else if count > 0 {
		log.Info().Int64("count", count).Msg("stale invitations removed")
	}
}
