package service

import (
	"context"
	"fmt"
	"regexp"
	"slices"

	"github.com/rs/zerolog/log"

	"github.com/teammanager/server-go/internal/errors"
	"github.com/teammanager/server-go/internal/model"
	"github.com/teammanager/server-go/internal/repository"
)

var mentionRegex = regexp.MustCompile(`@([A-Za-z0-9_.-]{3,50})`)

// MessageService fans a message out to the users behind its target and
// notifies everyone who received it. @username mentions in the body pull
// additional recipients in.
type MessageService struct {
	messages repository.MessageRepository
	users    repository.UserRepository
	players  repository.PlayerRepository
	teams    repository.TeamRepository
	clubs    repository.ClubRepository
	roles    repository.RoleRepository
	events   repository.EventRepository
	notifier repository.NotificationRepository
}

func NewMessageService(
	messages repository.MessageRepository,
	users repository.UserRepository,
	players repository.PlayerRepository,
	teams repository.TeamRepository,
	clubs repository.ClubRepository,
	roles repository.RoleRepository,
	events repository.EventRepository,
	notifier repository.NotificationRepository,
) *MessageService {
	return &MessageService{
		messages: messages,
		users:    users,
		players:  players,
		teams:    teams,
		clubs:    clubs,
		roles:    roles,
		events:   events,
		notifier: notifier,
	}
}

func (s *MessageService) Send(ctx context.Context, params model.CreateMessageParams) (*model.Message, error) {
	if params.Body == "" {
		return nil, errors.ValidationError("Die Nachricht darf nicht leer sein.")
	}
	if !params.TargetType.Valid() {
		return nil, errors.ValidationError("Ungültiger Empfängertyp.")
	}

	recipients, err := s.resolveRecipients(ctx, params.TargetType, params.TargetID)
	if err != nil {
		return nil, err
	}

	mentioned, err := s.resolveMentions(ctx, params.Body)
	if err != nil {
		return nil, err
	}
	recipients = append(recipients, mentioned...)

	recipients = dedupeExcluding(recipients, params.SenderID)
	if len(recipients) == 0 {
		return nil, errors.ValidationError("Keine Empfänger gefunden.")
	}

	msg, err := s.messages.Create(ctx, params)
	if err != nil {
		return nil, errors.Database(err)
	}
	if err := s.messages.AddRecipients(ctx, msg.ID, recipients); err != nil {
		return nil, errors.Database(err)
	}

	sender, err := s.users.FindByID(ctx, params.SenderID)
	if err == nil && sender != nil {
		msg.SenderName = sender.Username
	}

	s.notifyRecipients(ctx, msg, recipients)
	return msg, nil
}

// Reply sends to the parent's sender. The thread target mirrors the parent.
func (s *MessageService) Reply(ctx context.Context, senderID, parentID int64, body string) (*model.Message, error) {
	parent, err := s.messages.FindByID(ctx, parentID)
	if err != nil {
		return nil, errors.Database(err)
	}
	if parent == nil {
		return nil, errors.NotFound("Nachricht nicht gefunden.")
	}

	isRecipient, err := s.messages.IsRecipient(ctx, parentID, senderID)
	if err != nil {
		return nil, errors.Database(err)
	}
	if !isRecipient && parent.SenderID != senderID {
		return nil, errors.Forbidden("Sie sind kein Empfänger dieser Nachricht.")
	}

	return s.Send(ctx, model.CreateMessageParams{
		SenderID:   senderID,
		Subject:    parent.Subject,
		Body:       body,
		TargetType: model.TargetUser,
		TargetID:   parent.SenderID,
		ParentID:   &parentID,
	})
}

func (s *MessageService) Inbox(ctx context.Context, userID int64) ([]model.InboxEntry, error) {
	entries, err := s.messages.ListInbox(ctx, userID)
	if err != nil {
		return nil, errors.Database(err)
	}
	return entries, nil
}

func (s *MessageService) Sent(ctx context.Context, userID int64) ([]model.Message, error) {
	messages, err := s.messages.ListSent(ctx, userID)
	if err != nil {
		return nil, errors.Database(err)
	}
	return messages, nil
}

func (s *MessageService) Thread(ctx context.Context, userID, messageID int64) (*model.Message, []model.Message, error) {
	msg, err := s.messages.FindByID(ctx, messageID)
	if err != nil {
		return nil, nil, errors.Database(err)
	}
	if msg == nil {
		return nil, nil, errors.NotFound("Nachricht nicht gefunden.")
	}

	isRecipient, err := s.messages.IsRecipient(ctx, messageID, userID)
	if err != nil {
		return nil, nil, errors.Database(err)
	}
	if !isRecipient && msg.SenderID != userID {
		return nil, nil, errors.Forbidden("Sie sind kein Empfänger dieser Nachricht.")
	}

	// Opening the thread counts as reading it.
	if isRecipient {
		if _, err := s.messages.MarkRead(ctx, messageID, userID); err != nil {
			log.Warn().Err(err).Int64("messageId", messageID).Msg("marking message read failed")
		}
	}

	replies, err := s.messages.ListReplies(ctx, messageID)
	if err != nil {
		return nil, nil, errors.Database(err)
	}
	return msg, replies, nil
}

func (s *MessageService) MarkRead(ctx context.Context, messageID, userID int64) error {
	updated, err := s.messages.MarkRead(ctx, messageID, userID)
	if err != nil {
		return errors.Database(err)
	}
	if !updated {
		return errors.NotFound("Nachricht nicht gefunden.")
	}
	return nil
}

func (s *MessageService) resolveRecipients(ctx context.Context, target model.MessageTarget, targetID int64) ([]int64, error) {
	switch target {
	case model.TargetUser:
		user, err := s.users.FindByID(ctx, targetID)
		if err != nil {
			return nil, errors.Database(err)
		}
		if user == nil {
			return nil, errors.NotFound("Empfänger nicht gefunden.")
		}
		return []int64{targetID}, nil

	case model.TargetTeam:
		return s.teamAudience(ctx, targetID)

	case model.TargetClub:
		members, err := s.clubs.ListMembers(ctx, targetID)
		if err != nil {
			return nil, errors.Database(err)
		}
		ids := make([]int64, 0, len(members))
		for _, m := range members {
			ids = append(ids, m.UserID)
		}
		return ids, nil

	case model.TargetSport:
		ids, err := s.players.ListUserIDsBySport(ctx, targetID)
		if err != nil {
			return nil, errors.Database(err)
		}
		return ids, nil

	case model.TargetGame, model.TargetTraining:
		typ := model.EventGame
		if target == model.TargetTraining {
			typ = model.EventTraining
		}
		event, err := s.events.FindByID(ctx, typ, targetID)
		if err != nil {
			return nil, errors.Database(err)
		}
		if event == nil {
			return nil, errors.NotFound("Termin nicht gefunden.")
		}
		return s.teamAudience(ctx, event.TeamID)
	}
	return nil, errors.ValidationError("Ungültiger Empfängertyp.")
}

// teamAudience is the team's players plus its trainers.
func (s *MessageService) teamAudience(ctx context.Context, teamID int64) ([]int64, error) {
	playerIDs, err := s.players.ListUserIDsByTeam(ctx, teamID)
	if err != nil {
		return nil, errors.Database(err)
	}
	trainerIDs, err := s.roles.ListTrainerIDsByTeam(ctx, teamID)
	if err != nil {
		return nil, errors.Database(err)
	}
	return append(playerIDs, trainerIDs...), nil
}

func (s *MessageService) resolveMentions(ctx context.Context, body string) ([]int64, error) {
	matches := mentionRegex.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return nil, nil
	}

	usernames := make([]string, 0, len(matches))
	for _, m := range matches {
		usernames = append(usernames, m[1])
	}

	users, err := s.users.FindByUsernames(ctx, usernames)
	if err != nil {
		return nil, errors.Database(err)
	}

	ids := make([]int64, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids, nil
}

func (s *MessageService) notifyRecipients(ctx context.Context, msg *model.Message, recipients []int64) {
	title := "Neue Nachricht"
	text := fmt.Sprintf("Neue Nachricht von %s", msg.SenderName)
	if msg.Subject != nil && *msg.Subject != "" {
		text = fmt.Sprintf("%s: %s", text, *msg.Subject)
	}

	for _, userID := range recipients {
		_, err := s.notifier.Create(ctx, model.CreateNotificationParams{
			UserID:        userID,
			Type:          "message",
			Title:         title,
			Message:       text,
			ReferenceType: "message",
			ReferenceID:   msg.ID,
		})
		if err != nil {
			log.Warn().Err(err).Int64("messageId", msg.ID).Int64("userId", userID).
				Msg("creating message notification failed")
		}
	}
}

func dedupeExcluding(ids []int64, exclude int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	result := ids[:0]
	for _, id := range ids {
		if id == exclude {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	slices.Sort(result)
	return result
}
