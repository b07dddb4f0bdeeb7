package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/teammanager/server-go/internal/email"
	"github.com/teammanager/server-go/internal/errors"
	"github.com/teammanager/server-go/internal/model"
	"github.com/teammanager/server-go/internal/repository"
	"github.com/teammanager/server-go/internal/util"
)

// InvitationService hands out single-use club invitations. Accepting one
// grants the invited role, scoped to the club, and adds the membership.
type InvitationService struct {
	invitations repository.InvitationRepository
	clubs       repository.ClubRepository
	users       repository.UserRepository
	roles       repository.RoleRepository
	notifier    repository.NotificationRepository
	sender      email.Sender
	appBaseURL  string
}

func NewInvitationService(
	invitations repository.InvitationRepository,
	clubs repository.ClubRepository,
	users repository.UserRepository,
	roles repository.RoleRepository,
	notifier repository.NotificationRepository,
	sender email.Sender,
	appBaseURL string,
) *InvitationService {
	return &InvitationService{
		invitations: invitations,
		clubs:       clubs,
		users:       users,
		roles:       roles,
		notifier:    notifier,
		sender:      sender,
		appBaseURL:  appBaseURL,
	}
}

func (s *InvitationService) Create(ctx context.Context, clubID, inviterID int64, emailAddr string, role model.Role) (*model.Invitation, error) {
	if !util.IsValidEmail(emailAddr) {
		return nil, errors.ValidationError("Ungültige E-Mail-Adresse.")
	}
	if !model.IsInvitableRole(role) {
		return nil, errors.ValidationError("Ungültige Rolle.")
	}

	club, err := s.clubs.FindByID(ctx, clubID)
	if err != nil {
		return nil, errors.Database(err)
	}
	if club == nil {
		return nil, errors.NotFound("Verein nicht gefunden.")
	}

	inv, err := s.invitations.Create(ctx, model.CreateInvitationParams{
		Email:     emailAddr,
		Role:      role,
		ClubID:    clubID,
		Code:      uuid.NewString(),
		InvitedBy: inviterID,
	})
	if err != nil {
		return nil, errors.Database(err)
	}

	subject := fmt.Sprintf("Einladung zum Verein %s", club.Name)
	body := fmt.Sprintf(
		"Hallo,\n\nSie wurden als %s zum Verein %s eingeladen.\n\nEinladung annehmen: %s/einladung/%s\n\nFalls Sie diese Einladung nicht erwartet haben, ignorieren Sie diese E-Mail.",
		role, club.Name, s.appBaseURL, inv.Code,
	)
	if err := s.sender.Send(emailAddr, subject, body); err != nil {
		// The invitation stays valid; an admin can resend the link.
		log.Error().Err(err).Int64("invitationId", inv.ID).Msg("sending invitation email failed")
	}

	// Registered users additionally see the invitation in the app.
	if user, err := s.users.FindByEmail(ctx, emailAddr); err == nil && user != nil {
		_, err := s.notifier.Create(ctx, model.CreateNotificationParams{
			UserID:        user.ID,
			Type:          "invitation",
			Title:         "Neue Einladung",
			Message:       fmt.Sprintf("Sie wurden zum Verein %s eingeladen.", club.Name),
			ReferenceType: "invitation",
			ReferenceID:   inv.ID,
		})
		if err != nil {
			log.Warn().Err(err).Int64("invitationId", inv.ID).Msg("creating invitation notification failed")
		}
	}

	inv.ClubName = club.Name
	return inv, nil
}

func (s *InvitationService) FindByCode(ctx context.Context, code string) (*model.Invitation, error) {
	inv, err := s.invitations.FindByCode(ctx, code)
	if err != nil {
		return nil, errors.Database(err)
	}
	if inv == nil {
		return nil, errors.NotFound("Einladung nicht gefunden.")
	}
	return inv, nil
}

// Accept grants the invited role and club membership to the user. An
// invitation can only be redeemed once.
func (s *InvitationService) Accept(ctx context.Context, code string, userID int64) (*model.Invitation, error) {
	inv, err := s.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if inv.Accepted {
		return nil, errors.Conflict("Einladung wurde bereits angenommen.")
	}

	if _, err := s.roles.Create(ctx, userID, inv.Role, &inv.ClubID, nil, nil); err != nil {
		return nil, errors.Database(err)
	}
	if err := s.clubs.AddMember(ctx, inv.ClubID, userID); err != nil {
		return nil, errors.Database(err)
	}
	if err := s.invitations.MarkAccepted(ctx, inv.ID); err != nil {
		return nil, errors.Database(err)
	}

	inv.Accepted = true
	return inv, nil
}

func (s *InvitationService) ListByClub(ctx context.Context, clubID int64) ([]model.Invitation, error) {
	invitations, err := s.invitations.ListByClub(ctx, clubID)
	if err != nil {
		return nil, errors.Database(err)
	}
	return invitations, nil
}

func (s *InvitationService) Delete(ctx context.Context, clubID, id int64) error {
	invitations, err := s.invitations.ListByClub(ctx, clubID)
	if err != nil {
		return errors.Database(err)
	}
	for _, inv := range invitations {
		if inv.ID == id {
			if err := s.invitations.Delete(ctx, id); err != nil {
				return errors.Database(err)
			}
			return nil
		}
	}
	return errors.NotFound("Einladung nicht gefunden.")
}
