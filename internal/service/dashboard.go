package service

import (
	"context"

	"github.com/teammanager/server-go/internal/errors"
	"github.com/teammanager/server-go/internal/model"
	"github.com/teammanager/server-go/internal/repository"
)

const dashboardEventLimit = 10

type DashboardSummary struct {
	UpcomingEvents      []model.UpcomingEvent `json:"upcomingEvents"`
	UnreadMessages      int                   `json:"unreadMessages"`
	UnreadNotifications int                   `json:"unreadNotifications"`
	PendingAttendance   int                   `json:"pendingAttendance"`
	Clubs               []model.ClubSummary   `json:"clubs"`
}

type DashboardService struct {
	events        repository.EventRepository
	messages      repository.MessageRepository
	notifications repository.NotificationRepository
	attendance    repository.AttendanceRepository
	clubs         repository.ClubRepository
}

func NewDashboardService(
	events repository.EventRepository,
	messages repository.MessageRepository,
	notifications repository.NotificationRepository,
	attendance repository.AttendanceRepository,
	clubs repository.ClubRepository,
) *DashboardService {
	return &DashboardService{
		events:        events,
		messages:      messages,
		notifications: notifications,
		attendance:    attendance,
		clubs:         clubs,
	}
}

func (s *DashboardService) Summary(ctx context.Context, userID int64) (*DashboardSummary, error) {
	upcoming, err := s.events.ListUpcomingForUser(ctx, userID, dashboardEventLimit)
	if err != nil {
		return nil, errors.Database(err)
	}

	unreadMessages, err := s.messages.CountUnread(ctx, userID)
	if err != nil {
		return nil, errors.Database(err)
	}

	unreadNotifications, err := s.notifications.CountUnread(ctx, userID)
	if err != nil {
		return nil, errors.Database(err)
	}

	pendingAttendance, err := s.attendance.CountPendingForUser(ctx, userID)
	if err != nil {
		return nil, errors.Database(err)
	}

	clubs, err := s.clubs.ListForUser(ctx, userID)
	if err != nil {
		return nil, errors.Database(err)
	}

	if upcoming == nil {
		upcoming = []model.UpcomingEvent{}
	}
	if clubs == nil {
		clubs = []model.ClubSummary{}
	}

	return &DashboardSummary{
		UpcomingEvents:      upcoming,
		UnreadMessages:      unreadMessages,
		UnreadNotifications: unreadNotifications,
		PendingAttendance:   pendingAttendance,
		Clubs:               clubs,
	}, nil
}
