package service

import (
	"context"

	"github.com/teammanager/server-go/internal/errors"
	"github.com/teammanager/server-go/internal/model"
	"github.com/teammanager/server-go/internal/repository"
)

type AttendanceService struct {
	attendance repository.AttendanceRepository
	events     repository.EventRepository
}

func NewAttendanceService(attendance repository.AttendanceRepository, events repository.EventRepository) *AttendanceService {
	return &AttendanceService{attendance: attendance, events: events}
}

// SetStatus records the user's response to an event invitation.
func (s *AttendanceService) SetStatus(ctx context.Context, userID int64, typ model.EventType, eventID int64, status model.AttendanceStatus) (*model.Attendance, error) {
	switch status {
	case model.AttendanceAccepted, model.AttendanceDeclined, model.AttendancePending:
	default:
		return nil, errors.ValidationError("Ungültiger Status.")
	}

	event, err := s.events.FindByID(ctx, typ, eventID)
	if err != nil {
		return nil, errors.Database(err)
	}
	if event == nil {
		return nil, errors.NotFound("Termin nicht gefunden.")
	}

	att, err := s.attendance.Upsert(ctx, userID, typ, eventID, status)
	if err != nil {
		return nil, errors.Database(err)
	}
	return att, nil
}

func (s *AttendanceService) ListByEvent(ctx context.Context, typ model.EventType, eventID int64) ([]model.Attendance, error) {
	event, err := s.events.FindByID(ctx, typ, eventID)
	if err != nil {
		return nil, errors.Database(err)
	}
	if event == nil {
		return nil, errors.NotFound("Termin nicht gefunden.")
	}

	entries, err := s.attendance.ListByEvent(ctx, typ, eventID)
	if err != nil {
		return nil, errors.Database(err)
	}
	return entries, nil
}

// SeedForEvent creates pending responses for the event's team so the open
// invitations show up immediately.
func (s *AttendanceService) SeedForEvent(ctx context.Context, typ model.EventType, eventID, teamID int64) error {
	if err := s.attendance.CreatePendingForTeam(ctx, typ, eventID, teamID); err != nil {
		return errors.Database(err)
	}
	return nil
}
