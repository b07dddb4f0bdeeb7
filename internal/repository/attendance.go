package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/teammanager/server-go/internal/model"
)

type AttendanceRepository interface {
	Upsert(ctx context.Context, userID int64, typ model.EventType, eventID int64, status model.AttendanceStatus) (*model.Attendance, error)
	ListByEvent(ctx context.Context, typ model.EventType, eventID int64) ([]model.Attendance, error)
	FindForUser(ctx context.Context, userID int64, typ model.EventType, eventID int64) (*model.Attendance, error)
	CreatePendingForTeam(ctx context.Context, typ model.EventType, eventID, teamID int64) error
	CountPendingForUser(ctx context.Context, userID int64) (int, error)
	ListPendingReminders(ctx context.Context, typ model.EventType, until time.Time) ([]model.ReminderCandidate, error)
	ListPendingEscalations(ctx context.Context, typ model.EventType, until time.Time) ([]model.ReminderCandidate, error)
	MarkReminded(ctx context.Context, ids []int64) error
	MarkEscalated(ctx context.Context, ids []int64) error
}

type attendanceRepo struct {
	db *sqlx.DB
}

func NewAttendanceRepository(db *sqlx.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) Upsert(ctx context.Context, userID int64, typ model.EventType, eventID int64, status model.AttendanceStatus) (*model.Attendance, error) {
	var att model.Attendance
	err := r.db.GetContext(ctx, &att, `
		INSERT INTO attendance (user_id, event_type, event_id, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, event_type, event_id) DO UPDATE
		SET status = $4, updated_at = NOW()
		RETURNING *
	`, userID, typ, eventID, status)
	if err != nil {
		return nil, err
	}
	return &att, nil
}

// CreatePendingForTeam seeds a pending response for every player of the
// team, so open invitations are visible before anyone reacts.
func (r *attendanceRepo) CreatePendingForTeam(ctx context.Context, typ model.EventType, eventID, teamID int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance (user_id, event_type, event_id, status)
		SELECT user_id, $1, $2, 'pending' FROM players WHERE team_id = $3
		ON CONFLICT (user_id, event_type, event_id) DO NOTHING
	`, typ, eventID, teamID)
	return err
}

func (r *attendanceRepo) CountPendingForUser(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM attendance WHERE user_id = $1 AND status = 'pending'
	`, userID)
	return count, err
}

func (r *attendanceRepo) ListByEvent(ctx context.Context, typ model.EventType, eventID int64) ([]model.Attendance, error) {
	var entries []model.Attendance
	err := r.db.SelectContext(ctx, &entries, `
		SELECT a.*, u.username
		FROM attendance a
		JOIN users u ON u.id = a.user_id
		WHERE a.event_type = $1 AND a.event_id = $2
		ORDER BY u.username
	`, typ, eventID)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *attendanceRepo) FindForUser(ctx context.Context, userID int64, typ model.EventType, eventID int64) (*model.Attendance, error) {
	var att model.Attendance
	err := r.db.GetContext(ctx, &att, `
		SELECT a.*, u.username
		FROM attendance a
		JOIN users u ON u.id = a.user_id
		WHERE a.user_id = $1 AND a.event_type = $2 AND a.event_id = $3
	`, userID, typ, eventID)
	return HandleNotFound(&att, err)
}

// ListPendingReminders returns pending responses for events starting before
// the cutoff that have not been nudged yet.
func (r *attendanceRepo) ListPendingReminders(ctx context.Context, typ model.EventType, until time.Time) ([]model.ReminderCandidate, error) {
	return r.listPending(ctx, typ, until, `a.reminded = FALSE`)
}

// ListPendingEscalations returns pending responses close enough to the event
// that the trainers should hear about it.
func (r *attendanceRepo) ListPendingEscalations(ctx context.Context, typ model.EventType, until time.Time) ([]model.ReminderCandidate, error) {
	return r.listPending(ctx, typ, until, `a.escalated = FALSE`)
}

func (r *attendanceRepo) listPending(ctx context.Context, typ model.EventType, until time.Time, flagCond string) ([]model.ReminderCandidate, error) {
	query := `
		SELECT a.id AS attendance_id, a.user_id, a.event_type, a.event_id,
		       e.title AS event_title, e.date AS event_date, e.team_id
		FROM attendance a
		JOIN ` + typ.Table() + ` e ON e.id = a.event_id
		WHERE a.event_type = $1
		  AND a.status = 'pending'
		  AND ` + flagCond + `
		  AND e.date IS NOT NULL
		  AND e.date >= CURRENT_DATE
		  AND e.date <= $2
	`
	var candidates []model.ReminderCandidate
	if err := r.db.SelectContext(ctx, &candidates, query, typ, until); err != nil {
		return nil, err
	}
	return candidates, nil
}

func (r *attendanceRepo) MarkReminded(ctx context.Context, ids []int64) error {
	return r.setFlag(ctx, `reminded`, ids)
}

func (r *attendanceRepo) MarkEscalated(ctx context.Context, ids []int64) error {
	return r.setFlag(ctx, `escalated`, ids)
}

func (r *attendanceRepo) setFlag(ctx context.Context, column string, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`UPDATE attendance SET `+column+` = TRUE WHERE id IN (?)`, ids)
	if err != nil {
		return err
	}
	query = r.db.Rebind(query)
	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}
