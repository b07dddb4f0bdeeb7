package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/teammanager/server-go/internal/model"
)

// EventRepository serves both games and trainings. The two tables share
// their layout except that only games carry an opponent; the event type
// picks the table via model.EventType.Table.
type EventRepository interface {
	ListByTeam(ctx context.Context, typ model.EventType, teamID int64) ([]model.Event, error)
	FindByID(ctx context.Context, typ model.EventType, id int64) (*model.Event, error)
	Create(ctx context.Context, params model.CreateEventParams) (*model.Event, error)
	Update(ctx context.Context, typ model.EventType, id int64, params model.UpdateEventParams) (*model.Event, error)
	Delete(ctx context.Context, typ model.EventType, id int64) error
	SetResult(ctx context.Context, typ model.EventType, id int64, markdown *string) (*model.Event, error)
	BelongsToClub(ctx context.Context, typ model.EventType, eventID, clubID int64) (bool, error)
	ListScheduleByClub(ctx context.Context, typ model.EventType, clubID int64) ([]model.ScheduleEntry, error)
	ListUpcomingForUser(ctx context.Context, userID int64, limit int) ([]model.UpcomingEvent, error)
}

type eventRepo struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) EventRepository {
	return &eventRepo{db: db}
}

func (r *eventRepo) ListByTeam(ctx context.Context, typ model.EventType, teamID int64) ([]model.Event, error) {
	var events []model.Event
	query := fmt.Sprintf(`
		SELECT * FROM %s WHERE team_id = $1 ORDER BY date NULLS LAST, start_time NULLS LAST
	`, typ.Table())
	if err := r.db.SelectContext(ctx, &events, query, teamID); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *eventRepo) FindByID(ctx context.Context, typ model.EventType, id int64) (*model.Event, error) {
	var event model.Event
	query := fmt.Sprintf(`SELECT * FROM %s WHERE id = $1`, typ.Table())
	err := r.db.GetContext(ctx, &event, query, id)
	return HandleNotFound(&event, err)
}

func (r *eventRepo) Create(ctx context.Context, params model.CreateEventParams) (*model.Event, error) {
	var event model.Event

	if params.Type == model.EventGame {
		err := r.db.GetContext(ctx, &event, `
			INSERT INTO games (title, date, start_time, location_text, venue_id, opponent, team_id, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING *
		`, params.Title, params.Date, params.StartTime, params.LocationText,
			params.VenueID, params.Opponent, params.TeamID, params.CreatedBy)
		if err != nil {
			return nil, err
		}
		return &event, nil
	}

	err := r.db.GetContext(ctx, &event, `
		INSERT INTO trainings (title, date, start_time, location_text, venue_id, team_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING *
	`, params.Title, params.Date, params.StartTime, params.LocationText,
		params.VenueID, params.TeamID, params.CreatedBy)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *eventRepo) Update(ctx context.Context, typ model.EventType, id int64, params model.UpdateEventParams) (*model.Event, error) {
	var event model.Event

	if typ == model.EventGame {
		err := r.db.GetContext(ctx, &event, `
			UPDATE games
			SET title = $2, date = $3, start_time = $4, location_text = $5, venue_id = $6, opponent = $7
			WHERE id = $1
			RETURNING *
		`, id, params.Title, params.Date, params.StartTime, params.LocationText, params.VenueID, params.Opponent)
		return HandleNotFound(&event, err)
	}

	err := r.db.GetContext(ctx, &event, `
		UPDATE trainings
		SET title = $2, date = $3, start_time = $4, location_text = $5, venue_id = $6
		WHERE id = $1
		RETURNING *
	`, id, params.Title, params.Date, params.StartTime, params.LocationText, params.VenueID)
	return HandleNotFound(&event, err)
}

func (r *eventRepo) Delete(ctx context.Context, typ model.EventType, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, typ.Table())
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *eventRepo) SetResult(ctx context.Context, typ model.EventType, id int64, markdown *string) (*model.Event, error) {
	var event model.Event
	query := fmt.Sprintf(`
		UPDATE %s SET result_markdown = $2 WHERE id = $1 RETURNING *
	`, typ.Table())
	err := r.db.GetContext(ctx, &event, query, id, markdown)
	return HandleNotFound(&event, err)
}

func (r *eventRepo) BelongsToClub(ctx context.Context, typ model.EventType, eventID, clubID int64) (bool, error) {
	var exists bool
	query := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM %s e
			JOIN teams t ON t.id = e.team_id
			JOIN sports s ON s.id = t.sport_id
			WHERE e.id = $1 AND s.club_id = $2
		)
	`, typ.Table())
	err := r.db.GetContext(ctx, &exists, query, eventID, clubID)
	return exists, err
}

func (r *eventRepo) ListScheduleByClub(ctx context.Context, typ model.EventType, clubID int64) ([]model.ScheduleEntry, error) {
	var entries []model.ScheduleEntry
	query := fmt.Sprintf(`
		SELECT e.*, v.address AS venue_address
		FROM %s e
		JOIN teams t ON t.id = e.team_id
		JOIN sports s ON s.id = t.sport_id
		LEFT JOIN venues v ON v.id = e.venue_id
		WHERE s.club_id = $1
		ORDER BY e.date NULLS LAST, e.start_time NULLS LAST
	`, typ.Table())
	if err := r.db.SelectContext(ctx, &entries, query, clubID); err != nil {
		return nil, err
	}
	return entries, nil
}

// ListUpcomingForUser returns the next events for teams the user belongs to,
// as player or as trainer.
func (r *eventRepo) ListUpcomingForUser(ctx context.Context, userID int64, limit int) ([]model.UpcomingEvent, error) {
	var events []model.UpcomingEvent
	err := r.db.SelectContext(ctx, &events, `
		WITH my_teams AS (
			SELECT team_id FROM players WHERE user_id = $1
			UNION
			SELECT team_id FROM team_trainers WHERE user_id = $1
		)
		SELECT g.id, g.title, g.date, g.start_time, g.opponent, 'game' AS event_type, t.name AS team_name
		FROM games g
		JOIN teams t ON t.id = g.team_id
		WHERE g.team_id IN (SELECT team_id FROM my_teams) AND g.date >= CURRENT_DATE
		UNION ALL
		SELECT tr.id, tr.title, tr.date, tr.start_time, NULL, 'training', t.name
		FROM trainings tr
		JOIN teams t ON t.id = tr.team_id
		WHERE tr.team_id IN (SELECT team_id FROM my_teams) AND tr.date >= CURRENT_DATE
		ORDER BY date, start_time NULLS LAST
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	return events, nil
}
