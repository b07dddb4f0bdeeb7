package model

import "time"

type EventType string

const (
	EventGame     EventType = "game"
	EventTraining EventType = "training"
)

func (t EventType) Valid() bool {
	return t == EventGame || t == EventTraining
}

// Table returns the backing table for the event type. Callers must have
// validated the type first; an empty string makes the query fail loudly.
func (t EventType) Table() string {
	switch t {
	case EventGame:
		return "games"
	case EventTraining:
		return "trainings"
	}
	return ""
}

// Event covers both games and trainings; Opponent is only set for games.
type Event struct {
	ID             int64      `db:"id" json:"id"`
	Title          string     `db:"title" json:"title"`
	Date           *time.Time `db:"date" json:"date,omitempty"`
	StartTime      *string    `db:"start_time" json:"time,omitempty"`
	LocationText   *string    `db:"location_text" json:"locationText,omitempty"`
	VenueID        *int64     `db:"venue_id" json:"venueId,omitempty"`
	Opponent       *string    `db:"opponent" json:"opponent,omitempty"`
	TeamID         int64      `db:"team_id" json:"teamId"`
	CreatedBy      int64      `db:"created_by" json:"createdBy"`
	ResultMarkdown *string    `db:"result_markdown" json:"resultMarkdown,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
}

type CreateEventParams struct {
	Type         EventType
	Title        string
	Date         *time.Time
	StartTime    *string
	LocationText *string
	VenueID      *int64
	Opponent     *string
	TeamID       int64
	CreatedBy    int64
}

type UpdateEventParams struct {
	Title        string
	Date         *time.Time
	StartTime    *string
	LocationText *string
	VenueID      *int64
	Opponent     *string
}

// ScheduleEntry joins an event with its venue address for exports.
type ScheduleEntry struct {
	Event
	VenueAddress *string `db:"venue_address" json:"venueAddress,omitempty"`
}

// UpcomingEvent is the dashboard projection of a game or training.
type UpcomingEvent struct {
	ID        int64      `db:"id" json:"id"`
	Title     string     `db:"title" json:"title"`
	Date      *time.Time `db:"date" json:"date,omitempty"`
	StartTime *string    `db:"start_time" json:"time,omitempty"`
	Opponent  *string    `db:"opponent" json:"opponent,omitempty"`
	EventType EventType  `db:"event_type" json:"eventType"`
	TeamName  string     `db:"team_name" json:"teamName"`
}
