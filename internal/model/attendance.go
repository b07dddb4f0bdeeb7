package model

import "time"

type AttendanceStatus string

const (
	AttendancePending  AttendanceStatus = "pending"
	AttendanceAccepted AttendanceStatus = "accepted"
	AttendanceDeclined AttendanceStatus = "declined"
)

type Attendance struct {
	ID        int64            `db:"id" json:"id"`
	UserID    int64            `db:"user_id" json:"userId"`
	EventType EventType        `db:"event_type" json:"eventType"`
	EventID   int64            `db:"event_id" json:"eventId"`
	Status    AttendanceStatus `db:"status" json:"status"`
	Reminded  bool             `db:"reminded" json:"reminded"`
	Escalated bool             `db:"escalated" json:"escalated"`
	CreatedAt time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time        `db:"updated_at" json:"updatedAt"`
	Username  string           `db:"username" json:"username"`
}

// ReminderCandidate is a pending attendance row joined with its event, used
// by the reminder job to decide who still has to respond.
type ReminderCandidate struct {
	AttendanceID int64     `db:"attendance_id"`
	UserID       int64     `db:"user_id"`
	EventType    EventType `db:"event_type"`
	EventID      int64     `db:"event_id"`
	EventTitle   string    `db:"event_title"`
	EventDate    time.Time `db:"event_date"`
	TeamID       int64     `db:"team_id"`
}
