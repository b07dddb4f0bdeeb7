package model

import "time"

type Notification struct {
	ID            int64     `db:"id" json:"id"`
	UserID        int64     `db:"user_id" json:"userId"`
	Type          *string   `db:"type" json:"type,omitempty"`
	Title         *string   `db:"title" json:"title,omitempty"`
	Message       *string   `db:"message" json:"message,omitempty"`
	ReferenceType *string   `db:"reference_type" json:"referenceType,omitempty"`
	ReferenceID   *int64    `db:"reference_id" json:"referenceId,omitempty"`
	IsRead        bool      `db:"is_read" json:"isRead"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

type CreateNotificationParams struct {
	UserID        int64
	Type          string
	Title         string
	Message       string
	ReferenceType string
	ReferenceID   int64
}

type NotificationSettings struct {
	ID               int64 `db:"id" json:"-"`
	UserID           int64 `db:"user_id" json:"-"`
	EmailEnabled     bool  `db:"email_enabled" json:"emailEnabled"`
	PushEnabled      bool  `db:"push_enabled" json:"pushEnabled"`
	DashboardEnabled bool  `db:"dashboard_enabled" json:"dashboardEnabled"`
}
