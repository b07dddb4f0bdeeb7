package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/teammanager/server-go/internal/model"
)

type NotificationRepository interface {
	Create(ctx context.Context, params model.CreateNotificationParams) (*model.Notification, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]model.Notification, error)
	CountUnread(ctx context.Context, userID int64) (int, error)
	MarkRead(ctx context.Context, id, userID int64) (bool, error)
	MarkAllRead(ctx context.Context, userID int64) error
	Delete(ctx context.Context, id, userID int64) (bool, error)
	GetSettings(ctx context.Context, userID int64) (*model.NotificationSettings, error)
	UpsertSettings(ctx context.Context, settings model.NotificationSettings) (*model.NotificationSettings, error)
}

type notificationRepo struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, params model.CreateNotificationParams) (*model.Notification, error) {
	var n model.Notification
	err := r.db.GetContext(ctx, &n, `
		INSERT INTO notifications (user_id, type, title, message, reference_type, reference_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING *
	`, params.UserID, params.Type, params.Title, params.Message, params.ReferenceType, params.ReferenceID)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]model.Notification, error) {
	var notifications []model.Notification
	err := r.db.SelectContext(ctx, &notifications, `
		SELECT * FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *notificationRepo) CountUnread(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE
	`, userID)
	return count, err
}

// MarkRead only touches the caller's own notifications; the bool reports
// whether a row was actually updated.
func (r *notificationRepo) MarkRead(ctx context.Context, id, userID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, userID int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE notifications SET is_read = TRUE WHERE user_id = $1
	`, userID)
	return err
}

func (r *notificationRepo) Delete(ctx context.Context, id, userID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM notifications WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}

// GetSettings returns stored preferences, falling back to the defaults when
// the user never saved any.
func (r *notificationRepo) GetSettings(ctx context.Context, userID int64) (*model.NotificationSettings, error) {
	var settings model.NotificationSettings
	err := r.db.GetContext(ctx, &settings, `
		SELECT * FROM notification_settings WHERE user_id = $1
	`, userID)
	found, err := HandleNotFound(&settings, err)
	if err != nil {
		return nil, err
	}
	if found == nil {
		return &model.NotificationSettings{
			UserID:           userID,
			EmailEnabled:     true,
			PushEnabled:      true,
			DashboardEnabled: true,
		}, nil
	}
	return found, nil
}

func (r *notificationRepo) UpsertSettings(ctx context.Context, settings model.NotificationSettings) (*model.NotificationSettings, error) {
	var saved model.NotificationSettings
	err := r.db.GetContext(ctx, &saved, `
		INSERT INTO notification_settings (user_id, email_enabled, push_enabled, dashboard_enabled)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET email_enabled = $2, push_enabled = $3, dashboard_enabled = $4
		RETURNING *
	`, settings.UserID, settings.EmailEnabled, settings.PushEnabled, settings.DashboardEnabled)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}
