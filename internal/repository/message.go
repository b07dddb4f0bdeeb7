package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/teammanager/server-go/internal/model"
)

type MessageRepository interface {
	Create(ctx context.Context, params model.CreateMessageParams) (*model.Message, error)
	AddRecipients(ctx context.Context, messageID int64, userIDs []int64) error
	FindByID(ctx context.Context, id int64) (*model.Message, error)
	ListInbox(ctx context.Context, userID int64) ([]model.InboxEntry, error)
	ListSent(ctx context.Context, userID int64) ([]model.Message, error)
	ListReplies(ctx context.Context, parentID int64) ([]model.Message, error)
	IsRecipient(ctx context.Context, messageID, userID int64) (bool, error)
	MarkRead(ctx context.Context, messageID, userID int64) (bool, error)
	CountUnread(ctx context.Context, userID int64) (int, error)
}

type messageRepo struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) MessageRepository {
	return &messageRepo{db: db}
}

func (r *messageRepo) Create(ctx context.Context, params model.CreateMessageParams) (*model.Message, error) {
	var msg model.Message
	err := r.db.GetContext(ctx, &msg, `
		INSERT INTO messages (sender_id, subject, body, target_type, target_id, parent_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING *
	`, params.SenderID, params.Subject, params.Body, params.TargetType, params.TargetID, params.ParentID)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *messageRepo) AddRecipients(ctx context.Context, messageID int64, userIDs []int64) error {
	if len(userIDs) == 0 {
		return nil
	}

	rows := make([]map[string]any, 0, len(userIDs))
	for _, id := range userIDs {
		rows = append(rows, map[string]any{"message_id": messageID, "user_id": id})
	}

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO message_recipients (message_id, user_id)
		VALUES (:message_id, :user_id)
	`, rows)
	return err
}

func (r *messageRepo) FindByID(ctx context.Context, id int64) (*model.Message, error) {
	var msg model.Message
	err := r.db.GetContext(ctx, &msg, `
		SELECT m.*, u.username AS sender_name
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.id = $1
	`, id)
	return HandleNotFound(&msg, err)
}

func (r *messageRepo) ListInbox(ctx context.Context, userID int64) ([]model.InboxEntry, error) {
	var entries []model.InboxEntry
	err := r.db.SelectContext(ctx, &entries, `
		SELECT m.id, m.sender_id, m.subject, m.body, m.target_type, m.target_id,
		       m.parent_id, m.created_at, u.username AS sender_name, mr.is_read
		FROM message_recipients mr
		JOIN messages m ON m.id = mr.message_id
		JOIN users u ON u.id = m.sender_id
		WHERE mr.user_id = $1
		ORDER BY m.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *messageRepo) ListSent(ctx context.Context, userID int64) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.SelectContext(ctx, &messages, `
		SELECT m.*, u.username AS sender_name
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.sender_id = $1
		ORDER BY m.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepo) ListReplies(ctx context.Context, parentID int64) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.SelectContext(ctx, &messages, `
		SELECT m.*, u.username AS sender_name
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.parent_id = $1
		ORDER BY m.created_at
	`, parentID)
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepo) IsRecipient(ctx context.Context, messageID, userID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM message_recipients WHERE message_id = $1 AND user_id = $2
		)
	`, messageID, userID)
	return exists, err
}

func (r *messageRepo) MarkRead(ctx context.Context, messageID, userID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE message_recipients SET is_read = TRUE
		WHERE message_id = $1 AND user_id = $2
	`, messageID, userID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	return affected > 0, err
}

func (r *messageRepo) CountUnread(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM message_recipients WHERE user_id = $1 AND is_read = FALSE
	`, userID)
	return count, err
}
