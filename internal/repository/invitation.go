package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/teammanager/server-go/internal/model"
)

type InvitationRepository interface {
	Create(ctx context.Context, params model.CreateInvitationParams) (*model.Invitation, error)
	FindByCode(ctx context.Context, code string) (*model.Invitation, error)
	ListByClub(ctx context.Context, clubID int64) ([]model.Invitation, error)
	MarkAccepted(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	DeleteStaleUnaccepted(ctx context.Context, olderThan time.Time) (int64, error)
}

type invitationRepo struct {
	db *sqlx.DB
}

func NewInvitationRepository(db *sqlx.DB) InvitationRepository {
	return &invitationRepo{db: db}
}

func (r *invitationRepo) Create(ctx context.Context, params model.CreateInvitationParams) (*model.Invitation, error) {
	var inv model.Invitation
	err := r.db.GetContext(ctx, &inv, `
		INSERT INTO invitations (email, role, club_id, code, invited_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *
	`, params.Email, params.Role, params.ClubID, params.Code, params.InvitedBy)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *invitationRepo) FindByCode(ctx context.Context, code string) (*model.Invitation, error) {
	var inv model.Invitation
	err := r.db.GetContext(ctx, &inv, `
		SELECT i.*, c.name AS club_name
		FROM invitations i
		JOIN clubs c ON c.id = i.club_id
		WHERE i.code = $1
	`, code)
	return HandleNotFound(&inv, err)
}

func (r *invitationRepo) ListByClub(ctx context.Context, clubID int64) ([]model.Invitation, error) {
	var invitations []model.Invitation
	err := r.db.SelectContext(ctx, &invitations, `
		SELECT i.*, c.name AS club_name
		FROM invitations i
		JOIN clubs c ON c.id = i.club_id
		WHERE i.club_id = $1
		ORDER BY i.created_at DESC
	`, clubID)
	if err != nil {
		return nil, err
	}
	return invitations, nil
}

func (r *invitationRepo) MarkAccepted(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE invitations SET accepted = TRUE WHERE id = $1
	`, id)
	return err
}

func (r *invitationRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM invitations WHERE id = $1`, id)
	return err
}

func (r *invitationRepo) DeleteStaleUnaccepted(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM invitations WHERE accepted = FALSE AND created_at < $1
	`, olderThan)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
