package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/teammanager/server-go/internal/model"
)

type ClubRepository interface {
	ListAll(ctx context.Context) ([]model.ClubSummary, error)
	ListForUser(ctx context.Context, userID int64) ([]model.ClubSummary, error)
	FindByID(ctx context.Context, id int64) (*model.ClubSummary, error)
	Create(ctx context.Context, name string) (*model.ClubSummary, error)
	UpdateName(ctx context.Context, id int64, name string) (*model.ClubSummary, error)
	Delete(ctx context.Context, id int64) error
	SetLogo(ctx context.Context, id int64, data []byte, mimeType string) error
	GetLogo(ctx context.Context, id int64) (*model.Club, error)
	IsMember(ctx context.Context, clubID, userID int64) (bool, error)
	AddMember(ctx context.Context, clubID, userID int64) error
	RemoveMember(ctx context.Context, clubID, userID int64) error
	ListMembers(ctx context.Context, clubID int64) ([]model.ClubMember, error)
}

type clubRepo struct {
	db *sqlx.DB
}

func NewClubRepository(db *sqlx.DB) ClubRepository {
	return &clubRepo{db: db}
}

func (r *clubRepo) ListAll(ctx context.Context) ([]model.ClubSummary, error) {
	var clubs []model.ClubSummary
	err := r.db.SelectContext(ctx, &clubs, `
		SELECT id, name, created_at FROM clubs ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	return clubs, nil
}

func (r *clubRepo) ListForUser(ctx context.Context, userID int64) ([]model.ClubSummary, error) {
	var clubs []model.ClubSummary
	err := r.db.SelectContext(ctx, &clubs, `
		SELECT c.id, c.name, c.created_at
		FROM clubs c
		JOIN club_members m ON m.club_id = c.id
		WHERE m.user_id = $1
		ORDER BY c.name
	`, userID)
	if err != nil {
		return nil, err
	}
	return clubs, nil
}

func (r *clubRepo) FindByID(ctx context.Context, id int64) (*model.ClubSummary, error) {
	var club model.ClubSummary
	err := r.db.GetContext(ctx, &club, `
		SELECT id, name, created_at FROM clubs WHERE id = $1
	`, id)
	return HandleNotFound(&club, err)
}

func (r *clubRepo) Create(ctx context.Context, name string) (*model.ClubSummary, error) {
	var club model.ClubSummary
	err := r.db.GetContext(ctx, &club, `
		INSERT INTO clubs (name) VALUES ($1)
		RETURNING id, name, created_at
	`, name)
	if err != nil {
		return nil, err
	}
	return &club, nil
}

func (r *clubRepo) UpdateName(ctx context.Context, id int64, name string) (*model.ClubSummary, error) {
	var club model.ClubSummary
	err := r.db.GetContext(ctx, &club, `
		UPDATE clubs SET name = $2 WHERE id = $1
		RETURNING id, name, created_at
	`, id, name)
	return HandleNotFound(&club, err)
}

func (r *clubRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM clubs WHERE id = $1`, id)
	return err
}

func (r *clubRepo) SetLogo(ctx context.Context, id int64, data []byte, mimeType string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE clubs SET logo = $2, logo_mime = $3 WHERE id = $1
	`, id, data, mimeType)
	return err
}

func (r *clubRepo) GetLogo(ctx context.Context, id int64) (*model.Club, error) {
	var club model.Club
	err := r.db.GetContext(ctx, &club, `SELECT * FROM clubs WHERE id = $1`, id)
	return HandleNotFound(&club, err)
}

func (r *clubRepo) IsMember(ctx context.Context, clubID, userID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM club_members WHERE club_id = $1 AND user_id = $2
		)
	`, clubID, userID)
	return exists, err
}

func (r *clubRepo) AddMember(ctx context.Context, clubID, userID int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO club_members (club_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, club_id) DO NOTHING
	`, clubID, userID)
	return err
}

func (r *clubRepo) RemoveMember(ctx context.Context, clubID, userID int64) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM club_members WHERE club_id = $1 AND user_id = $2
	`, clubID, userID)
	return err
}

func (r *clubRepo) ListMembers(ctx context.Context, clubID int64) ([]model.ClubMember, error) {
	var members []model.ClubMember
	err := r.db.SelectContext(ctx, &members, `
		SELECT m.user_id, u.username, u.email, m.created_at
		FROM club_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.club_id = $1
		ORDER BY u.username
	`, clubID)
	if err != nil {
		return nil, err
	}
	return members, nil
}
