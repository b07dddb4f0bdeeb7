package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/teammanager/server-go/internal/model"
)

type SportRepository interface {
	ListByClub(ctx context.Context, clubID int64) ([]model.Sport, error)
	FindByID(ctx context.Context, id int64) (*model.Sport, error)
	Create(ctx context.Context, clubID int64, name string) (*model.Sport, error)
	UpdateName(ctx context.Context, id int64, name string) (*model.Sport, error)
	Delete(ctx context.Context, id int64) error
	BelongsToClub(ctx context.Context, sportID, clubID int64) (bool, error)
}

type sportRepo struct {
	db *sqlx.DB
}

func NewSportRepository(db *sqlx.DB) SportRepository {
	return &sportRepo{db: db}
}

func (r *sportRepo) ListByClub(ctx context.Context, clubID int64) ([]model.Sport, error) {
	var sports []model.Sport
	err := r.db.SelectContext(ctx, &sports, `
		SELECT * FROM sports WHERE club_id = $1 ORDER BY name
	`, clubID)
	if err != nil {
		return nil, err
	}
	return sports, nil
}

func (r *sportRepo) FindByID(ctx context.Context, id int64) (*model.Sport, error) {
	var sport model.Sport
	err := r.db.GetContext(ctx, &sport, `SELECT * FROM sports WHERE id = $1`, id)
	return HandleNotFound(&sport, err)
}

func (r *sportRepo) Create(ctx context.Context, clubID int64, name string) (*model.Sport, error) {
	var sport model.Sport
	err := r.db.GetContext(ctx, &sport, `
		INSERT INTO sports (name, club_id) VALUES ($1, $2)
		RETURNING *
	`, name, clubID)
	if err != nil {
		return nil, err
	}
	return &sport, nil
}

func (r *sportRepo) UpdateName(ctx context.Context, id int64, name string) (*model.Sport, error) {
	var sport model.Sport
	err := r.db.GetContext(ctx, &sport, `
		UPDATE sports SET name = $2 WHERE id = $1
		RETURNING *
	`, id, name)
	return HandleNotFound(&sport, err)
}

func (r *sportRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sports WHERE id = $1`, id)
	return err
}

func (r *sportRepo) BelongsToClub(ctx context.Context, sportID, clubID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM sports WHERE id = $1 AND club_id = $2
		)
	`, sportID, clubID)
	return exists, err
}
