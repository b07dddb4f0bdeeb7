package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/teammanager/server-go/internal/model"
)

type PlayerRepository interface {
	ListByTeam(ctx context.Context, teamID int64) ([]model.Player, error)
	FindByID(ctx context.Context, id int64) (*model.Player, error)
	Create(ctx context.Context, teamID, userID int64, jerseyNumber *int) (*model.Player, error)
	UpdateJerseyNumber(ctx context.Context, id int64, jerseyNumber *int) (*model.Player, error)
	Delete(ctx context.Context, id int64) error
	ListUserIDsByTeam(ctx context.Context, teamID int64) ([]int64, error)
	ListUserIDsBySport(ctx context.Context, sportID int64) ([]int64, error)
}

type playerRepo struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) PlayerRepository {
	return &playerRepo{db: db}
}

func (r *playerRepo) ListByTeam(ctx context.Context, teamID int64) ([]model.Player, error) {
	var players []model.Player
	err := r.db.SelectContext(ctx, &players, `
		SELECT p.id, p.user_id, p.team_id, p.jersey_number, p.created_at, u.username
		FROM players p
		JOIN users u ON u.id = p.user_id
		WHERE p.team_id = $1
		ORDER BY p.jersey_number NULLS LAST, u.username
	`, teamID)
	if err != nil {
		return nil, err
	}
	return players, nil
}

func (r *playerRepo) FindByID(ctx context.Context, id int64) (*model.Player, error) {
	var player model.Player
	err := r.db.GetContext(ctx, &player, `
		SELECT p.id, p.user_id, p.team_id, p.jersey_number, p.created_at, u.username
		FROM players p
		JOIN users u ON u.id = p.user_id
		WHERE p.id = $1
	`, id)
	return HandleNotFound(&player, err)
}

func (r *playerRepo) Create(ctx context.Context, teamID, userID int64, jerseyNumber *int) (*model.Player, error) {
	var id int64
	err := r.db.GetContext(ctx, &id, `
		INSERT INTO players (user_id, team_id, jersey_number)
		VALUES ($1, $2, $3)
		RETURNING id
	`, userID, teamID, jerseyNumber)
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *playerRepo) UpdateJerseyNumber(ctx context.Context, id int64, jerseyNumber *int) (*model.Player, error) {
	_, err := r.db.ExecContext(ctx, `
		UPDATE players SET jersey_number = $2 WHERE id = $1
	`, id, jerseyNumber)
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *playerRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM players WHERE id = $1`, id)
	return err
}

func (r *playerRepo) ListUserIDsByTeam(ctx context.Context, teamID int64) ([]int64, error) {
	var ids []int64
	err := r.db.SelectContext(ctx, &ids, `
		SELECT user_id FROM players WHERE team_id = $1
	`, teamID)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *playerRepo) ListUserIDsBySport(ctx context.Context, sportID int64) ([]int64, error) {
	var ids []int64
	err := r.db.SelectContext(ctx, &ids, `
		SELECT DISTINCT p.user_id
		FROM players p
		JOIN teams t ON t.id = p.team_id
		WHERE t.sport_id = $1
	`, sportID)
	if err != nil {
		return nil, err
	}
	return ids, nil
}
