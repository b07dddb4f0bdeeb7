package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/teammanager/server-go/internal/model"
)

type TeamRepository interface {
	ListBySport(ctx context.Context, sportID int64) ([]model.Team, error)
	ListByClub(ctx context.Context, clubID int64) ([]model.Team, error)
	FindByID(ctx context.Context, id int64) (*model.Team, error)
	Create(ctx context.Context, sportID int64, name string) (*model.Team, error)
	UpdateName(ctx context.Context, id int64, name string) (*model.Team, error)
	Delete(ctx context.Context, id int64) error
	BelongsToClub(ctx context.Context, teamID, clubID int64) (bool, error)
	ListTrainers(ctx context.Context, teamID int64) ([]model.TeamTrainer, error)
	AddTrainer(ctx context.Context, teamID, userID int64) error
	RemoveTrainer(ctx context.Context, teamID, userID int64) error
}

type teamRepo struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) TeamRepository {
	return &teamRepo{db: db}
}

func (r *teamRepo) ListBySport(ctx context.Context, sportID int64) ([]model.Team, error) {
	var teams []model.Team
	err := r.db.SelectContext(ctx, &teams, `
		SELECT * FROM teams WHERE sport_id = $1 ORDER BY name
	`, sportID)
	if err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *teamRepo) ListByClub(ctx context.Context, clubID int64) ([]model.Team, error) {
	var teams []model.Team
	err := r.db.SelectContext(ctx, &teams, `
		SELECT t.id, t.name, t.sport_id, t.created_at
		FROM teams t
		JOIN sports s ON s.id = t.sport_id
		WHERE s.club_id = $1
		ORDER BY t.name
	`, clubID)
	if err != nil {
		return nil, err
	}
	return teams, nil
}

func (r *teamRepo) FindByID(ctx context.Context, id int64) (*model.Team, error) {
	var team model.Team
	err := r.db.GetContext(ctx, &team, `SELECT * FROM teams WHERE id = $1`, id)
	return HandleNotFound(&team, err)
}

func (r *teamRepo) Create(ctx context.Context, sportID int64, name string) (*model.Team, error) {
	var team model.Team
	err := r.db.GetContext(ctx, &team, `
		INSERT INTO teams (name, sport_id) VALUES ($1, $2)
		RETURNING *
	`, name, sportID)
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *teamRepo) UpdateName(ctx context.Context, id int64, name string) (*model.Team, error) {
	var team model.Team
	err := r.db.GetContext(ctx, &team, `
		UPDATE teams SET name = $2 WHERE id = $1
		RETURNING *
	`, id, name)
	return HandleNotFound(&team, err)
}

func (r *teamRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM teams WHERE id = $1`, id)
	return err
}

func (r *teamRepo) BelongsToClub(ctx context.Context, teamID, clubID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM teams t
			JOIN sports s ON s.id = t.sport_id
			WHERE t.id = $1 AND s.club_id = $2
		)
	`, teamID, clubID)
	return exists, err
}

func (r *teamRepo) ListTrainers(ctx context.Context, teamID int64) ([]model.TeamTrainer, error) {
	var trainers []model.TeamTrainer
	err := r.db.SelectContext(ctx, &trainers, `
		SELECT tt.id, tt.team_id, tt.user_id, u.username
		FROM team_trainers tt
		JOIN users u ON u.id = tt.user_id
		WHERE tt.team_id = $1
		ORDER BY u.username
	`, teamID)
	if err != nil {
		return nil, err
	}
	return trainers, nil
}

func (r *teamRepo) AddTrainer(ctx context.Context, teamID, userID int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO team_trainers (team_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (team_id, user_id) DO NOTHING
	`, teamID, userID)
	return err
}

func (r *teamRepo) RemoveTrainer(ctx context.Context, teamID, userID int64) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM team_trainers WHERE team_id = $1 AND user_id = $2
	`, teamID, userID)
	return err
}
