package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/teammanager/server-go/internal/model"
)

type RoleRepository interface {
	FindByUserID(ctx context.Context, userID int64) ([]model.RoleAssignment, error)
	Create(ctx context.Context, userID int64, role model.Role, clubID, sportID, teamID *int64) (*model.RoleAssignment, error)
	Delete(ctx context.Context, id int64) error
	ListTrainerIDsByTeam(ctx context.Context, teamID int64) ([]int64, error)
}

type roleRepo struct {
	db *sqlx.DB
}

func NewRoleRepository(db *sqlx.DB) RoleRepository {
	return &roleRepo{db: db}
}

func (r *roleRepo) FindByUserID(ctx context.Context, userID int64) ([]model.RoleAssignment, error) {
	var assignments []model.RoleAssignment
	err := r.db.SelectContext(ctx, &assignments, `
		SELECT * FROM user_roles WHERE user_id = $1 ORDER BY id
	`, userID)
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *roleRepo) Create(ctx context.Context, userID int64, role model.Role, clubID, sportID, teamID *int64) (*model.RoleAssignment, error) {
	var assignment model.RoleAssignment
	err := r.db.GetContext(ctx, &assignment, `
		INSERT INTO user_roles (user_id, role, club_id, sport_id, team_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *
	`, userID, role, clubID, sportID, teamID)
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *roleRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM user_roles WHERE id = $1`, id)
	return err
}

// ListTrainerIDsByTeam returns users who coach the team, either via the
// trainer link table or a team-scoped Trainer role.
func (r *roleRepo) ListTrainerIDsByTeam(ctx context.Context, teamID int64) ([]int64, error) {
	var ids []int64
	err := r.db.SelectContext(ctx, &ids, `
		SELECT user_id FROM team_trainers WHERE team_id = $1
		UNION
		SELECT user_id FROM user_roles WHERE role = 'Trainer' AND team_id = $1
	`, teamID)
	if err != nil {
		return nil, err
	}
	return ids, nil
}
