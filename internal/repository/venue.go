package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/teammanager/server-go/internal/model"
)

type VenueRepository interface {
	ListByClub(ctx context.Context, clubID int64) ([]model.Venue, error)
	FindByID(ctx context.Context, id int64) (*model.Venue, error)
	Create(ctx context.Context, clubID int64, params model.VenueParams) (*model.Venue, error)
	Update(ctx context.Context, id int64, params model.VenueParams) (*model.Venue, error)
	Delete(ctx context.Context, id int64) error
	BelongsToClub(ctx context.Context, venueID, clubID int64) (bool, error)
}

type venueRepo struct {
	db *sqlx.DB
}

func NewVenueRepository(db *sqlx.DB) VenueRepository {
	return &venueRepo{db: db}
}

func (r *venueRepo) ListByClub(ctx context.Context, clubID int64) ([]model.Venue, error) {
	var venues []model.Venue
	err := r.db.SelectContext(ctx, &venues, `
		SELECT * FROM venues WHERE club_id = $1 ORDER BY name
	`, clubID)
	if err != nil {
		return nil, err
	}
	return venues, nil
}

func (r *venueRepo) FindByID(ctx context.Context, id int64) (*model.Venue, error) {
	var venue model.Venue
	err := r.db.GetContext(ctx, &venue, `SELECT * FROM venues WHERE id = $1`, id)
	return HandleNotFound(&venue, err)
}

func (r *venueRepo) Create(ctx context.Context, clubID int64, params model.VenueParams) (*model.Venue, error) {
	var venue model.Venue
	err := r.db.GetContext(ctx, &venue, `
		INSERT INTO venues (name, address, coordinates, map_link, club_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *
	`, params.Name, params.Address, params.Coordinates, params.MapLink, clubID)
	if err != nil {
		return nil, err
	}
	return &venue, nil
}

func (r *venueRepo) Update(ctx context.Context, id int64, params model.VenueParams) (*model.Venue, error) {
	var venue model.Venue
	err := r.db.GetContext(ctx, &venue, `
		UPDATE venues
		SET name = $2, address = $3, coordinates = $4, map_link = $5
		WHERE id = $1
		RETURNING *
	`, id, params.Name, params.Address, params.Coordinates, params.MapLink)
	return HandleNotFound(&venue, err)
}

func (r *venueRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM venues WHERE id = $1`, id)
	return err
}

func (r *venueRepo) BelongsToClub(ctx context.Context, venueID, clubID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM venues WHERE id = $1 AND club_id = $2
		)
	`, venueID, clubID)
	return exists, err
}
