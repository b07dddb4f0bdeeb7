package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/teammanager/server-go/internal/model"
)

type PhotoRepository interface {
	Create(ctx context.Context, params model.CreatePhotoParams) (*model.Photo, error)
	ListByEvent(ctx context.Context, typ model.EventType, eventID int64) ([]model.Photo, error)
	FindByID(ctx context.Context, id int64) (*model.Photo, error)
	Delete(ctx context.Context, id int64) error
}

type photoRepo struct {
	db *sqlx.DB
}

func NewPhotoRepository(db *sqlx.DB) PhotoRepository {
	return &photoRepo{db: db}
}

func (r *photoRepo) Create(ctx context.Context, params model.CreatePhotoParams) (*model.Photo, error) {
	var photo model.Photo
	err := r.db.GetContext(ctx, &photo, `
		INSERT INTO photos (event_type, event_id, data, mime_type, filename, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, event_type, event_id, mime_type, filename, uploaded_by, created_at
	`, params.EventType, params.EventID, params.Data, params.MimeType, params.Filename, params.UploadedBy)
	if err != nil {
		return nil, err
	}
	return &photo, nil
}

// ListByEvent returns metadata only; the blob is fetched per photo.
func (r *photoRepo) ListByEvent(ctx context.Context, typ model.EventType, eventID int64) ([]model.Photo, error) {
	var photos []model.Photo
	err := r.db.SelectContext(ctx, &photos, `
		SELECT p.id, p.event_type, p.event_id, p.mime_type, p.filename,
		       p.uploaded_by, p.created_at, u.username AS uploader
		FROM photos p
		JOIN users u ON u.id = p.uploaded_by
		WHERE p.event_type = $1 AND p.event_id = $2
		ORDER BY p.created_at DESC
	`, typ, eventID)
	if err != nil {
		return nil, err
	}
	return photos, nil
}

func (r *photoRepo) FindByID(ctx context.Context, id int64) (*model.Photo, error) {
	var photo model.Photo
	err := r.db.GetContext(ctx, &photo, `SELECT * FROM photos WHERE id = $1`, id)
	return HandleNotFound(&photo, err)
}

func (r *photoRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM photos WHERE id = $1`, id)
	return err
}
