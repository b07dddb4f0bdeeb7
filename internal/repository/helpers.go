package repository

import (
	"database/sql"
	"errors"
)

// HandleNotFound converts sql.ErrNoRows into a nil result without error.
// The Find* methods on every repository use it, since an unknown club, user
// or event id is an expected outcome the handlers map to a 404 themselves.
//
// Usage:
//
//	var club model.Club
//	err := r.db.GetContext(ctx, &club, query, args...)
//	return HandleNotFound(&club, err)
func HandleNotFound[T any](result *T, err error) (*T, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}
