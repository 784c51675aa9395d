package repository

import (
	"database/sql"
	"errors"
)

// HandleNotFound converts sql.ErrNoRows to a nil result without error, so
// Find* operations report a missing row as (nil, nil) and leave the caller
// to decide whether that is an error.
func HandleNotFound[T any](result *T, err error) (*T, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}
