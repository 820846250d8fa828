package repository

import "errors"

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
	// ErrStaleReel means a conditional status update matched nothing.
	ErrStaleReel = errors.New("reel is not in the expected status")
)
