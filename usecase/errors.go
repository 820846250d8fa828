package usecase

import "errors"

var (
	ErrInvalidURL      = errors.New("invalid instagram reel url")
	ErrDuplicate       = errors.New("reel already shared")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrRateLimited     = errors.New("too many submissions, slow down")
	ErrBulkLimit       = errors.New("too many reels in one request")
	ErrEmptyBatch      = errors.New("no reels provided")
	ErrNotRetryable    = errors.New("only failed reels can be retried")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrBadCredentials  = errors.New("invalid username or password")
	ErrInvalidRole     = errors.New("role must be sender or viewer")
	ErrPushDisabled    = errors.New("push notifications are not configured")
	ErrInvalidEndpoint = errors.New("invalid push endpoint")
)
