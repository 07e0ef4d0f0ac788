package domain

import "errors"

var (
	ErrDuplicateHit     = errors.New("duplicate hit")
	ErrMissingHitType   = errors.New("hit type is required")
	ErrMissingTrackerID = errors.New("tracking id is required")
)
