package domain

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrDatastoreUnavailable = errors.New("datastore unavailable")
	ErrInvalidInput         = errors.New("invalid input")
)
