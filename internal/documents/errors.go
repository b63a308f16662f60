package documents

import "errors"

var (
	// ErrNotFound indicates no matching document exists.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidInput indicates the request was malformed.
	ErrInvalidInput = errors.New("invalid input")
)
