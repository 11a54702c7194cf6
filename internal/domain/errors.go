package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a unique constraint was hit.
	ErrAlreadyExists = errors.New("already exists")
)

// ErrInsufficientStock indicates an option cannot cover the requested quantity.
var ErrInsufficientStock = errors.New("insufficient stock")
