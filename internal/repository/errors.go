package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicatePlate is returned when a plate is already parked.
	ErrDuplicatePlate = errors.New("plate already parked")
)
