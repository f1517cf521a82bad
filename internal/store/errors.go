package store

import "errors"

var (
	// ErrNotFound is returned when an operation names an id that is not in the store.
	ErrNotFound = errors.New("task not found")
	// ErrMalformedFile marks a durable file that is not a JSON object.
	ErrMalformedFile = errors.New("malformed task file")
	// ErrStorageIO is returned when the durable file or its directory cannot be written.
	ErrStorageIO = errors.New("storage i/o")
)
