package store

import "errors"

// Sentinel errors returned by store operations. Services translate
// these into the API-facing error taxonomy.
var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)
