package store

import "errors"

var (
	// ErrConflict reports a write the remote refused because it clashes
	// with stored data, such as a duplicate CPF.
	ErrConflict = errors.New("conflicting record")
	ErrNotFound = errors.New("not found")
	ErrNoRemote = errors.New("no remote store configured")
)
