package files

import "errors"

var (
	ErrNotFound     = errors.New("file not found")
	ErrInvalidInput = errors.New("invalid input")

	// ErrSubmittedLocked blocks deletion of a file whose certificate was
	// already promoted; only admins may remove those.
	ErrSubmittedLocked = errors.New("file belongs to a submitted certificate")
)
