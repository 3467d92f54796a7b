package files

import "time"

// File is the metadata record for one stored upload. Records are immutable
// after creation; the only mutation is deletion, which cascades to the
// certificate attached to the file.
type File struct {
	ID         string
	UserID     string
	FileName   string
	StorageKey string
	Kind       string
	SizeBytes  int64
	CreatedAt  time.Time
}
