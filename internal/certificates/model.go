package certificates

import (
	"time"

	"github.com/mona5211005/certificate-system/internal/vision"
)

// Certificate is one award record tied to exactly one uploaded file.
// A draft is freely editable; once Submitted flips to true the record
// is immutable and every update path must refuse it.
type Certificate struct {
	ID     string
	UserID string
	FileID string

	Fields vision.Fields

	Submitted   bool
	SubmittedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Status summarizes a user's records for the batch-submit decision.
type Status struct {
	DraftCount     int64
	SubmittedCount int64
}
