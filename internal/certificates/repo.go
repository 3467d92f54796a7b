package certificates

import (
	"context"
	"time"

	"github.com/mona5211005/certificate-system/internal/vision"
)

// Repo persists certificate records. Mutations on existing rows are
// conditional on submitted=false so a promoted record can never change,
// whatever the caller believes about its state.
type Repo interface {
	Create(ctx context.Context, cert Certificate) error
	GetByID(ctx context.Context, certID string) (Certificate, error)
	GetByFile(ctx context.Context, fileID string) (Certificate, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Certificate, error)

	// UpdateFields rewrites the ten fields of a draft. Returns false
	// when no row matched, either because the record does not exist or
	// because it is already submitted.
	UpdateFields(ctx context.Context, certID, userID string, fields vision.Fields, updatedAt time.Time) (bool, error)

	// Promote flips one draft to submitted. Returns false when the
	// record is missing or was already promoted, which makes concurrent
	// promotion race-safe: only one caller observes true.
	Promote(ctx context.Context, certID, userID string, submittedAt time.Time) (bool, error)

	// PromoteAllByUser flips every draft the user owns with one shared
	// timestamp and reports how many rows changed.
	PromoteAllByUser(ctx context.Context, userID string, submittedAt time.Time) (int64, error)

	CountByUser(ctx context.Context, userID string) (Status, error)
	DeleteByFile(ctx context.Context, fileID string) error
	SubmittedByFile(ctx context.Context, fileID string) (bool, error)
}
