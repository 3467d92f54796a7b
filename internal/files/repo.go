package files

import "context"

// Repo defines persistence operations for uploaded files.
type Repo interface {
	Create(ctx context.Context, file File) error
	GetByID(ctx context.Context, fileID string) (File, error)
	// FindDuplicate matches on the strict (user, original name, size)
	// triple; anything looser would block legitimate distinct uploads.
	FindDuplicate(ctx context.Context, userID, fileName string, sizeBytes int64) (File, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]File, error)
	Delete(ctx context.Context, fileID string) error
}

// RecordStore is the narrow view of the certificate feature the file
// service needs for deletion. The certificates repo is adapted to it
// during wiring so the two packages stay independent.
type RecordStore interface {
	// SubmittedByFile reports whether the file's certificate record is
	// promoted. A file without a record reports false.
	SubmittedByFile(ctx context.Context, fileID string) (bool, error)
	DeleteByFile(ctx context.Context, fileID string) error
}
