package files

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/mona5211005/certificate-system/internal/shared/storage/object"
	"github.com/mona5211005/certificate-system/internal/shared/telemetry"
	"github.com/mona5211005/certificate-system/internal/shared/util"
	"github.com/mona5211005/certificate-system/internal/users"
)

// Service stores upload blobs and their metadata, guarding against
// duplicate storage when a user retries the same upload.
type Service struct {
	Repo    Repo
	Blobs   object.ObjectStore
	Records RecordStore
}

// Store persists an upload. The client-supplied name is flattened to a
// plain file name before it is recorded. When the same user already stored
// a file with the same name and size, the existing record is returned with
// reused=true and no blob is written. On a metadata failure the freshly
// written blob is removed so no orphan remains.
func (s *Service) Store(ctx context.Context, userID, account, originalName string, blob []byte, kind string) (File, bool, error) {
	if userID == "" || len(blob) == 0 {
		return File{}, false, ErrInvalidInput
	}
	name, err := util.SanitizeFileName(originalName)
	if err != nil {
		return File{}, false, ErrInvalidInput
	}
	size := int64(len(blob))

	existing, err := s.Repo.FindDuplicate(ctx, userID, name, size)
	if err == nil {
		telemetry.Info("files.reused", map[string]any{
			"file_id":   existing.ID,
			"user_id":   userID,
			"file_name": name,
		})
		return existing, true, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return File{}, false, err
	}

	key := storageKey(account, name)
	if _, err := s.Blobs.Save(ctx, key, bytes.NewReader(blob)); err != nil {
		return File{}, false, fmt.Errorf("store blob: %w", err)
	}

	file := File{
		ID:         uuid.NewString(),
		UserID:     userID,
		FileName:   name,
		StorageKey: key,
		Kind:       kind,
		SizeBytes:  size,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, file); err != nil {
		if delErr := s.Blobs.Delete(ctx, key); delErr != nil {
			telemetry.Error("files.rollback_failed", map[string]any{
				"storage_key": key,
				"error":       delErr.Error(),
			})
		}
		return File{}, false, fmt.Errorf("store metadata: %w", err)
	}
	return file, false, nil
}

// Get loads a file the caller is allowed to see. Files owned by other
// users read as not found unless the caller is an admin.
func (s *Service) Get(ctx context.Context, userID, role, fileID string) (File, error) {
	file, err := s.Repo.GetByID(ctx, fileID)
	if err != nil {
		return File{}, err
	}
	if file.UserID != userID && role != users.RoleAdmin {
		return File{}, ErrNotFound
	}
	return file, nil
}

// Remove deletes a file's certificate record, metadata, and blob, in that
// order. Files whose certificate is already submitted can only be removed
// by an admin.
func (s *Service) Remove(ctx context.Context, userID, role, fileID string) error {
	file, err := s.Get(ctx, userID, role, fileID)
	if err != nil {
		return err
	}

	submitted, err := s.Records.SubmittedByFile(ctx, fileID)
	if err != nil {
		return err
	}
	if submitted && role != users.RoleAdmin {
		return ErrSubmittedLocked
	}

	if err := s.Records.DeleteByFile(ctx, fileID); err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, fileID); err != nil {
		return err
	}
	if err := s.Blobs.Delete(ctx, file.StorageKey); err != nil {
		// The metadata is gone; an unreachable blob is a storage leak,
		// not a user-visible failure.
		telemetry.Warn("files.blob_delete_failed", map[string]any{
			"storage_key": file.StorageKey,
			"error":       err.Error(),
		})
	}
	telemetry.Info("files.removed", map[string]any{
		"file_id":   fileID,
		"user_id":   userID,
		"submitted": submitted,
	})
	return nil
}

// Discard removes a freshly stored file after a failed follow-up write.
// It skips the submitted guard and the record cascade: the caller knows
// no certificate row exists for this file yet.
func (s *Service) Discard(ctx context.Context, fileID string) error {
	file, err := s.Repo.GetByID(ctx, fileID)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, fileID); err != nil {
		return err
	}
	if err := s.Blobs.Delete(ctx, file.StorageKey); err != nil {
		telemetry.Warn("files.blob_delete_failed", map[string]any{
			"storage_key": file.StorageKey,
			"error":       err.Error(),
		})
	}
	return nil
}

func (s *Service) ListByUser(ctx context.Context, userID string, limit, offset int) ([]File, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// storageKey builds the blob name the way the upload folder has always
// been laid out: owner account plus a second-resolution timestamp plus the
// original extension.
func storageKey(account, originalName string) string {
	return fmt.Sprintf("user_%s_%s%s", account, time.Now().UTC().Format("20060102150405"), filepath.Ext(originalName))
}
