package files

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/mona5211005/certificate-system/internal/shared/storage/object/local"
	"github.com/mona5211005/certificate-system/internal/users"
)

type stubRecords struct {
	submitted map[string]bool
	deleted   []string
}

func (s *stubRecords) SubmittedByFile(ctx context.Context, fileID string) (bool, error) {
	return s.submitted[fileID], nil
}

func (s *stubRecords) DeleteByFile(ctx context.Context, fileID string) error {
	s.deleted = append(s.deleted, fileID)
	return nil
}

func newTestService(t *testing.T) (*Service, string, *stubRecords) {
	t.Helper()
	dir := t.TempDir()
	records := &stubRecords{submitted: make(map[string]bool)}
	svc := &Service{
		Repo:    NewMemoryRepo(),
		Blobs:   local.New(dir),
		Records: records,
	}
	return svc, dir, records
}

func storedCount(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	return len(entries)
}

func TestStoreWritesBlobAndMetadata(t *testing.T) {
	svc, dir, _ := newTestService(t)

	file, reused, err := svc.Store(context.Background(), "user-1", "2025000000001", "证书.pdf", []byte("%PDF-1.4 data"), "document")
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if reused {
		t.Fatal("first store reported reuse")
	}
	if !strings.HasPrefix(file.StorageKey, "user_2025000000001_") || !strings.HasSuffix(file.StorageKey, ".pdf") {
		t.Fatalf("storage key = %q", file.StorageKey)
	}
	if file.Kind != "document" || file.SizeBytes != int64(len("%PDF-1.4 data")) {
		t.Fatalf("unexpected file: %+v", file)
	}

	rc, err := svc.Blobs.Open(context.Background(), file.StorageKey)
	if err != nil {
		t.Fatalf("Open stored blob: %v", err)
	}
	defer rc.Close()
	blob, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read blob: %v", err)
	}
	if string(blob) != "%PDF-1.4 data" {
		t.Fatalf("blob = %q", blob)
	}
	if got := storedCount(t, dir); got != 1 {
		t.Fatalf("stored files = %d, want 1", got)
	}
}

func TestStoreCleansFileName(t *testing.T) {
	svc, _, _ := newTestService(t)

	file, _, err := svc.Store(context.Background(), "user-1", "2025000000001", "scans/cert.pdf", []byte("data"), "document")
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if file.FileName != "scans_cert.pdf" {
		t.Fatalf("file name = %q, want separators flattened", file.FileName)
	}

	if _, _, err := svc.Store(context.Background(), "user-1", "2025000000001", "../cert.pdf", []byte("data"), "document"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput for traversal name", err)
	}
}

func TestStoreReusesIdenticalUpload(t *testing.T) {
	svc, dir, _ := newTestService(t)
	blob := []byte("%PDF-1.4 retry payload")

	first, _, err := svc.Store(context.Background(), "user-1", "2025000000001", "cert.pdf", blob, "document")
	if err != nil {
		t.Fatalf("first store: %v", err)
	}
	second, reused, err := svc.Store(context.Background(), "user-1", "2025000000001", "cert.pdf", blob, "document")
	if err != nil {
		t.Fatalf("second store: %v", err)
	}
	if !reused {
		t.Fatal("identical upload not reported as reused")
	}
	if second.ID != first.ID {
		t.Fatalf("reused id = %q, want %q", second.ID, first.ID)
	}
	if got := storedCount(t, dir); got != 1 {
		t.Fatalf("stored files = %d, want 1 after reuse", got)
	}
}

func TestStoreDistinguishesNearDuplicates(t *testing.T) {
	svc, _, _ := newTestService(t)

	first, _, err := svc.Store(context.Background(), "user-1", "2025000000001", "cert.pdf", []byte("aaaa"), "document")
	if err != nil {
		t.Fatalf("first store: %v", err)
	}

	// Same name, different size: a genuinely different upload.
	differentSize, reused, err := svc.Store(context.Background(), "user-1", "2025000000001", "cert.pdf", []byte("aaaaaa"), "document")
	if err != nil {
		t.Fatalf("different size store: %v", err)
	}
	if reused || differentSize.ID == first.ID {
		t.Fatalf("different size treated as duplicate")
	}

	// Same name and size, different owner.
	otherUser, reused, err := svc.Store(context.Background(), "user-2", "2025000000002", "cert.pdf", []byte("aaaa"), "document")
	if err != nil {
		t.Fatalf("other user store: %v", err)
	}
	if reused || otherUser.ID == first.ID {
		t.Fatalf("other user's upload treated as duplicate")
	}
}

type createFailRepo struct {
	*MemoryRepo
}

func (r *createFailRepo) Create(ctx context.Context, file File) error {
	return errors.New("insert failed")
}

func TestStoreRollsBackBlobWhenMetadataFails(t *testing.T) {
	dir := t.TempDir()
	svc := &Service{
		Repo:    &createFailRepo{NewMemoryRepo()},
		Blobs:   local.New(dir),
		Records: &stubRecords{submitted: make(map[string]bool)},
	}

	_, _, err := svc.Store(context.Background(), "user-1", "2025000000001", "cert.pdf", []byte("data"), "document")
	if err == nil {
		t.Fatal("expected error from failing repo")
	}
	if got := storedCount(t, dir); got != 0 {
		t.Fatalf("stored files = %d, want 0 after rollback", got)
	}
}

func TestRemoveDeletesRecordMetadataAndBlob(t *testing.T) {
	svc, dir, records := newTestService(t)
	file, _, err := svc.Store(context.Background(), "user-1", "2025000000001", "cert.pdf", []byte("data"), "document")
	if err != nil {
		t.Fatalf("Store: %v", err)
	}

	if err := svc.Remove(context.Background(), "user-1", users.RoleStudent, file.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(records.deleted) != 1 || records.deleted[0] != file.ID {
		t.Fatalf("record deletion not cascaded: %v", records.deleted)
	}
	if _, err := svc.Repo.GetByID(context.Background(), file.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("metadata still present: %v", err)
	}
	if got := storedCount(t, dir); got != 0 {
		t.Fatalf("stored files = %d, want 0 after remove", got)
	}
}

func TestRemoveHidesOtherUsersFiles(t *testing.T) {
	svc, _, _ := newTestService(t)
	file, _, err := svc.Store(context.Background(), "user-1", "2025000000001", "cert.pdf", []byte("data"), "document")
	if err != nil {
		t.Fatalf("Store: %v", err)
	}

	if err := svc.Remove(context.Background(), "user-2", users.RoleStudent, file.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound for foreign file", err)
	}
	// Admins can reach any file.
	if err := svc.Remove(context.Background(), "admin-1", users.RoleAdmin, file.ID); err != nil {
		t.Fatalf("admin remove: %v", err)
	}
}

func TestRemoveGuardsSubmittedRecords(t *testing.T) {
	svc, _, records := newTestService(t)
	file, _, err := svc.Store(context.Background(), "user-1", "2025000000001", "cert.pdf", []byte("data"), "document")
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	records.submitted[file.ID] = true

	if err := svc.Remove(context.Background(), "user-1", users.RoleStudent, file.ID); !errors.Is(err, ErrSubmittedLocked) {
		t.Fatalf("err = %v, want ErrSubmittedLocked", err)
	}
	if err := svc.Remove(context.Background(), "admin-1", users.RoleAdmin, file.ID); err != nil {
		t.Fatalf("admin override: %v", err)
	}
}

func TestListByUserNewestFirst(t *testing.T) {
	svc, _, _ := newTestService(t)
	for _, name := range []string{"a.pdf", "b.jpg", "c.png"} {
		if _, _, err := svc.Store(context.Background(), "user-1", "2025000000001", name, []byte(name), "image"); err != nil {
			t.Fatalf("Store %s: %v", name, err)
		}
	}
	if _, _, err := svc.Store(context.Background(), "user-2", "2025000000002", "d.pdf", []byte("d"), "document"); err != nil {
		t.Fatalf("Store other user: %v", err)
	}

	list, err := svc.ListByUser(context.Background(), "user-1", 10, 0)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("listed %d files, want 3", len(list))
	}
	for _, file := range list {
		if file.UserID != "user-1" {
			t.Fatalf("foreign file in listing: %+v", file)
		}
	}
}
