package files

import (
	"context"
	"sort"
	"sync"
)

type MemoryRepo struct {
	mu    sync.RWMutex
	files map[string]File
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{files: make(map[string]File)}
}

func (r *MemoryRepo) Create(ctx context.Context, file File) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files[file.ID] = file
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, fileID string) (File, error) {
	if err := ctx.Err(); err != nil {
		return File{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	file, ok := r.files[fileID]
	if !ok {
		return File{}, ErrNotFound
	}
	return file, nil
}

func (r *MemoryRepo) FindDuplicate(ctx context.Context, userID, fileName string, sizeBytes int64) (File, error) {
	if err := ctx.Err(); err != nil {
		return File{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var match File
	found := false
	for _, file := range r.files {
		if file.UserID != userID || file.FileName != fileName || file.SizeBytes != sizeBytes {
			continue
		}
		if !found || file.CreatedAt.After(match.CreatedAt) {
			match = file
			found = true
		}
	}
	if !found {
		return File{}, ErrNotFound
	}
	return match, nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	r.mu.RLock()
	var owned []File
	for _, file := range r.files {
		if file.UserID == userID {
			owned = append(owned, file)
		}
	}
	r.mu.RUnlock()

	sort.Slice(owned, func(i, j int) bool {
		if !owned[i].CreatedAt.Equal(owned[j].CreatedAt) {
			return owned[i].CreatedAt.After(owned[j].CreatedAt)
		}
		return owned[i].ID < owned[j].ID
	})
	if offset >= len(owned) {
		return nil, nil
	}
	owned = owned[offset:]
	if len(owned) > limit {
		owned = owned[:limit]
	}
	return owned, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, fileID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.files[fileID]; !ok {
		return ErrNotFound
	}
	delete(r.files, fileID)
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
