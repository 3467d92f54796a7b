package certificates

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mona5211005/certificate-system/internal/vision"
)

type MemoryRepo struct {
	mu    sync.RWMutex
	certs map[string]Certificate
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{certs: make(map[string]Certificate)}
}

func (r *MemoryRepo) Create(ctx context.Context, cert Certificate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.certs {
		if existing.FileID == cert.FileID {
			return ErrDuplicateRecord
		}
	}
	r.certs[cert.ID] = cert
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, certID string) (Certificate, error) {
	if err := ctx.Err(); err != nil {
		return Certificate{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	cert, ok := r.certs[certID]
	if !ok {
		return Certificate{}, ErrNotFound
	}
	return cert, nil
}

func (r *MemoryRepo) GetByFile(ctx context.Context, fileID string) (Certificate, error) {
	if err := ctx.Err(); err != nil {
		return Certificate{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, cert := range r.certs {
		if cert.FileID == fileID {
			return cert, nil
		}
	}
	return Certificate{}, ErrNotFound
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Certificate, error) {
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
	var owned []Certificate
	for _, cert := range r.certs {
		if cert.UserID == userID {
			owned = append(owned, cert)
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

func (r *MemoryRepo) UpdateFields(ctx context.Context, certID, userID string, fields vision.Fields, updatedAt time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cert, ok := r.certs[certID]
	if !ok || cert.UserID != userID || cert.Submitted {
		return false, nil
	}
	cert.Fields = fields
	cert.UpdatedAt = updatedAt
	r.certs[certID] = cert
	return true, nil
}

func (r *MemoryRepo) Promote(ctx context.Context, certID, userID string, submittedAt time.Time) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cert, ok := r.certs[certID]
	if !ok || cert.UserID != userID || cert.Submitted {
		return false, nil
	}
	cert.Submitted = true
	t := submittedAt
	cert.SubmittedAt = &t
	cert.UpdatedAt = submittedAt
	r.certs[certID] = cert
	return true, nil
}

func (r *MemoryRepo) PromoteAllByUser(ctx context.Context, userID string, submittedAt time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var affected int64
	for id, cert := range r.certs {
		if cert.UserID != userID || cert.Submitted {
			continue
		}
		cert.Submitted = true
		t := submittedAt
		cert.SubmittedAt = &t
		cert.UpdatedAt = submittedAt
		r.certs[id] = cert
		affected++
	}
	return affected, nil
}

func (r *MemoryRepo) CountByUser(ctx context.Context, userID string) (Status, error) {
	if err := ctx.Err(); err != nil {
		return Status{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var status Status
	for _, cert := range r.certs {
		if cert.UserID != userID {
			continue
		}
		if cert.Submitted {
			status.SubmittedCount++
		} else {
			status.DraftCount++
		}
	}
	return status, nil
}

func (r *MemoryRepo) DeleteByFile(ctx context.Context, fileID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, cert := range r.certs {
		if cert.FileID == fileID {
			delete(r.certs, id)
		}
	}
	return nil
}

func (r *MemoryRepo) SubmittedByFile(ctx context.Context, fileID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, cert := range r.certs {
		if cert.FileID == fileID {
			return cert.Submitted, nil
		}
	}
	return false, nil
}

var _ Repo = (*MemoryRepo)(nil)
