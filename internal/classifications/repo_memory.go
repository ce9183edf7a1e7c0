package classifications

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo for dev and tests.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Classification
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Classification)}
}

// Create stores a classification.
func (r *MemoryRepo) Create(ctx context.Context, cl Classification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[cl.ID] = cl
	return nil
}

// GetByID returns a classification by id.
func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Classification, error) {
	if err := ctx.Err(); err != nil {
		return Classification{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	cl, ok := r.data[id]
	if !ok {
		return Classification{}, ErrNotFound
	}
	return cl, nil
}

// List returns classifications newest-first, honoring limit/offset.
func (r *MemoryRepo) List(ctx context.Context, limit, offset int) ([]Classification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 20
	}

	r.mu.RLock()
	all := make([]Classification, 0, len(r.data))
	for _, cl := range r.data {
		all = append(all, cl)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if offset >= len(all) {
		return []Classification{}, nil
	}
	end := len(all)
	if offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], nil
}

var _ Repo = (*MemoryRepo)(nil)
