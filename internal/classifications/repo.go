package classifications

import "context"

// Repo defines persistence operations for classifications.
type Repo interface {
	Create(ctx context.Context, cl Classification) error
	GetByID(ctx context.Context, id string) (Classification, error)
	List(ctx context.Context, limit, offset int) ([]Classification, error)
}
