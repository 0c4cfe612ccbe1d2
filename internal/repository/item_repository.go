package repository

import (
	"context"
	"errors"
	"time"

	"items-api/internal/domain"
)

var (
	ErrItemNotFound = errors.New("item not found")
)

// Cursor is the exclusive start key of a scan
type Cursor struct {
	ID string `json:"id"`
}

// ScanResult is one page of a scan
type ScanResult struct {
	Items []*domain.Item
	Count int
	// Next is nil when no further pages exist
	Next *Cursor
}

// ItemRepository defines the interface for item data access. Implementations
// do not offer an atomic update-if-exists; callers check existence first.
type ItemRepository interface {
	Put(ctx context.Context, item *domain.Item) error
	// Get returns nil without error when the item does not exist
	Get(ctx context.Context, id string) (*domain.Item, error)
	Scan(ctx context.Context, limit int, cursor *Cursor) (*ScanResult, error)
	// Update returns ErrItemNotFound when id is absent
	Update(ctx context.Context, id string, patch domain.ItemPatch, updatedAt time.Time) (*domain.Item, error)
	// Delete is idempotent
	Delete(ctx context.Context, id string) error
	Exists(ctx context.Context, id string) (bool, error)
}

// exists derives an existence check from a point lookup
func exists(ctx context.Context, repo ItemRepository, id string) (bool, error) {
	item, err := repo.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return item != nil, nil
}
