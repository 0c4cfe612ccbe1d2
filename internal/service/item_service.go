package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"items-api/internal/apperror"
	"items-api/internal/domain"
	"items-api/internal/repository"

	"github.com/google/uuid"
)

// ItemService defines the interface for item business logic
type ItemService interface {
	Create(ctx context.Context, input domain.CreateItemInput) (*domain.Item, error)
	Get(ctx context.Context, id string) (*domain.Item, error)
	List(ctx context.Context, limit int, cursor *repository.Cursor) (*repository.ScanResult, error)
	// EnsureExists returns a NotFound error when id is absent
	EnsureExists(ctx context.Context, id string) error
	Update(ctx context.Context, id string, patch domain.ItemPatch) (*domain.Item, error)
	Delete(ctx context.Context, id string) error
}

// Clock returns the current time
type Clock func() time.Time

type itemService struct {
	repo  repository.ItemRepository
	clock Clock
}

// Option configures an item service
type Option func(*itemService)

// WithClock replaces the wall clock used for timestamps
func WithClock(clock Clock) Option {
	return func(s *itemService) {
		s.clock = clock
	}
}

// NewItemService creates a new instance of ItemService
func NewItemService(repo repository.ItemRepository, opts ...Option) ItemService {
	s := &itemService{
		repo:  repo,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *itemService) now() time.Time {
	return s.clock().UTC().Truncate(time.Millisecond)
}

// nextUpdatedAt is strictly later than the stored updatedAt, even when the
// clock has not advanced a full millisecond or has stepped back
func (s *itemService) nextUpdatedAt(current *domain.Item) time.Time {
	now := s.now()
	if !now.After(current.UpdatedAt) {
		return current.UpdatedAt.UTC().Add(time.Millisecond)
	}
	return now
}

// Create stores a new item with a fresh id and matching timestamps
func (s *itemService) Create(ctx context.Context, input domain.CreateItemInput) (*domain.Item, error) {
	item := domain.NewItem(uuid.NewString(), input, s.now())

	if err := s.repo.Put(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	return item, nil
}

func (s *itemService) Get(ctx context.Context, id string) (*domain.Item, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if item == nil {
		return nil, notFound(id)
	}
	return item, nil
}

func (s *itemService) List(ctx context.Context, limit int, cursor *repository.Cursor) (*repository.ScanResult, error) {
	result, err := s.repo.Scan(ctx, limit, cursor)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return result, nil
}

func (s *itemService) EnsureExists(ctx context.Context, id string) error {
	ok, err := s.repo.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check item: %w", err)
	}
	if !ok {
		return notFound(id)
	}
	return nil
}

// Update applies patch to an existing item. An item deleted between the
// lookup and the write is reported as not found.
func (s *itemService) Update(ctx context.Context, id string, patch domain.ItemPatch) (*domain.Item, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	item, err := s.repo.Update(ctx, id, patch, s.nextUpdatedAt(current))
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return nil, notFound(id)
		}
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	return item, nil
}

func (s *itemService) Delete(ctx context.Context, id string) error {
	if err := s.EnsureExists(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

func notFound(id string) error {
	return apperror.New(apperror.NotFound, fmt.Sprintf("Item with ID %s not found", id))
}
