package repository

import (
	"context"
	"sort"
	"testing"
	"time"

	"items-api/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

var baseTime = time.Date(2025, 3, 14, 15, 9, 26, 535000000, time.UTC)

func newTestItem(name string) *domain.Item {
	return domain.NewItem(uuid.NewString(), domain.CreateItemInput{
		Name:  name,
		Price: 9.99,
	}, baseTime)
}

func fullTestItem() *domain.Item {
	category := domain.CategoryElectronics
	return domain.NewItem(uuid.NewString(), domain.CreateItemInput{
		Name:        "Widget",
		Description: ptr("A small widget"),
		Price:       19.5,
		Category:    &category,
		Stock:       ptr(0),
	}, baseTime)
}

// runItemRepositoryContract checks the behaviour every binding must share.
// newRepo returns a repository over an empty table.
func runItemRepositoryContract(t *testing.T, newRepo func(t *testing.T) ItemRepository) {
	ctx := context.Background()

	t.Run("PutAndGet", func(t *testing.T) {
		repo := newRepo(t)
		for _, item := range []*domain.Item{fullTestItem(), newTestItem("bare")} {
			require.NoError(t, repo.Put(ctx, item))

			got, err := repo.Get(ctx, item.ID)
			require.NoError(t, err)
			assert.Equal(t, item, got)
		}
	})

	t.Run("GetAbsent", func(t *testing.T) {
		repo := newRepo(t)
		got, err := repo.Get(ctx, uuid.NewString())
		require.NoError(t, err)
		assert.Nil(t, got)

		ok, err := repo.Exists(ctx, uuid.NewString())
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("PutReplacesRecord", func(t *testing.T) {
		repo := newRepo(t)
		item := fullTestItem()
		require.NoError(t, repo.Put(ctx, item))

		replacement := newTestItem("replacement")
		replacement.ID = item.ID
		require.NoError(t, repo.Put(ctx, replacement))

		got, err := repo.Get(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, replacement, got)
	})

	t.Run("UpdateOnlyTouchesPatchFields", func(t *testing.T) {
		repo := newRepo(t)
		item := fullTestItem()
		require.NoError(t, repo.Put(ctx, item))

		later := baseTime.Add(time.Minute)
		patch := domain.ItemPatch{Price: ptr(25.0), Stock: ptr(3)}

		got, err := repo.Update(ctx, item.ID, patch, later)
		require.NoError(t, err)

		want := item.Apply(patch, later)
		assert.Equal(t, &want, got)

		stored, err := repo.Get(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, &want, stored)
	})

	t.Run("UpdateEmptyPatchRefreshesTimestamp", func(t *testing.T) {
		repo := newRepo(t)
		item := fullTestItem()
		require.NoError(t, repo.Put(ctx, item))

		later := baseTime.Add(time.Second)
		got, err := repo.Update(ctx, item.ID, domain.ItemPatch{}, later)
		require.NoError(t, err)

		want := *item
		want.UpdatedAt = later
		assert.Equal(t, &want, got)
	})

	t.Run("UpdateMissingItem", func(t *testing.T) {
		repo := newRepo(t)
		id := uuid.NewString()

		_, err := repo.Update(ctx, id, domain.ItemPatch{Name: ptr("ghost")}, baseTime)
		assert.ErrorIs(t, err, ErrItemNotFound)

		got, err := repo.Get(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, got, "update must not create a partial record")
	})

	t.Run("DeleteIsIdempotent", func(t *testing.T) {
		repo := newRepo(t)
		item := fullTestItem()
		require.NoError(t, repo.Put(ctx, item))

		ok, err := repo.Exists(ctx, item.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		require.NoError(t, repo.Delete(ctx, item.ID))
		require.NoError(t, repo.Delete(ctx, item.ID))
		require.NoError(t, repo.Delete(ctx, uuid.NewString()))

		ok, err = repo.Exists(ctx, item.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("ScanEmpty", func(t *testing.T) {
		repo := newRepo(t)
		result, err := repo.Scan(ctx, 10, nil)
		require.NoError(t, err)
		assert.NotNil(t, result.Items)
		assert.Empty(t, result.Items)
		assert.Equal(t, 0, result.Count)
		assert.Nil(t, result.Next)
	})

	t.Run("ScanSkipsDeleted", func(t *testing.T) {
		repo := newRepo(t)
		kept, dropped := newTestItem("kept"), newTestItem("dropped")
		require.NoError(t, repo.Put(ctx, kept))
		require.NoError(t, repo.Put(ctx, dropped))
		require.NoError(t, repo.Delete(ctx, dropped.ID))

		result, err := repo.Scan(ctx, 10, nil)
		require.NoError(t, err)
		require.Equal(t, 1, result.Count)
		assert.Equal(t, kept.ID, result.Items[0].ID)
	})

	t.Run("ScanPages", func(t *testing.T) {
		params := gopter.DefaultTestParameters()
		params.MinSuccessfulTests = 10
		properties := gopter.NewProperties(params)

		properties.Property("pages cover every item exactly once", prop.ForAll(
			func(total int, limit int) bool {
				repo := newRepo(t)

				want := make([]string, 0, total)
				for i := 0; i < total; i++ {
					item := newTestItem("paged")
					if err := repo.Put(ctx, item); err != nil {
						t.Logf("put failed: %v", err)
						return false
					}
					want = append(want, item.ID)
				}

				var (
					seen   []string
					cursor *Cursor
				)
				for pages := 0; pages <= total+1; pages++ {
					result, err := repo.Scan(ctx, limit, cursor)
					if err != nil {
						t.Logf("scan failed: %v", err)
						return false
					}
					if result.Count != len(result.Items) || result.Count > limit {
						return false
					}
					for _, item := range result.Items {
						seen = append(seen, item.ID)
					}
					if result.Next == nil {
						break
					}
					if result.Count != limit {
						return false
					}
					cursor = result.Next
				}

				sort.Strings(want)
				sort.Strings(seen)
				if len(want) == 0 {
					return len(seen) == 0
				}
				return assert.ObjectsAreEqual(want, seen)
			},
			gen.IntRange(0, 12),
			gen.IntRange(1, 5),
		))

		properties.TestingRun(t, gopter.ConsoleReporter(false))
	})

	t.Run("ScanExactPageHasNoContinuation", func(t *testing.T) {
		repo := newRepo(t)
		for i := 0; i < 4; i++ {
			require.NoError(t, repo.Put(ctx, newTestItem("exact")))
		}

		first, err := repo.Scan(ctx, 2, nil)
		require.NoError(t, err)
		require.NotNil(t, first.Next)

		second, err := repo.Scan(ctx, 2, first.Next)
		require.NoError(t, err)
		assert.Equal(t, 2, second.Count)
		assert.Nil(t, second.Next)
	})
}
