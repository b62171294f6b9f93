package store_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/serroba/url-shortener/internal/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOwner() shortener.OwnerID {
	return shortener.OwnerID("owner-" + uuid.NewString())
}

func newTestMapping(owner shortener.OwnerID, code, longURL string) *shortener.Mapping {
	return &shortener.Mapping{
		ID:        uuid.Must(uuid.NewV7()),
		Owner:     owner,
		LongURL:   longURL,
		Code:      shortener.Code(code),
		CreatedAt: timeNow(),
	}
}

// testRepository runs the behaviour every shortener.Repository must provide.
func testRepository(t *testing.T, repo shortener.Repository) {
	t.Helper()

	ctx := context.Background()

	t.Run("insert and get", func(t *testing.T) {
		owner := newOwner()
		m := newTestMapping(owner, "ABCDEF", "https://example.com/a")

		require.NoError(t, repo.Insert(ctx, m))

		got, err := repo.Get(ctx, owner, "ABCDEF")

		require.NoError(t, err)
		assert.Equal(t, m.ID, got.ID)
		assert.Equal(t, owner, got.Owner)
		assert.Equal(t, "https://example.com/a", got.LongURL)
		assert.Equal(t, shortener.Code("ABCDEF"), got.Code)
		assert.True(t, m.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("rejects duplicate code for same owner", func(t *testing.T) {
		owner := newOwner()
		require.NoError(t, repo.Insert(ctx, newTestMapping(owner, "DUPDUP", "https://first.com")))

		err := repo.Insert(ctx, newTestMapping(owner, "DUPDUP", "https://second.com"))

		require.ErrorIs(t, err, shortener.ErrCodeAlreadyTaken)

		got, err := repo.Get(ctx, owner, "DUPDUP")
		require.NoError(t, err)
		assert.Equal(t, "https://first.com", got.LongURL)
	})

	t.Run("same code for different owners", func(t *testing.T) {
		owner1, owner2 := newOwner(), newOwner()

		require.NoError(t, repo.Insert(ctx, newTestMapping(owner1, "SHARED", "https://one.com")))
		require.NoError(t, repo.Insert(ctx, newTestMapping(owner2, "SHARED", "https://two.com")))

		got1, err := repo.Get(ctx, owner1, "SHARED")
		require.NoError(t, err)
		got2, err := repo.Get(ctx, owner2, "SHARED")
		require.NoError(t, err)

		assert.Equal(t, "https://one.com", got1.LongURL)
		assert.Equal(t, "https://two.com", got2.LongURL)
	})

	t.Run("get unknown code returns ErrNotFound", func(t *testing.T) {
		got, err := repo.Get(ctx, newOwner(), "NOPENO")

		assert.Nil(t, got)
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("get other owner's code returns ErrNotFound", func(t *testing.T) {
		owner := newOwner()
		require.NoError(t, repo.Insert(ctx, newTestMapping(owner, "MINEMI", "https://mine.com")))

		got, err := repo.Get(ctx, newOwner(), "MINEMI")

		assert.Nil(t, got)
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("list returns creation order", func(t *testing.T) {
		owner := newOwner()
		codes := []string{"CCCCCC", "AAAAAA", "BBBBBB"}

		for _, code := range codes {
			require.NoError(t, repo.Insert(ctx, newTestMapping(owner, code, "https://example.com/"+code)))
		}

		got, err := repo.List(ctx, owner)

		require.NoError(t, err)
		require.Len(t, got, 3)

		for i, code := range codes {
			assert.Equal(t, shortener.Code(code), got[i].Code)
		}
	})

	t.Run("list for unknown owner is empty", func(t *testing.T) {
		got, err := repo.List(ctx, newOwner())

		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("delete removes only the owner's mapping", func(t *testing.T) {
		owner1, owner2 := newOwner(), newOwner()
		require.NoError(t, repo.Insert(ctx, newTestMapping(owner1, "DELETE", "https://one.com")))
		require.NoError(t, repo.Insert(ctx, newTestMapping(owner2, "DELETE", "https://two.com")))

		require.NoError(t, repo.Delete(ctx, owner1, "DELETE"))

		_, err := repo.Get(ctx, owner1, "DELETE")
		require.ErrorIs(t, err, shortener.ErrNotFound)

		got, err := repo.Get(ctx, owner2, "DELETE")
		require.NoError(t, err)
		assert.Equal(t, "https://two.com", got.LongURL)

		list, err := repo.List(ctx, owner1)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("delete unknown code returns ErrNotFound", func(t *testing.T) {
		err := repo.Delete(ctx, newOwner(), "MISSIN")

		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("delete other owner's code returns ErrNotFound", func(t *testing.T) {
		owner := newOwner()
		require.NoError(t, repo.Insert(ctx, newTestMapping(owner, "KEEPME", "https://keep.com")))

		err := repo.Delete(ctx, newOwner(), "KEEPME")

		require.ErrorIs(t, err, shortener.ErrNotFound)

		_, err = repo.Get(ctx, owner, "KEEPME")
		assert.NoError(t, err)
	})

	t.Run("code can be reused after delete", func(t *testing.T) {
		owner := newOwner()
		require.NoError(t, repo.Insert(ctx, newTestMapping(owner, "REUSED", "https://old.com")))
		require.NoError(t, repo.Delete(ctx, owner, "REUSED"))

		require.NoError(t, repo.Insert(ctx, newTestMapping(owner, "REUSED", "https://new.com")))

		got, err := repo.Get(ctx, owner, "REUSED")
		require.NoError(t, err)
		assert.Equal(t, "https://new.com", got.LongURL)
	})

	t.Run("concurrent inserts of same code admit exactly one", func(t *testing.T) {
		owner := newOwner()

		const workers = 20

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			accepted int
			taken    int
		)

		for i := range workers {
			wg.Add(1)

			go func() {
				defer wg.Done()

				err := repo.Insert(ctx, newTestMapping(owner, "RACERS", fmt.Sprintf("https://example.com/%d", i)))

				mu.Lock()
				defer mu.Unlock()

				switch {
				case err == nil:
					accepted++
				case assert.ErrorIs(t, err, shortener.ErrCodeAlreadyTaken):
					taken++
				}
			}()
		}

		wg.Wait()

		assert.Equal(t, 1, accepted)
		assert.Equal(t, workers-1, taken)
	})
}
