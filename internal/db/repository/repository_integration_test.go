//go:build integration

package repository

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/exercise-platform/db/migrations"
	"github.com/gokatarajesh/exercise-platform/internal/exercise"
)

func setupPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	db := stdlib.OpenDBFromPool(pool)
	t.Cleanup(func() { db.Close() })
	goose.SetBaseFS(migrations.FS)
	require.NoError(t, goose.SetDialect("postgres"))
	require.NoError(t, goose.Up(db, "."))

	_, err = pool.Exec(ctx, `TRUNCATE exercises, exercise_listings`)
	require.NoError(t, err)
	return pool
}

func TestExerciseRepository(t *testing.T) {
	pool := setupPool(t)
	repo := NewExerciseRepository(pool)
	ctx := context.Background()

	in := exercise.Exercise{
		Code: "c1", Topic: "funciones", Level: "basico", Title: "Suma",
		Description: "d", Prompt: "p", ExampleInput: "1 2", ExampleOutput: "3", Solution: "s",
	}
	created, err := repo.Insert(ctx, in)
	require.NoError(t, err)
	assert.False(t, created.CreatedAt.IsZero())

	_, err = repo.Insert(ctx, in)
	assert.True(t, errors.Is(err, exercise.ErrDuplicate))

	exists, err := repo.ExistsByTitle(ctx, "Suma")
	require.NoError(t, err)
	assert.True(t, exists)

	title := "Suma de enteros"
	updated, err := repo.Update(ctx, "c1", exercise.Patch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, "d", updated.Description)

	_, err = repo.Update(ctx, "missing", exercise.Patch{Title: &title})
	assert.True(t, errors.Is(err, exercise.ErrNotFound))

	byTopic, err := repo.ListByTopic(ctx, "funciones")
	require.NoError(t, err)
	assert.Len(t, byTopic, 1)

	got, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, title, got.Title)

	require.NoError(t, repo.Delete(ctx, "c1"))
	assert.True(t, errors.Is(repo.Delete(ctx, "c1"), exercise.ErrNotFound))
	_, err = repo.Get(ctx, "c1")
	assert.True(t, errors.Is(err, exercise.ErrNotFound))

	n, err := repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func newListing(id string) exercise.Listing {
	entries := func() []exercise.Entry {
		return []exercise.Entry{{Text: "a"}, {Text: "b"}, {Text: "c"}}
	}
	return exercise.Listing{
		ID:       id,
		Topic:    "funciones",
		Listings: exercise.Tiers{Basico: entries(), Intermedio: entries(), Avanzado: entries()},
	}
}

func TestListingRepository(t *testing.T) {
	pool := setupPool(t)
	repo := NewListingRepository(pool)
	ctx := context.Background()

	none, err := repo.Latest(ctx, "funciones")
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = repo.Replace(ctx, newListing("l1"))
	require.NoError(t, err)

	changed, err := repo.MarkSelected(ctx, "funciones", "intermedio", 2)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.MarkSelected(ctx, "funciones", "intermedio", 2)
	require.NoError(t, err)
	assert.False(t, changed, "already selected")

	changed, err = repo.MarkSelected(ctx, "funciones", "intermedio", 3)
	require.NoError(t, err)
	assert.False(t, changed, "out of range")

	l, err := repo.Latest(ctx, "funciones")
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.Equal(t, "l1", l.ID)
	assert.True(t, l.Listings.Intermedio[2].Selected)
	assert.Equal(t, "c", l.Listings.Intermedio[2].Text)
	assert.Len(t, l.Listings.Intermedio, 3)
	assert.Equal(t, 1, 9-l.Listings.Unselected().Len())

	_, err = repo.Replace(ctx, newListing("l2"))
	require.NoError(t, err)
	l, err = repo.Latest(ctx, "funciones")
	require.NoError(t, err)
	assert.Equal(t, "l2", l.ID)
	assert.Equal(t, 9, l.Listings.Unselected().Len())

	n, err := repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestListingMarkSelectedConcurrent(t *testing.T) {
	pool := setupPool(t)
	repo := NewListingRepository(pool)
	ctx := context.Background()
	_, err := repo.Replace(ctx, newListing("l1"))
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		flipped int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			changed, err := repo.MarkSelected(ctx, "funciones", "basico", 0)
			assert.NoError(t, err)
			if changed {
				mu.Lock()
				flipped++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, flipped)
}
