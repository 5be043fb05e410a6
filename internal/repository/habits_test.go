package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitual/internal/docstore"
	"github.com/julianstephens/habitual/internal/models"
)

func sampleHabit() models.Habit {
	return models.NewHabit("Read", "Read 10 pages", models.PeriodMonth, models.HabitTypeEveryday,
		time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC))
}

func TestSaveAssignsID(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	repo := NewHabits(store)

	saved, err := repo.Save(ctx, "u1", sampleHabit())
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)

	habits, err := repo.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, habits, 1)
	assert.Equal(t, saved, habits[0])
}

func TestSaveKeepsExistingID(t *testing.T) {
	ctx := context.Background()
	repo := NewHabits(docstore.NewMemory())
	h := sampleHabit()
	h.ID = "fixed"

	saved, err := repo.Save(ctx, "u1", h)
	require.NoError(t, err)
	assert.Equal(t, "fixed", saved.ID)
}

func TestListSkipsInvalidRecords(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	repo := NewHabits(store)

	require.NoError(t, store.Set(ctx, "users/u1/habits/a", docstore.Document(`{"habitName":"ok"}`)))
	require.NoError(t, store.Set(ctx, "users/u1/habits/b", docstore.Document(`{"completedCount":"three"}`)))
	require.NoError(t, store.Set(ctx, "users/u1/habits/c", docstore.Document(`{"completedCount":-1}`)))
	require.NoError(t, store.Set(ctx, "users/u1/habits/d", docstore.Document(`{"lastCompletedDate":"yesterday"}`)))
	require.NoError(t, store.Set(ctx, "users/u1/habits/e", docstore.Document(`not json`)))
	require.NoError(t, store.Set(ctx, "users/u1/habits/f", docstore.Document(`{"habitName":"also ok","lastCompletedDate":"2024-01-01"}`)))

	habits, err := repo.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, habits, 2)
	assert.Equal(t, "a", habits[0].ID)
	assert.Equal(t, "f", habits[1].ID)
}

func TestListIsolatesUsers(t *testing.T) {
	ctx := context.Background()
	repo := NewHabits(docstore.NewMemory())
	_, err := repo.Save(ctx, "u1", sampleHabit())
	require.NoError(t, err)

	habits, err := repo.List(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, habits)
}

func TestUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewHabits(docstore.NewMemory())
	saved, err := repo.Save(ctx, "u1", sampleHabit())
	require.NoError(t, err)

	done, changed := saved.Complete("2024-01-02")
	require.True(t, changed)
	require.NoError(t, repo.Update(ctx, "u1", done))

	habits, err := repo.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, habits, 1)
	assert.Equal(t, 1, habits[0].CompletedCount)
	assert.Equal(t, "2024-01-02", habits[0].LastCompletedDate)

	require.NoError(t, repo.Delete(ctx, "u1", saved.ID))
	habits, err = repo.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, habits)
}

func TestUpdateRequiresID(t *testing.T) {
	repo := NewHabits(docstore.NewMemory())
	err := repo.Update(context.Background(), "u1", sampleHabit())
	assert.ErrorIs(t, err, ErrMissingID)
}

type brokenStore struct {
	*docstore.Memory
	err error
}

func (b brokenStore) Set(ctx context.Context, p docstore.Path, d docstore.Document) error {
	return b.err
}

func (b brokenStore) Children(ctx context.Context, p docstore.Path) ([]docstore.Entry, error) {
	return nil, b.err
}

func TestStoreErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("offline")
	repo := NewHabits(brokenStore{Memory: docstore.NewMemory(), err: boom})

	_, err := repo.List(ctx, "u1")
	assert.ErrorIs(t, err, boom)

	_, err = repo.Save(ctx, "u1", sampleHabit())
	assert.ErrorIs(t, err, boom)
}

func TestInvalidUserID(t *testing.T) {
	repo := NewHabits(docstore.NewMemory())
	_, err := repo.List(context.Background(), "")
	assert.ErrorIs(t, err, docstore.ErrInvalidPath)
}
