// Package repository maps habits and user profiles onto document store paths.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/docstore"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrMissingID = errors.New("habit has no id")
)

// HabitRepository is the persistence the habit container depends on.
type HabitRepository interface {
	List(ctx context.Context, userID string) ([]models.Habit, error)
	Save(ctx context.Context, userID string, habit models.Habit) (models.Habit, error)
	Update(ctx context.Context, userID string, habit models.Habit) error
	Delete(ctx context.Context, userID, habitID string) error
}

// Habits stores habits under users/{uid}/habits/{id}.
type Habits struct {
	store docstore.Store
	log   *log.Logger
}

func NewHabits(store docstore.Store) *Habits {
	return &Habits{store: store, log: logger.For("repository")}
}

// HabitsPath returns the collection path of a user's habits.
func HabitsPath(userID string) (docstore.Path, error) {
	return docstore.Join(constants.UsersCollection, userID, constants.HabitsCollection)
}

func habitPath(userID, habitID string) (docstore.Path, error) {
	return docstore.Join(constants.UsersCollection, userID, constants.HabitsCollection, habitID)
}

// List returns every decodable habit of the user in key order. Records that
// fail to decode are logged and skipped.
func (r *Habits) List(ctx context.Context, userID string) ([]models.Habit, error) {
	parent, err := HabitsPath(userID)
	if err != nil {
		return nil, err
	}
	entries, err := r.store.Children(ctx, parent)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}

	habits := make([]models.Habit, 0, len(entries))
	for _, e := range entries {
		h, err := models.DecodeHabit(e.Key, e.Doc)
		if err != nil {
			r.log.Warn("Skipping invalid habit record", "user", userID, "habit", e.Key, "error", err)
			continue
		}
		habits = append(habits, h)
	}
	return habits, nil
}

// Save writes the habit, assigning a new id when it has none.
func (r *Habits) Save(ctx context.Context, userID string, habit models.Habit) (models.Habit, error) {
	if habit.ID == "" {
		parent, err := HabitsPath(userID)
		if err != nil {
			return models.Habit{}, err
		}
		id, err := r.store.GenerateID(ctx, parent)
		if err != nil {
			return models.Habit{}, fmt.Errorf("failed to generate habit id: %w", err)
		}
		habit.ID = id
	}
	if err := r.write(ctx, userID, habit); err != nil {
		return models.Habit{}, err
	}
	return habit, nil
}

// Update overwrites an existing habit document.
func (r *Habits) Update(ctx context.Context, userID string, habit models.Habit) error {
	if habit.ID == "" {
		return ErrMissingID
	}
	return r.write(ctx, userID, habit)
}

func (r *Habits) write(ctx context.Context, userID string, habit models.Habit) error {
	path, err := habitPath(userID, habit.ID)
	if err != nil {
		return err
	}
	doc, err := habit.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode habit: %w", err)
	}
	if err := r.store.Set(ctx, path, doc); err != nil {
		return fmt.Errorf("failed to save habit %s: %w", habit.ID, err)
	}
	return nil
}

func (r *Habits) Delete(ctx context.Context, userID, habitID string) error {
	path, err := habitPath(userID, habitID)
	if err != nil {
		return err
	}
	if err := r.store.Delete(ctx, path); err != nil {
		return fmt.Errorf("failed to delete habit %s: %w", habitID, err)
	}
	return nil
}
