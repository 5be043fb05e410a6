package state

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/repository"
	"github.com/julianstephens/habitual/internal/session"
)

var errOffline = errors.New("store offline")

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{now: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// fakeHabitRepo keeps habits per user in memory and can be made to fail or
// stall individual calls.
type fakeHabitRepo struct {
	mu      sync.Mutex
	habits  map[string]models.Habit
	nextID  int
	calls   map[string]int
	failing map[string]bool

	// listGate, when set, makes List wait after reading its data.
	listGate chan struct{}
	listRead chan struct{}
}

func newFakeHabitRepo(seed ...models.Habit) *fakeHabitRepo {
	r := &fakeHabitRepo{
		habits:  make(map[string]models.Habit),
		calls:   make(map[string]int),
		failing: make(map[string]bool),
	}
	for _, h := range seed {
		r.habits[h.ID] = h
	}
	return r
}

func (r *fakeHabitRepo) fail(op string, on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failing[op] = on
}

func (r *fakeHabitRepo) count(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[op]
}

func (r *fakeHabitRepo) stored(id string) models.Habit {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.habits[id]
}

func (r *fakeHabitRepo) enter(op string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[op]++
	if r.failing[op] {
		return fmt.Errorf("%s: %w", op, errOffline)
	}
	return nil
}

func (r *fakeHabitRepo) List(ctx context.Context, userID string) ([]models.Habit, error) {
	if err := r.enter("list"); err != nil {
		return nil, err
	}
	r.mu.Lock()
	out := make([]models.Habit, 0, len(r.habits))
	for _, h := range r.habits {
		out = append(out, h)
	}
	gate, read := r.listGate, r.listRead
	r.mu.Unlock()
	slices.SortFunc(out, func(a, b models.Habit) int {
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})

	if gate != nil {
		close(read)
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return out, nil
}

func (r *fakeHabitRepo) Save(ctx context.Context, userID string, h models.Habit) (models.Habit, error) {
	if err := r.enter("save"); err != nil {
		return models.Habit{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if h.ID == "" {
		r.nextID++
		h.ID = fmt.Sprintf("h%03d", r.nextID)
	}
	r.habits[h.ID] = h
	return h, nil
}

func (r *fakeHabitRepo) Update(ctx context.Context, userID string, h models.Habit) error {
	if err := r.enter("update"); err != nil {
		return err
	}
	if h.ID == "" {
		return repository.ErrMissingID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.habits[h.ID] = h
	return nil
}

func (r *fakeHabitRepo) Delete(ctx context.Context, userID, habitID string) error {
	if err := r.enter("delete"); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.habits, habitID)
	return nil
}

type fakeUserRepo struct {
	mu       sync.Mutex
	users    map[string]models.User
	calls    map[string]int
	failNext error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]models.User), calls: make(map[string]int)}
}

func (r *fakeUserRepo) count(op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[op]
}

func (r *fakeUserRepo) take(op string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[op]++
	err := r.failNext
	r.failNext = nil
	return err
}

func (r *fakeUserRepo) Register(ctx context.Context, u models.User, password string) (string, error) {
	if err := r.take("register"); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	id := fmt.Sprintf("u%d", len(r.users)+1)
	u.ID = id
	r.users[id] = u
	return id, nil
}

func (r *fakeUserRepo) Get(ctx context.Context, userID string) (models.User, error) {
	if err := r.take("get"); err != nil {
		return models.User{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return models.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) SignIn(ctx context.Context, email, password string) (string, error) {
	return "", r.take("signin")
}

func testSession() session.Session {
	return session.Session{UserID: "u1", Email: "ada@example.com"}
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}
