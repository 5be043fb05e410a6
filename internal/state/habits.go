// Package state holds the in-session view of a user's habits and profile.
// Containers run each operation as a task bound to their context and never
// return store errors; a failed operation leaves state as it was.
package state

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/repository"
	"github.com/julianstephens/habitual/internal/session"
)

// Habits owns the active habit list of one session.
type Habits struct {
	session session.Session
	repo    repository.HabitRepository
	clock   Clock
	log     *log.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	tasks   sync.WaitGroup
	closeMu sync.Mutex
	closed  bool

	// list always points at an immutable slice; writers swap it under mu.
	list atomic.Pointer[[]models.Habit]
	mu   sync.Mutex
	// rev counts local patches. patchedAt records the rev of each habit's
	// latest patch and loads the start rev of every reload in flight, so a
	// reload that began before a patch keeps the patched entry.
	rev       uint64
	patchedAt map[string]uint64
	loads     map[uint64]int

	locks *keyLock
	feed  *feed[[]models.Habit]
}

// NewHabits starts a container for the session. It lives until ctx is done
// or Close is called.
func NewHabits(ctx context.Context, s session.Session, repo repository.HabitRepository, opts ...Option) *Habits {
	cfg := config{
		clock:         SystemClock,
		sweepInterval: constants.DefaultSweepInterval,
		log:           logger.For("state"),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, cancel := context.WithCancel(ctx)
	c := &Habits{
		session:   s,
		repo:      repo,
		clock:     cfg.clock,
		log:       cfg.log,
		ctx:       ctx,
		cancel:    cancel,
		patchedAt: make(map[string]uint64),
		loads:     make(map[uint64]int),
		locks:     newKeyLock(),
		feed:      newFeed[[]models.Habit](),
	}
	empty := []models.Habit{}
	c.list.Store(&empty)

	if cfg.sweepInterval > 0 {
		c.tasks.Add(1)
		go c.sweepLoop(cfg.sweepInterval)
	}
	return c
}

// Close cancels running tasks, waits for them and closes subscriptions.
func (c *Habits) Close() {
	c.closeMu.Lock()
	c.closed = true
	c.closeMu.Unlock()

	c.cancel()
	c.tasks.Wait()
	c.feed.close()
}

// Snapshot returns a copy of the current list.
func (c *Habits) Snapshot() []models.Habit {
	return slices.Clone(*c.list.Load())
}

// Find returns the in-memory copy of a habit.
func (c *Habits) Find(id string) (models.Habit, bool) {
	return findHabit(*c.list.Load(), id)
}

// Subscribe delivers the current list and then the list after every change.
// Received slices are shared and must not be modified. cancel stops delivery
// and closes the channel.
func (c *Habits) Subscribe() (<-chan []models.Habit, func()) {
	return c.feed.subscribe(func() []models.Habit { return *c.list.Load() })
}

// spawn runs fn as a container task. The returned channel closes when the
// task has finished, or immediately if the container is closed.
func (c *Habits) spawn(op string, fn func(ctx context.Context)) <-chan struct{} {
	done := make(chan struct{})

	c.closeMu.Lock()
	if c.closed {
		c.closeMu.Unlock()
		c.log.Debug("Container closed, dropping operation", "op", op)
		close(done)
		return done
	}
	c.tasks.Add(1)
	c.closeMu.Unlock()

	go func() {
		defer c.tasks.Done()
		defer close(done)
		fn(c.ctx)
	}()
	return done
}

// replace stores next and notifies subscribers. Callers hold mu.
func (c *Habits) replace(next []models.Habit) {
	c.feed.publishWith(func() []models.Habit {
		c.list.Store(&next)
		return next
	})
}

// Load replaces the list with the repository contents.
func (c *Habits) Load() <-chan struct{} {
	return c.spawn("load", func(ctx context.Context) {
		c.reload(ctx, "load")
	})
}

func (c *Habits) reload(ctx context.Context, op string) {
	c.mu.Lock()
	startRev := c.rev
	c.loads[startRev]++
	c.mu.Unlock()

	habits, err := c.repo.List(ctx, c.session.UserID)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.finishLoad(startRev)

	if ctx.Err() != nil {
		return
	}
	if err != nil {
		c.log.Warn("Failed to load habits", "op", op, "user", c.session.UserID, "error", err)
		return
	}

	current := *c.list.Load()
	next := make([]models.Habit, len(habits))
	for i, h := range habits {
		if rev, ok := c.patchedAt[h.ID]; ok && rev > startRev {
			if local, found := findHabit(current, h.ID); found {
				h = local
			}
		}
		next[i] = h
	}
	c.replace(next)
	c.log.Debug("Habits loaded", "op", op, "count", len(next))
}

// finishLoad drops patch records no reload in flight can still overwrite.
// Callers hold mu.
func (c *Habits) finishLoad(startRev uint64) {
	if c.loads[startRev]--; c.loads[startRev] == 0 {
		delete(c.loads, startRev)
	}
	oldest := c.rev
	for rev := range c.loads {
		oldest = min(oldest, rev)
	}
	for id, rev := range c.patchedAt {
		if rev <= oldest {
			delete(c.patchedAt, id)
		}
	}
}

// Create saves a new habit starting now and reloads the list.
func (c *Habits) Create(goal, name string, period models.Period, habitType models.HabitType) <-chan struct{} {
	return c.spawn("create", func(ctx context.Context) {
		h := models.NewHabit(goal, name, period, habitType, c.clock.Now())
		saved, err := c.repo.Save(ctx, c.session.UserID, h)
		if err != nil {
			c.log.Warn("Failed to create habit", "op", "create", "name", name, "error", err)
			return
		}
		c.log.Info("Habit created", "op", "create", "habit", saved.ID)
		c.reload(ctx, "create")
	})
}

// Complete marks the habit done for today. It does nothing when the habit
// was already completed today.
func (c *Habits) Complete(h models.Habit) <-chan struct{} {
	return c.spawn("complete", func(ctx context.Context) {
		unlock := c.locks.lock(h.ID)
		defer unlock()

		today := c.clock.Now().Format(constants.DateFormat)
		updated, changed := c.latest(h).Complete(today)
		if !changed {
			return
		}
		c.persist(ctx, "complete", updated)
	})
}

// Undo clears the latest completion. It does nothing for an incomplete habit.
func (c *Habits) Undo(h models.Habit) <-chan struct{} {
	return c.spawn("undo", func(ctx context.Context) {
		unlock := c.locks.lock(h.ID)
		defer unlock()

		updated, changed := c.latest(h).Undo()
		if !changed {
			return
		}
		c.persist(ctx, "undo", updated)
	})
}

// Remove deletes the habit and reloads the list.
func (c *Habits) Remove(habitID string) <-chan struct{} {
	return c.spawn("remove", func(ctx context.Context) {
		unlock := c.locks.lock(habitID)
		defer unlock()

		if err := c.repo.Delete(ctx, c.session.UserID, habitID); err != nil {
			c.log.Warn("Failed to remove habit", "op", "remove", "habit", habitID, "error", err)
			return
		}
		c.log.Info("Habit removed", "op", "remove", "habit", habitID)
		c.reload(ctx, "remove")
	})
}

// latest prefers the in-memory copy so back-to-back calls see each other.
func (c *Habits) latest(h models.Habit) models.Habit {
	if current, ok := c.Find(h.ID); ok {
		return current
	}
	return h
}

func (c *Habits) persist(ctx context.Context, op string, updated models.Habit) {
	err := c.repo.Update(ctx, c.session.UserID, updated)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		c.log.Warn("Failed to update habit", "op", op, "habit", updated.ID, "error", err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.rev++
	if len(c.loads) > 0 {
		c.patchedAt[updated.ID] = c.rev
	}

	current := *c.list.Load()
	i := slices.IndexFunc(current, func(x models.Habit) bool { return x.ID == updated.ID })
	if i < 0 {
		return
	}
	next := slices.Clone(current)
	next[i] = updated
	c.replace(next)
	c.log.Debug("Habit patched", "op", op, "habit", updated.ID, "count", updated.CompletedCount)
}

// SweepNow drops habits whose period has elapsed and returns how many were
// dropped. The repository is not touched.
func (c *Habits) SweepNow() int {
	return c.sweep(c.clock.Now())
}

func (c *Habits) sweep(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	current := *c.list.Load()
	next := slices.DeleteFunc(slices.Clone(current), func(h models.Habit) bool {
		return h.Expired(now)
	})
	dropped := len(current) - len(next)
	if dropped > 0 {
		c.replace(next)
		c.log.Info("Expired habits dropped", "op", "sweep", "count", dropped)
	}
	return dropped
}

func (c *Habits) sweepLoop(interval time.Duration) {
	defer c.tasks.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.sweep(c.clock.Now())
		}
	}
}

func findHabit(list []models.Habit, id string) (models.Habit, bool) {
	i := slices.IndexFunc(list, func(h models.Habit) bool { return h.ID == id })
	if i < 0 {
		return models.Habit{}, false
	}
	return list[i], true
}
