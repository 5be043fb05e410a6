package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/habitual/internal/auth"
	"github.com/julianstephens/habitual/internal/backup"
	"github.com/julianstephens/habitual/internal/config"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/docstore/sqlite"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/repository"
	"github.com/julianstephens/habitual/internal/session"
	"github.com/julianstephens/habitual/internal/state"
	"github.com/julianstephens/habitual/internal/storage"
)

// Context is handed to every command's Run method.
type Context struct {
	Ctx      context.Context
	Config   config.Config
	Store    storage.Provider
	Sessions *session.Manager
	Clock    state.Clock
	Out      io.Writer

	creds *auth.Service
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Out, args...)
}

// Credentials returns the credential service over the store.
func (c *Context) Credentials() *auth.Service {
	if c.creds == nil {
		c.creds = auth.NewService(c.Store)
	}
	return c.creds
}

// SetCredentials replaces the credential service. Tests use a cheap bcrypt cost.
func (c *Context) SetCredentials(svc *auth.Service) { c.creds = svc }

func (c *Context) clock() state.Clock {
	if c.Clock == nil {
		return state.SystemClock
	}
	return c.Clock
}

// Today is the clock's local calendar date.
func (c *Context) Today() string {
	return c.clock().Now().Format(constants.DateFormat)
}

func (c *Context) Now() time.Time { return c.clock().Now() }

// Session resumes the signed-in session.
func (c *Context) Session() (session.Session, error) {
	return c.Sessions.Resume()
}

// Habits builds a habit container for s. One-shot commands disable the
// background sweep; long-lived callers pass their own options.
func (c *Context) Habits(s session.Session, opts ...state.Option) *state.Habits {
	base := []state.Option{state.WithClock(c.clock()), state.WithSweepInterval(0)}
	return state.NewHabits(c.Ctx, s, repository.NewHabits(c.Store), append(base, opts...)...)
}

// Users builds a user container.
func (c *Context) Users() *state.Users {
	return state.NewUsers(c.Ctx, repository.NewUsers(c.Store, c.Credentials()))
}

// LoadHabits loads the active list: expired habits are swept unless all is set.
func (c *Context) LoadHabits(s session.Session, all bool) (*state.Habits, []models.Habit) {
	h := c.Habits(s)
	<-h.Load()
	if !all {
		h.SweepNow()
	}
	return h, h.Snapshot()
}

// PerformAutomaticBackup snapshots a sqlite store and only logs failures.
func (c *Context) PerformAutomaticBackup() {
	s, ok := c.Store.(*sqlite.Store)
	if !ok {
		return
	}
	if _, err := backup.NewManager(s.Path()).Create(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// ResolveHabit finds a habit by id, 1-based list position or
// case-insensitive name.
func ResolveHabit(habits []models.Habit, ref string) (models.Habit, error) {
	ref = strings.TrimSpace(ref)
	for _, h := range habits {
		if h.ID == ref {
			return h, nil
		}
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n >= 1 && n <= len(habits) {
			return habits[n-1], nil
		}
		return models.Habit{}, fmt.Errorf("no habit at position %d (have %d)", n, len(habits))
	}

	var matches []models.Habit
	for _, h := range habits {
		if strings.EqualFold(h.HabitName, ref) {
			matches = append(matches, h)
		}
	}
	switch len(matches) {
	case 0:
		return models.Habit{}, fmt.Errorf("habit not found: %s", ref)
	case 1:
		return matches[0], nil
	default:
		return models.Habit{}, fmt.Errorf("habit name %q is ambiguous, use the id or position", ref)
	}
}
