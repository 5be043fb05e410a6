package state

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/repository"
	"github.com/julianstephens/habitual/internal/validation"
)

// RegisterResult is the outcome of the latest registration attempt.
type RegisterResult int

const (
	RegisterPending RegisterResult = iota
	RegisterSuccess
	RegisterFailure
)

func (r RegisterResult) String() string {
	switch r {
	case RegisterSuccess:
		return "success"
	case RegisterFailure:
		return "failure"
	default:
		return "pending"
	}
}

// Profile is the published user: Present is false while absent.
type Profile struct {
	User    models.User
	Present bool
}

// Users holds the signed-in user's profile and registration status.
type Users struct {
	repo repository.UserRepository
	log  *log.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	tasks   sync.WaitGroup
	closeMu sync.Mutex
	closed  bool

	profile atomic.Pointer[Profile]
	result  atomic.Int32

	profileFeed *feed[Profile]
	resultFeed  *feed[RegisterResult]
}

func NewUsers(ctx context.Context, repo repository.UserRepository, opts ...Option) *Users {
	cfg := config{log: logger.For("state")}
	for _, opt := range opts {
		opt(&cfg)
	}
	ctx, cancel := context.WithCancel(ctx)
	c := &Users{
		repo:        repo,
		log:         cfg.log,
		ctx:         ctx,
		cancel:      cancel,
		profileFeed: newFeed[Profile](),
		resultFeed:  newFeed[RegisterResult](),
	}
	c.profile.Store(&Profile{})
	return c
}

func (c *Users) Close() {
	c.closeMu.Lock()
	c.closed = true
	c.closeMu.Unlock()

	c.cancel()
	c.tasks.Wait()
	c.profileFeed.close()
	c.resultFeed.close()
}

func (c *Users) spawn(op string, fn func(ctx context.Context)) <-chan struct{} {
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

// Current returns the published profile.
func (c *Users) Current() (models.User, bool) {
	p := c.profile.Load()
	return p.User, p.Present
}

func (c *Users) RegisterResult() RegisterResult {
	return RegisterResult(c.result.Load())
}

func (c *Users) SubscribeProfile() (<-chan Profile, func()) {
	return c.profileFeed.subscribe(func() Profile { return *c.profile.Load() })
}

func (c *Users) SubscribeRegister() (<-chan RegisterResult, func()) {
	return c.resultFeed.subscribe(c.RegisterResult)
}

func (c *Users) setProfile(p Profile) {
	c.profileFeed.publishWith(func() Profile {
		c.profile.Store(&p)
		return p
	})
}

func (c *Users) setResult(r RegisterResult) {
	c.resultFeed.publishWith(func() RegisterResult {
		c.result.Store(int32(r))
		return r
	})
}

// Fetch looks up the profile and publishes it, or publishes absent when the
// lookup fails.
func (c *Users) Fetch(userID string) <-chan struct{} {
	return c.spawn("fetch", func(ctx context.Context) {
		u, err := c.repo.Get(ctx, userID)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			c.log.Warn("Failed to fetch profile", "op", "fetch", "user", userID, "error", err)
			c.setProfile(Profile{})
			return
		}
		c.setProfile(Profile{User: u, Present: true})
	})
}

// Register creates the account and profile. The result moves to success or
// failure; on success the new profile is published too.
func (c *Users) Register(user models.User, password string) <-chan struct{} {
	return c.spawn("register", func(ctx context.Context) {
		id, err := c.repo.Register(ctx, user, password)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			c.log.Warn("Registration failed", "op", "register", "email", user.Email, "error", err)
			c.setResult(RegisterFailure)
			return
		}
		user.ID = id
		c.log.Info("User registered", "op", "register", "user", id)
		c.setProfile(Profile{User: user, Present: true})
		c.setResult(RegisterSuccess)
	})
}

// Submit validates a registration form and registers only when it is valid.
// An invalid form returns its problems and a closed channel.
func (c *Users) Submit(form validation.Registration) (validation.Result, <-chan struct{}) {
	result := form.Validate()
	if !result.Valid() {
		done := make(chan struct{})
		close(done)
		return result, done
	}
	return result, c.Register(form.User(), form.Password)
}

// Reset returns the registration result to pending.
func (c *Users) Reset() {
	c.setResult(RegisterPending)
}
