package state

import (
	"time"

	"github.com/charmbracelet/log"
)

// Clock supplies the current time. The local calendar date of Now decides
// which day a completion counts for.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

type config struct {
	clock         Clock
	sweepInterval time.Duration
	log           *log.Logger
}

type Option func(*config)

func WithClock(c Clock) Option {
	return func(cfg *config) { cfg.clock = c }
}

// WithSweepInterval sets how often expired habits are dropped from the list.
// A non-positive interval disables the background sweep.
func WithSweepInterval(d time.Duration) Option {
	return func(cfg *config) { cfg.sweepInterval = d }
}

func WithLogger(l *log.Logger) Option {
	return func(cfg *config) { cfg.log = l }
}
