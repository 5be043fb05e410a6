package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/habitual/internal/backup"
	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/docstore/sqlite"
	"github.com/julianstephens/habitual/internal/keyring"
	"github.com/julianstephens/habitual/internal/migration"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/repository"
)

type DoctorCmd struct{}

// schemaStore is implemented by the SQL-backed stores.
type schemaStore interface {
	SchemaRunner() (*migration.Runner, error)
}

type check struct {
	name  string
	run   func(ctx *cli.Context) error
	needs bool // needs a reachable store
	warn  bool // a failure is only a warning
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	checks := []check{
		{name: "Schema version", run: checkSchema, needs: true},
		{name: "Keyring", run: checkKeyring},
		{name: "Session", run: checkSession, warn: true},
		{name: "Habit integrity", run: checkHabits, needs: true},
		{name: "Backups present", run: checkBackups, warn: true},
		{name: "Clock/timezone", run: checkClock},
	}

	hasError := false
	reachable := true
	if err := ctx.Store.Ping(ctx.Ctx); err != nil {
		ctx.Printf("❌ Store reachable: FAIL\n")
		ctx.Printf("   Error: %v\n", err)
		hasError = true
		reachable = false
	} else {
		ctx.Printf("✓ Store reachable: OK (%s)\n", ctx.Store.Describe())
	}

	for _, c := range checks {
		if c.needs && !reachable {
			ctx.Printf("⊘ %s: SKIPPED (store not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		var skip skipError
		switch {
		case errors.As(err, &skip):
			ctx.Printf("⊘ %s: SKIPPED (%s)\n", c.name, string(skip))
		case err != nil && c.warn:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		case err != nil:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		default:
			ctx.Printf("✓ %s: OK\n", c.name)
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Some checks failed. Please review the errors above.")
		return fmt.Errorf("diagnostics failed")
	}
	ctx.Println("All checks passed!")
	return nil
}

// skipError marks a check that does not apply.
type skipError string

func (e skipError) Error() string { return "skipped: " + string(e) }

func skipped(reason string) error { return skipError(reason) }

func checkSchema(ctx *cli.Context) error {
	s, ok := ctx.Store.(schemaStore)
	if !ok {
		return skipped("store has no schema")
	}
	runner, err := s.SchemaRunner()
	if err != nil {
		return err
	}
	return runner.ValidateVersion(ctx.Ctx)
}

func checkKeyring(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		return keyring.ErrKeyringUnavailable
	}
	return ctx.Sessions.CheckSigningKey()
}

func checkSession(ctx *cli.Context) error {
	s, err := ctx.Session()
	if err != nil {
		return err
	}
	if _, err := repository.NewUsers(ctx.Store, ctx.Credentials()).Get(ctx.Ctx, s.UserID); err != nil {
		return fmt.Errorf("signed in as %s but the profile cannot be read: %w", s.Email, err)
	}
	return nil
}

// checkHabits reads the signed-in user's raw habit documents and reports any
// the repository would skip.
func checkHabits(ctx *cli.Context) error {
	s, err := ctx.Session()
	if err != nil {
		return skipped("not signed in")
	}
	parent, err := repository.HabitsPath(s.UserID)
	if err != nil {
		return err
	}
	entries, err := ctx.Store.Children(ctx.Ctx, parent)
	if err != nil {
		return err
	}
	var bad []string
	for _, e := range entries {
		if _, err := models.DecodeHabit(e.Key, e.Doc); err != nil {
			bad = append(bad, err.Error())
		}
	}
	if len(bad) > 0 {
		return fmt.Errorf("%d of %d habit records are invalid: %v", len(bad), len(entries), bad)
	}
	return nil
}

func checkBackups(ctx *cli.Context) error {
	s, ok := ctx.Store.(*sqlite.Store)
	if !ok {
		return skipped("backups are only kept for sqlite stores")
	}
	backups, err := backup.NewManager(s.Path()).List()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found, run 'habitual backup create'")
	}
	return nil
}

func checkClock(ctx *cli.Context) error {
	now := ctx.Now()
	if now.Year() < 2000 {
		return fmt.Errorf("system clock looks wrong: %s", now.Format(time.RFC3339))
	}
	if now.Location() == nil {
		return fmt.Errorf("no local timezone")
	}
	return nil
}
