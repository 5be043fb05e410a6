package system

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/docstore/sqlite"
	"github.com/julianstephens/habitual/internal/storage"
)

type InitCmd struct {
	Force  bool   `help:"Delete an existing sqlite database before initialization."`
	Source string `help:"Store location to copy accounts and habits from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(ctx.Ctx); err != nil {
		return err
	}
	ctx.Printf("Initialized habitual storage at: %s\n", ctx.Store.Describe())

	created, err := ctx.Sessions.EnsureSigningKey()
	if err != nil {
		return fmt.Errorf("failed to create signing key: %w", err)
	}
	if created {
		ctx.Println("Created session signing key in the OS keyring")
	}

	if c.Source != "" {
		ctx.Printf("Copying data from: %s\n", c.Source)
		if err := c.copyFrom(ctx); err != nil {
			return fmt.Errorf("copy failed: %w", err)
		}
	}
	return nil
}

// reset removes the sqlite file. Other backends are left alone.
func (c *InitCmd) reset(ctx *cli.Context) error {
	s, ok := ctx.Store.(*sqlite.Store)
	if !ok {
		return fmt.Errorf("--force is only supported for sqlite stores")
	}
	dbPath, err := filepath.Abs(s.Path())
	if err != nil {
		dbPath = s.Path()
	}
	if c.Source != "" {
		if absSource, err := filepath.Abs(c.Source); err == nil && absSource == dbPath {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err == nil {
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing database: %w", err)
		}
		for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
			if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
		}
		ctx.Printf("Deleted existing database at: %s\n", dbPath)
		// A closed sqlite store cannot be reopened.
		ctx.Store = sqlite.New(s.Path())
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	return nil
}

func (c *InitCmd) copyFrom(ctx *cli.Context) error {
	src, err := storage.New(c.Source)
	if err != nil {
		return err
	}
	if err := src.Load(ctx.Ctx); err != nil {
		return fmt.Errorf("failed to load source store: %w", err)
	}
	defer src.Close()

	stats, err := storage.Copy(ctx.Ctx, ctx.Store, src)
	if err != nil {
		return err
	}
	ctx.Printf("  Copied %d accounts, %d profiles, %d habits\n", stats.Credentials, stats.Users, stats.Habits)
	return nil
}
