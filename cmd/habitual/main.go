package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/cli/accounts"
	"github.com/julianstephens/habitual/internal/cli/backups"
	"github.com/julianstephens/habitual/internal/cli/system"
	"github.com/julianstephens/habitual/internal/config"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/keyring"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/session"
	"github.com/julianstephens/habitual/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Config file path." type:"path" default:"${config}"`
	Store   string `help:"Store location: a sqlite file path or a postgres://, mongodb://, redis:// or memory:// URL. PostgreSQL credentials must NOT be embedded in the URL."`
	Debug   bool   `help:"Log at debug level and mirror logs to stderr."`

	Init     system.InitCmd       `cmd:"" help:"Initialize habitual storage and the session signing key."`
	Doctor   system.DoctorCmd     `cmd:"" help:"Run health checks and diagnostics."`
	Tui      system.TuiCmd        `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Register accounts.RegisterCmd `cmd:"" help:"Create an account and sign in."`
	Login    accounts.LoginCmd    `cmd:"" help:"Sign in."`
	Logout   accounts.LogoutCmd   `cmd:"" help:"Sign out."`
	Whoami   accounts.WhoamiCmd   `cmd:"" help:"Show the signed-in user."`
	Habit    cli.HabitCmd         `cmd:"" help:"Manage habits."`
	Progress cli.ProgressCmd      `cmd:"" help:"Show today's progress and goal progress."`
	Recap    cli.RecapCmd         `cmd:"" help:"Show how many goals were achieved."`
	Backup   struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage sqlite store backups."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Track habits toward a goal, one day at a time"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version": constants.Version,
			"config":  constants.DefaultConfigFile,
		},
	)

	cfg, err := config.Load(CLI.Config, CLI.Config != config.ExpandPath(constants.DefaultConfigFile), os.Getenv)
	if err != nil {
		errors.Fatal(err)
	}
	if CLI.Store != "" {
		cfg.Store = config.ExpandPath(CLI.Store)
	}
	if CLI.Debug {
		cfg.Debug = true
	}

	if err := logger.Init(logger.Config{Debug: cfg.Debug, ConfigDir: cfg.LogDir}); err != nil {
		errors.Fatal(errors.WithHint(err, "check that the log directory is writable"))
	}
	defer logger.Close()

	store, err := storage.New(cfg.Store)
	if err != nil {
		errors.Fatal(err)
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCtx := &cli.Context{
		Ctx:      runCtx,
		Config:   cfg,
		Store:    store,
		Sessions: session.NewManager(keyring.OS{}, session.WithTTL(cfg.SessionTTL)),
		Out:      os.Stdout,
	}

	// Init prepares the store itself.
	if ctx.Selected() != nil && ctx.Selected().Name != "init" {
		if err := store.Load(runCtx); err != nil {
			errors.Fatal(errors.WithHint(err, "run 'habitual init' to create the store"))
		}
	}

	err = ctx.Run(appCtx)
	_ = appCtx.Store.Close()
	errors.Fatal(err)
}
