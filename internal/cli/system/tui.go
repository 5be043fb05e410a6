package system

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/state"
	"github.com/julianstephens/habitual/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	s, err := ctx.Session()
	if err != nil {
		return err
	}

	ctx.PerformAutomaticBackup()

	habits := ctx.Habits(s, state.WithSweepInterval(ctx.Config.SweepInterval))
	defer habits.Close()
	users := ctx.Users()
	defer users.Close()
	users.Fetch(s.UserID)

	p := tea.NewProgram(tui.NewModel(habits, users, state.ClockFunc(ctx.Now)), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
