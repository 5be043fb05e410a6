package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/progress"
	"github.com/julianstephens/habitual/internal/validation"
)

type HabitCmd struct {
	Add    HabitAddCmd    `cmd:"" help:"Add a new habit."`
	List   HabitListCmd   `cmd:"" help:"List active habits."`
	Done   HabitDoneCmd   `cmd:"" help:"Mark a habit as done today."`
	Undo   HabitUndoCmd   `cmd:"" help:"Undo the last completion of a habit."`
	Remove HabitRemoveCmd `cmd:"" name:"rm" help:"Delete a habit."`
}

type HabitAddCmd struct {
	Name   string `arg:"" optional:"" help:"Habit name."`
	Goal   string `help:"Your goal, e.g. a target number of completions."`
	Period string `help:"Tracking period: '1 Week (7 Days)', '1 Month (30 Days)' or '1 Year (360 Days)'."`
	Type   string `help:"Cadence: 'Everyday', 'Once a Week' or 'Every 3 Days'." default:"Everyday"`
}

func (c *HabitAddCmd) Run(ctx *Context) error {
	s, err := ctx.Session()
	if err != nil {
		return err
	}

	input := validation.HabitInput{Goal: c.Goal, Name: c.Name, Period: c.Period, HabitType: c.Type}
	if input.Name == "" || input.Goal == "" || input.Period == "" {
		if err := NewHabitForm(&input).Run(); err != nil {
			return err
		}
	}
	period, habitType, err := input.Parse()
	if err != nil {
		return err
	}

	habits := ctx.Habits(s)
	defer habits.Close()
	<-habits.Load()
	before := len(habits.Snapshot())
	<-habits.Create(input.Goal, input.Name, period, habitType)

	// Create reloads the list; a failed save leaves it as it was.
	after := habits.Snapshot()
	if len(after) <= before {
		return fmt.Errorf("failed to add habit %q, see the log for details", input.Name)
	}
	ctx.Printf("Added habit: %s (%s, %s)\n", input.Name, period, habitType)
	return nil
}

// NewHabitForm is the add-habit form shared with the TUI.
func NewHabitForm(f *validation.HabitInput) *huh.Form {
	if f.Period == "" {
		f.Period = string(models.PeriodWeek)
	}
	if f.HabitType == "" {
		f.HabitType = string(models.HabitTypeEveryday)
	}
	required := func(field string) func(string) error {
		return func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("%s cannot be empty", field)
			}
			return nil
		}
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit Name").
				Value(&f.Name).
				Validate(required("habit name")),
			huh.NewInput().
				Title("Your Goal").
				Description("A number is used as the completion target").
				Value(&f.Goal).
				Validate(required("goal")),
			huh.NewSelect[string]().
				Title("Period").
				Options(huh.NewOptions(labels(models.Periods)...)...).
				Value(&f.Period),
			huh.NewSelect[string]().
				Title("Habit Type").
				Options(huh.NewOptions(labels(models.HabitTypes)...)...).
				Value(&f.HabitType),
		),
	).WithTheme(huh.ThemeDracula())
}

func labels[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

type HabitListCmd struct {
	All bool `help:"Include habits whose period has ended."`
}

func (c *HabitListCmd) Run(ctx *Context) error {
	s, err := ctx.Session()
	if err != nil {
		return err
	}
	habits, list := ctx.LoadHabits(s, c.All)
	defer habits.Close()

	if len(list) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	today := ctx.Today()
	now := ctx.Now()
	for i, h := range list {
		status := ""
		if h.Expired(now) {
			status = " [ENDED]"
		}
		ctx.Printf("%2d. %s %s  %s%s\n", i+1, Mark(h.CompletedOn(today)), h.HabitName,
			MutedStyle.Render(fmt.Sprintf("%s · %s · %d done", h.Period, h.HabitType, h.CompletedCount)), status)
	}
	return nil
}

type HabitDoneCmd struct {
	Habit string `arg:"" help:"Habit id, list position or name."`
}

func (c *HabitDoneCmd) Run(ctx *Context) error {
	s, err := ctx.Session()
	if err != nil {
		return err
	}
	habits, list := ctx.LoadHabits(s, false)
	defer habits.Close()

	h, err := ResolveHabit(list, c.Habit)
	if err != nil {
		return err
	}
	today := ctx.Today()
	if h.CompletedOn(today) {
		ctx.Printf("%s already done today\n", h.HabitName)
		return nil
	}

	<-habits.Complete(h)
	updated, ok := habits.Find(h.ID)
	if !ok || !updated.CompletedOn(today) {
		return fmt.Errorf("failed to mark %q as done, see the log for details", h.HabitName)
	}
	ctx.Printf("%s %s done (%d total)\n", Mark(true), updated.HabitName, updated.CompletedCount)
	return nil
}

type HabitUndoCmd struct {
	Habit string `arg:"" help:"Habit id, list position or name."`
}

func (c *HabitUndoCmd) Run(ctx *Context) error {
	s, err := ctx.Session()
	if err != nil {
		return err
	}
	habits, list := ctx.LoadHabits(s, false)
	defer habits.Close()

	h, err := ResolveHabit(list, c.Habit)
	if err != nil {
		return err
	}
	if h.LastCompletedDate == "" {
		ctx.Printf("%s has no completion to undo\n", h.HabitName)
		return nil
	}

	<-habits.Undo(h)
	updated, ok := habits.Find(h.ID)
	if !ok || updated.LastCompletedDate != "" {
		return fmt.Errorf("failed to undo %q, see the log for details", h.HabitName)
	}
	ctx.Printf("%s %s undone (%d total)\n", Mark(false), updated.HabitName, updated.CompletedCount)
	return nil
}

type HabitRemoveCmd struct {
	Habit string `arg:"" help:"Habit id, list position or name, as shown by 'habit list'."`
	All   bool   `help:"Resolve against the list including ended habits, as shown by 'habit list --all'."`
	Yes   bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *HabitRemoveCmd) Run(ctx *Context) error {
	s, err := ctx.Session()
	if err != nil {
		return err
	}
	habits, list := ctx.LoadHabits(s, c.All)
	defer habits.Close()

	h, err := ResolveHabit(list, c.Habit)
	if err != nil {
		return err
	}
	if !c.Yes {
		confirm := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete habit %q?", h.HabitName)).
			Value(&confirm).
			Run()
		if err != nil {
			return err
		}
		if !confirm {
			ctx.Println("Cancelled")
			return nil
		}
	}

	<-habits.Remove(h.ID)
	if _, still := habits.Find(h.ID); still {
		return fmt.Errorf("failed to delete %q, see the log for details", h.HabitName)
	}
	ctx.Printf("Deleted habit: %s\n", h.HabitName)
	return nil
}

type ProgressCmd struct{}

func (c *ProgressCmd) Run(ctx *Context) error {
	s, err := ctx.Session()
	if err != nil {
		return err
	}
	habits, list := ctx.LoadHabits(s, false)
	defer habits.Close()

	done, total, ratio := progress.Daily(list)
	ctx.Println(HeadingStyle.Render("Today"))
	ctx.Printf("  %d of %d habits done (%.0f%%)\n", done, total, ratio*100)

	goals := progress.GoalHabits(list)
	if len(goals) == 0 {
		return nil
	}
	now := ctx.Now()
	ctx.Println()
	ctx.Println(HeadingStyle.Render("Goals"))
	for _, h := range goals {
		ctx.Printf("  %s  %.0f%% of period done, %.0f%% of days completed\n",
			h.HabitName, progress.Elapsed(h, now)*100, progress.Goal(h)*100)
	}
	return nil
}

type RecapCmd struct{}

func (c *RecapCmd) Run(ctx *Context) error {
	s, err := ctx.Session()
	if err != nil {
		return err
	}
	habits, list := ctx.LoadHabits(s, true)
	defer habits.Close()

	sum := progress.Recap(list)
	ctx.Println(HeadingStyle.Render("Recap"))
	for _, h := range list {
		ctx.Printf("  %s %s  %d/%d\n", Mark(progress.Achieved(h)), h.HabitName, h.CompletedCount, progress.TargetCount(h))
	}
	ctx.Printf("%d of %d goals achieved (%.0f%%)\n", sum.Achieved, sum.Total, sum.Percent)
	return nil
}
