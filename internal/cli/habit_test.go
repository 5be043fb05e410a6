package cli_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/cli/clitest"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/repository"
	"github.com/julianstephens/habitual/internal/session"
)

func addHabit(t *testing.T, ctx *cli.Context, name, goal string, period models.Period) {
	t.Helper()
	cmd := &cli.HabitAddCmd{Name: name, Goal: goal, Period: string(period), Type: string(models.HabitTypeEveryday)}
	require.NoError(t, cmd.Run(ctx))
}

func stored(t *testing.T, ctx *cli.Context, s session.Session) []models.Habit {
	t.Helper()
	list, err := repository.NewHabits(ctx.Store).List(ctx.Ctx, s.UserID)
	require.NoError(t, err)
	return list
}

func TestCommandsNeedSession(t *testing.T) {
	ctx, _ := clitest.New(t)

	err := (&cli.HabitListCmd{}).Run(ctx)
	assert.ErrorIs(t, err, session.ErrNoSession)
	err = (&cli.HabitDoneCmd{Habit: "1"}).Run(ctx)
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestHabitAddAndList(t *testing.T) {
	ctx, out := clitest.New(t)
	s := clitest.SignIn(t, ctx)

	addHabit(t, ctx, "Read", "20", models.PeriodMonth)
	assert.Contains(t, out.String(), "Added habit: Read (1 Month (30 Days), Everyday)")

	list := stored(t, ctx, s)
	require.Len(t, list, 1)
	assert.Equal(t, "20", list[0].YourGoal)
	assert.Equal(t, clitest.Now.UnixMilli(), list[0].StartDate)

	out.Reset()
	require.NoError(t, (&cli.HabitListCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "○ Read")
	assert.Contains(t, out.String(), "0 done")
}

func TestHabitAddRejectsUnknownPeriod(t *testing.T) {
	ctx, _ := clitest.New(t)
	s := clitest.SignIn(t, ctx)

	cmd := &cli.HabitAddCmd{Name: "Read", Goal: "1", Period: "1 Fortnight", Type: string(models.HabitTypeEveryday)}
	err := cmd.Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown period")
	assert.Empty(t, stored(t, ctx, s))
}

func TestHabitListEmpty(t *testing.T) {
	ctx, out := clitest.New(t)
	clitest.SignIn(t, ctx)

	require.NoError(t, (&cli.HabitListCmd{}).Run(ctx))
	assert.Equal(t, "No habits found.\n", out.String())
}

func TestHabitListHidesEnded(t *testing.T) {
	ctx, out := clitest.New(t)
	s := clitest.SignIn(t, ctx)

	old := models.NewHabit("1", "Stretch", models.PeriodWeek, models.HabitTypeEveryday, clitest.Now.Add(-8*24*time.Hour))
	clitest.SeedHabit(t, ctx, s, old)
	addHabit(t, ctx, "Read", "1", models.PeriodWeek)

	out.Reset()
	require.NoError(t, (&cli.HabitListCmd{}).Run(ctx))
	assert.NotContains(t, out.String(), "Stretch")
	assert.Contains(t, out.String(), "Read")

	out.Reset()
	require.NoError(t, (&cli.HabitListCmd{All: true}).Run(ctx))
	assert.Contains(t, out.String(), "Stretch")
	assert.Contains(t, out.String(), "[ENDED]")

	// Listing never deletes.
	assert.Len(t, stored(t, ctx, s), 2)
}

func TestHabitDoneAndUndo(t *testing.T) {
	ctx, out := clitest.New(t)
	s := clitest.SignIn(t, ctx)
	addHabit(t, ctx, "Read", "3", models.PeriodWeek)

	out.Reset()
	require.NoError(t, (&cli.HabitDoneCmd{Habit: "read"}).Run(ctx))
	assert.Contains(t, out.String(), "✓ Read done (1 total)")

	got := stored(t, ctx, s)[0]
	assert.Equal(t, "2024-03-10", got.LastCompletedDate)
	assert.Equal(t, 1, got.CompletedCount)
	assert.True(t, got.Notified)

	out.Reset()
	require.NoError(t, (&cli.HabitDoneCmd{Habit: "1"}).Run(ctx))
	assert.Contains(t, out.String(), "already done today")
	assert.Equal(t, 1, stored(t, ctx, s)[0].CompletedCount)

	out.Reset()
	require.NoError(t, (&cli.HabitUndoCmd{Habit: got.ID}).Run(ctx))
	assert.Contains(t, out.String(), "○ Read undone (0 total)")
	got = stored(t, ctx, s)[0]
	assert.Empty(t, got.LastCompletedDate)
	assert.Zero(t, got.CompletedCount)
	assert.False(t, got.Notified)

	out.Reset()
	require.NoError(t, (&cli.HabitUndoCmd{Habit: "Read"}).Run(ctx))
	assert.Contains(t, out.String(), "no completion to undo")
}

func TestHabitRemove(t *testing.T) {
	ctx, out := clitest.New(t)
	s := clitest.SignIn(t, ctx)
	addHabit(t, ctx, "Read", "1", models.PeriodWeek)

	out.Reset()
	require.NoError(t, (&cli.HabitRemoveCmd{Habit: "Read", Yes: true}).Run(ctx))
	assert.Contains(t, out.String(), "Deleted habit: Read")
	assert.Empty(t, stored(t, ctx, s))

	err := (&cli.HabitRemoveCmd{Habit: "Read", Yes: true}).Run(ctx)
	assert.ErrorContains(t, err, "habit not found")
}

func TestHabitRemoveByPositionMatchesList(t *testing.T) {
	ctx, out := clitest.New(t)
	s := clitest.SignIn(t, ctx)

	old := models.NewHabit("1", "Old", models.PeriodWeek, models.HabitTypeEveryday, clitest.Now.Add(-8*24*time.Hour))
	old.ID = "a-old"
	clitest.SeedHabit(t, ctx, s, old)
	keep := models.NewHabit("1", "Keep", models.PeriodMonth, models.HabitTypeEveryday, clitest.Now)
	keep.ID = "b-keep"
	clitest.SeedHabit(t, ctx, s, keep)
	target := models.NewHabit("1", "Target", models.PeriodMonth, models.HabitTypeEveryday, clitest.Now)
	target.ID = "c-target"
	clitest.SeedHabit(t, ctx, s, target)

	require.NoError(t, (&cli.HabitListCmd{}).Run(ctx))
	assert.Contains(t, out.String(), " 2. ○ Target")

	out.Reset()
	require.NoError(t, (&cli.HabitRemoveCmd{Habit: "2", Yes: true}).Run(ctx))
	assert.Contains(t, out.String(), "Deleted habit: Target")

	var names []string
	for _, h := range stored(t, ctx, s) {
		names = append(names, h.HabitName)
	}
	assert.ElementsMatch(t, []string{"Old", "Keep"}, names)

	out.Reset()
	require.NoError(t, (&cli.HabitRemoveCmd{Habit: "1", All: true, Yes: true}).Run(ctx))
	assert.Contains(t, out.String(), "Deleted habit: Old")
	require.Len(t, stored(t, ctx, s), 1)
	assert.Equal(t, "Keep", stored(t, ctx, s)[0].HabitName)
}

func TestProgressAndRecap(t *testing.T) {
	ctx, out := clitest.New(t)
	s := clitest.SignIn(t, ctx)

	week := models.NewHabit("1", "Read", models.PeriodWeek, models.HabitTypeEveryday, clitest.Now.Add(-24*time.Hour))
	week.CompletedCount = 1
	week.Notified = true
	clitest.SeedHabit(t, ctx, s, week)

	month := models.NewHabit("10", "Run", models.PeriodMonth, models.HabitTypeEvery3Days, clitest.Now.Add(-3*24*time.Hour))
	month.CompletedCount = 3
	clitest.SeedHabit(t, ctx, s, month)

	require.NoError(t, (&cli.ProgressCmd{}).Run(ctx))
	text := out.String()
	assert.Contains(t, text, "1 of 2 habits done (50%)")
	assert.Contains(t, text, "Run  10% of period done, 10% of days completed")
	assert.NotContains(t, text, "Read  ", "week habits are not shown as goals")

	out.Reset()
	require.NoError(t, (&cli.RecapCmd{}).Run(ctx))
	text = out.String()
	assert.Contains(t, text, "✓ Read  1/1")
	assert.Contains(t, text, "○ Run  3/10")
	assert.Contains(t, text, "1 of 2 goals achieved (50%)")
}

func TestResolveHabit(t *testing.T) {
	habits := []models.Habit{
		{ID: "a1", HabitName: "Read"},
		{ID: "b2", HabitName: "Run"},
		{ID: "c3", HabitName: "run"},
	}

	tests := []struct {
		ref     string
		want    string
		wantErr string
	}{
		{ref: "b2", want: "b2"},
		{ref: "1", want: "a1"},
		{ref: " 3 ", want: "c3"},
		{ref: "READ", want: "a1"},
		{ref: "4", wantErr: "no habit at position 4"},
		{ref: "0", wantErr: "no habit at position 0"},
		{ref: "run", wantErr: "ambiguous"},
		{ref: "Swim", wantErr: "habit not found"},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := cli.ResolveHabit(habits, tt.ref)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.ID)
		})
	}
}
