package system

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitual/internal/cli/clitest"
	"github.com/julianstephens/habitual/internal/docstore"
	"github.com/julianstephens/habitual/internal/docstore/sqlite"
	"github.com/julianstephens/habitual/internal/repository"
)

func TestInitMemoryStore(t *testing.T) {
	ctx, out := clitest.New(t)

	require.NoError(t, (&InitCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "Initialized habitual storage at: memory")
	assert.NoError(t, ctx.Sessions.CheckSigningKey())
}

func TestInitForceNeedsSQLite(t *testing.T) {
	ctx, _ := clitest.New(t)
	err := (&InitCmd{Force: true}).Run(ctx)
	assert.ErrorContains(t, err, "only supported for sqlite")
}

func TestInitForceRecreatesSQLite(t *testing.T) {
	ctx, out := clitest.New(t)
	dbPath := filepath.Join(t.TempDir(), "habitual.db")
	store := sqlite.New(dbPath)
	require.NoError(t, store.Init(ctx.Ctx))
	require.NoError(t, store.Set(ctx.Ctx, "users/u1", docstore.Document(`{"name":"Ada"}`)))
	clitest.UseStore(ctx, store)

	require.NoError(t, (&InitCmd{Force: true}).Run(ctx))
	assert.Contains(t, out.String(), "Deleted existing database")
	t.Cleanup(func() { ctx.Store.Close() })

	_, err := ctx.Store.Get(ctx.Ctx, "users/u1")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestInitCopiesFromSource(t *testing.T) {
	ctx, out := clitest.New(t)

	srcPath := filepath.Join(t.TempDir(), "old.db")
	src := sqlite.New(srcPath)
	require.NoError(t, src.Init(ctx.Ctx))
	require.NoError(t, src.Set(ctx.Ctx, "credentials/ada%40example.com", docstore.Document(`{"email":"ada@example.com","userId":"u1"}`)))
	require.NoError(t, src.Set(ctx.Ctx, "users/u1", docstore.Document(`{"name":"Ada"}`)))
	require.NoError(t, src.Set(ctx.Ctx, "users/u1/habits/h1", docstore.Document(`{"habitName":"Read","period":"1 Week (7 Days)"}`)))
	require.NoError(t, src.Close())

	require.NoError(t, (&InitCmd{Source: srcPath}).Run(ctx))
	assert.Contains(t, out.String(), "Copied 1 accounts, 1 profiles, 1 habits")

	habits, err := repository.NewHabits(ctx.Store).List(ctx.Ctx, "u1")
	require.NoError(t, err)
	require.Len(t, habits, 1)
	assert.Equal(t, "Read", habits[0].HabitName)
}

func TestDoctorHealthy(t *testing.T) {
	ctx, out := clitest.New(t)
	clitest.SignIn(t, ctx)

	require.NoError(t, (&DoctorCmd{}).Run(ctx))
	text := out.String()
	assert.Contains(t, text, "✓ Store reachable: OK (memory)")
	assert.Contains(t, text, "⊘ Schema version: SKIPPED")
	assert.Contains(t, text, "✓ Keyring: OK")
	assert.Contains(t, text, "✓ Session: OK")
	assert.Contains(t, text, "✓ Habit integrity: OK")
	assert.Contains(t, text, "⊘ Backups present: SKIPPED")
	assert.Contains(t, text, "All checks passed!")
}

func TestDoctorWarnsWithoutSession(t *testing.T) {
	ctx, out := clitest.New(t)

	require.NoError(t, (&DoctorCmd{}).Run(ctx))
	text := out.String()
	assert.Contains(t, text, "⚠ Session: WARNING")
	assert.Contains(t, text, "⊘ Habit integrity: SKIPPED (not signed in)")
}

func TestDoctorReportsInvalidHabits(t *testing.T) {
	ctx, out := clitest.New(t)
	s := clitest.SignIn(t, ctx)
	require.NoError(t, ctx.Store.Set(ctx.Ctx, docstore.Path("users/"+s.UserID+"/habits/bad"), docstore.Document(`{"completedCount":-2}`)))

	err := (&DoctorCmd{}).Run(ctx)
	require.Error(t, err)
	assert.Contains(t, out.String(), "❌ Habit integrity: FAIL")
	assert.Contains(t, out.String(), "1 of 1 habit records are invalid")
}

func TestDoctorChecksSQLiteSchema(t *testing.T) {
	ctx, out := clitest.New(t)
	store := sqlite.New(filepath.Join(t.TempDir(), "habitual.db"))
	require.NoError(t, store.Init(ctx.Ctx))
	t.Cleanup(func() { store.Close() })
	clitest.UseStore(ctx, store)
	clitest.SignIn(t, ctx)

	require.NoError(t, (&DoctorCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "✓ Schema version: OK")
	assert.Contains(t, out.String(), "⚠ Backups present: WARNING")
}
