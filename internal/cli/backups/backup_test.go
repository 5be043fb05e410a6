package backups

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/cli/clitest"
	"github.com/julianstephens/habitual/internal/docstore"
	"github.com/julianstephens/habitual/internal/docstore/sqlite"
)

func sqliteContext(t *testing.T) (*cli.Context, *bytes.Buffer, string) {
	t.Helper()
	ctx, out := clitest.New(t)
	dbPath := filepath.Join(t.TempDir(), "habitual.db")
	store := sqlite.New(dbPath)
	require.NoError(t, store.Init(ctx.Ctx))
	t.Cleanup(func() { store.Close() })
	clitest.UseStore(ctx, store)
	return ctx, out, dbPath
}

func TestBackupsNeedSQLite(t *testing.T) {
	ctx, _ := clitest.New(t)
	err := (&BackupCreateCmd{}).Run(ctx)
	assert.ErrorContains(t, err, "only supported for sqlite")
}

func TestBackupListEmpty(t *testing.T) {
	ctx, out, _ := sqliteContext(t)

	require.NoError(t, (&BackupListCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "No backups found.")
}

func TestBackupCreateListRestore(t *testing.T) {
	ctx, out, dbPath := sqliteContext(t)

	require.NoError(t, ctx.Store.Set(ctx.Ctx, "users/u1", docstore.Document(`{"name":"Ada"}`)))
	require.NoError(t, (&BackupCreateCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "✓ Backup created: habitual-")

	require.NoError(t, (&BackupListCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "Available backups (1 total, keeping most recent 14)")

	mgr, err := manager(ctx)
	require.NoError(t, err)
	list, err := mgr.List()
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, ctx.Store.Set(ctx.Ctx, "users/u2", docstore.Document(`{"name":"Grace"}`)))

	require.NoError(t, (&BackupRestoreCmd{BackupFile: filepath.Base(list[0].Path), Yes: true}).Run(ctx))
	assert.Contains(t, out.String(), "✓ Database restored successfully!")
	assert.Contains(t, out.String(), "Previous database saved as:")

	reopened := sqlite.New(dbPath)
	require.NoError(t, reopened.Load(ctx.Ctx))
	defer reopened.Close()
	_, err = reopened.Get(ctx.Ctx, "users/u1")
	require.NoError(t, err)
	_, err = reopened.Get(ctx.Ctx, "users/u2")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestBackupRestoreMissingFile(t *testing.T) {
	ctx, _, _ := sqliteContext(t)
	err := (&BackupRestoreCmd{BackupFile: "habitual-20240101-000000.db", Yes: true}).Run(ctx)
	assert.ErrorContains(t, err, "backup file not found")
}
