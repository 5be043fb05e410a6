package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitual/internal/docstore"
)

func TestCopy(t *testing.T) {
	ctx := context.Background()
	src := NewMemory()
	dst := NewMemory()

	docs := map[docstore.Path]string{
		"credentials/ada%40example.com": `{"email":"ada@example.com","userId":"u1"}`,
		"users/u1":                      `{"name":"Ada"}`,
		"users/u1/habits/h1":            `{"habitName":"Read"}`,
		"users/u1/habits/h2":            `{"habitName":"Run"}`,
		"users/u2":                      `{"name":"Grace"}`,
	}
	for p, body := range docs {
		require.NoError(t, src.Set(ctx, p, docstore.Document(body)))
	}

	stats, err := Copy(ctx, dst, src)
	require.NoError(t, err)
	assert.Equal(t, CopyStats{Credentials: 1, Users: 2, Habits: 2}, stats)
	assert.Equal(t, len(docs), dst.Len())

	got, err := dst.Get(ctx, "users/u1/habits/h2")
	require.NoError(t, err)
	assert.JSONEq(t, `{"habitName":"Run"}`, string(got))
}

func TestCopyEmpty(t *testing.T) {
	stats, err := Copy(context.Background(), NewMemory(), NewMemory())
	require.NoError(t, err)
	assert.Zero(t, stats)
}
