// Package clitest builds command contexts over an in-memory store and a mock
// keyring for command tests.
package clitest

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	gokeyring "github.com/zalando/go-keyring"
	"golang.org/x/crypto/bcrypt"

	"github.com/julianstephens/habitual/internal/auth"
	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/config"
	"github.com/julianstephens/habitual/internal/keyring"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/repository"
	"github.com/julianstephens/habitual/internal/session"
	"github.com/julianstephens/habitual/internal/state"
	"github.com/julianstephens/habitual/internal/storage"
)

// Now is the fixed time commands see.
var Now = time.Date(2024, time.March, 10, 9, 0, 0, 0, time.Local)

// Password is the password of the user created by SignIn.
const Password = "secret1"

// New returns a context over an empty memory store with a signing key in
// the mock keyring, and the buffer its output goes to.
func New(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	gokeyring.MockInit()

	store := storage.NewMemory()
	out := &bytes.Buffer{}
	ctx := &cli.Context{
		Ctx:      context.Background(),
		Config:   config.Default(),
		Store:    store,
		Sessions: session.NewManager(keyring.OS{}),
		Clock:    state.ClockFunc(func() time.Time { return Now }),
		Out:      out,
	}
	ctx.SetCredentials(auth.NewService(store, auth.WithCost(bcrypt.MinCost)))

	_, err := ctx.Sessions.EnsureSigningKey()
	require.NoError(t, err)
	return ctx, out
}

// SignIn registers Ada and starts her session.
func SignIn(t *testing.T, ctx *cli.Context) session.Session {
	t.Helper()
	user := models.User{Name: "Ada", Username: "ada", Email: "ada@example.com"}
	id, err := repository.NewUsers(ctx.Store, ctx.Credentials()).Register(ctx.Ctx, user, Password)
	require.NoError(t, err)
	s, err := ctx.Sessions.Start(id, user.Email)
	require.NoError(t, err)
	return s
}

// SeedHabit writes h for the session user and returns it with its id.
func SeedHabit(t *testing.T, ctx *cli.Context, s session.Session, h models.Habit) models.Habit {
	t.Helper()
	saved, err := repository.NewHabits(ctx.Store).Save(ctx.Ctx, s.UserID, h)
	require.NoError(t, err)
	return saved
}

// UseStore points ctx and its credential service at store.
func UseStore(ctx *cli.Context, store storage.Provider) {
	ctx.Store = store
	ctx.SetCredentials(auth.NewService(store, auth.WithCost(bcrypt.MinCost)))
}
