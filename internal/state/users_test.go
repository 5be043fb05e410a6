package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitual/internal/auth"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/validation"
)

func newUserContainer(t *testing.T, repo *fakeUserRepo) *Users {
	t.Helper()
	c := NewUsers(context.Background(), repo, WithLogger(quietLogger()))
	t.Cleanup(c.Close)
	return c
}

func TestFetch(t *testing.T) {
	repo := newFakeUserRepo()
	repo.users["u1"] = models.User{ID: "u1", Name: "Ada", Username: "ada", Email: "ada@example.com"}
	c := newUserContainer(t, repo)

	_, ok := c.Current()
	assert.False(t, ok)

	await(t, c.Fetch("u1"))
	u, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, "Ada", u.Name)

	await(t, c.Fetch("missing"))
	_, ok = c.Current()
	assert.False(t, ok, "a miss publishes absent")
}

func TestFetchFailurePublishesAbsent(t *testing.T) {
	repo := newFakeUserRepo()
	repo.users["u1"] = models.User{ID: "u1", Name: "Ada"}
	c := newUserContainer(t, repo)
	await(t, c.Fetch("u1"))

	repo.failNext = errOffline
	await(t, c.Fetch("u1"))
	_, ok := c.Current()
	assert.False(t, ok)
}

func TestRegisterResults(t *testing.T) {
	repo := newFakeUserRepo()
	c := newUserContainer(t, repo)
	assert.Equal(t, RegisterPending, c.RegisterResult())

	await(t, c.Register(models.User{Name: "Ada", Email: "ada@example.com"}, "secret1"))
	assert.Equal(t, RegisterSuccess, c.RegisterResult())
	u, ok := c.Current()
	require.True(t, ok)
	assert.Equal(t, "u1", u.ID)

	c.Reset()
	assert.Equal(t, RegisterPending, c.RegisterResult())

	repo.failNext = auth.ErrAccountExists
	await(t, c.Register(models.User{Name: "Ada", Email: "ada@example.com"}, "secret1"))
	assert.Equal(t, RegisterFailure, c.RegisterResult())
	assert.Equal(t, "failure", c.RegisterResult().String())
}

func TestSubmitMismatchNeverCallsCredentials(t *testing.T) {
	repo := newFakeUserRepo()
	c := newUserContainer(t, repo)

	result, done := c.Submit(validation.Registration{
		Name:     "Ada",
		Username: "ada",
		Email:    "ada@example.com",
		Password: "secret1",
		Confirm:  "secret2",
	})
	await(t, done)
	assert.True(t, result.Has(validation.ProblemPasswordMismatch))
	assert.Zero(t, repo.count("register"))
	assert.Equal(t, RegisterPending, c.RegisterResult())
}

func TestSubmitValid(t *testing.T) {
	repo := newFakeUserRepo()
	c := newUserContainer(t, repo)
	result, done := c.Submit(validation.Registration{
		Name:     "Ada",
		Username: "ada",
		Email:    "ada@example.com",
		Password: "secret1",
		Confirm:  "secret1",
	})
	await(t, done)
	assert.True(t, result.Valid())
	assert.Equal(t, 1, repo.count("register"))
	assert.Equal(t, RegisterSuccess, c.RegisterResult())
}

func TestSubscribeRegister(t *testing.T) {
	repo := newFakeUserRepo()
	c := newUserContainer(t, repo)
	results, cancel := c.SubscribeRegister()
	defer cancel()
	assert.Equal(t, RegisterPending, <-results)

	await(t, c.Register(models.User{Name: "Ada", Email: "ada@example.com"}, "secret1"))
	select {
	case r := <-results:
		assert.Equal(t, RegisterSuccess, r)
	case <-time.After(time.Second):
		t.Fatal("no register result published")
	}

	profiles, cancelProfiles := c.SubscribeProfile()
	defer cancelProfiles()
	p := <-profiles
	assert.True(t, p.Present)
}
