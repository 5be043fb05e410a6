package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/julianstephens/habitual/internal/docstore"
)

func newService(t *testing.T) (*Service, *docstore.Memory) {
	t.Helper()
	store := docstore.NewMemory()
	return NewService(store, WithCost(bcrypt.MinCost)), store
}

func TestCreateAccountAndSignIn(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)

	id, err := svc.CreateAccount(ctx, "  Ada@Example.com ", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, store.Len())

	got, err := svc.SignIn(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestCreateAccountStoresHashOnly(t *testing.T) {
	ctx := context.Background()
	svc, store := newService(t)
	_, err := svc.CreateAccount(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)

	doc, err := store.Get(ctx, "credentials/ada@example.com")
	require.NoError(t, err)
	assert.NotContains(t, string(doc), "secret1")
	assert.Contains(t, string(doc), `"passwordHash"`)
}

func TestCreateAccountErrors(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	_, err := svc.CreateAccount(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"duplicate", "ADA@example.com", "another1", ErrAccountExists},
		{"short password", "bob@example.com", "12345", ErrWeakPassword},
		{"blank email", "   ", "secret1", ErrInvalidEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateAccount(ctx, tt.email, tt.password)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrAuth)
		})
	}
}

func TestSignInRejects(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	_, err := svc.CreateAccount(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)

	_, err = svc.SignIn(ctx, "ada@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.SignIn(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestDeleteAccount(t *testing.T) {
	ctx := context.Background()
	svc := NewService(docstore.NewMemory(), WithCost(bcrypt.MinCost))
	_, err := svc.CreateAccount(ctx, "ada@example.com", "secret1")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAccount(ctx, " ADA@example.com"))
	_, err = svc.SignIn(ctx, "ada@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	assert.NoError(t, svc.DeleteAccount(ctx, "ada@example.com"), "deleting twice is fine")
	_, err = svc.CreateAccount(ctx, "ada@example.com", "secret2")
	assert.NoError(t, err)
}

type failingStore struct {
	*docstore.Memory
	err error
}

func (f failingStore) Get(ctx context.Context, p docstore.Path) (docstore.Document, error) {
	return nil, f.err
}

func TestStoreFailureIsNotAuthError(t *testing.T) {
	boom := errors.New("store offline")
	svc := NewService(failingStore{Memory: docstore.NewMemory(), err: boom}, WithCost(bcrypt.MinCost))

	_, err := svc.CreateAccount(context.Background(), "ada@example.com", "secret1")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrAuth)

	_, err = svc.SignIn(context.Background(), "ada@example.com", "secret1")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrAuth)
}
