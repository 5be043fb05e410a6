package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/docstore"
	"github.com/julianstephens/habitual/internal/models"
)

// Credentials is the credential service used for registration and sign-in.
type Credentials interface {
	CreateAccount(ctx context.Context, email, password string) (string, error)
	SignIn(ctx context.Context, email, password string) (string, error)
	DeleteAccount(ctx context.Context, email string) error
}

// UserRepository is the persistence the user container depends on.
type UserRepository interface {
	Register(ctx context.Context, user models.User, password string) (string, error)
	Get(ctx context.Context, userID string) (models.User, error)
	SignIn(ctx context.Context, email, password string) (string, error)
}

// Users stores profiles at users/{uid}.
type Users struct {
	store docstore.Store
	creds Credentials
}

func NewUsers(store docstore.Store, creds Credentials) *Users {
	return &Users{store: store, creds: creds}
}

// Register creates the account and then writes the profile. It returns the
// new user id. When the profile cannot be written the account is removed again
// so the email stays free to register.
func (r *Users) Register(ctx context.Context, user models.User, password string) (string, error) {
	userID, err := r.creds.CreateAccount(ctx, user.Email, password)
	if err != nil {
		return "", err
	}
	path, err := docstore.Join(constants.UsersCollection, userID)
	if err != nil {
		return "", err
	}
	user.ID = userID
	doc, err := user.Encode()
	if err == nil {
		err = r.store.Set(ctx, path, doc)
	}
	if err != nil {
		if derr := r.creds.DeleteAccount(ctx, user.Email); derr != nil {
			return "", fmt.Errorf("failed to save profile: %w (account cleanup failed: %w)", err, derr)
		}
		return "", fmt.Errorf("failed to save profile: %w", err)
	}
	return userID, nil
}

func (r *Users) Get(ctx context.Context, userID string) (models.User, error) {
	path, err := docstore.Join(constants.UsersCollection, userID)
	if err != nil {
		return models.User{}, err
	}
	doc, err := r.store.Get(ctx, path)
	if errors.Is(err, docstore.ErrNotFound) {
		return models.User{}, fmt.Errorf("user %s: %w: %w", userID, ErrNotFound, err)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to read profile: %w", err)
	}
	return models.DecodeUser(userID, doc)
}

func (r *Users) SignIn(ctx context.Context, email, password string) (string, error) {
	return r.creds.SignIn(ctx, email, password)
}
