// Package auth is the credential service: it creates email/password accounts
// and signs users in. Credentials are kept in the document store next to the
// user profiles.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/docstore"
)

var (
	// ErrAuth is the root of every credential rejection.
	ErrAuth               = errors.New("authentication failed")
	ErrAccountExists      = fmt.Errorf("%w: an account with this email already exists", ErrAuth)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", ErrAuth)
	ErrWeakPassword       = fmt.Errorf("%w: password must be at least %d characters", ErrAuth, constants.MinPasswordLength)
	ErrInvalidEmail       = fmt.Errorf("%w: email is required", ErrAuth)
)

type credential struct {
	Email        string    `json:"email"`
	UserID       string    `json:"userId"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Service implements account creation and sign-in over a docstore.Store.
type Service struct {
	store docstore.Store
	cost  int
	now   func() time.Time

	// serializes the exists check and the write in CreateAccount
	mu sync.Mutex
}

type Option func(*Service)

// WithCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

func NewService(store docstore.Store, opts ...Option) *Service {
	s := &Service{store: store, cost: bcrypt.DefaultCost, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func credentialPath(email string) (docstore.Path, error) {
	return docstore.Join(constants.CredentialsCollection, url.PathEscape(email))
}

// CreateAccount registers email with password and returns the new user id.
func (s *Service) CreateAccount(ctx context.Context, email, password string) (string, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return "", ErrInvalidEmail
	}
	if len(password) < constants.MinPasswordLength {
		return "", ErrWeakPassword
	}
	path, err := credentialPath(email)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.store.Get(ctx, path)
	if err == nil {
		return "", ErrAccountExists
	}
	if !errors.Is(err, docstore.ErrNotFound) {
		return "", fmt.Errorf("failed to check existing account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	userID, err := s.store.GenerateID(ctx, docstore.Path(constants.UsersCollection))
	if err != nil {
		return "", fmt.Errorf("failed to generate user id: %w", err)
	}

	doc, err := json.Marshal(credential{
		Email:        email,
		UserID:       userID,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		return "", err
	}
	if err := s.store.Set(ctx, path, doc); err != nil {
		return "", fmt.Errorf("failed to save credentials: %w", err)
	}
	return userID, nil
}

// DeleteAccount removes the credential record for email. A missing record is
// not an error.
func (s *Service) DeleteAccount(ctx context.Context, email string) error {
	path, err := credentialPath(NormalizeEmail(email))
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Delete(ctx, path); err != nil {
		return fmt.Errorf("failed to delete credentials: %w", err)
	}
	return nil
}

// SignIn checks the password and returns the account's user id.
func (s *Service) SignIn(ctx context.Context, email, password string) (string, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return "", ErrInvalidCredentials
	}
	path, err := credentialPath(email)
	if err != nil {
		return "", err
	}

	doc, err := s.store.Get(ctx, path)
	if errors.Is(err, docstore.ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", fmt.Errorf("failed to read credentials: %w", err)
	}

	var cred credential
	if err := json.Unmarshal(doc, &cred); err != nil {
		return "", fmt.Errorf("corrupt credential record: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return cred.UserID, nil
}
