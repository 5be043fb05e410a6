// Package session ties a signed-in user to the process. A Session value is
// passed explicitly to whatever needs the current user.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/julianstephens/habitual/internal/auth"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/keyring"
)

var (
	// ErrNoSession means nobody is signed in, or the stored token is no longer valid.
	ErrNoSession = errors.New("not signed in, run 'habitual login' first")
	// ErrNoSigningKey means init has not created a signing key.
	ErrNoSigningKey = errors.New("no signing key, run 'habitual init' first")
)

type Session struct {
	UserID   string
	Email    string
	IssuedAt time.Time
}

// Manager persists the session token in the keyring.
type Manager struct {
	secrets keyring.Secrets
	ttl     time.Duration
	now     func() time.Time
	getenv  func(string) string
}

type Option func(*Manager)

func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) { m.ttl = ttl }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(secrets keyring.Secrets, opts ...Option) *Manager {
	m := &Manager{
		secrets: secrets,
		ttl:     constants.DefaultSessionTTL,
		now:     time.Now,
		getenv:  os.Getenv,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// EnsureSigningKey creates a signing key unless one exists or the
// environment provides one. It reports whether a key was created.
func (m *Manager) EnsureSigningKey() (bool, error) {
	if m.getenv(constants.EnvSigningKey) != "" {
		return false, nil
	}
	_, err := keyring.GetSigningKey(m.secrets)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, keyring.ErrNotFound) {
		return false, err
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return false, fmt.Errorf("failed to generate signing key: %w", err)
	}
	if err := keyring.SetSigningKey(m.secrets, hex.EncodeToString(buf)); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Manager) signingKey() ([]byte, error) {
	if key := m.getenv(constants.EnvSigningKey); key != "" {
		return []byte(key), nil
	}
	key, err := keyring.GetSigningKey(m.secrets)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, ErrNoSigningKey
	}
	if err != nil {
		return nil, err
	}
	return []byte(key), nil
}

// Start signs a token for the user and stores it.
func (m *Manager) Start(userID, email string) (Session, error) {
	key, err := m.signingKey()
	if err != nil {
		return Session{}, err
	}
	now := m.now()
	token, err := auth.IssueToken(userID, email, key, m.ttl, now)
	if err != nil {
		return Session{}, fmt.Errorf("failed to sign session: %w", err)
	}
	if err := keyring.SetSessionToken(m.secrets, token); err != nil {
		return Session{}, err
	}
	return Session{UserID: userID, Email: email, IssuedAt: now.Truncate(time.Second)}, nil
}

// Resume returns the stored session or ErrNoSession.
func (m *Manager) Resume() (Session, error) {
	token, err := keyring.GetSessionToken(m.secrets)
	if errors.Is(err, keyring.ErrNotFound) {
		return Session{}, ErrNoSession
	}
	if err != nil {
		return Session{}, err
	}
	key, err := m.signingKey()
	if err != nil {
		return Session{}, err
	}
	claims, err := auth.ParseToken(token, key)
	if err != nil {
		return Session{}, fmt.Errorf("%w (%v)", ErrNoSession, err)
	}
	s := Session{UserID: claims.Subject, Email: claims.Email}
	if claims.IssuedAt != nil {
		s.IssuedAt = claims.IssuedAt.Time
	}
	return s, nil
}

// End forgets the stored token.
func (m *Manager) End() error {
	return keyring.DeleteSessionToken(m.secrets)
}

// CheckSigningKey reports whether a signing key is available.
func (m *Manager) CheckSigningKey() error {
	_, err := m.signingKey()
	return err
}
