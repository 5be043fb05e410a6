package constants

import "time"

// SessionState represents the current state of the TUI application
type SessionState int

const (
	AppName           = "habitual"
	Version           = "v0.1.0"
	DefaultConfigDir  = "~/.config/habitual"
	DefaultConfigFile = "~/.config/habitual/config.yaml"
	DefaultStorePath  = "~/.config/habitual/habitual.db"

	// Keyring entries
	KeyringSessionUser    = "session-token"
	KeyringSigningKeyUser = "signing-key"

	// Environment overrides
	EnvStore      = "HABITUAL_STORE"
	EnvDebug      = "HABITUAL_DEBUG"
	EnvSigningKey = "HABITUAL_SIGNING_KEY"

	// DateFormat is the calendar date format used for completions (yyyy-MM-dd)
	DateFormat = "2006-01-02"

	// Expiry sweep
	DefaultSweepInterval = 24 * time.Hour

	// Session tokens
	DefaultSessionTTL = 30 * 24 * time.Hour

	// Credentials
	MinPasswordLength = 6

	// Document store layout
	UsersCollection       = "users"
	HabitsCollection      = "habits"
	CredentialsCollection = "credentials"
	DocumentsTable        = "documents"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "habitual-"
	BackupFileSuffix = ".db"
)

// Session States
const (
	StateHabits SessionState = iota
	StateProgress
	StateAddHabit
	StateConfirmDelete
)
