// Package config loads settings from defaults, an optional YAML file and the
// environment. Command-line flags are applied on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/habitual/internal/constants"
)

type Config struct {
	Store         string        `yaml:"store"`
	Debug         bool          `yaml:"debug"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	LogDir        string        `yaml:"log_dir"`
}

func Default() Config {
	return Config{
		Store:         constants.DefaultStorePath,
		SweepInterval: constants.DefaultSweepInterval,
		SessionTTL:    constants.DefaultSessionTTL,
		LogDir:        constants.DefaultConfigDir,
	}
}

// Load reads path over the defaults and then applies environment overrides.
// A missing file is only an error when required is set.
func Load(path string, required bool, getenv func(string) string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(ExpandPath(path))
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !required:
		default:
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if v := getenv(constants.EnvStore); v != "" {
		cfg.Store = v
	}
	if v := getenv(constants.EnvDebug); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s value %q: %w", constants.EnvDebug, v, err)
		}
		cfg.Debug = debug
	}

	cfg.Store = ExpandPath(cfg.Store)
	cfg.LogDir = ExpandPath(cfg.LogDir)
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Store) == "" {
		return errors.New("store must not be empty")
	}
	if c.SweepInterval < 0 {
		return fmt.Errorf("sweep_interval must not be negative (got %s)", c.SweepInterval)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session_ttl must be positive (got %s)", c.SessionTTL)
	}
	return nil
}

// ExpandPath replaces a leading ~ with the home directory. DSNs with a
// scheme are returned unchanged.
func ExpandPath(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
