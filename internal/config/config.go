// Package config resolves mxinstall's directories and loads its YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	// configFileName is the name of the configuration file inside the config home.
	configFileName = "config.yaml"

	// configDirName is the directory created under os.UserConfigDir.
	configDirName = "mxinstall"

	outputTypeFile = "file"

	configFilePerm = 0o600
)

// Config is the full mxinstall configuration.
type Config struct {
	Game    GameConfig    `yaml:"game"`
	Logging LoggingConfig `yaml:"logging"`
	Setup   SetupConfig   `yaml:"setup"`

	path string
}

// GameConfig locates the Mixolumia installation mods are written into.
type GameConfig struct {
	// Dir overrides the platform default game data directory.
	Dir string `yaml:"dir,omitempty"`
}

// LoggingConfig controls log level, format and destination.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file,omitempty"`
}

// SetupConfig controls first-time setup.
type SetupConfig struct {
	// RegisterFileTypes associates .mxmod, .mxmusic and .mxpalette with mxinstall.
	RegisterFileTypes bool `yaml:"register_file_types"`
}

var (
	configDirOverride   string       //nolint:gochecknoglobals // Set once from --config-dir
	configDirOverrideMu sync.RWMutex //nolint:gochecknoglobals // Protects configDirOverride
)

// SetConfigDirOverride makes ResolveConfigDir return dir. An empty dir clears the override.
func SetConfigDirOverride(dir string) {
	configDirOverrideMu.Lock()
	defer configDirOverrideMu.Unlock()
	configDirOverride = dir
}

func getConfigDirOverride() string {
	configDirOverrideMu.RLock()
	defer configDirOverrideMu.RUnlock()
	return configDirOverride
}

// ResolveConfigDir returns the config home. Precedence:
//  1. --config-dir (SetConfigDirOverride)
//  2. $MXINSTALL_HOME
//  3. os.UserConfigDir()/mxinstall
//
// If the user config dir cannot be determined, "./.mxinstall" is used.
func ResolveConfigDir() string {
	dir, err := GetConfigDir()
	if err != nil {
		return ".mxinstall"
	}
	return dir
}

// defaults returns a Config populated with default values for the given config home.
func defaults(home string) *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			File:   filepath.Join(home, "logs", "mxinstall.log"),
		},
		Setup: SetupConfig{
			RegisterFileTypes: true,
		},
		path: filepath.Join(home, configFileName),
	}
}

// New returns the configuration from the config home, falling back to defaults
// when the file is missing or unreadable.
func New() *Config {
	cfg, err := Load(ResolveConfigDir())
	if err != nil {
		log := GetLogger()
		log.Warn().
			Str("component", "config").
			Err(err).
			Msg("failed to load config, using defaults")
		return defaults(ResolveConfigDir())
	}
	return cfg
}

// Load reads config.yaml from home on top of the defaults. A missing file is not an error.
func Load(home string) (*Config, error) {
	cfg := defaults(home)

	if _, err := os.Stat(cfg.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("checking config file %s: %w", cfg.path, err)
	}

	if err := ShallowMergeYAML(cfg, cfg.path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Path returns the file the configuration is read from and saved to.
func (c *Config) Path() string {
	return c.path
}

// Save writes the configuration to its path, creating the config home if needed.
func (c *Config) Save() error {
	if c.path == "" {
		c.path = filepath.Join(ResolveConfigDir(), configFileName)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if writeErr := os.WriteFile(c.path, data, configFilePerm); writeErr != nil {
		return fmt.Errorf("writing config file %s: %w", c.path, writeErr)
	}
	return nil
}

// ResolveGameDir returns the Mixolumia data directory. Precedence:
//  1. override (--game-dir flag)
//  2. $MXINSTALL_GAME_DIR
//  3. game.dir from config.yaml
//  4. the platform default (see DefaultGameDir)
func (c *Config) ResolveGameDir(override string) (string, error) {
	if override != "" {
		return override, nil
	}
	if env := os.Getenv("MXINSTALL_GAME_DIR"); env != "" {
		return env, nil
	}
	if c != nil && c.Game.Dir != "" {
		return c.Game.Dir, nil
	}
	return DefaultGameDir()
}

// DefaultGameDir returns the directory the game stores user data in:
//   - macOS: ~/Library/Application Support/com.davemakes.mixolumia
//   - Windows: %LOCALAPPDATA%\Mixolumia
//   - others: $XDG_DATA_HOME/mixolumia, or ~/.local/share/mixolumia
func DefaultGameDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		local := os.Getenv("LOCALAPPDATA")
		if local == "" {
			return "", errors.New("LOCALAPPDATA is not set")
		}
		return filepath.Join(local, "Mixolumia"), nil
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, "Library", "Application Support", "com.davemakes.mixolumia"), nil
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, "mixolumia"), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, ".local", "share", "mixolumia"), nil
	}
}
