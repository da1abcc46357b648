package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/maddymakesgames/mxinstall/internal/logging"
	"github.com/maddymakesgames/mxinstall/internal/migration"
	"github.com/maddymakesgames/mxinstall/pkg/version"
)

const (
	stateFileName       = "state.yaml"
	stateFilePerm       = 0o600
	legacyBackupDirName = "legacy"
)

// ErrNotInstalled is returned by ReadState when setup has never run.
var ErrNotInstalled = errors.New("mxinstall has not been set up")

// State is the record first-time setup leaves behind.
type State struct {
	Version             string        `yaml:"version"`
	InstalledAt         time.Time     `yaml:"installed_at"`
	GameDir             string        `yaml:"game_dir"`
	FileTypesRegistered bool          `yaml:"file_types_registered"`
	Legacy              *LegacyRecord `yaml:"legacy,omitempty"`
}

// LegacyRecord describes a legacy installer directory setup moved aside.
type LegacyRecord struct {
	Version string `yaml:"version,omitempty"`
	Origin  string `yaml:"origin"`
	Backup  string `yaml:"backup"`
}

// StatePath returns the location of state.yaml.
func (i *Installer) StatePath() string {
	return filepath.Join(i.configDir, stateFileName)
}

// ReadState loads state.yaml. It returns ErrNotInstalled when the file does not exist.
func (i *Installer) ReadState() (*State, error) {
	data, err := os.ReadFile(i.StatePath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotInstalled
		}
		return nil, fmt.Errorf("reading install state: %w", err)
	}

	var st State
	if unmarshalErr := yaml.Unmarshal(data, &st); unmarshalErr != nil {
		return nil, fmt.Errorf("parsing install state %s: %w", i.StatePath(), unmarshalErr)
	}
	return &st, nil
}

func (i *Installer) writeState(st *State) error {
	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshaling install state: %w", err)
	}
	if mkErr := os.MkdirAll(i.configDir, dirPermBase); mkErr != nil {
		return fmt.Errorf("creating config directory: %w", mkErr)
	}
	if writeErr := os.WriteFile(i.StatePath(), data, stateFilePerm); writeErr != nil {
		return fmt.Errorf("writing install state: %w", writeErr)
	}
	return nil
}

// CheckInstalled reports whether setup has run for this installer version.
// A state file written by a different version counts as not installed so
// setup runs again after an upgrade.
func (i *Installer) CheckInstalled(ctx context.Context) (bool, error) {
	st, err := i.ReadState()
	if errors.Is(err, ErrNotInstalled) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	current := version.Equal(st.Version, i.version)
	if !current {
		logging.FromContext(ctx).Info().
			Ctx(ctx).
			Str("component", "installer").
			Str("operation", "check_installed").
			Str("recorded_version", st.Version).
			Str("current_version", i.version).
			Msg("install state is from another version")
	}
	return current, nil
}

// Uninstall removes the file type registration and the install state, and
// moves a retired legacy installer back to where it was. Installed mods are
// left in the game directory. Uninstalling when not installed is a no-op.
func (i *Installer) Uninstall(ctx context.Context) error {
	log := logging.FromContext(ctx)

	st, err := i.ReadState()
	if errors.Is(err, ErrNotInstalled) {
		return nil
	}
	if err != nil {
		return err
	}

	if st.FileTypesRegistered {
		if unregErr := unregisterFileTypes(ctx); unregErr != nil {
			return fmt.Errorf("removing file type registration: %w", unregErr)
		}
	}

	if st.Legacy != nil {
		if restoreErr := migration.Restore(st.Legacy.Backup, st.Legacy.Origin); restoreErr != nil {
			return fmt.Errorf("restoring legacy installer to %s: %w", st.Legacy.Origin, restoreErr)
		}
		log.Info().
			Ctx(ctx).
			Str("component", "installer").
			Str("operation", "uninstall").
			Str("origin", st.Legacy.Origin).
			Msg("restored legacy installer")
	}

	if removeErr := os.Remove(i.StatePath()); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
		return fmt.Errorf("removing install state: %w", removeErr)
	}

	log.Info().
		Ctx(ctx).
		Str("component", "installer").
		Str("operation", "uninstall").
		Str("config_dir", i.configDir).
		Msg("mxinstall uninstalled")
	return nil
}
