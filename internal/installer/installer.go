// Package installer installs Mixolumia mods, palettes and music packs and
// performs mxinstall's first-time setup.
package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/maddymakesgames/mxinstall/internal/config"
	"github.com/maddymakesgames/mxinstall/internal/logging"
	"github.com/maddymakesgames/mxinstall/pkg/version"
)

// File extensions handled by InstallFile.
const (
	ExtMod     = ".mxmod"
	ExtPalette = ".mxpalette"
	ExtMusic   = ".mxmusic"
)

var (
	// ErrUnsupportedFile is returned for files that are not .mxmod, .mxpalette or .mxmusic.
	ErrUnsupportedFile = errors.New("unsupported file type")

	// ErrMissingModMeta is returned when a .mxmod archive has no mod_meta.json.
	ErrMissingModMeta = errors.New("no mod_meta.json found in mxmod")

	// ErrUnsupportedModVersion is returned when a .mxmod declares a newer format than this installer supports.
	ErrUnsupportedModVersion = errors.New("mxmod format version is newer than this installer supports")

	// ErrInvalidPalette is returned when a palette has no name or no colors.
	ErrInvalidPalette = errors.New("invalid palette")
)

// SupportedExtensions lists the file types InstallFile accepts.
func SupportedExtensions() []string {
	return []string{ExtMod, ExtMusic, ExtPalette}
}

// Options configures an Installer.
type Options struct {
	// Config is the loaded configuration. When nil, config.New() is used.
	Config *config.Config

	// ConfigDir is the config home holding config.yaml and state.yaml.
	// Defaults to config.ResolveConfigDir().
	ConfigDir string

	// GameDir is the Mixolumia data directory. Defaults to Config.ResolveGameDir("").
	GameDir string

	// Version is the installer version recorded by setup. Defaults to version.GetVersion().
	Version string

	// Executable is the path registered as the handler for mod files.
	// Defaults to os.Executable().
	Executable string

	// SkipRegister disables file type registration during setup.
	SkipRegister bool

	// Confirm asks the user a yes/no question. defaultYes is the answer when
	// nobody can be asked. A nil Confirm always answers defaultYes.
	Confirm func(question string, defaultYes bool) bool

	// Report receives each setup step as it completes.
	Report func(StepResult)
}

// Installer performs installs against one game directory.
type Installer struct {
	cfg        *config.Config
	configDir  string
	gameDir    string
	version    string
	executable string

	skipRegister bool
	confirm      func(string, bool) bool
	report       func(StepResult)
}

// New creates an Installer, filling unset options from configuration and the environment.
func New(opts Options) (*Installer, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.New()
	}

	configDir := opts.ConfigDir
	if configDir == "" {
		configDir = config.ResolveConfigDir()
	}

	gameDir := opts.GameDir
	if gameDir == "" {
		dir, err := cfg.ResolveGameDir("")
		if err != nil {
			return nil, fmt.Errorf("resolving game directory: %w", err)
		}
		gameDir = dir
	}

	ver := opts.Version
	if ver == "" {
		ver = version.GetVersion()
	}

	confirm := opts.Confirm
	if confirm == nil {
		confirm = func(_ string, defaultYes bool) bool { return defaultYes }
	}

	report := opts.Report
	if report == nil {
		report = func(StepResult) {}
	}

	return &Installer{
		cfg:          cfg,
		configDir:    configDir,
		gameDir:      gameDir,
		version:      ver,
		executable:   opts.Executable,
		skipRegister: opts.SkipRegister || !cfg.Setup.RegisterFileTypes,
		confirm:      confirm,
		report:       report,
	}, nil
}

// GameDir returns the directory mods are installed into.
func (i *Installer) GameDir() string {
	return i.gameDir
}

// ConfigDir returns the config home.
func (i *Installer) ConfigDir() string {
	return i.configDir
}

// Version returns the installer version recorded by setup.
func (i *Installer) Version() string {
	return i.version
}

// InstallFile reads path and installs it according to its extension.
func (i *Installer) InstallFile(ctx context.Context, path string) error {
	log := logging.FromContext(ctx)

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ExtMod, ExtPalette, ExtMusic:
	default:
		return fmt.Errorf("%s: %w (expected one of %s)",
			path, ErrUnsupportedFile, strings.Join(SupportedExtensions(), ", "))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	log.Info().
		Ctx(ctx).
		Str("component", "installer").
		Str("operation", "install_file").
		Str("path", path).
		Str("type", ext).
		Int("size", len(data)).
		Msg("installing file")

	switch ext {
	case ExtMod:
		_, err = i.InstallMod(ctx, data, filepath.Base(path))
	case ExtPalette:
		var p Palette
		p, err = ParsePalette(data)
		if err == nil {
			_, err = i.InstallPalette(ctx, p)
		}
	case ExtMusic:
		_, err = i.InstallMusic(ctx, data, filepath.Base(path))
	}
	return err
}
