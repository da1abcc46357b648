package installer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/maddymakesgames/mxinstall/internal/config"
	"github.com/maddymakesgames/mxinstall/internal/logging"
	"github.com/maddymakesgames/mxinstall/internal/migration"
)

// StepStatus represents the outcome of a single setup step.
type StepStatus int

const (
	// StepSuccess indicates the step completed successfully.
	StepSuccess StepStatus = iota
	// StepWarning indicates the step completed with a non-fatal issue.
	StepWarning
	// StepSkipped indicates the step was intentionally skipped.
	StepSkipped
	// StepError indicates the step failed.
	StepError
)

// StepResult describes the outcome of executing a single setup step.
type StepResult struct {
	Name     string
	Status   StepStatus
	Message  string
	Critical bool
	Err      error
}

// SetupResult is the aggregate outcome of all setup steps.
type SetupResult struct {
	Steps       []StepResult
	HasErrors   bool
	HasWarnings bool
}

// ErrSetupFailed is returned by RunFirstTimeSetup when a critical step failed.
var ErrSetupFailed = errors.New("setup failed: one or more critical steps failed")

// dirPermBase is the permission mode for the config home and its logs directory.
const dirPermBase = 0o700

// RunFirstTimeSetup runs Setup and returns ErrSetupFailed, joined with the
// failing steps' errors, when a critical step failed.
func (i *Installer) RunFirstTimeSetup(ctx context.Context) error {
	result := i.Setup(ctx)
	if !result.HasErrors {
		return nil
	}

	errs := []error{ErrSetupFailed}
	for _, s := range result.Steps {
		if s.Status == StepError && s.Critical && s.Err != nil {
			errs = append(errs, s.Err)
		}
	}
	return errors.Join(errs...)
}

// Setup prepares the config home and the game directory, registers the mod
// file types and records the install state. Steps run in order and a failing
// step does not stop later ones, except that the legacy installer step and
// the install state only run when every critical step succeeded.
func (i *Installer) Setup(ctx context.Context) *SetupResult {
	log := logging.FromContext(ctx)
	result := &SetupResult{}

	add := func(steps ...StepResult) {
		for _, s := range steps {
			i.report(s)
			result.Steps = append(result.Steps, s)
			if s.Status == StepError && s.Critical {
				result.HasErrors = true
			}
			if s.Status == StepWarning {
				result.HasWarnings = true
			}
		}
	}

	add(i.stepCreateDirectories()...)
	add(i.stepInitConfig())
	add(i.stepPrepareGameDir()...)
	registered := i.stepRegisterFileTypes(ctx)
	add(registered)

	if result.HasErrors {
		add(StepResult{
			Name:     "Install state",
			Status:   StepSkipped,
			Message:  "Install state not recorded because setup had errors",
			Critical: true,
		})
		log.Error().
			Ctx(ctx).
			Str("component", "setup").
			Msg("setup completed with critical errors")
		return result
	}

	legacyStep, retired := i.stepRetireLegacy(ctx)
	add(legacyStep)

	stateStep := i.stepWriteState(registered.Status == StepSuccess, retired)
	add(stateStep)
	if stateStep.Status == StepError && retired != nil {
		// Without state.yaml uninstall could not find the backup.
		if err := migration.Restore(retired.Backup, retired.Origin); err != nil {
			log.Warn().
				Ctx(ctx).
				Str("component", "setup").
				Err(err).
				Msg("could not move legacy installer back")
		}
	}

	log.Info().
		Ctx(ctx).
		Str("component", "setup").
		Bool("warnings", result.HasWarnings).
		Bool("errors", result.HasErrors).
		Msg("setup finished")
	return result
}

// stepCreateDirectories creates the config home and its logs directory.
func (i *Installer) stepCreateDirectories() []StepResult {
	dirs := []string{i.configDir, filepath.Join(i.configDir, "logs")}

	var results []StepResult
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if err == nil && info.IsDir() {
			results = append(results, StepResult{
				Name:     "Directory creation",
				Status:   StepSuccess,
				Message:  fmt.Sprintf("Directory exists: %s", dir),
				Critical: true,
			})
			continue
		}

		if mkErr := os.MkdirAll(dir, dirPermBase); mkErr != nil {
			results = append(results, StepResult{
				Name:   "Directory creation",
				Status: StepError,
				Message: fmt.Sprintf(
					"Failed to create %s: %v\n  Try: export MXINSTALL_HOME=/path/to/writable/directory",
					dir,
					mkErr,
				),
				Critical: true,
				Err:      mkErr,
			})
			continue
		}

		results = append(results, StepResult{
			Name:     "Directory creation",
			Status:   StepSuccess,
			Message:  fmt.Sprintf("Created %s", dir),
			Critical: true,
		})
	}
	return results
}

// stepInitConfig writes the default config.yaml if none exists and records
// the game directory setup prepared, so later launches install into it.
func (i *Installer) stepInitConfig() StepResult {
	const name = "Config initialization"
	configPath := filepath.Join(i.configDir, "config.yaml")

	_, statErr := os.Stat(configPath)
	exists := statErr == nil

	cfg, err := config.Load(i.configDir)
	if err != nil {
		if exists {
			return StepResult{
				Name:    name,
				Status:  StepWarning,
				Message: fmt.Sprintf("Could not read %s, game directory not recorded: %v", configPath, err),
				Err:     err,
			}
		}
		return StepResult{
			Name:     name,
			Status:   StepError,
			Message:  fmt.Sprintf("Failed to initialize config: %v", err),
			Critical: true,
			Err:      err,
		}
	}

	if exists && cfg.Game.Dir == i.gameDir {
		return StepResult{
			Name:     name,
			Status:   StepSuccess,
			Message:  fmt.Sprintf("Config already exists (%s)", configPath),
			Critical: true,
		}
	}

	if !exists {
		cfg.Setup = i.cfg.Setup
	}
	cfg.Game.Dir = i.gameDir
	if err = cfg.Save(); err != nil {
		return StepResult{
			Name:     name,
			Status:   StepError,
			Message:  fmt.Sprintf("Failed to write %s: %v", configPath, err),
			Critical: true,
			Err:      err,
		}
	}

	msg := fmt.Sprintf("Initialized config (%s)", configPath)
	if exists {
		msg = fmt.Sprintf("Recorded game directory %s in %s", i.gameDir, configPath)
	}
	return StepResult{Name: name, Status: StepSuccess, Message: msg, Critical: true}
}

// stepPrepareGameDir ensures data/music and user_palettes.ini exist in the game directory.
func (i *Installer) stepPrepareGameDir() []StepResult {
	var results []StepResult

	musicDir := i.MusicDir()
	if err := os.MkdirAll(musicDir, dirPerm); err != nil {
		results = append(results, StepResult{
			Name:   "Game directory",
			Status: StepError,
			Message: fmt.Sprintf(
				"Failed to prepare game directory %s: %v\n  Try: mxinstall setup --game-dir /path/to/mixolumia/data",
				i.gameDir,
				err,
			),
			Critical: true,
			Err:      err,
		})
		return results
	}
	results = append(results, StepResult{
		Name:     "Game directory",
		Status:   StepSuccess,
		Message:  fmt.Sprintf("Game directory ready (%s)", i.gameDir),
		Critical: true,
	})

	created, err := i.ensurePalettesFile()
	switch {
	case err != nil:
		results = append(results, StepResult{
			Name:    "Palette store",
			Status:  StepWarning,
			Message: fmt.Sprintf("Could not create %s: %v", palettesFileName, err),
			Err:     err,
		})
	case created:
		results = append(results, StepResult{
			Name:    "Palette store",
			Status:  StepSuccess,
			Message: fmt.Sprintf("Created %s", i.PalettesPath()),
		})
	default:
		results = append(results, StepResult{
			Name:    "Palette store",
			Status:  StepSuccess,
			Message: fmt.Sprintf("Palette store exists (%s)", i.PalettesPath()),
		})
	}
	return results
}

// stepRegisterFileTypes associates the mod file types with this executable.
// Registration problems are warnings; mods can still be installed from the command line.
func (i *Installer) stepRegisterFileTypes(ctx context.Context) StepResult {
	const name = "File type registration"

	if i.skipRegister {
		return StepResult{Name: name, Status: StepSkipped, Message: "Skipped file type registration"}
	}

	if !i.confirm("Register .mxmod, .mxmusic and .mxpalette files to open with mxinstall?", true) {
		return StepResult{Name: name, Status: StepSkipped, Message: "File type registration declined"}
	}

	exe := i.executable
	if exe == "" {
		resolved, err := os.Executable()
		if err == nil {
			resolved, err = filepath.EvalSymlinks(resolved)
		}
		if err != nil {
			return StepResult{
				Name:    name,
				Status:  StepWarning,
				Message: fmt.Sprintf("Could not resolve mxinstall executable: %v", err),
				Err:     err,
			}
		}
		exe = resolved
	}

	err := registerFileTypes(ctx, exe)
	switch {
	case errors.Is(err, errRegistrationUnsupported):
		return StepResult{
			Name:    name,
			Status:  StepSkipped,
			Message: "File associations are declared by the application bundle on this platform",
		}
	case err != nil:
		return StepResult{
			Name:    name,
			Status:  StepWarning,
			Message: fmt.Sprintf("Failed to register file types: %v", err),
			Err:     err,
		}
	default:
		return StepResult{
			Name:    name,
			Status:  StepSuccess,
			Message: fmt.Sprintf("Registered %v with %s", SupportedExtensions(), exe),
		}
	}
}

// LegacyBackupDir is where setup moves the legacy installer directory.
func (i *Installer) LegacyBackupDir() string {
	return filepath.Join(i.configDir, legacyBackupDirName)
}

// stepRetireLegacy offers to move the legacy installer directory out of the
// user's home. The question defaults to no, so unattended setups leave it.
func (i *Installer) stepRetireLegacy(ctx context.Context) (StepResult, *LegacyRecord) {
	const name = "Legacy installer"

	legacy, found := migration.Detect()
	if !found {
		return StepResult{Name: name, Status: StepSkipped, Message: "No legacy Mixolumia Mod Installer found"}, nil
	}

	backup := i.LegacyBackupDir()
	question := fmt.Sprintf("Move the legacy Mixolumia Mod Installer (%s) at %s to %s?",
		legacy.DisplayVersion(), legacy.Path, backup)
	if !i.confirm(question, false) {
		return StepResult{
			Name:    name,
			Status:  StepSkipped,
			Message: fmt.Sprintf("Left legacy installer in place at %s", legacy.Path),
		}, nil
	}

	if err := migration.Retire(legacy, backup); err != nil {
		return StepResult{
			Name:    name,
			Status:  StepWarning,
			Message: fmt.Sprintf("Could not move legacy installer from %s: %v", legacy.Path, err),
			Err:     err,
		}, nil
	}

	logging.FromContext(ctx).Info().
		Ctx(ctx).
		Str("component", "setup").
		Str("legacy_version", legacy.Version).
		Str("origin", legacy.Path).
		Str("backup", backup).
		Msg("retired legacy installer")

	record := &LegacyRecord{Version: legacy.Version, Origin: legacy.Path, Backup: backup}
	return StepResult{
		Name:    name,
		Status:  StepSuccess,
		Message: fmt.Sprintf("Moved legacy installer (%s) to %s", legacy.DisplayVersion(), backup),
	}, record
}

// stepWriteState records that setup ran for this version. A legacy record
// from an earlier setup is carried over when nothing was retired this time.
func (i *Installer) stepWriteState(registered bool, retired *LegacyRecord) StepResult {
	st := &State{
		Version:             i.version,
		InstalledAt:         time.Now().UTC(),
		GameDir:             i.gameDir,
		FileTypesRegistered: registered,
		Legacy:              retired,
	}
	if st.Legacy == nil {
		if prev, err := i.ReadState(); err == nil {
			st.Legacy = prev.Legacy
		}
	}
	if err := i.writeState(st); err != nil {
		return StepResult{
			Name:     "Install state",
			Status:   StepError,
			Message:  fmt.Sprintf("Failed to record install state: %v", err),
			Critical: true,
			Err:      err,
		}
	}
	return StepResult{
		Name:     "Install state",
		Status:   StepSuccess,
		Message:  fmt.Sprintf("Recorded mxinstall v%s as installed", i.version),
		Critical: true,
	}
}
