package installer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maddymakesgames/mxinstall/internal/config"
)

func TestSetup_CleanSystem(t *testing.T) {
	var reported []StepResult
	inst := newTestInstaller(t, func(o *Options) {
		o.Report = func(s StepResult) { reported = append(reported, s) }
	})

	installed, err := inst.CheckInstalled(testContext(t))
	require.NoError(t, err)
	require.False(t, installed)

	result := inst.Setup(testContext(t))

	assert.False(t, result.HasErrors)
	assert.Equal(t, result.Steps, reported, "every step is reported as it completes")

	assert.DirExists(t, inst.ConfigDir())
	assert.DirExists(t, filepath.Join(inst.ConfigDir(), "logs"))
	assert.FileExists(t, filepath.Join(inst.ConfigDir(), "config.yaml"))
	assert.DirExists(t, inst.MusicDir())
	assert.FileExists(t, inst.PalettesPath())

	st, err := inst.ReadState()
	require.NoError(t, err)
	assert.Equal(t, testVersion, st.Version)
	assert.Equal(t, inst.GameDir(), st.GameDir)
	assert.False(t, st.FileTypesRegistered)
	assert.False(t, st.InstalledAt.IsZero())

	installed, err = inst.CheckInstalled(testContext(t))
	require.NoError(t, err)
	assert.True(t, installed)
}

func TestSetup_Idempotent(t *testing.T) {
	inst := newTestInstaller(t)

	require.NoError(t, inst.RunFirstTimeSetup(testContext(t)))
	configPath := filepath.Join(inst.ConfigDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("logging:\n  level: debug\n"), 0o600))

	result := inst.Setup(testContext(t))
	require.False(t, result.HasErrors)

	cfg, err := config.Load(inst.ConfigDir())
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level, "existing config is preserved")
	assert.Equal(t, inst.GameDir(), cfg.Game.Dir)

	for _, s := range result.Steps {
		if s.Name == "Directory creation" {
			assert.Contains(t, s.Message, "exists")
		}
	}
}

func TestSetup_RecordsGameDirInConfig(t *testing.T) {
	t.Setenv("MXINSTALL_GAME_DIR", "")
	inst := newTestInstaller(t)
	require.NoError(t, inst.RunFirstTimeSetup(testContext(t)))

	cfg, err := config.Load(inst.ConfigDir())
	require.NoError(t, err)
	assert.Equal(t, inst.GameDir(), cfg.Game.Dir)
	resolved, err := cfg.ResolveGameDir("")
	require.NoError(t, err)
	assert.Equal(t, inst.GameDir(), resolved)

	t.Run("rerun with same directory leaves config alone", func(t *testing.T) {
		result := inst.Setup(testContext(t))
		require.False(t, result.HasErrors)
		step := findStep(t, result, "Config initialization")
		assert.Contains(t, step.Message, "already exists")
	})

	t.Run("rerun with another directory records it", func(t *testing.T) {
		otherDir := filepath.Join(t.TempDir(), "elsewhere")
		other := newTestInstaller(t, func(o *Options) {
			o.ConfigDir = inst.ConfigDir()
			o.GameDir = otherDir
		})

		result := other.Setup(testContext(t))
		require.False(t, result.HasErrors)
		step := findStep(t, result, "Config initialization")
		assert.Contains(t, step.Message, "Recorded game directory")

		cfg, err := config.Load(inst.ConfigDir())
		require.NoError(t, err)
		assert.Equal(t, otherDir, cfg.Game.Dir)
	})
}

func TestSetup_UnreadableConfigIsWarning(t *testing.T) {
	inst := newTestInstaller(t)
	require.NoError(t, os.MkdirAll(inst.ConfigDir(), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(inst.ConfigDir(), "config.yaml"), []byte("game: [\n"), 0o600))

	result := inst.Setup(testContext(t))
	assert.False(t, result.HasErrors)
	assert.True(t, result.HasWarnings)

	step := findStep(t, result, "Config initialization")
	assert.Equal(t, StepWarning, step.Status)
}

func findStep(t *testing.T, result *SetupResult, name string) StepResult {
	t.Helper()
	for _, s := range result.Steps {
		if s.Name == name {
			return s
		}
	}
	require.Failf(t, "step not found", "no %q step in setup result", name)
	return StepResult{}
}

func TestSetup_GameDirUnwritable(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	inst := newTestInstaller(t, func(o *Options) {
		o.GameDir = filepath.Join(blocker, "game")
	})

	result := inst.Setup(testContext(t))
	assert.True(t, result.HasErrors)

	last := result.Steps[len(result.Steps)-1]
	assert.Equal(t, "Install state", last.Name)
	assert.Equal(t, StepSkipped, last.Status)

	_, err := inst.ReadState()
	require.ErrorIs(t, err, ErrNotInstalled)

	err = inst.RunFirstTimeSetup(testContext(t))
	require.ErrorIs(t, err, ErrSetupFailed)
}

func TestSetup_RegistrationDeclined(t *testing.T) {
	var asked string
	inst := newTestInstaller(t, func(o *Options) {
		o.SkipRegister = false
		o.Confirm = func(q string, _ bool) bool {
			asked = q
			return false
		}
	})

	result := inst.Setup(testContext(t))
	require.False(t, result.HasErrors)
	assert.Contains(t, asked, ".mxmod")

	var found bool
	for _, s := range result.Steps {
		if s.Name == "File type registration" {
			found = true
			assert.Equal(t, StepSkipped, s.Status)
			assert.Contains(t, s.Message, "declined")
		}
	}
	assert.True(t, found)
}

func TestCheckInstalled(t *testing.T) {
	t.Run("other version", func(t *testing.T) {
		inst := newTestInstaller(t)
		require.NoError(t, inst.writeState(&State{Version: "0.1.0"}))

		installed, err := inst.CheckInstalled(testContext(t))
		require.NoError(t, err)
		assert.False(t, installed, "setup re-runs after an upgrade")
	})

	t.Run("same version with v prefix", func(t *testing.T) {
		inst := newTestInstaller(t)
		require.NoError(t, inst.writeState(&State{Version: "v" + testVersion}))

		installed, err := inst.CheckInstalled(testContext(t))
		require.NoError(t, err)
		assert.True(t, installed)
	})

	t.Run("corrupt state", func(t *testing.T) {
		inst := newTestInstaller(t)
		require.NoError(t, os.MkdirAll(inst.ConfigDir(), 0o700))
		require.NoError(t, os.WriteFile(inst.StatePath(), []byte("version: [nope"), 0o600))

		installed, err := inst.CheckInstalled(testContext(t))
		require.Error(t, err)
		assert.False(t, installed)
	})

	t.Run("no side effects", func(t *testing.T) {
		inst := newTestInstaller(t)

		_, err := inst.CheckInstalled(testContext(t))
		require.NoError(t, err)
		assert.NoDirExists(t, inst.ConfigDir())
		assert.NoDirExists(t, inst.GameDir())
	})
}

func TestUninstall(t *testing.T) {
	inst := newTestInstaller(t)
	require.NoError(t, inst.Uninstall(testContext(t)), "uninstall before setup is a no-op")

	require.NoError(t, inst.RunFirstTimeSetup(testContext(t)))
	require.FileExists(t, inst.StatePath())

	require.NoError(t, inst.Uninstall(testContext(t)))
	assert.NoFileExists(t, inst.StatePath())
	assert.DirExists(t, inst.MusicDir(), "installed content is left in place")

	installed, err := inst.CheckInstalled(testContext(t))
	require.NoError(t, err)
	assert.False(t, installed)
}
