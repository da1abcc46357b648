package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_NotInstalled(t *testing.T) {
	env := newTestEnv(t)

	out, err := execute(t, "status")
	require.NoError(t, err)

	assert.Contains(t, out, "Installed:       no")
	assert.Contains(t, out, "Version:         v0.2.0")
	assert.Contains(t, out, env.home)
	assert.Contains(t, out, env.gameDir)
}

func TestStatus_Installed(t *testing.T) {
	newTestEnv(t)

	_, err := execute(t, "setup", "--skip-register")
	require.NoError(t, err)

	out, err := execute(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Installed:       yes")
	assert.Contains(t, out, "File types:      not registered")
	assert.Contains(t, out, "Palettes:        0")
}

func TestStatus_OtherVersion(t *testing.T) {
	env := newTestEnv(t)

	state := "version: 0.1.0\ninstalled_at: 2025-01-01T00:00:00Z\ngame_dir: /tmp/game\n"
	require.NoError(t, os.WriteFile(filepath.Join(env.home, "state.yaml"), []byte(state), 0o600))

	out, err := execute(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "set up by v0.1.0")
}

func TestStatus_NewerVersion(t *testing.T) {
	env := newTestEnv(t)

	state := "version: 9.0.0\ninstalled_at: 2025-01-01T00:00:00Z\n"
	require.NoError(t, os.WriteFile(filepath.Join(env.home, "state.yaml"), []byte(state), 0o600))

	out, err := execute(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "set up by newer v9.0.0")
	assert.Contains(t, out, filepath.Join(env.home, "config.yaml"))
}

func TestIsNewer(t *testing.T) {
	assert.True(t, isNewer("1.0.0", "0.2.0"))
	assert.False(t, isNewer("0.1.0", "0.2.0"))
	assert.False(t, isNewer("0.2.0", "0.2.0"))
	assert.False(t, isNewer("garbage", "0.2.0"))
}
