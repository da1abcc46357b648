package installer

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/maddymakesgames/mxinstall/internal/config"
)

const testVersion = "0.2.0"

// newTestInstaller returns an Installer rooted in temporary config and game
// directories, with file type registration disabled. The home directory is
// a fresh temp dir so setup never finds a real legacy installer.
func newTestInstaller(t *testing.T, mutate ...func(*Options)) *Installer {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	configDir := filepath.Join(t.TempDir(), "config")
	cfg, err := config.Load(configDir)
	require.NoError(t, err)

	opts := Options{
		Config:       cfg,
		ConfigDir:    configDir,
		GameDir:      filepath.Join(t.TempDir(), "mixolumia"),
		Version:      testVersion,
		SkipRegister: true,
	}
	for _, m := range mutate {
		m(&opts)
	}

	inst, err := New(opts)
	require.NoError(t, err)
	return inst
}

// zipBytes builds an in-memory zip. Names ending in "/" become directory entries.
func zipBytes(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		if content != "" {
			_, err = w.Write([]byte(content))
			require.NoError(t, err)
		}
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func paletteJSON(t *testing.T, p Palette) string {
	t.Helper()
	data, err := json.Marshal(p)
	require.NoError(t, err)
	return string(data)
}

func modMetaJSON(t *testing.T, m ModMeta) string {
	t.Helper()
	data, err := json.Marshal(m)
	require.NoError(t, err)
	return string(data)
}
