package installer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstallMod_MusicAndPalettes(t *testing.T) {
	inst := newTestInstaller(t)

	chill := zipBytes(t, map[string]string{"a.ogg": "aaa"})
	data := zipBytes(t, map[string]string{
		"mod_meta.json":             modMetaJSON(t, ModMeta{Name: "Cozy", Author: "maddy", Version: 1, Music: true, Palette: true}),
		"music/":                    "",
		"music/chill.mxmusic":       string(chill),
		"palettes/":                 "",
		"palettes/warm.mxpalette":   paletteJSON(t, Palette{Name: "Warm", Author: "maddy", Colors: []string{"ff8800"}}),
		"palettes/cool.mxpalette":   paletteJSON(t, Palette{Name: "Cool", Author: "maddy", Colors: []string{"0088ff"}}),
		"palettes/broken.mxpalette": `{"name":`,
		"palettes/readme.txt":       "ignored",
		"artwork/cover.png":         "ignored",
	})

	res, err := inst.InstallMod(testContext(t), data, "cozy.mxmod")
	require.NoError(t, err)

	assert.Equal(t, "Cozy", res.Meta.Name)
	assert.Equal(t, []string{"chill"}, res.MusicPacks)
	// Palettes are installed in archive-name order.
	assert.Equal(t, []string{"Cool", "Warm"}, res.Palettes)
	require.Len(t, res.Skipped, 1)
	assert.Contains(t, res.Skipped[0], "palettes/broken.mxpalette")

	assert.FileExists(t, filepath.Join(inst.MusicDir(), "chill", "a.ogg"))

	palettes, err := inst.ListPalettes()
	require.NoError(t, err)
	assert.Equal(t, "Cool", palettes[0].Name)
	assert.Equal(t, "Warm", palettes[1].Name)
}

func TestInstallMod_FlagsDisabled(t *testing.T) {
	inst := newTestInstaller(t)
	data := zipBytes(t, map[string]string{
		"mod_meta.json":           modMetaJSON(t, ModMeta{Name: "Quiet", Version: 1}),
		"music/chill.mxmusic":     string(zipBytes(t, map[string]string{"a.ogg": "a"})),
		"palettes/warm.mxpalette": paletteJSON(t, Palette{Name: "Warm", Colors: []string{"ff8800"}}),
	})

	res, err := inst.InstallMod(testContext(t), data, "quiet.mxmod")
	require.NoError(t, err)
	assert.Empty(t, res.MusicPacks)
	assert.Empty(t, res.Palettes)
	assert.NoDirExists(t, inst.MusicDir())
	assert.NoFileExists(t, inst.PalettesPath())
}

func TestInstallMod_DeclaredFoldersMissing(t *testing.T) {
	inst := newTestInstaller(t)
	data := zipBytes(t, map[string]string{
		"mod_meta.json": modMetaJSON(t, ModMeta{Name: "Hollow", Version: 1, Music: true, Palette: true}),
	})

	res, err := inst.InstallMod(testContext(t), data, "hollow.mxmod")
	require.NoError(t, err, "missing folders are skipped, not fatal")
	assert.Len(t, res.Skipped, 2)
}

func TestInstallMod_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    func(t *testing.T) []byte
		wantErr error
		wantMsg string
	}{
		{
			name: "missing mod_meta.json",
			data: func(t *testing.T) []byte {
				return zipBytes(t, map[string]string{"music/a.mxmusic": "x"})
			},
			wantErr: ErrMissingModMeta,
		},
		{
			name: "newer format version",
			data: func(t *testing.T) []byte {
				return zipBytes(t, map[string]string{
					"mod_meta.json": modMetaJSON(t, ModMeta{Name: "Future", Version: ModFormatVersion + 1}),
				})
			},
			wantErr: ErrUnsupportedModVersion,
		},
		{
			name: "invalid mod_meta.json",
			data: func(t *testing.T) []byte {
				return zipBytes(t, map[string]string{"mod_meta.json": "{"})
			},
			wantMsg: "mod_meta.json is invalid",
		},
		{
			name: "not a zip",
			data: func(*testing.T) []byte {
				return []byte("plain text")
			},
			wantMsg: "opening mxmod",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inst := newTestInstaller(t)

			_, err := inst.InstallMod(testContext(t), tt.data(t), "bad.mxmod")
			require.Error(t, err)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			}
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
			assert.NoDirExists(t, inst.MusicDir())
		})
	}
}

func TestInstallMod_BadMusicPackAborts(t *testing.T) {
	inst := newTestInstaller(t)
	data := zipBytes(t, map[string]string{
		"mod_meta.json":     modMetaJSON(t, ModMeta{Name: "Broken", Version: 1, Music: true}),
		"music/bad.mxmusic": "not a zip",
	})

	_, err := inst.InstallMod(testContext(t), data, "broken.mxmod")
	require.Error(t, err)
	_, statErr := os.Stat(filepath.Join(inst.MusicDir(), "bad"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestIsBundled(t *testing.T) {
	assert.True(t, isBundled("music/a.mxmusic", musicFolder, ExtMusic))
	assert.True(t, isBundled("music/sub/a.MXMUSIC", musicFolder, ExtMusic))
	assert.False(t, isBundled("a.mxmusic", musicFolder, ExtMusic))
	assert.False(t, isBundled("music/a.ogg", musicFolder, ExtMusic))
	assert.False(t, isBundled("palettes/a.mxmusic", paletteFolder, ExtPalette))
}
