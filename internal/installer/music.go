package installer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/maddymakesgames/mxinstall/internal/logging"
)

// MusicResult describes an installed music pack.
type MusicResult struct {
	Name  string
	Dir   string
	Files []string
}

// MusicDir returns the directory music packs are extracted into.
func (i *Installer) MusicDir() string {
	return filepath.Join(i.gameDir, "data", "music")
}

// musicPackName derives the pack name from a file name: its base name without extension.
func musicPackName(fileName string) string {
	base := filepath.Base(filepath.FromSlash(fileName))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// InstallMusic extracts a .mxmusic archive into data/music/<pack>/, where the
// pack name is fileName without its extension.
func (i *Installer) InstallMusic(ctx context.Context, data []byte, fileName string) (*MusicResult, error) {
	log := logging.FromContext(ctx)

	name := musicPackName(fileName)
	if name == "" || name == "." {
		return nil, fmt.Errorf("cannot derive music pack name from %q", fileName)
	}

	zr, err := openZip(data)
	if err != nil {
		return nil, fmt.Errorf("reading .mxmusic contents: %w", err)
	}

	dest := filepath.Join(i.MusicDir(), name)
	log.Debug().
		Ctx(ctx).
		Str("component", "installer").
		Str("operation", "install_music").
		Str("pack", name).
		Str("dest", dest).
		Msg("installing music pack")

	files, err := extractZip(ctx, zr, dest)
	if err != nil {
		return nil, fmt.Errorf("installing music pack %q: %w", name, err)
	}

	log.Info().
		Ctx(ctx).
		Str("component", "installer").
		Str("operation", "install_music").
		Str("pack", name).
		Int("files", len(files)).
		Msg("music pack installed")

	return &MusicResult{Name: name, Dir: dest, Files: files}, nil
}
