package installer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/ini.v1"

	"github.com/maddymakesgames/mxinstall/internal/logging"
)

// palettesFileName is the game's palette store inside the game directory.
const palettesFileName = "user_palettes.ini"

// Palette is the content of a .mxpalette file.
type Palette struct {
	Name   string   `json:"name"`
	Author string   `json:"author"`
	Colors []string `json:"colors"`
}

// ParsePalette decodes and validates a .mxpalette document.
func ParsePalette(data []byte) (Palette, error) {
	var p Palette
	if err := json.Unmarshal(data, &p); err != nil {
		return Palette{}, fmt.Errorf("parsing palette json: %w", err)
	}
	if p.Name == "" {
		return Palette{}, fmt.Errorf("%w: missing name", ErrInvalidPalette)
	}
	if len(p.Colors) == 0 {
		return Palette{}, fmt.Errorf("%w: %q has no colors", ErrInvalidPalette, p.Name)
	}
	return p, nil
}

// palettesLoadOptions keeps values such as "#ff8800" intact.
func palettesLoadOptions() ini.LoadOptions {
	return ini.LoadOptions{
		IgnoreInlineComment: true,
		Loose:               true,
	}
}

// PalettesPath returns the path of user_palettes.ini.
func (i *Installer) PalettesPath() string {
	return filepath.Join(i.gameDir, palettesFileName)
}

// InstallPalette appends p to user_palettes.ini as a new numbered section and
// returns the section number. Colors are stored under keys 0..n-1 followed by
// author and name.
func (i *Installer) InstallPalette(ctx context.Context, p Palette) (int, error) {
	log := logging.FromContext(ctx)
	path := i.PalettesPath()

	log.Debug().
		Ctx(ctx).
		Str("component", "installer").
		Str("operation", "install_palette").
		Str("palette", p.Name).
		Str("author", p.Author).
		Msg("installing palette")

	file, err := ini.LoadSources(palettesLoadOptions(), path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", palettesFileName, err)
	}

	key := nextPaletteKey(file)
	section, err := file.NewSection(strconv.Itoa(key))
	if err != nil {
		return 0, fmt.Errorf("adding palette section %d: %w", key, err)
	}
	for idx, color := range p.Colors {
		section.Key(strconv.Itoa(idx)).SetValue(color)
	}
	section.Key("author").SetValue(p.Author)
	section.Key("name").SetValue(p.Name)

	if mkErr := os.MkdirAll(filepath.Dir(path), dirPerm); mkErr != nil {
		return 0, fmt.Errorf("creating game directory: %w", mkErr)
	}
	if saveErr := file.SaveTo(path); saveErr != nil {
		return 0, fmt.Errorf("writing %s: %w", palettesFileName, saveErr)
	}

	log.Info().
		Ctx(ctx).
		Str("component", "installer").
		Str("operation", "install_palette").
		Str("palette", p.Name).
		Int("section", key).
		Msg("palette installed")

	return key, nil
}

// nextPaletteKey returns one more than the highest numeric section, or 0 when
// there is none. Non-numeric sections are ignored.
func nextPaletteKey(file *ini.File) int {
	next := 0
	for _, name := range file.SectionStrings() {
		n, err := strconv.Atoi(name)
		if err != nil || n < 0 {
			continue
		}
		if n+1 > next {
			next = n + 1
		}
	}
	return next
}

// ListPalettes returns the palettes stored in user_palettes.ini keyed by section number.
func (i *Installer) ListPalettes() (map[int]Palette, error) {
	file, err := ini.LoadSources(palettesLoadOptions(), i.PalettesPath())
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", palettesFileName, err)
	}

	out := make(map[int]Palette)
	for _, section := range file.Sections() {
		n, convErr := strconv.Atoi(section.Name())
		if convErr != nil {
			continue
		}
		p := Palette{
			Name:   section.Key("name").String(),
			Author: section.Key("author").String(),
		}
		for idx := 0; section.HasKey(strconv.Itoa(idx)); idx++ {
			p.Colors = append(p.Colors, section.Key(strconv.Itoa(idx)).String())
		}
		out[n] = p
	}
	return out, nil
}

// ensurePalettesFile creates an empty user_palettes.ini when none exists.
// It reports whether a file was created.
func (i *Installer) ensurePalettesFile() (bool, error) {
	path := i.PalettesPath()
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("checking %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return false, fmt.Errorf("creating game directory: %w", err)
	}
	if err := os.WriteFile(path, nil, filePerm); err != nil {
		return false, fmt.Errorf("creating %s: %w", path, err)
	}
	return true, nil
}

//nolint:gochecknoinits // the game's ini reader expects key=value without padding
func init() {
	ini.PrettyFormat = false
}
