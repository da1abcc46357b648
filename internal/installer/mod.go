package installer

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/maddymakesgames/mxinstall/internal/logging"
)

const (
	// ModFormatVersion is the newest mod_meta.json version this installer understands.
	ModFormatVersion = 1

	modMetaFile   = "mod_meta.json"
	musicFolder   = "music/"
	paletteFolder = "palettes/"
)

// ModMeta is the content of mod_meta.json.
type ModMeta struct {
	Name    string `json:"name"`
	Author  string `json:"author"`
	Version int    `json:"version"`
	Palette bool   `json:"palette"`
	Music   bool   `json:"music"`
}

// ModResult describes what installing a .mxmod did.
type ModResult struct {
	Meta       ModMeta
	MusicPacks []string
	Palettes   []string
	// Skipped lists entries or sections that were not installed, with the reason.
	Skipped []string
}

// InstallMod installs the music packs and palettes bundled in a .mxmod archive.
//
// The archive must contain mod_meta.json. Music packs are the music/*.mxmusic
// entries and palettes the palettes/*.mxpalette entries; each is only
// installed when the matching flag in mod_meta.json is set. A palette that
// fails to parse is skipped; any other failure aborts the install.
func (i *Installer) InstallMod(ctx context.Context, data []byte, fileName string) (*ModResult, error) {
	log := logging.FromContext(ctx)

	zr, err := openZip(data)
	if err != nil {
		return nil, fmt.Errorf("opening mxmod %s: %w", fileName, err)
	}

	entries := make(map[string][]byte)
	var names []string
	var metaData []byte
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		name := strings.TrimPrefix(path.Clean(strings.ReplaceAll(f.Name, "\\", "/")), "/")
		switch {
		case name == modMetaFile:
			if metaData, err = readZipEntry(f); err != nil {
				return nil, err
			}
		case isBundled(name, musicFolder, ExtMusic), isBundled(name, paletteFolder, ExtPalette):
			b, readErr := readZipEntry(f)
			if readErr != nil {
				return nil, readErr
			}
			entries[name] = b
			names = append(names, name)
		}
	}
	sort.Strings(names)

	if metaData == nil {
		return nil, ErrMissingModMeta
	}

	var meta ModMeta
	if unmarshalErr := json.Unmarshal(metaData, &meta); unmarshalErr != nil {
		return nil, fmt.Errorf("mod_meta.json is invalid: %w", unmarshalErr)
	}

	if meta.Version > ModFormatVersion {
		return nil, fmt.Errorf("%w (mod version %d, supported %d)",
			ErrUnsupportedModVersion, meta.Version, ModFormatVersion)
	}

	log.Info().
		Ctx(ctx).
		Str("component", "installer").
		Str("operation", "install_mod").
		Str("mod", meta.Name).
		Str("author", meta.Author).
		Int("version", meta.Version).
		Msg("installing mod")

	result := &ModResult{Meta: meta}

	if meta.Music {
		if musicErr := i.installBundledMusic(ctx, names, entries, result); musicErr != nil {
			return result, musicErr
		}
	}

	if meta.Palette {
		if paletteErr := i.installBundledPalettes(ctx, names, entries, result); paletteErr != nil {
			return result, paletteErr
		}
	}

	log.Info().
		Ctx(ctx).
		Str("component", "installer").
		Str("operation", "install_mod").
		Str("mod", meta.Name).
		Int("music_packs", len(result.MusicPacks)).
		Int("palettes", len(result.Palettes)).
		Int("skipped", len(result.Skipped)).
		Msg("mod installed")

	return result, nil
}

func (i *Installer) installBundledMusic(
	ctx context.Context,
	names []string,
	entries map[string][]byte,
	result *ModResult,
) error {
	found := false
	for _, name := range names {
		if !isBundled(name, musicFolder, ExtMusic) {
			continue
		}
		found = true

		music, err := i.InstallMusic(ctx, entries[name], name)
		if err != nil {
			return err
		}
		result.MusicPacks = append(result.MusicPacks, music.Name)
	}

	if !found {
		logging.FromContext(ctx).Warn().
			Ctx(ctx).
			Str("component", "installer").
			Str("mod", result.Meta.Name).
			Msg("mod declares music but has no music folder, skipping music packs")
		result.Skipped = append(result.Skipped, "music: no music/*.mxmusic entries")
	}
	return nil
}

func (i *Installer) installBundledPalettes(
	ctx context.Context,
	names []string,
	entries map[string][]byte,
	result *ModResult,
) error {
	log := logging.FromContext(ctx)

	found := false
	for _, name := range names {
		if !isBundled(name, paletteFolder, ExtPalette) {
			continue
		}
		found = true

		p, err := ParsePalette(entries[name])
		if err != nil {
			log.Warn().
				Ctx(ctx).
				Str("component", "installer").
				Str("entry", name).
				Err(err).
				Msg("skipping unreadable palette")
			result.Skipped = append(result.Skipped, fmt.Sprintf("%s: %v", name, err))
			continue
		}

		if _, installErr := i.InstallPalette(ctx, p); installErr != nil {
			return installErr
		}
		result.Palettes = append(result.Palettes, p.Name)
	}

	if !found {
		log.Warn().
			Ctx(ctx).
			Str("component", "installer").
			Str("mod", result.Meta.Name).
			Msg("mod declares palettes but has no palettes folder, skipping palettes")
		result.Skipped = append(result.Skipped, "palettes: no palettes/*.mxpalette entries")
	}
	return nil
}

// isBundled reports whether name is a file with extension ext directly or
// indirectly under folder.
func isBundled(name, folder, ext string) bool {
	return strings.HasPrefix(name, folder) && strings.EqualFold(path.Ext(name), ext)
}
