//go:build linux

package installer

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/maddymakesgames/mxinstall/internal/logging"
)

const (
	mimePackageFile = "mxinstall.xml"
	desktopFile     = "mxinstall.desktop"
)

// xdgDataHome returns $XDG_DATA_HOME or ~/.local/share.
func xdgDataHome() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share"), nil
}

func sortedExtensions() []string {
	exts := make([]string, 0, len(mimeTypes))
	for ext := range mimeTypes {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// mimeInfo is a shared-mime-info package document.
type mimeInfo struct {
	XMLName xml.Name   `xml:"mime-info"`
	Xmlns   string     `xml:"xmlns,attr"`
	Types   []mimeType `xml:"mime-type"`
}

type mimeType struct {
	Type    string   `xml:"type,attr"`
	Comment string   `xml:"comment"`
	Glob    mimeGlob `xml:"glob"`
}

type mimeGlob struct {
	Pattern string `xml:"pattern,attr"`
}

func mimePackageXML() ([]byte, error) {
	info := mimeInfo{Xmlns: "http://www.freedesktop.org/standards/shared-mime-info"}
	for _, ext := range sortedExtensions() {
		info.Types = append(info.Types, mimeType{
			Type:    mimeTypes[ext],
			Comment: fileTypeDescription,
			Glob:    mimeGlob{Pattern: "*" + ext},
		})
	}

	data, err := xml.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding mime package: %w", err)
	}
	return append([]byte(xml.Header), append(data, '\n')...), nil
}

// desktopExec quotes exe as the program of an Exec key followed by the %f
// field code. Inside quotes ", `, $ and \ are backslash-escaped, then the
// whole value gets string escaping (\ becomes \\) and % becomes %%.
func desktopExec(exe string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range exe {
		switch r {
		case '"', '`', '$', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')

	quoted := strings.ReplaceAll(b.String(), `\`, `\\`)
	quoted = strings.ReplaceAll(quoted, "%", "%%")
	return quoted + " %f"
}

// desktopEntry renders the .desktop file that opens mod files with exe.
func desktopEntry(exe string) ([]byte, error) {
	// ini.v1 wraps values containing these in """ blocks, which desktop files do not support.
	if strings.ContainsAny(exe, "\n\r`") {
		return nil, fmt.Errorf("executable path %q cannot be written to a desktop entry", exe)
	}

	types := make([]string, 0, len(mimeTypes))
	for _, ext := range sortedExtensions() {
		types = append(types, mimeTypes[ext])
	}

	file := ini.Empty(ini.LoadOptions{IgnoreInlineComment: true})
	section, err := file.NewSection("Desktop Entry")
	if err != nil {
		return nil, err
	}
	entries := [][2]string{
		{"Type", "Application"},
		{"Name", "Mixolumia Mod Installer"},
		{"Comment", "Install Mixolumia mods, palettes and music packs"},
		{"Exec", desktopExec(exe)},
		{"Terminal", "false"},
		{"NoDisplay", "true"},
		{"MimeType", strings.Join(types, ";") + ";"},
	}
	for _, kv := range entries {
		if _, keyErr := section.NewKey(kv[0], kv[1]); keyErr != nil {
			return nil, fmt.Errorf("adding %s: %w", kv[0], keyErr)
		}
	}

	var buf bytes.Buffer
	if _, writeErr := file.WriteTo(&buf); writeErr != nil {
		return nil, fmt.Errorf("encoding desktop entry: %w", writeErr)
	}
	return buf.Bytes(), nil
}

// registerFileTypes installs a shared-mime-info package and a desktop entry
// under the user's XDG data directory.
func registerFileTypes(ctx context.Context, exe string) error {
	dataHome, err := xdgDataHome()
	if err != nil {
		return err
	}

	mimeDir := filepath.Join(dataHome, "mime", "packages")
	appsDir := filepath.Join(dataHome, "applications")
	for _, dir := range []string{mimeDir, appsDir} {
		if mkErr := os.MkdirAll(dir, dirPerm); mkErr != nil {
			return fmt.Errorf("creating %s: %w", dir, mkErr)
		}
	}

	mimeXML, err := mimePackageXML()
	if err != nil {
		return err
	}
	desktop, err := desktopEntry(exe)
	if err != nil {
		return err
	}

	if writeErr := os.WriteFile(filepath.Join(mimeDir, mimePackageFile), mimeXML, filePerm); writeErr != nil {
		return fmt.Errorf("writing mime package: %w", writeErr)
	}
	if writeErr := os.WriteFile(filepath.Join(appsDir, desktopFile), desktop, filePerm); writeErr != nil {
		return fmt.Errorf("writing desktop entry: %w", writeErr)
	}

	refreshDesktopDatabases(ctx, dataHome)
	return nil
}

// unregisterFileTypes removes what registerFileTypes wrote.
func unregisterFileTypes(ctx context.Context) error {
	dataHome, err := xdgDataHome()
	if err != nil {
		return err
	}

	for _, p := range []string{
		filepath.Join(dataHome, "mime", "packages", mimePackageFile),
		filepath.Join(dataHome, "applications", desktopFile),
	} {
		if removeErr := os.Remove(p); removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
			return fmt.Errorf("removing %s: %w", p, removeErr)
		}
	}

	refreshDesktopDatabases(ctx, dataHome)
	return nil
}

// refreshDesktopDatabases runs the freedesktop cache tools when they are
// installed. Failures only delay when the association takes effect.
func refreshDesktopDatabases(ctx context.Context, dataHome string) {
	log := logging.FromContext(ctx)

	tools := [][]string{
		{"update-mime-database", filepath.Join(dataHome, "mime")},
		{"update-desktop-database", filepath.Join(dataHome, "applications")},
	}
	for _, tool := range tools {
		if _, err := exec.LookPath(tool[0]); err != nil {
			continue
		}
		if out, err := exec.CommandContext(ctx, tool[0], tool[1:]...).CombinedOutput(); err != nil {
			log.Debug().
				Ctx(ctx).
				Str("component", "installer").
				Str("tool", tool[0]).
				Str("output", strings.TrimSpace(string(out))).
				Err(err).
				Msg("desktop database refresh failed")
		}
	}
}
