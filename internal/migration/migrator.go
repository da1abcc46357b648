// Package migration retires the directory left by the legacy Mixolumia Mod
// Installer into the mxinstall config home, and puts it back on uninstall.
package migration

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"
)

// legacyDirName is the directory the legacy installer created in the user's home.
const legacyDirName = "MixolumiaModInstaller"

// DetectLegacy checks if the legacy ~/MixolumiaModInstaller directory exists.
func DetectLegacy() (string, bool) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false
	}
	legacyPath := filepath.Join(home, legacyDirName)
	info, err := os.Stat(legacyPath)
	if err != nil {
		return "", false
	}
	return legacyPath, info.IsDir()
}

// LegacyVersion returns the version recorded in the legacy config.ini
// ([metadata] version), or an empty string if none is recorded.
func LegacyVersion(legacyPath string) (string, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{Loose: true}, filepath.Join(legacyPath, "config.ini"))
	if err != nil {
		return "", fmt.Errorf("reading legacy config.ini: %w", err)
	}
	return cfg.Section("metadata").Key("version").String(), nil
}

// SafeCopy recursively copies the source directory to the destination.
func SafeCopy(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		target := filepath.Join(dst, rel)

		if info.IsDir() {
			return os.MkdirAll(target, info.Mode())
		}

		return copyFile(path, target)
	})
}

// Legacy is a legacy installer directory found in the user's home.
type Legacy struct {
	Path    string
	Version string
}

// Detect finds the legacy installer directory and reads its version. A
// missing or unreadable config.ini leaves Version empty.
func Detect() (Legacy, bool) {
	path, ok := DetectLegacy()
	if !ok {
		return Legacy{}, false
	}
	v, err := LegacyVersion(path)
	if err != nil {
		v = ""
	}
	return Legacy{Path: path, Version: v}, true
}

// DisplayVersion returns the recorded version or "unknown version".
func (l Legacy) DisplayVersion() string {
	if l.Version == "" {
		return "unknown version"
	}
	return l.Version
}

// ErrBackupExists is returned when the retire destination is already taken.
var ErrBackupExists = errors.New("legacy backup already exists")

// Retire moves the legacy directory to backupDir so it no longer sits in the
// user's home. When a rename is not possible (another filesystem) the
// directory is copied and the source removed only after the copy succeeded.
func Retire(legacy Legacy, backupDir string) error {
	return move(legacy.Path, backupDir)
}

// Restore moves a retired legacy directory from backupDir back to origin.
func Restore(backupDir, origin string) error {
	return move(backupDir, origin)
}

func move(src, dst string) error {
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("%w: %s", ErrBackupExists, dst)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o700); err != nil {
		return err
	}
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	if err := SafeCopy(src, dst); err != nil {
		_ = os.RemoveAll(dst)
		return fmt.Errorf("copying %s to %s: %w", src, dst, err)
	}
	if err := os.RemoveAll(src); err != nil {
		return fmt.Errorf("removing %s after copy: %w", src, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	if mkdirErr := os.MkdirAll(filepath.Dir(dst), 0700); mkdirErr != nil {
		return mkdirErr
	}

	destFile, createErr := os.Create(dst)
	if createErr != nil {
		return createErr
	}
	defer destFile.Close()

	if _, copyErr := io.Copy(destFile, sourceFile); copyErr != nil {
		return copyErr
	}

	sourceInfo, statErr := os.Stat(src)
	if statErr != nil {
		return statErr
	}

	return os.Chmod(dst, sourceInfo.Mode())
}
