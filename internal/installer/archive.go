package installer

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// maxFileSize caps a single extracted entry to guard against zip bombs.
const maxFileSize = 500 * 1024 * 1024

const (
	dirPerm  = 0o750
	filePerm = 0o644
)

// errEntryTooLarge is returned when an archive entry exceeds maxFileSize.
var errEntryTooLarge = errors.New("archive entry exceeds maximum size")

// openZip opens an in-memory zip archive.
func openZip(data []byte) (*zip.Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening zip archive: %w", err)
	}
	return zr, nil
}

// sanitizePath joins name onto destDir and rejects results that escape destDir.
func sanitizePath(destDir, name string) (string, error) {
	target := filepath.Join(destDir, name)
	cleanDest := filepath.Clean(destDir) + string(os.PathSeparator)
	if !strings.HasPrefix(target, cleanDest) {
		return "", fmt.Errorf("illegal file path in archive: %s", name)
	}
	return target, nil
}

// readZipEntry returns the contents of f, bounded by maxFileSize.
func readZipEntry(f *zip.File) ([]byte, error) {
	if f.UncompressedSize64 > maxFileSize {
		return nil, fmt.Errorf("%s: %w", f.Name, errEntryTooLarge)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Name, err)
	}
	if len(data) > maxFileSize {
		return nil, fmt.Errorf("%s: %w", f.Name, errEntryTooLarge)
	}
	return data, nil
}

// extractZip writes every file entry of zr below destDir and returns the
// relative paths written. Directory entries only create directories.
func extractZip(ctx context.Context, zr *zip.Reader, destDir string) ([]string, error) {
	var written []string
	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		target, err := sanitizePath(destDir, f.Name)
		if err != nil {
			return written, err
		}

		if f.FileInfo().IsDir() {
			if mkErr := os.MkdirAll(target, dirPerm); mkErr != nil {
				return written, fmt.Errorf("creating directory %s: %w", target, mkErr)
			}
			continue
		}

		if writeErr := extractZipFile(f, target); writeErr != nil {
			return written, writeErr
		}
		written = append(written, filepath.ToSlash(f.Name))
	}
	return written, nil
}

func extractZipFile(f *zip.File, target string) error {
	if f.UncompressedSize64 > maxFileSize {
		return fmt.Errorf("%s: %w", f.Name, errEntryTooLarge)
	}

	if err := os.MkdirAll(filepath.Dir(target), dirPerm); err != nil {
		return fmt.Errorf("creating parent directory for %s: %w", target, err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("opening %s: %w", f.Name, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm)
	if err != nil {
		return fmt.Errorf("creating %s: %w", target, err)
	}

	n, copyErr := io.Copy(out, io.LimitReader(rc, maxFileSize+1))
	if copyErr != nil {
		_ = out.Close()
		return fmt.Errorf("writing %s: %w", target, copyErr)
	}
	if n > maxFileSize {
		_ = out.Close()
		_ = os.Remove(target)
		return fmt.Errorf("%s: %w", f.Name, errEntryTooLarge)
	}

	return out.Close()
}
