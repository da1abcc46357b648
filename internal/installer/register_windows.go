//go:build windows

package installer

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"

	"github.com/maddymakesgames/mxinstall/internal/logging"
)

// classesRoot is the per-user class registration key, so no elevation is needed.
const classesRoot = `Software\Classes\`

func setDefaultValue(path, value string) error {
	key, _, err := registry.CreateKey(registry.CURRENT_USER, classesRoot+path, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("creating key %s: %w", path, err)
	}
	defer key.Close()

	if setErr := key.SetStringValue("", value); setErr != nil {
		return fmt.Errorf("setting %s: %w", path, setErr)
	}
	return nil
}

// registerFileTypes points each extension at the mxinstall ProgID and sets
// the ProgID's open command to exe.
func registerFileTypes(ctx context.Context, exe string) error {
	for _, ext := range SupportedExtensions() {
		if err := setDefaultValue(ext, progID); err != nil {
			return err
		}
	}

	if err := setDefaultValue(progID, fileTypeDescription); err != nil {
		return err
	}

	key, _, err := registry.CreateKey(registry.CURRENT_USER, classesRoot+progID, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("opening %s: %w", progID, err)
	}
	setErr := key.SetStringValue("AppUserModelID", appUserModelID)
	key.Close()
	if setErr != nil {
		return fmt.Errorf("setting AppUserModelID: %w", setErr)
	}

	if cmdErr := setDefaultValue(progID+`\shell\open\command`, fmt.Sprintf(`"%s" "%%1"`, exe)); cmdErr != nil {
		return cmdErr
	}

	logging.FromContext(ctx).Info().
		Ctx(ctx).
		Str("component", "installer").
		Str("operation", "register_file_types").
		Str("exe", exe).
		Msg("file types registered")
	return nil
}

// unregisterFileTypes deletes the keys registerFileTypes created, deepest first.
func unregisterFileTypes(_ context.Context) error {
	paths := []string{
		progID + `\shell\open\command`,
		progID + `\shell\open`,
		progID + `\shell`,
		progID,
	}
	for _, ext := range SupportedExtensions() {
		paths = append(paths, ext)
	}

	for _, p := range paths {
		if err := registry.DeleteKey(registry.CURRENT_USER, classesRoot+p); err != nil &&
			!errors.Is(err, registry.ErrNotExist) {
			return fmt.Errorf("deleting %s: %w", p, err)
		}
	}
	return nil
}
