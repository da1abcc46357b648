package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maddymakesgames/mxinstall/internal/installer"
	"github.com/maddymakesgames/mxinstall/internal/launch"
)

// NewInstallCmd creates the install command for installing one or more mod files.
func NewInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install <file>...",
		Short: "Install mods, music packs or palettes",
		Long: `Installs each file into the game's data directory.

Supported file types: ` + strings.Join(installer.SupportedExtensions(), ", ") + `

Every file is attempted even if an earlier one fails. The command exits with
status 2 if any file failed to install.`,
		Example: `  # Install a palette
  mxinstall install sunset.mxpalette

  # Install several files at once
  mxinstall install neon.mxmod chill.mxmusic`,
		Args: cobra.MinimumNArgs(1),
		RunE: runInstall,
	}

	return cmd
}

func runInstall(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	inst, err := newInstaller(cmd, installOptions{SkipRegister: true})
	if err != nil {
		return err
	}

	var paths []string
	for _, path := range args {
		if strings.TrimSpace(path) != "" {
			paths = append(paths, path)
		}
	}
	if len(paths) == 0 {
		return errors.New("install requires at least one non-empty file path")
	}

	var errs []error
	for _, path := range paths {
		result := launch.Dispatch(ctx, launch.WithFile(path), inst)
		printOutcome(cmd, result, inst)
		if !result.Succeeded() {
			errs = append(errs, result.Err)
		}
	}

	if len(errs) > 0 {
		return &ExitError{
			ExitCode: launch.ExitFileInstallFailed,
			Reason:   errors.Join(errs...).Error(),
		}
	}
	return nil
}
