package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/maddymakesgames/mxinstall/internal/installer"
)

// NewUninstallCmd creates the uninstall command.
//
// This command removes the file type registration and the install state, and
// moves a legacy installer that setup retired back into the home directory.
// Mods already installed into the game directory are left in place.
func NewUninstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall",
		Short: "Remove file associations and install state",
		Long: `Removes mxinstall's file type registration and its install state, so the
next launch runs first-time setup again. A legacy Mixolumia Mod Installer that
setup moved aside is put back where it was.

Mods, music packs and palettes already installed into the game are not removed.`,
		Example: `  # Uninstall
  mxinstall uninstall`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			inst, err := newInstaller(cmd, installOptions{SkipRegister: true})
			if err != nil {
				return err
			}

			// Check if installed before uninstalling (for user messaging)
			st, readErr := inst.ReadState()
			if errors.Is(readErr, installer.ErrNotInstalled) {
				cmd.Printf("mxinstall is not set up\n")
				return nil
			}
			if readErr != nil {
				return readErr
			}

			if uninstallErr := inst.Uninstall(ctx); uninstallErr != nil {
				return uninstallErr
			}

			cmd.Printf("mxinstall uninstalled successfully\n")
			cmd.Printf("  Removed: state for v%s\n", st.Version)
			if st.FileTypesRegistered {
				cmd.Printf("  Removed: file type registration\n")
			}
			if st.Legacy != nil {
				cmd.Printf("  Restored: legacy installer to %s\n", st.Legacy.Origin)
			}
			return nil
		},
	}
}
