package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/maddymakesgames/mxinstall/internal/config"
	"github.com/maddymakesgames/mxinstall/internal/installer"
	"github.com/maddymakesgames/mxinstall/pkg/version"
)

// NewStatusCmd creates the status command that reports the install state.
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether mxinstall is set up",
		Long: `Reports whether first-time setup has run for this version of mxinstall,
along with the directories mxinstall reads from and writes to.`,
		Args: cobra.NoArgs,
		RunE: runStatus,
	}
}

func runStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	inst, err := newInstaller(cmd, installOptions{SkipRegister: true})
	if err != nil {
		return err
	}

	st, err := inst.ReadState()
	switch {
	case errors.Is(err, installer.ErrNotInstalled):
		cmd.Printf("Installed:       no\n")
	case err != nil:
		return err
	default:
		installed, checkErr := inst.CheckInstalled(ctx)
		if checkErr != nil {
			return checkErr
		}
		switch {
		case installed:
			cmd.Printf("Installed:       yes (%s)\n", st.InstalledAt.Local().Format("2006-01-02 15:04"))
		case isNewer(st.Version, inst.Version()):
			cmd.Printf("Installed:       set up by newer v%s\n", st.Version)
		default:
			cmd.Printf("Installed:       set up by v%s, run 'mxinstall setup' to update\n", st.Version)
		}
		cmd.Printf("File types:      %s\n", registeredLabel(st.FileTypesRegistered))
		if st.Legacy != nil {
			cmd.Printf("Legacy install:  moved to %s (restored on uninstall)\n", st.Legacy.Backup)
		}
	}

	cmd.Printf("Version:         v%s\n", inst.Version())
	cmd.Printf("Config home:     %s\n", inst.ConfigDir())
	cmd.Printf("Config file:     %s\n", config.GetGlobalConfig().Path())
	cmd.Printf("Game directory:  %s\n", inst.GameDir())

	if palettes, listErr := inst.ListPalettes(); listErr == nil {
		cmd.Printf("Palettes:        %d\n", len(palettes))
	}

	if file := config.GetLoggingConfig().File; file != "" {
		cmd.Printf("Log file:        %s\n", file)
	}

	return nil
}

// isNewer reports whether recorded is a later version than current.
// Unparsable versions are never newer.
func isNewer(recorded, current string) bool {
	cmp, err := version.Compare(recorded, current)
	return err == nil && cmp > 0
}

func registeredLabel(registered bool) string {
	if registered {
		return "registered"
	}
	return "not registered"
}
