package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/maddymakesgames/mxinstall/internal/config"
	"github.com/maddymakesgames/mxinstall/internal/installer"
	"github.com/maddymakesgames/mxinstall/internal/launch"
	"github.com/maddymakesgames/mxinstall/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the mxinstall CLI.
//
// Run without arguments it performs first-time setup when needed. Run with a
// file (which is how the operating system launches it for an associated mod
// file) it installs that file. Either way it exits after a single action.
func NewRootCmd(ver string) *cobra.Command {
	var logResult *logging.LogPathResult

	cmd := &cobra.Command{
		Use:   "mxinstall [file]",
		Short: "Mod installer for Mixolumia",
		Long: `mxinstall installs Mixolumia mods, music packs and palettes.

Without arguments it runs first-time setup if this version has not been set up
yet, and otherwise does nothing. With a .mxmod, .mxmusic or .mxpalette file it
installs that file into the game's data directory.`,
		Version:       ver,
		Example:       rootCmdExample,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			config.SetConfigDirOverride(configDir)
			config.SetGlobalConfig(config.New())

			result := setupLogging(cmd)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, logResult)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLaunch(cmd, launch.FromArgs(args), installOptions{})
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "override the mxinstall config directory")
	cmd.PersistentFlags().String("game-dir", "", "override the Mixolumia data directory")
	cmd.AddCommand(NewSetupCmd(), NewInstallCmd(), NewStatusCmd(), NewUninstallCmd())

	return cmd
}

const rootCmdExample = `  # Set up mxinstall (registers mod file types)
  mxinstall

  # Install a mod
  mxinstall ~/Downloads/neon.mxmod

  # Install into a non-default game directory
  mxinstall --game-dir /games/mixolumia ~/Downloads/chill.mxmusic

  # Show install state
  mxinstall status`

// installOptions controls how a command builds its installer.
type installOptions struct {
	SkipRegister   bool
	NonInteractive bool
	AssumeYes      bool
}

// newInstaller builds an installer from the global config and the
// --game-dir flag. Setup steps are printed as they complete.
func newInstaller(cmd *cobra.Command, opts installOptions) (*installer.Installer, error) {
	cfg := config.GetGlobalConfig()

	gameDirFlag, _ := cmd.Flags().GetString("game-dir")
	gameDir, err := cfg.ResolveGameDir(gameDirFlag)
	if err != nil {
		return nil, fmt.Errorf("resolving game directory: %w", err)
	}

	// Auto-detect non-interactive mode when stdin is not a TTY
	nonInteractive := opts.NonInteractive || !isTerminal(os.Stdin)

	return installer.New(installer.Options{
		Config:       cfg,
		ConfigDir:    config.ResolveConfigDir(),
		GameDir:      gameDir,
		SkipRegister: opts.SkipRegister,
		Confirm: func(question string, defaultYes bool) bool {
			if opts.AssumeYes {
				return true
			}
			// Launched by the desktop or a script: there is nobody to ask.
			if nonInteractive {
				return defaultYes
			}
			return Confirm(cmd.OutOrStdout(), cmd.InOrStdin(), question, defaultYes).Accepted
		},
		Report: func(step installer.StepResult) {
			printStep(cmd, step, nonInteractive)
		},
	})
}

// runLaunch dispatches a single launch and reports its outcome.
func runLaunch(cmd *cobra.Command, lc launch.Context, opts installOptions) error {
	inst, err := newInstaller(cmd, opts)
	if err != nil {
		return err
	}

	result := launch.Dispatch(cmd.Context(), lc, inst)
	printOutcome(cmd, result, inst)
	return exitErrorFor(result)
}

// printOutcome writes a one-line summary of a dispatch result.
func printOutcome(cmd *cobra.Command, result launch.Result, inst *installer.Installer) {
	switch result.Outcome {
	case launch.OutcomeFileInstalled:
		cmd.Printf("Installed %s\n", result.Path)
	case launch.OutcomeFileInstallFailed:
		cmd.PrintErrf("Failed to install %s: %v\n", result.Path, result.Err)
	case launch.OutcomeSetupCompleted:
		cmd.Println()
		cmd.Printf("Setup complete! Open a mod file, or run 'mxinstall <file>', to install it into %s\n",
			inst.GameDir())
	case launch.OutcomeSetupFailed:
		cmd.Println()
		cmd.PrintErrln("Setup completed with errors. Review the messages above for remediation steps.")
	case launch.OutcomeAlreadyInstalled:
		cmd.Printf("mxinstall v%s is already set up. Run 'mxinstall <file>' to install a mod.\n",
			inst.Version())
	}
}
