package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/maddymakesgames/mxinstall/internal/installer"
	"github.com/maddymakesgames/mxinstall/internal/launch"
	"github.com/maddymakesgames/mxinstall/internal/logging"
)

// SetupOptions holds the configuration for the setup command, derived from CLI flags.
type SetupOptions struct {
	Force          bool
	NonInteractive bool
	SkipRegister   bool
	Yes            bool
}

//nolint:gochecknoglobals // Marker styles are shared by every step line.
var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	skippedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// formatStatus returns a status marker appropriate for the output mode.
func formatStatus(status installer.StepStatus, nonInteractive bool) string {
	if nonInteractive {
		switch status {
		case installer.StepSuccess:
			return "[OK]"
		case installer.StepWarning:
			return "[WARN]"
		case installer.StepSkipped:
			return "[SKIP]"
		case installer.StepError:
			return "[ERR]"
		default:
			return "[??]"
		}
	}

	switch status {
	case installer.StepSuccess:
		return successStyle.Render("\u2713") // ✓
	case installer.StepWarning:
		return warningStyle.Render("!")
	case installer.StepSkipped:
		return skippedStyle.Render("-")
	case installer.StepError:
		return errorStyle.Render("\u2717") // ✗
	default:
		return "?"
	}
}

// NewSetupCmd creates the setup command that prepares mxinstall and the game directory.
func NewSetupCmd() *cobra.Command {
	var opts SetupOptions

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Run first-time setup",
		Long: `Prepares mxinstall by creating its config directory, recording the game's
data directory in the configuration, preparing that directory and registering
mxinstall as the handler for .mxmod, .mxmusic and .mxpalette files.

If a legacy Mixolumia Mod Installer is found in the home directory, setup
offers to move it into the config directory (default no; --yes accepts).
Uninstall moves it back.

Setup only runs when this version of mxinstall has not been set up yet. Use
--force to run it again. It is safe to run multiple times: existing files are
preserved.`,
		Example: `  # First-time setup
  mxinstall setup

  # Re-run setup, e.g. after moving the game
  mxinstall setup --force --game-dir /games/mixolumia

  # Scripted setup without touching desktop file associations
  mxinstall setup --non-interactive --skip-register`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSetup(cmd, &opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false,
		"Run setup even if this version is already set up")
	cmd.Flags().BoolVar(&opts.NonInteractive, "non-interactive", false,
		"Disable TTY-dependent output (status symbols, color) and prompts")
	cmd.Flags().BoolVar(&opts.SkipRegister, "skip-register", false,
		"Skip file type registration")
	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false,
		"Answer yes to all prompts")

	return cmd
}

// runSetup runs first-time setup. Without --force it behaves exactly like
// launching mxinstall without a file.
func runSetup(cmd *cobra.Command, opts *SetupOptions) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	instOpts := installOptions{
		SkipRegister:   opts.SkipRegister,
		NonInteractive: opts.NonInteractive,
		AssumeYes:      opts.Yes,
	}

	if !opts.Force {
		return runLaunch(cmd, launch.NoFile(), instOpts)
	}

	inst, err := newInstaller(cmd, instOpts)
	if err != nil {
		return err
	}

	log.Debug().
		Ctx(ctx).
		Str("component", "setup").
		Msg("forcing first-time setup")

	result := launch.Result{Outcome: launch.OutcomeSetupCompleted}
	if setupErr := inst.RunFirstTimeSetup(ctx); setupErr != nil {
		log.Error().
			Ctx(ctx).
			Str("component", "setup").
			Err(setupErr).
			Msg("setup completed with critical errors")
		result = launch.Result{Outcome: launch.OutcomeSetupFailed, Err: setupErr}
	}

	printOutcome(cmd, result, inst)
	return exitErrorFor(result)
}

// printStep outputs a single step's status line.
func printStep(cmd *cobra.Command, step installer.StepResult, nonInteractive bool) {
	marker := formatStatus(step.Status, nonInteractive)
	cmd.Printf("%s %s\n", marker, step.Message)
}
