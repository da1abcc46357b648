// Package launch decides what a single mxinstall invocation does.
//
// A launch either installs the one file it was handed (by the shell, a file
// manager "open with" action, or a drag onto the binary) or, when no file was
// supplied, runs first-time setup unless a previous setup is already recorded.
// Exactly one of those actions runs, then the process exits with a code that
// reflects the outcome.
package launch

import (
	"context"
	"fmt"
	"strings"

	"github.com/maddymakesgames/mxinstall/internal/logging"
)

// Installer performs the side effects a launch dispatches to.
type Installer interface {
	// CheckInstalled reports whether first-time setup has already run. It has no side effects.
	CheckInstalled(ctx context.Context) (bool, error)

	// RunFirstTimeSetup performs the one-time installation side effects.
	RunFirstTimeSetup(ctx context.Context) error

	// InstallFile installs a single artifact file.
	InstallFile(ctx context.Context, path string) error
}

// Context is what the process was given at startup.
type Context struct {
	suppliedFile string
	hasFile      bool
}

// NoFile returns a launch context with no supplied file.
func NoFile() Context {
	return Context{}
}

// WithFile returns a launch context for the given file path.
func WithFile(path string) Context {
	return Context{suppliedFile: path, hasFile: true}
}

// FromArgs builds a launch context from positional arguments (without the
// program name). The first non-blank argument is the supplied file; the rest
// are ignored, since a launch handles a single file.
func FromArgs(args []string) Context {
	for _, a := range args {
		if strings.TrimSpace(a) != "" {
			return WithFile(a)
		}
	}
	return NoFile()
}

// SuppliedFile returns the supplied file path and whether one was supplied.
func (c Context) SuppliedFile() (string, bool) {
	return c.suppliedFile, c.hasFile
}

// Outcome is the terminal state of a dispatch.
type Outcome int

const (
	// OutcomeFileInstalled means the supplied file was installed.
	OutcomeFileInstalled Outcome = iota
	// OutcomeFileInstallFailed means installing the supplied file failed.
	OutcomeFileInstallFailed
	// OutcomeSetupCompleted means first-time setup ran and succeeded.
	OutcomeSetupCompleted
	// OutcomeSetupFailed means first-time setup ran and failed.
	OutcomeSetupFailed
	// OutcomeAlreadyInstalled means no file was supplied and setup had already run.
	OutcomeAlreadyInstalled
)

// Process exit codes.
const (
	ExitOK                = 0
	ExitUsage             = 1
	ExitFileInstallFailed = 2
	ExitSetupFailed       = 3
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFileInstalled:
		return "file_installed"
	case OutcomeFileInstallFailed:
		return "file_install_failed"
	case OutcomeSetupCompleted:
		return "setup_completed"
	case OutcomeSetupFailed:
		return "setup_failed"
	case OutcomeAlreadyInstalled:
		return "already_installed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// ExitCode maps the outcome to a process exit code.
func (o Outcome) ExitCode() int {
	switch o {
	case OutcomeFileInstallFailed:
		return ExitFileInstallFailed
	case OutcomeSetupFailed:
		return ExitSetupFailed
	case OutcomeFileInstalled, OutcomeSetupCompleted, OutcomeAlreadyInstalled:
		return ExitOK
	default:
		return ExitUsage
	}
}

// Result describes what a dispatch did.
type Result struct {
	Outcome Outcome
	// Path is the supplied file, empty when none was supplied.
	Path string
	// Err is the failure of the dispatched operation, if any.
	Err error
}

// ExitCode returns the process exit code for the result.
func (r Result) ExitCode() int {
	return r.Outcome.ExitCode()
}

// Succeeded reports whether the dispatched operation (if any) succeeded.
func (r Result) Succeeded() bool {
	return r.ExitCode() == ExitOK
}

// Dispatch runs the single action a launch calls for.
//
// With a supplied file, InstallFile is called exactly once and neither
// CheckInstalled nor RunFirstTimeSetup is consulted. Without one,
// RunFirstTimeSetup is called exactly once when CheckInstalled reports false,
// and nothing is called when it reports true. A CheckInstalled error counts
// as not installed.
func Dispatch(ctx context.Context, lc Context, inst Installer) Result {
	log := logging.FromContext(ctx)

	if path, ok := lc.SuppliedFile(); ok {
		log.Debug().
			Ctx(ctx).
			Str("component", "launch").
			Str("operation", "install_file").
			Str("path", path).
			Msg("file supplied at launch")

		if err := inst.InstallFile(ctx, path); err != nil {
			log.Error().
				Ctx(ctx).
				Str("component", "launch").
				Str("operation", "install_file").
				Str("path", path).
				Err(err).
				Msg("file install failed")
			return Result{Outcome: OutcomeFileInstallFailed, Path: path, Err: err}
		}
		return Result{Outcome: OutcomeFileInstalled, Path: path}
	}

	installed, err := inst.CheckInstalled(ctx)
	if err != nil {
		log.Warn().
			Ctx(ctx).
			Str("component", "launch").
			Str("operation", "check_installed").
			Err(err).
			Msg("could not read install state, treating as not installed")
		installed = false
	}

	if installed {
		log.Debug().
			Ctx(ctx).
			Str("component", "launch").
			Msg("already installed, nothing to do")
		return Result{Outcome: OutcomeAlreadyInstalled}
	}

	if setupErr := inst.RunFirstTimeSetup(ctx); setupErr != nil {
		log.Error().
			Ctx(ctx).
			Str("component", "launch").
			Str("operation", "first_time_setup").
			Err(setupErr).
			Msg("first-time setup failed")
		return Result{Outcome: OutcomeSetupFailed, Err: setupErr}
	}
	return Result{Outcome: OutcomeSetupCompleted}
}
