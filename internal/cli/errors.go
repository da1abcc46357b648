package cli

import (
	"fmt"

	"github.com/maddymakesgames/mxinstall/internal/launch"
)

// ExitError carries a process exit code from a command to main.
// It is used when a command ran to completion but the outcome still
// calls for a non-zero exit status.
type ExitError struct {
	ExitCode int
	Reason   string
}

func (e *ExitError) Error() string {
	return e.Reason
}

// exitErrorFor converts a dispatch result into an ExitError, or nil when the
// result maps to a zero exit code.
func exitErrorFor(result launch.Result) error {
	code := result.ExitCode()
	if code == launch.ExitOK {
		return nil
	}

	reason := result.Outcome.String()
	if result.Err != nil {
		reason = fmt.Sprintf("%s: %v", reason, result.Err)
	}
	return &ExitError{ExitCode: code, Reason: reason}
}
