// Command mxinstall installs Mixolumia mods, music packs and palettes.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/maddymakesgames/mxinstall/internal/cli"
	"github.com/maddymakesgames/mxinstall/pkg/version"
)

func main() {
	os.Exit(extractExitCode(run()))
}

func run() error {
	root := cli.NewRootCmd(version.GetVersion())
	err := root.ExecuteContext(context.Background())

	var exitErr *cli.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

// extractExitCode maps an error from run to a process exit code.
// An ExitError carries its own code; any other error exits 1.
func extractExitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode
	}
	return 1
}
