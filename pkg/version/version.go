// Package version exposes the mxinstall build version.
package version

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// version is overridden at build time with
// -ldflags "-X github.com/maddymakesgames/mxinstall/pkg/version.version=X.Y.Z".
var version = "0.2.0" //nolint:gochecknoglobals // set via ldflags

// GetVersion returns the program version without a leading "v".
func GetVersion() string {
	return version
}

// Equal reports whether two version strings describe the same semantic version.
// Strings that fail to parse are compared verbatim.
func Equal(a, b string) bool {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return va.Equal(vb)
}

// Compare returns -1, 0 or 1 depending on whether a is lower than, equal to or
// greater than b. It returns an error if either string is not a valid version.
func Compare(a, b string) (int, error) {
	va, err := semver.NewVersion(a)
	if err != nil {
		return 0, fmt.Errorf("parsing version %q: %w", a, err)
	}
	vb, err := semver.NewVersion(b)
	if err != nil {
		return 0, fmt.Errorf("parsing version %q: %w", b, err)
	}
	return va.Compare(vb), nil
}
