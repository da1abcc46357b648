//go:build !linux && !windows

package installer

import "context"

func registerFileTypes(context.Context, string) error {
	return errRegistrationUnsupported
}

func unregisterFileTypes(context.Context) error {
	return nil
}
