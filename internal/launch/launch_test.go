package launch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingInstaller counts calls and returns canned results.
type recordingInstaller struct {
	installed  bool
	checkErr   error
	setupErr   error
	installErr error

	checkCalls   int
	setupCalls   int
	installCalls []string
}

func (r *recordingInstaller) CheckInstalled(context.Context) (bool, error) {
	r.checkCalls++
	return r.installed, r.checkErr
}

func (r *recordingInstaller) RunFirstTimeSetup(context.Context) error {
	r.setupCalls++
	return r.setupErr
}

func (r *recordingInstaller) InstallFile(_ context.Context, path string) error {
	r.installCalls = append(r.installCalls, path)
	return r.installErr
}

func TestDispatch_NoArgsNotInstalled(t *testing.T) {
	inst := &recordingInstaller{installed: false}

	res := Dispatch(testContext(t), NoFile(), inst)

	assert.Equal(t, OutcomeSetupCompleted, res.Outcome)
	assert.Equal(t, 1, inst.checkCalls)
	assert.Equal(t, 1, inst.setupCalls, "setup runs exactly once")
	assert.Empty(t, inst.installCalls)
	assert.Equal(t, ExitOK, res.ExitCode())
}

func TestDispatch_NoArgsAlreadyInstalled(t *testing.T) {
	inst := &recordingInstaller{installed: true}

	res := Dispatch(testContext(t), NoFile(), inst)

	assert.Equal(t, OutcomeAlreadyInstalled, res.Outcome)
	assert.Zero(t, inst.setupCalls, "setup never runs when installed")
	assert.Empty(t, inst.installCalls)
	assert.Equal(t, ExitOK, res.ExitCode())
}

func TestDispatch_FileSupplied(t *testing.T) {
	tests := []struct {
		name        string
		installErr  error
		wantOutcome Outcome
		wantExit    int
	}{
		{"install succeeds", nil, OutcomeFileInstalled, ExitOK},
		{"install fails", errors.New("corrupt archive"), OutcomeFileInstallFailed, ExitFileInstallFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// installed=false would trigger setup if the file branch leaked into it
			inst := &recordingInstaller{installed: false, installErr: tt.installErr}

			res := Dispatch(testContext(t), WithFile("/tmp/mod.zip"), inst)

			assert.Equal(t, []string{"/tmp/mod.zip"}, inst.installCalls, "InstallFile called exactly once with the argument")
			assert.Zero(t, inst.checkCalls, "install state is not consulted")
			assert.Zero(t, inst.setupCalls, "setup never runs for a file launch")
			assert.Equal(t, tt.wantOutcome, res.Outcome)
			assert.Equal(t, "/tmp/mod.zip", res.Path)
			assert.Equal(t, tt.wantExit, res.ExitCode())
			if tt.installErr != nil {
				require.ErrorIs(t, res.Err, tt.installErr)
			}
		})
	}
}

func TestDispatch_SetupFails(t *testing.T) {
	setupErr := errors.New("disk full")
	inst := &recordingInstaller{setupErr: setupErr}

	res := Dispatch(testContext(t), NoFile(), inst)

	assert.Equal(t, OutcomeSetupFailed, res.Outcome)
	require.ErrorIs(t, res.Err, setupErr)
	assert.Equal(t, ExitSetupFailed, res.ExitCode())
	assert.False(t, res.Succeeded())
}

func TestDispatch_CheckErrorTreatedAsNotInstalled(t *testing.T) {
	inst := &recordingInstaller{installed: true, checkErr: errors.New("permission denied")}

	res := Dispatch(testContext(t), NoFile(), inst)

	assert.Equal(t, OutcomeSetupCompleted, res.Outcome)
	assert.Equal(t, 1, inst.setupCalls)
}

func TestFromArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantPath string
		wantOK   bool
	}{
		{"no args", nil, "", false},
		{"blank arg", []string{"  "}, "", false},
		{"one file", []string{"/tmp/mod.zip"}, "/tmp/mod.zip", true},
		{"relative path", []string{"palettes/sunset.mxpalette"}, "palettes/sunset.mxpalette", true},
		{"first wins", []string{"a.mxmod", "b.mxmod"}, "a.mxmod", true},
		{"skips leading blank", []string{"", "b.mxmusic"}, "b.mxmusic", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, ok := FromArgs(tt.args).SuppliedFile()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantPath, path)
		})
	}
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		outcome  Outcome
		str      string
		exitCode int
	}{
		{OutcomeFileInstalled, "file_installed", ExitOK},
		{OutcomeFileInstallFailed, "file_install_failed", ExitFileInstallFailed},
		{OutcomeSetupCompleted, "setup_completed", ExitOK},
		{OutcomeSetupFailed, "setup_failed", ExitSetupFailed},
		{OutcomeAlreadyInstalled, "already_installed", ExitOK},
		{Outcome(42), "outcome(42)", ExitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.str, func(t *testing.T) {
			assert.Equal(t, tt.str, tt.outcome.String())
			assert.Equal(t, tt.exitCode, tt.outcome.ExitCode())
		})
	}
}
