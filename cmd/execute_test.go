package cmd

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kiosk/browser"
	"kiosk/internal/errext/exitcodes"
	"kiosk/internal/hotkey"
)

const (
	helperModeEnv  = "KIOSK_EXECUTE_HELPER"
	launchedMarker = "kiosk-test: launched"
)

// TestExecuteHelperProcess is the child side of the Execute tests. It does
// nothing unless started by helperCommand.
func TestExecuteHelperProcess(t *testing.T) {
	mode := os.Getenv(helperModeEnv)
	if mode == "" {
		return
	}

	args := os.Args
	for i, a := range args {
		if a == "--" {
			args = args[i+1:]
			break
		}
	}

	c := newRootCommand(newLogger())
	if mode == "idle" {
		c.launch = func(context.Context, browser.Options) (kioskSession, error) {
			fmt.Fprintln(os.Stdout, launchedMarker)
			return &fakeSession{}, nil
		}
		c.sources = func(kioskSession) []hotkey.Source { return nil }
	}
	os.Exit(executeWith(c, args))
}

func helperCommand(t *testing.T, mode string, args ...string) *exec.Cmd {
	t.Helper()
	cmd := exec.Command(os.Args[0], append([]string{"-test.run=^TestExecuteHelperProcess$", "--"}, args...)...)
	cmd.Env = append(os.Environ(), helperModeEnv+"="+mode)
	return cmd
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	require.True(t, errors.As(err, &exitErr), "unexpected error %v", err)
	return exitErr.ExitCode()
}

func TestExecuteInterruptExitsZero(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("os.Interrupt cannot be sent to a process on windows")
	}
	t.Parallel()

	cmd := helperCommand(t, "idle", "--url", "https://example.com", "--user-data-dir", t.TempDir())
	stdout, err := cmd.StdoutPipe()
	require.NoError(t, err)
	require.NoError(t, cmd.Start())

	lines := make(chan string, 16)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	deadline := time.After(30 * time.Second)
	waitFor := func(want string) {
		for {
			select {
			case line, ok := <-lines:
				require.True(t, ok, "child stdout closed before %q", want)
				if line == want {
					return
				}
			case <-deadline:
				_ = cmd.Process.Kill()
				t.Fatalf("timed out waiting for %q", want)
			}
		}
	}

	waitFor(launchedMarker)
	require.NoError(t, cmd.Process.Signal(os.Interrupt))
	waitFor("Exiting...")

	for range lines {
	}
	assert.Equal(t, 0, exitCode(t, cmd.Wait()))
}

func TestExecuteMissingDirExitsInvalidConfig(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "profile")
	cmd := helperCommand(t, "real", "--url", "https://example.com", "--user-data-dir", missing, "--no-color")
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr

	code := exitCode(t, cmd.Run())
	assert.Equal(t, int(exitcodes.InvalidConfig), code)
	assert.Contains(t, stderr.String(), "invalid user data directory")
	assert.NoDirExists(t, missing)
}

func TestExecuteHelpExitsZero(t *testing.T) {
	t.Parallel()

	cmd := helperCommand(t, "real", "--help")
	out, err := cmd.CombinedOutput()
	assert.Equal(t, 0, exitCode(t, err), string(out))
	assert.Contains(t, string(out), "--user-data-dir")
}
