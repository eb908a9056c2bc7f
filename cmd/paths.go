package cmd

import (
	"errors"
	"fmt"
	"os"

	survey "github.com/AlecAivazis/survey/v2"
	"golang.org/x/term"

	"kiosk/internal/appdirs"
)

// resolveUserDataDir expands raw and requires it to be an existing
// directory. A missing directory is only created when confirm says so.
func resolveUserDataDir(raw string, confirm func(dir string) bool) (string, error) {
	dir, err := appdirs.ResolveUserDataDir(raw)
	if err != nil {
		return "", err
	}

	if _, statErr := os.Stat(dir); errors.Is(statErr, os.ErrNotExist) && confirm != nil && confirm(dir) {
		if err := appdirs.EnsureDir(dir); err != nil {
			return "", fmt.Errorf("create user data directory: %w", err)
		}
	}

	if err := appdirs.RequireDir(dir); err != nil {
		return "", err
	}
	return dir, nil
}

// confirmCreateInteractive asks the operator before creating dir. Without a
// terminal on both ends it declines.
func confirmCreateInteractive(dir string) bool {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return false
	}
	create := false
	if err := survey.AskOne(&survey.Confirm{
		Message: fmt.Sprintf("User data directory %s does not exist. Create it?", dir),
		Default: false,
	}, &create); err != nil {
		return false
	}
	return create
}
