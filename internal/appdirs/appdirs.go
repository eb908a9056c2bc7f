package appdirs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"

	"kiosk/internal/errext"
	"kiosk/internal/errext/exitcodes"
)

// ErrInvalidUserDataDir is returned when the profile directory is missing or
// is not a directory.
var ErrInvalidUserDataDir = errors.New("invalid user data directory")

// ResolveUserDataDir expands a leading "~" and cleans raw. It does not touch
// the filesystem.
func ResolveUserDataDir(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", invalidConfig(fmt.Errorf("%w: empty path", ErrInvalidUserDataDir))
	}

	expanded, err := homedir.Expand(raw)
	if err != nil {
		return "", invalidConfig(fmt.Errorf("%w: %s: %v", ErrInvalidUserDataDir, raw, err))
	}

	return filepath.Clean(expanded), nil
}

// RequireDir fails with a configuration error unless path is an existing
// directory.
func RequireDir(path string) error {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return errext.WithHint(
			invalidConfig(fmt.Errorf("%w: %s does not exist", ErrInvalidUserDataDir, path)),
			"create the profile directory before starting the kiosk",
		)
	case err != nil:
		return invalidConfig(fmt.Errorf("%w: %s: %v", ErrInvalidUserDataDir, path, err))
	case !info.IsDir():
		return invalidConfig(fmt.Errorf("%w: %s is not a directory", ErrInvalidUserDataDir, path))
	}
	return nil
}

// DownloadsDir is where the browser saves downloads: the process working
// directory.
func DownloadsDir() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("determine downloads dir: %w", err)
	}
	return dir, nil
}

func EnsureDir(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("ensure dir: empty path")
	}
	return os.MkdirAll(path, 0o755)
}

func invalidConfig(err error) error {
	return errext.WithExitCodeIfNone(err, exitcodes.InvalidConfig)
}
