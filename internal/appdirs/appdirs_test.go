package appdirs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kiosk/internal/errext"
	"kiosk/internal/errext/exitcodes"
)

func TestResolveUserDataDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })

	tests := []struct {
		name   string
		input  string
		expect string
		error  bool
	}{
		{name: "empty", input: "", error: true},
		{name: "blank", input: "   ", error: true},
		{name: "tilde only", input: "~", expect: home},
		{name: "tilde prefix", input: "~/kiosk/profile", expect: filepath.Join(home, "kiosk", "profile")},
		{name: "absolute", input: "/var/lib/kiosk/../kiosk", expect: filepath.Clean("/var/lib/kiosk")},
		{name: "relative", input: "profile/", expect: "profile"},
		{name: "other user", input: "~bob/profile", error: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ResolveUserDataDir(tc.input)
			if tc.error {
				require.ErrorIs(t, err, ErrInvalidUserDataDir)
				assert.Equal(t, exitcodes.InvalidConfig, errext.ExitCodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expect, got)
		})
	}
}

func TestRequireDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, RequireDir(dir))

	missing := filepath.Join(dir, "missing")
	err := RequireDir(missing)
	require.ErrorIs(t, err, ErrInvalidUserDataDir)
	assert.Equal(t, exitcodes.InvalidConfig, errext.ExitCodeOf(err))
	_, fields := errext.Format(err)
	assert.Contains(t, fields, "hint")
	assert.NoDirExists(t, missing, "RequireDir must not create the directory")

	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
	err = RequireDir(file)
	require.ErrorIs(t, err, ErrInvalidUserDataDir)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestEnsureDirIdempotent(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(dir))
	require.NoError(t, EnsureDir(dir))
	assert.DirExists(t, dir)

	assert.Error(t, EnsureDir(" "))
}

func TestDownloadsDirIsWorkingDir(t *testing.T) {
	t.Parallel()

	wd, err := os.Getwd()
	require.NoError(t, err)
	got, err := DownloadsDir()
	require.NoError(t, err)
	assert.Equal(t, wd, got)
}
