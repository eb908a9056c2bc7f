package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/defaults"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/sirupsen/logrus"

	"kiosk/internal/appdirs"
	"kiosk/internal/errext"
	"kiosk/internal/errext/exitcodes"
)

// ErrEmptyURL is returned by Launch when no target URL was given.
var ErrEmptyURL = errors.New("target url is empty")

// inspectorEnv is read by rod to enable its trace overlay and devtools.
const inspectorEnv = "rod"

// Options controls how the kiosk browser is started.
type Options struct {
	// URL is navigated once the page is open. Passed through verbatim.
	URL string

	// UserDataDir is the persistent profile directory. It must already exist.
	UserDataDir string

	// DownloadsDir receives downloads; empty keeps the browser default.
	DownloadsDir string

	// Bin overrides the browser executable; empty looks one up on the system.
	Bin string

	Logger logrus.FieldLogger
}

// kioskFlags is the fixed launch contract with Chromium.
var kioskFlags = []struct {
	name   flags.Flag
	values []string
}{
	{"disable-dev-shm-usage", nil},
	{"disable-blink-features", []string{"AutomationControlled"}},
	{"disable-infobars", nil},
	{"start-maximized", nil},
	{"no-sandbox", nil},
	{"kiosk", nil},
}

// Session is the running kiosk browser and its single page.
type Session struct {
	url      string
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	logger   logrus.FieldLogger

	closeOnce sync.Once
	closeErr  error
}

// Launch starts Chromium against opts.UserDataDir in kiosk mode, opens one
// page and navigates it to opts.URL. Configuration problems are reported
// before any browser process is started.
func Launch(ctx context.Context, opts Options) (*Session, error) {
	if strings.TrimSpace(opts.URL) == "" {
		return nil, errext.WithExitCodeIfNone(ErrEmptyURL, exitcodes.InvalidConfig)
	}
	if err := appdirs.RequireDir(opts.UserDataDir); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	suppressInspector()

	bin := opts.Bin
	if bin == "" {
		path, found := launcher.LookPath()
		if !found {
			return nil, browserFailure(fmt.Errorf("browser executable path not found"))
		}
		bin = path
	}

	l := newLauncher(bin, opts.UserDataDir)
	logger.WithFields(logrus.Fields{
		"bin":           bin,
		"user_data_dir": opts.UserDataDir,
	}).Debug("launching browser")

	controlURL, err := l.Launch()
	if err != nil {
		return nil, browserFailure(fmt.Errorf("failed to launch browser: %w", err))
	}

	b := rod.New().ControlURL(controlURL).Trace(false).NoDefaultDevice()
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, browserFailure(fmt.Errorf("failed to connect to browser: %w", err))
	}

	s := &Session{url: opts.URL, launcher: l, browser: b, logger: logger}

	if opts.DownloadsDir != "" {
		err := proto.BrowserSetDownloadBehavior{
			Behavior:     proto.BrowserSetDownloadBehaviorBehaviorAllow,
			DownloadPath: opts.DownloadsDir,
		}.Call(b)
		if err != nil {
			logger.WithError(err).Warn("could not set downloads directory")
		}
	}

	page, err := stealth.Page(b)
	if err != nil {
		_ = s.Close()
		return nil, browserFailure(fmt.Errorf("failed to open page: %w", err))
	}
	s.page = page
	watchPage(page, logger)

	if err := page.Context(ctx).Navigate(opts.URL); err != nil {
		_ = s.Close()
		return nil, browserFailure(fmt.Errorf("navigate %s: %w", opts.URL, err))
	}
	if err := page.Context(ctx).WaitLoad(); err != nil {
		_ = s.Close()
		return nil, browserFailure(fmt.Errorf("wait for %s to load: %w", opts.URL, err))
	}
	logger.WithField("url", opts.URL).Info("kiosk page loaded")

	return s, nil
}

func newLauncher(bin, userDataDir string) *launcher.Launcher {
	l := launcher.New().
		Bin(bin).
		UserDataDir(userDataDir).
		Headless(false).
		Devtools(false).
		Delete("enable-automation")
	for _, f := range kioskFlags {
		l = l.Set(f.name, f.values...)
	}
	return l
}

// suppressInspector turns off rod's trace overlay, slow motion and devtools,
// whatever the environment asked for.
func suppressInspector() {
	_ = os.Setenv(inspectorEnv, "")
	defaults.Reset()
}

// URL returns the address the session was launched with.
func (s *Session) URL() string {
	return s.url
}

// Page returns the kiosk page.
func (s *Session) Page() *rod.Page {
	return s.page
}

// Reload reloads the current page and waits for it to load.
func (s *Session) Reload() error {
	if err := s.page.Reload(); err != nil {
		return browserFailure(fmt.Errorf("reload: %w", err))
	}
	if err := s.page.WaitLoad(); err != nil {
		return browserFailure(fmt.Errorf("wait for reload: %w", err))
	}
	return nil
}

// Close shuts the browser down. Safe to call more than once. The profile
// directory is left in place.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if err := s.browser.Close(); err != nil {
			s.logger.WithError(err).Debug("browser close failed, killing process")
			s.launcher.Kill()
			s.closeErr = err
		}
	})
	return s.closeErr
}

func browserFailure(err error) error {
	return errext.WithExitCodeIfNone(err, exitcodes.BrowserFailure)
}
