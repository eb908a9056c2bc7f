// Package supervisor keeps the kiosk page alive: it reloads the page on a
// fixed interval and tears the browser down once an exit is requested.
package supervisor

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultPollInterval    = time.Second
	DefaultRefreshInterval = 24 * time.Hour

	refreshNotice = "Refreshing browser..."
	exitNotice    = "Exiting..."
)

// Page is the single browser page owned by the supervisor.
type Page interface {
	Reload() error
	Close() error
}

// Config tunes a Supervisor. Zero values fall back to the defaults.
type Config struct {
	PollInterval    time.Duration
	RefreshInterval time.Duration

	// Out receives the operator status lines. Defaults to os.Stdout.
	Out    io.Writer
	Logger logrus.FieldLogger

	// Now is the clock; tests replace it.
	Now func() time.Time
}

// Supervisor is the RUNNING -> EXITING loop around one page.
type Supervisor struct {
	page   Page
	cfg    Config
	logger logrus.FieldLogger

	lastRefresh time.Time
	exit        chan struct{}
	exiting     atomic.Bool
}

// New returns a supervisor for page. The refresh clock starts now.
func New(page Page, cfg Config) *Supervisor {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = DefaultRefreshInterval
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Supervisor{
		page:        page,
		cfg:         cfg,
		logger:      logger.WithField("component", "supervisor"),
		lastRefresh: cfg.Now(),
		exit:        make(chan struct{}, 1),
	}
}

// RequestExit asks the loop to stop at its next tick. It never blocks and
// may be called from any goroutine, any number of times.
func (s *Supervisor) RequestExit() {
	select {
	case s.exit <- struct{}{}:
	default:
	}
}

// Exiting reports whether the supervisor has reached the terminal state.
func (s *Supervisor) Exiting() bool {
	return s.exiting.Load()
}

// LastRefresh is the time of the last reload, or of construction.
func (s *Supervisor) LastRefresh() time.Time {
	return s.lastRefresh
}

// Run drives the loop until an exit request or ctx cancellation, then closes
// the page and returns nil. A reload failure is returned as is and leaves
// the page open for the caller.
func (s *Supervisor) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	s.logger.WithFields(logrus.Fields{
		"poll_interval":    s.cfg.PollInterval,
		"refresh_interval": s.cfg.RefreshInterval,
	}).Debug("supervisor running")

	for {
		select {
		case <-ctx.Done():
			s.logger.WithField("reason", context.Cause(ctx)).Debug("interrupted")
			return s.shutdown()
		case <-ticker.C:
			exit, err := s.Tick(s.cfg.Now())
			if err != nil {
				return err
			}
			if exit {
				return s.shutdown()
			}
		}
	}
}

// Tick runs one loop iteration at now: it reports whether an exit was
// requested and otherwise reloads the page if the refresh interval elapsed.
func (s *Supervisor) Tick(now time.Time) (bool, error) {
	if s.exiting.Load() {
		return true, nil
	}
	select {
	case <-s.exit:
		s.exiting.Store(true)
		s.logger.Debug("exit requested")
		return true, nil
	default:
	}

	if now.Sub(s.lastRefresh) < s.cfg.RefreshInterval {
		return false, nil
	}

	fmt.Fprintln(s.cfg.Out, refreshNotice)
	if err := s.page.Reload(); err != nil {
		return false, err
	}
	s.lastRefresh = now
	s.logger.WithField("at", now.Format(time.RFC3339)).Info("page refreshed")
	return false, nil
}

func (s *Supervisor) shutdown() error {
	s.exiting.Store(true)
	fmt.Fprintln(s.cfg.Out, exitNotice)
	if err := s.page.Close(); err != nil {
		s.logger.WithError(err).Warn("closing browser")
	}
	return nil
}
