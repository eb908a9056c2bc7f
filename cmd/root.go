package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-rod/rod"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"kiosk/browser"
	"kiosk/internal/appdirs"
	"kiosk/internal/errext"
	"kiosk/internal/errext/exitcodes"
	"kiosk/internal/hotkey"
	"kiosk/internal/supervisor"
)

type options struct {
	url             string
	userDataDir     string
	refreshInterval time.Duration
	verbose         bool
	logFormat       string
	noColor         bool
}

// kioskSession is what the root command needs from a launched browser.
type kioskSession interface {
	supervisor.Page
	Page() *rod.Page
}

type rootCommand struct {
	opts   options
	logger *logrus.Logger
	stdout io.Writer
	stderr io.Writer
	cmd    *cobra.Command

	launch        func(context.Context, browser.Options) (kioskSession, error)
	sources       func(kioskSession) []hotkey.Source
	confirmCreate func(dir string) bool

	// sourceStopTimeout bounds how long shutdown waits for hotkey sources.
	sourceStopTimeout time.Duration
}

func newRootCommand(logger *logrus.Logger) *rootCommand {
	c := &rootCommand{
		logger: logger,
		stdout: os.Stdout,
		stderr: os.Stderr,
		launch: func(ctx context.Context, opts browser.Options) (kioskSession, error) {
			return browser.Launch(ctx, opts)
		},
		sources:           defaultSources,
		confirmCreate:     confirmCreateInteractive,
		sourceStopTimeout: 2 * time.Second,
	}
	c.cmd = &cobra.Command{
		Use:   "kiosk --url URL --user-data-dir DIR",
		Short: "Show a web page in a kiosk-mode Chromium window",
		Long: `kiosk opens a single web page in a borderless, maximized Chromium window backed by a
persistent profile directory. The page is reloaded periodically and the program exits
when Ctrl+Shift+X is pressed or the process is interrupted.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE:       c.preRunE,
		RunE:          c.run,
	}
	c.cmd.Flags().AddFlagSet(c.flagSet())
	c.cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errext.WithExitCodeIfNone(err, exitcodes.InvalidConfig)
	})
	return c
}

func (c *rootCommand) flagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.SortFlags = false
	flags.StringVar(&c.opts.url, "url", "", "URL of the application (required)")
	flags.StringVar(&c.opts.userDataDir, "user-data-dir", "", "path to the Chromium user data directory, must exist (required)")
	flags.DurationVar(&c.opts.refreshInterval, "refresh-interval", supervisor.DefaultRefreshInterval, "reload the page this often")
	flags.BoolVarP(&c.opts.verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVar(&c.opts.logFormat, "log-format", "text", "log format: text or json")
	flags.BoolVar(&c.opts.noColor, "no-color", false, "disable colored log output")
	return flags
}

func (c *rootCommand) preRunE(_ *cobra.Command, _ []string) error {
	if err := configureLogger(c.logger, c.stderr, c.opts.logFormat, c.opts.verbose, c.opts.noColor); err != nil {
		return errext.WithExitCodeIfNone(err, exitcodes.InvalidConfig)
	}

	var missing []string
	if strings.TrimSpace(c.opts.url) == "" {
		missing = append(missing, "--url")
	}
	if strings.TrimSpace(c.opts.userDataDir) == "" {
		missing = append(missing, "--user-data-dir")
	}
	if len(missing) > 0 {
		return errext.WithExitCodeIfNone(
			errors.New("required flag(s) not set: "+strings.Join(missing, ", ")),
			exitcodes.InvalidConfig,
		)
	}
	if c.opts.refreshInterval <= 0 {
		return errext.WithExitCodeIfNone(
			errors.New("--refresh-interval must be positive"),
			exitcodes.InvalidConfig,
		)
	}
	return nil
}

func (c *rootCommand) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	dir, err := resolveUserDataDir(c.opts.userDataDir, c.confirmCreate)
	if err != nil {
		return err
	}
	downloads, err := appdirs.DownloadsDir()
	if err != nil {
		c.logger.WithError(err).Warn("downloads will use the browser default")
		downloads = ""
	}

	session, err := c.launch(ctx, browser.Options{
		URL:          c.opts.url,
		UserDataDir:  dir,
		DownloadsDir: downloads,
		Logger:       c.logger,
	})
	if err != nil {
		return err
	}
	defer func() { _ = session.Close() }()

	sup := supervisor.New(session, supervisor.Config{
		RefreshInterval: c.opts.refreshInterval,
		Out:             c.stdout,
		Logger:          c.logger,
	})

	srcCtx, cancel := context.WithCancel(ctx)
	wait := hotkey.Start(srcCtx, c.logger, sup.RequestExit, c.sources(session)...)
	defer func() {
		cancel()
		if !hotkey.WaitTimeout(wait, c.sourceStopTimeout) {
			c.logger.WithField("timeout", c.sourceStopTimeout).Debug("hotkey sources still stopping, not waiting")
		}
	}()

	return sup.Run(ctx)
}

func defaultSources(s kioskSession) []hotkey.Source {
	return []hotkey.Source{
		hotkey.NewGlobal(),
		hotkey.NewPageBinding(s.Page()),
		hotkey.NewTerminal(),
	}
}

// Execute runs the kiosk command and exits the process with the code that
// matches the outcome.
func Execute() {
	os.Exit(executeWith(newRootCommand(newLogger()), os.Args[1:]))
}

// executeWith runs c with args until it finishes or the process is
// interrupted, and returns the process exit code.
func executeWith(c *rootCommand, args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c.cmd.SetArgs(args)
	err := c.cmd.ExecuteContext(ctx)
	if err == nil {
		return int(exitcodes.Success)
	}

	msg, fields := errext.Format(err)
	c.logger.WithFields(fields).Error(msg)
	return int(errext.ExitCodeOf(err))
}
