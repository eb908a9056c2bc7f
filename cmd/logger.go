package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var stderrTTY = isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())

func newLogger() *logrus.Logger {
	return &logrus.Logger{
		Out:       colorable.NewColorableStderr(),
		Formatter: new(logrus.TextFormatter),
		Hooks:     make(logrus.LevelHooks),
		Level:     logrus.InfoLevel,
	}
}

// configureLogger applies the logging flags to logger.
func configureLogger(logger *logrus.Logger, out io.Writer, format string, verbose, noColor bool) error {
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	if noColor {
		out = colorable.NewNonColorable(out)
	}
	logger.SetOutput(out)

	switch format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{ForceColors: stderrTTY && !noColor, DisableColors: noColor})
	default:
		return fmt.Errorf("unsupported log format %q", format)
	}
	logger.Debugf("logger format: %s", format)
	return nil
}
