// Package hotkey turns operator key presses into exit requests.
//
// Each Source watches one input channel (the desktop, the kiosk page, the
// controlling terminal) for the exit combination and calls a trigger func
// when it is pressed and released. Sources never block on the trigger.
package hotkey

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Combo is the exit combination every source listens for.
const Combo = "ctrl+shift+x"

// ErrUnsupported is returned by Listen when the source cannot work in the
// current environment.
var ErrUnsupported = errors.New("hotkey source not supported here")

// Source delivers exit requests by calling trigger until ctx is done.
type Source interface {
	Name() string
	Listen(ctx context.Context, trigger func()) error
}

// Start runs every source in its own goroutine. A source that fails is logged
// and dropped; the others keep running. The returned func blocks until all
// sources have returned, which happens once ctx is done.
func Start(ctx context.Context, logger logrus.FieldLogger, trigger func(), sources ...Source) (wait func()) {
	var wg sync.WaitGroup
	for _, src := range sources {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()
			log := logger.WithField("source", src.Name())
			log.Debugf("listening for %s", Combo)

			err := src.Listen(ctx, func() {
				log.Info("exit hotkey pressed")
				trigger()
			})
			switch {
			case err == nil:
			case errors.Is(err, ErrUnsupported):
				log.Debug("hotkey source unavailable")
			default:
				log.WithError(err).Warn("hotkey source stopped")
			}
		}(src)
	}
	return wg.Wait
}

// WaitTimeout runs wait and reports whether it returned within d. A source
// stuck in cleanup keeps its goroutine, never the caller.
func WaitTimeout(wait func(), d time.Duration) bool {
	done := make(chan struct{})
	go func() {
		wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(d):
		return false
	}
}
