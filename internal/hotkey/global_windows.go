//go:build windows && !nohotkey

package hotkey

import (
	"context"
	"fmt"

	xhotkey "golang.design/x/hotkey"
)

// Global registers the exit combination with the Windows hotkey table, so it
// fires whichever window has focus.
type Global struct{}

// NewGlobal returns the system-wide exit source.
func NewGlobal() *Global {
	return &Global{}
}

// Name identifies the source in logs.
func (*Global) Name() string {
	return "global"
}

// Listen calls trigger each time the combination is pressed and released,
// until ctx is done. Unregistering happens in the background; process exit
// drops the registration anyway.
func (*Global) Listen(ctx context.Context, trigger func()) error {
	hk := xhotkey.New([]xhotkey.Modifier{xhotkey.ModCtrl, xhotkey.ModShift}, xhotkey.KeyX)
	if err := hk.Register(); err != nil {
		return fmt.Errorf("register %s: %w", Combo, err)
	}
	defer func() { go func() { _ = hk.Unregister() }() }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-hk.Keydown():
		}
		select {
		case <-ctx.Done():
			return nil
		case <-hk.Keyup():
			trigger()
		}
	}
}
