//go:build linux && !nohotkey

package hotkey

import (
	"context"
	"fmt"

	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgbutil"
	"github.com/jezek/xgbutil/keybind"
)

// x11Combo is Combo in keybind notation.
const x11Combo = "Control-Shift-x"

// Global grabs the exit combination on the X11 root window, so it fires
// whichever window has focus. Without a reachable X display Listen returns
// ErrUnsupported.
type Global struct{}

// NewGlobal returns the system-wide exit source.
func NewGlobal() *Global {
	return &Global{}
}

// Name identifies the source in logs.
func (*Global) Name() string {
	return "global"
}

// Listen grabs the combination and calls trigger on every release until ctx
// is done. Closing the X connection ends the read loop; the grab goes with
// it.
func (*Global) Listen(ctx context.Context, trigger func()) error {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return fmt.Errorf("%w: x11: %v", ErrUnsupported, err)
	}
	conn := xu.Conn()

	keybind.Initialize(xu)
	mods, codes, err := keybind.ParseString(xu, x11Combo)
	if err != nil {
		conn.Close()
		return fmt.Errorf("parse %s: %w", x11Combo, err)
	}
	root := xu.RootWin()
	for _, code := range codes {
		if err := keybind.GrabChecked(xu, root, mods, code); err != nil {
			conn.Close()
			return fmt.Errorf("grab %s: %w", Combo, err)
		}
	}

	stop := context.AfterFunc(ctx, conn.Close)
	defer stop()

	for {
		ev, err := conn.WaitForEvent()
		switch {
		case ev == nil && err == nil:
			return nil
		case err != nil:
			continue
		}
		if rel, ok := ev.(xproto.KeyReleaseEvent); ok && isComboKey(codes, rel.Detail) {
			trigger()
		}
	}
}

func isComboKey(codes []xproto.Keycode, detail xproto.Keycode) bool {
	for _, c := range codes {
		if c == detail {
			return true
		}
	}
	return false
}
