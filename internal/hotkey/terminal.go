package hotkey

import (
	"context"
	"fmt"
	"os"

	"github.com/eiannone/keyboard"
	"golang.org/x/term"
)

// Terminal reads the controlling terminal. Terminals cannot report Shift
// together with Ctrl, so Ctrl+X stands in for the exit combination. The
// terminal is in raw mode while listening, so Ctrl+C is handled here too.
type Terminal struct{}

func NewTerminal() *Terminal {
	return &Terminal{}
}

func (*Terminal) Name() string {
	return "terminal"
}

func (*Terminal) Listen(ctx context.Context, trigger func()) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return ErrUnsupported
	}

	events, err := keyboard.GetKeys(8)
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	defer keyboard.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.Err != nil {
				return fmt.Errorf("read terminal: %w", ev.Err)
			}
			if isTerminalExitKey(ev.Key) {
				trigger()
			}
		}
	}
}

func isTerminalExitKey(k keyboard.Key) bool {
	return k == keyboard.KeyCtrlX || k == keyboard.KeyCtrlC
}
