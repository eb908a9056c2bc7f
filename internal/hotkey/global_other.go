//go:build !(linux || windows) || nohotkey

package hotkey

import "context"

// Global is unavailable in this build; the page and terminal sources still
// work.
type Global struct{}

// NewGlobal returns a source whose Listen always reports ErrUnsupported.
func NewGlobal() *Global {
	return &Global{}
}

// Name identifies the source in logs.
func (*Global) Name() string {
	return "global"
}

// Listen returns ErrUnsupported.
func (*Global) Listen(context.Context, func()) error {
	return ErrUnsupported
}
