package hotkey

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-rod/rod"
	"github.com/ysmood/gson"
)

const bindingName = "__kioskExitKey"

// listenerScript reports every "x" key release to the binding, with the
// modifier state at that moment.
var listenerScript = fmt.Sprintf(`
if (!window.__kioskExitListener) {
	window.__kioskExitListener = true;
	document.addEventListener('keyup', (e) => {
		if (e.key !== 'x' && e.key !== 'X') return;
		window.%s({ctrl: e.ctrlKey, shift: e.shiftKey, alt: e.altKey, meta: e.metaKey, key: e.key});
	}, true);
}`, bindingName)

// PageBinding catches the exit combination inside the kiosk page itself. The
// listener is reinstalled on every new document, so reloads keep it.
type PageBinding struct {
	page *rod.Page
}

func NewPageBinding(page *rod.Page) *PageBinding {
	return &PageBinding{page: page}
}

func (*PageBinding) Name() string {
	return "page"
}

func (b *PageBinding) Listen(ctx context.Context, trigger func()) error {
	if b.page == nil {
		return ErrUnsupported
	}

	stop, err := b.page.Expose(bindingName, func(payload gson.JSON) (interface{}, error) {
		if isExitCombo(payload) {
			trigger()
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("expose %s: %w", bindingName, err)
	}
	defer func() { _ = stop() }()

	remove, err := b.page.EvalOnNewDocument(listenerScript)
	if err != nil {
		return fmt.Errorf("install key listener: %w", err)
	}
	defer func() { _ = remove() }()

	if _, err := b.page.Eval(`() => {` + listenerScript + `}`); err != nil {
		return fmt.Errorf("install key listener on current document: %w", err)
	}

	<-ctx.Done()
	return nil
}

func isExitCombo(payload gson.JSON) bool {
	return payload.Get("ctrl").Bool() &&
		payload.Get("shift").Bool() &&
		!payload.Get("alt").Bool() &&
		!payload.Get("meta").Bool() &&
		strings.EqualFold(payload.Get("key").Str(), "x")
}
