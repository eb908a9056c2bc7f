// Package errext attaches a process exit code and an operator hint to
// errors, so the command layer can decide how the process ends without
// knowing where the error came from.
package errext

import (
	"errors"

	"kiosk/internal/errext/exitcodes"
)

// annotated decorates an error; an empty hint or zero code means "not set
// at this layer".
type annotated struct {
	err  error
	code exitcodes.ExitCode
	hint string
}

func (a *annotated) Error() string { return a.err.Error() }
func (a *annotated) Unwrap() error { return a.err }

// WithExitCodeIfNone tags err with code unless something in its chain is
// already tagged. A nil error stays nil.
func WithExitCodeIfNone(err error, code exitcodes.ExitCode) error {
	if err == nil {
		return nil
	}
	if _, ok := exitCode(err); ok {
		return err
	}
	return &annotated{err: err, code: code}
}

// WithHint adds an operator hint to err. The newest hint comes first when
// the chain already carries one.
func WithHint(err error, hint string) error {
	if err == nil {
		return nil
	}
	return &annotated{err: err, hint: hint}
}

// ExitCodeOf returns the exit code err was tagged with: exitcodes.Success
// for nil and exitcodes.Generic when untagged.
func ExitCodeOf(err error) exitcodes.ExitCode {
	if err == nil {
		return exitcodes.Success
	}
	if code, ok := exitCode(err); ok {
		return code
	}
	return exitcodes.Generic
}

// Format returns the error text and the log fields that should accompany it.
func Format(err error) (string, map[string]interface{}) {
	if err == nil {
		return "", nil
	}
	fields := make(map[string]interface{})
	if hint := hints(err); hint != "" {
		fields["hint"] = hint
	}
	return err.Error(), fields
}

func exitCode(err error) (exitcodes.ExitCode, bool) {
	for a := (*annotated)(nil); errors.As(err, &a); err = a.err {
		if a.code != 0 {
			return a.code, true
		}
	}
	return 0, false
}

func hints(err error) string {
	var out string
	for a := (*annotated)(nil); errors.As(err, &a); err = a.err {
		if a.hint == "" {
			continue
		}
		if out != "" {
			out += "; "
		}
		out += a.hint
	}
	return out
}
