// Package exitcodes contains the process exit codes used by kiosk.
package exitcodes

// ExitCode is the status the kiosk process ends with.
type ExitCode uint8

// Values follow sysexits(3) where one fits.
const (
	Success        ExitCode = 0
	Generic        ExitCode = 1
	BrowserFailure ExitCode = 69 // EX_UNAVAILABLE
	InvalidConfig  ExitCode = 78 // EX_CONFIG
)
