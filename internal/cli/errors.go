package cli

import "errors"

// ErrUsage matches every error caused by bad flags, config or input.
var ErrUsage = errors.New("cli usage error")

// Exit codes returned by ExitCode.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

type usageError struct {
	msg string
}

func newUsageError(msg string) error {
	return usageError{msg: msg}
}

func (e usageError) Error() string { return e.msg }

func (e usageError) Is(target error) bool { return target == ErrUsage }

// ExitCode maps an Execute result to a process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrUsage):
		return ExitUsage
	default:
		return ExitError
	}
}
