package cmd

import (
	"errors"
	"fmt"
)

// Exit codes.
// These match the expectations of shell scripts:
//
//	0 = selection made (use the result)
//	1 = cancelled by user, or a command failed
//	2 = fallback (no TTY, TERM=dumb, terminal too narrow, picker error)
const (
	exitSuccess   = 0
	exitCancelled = 1
	exitFallback  = 2
)

// ExitError carries a process exit code out of a command. A nil Err means
// the exit is silent.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode maps an Execute error to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return exitCancelled
}

// Silent reports whether err should exit without a message.
func Silent(err error) bool {
	var ee *ExitError
	return errors.As(err, &ee) && ee.Err == nil
}

func fallback(err error) error {
	return &ExitError{Code: exitFallback, Err: err}
}
