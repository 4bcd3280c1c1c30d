package main

import (
	"errors"
	"fmt"

	"github.com/d2verb/zokuzoku/internal/commands"
	"github.com/d2verb/zokuzoku/internal/ipc"
)

// Exit codes for CLI commands.
const (
	exitSuccess            = 0
	exitError              = 1
	exitHachimiUnreachable = 2
	exitHachimiRejected    = 3
	exitPrecondition       = 4
	exitDownloadFailed     = 5
)

// ExitError represents an error that should cause the process to exit with a specific code.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string { return e.Message }

func errHachimiUnreachable(url string) *ExitError {
	return &ExitError{
		Code:    exitHachimiUnreachable,
		Message: fmt.Sprintf("Could not reach Hachimi at %s.\nIs the game running with Hachimi's IPC enabled?", url),
	}
}

func errHachimiTimeout(url string) *ExitError {
	return &ExitError{
		Code:    exitHachimiUnreachable,
		Message: fmt.Sprintf("Hachimi at %s did not respond in time.", url),
	}
}

func errHachimiRejected(message string) *ExitError {
	return &ExitError{
		Code:    exitHachimiRejected,
		Message: message,
	}
}

func errPrecondition(message string) *ExitError {
	return &ExitError{
		Code:    exitPrecondition,
		Message: message,
	}
}

func errDownloadFailed() *ExitError {
	return &ExitError{
		Code:    exitDownloadFailed,
		Message: "",
	}
}

// mapCommandError converts command and IPC errors to user-facing exit errors.
// url is the Hachimi endpoint, used in connection messages.
func mapCommandError(err error, url string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, commands.ErrManualActivation):
		return errPrecondition(err.Error())
	case ipc.IsTimeout(err):
		return errHachimiTimeout(url)
	case ipc.IsTransport(err):
		return errHachimiUnreachable(url)
	case ipc.IsRemote(err):
		return errHachimiRejected(err.Error())
	case ipc.IsHTTP(err), ipc.IsDecode(err):
		return errHachimiRejected(fmt.Sprintf("Unexpected response from Hachimi: %v", err))
	default:
		return err
	}
}
