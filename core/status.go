package core

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// ExitStatus is the result of executing a tree. Zero means success.
type ExitStatus int

const (
	// StatusSuccess is returned by commands that completed without error.
	StatusSuccess ExitStatus = 0
	// StatusFailure is the generic failure status, used for builtin and
	// redirection errors.
	StatusFailure ExitStatus = 1
	// StatusNotExecutable is returned when the verb names a file that can't
	// be executed.
	StatusNotExecutable ExitStatus = 126
	// StatusNotFound is returned when the verb can't be found on the PATH.
	StatusNotFound ExitStatus = 127
	// StatusSignalBase is added to the signal number of a killed child.
	StatusSignalBase ExitStatus = 128

	// ExitShell asks the caller to end the whole session. It is negative so
	// no process exit code can produce it.
	ExitShell ExitStatus = -100
)

// Success reports whether the status is a successful completion.
func (s ExitStatus) Success() bool {
	return s == StatusSuccess
}

func (s ExitStatus) String() string {
	if s == ExitShell {
		return "exit"
	}
	return fmt.Sprintf("%d", int(s))
}

// statusFromState converts a finished process into an ExitStatus.
func statusFromState(state *os.ProcessState) ExitStatus {
	if state == nil {
		return StatusFailure
	}
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return StatusSignalBase + ExitStatus(ws.Signal())
	}
	if code := state.ExitCode(); code >= 0 {
		return ExitStatus(code)
	}
	return StatusFailure
}

// statusFromWait converts the result of exec.Cmd.Wait into an ExitStatus.
// Errors that aren't exit errors are I/O errors copying non-file streams;
// the process still finished.
func statusFromWait(cmd *exec.Cmd, err error) ExitStatus {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return statusFromState(exitErr.ProcessState)
	}
	return statusFromState(cmd.ProcessState)
}
