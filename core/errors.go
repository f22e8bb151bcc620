package core

import "fmt"

// FatalError is returned when the executor can't continue at all, for example
// because no new process or pipe can be created. No further commands run once
// it is returned.
type FatalError struct {
	Op  string
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal: %s: %v", e.Op, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

func fatalf(op string, err error) *FatalError {
	return &FatalError{Op: op, Err: err}
}
