package core

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/josephlewis42/treesh/core/shell"
)

// Streams is a standard stream table: the files a command reads from and
// writes to.
type Streams struct {
	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File
}

// StdStreams returns the process's own standard streams.
func StdStreams() Streams {
	return Streams{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// RedirectError is returned when a redirection target can't be opened.
type RedirectError struct {
	Path string
	Err  error
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, unwrapPathError(e.Err))
}

func (e *RedirectError) Unwrap() error {
	return e.Err
}

func unwrapPathError(err error) error {
	if pe, ok := err.(*os.PathError); ok {
		return pe.Err
	}
	return err
}

// Apply binds the redirections of s on top of the stream table, in the order
// stdin, stdout, stderr. The receiver is never modified.
//
// The returned release func closes every file Apply opened. It must be
// called once the streams are no longer needed, including when the command
// using them failed. On error nothing is left open.
func (st Streams) Apply(s *shell.Simple, perm os.FileMode) (Streams, func(), error) {
	out := st
	var opened []*os.File
	release := func() {
		for _, f := range opened {
			f.Close()
		}
		opened = nil
	}

	open := func(r *shell.Redirection, flag int) (*os.File, error) {
		f, err := os.OpenFile(r.Path, flag, perm)
		if err != nil {
			release()
			return nil, &RedirectError{Path: r.Path, Err: err}
		}
		opened = append(opened, f)
		return f, nil
	}

	if s.Stdin != nil {
		f, err := open(s.Stdin, os.O_RDONLY)
		if err != nil {
			return st, func() {}, err
		}
		out.Stdin = f
	}

	if s.Stdout != nil {
		f, err := open(s.Stdout, outputFlags(s.Stdout.Mode))
		if err != nil {
			return st, func() {}, err
		}
		out.Stdout = f
	}

	if s.Stderr != nil {
		if s.Stdout != nil && samePath(s.Stdout.Path, s.Stderr.Path) {
			// Merged onto the file already bound to stdout.
			out.Stderr = out.Stdout
		} else {
			f, err := open(s.Stderr, outputFlags(s.Stderr.Mode))
			if err != nil {
				return st, func() {}, err
			}
			out.Stderr = f
		}
	}

	return out, release, nil
}

func outputFlags(mode shell.RedirectMode) int {
	if mode == shell.Append {
		return os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}
	return os.O_WRONLY | os.O_CREATE | os.O_TRUNC
}

func samePath(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}
