package core

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"syscall"

	"github.com/josephlewis42/treesh/core/logger"
	"github.com/josephlewis42/treesh/core/shell"
	"github.com/josephlewis42/treesh/core/vos"
)

// child is one started side of a node. When nothing could be started, cmd is
// nil and status holds the command failure.
type child struct {
	cmd    *exec.Cmd
	report *os.File
	status ExitStatus
}

// wait blocks until the child exits and releases its status pipe.
func (c *child) wait() (ExitStatus, error) {
	if c.cmd == nil {
		return c.status, nil
	}

	status := statusFromWait(c.cmd, c.cmd.Wait())
	if c.report == nil {
		return status, nil
	}
	defer c.report.Close()

	rep, ok := readReport(c.report)
	switch {
	case !ok:
		return status, nil
	case rep.Fatal != "":
		return StatusFailure, fatalf("subshell", errors.New(rep.Fatal))
	default:
		return ExitStatus(rep.Status), nil
	}
}

// runExternal runs a program in a new process and waits for it.
func (e *Executor) runExternal(s *shell.Simple, depth int) (ExitStatus, error) {
	c, err := e.startProgram(s, e.Streams, depth)
	if err != nil {
		return StatusFailure, err
	}
	return c.wait()
}

// runParallel starts both sides and waits for both, in order.
func (e *Executor) runParallel(left, right shell.Node, depth int) (ExitStatus, ExitStatus, error) {
	lc, err := e.spawn(left, e.Streams, depth)
	if err != nil {
		return StatusFailure, StatusFailure, err
	}
	rc, err := e.spawn(right, e.Streams, depth)
	if err != nil {
		lc.wait()
		return StatusFailure, StatusFailure, err
	}

	return waitBoth(lc, rc)
}

// runPiped connects the standard output of left to the standard input of
// right. The parent's copies of both pipe ends are closed as soon as the
// children have them, otherwise right would never see end of input.
func (e *Executor) runPiped(left, right shell.Node, depth int) (ExitStatus, ExitStatus, error) {
	pr, pw, err := os.Pipe()
	if err != nil {
		return StatusFailure, StatusFailure, fatalf("pipe", err)
	}

	leftStreams := e.Streams
	leftStreams.Stdout = pw
	rightStreams := e.Streams
	rightStreams.Stdin = pr

	lc, err := e.spawn(left, leftStreams, depth)
	if err != nil {
		pr.Close()
		pw.Close()
		return StatusFailure, StatusFailure, err
	}
	rc, err := e.spawn(right, rightStreams, depth)
	pr.Close()
	pw.Close()
	if err != nil {
		lc.wait()
		return StatusFailure, StatusFailure, err
	}

	return waitBoth(lc, rc)
}

func waitBoth(lc, rc *child) (ExitStatus, ExitStatus, error) {
	ls, lerr := lc.wait()
	rs, rerr := rc.wait()
	if lerr != nil {
		return ls, rs, lerr
	}
	return ls, rs, rerr
}

// spawn starts node in a new process with the given streams. Programs are
// started directly; builtins and compound nodes run in a re-executed copy of
// this program.
func (e *Executor) spawn(node shell.Node, streams Streams, depth int) (*child, error) {
	if s, ok := node.(*shell.Simple); ok && !IsBuiltin(s) {
		return e.startProgram(s, streams, depth)
	}
	return e.startSubtree(node, streams, depth)
}

// startProgram applies the node's redirections over streams and starts the
// program named by its verb. The parent's copies of redirected files are
// closed before returning.
func (e *Executor) startProgram(s *shell.Simple, streams Streams, depth int) (*child, error) {
	bound, release, err := streams.Apply(s, e.config.FileMode)
	if err != nil {
		e.Logger.FErrf(streams.Stderr, logger.Red, "%s: %v", s.Verb, err)
		return &child{status: StatusFailure}, nil
	}
	defer release()

	path, err := vos.LookPath(e.OS, s.Verb)
	if err != nil {
		return e.notStarted(s, bound, depth, err), nil
	}

	cmd := &exec.Cmd{
		Path:   path,
		Args:   s.Argv(),
		Stdin:  reader(bound.Stdin),
		Stdout: writer(bound.Stdout),
		Stderr: writer(bound.Stderr),
	}
	e.Events.RunCommand(depth, s.Argv(), path)
	if err := cmd.Start(); err != nil {
		if commandFailure(err) {
			return e.notStarted(s, bound, depth, err), nil
		}
		return nil, fatalf("starting "+s.Verb, err)
	}
	return &child{cmd: cmd}, nil
}

func (e *Executor) notStarted(s *shell.Simple, streams Streams, depth int, err error) *child {
	e.Events.UnknownCommand(depth, s.Argv(), err)
	if errors.Is(err, vos.ErrNotFound) {
		e.Logger.FErrf(streams.Stderr, logger.Red, "%s: command not found", s.Verb)
		return &child{status: StatusNotFound}
	}
	e.Logger.FErrf(streams.Stderr, logger.Red, "%s: %v", s.Verb, unwrapPathError(err))
	return &child{status: StatusNotExecutable}
}

// commandFailure reports whether a start error belongs to the command
// rather than to the system. A missing file here is a missing script
// interpreter; the program itself was already found.
func commandFailure(err error) bool {
	for _, target := range []error{
		fs.ErrPermission,
		fs.ErrNotExist,
		syscall.ENOEXEC,
		syscall.EISDIR,
		syscall.E2BIG,
		syscall.ETXTBSY,
		syscall.ENAMETOOLONG,
		syscall.ELOOP,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func reader(f *os.File) io.Reader {
	if f == nil {
		return nil
	}
	return f
}

func writer(f *os.File) io.Writer {
	if f == nil {
		return nil
	}
	return f
}
