package core

import (
	"sort"

	"github.com/josephlewis42/treesh/core/shell"
	"github.com/josephlewis42/treesh/core/vos"
	"github.com/pborman/getopt/v2"
)

// AllBuiltins holds a list of all registered shell builtins, keyed by verb.
// Variable assignment is recognized by shape rather than by name and isn't
// listed here.
var AllBuiltins = make(map[string]Builtin)

// Builtin is a command that runs inside the executor's own process.
type Builtin interface {
	Main(e *Executor, args []string) ExitStatus
}

type BuiltinFunc func(e *Executor, args []string) ExitStatus

func (f BuiltinFunc) Main(e *Executor, args []string) ExitStatus {
	return f(e, args)
}

var _ Builtin = (BuiltinFunc)(nil)

// BuiltinNames returns the registered verbs in sorted order.
func BuiltinNames() []string {
	var names []string
	for name := range AllBuiltins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// lookupBuiltin finds the builtin for a simple command: a registered verb,
// or NAME=value with no arguments.
func lookupBuiltin(s *shell.Simple) (Builtin, bool) {
	if b, ok := AllBuiltins[s.Verb]; ok {
		return b, true
	}
	if len(s.Args) == 0 {
		if _, _, ok := vos.SplitAssignment(s.Verb); ok {
			return BuiltinFunc(Assign), true
		}
	}
	return nil, false
}

// IsBuiltin reports whether s runs in the executor's process.
func IsBuiltin(s *shell.Simple) bool {
	_, ok := lookupBuiltin(s)
	return ok
}

// runBuiltin binds the node's redirections onto the executor's streams for
// the duration of the builtin. The original streams are back in place and
// every opened file closed when it returns.
func (e *Executor) runBuiltin(b Builtin, s *shell.Simple, depth int) ExitStatus {
	bound, release, err := e.Streams.Apply(s, e.config.FileMode)
	if err != nil {
		e.diag("%s: %v", s.Verb, err)
		e.Events.Builtin(depth, s.Argv(), int(StatusFailure))
		return StatusFailure
	}

	saved, savedStderr := e.Streams, e.Logger.Stderr
	e.Streams, e.Logger.Stderr = bound, bound.Stderr
	defer func() {
		e.Streams, e.Logger.Stderr = saved, savedStderr
		release()
	}()

	status := b.Main(e, s.Argv())
	e.Events.Builtin(depth, s.Argv(), int(status))
	return status
}

// Cd is the cd shell builtin.
func Cd(e *Executor, args []string) ExitStatus {
	opts := getopt.New()
	opts.SetProgram(args[0])
	opts.SetParameters("[dir]")
	opts.Bool('L', "follow symbolic links (default)")
	physical := opts.Bool('P', "resolve symbolic links before changing directory")

	if err := opts.Getopt(args, nil); err != nil {
		e.diag("%s: %v", args[0], err)
		opts.PrintUsage(e.Streams.Stderr)
		return StatusFailure
	}

	var dir string
	switch operands := opts.Args(); len(operands) {
	case 0:
		home, err := e.OS.UserHomeDir()
		if err != nil || home == "" {
			e.diag("%s: HOME not set", args[0])
			return StatusFailure
		}
		dir = home
	case 1:
		dir = operands[0]
	default:
		e.diag("%s: too many arguments", args[0])
		return StatusFailure
	}

	if *physical {
		resolved, err := vos.Realpath(e.OS, dir)
		if err != nil {
			e.diag("%s: %v", args[0], unwrapPathError(err))
			return StatusFailure
		}
		dir = resolved
	}

	if err := e.OS.Chdir(dir); err != nil {
		e.diag("%s: %s: %v", args[0], dir, unwrapPathError(err))
		return StatusFailure
	}
	return StatusSuccess
}

// Exit ends the session.
func Exit(e *Executor, args []string) ExitStatus {
	return ExitShell
}

// Assign sets NAME=value in the environment for this process and every
// process it starts afterwards.
func Assign(e *Executor, args []string) ExitStatus {
	name, value, ok := vos.SplitAssignment(args[0])
	if !ok {
		e.diag("%s: not a valid assignment", args[0])
		return StatusFailure
	}
	if err := e.OS.Setenv(name, value); err != nil {
		e.diag("%s: %v", name, err)
		return StatusFailure
	}
	return StatusSuccess
}

func init() {
	AllBuiltins["cd"] = BuiltinFunc(Cd)
	AllBuiltins["exit"] = BuiltinFunc(Exit)
	AllBuiltins["quit"] = BuiltinFunc(Exit)
}

