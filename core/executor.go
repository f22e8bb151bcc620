package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/josephlewis42/treesh/core/logger"
	"github.com/josephlewis42/treesh/core/shell"
	"github.com/josephlewis42/treesh/core/vos"
)

// Config holds the settings an Executor is created with. They are passed on
// to re-executed children.
type Config struct {
	// Verbose traces every executed node on stderr.
	Verbose bool
	// Color enables colored diagnostics.
	Color bool
	// EventLogPath is a file to append JSON line events to. Empty disables
	// the event log.
	EventLogPath string
	// SessionID ties together events of one session across processes. A new
	// one is generated if empty.
	SessionID string
	// FileMode is used when redirections create files. Zero means 0666.
	FileMode os.FileMode
}

// Executor evaluates command trees.
//
// An Executor is not safe for concurrent use: builtins change the process's
// environment and working directory, and temporarily rebind Streams.
type Executor struct {
	// OS is where builtins read and write the environment and working
	// directory. It is also used for PATH lookups.
	OS vos.VOS
	// Streams are the executor's own standard streams. Children inherit them
	// unless a redirection or pipe says otherwise.
	Streams Streams
	// Logger prints diagnostics and traces.
	Logger *logger.Logger
	// Events records executed commands.
	Events *logger.SessionLogger

	config   Config
	self     string
	eventLog *os.File
}

// New creates an Executor bound to the running process.
func New(cfg Config) (*Executor, error) {
	if cfg.FileMode == 0 {
		cfg.FileMode = 0666
	}

	self, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("locating executable: %w", err)
	}

	e := &Executor{
		OS:      vos.NewHost(),
		Streams: StdStreams(),
		config:  cfg,
		self:    self,
	}
	e.Logger = &logger.Logger{Stderr: e.Streams.Stderr, Verbose: cfg.Verbose, Color: cfg.Color}

	events := logger.NopEventLogger()
	if cfg.EventLogPath != "" {
		// Children re-open the log after builtins may have changed directory.
		if e.config.EventLogPath, err = filepath.Abs(cfg.EventLogPath); err != nil {
			return nil, fmt.Errorf("opening event log: %w", err)
		}
		e.eventLog, err = os.OpenFile(e.config.EventLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return nil, fmt.Errorf("opening event log: %w", err)
		}
		events = logger.NewJSONLinesLogRecorder(e.eventLog)
	}
	if cfg.SessionID == "" {
		e.Events = events.NewSession()
	} else {
		e.Events = events.Session(cfg.SessionID)
	}
	e.config.SessionID = e.Events.ID()

	return e, nil
}

// Close releases the event log.
func (e *Executor) Close() error {
	if e.eventLog == nil {
		return nil
	}
	err := e.eventLog.Close()
	e.eventLog = nil
	return err
}

// Execute evaluates a tree and returns its status. ExitShell means the
// session must end. A non-nil error is always a *FatalError: the executor
// couldn't continue and the session must be aborted.
func (e *Executor) Execute(node shell.Node) (ExitStatus, error) {
	status, err := e.execute(node, 0)
	if err != nil {
		e.Events.Fatal(0, err)
		return status, err
	}
	e.Events.ExitStatus(shell.Render(node), int(status))
	return status, nil
}

// Run executes trees in order, like successive lines of an interactive
// session. It stops early when a tree returns ExitShell, and returns that
// status, or when one fails fatally.
func (e *Executor) Run(trees []shell.Node) (ExitStatus, error) {
	status := StatusSuccess
	for _, tree := range trees {
		var err error
		status, err = e.Execute(tree)
		if err != nil || status == ExitShell {
			return status, err
		}
	}
	return status, nil
}

// execute is the recursive evaluator. depth only feeds traces and events.
func (e *Executor) execute(node shell.Node, depth int) (ExitStatus, error) {
	e.trace(node, depth)

	switch n := node.(type) {
	case *shell.Simple:
		if b, ok := lookupBuiltin(n); ok {
			return e.runBuiltin(b, n, depth), nil
		}
		return e.runExternal(n, depth)

	case *shell.Compound:
		return e.executeCompound(n, depth)

	default:
		return StatusFailure, fatalf("execute", fmt.Errorf("unknown node type %T", node))
	}
}

func (e *Executor) executeCompound(n *shell.Compound, depth int) (ExitStatus, error) {
	switch n.Op {
	case shell.OpSequential:
		left, err := e.execute(n.Left, depth+1)
		if err != nil || left == ExitShell {
			return left, err
		}
		return e.execute(n.Right, depth+1)

	case shell.OpAndIfSucceeded:
		left, err := e.execute(n.Left, depth+1)
		if err != nil || left == ExitShell || !left.Success() {
			return left, err
		}
		return e.execute(n.Right, depth+1)

	case shell.OpAndIfFailed:
		left, err := e.execute(n.Left, depth+1)
		if err != nil || left == ExitShell || left.Success() {
			return left, err
		}
		return e.execute(n.Right, depth+1)

	case shell.OpParallel:
		left, right, err := e.runParallel(n.Left, n.Right, depth+1)
		if err != nil {
			return StatusFailure, err
		}
		return parallelStatus(left, right), nil

	case shell.OpPipe:
		left, right, err := e.runPiped(n.Left, n.Right, depth+1)
		if err != nil {
			return StatusFailure, err
		}
		if left == ExitShell {
			return ExitShell, nil
		}
		return right, nil

	default:
		return StatusFailure, fatalf("execute", fmt.Errorf("unknown operator %v", n.Op))
	}
}

// parallelStatus combines the two sides of a parallel node. The result only
// tells whether both succeeded; when one failed it carries that side's
// status, preferring the left one.
func parallelStatus(left, right ExitStatus) ExitStatus {
	switch {
	case left == ExitShell || right == ExitShell:
		return ExitShell
	case !left.Success():
		return left
	default:
		return right
	}
}

func (e *Executor) trace(node shell.Node, depth int) {
	if !e.Logger.Verbose {
		return
	}
	e.Logger.VerboseErrf(logger.Cyan, "%s+ %s", strings.Repeat("  ", depth), shell.Render(node))
}

// diag prints a diagnostic on the executor's current stderr.
func (e *Executor) diag(format string, args ...interface{}) {
	e.Logger.Errf(logger.Red, format, args...)
}
