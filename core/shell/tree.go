// Package shell holds the parsed form of a command line: a tree of simple
// commands joined by control operators.
//
// Trees are produced elsewhere (a parser, a tree document, or Go code) and
// are read-only to anything that executes them.
package shell

import "fmt"

// Node is either a *Simple leaf or a *Compound joining two nodes.
type Node interface {
	node()
}

// RedirectMode controls how an output redirection opens its file.
type RedirectMode int

const (
	// Truncate discards existing content, like >.
	Truncate RedirectMode = iota
	// Append preserves existing content, like >>.
	Append
)

func (m RedirectMode) String() string {
	switch m {
	case Truncate:
		return "truncate"
	case Append:
		return "append"
	default:
		return fmt.Sprintf("RedirectMode(%d)", int(m))
	}
}

// Redirection rebinds one standard stream to a file. The stream is implied by
// the Simple field holding it. Mode is ignored for input redirections.
type Redirection struct {
	Path string
	Mode RedirectMode
}

// Simple is a single command invocation with optional redirections.
type Simple struct {
	Verb string
	Args []string

	Stdin  *Redirection
	Stdout *Redirection
	Stderr *Redirection
}

func (*Simple) node() {}

// Argv returns the verb followed by the arguments.
func (s *Simple) Argv() []string {
	argv := make([]string, 0, len(s.Args)+1)
	argv = append(argv, s.Verb)
	return append(argv, s.Args...)
}

// Operator joins the two sides of a Compound.
type Operator int

const (
	// OpSequential runs left then right (;).
	OpSequential Operator = iota
	// OpParallel runs both sides at once (&).
	OpParallel
	// OpPipe feeds the standard output of left into the standard input of right (|).
	OpPipe
	// OpAndIfFailed runs right only if left failed (||).
	OpAndIfFailed
	// OpAndIfSucceeded runs right only if left succeeded (&&).
	OpAndIfSucceeded
)

var operatorNames = map[Operator]string{
	OpSequential:     "sequential",
	OpParallel:       "parallel",
	OpPipe:           "pipe",
	OpAndIfFailed:    "and_if_failed",
	OpAndIfSucceeded: "and_if_succeeded",
}

var operatorSymbols = map[Operator]string{
	OpSequential:     ";",
	OpParallel:       "&",
	OpPipe:           "|",
	OpAndIfFailed:    "||",
	OpAndIfSucceeded: "&&",
}

func (o Operator) String() string {
	if name, ok := operatorNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Operator(%d)", int(o))
}

// Symbol returns the shell spelling of the operator.
func (o Operator) Symbol() string {
	return operatorSymbols[o]
}

// ParseOperator is the inverse of Operator.String.
func ParseOperator(name string) (Operator, bool) {
	for op, n := range operatorNames {
		if n == name {
			return op, true
		}
	}
	return 0, false
}

// Compound joins two trees with a control operator. Each compound owns its
// children outright, so trees can't contain cycles.
type Compound struct {
	Op    Operator
	Left  Node
	Right Node
}

func (*Compound) node() {}

// Sequential builds "left ; right".
func Sequential(left, right Node) *Compound {
	return &Compound{Op: OpSequential, Left: left, Right: right}
}

// Parallel builds "left & right".
func Parallel(left, right Node) *Compound {
	return &Compound{Op: OpParallel, Left: left, Right: right}
}

// Pipe builds "left | right".
func Pipe(left, right Node) *Compound {
	return &Compound{Op: OpPipe, Left: left, Right: right}
}

// AndIfFailed builds "left || right".
func AndIfFailed(left, right Node) *Compound {
	return &Compound{Op: OpAndIfFailed, Left: left, Right: right}
}

// AndIfSucceeded builds "left && right".
func AndIfSucceeded(left, right Node) *Compound {
	return &Compound{Op: OpAndIfSucceeded, Left: left, Right: right}
}

// Command is a convenience constructor for a Simple without redirections.
func Command(verb string, args ...string) *Simple {
	return &Simple{Verb: verb, Args: args}
}
