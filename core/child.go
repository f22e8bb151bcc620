package core

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"

	"github.com/josephlewis42/treesh/core/shell"
	"sigs.k8s.io/yaml"
)

// ChildArg marks a re-execution of this program that evaluates a subtree.
// Binaries built on this package must call RunChild when IsChild is true,
// before doing anything else.
const ChildArg = "__treesh_child"

const (
	// reportFd is where a re-executed child writes its childReport.
	reportFd = 3
	// payloadFd is where a re-executed child reads its childPayload. The
	// payload can be far larger than a single argument may be.
	payloadFd = 4
)

type childPayload struct {
	Tree      *shell.Doc `json:"tree"`
	Depth     int        `json:"depth"`
	Verbose   bool       `json:"verbose,omitempty"`
	Color     bool       `json:"color,omitempty"`
	EventLog  string     `json:"event_log,omitempty"`
	SessionID string     `json:"session_id,omitempty"`
	FileMode  uint32     `json:"file_mode"`
}

type childReport struct {
	Status int    `json:"status"`
	Fatal  string `json:"fatal,omitempty"`
}

// IsChild reports whether args (usually os.Args) belong to a re-executed
// child.
func IsChild(args []string) bool {
	return len(args) == 2 && args[1] == ChildArg
}

// RunChild reads a subtree from the parent, evaluates it with this process's
// standard streams, reports the result and returns the exit code the process
// should exit with.
func RunChild() int {
	// Programs started from the subtree must not inherit either pipe.
	syscall.CloseOnExec(reportFd)
	syscall.CloseOnExec(payloadFd)
	report := os.NewFile(reportFd, "report")
	defer report.Close()

	status, err := runChild(os.NewFile(payloadFd, "payload"))
	rep := childReport{Status: int(status)}
	if fe := (*FatalError)(nil); errors.As(err, &fe) {
		rep.Fatal = fmt.Sprintf("%s: %v", fe.Op, fe.Err)
	}
	writeReport(report, rep)

	switch {
	case err != nil:
		return 2
	case status == ExitShell:
		return 0
	default:
		return int(status)
	}
}

func runChild(r io.ReadCloser) (ExitStatus, error) {
	payload, err := io.ReadAll(r)
	r.Close()
	if err != nil {
		return StatusFailure, fatalf("reading subtree", err)
	}

	var p childPayload
	if err := yaml.UnmarshalStrict(payload, &p); err != nil {
		return StatusFailure, fatalf("decoding subtree", err)
	}
	tree, err := shell.FromDoc(p.Tree)
	if err != nil {
		return StatusFailure, fatalf("decoding subtree", err)
	}

	e, err := New(Config{
		Verbose:      p.Verbose,
		Color:        p.Color,
		EventLogPath: p.EventLog,
		SessionID:    p.SessionID,
		FileMode:     os.FileMode(p.FileMode),
	})
	if err != nil {
		return StatusFailure, fatalf("starting subshell", err)
	}
	defer e.Close()

	status, err := e.execute(tree, p.Depth)
	if err != nil {
		e.Events.Fatal(p.Depth, err)
	}
	return status, err
}

// startSubtree re-executes this program to evaluate node in a new process.
func (e *Executor) startSubtree(node shell.Node, streams Streams, depth int) (*child, error) {
	payload, err := yaml.Marshal(&childPayload{
		Tree:      shell.ToDoc(node),
		Depth:     depth,
		Verbose:   e.config.Verbose,
		Color:     e.config.Color,
		EventLog:  e.config.EventLogPath,
		SessionID: e.config.SessionID,
		FileMode:  uint32(e.config.FileMode),
	})
	if err != nil {
		return nil, fatalf("encoding subtree", err)
	}

	reportR, reportW, err := os.Pipe()
	if err != nil {
		return nil, fatalf("pipe", err)
	}
	payloadR, payloadW, err := os.Pipe()
	if err != nil {
		reportR.Close()
		reportW.Close()
		return nil, fatalf("pipe", err)
	}

	cmd := &exec.Cmd{
		Path:       e.self,
		Args:       []string{e.self, ChildArg},
		Stdin:      reader(streams.Stdin),
		Stdout:     writer(streams.Stdout),
		Stderr:     writer(streams.Stderr),
		ExtraFiles: []*os.File{reportW, payloadR},
	}
	err = cmd.Start()
	reportW.Close()
	payloadR.Close()
	if err != nil {
		reportR.Close()
		payloadW.Close()
		return nil, fatalf("starting subshell", err)
	}

	// The child reads the whole payload before doing anything else. If it
	// dies first the write fails and wait reports how it died.
	_, _ = payloadW.Write(payload)
	payloadW.Close()

	return &child{cmd: cmd, report: reportR}, nil
}

func writeReport(w io.Writer, rep childReport) {
	data, err := yaml.Marshal(rep)
	if err != nil {
		return
	}
	_, _ = w.Write(data)
}

// readReport reads what a child wrote before exiting. ok is false when the
// child died without reporting.
func readReport(r io.Reader) (childReport, bool) {
	var rep childReport
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return rep, false
	}
	if err := yaml.Unmarshal(data, &rep); err != nil {
		return rep, false
	}
	return rep, true
}
