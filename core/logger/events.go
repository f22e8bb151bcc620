package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"
)

// Event types recorded by the executor.
const (
	EventRunCommand     = "run_command"
	EventUnknownCommand = "unknown_command"
	EventBuiltin        = "builtin"
	EventExitStatus     = "exit_status"
	EventFatal          = "fatal"
)

// Event is one line of the event log.
type Event struct {
	TimestampMicros int64  `json:"timestamp_micros"`
	SessionID       string `json:"session_id"`
	Pid             int    `json:"pid"`
	Type            string `json:"type"`
	Depth           int    `json:"depth"`

	Command      []string `json:"command,omitempty"`
	ResolvedPath string   `json:"resolved_path,omitempty"`
	Tree         string   `json:"tree,omitempty"`
	Status       *int     `json:"status,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// LogRecorder is a callback that stores events in an external datastore.
type LogRecorder func(ev *Event) error

// EventLogger captures execution events.
type EventLogger struct {
	Record LogRecorder
}

// NewJSONLinesLogRecorder creates an EventLogger that exports events in
// newline delimited JSON object format. Each event is a single write so
// several processes can append to the same file.
func NewJSONLinesLogRecorder(w io.Writer) *EventLogger {
	return &EventLogger{
		Record: func(ev *Event) error {
			entry, err := json.Marshal(ev)
			if err != nil {
				return err
			}
			_, err = w.Write(append(entry, '\n'))
			return err
		},
	}
}

// NopEventLogger discards every event.
func NopEventLogger() *EventLogger {
	return &EventLogger{Record: func(*Event) error { return nil }}
}

// NewSession creates a logger with a fresh session ID.
func (l *EventLogger) NewSession() *SessionLogger {
	return l.Session(fmt.Sprintf("%d", rand.Uint64()))
}

// Session creates a logger that shares an existing session ID, for example
// the one of the process that started this one.
func (l *EventLogger) Session(id string) *SessionLogger {
	return &SessionLogger{logger: l, sessionID: id}
}

// SessionLogger logs events with a shared session ID.
type SessionLogger struct {
	logger    *EventLogger
	sessionID string
}

// ID returns the session ID.
func (s *SessionLogger) ID() string {
	return s.sessionID
}

// Record stamps and stores the event. Failing to record is never fatal to
// the caller.
func (s *SessionLogger) Record(ev *Event) error {
	ev.TimestampMicros = time.Now().UnixNano() / int64(time.Microsecond)
	ev.SessionID = s.sessionID
	ev.Pid = os.Getpid()
	return s.logger.Record(ev)
}

// RunCommand records an external program about to start.
func (s *SessionLogger) RunCommand(depth int, argv []string, resolvedPath string) {
	_ = s.Record(&Event{Type: EventRunCommand, Depth: depth, Command: argv, ResolvedPath: resolvedPath})
}

// UnknownCommand records a verb that couldn't be started.
func (s *SessionLogger) UnknownCommand(depth int, argv []string, err error) {
	_ = s.Record(&Event{Type: EventUnknownCommand, Depth: depth, Command: argv, Error: err.Error()})
}

// Builtin records a builtin that ran in the executor's own process.
func (s *SessionLogger) Builtin(depth int, argv []string, status int) {
	_ = s.Record(&Event{Type: EventBuiltin, Depth: depth, Command: argv, Status: &status})
}

// ExitStatus records the final status of a top level tree.
func (s *SessionLogger) ExitStatus(tree string, status int) {
	_ = s.Record(&Event{Type: EventExitStatus, Tree: tree, Status: &status})
}

// Fatal records an error that aborted execution.
func (s *SessionLogger) Fatal(depth int, err error) {
	_ = s.Record(&Event{Type: EventFatal, Depth: depth, Error: err.Error()})
}

// ReadJSONLinesLog parses a newline delimited JSON log.
func ReadJSONLinesLog(r io.Reader, handler func(ev *Event)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var ev Event
		if err := decoder.Decode(&ev); err != nil {
			return err
		}
		handler(&ev)
	}
	return nil
}
