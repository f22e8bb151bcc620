package logger

import (
	"encoding/json"
	"sort"
	"strconv"
)

// Report holds statistics about the logged events.
type Report struct {
	LogEntries     int        `json:"log_entries"`
	Sessions       StrCounter `json:"sessions"`
	InvalidEntries StrCounter `json:"unknown_log_entries,omitempty"`

	RunCommand     RunCommandReport     `json:"run_command_report"`
	UnknownCommand UnknownCommandReport `json:"unknown_command_report"`
	Builtin        BuiltinReport        `json:"builtin_report"`
	ExitStatus     ExitStatusReport     `json:"exit_status_report"`
	Fatal          FatalReport          `json:"fatal_report"`
}

func (r *Report) Update(ev *Event) {
	r.LogEntries++
	if ev.SessionID != "" {
		r.Sessions.Increment(ev.SessionID)
	}

	switch ev.Type {
	case EventRunCommand:
		r.RunCommand.update(ev)
	case EventUnknownCommand:
		r.UnknownCommand.update(ev)
	case EventBuiltin:
		r.Builtin.update(ev)
	case EventExitStatus:
		r.ExitStatus.update(ev)
	case EventFatal:
		r.Fatal.update(ev)
	default:
		r.InvalidEntries.Increment(ev.Type)
	}
}

type RunCommandReport struct {
	// Paths the commands resolved to.
	ResolvedCommandPaths StrCounter `json:"resolved_command_paths"`
	// Verbs as written in the tree.
	CommandNames StrCounter `json:"command_names"`
	// Nesting depth the commands were started at.
	Depths StrCounter `json:"depths"`
}

func (r *RunCommandReport) update(ev *Event) {
	r.ResolvedCommandPaths.Increment(ev.ResolvedPath)
	if len(ev.Command) > 0 {
		r.CommandNames.Increment(ev.Command[0])
	}
	r.Depths.Increment(strconv.Itoa(ev.Depth))
}

type UnknownCommandReport struct {
	CommandNames StrCounter `json:"command_names"`
	Errors       StrCounter `json:"errors"`
}

func (r *UnknownCommandReport) update(ev *Event) {
	if len(ev.Command) > 0 {
		r.CommandNames.Increment(ev.Command[0])
	}
	r.Errors.Increment(ev.Error)
}

type BuiltinReport struct {
	CommandNames StrCounter `json:"command_names"`
	Failures     StrCounter `json:"failures"`
}

func (r *BuiltinReport) update(ev *Event) {
	if len(ev.Command) == 0 {
		return
	}
	r.CommandNames.Increment(ev.Command[0])
	if ev.Status != nil && *ev.Status != 0 {
		r.Failures.Increment(ev.Command[0])
	}
}

type ExitStatusReport struct {
	Count    int        `json:"count"`
	Statuses StrCounter `json:"statuses"`
}

func (r *ExitStatusReport) update(ev *Event) {
	r.Count++
	if ev.Status != nil {
		r.Statuses.Increment(strconv.Itoa(*ev.Status))
	}
}

type FatalReport struct {
	Errors []string `json:"errors"`
}

func (r *FatalReport) update(ev *Event) {
	r.Errors = append(r.Errors, ev.Error)
}

func NewBugReport() *BugReport {
	return &BugReport{
		UnknownCommands: NewPathCounter("command", "error"),
		FailedBuiltins:  NewPathCounter("command", "status"),
	}
}

// BugReport pulls events that point at broken trees or a broken environment.
type BugReport struct {
	LogEntries int `json:"log_entries"`

	UnknownCommands *PathCounter `json:"unknown_commands"`
	FailedBuiltins  *PathCounter `json:"failed_builtins"`
	Fatals          []*Event     `json:"fatals"`
}

func (r *BugReport) Update(ev *Event) {
	r.LogEntries++

	switch ev.Type {
	case EventFatal:
		r.Fatals = append(r.Fatals, ev)
	case EventUnknownCommand:
		if len(ev.Command) > 0 {
			r.UnknownCommands.Increment(ev.Command[0], ev.Error)
		}
	case EventBuiltin:
		if len(ev.Command) > 0 && ev.Status != nil && *ev.Status != 0 {
			r.FailedBuiltins.Increment(ev.Command[0], strconv.Itoa(*ev.Status))
		}
	}
}

// StrCounter counts the number of strings seen.
type StrCounter struct {
	internal map[string]int
}

// Increment adds one to the given key.
func (s *StrCounter) Increment(toAdd string) {
	if s.internal == nil {
		s.internal = make(map[string]int)
	}

	s.internal[toAdd]++
}

// Get returns the count for key.
func (s *StrCounter) Get(key string) int {
	return s.internal[key]
}

// Len returns the number of distinct keys.
func (s *StrCounter) Len() int {
	return len(s.internal)
}

// MarshalJSON implemnts custom JSON marshaler.
func (s StrCounter) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.internal)
}

func NewPathCounter(cols ...string) *PathCounter {
	return &PathCounter{
		cols:     cols,
		internal: make(map[string]int),
	}
}

// PathCounter counts tuples of strings, one value per column.
type PathCounter struct {
	cols     []string
	internal map[string]int
}

// Increment adds one to the given key.
func (ctr *PathCounter) Increment(toAdd ...string) {
	if len(toAdd) != len(ctr.cols) {
		panic("wrong number of columns to add")
	}

	ctr.internal[toKey(toAdd...)]++
}

// MarshalJSON implemnts custom JSON marshaler.
func (ctr *PathCounter) MarshalJSON() ([]byte, error) {
	type Count struct {
		Count  int               `json:"count"`
		Fields map[string]string `json:"event"`
		Path   string            `json:"-"`
	}

	out := []Count{}
	for k, v := range ctr.internal {
		count := Count{
			Count:  v,
			Path:   k,
			Fields: make(map[string]string),
		}

		splitPath := fromKey(k)
		for colNum, colVal := range ctr.cols {
			count.Fields[colVal] = splitPath[colNum]
		}

		out = append(out, count)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Path < out[j].Path
		}
		return out[i].Count > out[j].Count
	})

	return json.Marshal(out)
}

func toKey(vals ...string) string {
	key, _ := json.Marshal(vals)
	return string(key)
}

func fromKey(key string) (out []string) {
	json.Unmarshal([]byte(key), &out)
	return
}
