package logger

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_Errf(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{Stderr: &buf}

	l.Errf(Red, "%s: command not found", "nope")
	l.Errf(Red, "100%")

	assert.Equal(t, "nope: command not found\n100%\n", buf.String())
}

func TestLogger_ErrfColor(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{Stderr: &buf, Color: true}

	l.Errf(Red, "boom")

	assert.Contains(t, buf.String(), "\x1b[31m")
	assert.Contains(t, buf.String(), "boom")
}

func TestLogger_VerboseErrf(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{Stderr: &buf}

	l.VerboseErrf(Cyan, "hidden")
	assert.Empty(t, buf.String())

	l.Verbose = true
	l.VerboseErrf(Cyan, "+ echo hi")
	assert.Equal(t, "+ echo hi\n", buf.String())
}

func TestShouldColor(t *testing.T) {
	var buf bytes.Buffer

	assert.True(t, ShouldColor(ColorAlways, &buf))
	assert.False(t, ShouldColor(ColorNever, &buf))
	assert.False(t, ShouldColor(ColorAuto, &buf))
}

func TestEventLogger_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	session := NewJSONLinesLogRecorder(&buf).Session("abc")

	session.RunCommand(2, []string{"echo", "hi"}, "/bin/echo")
	session.UnknownCommand(1, []string{"nope"}, errors.New("not found"))
	session.Builtin(0, []string{"cd", "/tmp"}, 0)
	session.ExitStatus("echo hi", 3)

	var events []*Event
	require.NoError(t, ReadJSONLinesLog(&buf, func(ev *Event) {
		events = append(events, ev)
	}))

	require.Len(t, events, 4)
	for _, ev := range events {
		assert.Equal(t, "abc", ev.SessionID)
		assert.NotZero(t, ev.Pid)
		assert.NotZero(t, ev.TimestampMicros)
	}

	assert.Equal(t, EventRunCommand, events[0].Type)
	assert.Equal(t, 2, events[0].Depth)
	assert.Equal(t, "/bin/echo", events[0].ResolvedPath)

	assert.Equal(t, EventUnknownCommand, events[1].Type)
	assert.Equal(t, "not found", events[1].Error)

	assert.Equal(t, EventBuiltin, events[2].Type)
	require.NotNil(t, events[2].Status)
	assert.Equal(t, 0, *events[2].Status)

	assert.Equal(t, EventExitStatus, events[3].Type)
	assert.Equal(t, "echo hi", events[3].Tree)
	assert.Equal(t, 3, *events[3].Status)
}

func TestNewSession_UniqueIDs(t *testing.T) {
	l := NopEventLogger()

	assert.NotEqual(t, l.NewSession().ID(), l.NewSession().ID())
}
