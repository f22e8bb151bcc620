package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/josephlewis42/treesh/core"
	"github.com/josephlewis42/treesh/core/logger"
	"github.com/sebdah/goldie/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if core.IsChild(os.Args) {
		os.Exit(core.RunChild())
	}
	os.Exit(m.Run())
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) { f.Changed = false }
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, child := range c.Commands() {
		resetFlags(child)
	}
}

// executeCommand runs the CLI in-process with fresh flag values.
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cfgPath, verbose, colorMode = ".", false, logger.ColorAuto
	envFiles, renderYAML = nil, false
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return 0
	}
	exit, ok := err.(*exitError)
	require.True(t, ok, "unexpected error: %v", err)
	return exit.code
}

func TestBuiltinsCommand(t *testing.T) {
	stdout, _, err := executeCommand(t, "builtins")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithDiffEngine(goldie.ColoredDiff),
	)
	g.Assert(t, "builtins", []byte(stdout))
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	trees := writeFile(t, dir, "trees.yaml", `
trees:
- command: echo hi
  stdout: {path: out.txt}
- op: and_if_succeeded
  left: {command: make}
  right:
    op: pipe
    left: {argv: [cat, out.txt]}
    right: {command: wc -l}
`)

	stdout, _, err := executeCommand(t, "render", trees)
	require.NoError(t, err)
	assert.Equal(t, "echo hi > out.txt\nmake && (cat out.txt | wc -l)\n", stdout)

	stdout, _, err = executeCommand(t, "render", "--yaml", trees)
	require.NoError(t, err)
	assert.Contains(t, stdout, "op: and_if_succeeded")
	assert.Contains(t, stdout, "- wc\n")
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.txt")

	cases := map[string]struct {
		doc      string
		wantCode int
		wantOut  string
	}{
		"success": {
			doc:     "{command: echo hi, stdout: {path: " + out + "}}",
			wantOut: "hi\n",
		},
		"last status": {
			doc: `
trees:
- {command: sh -c 'exit 3'}
- {command: echo second, stdout: {path: ` + out + `}}
- {command: sh -c 'exit 5'}
`,
			wantCode: 5,
			wantOut:  "second\n",
		},
		"exit stops the session": {
			doc: `
trees:
- {command: sh -c 'exit 3'}
- op: parallel
  left: {command: "true"}
  right: {command: exit}
- {command: echo unreachable, stdout: {path: ` + out + `}}
`,
		},
		"not found": {
			doc:      "{command: treesh-no-such-command}",
			wantCode: 127,
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			os.Remove(out)
			trees := writeFile(t, dir, "trees.yaml", tc.doc)

			_, _, err := executeCommand(t, "run", "--config", dir, trees)

			assert.Equal(t, tc.wantCode, exitCode(t, err))
			if tc.wantOut == "" {
				assert.NoFileExists(t, out)
			} else {
				data, err := os.ReadFile(out)
				require.NoError(t, err)
				assert.Equal(t, tc.wantOut, string(data))
			}
		})
	}
}

func TestRunCommand_EnvFile(t *testing.T) {
	t.Setenv("TREESH_GREETING", "")
	os.Unsetenv("TREESH_GREETING")
	dir := t.TempDir()
	out := filepath.Join(dir, "out.txt")
	env := writeFile(t, dir, "test.env", "TREESH_GREETING=hello from dotenv\n")
	trees := writeFile(t, dir, "trees.yaml", `{argv: [sh, -c, 'echo "$TREESH_GREETING"'], stdout: {path: `+out+`}}`)

	_, _, err := executeCommand(t, "run", "--config", dir, "--env-file", env, trees)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "hello from dotenv\n", string(data))
}

func TestRunCommand_BadDocument(t *testing.T) {
	dir := t.TempDir()
	trees := writeFile(t, dir, "trees.yaml", "{op: pipe, left: {command: ls}}")

	_, _, err := executeCommand(t, "run", "--config", dir, trees)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "$.right: missing node")
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()

	_, stderr, err := executeCommand(t, "init", dir)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Writing configuration")
	assert.FileExists(t, filepath.Join(dir, "config.yaml"))

	_, stderr, err = executeCommand(t, "init", dir)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Configuration already exists")
}

func TestEventsCommands(t *testing.T) {
	dir := t.TempDir()
	eventLog := filepath.Join(dir, "events.jsonl")
	writeFile(t, dir, "config.yaml", "event_log: "+eventLog+"\n")
	trees := writeFile(t, dir, "trees.yaml", `
trees:
- {command: "true"}
- {command: treesh-no-such-command}
`)

	_, _, err := executeCommand(t, "run", "--config", dir, trees)
	require.Equal(t, 127, exitCode(t, err))

	stdout, _, err := executeCommand(t, "events", "report", "--config", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "log_entries: 4\n")
	assert.Contains(t, stdout, "treesh-no-such-command: 1")

	stdout, _, err = executeCommand(t, "events", "bugs", eventLog)
	require.NoError(t, err)
	assert.Contains(t, stdout, "command: treesh-no-such-command")

	_, _, err = executeCommand(t, "events", "report", "--config", t.TempDir())
	assert.EqualError(t, err, "no event log given and none configured")
}

func TestConfigFlags(t *testing.T) {
	dir := t.TempDir()

	_, _, err := executeCommand(t, "run", "--config", dir, "--color", "sometimes", filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oneof")
}
