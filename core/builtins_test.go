package core

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/josephlewis42/treesh/core/shell"
	"github.com/josephlewis42/treesh/core/vos/vostest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ExampleBuiltinNames() {
	for _, name := range BuiltinNames() {
		fmt.Println(name)
	}
	// Output: cd
	// exit
	// quit
}

func TestCd(t *testing.T) {
	cases := map[string]struct {
		env        []string
		args       []string
		wantStatus ExitStatus
		wantWd     string
		wantErr    string
	}{
		"absolute": {
			args:   []string{"cd", "/home/user/src"},
			wantWd: "/home/user/src",
		},
		"relative": {
			args:   []string{"cd", "home/user"},
			wantWd: "/home/user",
		},
		"home": {
			env:    []string{"HOME=/home/user"},
			args:   []string{"cd"},
			wantWd: "/home/user",
		},
		"physical flag": {
			args:   []string{"cd", "-P", "/home/user/src/.."},
			wantWd: "/home/user",
		},
		"logical flag": {
			args:   []string{"cd", "-L", "/home"},
			wantWd: "/home",
		},
		"no home": {
			args:       []string{"cd"},
			wantStatus: StatusFailure,
			wantWd:     "/",
			wantErr:    "cd: HOME not set\n",
		},
		"missing": {
			args:       []string{"cd", "/nonexistent"},
			wantStatus: StatusFailure,
			wantWd:     "/",
			wantErr:    "cd: /nonexistent: ",
		},
		"not a directory": {
			args:       []string{"cd", "/home/user/file.txt"},
			wantStatus: StatusFailure,
			wantWd:     "/",
			wantErr:    "cd: /home/user/file.txt: not a directory\n",
		},
		"too many arguments": {
			args:       []string{"cd", "/home", "/tmp"},
			wantStatus: StatusFailure,
			wantWd:     "/",
			wantErr:    "cd: too many arguments\n",
		},
		"bad flag": {
			args:       []string{"cd", "-x"},
			wantStatus: StatusFailure,
			wantWd:     "/",
			wantErr:    "cd: unknown option: -x\n",
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			te := newTestExecutor(t)
			memOS := vostest.NewMemOS(tc.env...)
			require.NoError(t, memOS.Fs().MkdirAll("/home/user/src", 0755))
			require.NoError(t, memOS.WriteFile("/home/user/file.txt", nil, 0644))
			te.OS = memOS

			status := te.run(t, cmd(tc.args[0], tc.args[1:]...))

			assert.Equal(t, tc.wantStatus, status)
			wd, err := memOS.Getwd()
			require.NoError(t, err)
			assert.Equal(t, tc.wantWd, wd)
			if tc.wantErr == "" {
				assert.Empty(t, te.Stderr(t))
				assert.Equal(t, tc.wantWd, memOS.Getenv("PWD"))
			} else {
				assert.Contains(t, te.Stderr(t), tc.wantErr)
			}
		})
	}
}

// chdirForTest restores the process working directory and PWD variables
// after the test.
func chdirForTest(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	t.Setenv("PWD", os.Getenv("PWD"))
	t.Setenv("OLDPWD", os.Getenv("OLDPWD"))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return wd
}

func TestCd_AffectsLaterCommands(t *testing.T) {
	chdirForTest(t)
	te := newTestExecutor(t)
	target, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	out := te.path("pwd")

	status := te.run(t, shell.Sequential(
		cmd("cd", target),
		toFile(cmd("pwd"), out, shell.Truncate),
	))

	assert.Equal(t, StatusSuccess, status)
	assert.Equal(t, target+"\n", readFile(t, out))
	assert.Equal(t, target, os.Getenv("PWD"))
}

func TestCd_NonexistentKeepsDirectory(t *testing.T) {
	before := chdirForTest(t)
	te := newTestExecutor(t)
	missing := te.path("missing")

	status := te.run(t, cmd("cd", missing))

	assert.NotEqual(t, StatusSuccess, status)
	after, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, "cd: "+missing+": no such file or directory\n", te.Stderr(t))
}

func TestCd_Physical(t *testing.T) {
	chdirForTest(t)
	te := newTestExecutor(t)
	target, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	link := te.path("link")
	require.NoError(t, os.Symlink(target, link))

	assert.Equal(t, StatusSuccess, te.run(t, cmd("cd", "-P", link)))
	assert.Equal(t, target, os.Getenv("PWD"))
}

func TestCd_InSubshellDoesNotLeak(t *testing.T) {
	before := chdirForTest(t)
	te := newTestExecutor(t)

	status := te.run(t, shell.Parallel(cmd("cd", "/"), cmd("true")))

	assert.Equal(t, StatusSuccess, status)
	after, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestAssign(t *testing.T) {
	t.Setenv("TREESH_TEST_VALUE", "before")
	te := newTestExecutor(t)

	status := te.run(t, shell.Sequential(
		cmd("TREESH_TEST_VALUE=hello world"),
		sh(`echo "$TREESH_TEST_VALUE"`),
	))

	assert.Equal(t, StatusSuccess, status)
	assert.Equal(t, "hello world\n", te.Stdout(t))
	assert.Equal(t, "hello world", os.Getenv("TREESH_TEST_VALUE"))
}

func TestAssign_WithArgumentsIsACommand(t *testing.T) {
	te := newTestExecutor(t)

	assert.False(t, IsBuiltin(cmd("TREESH_X=1", "true")))
	assert.Equal(t, StatusNotFound, te.run(t, cmd("TREESH_X=1", "true")))
}

func TestLookupBuiltin(t *testing.T) {
	cases := map[string]struct {
		node *shell.Simple
		want bool
	}{
		"cd":              {cmd("cd"), true},
		"exit":            {cmd("exit", "3"), true},
		"quit":            {cmd("quit"), true},
		"assignment":      {cmd("A=b"), true},
		"empty value":     {cmd("A="), true},
		"invalid name":    {cmd("1A=b"), false},
		"program":         {cmd("echo", "cd"), false},
		"case sensitive":  {cmd("CD"), false},
		"no equals sign":  {cmd("A"), false},
		"leading equals":  {cmd("=b"), false},
		"assignment args": {cmd("A=b", "c"), false},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			assert.Equal(t, tc.want, IsBuiltin(tc.node))
		})
	}
}

func TestRunBuiltin_RedirectionsAreRestored(t *testing.T) {
	te := newTestExecutor(t)
	te.OS = vostest.NewMemOS()
	saved, savedStderr := te.Streams, te.Logger.Stderr
	errPath := te.path("cd.err")

	node := cmd("cd", "/nonexistent")
	node.Stderr = &shell.Redirection{Path: errPath}
	status := te.run(t, shell.Sequential(node, cmd("echo", "after")))

	assert.Equal(t, StatusSuccess, status)
	assert.Equal(t, saved, te.Streams)
	assert.Equal(t, savedStderr, te.Logger.Stderr)
	assert.Contains(t, readFile(t, errPath), "cd: /nonexistent: ")
	assert.Empty(t, te.Stderr(t))
	assert.Equal(t, "after\n", te.Stdout(t))
}

func TestRunBuiltin_RedirectionFailure(t *testing.T) {
	te := newTestExecutor(t)
	te.OS = vostest.NewMemOS()
	saved := te.Streams
	missing := te.path("missing")

	node := cmd("cd", "/")
	node.Stdin = &shell.Redirection{Path: missing}

	assert.Equal(t, StatusFailure, te.run(t, node))
	assert.Equal(t, saved, te.Streams)
	assert.Equal(t, "cd: "+missing+": no such file or directory\n", te.Stderr(t))
}
