// Package vos is the executor's view of the operating system it runs on: the
// process environment, the working directory and the filesystem.
//
// The environment and working directory are process-wide. Children started
// after a change inherit it; children already running don't.
package vos

import (
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// VDir represents a process's working directory.
type VDir interface {
	// Chdir changes the current working directory.
	Chdir(dir string) error

	// Getwd returns a rooted path name for the current directory.
	Getwd() (string, error)
}

// VFS gives read access to the filesystem used for lookups.
type VFS interface {
	Fs() afero.Fs
}

// VOS provides the OS interface used by the executor.
type VOS interface {
	VEnv
	VDir
	VFS
}

// Host is a VOS bound to the running process.
type Host struct {
	fs afero.Fs
}

var _ VOS = (*Host)(nil)

// NewHost creates a VOS backed by the real OS.
func NewHost() *Host {
	return &Host{fs: afero.NewOsFs()}
}

// Fs implements VFS.Fs.
func (h *Host) Fs() afero.Fs {
	return h.fs
}

// Chdir implements VDir.Chdir and keeps PWD and OLDPWD in sync.
func (h *Host) Chdir(dir string) error {
	old, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		return err
	}
	wd, err := os.Getwd()
	if err != nil {
		wd, _ = filepath.Abs(dir)
	}
	if old != "" {
		_ = os.Setenv("OLDPWD", old)
	}
	return os.Setenv("PWD", wd)
}

// Getwd implements VDir.Getwd.
func (h *Host) Getwd() (string, error) {
	return os.Getwd()
}

// UserHomeDir implements VEnv.UserHomeDir.
func (h *Host) UserHomeDir() (string, error) {
	return os.UserHomeDir()
}

// Unsetenv implements VEnv.Unsetenv.
func (h *Host) Unsetenv(key string) error {
	return os.Unsetenv(key)
}

// Setenv implements VEnv.Setenv.
func (h *Host) Setenv(key, value string) error {
	return os.Setenv(key, value)
}

// LookupEnv implements VEnv.LookupEnv.
func (h *Host) LookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}

// Getenv implements VEnv.Getenv.
func (h *Host) Getenv(key string) string {
	return os.Getenv(key)
}

// Environ implements VEnv.Environ.
func (h *Host) Environ() []string {
	return os.Environ()
}
