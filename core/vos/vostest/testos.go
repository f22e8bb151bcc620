// Package vostest provides an in-memory VOS for tests.
package vostest

import (
	"os"
	"path"
	"syscall"

	"github.com/josephlewis42/treesh/core/vos"
	"github.com/spf13/afero"
)

// MemOS is a VOS with a map environment, a memory filesystem and a working
// directory that exists only inside the struct.
type MemOS struct {
	*vos.MapEnv

	fs afero.Fs
	wd string
}

var _ vos.VOS = (*MemOS)(nil)

// NewMemOS creates an empty OS rooted at "/" with the given environment.
func NewMemOS(environ ...string) *MemOS {
	return &MemOS{
		MapEnv: vos.NewMapEnvFromEnvList(environ),
		fs:     afero.NewMemMapFs(),
		wd:     "/",
	}
}

// Fs implements vos.VFS.
func (m *MemOS) Fs() afero.Fs {
	return m.fs
}

// Getwd implements vos.VDir.
func (m *MemOS) Getwd() (string, error) {
	return m.wd, nil
}

// Chdir implements vos.VDir.
func (m *MemOS) Chdir(dir string) error {
	if !path.IsAbs(dir) {
		dir = path.Join(m.wd, dir)
	}
	dir = path.Clean(dir)

	info, err := m.fs.Stat(dir)
	if err != nil {
		return &os.PathError{Op: "chdir", Path: dir, Err: err}
	}
	if !info.IsDir() {
		return &os.PathError{Op: "chdir", Path: dir, Err: syscall.ENOTDIR}
	}

	_ = m.Setenv("OLDPWD", m.wd)
	m.wd = dir
	return m.Setenv("PWD", dir)
}

// WriteFile creates a file with the given mode, making parent directories.
func (m *MemOS) WriteFile(name string, data []byte, mode os.FileMode) error {
	if err := m.fs.MkdirAll(path.Dir(name), 0755); err != nil {
		return err
	}
	return afero.WriteFile(m.fs, name, data, mode)
}
