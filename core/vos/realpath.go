package vos

import (
	"io/fs"
	"path"
	"strings"
	"syscall"

	"github.com/spf13/afero"
)

// maxSymlinks bounds link expansion in Realpath, like the kernel's limit.
const maxSymlinks = 40

// Realpath returns the absolute path of name with every symbolic link
// resolved, looked up on the VOS filesystem. Each component must exist.
//
// ".." is applied to the resolved path, so "link/.." is the parent of the
// link's target, not the directory holding the link.
func Realpath(vos VOS, name string) (string, error) {
	if !path.IsAbs(name) {
		wd, err := vos.Getwd()
		if err != nil {
			return "", err
		}
		name = wd + "/" + name
	}

	fsys := vos.Fs()
	resolved := "/"
	pending := strings.Split(name, "/")
	links := 0

	for len(pending) > 0 {
		component := pending[0]
		pending = pending[1:]

		switch component {
		case "", ".":
			continue
		case "..":
			resolved = path.Dir(resolved)
			continue
		}

		next := path.Join(resolved, component)
		info, err := lstat(fsys, next)
		if err != nil {
			return "", err
		}
		if info.Mode()&fs.ModeSymlink == 0 {
			if len(pending) > 0 && !info.IsDir() {
				return "", &fs.PathError{Op: "realpath", Path: next, Err: syscall.ENOTDIR}
			}
			resolved = next
			continue
		}

		if links++; links > maxSymlinks {
			return "", &fs.PathError{Op: "realpath", Path: name, Err: syscall.ELOOP}
		}
		target, err := readlink(fsys, next)
		if err != nil {
			return "", err
		}
		if path.IsAbs(target) {
			resolved = "/"
		}
		pending = append(strings.Split(target, "/"), pending...)
	}

	return resolved, nil
}

func lstat(fsys afero.Fs, name string) (fs.FileInfo, error) {
	if l, ok := fsys.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(name)
		return info, err
	}
	return fsys.Stat(name)
}

func readlink(fsys afero.Fs, name string) (string, error) {
	if l, ok := fsys.(afero.LinkReader); ok {
		return l.ReadlinkIfPossible(name)
	}
	return "", &fs.PathError{Op: "readlink", Path: name, Err: syscall.EINVAL}
}
