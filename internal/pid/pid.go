// Package pid keeps a single status process per user session.
package pid

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"codeberg.org/mutker/hoststatus/internal/errors"
)

const pidFile = "hoststatus.pid"

// File is a PID file guarding one running instance.
type File struct {
	path string
}

// Dir returns $XDG_RUNTIME_DIR, falling back to the temp dir.
func Dir() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir
	}

	return os.TempDir()
}

// New returns the PID file inside dir.
func New(dir string) *File {
	return &File{path: filepath.Join(dir, pidFile)}
}

func (f *File) Path() string {
	return f.path
}

// Write records the current process ID. A file naming a live process other
// than this one yields ErrAlreadyRunning; a stale file is replaced.
func (f *File) Write() error {
	errFactory := errors.New()

	if bytes, err := os.ReadFile(f.path); err == nil {
		if pid, err := strconv.Atoi(strings.TrimSpace(string(bytes))); err == nil && pid != os.Getpid() && alive(pid) {
			return errFactory.WithData(errors.ErrAlreadyRunning, pid)
		}
	} else if !os.IsNotExist(err) {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	if err := os.WriteFile(f.path, []byte(strconv.Itoa(os.Getpid())), 0o600); err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	return nil
}

// Remove deletes the PID file if present.
func (f *File) Remove() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return errors.New().Wrap(errors.ErrInternal, err)
	}

	return nil
}

func alive(pid int) bool {
	if pid <= 0 {
		return false
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	return process.Signal(syscall.Signal(0)) == nil
}
