// Package host is the port between the core and the machine it runs on.
//
// The core only ever needs four capabilities: run a shell command, list the
// files below a directory, read a text file, and ask the user for a
// directory. OS implements them for a real machine; Memory implements them
// for tests and dry runs.
package host

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/hlop3z/nocstudio/internal/alerr"
)

// Host exposes the external capabilities consumed by the scanner and the
// command runner.
type Host interface {
	// ExecuteShellCommand runs cmd through the platform shell and returns
	// its combined output. A non-zero exit is an error that still carries
	// the output in its context.
	ExecuteShellCommand(ctx context.Context, cmd string) (string, error)

	// ListFiles returns every regular file below dir, recursively.
	ListFiles(ctx context.Context, dir string) ([]string, error)

	// ReadTextFile returns the contents of path.
	ReadTextFile(path string) (string, error)

	// ChooseDirectory asks the user for a directory.
	ChooseDirectory(ctx context.Context) (string, error)
}

// skipDirs are never descended into by ListFiles.
var skipDirs = map[string]bool{
	"bin":          true,
	"obj":          true,
	".git":         true,
	".vs":          true,
	"node_modules": true,
}

// OS is the Host backed by the local machine.
type OS struct {
	// Dir is the working directory for shell commands. Empty means the
	// process working directory.
	Dir string

	// Env is appended to the process environment for shell commands.
	Env []string

	// Chooser implements ChooseDirectory. Nil means no interactive
	// chooser is available.
	Chooser func(ctx context.Context) (string, error)
}

// NewOS returns an OS host running commands in dir.
func NewOS(dir string) *OS {
	return &OS{Dir: dir}
}

// shell returns the platform shell invocation for cmd.
func shell(ctx context.Context, cmd string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "cmd", "/C", cmd)
	}
	return exec.CommandContext(ctx, "sh", "-c", cmd)
}

// ExecuteShellCommand implements Host.
func (h *OS) ExecuteShellCommand(ctx context.Context, cmd string) (string, error) {
	c := shell(ctx, cmd)
	c.Dir = h.Dir
	if len(h.Env) > 0 {
		c.Env = append(os.Environ(), h.Env...)
	}

	var out bytes.Buffer
	c.Stdout = &out
	c.Stderr = &out

	if err := c.Run(); err != nil {
		return out.String(), alerr.Wrap(alerr.ErrCommandFailed, err, "command failed").
			WithCommand(cmd).
			With("output", strings.TrimSpace(out.String()))
	}
	return out.String(), nil
}

// ListFiles implements Host. Build output, VCS metadata and node_modules
// directories are skipped. Paths are returned sorted.
func (h *OS) ListFiles(ctx context.Context, dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if path != dir && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrHostList, err, "failed to list files").
			With("dir", dir)
	}

	sort.Strings(files)
	return files, nil
}

// ReadTextFile implements Host.
func (h *OS) ReadTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", alerr.Wrap(alerr.ErrHostRead, err, "failed to read file").
			WithFile(path, 0)
	}
	return string(data), nil
}

// ChooseDirectory implements Host.
func (h *OS) ChooseDirectory(ctx context.Context) (string, error) {
	if h.Chooser == nil {
		return "", alerr.New(alerr.ErrHostChoose, "no directory chooser available").
			WithHelp("pass the directory as an argument")
	}
	dir, err := h.Chooser(ctx)
	if err != nil {
		return "", alerr.Wrap(alerr.ErrHostChoose, err, "no directory chosen")
	}
	if dir == "" {
		return "", alerr.New(alerr.ErrHostChoose, "no directory chosen")
	}
	return dir, nil
}
