package host

import (
	"context"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/hlop3z/nocstudio/internal/alerr"
)

// Memory is an in-memory Host. Files are keyed by slash-separated paths.
// Commands are recorded and answered by Exec, or echoed back when Exec is
// nil.
type Memory struct {
	mu sync.Mutex

	Files    map[string]string
	Exec     func(cmd string) (string, error)
	Chosen   string
	Executed []string
}

// NewMemory returns a Memory host holding files.
func NewMemory(files map[string]string) *Memory {
	if files == nil {
		files = map[string]string{}
	}
	return &Memory{Files: files}
}

// ExecuteShellCommand implements Host.
func (m *Memory) ExecuteShellCommand(ctx context.Context, cmd string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	m.Executed = append(m.Executed, cmd)
	exec := m.Exec
	m.mu.Unlock()

	if exec == nil {
		return cmd, nil
	}
	out, err := exec(cmd)
	if err != nil && !alerr.HasCode(err) {
		err = alerr.Wrap(alerr.ErrCommandFailed, err, "command failed").WithCommand(cmd)
	}
	return out, err
}

// ListFiles implements Host.
func (m *Memory) ListFiles(ctx context.Context, dir string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prefix := strings.TrimSuffix(path.Clean(dir), "/") + "/"
	found := false
	var files []string
	for p := range m.Files {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		found = true
		if hasSkippedDir(strings.TrimPrefix(p, prefix)) {
			continue
		}
		files = append(files, p)
	}
	if !found {
		return nil, alerr.New(alerr.ErrHostList, "directory not found").With("dir", dir)
	}
	sort.Strings(files)
	return files, nil
}

func hasSkippedDir(rel string) bool {
	parts := strings.Split(rel, "/")
	for _, dir := range parts[:len(parts)-1] {
		if skipDirs[dir] {
			return true
		}
	}
	return false
}

// ReadTextFile implements Host.
func (m *Memory) ReadTextFile(p string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	text, ok := m.Files[p]
	if !ok {
		return "", alerr.New(alerr.ErrHostRead, "file not found").WithFile(p, 0)
	}
	return text, nil
}

// ChooseDirectory implements Host.
func (m *Memory) ChooseDirectory(context.Context) (string, error) {
	if m.Chosen == "" {
		return "", alerr.New(alerr.ErrHostChoose, "no directory chosen")
	}
	return m.Chosen, nil
}

// Commands returns a copy of the executed commands.
func (m *Memory) Commands() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Executed...)
}
