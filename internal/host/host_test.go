package host

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"

	"github.com/hlop3z/nocstudio/internal/alerr"
)

var _ Host = (*OS)(nil)
var _ Host = (*Memory)(nil)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// -----------------------------------------------------------------------------
// OS Tests
// -----------------------------------------------------------------------------

func TestOSListFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "a")
	writeFile(t, filepath.Join(root, "Domain", "Entities", "UserEntity.cs"), "u")
	writeFile(t, filepath.Join(root, "bin", "Debug", "UserEntity.cs"), "x")
	writeFile(t, filepath.Join(root, "node_modules", "pkg", "index.js"), "x")

	got, err := NewOS("").ListFiles(context.Background(), root)
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}
	want := []string{
		filepath.Join(root, "Domain", "Entities", "UserEntity.cs"),
		filepath.Join(root, "a.txt"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ListFiles() = %v, want %v", got, want)
	}
}

func TestOSListFilesMissingDir(t *testing.T) {
	_, err := NewOS("").ListFiles(context.Background(), filepath.Join(t.TempDir(), "missing"))
	if !alerr.Is(err, alerr.ErrHostList) {
		t.Errorf("ListFiles(missing) error = %v, want %s", err, alerr.ErrHostList)
	}
}

func TestOSReadTextFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.dbml")
	writeFile(t, path, "Table a {\n}")

	h := NewOS("")
	got, err := h.ReadTextFile(path)
	if err != nil || got != "Table a {\n}" {
		t.Errorf("ReadTextFile() = %q, %v", got, err)
	}

	if _, err := h.ReadTextFile(path + ".missing"); !alerr.Is(err, alerr.ErrHostRead) {
		t.Errorf("ReadTextFile(missing) error = %v", err)
	}
}

func TestOSExecuteShellCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	dir := t.TempDir()
	h := NewOS(dir)

	out, err := h.ExecuteShellCommand(context.Background(), "pwd && echo hi")
	if err != nil {
		t.Fatalf("ExecuteShellCommand() error = %v", err)
	}
	if !strings.Contains(out, "hi") {
		t.Errorf("output = %q, want hi", out)
	}

	out, err = h.ExecuteShellCommand(context.Background(), "echo boom >&2; exit 3")
	if !alerr.Is(err, alerr.ErrCommandFailed) {
		t.Fatalf("ExecuteShellCommand(exit 3) error = %v", err)
	}
	if !strings.Contains(out, "boom") {
		t.Errorf("failed output = %q, want stderr captured", out)
	}
}

func TestOSChooseDirectory(t *testing.T) {
	h := NewOS("")
	if _, err := h.ChooseDirectory(context.Background()); !alerr.Is(err, alerr.ErrHostChoose) {
		t.Errorf("ChooseDirectory() without chooser error = %v", err)
	}

	h.Chooser = func(context.Context) (string, error) { return "/work", nil }
	if got, err := h.ChooseDirectory(context.Background()); err != nil || got != "/work" {
		t.Errorf("ChooseDirectory() = %q, %v", got, err)
	}

	h.Chooser = func(context.Context) (string, error) { return "", nil }
	if _, err := h.ChooseDirectory(context.Background()); !alerr.Is(err, alerr.ErrHostChoose) {
		t.Errorf("ChooseDirectory(empty) error = %v", err)
	}
}

// -----------------------------------------------------------------------------
// Memory Tests
// -----------------------------------------------------------------------------

func TestMemoryListFiles(t *testing.T) {
	m := NewMemory(map[string]string{
		"/p/Domain/Entities/UserEntity.cs": "u",
		"/p/obj/Gen/UserEntity.cs":         "x",
		"/p/readme.md":                     "r",
		"/other/file":                      "o",
	})

	got, err := m.ListFiles(context.Background(), "/p/")
	if err != nil {
		t.Fatalf("ListFiles() error = %v", err)
	}
	want := []string{"/p/Domain/Entities/UserEntity.cs", "/p/readme.md"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ListFiles() = %v, want %v", got, want)
	}

	if _, err := m.ListFiles(context.Background(), "/nope"); !alerr.Is(err, alerr.ErrHostList) {
		t.Errorf("ListFiles(/nope) error = %v", err)
	}
}

func TestMemoryExecute(t *testing.T) {
	m := NewMemory(nil)
	ctx := context.Background()

	if out, err := m.ExecuteShellCommand(ctx, "echo"); err != nil || out != "echo" {
		t.Errorf("ExecuteShellCommand() = %q, %v", out, err)
	}

	m.Exec = func(cmd string) (string, error) { return "", errors.New("exit 1") }
	_, err := m.ExecuteShellCommand(ctx, "fail")
	if !alerr.Is(err, alerr.ErrCommandFailed) {
		t.Errorf("ExecuteShellCommand(fail) error = %v", err)
	}

	if got := m.Commands(); !reflect.DeepEqual(got, []string{"echo", "fail"}) {
		t.Errorf("Commands() = %v", got)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := m.ExecuteShellCommand(cancelled, "late"); !errors.Is(err, context.Canceled) {
		t.Errorf("ExecuteShellCommand(cancelled) error = %v", err)
	}
}
