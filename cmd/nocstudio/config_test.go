package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nocstudio.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("project-name", "", "")
	fs.String("project-dir", "", "")
	fs.String("state-dir", "", "")
	fs.String("on-error", "", "")
	fs.String("log-level", "", "")
	fs.Bool("existing", false, "")
	fs.Bool("order-insensitive", false, "")
	fs.Bool("verbose", false, "")
	if err := fs.Parse(args); err != nil {
		t.Fatal(err)
	}
	return fs
}

// -----------------------------------------------------------------------------
// loadConfig Tests
// -----------------------------------------------------------------------------

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.StateDir != ".nocstudio" {
		t.Errorf("StateDir = %q", cfg.StateDir)
	}
	if cfg.OnError != "continue" {
		t.Errorf("OnError = %q", cfg.OnError)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoadConfigPrecedence(t *testing.T) {
	path := writeConfig(t, `
project_name: FromFile
project_dir: /file
on_error: abort
existing_project: true
`)

	t.Run("file", func(t *testing.T) {
		cfg, err := loadConfig(path, testFlags(t))
		if err != nil {
			t.Fatalf("loadConfig() error = %v", err)
		}
		if cfg.ProjectName != "FromFile" || cfg.ProjectDir != "/file" || cfg.OnError != "abort" || !cfg.ExistingProject {
			t.Errorf("cfg = %+v", cfg)
		}
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("NOCSTUDIO_PROJECT_NAME", "FromEnv")
		t.Setenv("NOCSTUDIO_EXISTING_PROJECT", "false")
		cfg, err := loadConfig(path, testFlags(t))
		if err != nil {
			t.Fatalf("loadConfig() error = %v", err)
		}
		if cfg.ProjectName != "FromEnv" {
			t.Errorf("ProjectName = %q", cfg.ProjectName)
		}
		if cfg.ExistingProject {
			t.Error("ExistingProject should be overridden by env")
		}
		if cfg.ProjectDir != "/file" {
			t.Errorf("ProjectDir = %q", cfg.ProjectDir)
		}
	})

	t.Run("flags over env", func(t *testing.T) {
		t.Setenv("NOCSTUDIO_PROJECT_NAME", "FromEnv")
		cfg, err := loadConfig(path, testFlags(t, "--project-name", "FromFlag", "--on-error", "continue", "--verbose"))
		if err != nil {
			t.Fatalf("loadConfig() error = %v", err)
		}
		if cfg.ProjectName != "FromFlag" {
			t.Errorf("ProjectName = %q", cfg.ProjectName)
		}
		if cfg.OnError != "continue" {
			t.Errorf("OnError = %q", cfg.OnError)
		}
		if cfg.LogLevel != "debug" {
			t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
		}
	})
}

func TestLoadConfigExpandsEnv(t *testing.T) {
	t.Setenv("SHOP_ROOT", "/srv/shop")
	path := writeConfig(t, "project_dir: ${SHOP_ROOT}/src\n")

	cfg, err := loadConfig(path, nil)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.ProjectDir != "/srv/shop/src" {
		t.Errorf("ProjectDir = %q", cfg.ProjectDir)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
	}{
		{"bad yaml", "project_name: [unclosed\n", nil},
		{"bad mode", "on_error: retry\n", nil},
		{"bad level", "log_level: loud\n", nil},
		{"bad env bool", "", map[string]string{"NOCSTUDIO_EXISTING_PROJECT": "maybe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := loadConfig(writeConfig(t, tt.content), nil); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestConfigTemplateParses(t *testing.T) {
	path := writeConfig(t, "")
	if err := os.WriteFile(path, []byte(fmt.Sprintf(configTemplate, "Shop", ".state")), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(path, nil)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	if cfg.ProjectName != "Shop" || cfg.StateDir != ".state" || cfg.OnError != "continue" {
		t.Errorf("cfg = %+v", cfg)
	}
}
