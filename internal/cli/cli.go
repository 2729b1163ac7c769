// Package cli provides Cargo/rustc-style terminal output for nocstudio:
// colored labels, diagnostics for coded errors, tables, and progress for
// command runs. Colors are disabled automatically for pipes, NO_COLOR and
// TERM=dumb.
package cli

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// OutputMode determines how output is formatted.
type OutputMode int

const (
	// ModeTTY enables colored output for interactive terminals.
	ModeTTY OutputMode = iota
	// ModePlain outputs plain text (pipes, CI).
	ModePlain
	// ModeJSON outputs structured JSON.
	ModeJSON
)

// Config holds output configuration.
type Config struct {
	Mode   OutputMode
	Writer io.Writer
}

// DefaultConfig detects the mode from stdout and the environment.
func DefaultConfig() *Config {
	mode := ModePlain
	if IsTerminal(os.Stdout) {
		mode = ModeTTY
	}
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		mode = ModePlain
	}
	return &Config{Mode: mode, Writer: os.Stdout}
}

// NewConfigWithMode creates a config with a specific output mode.
func NewConfigWithMode(mode OutputMode) *Config {
	cfg := DefaultConfig()
	cfg.Mode = mode
	return cfg
}

// IsTTY returns true in interactive terminal mode.
func (c *Config) IsTTY() bool { return c.Mode == ModeTTY }

// IsJSON returns true in JSON output mode.
func (c *Config) IsJSON() bool { return c.Mode == ModeJSON }

var defaultCfg *Config

// Default returns the global configuration.
func Default() *Config {
	if defaultCfg == nil {
		defaultCfg = DefaultConfig()
	}
	return defaultCfg
}

// SetDefault replaces the global configuration.
func SetDefault(cfg *Config) {
	defaultCfg = cfg
}

// EnableColors returns true if colors should be used.
func EnableColors() bool {
	return Default().IsTTY()
}

// IsTerminal reports whether f is a terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
