package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/hlop3z/nocstudio/internal/host"
	"github.com/hlop3z/nocstudio/internal/runner"
	"github.com/hlop3z/nocstudio/internal/ui"
	"github.com/hlop3z/nocstudio/internal/workspace"
	"github.com/hlop3z/nocstudio/pkg/nocstudio"
)

// DefaultConfigFile is read from the working directory unless --config says
// otherwise.
const DefaultConfigFile = "nocstudio.yaml"

// envPrefix prefixes every environment override.
const envPrefix = "NOCSTUDIO_"

// Config represents the nocstudio.yaml configuration file.
type Config struct {
	ProjectName      string `yaml:"project_name"`
	ProjectDir       string `yaml:"project_dir"`
	ExistingProject  bool   `yaml:"existing_project"`
	StateDir         string `yaml:"state_dir"`
	OnError          string `yaml:"on_error"`
	OrderInsensitive bool   `yaml:"order_insensitive"`
	LogLevel         string `yaml:"log_level"`
	BaseSkipDefault  bool   `yaml:"base_skip_default"`
}

func defaultConfig() *Config {
	return &Config{
		StateDir: workspace.DefaultDir,
		OnError:  runner.ContinueOnError.String(),
		LogLevel: "warn",
	}
}

// loadConfig loads configuration from file, env vars, and CLI flags.
// Precedence: CLI flags > env vars > config file > defaults
func loadConfig(path string, flags *pflag.FlagSet) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		cfg.expand()
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if flags != nil {
		cfg.applyFlags(flags)
	}

	if _, err := runner.ParseMode(cfg.OnError); err != nil {
		return nil, err
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return nil, err
	}
	return cfg, nil
}

// expand replaces ${VAR} in string fields.
func (c *Config) expand() {
	for _, s := range []*string{&c.ProjectName, &c.ProjectDir, &c.StateDir, &c.OnError, &c.LogLevel} {
		*s = expandEnvVars(*s)
	}
}

// expandEnvVars expands ${VAR} patterns in a string.
func expandEnvVars(s string) string {
	return os.Expand(s, os.Getenv)
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"PROJECT_NAME": &c.ProjectName,
		"PROJECT_DIR":  &c.ProjectDir,
		"STATE_DIR":    &c.StateDir,
		"ON_ERROR":     &c.OnError,
		"LOG_LEVEL":    &c.LogLevel,
	}
	for key, dst := range strs {
		if v := os.Getenv(envPrefix + key); v != "" {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"EXISTING_PROJECT":  &c.ExistingProject,
		"ORDER_INSENSITIVE": &c.OrderInsensitive,
		"BASE_SKIP_DEFAULT": &c.BaseSkipDefault,
	}
	for key, dst := range bools {
		v := os.Getenv(envPrefix + key)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s%s=%q: expected true or false", envPrefix, key, v)
		}
		*dst = b
	}
	return nil
}

func (c *Config) applyFlags(flags *pflag.FlagSet) {
	str := func(name string, dst *string) {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	boolean := func(name string, dst *bool) {
		if flags.Changed(name) {
			*dst, _ = flags.GetBool(name)
		}
	}

	str("project-name", &c.ProjectName)
	str("project-dir", &c.ProjectDir)
	str("state-dir", &c.StateDir)
	str("on-error", &c.OnError)
	str("log-level", &c.LogLevel)
	boolean("existing", &c.ExistingProject)
	boolean("order-insensitive", &c.OrderInsensitive)

	if v, _ := flags.GetBool("verbose"); v && flags.Changed("verbose") {
		c.LogLevel = "debug"
	}
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("invalid log level %q: expected debug, info, warn or error", s)
	}
	return lvl, nil
}

// setupLogger installs a text handler on stderr at the configured level.
func setupLogger(cfg *Config) *slog.Logger {
	lvl, _ := parseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}

// newSession creates a session from the merged configuration.
func newSession(flags *pflag.FlagSet) (*nocstudio.Session, *Config, error) {
	cfg, err := loadConfig(configFile, flags)
	if err != nil {
		return nil, nil, err
	}
	logger := setupLogger(cfg)
	mode, _ := runner.ParseMode(cfg.OnError)

	h := host.NewOS("")
	if ui.IsTerminal() {
		h.Chooser = ui.Stdio().DirectoryChooser("")
	}

	s, err := nocstudio.New(
		nocstudio.WithProjectName(cfg.ProjectName),
		nocstudio.WithProjectDir(cfg.ProjectDir),
		nocstudio.WithExistingProject(cfg.ExistingProject),
		nocstudio.WithStateDir(cfg.StateDir),
		nocstudio.WithOnError(mode),
		nocstudio.WithOrderInsensitive(cfg.OrderInsensitive),
		nocstudio.WithBaseSkipDefault(cfg.BaseSkipDefault),
		nocstudio.WithLogger(logger),
		nocstudio.WithHost(h),
	)
	if err != nil {
		return nil, nil, err
	}
	return s, cfg, nil
}

const configTemplate = `# nocstudio.yaml
project_name: %s
project_dir: .
existing_project: false
state_dir: %s

# continue | abort
on_error: continue
order_insensitive: false
base_skip_default: false
log_level: warn
`
