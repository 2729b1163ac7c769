package nocstudio

import (
	"io"
	"log/slog"

	"github.com/hlop3z/nocstudio/internal/host"
	"github.com/hlop3z/nocstudio/internal/merge"
	"github.com/hlop3z/nocstudio/internal/runner"
	"github.com/hlop3z/nocstudio/internal/workspace"
)

// Config holds all configuration options for a Session.
type Config struct {
	// ProjectName is the generator project created by Apply when the
	// project does not exist yet.
	ProjectName string

	// ProjectDir is the directory that holds the generator project. For a
	// new project it is the parent directory; Apply runs "nocsharp new"
	// there and the entity commands inside ProjectDir/ProjectName.
	// Default: the scanned project, else the working directory
	ProjectDir string

	// ExistingProject marks ProjectDir as an existing generator project.
	// Scan sets it implicitly.
	ExistingProject bool

	// StateDir holds state.yaml and cache.db.
	// Default: .nocstudio
	StateDir string

	// OnError is the run policy for Apply.
	// Default: runner.ContinueOnError
	OnError runner.Mode

	// OrderInsensitive makes change detection ignore property order.
	OrderInsensitive bool

	// BaseSkipDefault is applied to entities added without an explicit
	// BaseSkip setting.
	BaseSkipDefault bool

	// Logger receives structured logs. Default: slog.Default()
	Logger *slog.Logger

	// Host runs commands and reads the project tree.
	// Default: host.NewOS(ProjectDir)
	Host host.Host

	// NoCache skips the sqlite baseline cache and run journal.
	NoCache bool
}

// Option is a functional option for configuring a Session.
type Option func(*Config)

// WithProjectName sets the generator project name.
func WithProjectName(name string) Option {
	return func(c *Config) {
		c.ProjectName = name
	}
}

// WithProjectDir sets the project directory.
func WithProjectDir(dir string) Option {
	return func(c *Config) {
		c.ProjectDir = dir
	}
}

// WithExistingProject marks the project directory as already generated.
func WithExistingProject(existing bool) Option {
	return func(c *Config) {
		c.ExistingProject = existing
	}
}

// WithStateDir sets the state directory.
// Default: .nocstudio
func WithStateDir(dir string) Option {
	return func(c *Config) {
		c.StateDir = dir
	}
}

// WithOnError sets the Apply run policy.
func WithOnError(m runner.Mode) Option {
	return func(c *Config) {
		c.OnError = m
	}
}

// WithOrderInsensitive makes property order irrelevant to change detection.
func WithOrderInsensitive(on bool) Option {
	return func(c *Config) {
		c.OrderInsensitive = on
	}
}

// WithBaseSkipDefault sets BaseSkip for entities created by AddEntity.
func WithBaseSkipDefault(on bool) Option {
	return func(c *Config) {
		c.BaseSkipDefault = on
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithHost replaces the OS host, e.g. with host.NewMemory in tests.
func WithHost(h host.Host) Option {
	return func(c *Config) {
		c.Host = h
	}
}

// WithoutCache disables the baseline cache and the run journal. Baselines
// then live only as long as the Session.
func WithoutCache() Option {
	return func(c *Config) {
		c.NoCache = true
	}
}

func defaultConfig() *Config {
	return &Config{
		StateDir: workspace.DefaultDir,
		OnError:  runner.ContinueOnError,
	}
}

// ImportConfig holds options for ImportDBML.
type ImportConfig struct {
	// Replace discards the current set instead of upserting into it.
	Replace bool

	// Decisions are recorded for the named duplicates before Resolver runs.
	Decisions merge.Choices

	// Default is recorded for every duplicate still undecided after
	// Resolver. Unspecified leaves them open.
	Default merge.Decision

	// Resolver is asked about duplicates that are still undecided.
	Resolver func(duplicates []string) (merge.Choices, error)
}

// ImportOption is a functional option for ImportDBML.
type ImportOption func(*ImportConfig)

// Replace makes the import discard the current set.
func Replace() ImportOption {
	return func(c *ImportConfig) {
		c.Replace = true
	}
}

// Decide records d for the named entities.
func Decide(d merge.Decision, names ...string) ImportOption {
	return func(c *ImportConfig) {
		if c.Decisions == nil {
			c.Decisions = merge.Choices{}
		}
		for _, n := range names {
			c.Decisions.Set(n, d)
		}
	}
}

// DecideAll records d for every duplicate left undecided.
func DecideAll(d merge.Decision) ImportOption {
	return func(c *ImportConfig) {
		c.Default = d
	}
}

// ResolveWith installs an interactive resolver.
func ResolveWith(fn func(duplicates []string) (merge.Choices, error)) ImportOption {
	return func(c *ImportConfig) {
		c.Resolver = fn
	}
}

// ApplyConfig holds options for Apply.
type ApplyConfig struct {
	// DryRun prints the plan instead of executing it.
	DryRun bool

	// Output receives the plan in dry-run mode. Defaults to io.Discard.
	Output io.Writer

	// Observer is notified around every executed command.
	Observer runner.Observer

	// Mode overrides the session's failure policy for this run.
	Mode *runner.Mode
}

// ApplyOption is a functional option for Apply.
type ApplyOption func(*ApplyConfig)

// DryRun enables dry-run mode.
func DryRun() ApplyOption {
	return func(c *ApplyConfig) {
		c.DryRun = true
	}
}

// DryRunTo enables dry-run mode and writes the plan to w.
func DryRunTo(w io.Writer) ApplyOption {
	return func(c *ApplyConfig) {
		c.DryRun = true
		c.Output = w
	}
}

// RunMode overrides the failure policy for one Apply.
func RunMode(m runner.Mode) ApplyOption {
	return func(c *ApplyConfig) {
		c.Mode = &m
	}
}

// Observe installs progress callbacks for executed commands.
func Observe(o runner.Observer) ApplyOption {
	return func(c *ApplyConfig) {
		c.Observer = o
	}
}
