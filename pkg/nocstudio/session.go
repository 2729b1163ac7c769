// Package nocstudio is the library API behind the nocstudio CLI.
//
// A Session owns three things: the current entity set (persisted in
// state.yaml), the scanned baseline of the generator project (cached in
// sqlite), and the overwrite decisions for colliding names. Everything else
// is derived: Changes compares current against the baseline, Commands and
// Plan render generator invocations, and Apply runs them.
//
// Example:
//
//	s, err := nocstudio.New(
//	    nocstudio.WithProjectDir("./Shop"),
//	    nocstudio.WithExistingProject(true),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	if _, err := s.ImportDBMLFile("schema.dbml"); err != nil {
//	    log.Fatal(err)
//	}
//	report, err := s.Apply(ctx)
package nocstudio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/hlop3z/nocstudio/internal/alerr"
	"github.com/hlop3z/nocstudio/internal/cache"
	"github.com/hlop3z/nocstudio/internal/changes"
	"github.com/hlop3z/nocstudio/internal/command"
	"github.com/hlop3z/nocstudio/internal/dbml"
	"github.com/hlop3z/nocstudio/internal/entity"
	"github.com/hlop3z/nocstudio/internal/fingerprint"
	"github.com/hlop3z/nocstudio/internal/host"
	"github.com/hlop3z/nocstudio/internal/merge"
	"github.com/hlop3z/nocstudio/internal/runner"
	"github.com/hlop3z/nocstudio/internal/scan"
	"github.com/hlop3z/nocstudio/internal/typemap"
	"github.com/hlop3z/nocstudio/internal/workspace"
)

// Session is the main entry point. Create one with New and Close it when
// done. A Session is not safe for concurrent use.
type Session struct {
	config    *Config
	host      host.Host
	logger    *slog.Logger
	state     *workspace.State
	statePath string
	cache     *cache.Cache

	// baseline is the scanned original set; loaded lazily from the cache.
	baseline       []entity.Entity
	baselineLoaded bool

	// scanned is the result of the last Scan in this session.
	scanned []entity.Entity
}

// New creates a Session, loading state.yaml and opening the cache.
func New(opts ...Option) (*Session, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.StateDir == "" {
		cfg.StateDir = workspace.DefaultDir
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	statePath := workspace.Path(cfg.StateDir)
	state, err := workspace.Load(statePath)
	if err != nil {
		return nil, err
	}

	s := &Session{
		config:    cfg,
		host:      cfg.Host,
		logger:    cfg.Logger,
		state:     state,
		statePath: statePath,
	}
	if s.host == nil {
		s.host = host.NewOS("")
	}

	if !cfg.NoCache {
		c, err := cache.Open(cfg.StateDir)
		if err != nil {
			return nil, err
		}
		s.cache = c
	}

	return s, nil
}

// Close releases the cache.
func (s *Session) Close() error {
	if s.cache == nil {
		return nil
	}
	err := s.cache.Close()
	s.cache = nil
	return err
}

// Config returns a copy of the session configuration.
func (s *Session) Config() Config {
	return *s.config
}

// Host returns the host commands run on.
func (s *Session) Host() host.Host {
	return s.host
}

// Save writes state.yaml.
func (s *Session) Save() error {
	return s.state.Save(s.statePath)
}

// StatePath returns the state file location.
func (s *Session) StatePath() string {
	return s.statePath
}

// Source returns the last imported file.
func (s *Session) Source() string {
	return s.state.Source
}

// Entities returns a copy of the current set.
func (s *Session) Entities() []entity.Entity {
	return entity.CloneAll(s.state.Entities)
}

// Entity returns the named current entity.
func (s *Session) Entity(name string) (entity.Entity, error) {
	return s.state.Get(name)
}

// Choices returns a copy of the overwrite decisions.
func (s *Session) Choices() merge.Choices {
	out := make(merge.Choices, len(s.state.Choices))
	for k, v := range s.state.Choices {
		out[k] = v
	}
	return out
}

// ProjectDir is the configured project directory, else the scanned one.
func (s *Session) ProjectDir() string {
	if s.config.ProjectDir != "" {
		return s.config.ProjectDir
	}
	return s.state.Project
}

// IsExistingProject reports whether commands target an existing project.
func (s *Session) IsExistingProject() bool {
	return s.config.ExistingProject || s.state.Project != ""
}

func projectKey(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

// -----------------------------------------------------------------------------
// Import
// -----------------------------------------------------------------------------

// ImportResult describes one DBML import.
type ImportResult struct {
	Source     string
	Entities   []entity.Entity
	Duplicates []string
	Warnings   []*alerr.Error
}

// Undecided returns duplicates without an overwrite decision.
func (r *ImportResult) Undecided(c merge.Choices) []string {
	var out []string
	for _, name := range r.Duplicates {
		if c.Get(name) == merge.Unspecified {
			out = append(out, name)
		}
	}
	return out
}

// ImportDBMLFile reads path through the host and imports it.
func (s *Session) ImportDBMLFile(path string, opts ...ImportOption) (*ImportResult, error) {
	text, err := s.host.ReadTextFile(path)
	if err != nil {
		return nil, err
	}
	return s.ImportDBML(text, path, opts...)
}

// ImportDBML parses DBML text and merges the tables into the current set.
// Names that already existed are reported as duplicates and settled by the
// options: explicit decisions first, then the resolver, then the default.
// The state is not saved.
func (s *Session) ImportDBML(text, source string, opts ...ImportOption) (*ImportResult, error) {
	cfg := &ImportConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	parsed, err := dbml.ParseChecked(text)
	if err != nil {
		var ae *alerr.Error
		if source != "" && errors.As(err, &ae) {
			ae.WithFile(source, 0)
		}
		return nil, err
	}
	for _, w := range parsed.Warnings {
		if source != "" {
			w.WithFile(source, 0)
		}
		s.logger.Warn(w.GetMessage(), "code", w.GetCode(), "source", source)
	}

	dups := s.state.Import(source, parsed.Entities, cfg.Replace)
	res := &ImportResult{
		Source:     source,
		Entities:   parsed.Entities,
		Duplicates: entity.Names(dups),
		Warnings:   parsed.Warnings,
	}

	for name, d := range cfg.Decisions {
		s.state.Choices.Set(name, d)
	}

	if cfg.Resolver != nil {
		if undecided := res.Undecided(s.state.Choices); len(undecided) > 0 {
			got, err := cfg.Resolver(undecided)
			if err != nil {
				return res, err
			}
			for name, d := range got {
				s.state.Choices.Set(name, d)
			}
		}
	}

	if cfg.Default != merge.Unspecified {
		s.state.Choices = merge.Resolve(s.state.Choices, dups, cfg.Default)
	}

	s.logger.Info("imported DBML",
		"source", source,
		"entities", len(parsed.Entities),
		"duplicates", len(dups),
		"replace", cfg.Replace)

	return res, nil
}

// -----------------------------------------------------------------------------
// Entity editing
// -----------------------------------------------------------------------------

// AddEntity creates an entity from field tokens (name:Type or
// name:Collection<Type>) and appends it to the current set.
func (s *Session) AddEntity(name string, fields []string, baseSkip bool) (entity.Entity, error) {
	if err := command.ValidateName("entity", name); err != nil {
		return entity.Entity{}, err
	}
	props, err := command.ParseFields(fields)
	if err != nil {
		var ae *alerr.Error
		if errors.As(err, &ae) {
			ae.WithEntity(name)
		}
		return entity.Entity{}, err
	}

	e := entity.Entity{Name: name, Properties: props, BaseSkip: baseSkip || s.config.BaseSkipDefault}
	if err := command.ValidateEntity(e); err != nil {
		return entity.Entity{}, err
	}
	if err := s.state.Add(e); err != nil {
		return entity.Entity{}, err
	}
	return e, nil
}

// TypeWarnings reports every property of e whose type is neither a
// canonical scalar nor the name of an entity in the current set.
func (s *Session) TypeWarnings(e entity.Entity) []*alerr.Error {
	var warnings []*alerr.Error
	for _, p := range e.Properties {
		if typemap.IsCanonical(p.Type) || p.Type == e.Name {
			continue
		}
		if _, ok := entity.Find(s.state.Entities, p.Type); ok {
			continue
		}
		warnings = append(warnings,
			alerr.Newf(alerr.WarnUnknownType, "unknown type %q", p.Type).
				WithEntity(e.Name).
				WithProperty(p.Name).
				WithHelp(fmt.Sprintf("add the %s entity or use a built-in type", p.Type)))
	}
	return warnings
}

// RemoveEntity drops the named entity and its overwrite decision.
func (s *Session) RemoveEntity(name string) error {
	return s.state.Remove(name)
}

// SetDecision records an overwrite decision for name.
func (s *Session) SetDecision(name string, d merge.Decision) {
	s.state.Choices.Set(name, d)
}

// -----------------------------------------------------------------------------
// Scan and baseline
// -----------------------------------------------------------------------------

// ScanResult describes one project scan.
type ScanResult struct {
	*scan.Result

	// Hash fingerprints the scanned set.
	Hash *fingerprint.SetHash

	// Previous is the fingerprint of the prior baseline, nil on first scan.
	Previous *fingerprint.SetHash

	// Comparison is set when Previous is.
	Comparison *fingerprint.Comparison
}

// Moved reports whether a previous baseline existed and differs.
func (r *ScanResult) Moved() bool {
	return r.Comparison != nil && !r.Comparison.Match
}

// Scan reads the generator project in dir and stores its entities as the
// new baseline. An empty dir means the project directory, and failing that
// the host's directory chooser. Scanned entities missing from the current
// set are added to it; current definitions are kept.
func (s *Session) Scan(ctx context.Context, dir string) (*ScanResult, error) {
	if dir == "" {
		dir = s.ProjectDir()
	}
	if dir == "" {
		chosen, err := s.host.ChooseDirectory(ctx)
		if err != nil {
			return nil, err
		}
		dir = chosen
	}

	res, err := scan.New(s.host, s.logger).Require(ctx, dir)
	if err != nil {
		return nil, err
	}

	out := &ScanResult{Result: res}
	key := projectKey(dir)

	if s.cache != nil {
		prev, err := s.cache.GetBaseline(key)
		if err != nil {
			return nil, err
		}
		if prev != nil {
			out.Previous = prev.Hash
		}
		stored, err := s.cache.SetBaseline(key, res.Entities)
		if err != nil {
			return nil, err
		}
		out.Hash = stored.Hash
	} else {
		if s.baselineLoaded {
			if out.Previous, err = fingerprint.Compute(s.baseline); err != nil {
				return nil, err
			}
		}
		if out.Hash, err = fingerprint.Compute(res.Entities); err != nil {
			return nil, err
		}
	}
	if out.Previous != nil {
		out.Comparison = fingerprint.Compare(out.Previous, out.Hash)
	}

	s.baseline = entity.CloneAll(res.Entities)
	s.baselineLoaded = true
	s.scanned = entity.CloneAll(res.Entities)

	s.state.Entities = merge.Merge(entity.CloneAll(res.Entities), s.state.Entities, false)
	s.state.Project = dir
	if s.config.ProjectDir == "" {
		s.config.ProjectDir = dir
	}

	s.logger.Info("baseline updated", "project", key, "root", out.Hash.Root, "moved", out.Moved())
	return out, nil
}

// Original returns the baseline entity set, empty when the project has
// never been scanned.
func (s *Session) Original() ([]entity.Entity, error) {
	if s.baselineLoaded {
		return entity.CloneAll(s.baseline), nil
	}
	s.baselineLoaded = true

	dir := s.ProjectDir()
	if s.cache == nil || dir == "" {
		return nil, nil
	}
	b, err := s.cache.GetBaseline(projectKey(dir))
	if err != nil {
		return nil, err
	}
	if b != nil {
		s.baseline = b.Entities
	}
	return entity.CloneAll(s.baseline), nil
}

// -----------------------------------------------------------------------------
// Changes and commands
// -----------------------------------------------------------------------------

// Changes compares the current set against the baseline.
func (s *Session) Changes() (*changes.Report, error) {
	original, err := s.Original()
	if err != nil {
		return nil, err
	}
	var opts []changes.Option
	if s.config.OrderInsensitive {
		opts = append(opts, changes.WithComparator(changes.OrderInsensitive))
	}
	return changes.Detect(s.state.Entities, original, opts...), nil
}

// Details diffs the named entity's properties against the baseline.
func (s *Session) Details(name string) ([]changes.PropertyChange, error) {
	e, err := s.state.Get(name)
	if err != nil {
		return nil, err
	}
	original, err := s.Original()
	if err != nil {
		return nil, err
	}
	return changes.Details(e, original, s.scanned), nil
}

// Scanned returns the entities of the last Scan in this session.
func (s *Session) Scanned() []entity.Entity {
	return entity.CloneAll(s.scanned)
}

func (s *Session) commandOptions() command.Options {
	return command.Options{IsExistingProject: s.IsExistingProject(), Choices: s.state.Choices}
}

// Commands renders one generator command per entity, without directory
// prefixes.
func (s *Session) Commands() []string {
	return command.Generate(s.state.Entities, s.commandOptions())
}

// Plan renders the full command list Apply would run.
func (s *Session) Plan() []string {
	return command.Plan(s.state.Entities, command.PlanOptions{
		Options:     s.commandOptions(),
		ProjectName: s.config.ProjectName,
		Dir:         s.ProjectDir(),
	})
}

// Apply runs the plan through the host, one command at a time, and records
// the run in the journal. Command failures are in the report (see
// Report.Err); the returned error is for cancellation and journal failures.
// In dry-run mode the plan is written out and the report is nil.
func (s *Session) Apply(ctx context.Context, opts ...ApplyOption) (*runner.Report, error) {
	cfg := &ApplyConfig{Output: io.Discard}
	for _, opt := range opts {
		opt(cfg)
	}

	plan := s.Plan()
	if len(plan) == 0 {
		return nil, alerr.New(alerr.ErrNothingToApply, "nothing to apply").
			WithNote(fmt.Sprintf("%d entities, %d kept", len(s.state.Entities), len(s.state.Choices.Kept()))).
			WithHelp("import a DBML file or add an entity first")
	}

	if cfg.DryRun {
		if cfg.Output == nil {
			cfg.Output = io.Discard
		}
		_, err := io.WriteString(cfg.Output, strings.Join(plan, "\n")+"\n")
		return nil, err
	}

	mode := s.config.OnError
	if cfg.Mode != nil {
		mode = *cfg.Mode
	}
	r := runner.New(s.host,
		runner.WithMode(mode),
		runner.WithLogger(s.logger),
		runner.WithObserver(cfg.Observer),
	)
	rep, runErr := r.Run(ctx, plan)

	if s.cache != nil {
		rec := cache.NewRunRecord(projectKey(s.ProjectDir()), rep)
		if err := s.cache.RecordRun(rec); err != nil {
			s.logger.Warn("failed to journal run", "error", err)
			if runErr == nil {
				runErr = err
			}
		}
	}
	return rep, runErr
}

// -----------------------------------------------------------------------------
// Cache maintenance
// -----------------------------------------------------------------------------

// errNoCache is returned by cache maintenance when the cache is disabled.
func errNoCache() error {
	return alerr.New(alerr.ErrCacheRead, "cache is disabled").
		WithHelp("remove the WithoutCache option")
}

// CachePath returns the cache database path, or "" when the cache is disabled.
func (s *Session) CachePath() string {
	if s.cache == nil {
		return ""
	}
	return s.cache.Path()
}

// Baselines returns every stored baseline ordered by project path.
func (s *Session) Baselines() ([]*cache.Baseline, error) {
	if s.cache == nil {
		return nil, errNoCache()
	}
	projects, err := s.cache.ListBaselines()
	if err != nil {
		return nil, err
	}
	out := make([]*cache.Baseline, 0, len(projects))
	for _, p := range projects {
		b, err := s.cache.GetBaseline(p)
		if err != nil {
			return nil, err
		}
		if b != nil {
			out = append(out, b)
		}
	}
	return out, nil
}

// ForgetBaseline drops the stored baseline of the project in dir. The next
// status treats every entity as added until the project is scanned again.
func (s *Session) ForgetBaseline(dir string) error {
	if s.cache == nil {
		return errNoCache()
	}
	key := projectKey(dir)
	b, err := s.cache.GetBaseline(key)
	if err != nil {
		return err
	}
	if b == nil {
		return alerr.New(alerr.ErrCacheRead, "no baseline stored for project").
			With("project", key).
			WithHelp("list stored baselines with 'nocstudio cache list'")
	}
	if err := s.cache.DeleteBaseline(key); err != nil {
		return err
	}
	s.resetBaseline()
	s.logger.Info("baseline forgotten", "project", key)
	return nil
}

// ClearCache removes every baseline and journaled run.
func (s *Session) ClearCache() error {
	if s.cache == nil {
		return errNoCache()
	}
	if err := s.cache.Clear(); err != nil {
		return err
	}
	s.resetBaseline()
	s.logger.Info("cache cleared", "path", s.cache.Path())
	return nil
}

func (s *Session) resetBaseline() {
	s.baseline = nil
	s.baselineLoaded = false
	s.scanned = nil
}

// Runs lists journaled runs, newest first. Zero limit means all.
func (s *Session) Runs(limit int) ([]*cache.RunRecord, error) {
	if s.cache == nil {
		return nil, nil
	}
	return s.cache.ListRuns(limit)
}

// Run returns one journaled run by ID or unique ID prefix.
func (s *Session) Run(id string) (*cache.RunRecord, error) {
	if s.cache == nil {
		return nil, alerr.New(alerr.ErrCacheRead, "run journal is disabled")
	}
	rec, err := s.cache.GetRun(id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, alerr.Newf(alerr.ErrCacheRead, "run %q not found", id).
			WithHelp("list runs with 'nocstudio runs'")
	}
	return rec, nil
}
