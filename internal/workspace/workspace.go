// Package workspace persists the caller-owned "current" entity set and the
// overwrite choices between CLI invocations.
// The state lives in a YAML file (.nocstudio/state.yaml by default) that is
// safe to commit and easy to review by hand.
package workspace

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hlop3z/nocstudio/internal/alerr"
	"github.com/hlop3z/nocstudio/internal/entity"
	"github.com/hlop3z/nocstudio/internal/merge"
)

const (
	// DefaultDir is the state directory relative to the working directory.
	DefaultDir = ".nocstudio"
	// FileName is the state file inside the state directory.
	FileName = "state.yaml"
	// Version of the state file format.
	Version = "1"
)

// State is the persisted workspace.
type State struct {
	// Version of the state format
	Version string `yaml:"version"`

	// UpdatedAt is set by Save
	UpdatedAt time.Time `yaml:"updated_at"`

	// Source is the last file imported into Entities, if any
	Source string `yaml:"source,omitempty"`

	// Project is the scanned generator project directory, if any
	Project string `yaml:"project,omitempty"`

	// Entities is the current entity set, in display order
	Entities []entity.Entity `yaml:"entities"`

	// Choices holds overwrite decisions for colliding names
	Choices merge.Choices `yaml:"choices,omitempty"`
}

// New returns an empty state.
func New() *State {
	return &State{Version: Version, Entities: []entity.Entity{}, Choices: merge.Choices{}}
}

// Path returns the state file path inside dir.
func Path(dir string) string {
	if dir == "" {
		dir = DefaultDir
	}
	return filepath.Join(dir, FileName)
}

// Load reads the state file. A missing file yields an empty state.
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrHostState, err, "failed to read workspace state").
			WithFile(path, 0)
	}

	s := New()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, alerr.Wrap(alerr.ErrHostState, err, "invalid workspace state").
			WithFile(path, 0).
			WithHelp("fix the YAML or remove the file to start over")
	}
	if s.Entities == nil {
		s.Entities = []entity.Entity{}
	}
	if s.Choices == nil {
		s.Choices = merge.Choices{}
	}
	return s, nil
}

// Save writes the state file, creating its directory. The file is replaced
// atomically.
func (s *State) Save(path string) error {
	s.Version = Version
	s.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	data, err := yaml.Marshal(s)
	if err != nil {
		return alerr.Wrap(alerr.EInternalError, err, "failed to encode workspace state")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return alerr.Wrap(alerr.ErrHostState, err, "failed to create state directory").
			With("dir", filepath.Dir(path))
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return alerr.Wrap(alerr.ErrHostState, err, "failed to write workspace state").WithFile(tmp, 0)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return alerr.Wrap(alerr.ErrHostState, err, "failed to replace workspace state").WithFile(path, 0)
	}
	return nil
}

// Import merges incoming into the current set and records the source file.
// Duplicates (case and whitespace insensitive) are returned so the caller
// can ask for overwrite decisions.
func (s *State) Import(source string, incoming []entity.Entity, replace bool) []entity.Entity {
	dups := merge.FindDuplicates(incoming, s.Entities)
	s.Entities = merge.Merge(s.Entities, incoming, replace)
	if source != "" {
		s.Source = source
	}
	return dups
}

// Add appends e, failing if the name is taken.
func (s *State) Add(e entity.Entity) error {
	if entity.Index(s.Entities, e.Name) >= 0 {
		return alerr.Newf(alerr.ErrEntityDuplicate, "entity %q already exists", e.Name).
			WithEntity(e.Name).
			WithHelp("use 'entity rm' first, or import with --replace")
	}
	s.Entities = append(s.Entities, e)
	return nil
}

// Remove deletes the named entity and its overwrite decision.
func (s *State) Remove(name string) error {
	i := entity.Index(s.Entities, name)
	if i < 0 {
		return alerr.NewEntityNotFoundError(name, entity.Names(s.Entities))
	}
	s.Entities = append(s.Entities[:i:i], s.Entities[i+1:]...)
	delete(s.Choices, name)
	return nil
}

// Get returns the named entity.
func (s *State) Get(name string) (entity.Entity, error) {
	e, ok := entity.Find(s.Entities, name)
	if !ok {
		return entity.Entity{}, alerr.NewEntityNotFoundError(name, entity.Names(s.Entities))
	}
	return e, nil
}
