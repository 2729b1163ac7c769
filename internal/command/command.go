// Package command serializes entities into nocsharp CLI invocations.
//
// Output is a flat ordered list of shell command strings. Callers must run
// them in order: the project creation command, when present, precedes every
// entity command, and entity commands follow input order after filtering.
package command

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hlop3z/nocstudio/internal/alerr"
	"github.com/hlop3z/nocstudio/internal/entity"
	"github.com/hlop3z/nocstudio/internal/merge"
	"github.com/hlop3z/nocstudio/internal/strutil"
)

// Generator CLI vocabulary.
const (
	Program      = "nocsharp"
	ScaffoldVerb = "s"
	NewVerb      = "new"
	BaseSkipFlag = "--baseSkip"
)

// Options controls Generate.
type Options struct {
	// IsExistingProject enables the Keep filter.
	IsExistingProject bool

	// Choices holds overwrite decisions for colliding names.
	Choices merge.Choices
}

// Generate returns one "nocsharp s" command per entity. When the project
// already exists, entities the user chose to keep are skipped.
//
// Names are not validated or escaped here; see ValidateEntity.
func Generate(entities []entity.Entity, opts Options) []string {
	cmds := make([]string, 0, len(entities))
	for _, e := range Filter(entities, opts) {
		cmds = append(cmds, Scaffold(e))
	}
	return cmds
}

// Filter returns the entities Generate would emit commands for.
func Filter(entities []entity.Entity, opts Options) []entity.Entity {
	out := make([]entity.Entity, 0, len(entities))
	for _, e := range entities {
		if opts.IsExistingProject && opts.Choices.Excluded(e.Name) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Scaffold renders a single entity command:
//
//	nocsharp s "<Name>" field1:Type "field2:Coll<Type>" [--baseSkip]
func Scaffold(e entity.Entity) string {
	parts := []string{Program, ScaffoldVerb, strutil.Quote(e.Name)}
	for _, p := range e.Properties {
		parts = append(parts, FormatField(p))
	}
	if e.BaseSkip {
		parts = append(parts, BaseSkipFlag)
	}
	return strings.Join(parts, " ")
}

// NewProject renders the project creation command.
func NewProject(name string) string {
	return strings.Join([]string{Program, NewVerb, strutil.Quote(name)}, " ")
}

// FormatField renders name:Type or name:Collection<Type>. Tokens holding
// both '<' and '>' are wrapped in double quotes for the shell.
func FormatField(p entity.Property) string {
	tok := p.Name + ":" + p.Type
	if p.CollectionType.IsCollection() {
		tok = p.Name + ":" + string(p.CollectionType) + "<" + p.Type + ">"
	}
	if strings.Contains(tok, "<") && strings.Contains(tok, ">") {
		return `"` + tok + `"`
	}
	return tok
}

var fieldRe = regexp.MustCompile(`^([^:\s]+):(?:(\w+)<([^<>]+)>|([^<>\s]+))$`)

// ParseField is the inverse of FormatField. Scalar fields come back with
// CollectionUnset.
func ParseField(token string) (entity.Property, error) {
	tok := strutil.Unquote(strings.TrimSpace(token))

	m := fieldRe.FindStringSubmatch(tok)
	if m == nil {
		return entity.Property{}, alerr.Newf(alerr.ErrInvalidFieldToken, "invalid field %q", token).
			WithNote("fields are written as name:Type or name:Collection<Type>").
			WithHelp("example: Email:string Tags:\"List<string>\"")
	}

	if m[4] != "" {
		return entity.Property{Name: m[1], Type: m[4], CollectionType: entity.CollectionUnset}, nil
	}

	coll, ok := entity.ParseCollection(m[2])
	if !ok || !coll.IsCollection() {
		e := alerr.Newf(alerr.ErrInvalidCollection, "unknown collection %q in field %q", m[2], token).
			WithProperty(m[1])
		if help := alerr.SuggestSimilar(m[2], collectionNames); help != "" {
			e.WithHelp(help)
		}
		return entity.Property{}, e
	}
	return entity.Property{Name: m[1], Type: m[3], CollectionType: coll}, nil
}

var collectionNames = []string{
	string(entity.CollectionList),
	string(entity.CollectionICollection),
	string(entity.CollectionIEnumerable),
	string(entity.CollectionArray),
}

// ParseFields parses a list of field tokens, stopping at the first error.
func ParseFields(tokens []string) ([]entity.Property, error) {
	props := make([]entity.Property, 0, len(tokens))
	for _, tok := range tokens {
		p, err := ParseField(tok)
		if err != nil {
			return nil, err
		}
		props = append(props, p)
	}
	return props, nil
}

// -----------------------------------------------------------------------------
// Name policy
// -----------------------------------------------------------------------------

// ValidateName checks that name starts with a letter and continues with
// letters or digits. kind is "entity" or "property" and only shapes the
// error message.
func ValidateName(kind, name string) error {
	if !strutil.IsIdentifier(name) {
		return alerr.NewInvalidIdentifierError(kind, name)
	}
	return nil
}

// ValidateEntity applies ValidateName to the entity and its properties.
func ValidateEntity(e entity.Entity) error {
	if err := ValidateName("entity", e.Name); err != nil {
		return err
	}
	for _, p := range e.Properties {
		if err := ValidateName("property", p.Name); err != nil {
			return alerr.Wrapf(alerr.ErrInvalidIdentifier, err, "entity %s has an invalid property", e.Name).
				WithEntity(e.Name).
				WithProperty(p.Name)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------
// Plans
// -----------------------------------------------------------------------------

// PlanOptions controls Plan.
type PlanOptions struct {
	Options

	// ProjectName is the generator project, created when not existing.
	ProjectName string

	// Dir is the directory that holds (or will hold) the project.
	Dir string
}

// ProjectDir is where entity commands run: Dir for an existing project,
// Dir/ProjectName for a new one.
func (o PlanOptions) ProjectDir() string {
	if o.IsExistingProject || o.ProjectName == "" {
		return o.Dir
	}
	return filepath.Join(o.Dir, o.ProjectName)
}

// Plan is Generate with every command prefixed by a directory change, and a
// project creation command first when the project does not exist yet.
func Plan(entities []entity.Entity, opts PlanOptions) []string {
	var cmds []string

	if !opts.IsExistingProject && opts.ProjectName != "" {
		cmds = append(cmds, InDir(opts.Dir, NewProject(opts.ProjectName)))
	}

	dir := opts.ProjectDir()
	for _, c := range Generate(entities, opts.Options) {
		cmds = append(cmds, InDir(dir, c))
	}
	return cmds
}

// InDir prefixes cmd with cd "<dir>" &&. An empty dir leaves cmd alone.
func InDir(dir, cmd string) string {
	if dir == "" {
		return cmd
	}
	return "cd " + strutil.Quote(dir) + " && " + cmd
}
