// Package merge reconciles incoming entities with the current set and
// resolves per-entity overwrite decisions for name collisions.
package merge

import (
	"sort"
	"strings"

	"github.com/hlop3z/nocstudio/internal/alerr"
	"github.com/hlop3z/nocstudio/internal/entity"
)

// Merge combines incoming into current and returns a fresh slice.
//
// With replace the result is exactly incoming. Otherwise entities are
// upserted by exact name: a match is shallow-merged in place with incoming
// winning, anything else is appended in incoming order.
//
// Name, Properties and BaseSkip always come from incoming. FilePath and
// IsExisting are provenance and only move when incoming carries a FilePath,
// so importing DBML over a scanned entity does not forget where it lives.
func Merge(current, incoming []entity.Entity, replace bool) []entity.Entity {
	if replace {
		return entity.CloneAll(incoming)
	}

	out := entity.CloneAll(current)
	if out == nil {
		out = make([]entity.Entity, 0, len(incoming))
	}
	byName := make(map[string]int, len(out))
	for i, e := range out {
		if _, seen := byName[e.Name]; !seen {
			byName[e.Name] = i
		}
	}

	for _, in := range incoming {
		in = in.Clone()
		idx, exists := byName[in.Name]
		if !exists {
			out = append(out, in)
			byName[in.Name] = len(out) - 1
			continue
		}

		e := &out[idx]
		e.Name = in.Name
		e.Properties = in.Properties
		e.BaseSkip = in.BaseSkip
		if in.FilePath != "" {
			e.FilePath = in.FilePath
			e.IsExisting = in.IsExisting
		}
	}

	return out
}

// FindDuplicates returns the incoming entities whose name matches an
// existing one after trimming whitespace and folding case.
func FindDuplicates(incoming, existing []entity.Entity) []entity.Entity {
	known := make(map[string]bool, len(existing))
	for _, e := range existing {
		known[entity.NormalizeName(e.Name)] = true
	}

	dups := []entity.Entity{}
	for _, e := range incoming {
		if known[entity.NormalizeName(e.Name)] {
			dups = append(dups, e)
		}
	}
	return dups
}

// -----------------------------------------------------------------------------
// Overwrite decisions
// -----------------------------------------------------------------------------

// Decision is the user's answer for one colliding entity name.
type Decision int

const (
	// Unspecified means no answer was given. It is treated as Overwrite.
	Unspecified Decision = iota
	// Keep retains the existing entity and excludes it from generation.
	Keep
	// Overwrite replaces the existing entity.
	Overwrite
)

func (d Decision) String() string {
	switch d {
	case Keep:
		return "keep"
	case Overwrite:
		return "overwrite"
	default:
		return "unspecified"
	}
}

// ParseDecision parses "keep", "overwrite" or "unspecified" (or "").
func ParseDecision(s string) (Decision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "keep":
		return Keep, nil
	case "overwrite":
		return Overwrite, nil
	case "", "unspecified":
		return Unspecified, nil
	}
	err := alerr.Newf(alerr.ErrInvalidDecision, "unknown overwrite decision %q", s).
		WithNote("valid decisions: keep, overwrite, unspecified")
	if help := alerr.SuggestSimilar(s, []string{"keep", "overwrite", "unspecified"}); help != "" {
		err.WithHelp(help)
	}
	return Unspecified, err
}

// MarshalYAML stores decisions by name.
func (d Decision) MarshalYAML() (any, error) {
	return d.String(), nil
}

// UnmarshalYAML reads a decision written by MarshalYAML.
func (d *Decision) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := ParseDecision(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Choices maps entity names to decisions. A nil Choices is valid and
// answers Unspecified for every name.
type Choices map[string]Decision

// Get returns the decision for name.
func (c Choices) Get(name string) Decision {
	return c[name]
}

// Set records d for name; Unspecified clears the entry.
func (c Choices) Set(name string, d Decision) {
	if d == Unspecified {
		delete(c, name)
		return
	}
	c[name] = d
}

// Excluded reports whether name was explicitly kept.
func (c Choices) Excluded(name string) bool {
	return c[name] == Keep
}

// Kept returns the names marked Keep, sorted.
func (c Choices) Kept() []string {
	var names []string
	for name, d := range c {
		if d == Keep {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Resolve records d for every duplicate that has no decision yet and
// returns the updated choices. Existing decisions are left alone.
func Resolve(c Choices, duplicates []entity.Entity, d Decision) Choices {
	if c == nil {
		c = Choices{}
	}
	for _, e := range duplicates {
		if c.Get(e.Name) == Unspecified {
			c.Set(e.Name, d)
		}
	}
	return c
}
