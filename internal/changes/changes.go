// Package changes classifies the entities of a current set against an
// original (previously scanned) set.
package changes

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/hlop3z/nocstudio/internal/entity"
)

// Comparator reports whether two entities with the same name are equal.
// It is the single point where change equality is decided.
type Comparator func(a, b entity.Entity) bool

// OrderSensitive compares name, properties and BaseSkip with properties in
// declaration order. Reordering properties counts as a modification.
func OrderSensitive(a, b entity.Entity) bool {
	return a.Name == b.Name &&
		a.BaseSkip == b.BaseSkip &&
		reflect.DeepEqual(normalize(a.Properties), normalize(b.Properties))
}

// OrderInsensitive is OrderSensitive with properties compared as a set
// keyed by name.
func OrderInsensitive(a, b entity.Entity) bool {
	return a.Name == b.Name &&
		a.BaseSkip == b.BaseSkip &&
		reflect.DeepEqual(sorted(a.Properties), sorted(b.Properties))
}

// normalize makes nil and empty property lists compare equal.
func normalize(props []entity.Property) []entity.Property {
	if len(props) == 0 {
		return nil
	}
	return props
}

func sorted(props []entity.Property) []entity.Property {
	if len(props) == 0 {
		return nil
	}
	out := make([]entity.Property, len(props))
	copy(out, props)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

type config struct {
	equal Comparator
}

// Option configures Detect.
type Option func(*config)

// WithComparator replaces the default OrderSensitive comparison.
func WithComparator(c Comparator) Option {
	return func(cfg *config) {
		if c != nil {
			cfg.equal = c
		}
	}
}

// Report is the outcome of Detect.
type Report struct {
	// HasChanges is true when ModifiedCount > 0
	HasChanges bool

	// ModifiedCount is |Added| + |Modified| + |Removed|
	ModifiedCount int

	// Added holds current entities with no original of the same name
	Added []entity.Entity

	// Modified holds current entities that differ from their original
	Modified []entity.Entity

	// Removed holds original entities with no current of the same name
	Removed []entity.Entity
}

// Detect compares current against original by entity name. BaseEntity is
// removed from both sides first. Added and Modified follow current order,
// Removed follows original order.
func Detect(current, original []entity.Entity, opts ...Option) *Report {
	cfg := config{equal: OrderSensitive}
	for _, opt := range opts {
		opt(&cfg)
	}

	cur := entity.WithoutBase(current)
	orig := entity.WithoutBase(original)

	origByName := make(map[string]entity.Entity, len(orig))
	for _, e := range orig {
		if _, seen := origByName[e.Name]; !seen {
			origByName[e.Name] = e
		}
	}
	curNames := make(map[string]bool, len(cur))

	r := &Report{
		Added:    []entity.Entity{},
		Modified: []entity.Entity{},
		Removed:  []entity.Entity{},
	}

	for _, e := range cur {
		curNames[e.Name] = true
		o, ok := origByName[e.Name]
		switch {
		case !ok:
			r.Added = append(r.Added, e)
		case !cfg.equal(e, o):
			r.Modified = append(r.Modified, e)
		}
	}

	for _, o := range orig {
		if !curNames[o.Name] {
			r.Removed = append(r.Removed, o)
		}
	}

	r.ModifiedCount = len(r.Added) + len(r.Modified) + len(r.Removed)
	r.HasChanges = r.ModifiedCount > 0
	return r
}

// Status returns "added", "modified" or "" for the named current entity.
func (r *Report) Status(name string) string {
	for _, e := range r.Added {
		if e.Name == name {
			return KindAdded
		}
	}
	for _, e := range r.Modified {
		if e.Name == name {
			return KindModified
		}
	}
	return ""
}

// Property change kinds.
const (
	KindAdded    = "added"
	KindModified = "modified"
	KindRemoved  = "removed"
)

// PropertyChange is one display line of a per-entity diff.
type PropertyChange struct {
	Type     string `json:"type" yaml:"type"`
	Property string `json:"property" yaml:"property"`
	Detail   string `json:"detail" yaml:"detail"`
}

// Details diffs the properties of e against a reference entity of the same
// name: the one in original if present, else the one in scanned. With no
// reference every property is reported as added. Output lists added and
// modified properties in e's order, then removed ones in reference order.
func Details(e entity.Entity, original, scanned []entity.Entity) []PropertyChange {
	ref, ok := entity.Find(original, e.Name)
	if !ok {
		ref, ok = entity.Find(scanned, e.Name)
	}

	var out []PropertyChange
	if !ok {
		for _, p := range e.Properties {
			out = append(out, PropertyChange{Type: KindAdded, Property: p.Name, Detail: describe(p)})
		}
		return out
	}

	for _, p := range e.Properties {
		old, found := ref.Property(p.Name)
		switch {
		case !found:
			out = append(out, PropertyChange{Type: KindAdded, Property: p.Name, Detail: describe(p)})
		case !sameShape(old, p):
			out = append(out, PropertyChange{
				Type:     KindModified,
				Property: p.Name,
				Detail:   fmt.Sprintf("%s -> %s", describe(old), describe(p)),
			})
		}
	}

	for _, old := range ref.Properties {
		if _, found := e.Property(old.Name); !found {
			out = append(out, PropertyChange{Type: KindRemoved, Property: old.Name, Detail: describe(old)})
		}
	}

	return out
}

// sameShape treats the two scalar spellings of CollectionType as equal.
func sameShape(a, b entity.Property) bool {
	return a.Type == b.Type && a.CollectionType.IsCollection() == b.CollectionType.IsCollection() &&
		(!a.CollectionType.IsCollection() || a.CollectionType == b.CollectionType)
}

// describe renders a property type the way the generator spells it.
func describe(p entity.Property) string {
	if p.CollectionType.IsCollection() {
		return fmt.Sprintf("%s<%s>", p.CollectionType, p.Type)
	}
	return p.Type
}
