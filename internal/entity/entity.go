// Package entity defines the entity model shared by the parsers, the change
// detector, the merge engine and the command factory.
//
// Entities are plain values. Every function in this module takes collections
// by value and returns fresh ones; callers own the "current" and "original"
// snapshots and decide how long they live.
package entity

import "strings"

// BaseEntityName is the common base type emitted by the generator. It is not
// user data and is excluded from change detection and counts.
const BaseEntityName = "BaseEntity"

// Collection is the multiplicity wrapper around a property's element type.
type Collection string

// Collection kinds. Both CollectionUnset and CollectionNone mean scalar:
// the DBML parser leaves the field empty, the source parser writes "none".
const (
	CollectionUnset       Collection = ""
	CollectionNone        Collection = "none"
	CollectionList        Collection = "List"
	CollectionICollection Collection = "ICollection"
	CollectionIEnumerable Collection = "IEnumerable"
	CollectionArray       Collection = "Array"
)

// IsCollection reports whether c wraps the element type.
func (c Collection) IsCollection() bool {
	return c != CollectionUnset && c != CollectionNone
}

// Valid reports whether c is one of the known collection kinds.
func (c Collection) Valid() bool {
	switch c {
	case CollectionUnset, CollectionNone, CollectionList, CollectionICollection,
		CollectionIEnumerable, CollectionArray:
		return true
	}
	return false
}

// ParseCollection returns the collection kind named by s.
func ParseCollection(s string) (Collection, bool) {
	c := Collection(s)
	return c, c.Valid()
}

// Property is a single typed member of an entity.
//
// When CollectionType is a collection, Type names the element type and never
// a generic instantiation.
type Property struct {
	Name           string     `json:"name" yaml:"name"`
	Type           string     `json:"type" yaml:"type"`
	CollectionType Collection `json:"collectionType" yaml:"collection_type"`
}

// Entity is a named record type the generator creates source files for.
type Entity struct {
	Name       string     `json:"name" yaml:"name"`
	Properties []Property `json:"properties" yaml:"properties"`

	// FilePath and IsExisting are provenance markers set only when the
	// entity was recovered from an already generated project.
	FilePath   string `json:"filePath,omitempty" yaml:"file_path,omitempty"`
	IsExisting bool   `json:"isExisting,omitempty" yaml:"is_existing,omitempty"`

	// BaseSkip asks the generator to skip base entity boilerplate.
	BaseSkip bool `json:"baseSkip,omitempty" yaml:"base_skip,omitempty"`
}

// IsBase reports whether e is the generator's BaseEntity sentinel.
func (e Entity) IsBase() bool {
	return e.Name == BaseEntityName
}

// Property returns the property with the given name.
func (e Entity) Property(name string) (Property, bool) {
	for _, p := range e.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// Clone returns a deep copy of e.
func (e Entity) Clone() Entity {
	out := e
	if e.Properties != nil {
		out.Properties = make([]Property, len(e.Properties))
		copy(out.Properties, e.Properties)
	}
	return out
}

// CloneAll returns a deep copy of entities.
func CloneAll(entities []Entity) []Entity {
	if entities == nil {
		return nil
	}
	out := make([]Entity, len(entities))
	for i, e := range entities {
		out[i] = e.Clone()
	}
	return out
}

// WithoutBase returns the entities not named BaseEntity, preserving order.
func WithoutBase(entities []Entity) []Entity {
	out := make([]Entity, 0, len(entities))
	for _, e := range entities {
		if !e.IsBase() {
			out = append(out, e)
		}
	}
	return out
}

// Names returns the entity names in order.
func Names(entities []Entity) []string {
	names := make([]string, len(entities))
	for i, e := range entities {
		names[i] = e.Name
	}
	return names
}

// Index returns the position of the entity named name, or -1.
func Index(entities []Entity, name string) int {
	for i, e := range entities {
		if e.Name == name {
			return i
		}
	}
	return -1
}

// Find returns the entity named name.
func Find(entities []Entity, name string) (Entity, bool) {
	if i := Index(entities, name); i >= 0 {
		return entities[i], true
	}
	return Entity{}, false
}

// Count returns the number of entities excluding BaseEntity.
func Count(entities []Entity) int {
	n := 0
	for _, e := range entities {
		if !e.IsBase() {
			n++
		}
	}
	return n
}

// NormalizeName folds a name for case and whitespace insensitive matching.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
