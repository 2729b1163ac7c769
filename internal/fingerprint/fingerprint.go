// Package fingerprint hashes entity sets into a merkle root so a rescan can
// tell cheaply whether a project's baseline moved, and which entities did.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"github.com/cbergoon/merkletree"

	"github.com/hlop3z/nocstudio/internal/alerr"
	"github.com/hlop3z/nocstudio/internal/entity"
)

// SetHash is the merkle fingerprint of an entity set.
type SetHash struct {
	Root     string            // Root hash of the whole set
	Entities map[string]string // Entity name -> hash for drill-down
}

// entityContent implements merkletree.Content for entity-level hashing.
type entityContent struct {
	name string
	hash string
}

func (c entityContent) CalculateHash() ([]byte, error) {
	h := sha256.Sum256([]byte(c.name + "\x00" + c.hash))
	return h[:], nil
}

func (c entityContent) Equals(other merkletree.Content) (bool, error) {
	o, ok := other.(entityContent)
	if !ok {
		return false, nil
	}
	return c.name == o.name && c.hash == o.hash, nil
}

// Compute hashes every entity except BaseEntity. Entity order does not
// matter; property order does, matching the default change comparison.
// Provenance is not hashed.
func Compute(entities []entity.Entity) (*SetHash, error) {
	res := &SetHash{Entities: make(map[string]string)}

	for _, e := range entity.WithoutBase(entities) {
		res.Entities[e.Name] = Entity(e)
	}
	if len(res.Entities) == 0 {
		res.Root = emptyHash()
		return res, nil
	}

	names := make([]string, 0, len(res.Entities))
	for name := range res.Entities {
		names = append(names, name)
	}
	sort.Strings(names)

	contents := make([]merkletree.Content, 0, len(names))
	for _, name := range names {
		contents = append(contents, entityContent{name: name, hash: res.Entities[name]})
	}

	tree, err := merkletree.NewTree(contents)
	if err != nil {
		return nil, alerr.Wrap(alerr.EInternalError, err, "failed to build merkle tree")
	}

	res.Root = hex.EncodeToString(tree.MerkleRoot())
	return res, nil
}

// Entity returns the hash of a single entity's structure.
func Entity(e entity.Entity) string {
	var b strings.Builder
	b.WriteString(e.Name)
	b.WriteString("|baseSkip=")
	b.WriteString(strconv.FormatBool(e.BaseSkip))
	for _, p := range e.Properties {
		coll := p.CollectionType
		if !coll.IsCollection() {
			coll = entity.CollectionNone
		}
		b.WriteString("|")
		b.WriteString(p.Name + ":" + string(coll) + ":" + p.Type)
	}
	return hashString(b.String())
}

func hashString(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])
}

// emptyHash returns a consistent hash for empty sets.
func emptyHash() string {
	return hashString("empty_entity_set")
}

// Comparison is the result of comparing two set hashes.
type Comparison struct {
	Match   bool     // True if the sets are identical
	Missing []string // Names only in the baseline
	Extra   []string // Names only in the new set
	Changed []string // Names in both with different hashes
}

// Compare compares a baseline hash against a newer one.
func Compare(baseline, current *SetHash) *Comparison {
	res := &Comparison{
		Match:   baseline.Root == current.Root,
		Missing: []string{},
		Extra:   []string{},
		Changed: []string{},
	}
	if res.Match {
		return res
	}

	for name, h := range baseline.Entities {
		ch, ok := current.Entities[name]
		switch {
		case !ok:
			res.Missing = append(res.Missing, name)
		case ch != h:
			res.Changed = append(res.Changed, name)
		}
	}
	for name := range current.Entities {
		if _, ok := baseline.Entities[name]; !ok {
			res.Extra = append(res.Extra, name)
		}
	}

	sort.Strings(res.Missing)
	sort.Strings(res.Extra)
	sort.Strings(res.Changed)
	return res
}
