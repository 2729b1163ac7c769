package changes

import (
	"reflect"
	"testing"

	"github.com/hlop3z/nocstudio/internal/entity"
)

func ent(name string, props ...entity.Property) entity.Entity {
	return entity.Entity{Name: name, Properties: props}
}

func prop(name, typ string) entity.Property {
	return entity.Property{Name: name, Type: typ, CollectionType: entity.CollectionNone}
}

// -----------------------------------------------------------------------------
// Detect Tests
// -----------------------------------------------------------------------------

func TestDetectIdenticalSets(t *testing.T) {
	sets := map[string][]entity.Entity{
		"empty":  nil,
		"single": {ent("User", prop("Email", "string"))},
		"many": {
			ent("User", prop("Email", "string")),
			ent("Post", prop("Title", "string"), prop("Views", "int")),
			ent(entity.BaseEntityName),
		},
	}

	for name, x := range sets {
		t.Run(name, func(t *testing.T) {
			r := Detect(x, entity.CloneAll(x))
			if r.HasChanges || r.ModifiedCount != 0 {
				t.Errorf("Detect(X, X) = %+v, want no changes", r)
			}
			if len(r.Added)+len(r.Modified)+len(r.Removed) != 0 {
				t.Errorf("Detect(X, X) lists = %+v", r)
			}
		})
	}
}

func TestDetectClassifies(t *testing.T) {
	current := []entity.Entity{
		ent("User", prop("Email", "string")),
		ent("Post", prop("Title", "string"), prop("Body", "string")),
		ent("Tag", prop("Label", "string")),
	}
	original := []entity.Entity{
		ent("Comment", prop("Text", "string")),
		ent("Post", prop("Title", "string")),
		ent("Tag", prop("Label", "string")),
	}

	r := Detect(current, original)

	if got := entity.Names(r.Added); !reflect.DeepEqual(got, []string{"User"}) {
		t.Errorf("Added = %v, want [User]", got)
	}
	if got := entity.Names(r.Modified); !reflect.DeepEqual(got, []string{"Post"}) {
		t.Errorf("Modified = %v, want [Post]", got)
	}
	if got := entity.Names(r.Removed); !reflect.DeepEqual(got, []string{"Comment"}) {
		t.Errorf("Removed = %v, want [Comment]", got)
	}
	if r.ModifiedCount != 3 || !r.HasChanges {
		t.Errorf("ModifiedCount = %d, HasChanges = %v", r.ModifiedCount, r.HasChanges)
	}
	if r.Status("User") != KindAdded || r.Status("Post") != KindModified || r.Status("Tag") != "" {
		t.Errorf("Status() = %q %q %q", r.Status("User"), r.Status("Post"), r.Status("Tag"))
	}
}

func TestDetectExcludesBaseEntity(t *testing.T) {
	current := []entity.Entity{ent(entity.BaseEntityName, prop("Id", "Guid"))}
	original := []entity.Entity{ent(entity.BaseEntityName, prop("Id", "int"), prop("Extra", "string"))}

	tests := []struct {
		name     string
		cur, org []entity.Entity
	}{
		{"both_differ", current, original},
		{"only_current", current, nil},
		{"only_original", nil, original},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Detect(tt.cur, tt.org)
			if r.HasChanges {
				t.Errorf("Detect() = %+v, want BaseEntity ignored", r)
			}
		})
	}
}

func TestDetectBaseSkipIsStructural(t *testing.T) {
	a := ent("User", prop("Email", "string"))
	b := a.Clone()
	b.BaseSkip = true

	if r := Detect([]entity.Entity{b}, []entity.Entity{a}); len(r.Modified) != 1 {
		t.Errorf("BaseSkip change not detected: %+v", r)
	}

	// Provenance is not part of the comparison.
	c := a.Clone()
	c.FilePath = "/x/UserEntity.cs"
	c.IsExisting = true
	if r := Detect([]entity.Entity{a}, []entity.Entity{c}); r.HasChanges {
		t.Errorf("provenance change reported: %+v", r)
	}
}

func TestDetectComparators(t *testing.T) {
	current := []entity.Entity{ent("User", prop("A", "string"), prop("B", "int"))}
	original := []entity.Entity{ent("User", prop("B", "int"), prop("A", "string"))}

	tests := []struct {
		name string
		opts []Option
		want int
	}{
		{"default_order_sensitive", nil, 1},
		{"order_sensitive", []Option{WithComparator(OrderSensitive)}, 1},
		{"order_insensitive", []Option{WithComparator(OrderInsensitive)}, 0},
		{"nil_keeps_default", []Option{WithComparator(nil)}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(current, original, tt.opts...).ModifiedCount; got != tt.want {
				t.Errorf("ModifiedCount = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestOrderSensitiveEmptyProperties(t *testing.T) {
	a := entity.Entity{Name: "X"}
	b := entity.Entity{Name: "X", Properties: []entity.Property{}}
	if !OrderSensitive(a, b) || !OrderInsensitive(a, b) {
		t.Error("nil and empty properties should compare equal")
	}
}

// -----------------------------------------------------------------------------
// Details Tests
// -----------------------------------------------------------------------------

func TestDetails(t *testing.T) {
	e := ent("Post",
		prop("Title", "string"),
		entity.Property{Name: "Tags", Type: "Tag", CollectionType: entity.CollectionList},
		prop("Views", "long"),
	)
	original := []entity.Entity{ent("Post", prop("Title", "string"), prop("Views", "int"), prop("Body", "string"))}

	got := Details(e, original, nil)
	want := []PropertyChange{
		{Type: KindAdded, Property: "Tags", Detail: "List<Tag>"},
		{Type: KindModified, Property: "Views", Detail: "int -> long"},
		{Type: KindRemoved, Property: "Body", Detail: "string"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Details() = %+v, want %+v", got, want)
	}
}

func TestDetailsReferenceFallback(t *testing.T) {
	e := ent("Post", prop("Title", "string"))
	scanned := []entity.Entity{ent("Post", prop("Title", "int"))}

	got := Details(e, nil, scanned)
	if len(got) != 1 || got[0].Type != KindModified {
		t.Errorf("Details() with scanned reference = %+v", got)
	}

	// original wins over scanned
	original := []entity.Entity{ent("Post", prop("Title", "string"))}
	if got := Details(e, original, scanned); len(got) != 0 {
		t.Errorf("Details() = %+v, want none", got)
	}

	// no reference: everything is new
	if got := Details(e, nil, nil); len(got) != 1 || got[0].Type != KindAdded {
		t.Errorf("Details() without reference = %+v", got)
	}
}

func TestDetailsScalarSpellings(t *testing.T) {
	e := ent("Post", entity.Property{Name: "Title", Type: "string", CollectionType: entity.CollectionUnset})
	original := []entity.Entity{ent("Post", prop("Title", "string"))}

	if got := Details(e, original, nil); len(got) != 0 {
		t.Errorf("Details() = %+v, want none", got)
	}
}
