package merge

import (
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/hlop3z/nocstudio/internal/alerr"
	"github.com/hlop3z/nocstudio/internal/entity"
)

func prop(name, typ string) entity.Property {
	return entity.Property{Name: name, Type: typ, CollectionType: entity.CollectionNone}
}

// -----------------------------------------------------------------------------
// Merge Tests
// -----------------------------------------------------------------------------

func TestMergeUpsertOverwritesProperties(t *testing.T) {
	current := []entity.Entity{{Name: "A", Properties: []entity.Property{prop("Old", "int")}}}
	incoming := []entity.Entity{{Name: "A", Properties: []entity.Property{prop("New", "string")}}}

	got := Merge(current, incoming, false)
	if len(got) != 1 || got[0].Name != "A" {
		t.Fatalf("Merge() = %v, want one entity A", entity.Names(got))
	}
	if !reflect.DeepEqual(got[0].Properties, incoming[0].Properties) {
		t.Errorf("properties = %+v, want %+v", got[0].Properties, incoming[0].Properties)
	}
	if current[0].Properties[0].Name != "Old" {
		t.Error("Merge() mutated current")
	}
}

func TestMergeOrder(t *testing.T) {
	current := []entity.Entity{{Name: "A"}, {Name: "B"}, {Name: "C"}}
	incoming := []entity.Entity{{Name: "D"}, {Name: "B", BaseSkip: true}, {Name: "E"}}

	got := Merge(current, incoming, false)
	if names := entity.Names(got); !reflect.DeepEqual(names, []string{"A", "B", "C", "D", "E"}) {
		t.Errorf("Merge() order = %v", names)
	}
	if !got[1].BaseSkip {
		t.Error("B.BaseSkip not taken from incoming")
	}
}

func TestMergeReplace(t *testing.T) {
	current := []entity.Entity{{Name: "A"}, {Name: "B"}}
	incoming := []entity.Entity{{Name: "C"}}

	got := Merge(current, incoming, true)
	if !reflect.DeepEqual(got, incoming) {
		t.Errorf("Merge(replace) = %+v, want %+v", got, incoming)
	}

	if got := Merge(current, nil, true); len(got) != 0 {
		t.Errorf("Merge(replace, nil) = %+v, want empty", got)
	}
}

func TestMergeProvenance(t *testing.T) {
	scanned := entity.Entity{Name: "User", FilePath: "/p/UserEntity.cs", IsExisting: true}

	tests := []struct {
		name     string
		incoming entity.Entity
		wantPath string
		wantExis bool
	}{
		{"plain_import_keeps_provenance", entity.Entity{Name: "User"}, "/p/UserEntity.cs", true},
		{"rescan_moves_provenance", entity.Entity{Name: "User", FilePath: "/q/UserEntity.cs", IsExisting: true}, "/q/UserEntity.cs", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge([]entity.Entity{scanned}, []entity.Entity{tt.incoming}, false)
			if got[0].FilePath != tt.wantPath || got[0].IsExisting != tt.wantExis {
				t.Errorf("provenance = (%q, %v), want (%q, %v)", got[0].FilePath, got[0].IsExisting, tt.wantPath, tt.wantExis)
			}
		})
	}
}

func TestMergeEmptyCurrent(t *testing.T) {
	got := Merge(nil, []entity.Entity{{Name: "A"}}, false)
	if len(got) != 1 {
		t.Errorf("Merge(nil, [A]) = %+v", got)
	}
}

// -----------------------------------------------------------------------------
// FindDuplicates Tests
// -----------------------------------------------------------------------------

func TestFindDuplicates(t *testing.T) {
	tests := []struct {
		name     string
		incoming []entity.Entity
		existing []entity.Entity
		want     []string
	}{
		{"case_and_space", []entity.Entity{{Name: " user "}}, []entity.Entity{{Name: "User"}}, []string{" user "}},
		{"none", []entity.Entity{{Name: "Post"}}, []entity.Entity{{Name: "User"}}, []string{}},
		{"empty_existing", []entity.Entity{{Name: "Post"}}, nil, []string{}},
		{"order_follows_incoming", []entity.Entity{{Name: "b"}, {Name: "x"}, {Name: "A"}}, []entity.Entity{{Name: "a"}, {Name: "B"}}, []string{"b", "A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := entity.Names(FindDuplicates(tt.incoming, tt.existing))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FindDuplicates() = %q, want %q", got, tt.want)
			}
		})
	}
}

// -----------------------------------------------------------------------------
// Decision Tests
// -----------------------------------------------------------------------------

func TestParseDecision(t *testing.T) {
	tests := []struct {
		input string
		want  Decision
		ok    bool
	}{
		{"keep", Keep, true},
		{"KEEP", Keep, true},
		{" overwrite ", Overwrite, true},
		{"", Unspecified, true},
		{"unspecified", Unspecified, true},
		{"kep", Unspecified, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDecision(tt.input)
			if (err == nil) != tt.ok {
				t.Fatalf("ParseDecision(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseDecision(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if err != nil && !alerr.Is(err, alerr.ErrInvalidDecision) {
				t.Errorf("error code = %v", alerr.CodeOf(err))
			}
		})
	}
}

func TestChoices(t *testing.T) {
	var nilChoices Choices
	if nilChoices.Excluded("User") || nilChoices.Get("User") != Unspecified {
		t.Error("nil Choices should answer Unspecified")
	}

	c := Choices{}
	c.Set("User", Keep)
	c.Set("Post", Overwrite)
	c.Set("Tag", Keep)

	if !c.Excluded("User") || c.Excluded("Post") || c.Excluded("Other") {
		t.Errorf("Excluded() wrong for %v", c)
	}
	if got := c.Kept(); !reflect.DeepEqual(got, []string{"Tag", "User"}) {
		t.Errorf("Kept() = %v", got)
	}

	c.Set("User", Unspecified)
	if _, ok := c["User"]; ok {
		t.Error("Set(Unspecified) did not clear the entry")
	}
}

func TestResolve(t *testing.T) {
	c := Choices{"A": Keep}
	dups := []entity.Entity{{Name: "A"}, {Name: "B"}}

	c = Resolve(c, dups, Overwrite)
	if c.Get("A") != Keep || c.Get("B") != Overwrite {
		t.Errorf("Resolve() = %v", c)
	}

	if got := Resolve(nil, dups, Keep); len(got) != 2 {
		t.Errorf("Resolve(nil) = %v", got)
	}
}

func TestChoicesYAML(t *testing.T) {
	c := Choices{"User": Keep, "Post": Overwrite}

	data, err := yaml.Marshal(c)
	if err != nil {
		t.Fatalf("yaml.Marshal() error = %v", err)
	}
	if want := "Post: overwrite\nUser: keep\n"; string(data) != want {
		t.Errorf("yaml.Marshal() = %q, want %q", data, want)
	}

	var back Choices
	if err := yaml.Unmarshal(data, &back); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}
	if !reflect.DeepEqual(back, c) {
		t.Errorf("yaml round trip = %v, want %v", back, c)
	}

	if err := yaml.Unmarshal([]byte("User: maybe\n"), &back); err == nil {
		t.Error("yaml.Unmarshal() accepted unknown decision")
	}
}
