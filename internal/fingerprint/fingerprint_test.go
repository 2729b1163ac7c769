package fingerprint

import (
	"reflect"
	"testing"

	"github.com/hlop3z/nocstudio/internal/entity"
)

func set(names ...string) []entity.Entity {
	out := make([]entity.Entity, len(names))
	for i, n := range names {
		out[i] = entity.Entity{Name: n, Properties: []entity.Property{{Name: "Label", Type: "string"}}}
	}
	return out
}

func mustCompute(t *testing.T, entities []entity.Entity) *SetHash {
	t.Helper()
	h, err := Compute(entities)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	return h
}

func TestComputeDeterministic(t *testing.T) {
	a := mustCompute(t, set("A", "B", "C"))
	b := mustCompute(t, set("C", "A", "B"))

	if a.Root != b.Root {
		t.Error("root depends on entity order")
	}
	if len(a.Root) != 64 {
		t.Errorf("root = %q, want hex sha256", a.Root)
	}
}

func TestComputeEmpty(t *testing.T) {
	empty := mustCompute(t, nil)
	onlyBase := mustCompute(t, set(entity.BaseEntityName))

	if empty.Root != onlyBase.Root || empty.Root != emptyHash() {
		t.Error("BaseEntity should not contribute to the fingerprint")
	}
}

func TestComputeSensitivity(t *testing.T) {
	base := set("User")

	tests := []struct {
		name   string
		mutate func(e *entity.Entity)
		same   bool
	}{
		{"type", func(e *entity.Entity) { e.Properties[0].Type = "int" }, false},
		{"base_skip", func(e *entity.Entity) { e.BaseSkip = true }, false},
		{"collection", func(e *entity.Entity) { e.Properties[0].CollectionType = entity.CollectionList }, false},
		{"scalar_spelling", func(e *entity.Entity) { e.Properties[0].CollectionType = entity.CollectionNone }, true},
		{"provenance", func(e *entity.Entity) { e.FilePath = "/x"; e.IsExisting = true }, true},
	}

	want := mustCompute(t, base).Root
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changed := entity.CloneAll(base)
			tt.mutate(&changed[0])
			got := mustCompute(t, changed).Root
			if (got == want) != tt.same {
				t.Errorf("root equal = %v, want %v", got == want, tt.same)
			}
		})
	}
}

func TestCompare(t *testing.T) {
	before := mustCompute(t, set("A", "B", "C"))

	afterEntities := set("B", "C", "D")
	afterEntities[1].Properties[0].Type = "int"
	after := mustCompute(t, afterEntities)

	cmp := Compare(before, after)
	if cmp.Match {
		t.Fatal("Compare() Match = true")
	}
	if !reflect.DeepEqual(cmp.Missing, []string{"A"}) ||
		!reflect.DeepEqual(cmp.Extra, []string{"D"}) ||
		!reflect.DeepEqual(cmp.Changed, []string{"C"}) {
		t.Errorf("Compare() = %+v", cmp)
	}

	if same := Compare(before, before); !same.Match || len(same.Changed) != 0 {
		t.Errorf("Compare(x, x) = %+v", same)
	}
}
