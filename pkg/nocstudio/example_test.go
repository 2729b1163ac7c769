package nocstudio

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/hlop3z/nocstudio/internal/entity"
	"github.com/hlop3z/nocstudio/internal/host"
	"github.com/hlop3z/nocstudio/internal/merge"
)

var shopDir = filepath.Join("..", "..", "examples", "shop")

func sortedNames(es []entity.Entity) []string {
	names := entity.Names(es)
	sort.Strings(names)
	return names
}

// -----------------------------------------------------------------------------
// Shop Example Tests
// -----------------------------------------------------------------------------

func TestShopExample(t *testing.T) {
	s := newSession(t, host.NewOS(""), WithExistingProject(true))

	res, err := s.ImportDBMLFile(filepath.Join(shopDir, "schema.dbml"))
	if err != nil {
		t.Fatalf("ImportDBMLFile() error = %v", err)
	}
	if got := strings.Join(sortedNames(res.Entities), ","); got != "Customer,Order,Product" {
		t.Fatalf("imported = %s", got)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("warnings = %v", res.Warnings)
	}

	order, err := s.Entity("Order")
	if err != nil {
		t.Fatal(err)
	}
	wantTypes := map[string]string{"id": "int", "PlacedAt": "DateTime", "Total": "decimal", "TrackingId": "Guid"}
	for name, typ := range wantTypes {
		p, ok := order.Property(name)
		if !ok || p.Type != typ {
			t.Errorf("Order.%s = %+v, want type %s", name, p, typ)
		}
	}

	scanned, err := s.Scan(context.Background(), filepath.Join(shopDir, "Shop"))
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if got := strings.Join(sortedNames(scanned.Entities), ","); got != "Customer,Product" {
		t.Fatalf("scanned = %s", got)
	}

	customer, _ := entity.Find(scanned.Entities, "Customer")
	orders, ok := customer.Property("Orders")
	if !ok || orders.Type != "Order" || orders.CollectionType != entity.CollectionICollection {
		t.Errorf("Customer.Orders = %+v", orders)
	}
	if _, ok := customer.Property("Id"); ok {
		t.Error("inherited Id should not be parsed")
	}

	rep, err := s.Changes()
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(sortedNames(rep.Added), ","); got != "Order" {
		t.Errorf("added = %s", got)
	}
	if got := strings.Join(sortedNames(rep.Modified), ","); got != "Customer,Product" {
		t.Errorf("modified = %s", got)
	}

	if plan := s.Plan(); len(plan) != 3 {
		t.Fatalf("Plan() = %v", plan)
	}
	s.SetDecision("Customer", merge.Keep)
	plan := s.Plan()
	if len(plan) != 2 {
		t.Fatalf("Plan() after keep = %v", plan)
	}
	for _, c := range plan {
		if strings.Contains(c, "nocsharp new") || strings.Contains(c, `"Customer"`) {
			t.Errorf("unexpected command %q", c)
		}
	}
}
