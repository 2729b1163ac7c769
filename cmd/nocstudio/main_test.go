package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testSchema = `Table User {
  id int [pk]
  Email varchar
}

Table Post {
  Title varchar(200)
}
`

// cliEnv runs root commands in-process against a private state directory.
type cliEnv struct {
	t   *testing.T
	dir string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "schema.dbml"), []byte(testSchema), 0644); err != nil {
		t.Fatal(err)
	}
	return &cliEnv{t: t, dir: dir}
}

func (e *cliEnv) path(name string) string {
	return filepath.Join(e.dir, name)
}

func (e *cliEnv) run(stdin string, args ...string) (string, string, error) {
	e.t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	base := []string{"--config", e.path("nocstudio.yaml"), "--state-dir", e.path(".state"), "--no-color"}
	root.SetArgs(append(base, args...))
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func (e *cliEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, errOut, err := e.run("", args...)
	if err != nil {
		e.t.Fatalf("%v: error = %v\nstderr: %s", args, err, errOut)
	}
	return out
}

// -----------------------------------------------------------------------------
// Workflow Tests
// -----------------------------------------------------------------------------

func TestImportCommandsWorkflow(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun("import", env.path("schema.dbml"))
	if !strings.Contains(out, "Imported 2 entities") {
		t.Errorf("import output = %q", out)
	}

	out = env.mustRun("commands")
	want := "nocsharp s \"User\" id:int Email:string\nnocsharp s \"Post\" Title:string\n"
	if out != want {
		t.Errorf("commands =\n%s\nwant\n%s", out, want)
	}

	out = env.mustRun("commands", "--cd", "--project-name", "Shop", "--project-dir", "/work")
	want = `cd "/work" && nocsharp new "Shop"` + "\n" +
		`cd "/work/Shop" && nocsharp s "User" id:int Email:string` + "\n" +
		`cd "/work/Shop" && nocsharp s "Post" Title:string` + "\n"
	if out != want {
		t.Errorf("commands --cd =\n%s\nwant\n%s", out, want)
	}

	dry := env.mustRun("apply", "--dry-run", "--project-name", "Shop", "--project-dir", "/work")
	if dry != want {
		t.Errorf("apply --dry-run =\n%s\nwant\n%s", dry, want)
	}
}

func TestStatusJSON(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("import", env.path("schema.dbml"))

	out := env.mustRun("status", "--json", "--details")
	var st statusJSON
	if err := json.Unmarshal([]byte(out), &st); err != nil {
		t.Fatalf("status --json is not JSON: %v\n%s", err, out)
	}
	if !st.HasChanges || st.Entities != 2 {
		t.Errorf("status = %+v", st)
	}
	if strings.Join(st.Added, ",") != "User,Post" {
		t.Errorf("Added = %v", st.Added)
	}
	if len(st.Modified) != 0 || len(st.Removed) != 0 {
		t.Errorf("Modified = %v, Removed = %v", st.Modified, st.Removed)
	}
	if len(st.Details["User"]) != 2 {
		t.Errorf("Details[User] = %v", st.Details["User"])
	}
}

func TestEntityCommands(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun("entity", "add", "Order", "Total:decimal", "Lines:List<OrderLine>", "--base-skip")
	if !strings.Contains(out, `nocsharp s "Order" Total:decimal "Lines:List<OrderLine>" --baseSkip`) {
		t.Errorf("entity add output = %q", out)
	}

	env.mustRun("entity", "add", "Tag", "Label:string")
	env.mustRun("entity", "rm", "Tag")

	out = env.mustRun("entity", "list", "--json")
	var entities []struct {
		Name     string `json:"name"`
		BaseSkip bool   `json:"baseSkip"`
	}
	if err := json.Unmarshal([]byte(out), &entities); err != nil {
		t.Fatalf("entity list --json: %v\n%s", err, out)
	}
	if len(entities) != 1 || entities[0].Name != "Order" || !entities[0].BaseSkip {
		t.Errorf("entities = %+v", entities)
	}

	if _, _, err := env.run("", "entity", "add", "Order", "Bad"); err == nil {
		t.Error("expected error for malformed field token")
	}
	if _, _, err := env.run("", "entity", "rm", "Missing"); err == nil {
		t.Error("expected error for unknown entity")
	}
}

func TestDecideExcludesKeptEntity(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("import", env.path("schema.dbml"))
	env.mustRun("entity", "decide", "User", "keep")

	out := env.mustRun("commands", "--existing")
	if strings.Contains(out, `"User"`) || !strings.Contains(out, `"Post"`) {
		t.Errorf("commands --existing = %q", out)
	}

	if _, _, err := env.run("", "entity", "decide", "User", "maybe"); err == nil {
		t.Error("expected error for unknown decision")
	}
}

func TestDecideList(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("import", env.path("schema.dbml"))
	env.mustRun("entity", "decide", "User, Post", "keep")

	out, _, err := env.run("", "commands", "--existing")
	if err != nil {
		t.Fatalf("commands error = %v", err)
	}
	if out != "" {
		t.Errorf("commands --existing = %q, want nothing", out)
	}

	if _, _, err := env.run("", "entity", "decide", "User,Missing", "overwrite"); err == nil {
		t.Error("expected error for unknown entity in list")
	}
	if _, _, err := env.run("", "entity", "decide", " , ", "keep"); err == nil {
		t.Error("expected error for empty name list")
	}
}

func TestEntityAddWarnsUnknownType(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("import", env.path("schema.dbml"))

	_, errOut, err := env.run("", "entity", "add", "Order", "Buyer:User", "Lines:List<OrderLine>")
	if err != nil {
		t.Fatalf("entity add error = %v", err)
	}
	if !strings.Contains(errOut, "W1002") || !strings.Contains(errOut, "OrderLine") {
		t.Errorf("stderr = %q, want W1002 for OrderLine", errOut)
	}
	if strings.Contains(errOut, `"User"`) {
		t.Errorf("known entity type reported: %q", errOut)
	}
}

func TestCacheCommands(t *testing.T) {
	env := newCLIEnv(t)
	project := env.path("Shop")
	entities := filepath.Join(project, "Domain", "Entities")
	if err := os.MkdirAll(entities, 0755); err != nil {
		t.Fatal(err)
	}
	src := "public class UserEntity : BaseEntity\n{\n    public string Email { get; set; }\n}\n"
	if err := os.WriteFile(filepath.Join(entities, "UserEntity.cs"), []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	env.mustRun("scan", project)

	out := env.mustRun("cache", "list")
	if !strings.Contains(out, project) || !strings.Contains(out, "cache.db") {
		t.Errorf("cache list = %q", out)
	}

	out = env.mustRun("cache", "forget", project)
	if !strings.Contains(out, "Forgot baseline") {
		t.Errorf("cache forget = %q", out)
	}
	if out := env.mustRun("cache"); !strings.Contains(out, "No baselines stored.") {
		t.Errorf("cache after forget = %q", out)
	}
	if _, _, err := env.run("", "cache", "forget", project); err == nil {
		t.Error("expected error forgetting a missing baseline")
	}

	env.mustRun("scan", project)
	if out := env.mustRun("cache", "clear"); !strings.Contains(out, "Cache cleared.") {
		t.Errorf("cache clear = %q", out)
	}
	if out := env.mustRun("cache", "ls"); !strings.Contains(out, "No baselines stored.") {
		t.Errorf("cache after clear = %q", out)
	}
}

func TestImportErrors(t *testing.T) {
	env := newCLIEnv(t)
	if err := os.WriteFile(env.path("empty.dbml"), []byte("  \n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := env.run("", "import", env.path("empty.dbml")); err == nil {
		t.Error("expected error for empty DBML")
	}
	if _, _, err := env.run("", "import", env.path("missing.dbml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseSourceStdin(t *testing.T) {
	env := newCLIEnv(t)
	src := `public class InvoiceEntity : BaseEntity
{
    public decimal Amount { get; set; }
    public List<LineEntity> Lines { get; set; }
}`

	out, _, err := env.run(src, "parse-source", "-")
	if err != nil {
		t.Fatalf("parse-source error = %v", err)
	}
	if !strings.Contains(out, "Invoice") || !strings.Contains(out, "Amount:decimal") {
		t.Errorf("parse-source output = %q", out)
	}
}

func TestRunsEmpty(t *testing.T) {
	env := newCLIEnv(t)
	out := env.mustRun("runs")
	if !strings.Contains(out, "No runs recorded.") {
		t.Errorf("runs output = %q", out)
	}
	if _, _, err := env.run("", "runs", "deadbeef"); err == nil {
		t.Error("expected error for unknown run")
	}
}

func TestApplyNothing(t *testing.T) {
	env := newCLIEnv(t)
	if _, _, err := env.run("", "apply", "--yes"); err == nil {
		t.Error("expected error when there is nothing to apply")
	}
}

func TestRootHelp(t *testing.T) {
	env := newCLIEnv(t)
	out := env.mustRun("--help")
	for _, want := range []string{"Entities", "Generation", "import", "apply", "cache", "Global Flags"} {
		if !strings.Contains(out, want) {
			t.Errorf("help missing %q", want)
		}
	}
}
