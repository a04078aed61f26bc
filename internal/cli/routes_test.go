package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hycracing/courseselect/internal/course"
)

// writeTable points the catalog section at a small course table.
func writeTable(t *testing.T, configDir, courses string) {
	t.Helper()
	table := filepath.Join(t.TempDir(), "courses.yaml")
	if err := os.WriteFile(table, []byte("day: wednesday\ncourses:\n"+courses), 0o644); err != nil {
		t.Fatal(err)
	}
	writeSection(t, configDir, "catalog.yaml", "catalog:\n  day: wednesday\n  route_prefix: HYC-Wed-\n  file: "+table+"\n")
}

func TestRoutesListCmd(t *testing.T) {
	configDir := setupCLI(t)
	f := newFakeSignalK(t)

	out, err := executeCommand(t, configDir, f, "", "routes", "list")
	if err != nil {
		t.Fatalf("routes list error = %v\n%s", err, out)
	}
	for _, want := range []string{"| r241 | HYC-Wed-241 | 4 |", "| rHome | Harbour entrance | 1 |"} {
		if !strings.Contains(out, want) {
			t.Errorf("routes list output = %q, missing %q", out, want)
		}
	}
}

func TestRoutesCreateCmd(t *testing.T) {
	configDir := setupCLI(t)
	f := newFakeSignalK(t)
	writeTable(t, configDir, `  - {number: "241", waypoints: ["Z", "C", "H", "W", "V*"], length_nm: 5.5}
  - {number: "021", waypoints: ["Z", "C", "H", "W", "C"], length_nm: 5.3}
  - {number: "061", waypoints: ["Z", "V", "W", "O", "V"], length_nm: 6.1}
`)

	out, err := executeCommand(t, configDir, f, "", "routes", "create")
	if err == nil {
		t.Fatal("routes create should report the course with a missing mark")
	}
	if !strings.Contains(err.Error(), "course 061") {
		t.Errorf("routes create error = %v, want course 061", err)
	}
	if !strings.Contains(out, "1 created, 1 already present, 1 failed") {
		t.Errorf("routes create output = %q", out)
	}

	created := 0
	for _, id := range f.resourceIDs("routes") {
		body, _ := f.resource("routes", id)
		if strings.Contains(body, `"HYC-Wed-021"`) {
			created++
			if len(id) != 36 {
				t.Errorf("created route id %q is not a uuid", id)
			}
		}
	}
	if created != 1 {
		t.Errorf("routes named HYC-Wed-021 = %d, want 1", created)
	}
}

func TestRoutesRenameCmd(t *testing.T) {
	configDir := setupCLI(t)
	f := newFakeSignalK(t)
	f.resources["routes"]["r021"] = `{"name":"021","description":"from the plotter","points":[]}`

	out, err := executeCommand(t, configDir, f, "", "routes", "rename")
	if err != nil {
		t.Fatalf("routes rename error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "1 routes renamed") {
		t.Errorf("routes rename output = %q", out)
	}
	body, _ := f.resource("routes", "r021")
	if !strings.Contains(body, `"HYC-Wed-021"`) || !strings.Contains(body, "from the plotter") {
		t.Errorf("renamed route = %s", body)
	}
}

func TestRoutesVerifyCmd(t *testing.T) {
	configDir := setupCLI(t)
	f := newFakeSignalK(t)
	writeTable(t, configDir, `  - {number: "241", waypoints: ["Z", "C", "H", "W", "V*"], length_nm: 5.5}
`)

	out, err := executeCommand(t, configDir, f, "", "routes", "verify")
	if err != nil {
		t.Fatalf("routes verify error = %v\n%s", err, out)
	}
	if !strings.Contains(out, "- matched: 1") {
		t.Errorf("routes verify output = %q", out)
	}
}

func TestRoutesVerifyCmd_Mismatch(t *testing.T) {
	configDir := setupCLI(t)
	f := newFakeSignalK(t)
	writeTable(t, configDir, `  - {number: "241", waypoints: ["Z", "C", "W", "H", "V*"], length_nm: 5.5}
  - {number: "021", waypoints: ["Z", "C", "H", "W", "C"], length_nm: 5.3}
`)

	out, err := executeCommand(t, configDir, f, "", "routes", "verify")
	if !errors.Is(err, ErrRoutesMismatch) {
		t.Fatalf("routes verify error = %v, want ErrRoutesMismatch", err)
	}
	for _, want := range []string{"- mismatched: 1", "- missing: 1", "| 241 | r241 | C W H V | C H W V |"} {
		if !strings.Contains(out, want) {
			t.Errorf("routes verify output = %q, missing %q", out, want)
		}
	}
}

func TestRoutesVerifyReport(t *testing.T) {
	t.Parallel()

	got := routesVerifyReport("HYC-Wed-", course.VerifyReport{Matched: []string{"241"}, Missing: []string{"021", "022"}})
	for _, want := range []string{"# Course routes: HYC-Wed-", "- matched: 1", "## Missing", "021, 022"} {
		if !strings.Contains(got, want) {
			t.Errorf("routesVerifyReport() = %q, missing %q", got, want)
		}
	}
	if strings.Contains(got, "## Mismatched") {
		t.Error("routesVerifyReport() should omit the mismatched table when empty")
	}
}
