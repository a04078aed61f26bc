package version

import (
	"strings"
	"testing"
)

func TestGetters(t *testing.T) {
	origVersion, origCommit, origDate := Version, Commit, Date
	t.Cleanup(func() { Version, Commit, Date = origVersion, origCommit, origDate })

	Version, Commit, Date = "v1.2.3", "abc1234", "2026-05-01"

	if got := GetVersion(); got != "v1.2.3" {
		t.Errorf("GetVersion() = %q, want %q", got, "v1.2.3")
	}
	if got := GetCommit(); got != "abc1234" {
		t.Errorf("GetCommit() = %q, want %q", got, "abc1234")
	}
	if got := GetDate(); got != "2026-05-01" {
		t.Errorf("GetDate() = %q, want %q", got, "2026-05-01")
	}

	full := GetFullVersion()
	for _, want := range []string{"courseselect", "v1.2.3", "abc1234", "2026-05-01"} {
		if !strings.Contains(full, want) {
			t.Errorf("GetFullVersion() = %q, missing %q", full, want)
		}
	}
}
