package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/hycracing/courseselect/pkg/version"
)

func TestRootCmd_Use(t *testing.T) {
	if rootCmd.Use != "courseselect" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "courseselect")
	}
	if rootCmd.Short == "" || rootCmd.Long == "" {
		t.Error("rootCmd should have Short and Long descriptions")
	}
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	for _, name := range []string{"config-dir", "url", "log-level", "no-color"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("root command should have --%s flag", name)
		}
	}
}

func TestRootCmd_Subcommands(t *testing.T) {
	want := []string{"keypad", "select", "mark", "finish", "courses", "catalog", "status", "watch", "routes", "init", "version"}
	registered := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		registered[cmd.Name()] = true
	}
	for _, name := range want {
		if !registered[name] {
			t.Errorf("%s should be registered as a subcommand of root", name)
		}
	}
}

func TestRoutesCmd_Subcommands(t *testing.T) {
	registered := map[string]bool{}
	for _, cmd := range routesCmd.Commands() {
		registered[cmd.Name()] = true
	}
	for _, name := range []string{"list", "create", "rename", "verify"} {
		if !registered[name] {
			t.Errorf("routes %s should be registered", name)
		}
	}
}

func TestVersionCmd_SkipsConfig(t *testing.T) {
	setupCLI(t)

	// A config dir that cannot be loaded proves the config is never read.
	out, err := executeCommand(t, "/dev/null/nowhere", nil, "", "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.Contains(out, version.GetVersion()) {
		t.Errorf("version output = %q, want it to contain %q", out, version.GetVersion())
	}
	if deps.Settings != nil {
		t.Error("version should not load the configuration")
	}
}

func TestExecute_WithoutDependencies(t *testing.T) {
	setupCLI(t)
	SetDeps(nil)

	_, err := executeCommand(t, t.TempDir(), nil, "", "courses")
	if !errors.Is(err, ErrNotInitialized) {
		t.Errorf("courses without deps error = %v, want ErrNotInitialized", err)
	}
}

func TestExecute_InvalidConfig(t *testing.T) {
	configDir := setupCLI(t)
	writeSection(t, configDir, "visibility.yaml", "visibility:\n  mode: vanish\n")

	if _, err := executeCommand(t, configDir, nil, "", "courses"); err == nil {
		t.Error("courses with an invalid visibility mode should fail")
	}
}
