package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	resourcesPrefix = "/signalk/v2/api/resources/"
	coursePrefix    = "/signalk/v2/api/vessels/self/navigation/course"
)

// fakeSignalK is an in-memory SignalK server covering the resources and
// course API and a delta stream that announces the active route.
type fakeSignalK struct {
	srv *httptest.Server

	mu          sync.Mutex
	resources   map[string]map[string]string
	activeRoute string
	destination string
	position    string
	streamHref  string
	routeLists  int
	deletes     int
}

func newFakeSignalK(t *testing.T) *fakeSignalK {
	t.Helper()
	f := &fakeSignalK{
		resources: map[string]map[string]string{
			"routes": {
				"r241":  `{"name":"HYC-Wed-241","points":[{"href":"/resources/waypoints/wC"},{"href":"/resources/waypoints/wH"},{"href":"/resources/waypoints/wW"},{"href":"/resources/waypoints/wV"}]}`,
				"rHome": `{"name":"Harbour entrance","description":"kept as sent","points":[{"href":"/resources/waypoints/wZ"}]}`,
			},
			"waypoints": {
				"wZ": waypointJSON("Z", -6.061, 53.397),
				"wC": waypointJSON("C", -6.091, 53.410),
				"wH": waypointJSON("H", -6.030, 53.420),
				"wW": waypointJSON("W", -6.100, 53.380),
				"wV": waypointJSON("V", -6.050, 53.390),
				"wF": `{"name":"FIN","description":"F-FINISH","position":{"latitude":53.3968,"longitude":-6.0617}}`,
			},
		},
		position: `{"value":{"latitude":53.4001,"longitude":-6.0702}}`,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+resourcesPrefix+"{kind}", f.listResources)
	mux.HandleFunc("PUT "+resourcesPrefix+"{kind}/{id}", f.putResource)
	mux.HandleFunc("DELETE "+resourcesPrefix+"{kind}/{id}", f.deleteResource)
	mux.HandleFunc("GET "+coursePrefix+"/{field}", f.getCourse)
	mux.HandleFunc("PUT "+coursePrefix+"/{field}", f.putCourse)
	mux.HandleFunc("DELETE "+coursePrefix, f.clearCourse)
	mux.HandleFunc("GET /signalk/v1/api/vessels/self/navigation/position", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		_, _ = io.WriteString(w, f.position)
	})
	mux.HandleFunc("/signalk/v1/stream", f.stream)

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func waypointJSON(name string, lon, lat float64) string {
	return fmt.Sprintf(`{"name":%q,"feature":{"type":"Feature","geometry":{"type":"Point","coordinates":[%v,%v]},"properties":{}}}`, name, lon, lat)
}

func (f *fakeSignalK) URL() string { return f.srv.URL }

func (f *fakeSignalK) listResources(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kind := r.PathValue("kind")
	if kind == "routes" {
		f.routeLists++
	}
	members := map[string]json.RawMessage{}
	for id, body := range f.resources[kind] {
		members[id] = json.RawMessage(body)
	}
	_ = json.NewEncoder(w).Encode(members)
}

func (f *fakeSignalK) putResource(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	defer f.mu.Unlock()
	kind := r.PathValue("kind")
	if f.resources[kind] == nil {
		f.resources[kind] = map[string]string{}
	}
	f.resources[kind][r.PathValue("id")] = string(body)
	w.WriteHeader(http.StatusOK)
}

func (f *fakeSignalK) deleteResource(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kind, id := r.PathValue("kind"), r.PathValue("id")
	if _, ok := f.resources[kind][id]; !ok {
		http.NotFound(w, r)
		return
	}
	delete(f.resources[kind], id)
	f.deletes++
}

func (f *fakeSignalK) courseField(name string) *string {
	switch name {
	case "activeRoute":
		return &f.activeRoute
	case "destination":
		return &f.destination
	}
	return nil
}

func (f *fakeSignalK) getCourse(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	field := f.courseField(r.PathValue("field"))
	if field == nil || *field == "" {
		http.NotFound(w, r)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"href": *field})
}

func (f *fakeSignalK) putCourse(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Href string `json:"href"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	field := f.courseField(r.PathValue("field"))
	if field == nil {
		http.NotFound(w, r)
		return
	}
	*field = body.Href
}

func (f *fakeSignalK) clearCourse(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.activeRoute, f.destination = "", ""
	w.WriteHeader(http.StatusNoContent)
}

// stream sends the configured active route once per connection and then
// holds the connection open until the client goes away.
func (f *fakeSignalK) stream(w http.ResponseWriter, r *http.Request) {
	conn, err := (&websocket.Upgrader{}).Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	if _, _, err := conn.ReadMessage(); err != nil {
		return
	}
	f.mu.Lock()
	href := f.streamHref
	f.mu.Unlock()
	if href != "" {
		delta := fmt.Sprintf(`{"context":"vessels.self","updates":[{"values":[{"path":"navigation.course.activeRoute","value":{"href":%q}}]}]}`, href)
		if err := conn.WriteMessage(websocket.TextMessage, []byte(delta)); err != nil {
			return
		}
	}
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (f *fakeSignalK) resource(kind, id string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, ok := f.resources[kind][id]
	return body, ok
}

func (f *fakeSignalK) resourceIDs(kind string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.resources[kind]))
	for id := range f.resources[kind] {
		ids = append(ids, id)
	}
	return ids
}

func (f *fakeSignalK) counts() (routeLists, deletes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.routeLists, f.deletes
}

func (f *fakeSignalK) course() (activeRoute, destination string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.activeRoute, f.destination
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// setupCLI initializes fresh dependencies in headless mode and returns
// the config directory. Command flags are reset when the test ends.
func setupCLI(t *testing.T) string {
	t.Helper()
	t.Chdir(t.TempDir())
	configDir := filepath.Join(t.TempDir(), ".courseselect")

	InitDependencies()
	deps.Headless.ForceHeadless(true)
	t.Cleanup(func() {
		SetDeps(nil)
		resetFlags(rootCmd)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	return configDir
}

// writeSection writes one section file under configDir.
func writeSection(t *testing.T, configDir, file, content string) {
	t.Helper()
	dir := filepath.Join(configDir, "config", "sections")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, file), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// executeCommand runs the root command with args against the fake server
// and returns the combined output.
func executeCommand(t *testing.T, configDir string, f *fakeSignalK, stdin string, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))

	full := append([]string{}, args...)
	full = append(full, "--config-dir", configDir, "--log-level", "error", "--no-color")
	if f != nil {
		full = append(full, "--url", f.URL())
	}
	rootCmd.SetArgs(full)
	err := rootCmd.Execute()
	resetFlags(rootCmd)
	return buf.String(), err
}

// resetFlags restores every flag of the command tree to its default.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
