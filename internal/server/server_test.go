package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ctxlaunch/ctxlaunch/internal/catalog"
	"github.com/ctxlaunch/ctxlaunch/internal/launcher"
	"github.com/ctxlaunch/ctxlaunch/internal/provision"
	"github.com/ctxlaunch/ctxlaunch/internal/settings"
	"github.com/ctxlaunch/ctxlaunch/internal/storage/sqlite"
)

type fakeProvisioner struct {
	result *provision.Result
	err    error
}

func (f *fakeProvisioner) Ensure(ctx context.Context, def catalog.ServerDef) (*provision.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newTestServer(t *testing.T, prov launcher.Provisioner, payloads map[string]settings.Payload) (*Server, *httptest.Server) {
	t.Helper()
	store, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	l := launcher.New(catalog.New(), payloads, prov, store)
	s := New(l, store, NewEventHub())
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func TestListServers(t *testing.T) {
	_, ts := newTestServer(t, &fakeProvisioner{}, nil)

	resp, err := http.Get(ts.URL + "/api/servers")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var defs []catalog.ServerDef
	if err := json.NewDecoder(resp.Body).Decode(&defs); err != nil {
		t.Fatal(err)
	}
	if len(defs) != 1 || defs[0].Name != "grafana" {
		t.Errorf("defs = %+v", defs)
	}
}

func TestCommandUnknownServer(t *testing.T) {
	_, ts := newTestServer(t, &fakeProvisioner{}, nil)

	resp, err := http.Get(ts.URL + "/api/servers/nonexistent/command")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestCommandMissingSettings(t *testing.T) {
	_, ts := newTestServer(t, &fakeProvisioner{}, nil)

	resp, err := http.Get(ts.URL + "/api/servers/grafana/command")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestCommandSuccess(t *testing.T) {
	t.Setenv("GRAFANA_URL", "")
	t.Setenv("GRAFANA_API_KEY", "")

	prov := &fakeProvisioner{result: &provision.Result{
		Path:    "/w/grafana/mcp-grafana-v0.2.7/mcp-grafana",
		Version: "v0.2.7",
	}}
	payloads := map[string]settings.Payload{
		"grafana": {URL: "https://grafana.example", APIKey: "sa-token", Debug: true},
	}
	_, ts := newTestServer(t, prov, payloads)

	resp, err := http.Get(ts.URL + "/api/servers/grafana/command")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var cmd launcher.Command
	if err := json.NewDecoder(resp.Body).Decode(&cmd); err != nil {
		t.Fatal(err)
	}
	if cmd.Path != prov.result.Path {
		t.Errorf("Path = %q", cmd.Path)
	}
	if len(cmd.Args) != 1 || cmd.Args[0] != "--debug" {
		t.Errorf("Args = %v", cmd.Args)
	}
	if len(cmd.Env) != 2 || !strings.HasPrefix(cmd.Env[0], "GRAFANA_URL=") {
		t.Errorf("Env = %v", cmd.Env)
	}
}

func TestCommandProvisionFailureIsBadGateway(t *testing.T) {
	t.Setenv("GRAFANA_URL", "https://grafana.example")

	prov := &fakeProvisioner{err: provision.ErrReleaseLookup}
	payloads := map[string]settings.Payload{"grafana": {}}
	_, ts := newTestServer(t, prov, payloads)

	resp, err := http.Get(ts.URL + "/api/servers/grafana/command")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", resp.StatusCode)
	}
}

func TestProvisionEndpointReportsCleanup(t *testing.T) {
	prov := &fakeProvisioner{result: &provision.Result{
		Path:    "/w/grafana/mcp-grafana-v0.2.7/mcp-grafana",
		Version: "v0.2.7",
		Cleanup: []provision.CleanupResult{
			{Path: "/w/grafana/mcp-grafana-v0.1.0"},
			{Path: "/w/grafana/locked", Err: errors.New("device busy")},
		},
	}}
	_, ts := newTestServer(t, prov, nil)

	resp, err := http.Post(ts.URL+"/api/servers/grafana/provision", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body struct {
		Path    string `json:"path"`
		Version string `json:"version"`
		Cleanup []struct {
			Path  string `json:"path"`
			Error string `json:"error"`
		} `json:"cleanup"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Version != "v0.2.7" {
		t.Errorf("version = %q", body.Version)
	}
	if len(body.Cleanup) != 2 {
		t.Fatalf("cleanup = %+v", body.Cleanup)
	}
	if body.Cleanup[1].Error != "device busy" {
		t.Errorf("cleanup[1].Error = %q", body.Cleanup[1].Error)
	}
}

func TestHistoryEndpoints(t *testing.T) {
	prov := &fakeProvisioner{result: &provision.Result{Path: "/p", Version: "v1"}}
	_, ts := newTestServer(t, prov, nil)

	// One provisioning pass populates provision history.
	resp, err := http.Post(ts.URL+"/api/servers/grafana/provision", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/api/history/provisions?server=grafana")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var provisions []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&provisions); err != nil {
		t.Fatal(err)
	}
	if len(provisions) != 1 {
		t.Errorf("provisions = %+v", provisions)
	}

	// Launch history is empty but still a JSON array.
	resp, err = http.Get(ts.URL + "/api/history/launches")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var launches []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&launches); err != nil {
		t.Fatal(err)
	}
	if launches == nil {
		t.Error("launches = nil, want []")
	}
}

func TestEventStream(t *testing.T) {
	s, ts := newTestServer(t, &fakeProvisioner{}, nil)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	// Subscription registration races the broadcast; poll briefly.
	deadline := time.Now().Add(2 * time.Second)
	conn.SetReadDeadline(deadline)
	go func() {
		for time.Now().Before(deadline) {
			s.events.Broadcast(provision.Event{Type: "downloading", Server: "grafana", Version: "v0.2.7"})
			time.Sleep(10 * time.Millisecond)
		}
	}()

	var ev provision.Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatal(err)
	}
	if ev.Type != "downloading" || ev.Server != "grafana" {
		t.Errorf("event = %+v", ev)
	}
}
