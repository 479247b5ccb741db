package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/coalesce/pkg/buildinfo"
	"github.com/matzehuels/coalesce/pkg/errors"
	coio "github.com/matzehuels/coalesce/pkg/io"
	"github.com/matzehuels/coalesce/pkg/pipeline"
	"github.com/matzehuels/coalesce/pkg/tables"
)

const referenceBody = `{
  "document": {
    "genome_length": 100,
    "samples": [4, 5],
    "nodes": [{"time": 2}, {"time": 2}, {"time": 1}, {"time": 1}, {"time": 0}, {"time": 0}],
    "edges": [
      {"left": 0, "right": 50, "parent": 0, "child": 2},
      {"left": 50, "right": 100, "parent": 1, "child": 2},
      {"left": 0, "right": 100, "parent": 1, "child": 3},
      {"left": 0, "right": 60, "parent": 2, "child": 5},
      {"left": 0, "right": 100, "parent": 3, "child": 4},
      {"left": 60, "right": 100, "parent": 3, "child": 5}
    ]
  }
}`

func newTestServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard)
	srv := httptest.NewServer(New(pipeline.NewRunner(nil, nil, logger), logger, cfg).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeError(t *testing.T, resp *http.Response) errorBody {
	t.Helper()
	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body
}

func TestHealthAndVersion(t *testing.T) {
	srv := newTestServer(t, Config{})

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("/healthz status = %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/version")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var info buildinfo.Info
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		t.Fatal(err)
	}
	if info.Commit != buildinfo.Commit {
		t.Errorf("/version commit = %q, want %q", info.Commit, buildinfo.Commit)
	}
}

func TestSimplify(t *testing.T) {
	srv := newTestServer(t, Config{})

	resp := post(t, srv.URL+"/v1/simplify", referenceBody)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %+v", resp.StatusCode, decodeError(t, resp))
	}
	var body SimplifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}

	if body.RunID == "" {
		t.Error("run_id missing")
	}
	if body.Stats.Nodes != 4 || body.Stats.Edges != 4 || body.Stats.Coalescences != 2 {
		t.Errorf("stats = %+v", body.Stats)
	}
	want := []tables.Edge{
		{Left: 60, Right: 100, Parent: 2, Child: 0},
		{Left: 60, Right: 100, Parent: 2, Child: 1},
		{Left: 50, Right: 60, Parent: 3, Child: 0},
		{Left: 50, Right: 60, Parent: 3, Child: 1},
	}
	if len(body.Result.Edges) != len(want) {
		t.Fatalf("edges = %v, want %v", body.Result.Edges, want)
	}
	for i := range want {
		if body.Result.Edges[i] != want[i] {
			t.Errorf("edge %d = %v, want %v", i, body.Result.Edges[i], want[i])
		}
	}
}

func TestSimplifyErrors(t *testing.T) {
	srv := newTestServer(t, Config{})

	tests := []struct {
		name   string
		body   string
		status int
		code   errors.Code
	}{
		{"empty body", ``, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"malformed JSON", `{"document":`, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"unknown field", `{"documents": {}}`, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"missing document", `{}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad sample", strings.Replace(referenceBody, `"samples": [4, 5]`, `"samples": [4, 40]`, 1),
			http.StatusBadRequest, errors.ErrCodeInvalidSampleIndex},
		{"bad interval", strings.Replace(referenceBody, `"left": 0, "right": 50`, `"left": 50, "right": 50`, 1),
			http.StatusBadRequest, errors.ErrCodeInvalidInterval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv.URL+"/v1/simplify", tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if got := decodeError(t, resp); got.Code != tt.code {
				t.Errorf("code = %q, want %q (%s)", got.Code, tt.code, got.Message)
			}
		})
	}
}

func TestRender(t *testing.T) {
	srv := newTestServer(t, Config{})

	resp := post(t, srv.URL+"/v1/render/dot", referenceBody)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/vnd.graphviz" {
		t.Errorf("Content-Type = %q", ct)
	}
	data, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(data, []byte("3 -> 0")) {
		t.Errorf("DOT output missing edge:\n%s", data)
	}

	resp = post(t, srv.URL+"/v1/render/toml", referenceBody)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("toml status = %d", resp.StatusCode)
	}
	doc, err := coio.ReadTOML(resp.Body)
	if err != nil {
		t.Fatalf("ReadTOML: %v", err)
	}
	if len(doc.Nodes) != 4 {
		t.Errorf("toml nodes = %d, want 4", len(doc.Nodes))
	}

	resp = post(t, srv.URL+"/v1/render/gif", referenceBody)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("gif status = %d, want 400", resp.StatusCode)
	}
}

func TestSimulate(t *testing.T) {
	srv := newTestServer(t, Config{MaxSimulationWork: 1000})

	body := `{"population_size": 5, "genome_length": 20, "steps": 10, "simplify_interval": 3, "seed": 9}`
	resp := post(t, srv.URL+"/v1/simulate", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %+v", resp.StatusCode, decodeError(t, resp))
	}
	var out SimulateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.Document.Samples) != 5 {
		t.Errorf("samples = %v, want 5", out.Document.Samples)
	}

	big := `{"population_size": 1000, "steps": 10}`
	if resp := post(t, srv.URL+"/v1/simulate", big); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("oversized simulation status = %d, want 400", resp.StatusCode)
	}

	bad := `{"death_probability": 2}`
	resp = post(t, srv.URL+"/v1/simulate", bad)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid params status = %d, want 400", resp.StatusCode)
	}
}

func TestNotFound(t *testing.T) {
	srv := newTestServer(t, Config{})
	resp, err := http.Get(srv.URL + "/v2/nothing")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
