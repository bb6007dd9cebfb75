package server

import (
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setupTestServer(t *testing.T) *Server {
	t.Helper()

	store, err := OpenDocStore(filepath.Join(t.TempDir(), "store.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	return New(store, &Config{Logger: log.New(os.Stderr, "[test] ", 0)})
}

func doRequest(t *testing.T, s *Server, method, url, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, url, nil)
	} else {
		req = httptest.NewRequest(method, url, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	s := setupTestServer(t)

	w := doRequest(t, s, http.MethodGet, "/api/data?type=health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("unexpected health body: %s", w.Body.String())
	}
}

func TestGetEmptyCollectionReturnsEmptyArray(t *testing.T) {
	s := setupTestServer(t)

	w := doRequest(t, s, http.MethodGet, "/api/data?type=tasks", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("expected empty array, got %s", w.Body.String())
	}
}

func TestPostThenGetRoundTrip(t *testing.T) {
	s := setupTestServer(t)

	doc := `[{"id":"0001","title":"Stored task"},{"id":"0002","title":"Another"}]`
	w := doRequest(t, s, http.MethodPost, "/api/data?type=tasks", doc)
	if w.Code != http.StatusOK {
		t.Fatalf("POST: expected 200, got %d (%s)", w.Code, w.Body.String())
	}

	var ack struct {
		Success bool `json:"success"`
		Count   int  `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &ack); err != nil {
		t.Fatalf("invalid ack: %v", err)
	}
	if !ack.Success || ack.Count != 2 {
		t.Errorf("unexpected ack: %+v", ack)
	}

	w = doRequest(t, s, http.MethodGet, "/api/data?type=tasks", "")
	var records []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &records); err != nil {
		t.Fatalf("invalid GET body: %v", err)
	}
	if len(records) != 2 || records[0]["id"] != "0001" {
		t.Errorf("round trip mangled the document: %v", records)
	}
}

func TestPostReplacesWholesale(t *testing.T) {
	s := setupTestServer(t)

	doRequest(t, s, http.MethodPost, "/api/data?type=users", `[{"id":"0001"},{"id":"0002"}]`)
	doRequest(t, s, http.MethodPost, "/api/data?type=users", `[{"id":"0003"}]`)

	w := doRequest(t, s, http.MethodGet, "/api/data?type=users", "")
	var records []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &records); err != nil {
		t.Fatalf("invalid GET body: %v", err)
	}
	if len(records) != 1 || records[0]["id"] != "0003" {
		t.Errorf("POST must replace, not merge: %v", records)
	}
}

func TestInvalidTypeRejected(t *testing.T) {
	s := setupTestServer(t)

	for _, url := range []string{"/api/data?type=secrets", "/api/data"} {
		w := doRequest(t, s, http.MethodGet, url, "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("GET %s: expected 400, got %d", url, w.Code)
		}
	}

	// health is a GET-only selector.
	w := doRequest(t, s, http.MethodPost, "/api/data?type=health", "[]")
	if w.Code != http.StatusBadRequest {
		t.Errorf("POST health: expected 400, got %d", w.Code)
	}
}

func TestNonArrayBodyRejected(t *testing.T) {
	s := setupTestServer(t)

	w := doRequest(t, s, http.MethodPost, "/api/data?type=tasks", `{"id":"0001"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for non-array body, got %d", w.Code)
	}
}

func TestCORSHeaders(t *testing.T) {
	s := setupTestServer(t)

	w := doRequest(t, s, http.MethodGet, "/api/data?type=health", "")
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected wildcard CORS origin, got %q", got)
	}

	w = doRequest(t, s, http.MethodOptions, "/api/data?type=tasks", "")
	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204 for preflight, got %d", w.Code)
	}
}

func TestDocStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.db")

	store, err := OpenDocStore(path)
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	if err := store.Put("tasks", `[{"id":"0001"}]`); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	reopened, err := OpenDocStore(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	body, found, err := reopened.Get("tasks")
	if err != nil || !found {
		t.Fatalf("expected stored document after reopen (found=%v err=%v)", found, err)
	}
	if !strings.Contains(body, "0001") {
		t.Errorf("unexpected body: %s", body)
	}
}
