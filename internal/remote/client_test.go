package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/taskpilot/taskpilot/internal/model"
)

func TestFetchAndSaveRoundTrip(t *testing.T) {
	var stored []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/data" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("type") != "tasks" {
			t.Errorf("unexpected type %s", r.URL.Query().Get("type"))
		}

		switch r.Method {
		case http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			if stored == nil {
				_, _ = w.Write([]byte("[]"))
				return
			}
			_, _ = w.Write(stored)
		case http.MethodPost:
			var records []model.Record
			if err := json.NewDecoder(r.Body).Decode(&records); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			stored, _ = json.Marshal(records)
			_ = json.NewEncoder(w).Encode(SaveResult{Success: true, Count: len(records)})
		}
	}))
	defer srv.Close()

	client := New(srv.URL, nil)
	ctx := context.Background()

	records, err := client.Fetch(ctx, "tasks")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected empty collection, got %d records", len(records))
	}

	result, err := client.Save(ctx, "tasks", []model.Record{{"id": "0001", "title": "Test"}})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !result.Success || result.Count != 1 {
		t.Errorf("unexpected ack: %+v", result)
	}

	records, err = client.Fetch(ctx, "tasks")
	if err != nil {
		t.Fatalf("Fetch after save failed: %v", err)
	}
	if len(records) != 1 || records[0].ID() != "0001" {
		t.Errorf("round trip lost the record: %v", records)
	}
}

func TestFetchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := New(srv.URL, nil)
	if _, err := client.Fetch(context.Background(), "users"); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("type") != "health" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))

	client := New(srv.URL, nil)
	if !client.Health() {
		t.Error("expected healthy")
	}

	srv.Close()
	if client.Health() {
		t.Error("expected unreachable after server shutdown")
	}
}

func TestSaveNilRecordsEncodesEmptyArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var records []model.Record
		if err := json.NewDecoder(r.Body).Decode(&records); err != nil {
			t.Errorf("body was not a JSON array: %v", err)
		}
		_ = json.NewEncoder(w).Encode(SaveResult{Success: true})
	}))
	defer srv.Close()

	client := New(srv.URL, nil)
	if _, err := client.Save(context.Background(), "tasks", nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
}
