package cache

import (
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/taskpilot/taskpilot/internal/model"
)

func openTestCache(t *testing.T) *Snapshot {
	t.Helper()

	snap, err := OpenInMemory(log.New(os.Stderr, "[test] ", 0))
	if err != nil {
		t.Fatalf("failed to open test cache: %v", err)
	}
	t.Cleanup(func() { _ = snap.Close() })
	return snap
}

func TestSetGetRoundTrip(t *testing.T) {
	snap := openTestCache(t)

	records := []model.Record{
		{"id": "0001", "title": "Cached task", "organizationId": "0001"},
		{"id": "0002", "title": "Another", "organizationId": "0001"},
	}
	snap.Set("tasks", records)

	got, ok := snap.Get("tasks")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].ID() != "0001" || got[0].String("title") != "Cached task" {
		t.Errorf("round trip mangled record: %v", got[0])
	}
}

func TestGetMissingKey(t *testing.T) {
	snap := openTestCache(t)

	if _, ok := snap.Get("tasks"); ok {
		t.Error("expected miss for never-written key")
	}
}

func TestMalformedEntryIsAMiss(t *testing.T) {
	snap := openTestCache(t)

	if err := snap.SetRaw("tasks", []byte("{not json")); err != nil {
		t.Fatalf("SetRaw failed: %v", err)
	}
	if _, ok := snap.Get("tasks"); ok {
		t.Error("malformed entry must read as a cache miss")
	}
}

func TestSetNilStoresEmptyCollection(t *testing.T) {
	snap := openTestCache(t)

	snap.Set("templates", nil)
	got, ok := snap.Get("templates")
	if !ok {
		t.Fatal("expected hit for explicitly cached empty collection")
	}
	if len(got) != 0 {
		t.Errorf("expected empty collection, got %d records", len(got))
	}
}

func TestPersistentOpen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "snapshots")

	snap, err := Open(dir, nil)
	if err != nil {
		t.Fatalf("failed to open persistent cache: %v", err)
	}
	snap.Set("users", []model.Record{{"id": "0001"}})
	if err := snap.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	reopened, err := Open(dir, nil)
	if err != nil {
		t.Fatalf("failed to reopen cache: %v", err)
	}
	defer reopened.Close()

	got, ok := reopened.Get("users")
	if !ok || len(got) != 1 {
		t.Errorf("expected cached users to survive reopen, got %v (hit=%v)", got, ok)
	}
}
