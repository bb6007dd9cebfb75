package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenCreatesDefaults(t *testing.T) {
	dir := t.TempDir()

	store, err := Open(dir)
	if err != nil {
		t.Fatalf("failed to open settings: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "settings.yaml")); err != nil {
		t.Fatalf("expected settings file to be created: %v", err)
	}
	if store.RemoteURL() != "http://localhost:8090" {
		t.Errorf("unexpected default remote url: %q", store.RemoteURL())
	}
	if store.GetInt(KeyServerPort) != 8090 {
		t.Errorf("unexpected default port: %d", store.GetInt(KeyServerPort))
	}
	if store.ActorID() != "" {
		t.Errorf("expected empty actor id, got %q", store.ActorID())
	}
}

func TestSetPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := Open(dir)
	if err != nil {
		t.Fatalf("failed to open settings: %v", err)
	}
	if err := store.Set(KeyActorID, "0002"); err != nil {
		t.Fatalf("failed to set actor id: %v", err)
	}
	if err := store.Set(KeyDarkMode, true); err != nil {
		t.Fatalf("failed to set dark mode: %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("failed to reopen settings: %v", err)
	}
	if reopened.ActorID() != "0002" {
		t.Errorf("expected actor id to persist, got %q", reopened.ActorID())
	}
	if !reopened.GetBool(KeyDarkMode) {
		t.Error("expected dark mode to persist")
	}
}

func TestOpenPreservesExistingValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	if err := os.WriteFile(path, []byte("remote_url: http://example.com:9000\n"), 0644); err != nil {
		t.Fatalf("failed to write settings file: %v", err)
	}

	store, err := Open(dir)
	if err != nil {
		t.Fatalf("failed to open settings: %v", err)
	}
	if store.RemoteURL() != "http://example.com:9000" {
		t.Errorf("expected existing value to win, got %q", store.RemoteURL())
	}
	// Unset keys still fall back to defaults.
	if store.GetInt(KeyLoadTimeout) != 8 {
		t.Errorf("unexpected load timeout default: %d", store.GetInt(KeyLoadTimeout))
	}
}
