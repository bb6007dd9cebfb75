package probe

import (
	"context"
	"errors"
	"log"
	"os"
	"testing"

	"github.com/taskpilot/taskpilot/internal/engine"
	"github.com/taskpilot/taskpilot/internal/model"
	"github.com/taskpilot/taskpilot/internal/remote"
)

// probeStore is an in-memory remote store with fault injection.
type probeStore struct {
	users      []model.Record
	fetchErr   error
	saveErr    error
	dropWrites bool
	ackFailure bool
}

func (s *probeStore) Health() bool { return true }

func (s *probeStore) Fetch(ctx context.Context, collection string) ([]model.Record, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.users, nil
}

func (s *probeStore) Save(ctx context.Context, collection string, records []model.Record) (remote.SaveResult, error) {
	if s.saveErr != nil {
		return remote.SaveResult{}, s.saveErr
	}
	if s.ackFailure {
		return remote.SaveResult{Success: false, Count: 0}, nil
	}
	if !s.dropWrites {
		s.users = records
	}
	return remote.SaveResult{Success: true, Count: len(records)}, nil
}

type nullCache struct{}

func (nullCache) Set(key string, records []model.Record) {}
func (nullCache) Get(key string) ([]model.Record, bool)  { return nil, false }

func testLogger() *log.Logger {
	return log.New(os.Stderr, "[test] ", 0)
}

func TestProbeHappyPath(t *testing.T) {
	store := &probeStore{users: []model.Record{{"id": "0001", "username": "real"}}}
	e := engine.New(store, nullCache{}, &engine.Options{Logger: testLogger(), Seeds: &engine.Seeds{}})

	steps := New(store, e, testLogger()).Run(context.Background())

	if len(steps) != 5 {
		t.Fatalf("expected 5 steps, got %d: %+v", len(steps), steps)
	}
	for _, s := range steps {
		if s.Status != StatusSuccess {
			t.Errorf("step %q: expected success, got %s (%s)", s.Name, s.Status, s.Message)
		}
	}

	// Cleanup must remove the synthetic user from the store.
	if len(store.users) != 1 || store.users[0].ID() != "0001" {
		t.Errorf("expected only the real user to survive, got %v", store.users)
	}

	// The cleaned list is mirrored into engine memory.
	if len(e.Users()) != 1 || e.Users()[0].ID() != "0001" {
		t.Errorf("expected cleaned list mirrored into memory, got %v", e.Users())
	}
}

func TestProbeFetchFailureIsFatal(t *testing.T) {
	store := &probeStore{fetchErr: errors.New("connection refused")}

	steps := New(store, nil, testLogger()).Run(context.Background())

	if len(steps) != 1 {
		t.Fatalf("expected a single fatal step, got %d", len(steps))
	}
	if steps[0].Status != StatusError {
		t.Errorf("expected error status, got %s", steps[0].Status)
	}
}

func TestProbeUnacknowledgedWriteAborts(t *testing.T) {
	store := &probeStore{ackFailure: true}

	steps := New(store, nil, testLogger()).Run(context.Background())

	last := steps[len(steps)-1]
	if last.Name != "write test user" || last.Status != StatusError {
		t.Errorf("expected abort at unacknowledged write, got %+v", last)
	}
}

func TestProbeDetectsSilentPersistenceFailure(t *testing.T) {
	store := &probeStore{dropWrites: true}

	steps := New(store, nil, testLogger()).Run(context.Background())

	last := steps[len(steps)-1]
	if last.Name != "verify persistence" || last.Status != StatusError {
		t.Errorf("expected abort at persistence verification, got %+v", last)
	}
}

func TestProbeSurvivesCleanupFailure(t *testing.T) {
	// Succeed until the cleanup write, then fail it.
	store := &cleanupFailStore{}

	steps := New(store, nil, testLogger()).Run(context.Background())

	last := steps[len(steps)-1]
	if last.Name != "cleanup" || last.Status != StatusError {
		t.Errorf("expected recorded cleanup failure, got %+v", last)
	}
}

type cleanupFailStore struct {
	users []model.Record
	saves int
}

func (s *cleanupFailStore) Health() bool { return true }

func (s *cleanupFailStore) Fetch(ctx context.Context, collection string) ([]model.Record, error) {
	return s.users, nil
}

func (s *cleanupFailStore) Save(ctx context.Context, collection string, records []model.Record) (remote.SaveResult, error) {
	s.saves++
	if s.saves > 1 {
		return remote.SaveResult{}, errors.New("write failed")
	}
	s.users = records
	return remote.SaveResult{Success: true, Count: len(records)}, nil
}
