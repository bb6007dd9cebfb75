// Package engine owns the canonical in-memory collections and reconciles them
// with the remote store.
//
// The engine implements the offline-resilience protocol:
//
//  1. Loads probe reachability first, then fetch all four collections
//     concurrently, failing fast on the first error.
//  2. A freshly empty backend (no users AND no organizations) is seeded with
//     the built-in defaults; templates are never seeded.
//  3. On any load failure the engine repopulates from the snapshot cache,
//     falling back to seed data per collection.
//  4. Mutations replace a whole collection in memory synchronously, then
//     persist in the background; a failed persist is logged and cached
//     locally, never rolled back.
//
// Exactly one source of truth backs the collections at any time: the fresh
// remote state, or the last cached snapshot, or the built-in seeds.
package engine

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/taskpilot/taskpilot/internal/model"
	"github.com/taskpilot/taskpilot/internal/remote"
	"github.com/taskpilot/taskpilot/internal/seed"
)

// loadTimeout is the safety bound on the whole load protocol. If the load is
// still marked in-flight when it fires, the loading flag is force-cleared so
// a consumer is never stuck waiting, even if the network calls hang.
const loadTimeout = 8 * time.Second

// offlineMessage is the single user-facing connectivity error.
const offlineMessage = "Server unreachable - showing locally cached data"

// timeoutMessage is recorded when the safety timer beats the load protocol.
const timeoutMessage = "Loading timed out - please refresh"

// RemoteStore is the engine's view of the remote key-document store.
type RemoteStore interface {
	// Health reports reachability within a bounded latency. It never errors;
	// false means unreachable.
	Health() bool
	Fetch(ctx context.Context, collection string) ([]model.Record, error)
	Save(ctx context.Context, collection string, records []model.Record) (remote.SaveResult, error)
}

// SnapshotCache is the engine's view of the durable best-effort cache.
type SnapshotCache interface {
	Set(key string, records []model.Record)
	Get(key string) ([]model.Record, bool)
}

// Seeds holds the built-in datasets written to a freshly empty backend.
type Seeds struct {
	Users         []model.Record
	Tasks         []model.Record
	Organizations []model.Record
}

// DefaultSeeds returns the embedded fixture datasets.
func DefaultSeeds() Seeds {
	return Seeds{
		Users:         seed.Users(),
		Tasks:         seed.Tasks(),
		Organizations: seed.Organizations(),
	}
}

// Options tunes a new Engine. The zero value is usable.
type Options struct {
	// Logger for load/sync activity. Defaults to log.Default().
	Logger *log.Logger

	// Seeds written to an empty backend. Defaults to DefaultSeeds().
	Seeds *Seeds

	// LoadTimeout overrides the safety timer bound. Defaults to 8s.
	LoadTimeout time.Duration

	// OnEvent, when set, receives engine lifecycle events. Called from the
	// engine's goroutines; implementations must not block.
	OnEvent func(Event)
}

// Engine is safe for concurrent use. Mutation logic is serialized under an
// internal mutex; background persists run unordered (last write wins on the
// remote side, an accepted inconsistency window).
type Engine struct {
	store     RemoteStore
	snapshots SnapshotCache
	seeds     Seeds
	logger    *log.Logger
	timeout   time.Duration
	onEvent   func(Event)

	mu        sync.Mutex
	users     []model.Record
	tasks     []model.Record
	templates []model.Record
	orgs      []model.Record
	loading   bool
	lastErr   string
	actor     model.Record

	saves sync.WaitGroup
}

// New creates an Engine over the given remote store and snapshot cache.
func New(store RemoteStore, snapshots SnapshotCache, opts *Options) *Engine {
	e := &Engine{
		store:     store,
		snapshots: snapshots,
		seeds:     DefaultSeeds(),
		logger:    log.Default(),
		timeout:   loadTimeout,
	}
	if opts != nil {
		if opts.Logger != nil {
			e.logger = opts.Logger
		}
		if opts.Seeds != nil {
			e.seeds = *opts.Seeds
		}
		if opts.LoadTimeout > 0 {
			e.timeout = opts.LoadTimeout
		}
		e.onEvent = opts.OnEvent
	}
	return e
}

// Load (re)creates all four collections wholesale. It is triggered once at
// startup and again on explicit refresh. Load never returns an error: every
// failure path lands on cached or seed data and records a user-facing message
// retrievable via LastError.
func (e *Engine) Load(ctx context.Context) {
	e.mu.Lock()
	e.loading = true
	e.lastErr = ""
	e.mu.Unlock()
	e.emit(Event{Type: EventLoadStarted})

	// Safety timer: races the protocol below and unilaterally clears the
	// loading flag if it wins. In-flight fetches are left to resolve; their
	// results still update cache and seed state, they just no longer gate
	// the consumer.
	timer := time.AfterFunc(e.timeout, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.loading {
			e.loading = false
			e.lastErr = timeoutMessage
			e.logger.Printf("load safety timeout fired after %v", e.timeout)
		}
	})
	defer timer.Stop()
	defer func() {
		e.mu.Lock()
		e.loading = false
		e.mu.Unlock()
	}()

	if !e.store.Health() {
		e.logger.Printf("health probe negative, skipping fetch")
		e.fallbackToCache()
		return
	}

	var users, tasks, templates, orgs []model.Record
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		users, err = e.store.Fetch(gctx, model.CollectionUsers)
		return err
	})
	g.Go(func() (err error) {
		tasks, err = e.store.Fetch(gctx, model.CollectionTasks)
		return err
	})
	g.Go(func() (err error) {
		templates, err = e.store.Fetch(gctx, model.CollectionTemplates)
		return err
	})
	g.Go(func() (err error) {
		orgs, err = e.store.Fetch(gctx, model.CollectionOrganizations)
		return err
	})
	if err := g.Wait(); err != nil {
		e.logger.Printf("load fetch failed: %v", err)
		e.fallbackToCache()
		return
	}

	// Seeding rule: dual emptiness of users and organizations marks an
	// uninitialized backend. Empty tasks or templates alone never seed.
	if len(users) == 0 && len(orgs) == 0 {
		users, tasks, orgs = e.seedBackend(ctx)
	}

	e.mu.Lock()
	e.users = users
	e.tasks = tasks
	e.templates = templates
	e.orgs = orgs
	e.mu.Unlock()

	// Write-through: the cache mirrors success paths only.
	e.snapshots.Set(model.CollectionUsers, users)
	e.snapshots.Set(model.CollectionTasks, tasks)
	e.snapshots.Set(model.CollectionTemplates, templates)
	e.snapshots.Set(model.CollectionOrganizations, orgs)

	e.emit(Event{Type: EventLoadCompleted})
}

// seedBackend replaces users/tasks/orgs with the built-in seeds and attempts
// to write them back. A failed seed write is logged only; the in-memory seed
// values still serve this session.
func (e *Engine) seedBackend(ctx context.Context) (users, tasks, orgs []model.Record) {
	e.logger.Printf("remote store is empty, seeding default datasets")
	users = e.seeds.Users
	tasks = e.seeds.Tasks
	orgs = e.seeds.Organizations

	writes := []struct {
		key     string
		records []model.Record
	}{
		{model.CollectionUsers, users},
		{model.CollectionTasks, tasks},
		{model.CollectionOrganizations, orgs},
	}
	for _, w := range writes {
		if _, err := e.store.Save(ctx, w.key, w.records); err != nil {
			e.logger.Printf("failed to write %s seed (continuing with in-memory copy): %v", w.key, err)
		}
	}

	e.emit(Event{Type: EventSeeded})
	return users, tasks, orgs
}

// fallbackToCache repopulates every collection from the snapshot cache,
// per collection independently, using seed data where no snapshot exists.
// Templates fall back to an empty collection, never to seed.
func (e *Engine) fallbackToCache() {
	e.mu.Lock()
	e.lastErr = offlineMessage
	e.users = e.cachedOr(model.CollectionUsers, e.seeds.Users)
	e.tasks = e.cachedOr(model.CollectionTasks, e.seeds.Tasks)
	e.templates = e.cachedOr(model.CollectionTemplates, nil)
	e.orgs = e.cachedOr(model.CollectionOrganizations, e.seeds.Organizations)
	e.mu.Unlock()

	e.emit(Event{Type: EventOfflineFallback})
}

func (e *Engine) cachedOr(key string, fallback []model.Record) []model.Record {
	if records, ok := e.snapshots.Get(key); ok {
		return records
	}
	if fallback == nil {
		return []model.Record{}
	}
	return fallback
}

// SyncUsers replaces the users collection and persists it in the background.
func (e *Engine) SyncUsers(records []model.Record) {
	e.syncCollection(model.CollectionUsers, records)
}

// SyncTasks replaces the tasks collection and persists it in the background.
func (e *Engine) SyncTasks(records []model.Record) {
	e.syncCollection(model.CollectionTasks, records)
}

// SyncTemplates replaces the templates collection and persists it in the
// background.
func (e *Engine) SyncTemplates(records []model.Record) {
	e.syncCollection(model.CollectionTemplates, records)
}

// SyncOrganizations replaces the organizations collection and persists it in
// the background.
func (e *Engine) SyncOrganizations(records []model.Record) {
	e.syncCollection(model.CollectionOrganizations, records)
}

// syncCollection is the optimistic write path: callers observe the new value
// before any network round trip completes, and never see a persist failure.
func (e *Engine) syncCollection(key string, records []model.Record) {
	e.mu.Lock()
	e.setCollection(key, records)
	e.mu.Unlock()

	e.saves.Add(1)
	go func() {
		defer e.saves.Done()

		result, err := e.store.Save(context.Background(), key, records)
		if err != nil {
			e.logger.Printf("background save of %s failed, kept locally: %v", key, err)
		} else if !result.Success && result.Count == 0 {
			e.logger.Printf("background save of %s not acknowledged, kept locally", key)
		}

		// Cached on success AND failure, so a later offline reload is
		// consistent with what the user last saw.
		e.snapshots.Set(key, records)
		e.emit(Event{Type: EventCollectionSynced, Collection: key, Count: len(records)})
	}()
}

func (e *Engine) setCollection(key string, records []model.Record) {
	switch key {
	case model.CollectionUsers:
		e.users = records
	case model.CollectionTasks:
		e.tasks = records
	case model.CollectionTemplates:
		e.templates = records
	case model.CollectionOrganizations:
		e.orgs = records
	}
}

// MirrorUsers overwrites the in-memory users collection without persisting or
// caching. Used by the diagnostic probe to mirror its cleaned-up state back,
// independent of the normal mutation path.
func (e *Engine) MirrorUsers(records []model.Record) {
	e.mu.Lock()
	e.users = records
	e.mu.Unlock()
}

// Flush blocks until every background persist started before the call has
// completed. Short-lived consumers call this before exiting so optimistic
// writes reach the remote store.
func (e *Engine) Flush() {
	e.saves.Wait()
}

// SetActor sets the current actor reference used for tenant filtering. The
// engine never mutates the record; ownership stays with the caller.
func (e *Engine) SetActor(actor model.Record) {
	e.mu.Lock()
	e.actor = actor
	e.mu.Unlock()
}

// Actor returns the current actor, or nil when none is set.
func (e *Engine) Actor() model.Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.actor
}

// Loading reports whether a load cycle is in flight.
func (e *Engine) Loading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loading
}

// LastError returns the user-facing message from the most recent load, or ""
// when the last load succeeded.
func (e *Engine) LastError() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// Users returns the raw, unfiltered users collection.
func (e *Engine) Users() []model.Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.users
}

// Tasks returns the raw, unfiltered tasks collection.
func (e *Engine) Tasks() []model.Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tasks
}

// Templates returns the raw, unfiltered templates collection.
func (e *Engine) Templates() []model.Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.templates
}

// Organizations returns the raw, unfiltered organizations collection.
func (e *Engine) Organizations() []model.Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.orgs
}

func (e *Engine) emit(event Event) {
	if e.onEvent == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	e.onEvent(event)
}
