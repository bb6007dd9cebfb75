// Package probe runs an end-to-end write/read/cleanup self-test against the
// live remote store, independent of cached or in-memory state.
//
// The probe appends a synthetic user, confirms it persisted, removes it
// again, and reports each step. It never lets a failure escape its own
// boundary: any unexpected error (or panic) becomes a single fatal step
// result.
package probe

import (
	"context"
	"fmt"
	"log"

	"github.com/taskpilot/taskpilot/internal/engine"
	"github.com/taskpilot/taskpilot/internal/model"
)

// Status of one probe step.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Step is one entry of the probe's ordered result sequence.
type Step struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message"`
	Detail  any    `json:"detail,omitempty"`
}

// Runner executes the diagnostic sequence.
type Runner struct {
	store  engine.RemoteStore
	engine *engine.Engine
	logger *log.Logger
}

// New creates a probe runner. The engine is optional; when present, the
// cleaned user list is mirrored into its memory as a side effect.
func New(store engine.RemoteStore, e *engine.Engine, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{store: store, engine: e, logger: logger}
}

// Run executes the probe and returns the ordered step results. It never
// returns an error and never panics past its boundary.
func (r *Runner) Run(ctx context.Context) (steps []Step) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Printf("probe recovered: %v", rec)
			steps = append(steps, Step{
				Name:    "probe",
				Status:  StatusError,
				Message: fmt.Sprintf("probe aborted: %v", rec),
			})
		}
	}()

	// Step 1: baseline fetch. A failure here is fatal to the whole probe.
	users, err := r.store.Fetch(ctx, model.CollectionUsers)
	if err != nil {
		return append(steps, Step{
			Name:    "fetch users",
			Status:  StatusError,
			Message: fmt.Sprintf("cannot reach remote store: %v", err),
		})
	}
	steps = append(steps, Step{
		Name:    "fetch users",
		Status:  StatusSuccess,
		Message: fmt.Sprintf("fetched %d users", len(users)),
	})

	// Step 2: synthetic user, tagged with a time-derived id and the sentinel
	// tenant so it can never collide with real tenant data.
	testUser := model.Record{
		"id":             "diag-" + model.TimeID(0),
		"username":       "diagnostic-probe",
		"fullName":       "Diagnostic Probe",
		"role":           model.RoleStaff,
		"organizationId": model.SystemTenant,
	}
	steps = append(steps, Step{
		Name:    "build test user",
		Status:  StatusSuccess,
		Message: fmt.Sprintf("test user id %s", testUser.ID()),
	})

	// Step 3: append and write back the full list.
	result, err := r.store.Save(ctx, model.CollectionUsers, append(users, testUser))
	if err != nil {
		return append(steps, Step{
			Name:    "write test user",
			Status:  StatusError,
			Message: fmt.Sprintf("save failed: %v", err),
		})
	}
	if !result.Success && result.Count <= 0 {
		return append(steps, Step{
			Name:    "write test user",
			Status:  StatusError,
			Message: "remote store did not acknowledge the write",
			Detail:  result,
		})
	}
	steps = append(steps, Step{
		Name:    "write test user",
		Status:  StatusSuccess,
		Message: fmt.Sprintf("acknowledged %d records", result.Count),
	})

	// Step 4: re-fetch and confirm the write actually took effect.
	refetched, err := r.store.Fetch(ctx, model.CollectionUsers)
	if err != nil {
		return append(steps, Step{
			Name:    "verify persistence",
			Status:  StatusError,
			Message: fmt.Sprintf("re-fetch failed: %v", err),
		})
	}
	if model.FindByID(refetched, testUser.ID()) == nil {
		return append(steps, Step{
			Name:    "verify persistence",
			Status:  StatusError,
			Message: "test user missing after write; persistence did not take effect",
		})
	}
	steps = append(steps, Step{
		Name:    "verify persistence",
		Status:  StatusSuccess,
		Message: "test user found on re-fetch",
	})

	// Step 5: best-effort cleanup.
	cleaned := make([]model.Record, 0, len(refetched))
	for _, u := range refetched {
		if u.ID() != testUser.ID() {
			cleaned = append(cleaned, u)
		}
	}
	if _, err := r.store.Save(ctx, model.CollectionUsers, cleaned); err != nil {
		steps = append(steps, Step{
			Name:    "cleanup",
			Status:  StatusError,
			Message: fmt.Sprintf("cleanup write failed, test user left behind: %v", err),
		})
	} else {
		steps = append(steps, Step{
			Name:    "cleanup",
			Status:  StatusSuccess,
			Message: "test user removed",
		})
	}

	// Step 6: mirror the cleaned list into memory, bypassing the normal
	// mutation path.
	if r.engine != nil {
		r.engine.MirrorUsers(cleaned)
	}

	return steps
}
