// Package actions implements the domain mutations over the synchronization
// engine: create/update/delete for tasks, users, templates, and
// organizations, plus bulk task generation from date ranges and templates.
//
// Every action computes derived fields (identifiers, timestamps, status)
// before delegating the whole new collection value to the engine. Actions
// require a current actor and are silently ignored without one; actions on
// the organization collection additionally require the super-admin role.
package actions

import (
	"fmt"
	"time"

	"github.com/taskpilot/taskpilot/internal/engine"
	"github.com/taskpilot/taskpilot/internal/export"
	"github.com/taskpilot/taskpilot/internal/model"
)

// Actions binds the mutation operations to one engine.
type Actions struct {
	engine *engine.Engine
	now    func() time.Time
}

// New creates the action set for an engine.
func New(e *engine.Engine) *Actions {
	return &Actions{engine: e, now: time.Now}
}

func (a *Actions) actor() model.Record {
	return a.engine.Actor()
}

// CreateOrganization creates a new tenant and its first admin account in one
// paired sync. Super-admin only; ignored for any other actor.
func (a *Actions) CreateOrganization(name string, admin model.Record) {
	actor := a.actor()
	if actor == nil || actor.Role() != model.RoleSuperAdmin {
		return
	}

	now := a.now()
	org := model.Record{
		"id":        model.TimeID(0),
		"name":      name,
		"createdAt": now.Format(time.RFC3339),
	}

	adminUser := admin.Clone()
	adminUser["id"] = model.TimeID(1)
	adminUser["organizationId"] = org.ID()
	adminUser["role"] = model.RoleAdmin
	adminUser["createdAt"] = now.Format(time.RFC3339)

	a.engine.SyncOrganizations(append(a.engine.Organizations(), org))
	a.engine.SyncUsers(append(a.engine.Users(), adminUser))
}

// CreateTask stamps id, tenant, status, and creation time onto the input and
// prepends it to the task collection (newest first).
func (a *Actions) CreateTask(input model.Record) {
	actor := a.actor()
	if actor == nil {
		return
	}

	tasks := a.engine.Tasks()
	task := input.Clone()
	task["id"] = model.NextIDs(tasks, 1)[0]
	task["organizationId"] = actor.OrgID()
	task["status"] = model.StatusPending
	task["createdAt"] = a.now().Format(time.RFC3339)

	a.engine.SyncTasks(prepend(tasks, task))
}

// CreateTaskRange stamps out one task per calendar day in the inclusive range
// [start, end], each with a deadline at the given time of day ("HH:MM").
// Identifiers are assigned for the whole batch up front, so every id is
// distinct even though all are computed before insertion. The new tasks are
// prepended as a block, oldest date first, ahead of existing tasks.
func (a *Actions) CreateTaskRange(input model.Record, timeOfDay string, start, end time.Time) {
	actor := a.actor()
	if actor == nil {
		return
	}

	days := daysBetween(start, end)
	if len(days) == 0 {
		return
	}

	tasks := a.engine.Tasks()
	ids := model.NextIDs(tasks, len(days))
	created := a.now().Format(time.RFC3339)

	batch := make([]model.Record, 0, len(days))
	for i, day := range days {
		task := input.Clone()
		task["id"] = ids[i]
		task["organizationId"] = actor.OrgID()
		task["status"] = model.StatusPending
		task["createdAt"] = created
		task["deadline"] = atClock(day, timeOfDay).Format(time.RFC3339)
		batch = append(batch, task)
	}

	a.engine.SyncTasks(prepend(tasks, batch...))
}

// UpdateTask replaces the task with a matching id. A miss leaves the
// collection unchanged but still re-syncs it.
func (a *Actions) UpdateTask(task model.Record) {
	if a.actor() == nil {
		return
	}

	tasks := a.engine.Tasks()
	next := make([]model.Record, len(tasks))
	for i, t := range tasks {
		if t.ID() == task.ID() {
			next[i] = task
		} else {
			next[i] = t
		}
	}
	a.engine.SyncTasks(next)
}

// DeleteTask removes the task with the matching id.
func (a *Actions) DeleteTask(id string) {
	if a.actor() == nil {
		return
	}

	tasks := a.engine.Tasks()
	next := make([]model.Record, 0, len(tasks))
	for _, t := range tasks {
		if t.ID() != id {
			next = append(next, t)
		}
	}
	a.engine.SyncTasks(next)
}

// ToggleTaskStatus flips the matching task between PENDING and COMPLETED.
// completedAt is set on the transition into COMPLETED and cleared on the way
// back.
func (a *Actions) ToggleTaskStatus(id string) {
	if a.actor() == nil {
		return
	}

	tasks := a.engine.Tasks()
	next := make([]model.Record, len(tasks))
	for i, t := range tasks {
		if t.ID() != id {
			next[i] = t
			continue
		}
		toggled := t.Clone()
		if t.String("status") == model.StatusCompleted {
			toggled["status"] = model.StatusPending
			delete(toggled, "completedAt")
		} else {
			toggled["status"] = model.StatusCompleted
			toggled["completedAt"] = a.now().Format(time.RFC3339)
		}
		next[i] = toggled
	}
	a.engine.SyncTasks(next)
}

// UpdateTaskNotes replaces only the notes field of the matching task.
func (a *Actions) UpdateTaskNotes(id, notes string) {
	if a.actor() == nil {
		return
	}

	tasks := a.engine.Tasks()
	next := make([]model.Record, len(tasks))
	for i, t := range tasks {
		if t.ID() != id {
			next[i] = t
			continue
		}
		updated := t.Clone()
		updated["notes"] = notes
		next[i] = updated
	}
	a.engine.SyncTasks(next)
}

// CreateUser appends a new account scoped to the actor's tenant, with a
// time-derived id and the given role and credentials.
func (a *Actions) CreateUser(input model.Record) {
	actor := a.actor()
	if actor == nil {
		return
	}

	user := input.Clone()
	user["id"] = model.TimeID(0)
	user["organizationId"] = actor.OrgID()
	user["createdAt"] = a.now().Format(time.RFC3339)

	a.engine.SyncUsers(append(a.engine.Users(), user))
}

// ResetUserPassword replaces the password field of the matching user.
func (a *Actions) ResetUserPassword(id, password string) {
	if a.actor() == nil {
		return
	}

	users := a.engine.Users()
	next := make([]model.Record, len(users))
	for i, u := range users {
		if u.ID() != id {
			next[i] = u
			continue
		}
		updated := u.Clone()
		updated["password"] = password
		next[i] = updated
	}
	a.engine.SyncUsers(next)
}

// SaveTemplate upserts a template by id. The tenant is always stamped from
// the current actor, regardless of what the caller supplied. A template
// arriving without an id gets a time-derived one.
func (a *Actions) SaveTemplate(input model.Record) {
	actor := a.actor()
	if actor == nil {
		return
	}

	tpl := input.Clone()
	tpl["organizationId"] = actor.OrgID()
	if tpl.ID() == "" {
		tpl["id"] = model.TimeID(0)
	}

	templates := a.engine.Templates()
	replaced := false
	next := make([]model.Record, len(templates))
	for i, t := range templates {
		if t.ID() == tpl.ID() {
			next[i] = tpl
			replaced = true
		} else {
			next[i] = t
		}
	}
	if !replaced {
		next = append(next, tpl)
	}
	a.engine.SyncTemplates(next)
}

// DeleteTemplate removes the template with the matching id.
func (a *Actions) DeleteTemplate(id string) {
	if a.actor() == nil {
		return
	}

	templates := a.engine.Templates()
	next := make([]model.Record, 0, len(templates))
	for _, t := range templates {
		if t.ID() != id {
			next = append(next, t)
		}
	}
	a.engine.SyncTemplates(next)
}

// AssignTemplateToUser stamps out the template's items for every calendar day
// in the inclusive range, assigned to the target user. The block is ordered
// day-major, then item order, and prepended ahead of existing tasks. An
// unknown template id is a no-op.
func (a *Actions) AssignTemplateToUser(templateID, userID string, start, end time.Time) {
	actor := a.actor()
	if actor == nil {
		return
	}

	tpl := model.FindByID(a.engine.Templates(), templateID)
	if tpl == nil {
		return
	}
	items := templateItems(tpl)
	days := daysBetween(start, end)
	if len(items) == 0 || len(days) == 0 {
		return
	}

	tasks := a.engine.Tasks()
	ids := model.NextIDs(tasks, len(days)*len(items))
	created := a.now().Format(time.RFC3339)

	batch := make([]model.Record, 0, len(days)*len(items))
	for _, day := range days {
		for _, item := range items {
			task := model.Record{
				"id":             ids[len(batch)],
				"title":          item.String("title"),
				"description":    item.String("description"),
				"category":       item.String("category"),
				"priority":       item.String("priority"),
				"status":         model.StatusPending,
				"assignedTo":     userID,
				"organizationId": actor.OrgID(),
				"createdAt":      created,
				"deadline":       atClock(day, item.String("time")).Format(time.RFC3339),
				"notes":          "",
			}
			batch = append(batch, task)
		}
	}

	a.engine.SyncTasks(prepend(tasks, batch...))
}

// ExportCSV renders the currently visible task collection as delimited text.
// Read-only; see the export package for the format.
func (a *Actions) ExportCSV() string {
	view := a.engine.Visible()
	return export.CSV(view.Tasks, view.Users)
}

// prepend returns a new slice with the given records ahead of existing.
func prepend(existing []model.Record, records ...model.Record) []model.Record {
	next := make([]model.Record, 0, len(existing)+len(records))
	next = append(next, records...)
	return append(next, existing...)
}

// daysBetween lists every calendar day of the inclusive range [start, end],
// each normalized to midnight. An inverted range is empty.
func daysBetween(start, end time.Time) []time.Time {
	first := midnight(start)
	last := midnight(end)

	var days []time.Time
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		days = append(days, day)
	}
	return days
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// atClock combines a midnight-normalized day with an "HH:MM" time of day.
// Unparseable clocks resolve to midnight.
func atClock(day time.Time, clock string) time.Time {
	var hour, minute int
	if _, err := fmt.Sscanf(clock, "%d:%d", &hour, &minute); err != nil {
		return day
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location())
}

// templateItems returns the template's ordered item specifications. Items
// arrive as generic JSON values after a round trip through the remote store.
func templateItems(tpl model.Record) []model.Record {
	raw, ok := tpl["items"].([]any)
	if !ok {
		// Items built in-process may already be typed.
		if typed, ok := tpl["items"].([]model.Record); ok {
			return typed
		}
		return nil
	}

	items := make([]model.Record, 0, len(raw))
	for _, v := range raw {
		if m, ok := v.(map[string]any); ok {
			items = append(items, model.Record(m))
		}
	}
	return items
}
