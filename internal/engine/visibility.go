package engine

import "github.com/taskpilot/taskpilot/internal/model"

// View is the subset of each collection visible to one actor.
type View struct {
	Users         []model.Record
	Tasks         []model.Record
	Templates     []model.Record
	Organizations []model.Record
}

// Visible derives the current actor's view of the canonical collections.
//
// No actor: everything is empty. A super-admin sees all organizations and
// users but no task content (super-admins manage tenants and accounts, not
// tasks or templates). Any other actor sees only records of its own tenant,
// and no organizations at all.
func (e *Engine) Visible() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return visibleTo(e.actor, e.users, e.tasks, e.templates, e.orgs)
}

func visibleTo(actor model.Record, users, tasks, templates, orgs []model.Record) View {
	if actor == nil {
		return View{
			Users:         []model.Record{},
			Tasks:         []model.Record{},
			Templates:     []model.Record{},
			Organizations: []model.Record{},
		}
	}

	if actor.Role() == model.RoleSuperAdmin {
		return View{
			Users:         users,
			Tasks:         []model.Record{},
			Templates:     []model.Record{},
			Organizations: orgs,
		}
	}

	tenant := actor.OrgID()
	return View{
		Users:         filterByTenant(users, tenant),
		Tasks:         filterByTenant(tasks, tenant),
		Templates:     filterByTenant(templates, tenant),
		Organizations: []model.Record{},
	}
}

func filterByTenant(records []model.Record, tenant string) []model.Record {
	out := make([]model.Record, 0, len(records))
	for _, r := range records {
		if r.OrgID() == tenant {
			out = append(out, r)
		}
	}
	return out
}
