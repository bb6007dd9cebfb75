// Package model defines the schemaless record shape shared by all four
// collections and the identifier algorithm used when new records are created.
//
// Records are deliberately kept as field maps rather than typed structs: the
// sync layer replaces whole collections wholesale against the remote store,
// and must round-trip fields it does not know about without dropping them.
// Typed construction lives in the actions package.
package model

import (
	"fmt"
	"strconv"
	"time"
)

// Collection names as understood by the remote store and the snapshot cache.
const (
	CollectionUsers         = "users"
	CollectionTasks         = "tasks"
	CollectionTemplates     = "templates"
	CollectionOrganizations = "orgs"
)

// Roles, ordered by descending privilege. SuperAdmin is not bound to any
// single tenant; its records carry SystemTenant as their organizationId.
const (
	RoleSuperAdmin = "SUPER_ADMIN"
	RoleAdmin      = "ADMIN"
	RoleManager    = "MANAGER"
	RoleStaff      = "STAFF"
)

// Task lifecycle statuses.
const (
	StatusPending   = "PENDING"
	StatusCompleted = "COMPLETED"
)

// SystemTenant is the sentinel organizationId for records that belong to no
// tenant (super-admin accounts, diagnostic records).
const SystemTenant = "system"

// Record is one entry of a collection: a JSON object with a string "id"
// unique within its collection. Unknown fields are preserved as-is.
type Record map[string]any

// ID returns the record's id, or "" if unset or not a string.
func (r Record) ID() string {
	return r.String("id")
}

// OrgID returns the record's organizationId tenant key. Organization records
// carry their own id as the tenant key and never set this field.
func (r Record) OrgID() string {
	return r.String("organizationId")
}

// Role returns the record's role field (meaningful for user records).
func (r Record) Role() string {
	return r.String("role")
}

// String returns the named field as a string, or "" if absent or another type.
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// FindByID returns the first record with the given id, or nil.
func FindByID(records []Record, id string) Record {
	for _, r := range records {
		if r.ID() == id {
			return r
		}
	}
	return nil
}

// NextIDs computes n new identifiers for a collection: max(numeric ids)+1,
// +2, ... formatted as decimal strings zero-padded to at least 4 digits.
// Non-numeric ids are ignored when computing the maximum, so collections that
// mix time-derived ids with sequential ones still get strictly increasing
// sequential ids.
//
// Called once per batch so every id in a bulk creation is distinct even
// though they are computed before insertion.
func NextIDs(records []Record, n int) []string {
	max := 0
	for _, r := range records {
		v, err := strconv.Atoi(r.ID())
		if err != nil {
			continue
		}
		if v > max {
			max = v
		}
	}

	ids := make([]string, n)
	for i := 0; i < n; i++ {
		ids[i] = fmt.Sprintf("%04d", max+1+i)
	}
	return ids
}

// TimeID returns a millisecond-precision time-derived identifier. The offset
// keeps ids distinct when several are minted in the same instant (an
// organization and its first admin user, for example).
func TimeID(offset int64) string {
	return strconv.FormatInt(time.Now().UnixMilli()+offset, 10)
}
