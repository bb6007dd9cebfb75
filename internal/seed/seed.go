// Package seed supplies the built-in default datasets written to a freshly
// empty backend. Seeds exist for users, tasks, and organizations; templates
// are never seeded.
package seed

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/taskpilot/taskpilot/internal/model"
)

//go:embed fixtures/users.yaml
var usersYAML []byte

//go:embed fixtures/tasks.yaml
var tasksYAML []byte

//go:embed fixtures/orgs.yaml
var orgsYAML []byte

// Users returns the built-in default user set. The first entry is the
// super-admin bootstrap account.
func Users() []model.Record {
	return mustParse("users", usersYAML)
}

// Tasks returns the built-in default task set.
func Tasks() []model.Record {
	return mustParse("tasks", tasksYAML)
}

// Organizations returns the built-in default organization set.
func Organizations() []model.Record {
	return mustParse("orgs", orgsYAML)
}

// mustParse panics on malformed fixtures. The fixtures are compiled into the
// binary, so a failure here is a build defect, not a runtime condition.
func mustParse(name string, data []byte) []model.Record {
	var records []model.Record
	if err := yaml.Unmarshal(data, &records); err != nil {
		panic(fmt.Sprintf("seed: invalid embedded %s fixture: %v", name, err))
	}
	return records
}
