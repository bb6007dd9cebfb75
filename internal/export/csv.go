// Package export renders task collections as delimited text. It is a pure
// formatting concern: no state, no engine dependency.
package export

import (
	"strings"

	"github.com/taskpilot/taskpilot/internal/model"
)

// header is the fixed column set, in order.
var header = []string{
	"ID", "Title", "Category", "Priority", "Status",
	"AssignedTo", "Deadline", "CompletedAt", "Notes",
}

// CSV renders the given tasks with assignee names resolved from users.
// Free-text fields (title, assignee, notes) are always quoted, with internal
// quotes escaped by doubling. An unresolvable assignee renders as "unknown".
func CSV(tasks, users []model.Record) string {
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID()] = u.String("fullName")
	}

	var b strings.Builder
	b.WriteString(strings.Join(header, ","))
	b.WriteByte('\n')

	for _, t := range tasks {
		assignee := names[t.String("assignedTo")]
		if assignee == "" {
			assignee = "unknown"
		}

		row := []string{
			t.ID(),
			quote(t.String("title")),
			t.String("category"),
			t.String("priority"),
			t.String("status"),
			quote(assignee),
			t.String("deadline"),
			t.String("completedAt"),
			quote(t.String("notes")),
		}
		b.WriteString(strings.Join(row, ","))
		b.WriteByte('\n')
	}
	return b.String()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
