package export

import (
	"strings"
	"testing"

	"github.com/taskpilot/taskpilot/internal/model"
)

func TestCSVHeaderOnly(t *testing.T) {
	out := CSV(nil, nil)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected header only, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "ID,Title,") {
		t.Errorf("unexpected header: %s", lines[0])
	}
}

func TestCSVResolvesAssignee(t *testing.T) {
	tasks := []model.Record{
		{"id": "0001", "title": "Mop floors", "assignedTo": "0007", "status": "PENDING"},
	}
	users := []model.Record{
		{"id": "0007", "fullName": "Dana Smith"},
	}

	out := CSV(tasks, users)
	if !strings.Contains(out, `"Dana Smith"`) {
		t.Errorf("expected resolved assignee name, got:\n%s", out)
	}
}

func TestCSVUnknownAssignee(t *testing.T) {
	tasks := []model.Record{
		{"id": "0001", "title": "Orphan task", "assignedTo": "missing"},
	}

	out := CSV(tasks, nil)
	if !strings.Contains(out, `"unknown"`) {
		t.Errorf("expected unknown placeholder, got:\n%s", out)
	}
}

func TestCSVQuoteEscaping(t *testing.T) {
	tasks := []model.Record{
		{"id": "0001", "title": `Check "emergency" exits`, "notes": `door says "keep shut"`},
	}

	out := CSV(tasks, nil)
	if !strings.Contains(out, `"Check ""emergency"" exits"`) {
		t.Errorf("title quotes not doubled:\n%s", out)
	}
	if !strings.Contains(out, `"door says ""keep shut"""`) {
		t.Errorf("notes quotes not doubled:\n%s", out)
	}
}

func TestCSVEmptyOptionalColumns(t *testing.T) {
	tasks := []model.Record{
		{"id": "0001", "title": "Bare", "status": "PENDING"},
	}

	out := CSV(tasks, nil)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
	if strings.Count(lines[1], ",") != strings.Count(lines[0], ",") {
		t.Errorf("row column count differs from header: %s", lines[1])
	}
	// completedAt renders empty, not a literal placeholder.
	if strings.Contains(lines[1], "COMPLETED") {
		t.Errorf("unexpected completion data: %s", lines[1])
	}
}
