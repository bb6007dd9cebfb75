package model

import (
	"fmt"
	"testing"
)

func TestNextIDsEmptyCollection(t *testing.T) {
	ids := NextIDs(nil, 1)
	if len(ids) != 1 {
		t.Fatalf("expected 1 id, got %d", len(ids))
	}
	if ids[0] != "0001" {
		t.Errorf("expected 0001, got %s", ids[0])
	}
}

func TestNextIDsMonotonic(t *testing.T) {
	records := []Record{
		{"id": "0003"},
		{"id": "0001"},
		{"id": "0002"},
	}
	ids := NextIDs(records, 1)
	if ids[0] != "0004" {
		t.Errorf("expected 0004, got %s", ids[0])
	}
}

func TestNextIDsIgnoresNonNumeric(t *testing.T) {
	records := []Record{
		{"id": "0007"},
		{"id": "1769550000000x"}, // not numeric, ignored
		{"id": "draft"},
		{"id": ""},
	}
	ids := NextIDs(records, 1)
	if ids[0] != "0008" {
		t.Errorf("expected 0008, got %s", ids[0])
	}
}

func TestNextIDsBatch(t *testing.T) {
	records := []Record{{"id": "0041"}}
	ids := NextIDs(records, 3)
	want := []string{"0042", "0043", "0044"}
	for i, w := range want {
		if ids[i] != w {
			t.Errorf("id %d: expected %s, got %s", i, w, ids[i])
		}
	}
}

func TestNextIDsPaddingBeyondFourDigits(t *testing.T) {
	records := []Record{{"id": "10041"}}
	ids := NextIDs(records, 1)
	if ids[0] != "10042" {
		t.Errorf("expected 10042, got %s", ids[0])
	}
}

func TestTimeIDDistinctWithOffsets(t *testing.T) {
	a := TimeID(0)
	b := TimeID(1)
	if a == b {
		t.Errorf("expected distinct ids, both were %s", a)
	}
}

func TestFindByID(t *testing.T) {
	records := make([]Record, 0, 5)
	for i := 1; i <= 5; i++ {
		records = append(records, Record{"id": fmt.Sprintf("%04d", i)})
	}

	if r := FindByID(records, "0003"); r == nil {
		t.Fatal("expected to find 0003")
	}
	if r := FindByID(records, "9999"); r != nil {
		t.Errorf("expected nil for missing id, got %v", r)
	}
}

func TestRecordAccessors(t *testing.T) {
	r := Record{"id": "0001", "organizationId": "0002", "role": RoleAdmin, "priority": 2}
	if r.ID() != "0001" {
		t.Errorf("ID: got %s", r.ID())
	}
	if r.OrgID() != "0002" {
		t.Errorf("OrgID: got %s", r.OrgID())
	}
	if r.Role() != RoleAdmin {
		t.Errorf("Role: got %s", r.Role())
	}
	// Non-string fields read as empty, not panic.
	if r.String("priority") != "" {
		t.Errorf("expected empty string for non-string field")
	}
}

func TestRecordClone(t *testing.T) {
	r := Record{"id": "0001", "title": "original"}
	c := r.Clone()
	c["title"] = "changed"
	if r["title"] != "original" {
		t.Errorf("clone mutated the original record")
	}
}
