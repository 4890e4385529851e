package attendance

import (
	"database/sql"
	"testing"
	"time"
)

func entries(n int, prefix string) []RosterEntry {
	out := make([]RosterEntry, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, RosterEntry{ID: prefix + string(rune('a'+i)), Name: prefix})
	}
	return out
}

func TestRoster_Counts(t *testing.T) {
	r := Roster{
		Present: entries(3, "p"),
		Late:    entries(2, "l"),
		Absent:  entries(4, "a"),
	}

	got := r.Counts()
	want := Counts{Present: 3, Late: 2, Absent: 4}
	if got != want {
		t.Errorf("Counts() = %+v, want %+v", got, want)
	}
	if r.Size() != 9 {
		t.Errorf("Size() = %d, want 9", r.Size())
	}

	rec := r.ClassRecord("Period 1")
	if rec.Present != 3 || rec.Absent != 4 || rec.Late != 2 {
		t.Errorf("ClassRecord() = %+v, want present=3 absent=4 late=2", rec)
	}
	if rec.Total() != r.Size() {
		t.Errorf("ClassRecord().Total() = %d, want %d", rec.Total(), r.Size())
	}
}

func TestRoster_Add(t *testing.T) {
	var r Roster
	arrived := sql.NullTime{Time: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), Valid: true}

	tests := []struct {
		status Status
		ok     bool
	}{
		{StatusPresent, true},
		{StatusLate, true},
		{StatusAbsent, true},
		{Status("excused"), false},
	}
	for _, tt := range tests {
		if got := r.Add(tt.status, RosterEntry{ID: "1", Name: "x", ArrivalTime: arrived}); got != tt.ok {
			t.Errorf("Add(%q) = %v, want %v", tt.status, got, tt.ok)
		}
		if got := tt.status.Valid(); got != tt.ok {
			t.Errorf("Status(%q).Valid() = %v, want %v", tt.status, got, tt.ok)
		}
	}
	if r.Size() != 3 {
		t.Errorf("Size() after adds = %d, want 3", r.Size())
	}
}

func TestRoster_CloneIsIndependent(t *testing.T) {
	r := Roster{Present: []RosterEntry{{ID: "1", Name: "Alice"}}}
	c := r.Clone()
	c.Present[0].Name = "changed"
	c.Present = append(c.Present, RosterEntry{ID: "2"})

	if r.Present[0].Name != "Alice" {
		t.Errorf("original entry name = %q, want %q", r.Present[0].Name, "Alice")
	}
	if len(r.Present) != 1 {
		t.Errorf("original present len = %d, want 1", len(r.Present))
	}
}
