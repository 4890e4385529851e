// internal/domain/attendance/roster.go
package attendance

import (
	"database/sql"
)

// Status is a student's detection status for the current session.
type Status string

const (
	StatusPresent Status = "present"
	StatusLate    Status = "late"
	StatusAbsent  Status = "absent"
)

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusLate, StatusAbsent:
		return true
	}
	return false
}

// RosterEntry is one student's status for the current session.
type RosterEntry struct {
	ID          string
	Name        string
	ArrivalTime sql.NullTime // Not set for absent students
}

// Roster is the current session split into three disjoint, ordered sets.
type Roster struct {
	Present []RosterEntry
	Late    []RosterEntry
	Absent  []RosterEntry
}

// Counts holds the size of each roster set.
type Counts struct {
	Present int
	Late    int
	Absent  int
}

// Counts returns the number of entries in each set.
func (r Roster) Counts() Counts {
	return Counts{
		Present: len(r.Present),
		Late:    len(r.Late),
		Absent:  len(r.Absent),
	}
}

// Size is the full roster size.
func (r Roster) Size() int {
	return len(r.Present) + len(r.Late) + len(r.Absent)
}

// Add appends e to the set for status. Unknown statuses are ignored and reported as false.
func (r *Roster) Add(status Status, e RosterEntry) bool {
	switch status {
	case StatusPresent:
		r.Present = append(r.Present, e)
	case StatusLate:
		r.Late = append(r.Late, e)
	case StatusAbsent:
		r.Absent = append(r.Absent, e)
	default:
		return false
	}
	return true
}

// Clone returns a deep copy so callers cannot mutate a shared snapshot.
func (r Roster) Clone() Roster {
	return Roster{
		Present: append([]RosterEntry(nil), r.Present...),
		Late:    append([]RosterEntry(nil), r.Late...),
		Absent:  append([]RosterEntry(nil), r.Absent...),
	}
}

// ClassRecord derives the class-wide tally for this roster under the given name.
func (r Roster) ClassRecord(name string) Record {
	c := r.Counts()
	return Record{Name: name, Present: c.Present, Absent: c.Absent, Late: c.Late}
}
