// internal/domain/attendance/record.go
package attendance

// Record is an attendance tally: either one student's cumulative counts or the
// whole class's counts for the current session.
// Records are values; a new resolution produces a new Record.
type Record struct {
	Name    string `json:"name"`
	Present int    `json:"present"`
	Absent  int    `json:"absent"`
	Late    int    `json:"late"`
}

// Total is the number of sessions (or roster size) the record covers.
func (r Record) Total() int {
	return r.Present + r.Absent + r.Late
}

// StudentRecord pairs a short lookup key (e.g. "charlie") with that student's tally.
type StudentRecord struct {
	Key    string
	Record Record
}
