// internal/domain/attendance/repository.go
package attendance

import "context"

// RosterSource supplies the current session's roster and class-wide tally.
// Implementations are read-only from the dashboard's point of view.
type RosterSource interface {
	LoadRoster(ctx context.Context) (Roster, error)
	ClassRecord(ctx context.Context) (Record, error)
}

// StudentDirectory lists per-student cumulative tallies in lookup order.
// The order is significant: it is the tie-break order for key matching.
type StudentDirectory interface {
	ListStudents(ctx context.Context) ([]StudentRecord, error)
}
