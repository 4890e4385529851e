// internal/infra/sample/source.go
package sample

import (
	"context"
	"database/sql"
	"time"

	"attendance_dashboard/internal/domain/attendance"
)

// ClassName labels the class-wide record of the built-in data set.
const ClassName = "Period 1 Homeroom"

// Source is an in-memory roster source and student directory. It backs the
// dashboard when no database is configured.
type Source struct {
	roster    attendance.Roster
	className string
	students  []attendance.StudentRecord
}

// NewSource builds a source from explicit data. The inputs are copied.
func NewSource(roster attendance.Roster, className string, students []attendance.StudentRecord) *Source {
	return &Source{
		roster:    roster.Clone(),
		className: className,
		students:  append([]attendance.StudentRecord(nil), students...),
	}
}

// Default returns the built-in demo data set for a session on day.
func Default(day time.Time) *Source {
	at := func(h, m int) sql.NullTime {
		return sql.NullTime{Time: time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, day.Location()), Valid: true}
	}

	roster := attendance.Roster{
		Present: []attendance.RosterEntry{
			{ID: "1", Name: "Alice Johnson", ArrivalTime: at(8, 55)},
			{ID: "2", Name: "Bob Smith", ArrivalTime: at(9, 0)},
			{ID: "3", Name: "Charlie Davis", ArrivalTime: at(9, 2)},
			{ID: "4", Name: "Diana Prince", ArrivalTime: at(9, 5)},
			{ID: "5", Name: "Evan Wright", ArrivalTime: at(9, 10)},
		},
		Late: []attendance.RosterEntry{
			{ID: "9", Name: "Justin Bell", ArrivalTime: at(9, 24)},
			{ID: "10", Name: "Justina Ortiz", ArrivalTime: at(9, 31)},
		},
		Absent: []attendance.RosterEntry{
			{ID: "6", Name: "Frank Castle"},
			{ID: "7", Name: "Grace Hopper"},
			{ID: "8", Name: "Hank Pym"},
		},
	}

	students := []attendance.StudentRecord{
		{Key: "alice", Record: attendance.Record{Name: "Alice Johnson", Present: 172, Absent: 8, Late: 5}},
		{Key: "bob", Record: attendance.Record{Name: "Bob Smith", Present: 160, Absent: 15, Late: 10}},
		{Key: "charlie", Record: attendance.Record{Name: "Charlie Kirk", Present: 150, Absent: 20, Late: 15}},
		{Key: "diana", Record: attendance.Record{Name: "Diana Prince", Present: 180, Absent: 3, Late: 2}},
		{Key: "evan", Record: attendance.Record{Name: "Evan Wright", Present: 141, Absent: 30, Late: 14}},
		{Key: "frank", Record: attendance.Record{Name: "Frank Castle", Present: 98, Absent: 70, Late: 17}},
		{Key: "grace", Record: attendance.Record{Name: "Grace Hopper", Present: 165, Absent: 12, Late: 8}},
		{Key: "hank", Record: attendance.Record{Name: "Hank Pym", Present: 120, Absent: 45, Late: 20}},
		{Key: "justin", Record: attendance.Record{Name: "Justin Bell", Present: 155, Absent: 10, Late: 20}},
		{Key: "justina", Record: attendance.Record{Name: "Justina Ortiz", Present: 149, Absent: 11, Late: 25}},
	}

	return NewSource(roster, ClassName, students)
}

func (s *Source) LoadRoster(_ context.Context) (attendance.Roster, error) {
	return s.roster.Clone(), nil
}

// ClassRecord is derived from the roster, so the two always agree.
func (s *Source) ClassRecord(_ context.Context) (attendance.Record, error) {
	return s.roster.ClassRecord(s.className), nil
}

func (s *Source) ListStudents(_ context.Context) ([]attendance.StudentRecord, error) {
	return append([]attendance.StudentRecord(nil), s.students...), nil
}
