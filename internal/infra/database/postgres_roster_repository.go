package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"attendance_dashboard/internal/domain/attendance"
)

// ErrNoSession is returned before the first class session has been recorded.
var ErrNoSession = fmt.Errorf("no class session found")

// PostgresRosterRepository reads the latest class session and the student
// directory. It implements attendance.RosterSource and attendance.StudentDirectory.
type PostgresRosterRepository struct {
	db *sql.DB
}

func NewPostgresRosterRepository(db *sql.DB) *PostgresRosterRepository {
	return &PostgresRosterRepository{db: db}
}

// currentSession selects the id of the most recently started session.
const currentSession = `(SELECT id FROM class_sessions ORDER BY started_at DESC, id DESC LIMIT 1)`

func (r *PostgresRosterRepository) LoadRoster(ctx context.Context) (attendance.Roster, error) {
	query := `SELECT s.id, s.full_name, sa.status, sa.arrival_time
               FROM session_attendance sa
               JOIN students s ON s.id = sa.student_id
               WHERE sa.session_id = ` + currentSession + `
               ORDER BY sa.arrival_time NULLS LAST, s.full_name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return attendance.Roster{}, fmt.Errorf("error loading roster: %w", err)
	}
	defer rows.Close()

	var roster attendance.Roster
	for rows.Next() {
		var (
			id     int64
			e      attendance.RosterEntry
			status string
		)
		if err := rows.Scan(&id, &e.Name, &status, &e.ArrivalTime); err != nil {
			return attendance.Roster{}, fmt.Errorf("error scanning roster entry: %w", err)
		}
		e.ID = strconv.FormatInt(id, 10)
		if !roster.Add(attendance.Status(status), e) {
			return attendance.Roster{}, fmt.Errorf("unknown attendance status %q for student %s", status, e.ID)
		}
	}
	if err = rows.Err(); err != nil {
		return attendance.Roster{}, fmt.Errorf("error iterating roster: %w", err)
	}
	return roster, nil
}

func (r *PostgresRosterRepository) ClassRecord(ctx context.Context) (attendance.Record, error) {
	query := `SELECT cs.title,
                      COUNT(sa.student_id) FILTER (WHERE sa.status = 'present'),
                      COUNT(sa.student_id) FILTER (WHERE sa.status = 'absent'),
                      COUNT(sa.student_id) FILTER (WHERE sa.status = 'late')
               FROM class_sessions cs
               LEFT JOIN session_attendance sa ON sa.session_id = cs.id
               WHERE cs.id = ` + currentSession + `
               GROUP BY cs.id, cs.title`

	var rec attendance.Record
	err := r.db.QueryRowContext(ctx, query).Scan(&rec.Name, &rec.Present, &rec.Absent, &rec.Late)
	if err != nil {
		if err == sql.ErrNoRows {
			return attendance.Record{}, ErrNoSession
		}
		return attendance.Record{}, fmt.Errorf("error loading class record: %w", err)
	}
	return rec, nil
}

func (r *PostgresRosterRepository) ListStudents(ctx context.Context) ([]attendance.StudentRecord, error) {
	query := `SELECT lookup_key, full_name, present_count, absent_count, late_count
               FROM students ORDER BY sort_order, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing students: %w", err)
	}
	defer rows.Close()

	students := make([]attendance.StudentRecord, 0)
	for rows.Next() {
		var st attendance.StudentRecord
		if err := rows.Scan(&st.Key, &st.Record.Name, &st.Record.Present, &st.Record.Absent, &st.Record.Late); err != nil {
			return nil, fmt.Errorf("error scanning student: %w", err)
		}
		students = append(students, st)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating students: %w", err)
	}
	return students, nil
}
