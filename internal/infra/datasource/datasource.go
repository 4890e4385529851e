// internal/infra/datasource/datasource.go
package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"attendance_dashboard/internal/domain/attendance"
	"attendance_dashboard/internal/infra/config"
	idb "attendance_dashboard/internal/infra/database"
	"attendance_dashboard/internal/infra/sample"

	"github.com/sirupsen/logrus"
)

const (
	NameSample   = "sample"
	NamePostgres = "postgres"
)

// Source bundles the roster source and student directory behind one backend.
type Source struct {
	Name      string
	Roster    attendance.RosterSource
	Directory attendance.StudentDirectory

	db *sql.DB
}

// Open picks the backend from cfg: the built-in sample data when no database
// is configured, PostgreSQL otherwise.
func Open(ctx context.Context, cfg *config.AppConfig, logger *logrus.Entry) (*Source, error) {
	if cfg.UsesSampleData() {
		logger.Info("DATABASE_URL not set, using the built-in sample data set")
		src := sample.Default(time.Now())
		return &Source{Name: NameSample, Roster: src, Directory: src}, nil
	}

	db, err := idb.NewPostgresConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}
	logger.Info("Database connection established successfully")

	repo := idb.NewPostgresRosterRepository(db)
	return &Source{Name: NamePostgres, Roster: repo, Directory: repo, db: db}, nil
}

// Close releases the database connection, if any.
func (s *Source) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
