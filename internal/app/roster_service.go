// internal/app/roster_service.go
package app

import (
	"context"
	"fmt"
	"sync"

	"attendance_dashboard/internal/domain/attendance"

	"github.com/sirupsen/logrus"
)

// HomeView is the payload for the home screen.
type HomeView struct {
	Roster attendance.Roster
	Counts attendance.Counts
	Class  attendance.Record
}

// RosterService keeps an in-memory snapshot of the current session's roster
// and class-wide record. The snapshot is replaced wholesale on Refresh.
type RosterService struct {
	source attendance.RosterSource
	logger *logrus.Entry

	mu     sync.RWMutex
	roster attendance.Roster
	class  attendance.Record
	loaded bool
}

func NewRosterService(source attendance.RosterSource, logger *logrus.Entry) *RosterService {
	return &RosterService{
		source: source,
		logger: logger.WithField("component", "roster_service"),
	}
}

// Refresh reloads the roster and class record from the source.
// On failure the previous snapshot is kept.
func (s *RosterService) Refresh(ctx context.Context) error {
	roster, err := s.source.LoadRoster(ctx)
	if err != nil {
		return fmt.Errorf("failed to load roster: %w", err)
	}
	class, err := s.source.ClassRecord(ctx)
	if err != nil {
		return fmt.Errorf("failed to load class record: %w", err)
	}

	s.mu.Lock()
	s.roster = roster.Clone()
	s.class = class
	s.loaded = true
	s.mu.Unlock()

	counts := roster.Counts()
	s.logger.WithFields(logrus.Fields{
		"present": counts.Present,
		"late":    counts.Late,
		"absent":  counts.Absent,
	}).Debug("Roster snapshot refreshed")
	return nil
}

// Loaded reports whether at least one Refresh has succeeded.
func (s *RosterService) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Roster returns a copy of the current roster snapshot.
func (s *RosterService) Roster() attendance.Roster {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.roster.Clone()
}

// ClassRecord returns the current class-wide record.
func (s *RosterService) ClassRecord() attendance.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.class
}

// Home builds the home screen payload from one consistent snapshot.
func (s *RosterService) Home() HomeView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return HomeView{
		Roster: s.roster.Clone(),
		Counts: s.roster.Counts(),
		Class:  s.class,
	}
}
