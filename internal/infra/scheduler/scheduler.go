package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"attendance_dashboard/internal/domain/attendance"
	"attendance_dashboard/internal/infra/database"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// RosterRefresher reloads the roster snapshot from its source.
type RosterRefresher interface {
	Refresh(ctx context.Context) error
	Roster() attendance.Roster
}

// SessionResetter returns the view state to its session-start value.
type SessionResetter interface {
	Reset()
}

// SessionAnnouncer tells staff that a new class session has started.
type SessionAnnouncer interface {
	AnnounceSession(started time.Time, counts attendance.Counts) error
}

type SessionScheduler struct {
	cronEngine        *cron.Cron
	roster            RosterRefresher
	dashboard         SessionResetter
	announcer         SessionAnnouncer // Optional
	logger            *logrus.Entry
	rosterRefreshSpec string
	sessionResetSpec  string
}

func NewSessionScheduler(
	roster RosterRefresher,
	dashboard SessionResetter,
	announcer SessionAnnouncer, // nil disables session announcements
	logger *logrus.Entry,
	rosterRefreshSpec string,
	sessionResetSpec string,
) *SessionScheduler {
	return &SessionScheduler{
		cronEngine:        cron.New(cron.WithLocation(time.Local)), // sessions follow the school's wall clock
		roster:            roster,
		dashboard:         dashboard,
		announcer:         announcer,
		logger:            logger.WithField("component", "scheduler"),
		rosterRefreshSpec: rosterRefreshSpec,
		sessionResetSpec:  sessionResetSpec,
	}
}

// Start registers the jobs and starts the cron engine.
func (s *SessionScheduler) Start() error {
	s.logger.Info("Starting session scheduler...")

	// Detections keep arriving during a session.
	_, err := s.cronEngine.AddFunc(s.rosterRefreshSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.RefreshRoster(ctx); err != nil {
			s.logRefreshError(err)
		}
	})
	if err != nil {
		return fmt.Errorf("could not add roster refresh job %q: %w", s.rosterRefreshSpec, err)
	}

	_, err = s.cronEngine.AddFunc(s.sessionResetSpec, func() {
		s.logger.Info("Session reset job triggered")
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		if err := s.StartNewSession(ctx); err != nil {
			s.logger.WithError(err).Error("New session start failed")
		}
	})
	if err != nil {
		return fmt.Errorf("could not add session reset job %q: %w", s.sessionResetSpec, err)
	}

	s.cronEngine.Start()
	s.logger.WithFields(logrus.Fields{
		"roster_refresh": s.rosterRefreshSpec,
		"session_reset":  s.sessionResetSpec,
	}).Info("Session scheduler started with jobs.")
	return nil
}

// RefreshRoster runs the roster refresh job once.
func (s *SessionScheduler) RefreshRoster(ctx context.Context) error {
	if err := s.roster.Refresh(ctx); err != nil {
		return err
	}
	s.logger.Debug("Roster refreshed.")
	return nil
}

// StartNewSession reloads the roster, resets the view state, and announces
// the session when an announcer is configured. The view state is reset even if
// the reload fails, so no result from the previous session survives.
func (s *SessionScheduler) StartNewSession(ctx context.Context) error {
	refreshErr := s.roster.Refresh(ctx)
	s.dashboard.Reset()

	if refreshErr != nil {
		return fmt.Errorf("roster reload for new session: %w", refreshErr)
	}

	if s.announcer != nil {
		if err := s.announcer.AnnounceSession(time.Now(), s.roster.Roster().Counts()); err != nil {
			s.logger.WithError(err).Warn("Failed to announce new session")
		}
	}
	s.logger.Info("New session started.")
	return nil
}

// logRefreshError keeps a missing session (nothing recorded yet today) out of
// the error log.
func (s *SessionScheduler) logRefreshError(err error) {
	if errors.Is(err, database.ErrNoSession) {
		s.logger.WithError(err).Debug("Roster refresh skipped, no class session yet")
		return
	}
	s.logger.WithError(err).Error("Roster refresh failed")
}

func (s *SessionScheduler) Stop() {
	s.logger.Info("Stopping session scheduler...")
	ctx := s.cronEngine.Stop()
	<-ctx.Done() // running jobs finished
	s.logger.Info("Session scheduler gracefully stopped.")
}
