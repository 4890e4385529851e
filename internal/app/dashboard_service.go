// internal/app/dashboard_service.go
package app

import (
	"context"
	"errors"
	"sync"

	"attendance_dashboard/internal/domain/view"

	"github.com/sirupsen/logrus"
)

// ErrSuperseded is returned by Submit when a newer submission (or a session
// reset) replaced the query before it resolved. Its result was discarded.
var ErrSuperseded = errors.New("query superseded by a newer submission")

// RosterProvider is the read side of RosterService used by the dashboard.
type RosterProvider interface {
	ClassRecordProvider
	Home() HomeView
}

// DashboardService owns the view state. Every change goes through view.Reduce;
// presentation layers read copies via Snapshot.
type DashboardService struct {
	resolver *QueryResolver
	roster   RosterProvider
	logger   *logrus.Entry

	mu     sync.Mutex
	state  view.State
	seq    uint64             // Latest issued submission
	cancel context.CancelFunc // Cancels the in-flight remote request, if any
}

func NewDashboardService(resolver *QueryResolver, roster RosterProvider, logger *logrus.Entry) *DashboardService {
	return &DashboardService{
		resolver: resolver,
		roster:   roster,
		logger:   logger.WithField("component", "dashboard_service"),
		state:    view.Initial(),
	}
}

// Snapshot returns a copy of the current view state.
func (s *DashboardService) Snapshot() view.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Chart derives the donut chart segments from the current state.
func (s *DashboardService) Chart() []view.Slice {
	s.mu.Lock()
	st := s.state.Clone()
	s.mu.Unlock()
	return view.Chart(st, s.roster.ClassRecord())
}

// Home returns the home screen payload.
func (s *DashboardService) Home() HomeView {
	return s.roster.Home()
}

// IsAsync reports whether submitting raw will wait on the report service.
func (s *DashboardService) IsAsync(raw string) bool {
	return s.resolver.IsAsync(raw)
}

// Navigate applies NavigateTo. Unknown screens leave the state unchanged.
func (s *DashboardService) Navigate(screen view.Screen) view.State {
	return s.apply(view.NavigateTo{Screen: screen})
}

// BackToClassOverview leaves student mode; it is a no-op in class mode.
func (s *DashboardService) BackToClassOverview() view.State {
	return s.apply(view.BackToClassOverview{ClassRecord: s.roster.ClassRecord()})
}

// Submit resolves raw and applies the outcome. It blocks until the resolver
// returns, so presentation layers call it off their event loop.
//
// A newer Submit (or Reset) cancels the in-flight request and bumps the
// sequence number; the older call then returns ErrSuperseded without touching
// the state. Resolution failures are applied as ResolveFailed and returned.
func (s *DashboardService) Submit(ctx context.Context, raw string) (view.State, error) {
	async := s.resolver.IsAsync(raw)

	s.mu.Lock()
	s.seq++
	seq := s.seq
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	reqCtx, cancel := context.WithCancel(ctx)
	if async {
		s.cancel = cancel
	}
	s.state = view.Reduce(s.state, view.SubmitQuery{Raw: raw, Async: async})
	s.mu.Unlock()
	defer cancel()

	logCtx := s.logger.WithFields(logrus.Fields{"seq": seq, "async": async})
	logCtx.Debug("Query submitted")

	res, err := s.resolver.Resolve(reqCtx, raw)

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.seq {
		logCtx.WithField("latest_seq", s.seq).Info("Discarding stale query result")
		return s.state.Clone(), ErrSuperseded
	}
	s.cancel = nil

	if err != nil {
		s.state = view.Reduce(s.state, view.ResolveFailed{Err: err})
		return s.state.Clone(), err
	}
	s.state = view.Reduce(s.state, view.ResolveSucceeded{Result: res})
	logCtx.WithField("mode", s.state.AnalyticsMode).Debug("Query applied")
	return s.state.Clone(), nil
}

// Reset starts a new session: pending results are invalidated and the state
// returns to its initial value.
func (s *DashboardService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidateLocked()
	s.state = view.Initial()
	s.logger.Info("View state reset for new session")
}

// Close invalidates any in-flight request. The state is kept for a final render.
func (s *DashboardService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidateLocked()
}

func (s *DashboardService) invalidateLocked() {
	s.seq++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *DashboardService) apply(e view.Event) view.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = view.Reduce(s.state, e)
	return s.state.Clone()
}
