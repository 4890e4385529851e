// internal/domain/view/reduce.go
package view

import (
	"errors"
	"fmt"

	"attendance_dashboard/internal/domain/attendance"
	"attendance_dashboard/internal/domain/query"
)

// Event is one of the five inbound dashboard events.
type Event interface {
	isEvent()
}

// NavigateTo switches the top-level screen.
type NavigateTo struct {
	Screen Screen
}

// SubmitQuery marks the start of a resolution. Async is true only when the
// query goes to the remote report service.
type SubmitQuery struct {
	Raw   string
	Async bool
}

// ResolveSucceeded carries a resolved query.
type ResolveSucceeded struct {
	Result query.Resolved
}

// ResolveFailed carries the resolver's error.
type ResolveFailed struct {
	Err error
}

// BackToClassOverview leaves student mode. ClassRecord is the current
// class-wide tally, which becomes the active report.
type BackToClassOverview struct {
	ClassRecord attendance.Record
}

func (NavigateTo) isEvent()          {}
func (SubmitQuery) isEvent()         {}
func (ResolveSucceeded) isEvent()    {}
func (ResolveFailed) isEvent()       {}
func (BackToClassOverview) isEvent() {}

// Reduce applies e to s and returns the next state. s is never modified.
// Events whose guard fails return s unchanged.
func Reduce(s State, e Event) State {
	switch ev := e.(type) {
	case NavigateTo:
		if !ev.Screen.Valid() {
			return s
		}
		next := transient(s)
		next.Screen = ev.Screen
		return next

	case SubmitQuery:
		next := transient(s)
		next.IsLoading = ev.Async
		return next

	case ResolveSucceeded:
		next := transient(s)
		report := ev.Result.Report
		next.ActiveReport = &report
		if ev.Result.Intent.Kind == query.ClassSummary {
			next.AnalyticsMode = ModeClass
		} else {
			next.AnalyticsMode = ModeStudent
		}
		next.Screen = ScreenAnalytics
		next.IsLoading = false
		return next

	case ResolveFailed:
		next := transient(s)
		next.IsLoading = false
		next.Notice = NoticeFor(ev.Err)
		return next

	case BackToClassOverview:
		if s.AnalyticsMode != ModeStudent {
			return s
		}
		next := transient(s)
		next.AnalyticsMode = ModeClass
		report := ev.ClassRecord
		next.ActiveReport = &report
		return next
	}
	return s
}

// transient copies s and drops the notice left by a previous failure.
func transient(s State) State {
	next := s.Clone()
	next.Notice = nil
	return next
}

// NoticeFor describes a resolution failure for display.
func NoticeFor(err error) *Notice {
	kind := query.KindOf(err)
	var q string
	var re *query.ResolveError
	if errors.As(err, &re) {
		q = re.Query
	}

	var msg string
	switch kind {
	case query.KindNotFound:
		msg = fmt.Sprintf("No student matches %q.", q)
	case query.KindInvalidQuery:
		msg = fmt.Sprintf("%q is not a valid search.", q)
	default:
		msg = "The report service is unavailable. Try again shortly."
	}
	return &Notice{Kind: kind, Message: msg}
}
