// internal/domain/view/state.go
package view

import (
	"attendance_dashboard/internal/domain/attendance"
	"attendance_dashboard/internal/domain/query"
)

// Screen is the top-level page shown by the dashboard.
type Screen string

const (
	ScreenHome      Screen = "home"
	ScreenAnalytics Screen = "analytics"
	ScreenAccount   Screen = "account"
)

// Valid reports whether s is a navigable screen.
func (s Screen) Valid() bool {
	switch s {
	case ScreenHome, ScreenAnalytics, ScreenAccount:
		return true
	}
	return false
}

// Mode is the analytics sub-mode.
type Mode string

const (
	ModeClass   Mode = "class"
	ModeStudent Mode = "student"
)

// Notice is a transient message about a failed resolution.
// It is cleared by the next applied event.
type Notice struct {
	Kind    query.ErrorKind
	Message string
}

// State is the dashboard's view state. It is only changed through Reduce.
type State struct {
	Screen        Screen
	AnalyticsMode Mode
	ActiveReport  *attendance.Record // nil until a query resolves
	IsLoading     bool
	Notice        *Notice
}

// Initial is the state at session start.
func Initial() State {
	return State{
		Screen:        ScreenHome,
		AnalyticsMode: ModeClass,
	}
}

// Clone returns a copy that shares no pointers with s.
func (s State) Clone() State {
	out := s
	if s.ActiveReport != nil {
		r := *s.ActiveReport
		out.ActiveReport = &r
	}
	if s.Notice != nil {
		n := *s.Notice
		out.Notice = &n
	}
	return out
}
