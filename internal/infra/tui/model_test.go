package tui

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"attendance_dashboard/internal/app"
	"attendance_dashboard/internal/domain/attendance"
	"attendance_dashboard/internal/domain/query"
	"attendance_dashboard/internal/domain/view"

	tea "github.com/charmbracelet/bubbletea"
)

var classRec = attendance.Record{Name: "Class", Present: 5, Absent: 3, Late: 2}

// fakeDashboard applies events with view.Reduce and answers queries from a map.
type fakeDashboard struct {
	st      view.State
	reports map[string]attendance.Record
	async   bool
	err     error
}

func newFakeDashboard() *fakeDashboard {
	return &fakeDashboard{
		st: view.Initial(),
		reports: map[string]attendance.Record{
			"char": {Name: "Charlie Kirk", Present: 150, Absent: 20, Late: 15},
		},
	}
}

func (f *fakeDashboard) Snapshot() view.State { return f.st.Clone() }
func (f *fakeDashboard) Chart() []view.Slice  { return view.Chart(f.st, classRec) }
func (f *fakeDashboard) IsAsync(string) bool  { return f.async }

func (f *fakeDashboard) Home() app.HomeView {
	at := sql.NullTime{Time: time.Date(2024, 9, 2, 9, 2, 0, 0, time.UTC), Valid: true}
	roster := attendance.Roster{
		Present: []attendance.RosterEntry{{ID: "1", Name: "Charlie Davis", ArrivalTime: at}},
		Absent:  []attendance.RosterEntry{{ID: "2", Name: "Hank Pym"}},
	}
	return app.HomeView{Roster: roster, Counts: roster.Counts(), Class: classRec}
}

func (f *fakeDashboard) Navigate(screen view.Screen) view.State {
	f.st = view.Reduce(f.st, view.NavigateTo{Screen: screen})
	return f.st.Clone()
}

func (f *fakeDashboard) BackToClassOverview() view.State {
	f.st = view.Reduce(f.st, view.BackToClassOverview{ClassRecord: classRec})
	return f.st.Clone()
}

func (f *fakeDashboard) Submit(_ context.Context, raw string) (view.State, error) {
	if f.err != nil {
		f.st = view.Reduce(f.st, view.ResolveFailed{Err: f.err})
		return f.st.Clone(), f.err
	}
	rec, ok := f.reports[raw]
	if !ok {
		err := query.NotFound(raw)
		f.st = view.Reduce(f.st, view.ResolveFailed{Err: err})
		return f.st.Clone(), err
	}
	f.st = view.Reduce(f.st, view.ResolveSucceeded{Result: query.Resolved{
		Intent: query.Intent{Kind: query.StudentLookup, Key: raw},
		Report: rec,
	}})
	return f.st.Clone(), nil
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update() returned %T, want Model", next)
	}
	return nm, cmd
}

// search types raw into the search box and presses enter.
func search(t *testing.T, m Model, raw string) (Model, tea.Cmd) {
	t.Helper()
	m, _ = send(t, m, keys("/"))
	if m.mode != modeSearch {
		t.Fatalf("mode = %v, want search", m.mode)
	}
	m, _ = send(t, m, keys(raw))
	return send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
}

func TestModel_HomeScreen(t *testing.T) {
	m := NewModel(context.Background(), newFakeDashboard(), app.AccountView{})

	out := m.View()
	for _, want := range []string{"Present 1", "Absent 1", "Late 0", "Charlie Davis", "Detected: 9:02 AM", "Not detected"} {
		if !strings.Contains(out, want) {
			t.Errorf("View() missing %q in:\n%s", want, out)
		}
	}
}

func TestModel_Navigation(t *testing.T) {
	m := NewModel(context.Background(), newFakeDashboard(), app.AccountView{Strategy: app.StrategyLocal, DataSource: "sample"})

	m, _ = send(t, m, keys("2"))
	if m.st.Screen != view.ScreenAnalytics {
		t.Fatalf("screen = %q, want analytics", m.st.Screen)
	}
	if out := m.View(); !strings.Contains(out, "Class overview") || !strings.Contains(out, "(50.0%)") {
		t.Errorf("analytics View() = \n%s", out)
	}

	m, _ = send(t, m, keys("3"))
	if out := m.View(); !strings.Contains(out, "Data source: sample") {
		t.Errorf("account View() = \n%s", out)
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.st.Screen != view.ScreenHome {
		t.Errorf("tab from account = %q, want home", m.st.Screen)
	}
}

func TestModel_SearchShowsStudent(t *testing.T) {
	m := NewModel(context.Background(), newFakeDashboard(), app.AccountView{})

	m, cmd := search(t, m, "char")
	if cmd == nil {
		t.Fatal("search returned no command")
	}
	if m.mode != modeBrowse {
		t.Errorf("mode after enter = %v, want browse", m.mode)
	}

	m, _ = send(t, m, cmd())
	if m.st.AnalyticsMode != view.ModeStudent || m.st.Screen != view.ScreenAnalytics {
		t.Fatalf("state = %+v, want student analytics", m.st)
	}
	out := m.View()
	for _, want := range []string{"Student: Charlie Kirk", "150 (81.1%)", "b: class overview"} {
		if !strings.Contains(out, want) {
			t.Errorf("View() missing %q in:\n%s", want, out)
		}
	}

	m, _ = send(t, m, keys("b"))
	if m.st.AnalyticsMode != view.ModeClass || m.st.ActiveReport == nil || *m.st.ActiveReport != classRec {
		t.Errorf("after back state = %+v, want class overview", m.st)
	}
}

func TestModel_SearchNotFoundShowsNotice(t *testing.T) {
	m := NewModel(context.Background(), newFakeDashboard(), app.AccountView{})

	m, cmd := search(t, m, "zed")
	m, _ = send(t, m, cmd())

	if m.st.Notice == nil || m.st.Notice.Kind != query.KindNotFound {
		t.Fatalf("notice = %+v, want not found", m.st.Notice)
	}
	if out := m.View(); !strings.Contains(out, `No student matches "zed".`) {
		t.Errorf("View() missing notice:\n%s", out)
	}
}

func TestModel_AsyncSearchShowsLoading(t *testing.T) {
	dash := newFakeDashboard()
	dash.async = true
	m := NewModel(context.Background(), dash, app.AccountView{})
	m, _ = send(t, m, keys("2"))

	m, cmd := search(t, m, "char")
	if cmd == nil {
		t.Fatal("search returned no command")
	}
	if !m.st.IsLoading {
		t.Fatal("IsLoading = false after async submit")
	}
	if out := m.View(); !strings.Contains(out, "Loading report") {
		t.Errorf("View() missing loading indicator:\n%s", out)
	}

	m, _ = send(t, m, resolvedMsg{st: dash.Snapshot()})
	if m.st.IsLoading {
		t.Error("IsLoading still set after result")
	}
}

func TestModel_SupersededResultShowsServiceState(t *testing.T) {
	m := NewModel(context.Background(), newFakeDashboard(), app.AccountView{})
	m, _ = send(t, m, keys("3"))

	stale := view.Reduce(view.Initial(), view.ResolveSucceeded{Result: query.Resolved{
		Intent: query.Intent{Kind: query.StudentLookup, Key: "x"},
		Report: attendance.Record{Name: "Old"},
	}})
	m, _ = send(t, m, resolvedMsg{st: stale, err: app.ErrSuperseded})

	if m.st.Screen != view.ScreenAccount {
		t.Errorf("screen = %q, want account unchanged", m.st.Screen)
	}
	if m.st.ActiveReport != nil {
		t.Errorf("ActiveReport = %+v, want the superseded report discarded", m.st.ActiveReport)
	}
}

// A remote query replaced elsewhere (another chat, a session reset) must not
// leave the spinner running.
func TestModel_SupersededAsyncSearchClearsLoading(t *testing.T) {
	dash := newFakeDashboard()
	dash.async = true
	m := NewModel(context.Background(), dash, app.AccountView{})
	m, _ = send(t, m, keys("2"))

	m, _ = search(t, m, "char")
	if !m.st.IsLoading {
		t.Fatal("IsLoading = false after async submit")
	}

	m, _ = send(t, m, resolvedMsg{st: m.st, err: app.ErrSuperseded})

	if m.st.IsLoading {
		t.Error("IsLoading still set after the query was superseded")
	}
	if out := m.View(); strings.Contains(out, "Loading report") {
		t.Errorf("View() still shows loading:\n%s", out)
	}
}

func TestModel_RefreshClearsStaleLoading(t *testing.T) {
	dash := newFakeDashboard()
	dash.async = true
	m := NewModel(context.Background(), dash, app.AccountView{})
	m, _ = send(t, m, keys("2"))
	m, _ = search(t, m, "char")

	m, cmd := send(t, m, refreshMsg{})

	if cmd == nil {
		t.Error("refresh did not schedule the next tick")
	}
	if m.st.IsLoading {
		t.Error("IsLoading still set after refresh while the service is idle")
	}
	if out := m.View(); strings.Contains(out, "Loading report") {
		t.Errorf("View() still shows loading:\n%s", out)
	}
}

func TestModel_RefreshKeepsLoadingWhileServiceLoads(t *testing.T) {
	dash := newFakeDashboard()
	dash.async = true
	m := NewModel(context.Background(), dash, app.AccountView{})
	m, _ = send(t, m, keys("2"))
	m, _ = search(t, m, "char")
	dash.st = view.Reduce(dash.st, view.SubmitQuery{Raw: "char", Async: true})

	m, _ = send(t, m, refreshMsg{})

	if !m.st.IsLoading {
		t.Error("IsLoading cleared while the service is still loading")
	}
}

func TestModel_EscCancelsSearch(t *testing.T) {
	dash := newFakeDashboard()
	m := NewModel(context.Background(), dash, app.AccountView{})

	m, _ = send(t, m, keys("/"))
	m, _ = send(t, m, keys("char"))
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	if cmd != nil || m.mode != modeBrowse || m.searchInput.Value() != "" {
		t.Errorf("esc left mode %v, input %q, cmd %v", m.mode, m.searchInput.Value(), cmd)
	}
	if dash.st.ActiveReport != nil {
		t.Error("esc submitted the query")
	}
}

func TestModel_Quit(t *testing.T) {
	m := NewModel(context.Background(), newFakeDashboard(), app.AccountView{})

	m, cmd := send(t, m, keys("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
	if m.View() != "" {
		t.Error("View() after quit should be empty")
	}
}
