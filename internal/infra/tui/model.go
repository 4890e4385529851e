package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"attendance_dashboard/internal/app"
	"attendance_dashboard/internal/domain/attendance"
	"attendance_dashboard/internal/domain/view"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	refreshInterval = 5 * time.Second
	arrivalLayout   = "3:04 PM"
	maxChartWidth   = 40
)

type mode int

const (
	modeBrowse mode = iota
	modeSearch
)

// Dashboard is the slice of app.DashboardService the terminal UI drives.
type Dashboard interface {
	Snapshot() view.State
	Chart() []view.Slice
	Home() app.HomeView
	Navigate(screen view.Screen) view.State
	BackToClassOverview() view.State
	IsAsync(raw string) bool
	Submit(ctx context.Context, raw string) (view.State, error)
}

// resolvedMsg carries the outcome of a Submit run off the event loop.
type resolvedMsg struct {
	st  view.State
	err error
}

// refreshMsg re-reads the dashboard so roster refreshes and session resets
// made elsewhere show up.
type refreshMsg struct{}

type Model struct {
	ctx     context.Context
	dash    Dashboard
	account app.AccountView

	st          view.State
	home        app.HomeView
	chart       []view.Slice
	mode        mode
	searchInput textinput.Model
	spinner     spinner.Model
	width       int
	height      int
	quitting    bool
}

func NewModel(ctx context.Context, dash Dashboard, account app.AccountView) Model {
	si := textinput.New()
	si.Placeholder = "student name, or \"class\""
	si.CharLimit = 100

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:         ctx,
		dash:        dash,
		account:     account,
		searchInput: si,
		spinner:     sp,
		width:       100,
		height:      30,
	}
	m.sync(dash.Snapshot())
	return m
}

func (m *Model) sync(st view.State) {
	m.st = st
	m.home = m.dash.Home()
	m.chart = m.dash.Chart()
}

func (m Model) Init() tea.Cmd {
	return refreshTick()
}

func refreshTick() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg { return refreshMsg{} })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case resolvedMsg:
		if errors.Is(msg.err, app.ErrSuperseded) {
			// Another front end or a session reset replaced this query;
			// show whatever the service holds now.
			m.sync(m.dash.Snapshot())
			return m, nil
		}
		m.sync(msg.st)
		return m, nil

	case refreshMsg:
		// While our own query is in flight the service reports loading too;
		// otherwise its snapshot wins over the local mirror.
		if st := m.dash.Snapshot(); !st.IsLoading {
			m.sync(st)
		}
		return m, refreshTick()

	case spinner.TickMsg:
		if !m.st.IsLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.mode == modeSearch {
			return m.updateSearch(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "1", "h":
		m.sync(m.dash.Navigate(view.ScreenHome))
	case "2", "a":
		m.sync(m.dash.Navigate(view.ScreenAnalytics))
	case "3", "p":
		m.sync(m.dash.Navigate(view.ScreenAccount))

	case "tab":
		m.sync(m.dash.Navigate(nextScreen(m.st.Screen)))

	case "b", "esc":
		m.sync(m.dash.BackToClassOverview())

	case "/":
		m.mode = modeSearch
		return m, m.searchInput.Focus()
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searchInput.Blur()
		m.searchInput.Reset()
		m.mode = modeBrowse
		return m, nil

	case "enter":
		raw := m.searchInput.Value()
		m.searchInput.Blur()
		m.searchInput.Reset()
		m.mode = modeBrowse
		return m.submit(raw)
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// submit runs the query in a command. The loading flag is mirrored locally
// so the spinner shows before the service reports back.
func (m Model) submit(raw string) (tea.Model, tea.Cmd) {
	async := m.dash.IsAsync(raw)
	m.st = view.Reduce(m.st, view.SubmitQuery{Raw: raw, Async: async})

	ctx, dash := m.ctx, m.dash
	run := func() tea.Msg {
		st, err := dash.Submit(ctx, raw)
		return resolvedMsg{st: st, err: err}
	}
	if async {
		return m, tea.Batch(run, m.spinner.Tick)
	}
	return m, run
}

func nextScreen(s view.Screen) view.Screen {
	switch s {
	case view.ScreenHome:
		return view.ScreenAnalytics
	case view.ScreenAnalytics:
		return view.ScreenAccount
	}
	return view.ScreenHome
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.renderTabs() + "\n")
	if m.st.Notice != nil {
		b.WriteString(noticeStyle.Render(m.st.Notice.Message) + "\n")
	}
	b.WriteString("\n")

	switch m.st.Screen {
	case view.ScreenAnalytics:
		b.WriteString(m.renderAnalytics())
	case view.ScreenAccount:
		b.WriteString(m.renderAccount())
	default:
		b.WriteString(m.renderHome())
	}
	b.WriteString("\n")

	if m.mode == modeSearch {
		b.WriteString(statusBarStyle.Render("Search: ") + m.searchInput.View())
	} else {
		b.WriteString(m.renderHelp())
	}
	return b.String()
}

func (m Model) renderTabs() string {
	tabs := []struct {
		screen view.Screen
		label  string
	}{
		{view.ScreenHome, "1 Home"},
		{view.ScreenAnalytics, "2 Analytics"},
		{view.ScreenAccount, "3 Account"},
	}
	parts := []string{titleStyle.Render("Classroom Monitor")}
	for _, t := range tabs {
		if t.screen == m.st.Screen {
			parts = append(parts, activeTabStyle.Render(t.label))
		} else {
			parts = append(parts, tabStyle.Render(t.label))
		}
	}
	return strings.Join(parts, " ")
}

func (m Model) renderHome() string {
	var b strings.Builder
	c := m.home.Counts
	b.WriteString(fmt.Sprintf("%s  %s  %s\n",
		presentStyle.Render(fmt.Sprintf("Present %d", c.Present)),
		absentStyle.Render(fmt.Sprintf("Absent %d", c.Absent)),
		lateStyle.Render(fmt.Sprintf("Late %d", c.Late)),
	))

	section := func(title string, entries []attendance.RosterEntry, detail func(attendance.RosterEntry) string) {
		b.WriteString("\n" + headerStyle.Render(title) + "\n")
		if len(entries) == 0 {
			b.WriteString(dimStyle.Render("  none") + "\n")
			return
		}
		for _, e := range entries {
			b.WriteString(fmt.Sprintf("  %s  %s\n", pad(e.Name, 24), dimStyle.Render(detail(e))))
		}
	}
	section("Present", m.home.Roster.Present, func(e attendance.RosterEntry) string {
		return "Detected: " + arrival(e)
	})
	section("Late", m.home.Roster.Late, func(e attendance.RosterEntry) string {
		return "Arrived: " + arrival(e)
	})
	section("Absent", m.home.Roster.Absent, func(attendance.RosterEntry) string {
		return "Not detected"
	})
	return b.String()
}

func arrival(e attendance.RosterEntry) string {
	if !e.ArrivalTime.Valid {
		return "unknown"
	}
	return e.ArrivalTime.Time.Format(arrivalLayout)
}

func (m Model) renderAnalytics() string {
	var b strings.Builder

	switch {
	case m.st.IsLoading:
		b.WriteString(m.spinner.View() + " Loading report…\n")
	case m.st.AnalyticsMode == view.ModeStudent && m.st.ActiveReport != nil:
		b.WriteString(headerStyle.Render("Student: "+m.st.ActiveReport.Name) + "\n")
	default:
		b.WriteString(headerStyle.Render("Class overview") + "\n")
	}
	b.WriteString("\n")

	pct := view.Percentages(m.chart)
	total := 0
	for i, sl := range m.chart {
		style := sliceStyles[i%len(sliceStyles)]
		b.WriteString(fmt.Sprintf("  %s %d (%.1f%%)\n", style.Render(pad(sl.Label+":", 9)), sl.Value, pct[i]))
		total += sl.Value
	}
	b.WriteString(fmt.Sprintf("  %s %d\n\n", pad("Total:", 9), total))

	if total == 0 {
		b.WriteString(dimStyle.Render("  No attendance recorded yet.") + "\n")
	} else {
		b.WriteString("  " + m.renderBar() + "\n")
	}
	return b.String()
}

func (m Model) renderBar() string {
	width := m.width - 4
	if width > maxChartWidth {
		width = maxChartWidth
	}
	var b strings.Builder
	for i, n := range view.Segments(m.chart, width) {
		b.WriteString(sliceStyles[i%len(sliceStyles)].Render(strings.Repeat("█", n)))
	}
	return b.String()
}

func (m Model) renderAccount() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Account") + "\n\n")
	b.WriteString("  Sign-in is not available on this dashboard.\n\n")
	b.WriteString(fmt.Sprintf("  Data source: %s\n", m.account.DataSource))
	b.WriteString(fmt.Sprintf("  Search:      %s lookup\n", m.account.Strategy))
	if m.account.ReportURL != "" {
		b.WriteString(fmt.Sprintf("  Report URL:  %s\n", m.account.ReportURL))
	}
	return b.String()
}

func (m Model) renderHelp() string {
	help := "  1-3/Tab: screens  /: search  q: quit"
	if m.st.Screen == view.ScreenAnalytics && m.st.AnalyticsMode == view.ModeStudent {
		help = "  1-3/Tab: screens  /: search  b: class overview  q: quit"
	}
	return helpStyle.Render(help)
}

func pad(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return string(runes[:width])
	}
	return s + strings.Repeat(" ", width-len(runes))
}
