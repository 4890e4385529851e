// internal/infra/telegram/render.go
package telegram

import (
	"fmt"
	"strings"

	"attendance_dashboard/internal/app"
	"attendance_dashboard/internal/domain/attendance"
	"attendance_dashboard/internal/domain/view"
)

const (
	chartCells  = 12
	timeLayout  = "03:04 PM"
	maxListRows = 25
)

// One square per chart cell, in Present/Absent/Late order.
var chartGlyphs = []string{"🟩", "🟥", "🟨"}

// RenderHome formats the home screen: counters plus the three roster lists.
func RenderHome(home app.HomeView) string {
	var b strings.Builder
	b.WriteString("Classroom Monitor\n\n")
	fmt.Fprintf(&b, "✅ Present: %d\n", home.Counts.Present)
	fmt.Fprintf(&b, "❌ Absent: %d\n", home.Counts.Absent)
	fmt.Fprintf(&b, "⏰ Late: %d\n", home.Counts.Late)

	writeList(&b, "Present", home.Roster.Present, func(e attendance.RosterEntry) string {
		return "Detected: " + arrival(e)
	})
	writeList(&b, "Late", home.Roster.Late, func(e attendance.RosterEntry) string {
		return "Arrived: " + arrival(e)
	})
	writeList(&b, "Absent", home.Roster.Absent, func(attendance.RosterEntry) string {
		return "Not detected"
	})
	return strings.TrimRight(b.String(), "\n")
}

func writeList(b *strings.Builder, title string, entries []attendance.RosterEntry, detail func(attendance.RosterEntry) string) {
	if len(entries) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s\n", title)
	for i, e := range entries {
		if i == maxListRows {
			fmt.Fprintf(b, "  … and %d more\n", len(entries)-maxListRows)
			break
		}
		fmt.Fprintf(b, "  • %s (%s)\n", e.Name, detail(e))
	}
}

func arrival(e attendance.RosterEntry) string {
	if !e.ArrivalTime.Valid {
		return "unknown"
	}
	return e.ArrivalTime.Time.Format(timeLayout)
}

// RenderAnalytics formats the statistics list and chart for the current state.
func RenderAnalytics(st view.State, chart []view.Slice) string {
	var b strings.Builder
	b.WriteString("Attendance Analytics\n")

	switch {
	case st.IsLoading:
		b.WriteString("Loading report…\n")
	case st.AnalyticsMode == view.ModeStudent && st.ActiveReport != nil:
		fmt.Fprintf(&b, "Student: %s\n", st.ActiveReport.Name)
	default:
		b.WriteString("Class overview\n")
	}
	b.WriteString("\n")

	pct := view.Percentages(chart)
	total := 0
	for i, sl := range chart {
		fmt.Fprintf(&b, "%s %s: %d (%.1f%%)\n", chartGlyphs[i%len(chartGlyphs)], sl.Label, sl.Value, pct[i])
		total += sl.Value
	}
	fmt.Fprintf(&b, "Total: %d\n\n", total)

	cells := view.Segments(chart, chartCells)
	for i, n := range cells {
		b.WriteString(strings.Repeat(chartGlyphs[i%len(chartGlyphs)], n))
	}
	if total == 0 {
		b.WriteString("No attendance recorded yet.")
	}

	if st.AnalyticsMode == view.ModeStudent {
		b.WriteString("\n\n/back returns to the class overview.")
	}
	return b.String()
}

// RenderAccount formats the account screen.
func RenderAccount(acct app.AccountView) string {
	var b strings.Builder
	b.WriteString("Account\n\n")
	b.WriteString("Sign-in is not available on this dashboard.\n")
	fmt.Fprintf(&b, "Data source: %s\n", acct.DataSource)
	fmt.Fprintf(&b, "Search: %s lookup", acct.Strategy)
	if acct.ReportURL != "" {
		fmt.Fprintf(&b, " via %s", acct.ReportURL)
	}
	return b.String()
}

// RenderState formats whichever screen st is on, prefixed by any notice.
func RenderState(st view.State, chart []view.Slice, home app.HomeView, acct app.AccountView) string {
	var body string
	switch st.Screen {
	case view.ScreenAnalytics:
		body = RenderAnalytics(st, chart)
	case view.ScreenAccount:
		body = RenderAccount(acct)
	default:
		body = RenderHome(home)
	}
	if st.Notice != nil {
		return "⚠️ " + st.Notice.Message + "\n\n" + body
	}
	return body
}
