// internal/infra/telegram/dashboard_handlers.go
package telegram

import (
	"context"
	"errors"
	"strings"

	"attendance_dashboard/internal/app"
	"attendance_dashboard/internal/domain/view"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// navUnique is the callback id shared by the screen navigation buttons.
const navUnique = "nav"

const backPayload = "back"

const helpText = "Classroom Monitor commands:\n\n" +
	"/home - today's roster\n" +
	"/analytics - attendance chart\n" +
	"/account - dashboard settings\n" +
	"/search <name> - look up a student (or \"class\")\n" +
	"/back - return to the class overview\n\n" +
	"Any other text is treated as a search."

// Dashboard is the slice of app.DashboardService the bot drives.
type Dashboard interface {
	Chart() []view.Slice
	Home() app.HomeView
	Navigate(screen view.Screen) view.State
	BackToClassOverview() view.State
	IsAsync(raw string) bool
	Submit(ctx context.Context, raw string) (view.State, error)
}

// RegisterDashboardHandlers wires bot commands, free-text search and the
// navigation keyboard to the dashboard.
func RegisterDashboardHandlers(ctx context.Context, b *telebot.Bot, dash Dashboard, account app.AccountView, baseLogger *logrus.Entry) {
	h := &dashboardHandlers{ctx: ctx, dash: dash, account: account, logger: baseLogger.WithField("handler_group", "dashboard")}

	b.Handle("/start", h.onStart)
	b.Handle("/help", func(c telebot.Context) error {
		return c.Send(helpText)
	})
	b.Handle("/home", h.navigate(view.ScreenHome))
	b.Handle("/analytics", h.navigate(view.ScreenAnalytics))
	b.Handle("/account", h.navigate(view.ScreenAccount))
	b.Handle("/back", h.onBack)
	b.Handle("/search", func(c telebot.Context) error {
		raw := strings.Join(c.Args(), " ")
		return h.search(c, raw)
	})
	b.Handle(telebot.OnText, func(c telebot.Context) error {
		return h.search(c, c.Text())
	})
	b.Handle(&telebot.Btn{Unique: navUnique}, h.onNavButton)
}

type dashboardHandlers struct {
	ctx     context.Context
	dash    Dashboard
	account app.AccountView
	logger  *logrus.Entry
}

func (h *dashboardHandlers) onStart(c telebot.Context) error {
	h.logCtx(c, "/start").Info("Processing /start command")
	st := h.dash.Navigate(view.ScreenHome)
	return c.Send(h.render(st), sendOptions(st))
}

func (h *dashboardHandlers) navigate(screen view.Screen) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		h.logCtx(c, "/"+string(screen)).Debug("Navigating")
		st := h.dash.Navigate(screen)
		return c.Send(h.render(st), sendOptions(st))
	}
}

func (h *dashboardHandlers) onBack(c telebot.Context) error {
	st := h.dash.BackToClassOverview()
	return c.Send(h.render(st), sendOptions(st))
}

func (h *dashboardHandlers) onNavButton(c telebot.Context) error {
	payload := c.Callback().Data
	logCtx := h.logCtx(c, "nav_button").WithField("payload", payload)

	var st view.State
	switch {
	case payload == backPayload:
		st = h.dash.BackToClassOverview()
	case view.Screen(payload).Valid():
		st = h.dash.Navigate(view.Screen(payload))
	default:
		logCtx.Warn("Unknown navigation payload")
		return c.Respond(&telebot.CallbackResponse{Text: "Unknown action."})
	}

	if err := c.Edit(h.render(st), sendOptions(st)); err != nil {
		// Telegram rejects edits that leave the message unchanged.
		logCtx.WithError(err).Debug("Dashboard message not edited")
	}
	return c.Respond()
}

// search submits raw. Remote lookups first post a loading message, which is
// edited in place once the result arrives.
func (h *dashboardHandlers) search(c telebot.Context, raw string) error {
	logCtx := h.logCtx(c, "search").WithField("query", raw)
	logCtx.Info("Search received")

	var pending *telebot.Message
	if h.dash.IsAsync(raw) {
		msg, err := c.Bot().Send(c.Recipient(), "🔎 Loading report…")
		if err != nil {
			logCtx.WithError(err).Warn("Failed to send loading message")
		}
		pending = msg
	}

	st, err := h.dash.Submit(h.ctx, raw)
	if errors.Is(err, app.ErrSuperseded) {
		logCtx.Info("Search superseded by a newer one")
		if pending != nil {
			_, _ = c.Bot().Edit(pending, "Search replaced by a newer one.")
		}
		return nil
	}
	if err != nil {
		logCtx.WithError(err).Info("Search failed")
	}

	text := h.render(st)
	if pending != nil {
		if _, err := c.Bot().Edit(pending, text, sendOptions(st)); err == nil {
			return nil
		}
		logCtx.Warn("Failed to edit loading message, sending a new one")
	}
	return c.Send(text, sendOptions(st))
}

func (h *dashboardHandlers) render(st view.State) string {
	return RenderState(st, h.dash.Chart(), h.dash.Home(), h.account)
}

func (h *dashboardHandlers) logCtx(c telebot.Context, handler string) *logrus.Entry {
	fields := logrus.Fields{"handler": handler}
	if c.Sender() != nil {
		fields["sender_id"] = c.Sender().ID
	}
	return h.logger.WithFields(fields)
}

func sendOptions(st view.State) *telebot.SendOptions {
	return &telebot.SendOptions{ReplyMarkup: navKeyboard(st)}
}

// navKeyboard builds the inline screen switcher. The current screen is
// marked, and a Back button is added in student mode.
func navKeyboard(st view.State) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	screens := []struct {
		screen view.Screen
		label  string
	}{
		{view.ScreenHome, "Home"},
		{view.ScreenAnalytics, "Analytics"},
		{view.ScreenAccount, "Account"},
	}

	var row telebot.Row
	for _, s := range screens {
		label := s.label
		if st.Screen == s.screen {
			label = "• " + label
		}
		row = append(row, markup.Data(label, navUnique, string(s.screen)))
	}
	rows := []telebot.Row{row}
	if st.Screen == view.ScreenAnalytics && st.AnalyticsMode == view.ModeStudent {
		rows = append(rows, markup.Row(markup.Data("« Class overview", navUnique, backPayload)))
	}
	markup.Inline(rows...)
	return markup
}
