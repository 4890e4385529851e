// internal/infra/telegram/announcer.go
package telegram

import (
	"fmt"
	"time"

	"attendance_dashboard/internal/domain/attendance"
	"attendance_dashboard/internal/domain/view"

	"gopkg.in/telebot.v3"
)

// SessionAnnouncer posts new-session notices to a staff chat, which may be a
// group. It satisfies scheduler.SessionAnnouncer.
type SessionAnnouncer struct {
	bot    *telebot.Bot
	chatID int64
}

func NewSessionAnnouncer(b *telebot.Bot, chatID int64) *SessionAnnouncer {
	return &SessionAnnouncer{bot: b, chatID: chatID}
}

// AnnounceSession sends the session notice with the navigation keyboard
// attached, so staff can open the live roster from it.
func (a *SessionAnnouncer) AnnounceSession(started time.Time, counts attendance.Counts) error {
	_, err := a.bot.Send(&telebot.Chat{ID: a.chatID}, SessionAnnouncement(started, counts), sendOptions(view.Initial()))
	return err
}

// SessionAnnouncement formats the new-session notice.
func SessionAnnouncement(started time.Time, counts attendance.Counts) string {
	return fmt.Sprintf(
		"🔔 New class session started at %s.\nDetected so far: %d present, %d late, %d absent.",
		started.Format(timeLayout), counts.Present, counts.Late, counts.Absent,
	)
}
