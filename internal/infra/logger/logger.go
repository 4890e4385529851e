package logger

import (
	"io"
	"os"
	"strings"

	"attendance_dashboard/internal/infra/config"

	"github.com/sirupsen/logrus"
)

// Log is shared by every binary in the module. Components log through
// entries derived from WithService.
var Log = logrus.New()

// Init applies the configured level and format. The terminal UI passes a log
// file as out so records do not paint over the screen.
func Init(cfg *config.AppConfig, out io.Writer) {
	if out == nil {
		out = os.Stdout
	}
	Log.SetOutput(out)
	Log.SetFormatter(formatterFor(cfg.Environment, out == os.Stdout))

	level, err := logrus.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = logrus.InfoLevel
		Log.WithError(err).Warnf("Unknown log level %q, using info", cfg.LogLevel)
	}
	Log.SetLevel(level)

	Log.WithFields(logrus.Fields{
		"level":       Log.GetLevel().String(),
		"environment": cfg.Environment,
	}).Debug("Logger ready")
}

// formatterFor picks JSON for deployed environments and colored text locally.
func formatterFor(environment string, tty bool) logrus.Formatter {
	switch strings.ToLower(environment) {
	case "production", "staging":
		return &logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"}
	}
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		ForceColors:     tty,
	}
}

// WithService returns an entry tagged with the running binary's name.
func WithService(name string) *logrus.Entry {
	return Log.WithField("service", name)
}
