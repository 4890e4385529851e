package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"attendance_dashboard/internal/app"
	"attendance_dashboard/internal/infra/config"
	"attendance_dashboard/internal/infra/database"
	"attendance_dashboard/internal/infra/datasource"
	"attendance_dashboard/internal/infra/logger"
	"attendance_dashboard/internal/infra/reportclient"
	"attendance_dashboard/internal/infra/scheduler"
	"attendance_dashboard/internal/infra/telegram"
	"attendance_dashboard/internal/infra/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gopkg.in/telebot.v3"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "dashboard: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("could not load application configuration: %w", err)
	}

	// The terminal UI owns stdout, so logs go to a file while it runs.
	var logOut io.Writer = os.Stdout
	if !cfg.Headless {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("could not open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger.Init(cfg, logOut)
	log := logger.WithService("dashboard")
	log.WithFields(logrus.Fields{
		"environment": cfg.Environment,
		"strategy":    cfg.ResolverStrategy,
		"headless":    cfg.Headless,
	}).Info("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, err := datasource.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer src.Close()

	rosterService := app.NewRosterService(src.Roster, log)
	if err := rosterService.Refresh(ctx); err != nil {
		if !errors.Is(err, database.ErrNoSession) {
			return fmt.Errorf("could not load roster: %w", err)
		}
		log.WithError(err).Warn("No class session recorded yet, starting with an empty roster")
	}

	strategy, err := buildStrategy(ctx, cfg, src, log)
	if err != nil {
		return err
	}
	resolver := app.NewQueryResolver(rosterService, strategy, log)
	dashboard := app.NewDashboardService(resolver, rosterService, log)
	defer dashboard.Close()

	account := app.AccountView{Strategy: cfg.ResolverStrategy, DataSource: src.Name}
	if strategy.Remote() {
		account.ReportURL = cfg.ReportServiceURL
	}

	var bot *telebot.Bot
	var announcer scheduler.SessionAnnouncer
	if cfg.TelegramToken != "" {
		bot, err = telebot.NewBot(telebot.Settings{
			Token:  cfg.TelegramToken,
			Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
			OnError: func(err error, c telebot.Context) {
				entry := log.WithError(err).WithField("component", "telebot")
				if c != nil && c.Sender() != nil && c.Chat() != nil {
					entry = entry.WithField("sender_id", c.Sender().ID).WithField("chat_id", c.Chat().ID)
				}
				entry.Error("Telegram handler failed")
			},
		})
		if err != nil {
			return fmt.Errorf("could not create Telegram bot: %w", err)
		}
		telegram.RegisterDashboardHandlers(ctx, bot, dashboard, account, log)
		if cfg.TelegramChatID != 0 {
			announcer = telegram.NewSessionAnnouncer(bot, cfg.TelegramChatID)
		}
		log.Info("Telegram front end enabled")
	}

	sessionScheduler := scheduler.NewSessionScheduler(
		rosterService,
		dashboard,
		announcer,
		log,
		cfg.RosterRefreshSpec,
		cfg.SessionResetSpec,
	)
	if err := sessionScheduler.Start(); err != nil {
		return fmt.Errorf("could not start scheduler: %w", err)
	}
	defer sessionScheduler.Stop()

	g, gctx := errgroup.WithContext(ctx)

	if bot != nil {
		g.Go(func() error {
			bot.Start()
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			bot.Stop()
			return nil
		})
	}

	if !cfg.Headless {
		g.Go(func() error {
			// Leaving the UI shuts the whole process down.
			defer stop()
			p := tea.NewProgram(tui.NewModel(gctx, dashboard, account), tea.WithAltScreen(), tea.WithContext(gctx))
			if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return fmt.Errorf("terminal UI: %w", err)
			}
			return nil
		})
	} else {
		g.Go(func() error {
			<-gctx.Done()
			return nil
		})
	}

	log.Info("Application setup complete")
	err = g.Wait()
	log.Info("Shutting down application...")
	return err
}

func buildStrategy(ctx context.Context, cfg *config.AppConfig, src *datasource.Source, log *logrus.Entry) (app.StudentStrategy, error) {
	if cfg.ResolverStrategy == app.StrategyRemote {
		client := reportclient.NewClient(cfg.ReportServiceURL, &http.Client{}, log)
		return app.NewRemoteStrategy(client, cfg.RemoteTimeout), nil
	}

	students, err := src.Directory.ListStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load student directory: %w", err)
	}
	log.WithField("students", len(students)).Info("Local student directory loaded")
	return app.NewLocalStrategy(students), nil
}
