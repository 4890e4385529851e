package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"attendance_dashboard/internal/infra/config"
	"attendance_dashboard/internal/infra/datasource"
	"attendance_dashboard/internal/infra/logger"
	"attendance_dashboard/internal/infra/reportapi"

	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "reportsvc: could not load application configuration: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg, os.Stdout)
	log := logger.WithService("reportsvc")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, err := datasource.Open(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Could not open data source")
	}
	defer src.Close()

	srv := &http.Server{
		Addr:              cfg.ReportListenAddr,
		Handler:           reportapi.Routes(reportapi.NewHandler(src.Directory, log)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"addr": srv.Addr, "data_source": src.Name}).Info("Report service listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.WithError(err).Error("Report service stopped")
			return
		}
	case <-ctx.Done():
	}

	log.Info("Shutting down report service...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
	log.Info("Report service shut down gracefully")
}
