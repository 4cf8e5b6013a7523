package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/giygas/pharmacy-api/config"
	"github.com/giygas/pharmacy-api/console"
	"github.com/giygas/pharmacy-api/data"
	"github.com/giygas/pharmacy-api/handlers"
	"github.com/giygas/pharmacy-api/health"
	"github.com/giygas/pharmacy-api/logging"
	"github.com/giygas/pharmacy-api/scheduler"
	"github.com/giygas/pharmacy-api/server"
	"github.com/giygas/pharmacy-api/storage"
	"github.com/giygas/pharmacy-api/validation"
	"github.com/joho/godotenv"
)

// application wires the pharmacy session to its front ends
type application struct {
	cfg       *config.Config
	store     *data.Pharmacy
	scheduler *scheduler.Scheduler
	server    *server.Server
}

// newApplication loads the inventory from cfg.DataFile and builds every component
func newApplication(cfg *config.Config) (*application, error) {
	fileStore := storage.NewFileStore(cfg.DataFile)
	store := data.NewPharmacy(fileStore)
	if err := store.Load(); err != nil {
		return nil, err
	}

	stats := store.Stats()
	logging.Info("Pharmacy ready",
		"mode", string(cfg.Mode),
		"data_file", fileStore.Path(),
		"medicines", stats.Medicines,
		"units", stats.Units,
	)

	autosave := time.Duration(cfg.AutosaveMinutes) * time.Minute
	handler := handlers.NewHTTPHandler(store, validation.NewInputValidator(), health.NewHealthChecker(store, autosave))

	return &application{
		cfg:       cfg,
		store:     store,
		scheduler: scheduler.NewScheduler(store, cfg.AutosaveMinutes),
		server:    server.NewServer(cfg, handler),
	}, nil
}

// runServer serves HTTP until ctx is cancelled or the listener fails
func (app *application) runServer(ctx context.Context) error {
	if err := app.scheduler.Start(); err != nil {
		return err
	}
	defer app.scheduler.Stop()

	serverErr := make(chan error, 1)
	go func() {
		if err := app.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err, ok := <-serverErr:
		if ok {
			logging.Error("Server failed to start", "error", err)
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return app.server.Shutdown(shutdownCtx)
}

// runConsole runs the interactive menu. A cancelled ctx saves and returns
// without waiting for the pending read on in.
func (app *application) runConsole(ctx context.Context, in io.Reader, out io.Writer) error {
	if err := app.scheduler.Start(); err != nil {
		return err
	}
	defer app.scheduler.Stop()

	menuCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	c := console.New(app.store, validation.NewInputValidator(), in, out)
	done := make(chan error, 1)
	go func() { done <- c.Run(menuCtx) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		logging.Info("Interrupted, saving inventory")
		return app.store.Save()
	}
}

// loadEnv reads .env from the working directory, falling back to the
// executable's directory
func loadEnv() {
	if err := godotenv.Load(); err == nil {
		return
	}

	ex, err := os.Executable()
	if err != nil {
		slog.Error("Failed to get executable path", "error", err)
		return
	}
	exPath := filepath.Dir(ex)
	if err := os.Chdir(exPath); err != nil {
		slog.Error("Failed to change directory", "error", err)
		return
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to load .env", "error", err)
	}
}

func main() {
	loadEnv()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	opts := logging.Options{
		LogDir:         cfg.LogDir,
		Env:            cfg.Env,
		LogLevel:       cfg.LogLevel,
		RetentionWeeks: cfg.LogRetentionWeeks,
		MaxFileSize:    cfg.MaxLogFileSize,
	}
	if cfg.Mode == config.ModeConsole {
		// Keep stdout for the menu
		opts.Console = os.Stderr
		opts.LogLevel = "warn"
	}
	logging.InitLoggerWithOptions(opts)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	app, err := newApplication(cfg)
	if err != nil {
		logging.Error("Failed to start", "error", err)
		stop()
		logging.Close()
		os.Exit(1)
	}

	if cfg.Mode == config.ModeConsole {
		err = app.runConsole(ctx, os.Stdin, os.Stdout)
	} else {
		err = app.runServer(ctx)
	}
	stop()

	if err != nil {
		logging.Error("Exited with error", "error", err)
		logging.Close()
		os.Exit(1)
	}
	logging.Info("Shutdown complete")
	logging.Close()
}
