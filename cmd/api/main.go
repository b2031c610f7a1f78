package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Application Layer
	appService "memocal/internal/application/service"

	// Infrastructure Layer
	"memocal/internal/infrastructure/database/sqlite"
	lineClient "memocal/internal/infrastructure/line"
	"memocal/internal/infrastructure/maps"
	"memocal/internal/infrastructure/notify"
	"memocal/internal/infrastructure/scheduler"

	// Interfaces Layer
	"memocal/internal/interfaces/api/handler"
	"memocal/internal/interfaces/api/router"

	// Packages
	"memocal/internal/pkg/config"
	appLogger "memocal/internal/pkg/logger"

	"github.com/jmhodges/clock"
	_ "github.com/joho/godotenv/autoload" // Automatically load .env file
	"gorm.io/gorm"
)

func gracefulShutdown(apiServer *http.Server, alarms *scheduler.AlarmManager, controller appService.MemoController, db *gorm.DB, closeNotifier func(), done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Println("Shutting down gracefully, press Ctrl+C again to force")

	// Stop the HTTP server first so no new writes arrive
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown with error: %v", err)
	}

	log.Println("Stopping memo controller...")
	controller.Close()

	log.Println("Stopping alarms...")
	alarms.Stop()
	closeNotifier()

	log.Println("Closing database connection...")
	if err := sqlite.Close(db); err != nil {
		log.Printf("Error closing database: %v", err)
	} else {
		log.Println("Database connection closed.")
	}

	log.Println("Server exiting")
	done <- true
}

// newNotifier builds the notifier selected by configuration and its cleanup.
func newNotifier(cfg *config.Config, appLog appLogger.Logger) (appService.Notifier, func(), error) {
	switch cfg.Notifier.Kind {
	case "dbus":
		n := notify.NewDBusNotifier(appLog)
		return n, func() {
			if err := n.Close(); err != nil {
				appLog.Warn(fmt.Sprintf("Failed to close DBus connection: %v", err))
			}
		}, nil
	case "line":
		n, err := lineClient.NewClient(cfg.Line.ChannelSecret, cfg.Line.ChannelToken, cfg.Line.RecipientID, appLog)
		if err != nil {
			return nil, nil, err
		}
		return n, func() {}, nil
	default:
		return notify.NewLogNotifier(appLog), func() {}, nil
	}
}

func main() {
	// --- Initialization ---
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	appLog := appLogger.New(cfg.Log.Level)
	appLog.Info("Logger initialized.")

	loc, err := cfg.App.Location()
	if err != nil {
		appLog.Error("Invalid timezone", err)
		os.Exit(1)
	}

	// --- Infrastructure ---
	db, err := sqlite.Open(cfg.Database.Path, cfg.Database.LogLevel)
	if err != nil {
		appLog.Error("Failed to open database", err)
		os.Exit(1)
	}
	memoRepo := sqlite.NewMemoRepository(db)
	appLog.Info("Database and repositories initialized.")

	cronScheduler := scheduler.NewScheduler(loc, appLog)
	alarms := scheduler.NewAlarmManager(cronScheduler, appLog)

	notifier, closeNotifier, err := newNotifier(cfg, appLog)
	if err != nil {
		appLog.Error("Failed to create notifier", err)
		os.Exit(1)
	}
	appLog.Info(fmt.Sprintf("Using %s notifier.", cfg.Notifier.Kind))

	launcher, err := maps.NewLauncher(cfg.Maps.BaseURL, appLog)
	if err != nil {
		appLog.Error("Failed to create map launcher", err)
		os.Exit(1)
	}

	// --- Application Services ---
	clk := zonedClock{Clock: clock.New(), loc: loc}
	store := appService.NewMemoStore(memoRepo, appLog)
	reminders := appService.NewReminderScheduler(store, alarms, notifier, clk, appLog)
	controller := appService.NewMemoController(store, reminders, clk, appLog)
	appLog.Info("Application services initialized.")

	// --- Restore Reminders ---
	if _, err := reminders.Restore(context.Background()); err != nil {
		// Log the error but continue starting the server
		appLog.Error("Failed to restore reminders on startup", err)
	}

	// --- API Handlers ---
	memoHandler := handler.NewMemoHandler(controller, reminders, launcher, appLog)

	// --- Router ---
	echoRouter := router.NewRouter(&router.Config{
		MemoHandler: memoHandler,
		Logger:      appLog,
	})

	// --- HTTP Server ---
	apiServer := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:     echoRouter,
		IdleTimeout: time.Minute,
		ReadTimeout: 10 * time.Second,
		// No WriteTimeout: /memos/stream is long lived.
	}

	// --- Start Server & Shutdown Handling ---
	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, alarms, controller, db, closeNotifier, done)

	appLog.Info(fmt.Sprintf("Server starting on port %d", cfg.Server.Port))
	err = apiServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		appLog.Error("HTTP server ListenAndServe error", err)
		panic(fmt.Sprintf("http server error: %s", err))
	}

	<-done
	appLog.Info("Graceful shutdown complete.")
}

// zonedClock reports time in the configured zone.
type zonedClock struct {
	clock.Clock
	loc *time.Location
}

func (c zonedClock) Now() time.Time {
	return c.Clock.Now().In(c.loc)
}
