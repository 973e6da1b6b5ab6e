package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mydaylog/internal/adapters/email"
	web "mydaylog/internal/adapters/http"
	"mydaylog/internal/adapters/http/perf"
	"mydaylog/internal/adapters/storage"
	accountStore "mydaylog/internal/adapters/storage/account"
	mealStore "mydaylog/internal/adapters/storage/meal"
	settingsStore "mydaylog/internal/adapters/storage/usersettings"
	"mydaylog/internal/application/orchestrators"
	"mydaylog/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.LoadServer(".env")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if cfg.IsProduction() {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}
	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}
	log.Println("Database initialized successfully!")

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, cfg.SlowQuery)

	stores := &web.Stores{
		AccountStore:  accountStore.NewSQLiteStore(timedDB),
		MealStore:     mealStore.NewSQLiteStore(timedDB),
		SettingsStore: settingsStore.NewSQLiteStore(timedDB),
	}

	var sender email.Sender
	if cfg.ResendKey != "" {
		sender = email.NewResendSender(cfg.ResendKey, cfg.EmailFrom, cfg.ReplyTo)
		log.Println("Email sender configured (Resend)")
	} else {
		sender = email.NewNoopSender()
		if cfg.IsProduction() {
			log.Println("WARNING: MYDAYLOG_RESEND_KEY is not set, reminder emails are DISABLED in production")
		} else {
			log.Println("Email sender configured (noop, set MYDAYLOG_RESEND_KEY for real delivery)")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go orchestrators.RunReminderWorker(ctx, cfg.ReminderInterval, orchestrators.SendRemindersDeps{
		SettingsStore: stores.SettingsStore,
		MealStore:     stores.MealStore,
		Sender:        sender,
		AppURL:        cfg.AppURL,
		Observe: func(start time.Time, res orchestrators.SendRemindersResult, err error) {
			collector.Record(perf.Entry{
				Kind:       perf.KindJob,
				Path:       "meal_reminders",
				Failed:     err != nil,
				DurationMs: float64(time.Since(start).Microseconds()) / 1000.0,
				Timestamp:  start,
			})
		},
	})

	handler := web.NewMux(stores, collector, web.Options{
		JWTSecret:          []byte(cfg.JWTSecret),
		CSRFKey:            []byte(cfg.CSRFKey),
		SecureCookies:      cfg.SecureCookies,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		SlowRequest:        cfg.SlowRequest,
		FutureSlackDays:    cfg.FutureSlackDays,
		EnablePerf:         !cfg.IsProduction(),
		Health:             timedDB.Ping,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("MyDayLog %s starting on %s (env=%s)", version, cfg.Addr, cfg.Env)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
	log.Println("Server stopped")
}
