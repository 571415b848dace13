package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hray3182/CoParent/internal/ai"
	"github.com/hray3182/CoParent/internal/api"
	"github.com/hray3182/CoParent/internal/bot"
	"github.com/hray3182/CoParent/internal/bot/handlers"
	"github.com/hray3182/CoParent/internal/config"
	"github.com/hray3182/CoParent/internal/database"
	"github.com/hray3182/CoParent/internal/holidays"
	"github.com/hray3182/CoParent/internal/planner"
	"github.com/hray3182/CoParent/internal/repository"
	"github.com/hray3182/CoParent/internal/repository/memory"
	"github.com/hray3182/CoParent/internal/scheduler"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_TOKEN is required")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open the store
	var store repository.Store
	switch cfg.Store {
	case config.StoreMemory:
		store = memory.New()
		log.Println("Using in-memory store, data is lost on restart")
	default:
		db, err := database.New(ctx, cfg.DatabaseURI)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		log.Println("Connected to database")

		if err := db.Migrate(ctx); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		log.Println("Database migrations completed")
		store = repository.NewPostgres(db)
	}

	// Public holiday calendar (optional)
	var holidayCal *holidays.Calendar
	if cfg.HolidaysFile != "" {
		holidayCal, err = holidays.LoadFile(cfg.HolidaysFile)
		if err != nil {
			log.Fatalf("Failed to load holidays: %v", err)
		}
		log.Printf("Loaded %d holidays from %s", len(holidayCal.Holidays), cfg.HolidaysFile)
	}

	// Initialize AI client (optional)
	var aiClient *ai.Client
	if cfg.AIAPIKey != "" {
		aiClient = ai.New(cfg.AIAPIKey, cfg.AIBaseURL, cfg.AIModel)
		log.Printf("AI client initialized (model: %s)", cfg.AIModel)
	} else {
		log.Println("AI client not configured, natural language features disabled")
	}

	tgAPI, err := bot.NewAPI(cfg.TelegramToken)
	if err != nil {
		log.Fatalf("Failed to create Telegram API: %v", err)
	}

	svc := planner.New(store, store)

	// Every calendar write refreshes that family's recap
	sched := scheduler.New(tgAPI, store, svc, cfg.RecapCron, cfg.Location())
	svc.OnChange(sched.Notify)
	go func() {
		if err := sched.Start(ctx); err != nil && err != context.Canceled {
			log.Fatalf("Scheduler error: %v", err)
		}
	}()

	// HTTP API (optional)
	if cfg.APIListen != "" {
		srv := api.New(svc, store)
		go func() {
			if err := srv.Listen(cfg.APIListen); err != nil {
				log.Printf("HTTP API stopped: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
			defer stop()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Printf("HTTP API shutdown: %v", err)
			}
		}()
	}

	h := handlers.New(tgAPI, store, svc, handlers.Options{
		AI:       aiClient,
		Holidays: holidayCal,
		Timezone: cfg.Timezone,
		DevMode:  cfg.DevMode,
	})
	b := bot.New(tgAPI, h)

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down...")
		cancel()
	}()

	log.Println("Starting bot...")
	if err := b.Start(ctx); err != nil && err != context.Canceled {
		log.Fatalf("Bot error: %v", err)
	}
}
