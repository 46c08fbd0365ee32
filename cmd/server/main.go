package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/vitos/trade_journal/internal/config"
	"github.com/vitos/trade_journal/internal/infrastructure/ai"
	"github.com/vitos/trade_journal/internal/infrastructure/gist"
	"github.com/vitos/trade_journal/internal/infrastructure/logger"
	"github.com/vitos/trade_journal/internal/infrastructure/storage"
	"github.com/vitos/trade_journal/internal/usecase"
	"github.com/vitos/trade_journal/internal/web"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	// The AI credential is injected through the environment, never the
	// config file. A missing .env is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.Logging.Level)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	store, err := storage.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		log.Fatal("Failed to init sqlite", zap.Error(err))
	}
	defer store.Close()

	metrics := usecase.NewMetricsEngine()
	entries := usecase.NewTradeService(store, log)
	accounts := usecase.NewUserService(store, log)
	backup := usecase.NewBackupService(store, store, log)

	gistClient := gist.NewClient(cfg.Gist.Endpoint, time.Duration(cfg.Gist.TimeoutMs)*time.Millisecond)
	gistSync := usecase.NewGistSyncService(backup, gistClient, log)

	analyzer := ai.NewClient(os.Getenv("OPENAI_API_KEY"), cfg.AI.Model)
	coach := usecase.NewCoachService(analyzer, time.Duration(cfg.AI.TimeoutMs)*time.Millisecond, log)
	if !analyzer.Available() {
		log.Warn("OPENAI_API_KEY not set, AI coach disabled")
	}

	server := web.NewServer(cfg.Server.Port, web.Deps{
		Trades:     store,
		Users:      store,
		Options:    store,
		Metrics:    metrics,
		Entries:    entries,
		Accounts:   accounts,
		Backup:     backup,
		GistSync:   gistSync,
		Coach:      coach,
		AuthSecret: cfg.Auth.Secret,
		SessionTTL: cfg.SessionTTL(),
		Logger:     log,
	})

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Web server failed", zap.Error(err))
		}
	}()

	<-stop
	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Shutdown error", zap.Error(err))
	}
}
