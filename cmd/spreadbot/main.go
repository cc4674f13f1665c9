package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/selenkaonchain/spreadbot/internal/config"
	"github.com/selenkaonchain/spreadbot/internal/detector"
	"github.com/selenkaonchain/spreadbot/internal/journal"
	"github.com/selenkaonchain/spreadbot/internal/logger"
	"github.com/selenkaonchain/spreadbot/internal/models"
	"github.com/selenkaonchain/spreadbot/internal/monitor"
	"github.com/selenkaonchain/spreadbot/internal/polymarket"
	"github.com/selenkaonchain/spreadbot/internal/telegram"
	"github.com/selenkaonchain/spreadbot/internal/tracker"
)

var configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")

// logNotifier stands in for the dispatcher when Telegram is disabled.
type logNotifier struct {
	referralCode string
}

func (n *logNotifier) Notify(alerts []models.Alert) {
	for _, a := range alerts {
		logger.Info("Live market %s (score %.2f): %s", a.Market.ID, a.Score,
			telegram.MarketLink(a.Market, n.referralCode))
	}
}

func main() {
	flag.Parse()

	// Secrets such as SPREADBOT_TELEGRAM_BOT_TOKEN may live in a .env file.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Configuration loaded from %s", *configPath)

	store, err := tracker.New(cfg.Storage.StateFile)
	if err != nil {
		logger.Fatal("Failed to load market state: %v", err)
	}
	logger.Info("Tracking %d markets from %s", store.Len(), cfg.Storage.StateFile)

	jnl, err := journal.New(cfg.Storage.DBPath)
	if err != nil {
		logger.Fatal("Failed to initialize alert journal: %v", err)
	}
	defer func() {
		if err := jnl.Close(); err != nil {
			logger.Error("Failed to close alert journal: %v", err)
		}
	}()

	polyClient := polymarket.NewClient(
		cfg.Polymarket.GammaAPIURL,
		cfg.Polymarket.Timeout,
		polymarket.ClientConfig{
			Limit:          cfg.Polymarket.Limit,
			MaxPages:       cfg.Polymarket.MaxPages,
			MaxRetries:     cfg.Polymarket.MaxRetries,
			RetryDelayBase: cfg.Polymarket.RetryDelayBase,
		},
	)

	det := detector.New(detector.Config{
		MinVolume:         cfg.Detector.MinVolume,
		MinSpread:         cfg.Detector.MinSpread,
		MaxSpread:         cfg.Detector.MaxSpread,
		MinVolumeDelta:    cfg.Detector.MinVolumeDelta,
		MinPriceMove:      cfg.Detector.MinPriceMove,
		PersistenceCycles: cfg.Detector.PersistenceCycles,
	})

	var notifier monitor.Notifier
	var dispatcher *telegram.Dispatcher
	if cfg.Telegram.Enabled {
		telegramClient, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.MaxRetries, time.Second)
		if err != nil {
			logger.Fatal("Failed to initialize Telegram client: %v", err)
		}
		dispatcher = telegram.NewDispatcher(telegramClient, jnl, cfg.Telegram.ReferralCode, cfg.Telegram.SendDelay, cfg.Telegram.QueueSize)
		dispatcher.Start()
		notifier = dispatcher
		logger.Info("Telegram dispatcher started")
	} else {
		notifier = &logNotifier{referralCode: cfg.Telegram.ReferralCode}
		logger.Debug("Telegram notifications disabled")
	}

	mon := monitor.New(polyClient, store, det, notifier, cfg.Detector.MaxAlertsPerCycle)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, cleaning up...")
		cancel()
	}()

	logger.Info("Bot started (interval: %v, min_volume: %.0f, spread: [%.2f, %.2f], max_alerts: %d)",
		cfg.Polymarket.CheckInterval,
		cfg.Detector.MinVolume,
		cfg.Detector.MinSpread,
		cfg.Detector.MaxSpread,
		cfg.Detector.MaxAlertsPerCycle,
	)

	ticker := time.NewTicker(cfg.Polymarket.CheckInterval)
	defer ticker.Stop()

	runCycle := func() {
		if err := mon.RunOnce(ctx); err != nil {
			logger.Error("Cycle failed: %v", err)
		}
	}

	runCycle()

	for {
		select {
		case <-ctx.Done():
			if dispatcher != nil {
				dispatcher.Close()
			}
			logger.Info("Service stopped")
			return

		case <-ticker.C:
			runCycle()
		}
	}
}
