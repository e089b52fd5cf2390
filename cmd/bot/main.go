package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sandeepmishra3515-creator/MishrAlgoBot/config"
	"github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/auditlog"
	"github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/bot"
	"github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/broker"
	"github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/engine"
	"github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/journal"
	"github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/logger"
	"github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/marketdata"
	"github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/metrics"
	"github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/notification"
	"github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/resolver"
	"github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/scanner"
	redisstore "github.com/sandeepmishra3515-creator/MishrAlgoBot/internal/store/redis"
	"github.com/sandeepmishra3515-creator/MishrAlgoBot/pkg/smartconnect"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init("algobot", logger.ParseLevel("info")).Error("config", "err", err)
		os.Exit(1)
	}
	log := logger.Init("algobot", logger.ParseLevel(cfg.LogLevel))
	log.Info("starting", "live_trading", cfg.LiveTrading)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// ---- Metrics & health ----
	prom := metrics.New()
	health := metrics.NewHealthStatus()
	metricsSrv := metrics.NewServer(cfg.MetricsAddr, health)
	metricsSrv.Start()
	defer metricsSrv.Close()
	log.Info("metrics server listening", "addr", cfg.MetricsAddr)

	// ---- Trade journal (SQLite) ----
	jnl, err := journal.Open(cfg.SQLitePath)
	if err != nil {
		log.Error("journal open failed", "path", cfg.SQLitePath, "err", err)
		os.Exit(1)
	}
	defer jnl.Close()
	health.SetJournalOK(true)

	// ---- Redis snapshot store (optional) ----
	var store *redisstore.Writer
	if cfg.RedisAddr != "" {
		store, err = redisstore.New(redisstore.WriterConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}, log)
		if err != nil {
			log.Warn("redis unavailable, snapshots disabled", "err", err)
		} else {
			defer store.Close()
			health.SetRedisOK(true)
		}
	}

	// ---- Notifications ----
	notifiers := notification.Multi{notification.NewLogNotifier(log)}
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		notifiers = append(notifiers, notification.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID))
	}
	if cfg.WebhookURL != "" {
		notifiers = append(notifiers, notification.NewWebhookNotifier(cfg.WebhookURL))
	}

	// ---- Broker session (live trading only) ----
	var (
		router engine.OrderRouter
		quotes scanner.QuoteSource
	)
	if cfg.LiveTrading {
		client := smartconnect.NewClient(smartconnect.Config{APIKey: cfg.AngelAPIKey}, log)
		err = client.GenerateSession(ctx, smartconnect.Credentials{
			ClientCode: cfg.AngelClientCode,
			PIN:        cfg.AngelPIN,
			TOTPSecret: cfg.AngelTOTPSecret,
		})
		if err != nil {
			log.Error("smartapi login failed", "err", err)
			os.Exit(1)
		}
		defer client.Logout(context.Background())
		health.SetBrokerOK(true)

		stream := smartconnect.NewQuoteStream(client, log)
		go func() {
			if err := stream.Run(ctx, indexFeedGroups()); err != nil && ctx.Err() == nil {
				log.Error("quote stream stopped", "err", err)
			}
		}()

		router = broker.NewRouter(client)
		quotes = broker.NewQuotes(stream, client)
	}

	// ---- Scanner, engine, bot ----
	audit := auditlog.New(auditlog.DefaultCapacity)
	bars := marketdata.NewYahooSource("")
	scrips := resolver.New(cfg.ScripMasterURL, log)
	scan := scanner.New(bars, scrips, quotes, log, prom)

	risk := engine.RiskConfig{
		StopLossPct:  cfg.StopLossPct,
		TargetPct:    cfg.TargetPct,
		MaxDailyLoss: cfg.MaxDailyLoss,
		Qty:          cfg.Qty,
		LiveTrading:  cfg.LiveTrading,
	}
	eng, err := engine.New(risk, router, jnl, notifiers, audit, log, prom)
	if err != nil {
		log.Error("engine init failed", "err", err)
		os.Exit(1)
	}
	eng.SetStartBalance(cfg.StartBalance)

	b := bot.New(scan, eng, store, audit, log, prom, health)
	b.Start()
	b.Run(ctx)

	b.Stop()
	log.Info("shutdown complete")
}

// indexFeedGroups lists the scrip tokens subscribed on the market feed:
// NIFTY 50 and BANKNIFTY spot on NSE cash.
func indexFeedGroups() []smartconnect.TokenGroup {
	return []smartconnect.TokenGroup{
		{ExchangeType: smartconnect.ExchangeNSECM, Tokens: []string{"99926000", "99926009"}},
	}
}
