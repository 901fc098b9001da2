package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"FinAnalyst/internal/config"
	"FinAnalyst/internal/console"
	"FinAnalyst/internal/coordinator"
	"FinAnalyst/internal/market"
	"FinAnalyst/internal/model"
	"FinAnalyst/internal/news"
	"FinAnalyst/internal/notifier"
	"FinAnalyst/internal/recorder"
	"FinAnalyst/internal/report"
	"FinAnalyst/internal/scheduler"
	"FinAnalyst/internal/sentiment"
)

func main() {
	cfgPath := flag.String("config", "", "config file (default $CONFIG_PATH or "+config.DefaultPath+")")
	query := flag.String("q", "", "answer a single query and exit")
	watch := flag.Bool("watch", false, "run the configured watch jobs until interrupted")
	telegram := flag.Bool("telegram", false, "answer queries sent to the Telegram bot until interrupted")
	verbose := flag.Bool("v", false, "log pipeline progress to stderr")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	daemon := *watch || *telegram
	if !daemon && !*verbose {
		log.SetOutput(io.Discard)
	}
	log.Println("[INFO] FinAnalyst starting...")

	// Load config
	path := *cfgPath
	if path == "" {
		path = config.DefaultPath
		if v := os.Getenv("CONFIG_PATH"); v != "" {
			path = v
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		fatalf("[FATAL] config validation: %v", err)
	}

	// Init market data provider
	var provider market.Provider
	switch cfg.Market.Source {
	case "rest":
		provider = market.NewRESTProvider(cfg.Market.BaseURL, cfg.Market.APIKey, cfg.Proxy)
	case "mock":
		provider = &market.MockProvider{BasePrice: 100}
	default:
		provider = market.NewYahooProvider(cfg.Proxy, cfg.Market.RequestsPerSecond)
	}
	log.Printf("[INFO] market data source: %s", provider.Name())
	provider = market.WithRetry(provider, cfg.Market.RetryBackoff)

	// Init news chain
	var sources []news.Source
	for _, name := range cfg.News.Sources {
		switch name {
		case "yahoo":
			sources = append(sources, news.NewYahooScraper(cfg.News.MaxArticles, cfg.Proxy))
		case "rss":
			sources = append(sources, news.NewRSSSource(cfg.Proxy))
		case "finnhub":
			if cfg.News.FinnhubAPIKey == "" {
				log.Println("[INFO] finnhub news source skipped: no API key")
				continue
			}
			sources = append(sources, news.NewFinnhubSource(cfg.News.FinnhubAPIKey, cfg.Market.Days))
		}
	}
	chain := news.NewChain(cfg.News.MaxArticles, sources...)

	// Init sentiment classifier
	classifier, err := sentiment.LoadOrTrain(cfg.Sentiment.ModelPath, cfg.Sentiment.SaveModel)
	if err != nil {
		fatalf("[FATAL] init sentiment model: %v", err)
	}

	// Init report generator
	var backend report.Backend
	switch cfg.LLM.Provider {
	case "anthropic":
		backend = report.NewAnthropicBackend(cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.MaxTokens)
	default:
		baseURL := cfg.LLM.BaseURL
		if baseURL == "" {
			baseURL = report.DefaultOllamaURL
		}
		backend = report.NewOpenAIBackend(baseURL, cfg.LLM.APIKey, cfg.LLM.Model)
	}
	log.Printf("[INFO] report backend: %s", backend.Name())
	generator := report.NewGenerator(backend, cfg.LLM.HistoryTurns, cfg.LLM.Timeout)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	aliases := make(map[string]string, len(coordinator.DefaultAliases)+len(cfg.Extraction.Aliases))
	for k, v := range coordinator.DefaultAliases {
		aliases[k] = v
	}
	for k, v := range cfg.Extraction.Aliases {
		aliases[k] = v
	}
	ignore := append(append([]string(nil), coordinator.DefaultIgnore...), cfg.Extraction.Ignore...)

	coord := coordinator.New(
		coordinator.NewExtractor(aliases, ignore),
		provider, chain, classifier, generator, rec,
		coordinator.Options{
			DefaultDays: cfg.Market.Days,
			TieBreak:    model.Label(cfg.Sentiment.TieBreak),
			Parallel:    cfg.Parallel,
			FlatBand:    cfg.Market.FlatBand,
		},
	)

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if !daemon {
		cons := console.New(os.Stdin, os.Stdout, coord, rec)
		if *query != "" {
			err = cons.Ask(ctx, *query)
		} else {
			err = cons.Run(ctx)
		}
		if err != nil && ctx.Err() == nil {
			fatalf("[FATAL] %v", err)
		}
		return
	}

	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	} else if *telegram {
		fatalf("[FATAL] -telegram needs telegram.bot_token and telegram.chat_id")
	}

	if *watch {
		jobs := make([]scheduler.Job, 0, len(cfg.Watch.Jobs))
		for _, j := range cfg.Watch.Jobs {
			jobs = append(jobs, scheduler.Job{Name: j.Name, Cron: j.Cron, Query: j.Query})
		}
		var sender scheduler.Sender
		if tn != nil {
			sender = tn
		}
		sched := scheduler.NewScheduler(ctx, coord, sender)
		if err := sched.RegisterAll(jobs); err != nil {
			fatalf("[FATAL] register watch jobs: %v", err)
		}
		if cfg.Watch.RunOnStart || os.Getenv("RUN_ON_START") == "true" {
			log.Println("[INFO] RUN_ON_START enabled, executing watch jobs now")
			sched.RunAllNow(jobs)
		}
		sched.Start()
		defer sched.Stop()
	}

	if *telegram {
		bot := notifier.NewChatBot(coord)
		go tn.StartPolling(ctx, notifier.DefaultPollTimeout, bot.HandleMessage)
		log.Println("[INFO] Telegram polling started")
	}

	log.Println("[INFO] FinAnalyst is running. Press Ctrl+C to stop.")
	<-ctx.Done()
	log.Println("[INFO] shutdown signal received, stopping...")
}

// fatalf reports startup errors even when logging is silenced.
func fatalf(format string, args ...any) {
	log.SetOutput(os.Stderr)
	log.Fatalf(format, args...)
}
