package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/robfig/cron/v3"

	"leadscout/internal/infra/adapter/persistence/postgres"
	"leadscout/internal/infra/db"
	"leadscout/internal/infra/httpclient"
	workerPkg "leadscout/internal/infra/worker"
	"leadscout/internal/observability/logging"
	"leadscout/internal/leadgen/adapter"
	"leadscout/internal/leadgen/dispatch"
	"leadscout/internal/leadgen/enrich"
	"leadscout/internal/leadgen/extract"
	"leadscout/internal/leadgen/health"
	"leadscout/internal/leadgen/persist"
	"leadscout/internal/leadgen/progress"
	"leadscout/internal/repository"
	"leadscout/internal/usecase/scrape"
)

const probeInterval = 30 * time.Second

func waitForMigrations(logger *slog.Logger, db *sql.DB) {
	const probe = "SELECT 1 FROM leads LIMIT 1"
	for i := 0; i < 10; i++ {
		if _, err := db.Exec(probe); err == nil {
			return
		}
		logger.Info("waiting for migrations, retrying in 3s", slog.Int("attempt", i+1))
		time.Sleep(3 * time.Second)
	}
	logger.Error("migrations did not complete in time")
	os.Exit(1)
}

func main() {
	logger := initLogger()
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load worker configuration (fail-open strategy)
	workerMetrics := workerPkg.NewWorkerMetrics()
	workerMetrics.MustRegister()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Int("pipeline_workers", workerConfig.PipelineWorkers),
		slog.Duration("crawl_timeout", workerConfig.CrawlTimeout),
		slog.Int("health_port", workerConfig.HealthPort))

	leadgenConfig := workerPkg.LoadLeadgenConfigFromEnv(logger)

	svc, monitor := setupScrapeService(logger, database, workerConfig, leadgenConfig)
	configRepo := postgres.NewScrapeConfigRepo(database)

	// Start metrics HTTP server
	startMetricsServer(ctx, logger, svc)

	// Start health check server
	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health check server started", slog.String("addr", healthAddr))

	go monitor.StartProbing(ctx, probeInterval)

	startCronWorker(logger, svc, configRepo, workerConfig, leadgenConfig, workerMetrics, healthServer)
}

// initLogger initializes and returns a structured logger based on environment configuration.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// initDatabase opens the database connection and waits for migrations to complete.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	waitForMigrations(logger, database)
	return database
}

// setupScrapeService wires the whole pipeline: HTTP clients, health
// monitor, the adapter registry, the enrich/extract stages, and the
// persister over the Postgres repositories.
func setupScrapeService(logger *slog.Logger, database *sql.DB,
	workerConfig *workerPkg.WorkerConfig, cfg workerPkg.LeadgenConfig) (*scrape.Service, *health.Monitor) {

	// Two clients, mirroring the split between general fetching and
	// scraping: the scrape client optionally routes through the proxy
	// service and carries the UA override.
	apiClient := httpclient.New(httpclient.Config{
		Timeout:               15 * time.Second,
		MaxRedirects:          5,
		MaxBodySize:           10 * 1024 * 1024,
		DenyPrivateIPs:        true,
		UserAgent:             cfg.UserAgent,
		HostRequestsPerSecond: 4,
	})
	scrapeClient := httpclient.New(httpclient.Config{
		Timeout:               10 * time.Second,
		MaxRedirects:          5,
		MaxBodySize:           10 * 1024 * 1024,
		DenyPrivateIPs:        true,
		UserAgent:             cfg.UserAgent,
		HostRequestsPerSecond: 2,
		ProxyAPIKey:           cfg.ScrapyCloudAPIKey,
	})
	if cfg.ScrapyCloudAPIKey != "" {
		logger.Info("scrape proxy enabled for HTML fetches")
	}

	monitor := health.New(apiClient, cfg.ProbeURLs)

	registry := buildRegistry(logger, cfg, apiClient, scrapeClient, monitor)

	llm := buildLLM(logger, cfg)

	bus := progress.New()
	dispatcher := dispatch.New(registry, monitor, bus)
	enricher := enrich.New(scrapeClient, monitor)
	extractor := extract.New(llm)
	persister := persist.New(
		postgres.NewLeadRepo(database),
		postgres.NewLeadSourceRepo(database),
		postgres.NewTagRepo(database),
		postgres.NewContactRepo(database),
		bus,
	)

	svc := scrape.NewService(
		postgres.NewUserRepo(database),
		postgres.NewColumnRepo(database),
		dispatcher,
		enricher,
		extractor,
		persister,
		monitor,
		bus,
		scrape.Config{
			Workers:    workerConfig.PipelineWorkers,
			JobTimeout: workerConfig.CrawlTimeout,
		},
	)
	return svc, monitor
}

// buildRegistry assembles every source adapter. Keyed adapters register
// regardless so health reporting can show them as disabled; the registry
// skips them at dispatch time when their key is absent.
func buildRegistry(logger *slog.Logger, cfg workerPkg.LeadgenConfig,
	apiClient, scrapeClient *httpclient.Client, monitor *health.Monitor) *adapter.Registry {

	adapters := []adapter.SourceAdapter{
		adapter.NewRSS(cfg.RSSFeeds, apiClient, monitor),
	}
	adapters = append(adapters,
		adapter.NewHTMLSearchAdaptersFromConfig(scrapeClient, monitor, cfg.DisabledHTMLEngines, cfg.SelectorsFile)...)
	adapters = append(adapters,
		adapter.NewColly(cfg.IndustrySiteURLs, cfg.UserAgent, monitor))

	if cfg.UsePremiumAPIs {
		adapters = append(adapters,
			adapter.NewNewsAPI(cfg.NewsAPIKey, apiClient, monitor),
			adapter.NewBingNews(cfg.BingNewsKey, apiClient, monitor),
			adapter.NewGoogleCSE(cfg.GoogleCSEKey, cfg.GoogleCSEID, cfg.SerpAPIKey, apiClient, monitor),
			adapter.NewCrunchbase(cfg.CrunchbaseKey, apiClient, monitor),
			adapter.NewBusinessWire(cfg.BusinessWireKey, apiClient, monitor),
			adapter.NewSECEdgar(cfg.SECEdgarKey, apiClient, monitor),
			adapter.NewYelp(cfg.YelpKey, "", apiClient, monitor),
		)
	} else {
		logger.Info("premium API adapters disabled (USE_PREMIUM_APIS not set)")
	}

	registry := adapter.NewRegistry(adapters...)
	for _, a := range registry.All() {
		if !a.Enabled() {
			logger.Info("adapter disabled", slog.String("engine", a.Name()))
		}
	}
	logger.Info("adapter registry initialized",
		slog.Int("registered", len(registry.All())),
		slog.Int("enabled", len(registry.Enabled(nil))))
	return registry
}

// buildLLM selects the extraction backend by EXTRACTOR_LLM_TYPE, the
// same way the summarizer backend used to be selected. A missing key
// disables the AI pass entirely; it is never silently re-enabled or
// disabled anywhere else.
func buildLLM(logger *slog.Logger, cfg workerPkg.LeadgenConfig) *extract.LLM {
	apiKey := cfg.LLMAPIKey()
	if apiKey == "" {
		logger.Info("LLM extraction disabled: no API key configured",
			slog.String("provider", cfg.LLMProvider))
		return nil
	}
	switch cfg.LLMProvider {
	case "openai":
		logger.Info("Using OpenAI API for extraction", slog.String("type", "openai"))
		return extract.NewOpenAI(apiKey)
	case "claude":
		logger.Info("Using Claude API for extraction", slog.String("type", "claude"))
		return extract.NewClaude(apiKey)
	default:
		logger.Error("Invalid EXTRACTOR_LLM_TYPE",
			slog.String("type", cfg.LLMProvider),
			slog.String("expected", "openai or claude"))
		os.Exit(1)
		return nil
	}
}

// startCronWorker starts the cron scheduler and runs every active scrape
// configuration on each tick. The scheduler only decides *when* to run;
// which configs exist and what they search for lives in the config store.
func startCronWorker(logger *slog.Logger, svc *scrape.Service, configs repository.ScrapeConfigRepository,
	cfg *workerPkg.WorkerConfig, leadgenCfg workerPkg.LeadgenConfig,
	metrics *workerPkg.WorkerMetrics, healthServer *workerPkg.HealthServer) {

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.CronSchedule, func() {
		runScrapeJobs(logger, svc, configs, cfg, leadgenCfg, metrics)
	})
	if err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	// Mark as ready after cron is set up
	healthServer.SetReady(true)
	logger.Info("worker marked as ready")

	logger.Info("worker started", slog.String("schedule", cfg.CronSchedule), slog.String("timezone", cfg.Timezone))
	select {}
}

// runScrapeJobs executes every active scrape configuration sequentially.
// One failing config never blocks the rest of the batch.
func runScrapeJobs(logger *slog.Logger, svc *scrape.Service, configs repository.ScrapeConfigRepository,
	cfg *workerPkg.WorkerConfig, leadgenCfg workerPkg.LeadgenConfig, metrics *workerPkg.WorkerMetrics) {

	startTime := time.Now()
	metrics.RecordJobRun("started")
	logger.Info("scrape batch started")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.CrawlTimeout)
	defer cancel()

	active, err := configs.ListActive(ctx)
	if err != nil {
		logger.Error("failed to load scrape configurations", slog.Any("error", err))
		metrics.RecordJobRun("failure")
		metrics.RecordJobDuration(time.Since(startTime).Seconds())
		return
	}

	var saved, failed int
	for _, scrapeCfg := range active {
		// SMART_EXTRACTION gates the LLM on low pattern confidence
		// globally; a config can also opt in on its own.
		if leadgenCfg.SmartExtraction {
			scrapeCfg.SmartMode = true
		}
		result, err := svc.ScrapeConfiguration(ctx, *scrapeCfg, "")
		if err != nil {
			failed++
			logger.Error("scrape job failed",
				slog.String("config_id", scrapeCfg.ID),
				slog.Any("error", err))
			continue
		}
		saved += result.SavedLeads
		logger.Info("scrape job finished",
			slog.String("config_id", scrapeCfg.ID),
			slog.String("job_id", result.JobID),
			slog.Int("total_results", result.TotalResults),
			slog.Int("saved_leads", result.SavedLeads),
			slog.Int("errors", len(result.Errors)))
	}

	status := "success"
	if failed > 0 && failed == len(active) {
		status = "failure"
	}
	metrics.RecordJobRun(status)
	metrics.RecordJobDuration(time.Since(startTime).Seconds())
	metrics.RecordConfigsProcessed(len(active))
	if status == "success" {
		metrics.RecordLastSuccess()
	}

	logger.Info("scrape batch completed",
		slog.Int("configs", len(active)),
		slog.Int("saved_leads", saved),
		slog.Int("failed_configs", failed),
		slog.Duration("duration", time.Since(startTime)))
}
