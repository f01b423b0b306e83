package scrape

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"leadscout/internal/leadgen/dedup"
	"leadscout/internal/leadgen/dispatch"
	"leadscout/internal/leadgen/domain"
	"leadscout/internal/leadgen/enrich"
	"leadscout/internal/leadgen/extract"
	"leadscout/internal/leadgen/health"
	"leadscout/internal/leadgen/persist"
	"leadscout/internal/leadgen/progress"
	"leadscout/internal/observability/logging"
	"leadscout/internal/repository"
)

const (
	// defaultWorkers bounds how many hits are enriched/extracted
	// concurrently, keeping memory proportional to the pool rather than
	// the result count.
	defaultWorkers = 6

	// defaultJobTimeout is the soft deadline after which remaining
	// stages are abandoned and the job reports an error stage.
	defaultJobTimeout = 5 * time.Minute
)

// Result is what one scrape job hands back to its caller.
type Result struct {
	JobID        string
	TotalResults int
	SavedLeads   int
	Leads        []domain.Lead
	Errors       []string
}

// Config tunes a Service. Zero values fall back to the defaults above.
type Config struct {
	Workers    int
	JobTimeout time.Duration
}

// Service wires the pipeline stages together. Construct once per process
// and share across jobs; every stage is safe for concurrent jobs.
type Service struct {
	users      repository.UserRepository
	columns    repository.ColumnRepository
	dispatcher *dispatch.Dispatcher
	enricher   *enrich.Enricher
	extractor  *extract.Extractor
	persister  *persist.Persister
	monitor    *health.Monitor
	bus        *progress.Bus

	workers    int
	jobTimeout time.Duration
}

func NewService(
	users repository.UserRepository,
	columns repository.ColumnRepository,
	dispatcher *dispatch.Dispatcher,
	enricher *enrich.Enricher,
	extractor *extract.Extractor,
	persister *persist.Persister,
	monitor *health.Monitor,
	bus *progress.Bus,
	cfg Config,
) *Service {
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = defaultJobTimeout
	}
	return &Service{
		users:      users,
		columns:    columns,
		dispatcher: dispatcher,
		enricher:   enricher,
		extractor:  extractor,
		persister:  persister,
		monitor:    monitor,
		bus:        bus,
		workers:    cfg.Workers,
		jobTimeout: cfg.JobTimeout,
	}
}

// SetProgressCallback registers fn to receive this job's progress events.
// Returns an unsubscribe function; the service also drops all of a job's
// subscribers once the job finishes.
func (s *Service) SetProgressCallback(jobID string, fn func(progress.Event)) func() {
	return s.bus.Subscribe(jobID, fn)
}

// ScrapeConfiguration runs one job: dispatch, dedup, enrich, extract,
// persist. Only a fatal config (bad keywords, unknown user) or the job
// deadline produce a non-nil error; adapter and row-level failures are
// reported in Result.Errors and never abort the job.
func (s *Service) ScrapeConfiguration(ctx context.Context, cfg domain.Config, jobID string) (*Result, error) {
	if jobID == "" {
		jobID = uuid.New().String()
	}
	result := &Result{JobID: jobID}
	logger := logging.WithJobID(slog.Default(), jobID)
	defer s.bus.Unsubscribe(jobID)

	ctx, cancel := context.WithTimeout(ctx, s.jobTimeout)
	defer cancel()

	s.publish(jobID, "initializing", 0, 1, "validating configuration")

	if err := s.validate(ctx, &cfg); err != nil {
		result.Errors = append(result.Errors, err.Error())
		s.publish(jobID, "error", 0, 1, err.Error())
		return result, err
	}

	columns, err := s.loadColumns(ctx, cfg.UserID)
	if err != nil {
		logger.Warn("scrape: column lookup failed, proceeding without custom columns",
			slog.Any("error", err))
	}
	cfg.Columns = columns

	start := time.Now()
	hits, sourceErrors := s.dispatcher.Dispatch(ctx, cfg, jobID)
	for _, se := range sourceErrors {
		result.Errors = append(result.Errors, se.Source+": "+se.Err)
	}

	hits = dedup.Deduplicate(hits)
	result.TotalResults = len(hits)

	items := s.processHits(ctx, cfg, jobID, hits)
	if ctx.Err() != nil {
		result.Errors = append(result.Errors, ErrJobDeadline.Error())
		s.publish(jobID, "error", len(items), len(hits), "job deadline exceeded")
		return result, fmt.Errorf("%w: %v", ErrJobDeadline, ctx.Err())
	}

	out := s.persister.PersistAll(ctx, cfg, jobID, items)
	result.Leads = out.Leads
	result.SavedLeads = len(out.Leads)
	result.Errors = append(result.Errors, out.Errors...)

	logger.Info("scrape: job completed",
		slog.Int("total_results", result.TotalResults),
		slog.Int("saved_leads", result.SavedLeads),
		slog.Int("duplicates", out.Duplicates),
		slog.Int("errors", len(result.Errors)),
		slog.Duration("elapsed", time.Since(start)))

	total := result.SavedLeads
	if total == 0 {
		total = 1
	}
	s.publish(jobID, "completed", result.SavedLeads, total, "job completed")
	return result, nil
}

// validate enforces the fatal-config contract: bad keyword sets and
// unknown users abort before dispatch. An invalid user never falls back
// to some other user — that would file leads under the wrong owner.
func (s *Service) validate(ctx context.Context, cfg *domain.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrFatalConfig, err)
	}
	exists, err := s.users.Exists(ctx, cfg.UserID)
	if err != nil {
		return fmt.Errorf("%w: user lookup: %v", ErrFatalConfig, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrUnknownUser, cfg.UserID)
	}
	return nil
}

// loadColumns fetches the user's visible custom columns, seeding the
// default contact columns for users who have none yet.
func (s *Service) loadColumns(ctx context.Context, userID string) ([]domain.Column, error) {
	columns, err := s.columns.FindVisibleByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return s.columns.CreateDefaults(ctx, userID)
	}
	return columns, nil
}

// processHits walks every hit through enrichment and extraction on a
// bounded worker pool. Slot order is preserved so downstream progress and
// persistence stay deterministic for a given hit list.
func (s *Service) processHits(ctx context.Context, cfg domain.Config, jobID string, hits []domain.RawHit) []persist.Item {
	if len(hits) == 0 {
		return nil
	}

	items := make([]persist.Item, len(hits))
	processed := make([]bool, len(hits))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		enriched  int
		extracted int
	)
	sem := make(chan struct{}, s.workers)

	for i, h := range hits {
		if ctx.Err() != nil {
			break
		}
		i, h := i, h
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			eh := s.enricher.Enrich(ctx, h)
			mu.Lock()
			enriched++
			s.publish(jobID, "enriching", enriched, len(hits), "fetching article bodies")
			mu.Unlock()

			data := s.extractor.Run(ctx, cfg, eh)
			mu.Lock()
			extracted++
			s.publish(jobID, "extracting", extracted, len(hits), "extracting lead fields")
			mu.Unlock()

			items[i] = persist.Item{Hit: eh, Data: data}
			processed[i] = true
		}()
	}
	wg.Wait()

	out := make([]persist.Item, 0, len(items))
	for i := range items {
		if processed[i] {
			out = append(out, items[i])
		}
	}
	return out
}

func (s *Service) publish(jobID, stage string, done, total int, message string) {
	s.bus.Publish(progress.Event{
		JobID:    jobID,
		Stage:    stage,
		Progress: done,
		Total:    total,
		Message:  message,
	})
}

// GetHealthReport exposes the monitor's snapshot to callers.
func (s *Service) GetHealthReport() health.HealthReport {
	return s.monitor.GetHealthReport()
}

// GetEngineStatus returns the per-engine status map alone.
func (s *Service) GetEngineStatus() map[string]health.EngineStatus {
	return s.monitor.GetHealthReport().Engines
}

// GetErrorRecovery returns the currently recommended mitigations without
// applying them.
func (s *Service) GetErrorRecovery() []string {
	return s.monitor.AttemptRecovery()
}

// AttemptRecovery returns the monitor's recommended mitigations, the same
// list as GetErrorRecovery; the monitor itself changes no configuration.
func (s *Service) AttemptRecovery() []string {
	return s.monitor.AttemptRecovery()
}

// RunHealthCheck performs one synthetic probe pass.
func (s *Service) RunHealthCheck(ctx context.Context) {
	s.monitor.RunHealthCheck(ctx)
}
