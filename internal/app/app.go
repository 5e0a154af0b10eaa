// Package app initializes and holds long-lived application services, acting as a dependency injection container.
package app

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/JakeFAU/zoocards/internal/config"
	"github.com/JakeFAU/zoocards/internal/flashcard"
	"github.com/JakeFAU/zoocards/internal/id/uuid"
	"github.com/JakeFAU/zoocards/internal/logging"
	"github.com/JakeFAU/zoocards/internal/metrics"
	"github.com/JakeFAU/zoocards/internal/scraper"
	"github.com/JakeFAU/zoocards/internal/storage/local"
	"github.com/JakeFAU/zoocards/internal/storage/postgres"
)

// App holds the configuration, logger and run ID shared by one command
// invocation, and builds the services that command needs.
type App struct {
	cfg    config.Config
	logger *zap.Logger
	runID  string

	mu      sync.Mutex
	closers []func()
}

// New creates an App for one run of command.
func New(cfg config.Config, logger *zap.Logger, command string) (*App, error) {
	runID, err := uuid.New().NewID()
	if err != nil {
		return nil, err
	}
	metrics.Init()
	return &App{
		cfg:    cfg,
		logger: logging.ForRun(logger, command, runID),
		runID:  runID,
	}, nil
}

// Config returns the loaded configuration.
func (a *App) Config() config.Config {
	return a.cfg
}

// Logger returns the run-scoped logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// RunID returns the UUIDv7 identifying this run.
func (a *App) RunID() string {
	return a.runID
}

// Scraper wires the fetcher, lister, extractor and record sinks. The CSV
// sink is always present; Postgres is added when db.dsn is set.
func (a *App) Scraper(ctx context.Context) (*scraper.Scraper, error) {
	fetcher := scraper.NewCollyFetcher(scraper.FetcherConfig{
		UserAgent:     a.cfg.HTTP.UserAgent,
		RespectRobots: a.cfg.HTTP.RespectRobots,
		Timeout:       a.cfg.Timeout(),
	}, a.logger)

	lister, err := scraper.NewLister(scraper.ListerConfig{
		BaseURL:     a.cfg.Site.BaseURL,
		ListingPath: a.cfg.Site.ListingPath,
		PageParam:   a.cfg.Site.PageParam,
	}, fetcher, a.logger)
	if err != nil {
		return nil, fmt.Errorf("build lister: %w", err)
	}

	extractor, err := scraper.NewExtractor(scraper.ExtractorConfig{}, fetcher, a.logger)
	if err != nil {
		return nil, fmt.Errorf("build extractor: %w", err)
	}

	sinks, err := a.sinks(ctx)
	if err != nil {
		return nil, err
	}

	return scraper.NewScraper(scraper.Config{
		StartPage: a.cfg.Site.StartPage,
		MaxPages:  a.cfg.Site.MaxPages,
		Delay:     a.cfg.Scraper.Delay,
	}, lister, extractor, sinks, scraper.TimerPauser{}, a.logger), nil
}

func (a *App) sinks(ctx context.Context) ([]scraper.RecordSink, error) {
	csvStore, err := local.New(local.Config{Path: a.cfg.Output.RecordsCSV}, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize csv store: %w", err)
	}
	sinks := []scraper.RecordSink{csvStore}
	a.logger.Info("Using CSV record store", zap.String("path", csvStore.Path()))

	if a.cfg.DB.DSN == "" {
		return sinks, nil
	}
	a.logger.Info("Connecting to PostgreSQL...", zap.String("table", a.cfg.DB.Table))
	pg, err := postgres.NewRecordStore(ctx, postgres.RecordStoreConfig{
		DSN:             a.cfg.DB.DSN,
		Table:           a.cfg.DB.Table,
		MaxConns:        a.cfg.DB.MaxConns,
		MinConns:        a.cfg.DB.MinConns,
		MaxConnLifetime: a.cfg.MaxConnLifetime(),
	}, a.runID, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	a.onClose(pg.Close)
	if err := pg.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to prepare database schema: %w", err)
	}
	return append(sinks, pg), nil
}

// Converter builds the flashcard converter for the configured format.
func (a *App) Converter() (*flashcard.Converter, error) {
	formatter, err := flashcard.New(flashcard.Format(a.cfg.Output.FlashcardFormat))
	if err != nil {
		return nil, err
	}
	formatter.SkipSentinels = a.cfg.Output.SkipSentinels
	return flashcard.NewConverter(formatter, a.logger), nil
}

func (a *App) onClose(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closers = append(a.closers, fn)
}

// Close releases services in reverse order, writes the metrics textfile
// when configured and flushes the logger. It is safe to call more than once.
func (a *App) Close() {
	a.mu.Lock()
	closers := a.closers
	a.closers = nil
	a.mu.Unlock()

	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
	if err := metrics.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
		a.logger.Warn("Error writing metrics textfile", zap.Error(err))
	}
	_ = a.logger.Sync()
}
