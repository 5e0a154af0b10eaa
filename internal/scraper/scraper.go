package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/zoocards/internal/animal"
	"github.com/JakeFAU/zoocards/internal/metrics"
)

// Config controls the driving loop.
type Config struct {
	StartPage int
	// MaxPages stops pagination after this many listing pages; 0 means no
	// limit beyond the first empty page.
	MaxPages int
	// Delay separates consecutive record fetches.
	Delay time.Duration
}

// Summary describes a finished run.
type Summary struct {
	Pages    int
	Links    int
	Records  int
	Failures map[Reason]int
}

// Scraper drives the Lister and Extractor and persists the results.
type Scraper struct {
	cfg       Config
	lister    *Lister
	extractor *Extractor
	sinks     []RecordSink
	pauser    Pauser
	logger    *zap.Logger
}

// NewScraper wires a Scraper. A nil pauser selects TimerPauser.
func NewScraper(
	cfg Config,
	lister *Lister,
	extractor *Extractor,
	sinks []RecordSink,
	pauser Pauser,
	logger *zap.Logger,
) *Scraper {
	if cfg.StartPage < 1 {
		cfg.StartPage = 1
	}
	if pauser == nil {
		pauser = TimerPauser{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scraper{
		cfg:       cfg,
		lister:    lister,
		extractor: extractor,
		sinks:     sinks,
		pauser:    pauser,
		logger:    logger,
	}
}

// Collect walks the listing until a page yields no links and returns the
// records that extracted successfully, in discovery order. Cancellation
// stops the walk and returns what was gathered so far with ctx's error.
func (s *Scraper) Collect(ctx context.Context) ([]animal.Record, Summary, error) {
	summary := Summary{Failures: make(map[Reason]int)}
	var records []animal.Record
	fetched := 0

	for page := s.cfg.StartPage; ; page++ {
		if s.cfg.MaxPages > 0 && summary.Pages >= s.cfg.MaxPages {
			s.logger.Info("Page limit reached", zap.Int("max_pages", s.cfg.MaxPages))
			break
		}
		if err := ctx.Err(); err != nil {
			summary.Records = len(records)
			return records, summary, fmt.Errorf("scrape canceled: %w", err)
		}

		s.logger.Info("Scraping page", zap.Int("page", page))
		links := s.lister.Links(ctx, page)
		if len(links) == 0 {
			break
		}
		summary.Pages++
		summary.Links += len(links)

		for _, link := range links {
			if fetched > 0 {
				s.pauser.Pause(ctx, s.cfg.Delay)
			}
			if err := ctx.Err(); err != nil {
				summary.Records = len(records)
				return records, summary, fmt.Errorf("scrape canceled: %w", err)
			}
			fetched++

			if rec, ok := s.scrapeOne(ctx, link, &summary); ok {
				records = append(records, rec)
			}
		}
	}

	summary.Records = len(records)
	if err := ctx.Err(); err != nil {
		return records, summary, fmt.Errorf("scrape canceled: %w", err)
	}
	return records, summary, nil
}

func (s *Scraper) scrapeOne(ctx context.Context, link string, summary *Summary) (animal.Record, bool) {
	logger := s.logger.With(zap.String("url", link))
	logger.Info("Scraping animal")

	start := time.Now()
	res, err := s.extractor.Extract(ctx, link)
	elapsed := time.Since(start)
	if err != nil {
		var extractErr *ExtractError
		reason := ReasonUnexpectedMarkup
		if errors.As(err, &extractErr) {
			reason = extractErr.Reason
		}
		summary.Failures[reason]++
		metrics.ObserveRecord(string(reason), elapsed)
		logger.Warn("Discarding animal record", zap.String("reason", string(reason)), zap.Error(err))
		return nil, false
	}

	metrics.ObserveRecord(metrics.StatusOK, elapsed)
	for _, f := range res.Missing {
		metrics.ObserveMissingField(string(f))
	}
	if !res.Complete() {
		logger.Debug("Fields fell back to sentinel", zap.Any("missing", res.Missing))
	}
	return res.Record, true
}

// Run collects records and hands them to every sink. Records gathered
// before a cancellation are still persisted.
func (s *Scraper) Run(ctx context.Context) (Summary, error) {
	records, summary, collectErr := s.Collect(ctx)

	// Persist with a context that survives the cancellation of the walk.
	saveCtx := context.WithoutCancel(ctx)
	for _, sink := range s.sinks {
		if err := sink.SaveRecords(saveCtx, records); err != nil {
			return summary, fmt.Errorf("save records: %w", err)
		}
	}

	s.logger.Info("Scraping complete",
		zap.Int("pages", summary.Pages),
		zap.Int("links", summary.Links),
		zap.Int("records", summary.Records),
		zap.Any("failures", summary.Failures),
	)
	return summary, collectErr
}
