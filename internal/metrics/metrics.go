// Package metrics exposes Prometheus collectors for scrape and convert runs.
package metrics

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels shared by the collectors.
const (
	StatusOK     = "ok"
	StatusError  = "error"
	StatusHTTP   = "http_status"
	StatusMarkup = "unexpected_markup"
)

var (
	listingPagesTotal     *prometheus.CounterVec
	recordsTotal          *prometheus.CounterVec
	recordFetchSeconds    prometheus.Histogram
	missingFieldsTotal    *prometheus.CounterVec
	flashcardLinesTotal   prometheus.Counter
	recordsPersistedTotal *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		listingPagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zoocards_listing_pages_total",
				Help: "Listing pages fetched, labeled by outcome.",
			},
			[]string{"status"},
		)

		recordsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zoocards_records_total",
				Help: "Animal pages processed, labeled by outcome.",
			},
			[]string{"status"},
		)

		recordFetchSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "zoocards_record_fetch_seconds",
				Help:    "Histogram of animal page fetch and extraction latency.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
		)

		missingFieldsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zoocards_missing_fields_total",
				Help: "Fields that fell back to their sentinel, labeled by field.",
			},
			[]string{"field"},
		)

		flashcardLinesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "zoocards_flashcard_lines_total",
				Help: "Flashcard lines written by the convert pass.",
			},
		)

		recordsPersistedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zoocards_records_persisted_total",
				Help: "Records handed to a sink, labeled by sink.",
			},
			[]string{"sink"},
		)
	})
}

// ObserveListingPage counts one listing page fetch.
func ObserveListingPage(status string) {
	Init()
	listingPagesTotal.WithLabelValues(status).Inc()
}

// ObserveRecord counts one animal page and its latency.
func ObserveRecord(status string, duration time.Duration) {
	Init()
	recordsTotal.WithLabelValues(status).Inc()
	recordFetchSeconds.Observe(duration.Seconds())
}

// ObserveMissingField counts a field that fell back to its sentinel.
func ObserveMissingField(field string) {
	Init()
	missingFieldsTotal.WithLabelValues(sanitizeLabel(field)).Inc()
}

// ObserveFlashcardLines adds n written flashcard lines.
func ObserveFlashcardLines(n int) {
	Init()
	if n > 0 {
		flashcardLinesTotal.Add(float64(n))
	}
}

// ObservePersisted adds n records saved by sink.
func ObservePersisted(sink string, n int) {
	Init()
	if n > 0 {
		recordsPersistedTotal.WithLabelValues(sink).Add(float64(n))
	}
}

// WriteTextfile dumps the default registry in the node-exporter textfile
// format. An empty path is a no-op.
func WriteTextfile(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	Init()
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

func sanitizeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "unknown"
	}
	return strings.ReplaceAll(s, " ", "_")
}
