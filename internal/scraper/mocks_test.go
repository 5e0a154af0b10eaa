package scraper

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/JakeFAU/zoocards/internal/animal"
)

// MockFetcher is a mock implementation of the Fetcher interface.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, rawURL string) (Page, error) {
	args := m.Called(ctx, rawURL)
	return args.Get(0).(Page), args.Error(1)
}

// MockRecordSink is a mock implementation of the RecordSink interface.
type MockRecordSink struct {
	mock.Mock
}

func (m *MockRecordSink) SaveRecords(ctx context.Context, records []animal.Record) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

// countingPauser records requested pauses without sleeping.
type countingPauser struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (p *countingPauser) Pause(_ context.Context, delay time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.delays = append(p.delays, delay)
}

func (p *countingPauser) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.delays)
}

func htmlPage(rawURL, body string) Page {
	return Page{URL: rawURL, FinalURL: rawURL, StatusCode: 200, Body: []byte(body)}
}
