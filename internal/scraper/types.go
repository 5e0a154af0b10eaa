package scraper

import (
	"context"
	"net/http"

	"github.com/JakeFAU/zoocards/internal/animal"
)

// Page is the raw result of a single GET.
type Page struct {
	URL        string
	FinalURL   string
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// OK reports whether the page came back with a 2xx status.
func (p Page) OK() bool {
	return p.StatusCode >= 200 && p.StatusCode < 300
}

// Fetcher fetches a URL. Any HTTP response, including non-2xx, is returned
// as a Page; the error is reserved for transport failures.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (Page, error)
}

// RecordSink persists the accumulated records of a run.
type RecordSink interface {
	SaveRecords(ctx context.Context, records []animal.Record) error
}
