package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/JakeFAU/zoocards/internal/metrics"
)

// Default listing selectors.
const (
	DefaultListingContainer = ".view-content"
	DefaultListingItem      = ".views-row"
	DefaultListingLink      = "a[href]"
)

// ListerConfig describes where the listing lives and how it is marked up.
type ListerConfig struct {
	BaseURL     string
	ListingPath string
	PageParam   string
	Container   string
	Item        string
	Link        string
}

// Lister discovers animal page URLs one listing page at a time.
type Lister struct {
	cfg     ListerConfig
	base    *url.URL
	fetcher Fetcher
	logger  *zap.Logger
}

// NewLister validates cfg and returns a Lister.
func NewLister(cfg ListerConfig, fetcher Fetcher, logger *zap.Logger) (*Lister, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	base, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", cfg.BaseURL)
	}
	if cfg.PageParam == "" {
		cfg.PageParam = "page"
	}
	if cfg.Container == "" {
		cfg.Container = DefaultListingContainer
	}
	if cfg.Item == "" {
		cfg.Item = DefaultListingItem
	}
	if cfg.Link == "" {
		cfg.Link = DefaultListingLink
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Lister{cfg: cfg, base: base, fetcher: fetcher, logger: logger}, nil
}

// PageURL returns the listing URL for page. Page 1 is the bare listing path;
// later pages carry the page query parameter.
func (l *Lister) PageURL(page int) string {
	ref := &url.URL{Path: l.cfg.ListingPath}
	if page > 1 {
		ref.RawQuery = url.Values{l.cfg.PageParam: {strconv.Itoa(page)}}.Encode()
	}
	return l.base.ResolveReference(ref).String()
}

// Links returns the animal URLs on the given listing page, in page order.
// Any failure is logged and yields an empty slice, which callers treat as
// the end of the listing.
func (l *Lister) Links(ctx context.Context, page int) []string {
	if page < 1 {
		return nil
	}
	pageURL := l.PageURL(page)
	logger := l.logger.With(zap.Int("page", page), zap.String("url", pageURL))

	resp, err := l.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		logger.Warn("Listing page fetch failed", zap.Error(err))
		metrics.ObserveListingPage(metrics.StatusError)
		return nil
	}
	if !resp.OK() {
		logger.Warn("Listing page returned non-success status", zap.Int("status_code", resp.StatusCode))
		metrics.ObserveListingPage(metrics.StatusHTTP)
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		logger.Warn("Listing page could not be parsed", zap.Error(err))
		metrics.ObserveListingPage(metrics.StatusMarkup)
		return nil
	}
	links := l.extractLinks(doc, resp.FinalURL)
	if links == nil {
		logger.Info("Listing container not found")
		metrics.ObserveListingPage(metrics.StatusMarkup)
		return nil
	}
	metrics.ObserveListingPage(metrics.StatusOK)
	return links
}

// extractLinks returns nil when the listing container is absent.
func (l *Lister) extractLinks(doc *goquery.Document, pageURL string) []string {
	container := doc.Find(l.cfg.Container)
	if container.Length() == 0 {
		return nil
	}
	base := l.base
	if parsed, err := url.Parse(pageURL); err == nil && parsed.IsAbs() {
		base = parsed
	}

	links := []string{}
	container.Find(l.cfg.Item).Each(func(_ int, item *goquery.Selection) {
		href, ok := item.Find(l.cfg.Link).First().Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" {
			return
		}
		abs, err := absoluteURL(base, href)
		if err != nil {
			l.logger.Debug("Skipping unparseable listing link", zap.String("href", href), zap.Error(err))
			return
		}
		links = append(links, abs)
	})
	return links
}

func absoluteURL(base *url.URL, href string) (string, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("parse href: %w", err)
	}
	return base.ResolveReference(ref).String(), nil
}
