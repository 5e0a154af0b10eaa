package scraper

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/JakeFAU/zoocards/internal/animal"
)

// SectionRoute sends the text of a headed section to Field when the heading
// matches Pattern.
type SectionRoute struct {
	Field   animal.Field
	Pattern *regexp.Regexp
}

// DefaultSectionRoutes routes question-style headings. Threats is checked
// before diet because "threat" contains "eat". The diet pattern matches any
// word starting with "eat", so "Eating habits" is diet too.
func DefaultSectionRoutes() []SectionRoute {
	return []SectionRoute{
		{Field: animal.FieldThreats, Pattern: regexp.MustCompile(`(?i)threat`)},
		{Field: animal.FieldAppearance, Pattern: regexp.MustCompile(`(?i)looks?\s+like`)},
		{Field: animal.FieldDiet, Pattern: regexp.MustCompile(`(?i)\beat`)},
	}
}

// Default selectors for free-text sections.
var (
	DefaultContentRoots    = []string{".animal-content", "main", "body"}
	DefaultHeadingSelector = "h2, h3"
)

// ExtractorConfig tunes the Extractor. Zero values select the defaults.
type ExtractorConfig struct {
	Rules           []FieldRule
	Routes          []SectionRoute
	ContentRoots    []string
	HeadingSelector string
	MaxFacts        int
}

// Extractor turns an animal page into a Result.
type Extractor struct {
	cfg     ExtractorConfig
	fetcher Fetcher
	logger  *zap.Logger
}

// NewExtractor returns an Extractor backed by fetcher.
func NewExtractor(cfg ExtractorConfig, fetcher Fetcher, logger *zap.Logger) (*Extractor, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher is required")
	}
	if cfg.Rules == nil {
		cfg.Rules = DefaultFieldRules()
	}
	if cfg.Routes == nil {
		cfg.Routes = DefaultSectionRoutes()
	}
	if len(cfg.ContentRoots) == 0 {
		cfg.ContentRoots = DefaultContentRoots
	}
	if cfg.HeadingSelector == "" {
		cfg.HeadingSelector = DefaultHeadingSelector
	}
	if cfg.MaxFacts <= 0 || cfg.MaxFacts > animal.MaxFacts {
		cfg.MaxFacts = animal.MaxFacts
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{cfg: cfg, fetcher: fetcher, logger: logger}, nil
}

// Extract fetches rawURL and extracts its record. Failures are returned as
// an *ExtractError.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (Result, error) {
	page, err := e.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return Result{}, &ExtractError{URL: rawURL, Reason: ReasonUnreachable, Err: err}
	}
	if !page.OK() {
		return Result{}, &ExtractError{URL: rawURL, Reason: ReasonHTTPStatus, StatusCode: page.StatusCode, Err: ErrHTTPStatus}
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return Result{}, &ExtractError{URL: rawURL, Reason: ReasonUnexpectedMarkup, Err: fmt.Errorf("parse html: %w", err)}
	}
	return e.ExtractDocument(rawURL, doc)
}

// ExtractDocument runs the field table and section routing over a parsed
// page. The record's url is rawURL.
func (e *Extractor) ExtractDocument(rawURL string, doc *goquery.Document) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{}
			err = &ExtractError{URL: rawURL, Reason: ReasonUnexpectedMarkup, Err: fmt.Errorf("extraction panic: %v", r)}
		}
	}()

	pageURL, _ := url.Parse(rawURL)
	record := animal.New(rawURL)
	var missing []animal.Field
	found := 0

	for _, rule := range e.cfg.Rules {
		if lookupRule(rule, doc, pageURL, record) {
			found++
			continue
		}
		missing = append(missing, rule.Field)
	}

	routed, facts := e.collectSections(doc)
	for _, route := range e.cfg.Routes {
		if record.Set(route.Field, routed[route.Field]) {
			found++
		}
	}
	for i, fact := range facts {
		record.Set(animal.FactFields[i], fact)
		found++
	}

	if found == 0 {
		return Result{}, &ExtractError{URL: rawURL, Reason: ReasonUnexpectedMarkup, Err: ErrUnexpectedMarkup}
	}
	return Result{Record: record, Missing: missing}, nil
}

func lookupRule(rule FieldRule, doc *goquery.Document, pageURL *url.URL, record animal.Record) bool {
	for _, strategy := range rule.Strategies {
		if record.Set(rule.Field, strategy.Lookup(doc, pageURL)) {
			return true
		}
	}
	return false
}

// collectSections walks every heading under the content root. Text under a
// routed heading is joined per field; all other section text feeds the fact
// accumulator.
func (e *Extractor) collectSections(doc *goquery.Document) (map[animal.Field]string, []string) {
	root := e.contentRoot(doc)
	routed := make(map[animal.Field]string)
	facts := newFactAccumulator(e.cfg.MaxFacts)
	if root == nil {
		return routed, facts.facts
	}

	root.Find(e.cfg.HeadingSelector).Each(func(_ int, heading *goquery.Selection) {
		text := sectionText(heading, e.cfg.HeadingSelector)
		if text == "" {
			return
		}
		title := animal.Clean(heading.Text())
		for _, route := range e.cfg.Routes {
			if route.Pattern.MatchString(title) {
				routed[route.Field] = strings.TrimSpace(routed[route.Field] + " " + text)
				return
			}
		}
		facts.add(text)
	})
	return routed, facts.facts
}

func (e *Extractor) contentRoot(doc *goquery.Document) *goquery.Selection {
	for _, sel := range e.cfg.ContentRoots {
		if root := doc.Find(sel).First(); root.Length() > 0 {
			return root
		}
	}
	return nil
}

// sectionText joins the paragraphs between heading and the next heading.
func sectionText(heading *goquery.Selection, headingSelector string) string {
	var parts []string
	heading.NextUntil(headingSelector).Each(func(_ int, sibling *goquery.Selection) {
		paragraphs := sibling.Filter("p")
		if paragraphs.Length() == 0 {
			paragraphs = sibling.Find("p")
		}
		paragraphs.Each(func(_ int, p *goquery.Selection) {
			if text := animal.Clean(p.Text()); text != "" {
				parts = append(parts, text)
			}
		})
	})
	return strings.Join(parts, " ")
}
