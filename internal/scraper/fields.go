package scraper

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/zoocards/internal/animal"
)

// Strategy locates the value of one field in a parsed page. It returns ""
// when nothing usable was found.
type Strategy interface {
	Lookup(doc *goquery.Document, pageURL *url.URL) string
}

// FieldRule binds a field to an ordered list of strategies; the first one
// that yields a non-empty value wins.
type FieldRule struct {
	Field      animal.Field
	Strategies []Strategy
}

// Selectors takes the text of the first matching element from an ordered
// selector list.
type Selectors []string

// Lookup implements Strategy.
func (s Selectors) Lookup(doc *goquery.Document, _ *url.URL) string {
	for _, sel := range s {
		var found string
		doc.Find(sel).EachWithBreak(func(_ int, node *goquery.Selection) bool {
			found = animal.Clean(node.Text())
			return found == ""
		})
		if found != "" {
			return found
		}
	}
	return ""
}

// DefaultLabelSelector matches the elements the site uses as field labels.
const DefaultLabelSelector = ".field-label, .label, dt, th, strong"

// Label finds a label element whose text contains one of Names and reads
// the value that follows it.
type Label struct {
	Names    []string
	Selector string
}

// Lookup implements Strategy. Names are tried in order and each must match
// a label as whole words, so an earlier name wins over a later one
// whichever label comes first on the page.
func (l Label) Lookup(doc *goquery.Document, _ *url.URL) string {
	selector := l.Selector
	if selector == "" {
		selector = DefaultLabelSelector
	}
	labels := doc.Find(selector)
	for _, name := range l.Names {
		pattern, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(strings.TrimSpace(name)) + `\b`)
		if err != nil {
			continue
		}
		var found string
		labels.EachWithBreak(func(_ int, node *goquery.Selection) bool {
			if !pattern.MatchString(animal.Clean(node.Text())) {
				return true
			}
			found = labelValue(node)
			return found == ""
		})
		if found != "" {
			return found
		}
	}
	return ""
}

// labelValue reads the next element sibling, falling back to the text the
// label shares with its parent ("<p><strong>Order</strong> Carnivora</p>").
func labelValue(label *goquery.Selection) string {
	if next := label.Next(); next.Length() > 0 {
		if v := animal.Clean(next.Text()); v != "" {
			return v
		}
	}
	parent := animal.Clean(label.Parent().Text())
	own := animal.Clean(label.Text())
	rest := strings.TrimSpace(strings.TrimPrefix(parent, own))
	return strings.TrimSpace(strings.TrimLeft(rest, ":"))
}

// LeadParagraph takes the first non-empty paragraph directly under Root
// that comes before the first heading, so section text is never used.
type LeadParagraph struct {
	Root            string
	HeadingSelector string
}

// Lookup implements Strategy.
func (l LeadParagraph) Lookup(doc *goquery.Document, _ *url.URL) string {
	headings := l.HeadingSelector
	if headings == "" {
		headings = DefaultHeadingSelector
	}
	var found string
	doc.Find(l.Root).First().Children().EachWithBreak(func(_ int, child *goquery.Selection) bool {
		if child.Is(headings) {
			return false
		}
		if child.Is("p") {
			found = animal.Clean(child.Text())
		}
		return found == ""
	})
	return found
}

// Image reads the largest srcset candidate of the first matching image,
// falling back to its src. The result is resolved against the page URL.
type Image struct {
	Selectors []string
}

// Lookup implements Strategy.
func (i Image) Lookup(doc *goquery.Document, pageURL *url.URL) string {
	for _, sel := range i.Selectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		raw := ""
		for _, attr := range []string{"srcset", "data-srcset"} {
			if srcset, ok := node.Attr(attr); ok {
				if raw = LargestImage(srcset); raw != "" {
					break
				}
			}
		}
		if raw == "" {
			raw, _ = node.Attr("src")
			raw = strings.TrimSpace(raw)
		}
		if raw == "" {
			continue
		}
		if pageURL == nil {
			return raw
		}
		abs, err := absoluteURL(pageURL, raw)
		if err != nil {
			return raw
		}
		return abs
	}
	return ""
}

// DefaultFieldRules is the extraction table for the zoo's animal pages.
// Selectors are ordered from the most specific markup to the loosest.
func DefaultFieldRules() []FieldRule {
	return []FieldRule{
		{Field: animal.FieldName, Strategies: []Strategy{
			Selectors{"h1.animal-name", ".hero h1", "h1"},
		}},
		{Field: animal.FieldScientificName, Strategies: []Strategy{
			Selectors{".scientific-name", ".hero .subtitle", ".hero em"},
			Label{Names: []string{"scientific name", "latin name"}},
		}},
		{Field: animal.FieldDescription, Strategies: []Strategy{
			Selectors{".animal-intro", ".hero .summary", ".field--name-body p"},
			LeadParagraph{Root: ".animal-content"},
		}},
		{Field: animal.FieldImageURL, Strategies: []Strategy{
			Image{Selectors: []string{".hero img", "picture img", "img.animal-image"}},
		}},
		{Field: animal.FieldAreaOfZoo, Strategies: []Strategy{
			Label{Names: []string{"area of zoo", "where to find", "zoo area"}},
		}},
		{Field: animal.FieldEnclosureStatus, Strategies: []Strategy{
			Label{Names: []string{"enclosure status", "enclosure"}},
		}},
		{Field: animal.FieldIUCNStatus, Strategies: []Strategy{
			Label{Names: []string{"iucn status", "conservation status", "iucn"}},
		}},
		{Field: animal.FieldOrder, Strategies: []Strategy{
			Label{Names: []string{"order"}},
		}},
		{Field: animal.FieldFamily, Strategies: []Strategy{
			Label{Names: []string{"family"}},
		}},
		{Field: animal.FieldRegion, Strategies: []Strategy{
			Label{Names: []string{"region", "native to", "range"}},
		}},
		{Field: animal.FieldHabitat, Strategies: []Strategy{
			Label{Names: []string{"habitat"}},
		}},
	}
}
