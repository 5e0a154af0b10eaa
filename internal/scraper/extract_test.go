package scraper

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/zoocards/internal/animal"
)

const lionURL = "https://zoo.example.com/animals/lion"

const lionHTML = `<html><body>
<div class="hero">
  <h1 class="animal-name">  Asiatic   lion </h1>
  <p class="scientific-name">Panthera leo persica</p>
  <picture><img src="/img/lion-small.jpg" srcset="/img/lion-400.jpg 400w, /img/lion-800.jpg 800w, /img/lion-1600.jpg 1600w"></picture>
</div>
<dl class="facts">
  <dt>Area of zoo</dt><dd>Land of the Lions</dd>
  <dt>IUCN status</dt><dd>Endangered</dd>
  <dt>Order</dt><dd>Carnivora</dd>
  <dt>Family</dt><dd>Felidae</dd>
  <dt>Region</dt><dd>Gir Forest, India</dd>
</dl>
<p><strong>Habitat:</strong> Dry deciduous forest</p>
<div class="animal-content">
  <p>Asiatic lions are slightly smaller than African lions.</p>
  <h2>What do they look like?</h2>
  <p>Males have a shorter mane.</p>
  <p>They have a belly fold.</p>
  <h2>What do they eat?</h2>
  <p>Deer and antelope.</p>
  <h2>What threats do they face?</h2>
  <p>Habitat loss.</p>
  <h2>Did you know?</h2>
  <p>Lions sleep for up to 20 hours a day. A roar carries 8km. Prides share cubs.</p>
  <h3>More facts</h3>
  <div><p>Cubs are spotted. Lions are social. This one is dropped.</p></div>
</div>
</body></html>`

func newTestExtractor(t *testing.T, fetcher Fetcher) *Extractor {
	t.Helper()
	if fetcher == nil {
		fetcher = new(MockFetcher)
	}
	e, err := NewExtractor(ExtractorConfig{}, fetcher, nil)
	require.NoError(t, err)
	return e
}

func TestExtractFullRecord(t *testing.T) {
	t.Parallel()

	fetcher := new(MockFetcher)
	fetcher.On("Fetch", mock.Anything, lionURL).Return(htmlPage(lionURL, lionHTML), nil)

	res, err := newTestExtractor(t, fetcher).Extract(context.Background(), lionURL)
	require.NoError(t, err)
	r := res.Record

	assert.Equal(t, "Asiatic lion", r.Get(animal.FieldName))
	assert.Equal(t, "Panthera leo persica", r.Get(animal.FieldScientificName))
	assert.Equal(t, "Asiatic lions are slightly smaller than African lions.", r.Get(animal.FieldDescription))
	assert.Equal(t, lionURL, r.Get(animal.FieldURL))
	assert.Equal(t, "https://zoo.example.com/img/lion-1600.jpg", r.Get(animal.FieldImageURL))
	assert.Equal(t, "Land of the Lions", r.Get(animal.FieldAreaOfZoo))
	assert.Equal(t, "Endangered", r.Get(animal.FieldIUCNStatus))
	assert.Equal(t, "Carnivora", r.Get(animal.FieldOrder))
	assert.Equal(t, "Felidae", r.Get(animal.FieldFamily))
	assert.Equal(t, "Gir Forest, India", r.Get(animal.FieldRegion))
	assert.Equal(t, "Dry deciduous forest", r.Get(animal.FieldHabitat))

	assert.Equal(t, "Males have a shorter mane. They have a belly fold.", r.Get(animal.FieldAppearance))
	assert.Equal(t, "Deer and antelope.", r.Get(animal.FieldDiet))
	assert.Equal(t, "Habitat loss.", r.Get(animal.FieldThreats))

	assert.Equal(t, "Lions sleep for up to 20 hours a day.", r.Get(animal.FieldFact1))
	assert.Equal(t, "A roar carries 8km.", r.Get(animal.FieldFact2))
	assert.Equal(t, "Prides share cubs.", r.Get(animal.FieldFact3))
	assert.Equal(t, "Cubs are spotted.", r.Get(animal.FieldFact4))
	assert.Equal(t, "Lions are social.", r.Get(animal.FieldFact5))

	assert.Equal(t, []animal.Field{animal.FieldEnclosureStatus}, res.Missing)
	assert.Equal(t, animal.SentinelUnknown, r.Get(animal.FieldEnclosureStatus))
	assert.False(t, res.Complete())
}

func TestExtractSentinelsNeverWhitespace(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<html><body><h1>Okapi</h1><dl><dt>Order</dt><dd>   </dd></dl><div class="animal-content"><h2>What do they eat?</h2><p> </p></div></body></html>`)
	res, err := newTestExtractor(t, nil).ExtractDocument("https://zoo.example.com/animals/okapi", doc)
	require.NoError(t, err)

	for _, f := range animal.Fields {
		v := res.Record.Get(f)
		if v == animal.Sentinel(f) {
			continue
		}
		assert.NotEmpty(t, strings.TrimSpace(v), "field %q", f)
		assert.Equal(t, strings.TrimSpace(v), v, "field %q not trimmed", f)
	}
	assert.Equal(t, "Okapi", res.Record.Get(animal.FieldName))
	assert.Equal(t, animal.SentinelUnknown, res.Record.Get(animal.FieldOrder))
	assert.Equal(t, animal.SentinelNA, res.Record.Get(animal.FieldDescription))
	assert.Equal(t, "", res.Record.Get(animal.FieldDiet))
}

func TestExtractImageFallsBackToSrc(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<html><body><div class="hero"><h1>Tapir</h1><img src="https://cdn.example.com/tapir.jpg"></div></body></html>`)
	res, err := newTestExtractor(t, nil).ExtractDocument("https://zoo.example.com/animals/tapir", doc)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/tapir.jpg", res.Record.Get(animal.FieldImageURL))
}

func TestExtractThreatHeadingIsNotDiet(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<html><body><h1>Pangolin</h1><main>
<h2>Threats</h2><p>Poaching.</p>
<h2>Eating habits</h2><p>Ants.</p>
</main></body></html>`)
	res, err := newTestExtractor(t, nil).ExtractDocument("https://zoo.example.com/animals/pangolin", doc)
	require.NoError(t, err)
	assert.Equal(t, "Poaching.", res.Record.Get(animal.FieldThreats))
	assert.Equal(t, "Ants.", res.Record.Get(animal.FieldDiet))
	assert.Equal(t, "", res.Record.Get(animal.FieldFact1))
}

func TestExtractFailures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		page     Page
		fetchErr error
		reason   Reason
		sentinel error
	}{
		{"unreachable", Page{}, errors.New("dial tcp: refused"), ReasonUnreachable, ErrUnreachable},
		{"http status", Page{URL: lionURL, StatusCode: 404}, nil, ReasonHTTPStatus, ErrHTTPStatus},
		{"unexpected markup", htmlPage(lionURL, `<html><body><div class="cookie-wall">Accept?</div></body></html>`), nil, ReasonUnexpectedMarkup, ErrUnexpectedMarkup},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := new(MockFetcher)
			fetcher.On("Fetch", mock.Anything, lionURL).Return(tc.page, tc.fetchErr)

			_, err := newTestExtractor(t, fetcher).Extract(context.Background(), lionURL)
			require.Error(t, err)
			var extractErr *ExtractError
			require.True(t, errors.As(err, &extractErr))
			assert.Equal(t, tc.reason, extractErr.Reason)
			assert.Equal(t, lionURL, extractErr.URL)
			assert.True(t, errors.Is(err, tc.sentinel))
		})
	}
}

func TestExtractRecoversStrategyPanic(t *testing.T) {
	t.Parallel()

	e, err := NewExtractor(ExtractorConfig{
		Rules: []FieldRule{{Field: animal.FieldName, Strategies: []Strategy{panicStrategy{}}}},
	}, new(MockFetcher), nil)
	require.NoError(t, err)

	_, err = e.ExtractDocument(lionURL, mustDoc(t, lionHTML))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnexpectedMarkup))
}

type panicStrategy struct{}

func (panicStrategy) Lookup(*goquery.Document, *url.URL) string {
	panic("selector exploded")
}

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestLabelNamesArePriorityOrdered(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		body  string
		field animal.Field
		want  string
	}{
		{
			name:  "weak alias label before region",
			body:  `<dl><dt>Size range</dt><dd>2-3m</dd><dt>Native region</dt><dd>Asia</dd></dl>`,
			field: animal.FieldRegion,
			want:  "Asia",
		},
		{
			name:  "alias used when primary label absent",
			body:  `<dl><dt>Size</dt><dd>2-3m</dd><dt>Native to</dt><dd>Borneo</dd></dl>`,
			field: animal.FieldRegion,
			want:  "Borneo",
		},
		{
			name:  "order is a whole word",
			body:  `<dl><dt>Border habitat</dt><dd>Scrub</dd><dt>Order</dt><dd>Carnivora</dd></dl>`,
			field: animal.FieldOrder,
			want:  "Carnivora",
		},
		{
			name:  "no partial word match",
			body:  `<dl><dt>Borders</dt><dd>Scrub</dd></dl>`,
			field: animal.FieldOrder,
			want:  animal.SentinelUnknown,
		},
		{
			name:  "enclosure status beats looser enclosure label",
			body:  `<dl><dt>Enclosure size</dt><dd>Large</dd><dt>Enclosure status</dt><dd>Open</dd></dl>`,
			field: animal.FieldEnclosureStatus,
			want:  "Open",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			doc := mustDoc(t, `<html><body><h1>Tiger</h1>`+tt.body+`</body></html>`)
			res, err := newTestExtractor(t, nil).ExtractDocument("https://zoo.example.com/animals/tiger", doc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, res.Record.Get(tt.field))
		})
	}
}

func TestDescriptionIgnoresSectionParagraphs(t *testing.T) {
	t.Parallel()

	doc := mustDoc(t, `<html><body><h1>Zebra</h1><div class="animal-content">
<h2>What do they look like?</h2><p>Stripes.</p>
</div></body></html>`)
	res, err := newTestExtractor(t, nil).ExtractDocument("https://zoo.example.com/animals/zebra", doc)
	require.NoError(t, err)
	assert.Equal(t, animal.SentinelNA, res.Record.Get(animal.FieldDescription))
	assert.Equal(t, "Stripes.", res.Record.Get(animal.FieldAppearance))
	assert.Contains(t, res.Missing, animal.FieldDescription)

	doc = mustDoc(t, `<html><body><h1>Zebra</h1><div class="animal-content">
<p> </p><p>Zebras live in herds.</p>
<h2>What do they look like?</h2><p>Stripes.</p>
</div></body></html>`)
	res, err = newTestExtractor(t, nil).ExtractDocument("https://zoo.example.com/animals/zebra", doc)
	require.NoError(t, err)
	assert.Equal(t, "Zebras live in herds.", res.Record.Get(animal.FieldDescription))
}
