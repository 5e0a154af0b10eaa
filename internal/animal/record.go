// Package animal defines the record extracted for each animal page and the
// fixed field vocabulary shared by the scraper, the CSV store and the
// flashcard formatter.
package animal

import (
	"strings"
	"unicode"
)

// Field names a column of a Record.
type Field string

// Field vocabulary, in CSV column order.
const (
	FieldName            Field = "name"
	FieldScientificName  Field = "scientific_name"
	FieldDescription     Field = "description"
	FieldAppearance      Field = "appearance"
	FieldDiet            Field = "diet"
	FieldThreats         Field = "threats"
	FieldURL             Field = "url"
	FieldImageURL        Field = "image_url"
	FieldAreaOfZoo       Field = "area_of_zoo"
	FieldEnclosureStatus Field = "enclosure_status"
	FieldIUCNStatus      Field = "iucn_status"
	FieldOrder           Field = "order"
	FieldFamily          Field = "family"
	FieldRegion          Field = "region"
	FieldHabitat         Field = "habitat"
	FieldFact1           Field = "Fact 1"
	FieldFact2           Field = "Fact 2"
	FieldFact3           Field = "Fact 3"
	FieldFact4           Field = "Fact 4"
	FieldFact5           Field = "Fact 5"
)

// Sentinel values stand in for fields that could not be located.
const (
	SentinelUnknown = "Unknown"
	SentinelNA      = "N/A"
)

// MaxFacts is the number of Fact columns a Record carries.
const MaxFacts = 5

// Fields lists the full vocabulary in column order.
var Fields = []Field{
	FieldName,
	FieldScientificName,
	FieldDescription,
	FieldAppearance,
	FieldDiet,
	FieldThreats,
	FieldURL,
	FieldImageURL,
	FieldAreaOfZoo,
	FieldEnclosureStatus,
	FieldIUCNStatus,
	FieldOrder,
	FieldFamily,
	FieldRegion,
	FieldHabitat,
	FieldFact1,
	FieldFact2,
	FieldFact3,
	FieldFact4,
	FieldFact5,
}

// FactFields holds the numbered fact columns.
var FactFields = []Field{FieldFact1, FieldFact2, FieldFact3, FieldFact4, FieldFact5}

// Sentinel returns the placeholder used for f when no value was found.
func Sentinel(f Field) string {
	switch f {
	case FieldName, FieldScientificName, FieldAreaOfZoo, FieldEnclosureStatus,
		FieldIUCNStatus, FieldOrder, FieldFamily, FieldRegion, FieldHabitat:
		return SentinelUnknown
	case FieldDescription:
		return SentinelNA
	default:
		return ""
	}
}

// Label renders a field for display: underscores become spaces and each
// word is title-cased, so iucn_status reads "Iucn Status".
func Label(f Field) string {
	words := strings.Fields(strings.ReplaceAll(string(f), "_", " "))
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// Record is a flat mapping from field name to value.
type Record map[Field]string

// New returns a record for url with every field set to its sentinel.
func New(url string) Record {
	r := make(Record, len(Fields))
	for _, f := range Fields {
		r[f] = Sentinel(f)
	}
	r[FieldURL] = url
	return r
}

// Get returns the value of f, or "" when unset.
func (r Record) Get(f Field) string {
	return r[f]
}

// Set stores the cleaned value of f. Whitespace-only values fall back to the
// field's sentinel. It reports whether a real value was stored.
func (r Record) Set(f Field, value string) bool {
	value = Clean(value)
	if value == "" {
		r[f] = Sentinel(f)
		return false
	}
	r[f] = value
	return true
}

// IsSentinel reports whether the value of f is its placeholder.
func (r Record) IsSentinel(f Field) bool {
	return r[f] == Sentinel(f)
}

// Name returns the record's trimmed name.
func (r Record) Name() string {
	return strings.TrimSpace(r[FieldName])
}

// Row returns the values in column order.
func (r Record) Row() []string {
	row := make([]string, len(Fields))
	for i, f := range Fields {
		row[i] = r[f]
	}
	return row
}

// Header returns the column names in order.
func Header() []string {
	header := make([]string, len(Fields))
	for i, f := range Fields {
		header[i] = string(f)
	}
	return header
}

// Clean collapses internal whitespace runs to single spaces and trims.
func Clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
