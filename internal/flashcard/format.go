// Package flashcard renders animal records as Quizlet import text.
//
// Two line formats exist and are not interchangeable. FormatQuizlet is the
// default and matches what the study tool imports with "," between term and
// definition and ";" between cards. FormatLabelled is a human-readable
// variant. A run picks exactly one.
package flashcard

import (
	"fmt"
	"strings"

	"github.com/JakeFAU/zoocards/internal/animal"
)

// Format names a flashcard line format.
type Format string

// Supported formats.
const (
	FormatQuizlet  Format = "quizlet"
	FormatLabelled Format = "labelled"
)

// CardFields is the ordered list of fields turned into cards. The name is
// the prefix of every card; url and image_url are never carded.
var CardFields = []animal.Field{
	animal.FieldScientificName,
	animal.FieldAppearance,
	animal.FieldDiet,
	animal.FieldThreats,
	animal.FieldAreaOfZoo,
	animal.FieldEnclosureStatus,
	animal.FieldIUCNStatus,
	animal.FieldOrder,
	animal.FieldFamily,
	animal.FieldRegion,
	animal.FieldHabitat,
	animal.FieldFact1,
	animal.FieldFact2,
	animal.FieldFact3,
	animal.FieldFact4,
	animal.FieldFact5,
}

// Formatter renders records in one format.
type Formatter struct {
	format Format
	// SkipSentinels also omits values equal to the field's placeholder.
	SkipSentinels bool
}

// New returns a Formatter for format.
func New(format Format) (*Formatter, error) {
	switch format {
	case FormatQuizlet, FormatLabelled:
		return &Formatter{format: format}, nil
	case "":
		return &Formatter{format: FormatQuizlet}, nil
	default:
		return nil, fmt.Errorf("unknown flashcard format %q", format)
	}
}

// Format returns the formatter's line format.
func (f *Formatter) Format() Format {
	return f.format
}

// RecordSeparator joins consecutive rendered records.
func (f *Formatter) RecordSeparator() string {
	if f.format == FormatLabelled {
		return " \n"
	}
	return "\n"
}

// Line renders one record. It returns "" when the record has no cards.
func (f *Formatter) Line(r animal.Record) string {
	name := r.Name()
	var cards []string
	for _, field := range CardFields {
		value := strings.TrimSpace(r.Get(field))
		if value == "" {
			continue
		}
		if f.SkipSentinels && value == animal.Sentinel(field) {
			continue
		}
		cards = append(cards, f.card(name, field, value))
	}
	if len(cards) == 0 {
		return ""
	}

	if f.format == FormatLabelled {
		line := strings.TrimSuffix(strings.Join(cards, "; "), "; ")
		return strings.TrimSuffix(line, ";") + ";"
	}
	return strings.Join(cards, ";")
}

func (f *Formatter) card(name string, field animal.Field, value string) string {
	if f.format == FormatLabelled {
		return fmt.Sprintf("%s (%s): %s", name, animal.Label(field), value)
	}
	return fmt.Sprintf("%s %s,%s", name, animal.Label(field), value)
}

// Render renders every record with cards, joined by the record separator.
func (f *Formatter) Render(records []animal.Record) string {
	lines := make([]string, 0, len(records))
	for _, r := range records {
		if line := f.Line(r); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, f.RecordSeparator())
}
