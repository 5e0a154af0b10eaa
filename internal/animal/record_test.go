package animal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFillsSentinels(t *testing.T) {
	t.Parallel()

	r := New("https://example.com/animals/lion")
	require.Len(t, r, len(Fields))
	assert.Equal(t, "https://example.com/animals/lion", r.Get(FieldURL))
	assert.Equal(t, SentinelUnknown, r.Get(FieldName))
	assert.Equal(t, SentinelUnknown, r.Get(FieldHabitat))
	assert.Equal(t, SentinelNA, r.Get(FieldDescription))
	assert.Equal(t, "", r.Get(FieldDiet))
	assert.Equal(t, "", r.Get(FieldFact3))
}

func TestSetCleansAndFallsBack(t *testing.T) {
	t.Parallel()

	r := New("u")
	assert.True(t, r.Set(FieldName, "  African \n  lion\t"))
	assert.Equal(t, "African lion", r.Get(FieldName))

	assert.False(t, r.Set(FieldOrder, " \n\t "))
	assert.Equal(t, SentinelUnknown, r.Get(FieldOrder))
	assert.True(t, r.IsSentinel(FieldOrder))
}

func TestLabel(t *testing.T) {
	t.Parallel()

	cases := map[Field]string{
		FieldDiet:            "Diet",
		FieldScientificName:  "Scientific Name",
		FieldIUCNStatus:      "Iucn Status",
		FieldEnclosureStatus: "Enclosure Status",
		FieldFact1:           "Fact 1",
	}
	for field, want := range cases {
		assert.Equal(t, want, Label(field), "label for %q", field)
	}
}

func TestRowMatchesHeader(t *testing.T) {
	t.Parallel()

	r := New("u")
	r.Set(FieldFamily, "Felidae")
	row := r.Row()
	header := Header()
	require.Len(t, row, len(header))
	for i, col := range header {
		assert.Equal(t, r[Field(col)], row[i])
	}
	assert.Equal(t, "name", header[0])
	assert.Equal(t, "Fact 5", header[len(header)-1])
}
