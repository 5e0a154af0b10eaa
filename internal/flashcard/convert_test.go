package flashcard

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/zoocards/internal/animal"
	"github.com/JakeFAU/zoocards/internal/storage/local"
)

func TestConvertFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "animals.csv")
	output := filepath.Join(dir, "cards", "quizlet_format.txt")

	store, err := local.New(local.Config{Path: input}, nil)
	require.NoError(t, err)

	lion := animal.New("https://zoo.example.com/lion")
	lion.Set(animal.FieldName, "Lion")
	lion.Set(animal.FieldDiet, "Meat")
	ghost := animal.Record{animal.FieldName: "Ghost", animal.FieldURL: "https://zoo.example.com/ghost"}
	okapi := animal.Record{animal.FieldName: "Okapi", animal.FieldRegion: "Congo"}
	require.NoError(t, store.SaveRecords(context.Background(), []animal.Record{lion, ghost, okapi}))

	f, err := New(FormatQuizlet)
	require.NoError(t, err)
	f.SkipSentinels = true

	n, err := NewConverter(f, nil).ConvertFile(context.Background(), input, output)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// #nosec G304 -- test reads from the controlled temp directory.
	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "Lion Diet,Meat\nOkapi Region,Congo\n", string(data))
}

func TestConvertFileMissingInput(t *testing.T) {
	f, err := New(FormatQuizlet)
	require.NoError(t, err)
	_, err = NewConverter(f, nil).ConvertFile(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), filepath.Join(t.TempDir(), "out.txt"))
	require.Error(t, err)
}

func TestWriteLabelled(t *testing.T) {
	f, err := New(FormatLabelled)
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := NewConverter(f, nil).Write(&buf, []animal.Record{lionDiet(), lionDiet()})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "Lion (Diet): Meat; \nLion (Diet): Meat; \n", buf.String())
}
