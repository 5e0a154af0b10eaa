// Package app_test contains unit tests for the app package.
package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/zoocards/internal/app"
	"github.com/JakeFAU/zoocards/internal/config"
	"github.com/JakeFAU/zoocards/internal/flashcard"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	dir := t.TempDir()
	cfg.Output.RecordsCSV = filepath.Join(dir, "animals.csv")
	cfg.Output.FlashcardsTxt = filepath.Join(dir, "cards.txt")
	cfg.Metrics.Textfile = filepath.Join(dir, "zoocards.prom")
	return cfg
}

func TestNewApp(t *testing.T) {
	cfg := testConfig(t)

	a, err := app.New(cfg, zap.NewNop(), "scrape")
	require.NoError(t, err)
	assert.NotEmpty(t, a.RunID())
	assert.NotNil(t, a.Logger())
	assert.Equal(t, cfg.Site.BaseURL, a.Config().Site.BaseURL)

	b, err := app.New(cfg, nil, "scrape")
	require.NoError(t, err)
	assert.NotEqual(t, a.RunID(), b.RunID())
}

func TestAppScraperWithoutDatabase(t *testing.T) {
	cfg := testConfig(t)
	a, err := app.New(cfg, zap.NewNop(), "scrape")
	require.NoError(t, err)

	s, err := a.Scraper(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, s)
}

func TestAppScraperInvalidDSN(t *testing.T) {
	cfg := testConfig(t)
	cfg.DB.DSN = "postgres://localhost:notaport/zoo"
	a, err := app.New(cfg, zap.NewNop(), "scrape")
	require.NoError(t, err)

	_, err = a.Scraper(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize database")
}

func TestAppConverter(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.FlashcardFormat = "labelled"
	a, err := app.New(cfg, zap.NewNop(), "convert")
	require.NoError(t, err)

	c, err := a.Converter()
	require.NoError(t, err)
	assert.NotNil(t, c)

	cfg.Output.FlashcardFormat = "anki"
	bad, err := app.New(cfg, zap.NewNop(), "convert")
	require.NoError(t, err)
	_, err = bad.Converter()
	require.Error(t, err)
	_, err = flashcard.New(flashcard.Format(cfg.Output.FlashcardFormat))
	require.Error(t, err)
}

func TestAppCloseWritesMetrics(t *testing.T) {
	cfg := testConfig(t)
	a, err := app.New(cfg, zap.NewNop(), "scrape")
	require.NoError(t, err)

	a.Close()
	a.Close()

	// #nosec G304 -- test reads from the controlled temp directory.
	data, err := os.ReadFile(cfg.Metrics.Textfile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "zoocards_")
}
