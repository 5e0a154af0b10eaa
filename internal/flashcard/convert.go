package flashcard

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/JakeFAU/zoocards/internal/animal"
	"github.com/JakeFAU/zoocards/internal/metrics"
	"github.com/JakeFAU/zoocards/internal/storage/local"
)

// Converter is the flashcard pass over a saved records CSV.
type Converter struct {
	formatter *Formatter
	logger    *zap.Logger
}

// NewConverter returns a Converter using formatter.
func NewConverter(formatter *Formatter, logger *zap.Logger) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{formatter: formatter, logger: logger}
}

// ConvertFile reads records from inputCSV and writes flashcards to
// outputTxt. It returns the number of lines written.
func (c *Converter) ConvertFile(ctx context.Context, inputCSV, outputTxt string) (int, error) {
	records, err := local.ReadRecords(inputCSV)
	if err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("context canceled: %w", err)
	}
	if dir := filepath.Dir(outputTxt); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return 0, fmt.Errorf("create flashcard dir %s: %w", dir, err)
		}
	}
	// #nosec G304 -- path comes from operator configuration.
	f, err := os.Create(outputTxt)
	if err != nil {
		return 0, fmt.Errorf("create flashcards %s: %w", outputTxt, err)
	}
	n, err := c.Write(f, records)
	if err != nil {
		_ = f.Close()
		return n, err
	}
	if err := f.Close(); err != nil {
		return n, fmt.Errorf("close flashcards %s: %w", outputTxt, err)
	}

	metrics.ObserveFlashcardLines(n)
	c.logger.Info("Conversion complete",
		zap.String("input", inputCSV),
		zap.String("output", outputTxt),
		zap.String("format", string(c.formatter.Format())),
		zap.Int("records", len(records)),
		zap.Int("lines", n),
	)
	return n, nil
}

// Write renders records to w, skipping records without cards. Every record
// is terminated by the formatter's record separator.
func (c *Converter) Write(w io.Writer, records []animal.Record) (int, error) {
	sep := c.formatter.RecordSeparator()
	written := 0
	for _, r := range records {
		line := c.formatter.Line(r)
		if line == "" {
			continue
		}
		if _, err := io.WriteString(w, line+sep); err != nil {
			return written, fmt.Errorf("write flashcard line: %w", err)
		}
		written++
	}
	return written, nil
}
