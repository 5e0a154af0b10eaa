// Package local implements local filesystem persistence for animal records.
package local

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/zoocards/internal/animal"
	"github.com/JakeFAU/zoocards/internal/metrics"
)

// Config captures the parameters for the CSV record store.
type Config struct {
	// Path is the CSV file written by SaveRecords and read by ReadRecords.
	Path string `mapstructure:"path" yaml:"path"`
}

// CSVStore writes records as one CSV row each under a fixed header.
type CSVStore struct {
	path   string
	logger *zap.Logger
}

// New creates a CSV store, creating the parent directory and checking that
// it is writable.
func New(cfg Config, logger *zap.Logger) (*CSVStore, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, fmt.Errorf("csv path is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	dir := filepath.Dir(cfg.Path)

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			if mkErr := os.MkdirAll(dir, 0o750); mkErr != nil {
				return nil, fmt.Errorf("failed to create output directory: %w", mkErr)
			}
		} else {
			return nil, fmt.Errorf("failed to stat output directory: %w", err)
		}
	} else if !info.IsDir() {
		return nil, fmt.Errorf("output directory path is not a directory")
	}

	testFile := filepath.Join(dir, ".writable_test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		return nil, fmt.Errorf("output directory is not writable: %w", err)
	}
	if err := os.Remove(testFile); err != nil {
		return nil, fmt.Errorf("failed to clean up test file: %w", err)
	}

	return &CSVStore{path: cfg.Path, logger: logger}, nil
}

// Path returns the CSV file location.
func (s *CSVStore) Path() string {
	return s.path
}

// SaveRecords replaces the CSV file with the header and one row per record.
func (s *CSVStore) SaveRecords(ctx context.Context, records []animal.Record) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context canceled: %w", err)
	}
	// #nosec G304 -- path comes from operator configuration.
	f, err := os.Create(s.path)
	if err != nil {
		return fmt.Errorf("create csv %s: %w", s.path, err)
	}
	if err := WriteRecords(f, records); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close csv %s: %w", s.path, err)
	}
	metrics.ObservePersisted("csv", len(records))
	s.logger.Info("Records saved", zap.String("path", s.path), zap.Int("records", len(records)))
	return nil
}

// WriteRecords encodes records as CSV with the animal header.
func WriteRecords(w io.Writer, records []animal.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(animal.Header()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(r.Row()); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// ReadRecords loads the records stored at path.
func ReadRecords(path string) ([]animal.Record, error) {
	// #nosec G304 -- path comes from operator configuration.
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv %s: %w", path, err)
	}
	defer f.Close()
	return DecodeRecords(f)
}

// DecodeRecords reads CSV rows keyed by the header line. Columns outside
// the animal vocabulary are ignored and absent columns read as "".
func DecodeRecords(r io.Reader) ([]animal.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var records []animal.Record
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		rec := make(animal.Record, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[animal.Field(col)] = row[i]
			}
		}
		records = append(records, rec)
	}
	return records, nil
}
