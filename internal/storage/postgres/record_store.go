// Package postgres provides Postgres-backed persistence for animal records.
package postgres

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/JakeFAU/zoocards/internal/animal"
	"github.com/JakeFAU/zoocards/internal/metrics"
)

const defaultTable = "animals"

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// RecordStoreConfig controls the Postgres connection pool used for animal rows.
type RecordStoreConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type execCloser interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Close()
}

// RecordStore upserts animal rows keyed by url.
type RecordStore struct {
	pool   execCloser
	table  string
	runID  string
	logger *zap.Logger
}

// NewRecordStore creates a Postgres-backed RecordStore using the provided config.
func NewRecordStore(ctx context.Context, cfg RecordStoreConfig, runID string, logger *zap.Logger) (*RecordStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("db.dsn is required")
	}
	table, err := tableName(cfg.Table)
	if err != nil {
		return nil, err
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return newRecordStore(pool, table, runID, logger), nil
}

// NewRecordStoreWithPool constructs a store from an existing pool (primarily for testing).
func NewRecordStoreWithPool(pool execCloser, table, runID string, logger *zap.Logger) (*RecordStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	table, err := tableName(table)
	if err != nil {
		return nil, err
	}
	return newRecordStore(pool, table, runID, logger), nil
}

func newRecordStore(pool execCloser, table, runID string, logger *zap.Logger) *RecordStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordStore{pool: pool, table: table, runID: runID, logger: logger}
}

func tableName(table string) (string, error) {
	if table == "" {
		table = defaultTable
	}
	if !validTableName.MatchString(table) {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	return table, nil
}

// Close releases the underlying pool resources.
func (s *RecordStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// EnsureSchema creates the animals table when it does not exist.
func (s *RecordStore) EnsureSchema(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("record store is not configured")
	}
	if _, err := s.pool.Exec(ctx, createTableSQL(s.table)); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	return nil
}

// SaveRecords upserts every record, one statement per row.
func (s *RecordStore) SaveRecords(ctx context.Context, records []animal.Record) error {
	if s == nil || s.pool == nil {
		return fmt.Errorf("record store is not configured")
	}
	query := upsertSQL(s.table)
	for _, rec := range records {
		url := rec.Get(animal.FieldURL)
		if url == "" {
			return fmt.Errorf("record url is required")
		}
		args := make([]any, 0, len(animal.Fields)+1)
		args = append(args, s.runID)
		for _, v := range rec.Row() {
			args = append(args, v)
		}
		if _, err := s.pool.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert animal %s: %w", url, err)
		}
	}
	metrics.ObservePersisted("postgres", len(records))
	s.logger.Info("Records upserted", zap.String("table", s.table), zap.Int("records", len(records)))
	return nil
}

// column maps a field to its SQL column ("Fact 1" becomes fact_1).
func column(f animal.Field) string {
	return strings.ToLower(strings.ReplaceAll(string(f), " ", "_"))
}

func createTableSQL(table string) string {
	cols := make([]string, 0, len(animal.Fields)+2)
	cols = append(cols, "run_id text NOT NULL")
	for _, f := range animal.Fields {
		if f == animal.FieldURL {
			cols = append(cols, `"url" text PRIMARY KEY`)
			continue
		}
		cols = append(cols, fmt.Sprintf("%q text NOT NULL DEFAULT ''", column(f)))
	}
	cols = append(cols, "scraped_at timestamptz NOT NULL DEFAULT now()")
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", table, strings.Join(cols, ",\n\t"))
}

func upsertSQL(table string) string {
	cols := []string{"run_id"}
	placeholders := []string{"$1"}
	var updates []string
	for i, f := range animal.Fields {
		col := fmt.Sprintf("%q", column(f))
		cols = append(cols, col)
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+2))
		if f != animal.FieldURL {
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
		}
	}
	updates = append(updates, "run_id = EXCLUDED.run_id", "scraped_at = now()")
	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (\"url\") DO UPDATE SET %s",
		table,
		strings.Join(cols, ", "),
		strings.Join(placeholders, ","),
		strings.Join(updates, ", "),
	)
}
