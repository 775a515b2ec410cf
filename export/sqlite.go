package export

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/spektr-org/resagg/engine"
)

// ============================================================================
// SQLITE SINK — Long-format archive of aggregated tables
// ============================================================================
// One aggregation row per stored table, one column row per label and one
// value row per (label, index). Column rows keep order and pairing, so empty
// columns survive and a loaded table charts like the original.
// ============================================================================

// Meta describes a stored aggregation.
type Meta struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Mode      string    `json:"mode"`
	Title     string    `json:"title"`
	Runs      []string  `json:"runs"`
}

// SQLiteSink stores aggregated tables in a SQLite database.
type SQLiteSink struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string, logger *zap.Logger) (*SQLiteSink, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sink := &SQLiteSink{db: db, path: path, logger: logger}
	if err := sink.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return sink, nil
}

// initialize creates the required tables.
func (s *SQLiteSink) initialize() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS aggregations (
			id TEXT PRIMARY KEY,
			created_at INTEGER NOT NULL, -- unix nanoseconds
			mode TEXT NOT NULL,
			title TEXT NOT NULL,
			runs TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS aggregation_values (
			aggregation_id TEXT NOT NULL REFERENCES aggregations(id),
			label TEXT NOT NULL,
			position INTEGER NOT NULL,
			idx INTEGER NOT NULL,
			value REAL,
			PRIMARY KEY (aggregation_id, label, idx)
		)`,
		`CREATE TABLE IF NOT EXISTS aggregation_columns (
			aggregation_id TEXT NOT NULL REFERENCES aggregations(id),
			position INTEGER NOT NULL,
			label TEXT NOT NULL,
			paired_with TEXT,
			PRIMARY KEY (aggregation_id, position)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *SQLiteSink) Close() error { return s.db.Close() }

// Store writes table in one transaction and returns its new id.
func (s *SQLiteSink) Store(ctx context.Context, table *engine.AggregatedTable, meta Meta) (string, error) {
	if table == nil {
		return "", errors.New("nil table")
	}
	id := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO aggregations (id, created_at, mode, title, runs) VALUES (?, ?, ?, ?, ?)`,
		id, time.Now().UnixNano(), meta.Mode, meta.Title, strings.Join(meta.Runs, "\n"),
	); err != nil {
		return "", fmt.Errorf("failed to insert aggregation: %w", err)
	}

	ins, err := tx.PrepareContext(ctx,
		`INSERT INTO aggregation_values (aggregation_id, label, position, idx, value) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer ins.Close()

	pairedWith := make(map[string]string)
	for _, p := range table.Pairs() {
		pairedWith[p.X] = p.Y
	}

	rows := 0
	for pos, label := range table.Labels() {
		var pair any
		if y, ok := pairedWith[label]; ok {
			pair = y
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO aggregation_columns (aggregation_id, position, label, paired_with) VALUES (?, ?, ?, ?)`,
			id, pos, label, pair,
		); err != nil {
			return "", fmt.Errorf("failed to insert column %s: %w", label, err)
		}

		col, _ := table.Column(label)
		for i, v := range col {
			var value any
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				value = v
			}
			if _, err := ins.ExecContext(ctx, id, label, pos, i, value); err != nil {
				return "", fmt.Errorf("failed to insert %s[%d]: %w", label, i, err)
			}
			rows++
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit: %w", err)
	}

	s.logger.Debug("stored aggregation",
		zap.String("id", id),
		zap.String("db", s.path),
		zap.Int("columns", table.Len()),
		zap.Int("values", rows))
	return id, nil
}

// Load rebuilds the table stored under id.
func (s *SQLiteSink) Load(ctx context.Context, id string) (*engine.AggregatedTable, Meta, error) {
	meta, err := s.meta(ctx, id)
	if err != nil {
		return nil, Meta{}, err
	}

	labels, pairedWith, err := s.columns(ctx, id)
	if err != nil {
		return nil, Meta{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT label, value FROM aggregation_values WHERE aggregation_id = ? ORDER BY position, idx`, id)
	if err != nil {
		return nil, Meta{}, fmt.Errorf("failed to query values: %w", err)
	}
	defer rows.Close()

	columns := make(map[string]engine.Series, len(labels))
	for rows.Next() {
		var (
			label string
			value sql.NullFloat64
		)
		if err := rows.Scan(&label, &value); err != nil {
			return nil, Meta{}, fmt.Errorf("failed to scan value: %w", err)
		}
		v := math.NaN()
		if value.Valid {
			v = value.Float64
		}
		columns[label] = append(columns[label], v)
	}
	if err := rows.Err(); err != nil {
		return nil, Meta{}, err
	}

	table := engine.NewAggregatedTable()
	for i := 0; i < len(labels); i++ {
		x := labels[i]
		if y, ok := pairedWith[x]; ok && i+1 < len(labels) && labels[i+1] == y {
			if err := table.AppendPair(x, y, orEmpty(columns[x]), orEmpty(columns[y])); err != nil {
				return nil, Meta{}, err
			}
			i++
			continue
		}
		if err := table.Append(x, orEmpty(columns[x])); err != nil {
			return nil, Meta{}, err
		}
	}
	return table, meta, nil
}

// List returns stored aggregations, newest first.
func (s *SQLiteSink) List(ctx context.Context) ([]Meta, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, mode, title, runs FROM aggregations ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query aggregations: %w", err)
	}
	defer rows.Close()

	var out []Meta
	for rows.Next() {
		m, err := scanMeta(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLiteSink) meta(ctx context.Context, id string) (Meta, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, mode, title, runs FROM aggregations WHERE id = ?`, id)
	m, err := scanMeta(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Meta{}, fmt.Errorf("aggregation %s not found", id)
	}
	return m, err
}

func (s *SQLiteSink) columns(ctx context.Context, id string) ([]string, map[string]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT label, paired_with FROM aggregation_columns WHERE aggregation_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query columns: %w", err)
	}
	defer rows.Close()

	var labels []string
	pairedWith := make(map[string]string)
	for rows.Next() {
		var (
			label string
			pair  sql.NullString
		)
		if err := rows.Scan(&label, &pair); err != nil {
			return nil, nil, fmt.Errorf("failed to scan column: %w", err)
		}
		labels = append(labels, label)
		if pair.Valid {
			pairedWith[label] = pair.String
		}
	}
	return labels, pairedWith, rows.Err()
}

func orEmpty(s engine.Series) engine.Series {
	if s == nil {
		return engine.Series{}
	}
	return s
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMeta(sc scanner) (Meta, error) {
	var (
		m       Meta
		created int64
		runs    string
	)
	if err := sc.Scan(&m.ID, &created, &m.Mode, &m.Title, &runs); err != nil {
		return Meta{}, err
	}
	m.CreatedAt = time.Unix(0, created).UTC()
	if runs != "" {
		m.Runs = strings.Split(runs, "\n")
	}
	return m, nil
}
