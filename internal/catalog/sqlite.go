package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/runger/autocomplete/internal/option"
)

// DefaultTable is the table read when no table is named.
const DefaultTable = "options"

var identRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLite is a Source reading (label, value) rows from a SQLite table.
// Rows with a NULL or empty value become bare-label options. Rows come back
// in insertion order.
type SQLite struct {
	db        *sql.DB
	table     string
	closeOnce sync.Once
	closeErr  error
}

// OpenSQLite opens the database at path. An empty table selects
// DefaultTable. The table is created if missing so a fresh path can be
// filled with Save.
func OpenSQLite(path, table string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite catalog: empty path")
	}
	if table == "" {
		table = DefaultTable
	}
	if !identRE.MatchString(table) {
		return nil, fmt.Errorf("sqlite catalog: invalid table name %q", table)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create catalog directory: %w", err)
	}

	// modernc.org/sqlite uses _pragma=name(value) syntax
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db, table: table}
	if err := s.ensureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) ensureSchema(ctx context.Context) error {
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id    INTEGER PRIMARY KEY AUTOINCREMENT,
		label TEXT NOT NULL,
		value TEXT
	)`, s.table)
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to create catalog table: %w", err)
	}
	return nil
}

// Fetch implements Source. A non-empty Query pre-filters with a
// case-insensitive LIKE on the label.
func (s *SQLite) Fetch(ctx context.Context, req Request) (Response, error) {
	q := fmt.Sprintf(`SELECT label, value FROM %s`, s.table)
	var args []any
	if req.Query != "" {
		q += ` WHERE label LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(req.Query)+"%")
	}
	q += ` ORDER BY id`
	if req.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, req.Limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return Response{}, fmt.Errorf("failed to query catalog: %w", err)
	}
	defer rows.Close()

	var opts []option.Option
	for rows.Next() {
		var label string
		var value sql.NullString
		if err := rows.Scan(&label, &value); err != nil {
			return Response{}, fmt.Errorf("failed to scan catalog row: %w", err)
		}
		if value.Valid && value.String != "" {
			opts = append(opts, option.Pair(label, value.String))
		} else {
			opts = append(opts, option.String(label))
		}
	}
	if err := rows.Err(); err != nil {
		return Response{}, fmt.Errorf("failed to read catalog rows: %w", err)
	}
	return Response{RequestID: req.RequestID, Options: opts}, nil
}

// Save replaces the table contents with opts in one transaction.
func (s *SQLite) Save(ctx context.Context, opts []option.Option) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, s.table)); err != nil {
		return fmt.Errorf("failed to clear catalog: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`INSERT INTO %s (label, value) VALUES (?, ?)`, s.table))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range opts {
		var value sql.NullString
		if o.IsPair() {
			value = sql.NullString{String: o.Value(), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, o.Label(), value); err != nil {
			return fmt.Errorf("failed to insert %q: %w", o.Label(), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit catalog: %w", err)
	}
	return nil
}

// Close closes the database. It is safe to call more than once.
func (s *SQLite) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.db.Close()
	})
	return s.closeErr
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
