// Package mdb runs read queries against the game's master and meta databases.
package mdb

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"sync"

	_ "modernc.org/sqlite"
)

// Result holds the column names and stringified rows of a query.
type Result struct {
	Columns []string
	Rows    [][]string
}

// Manager owns the master database connection and, optionally, the meta one.
type Manager struct {
	db       *sql.DB
	mu       sync.Mutex
	metaPath string
	meta     *sql.DB
}

// Open opens the master database at path.
func Open(path string) (*Manager, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	return &Manager{db: db}, nil
}

// openDB opens path read-only. A missing file is an error, not a new database.
func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open sqlite db %s: %w", path, err)
	}
	return db, nil
}

// SetMetaPath sets the meta database used by QueryMeta.
// The database is opened lazily on the first meta query.
func (m *Manager) SetMetaPath(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.meta != nil {
		_ = m.meta.Close()
		m.meta = nil
	}
	m.metaPath = path
}

// Close closes every open database.
func (m *Manager) Close() error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.meta != nil {
		_ = m.meta.Close()
		m.meta = nil
	}
	return m.db.Close()
}

// Query runs query against the master database.
func (m *Manager) Query(ctx context.Context, query string) (*Result, error) {
	return run(ctx, m.db, query)
}

// QueryMDB runs query against the master database.
func (m *Manager) QueryMDB(ctx context.Context, query string) (*Result, error) {
	return m.Query(ctx, query)
}

// QueryMeta runs query against the meta database, or the master database if
// no meta path was set. Encrypted meta databases are not supported.
func (m *Manager) QueryMeta(ctx context.Context, query string) (*Result, error) {
	db, err := m.metaDB()
	if err != nil {
		return nil, err
	}
	return run(ctx, db, query)
}

func (m *Manager) metaDB() (*sql.DB, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.metaPath == "" {
		return m.db, nil
	}
	if m.meta == nil {
		db, err := openDB(m.metaPath)
		if err != nil {
			return nil, err
		}
		m.meta = db
	}
	return m.meta, nil
}

func run(ctx context.Context, db *sql.DB, query string) (*Result, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	result := &Result{Columns: cols, Rows: [][]string{}}
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		row := make([]string, len(cols))
		for i, v := range values {
			row[i] = stringify(v)
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return result, nil
}

// stringify renders a scanned SQLite value. NULL becomes "".
func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
