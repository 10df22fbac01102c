package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"

	"github.com/duckdb/duckdb-go/v2"
)

const memoryPath = ":memory:"

// NewDB opens the catalog database. An empty path or ":memory:" gives an
// in-memory catalog that is rebuilt on every start.
func NewDB(path string) (*sql.DB, error) {
	if path == "" {
		path = memoryPath
	}

	var settings []string
	if path != memoryPath {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating catalog directory: %w", err)
		}
		// extensions live next to the catalog, ~/.duckdb may be read-only
		settings = append(settings, fmt.Sprintf("SET extension_directory = '%s'", dir))
	}

	connector, err := duckdb.NewConnector(path, func(execer driver.ExecerContext) error {
		for _, s := range settings {
			if _, err := execer.ExecContext(context.Background(), s, nil); err != nil {
				return fmt.Errorf("%s: %w", s, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("opening catalog %s: %w", path, err)
	}

	db := sql.OpenDB(connector)
	// one writer: layer saves and sync history share a single connection
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}
