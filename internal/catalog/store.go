package catalog

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - Initial schema (collections, indexes, index_fields)
const currentSchemaVersion = 1

// Store is a SQLite-backed catalog.
// Uses WAL mode for concurrent read access.
type Store struct {
	db *sql.DB
}

// OpenStore creates or opens a catalog database at the given path.
// Applies required pragmas and migrations automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement (index rows cascade with their collection)
//
// This function is idempotent - safe to call multiple times.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// PutCollection writes a collection and all of its indexes, replacing any
// previous definition of the same name.
func (s *Store) PutCollection(coll Collection) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM collections WHERE name = ?`, coll.Name); err != nil {
		return fmt.Errorf("clear collection %q: %w", coll.Name, err)
	}
	if _, err := tx.Exec(`INSERT INTO collections (name) VALUES (?)`, coll.Name); err != nil {
		return fmt.Errorf("insert collection %q: %w", coll.Name, err)
	}

	for _, idx := range coll.Indexes {
		if _, err := tx.Exec(
			`INSERT INTO indexes (collection, name, unique_flag, sparse_flag) VALUES (?, ?, ?, ?)`,
			coll.Name, idx.Name, boolToInt(idx.Unique), boolToInt(idx.Sparse),
		); err != nil {
			return fmt.Errorf("insert index %q: %w", idx.Name, err)
		}
		for pos, field := range idx.Fields {
			if _, err := tx.Exec(
				`INSERT INTO index_fields (collection, index_name, position, field) VALUES (?, ?, ?, ?)`,
				coll.Name, idx.Name, pos, field,
			); err != nil {
				return fmt.Errorf("insert index field %q.%q[%d]: %w", idx.Name, field, pos, err)
			}
		}
	}

	return tx.Commit()
}

// Indexes reads all indexes of a collection, fields in position order,
// indexes in name order.
func (s *Store) Indexes(collection string) ([]Index, error) {
	rows, err := s.db.Query(
		`SELECT name, unique_flag, sparse_flag FROM indexes WHERE collection = ? ORDER BY name`,
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("query indexes: %w", err)
	}
	defer rows.Close()

	var out []Index
	for rows.Next() {
		idx := Index{Collection: collection}
		var uniqueFlag, sparseFlag int
		if err := rows.Scan(&idx.Name, &uniqueFlag, &sparseFlag); err != nil {
			return nil, fmt.Errorf("scan index: %w", err)
		}
		idx.Unique = uniqueFlag != 0
		idx.Sparse = sparseFlag != 0
		out = append(out, idx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate indexes: %w", err)
	}

	for i := range out {
		fields, err := s.indexFields(collection, out[i].Name)
		if err != nil {
			return nil, err
		}
		out[i].Fields = fields
	}
	return out, nil
}

// UsableIndexes implements Catalog against the stored metadata.
// Errors reading the store degrade to "no usable indexes": the optimizer can
// always fall back to the full-scan plan.
func (s *Store) UsableIndexes(collection string, attributePaths []string) []Index {
	indexes, err := s.Indexes(collection)
	if err != nil {
		return nil
	}
	return selectUsable(indexes, attributePaths)
}

func (s *Store) indexFields(collection, indexName string) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT field FROM index_fields WHERE collection = ? AND index_name = ? ORDER BY position`,
		collection, indexName,
	)
	if err != nil {
		return nil, fmt.Errorf("query index fields: %w", err)
	}
	defer rows.Close()

	var fields []string
	for rows.Next() {
		var f string
		if err := rows.Scan(&f); err != nil {
			return nil, fmt.Errorf("scan index field: %w", err)
		}
		fields = append(fields, f)
	}
	return fields, rows.Err()
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and records the version.
// This function is idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
