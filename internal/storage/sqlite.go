package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
)

// sourceSeparator joins a module's source file list into one column.
// A NUL byte cannot appear in a file path.
const sourceSeparator = "\x00"

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx, storage: s}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

func (t *sqliteTx) UpsertModule(ctx context.Context, rec *ModuleRecord) error {
	return upsertModule(ctx, t.tx, rec)
}

func (t *sqliteTx) GetModule(ctx context.Context, name string) (*ModuleRecord, error) {
	return getModule(ctx, t.tx, name)
}

func (t *sqliteTx) ListModules(ctx context.Context) ([]*ModuleRecord, error) {
	return listModules(ctx, t.tx)
}

func (t *sqliteTx) DeleteModule(ctx context.Context, name string) error {
	return deleteModule(ctx, t.tx, name)
}

func (t *sqliteTx) Registry(ctx context.Context) ([]RegistryEntry, error) {
	return registry(ctx, t.tx)
}

func (t *sqliteTx) Close() error {
	return nil
}

func (t *sqliteTx) BeginTx(ctx context.Context) (Tx, error) {
	return t, nil // nested transactions collapse into the outer one
}

// Module operations

func (s *SQLiteStorage) UpsertModule(ctx context.Context, rec *ModuleRecord) error {
	return upsertModule(ctx, s.db, rec)
}

func (s *SQLiteStorage) GetModule(ctx context.Context, name string) (*ModuleRecord, error) {
	return getModule(ctx, s.db, name)
}

func (s *SQLiteStorage) ListModules(ctx context.Context) ([]*ModuleRecord, error) {
	return listModules(ctx, s.db)
}

func (s *SQLiteStorage) DeleteModule(ctx context.Context, name string) error {
	return deleteModule(ctx, s.db, name)
}

func (s *SQLiteStorage) Registry(ctx context.Context) ([]RegistryEntry, error) {
	return registry(ctx, s.db)
}

func upsertModule(ctx context.Context, q querier, rec *ModuleRecord) error {
	query := `
		INSERT INTO modules (name, source_files, descriptor_path, content_hash, artifact_path, status, built_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			source_files = excluded.source_files,
			descriptor_path = excluded.descriptor_path,
			content_hash = excluded.content_hash,
			artifact_path = excluded.artifact_path,
			status = excluded.status,
			built_at = excluded.built_at,
			updated_at = excluded.updated_at
		RETURNING id
	`
	now := time.Now()
	err := q.QueryRowContext(ctx, query,
		rec.Name, strings.Join(rec.SourceFiles, sourceSeparator), rec.DescriptorPath,
		rec.ContentHash[:], rec.ArtifactPath, rec.Status, rec.BuiltAt, now, now).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert module %s: %w", rec.Name, err)
	}
	rec.UpdatedAt = now
	return nil
}

func getModule(ctx context.Context, q querier, name string) (*ModuleRecord, error) {
	query := `
		SELECT id, name, source_files, descriptor_path, content_hash, artifact_path, status, built_at, created_at, updated_at
		FROM modules
		WHERE name = ?
	`
	rec, err := scanModule(q.QueryRowContext(ctx, query, name))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return rec, err
}

func listModules(ctx context.Context, q querier) ([]*ModuleRecord, error) {
	query := `
		SELECT id, name, source_files, descriptor_path, content_hash, artifact_path, status, built_at, created_at, updated_at
		FROM modules
		ORDER BY name
	`
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var recs []*ModuleRecord
	for rows.Next() {
		rec, err := scanModule(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func deleteModule(ctx context.Context, q querier, name string) error {
	_, err := q.ExecContext(ctx, "DELETE FROM modules WHERE name = ?", name)
	if err != nil {
		return fmt.Errorf("failed to delete module %s: %w", name, err)
	}
	return nil
}

func registry(ctx context.Context, q querier) ([]RegistryEntry, error) {
	query := `
		SELECT name, artifact_path, content_hash, built_at
		FROM modules
		WHERE status = 'built' AND artifact_path != ''
		ORDER BY name
	`
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []RegistryEntry
	for rows.Next() {
		var e RegistryEntry
		var hash []byte
		var builtAt sql.NullTime
		if err := rows.Scan(&e.Module, &e.ArtifactPath, &hash, &builtAt); err != nil {
			return nil, err
		}
		copy(e.ContentHash[:], hash)
		if builtAt.Valid {
			e.BuiltAt = builtAt.Time
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanModule(row rowScanner) (*ModuleRecord, error) {
	var rec ModuleRecord
	var sources string
	var hash []byte
	var builtAt sql.NullTime
	err := row.Scan(&rec.ID, &rec.Name, &sources, &rec.DescriptorPath, &hash,
		&rec.ArtifactPath, &rec.Status, &builtAt, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if sources != "" {
		rec.SourceFiles = strings.Split(sources, sourceSeparator)
	}
	copy(rec.ContentHash[:], hash)
	if builtAt.Valid {
		rec.BuiltAt = builtAt.Time
	}
	return &rec, nil
}
