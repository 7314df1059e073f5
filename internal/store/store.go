package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"cama/internal/config"
	"cama/internal/services"
)

// Store manages durable persistence for survey entities and the offline
// queue, backed by SQLite. Writes are immediately durable
// (journal_mode=WAL with synchronous=FULL) and serialized by database/sql;
// the store is safe for concurrent callers within one process but is not
// designed for multiple processes sharing the same database file.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the database and verifies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, services.Wrap(services.ErrStorageUnavailable, "store", "open", "ensure directories", err)
	}
	return OpenPath(cfg.DatabasePath())
}

// OpenPath opens the store at an explicit database path.
func OpenPath(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, services.Wrap(services.ErrStorageUnavailable, "store", "open", dbPath, err)
	}

	// synchronous=FULL keeps every commit durable through a crash; the rest
	// mirror standard embedded-SQLite settings.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=FULL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, services.Wrap(services.ErrStorageUnavailable, "store", "open", fmt.Sprintf("apply pragma %q", pragma), execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Health captures diagnostic information about the store after a restart.
type Health struct {
	DBPath         string
	IntegrityCheck bool
	Checkpoints    int
	Stations       int
	Sessions       int
	PendingQueue   int
}

// CheckHealth runs an integrity check and counts stored entities. Used by
// the CLI to verify recovery after a crash.
func (s *Store) CheckHealth(ctx context.Context) (Health, error) {
	health := Health{DBPath: s.path}

	var integrity string
	if err := s.db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&integrity); err != nil {
		return health, services.Wrap(services.ErrStorageUnavailable, "store", "health", "integrity check", err)
	}
	health.IntegrityCheck = integrity == "ok"

	counts := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(1) FROM checkpoints", &health.Checkpoints},
		{"SELECT COUNT(1) FROM stations", &health.Stations},
		{"SELECT COUNT(1) FROM sessions", &health.Sessions},
		{"SELECT COUNT(1) FROM outbox_queue", &health.PendingQueue},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return health, services.Wrap(services.ErrStorageUnavailable, "store", "health", "count rows", err)
		}
	}
	return health, nil
}

// withTx runs fn inside a transaction, rolling back on error.
func (s *Store) withTx(ctx context.Context, op string, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return services.Wrap(services.ErrStorageUnavailable, "store", op, "begin tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return services.Wrap(services.ErrStorageUnavailable, "store", op, "commit", err)
	}
	return nil
}

func storageErr(op, message string, err error) error {
	return services.Wrap(services.ErrStorageUnavailable, "store", op, message, err)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	return time.Parse(time.RFC3339Nano, value)
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
