package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/passkeeper/internal/dbx"
	"github.com/dmitrijs2005/passkeeper/internal/server/repositories/memory"
)

// MemoryDSN selects the in-memory store.
const MemoryDSN = "memory://"

// Store bundles everything services need to reach persistence.
type Store struct {
	// Conn is the pool, nil for the in-memory store.
	Conn *sql.DB
	// DB is the non-transactional handle passed to RepositoryManager.
	DB dbx.DBTX
	// Tx runs a unit of work atomically.
	Tx    dbx.TxRunner
	Repos RepositoryManager
}

// NewSQLStore wraps an open pool with the PostgreSQL repositories.
func NewSQLStore(db *sql.DB) *Store {
	return &Store{
		Conn:  db,
		DB:    db,
		Tx:    dbx.NewSQLTxRunner(db),
		Repos: NewPostgresRepositoryManager(),
	}
}

// NewMemoryStore returns an empty in-memory Store.
func NewMemoryStore() *Store {
	return &Store{
		Tx:    dbx.DirectRunner{},
		Repos: memory.NewRepositoryManager(memory.NewStore()),
	}
}

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

// Open connects to dsn, verifies the connection and applies migrations.
// MemoryDSN yields a fresh in-memory store.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == MemoryDSN {
		return NewMemoryStore(), nil
	}

	db, err := sqlOpen("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	st := NewSQLStore(db)
	if err := st.Repos.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return st, nil
}

// Ping checks connectivity. The in-memory store is always reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s.Conn == nil {
		return nil
	}
	return s.Conn.PingContext(ctx)
}

// Close releases the pool, if any.
func (s *Store) Close() error {
	if s.Conn == nil {
		return nil
	}
	return s.Conn.Close()
}
