// Package pg is the durable store: the append-only message log and the
// accounts table, both in one PostgreSQL database. All mutations of the
// message log are funneled through a single mutex (single-writer
// discipline) so the id sequence, the created timestamps and the external
// view of the log agree on one total order.
package pg

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/impservers/impchat/internal/config"
	"github.com/impservers/impchat/internal/logger"

	_ "github.com/lib/pq" // Registers the PostgreSQL driver
)

// Querier is satisfied by both *sql.DB and *sql.Tx, letting query logic run
// in and out of transactions.
type Querier interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

type Storage struct {
	db *sql.DB

	// writeMu serializes message-log mutations; reads go straight to the
	// pool.
	writeMu sync.Mutex
	// lastCreated enforces strictly monotonic created timestamps across
	// appends even when the wall clock stalls.
	lastCreated time.Time
}

func New(cfg *config.Config) (*Storage, error) {
	logger.Log.Info("connecting to postgres", "host", cfg.Public.Pg.Host, "db", cfg.Public.Pg.Dbname)
	db, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	logger.Log.Info("connected to postgres")
	return &Storage{db: db}, nil
}

func Connect(cfg *config.Config) (*sql.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Public.Pg.Host, cfg.Public.Pg.Port, cfg.Public.Pg.User, cfg.Public.Pg.Password, cfg.Public.Pg.Dbname)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

func (s *Storage) Cleanup() error {
	return s.db.Close()
}

// Ping reports database reachability for the readiness probe.
func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// withTx runs fn inside a transaction, rolling back on error.
func (s *Storage) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() // ignored after a commit

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// nextCreated returns a timestamp strictly after every previously issued
// one. Callers must hold writeMu.
func (s *Storage) nextCreated() time.Time {
	now := time.Now().UTC().Round(time.Microsecond) // database rounds to microsecond anyway
	if !now.After(s.lastCreated) {
		now = s.lastCreated.Add(time.Microsecond)
	}
	s.lastCreated = now
	return now
}
