package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/projecthelena/healthlog/internal/logging"
)

// Dialect selects the SQL driver and schema flavour.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// DBConfig describes how to reach the record store.
type DBConfig struct {
	Type     Dialect
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSL      bool
	Path     string // sqlite file, or ":memory:"
}

// DSN renders the libpq key/value connection string. Values are quoted so
// passwords with spaces or quotes survive.
func (c DBConfig) DSN() string {
	sslmode := "disable"
	if c.SSL {
		// encrypted, server certificate not verified
		sslmode = "require"
	}
	parts := []string{
		"host=" + quoteDSN(c.Host),
		"port=" + strconv.Itoa(c.Port),
		"user=" + quoteDSN(c.User),
		"dbname=" + quoteDSN(c.Name),
		"sslmode=" + sslmode,
	}
	if c.Password != "" {
		parts = append(parts, "password="+quoteDSN(c.Password))
	}
	return strings.Join(parts, " ")
}

func quoteDSN(v string) string {
	if v != "" && !strings.ContainsAny(v, " '\\") {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

type Store struct {
	db      *sql.DB
	dialect Dialect
	logger  *log.Logger
}

// NewStore opens the connection pool, verifies connectivity and makes sure
// the health_check table exists.
func NewStore(cfg DBConfig) (*Store, error) {
	if cfg.Type == "" {
		cfg.Type = DialectPostgres
	}

	var (
		db  *sql.DB
		err error
	)
	switch cfg.Type {
	case DialectPostgres:
		db, err = sql.Open("postgres", cfg.DSN())
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(30 * time.Minute)
	case DialectSQLite:
		db, err = sql.Open("sqlite3", cfg.Path)
		if err != nil {
			return nil, err
		}
		// One connection keeps ":memory:" databases shared across the pool
		// and serializes writers.
		db.SetMaxOpenConns(1)
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.Type)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, wrapErr("ping", err)
	}

	s := &Store{db: db, dialect: cfg.Type, logger: logging.New("db")}
	if err := s.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Dialect reports which backend the store talks to.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// EnsureSchema creates the health_check table if it is missing. Safe to run
// any number of times.
func (s *Store) EnsureSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS health_check (
		id SERIAL PRIMARY KEY,
		message TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT NOW()
	)`
	if s.dialect == DialectSQLite {
		// AUTOINCREMENT stops SQLite from handing out ids of deleted rows.
		query = `
	CREATE TABLE IF NOT EXISTS health_check (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		message TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`
	}
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return wrapErr("ensure schema", err)
	}
	s.logger.Println("Table health_check is ready")
	return nil
}

// wrapErr adds the operation name and, for Postgres errors, the SQLSTATE
// code so server logs identify the failure class.
func wrapErr(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Errorf("%s: %w (sqlstate %s)", op, err, pqErr.Code)
	}
	return fmt.Errorf("%s: %w", op, err)
}
