package database

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/saltyorg/studentdb/internal/config"
)

// DB wraps the single database connection used by the application.
// A nil *DB, or one that has been closed, reports ErrUnavailable from
// every operation.
type DB struct {
	conn    *sql.DB
	dialect Dialect
	target  string
}

// New opens a connection described by cfg and verifies it with a ping.
func New(cfg config.Database) (*DB, error) {
	dialect, err := dialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	dsn := cfg.DSN
	if dsn == "" {
		if dsn, err = dialect.dataSourceName(cfg); err != nil {
			return nil, err
		}
	}

	conn, err := sql.Open(dialect.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection for the lifetime of the process
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", classify(err))
	}

	log.Debug().
		Str("driver", string(dialect)).
		Str("target", cfg.Target()).
		Msg("Database connection established")

	return &DB{
		conn:    conn,
		dialect: dialect,
		target:  cfg.Target(),
	}, nil
}

// Dialect returns the SQL dialect of the connection
func (db *DB) Dialect() Dialect {
	if db == nil {
		return ""
	}
	return db.dialect
}

// Target returns the credential-free database location
func (db *DB) Target() string {
	if db == nil {
		return ""
	}
	return db.target
}

// Close releases the connection. It is safe to call on a nil or already
// closed DB.
func (db *DB) Close() error {
	if db == nil || db.conn == nil {
		return nil
	}
	conn := db.conn
	db.conn = nil
	if err := conn.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	log.Debug().Str("target", db.target).Msg("Database connection closed")
	return nil
}

// available reports ErrUnavailable when there is no open connection
func (db *DB) available() error {
	if db == nil || db.conn == nil {
		return ErrUnavailable
	}
	return nil
}

// Transaction wraps a function in a database transaction
func (db *DB) Transaction(fn func(*sql.Tx) error) error {
	tx, err := db.begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("Failed to rollback transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
