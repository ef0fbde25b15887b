package database

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound is returned when no student row matches the given ID
	ErrNotFound = errors.New("student not found")

	// ErrConflict is returned when the database rejects a statement because
	// of a constraint (duplicate key, NOT NULL, CHECK, foreign key)
	ErrConflict = errors.New("constraint violation")

	// ErrUnavailable is returned when there is no usable connection
	ErrUnavailable = errors.New("database unavailable")
)

// MySQL server error numbers that signal a constraint violation
var mysqlConstraintErrors = map[uint16]bool{
	1048: true, // ER_BAD_NULL_ERROR
	1062: true, // ER_DUP_ENTRY
	1451: true, // ER_ROW_IS_REFERENCED_2
	1452: true, // ER_NO_REFERENCED_ROW_2
	3819: true, // ER_CHECK_CONSTRAINT_VIOLATED
}

// classify tags driver errors with ErrConflict or ErrUnavailable while
// keeping the original error in the chain.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrConflict), errors.Is(err, ErrUnavailable), errors.Is(err, ErrNotFound):
		return err
	case isConstraintViolation(err):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case isConnectionError(err):
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	default:
		return err
	}
}

func isConstraintViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// SQLSTATE class 23: integrity constraint violation
		return strings.HasPrefix(pgErr.Code, "23")
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlConstraintErrors[mysqlErr.Number]
	}

	return false
}

func isConnectionError(err error) bool {
	if errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() & 0xff {
		case sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_NOTADB:
			return true
		}
		return false
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// Reason returns a short user facing description of err
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "no student with that ID"
	case errors.Is(err, ErrConflict):
		return "rejected by a table constraint (duplicate ID or missing value)"
	case errors.Is(err, ErrUnavailable):
		return "database unavailable"
	default:
		return "database error"
	}
}
