package database

import "database/sql"

// Queries are written with ? placeholders and rebound for the dialect.

func (db *DB) exec(query string, args ...any) (sql.Result, error) {
	if err := db.available(); err != nil {
		return nil, err
	}
	return db.conn.Exec(db.dialect.rebind(query), args...)
}

func (db *DB) query(query string, args ...any) (*sql.Rows, error) {
	if err := db.available(); err != nil {
		return nil, err
	}
	return db.conn.Query(db.dialect.rebind(query), args...)
}

// queryRow callers must check available() first; a nil connection cannot
// produce a *sql.Row carrying an error.
func (db *DB) queryRow(query string, args ...any) *sql.Row {
	return db.conn.QueryRow(db.dialect.rebind(query), args...)
}

func (db *DB) begin() (*sql.Tx, error) {
	if err := db.available(); err != nil {
		return nil, err
	}
	return db.conn.Begin()
}

func (db *DB) txExec(tx *sql.Tx, query string, args ...any) (sql.Result, error) {
	return tx.Exec(db.dialect.rebind(query), args...)
}
