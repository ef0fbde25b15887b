package database

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/saltyorg/studentdb/internal/config"
)

// Dialect identifies the SQL flavour spoken by the connected database
type Dialect string

const (
	SQLite   Dialect = config.DriverSQLite
	Postgres Dialect = config.DriverPostgres
	MySQL    Dialect = config.DriverMySQL
)

func dialectFor(driver string) (Dialect, error) {
	name, err := config.NormalizeDriver(driver)
	if err != nil {
		return "", err
	}
	return Dialect(name), nil
}

// driverName is the name the driver registers with database/sql
func (d Dialect) driverName() string {
	switch d {
	case Postgres:
		return "pgx"
	case MySQL:
		return "mysql"
	default:
		return "sqlite"
	}
}

func (d Dialect) defaultPort() int {
	switch d {
	case Postgres:
		return 5432
	case MySQL:
		return 3306
	default:
		return 0
	}
}

// dataSourceName builds a driver specific DSN from the individual
// connection fields.
func (d Dialect) dataSourceName(cfg config.Database) (string, error) {
	port := cfg.Port
	if port == 0 {
		port = d.defaultPort()
	}
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(port))

	switch d {
	case SQLite:
		if cfg.Path == "" {
			return "", fmt.Errorf("sqlite database path is required")
		}
		return cfg.Path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", nil

	case Postgres:
		u := &url.URL{
			Scheme: "postgres",
			Host:   addr,
			Path:   "/" + cfg.Name,
		}
		if cfg.User != "" {
			if cfg.Password != "" {
				u.User = url.UserPassword(cfg.User, cfg.Password)
			} else {
				u.User = url.User(cfg.User)
			}
		}
		if cfg.SSLMode != "" {
			u.RawQuery = url.Values{"sslmode": {cfg.SSLMode}}.Encode()
		}
		return u.String(), nil

	case MySQL:
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = addr
		mc.DBName = cfg.Name
		mc.ParseTime = true
		// Report matched rather than changed rows, so an UPDATE that
		// rewrites identical values still counts as a hit.
		mc.ClientFoundRows = true
		return mc.FormatDSN(), nil
	}

	return "", fmt.Errorf("unsupported dialect %q", d)
}

// rebind rewrites ? placeholders into the dialect's bind syntax.
// Question marks inside single-quoted literals are left alone.
func (d Dialect) rebind(query string) string {
	if d != Postgres || !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	inQuote := false
	for _, r := range query {
		switch {
		case r == '\'':
			inQuote = !inQuote
			b.WriteRune(r)
		case r == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// upsertSettingSQL returns the insert-or-update statement for the settings table
func (d Dialect) upsertSettingSQL() string {
	if d == MySQL {
		return `
			INSERT INTO settings (name, value, updated_at) VALUES (?, ?, ?)
			ON DUPLICATE KEY UPDATE value = VALUES(value), updated_at = VALUES(updated_at)
		`
	}
	return `
		INSERT INTO settings (name, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
}
