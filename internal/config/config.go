package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Defaults shared by the CLI flags and the viper instance
const (
	EnvPrefix      = "STUDENTDB"
	DefaultDriver  = DriverSQLite
	DefaultDBPath  = "./studentdb.db"
	DefaultHost    = "localhost"
	DefaultSSLMode = "disable"
)

// Database holds everything needed to reach the student table.
// DSN, when set, is passed to the driver verbatim and the individual
// connection fields are ignored.
type Database struct {
	Driver   string
	DSN      string
	Path     string
	Host     string
	Port     int
	Name     string
	User     string
	Password string
	SSLMode  string
}

// Config holds runtime configuration values for the CLI.
type Config struct {
	Database  Database
	LogFile   string
	Verbosity int
}

// NewViper returns a viper instance reading STUDENTDB_* environment
// variables (and an optional .env file) with the built-in defaults applied.
// Callers bind their command-line flags on top of it.
func NewViper() *viper.Viper {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault("driver", DefaultDriver)
	v.SetDefault("db", DefaultDBPath)
	v.SetDefault("host", DefaultHost)
	v.SetDefault("sslmode", DefaultSSLMode)

	return v
}

// Load reads configuration values from v.
func Load(v *viper.Viper) (*Config, error) {
	driver, err := NormalizeDriver(v.GetString("driver"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Database: Database{
			Driver:   driver,
			DSN:      v.GetString("dsn"),
			Path:     v.GetString("db"),
			Host:     v.GetString("host"),
			Port:     v.GetInt("port"),
			Name:     v.GetString("name"),
			User:     v.GetString("user"),
			Password: v.GetString("password"),
			SSLMode:  v.GetString("sslmode"),
		},
		LogFile:   v.GetString("log-file"),
		Verbosity: v.GetInt("verbose"),
	}

	if err := cfg.Database.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NormalizeDriver maps a user supplied driver name onto one of the
// supported drivers.
func NormalizeDriver(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sqlite", "sqlite3":
		return DriverSQLite, nil
	case "postgres", "postgresql", "pgx":
		return DriverPostgres, nil
	case "mysql", "mariadb":
		return DriverMySQL, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q (expected sqlite, postgres or mysql)", name)
	}
}

func (d Database) validate() error {
	if d.DSN != "" {
		return nil
	}
	if d.Port < 0 || d.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", d.Port)
	}

	switch d.Driver {
	case DriverSQLite:
		if d.Path == "" {
			return fmt.Errorf("--db path or --dsn is required for the sqlite driver")
		}
	default:
		if d.Name == "" {
			return fmt.Errorf("--name or --dsn is required for the %s driver", d.Driver)
		}
	}
	return nil
}

// Target returns a human readable description of the database location
// that never includes credentials.
func (d Database) Target() string {
	switch {
	case d.DSN != "":
		return d.Driver + " (custom dsn)"
	case d.Driver == DriverSQLite:
		return d.Path
	case d.Port != 0:
		return fmt.Sprintf("%s:%d/%s", d.Host, d.Port, d.Name)
	default:
		return fmt.Sprintf("%s/%s", d.Host, d.Name)
	}
}
