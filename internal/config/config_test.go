package config

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestNormalizeDriver(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{name: "empty defaults to sqlite", input: "", expected: DriverSQLite},
		{name: "sqlite3 alias", input: "sqlite3", expected: DriverSQLite},
		{name: "postgresql alias", input: "PostgreSQL", expected: DriverPostgres},
		{name: "pgx alias", input: "pgx", expected: DriverPostgres},
		{name: "mariadb alias", input: " mariadb ", expected: DriverMySQL},
		{name: "unknown driver", input: "oracle", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeDriver(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NormalizeDriver(%q) expected error, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeDriver(%q) returned error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("NormalizeDriver(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(NewViper())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("expected driver %q, got %q", DriverSQLite, cfg.Database.Driver)
	}
	if cfg.Database.Path != DefaultDBPath {
		t.Errorf("expected path %q, got %q", DefaultDBPath, cfg.Database.Path)
	}
	if cfg.Database.SSLMode != DefaultSSLMode {
		t.Errorf("expected sslmode %q, got %q", DefaultSSLMode, cfg.Database.SSLMode)
	}
	if cfg.Verbosity != 0 {
		t.Errorf("expected verbosity 0, got %d", cfg.Verbosity)
	}
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("STUDENTDB_DRIVER", "postgresql")
	t.Setenv("STUDENTDB_HOST", "db.internal")
	t.Setenv("STUDENTDB_PORT", "6543")
	t.Setenv("STUDENTDB_NAME", "school")
	t.Setenv("STUDENTDB_USER", "registrar")
	t.Setenv("STUDENTDB_LOG_FILE", "/var/log/studentdb.log")

	cfg, err := Load(NewViper())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	db := cfg.Database
	if db.Driver != DriverPostgres || db.Host != "db.internal" || db.Port != 6543 || db.Name != "school" || db.User != "registrar" {
		t.Fatalf("unexpected database config: %+v", db)
	}
	if cfg.LogFile != "/var/log/studentdb.log" {
		t.Errorf("expected log file from env, got %q", cfg.LogFile)
	}
	if got := db.Target(); got != "db.internal:6543/school" {
		t.Errorf("Target() = %q", got)
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]any
		wantErr string
	}{
		{
			name:    "network driver without database name",
			values:  map[string]any{"driver": "mysql"},
			wantErr: "--name",
		},
		{
			name:    "sqlite without path",
			values:  map[string]any{"db": ""},
			wantErr: "--db",
		},
		{
			name:    "port out of range",
			values:  map[string]any{"driver": "postgres", "name": "school", "port": 70000},
			wantErr: "invalid database port",
		},
		{
			name:    "unknown driver",
			values:  map[string]any{"driver": "mongo"},
			wantErr: "unsupported database driver",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewViper()
			for key, val := range tt.values {
				v.Set(key, val)
			}
			_, err := Load(v)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestLoad_DSNSkipsFieldValidation(t *testing.T) {
	v := viper.New()
	v.Set("driver", "mysql")
	v.Set("dsn", "app:secret@tcp(localhost:3306)/school")

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got := cfg.Database.Target(); strings.Contains(got, "secret") {
		t.Errorf("Target() leaked credentials: %q", got)
	}
}
