package database

import (
	"testing"

	"github.com/saltyorg/studentdb/internal/config"
	"github.com/saltyorg/studentdb/internal/logging"
)

func TestSettings_SetAndGet(t *testing.T) {
	db := newTestDB(t)

	if got, err := db.GetSetting("log.level"); err != nil || got != "" {
		t.Fatalf("expected missing setting to be empty, got %q (err %v)", got, err)
	}

	if err := db.SetSetting("log.level", "debug"); err != nil {
		t.Fatalf("SetSetting returned error: %v", err)
	}
	if err := db.SetSetting("log.level", "trace"); err != nil {
		t.Fatalf("SetSetting overwrite returned error: %v", err)
	}

	got, err := db.GetSetting("log.level")
	if err != nil {
		t.Fatalf("GetSetting returned error: %v", err)
	}
	if got != "trace" {
		t.Fatalf("expected trace, got %q", got)
	}
}

func TestInitializeDefaults_FeedsLoader(t *testing.T) {
	db := newTestDB(t)

	if err := db.SetSetting("log.max_backups", "9"); err != nil {
		t.Fatalf("SetSetting returned error: %v", err)
	}
	if err := db.InitializeDefaults(); err != nil {
		t.Fatalf("InitializeDefaults returned error: %v", err)
	}

	loader := config.NewLoader(db)
	if got := loader.String("log.level", "unset"); got != logging.DefaultLevel {
		t.Errorf("log.level = %q, want %q", got, logging.DefaultLevel)
	}
	if got := loader.Int("log.max_size_mb", -1); got != logging.DefaultMaxSizeMB {
		t.Errorf("log.max_size_mb = %d, want %d", got, logging.DefaultMaxSizeMB)
	}
	if got := loader.Bool("log.compress", !logging.DefaultCompress); got != logging.DefaultCompress {
		t.Errorf("log.compress = %v, want %v", got, logging.DefaultCompress)
	}
	// Existing values are not overwritten
	if got := loader.Int("log.max_backups", -1); got != 9 {
		t.Errorf("log.max_backups = %d, want 9", got)
	}
}
