package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/saltyorg/studentdb/internal/logging"
)

// GetSetting retrieves a setting value by key
func (db *DB) GetSetting(key string) (string, error) {
	if err := db.available(); err != nil {
		return "", err
	}
	var value string
	err := db.queryRow("SELECT value FROM settings WHERE name = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get setting %s: %w", key, classify(err))
	}
	return value, nil
}

// SetSetting stores a setting value
func (db *DB) SetSetting(key, value string) error {
	_, err := db.exec(db.dialect.upsertSettingSQL(), key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, classify(err))
	}
	return nil
}

// Default settings
var DefaultSettings = map[string]any{
	"log.level":        logging.DefaultLevel,
	"log.max_size_mb":  logging.DefaultMaxSizeMB,
	"log.max_backups":  logging.DefaultMaxBackups,
	"log.max_age_days": logging.DefaultMaxAgeDays,
	"log.compress":     logging.DefaultCompress,
}

// InitializeDefaults sets default values for settings that don't exist
func (db *DB) InitializeDefaults() error {
	for key, value := range DefaultSettings {
		existing, err := db.GetSetting(key)
		if err != nil {
			return err
		}
		if existing != "" {
			continue
		}
		encoded, err := encodeSetting(value)
		if err != nil {
			return fmt.Errorf("failed to encode setting %s: %w", key, err)
		}
		if err := db.SetSetting(key, encoded); err != nil {
			return err
		}
	}
	return nil
}

// encodeSetting stores strings verbatim and everything else as JSON, which
// matches what config.Loader parses.
func encodeSetting(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
