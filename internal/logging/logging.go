package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/saltyorg/studentdb/internal/config"
)

const (
	DefaultLogFilePath = "studentdb.log"
	DefaultLevel       = "info"
	DefaultMaxSizeMB   = 10
	DefaultMaxBackups  = 3
	DefaultMaxAgeDays  = 30
	DefaultCompress    = true

	timeFormat = "2006-01-02 15:04:05"
)

// Console is where human readable log lines go. The interactive menu owns
// stdout, so logs are kept on stderr.
var Console io.Writer = os.Stderr

// Setup installs a console-only logger. It is used before the database
// (and therefore the persisted log settings) is available.
func Setup(verbosity int) {
	applyLevel(LevelForVerbosity(verbosity, DefaultLevel))
	log.Logger = zerolog.New(consoleWriter()).With().Timestamp().Logger()
}

// Apply sets the global log level and output writers (console + rotating file).
// Persisted settings are read through loader when it is non-nil; a non-zero
// verbosity always wins over the persisted level.
// logFilePath is the destination file; when empty, a default filename in the current working directory is used.
func Apply(verbosity int, loader *config.Loader, logFilePath string) {
	level := DefaultLevel
	if loader != nil {
		level = loader.String("log.level", DefaultLevel)
	}
	applyLevel(LevelForVerbosity(verbosity, level))
	applyOutputs(loader, logFilePath)
}

// LevelForVerbosity maps the -v count onto a level name, falling back to
// fallback when no -v was given.
func LevelForVerbosity(verbosity int, fallback string) string {
	switch {
	case verbosity <= 0:
		return fallback
	case verbosity == 1:
		return "debug"
	default:
		return "trace"
	}
}

func applyLevel(level string) {
	switch level {
	case "trace":
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func applyOutputs(loader *config.Loader, logFilePath string) {
	maxSize := DefaultMaxSizeMB
	maxBackups := DefaultMaxBackups
	maxAgeDays := DefaultMaxAgeDays
	compress := DefaultCompress

	if loader != nil {
		if val := loader.Int("log.max_size_mb", DefaultMaxSizeMB); val > 0 {
			maxSize = val
		}
		if val := loader.Int("log.max_backups", DefaultMaxBackups); val >= 0 {
			maxBackups = val
		}
		if val := loader.Int("log.max_age_days", DefaultMaxAgeDays); val >= 0 {
			maxAgeDays = val
		}
		compress = loader.Bool("log.compress", DefaultCompress)
	}

	if logFilePath == "" {
		logFilePath = DefaultLogFilePath
	}

	consoleOutput := consoleWriter()
	log.Logger = zerolog.New(consoleOutput).With().Timestamp().Logger()

	if err := ensureLogDir(logFilePath); err != nil {
		log.Error().Err(err).Str("path", logFilePath).Msg("Failed to prepare log directory; logging to console only")
		return
	}

	fileWriter := &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    maxSize,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   compress,
	}

	fileConsole := zerolog.ConsoleWriter{
		Out:        fileWriter,
		TimeFormat: timeFormat,
		NoColor:    true,
	}

	multi := zerolog.MultiLevelWriter(consoleOutput, fileConsole)
	log.Logger = zerolog.New(multi).With().Timestamp().Logger()
}

func consoleWriter() zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{Out: Console, TimeFormat: timeFormat}
}

// FilePath picks the log file for cfg: an explicit --log-file, otherwise a
// file alongside the sqlite database, otherwise the working directory.
func FilePath(cfg *config.Config) string {
	if cfg.LogFile != "" {
		return cfg.LogFile
	}
	if cfg.Database.Driver == config.DriverSQLite && cfg.Database.DSN == "" {
		return FilePathForDB(cfg.Database.Path)
	}
	return DefaultLogFilePath
}

// FilePathForDB returns a log file path that lives alongside the database file.
func FilePathForDB(dbPath string) string {
	if dbPath == "" {
		return DefaultLogFilePath
	}
	absDBPath, err := filepath.Abs(dbPath)
	if err != nil {
		return filepath.Join(filepath.Dir(dbPath), DefaultLogFilePath)
	}
	return filepath.Join(filepath.Dir(absDBPath), DefaultLogFilePath)
}

func ensureLogDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
