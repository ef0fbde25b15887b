package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/saltyorg/studentdb/internal/config"
	"github.com/saltyorg/studentdb/internal/console"
	"github.com/saltyorg/studentdb/internal/database"
	"github.com/saltyorg/studentdb/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd(config.NewViper()).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "studentdb",
		Short:        "Studentdb - Student records manager",
		Long:         `Studentdb manages student records (ID, name, department, marks) in a SQLite, PostgreSQL or MySQL table through an interactive menu.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(cmd, v)
		},
	}

	// Flags
	flags := rootCmd.PersistentFlags()
	flags.String("driver", config.DefaultDriver, "Database driver: sqlite, postgres or mysql (or set STUDENTDB_DRIVER)")
	flags.String("dsn", "", "Full driver DSN, overrides the individual connection flags (or set STUDENTDB_DSN)")
	flags.StringP("db", "d", config.DefaultDBPath, "SQLite database path (or set STUDENTDB_DB)")
	flags.String("host", config.DefaultHost, "Database host for postgres/mysql")
	flags.Int("port", 0, "Database port for postgres/mysql (default 5432/3306)")
	flags.String("name", "", "Database name for postgres/mysql")
	flags.String("user", "", "Database user for postgres/mysql")
	flags.String("password", "", "Database password for postgres/mysql (prefer STUDENTDB_PASSWORD)")
	flags.String("sslmode", config.DefaultSSLMode, "PostgreSQL sslmode")
	flags.String("log-file", "", "Log file path (default: next to the SQLite database, else ./studentdb.log)")
	flags.CountP("verbose", "v", "Increase verbosity (-v debug, -vv trace)")

	if err := v.BindPFlags(flags); err != nil {
		panic(fmt.Sprintf("failed to bind flags: %v", err))
	}

	rootCmd.AddCommand(
		newListCmd(v),
		newShowCmd(v),
		newMigrateCmd(v),
		&cobra.Command{
			Use:   "version",
			Short: "Show version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "studentdb %s (commit: %s, built: %s)\n", version, commit, date)
			},
		},
	)

	return rootCmd
}

func newListCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print all students and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := bootstrap(v)
			if err != nil {
				return err
			}
			students := database.NewStudents(db)
			defer students.Close()

			list, err := students.List()
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No students found.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STUDENT ID\tNAME\tDEPARTMENT\tMARKS")
			for _, s := range list {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", s.ID, s.Name, s.Department, strconv.FormatFloat(s.Marks, 'f', -1, 64))
			}
			return w.Flush()
		},
	}
}

func newShowCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "show <student-id>",
		Short: "Print one student and exit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid student id %q: %w", args[0], err)
			}

			_, db, err := bootstrap(v)
			if err != nil {
				return err
			}
			students := database.NewStudents(db)
			defer students.Close()

			s, err := students.Get(id)
			if errors.Is(err, database.ErrNotFound) {
				return fmt.Errorf("student %d not found", id)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	}
}

func newMigrateCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := bootstrap(v)
			if err != nil {
				return err
			}
			defer db.Close()

			schemaVersion, err := db.SchemaVersion()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema is up to date (version %d)\n", schemaVersion)
			return nil
		},
	}
}

func runInteractive(cmd *cobra.Command, v *viper.Viper) error {
	cfg, db, err := bootstrap(v)
	if cfg == nil {
		return err
	}
	if err != nil {
		// Keep going: the menu reports every operation as unavailable
		log.Error().Err(err).Str("database", cfg.Database.Target()).Msg("Failed to connect to database")
	}

	students := database.NewStudents(db)
	return console.New(students, cmd.InOrStdin(), cmd.OutOrStdout()).Run()
}

// bootstrap loads configuration, sets up logging and opens the database.
// When the database cannot be reached the returned config is still valid
// and db is nil.
func bootstrap(v *viper.Viper) (*config.Config, *database.DB, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return nil, nil, err
	}

	// Console logging until persisted settings can be read
	logging.Setup(cfg.Verbosity)

	log.Debug().
		Str("version", version).
		Str("driver", cfg.Database.Driver).
		Str("database", cfg.Database.Target()).
		Msg("Starting Studentdb")

	db, err := openDatabase(cfg)

	var loader *config.Loader
	if db != nil {
		loader = config.NewLoader(db)
	}
	logging.Apply(cfg.Verbosity, loader, logging.FilePath(cfg))

	return cfg, db, err
}

func openDatabase(cfg *config.Config) (*database.DB, error) {
	db, err := database.New(cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	if err := db.InitializeDefaults(); err != nil {
		log.Warn().Err(err).Msg("Failed to initialize default settings")
	}

	return db, nil
}
