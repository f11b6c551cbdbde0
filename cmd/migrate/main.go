package main

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/botforce/unity/internal/infrastructure/config"
	"github.com/botforce/unity/internal/infrastructure/logger"
	"github.com/botforce/unity/internal/infrastructure/migration"
	"github.com/botforce/unity/migrations"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	migrationsDir string
	logLevel      string
	log           *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Database migration tool for BOTFORCE Unity",
	Long: `Applies, rolls back and inspects the SQL schema migrations.

Migrations are embedded into the binary. Pass --dir to run them from a
directory on disk instead, which is also where "create" writes new files.

Database settings come from config.toml or UNITY_DATABASE_* variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		log, err = logger.New(&logger.Config{
			Level:      logLevel,
			Format:     "console",
			Output:     "stdout",
			TimeFormat: "2006-01-02 15:04:05",
		})
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync(log)
	},
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *migration.Migrator) error { return m.Up() })
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back all migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *migration.Migrator) error { return m.Down() })
	},
}

var stepCmd = &cobra.Command{
	Use:     "step <n>",
	Short:   "Apply n migrations (negative n rolls back)",
	Example: "  migrate step -- -1",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid step count %q", args[0])
		}
		return withMigrator(func(m *migration.Migrator) error { return m.Steps(n) })
	},
}

var gotoCmd = &cobra.Command{
	Use:   "goto <version>",
	Short: "Migrate up or down to a specific version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		return withMigrator(func(m *migration.Migrator) error { return m.GoTo(uint(version)) })
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the current schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *migration.Migrator) error {
			version, dirty, err := m.Version()
			if err != nil {
				return err
			}
			if version == 0 {
				log.Info("No migrations applied")
				return nil
			}
			log.Info("Current migration version",
				zap.Uint("version", version),
				zap.Bool("dirty", dirty),
			)
			return nil
		})
	},
}

var forceCmd = &cobra.Command{
	Use:   "force <version>",
	Short: "Set the schema version without running migrations",
	Long:  "Clears the dirty flag after a failed migration has been repaired by hand.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		log.Warn("Forcing migration version", zap.Int("version", version))
		return withMigrator(func(m *migration.Migrator) error { return m.Force(version) })
	},
}

var createCmd = &cobra.Command{
	Use:     "create <name> [description]",
	Short:   "Create a new up/down migration pair",
	Example: `  migrate create add_customer_notes "Add notes column to customers" --dir migrations`,
	Args:    cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := migrationsDir
		if dir == "" {
			dir = "migrations"
		}
		description := ""
		if len(args) > 1 {
			description = args[1]
		}

		mf, err := migration.CreateMigration(dir, args[0], description)
		if err != nil {
			return err
		}
		log.Info("Migration created",
			zap.String("version", mf.Version),
			zap.String("up_file", mf.UpPath),
			zap.String("down_file", mf.DownPath),
		)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var fsys fs.FS = migrations.FS
		if migrationsDir != "" {
			fsys = os.DirFS(migrationsDir)
		}
		names, err := migration.ListMigrations(fsys)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			log.Info("No migrations found")
			return nil
		}
		log.Info("Available migrations", zap.Int("count", len(names)))
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), "  -", name)
		}
		return nil
	},
}

// withMigrator opens the configured database, builds a migrator from the
// embedded files (or --dir) and runs fn against it.
func withMigrator(fn func(m *migration.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	var m *migration.Migrator
	if migrationsDir != "" {
		abs, err := filepath.Abs(migrationsDir)
		if err != nil {
			return fmt.Errorf("resolve migrations dir: %w", err)
		}
		log.Info("Using migrations from disk", zap.String("dir", abs))
		m, err = migration.NewFromDir(db, abs, log)
		if err != nil {
			return err
		}
	} else {
		m, err = migration.New(db, migrations.FS, log)
		if err != nil {
			return err
		}
	}
	defer m.Close()

	return fn(m)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&migrationsDir, "dir", "", "read migrations from this directory instead of the embedded set")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(upCmd, downCmd, stepCmd, gotoCmd, versionCmd, forceCmd, createCmd, listCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
