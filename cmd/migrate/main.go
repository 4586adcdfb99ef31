package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/nia/backend/internal/infrastructure/config"
	"github.com/nia/backend/internal/infrastructure/event"
	"github.com/nia/backend/internal/infrastructure/logger"
	"github.com/nia/backend/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

func main() {
	// Parse flags
	var (
		migrationsPath string
		logLevel       string
	)

	flag.StringVar(&migrationsPath, "path", "", "Path to migrations directory (default: ./migrations)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	// Get command and arguments
	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Determine migrations path
	if migrationsPath == "" {
		// Try to find migrations directory relative to executable or current dir
		if _, err := os.Stat(defaultMigrationsPath); err == nil {
			migrationsPath = defaultMigrationsPath
		} else {
			// Try relative to executable
			execPath, err := os.Executable()
			if err == nil {
				execDir := filepath.Dir(execPath)
				candidatePath := filepath.Join(execDir, "..", "..", defaultMigrationsPath)
				if _, err := os.Stat(candidatePath); err == nil {
					migrationsPath = candidatePath
				}
			}
		}
		if migrationsPath == "" {
			migrationsPath = defaultMigrationsPath
		}
	}

	// Convert to absolute path
	absPath, err := filepath.Abs(migrationsPath)
	if err != nil {
		log.Fatal("Failed to get absolute path", zap.Error(err))
	}
	migrationsPath = absPath

	log.Info("Migration CLI started",
		zap.String("command", command),
		zap.String("migrations_path", migrationsPath),
	)

	// Handle create command separately (doesn't need DB)
	if command == "create" {
		if len(args) < 2 {
			log.Fatal("Migration name required. Usage: migrate create <name> [description]")
		}
		name := args[1]
		description := ""
		if len(args) > 2 {
			description = args[2]
		}

		mf, err := migration.CreateMigration(migrationsPath, name, description)
		if err != nil {
			log.Fatal("Failed to create migration", zap.Error(err))
		}

		log.Info("Migration created successfully",
			zap.String("version", mf.Version),
			zap.String("up_file", mf.UpPath),
			zap.String("down_file", mf.DownPath),
		)
		return
	}

	// Handle list command (doesn't need DB connection)
	if command == "list" {
		migrations, err := migration.ListMigrations(migrationsPath)
		if err != nil {
			log.Fatal("Failed to list migrations", zap.Error(err))
		}

		if len(migrations) == 0 {
			log.Info("No migrations found")
			return
		}

		log.Info("Available migrations", zap.Int("count", len(migrations)))
		for _, m := range migrations {
			fmt.Println("  -", m)
		}
		return
	}

	// Commands that need database connection
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Verify connection
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database", zap.Error(err))
	}

	// Handle the events command before creating the schema migrator:
	// it rewrites stored outbox payloads, not the schema
	if command == "events" {
		if len(args) < 2 {
			log.Fatal("Event type required. Usage: migrate events <event_type> [--dry-run]")
		}
		eventType := args[1]
		dryRun := false
		for _, arg := range args[2:] {
			if arg == "-dry-run" || arg == "--dry-run" {
				dryRun = true
			}
		}
		if err := migrateEvents(db, log, eventType, dryRun); err != nil {
			log.Fatal("Event migration failed", zap.Error(err))
		}
		return
	}

	// Create migrator
	m, err := migration.New(db, migrationsPath, log)
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer m.Close()

	// Execute command
	switch command {
	case "up":
		if err := m.Up(); err != nil {
			log.Fatal("Migration up failed", zap.Error(err))
		}

	case "down":
		if err := m.Down(); err != nil {
			log.Fatal("Migration down failed", zap.Error(err))
		}

	case "step":
		if len(args) < 2 {
			log.Fatal("Step count required. Usage: migrate step <n>")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatal("Invalid step count", zap.String("value", args[1]))
		}
		if err := m.Steps(n); err != nil {
			log.Fatal("Migration step failed", zap.Error(err))
		}

	case "goto":
		if len(args) < 2 {
			log.Fatal("Version required. Usage: migrate goto <version>")
		}
		version, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			log.Fatal("Invalid version number", zap.String("value", args[1]))
		}
		if err := m.GoTo(uint(version)); err != nil {
			log.Fatal("Migration goto failed", zap.Error(err))
		}

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			log.Fatal("Failed to get version", zap.Error(err))
		}
		if version == 0 {
			log.Info("No migrations applied")
		} else {
			log.Info("Current migration version",
				zap.Uint("version", version),
				zap.Bool("dirty", dirty),
			)
		}

	case "force":
		if len(args) < 2 {
			log.Fatal("Version required. Usage: migrate force <version>")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatal("Invalid version number", zap.String("value", args[1]))
		}
		log.Warn("Forcing migration version - use with caution!")
		if err := m.Force(version); err != nil {
			log.Fatal("Force version failed", zap.Error(err))
		}

	case "drop":
		log.Warn("This will DROP all database objects. Are you sure? (use -confirm flag)")
		// For safety, require explicit confirmation
		confirm := false
		for _, arg := range args[1:] {
			if arg == "-confirm" || arg == "--confirm" {
				confirm = true
				break
			}
		}
		if !confirm {
			log.Fatal("Drop cancelled. Use 'migrate drop -confirm' to confirm.")
		}
		if err := m.Drop(); err != nil {
			log.Fatal("Drop failed", zap.Error(err))
		}

	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
}

// migrateEvents upgrades stored outbox payloads of one event type to the
// current schema version. With dryRun it only reports the version
// distribution and the upgrade plan.
func migrateEvents(db *sql.DB, log *zap.Logger, eventType string, dryRun bool) error {
	serializer := event.NewVersionedSerializer(log)
	if err := event.RegisterAllEvents(serializer); err != nil {
		return fmt.Errorf("failed to register events: %w", err)
	}
	migrator := event.NewEventMigrator(serializer, log)

	if err := migrator.ValidateUpgradeChain(eventType); err != nil {
		return err
	}

	rows, err := db.Query(`SELECT id, payload FROM outbox_events WHERE event_type = $1`, eventType)
	if err != nil {
		return fmt.Errorf("failed to query outbox: %w", err)
	}
	defer rows.Close()

	var ids []string
	var payloads [][]byte
	for rows.Next() {
		var id string
		var payload []byte
		if err := rows.Scan(&id, &payload); err != nil {
			return fmt.Errorf("failed to scan outbox row: %w", err)
		}
		ids = append(ids, id)
		payloads = append(payloads, payload)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	analysis, err := migrator.AnalyzePayloads(eventType, payloads)
	if err != nil {
		return err
	}
	log.Info("Outbox payload analysis",
		zap.String("event_type", eventType),
		zap.Int("total", analysis.TotalEvents),
		zap.Int("needs_migration", analysis.NeedsMigration),
		zap.Int("up_to_date", analysis.UpToDate),
		zap.Int("current_version", analysis.CurrentVersion),
	)

	if dryRun {
		if analysis.OldestVersion > 0 {
			plan, err := migrator.CreateMigrationPlan(eventType, analysis.OldestVersion)
			if err != nil {
				return err
			}
			for _, step := range plan.UpgradeSteps {
				log.Info("Planned upgrade step",
					zap.Int("from", step.FromVersion),
					zap.Int("to", step.ToVersion),
					zap.Bool("has_upgrader", step.HasUpgrader),
				)
			}
			if !plan.IsValid() {
				return fmt.Errorf("upgrade chain for %s has gaps", eventType)
			}
		}
		return nil
	}

	upgraded, failed := 0, 0
	for i, payload := range payloads {
		newPayload, version, err := migrator.MigratePayload(eventType, payload)
		if err != nil {
			failed++
			log.Error("Failed to upgrade payload",
				zap.String("entry_id", ids[i]),
				zap.Error(err),
			)
			continue
		}
		if version <= serializer.GetEventVersion(payload) {
			continue
		}
		if _, err := db.Exec(`UPDATE outbox_events SET payload = $1, updated_at = now() WHERE id = $2`, newPayload, ids[i]); err != nil {
			return fmt.Errorf("failed to update entry %s: %w", ids[i], err)
		}
		upgraded++
	}

	log.Info("Event migration finished",
		zap.String("event_type", eventType),
		zap.Int("upgraded", upgraded),
		zap.Int("failed", failed),
	)
	if failed > 0 {
		return fmt.Errorf("%d payloads failed to upgrade", failed)
	}
	return nil
}

func printUsage() {
	fmt.Println(`NIA Database Migration Tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (positive=up, negative=down)
  goto <version>        Migrate to a specific version
  version               Show current migration version
  force <version>       Force set migration version (use with caution)
  drop -confirm         Drop all database objects (DANGEROUS)
  create <name> [desc]  Create a new migration file pair
  list                  List available migrations
  events <type> [--dry-run]
                        Upgrade stored outbox payloads of an event type
                        to the current schema version

Flags:
  -path string          Path to migrations directory (default: ./migrations)
  -log-level string     Log level: debug, info, warn, error (default: info)

Environment Variables:
  DB_HOST, DB_PORT, DB_USER, DB_PASSWORD, DB_NAME, DB_SSL_MODE

Examples:
  # Apply all pending migrations
  migrate up

  # Roll back the last migration
  migrate step -1

  # Create a new migration
  migrate create add_users_table "Create users table with basic fields"

  # Check current version
  migrate version`)
}
