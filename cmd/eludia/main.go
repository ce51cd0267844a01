// Package main implements the eludia command.
// It loads a table model, prints its schema documents, records definition
// versions and seeds existing SQLite tables with synthetic rows.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/mattn/go-sqlite3"

	"github.com/do-/ru-eludia-base/internal/catalog"
	"github.com/do-/ru-eludia-base/internal/config"
	merrors "github.com/do-/ru-eludia-base/internal/errors"
	"github.com/do-/ru-eludia-base/internal/seed"
	"github.com/do-/ru-eludia-base/pkg/model"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var (
		configFile  string
		modelPath   string
		dbPath      string
		rows        int
		describe    bool
		record      bool
		showVersion bool
		showHelp    bool
	)

	flag.StringVar(&configFile, "config", "", "Path to configuration file (YAML or JSON)")
	flag.StringVar(&modelPath, "model", "", "Path to the model file")
	flag.StringVar(&dbPath, "db", "", "SQLite database holding the tables to seed")
	flag.IntVar(&rows, "rows", -1, "Rows to generate per table (0 disables seeding)")
	flag.BoolVar(&describe, "describe", false, "Print summary and definition documents")
	flag.BoolVar(&record, "record", false, "Record definition versions in the catalog")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showHelp, "help", false, "Show help message")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "eludia - logical column model tooling\n\n")
		fmt.Fprintf(os.Stderr, "Usage: eludia [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  eludia --model model.yaml --describe\n")
		fmt.Fprintf(os.Stderr, "  eludia --model model.yaml --db test.db --rows 100\n")
		fmt.Fprintf(os.Stderr, "  eludia --config /etc/eludia/config.yaml --record\n")
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables (also read from .env):\n")
		fmt.Fprintf(os.Stderr, "  ELUDIA_MODEL_PATH       Model file\n")
		fmt.Fprintf(os.Stderr, "  ELUDIA_DATABASE_PATH    SQLite database to seed\n")
		fmt.Fprintf(os.Stderr, "  ELUDIA_SEED_ROWS        Rows per table\n")
		fmt.Fprintf(os.Stderr, "  ELUDIA_CATALOG_PATH     Definition catalog database\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("eludia version %s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	// A missing .env is not an error
	_ = godotenv.Load()

	cfg, err := loadConfig(configFile, modelPath, dbPath, rows, record)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	if err := run(ctx, cfg, describe, os.Stdout); err != nil {
		log.Printf("eludia: %v", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the process exit status: 2 for an invalid model,
// 3 for a model that does not match the database, 1 otherwise.
func exitCode(err error) int {
	switch merrors.GetCategory(err) {
	case merrors.ErrCategoryValidation:
		return 2
	case merrors.ErrCategoryBinding:
		return 3
	default:
		return 1
	}
}

// loadConfig loads configuration from file, environment, and command line flags.
func loadConfig(configFile, modelPath, dbPath string, rows int, record bool) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if configFile != "" {
		cfg, err = config.LoadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		cfg = config.DefaultConfig()
	}

	config.LoadFromEnv(cfg)

	// Command line flags take priority
	if modelPath != "" {
		cfg.ModelPath = modelPath
	}
	if dbPath != "" {
		cfg.DatabasePath = dbPath
	}
	if rows >= 0 {
		cfg.Seed.Rows = rows
	}
	if record {
		cfg.Catalog.Enabled = true
	}

	cfg.Resolve()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// run executes the configured actions against the model.
func run(ctx context.Context, cfg *config.Config, describe bool, out io.Writer) error {
	tables, err := model.LoadTables(cfg.ModelPath)
	if err != nil {
		return err
	}
	log.Printf("eludia: loaded %d tables from %s", len(tables), cfg.ModelPath)

	if describe {
		if err := describeTables(tables, out); err != nil {
			return err
		}
	}

	if cfg.Catalog.Enabled {
		if err := recordTables(ctx, cfg, tables); err != nil {
			return err
		}
	}

	if cfg.Seed.Rows > 0 {
		if err := seedTables(ctx, cfg, tables); err != nil {
			return err
		}
	}

	return nil
}

func describeTables(tables []*model.Table, out io.Writer) error {
	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	for _, t := range tables {
		doc := struct {
			Summary    model.TableSummary `json:"summary"`
			Definition json.Marshaler     `json:"definition"`
		}{t.Summary(), t.Definition()}
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to describe %s: %w", t.Name(), err)
		}
	}
	return nil
}

func recordTables(ctx context.Context, cfg *config.Config, tables []*model.Table) error {
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	cat, err := catalog.Open(cfg.Catalog.Path)
	if err != nil {
		return err
	}
	defer cat.Close()

	for _, t := range tables {
		v, created, err := cat.Register(ctx, t)
		if err != nil {
			return err
		}
		if !created {
			log.Printf("eludia: %s unchanged at version %d", t.Name(), v)
		}
	}
	return nil
}

func seedTables(ctx context.Context, cfg *config.Config, tables []*model.Table) error {
	db, err := sql.Open("sqlite3", cfg.DatabasePath+"?_busy_timeout=5000")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	seeder := seed.NewSeeder(db)
	for _, t := range tables {
		if !cfg.ShouldSeed(t.Name()) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := seeder.Seed(ctx, t, cfg.Seed.Rows); err != nil {
			return err
		}
	}

	for _, st := range seeder.Stats().Top(len(tables)) {
		log.Printf("eludia: seeded %s: %d rows in %v, %d columns skipped", st.Table, st.Rows, st.Duration, len(st.Skipped))
	}
	return nil
}
