package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "liteferry [config.toml]",
	Short: "SQLite to MySQL migration tool",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runMigration,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to migration TOML config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runMigration(cmd *cobra.Command, args []string) error {
	// Resolve config path: positional arg takes precedence over --config flag
	cfgPath := configPath
	if len(args) > 0 {
		cfgPath = args[0]
	}
	if cfgPath == "" {
		return fmt.Errorf("config file required: liteferry <config.toml> or liteferry --config <config.toml>")
	}

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	start := time.Now()

	log.Printf("liteferry — SQLite → MySQL migration")
	log.Printf(
		"config: workers=%d chunk_size=%d on_table_exists=%s schema_only=%t data_only=%t without_foreign_keys=%t ignore_duplicate_keys=%t",
		cfg.Workers,
		cfg.ChunkSize,
		cfg.OnTableExists,
		cfg.SchemaOnly,
		cfg.DataOnly,
		cfg.WithoutForeignKeys,
		cfg.IgnoreDuplicateKeys,
	)

	// 1. Open SQLite (read-only) and introspect the schema
	log.Printf("opening SQLite database %s...", cfg.Source.Path)
	src, err := openSQLite(cfg.Source.Path)
	if err != nil {
		return err
	}

	if err := src.PingContext(ctx); err != nil {
		src.Close()
		return fmt.Errorf("ping sqlite: %w", err)
	}

	log.Printf("introspecting SQLite schema...")
	schema, err := introspectSchema(src)
	if err != nil {
		src.Close()
		return fmt.Errorf("introspect schema: %w", err)
	}

	schema = cfg.filterTables(schema)
	log.Printf("found %d tables", len(schema.Tables))
	for _, t := range schema.Tables {
		log.Printf("  %s (%d cols, %d indexes, %d fks)",
			t.Name, len(t.Columns), len(t.Indexes), len(t.ForeignKeys))
	}

	// 2. Preflight: every column must translate before any DDL is issued
	if errs := collectUnsupportedTypeErrors(schema, cfg.typeConfig()); len(errs) > 0 {
		src.Close()
		for _, e := range errs {
			log.Printf("  ERROR: %s", e)
		}
		return fmt.Errorf("%d column(s) cannot be translated to MySQL types", len(errs))
	}

	// 3. Compatibility report
	if warnings := collectIndexCompatibilityWarnings(schema); len(warnings) > 0 {
		log.Printf("index compatibility report: %d index(es) require manual handling", len(warnings))
		for _, w := range warnings {
			log.Printf("  WARN: %s", w)
		}
	}
	for _, w := range collectGeneratedColumnWarnings(schema) {
		log.Printf("  WARN: %s", w)
	}
	if objs, err := introspectSourceObjects(src); err == nil {
		for _, w := range sourceObjectWarnings(objs) {
			log.Printf("  WARN: %s", w)
		}
	}

	// Close the introspection connection — the data migration opens its own
	src.Close()

	dbName, err := targetDBName(cfg.Target.DSN)
	if err != nil {
		return err
	}

	// 4. Create the target database through a server-level connection
	if !cfg.DataOnly {
		log.Printf("creating MySQL database %s...", dbName)
		serverDSN, err := targetServerDSN(cfg.Target.DSN, cfg.Target.Collation)
		if err != nil {
			return err
		}
		serverDB, err := sqlx.Open("mysql", serverDSN)
		if err != nil {
			return fmt.Errorf("open mysql: %w", err)
		}
		if err := serverDB.PingContext(ctx); err != nil {
			serverDB.Close()
			return fmt.Errorf("ping mysql: %w", err)
		}
		if err := createDatabase(ctx, serverDB, dbName, cfg.Target.Charset, cfg.Target.Collation); err != nil {
			serverDB.Close()
			return err
		}
		serverDB.Close()
	}

	// 5. Connect to the target database
	log.Printf("connecting to MySQL database %s...", dbName)
	targetDSN, err := targetDSNWithOptions(cfg.Target.DSN, cfg.Target.Collation)
	if err != nil {
		return err
	}
	dst, err := sqlx.Open("mysql", targetDSN)
	if err != nil {
		return fmt.Errorf("open mysql: %w", err)
	}
	defer dst.Close()

	if err := dst.PingContext(ctx); err != nil {
		return fmt.Errorf("ping mysql: %w", err)
	}

	// 6. before_data hooks (run before any table is created or populated)
	if err := loadAndExecSQLFiles(ctx, dst, cfg, dbName, cfg.Hooks.BeforeData, "before_data"); err != nil {
		return fmt.Errorf("before_data hooks: %w", err)
	}

	// 7. Per table: create then transfer; fail-fast across the whole run
	log.Printf("migrating %d tables with %d workers...", len(schema.Tables), cfg.Workers)
	if err := migrateTables(ctx, cfg, dst, schema); err != nil {
		return fmt.Errorf("migrate tables: %w", err)
	}

	// 8. after_data hooks
	if err := loadAndExecSQLFiles(ctx, dst, cfg, dbName, cfg.Hooks.AfterData, "after_data"); err != nil {
		return fmt.Errorf("after_data hooks: %w", err)
	}

	// 9. Foreign keys last, so creation and population order never mattered
	if !cfg.WithoutForeignKeys && !cfg.DataOnly {
		log.Printf("adding foreign keys...")
		if err := addForeignKeys(ctx, dst, schema, cfg); err != nil {
			return fmt.Errorf("add foreign keys: %w", err)
		}
	}

	// 10. after_all hooks
	if err := loadAndExecSQLFiles(ctx, dst, cfg, dbName, cfg.Hooks.AfterAll, "after_all"); err != nil {
		return fmt.Errorf("after_all hooks: %w", err)
	}

	log.Printf("migration completed in %s", time.Since(start).Round(time.Millisecond))
	return nil
}
