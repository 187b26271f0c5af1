package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-sql-driver/mysql"
)

// on_table_exists policies.
const (
	onTableExistsIgnore   = "ignore"
	onTableExistsError    = "error"
	onTableExistsRecreate = "recreate"
)

// MigrationConfig holds the full TOML-driven migration configuration.
type MigrationConfig struct {
	Source SourceConfig `toml:"source"`
	Target TargetConfig `toml:"target"`

	MySQLIntegerType string `toml:"mysql_integer_type"`
	MySQLStringType  string `toml:"mysql_string_type"`

	ChunkSize     int    `toml:"chunk_size"`
	OnTableExists string `toml:"on_table_exists"` // ignore|error|recreate
	SchemaOnly    bool   `toml:"schema_only"`
	DataOnly      bool   `toml:"data_only"`

	WithoutForeignKeys  bool `toml:"without_foreign_keys"`
	IgnoreDuplicateKeys bool `toml:"ignore_duplicate_keys"`

	IncludeTables []string `toml:"include_tables"`
	ExcludeTables []string `toml:"exclude_tables"`

	Workers int `toml:"workers"`

	Hooks HooksConfig `toml:"hooks"`

	// configDir is the directory containing the TOML file, used to resolve
	// relative hook paths.
	configDir string
}

// SourceConfig identifies the SQLite database file.
type SourceConfig struct {
	Path string `toml:"path"`
}

// TargetConfig identifies the MySQL server and database.
type TargetConfig struct {
	DSN       string `toml:"dsn"`
	Charset   string `toml:"charset"`
	Collation string `toml:"collation"`
}

type HooksConfig struct {
	BeforeData []string `toml:"before_data"`
	AfterData  []string `toml:"after_data"`
	AfterAll   []string `toml:"after_all"`
}

func (c *MigrationConfig) typeConfig() TypeConfig {
	return TypeConfig{
		IntegerType: c.MySQLIntegerType,
		StringType:  c.MySQLStringType,
	}
}

// loadConfig reads a TOML config file and returns a MigrationConfig with
// defaults applied.
func loadConfig(path string) (*MigrationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := MigrationConfig{
		MySQLIntegerType: "INT(11)",
		MySQLStringType:  "VARCHAR(255)",
		ChunkSize:        5000,
		OnTableExists:    onTableExistsIgnore,
		Workers:          1,
	}
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if unknown := md.Undecoded(); len(unknown) > 0 {
		keys := make([]string, len(unknown))
		for i, k := range unknown {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	cfg.configDir = filepath.Dir(absPath)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *MigrationConfig) validate() error {
	if c.Source.Path == "" {
		return fmt.Errorf("source.path is required")
	}
	if c.Target.DSN == "" {
		return fmt.Errorf("target.dsn is required")
	}
	dsnCfg, err := mysql.ParseDSN(c.Target.DSN)
	if err != nil {
		return fmt.Errorf("target.dsn: %w", err)
	}
	if dsnCfg.DBName == "" {
		return fmt.Errorf("target.dsn must name a database")
	}

	if c.Target.Charset == "" {
		c.Target.Charset = "utf8mb4"
	}
	if c.Target.Collation == "" {
		c.Target.Collation = "utf8mb4_unicode_ci"
	}

	if c.MySQLIntegerType == "" || c.MySQLStringType == "" {
		return fmt.Errorf("mysql_integer_type and mysql_string_type must not be empty")
	}

	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive")
	}

	switch c.OnTableExists {
	case onTableExistsIgnore, onTableExistsError, onTableExistsRecreate:
	default:
		return fmt.Errorf("on_table_exists must be one of: ignore, error, recreate")
	}

	if c.SchemaOnly && c.DataOnly {
		return fmt.Errorf("schema_only and data_only are mutually exclusive")
	}

	if c.Workers <= 0 {
		c.Workers = 1
	}
	if max := maxWorkers(); c.Workers > max {
		c.Workers = max
	}

	return nil
}

// tableIncluded applies the include/exclude filters. An exclude entry wins
// over an include entry naming the same table.
func (c *MigrationConfig) tableIncluded(name string) bool {
	if slices.Contains(c.ExcludeTables, name) {
		return false
	}
	if len(c.IncludeTables) > 0 {
		return slices.Contains(c.IncludeTables, name)
	}
	return true
}

// filterTables returns the schema restricted to the configured tables.
func (c *MigrationConfig) filterTables(schema *Schema) *Schema {
	if len(c.IncludeTables) == 0 && len(c.ExcludeTables) == 0 {
		return schema
	}
	out := &Schema{}
	for _, t := range schema.Tables {
		if c.tableIncluded(t.Name) {
			out.Tables = append(out.Tables, t)
		}
	}
	return out
}

// resolvePath resolves a path relative to the config file directory.
func (c *MigrationConfig) resolvePath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.configDir, p)
}

func maxWorkers() int {
	n := runtime.NumCPU()
	if n < 1 {
		return 1
	}
	if n > 8 {
		return 8
	}
	return n
}
