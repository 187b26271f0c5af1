package main

import (
	"strings"
	"testing"
)

func testConfig() *MigrationConfig {
	return &MigrationConfig{
		Target:           TargetConfig{DSN: "user:pass@tcp(localhost:3306)/appdb", Charset: "utf8mb4", Collation: "utf8mb4_unicode_ci"},
		MySQLIntegerType: "INT(11)",
		MySQLStringType:  "VARCHAR(255)",
		ChunkSize:        10,
		OnTableExists:    onTableExistsIgnore,
		Workers:          1,
	}
}

func TestMySQLIdent(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"users", "`users`"},
		{"order", "`order`"},
		{"weird`name", "`weird``name`"},
		{"has space", "`has space`"},
	}
	for _, tt := range tests {
		if got := mysqlIdent(tt.in); got != tt.want {
			t.Errorf("mysqlIdent(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGenerateCreateDatabase(t *testing.T) {
	got := generateCreateDatabase("appdb", "utf8mb4", "utf8mb4_unicode_ci")
	want := "CREATE DATABASE IF NOT EXISTS `appdb` DEFAULT CHARACTER SET utf8mb4 DEFAULT COLLATE utf8mb4_unicode_ci"
	if got != want {
		t.Errorf("generateCreateDatabase = %q, want %q", got, want)
	}
}

func TestGenerateCreateTable(t *testing.T) {
	table := Table{
		Name: "payments",
		Columns: []Column{
			{Name: "id", DeclType: "INTEGER", PrimaryKey: true, AutoIncr: true},
			{Name: "name", DeclType: "VARCHAR(300)", Nullable: true},
			{Name: "amount", DeclType: "NUMERIC", Nullable: true},
		},
		PrimaryKey: &Index{Name: "PRIMARY", Columns: []string{"id"}, Unique: true, IsPrimary: true},
	}

	got, err := generateCreateTable(table, testConfig())
	if err != nil {
		t.Fatalf("generateCreateTable error: %v", err)
	}

	want := "CREATE TABLE IF NOT EXISTS `payments` (\n" +
		"  `id` INT(11) NOT NULL AUTO_INCREMENT,\n" +
		"  `name` VARCHAR(300) NULL,\n" +
		"  `amount` BIGINT(19) NULL,\n" +
		"  PRIMARY KEY (`id`)\n" +
		") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci"
	if got != want {
		t.Errorf("generateCreateTable:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestGenerateCreateTable_OnTableExistsError(t *testing.T) {
	cfg := testConfig()
	cfg.OnTableExists = onTableExistsError

	table := Table{
		Name:    "t",
		Columns: []Column{{Name: "a", DeclType: "INT", Nullable: true}},
	}
	got, err := generateCreateTable(table, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(got, "IF NOT EXISTS") {
		t.Errorf("on_table_exists=error must not emit IF NOT EXISTS:\n%s", got)
	}
}

func TestGenerateCreateTable_Defaults(t *testing.T) {
	strDefault := "'pending'"
	numDefault := "0"
	tsDefault := "CURRENT_TIMESTAMP"
	textDefault := "'unused'"
	exprDefault := "(datetime('now'))"

	table := Table{
		Name: "orders",
		Columns: []Column{
			{Name: "status", DeclType: "VARCHAR(20)", Default: &strDefault},
			{Name: "qty", DeclType: "INT", Default: &numDefault},
			{Name: "created_at", DeclType: "DATETIME", Default: &tsDefault, Nullable: true},
			{Name: "notes", DeclType: "TEXT", Default: &textDefault, Nullable: true},
			{Name: "stamp", DeclType: "VARCHAR(30)", Default: &exprDefault, Nullable: true},
		},
	}

	got, err := generateCreateTable(table, testConfig())
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"`status` VARCHAR(20) NOT NULL DEFAULT 'pending'",
		"`qty` INT(11) NOT NULL DEFAULT 0",
		"`created_at` DATETIME NULL DEFAULT CURRENT_TIMESTAMP",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}

	// TEXT columns cannot carry a default; expression defaults are skipped.
	if strings.Contains(got, "DEFAULT 'unused'") {
		t.Errorf("TEXT default must be skipped:\n%s", got)
	}
	if strings.Contains(got, "datetime('now')") {
		t.Errorf("expression default must be skipped:\n%s", got)
	}
}

func TestGenerateCreateTable_Indexes(t *testing.T) {
	table := Table{
		Name: "articles",
		Columns: []Column{
			{Name: "id", DeclType: "INTEGER", PrimaryKey: true},
			{Name: "slug", DeclType: "VARCHAR(100)", Nullable: true},
			{Name: "body", DeclType: "TEXT", Nullable: true},
		},
		PrimaryKey: &Index{Name: "PRIMARY", Columns: []string{"id"}, Unique: true, IsPrimary: true},
		Indexes: []Index{
			{Name: "idx_slug", Columns: []string{"slug"}, Unique: true},
			{Name: "idx_body", Columns: []string{"body"}},
			{Name: "idx_partial", Columns: []string{"slug"}, Partial: true},
			{Name: "idx_expr", HasExpression: true},
		},
	}

	got, err := generateCreateTable(table, testConfig())
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(got, "UNIQUE KEY `idx_slug` (`slug`)") {
		t.Errorf("missing unique index clause:\n%s", got)
	}
	// TEXT key parts need a prefix length in MySQL
	if !strings.Contains(got, "KEY `idx_body` (`body`(255))") {
		t.Errorf("missing prefixed TEXT index clause:\n%s", got)
	}
	if strings.Contains(got, "idx_partial") || strings.Contains(got, "idx_expr") {
		t.Errorf("unsupported indexes must be skipped:\n%s", got)
	}
}

func TestGenerateCreateTable_InvalidColumn(t *testing.T) {
	table := Table{
		Name:    "bad",
		Columns: []Column{{Name: "x", DeclType: "???"}},
	}
	if _, err := generateCreateTable(table, testConfig()); err == nil {
		t.Fatal("expected error for untranslatable column")
	}
}

func TestGenerateAddForeignKey(t *testing.T) {
	table := Table{Name: "orders"}
	fk := ForeignKey{
		Name:       "fk_orders_0",
		Columns:    []string{"user_id"},
		RefTable:   "users",
		RefColumns: []string{"id"},
		UpdateRule: "CASCADE",
		DeleteRule: "SET NULL",
	}

	got := generateAddForeignKey(table, fk)
	want := "ALTER TABLE `orders` ADD CONSTRAINT `fk_orders_0` FOREIGN KEY (`user_id`) " +
		"REFERENCES `users` (`id`) ON UPDATE CASCADE ON DELETE SET NULL"
	if got != want {
		t.Errorf("generateAddForeignKey:\ngot:  %s\nwant: %s", got, want)
	}
}
