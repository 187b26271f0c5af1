package main

import (
	"fmt"
	"log"
	"strings"
)

// mysqlIdent quotes a MySQL identifier. Identifiers are always backtick
// quoted, so reserved words and odd characters never need special casing.
func mysqlIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func quotedColumnList(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = mysqlIdent(c)
	}
	return strings.Join(quoted, ", ")
}

// generateCreateDatabase produces the conditional database-creation statement.
func generateCreateDatabase(name, charset, collation string) string {
	return fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s DEFAULT CHARACTER SET %s DEFAULT COLLATE %s",
		mysqlIdent(name), charset, collation)
}

// generateCreateTable produces a full CREATE TABLE statement: translated
// column types, NULL/DEFAULT clauses, AUTO_INCREMENT, primary key, and
// in-table secondary indexes. Foreign keys are added in a later phase so
// table creation order never matters.
func generateCreateTable(t Table, cfg *MigrationConfig) (string, error) {
	var b strings.Builder

	ifNotExists := ""
	if cfg.OnTableExists == onTableExistsIgnore {
		ifNotExists = "IF NOT EXISTS "
	}
	fmt.Fprintf(&b, "CREATE TABLE %s%s (\n", ifNotExists, mysqlIdent(t.Name))

	targetTypes := make(map[string]string, len(t.Columns))
	var defs []string
	for _, col := range t.Columns {
		mysqlType, err := translateType(col.DeclType, cfg.typeConfig())
		if err != nil {
			return "", fmt.Errorf("column %s.%s: %w", t.Name, col.Name, err)
		}
		targetTypes[col.Name] = mysqlType

		def := fmt.Sprintf("  %s %s", mysqlIdent(col.Name), mysqlType)
		if col.Nullable {
			def += " NULL"
		} else {
			def += " NOT NULL"
		}
		if dflt, ok := mapDefault(t.Name, col, mysqlType); ok {
			def += " DEFAULT " + dflt
		}
		if col.AutoIncr {
			def += " AUTO_INCREMENT"
		}
		defs = append(defs, def)
	}

	if t.PrimaryKey != nil {
		defs = append(defs, fmt.Sprintf("  PRIMARY KEY (%s)", quotedColumnList(t.PrimaryKey.Columns)))
	}

	for _, idx := range t.Indexes {
		if reason, unsupported := indexUnsupportedReason(idx); unsupported {
			log.Printf("    WARN: skipping index %s on %s: %s", idx.Name, t.Name, reason)
			continue
		}
		kind := "KEY"
		if idx.Unique {
			kind = "UNIQUE KEY"
		}
		defs = append(defs, fmt.Sprintf("  %s %s (%s)",
			kind, mysqlIdent(idx.Name), indexKeyParts(idx, targetTypes)))
	}

	b.WriteString(strings.Join(defs, ",\n"))
	fmt.Fprintf(&b, "\n) ENGINE=InnoDB DEFAULT CHARSET=%s COLLATE=%s", cfg.Target.Charset, cfg.Target.Collation)
	return b.String(), nil
}

// mapDefault decides whether a SQLite DEFAULT expression can be carried over
// verbatim. MySQL rejects defaults on TEXT/BLOB columns and arbitrary
// expression defaults, so those are skipped with a warning.
func mapDefault(tableName string, col Column, mysqlType string) (string, bool) {
	if col.Default == nil {
		return "", false
	}
	raw := strings.TrimSpace(*col.Default)
	if raw == "" || strings.EqualFold(raw, "NULL") {
		return "", false
	}

	if !supportsDefault(mysqlType) {
		log.Printf("    WARN: skipping DEFAULT %s for %s.%s (%s columns cannot have a default)",
			raw, tableName, col.Name, mysqlType)
		return "", false
	}

	upper := strings.ToUpper(raw)
	switch upper {
	case "CURRENT_TIMESTAMP":
		if strings.HasPrefix(mysqlType, "DATETIME") || strings.HasPrefix(mysqlType, "TIMESTAMP") {
			return upper, true
		}
		log.Printf("    WARN: skipping DEFAULT CURRENT_TIMESTAMP for %s.%s (target type %s)",
			tableName, col.Name, mysqlType)
		return "", false
	case "TRUE":
		return "1", true
	case "FALSE":
		return "0", true
	}

	if isNumericLiteral(raw) {
		return raw, true
	}

	// Single-quoted string literal, passed through as-is (SQLite and MySQL
	// share the '' escape).
	if len(raw) >= 2 && raw[0] == '\'' && raw[len(raw)-1] == '\'' {
		return raw, true
	}

	log.Printf("    WARN: skipping expression DEFAULT %s for %s.%s", raw, tableName, col.Name)
	return "", false
}

// supportsDefault reports whether a MySQL type accepts a DEFAULT clause.
func supportsDefault(mysqlType string) bool {
	base := mysqlType
	if idx := strings.IndexByte(base, '('); idx >= 0 {
		base = base[:idx]
	}
	base = strings.TrimSpace(base)
	switch base {
	case "TEXT", "TINYTEXT", "MEDIUMTEXT", "LONGTEXT",
		"BLOB", "TINYBLOB", "MEDIUMBLOB", "LONGBLOB", "JSON", "GEOMETRY":
		return false
	}
	return true
}

func isNumericLiteral(s string) bool {
	if s == "" {
		return false
	}
	hasDot := false
	start := 0
	if s[0] == '-' || s[0] == '+' {
		start = 1
	}
	if start >= len(s) {
		return false
	}
	for i := start; i < len(s); i++ {
		if s[i] == '.' {
			if hasDot {
				return false
			}
			hasDot = true
			continue
		}
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// generateAddForeignKey produces the ALTER TABLE statement for one FK.
func generateAddForeignKey(t Table, fk ForeignKey) string {
	return fmt.Sprintf(
		"ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s) ON UPDATE %s ON DELETE %s",
		mysqlIdent(t.Name),
		mysqlIdent(fk.Name),
		quotedColumnList(fk.Columns),
		mysqlIdent(fk.RefTable),
		quotedColumnList(fk.RefColumns),
		fk.UpdateRule, fk.DeleteRule,
	)
}
