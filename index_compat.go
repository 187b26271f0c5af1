package main

import (
	"fmt"
	"strings"
)

// textKeyPrefixLen is the key-part prefix applied to TEXT/BLOB index columns.
// MySQL cannot index those types without an explicit prefix length.
const textKeyPrefixLen = 255

func indexUnsupportedReason(idx Index) (string, bool) {
	if idx.HasExpression {
		return "expression index key-parts are not currently supported", true
	}
	if idx.Partial {
		return "partial indexes (WHERE clause) are not currently supported", true
	}
	if len(idx.Columns) == 0 {
		return "index has no plain column key-parts", true
	}
	return "", false
}

// indexKeyParts renders the column list of an index, adding prefix lengths
// for key parts whose target type cannot be indexed whole.
func indexKeyParts(idx Index, targetTypes map[string]string) string {
	parts := make([]string, len(idx.Columns))
	for i, col := range idx.Columns {
		if needsKeyPrefix(targetTypes[col]) {
			parts[i] = fmt.Sprintf("%s(%d)", mysqlIdent(col), textKeyPrefixLen)
		} else {
			parts[i] = mysqlIdent(col)
		}
	}
	return strings.Join(parts, ", ")
}

func needsKeyPrefix(mysqlType string) bool {
	base := mysqlType
	if i := strings.IndexByte(base, '('); i >= 0 {
		base = base[:i]
	}
	switch strings.TrimSpace(base) {
	case "TEXT", "TINYTEXT", "MEDIUMTEXT", "LONGTEXT",
		"BLOB", "TINYBLOB", "MEDIUMBLOB", "LONGBLOB":
		return true
	}
	return false
}

func collectIndexCompatibilityWarnings(schema *Schema) []string {
	var warnings []string
	for _, t := range schema.Tables {
		for _, idx := range t.Indexes {
			if reason, unsupported := indexUnsupportedReason(idx); unsupported {
				warnings = append(warnings, fmt.Sprintf("%s.%s: %s", t.Name, idx.Name, reason))
			}
		}
	}
	return warnings
}
