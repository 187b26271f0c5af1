package main

import (
	"fmt"
	"regexp"
	"strings"
)

// InvalidColumnTypeError reports a SQLite column declaration that cannot be
// parsed into a MySQL type. Always a schema-definition error, never retried.
type InvalidColumnTypeError struct {
	Declared string
}

func (e *InvalidColumnTypeError) Error() string {
	return fmt.Sprintf("invalid column type %q", e.Declared)
}

// TypeConfig holds the configurable MySQL target types for SQLite's loosely
// typed integer and string affinities.
type TypeConfig struct {
	IntegerType string // e.g. "INT(11)", "BIGINT(20) UNSIGNED"
	StringType  string // e.g. "VARCHAR(255)"
}

func defaultTypeConfig() TypeConfig {
	return TypeConfig{
		IntegerType: "INT(11)",
		StringType:  "VARCHAR(255)",
	}
}

// declPattern splits a normalized declaration into base keyword(s), an
// optional parenthesized length/precision suffix, and an optional trailing
// signedness keyword.
var declPattern = regexp.MustCompile(`^([A-Z][A-Z0-9 ]*?)\s*(\(\s*\d+\s*(?:,\s*\d+\s*)?\))?\s*(UNSIGNED|SIGNED)?$`)

var digitRun = regexp.MustCompile(`\d+`)

// translateType maps a SQLite column-type declaration onto a MySQL column
// type. The rules are evaluated in a fixed priority order and the first match
// wins; several rules could otherwise claim the same input (e.g. "INT(11)"
// is both integer-affinity and a parametrized INT). Pure: no state beyond cfg.
//
// Order: exact synonyms, integer affinity, string affinity, bare
// numeric/decimal, identity fallback.
func translateType(declared string, cfg TypeConfig) (string, error) {
	decl := strings.ToUpper(strings.TrimSpace(declared))
	decl = strings.Join(strings.Fields(decl), " ")

	m := declPattern.FindStringSubmatch(decl)
	if m == nil {
		return "", &InvalidColumnTypeError{Declared: declared}
	}
	base, suffix, sign := m[1], normalizeSuffix(m[2]), m[3]

	// First digit run of the suffix: the length (or precision) modifier.
	length := digitRun.FindString(suffix)

	// Exact synonyms. TEXT and DOUBLE carry no meaningful length in MySQL,
	// so any suffix is dropped; CHAR keeps it.
	switch base {
	case "TEXT", "CLOB", "STRING":
		return "TEXT", nil
	case "CHARACTER", "NCHAR", "NATIVE CHARACTER":
		return "CHAR" + suffix, nil
	case "DOUBLE PRECISION":
		return "DOUBLE", nil
	case "UNSIGNED BIG INT":
		// Length goes before the UNSIGNED keyword, matching MySQL syntax.
		if length != "" {
			return fmt.Sprintf("BIGINT(%s) UNSIGNED", length), nil
		}
		return "BIGINT UNSIGNED", nil
	}

	// Integer affinity: any remaining base keyword containing INT maps to the
	// configured integer type. A source length overrides the digits embedded
	// in the configured type rather than appending a second suffix.
	if strings.Contains(base, "INT") {
		out := cfg.IntegerType
		if length != "" {
			out = digitRun.ReplaceAllString(out, length)
		}
		if sign == "UNSIGNED" && !strings.Contains(out, "UNSIGNED") {
			out += " UNSIGNED"
		}
		return out, nil
	}

	// String affinity.
	switch base {
	case "VARCHAR", "NVARCHAR", "VARYING CHARACTER":
		out := cfg.StringType
		if length != "" {
			out = digitRun.ReplaceAllString(out, length)
		}
		return out, nil
	}

	// Numeric affinity without explicit precision: SQLite attaches no fixed
	// precision, so a conservative wide integer avoids truncation.
	if (base == "NUMERIC" || base == "DECIMAL") && suffix == "" {
		return "BIGINT(19)", nil
	}

	// Identity fallback: BLOB, REAL, DATE, DATETIME, DECIMAL(p,s), ...
	out := base + suffix
	if sign != "" {
		out += " " + sign
	}
	return out, nil
}

// normalizeSuffix strips interior whitespace from a parenthesized suffix so
// "( 10 , 2 )" renders as "(10,2)".
func normalizeSuffix(suffix string) string {
	if suffix == "" {
		return ""
	}
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, suffix)
}
