package main

import (
	"database/sql"
	"fmt"
	"net/url"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// openSQLite opens the source database read-only. The source is never
// written to; forcing mode=ro makes that a hard guarantee.
func openSQLite(path string) (*sqlx.DB, error) {
	uri, err := sqliteReadOnlyURI(path)
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open("sqlite", uri)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return db, nil
}

func sqliteReadOnlyURI(path string) (string, error) {
	// In-memory databases make no sense as a migration source: each
	// sql.Open would get a separate empty DB.
	if path == ":memory:" || path == "file::memory:" || strings.Contains(path, "mode=memory") {
		return "", fmt.Errorf("in-memory SQLite databases are not supported")
	}

	if !strings.HasPrefix(path, "file:") {
		return "file:" + path + "?mode=ro", nil
	}

	// URI form — add or override mode=ro
	u, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse sqlite URI: %w", err)
	}
	q := u.Query()
	q.Set("mode", "ro")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// sqliteDBName derives a logical database name from the source file path.
func sqliteDBName(path string) string {
	p := path
	if strings.HasPrefix(p, "file:") {
		if u, err := url.Parse(p); err == nil {
			p = u.Path
			if p == "" {
				p = u.Opaque
			}
		} else {
			p = strings.TrimPrefix(p, "file:")
			if idx := strings.IndexByte(p, '?'); idx >= 0 {
				p = p[:idx]
			}
		}
	}
	base := filepath.Base(p)
	if ext := filepath.Ext(base); ext != "" {
		base = base[:len(base)-len(ext)]
	}
	if base == "" {
		return "sqlite"
	}
	return base
}

// sqliteIdent quotes a SQLite identifier.
func sqliteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// introspectSchema reads all user tables with their columns, indexes, and
// foreign keys. Raw type declarations are preserved for the translator.
func introspectSchema(db *sqlx.DB) (*Schema, error) {
	tables, err := introspectTables(db)
	if err != nil {
		return nil, fmt.Errorf("introspect tables: %w", err)
	}

	for i := range tables {
		t := &tables[i]

		cols, err := introspectColumns(db, t.Name)
		if err != nil {
			return nil, fmt.Errorf("introspect columns for %s: %w", t.Name, err)
		}
		t.Columns = cols

		indexes, err := introspectIndexes(db, t.Name)
		if err != nil {
			return nil, fmt.Errorf("introspect indexes for %s: %w", t.Name, err)
		}
		for _, idx := range indexes {
			if idx.IsPrimary {
				pk := idx
				t.PrimaryKey = &pk
			} else {
				t.Indexes = append(t.Indexes, idx)
			}
		}

		markAutoIncrement(db, t)

		fks, err := introspectForeignKeys(db, t.Name)
		if err != nil {
			return nil, fmt.Errorf("introspect foreign keys for %s: %w", t.Name, err)
		}
		t.ForeignKeys = fks
	}

	return &Schema{Tables: tables}, nil
}

func introspectTables(db *sqlx.DB) ([]Table, error) {
	var names []string
	err := db.Select(&names,
		"SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, err
	}
	tables := make([]Table, len(names))
	for i, name := range names {
		tables[i] = Table{Name: name}
	}
	return tables, nil
}

func introspectColumns(db *sqlx.DB, tableName string) ([]Column, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_xinfo(%s)", sqliteIdent(tableName)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var cid, notnull, pk, hidden int
		var name, declType string
		var dflt *string
		if err := rows.Scan(&cid, &name, &declType, &notnull, &dflt, &pk, &hidden); err != nil {
			return nil, err
		}

		// hidden=1 marks internal columns of virtual tables; skip those.
		if hidden == 1 {
			continue
		}

		col := Column{
			Name:       name,
			DeclType:   declType,
			Nullable:   notnull == 0,
			Default:    dflt,
			PrimaryKey: pk > 0,
		}
		switch hidden {
		case 2:
			col.Extra = "STORED GENERATED"
		case 3:
			col.Extra = "VIRTUAL GENERATED"
		}
		cols = append(cols, col)
	}
	return cols, rows.Err()
}

// markAutoIncrement flags columns that behave as auto-increment on the MySQL
// side: explicit AUTOINCREMENT columns plus single-column INTEGER PRIMARY
// KEYs, which are rowid aliases in SQLite.
func markAutoIncrement(db *sqlx.DB, t *Table) {
	explicit := detectAutoIncrement(db, t.Name)

	singlePK := t.PrimaryKey != nil && len(t.PrimaryKey.Columns) == 1

	for i := range t.Columns {
		col := &t.Columns[i]
		if explicit[col.Name] {
			col.AutoIncr = true
			continue
		}
		if singlePK && col.Name == t.PrimaryKey.Columns[0] &&
			strings.EqualFold(strings.TrimSpace(col.DeclType), "INTEGER") {
			col.AutoIncr = true
		}
	}
}

// detectAutoIncrement scans the CREATE TABLE SQL for an AUTOINCREMENT column.
func detectAutoIncrement(db *sqlx.DB, tableName string) map[string]bool {
	result := make(map[string]bool)
	var createSQL sql.NullString
	err := db.QueryRow("SELECT sql FROM sqlite_master WHERE type='table' AND name=?", tableName).Scan(&createSQL)
	if err != nil || !createSQL.Valid {
		return result
	}

	upper := strings.ToUpper(createSQL.String)
	idx := strings.Index(upper, "AUTOINCREMENT")
	if idx <= 0 {
		return result
	}

	// The column name precedes "INTEGER PRIMARY KEY AUTOINCREMENT".
	prefix := strings.TrimRight(createSQL.String[:idx], " \t\n\r")
	tokens := strings.Fields(prefix)
	for i := len(tokens) - 1; i >= 0; i-- {
		switch strings.ToUpper(tokens[i]) {
		case "INTEGER", "PRIMARY", "KEY":
			continue
		}
		colName := strings.Trim(tokens[i], ",(\"`[] \n\r\t")
		if colName != "" {
			result[colName] = true
		}
		break
	}
	return result
}

func introspectIndexes(db *sqlx.DB, tableName string) ([]Index, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA index_list(%s)", sqliteIdent(tableName)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indexes []Index
	for rows.Next() {
		var seq, unique, partial int
		var name, origin string
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			return nil, err
		}

		// Auto-generated PK indexes are rebuilt from table_info instead.
		if origin == "pk" {
			continue
		}

		idx := Index{
			Name:    name,
			Unique:  unique == 1,
			Partial: partial == 1,
		}

		colRows, err := db.Query(fmt.Sprintf("PRAGMA index_info(%s)", sqliteIdent(name)))
		if err != nil {
			return nil, err
		}
		for colRows.Next() {
			var seqno, cid int
			var colName *string
			if err := colRows.Scan(&seqno, &cid, &colName); err != nil {
				colRows.Close()
				return nil, err
			}
			if colName == nil {
				idx.HasExpression = true
				continue
			}
			idx.Columns = append(idx.Columns, *colName)
		}
		colRows.Close()

		indexes = append(indexes, idx)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	pk, err := buildPrimaryKey(db, tableName)
	if err != nil {
		return nil, err
	}
	if pk != nil {
		indexes = append(indexes, *pk)
	}

	return indexes, nil
}

// buildPrimaryKey reconstructs the primary key from the pk column of
// PRAGMA table_info, which covers rowid aliases that have no pk index.
func buildPrimaryKey(db *sqlx.DB, tableName string) (*Index, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", sqliteIdent(tableName)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type pkCol struct {
		name  string
		pkPos int
	}
	var pkCols []pkCol

	for rows.Next() {
		var cid, notnull, pk int
		var name, colType string
		var dflt *string
		if err := rows.Scan(&cid, &name, &colType, &notnull, &dflt, &pk); err != nil {
			return nil, err
		}
		if pk > 0 {
			pkCols = append(pkCols, pkCol{name: name, pkPos: pk})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(pkCols) == 0 {
		return nil, nil
	}

	slices.SortFunc(pkCols, func(a, b pkCol) int { return a.pkPos - b.pkPos })

	idx := &Index{
		Name:      "PRIMARY",
		Unique:    true,
		IsPrimary: true,
	}
	for _, pc := range pkCols {
		idx.Columns = append(idx.Columns, pc.name)
	}
	return idx, nil
}

func introspectForeignKeys(db *sqlx.DB, tableName string) ([]ForeignKey, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA foreign_key_list(%s)", sqliteIdent(tableName)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fkMap := make(map[int]*ForeignKey)
	var fkOrder []int

	for rows.Next() {
		var id, seq int
		var refTable, from, onUpdate, onDelete, match string
		var to *string // nil when the FK references the parent's primary key implicitly
		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return nil, err
		}

		fk, ok := fkMap[id]
		if !ok {
			fk = &ForeignKey{
				Name:       fmt.Sprintf("fk_%s_%d", tableName, id),
				RefTable:   refTable,
				UpdateRule: normalizeFKRule(onUpdate),
				DeleteRule: normalizeFKRule(onDelete),
			}
			fkMap[id] = fk
			fkOrder = append(fkOrder, id)
		}
		fk.Columns = append(fk.Columns, from)
		if to != nil {
			fk.RefColumns = append(fk.RefColumns, *to)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var fks []ForeignKey
	for _, id := range fkOrder {
		fk := fkMap[id]
		if len(fk.RefColumns) != len(fk.Columns) {
			if err := resolveImplicitFKColumns(db, fk); err != nil {
				return nil, err
			}
		}
		fks = append(fks, *fk)
	}
	return fks, nil
}

// resolveImplicitFKColumns fills in the referenced columns of a foreign key
// declared without a column list ("REFERENCES parent"), which SQLite treats
// as a reference to the parent's primary key.
func resolveImplicitFKColumns(db *sqlx.DB, fk *ForeignKey) error {
	pk, err := buildPrimaryKey(db, fk.RefTable)
	if err != nil {
		return err
	}
	if pk != nil && len(pk.Columns) == len(fk.Columns) {
		fk.RefColumns = pk.Columns
	}
	return nil
}

func normalizeFKRule(rule string) string {
	r := strings.ToUpper(strings.TrimSpace(rule))
	if r == "" {
		return "NO ACTION"
	}
	return r
}
