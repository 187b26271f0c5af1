package main

// Column represents a single column from the SQLite schema.
type Column struct {
	Name       string
	DeclType   string  // raw declared type, e.g. "VARCHAR(300)", "UNSIGNED BIG INT"
	Nullable   bool
	Default    *string // raw DEFAULT expression as stored by SQLite, nil if absent
	PrimaryKey bool
	AutoIncr   bool
	Extra      string // e.g. "STORED GENERATED", "VIRTUAL GENERATED"
}

// Index represents a SQLite index (may span multiple columns).
type Index struct {
	Name          string
	Columns       []string
	Unique        bool
	IsPrimary     bool
	Partial       bool // index with a WHERE clause, not representable in MySQL
	HasExpression bool // expression key-part not representable as a plain column list
}

// ForeignKey represents a SQLite foreign key constraint.
type ForeignKey struct {
	Name       string
	Columns    []string
	RefTable   string
	RefColumns []string
	UpdateRule string // CASCADE, SET NULL, etc.
	DeleteRule string
}

// Table holds the full introspected definition of a SQLite table.
// Identifiers carry over to MySQL unchanged.
type Table struct {
	Name        string
	Columns     []Column
	PrimaryKey  *Index
	Indexes     []Index // non-primary indexes
	ForeignKeys []ForeignKey
}

// Schema holds all introspected tables for a SQLite database.
type Schema struct {
	Tables []Table
}

// TransferProgress tracks per-table counters for one chunked transfer.
type TransferProgress struct {
	Table        string
	RowsRead     int64
	RowsWritten  int64
	TotalRecords int64 // 0 when unknown
	Chunks       int
}
