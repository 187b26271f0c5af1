package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"
)

// maxBindParams caps the placeholder count of a single bulk INSERT; the
// MySQL protocol limits prepared statements to 65535 parameters.
const maxBindParams = 60000

// migrateTables runs the per-table schema and data steps across all tables,
// sequentially or with a bounded worker pool. The run is fail-fast: the
// first error cancels everything and no further tables are touched.
func migrateTables(ctx context.Context, cfg *MigrationConfig, dst targetExecutor, schema *Schema) error {
	if cfg.Workers <= 1 || len(schema.Tables) <= 1 {
		src, err := openSQLite(cfg.Source.Path)
		if err != nil {
			return err
		}
		defer src.Close()
		for _, t := range schema.Tables {
			if err := migrateOneTable(ctx, cfg, src, dst, t); err != nil {
				return err
			}
		}
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tables := make(chan Table)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
		mu.Unlock()
	}

	// One source connection per worker; the target handle is already a pool.
	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			src, err := openSQLite(cfg.Source.Path)
			if err != nil {
				fail(err)
				return
			}
			defer src.Close()
			for t := range tables {
				if ctx.Err() != nil {
					return
				}
				if err := migrateOneTable(ctx, cfg, src, dst, t); err != nil {
					fail(err)
					return
				}
			}
		}()
	}

	for _, t := range schema.Tables {
		select {
		case tables <- t:
		case <-ctx.Done():
		}
	}
	close(tables)
	wg.Wait()

	return firstErr
}

func migrateOneTable(ctx context.Context, cfg *MigrationConfig, src *sqlx.DB, dst targetExecutor, t Table) error {
	if !cfg.DataOnly {
		log.Printf("  creating table %s", t.Name)
		if err := createTable(ctx, dst, t, cfg); err != nil {
			return err
		}
	}
	if cfg.SchemaOnly {
		return nil
	}

	progress, err := transferTable(ctx, src, dst, t, cfg)
	if err != nil {
		return err
	}
	log.Printf("  %s done: %d rows in %d chunks", t.Name, progress.RowsWritten, progress.Chunks)
	return nil
}

// transferTable streams one table from SQLite to MySQL in bounded chunks.
// Each chunk is a single multi-row INSERT executed in autocommit mode, so
// atomicity is chunk-level: a failing chunk is rolled back by the engine,
// but chunks already committed stay committed. Any insert error halts the
// transfer immediately; there is no retry and no skip-and-continue.
func transferTable(ctx context.Context, src *sqlx.DB, dst targetExecutor, t Table, cfg *MigrationConfig) (*TransferProgress, error) {
	progress := &TransferProgress{Table: t.Name}

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", sqliteIdent(t.Name))
	if err := src.GetContext(ctx, &total, countQuery); err != nil {
		log.Printf("    WARN: cannot count rows in %s: %v (reporting a raw counter)", t.Name, err)
	} else {
		progress.TotalRecords = total
	}

	colNames := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		colNames[i] = c.Name
	}

	chunkSize := effectiveChunkSize(cfg.ChunkSize, len(colNames))
	if chunkSize < cfg.ChunkSize {
		log.Printf("    chunk size capped to %d rows (%d columns)", chunkSize, len(colNames))
	}

	rows, err := src.QueryxContext(ctx, selectQuery(t))
	if err != nil {
		return progress, fmt.Errorf("read %s: %w", t.Name, err)
	}
	defer rows.Close()

	prefix := insertPrefix(t.Name, colNames, cfg.IgnoreDuplicateKeys)
	rowTuple := placeholderTuple(len(colNames))
	chunk := make([][]any, 0, chunkSize)

	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		if err := insertChunk(ctx, dst, prefix, rowTuple, chunk); err != nil {
			code := mysqlErrorCode(err)
			log.Printf("ERROR %d: chunk %d of %s failed (%d rows): %v",
				code, progress.Chunks, t.Name, len(chunk), err)
			return &DataExecutionError{
				Table: t.Name,
				Chunk: progress.Chunks,
				Rows:  len(chunk),
				Code:  code,
				Err:   err,
			}
		}
		progress.RowsWritten += int64(len(chunk))
		progress.Chunks++
		logChunkProgress(progress)
		chunk = chunk[:0]
		return nil
	}

	for rows.Next() {
		vals, err := rows.SliceScan()
		if err != nil {
			return progress, fmt.Errorf("scan %s: %w", t.Name, err)
		}
		chunk = append(chunk, translateRow(vals))
		progress.RowsRead++
		if len(chunk) >= chunkSize {
			if err := flush(); err != nil {
				return progress, err
			}
		}
	}
	if err := rows.Err(); err != nil {
		return progress, fmt.Errorf("read %s: %w", t.Name, err)
	}
	if err := flush(); err != nil {
		return progress, err
	}

	return progress, nil
}

// selectQuery reads the table ordered by its primary key when one exists;
// tables without a primary key are read in source row order.
func selectQuery(t Table) string {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = sqliteIdent(c.Name)
	}
	q := fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), sqliteIdent(t.Name))
	if t.PrimaryKey != nil {
		pkCols := make([]string, len(t.PrimaryKey.Columns))
		for i, c := range t.PrimaryKey.Columns {
			pkCols[i] = sqliteIdent(c)
		}
		q += " ORDER BY " + strings.Join(pkCols, ", ")
	}
	return q
}

func effectiveChunkSize(configured, numCols int) int {
	if numCols == 0 {
		return configured
	}
	max := maxBindParams / numCols
	if max < 1 {
		max = 1
	}
	if configured > max {
		return max
	}
	return configured
}

func insertPrefix(table string, cols []string, ignoreDuplicates bool) string {
	verb := "INSERT"
	if ignoreDuplicates {
		verb = "INSERT IGNORE"
	}
	return fmt.Sprintf("%s INTO %s (%s) VALUES ", verb, mysqlIdent(table), quotedColumnList(cols))
}

func placeholderTuple(numCols int) string {
	return "(" + strings.TrimSuffix(strings.Repeat("?, ", numCols), ", ") + ")"
}

func insertChunk(ctx context.Context, dst targetExecutor, prefix, rowTuple string, chunk [][]any) error {
	var b strings.Builder
	b.WriteString(prefix)
	args := make([]any, 0, len(chunk)*len(chunk[0]))
	for i, row := range chunk {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(rowTuple)
		args = append(args, row...)
	}
	_, err := dst.ExecContext(ctx, b.String(), args...)
	return err
}

// translateRow converts SQLite driver values to MySQL bind values. SQLite's
// storage classes (integer, real, text, blob, null) all bind natively on the
// MySQL side, so this stays a pass-through; it exists to keep the bind-type
// boundary explicit.
func translateRow(vals []any) []any {
	return vals
}

func logChunkProgress(p *TransferProgress) {
	if p.TotalRecords > 0 {
		pct := float64(p.RowsWritten) / float64(p.TotalRecords) * 100
		log.Printf("    %s: %d/%d rows (%.1f%%)", p.Table, p.RowsWritten, p.TotalRecords, pct)
		return
	}
	log.Printf("    %s: %d rows", p.Table, p.RowsWritten)
}
