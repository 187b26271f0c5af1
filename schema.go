package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
)

// targetExecutor is the slice of the MySQL connection the schema builder and
// transfer pipeline need. *sqlx.DB satisfies it; tests substitute fakes.
type targetExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// createDatabase issues the conditional CREATE DATABASE. Any engine error is
// logged with its numeric code and returned wrapped; the driver error stays
// reachable through the chain.
func createDatabase(ctx context.Context, exec targetExecutor, name, charset, collation string) error {
	stmt := generateCreateDatabase(name, charset, collation)
	if _, err := exec.ExecContext(ctx, stmt); err != nil {
		code := mysqlErrorCode(err)
		log.Printf("ERROR %d: create database %s failed: %v", code, name, err)
		return &SchemaExecutionError{Code: code, Err: err}
	}
	return nil
}

// createTable builds and executes the CREATE TABLE statement for one table.
// Creation is all-or-nothing per table; an "already exists" condition is
// tolerated only under the configured on_table_exists policy.
func createTable(ctx context.Context, exec targetExecutor, t Table, cfg *MigrationConfig) error {
	if cfg.OnTableExists == onTableExistsRecreate {
		drop := fmt.Sprintf("DROP TABLE IF EXISTS %s", mysqlIdent(t.Name))
		if _, err := exec.ExecContext(ctx, drop); err != nil {
			code := mysqlErrorCode(err)
			log.Printf("ERROR %d: drop table %s failed: %v", code, t.Name, err)
			return &SchemaExecutionError{Table: t.Name, Code: code, Err: err}
		}
	}

	stmt, err := generateCreateTable(t, cfg)
	if err != nil {
		return err
	}

	if _, err := exec.ExecContext(ctx, stmt); err != nil {
		code := mysqlErrorCode(err)
		if code == erTableExists && cfg.OnTableExists == onTableExistsIgnore {
			log.Printf("  table %s already exists, skipping creation", t.Name)
			return nil
		}
		log.Printf("ERROR %d: create table %s failed: %v", code, t.Name, err)
		return &SchemaExecutionError{Table: t.Name, Code: code, Err: err}
	}
	return nil
}

// addForeignKeys applies all FK constraints after every table has been
// created and populated, so referential order never constrains the transfer.
func addForeignKeys(ctx context.Context, exec targetExecutor, schema *Schema, cfg *MigrationConfig) error {
	for _, t := range schema.Tables {
		for _, fk := range t.ForeignKeys {
			if len(fk.Columns) == 0 || len(fk.RefColumns) != len(fk.Columns) {
				log.Printf("    WARN: skipping foreign key %s on %s: unresolved referenced columns", fk.Name, t.Name)
				continue
			}
			stmt := generateAddForeignKey(t, fk)
			if _, err := exec.ExecContext(ctx, stmt); err != nil {
				code := mysqlErrorCode(err)
				if code == erDupForeignKey && cfg.OnTableExists == onTableExistsIgnore {
					log.Printf("  foreign key %s on %s already exists, skipping", fk.Name, t.Name)
					continue
				}
				log.Printf("ERROR %d: add foreign key %s on %s failed: %v", code, fk.Name, t.Name, err)
				return &SchemaExecutionError{Table: t.Name, Code: code, Err: err}
			}
		}
	}
	return nil
}
