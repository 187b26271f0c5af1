package main

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// MySQL server error numbers liteferry branches on.
const (
	erTableExists   = 1050 // ER_TABLE_EXISTS_ERROR
	erDupForeignKey = 1826 // ER_FK_DUP_NAME
)

// mysqlErrorCode extracts the MySQL server error number from err, or 0 when
// err does not wrap a *mysql.MySQLError.
func mysqlErrorCode(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

// SchemaExecutionError wraps a MySQL DDL failure. The driver error stays in
// the chain so callers can still reach the *mysql.MySQLError.
type SchemaExecutionError struct {
	Table string // empty for database-level statements
	Code  uint16
	Err   error
}

func (e *SchemaExecutionError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("schema execution failed (mysql error %d): %v", e.Code, e.Err)
	}
	return fmt.Sprintf("schema execution failed for table %s (mysql error %d): %v", e.Table, e.Code, e.Err)
}

func (e *SchemaExecutionError) Unwrap() error { return e.Err }

// DataExecutionError wraps a MySQL DML failure during chunked transfer,
// carrying the chunk's position for operator triage.
type DataExecutionError struct {
	Table string
	Chunk int // zero-based index of the failed chunk
	Rows  int // rows attempted in the failed chunk
	Code  uint16
	Err   error
}

func (e *DataExecutionError) Error() string {
	return fmt.Sprintf("data transfer failed for table %s at chunk %d (%d rows, mysql error %d): %v",
		e.Table, e.Chunk, e.Rows, e.Code, e.Err)
}

func (e *DataExecutionError) Unwrap() error { return e.Err }
