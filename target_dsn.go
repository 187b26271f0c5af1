package main

import (
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

// targetDSNWithOptions normalizes the target DSN for migration work: UTC
// timestamps, parsed time values, and the configured connection collation.
func targetDSNWithOptions(baseDSN, collation string) (string, error) {
	cfg, err := mysql.ParseDSN(baseDSN)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Collation = collation
	return cfg.FormatDSN(), nil
}

// targetServerDSN strips the database name so CREATE DATABASE can run
// against a server-level connection.
func targetServerDSN(baseDSN, collation string) (string, error) {
	cfg, err := mysql.ParseDSN(baseDSN)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.DBName = ""
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Collation = collation
	return cfg.FormatDSN(), nil
}

// targetDBName extracts the database name from the target DSN.
func targetDBName(baseDSN string) (string, error) {
	cfg, err := mysql.ParseDSN(baseDSN)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	if cfg.DBName == "" {
		return "", fmt.Errorf("target DSN does not name a database")
	}
	return cfg.DBName, nil
}
