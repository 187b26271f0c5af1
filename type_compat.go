package main

import "fmt"

// collectUnsupportedTypeErrors runs the translator across the whole schema
// before any DDL is issued, so an untranslatable column fails the run up
// front instead of halfway through.
func collectUnsupportedTypeErrors(schema *Schema, cfg TypeConfig) []string {
	if schema == nil {
		return nil
	}

	var errs []string
	for _, t := range schema.Tables {
		for _, col := range t.Columns {
			if _, err := translateType(col.DeclType, cfg); err != nil {
				errs = append(errs, fmt.Sprintf("%s.%s (%s): %v", t.Name, col.Name, col.DeclType, err))
			}
		}
	}
	return errs
}
