package main

import "fmt"

func isGeneratedColumn(col Column) bool {
	return col.Extra == "STORED GENERATED" || col.Extra == "VIRTUAL GENERATED"
}

func collectGeneratedColumnWarnings(schema *Schema) []string {
	if schema == nil {
		return nil
	}

	var warnings []string
	for _, t := range schema.Tables {
		for _, col := range t.Columns {
			if !isGeneratedColumn(col) {
				continue
			}
			warnings = append(warnings, fmt.Sprintf(
				"generated column %s.%s (%s) will be materialized as plain data; generation expression is not recreated",
				t.Name, col.Name, col.Extra,
			))
		}
	}
	return warnings
}
