package main

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SourceObjects holds non-table source objects that require manual migration.
type SourceObjects struct {
	Views    []string
	Triggers []string
}

func introspectSourceObjects(db *sqlx.DB) (*SourceObjects, error) {
	objs := &SourceObjects{}

	if err := db.Select(&objs.Views,
		"SELECT name FROM sqlite_master WHERE type='view' ORDER BY name"); err != nil {
		return nil, fmt.Errorf("introspect views: %w", err)
	}
	if err := db.Select(&objs.Triggers,
		"SELECT name FROM sqlite_master WHERE type='trigger' ORDER BY name"); err != nil {
		return nil, fmt.Errorf("introspect triggers: %w", err)
	}

	return objs, nil
}

func sourceObjectWarnings(objs *SourceObjects) []string {
	if objs == nil {
		return nil
	}

	var warnings []string
	if len(objs.Views) == 0 && len(objs.Triggers) == 0 {
		return warnings
	}

	warnings = append(warnings,
		fmt.Sprintf(
			"source contains non-table objects not migrated automatically (%d views, %d triggers)",
			len(objs.Views), len(objs.Triggers),
		),
	)
	for _, v := range objs.Views {
		warnings = append(warnings, fmt.Sprintf("view: %s", v))
	}
	for _, t := range objs.Triggers {
		warnings = append(warnings, fmt.Sprintf("trigger: %s", t))
	}
	return warnings
}
