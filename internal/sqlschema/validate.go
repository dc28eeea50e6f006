package sqlschema

import (
	"fmt"

	"erdsketch/internal/logger"
	"erdsketch/internal/model"
)

// Validate checks the structural rules of an assembled schema. Every
// violation is collected and returned together in a *ValidationError. A
// table without a primary key only produces a warning.
func Validate(tables []model.Table) (warnings []string, err error) {
	var violations []string
	seen := make(map[string]bool, len(tables))

	for _, t := range tables {
		if seen[t.Name] {
			violations = append(violations, fmt.Sprintf("Duplicate table name: %s", t.Name))
		}
		seen[t.Name] = true

		if len(t.Attributes) == 0 {
			violations = append(violations, fmt.Sprintf("Table %s has no columns defined (empty table)", t.Name))
		}

		cols := make(map[string]bool, len(t.Attributes))
		for _, a := range t.Attributes {
			if cols[a.Name] {
				violations = append(violations, fmt.Sprintf("Duplicate column name '%s' in table %s", a.Name, t.Name))
			}
			cols[a.Name] = true

			if a.Type != model.FK {
				continue
			}
			if !a.HasReference() {
				violations = append(violations, fmt.Sprintf("Foreign key %s.%s is missing reference information", t.Name, a.Name))
				continue
			}
			ref := findTable(tables, a.RefTable)
			if ref == nil {
				violations = append(violations, fmt.Sprintf("Foreign key %s.%s references table %s: reference not found", t.Name, a.Name, a.RefTable))
				continue
			}
			if ref.Attribute(a.RefAttr) == nil {
				violations = append(violations, fmt.Sprintf("Foreign key %s.%s references column %s.%s: reference not found", t.Name, a.Name, a.RefTable, a.RefAttr))
			}
		}

		if !t.HasPrimaryKey() {
			w := fmt.Sprintf("Table %s has no primary key defined", t.Name)
			logger.Warn("%s", w)
			warnings = append(warnings, w)
		}
	}

	if len(violations) > 0 {
		return warnings, &ValidationError{Violations: violations}
	}
	return warnings, nil
}

func findTable(tables []model.Table, name string) *model.Table {
	for i := range tables {
		if tables[i].Name == name {
			return &tables[i]
		}
	}
	return nil
}
