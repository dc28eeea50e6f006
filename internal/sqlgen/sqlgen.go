// Package sqlgen writes a table model back out as CREATE TABLE statements.
package sqlgen

import (
	"regexp"
	"strings"

	"erdsketch/internal/model"
)

// NoTables is returned by Generate when no table has any attribute.
const NoTables = "No tables to export!"

// Options tunes the generated SQL.
type Options struct {
	// IncludeModifiers also writes UNIQUE, DEFAULT and AUTO_INCREMENT from
	// the attribute modifiers.
	IncludeModifiers bool
}

// Generate renders tables with the default options.
func Generate(tables []model.Table) string {
	return GenerateWith(tables, Options{})
}

var whitespace = regexp.MustCompile(`\s+`)

// TableName is the identifier a table is written under: whitespace runs
// become "_".
func TableName(name string) string {
	return whitespace.ReplaceAllString(name, "_")
}

// GenerateWith renders one CREATE TABLE per table that has attributes, in
// order. Columns keep their order and are followed by one FOREIGN KEY line per
// fully referenced FK column. The model is not validated.
func GenerateWith(tables []model.Table, opts Options) string {
	var sb strings.Builder
	for _, t := range tables {
		if len(t.Attributes) == 0 {
			continue
		}

		lines := make([]string, 0, len(t.Attributes))
		for _, a := range t.Attributes {
			lines = append(lines, columnLine(a, opts))
		}
		for _, a := range t.Attributes {
			if a.Type == model.FK && a.HasReference() {
				lines = append(lines, "  FOREIGN KEY ("+a.Name+") REFERENCES "+a.RefTable+"("+a.RefAttr+")")
			}
		}

		sb.WriteString("CREATE TABLE ")
		sb.WriteString(TableName(t.Name))
		sb.WriteString(" (\n")
		sb.WriteString(strings.Join(lines, ",\n"))
		sb.WriteString("\n);\n\n")
	}

	if sb.Len() == 0 {
		return NoTables
	}
	return sb.String()
}

func columnLine(a model.Attribute, opts Options) string {
	dataType := string(a.DataType)
	if dataType == "" {
		dataType = string(model.Varchar255)
	}

	line := "  " + a.Name + " " + dataType
	switch a.Type {
	case model.PK:
		line += " PRIMARY KEY"
	case model.FK:
		line += " NOT NULL"
	default:
		if opts.IncludeModifiers && a.IsNotNull {
			line += " NOT NULL"
		}
	}

	if !opts.IncludeModifiers {
		return line
	}
	if a.IsUnique && a.Type != model.PK {
		line += " UNIQUE"
	}
	if a.IsAutoIncrement {
		line += " AUTO_INCREMENT"
	}
	if a.DefaultValue != nil {
		line += " DEFAULT " + *a.DefaultValue
	}
	return line
}
