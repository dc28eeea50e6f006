package db

import (
	"database/sql"
	"errors"
	"strings"

	"erdsketch/internal/logger"
	"erdsketch/internal/model"
	"erdsketch/internal/sqlschema"
)

// ErrEmptyCatalog is returned when a database has no user tables.
var ErrEmptyCatalog = errors.New("database import: no tables found in the database")

// Catalog is what an extractor reads from a live database. Foreign keys come
// as one record per column pair and are applied by ImportCatalog.
type Catalog struct {
	Tables      []model.Table      `json:"tables"`
	ForeignKeys []model.ForeignKey `json:"foreign_keys"`
}

// Table returns the table called name, or nil.
func (c *Catalog) Table(name string) *model.Table {
	for i := range c.Tables {
		if c.Tables[i].Name == name {
			return &c.Tables[i]
		}
	}
	return nil
}

// AddTable appends a table without columns.
func (c *Catalog) AddTable(name string) {
	c.Tables = append(c.Tables, model.Table{Name: name, Attributes: []model.Attribute{}})
}

// AddColumn appends a column to table. Unknown tables are ignored.
func (c *Catalog) AddColumn(table string, a model.Attribute) {
	if t := c.Table(table); t != nil {
		t.Attributes = append(t.Attributes, a)
	}
}

// MarkPrimaryKey flags table.column as a primary key column. Unknown names
// are logged and ignored.
func (c *Catalog) MarkPrimaryKey(table, column string) {
	t := c.Table(table)
	if t == nil {
		logger.Debug("primary key on unknown table %s", table)
		return
	}
	if a := t.Attribute(column); a != nil {
		a.MarkPrimaryKey()
		return
	}
	logger.Debug("primary key on unknown column %s.%s", table, column)
}

// AddForeignKey records one referencing column pair.
func (c *Catalog) AddForeignKey(table, column, refTable, refColumn string) {
	c.ForeignKeys = append(c.ForeignKeys, model.ForeignKey{
		Table:            table,
		Column:           column,
		ReferencedTable:  refTable,
		ReferencedColumn: refColumn,
	})
}

// Column builds an attribute from an introspected column. rawType is
// normalized onto the canonical vocabulary.
func Column(name, rawType string, nullable bool, dflt sql.NullString) model.Attribute {
	a := model.Attribute{
		Name:      name,
		Type:      model.Normal,
		DataType:  model.NormalizeDataType(rawType),
		IsNotNull: !nullable,
	}
	if dflt.Valid && dflt.String != "" {
		v := dflt.String
		if strings.HasPrefix(strings.ToLower(v), "nextval(") {
			a.IsAutoIncrement = true
		} else {
			a.DefaultValue = &v
		}
	}
	return a
}

// Qualify names a table by schema.name unless schema is the connection's
// default schema.
func Qualify(schema, name, defaultSchema string) string {
	if schema == "" || strings.EqualFold(schema, defaultSchema) {
		return name
	}
	return schema + "." + name
}

// ImportCatalog runs an extracted catalog through the same assembly and
// validation as parsed SQL text.
func ImportCatalog(c Catalog) (*sqlschema.Import, error) {
	if len(c.Tables) == 0 {
		return nil, ErrEmptyCatalog
	}
	tables := sqlschema.Assemble(c.Tables, c.ForeignKeys)
	warnings, err := sqlschema.Validate(tables)
	if err != nil {
		return nil, err
	}
	return &sqlschema.Import{
		Schema:      model.Schema{Tables: tables},
		ForeignKeys: c.ForeignKeys,
		Warnings:    warnings,
	}, nil
}
