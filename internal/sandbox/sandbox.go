// Package sandbox checks generated DDL by running it in an in-memory SQLite
// database and reading the result back.
package sandbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"erdsketch/internal/db"
	_ "erdsketch/internal/db/extractors"
	"erdsketch/internal/logger"
	"erdsketch/internal/model"
	"erdsketch/internal/sqlgen"
)

// Report is the outcome of a sandbox run.
type Report struct {
	OK          bool     `json:"ok"`
	Tables      int      `json:"tables"`
	ForeignKeys int      `json:"foreignKeys"`
	Missing     []string `json:"missing,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// SQLite spells the keyword without the underscore.
var autoIncrement = regexp.MustCompile(`(?i)\bAUTO_INCREMENT\b`)

// Check executes ddl with foreign keys enforced and compares the created
// catalog with tables. DDL the database rejects yields a failed Report; the
// error return is reserved for sandbox failures.
func Check(ctx context.Context, ddl string, tables []model.Table) (*Report, error) {
	ddl = strings.TrimSpace(ddl)
	if ddl == "" || ddl == sqlgen.NoTables {
		return nil, errors.New("sandbox check: nothing to export")
	}

	extractor, ok := db.Lookup("sqlite")
	if !ok {
		return nil, errors.New("sandbox check: sqlite dialect not registered")
	}

	conn, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory sqlite database: %w", err)
	}
	defer func() { _ = conn.Close() }()
	// every connection would get its own empty :memory: database
	conn.SetMaxOpenConns(1)

	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := conn.ExecContext(ctx, autoIncrement.ReplaceAllString(ddl, "AUTOINCREMENT")); err != nil {
		logger.Info("sandbox rejected generated sql: %v", err)
		return &Report{Error: fmt.Sprintf("export syntax error: %v", err)}, nil
	}

	catalog, err := extractor.Extract(ctx, conn)
	if err != nil {
		return nil, fmt.Errorf("failed to introspect sqlite schema: %w", err)
	}

	r := &Report{Tables: len(catalog.Tables), ForeignKeys: len(catalog.ForeignKeys)}
	r.Missing = missing(catalog, tables)
	r.OK = len(r.Missing) == 0
	return r, nil
}

// missing lists what tables expects but the catalog lacks.
func missing(c db.Catalog, tables []model.Table) []string {
	var out []string
	for _, t := range tables {
		if len(t.Attributes) == 0 {
			continue
		}
		name := sqlgen.TableName(t.Name)
		got := c.Table(name)
		if got == nil {
			out = append(out, "table "+name)
			continue
		}
		for _, a := range t.Attributes {
			if got.Attribute(a.Name) == nil {
				out = append(out, fmt.Sprintf("column %s.%s", name, a.Name))
			}
			if a.Type == model.FK && a.HasReference() && !hasForeignKey(c, name, a) {
				out = append(out, fmt.Sprintf("foreign key %s.%s -> %s.%s", name, a.Name, a.RefTable, a.RefAttr))
			}
		}
	}
	return out
}

func hasForeignKey(c db.Catalog, table string, a model.Attribute) bool {
	for _, fk := range c.ForeignKeys {
		if fk.Table == table && fk.Column == a.Name && fk.ReferencedTable == a.RefTable && fk.ReferencedColumn == a.RefAttr {
			return true
		}
	}
	return false
}
