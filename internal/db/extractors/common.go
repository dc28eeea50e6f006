package extractors

import (
	"context"
	"database/sql"
	"fmt"

	"erdsketch/internal/db"
	"erdsketch/internal/logger"
)

// tableRef is a table as listed by the catalog query, before qualification.
type tableRef struct {
	schema string
	name   string
	key    string // name used in the Catalog
}

// queryTables lists (schema, name) rows and adds each table to c.
func queryTables(ctx context.Context, dbConn *sql.DB, c *db.Catalog, defaultSchema, query string, args ...any) ([]tableRef, error) {
	tr, err := dbConn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer tr.Close()

	var refs []tableRef
	for tr.Next() {
		var schema sql.NullString
		var r tableRef
		if err := tr.Scan(&schema, &r.name); err != nil {
			return nil, fmt.Errorf("scan table row: %w", err)
		}
		r.schema = schema.String
		r.key = db.Qualify(r.schema, r.name, defaultSchema)
		c.AddTable(r.key)
		refs = append(refs, r)
	}
	return refs, tr.Err()
}

// markPrimaryKeys flags the columns returned by query. Failures are logged,
// not returned, since a table without keys is still usable.
func markPrimaryKeys(ctx context.Context, dbConn *sql.DB, c *db.Catalog, t tableRef, query string, args ...any) {
	pkr, err := dbConn.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Error("query primary key: %v", err)
		return
	}
	defer pkr.Close()

	for pkr.Next() {
		var pkcol string
		if err := pkr.Scan(&pkcol); err != nil {
			logger.Error("scan primary key: %v", err)
			continue
		}
		c.MarkPrimaryKey(t.key, pkcol)
	}
}

// addForeignKeys reads one row per referencing column pair:
// from_schema, from_table, from_column, to_schema, to_table, to_column.
func addForeignKeys(ctx context.Context, dbConn *sql.DB, c *db.Catalog, defaultSchema, query string, args ...any) {
	fkr, err := dbConn.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Error("query foreign key: %v", err)
		return
	}
	defer fkr.Close()

	for fkr.Next() {
		var fromSchema, toSchema sql.NullString
		var fromTable, fromColumn, toTable, toColumn string
		if err := fkr.Scan(&fromSchema, &fromTable, &fromColumn, &toSchema, &toTable, &toColumn); err != nil {
			logger.Error("scan foreign key: %v", err)
			continue
		}
		c.AddForeignKey(
			db.Qualify(fromSchema.String, fromTable, defaultSchema), fromColumn,
			db.Qualify(toSchema.String, toTable, defaultSchema), toColumn)
	}
}

// sizedType appends a length to a base type name when one is known.
func sizedType(base string, length sql.NullInt64) string {
	if length.Valid && length.Int64 > 0 {
		return fmt.Sprintf("%s(%d)", base, length.Int64)
	}
	return base
}
