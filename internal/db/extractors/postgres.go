package extractors

import (
	"context"
	"database/sql"
	"fmt"

	"erdsketch/internal/db"
	"erdsketch/internal/sqlschema"
)

// pgExtractor implements Extractor using information_schema + pg_catalog queries.
type pgExtractor struct{}

const pgDefaultSchema = "public"

// This is the extractor for PostgreSQL
func (pgExtractor) Extract(ctx context.Context, dbConn *sql.DB) (db.Catalog, error) {
	var c db.Catalog

	tables, err := queryTables(ctx, dbConn, &c, pgDefaultSchema, `
        SELECT table_schema, table_name
        FROM information_schema.tables
        WHERE table_type = 'BASE TABLE'
          AND table_schema NOT IN ('pg_catalog','information_schema','pg_toast')
        ORDER BY table_schema, table_name`)
	if err != nil {
		return c, err
	}

	for _, t := range tables {
		cr, err := dbConn.QueryContext(ctx, `
            SELECT column_name, udt_name, character_maximum_length, is_nullable = 'YES',
                   column_default, is_identity = 'YES'
            FROM information_schema.columns
            WHERE table_schema = $1 AND table_name = $2
            ORDER BY ordinal_position`, t.schema, t.name)
		if err != nil {
			return c, fmt.Errorf("query columns for %s.%s: %w", t.schema, t.name, err)
		}
		for cr.Next() {
			var name, udt string
			var length sql.NullInt64
			var nullable, identity bool
			var dflt sql.NullString
			if err := cr.Scan(&name, &udt, &length, &nullable, &dflt, &identity); err != nil {
				cr.Close()
				return c, fmt.Errorf("scan column for %s.%s: %w", t.schema, t.name, err)
			}
			col := db.Column(name, sizedType(sqlschema.CanonicalTypeName(udt), length), nullable, dflt)
			if identity {
				col.IsAutoIncrement = true
			}
			c.AddColumn(t.key, col)
		}
		cr.Close()

		markPrimaryKeys(ctx, dbConn, &c, t, `
            SELECT a.attname
            FROM pg_index i
            JOIN pg_class c ON i.indrelid = c.oid
            JOIN pg_namespace ns ON c.relnamespace = ns.oid
            JOIN pg_attribute a ON a.attrelid = c.oid AND a.attnum = ANY(i.indkey)
            WHERE ns.nspname = $1 AND c.relname = $2 AND i.indisprimary`, t.schema, t.name)
	}

	addForeignKeys(ctx, dbConn, &c, pgDefaultSchema, `
        SELECT
          kcu.table_schema, kcu.table_name, kcu.column_name,
          rkcu.table_schema, rkcu.table_name, rkcu.column_name
        FROM information_schema.table_constraints tc
        JOIN information_schema.key_column_usage kcu
          ON tc.constraint_name = kcu.constraint_name
         AND tc.constraint_schema = kcu.constraint_schema
        JOIN information_schema.referential_constraints rc
          ON tc.constraint_name = rc.constraint_name
         AND tc.constraint_schema = rc.constraint_schema
        JOIN information_schema.key_column_usage rkcu
          ON rc.unique_constraint_name = rkcu.constraint_name
         AND rc.unique_constraint_schema = rkcu.constraint_schema
         AND kcu.position_in_unique_constraint = rkcu.ordinal_position
        WHERE tc.constraint_type = 'FOREIGN KEY'
          AND tc.table_schema NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
        ORDER BY tc.table_schema, tc.table_name, tc.constraint_name, kcu.ordinal_position`)

	return c, nil
}

func init() {
	db.Register("postgres", pgExtractor{})
	db.Register("postgresql", pgExtractor{})
}
