package extractors

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"erdsketch/internal/db"
	"erdsketch/internal/logger"
)

// myExtractor implements Extractor for MySQL (information_schema).
type myExtractor struct{}

// This is the extractor for MySQL
func (myExtractor) Extract(ctx context.Context, dbConn *sql.DB) (db.Catalog, error) {
	var c db.Catalog

	// tables of the connected database keep their bare names
	var current sql.NullString
	if err := dbConn.QueryRowContext(ctx, `SELECT DATABASE()`).Scan(&current); err != nil {
		logger.Error("current database: %v", err)
	}

	tables, err := queryTables(ctx, dbConn, &c, current.String, `
        SELECT table_schema, table_name
        FROM information_schema.tables
        WHERE table_type = 'BASE TABLE'
          AND table_schema NOT IN ('mysql','information_schema','performance_schema','sys')
        ORDER BY table_schema, table_name`)
	if err != nil {
		return c, err
	}

	for _, t := range tables {
		cr, err := dbConn.QueryContext(ctx, `
            SELECT column_name, column_type, is_nullable = 'YES', column_default, extra
            FROM information_schema.columns
            WHERE table_schema = ? AND table_name = ?
            ORDER BY ordinal_position`, t.schema, t.name)
		if err != nil {
			return c, fmt.Errorf("query columns for %s.%s: %w", t.schema, t.name, err)
		}
		for cr.Next() {
			var name, ctype, extra string
			var nullable bool
			var dflt sql.NullString
			if err := cr.Scan(&name, &ctype, &nullable, &dflt, &extra); err != nil {
				cr.Close()
				return c, fmt.Errorf("scan column for %s.%s: %w", t.schema, t.name, err)
			}
			col := db.Column(name, ctype, nullable, dflt)
			if strings.Contains(strings.ToLower(extra), "auto_increment") {
				col.IsAutoIncrement = true
			}
			c.AddColumn(t.key, col)
		}
		cr.Close()

		markPrimaryKeys(ctx, dbConn, &c, t, `
            SELECT k.COLUMN_NAME
            FROM information_schema.key_column_usage k
            JOIN information_schema.table_constraints tc ON k.constraint_name = tc.constraint_name AND k.table_schema = tc.table_schema AND k.table_name = tc.table_name
            WHERE tc.constraint_type = 'PRIMARY KEY' AND k.table_schema = ? AND k.table_name = ?
            ORDER BY k.ordinal_position`, t.schema, t.name)
	}

	addForeignKeys(ctx, dbConn, &c, current.String, `
        SELECT table_schema, table_name, column_name,
               referenced_table_schema, referenced_table_name, referenced_column_name
        FROM information_schema.key_column_usage
        WHERE referenced_table_name IS NOT NULL
          AND table_schema NOT IN ('mysql','information_schema','performance_schema','sys')
        ORDER BY table_schema, table_name, constraint_name, ordinal_position`)

	return c, nil
}

func init() {
	db.Register("mysql", myExtractor{})
	db.Register("mariadb", myExtractor{})
}
