package extractors

import (
	"context"
	"database/sql"
	"fmt"

	"erdsketch/internal/db"
)

// mssqlExtractor implements Extractor for Microsoft SQL Server.
type mssqlExtractor struct{}

const mssqlDefaultSchema = "dbo"

// This is the extractor for Microsoft SQL Server
func (mssqlExtractor) Extract(ctx context.Context, dbConn *sql.DB) (db.Catalog, error) {
	var c db.Catalog

	tables, err := queryTables(ctx, dbConn, &c, mssqlDefaultSchema, `
        SELECT s.name AS schema_name, t.name AS table_name
        FROM sys.schemas AS s
        JOIN sys.tables AS t
          ON s.schema_id = t.schema_id
        ORDER BY s.name, t.name`)
	if err != nil {
		return c, err
	}

	for _, t := range tables {
		cr, err := dbConn.QueryContext(ctx, `
            SELECT COLUMN_NAME, DATA_TYPE, CHARACTER_MAXIMUM_LENGTH,
                   CASE WHEN IS_NULLABLE='YES' THEN 1 ELSE 0 END,
                   COLUMN_DEFAULT,
                   COLUMNPROPERTY(OBJECT_ID(QUOTENAME(TABLE_SCHEMA) + '.' + QUOTENAME(TABLE_NAME)), COLUMN_NAME, 'IsIdentity')
            FROM INFORMATION_SCHEMA.COLUMNS
            WHERE TABLE_SCHEMA = @schema AND TABLE_NAME = @table
            ORDER BY ORDINAL_POSITION`, sql.Named("schema", t.schema), sql.Named("table", t.name))
		if err != nil {
			return c, fmt.Errorf("query columns for %s.%s: %w", t.schema, t.name, err)
		}

		for cr.Next() {
			var name, dataType string
			var length sql.NullInt64
			var nullableInt int
			var dflt sql.NullString
			var identity sql.NullInt64
			if err := cr.Scan(&name, &dataType, &length, &nullableInt, &dflt, &identity); err != nil {
				cr.Close()
				return c, fmt.Errorf("scan column for %s.%s: %w", t.schema, t.name, err)
			}
			col := db.Column(name, sizedType(dataType, length), nullableInt == 1, dflt)
			col.IsAutoIncrement = identity.Valid && identity.Int64 == 1
			c.AddColumn(t.key, col)
		}
		cr.Close()

		markPrimaryKeys(ctx, dbConn, &c, t, `
            SELECT k.COLUMN_NAME
            FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS t
            JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE k ON t.CONSTRAINT_NAME = k.CONSTRAINT_NAME AND t.TABLE_SCHEMA = k.TABLE_SCHEMA
            WHERE t.CONSTRAINT_TYPE = 'PRIMARY KEY' AND k.TABLE_SCHEMA = @schema AND k.TABLE_NAME = @table`,
			sql.Named("schema", t.schema), sql.Named("table", t.name))
	}

	addForeignKeys(ctx, dbConn, &c, mssqlDefaultSchema, `
        SELECT
            OBJECT_SCHEMA_NAME(fkc.parent_object_id) AS from_schema,
            OBJECT_NAME(fkc.parent_object_id) AS from_table,
            c.name AS from_column,
            OBJECT_SCHEMA_NAME(fkc.referenced_object_id) AS to_schema,
            OBJECT_NAME(fkc.referenced_object_id) AS to_table,
            rc.name AS to_column
        FROM sys.foreign_keys fk
        JOIN sys.foreign_key_columns fkc ON fk.object_id = fkc.constraint_object_id
        JOIN sys.columns c ON fkc.parent_object_id = c.object_id AND fkc.parent_column_id = c.column_id
        JOIN sys.columns rc ON fkc.referenced_object_id = rc.object_id AND fkc.referenced_column_id = rc.column_id
        ORDER BY fk.name, fkc.constraint_column_id`)

	return c, nil
}

func init() {
	db.Register("sqlserver", mssqlExtractor{})
	db.Register("mssql", mssqlExtractor{})
}
