//go:build oracle
// +build oracle

package extractors

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/godror/godror"

	"erdsketch/internal/db"
	"erdsketch/internal/logger"
)

// oracleExtractor implements Extractor for Oracle.
type oracleExtractor struct{}

// This is the extractor for Oracle
func (oracleExtractor) Extract(ctx context.Context, dbConn *sql.DB) (db.Catalog, error) {
	var c db.Catalog

	var user string
	if err := dbConn.QueryRowContext(ctx, `SELECT USER FROM dual`).Scan(&user); err != nil {
		logger.Error("current user: %v", err)
	}

	tables, err := queryTables(ctx, dbConn, &c, user, `
	    SELECT atab.owner, atab.table_name
	    FROM all_users ausr
	    JOIN all_tables atab
		  ON ausr.username = atab.owner
	    WHERE ausr.oracle_maintained = 'N'
	    ORDER BY atab.owner, atab.table_name`)
	if err != nil {
		return c, err
	}

	for _, t := range tables {
		cr, err := dbConn.QueryContext(ctx, `
            SELECT column_name, data_type, char_length, data_scale, nullable
            FROM all_tab_columns
            WHERE owner = :1 AND table_name = :2
            ORDER BY column_id`, t.schema, t.name)
		if err != nil {
			return c, fmt.Errorf("query columns for %s.%s: %w", t.schema, t.name, err)
		}
		for cr.Next() {
			var name, dataType, nullable string
			var length, scale sql.NullInt64
			if err := cr.Scan(&name, &dataType, &length, &scale, &nullable); err != nil {
				cr.Close()
				return c, fmt.Errorf("scan column for %s.%s: %w", t.schema, t.name, err)
			}
			c.AddColumn(t.key, db.Column(name, oracleType(dataType, length, scale), nullable == "Y", sql.NullString{}))
		}
		cr.Close()

		markPrimaryKeys(ctx, dbConn, &c, t, `
            SELECT acc.column_name
            FROM all_cons_columns acc
            JOIN all_constraints ac ON acc.owner = ac.owner AND acc.constraint_name = ac.constraint_name
            WHERE ac.constraint_type = 'P' AND acc.owner = :1 AND acc.table_name = :2`, t.schema, t.name)
	}

	addForeignKeys(ctx, dbConn, &c, user, `
        SELECT a.owner, a.table_name, acc.column_name,
               rcc.owner, rcc.table_name, rcc.column_name
        FROM all_users ausr
		JOIN all_constraints a
		  ON ausr.username = a.owner
        JOIN all_cons_columns acc
		  ON a.owner = acc.owner
		 AND a.constraint_name = acc.constraint_name
        JOIN all_cons_columns rcc
		  ON a.r_owner = rcc.owner
		 AND a.r_constraint_name = rcc.constraint_name
		 AND nvl(acc.position, 0) = nvl(rcc.position, 0)
        WHERE a.constraint_type = 'R'
		  AND ausr.oracle_maintained = 'N'
		ORDER BY a.owner, a.table_name, a.constraint_name, acc.position`)

	return c, nil
}

// oracleType spells Oracle types so the normalizer recognizes them.
func oracleType(dataType string, length, scale sql.NullInt64) string {
	t := strings.ToLower(dataType)
	switch {
	case t == "number" && scale.Valid && scale.Int64 == 0:
		return "integer"
	case t == "number":
		return "numeric"
	case strings.HasSuffix(t, "varchar2"):
		return sizedType("varchar", length)
	case t == "clob" || t == "nclob":
		return "text"
	}
	return t
}

func init() {
	db.Register("godror", oracleExtractor{})
	db.Register("oracle", oracleExtractor{})
}
