package extractors

import (
	"context"
	"database/sql"
	"fmt"

	"erdsketch/internal/db"
	"erdsketch/internal/logger"
	"erdsketch/internal/model"
)

// sqliteExtractor implements Extractor for SQLite.
type sqliteExtractor struct{}

// This is the extractor for SQLite
func (sqliteExtractor) Extract(ctx context.Context, dbConn *sql.DB) (db.Catalog, error) {
	var c db.Catalog

	tables, err := queryTables(ctx, dbConn, &c, "", `
	    SELECT NULL, m.name
		FROM sqlite_master m
		WHERE m.type = 'table'
		AND m.name NOT LIKE 'sqlite_%'
		ORDER BY m.rowid`)
	if err != nil {
		return c, err
	}

	for _, t := range tables {
		pr, err := dbConn.QueryContext(ctx, `SELECT name, type, "notnull", dflt_value, pk FROM pragma_table_info(?) ORDER BY cid`, t.name)
		if err != nil {
			return c, fmt.Errorf("query columns for %s: %w", t.name, err)
		}
		var pks []string
		for pr.Next() {
			var name, ctype string
			var notnull, pk int
			var dflt sql.NullString
			if err := pr.Scan(&name, &ctype, &notnull, &dflt, &pk); err != nil {
				pr.Close()
				return c, fmt.Errorf("scan column for %s: %w", t.name, err)
			}
			c.AddColumn(t.key, db.Column(name, ctype, notnull == 0, dflt))
			if pk != 0 {
				pks = append(pks, name)
			}
		}
		pr.Close()
		for _, name := range pks {
			c.MarkPrimaryKey(t.key, name)
		}
	}

	// "to" is NULL when the key references the parent's primary key implicitly
	type pending struct{ table, from, to string }
	var implicit []pending
	for _, t := range tables {
		fkRows, err := dbConn.QueryContext(ctx, `SELECT "table", "from", "to" FROM pragma_foreign_key_list(?) ORDER BY id, seq`, t.name)
		if err != nil {
			logger.Error("query foreign key: %v", err)
			continue
		}
		for fkRows.Next() {
			var table, from string
			var to sql.NullString
			if err := fkRows.Scan(&table, &from, &to); err != nil {
				logger.Error("scan foreign key: %v", err)
				continue
			}
			if !to.Valid {
				implicit = append(implicit, pending{table: t.key, from: from, to: table})
				continue
			}
			c.AddForeignKey(t.key, from, table, to.String)
		}
		fkRows.Close()
	}

	for _, p := range implicit {
		parent := c.Table(p.to)
		if parent == nil {
			c.AddForeignKey(p.table, p.from, p.to, "")
			continue
		}
		c.AddForeignKey(p.table, p.from, p.to, firstPrimaryKey(parent))
	}

	return c, nil
}

func firstPrimaryKey(t *model.Table) string {
	for _, a := range t.Attributes {
		if a.Type == model.PK {
			return a.Name
		}
	}
	return ""
}

func init() {
	db.Register("sqlite3", sqliteExtractor{})
	db.Register("sqlite", sqliteExtractor{})
}
