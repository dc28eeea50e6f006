package db

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"erdsketch/pkg/config"
)

type Extractor interface {

	// Extract reads the tables, columns and foreign keys of a live database
	Extract(ctx context.Context, db *sql.DB) (Catalog, error)
}

var dialects = map[string]Extractor{}

// Register makes an Extractor available under name.
func Register(name string, e Extractor) {
	dialects[strings.ToLower(name)] = e
}

// Lookup returns the extractor registered for driver or one of its aliases.
func Lookup(driver string) (Extractor, bool) {
	e, ok := dialects[config.NormalizeDriver(driver)]
	return e, ok
}

// listRegistered returns the registered dialect keys (for diagnostics).
func listRegistered() []string {
	keys := make([]string, 0, len(dialects))
	for k := range dialects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ConnectAndExtract connects to the database and reads its catalog
func ConnectAndExtract(driver, dsn string, timeoutSec int) (Catalog, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSec)*time.Second)
	defer cancel()
	return ConnectAndExtractContext(ctx, driver, dsn)
}

// ConnectAndExtractContext is ConnectAndExtract bounded by ctx.
func ConnectAndExtractContext(ctx context.Context, driver, dsn string) (Catalog, error) {
	driver = config.NormalizeDriver(driver)
	extractor, ok := dialects[driver]
	if !ok {
		return Catalog{}, fmt.Errorf("dialect not registered: %q (available: %v)", driver, listRegistered())
	}
	dbConn, err := sql.Open(driver, dsn)
	if err != nil {
		return Catalog{}, err
	}
	defer dbConn.Close()

	if err := dbConn.PingContext(ctx); err != nil {
		return Catalog{}, fmt.Errorf("connection failed: %w", err)
	}
	return extractor.Extract(ctx, dbConn)
}

// RegisteredDialects is a helper that allows main to print registered dialects
func RegisteredDialects() []string {
	return listRegistered()
}
