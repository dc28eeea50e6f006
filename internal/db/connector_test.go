package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"
)

var testdialect string = "testdialect"

type testExtractor struct{}

func (testExtractor) Extract(ctx context.Context, dbConn *sql.DB) (Catalog, error) {
	var c Catalog
	return c, errors.New("not implemented")
}

// pingExtractor reads nothing but proves the connection works.
type pingExtractor struct{}

func (pingExtractor) Extract(ctx context.Context, dbConn *sql.DB) (Catalog, error) {
	var one int
	if err := dbConn.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return Catalog{}, err
	}
	var c Catalog
	c.AddTable("one")
	return c, nil
}

func TestRegister(t *testing.T) {
	// tests both Register and RegisteredDialects because they take the same setup

	Register(testdialect, testExtractor{})

	if _, ok := dialects[testdialect]; !ok {
		t.Errorf("\ndialect %v not registered correctly in %v", testdialect, dialects)
	}

	rd := RegisteredDialects()

	if !(len(rd) == 1 && rd[0] == testdialect) {
		t.Errorf("\nRegisteredDialects returned unexpected result %v", rd)
	}

	if _, ok := Lookup("TestDialect"); !ok {
		t.Errorf("\nLookup is not case-insensitive")
	}
}

func TestConnectAndExtract(t *testing.T) {

	var tests = []struct {
		name          string
		dialect       string
		dsn           string
		timeout       int
		extractor     Extractor
		registerFirst bool
		errIsNil      bool
	}{
		{"unregistered dialect", "nosuchdb", "", 10, nil, false, false},
		{"sqlite with testExtractor", "sqlite", ":memory:", 10, testExtractor{}, true, false},
		{"sqlite3 alias with pingExtractor", "sqlite3", ":memory:", 10, pingExtractor{}, true, true},
	}

	for _, tt := range tests {
		// Use t.Run to run each case as a subtest with a descriptive name
		t.Run(tt.name, func(t *testing.T) {
			if tt.registerFirst {
				Register("sqlite", tt.extractor)
			}

			c, err := ConnectAndExtract(tt.dialect, tt.dsn, tt.timeout)

			if (err == nil) != tt.errIsNil {
				if tt.errIsNil {
					t.Errorf("\ngot unexpected error: \"%v\"", err)
				} else {
					t.Errorf("\nexpected an error, did not receive one")
				}
			}
			if err == nil && len(c.Tables) != 1 {
				t.Errorf("\ngot catalog %v, wanted one table", c)
			}
		})
	}
}
