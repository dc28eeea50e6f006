package sqlschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitByCommas(t *testing.T) {
	var tests = []struct {
		name string
		in   string
		want []string
	}{
		{"nested parens", "a DECIMAL(10,2), b INT", []string{"a DECIMAL(10,2)", "b INT"}},
		{"constraint clause", "id INT, PRIMARY KEY (id, other)", []string{"id INT", "PRIMARY KEY (id, other)"}},
		{"quoted comma", "s VARCHAR(10) DEFAULT 'a,b', n INT", []string{"s VARCHAR(10) DEFAULT 'a,b'", "n INT"}},
		{"trailing comma", "a INT,", []string{"a INT"}},
		{"empty", "   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitByCommas(tt.in))
		})
	}
}

func TestStripComments(t *testing.T) {
	in := "-- header\nCREATE TABLE a (id INT); /* block\ncomment */ CREATE TABLE b (s TEXT DEFAULT '--not a comment');"
	out := StripComments(in)

	assert.NotContains(t, out, "header")
	assert.NotContains(t, out, "block")
	assert.Contains(t, out, "CREATE TABLE a (id INT);")
	assert.Contains(t, out, "'--not a comment'")
}

func TestSplitStatements(t *testing.T) {
	var tests = []struct {
		name    string
		in      string
		want    []string
		wantErr error
	}{
		{"empty", "", nil, ErrEmptyInput},
		{"blank", " \n\t", nil, ErrEmptyInput},
		{"no table", "SELECT 1;", nil, ErrNoTableDefinition},
		{"table only in comment", "-- CREATE TABLE x (id INT)\nSELECT 1;", nil, ErrNoTableDefinition},
		{"two statements",
			"CREATE TABLE a (id INT);\n\ncreate table b (id INT);;",
			[]string{"CREATE TABLE a (id INT)", "create table b (id INT)"},
			nil},
		{"semicolon inside parens",
			"CREATE TABLE a (note VARCHAR(10) CHECK (note <> ';'));",
			[]string{"CREATE TABLE a (note VARCHAR(10) CHECK (note <> ';'))"},
			nil},
		{"no trailing semicolon", "CREATE TABLE a (id INT)", []string{"CREATE TABLE a (id INT)"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SplitStatements(tt.in)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
