package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDataType(t *testing.T) {
	var tests = []struct {
		in   string
		want DataType
	}{
		{"INT", Integer},
		{"integer", Integer},
		{"smallint", Integer},
		{"BIGINT", BigInt},
		{"bigserial", BigInt},
		{"serial", Integer},
		{"INT IDENTITY(1,1)", Integer},
		{"VARCHAR(20)", Varchar50},
		{"varchar(50)", Varchar50},
		{"VARCHAR(51)", Varchar100},
		{"VARCHAR(100)", Varchar100},
		{"varchar(101)", Varchar255},
		{"VARCHAR(4000)", Varchar255},
		{"varchar", Varchar255},
		{"NVARCHAR(40)", Varchar50},
		{"CHAR(2)", Char10},
		{"char", Char10},
		{"TEXT", Text},
		{"longtext", Text},
		{"DATE", Date},
		{"DATETIME", DateTime},
		{"datetime2", DateTime},
		{"TIMESTAMP", Timestamp},
		{"timestamptz", Timestamp},
		{"TIME", Time},
		{"DECIMAL(12,4)", Decimal},
		{"numeric", Decimal},
		{"FLOAT", Float},
		{"real", Float},
		{"DOUBLE", Double},
		{"double precision", Double},
		{"BOOLEAN", Boolean},
		{"bool", Boolean},
		{"JSON", JSON},
		{"jsonb", JSON},
		{"BLOB", Blob},
		{"bytea", Blob},
		{"uuid", Varchar255},
		{"", Varchar255},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDataType(tt.in))
		})
	}
}

func TestNormalizeDataTypeIdempotent(t *testing.T) {
	inputs := []string{"int", "bigint", "varchar(7)", "varchar(70)", "varchar(700)", "char(3)",
		"text", "datetime", "date", "timestamp", "time", "numeric(5,1)", "float", "double",
		"boolean", "json", "blob", "geometry", "money"}
	for _, d := range DataTypes() {
		inputs = append(inputs, string(d))
	}

	for _, in := range inputs {
		once := NormalizeDataType(in)
		assert.Equal(t, once, NormalizeDataType(string(once)), "normalizing %q twice", in)
		assert.True(t, once.Valid(), "%q normalized to non-canonical %q", in, once)
	}
}

func TestCanonicalTypesMapToThemselves(t *testing.T) {
	for _, d := range DataTypes() {
		assert.Equal(t, d, NormalizeDataType(string(d)))
	}
	assert.Len(t, DataTypes(), 17)
}
