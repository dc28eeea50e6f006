package sqlschema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erdsketch/internal/model"
)

func pkTable(name string, extra ...model.Attribute) model.Table {
	attrs := append([]model.Attribute{{Name: "id", Type: model.PK, DataType: model.Integer}}, extra...)
	return model.Table{Name: name, Attributes: attrs}
}

func TestValidateCollectsEveryViolation(t *testing.T) {
	tables := []model.Table{
		pkTable("a"),
		pkTable("a"),
		pkTable("c"),
		pkTable("c"),
		pkTable("b", model.Attribute{Name: "x_id", Type: model.FK, DataType: model.Integer, RefTable: "x", RefAttr: "id"}),
	}

	_, err := Validate(tables)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []string{
		"Duplicate table name: a",
		"Duplicate table name: c",
		"Foreign key b.x_id references table x: reference not found",
	}, verr.Violations)
	assert.Contains(t, err.Error(), "schema validation failed")
}

func TestValidateRules(t *testing.T) {
	var tests = []struct {
		name   string
		tables []model.Table
		want   string
	}{
		{"empty table",
			[]model.Table{{Name: "empty"}},
			"Table empty has no columns defined (empty table)"},
		{"duplicate column",
			[]model.Table{pkTable("t", model.Attribute{Name: "id", DataType: model.Text})},
			"Duplicate column name 'id' in table t"},
		{"half reference",
			[]model.Table{pkTable("t", model.Attribute{Name: "r", Type: model.FK, RefTable: "t"})},
			"Foreign key t.r is missing reference information"},
		{"missing column",
			[]model.Table{pkTable("t", model.Attribute{Name: "r", Type: model.FK, RefTable: "t", RefAttr: "nope"})},
			"Foreign key t.r references column t.nope: reference not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.tables)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Contains(t, verr.Violations, tt.want)
		})
	}
}

func TestValidateMissingPrimaryKeyWarns(t *testing.T) {
	tables := []model.Table{
		{Name: "log", Attributes: []model.Attribute{{Name: "msg", Type: model.Normal, DataType: model.Text}}},
		pkTable("users"),
		pkTable("orders", model.Attribute{Name: "user_id", Type: model.FK, DataType: model.Integer, RefTable: "users", RefAttr: "id"}),
	}

	warnings, err := Validate(tables)
	require.NoError(t, err)
	assert.Equal(t, []string{"Table log has no primary key defined"}, warnings)
}
