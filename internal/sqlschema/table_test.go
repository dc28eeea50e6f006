package sqlschema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erdsketch/internal/model"
)

func strPtr(s string) *string { return &s }

func TestBuildTable(t *testing.T) {
	ct := &CreateTableStmt{
		Table: "order_items",
		Definitions: []Definition{
			&ColumnDef{Name: "order_id", RawType: "int"},
			&ColumnDef{Name: "line", RawType: "smallint"},
			&ColumnDef{Name: "sku", RawType: "varchar(40)", NotNull: true, References: &Reference{Table: "products", Columns: []string{"sku"}}},
			&ColumnDef{Name: "qty", RawType: "numeric(8,2)", Default: strPtr("1")},
			&ConstraintDef{Type: PrimaryKey, Columns: []string{"order_id", "line"}},
			&ConstraintDef{Type: Unique, Columns: []string{"sku", "line"}},
			&ConstraintDef{Type: ForeignKey, Columns: []string{"order_id"}, References: &Reference{Table: "orders", Columns: []string{"id"}}},
		},
	}

	c, err := BuildTable(ct)
	require.NoError(t, err)
	require.Len(t, c.Tables, 1)

	tab := c.Tables[0]
	assert.Equal(t, "order_items", tab.Name)
	require.Len(t, tab.Attributes, 4)

	assert.Equal(t, model.Attribute{Name: "order_id", Type: model.FK, DataType: model.Integer, RefTable: "orders", RefAttr: "id", IsNotNull: true}, tab.Attributes[0])
	assert.Equal(t, model.Attribute{Name: "line", Type: model.PK, DataType: model.Integer, IsNotNull: true, IsUnique: true}, tab.Attributes[1])
	assert.Equal(t, model.Attribute{Name: "sku", Type: model.FK, DataType: model.Varchar50, RefTable: "products", RefAttr: "sku", IsNotNull: true, IsUnique: true}, tab.Attributes[2])
	assert.Equal(t, model.Decimal, tab.Attributes[3].DataType)
	assert.Equal(t, "1", *tab.Attributes[3].DefaultValue)

	assert.Equal(t, []model.ForeignKey{
		{Table: "order_items", Column: "sku", ReferencedTable: "products", ReferencedColumn: "sku"},
		{Table: "order_items", Column: "order_id", ReferencedTable: "orders", ReferencedColumn: "id"},
	}, c.ForeignKeys)
}

func TestCompositeForeignKeyIsPositional(t *testing.T) {
	at := &AlterTableStmt{Table: "shipments", Constraints: []*ConstraintDef{{
		Type:       ForeignKey,
		Columns:    []string{"order_ref", "region_ref"},
		References: &Reference{Table: "orders", Columns: []string{"id", "region"}},
	}}}

	c, err := AlterForeignKeys(at)
	require.NoError(t, err)
	assert.Empty(t, c.Tables)
	assert.Equal(t, []model.ForeignKey{
		{Table: "shipments", Column: "order_ref", ReferencedTable: "orders", ReferencedColumn: "id"},
		{Table: "shipments", Column: "region_ref", ReferencedTable: "orders", ReferencedColumn: "region"},
	}, c.ForeignKeys)
}

func TestForeignKeyColumnMismatch(t *testing.T) {
	var tests = []struct {
		name string
		cols []string
		refs []string
	}{
		{"more local columns", []string{"a", "b"}, []string{"id"}},
		{"more referenced columns", []string{"a"}, []string{"id", "region"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct := &CreateTableStmt{Table: "t", Definitions: []Definition{
				&ColumnDef{Name: "a", RawType: "int"},
				&ColumnDef{Name: "b", RawType: "int"},
				&ConstraintDef{Type: ForeignKey, Columns: tt.cols, References: &Reference{Table: "r", Columns: tt.refs}},
			}}
			_, err := BuildTable(ct)
			assert.ErrorIs(t, err, ErrKeyColumnMismatch)
			assert.Contains(t, err.Error(), "constraint")
		})
	}
}

func TestContributeIgnored(t *testing.T) {
	c, err := Contribute(&IgnoredStmt{What: "IndexStmt"})
	require.NoError(t, err)
	assert.Empty(t, c.Tables)
	assert.Empty(t, c.ForeignKeys)
}

func TestFoldKeepsStatementOrder(t *testing.T) {
	parts := []Contribution{
		{Tables: []model.Table{{Name: "a"}}},
		{ForeignKeys: []model.ForeignKey{{Table: "b", Column: "a_id", ReferencedTable: "a", ReferencedColumn: "id"}}},
		{Tables: []model.Table{{Name: "b"}}},
	}

	out := Fold(parts)
	require.Len(t, out.Tables, 2)
	assert.Equal(t, "a", out.Tables[0].Name)
	assert.Equal(t, "b", out.Tables[1].Name)
	assert.Len(t, out.ForeignKeys, 1)
	assert.Empty(t, Fold(nil).Tables)
}

func TestAssemble(t *testing.T) {
	tables := []model.Table{
		{Name: "customers", Attributes: []model.Attribute{{Name: "id", Type: model.PK, DataType: model.Integer}}},
		{Name: "orders", Attributes: []model.Attribute{
			{Name: "id", Type: model.PK, DataType: model.Integer},
			{Name: "customer_id", Type: model.FK, DataType: model.Integer, RefTable: "old", RefAttr: "gone"},
			{Name: "note", Type: model.Normal, DataType: model.Text},
		}},
	}
	fks := []model.ForeignKey{
		{Table: "orders", Column: "customer_id", ReferencedTable: "customers", ReferencedColumn: "id"},
		{Table: "orders", Column: "note", ReferencedTable: "customers", ReferencedColumn: "id"},
		{Table: "missing", Column: "x", ReferencedTable: "customers", ReferencedColumn: "id"},
		{Table: "orders", Column: "missing", ReferencedTable: "customers", ReferencedColumn: "id"},
	}

	out := Assemble(tables, fks)
	orders := out[1]
	assert.Equal(t, "customers", orders.Attributes[1].RefTable)
	assert.Equal(t, "id", orders.Attributes[1].RefAttr)
	assert.Equal(t, model.FK, orders.Attributes[2].Type)
	assert.Len(t, orders.Attributes, 3)

	// input untouched
	assert.Equal(t, "old", tables[1].Attributes[1].RefTable)
	assert.Equal(t, model.Normal, tables[1].Attributes[2].Type)

	assert.Equal(t, out, Assemble(out, fks), "assembly is idempotent")
}
