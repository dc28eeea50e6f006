package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableAttributeLookup(t *testing.T) {
	tab := Table{Name: "users", Attributes: []Attribute{
		{Name: "id", Type: PK, DataType: Integer},
		{Name: "Email", Type: Normal, DataType: Varchar255},
	}}

	require.NotNil(t, tab.Attribute("id"))
	assert.Nil(t, tab.Attribute("email"), "lookup is case-sensitive")
	assert.True(t, tab.HasPrimaryKey())

	tab.Attribute("id").SetReference("accounts", "id")
	assert.Equal(t, FK, tab.Attributes[0].Type)
	assert.True(t, tab.Attributes[0].HasReference())
	assert.False(t, tab.HasPrimaryKey())
}

func TestTableCloneDoesNotAlias(t *testing.T) {
	def := "0"
	tab := Table{Name: "t", Attributes: []Attribute{{Name: "n", DefaultValue: &def}}}

	c := tab.Clone()
	c.Attributes[0].Name = "m"
	*c.Attributes[0].DefaultValue = "1"

	assert.Equal(t, "n", tab.Attributes[0].Name)
	assert.Equal(t, "0", *tab.Attributes[0].DefaultValue)
}

func TestAttributeIgnoresEditorFields(t *testing.T) {
	raw := `{"name":"user_id","type":"FK","dataType":"INTEGER","refTable":"users","refAttr":"id",
		"isEditing":true,"editName":"uid","editType":"normal"}`

	var a Attribute
	require.NoError(t, json.Unmarshal([]byte(raw), &a))
	assert.Equal(t, Attribute{Name: "user_id", Type: FK, DataType: Integer, RefTable: "users", RefAttr: "id"}, a)
}

func TestMarkPrimaryKeyDropsReference(t *testing.T) {
	a := Attribute{Name: "id"}
	a.SetReference("accounts", "id")
	a.MarkPrimaryKey()

	assert.Equal(t, PK, a.Type)
	assert.True(t, a.IsNotNull)
	assert.Empty(t, a.RefTable)
	assert.Empty(t, a.RefAttr)
}
