package model

// AttributeType is the key role of a column. A column holds exactly one role.
type AttributeType string

const (
	PK     AttributeType = "PK"
	FK     AttributeType = "FK"
	Normal AttributeType = "normal"
)

// Attribute represents a table column plus its key role and SQL modifiers.
type Attribute struct {
	Name            string        `json:"name"`
	Type            AttributeType `json:"type"`
	DataType        DataType      `json:"dataType"`
	RefTable        string        `json:"refTable,omitempty"`
	RefAttr         string        `json:"refAttr,omitempty"`
	IsNotNull       bool          `json:"isNotNull,omitempty"`
	IsUnique        bool          `json:"isUnique,omitempty"`
	IsAutoIncrement bool          `json:"isAutoIncrement,omitempty"`
	DefaultValue    *string       `json:"defaultValue,omitempty"`
}

// HasReference reports whether both reference fields are set.
func (a Attribute) HasReference() bool {
	return a.RefTable != "" && a.RefAttr != ""
}

// SetReference marks the attribute as a foreign key to table.column.
func (a *Attribute) SetReference(table, column string) {
	a.Type = FK
	a.RefTable = table
	a.RefAttr = column
}

// MarkPrimaryKey makes the attribute a non-null primary key column. Any
// reference it held is dropped since a column holds one role.
func (a *Attribute) MarkPrimaryKey() {
	a.Type = PK
	a.IsNotNull = true
	a.RefTable = ""
	a.RefAttr = ""
}

// Table represents a table and its columns in declaration order.
type Table struct {
	Name       string      `json:"name"`
	Attributes []Attribute `json:"attributes"`
}

// Attribute returns the column called name, or nil.
func (t *Table) Attribute(name string) *Attribute {
	for i := range t.Attributes {
		if t.Attributes[i].Name == name {
			return &t.Attributes[i]
		}
	}
	return nil
}

// HasPrimaryKey reports whether any column is typed PK.
func (t Table) HasPrimaryKey() bool {
	for _, a := range t.Attributes {
		if a.Type == PK {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of t.
func (t Table) Clone() Table {
	c := Table{Name: t.Name, Attributes: make([]Attribute, len(t.Attributes))}
	copy(c.Attributes, t.Attributes)
	for i := range c.Attributes {
		if d := c.Attributes[i].DefaultValue; d != nil {
			v := *d
			c.Attributes[i].DefaultValue = &v
		}
	}
	return c
}

// ForeignKey links a column to the column it references. It only lives
// between parsing and assembly; the persisted form is the FK attribute.
type ForeignKey struct {
	Table            string `json:"table"`
	Column           string `json:"column"`
	ReferencedTable  string `json:"referencedTable"`
	ReferencedColumn string `json:"referencedColumn"`
}

// Schema is the ordered table set produced by one import.
type Schema struct {
	Tables []Table `json:"tables"`
}

// Table returns the first table called name, or nil.
func (s *Schema) Table(name string) *Table {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i]
		}
	}
	return nil
}
