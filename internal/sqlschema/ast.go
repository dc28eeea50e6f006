package sqlschema

// StatementKind discriminates the Statement variants.
type StatementKind int

const (
	CreateTable StatementKind = iota
	AlterTable
	Ignored
)

// Statement is one parsed SQL statement. The concrete types are
// *CreateTableStmt, *AlterTableStmt and *IgnoredStmt.
type Statement interface {
	Kind() StatementKind
}

// CreateTableStmt is a CREATE TABLE with its column and constraint clauses
// in source order.
type CreateTableStmt struct {
	Table       string
	Definitions []Definition
}

// AlterTableStmt holds the foreign keys added by ALTER TABLE ... ADD CONSTRAINT.
type AlterTableStmt struct {
	Table       string
	Constraints []*ConstraintDef
}

// IgnoredStmt is a statement the schema model has no use for.
type IgnoredStmt struct {
	What string
}

func (*CreateTableStmt) Kind() StatementKind { return CreateTable }
func (*AlterTableStmt) Kind() StatementKind  { return AlterTable }
func (*IgnoredStmt) Kind() StatementKind     { return Ignored }

// DefinitionKind discriminates the Definition variants.
type DefinitionKind int

const (
	ColumnDefinition DefinitionKind = iota
	ConstraintDefinition
)

// Definition is one clause of a CREATE TABLE body: *ColumnDef or *ConstraintDef.
type Definition interface {
	Kind() DefinitionKind
}

// Reference names the target of a foreign key.
type Reference struct {
	Table   string
	Columns []string
}

// ColumnDef is a column clause with its inline constraints.
type ColumnDef struct {
	Name          string
	RawType       string
	PrimaryKey    bool
	NotNull       bool
	Unique        bool
	AutoIncrement bool
	Default       *string
	References    *Reference
}

// ConstraintType is the table-level constraint flavor.
type ConstraintType int

const (
	PrimaryKey ConstraintType = iota
	ForeignKey
	Unique
)

func (c ConstraintType) String() string {
	switch c {
	case PrimaryKey:
		return "PRIMARY KEY"
	case ForeignKey:
		return "FOREIGN KEY"
	case Unique:
		return "UNIQUE"
	}
	return "UNKNOWN"
}

// ConstraintDef is a table-level key constraint. References is only set for
// ForeignKey.
type ConstraintDef struct {
	Type       ConstraintType
	Name       string
	Columns    []string
	References *Reference
}

func (*ColumnDef) Kind() DefinitionKind     { return ColumnDefinition }
func (*ConstraintDef) Kind() DefinitionKind { return ConstraintDefinition }
