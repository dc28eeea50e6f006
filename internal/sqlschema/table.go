package sqlschema

import (
	"fmt"

	"erdsketch/internal/logger"
	"erdsketch/internal/model"
)

// Contribution is what one statement adds to a schema.
type Contribution struct {
	Tables      []model.Table
	ForeignKeys []model.ForeignKey
}

// Contribute converts a typed statement into its contribution.
func Contribute(s Statement) (Contribution, error) {
	switch st := s.(type) {
	case *CreateTableStmt:
		return BuildTable(st)
	case *AlterTableStmt:
		return AlterForeignKeys(st)
	case *IgnoredStmt:
		logger.Debug("unsupported statement type: %s", st.What)
	}
	return Contribution{}, nil
}

// BuildTable turns a CREATE TABLE into a table. Column clauses become
// attributes in declaration order; table-level constraints then mark the
// columns they name. Foreign keys are also returned as records so the
// assembler can apply them uniformly with ALTER TABLE ones.
func BuildTable(ct *CreateTableStmt) (Contribution, error) {
	t := model.Table{Name: ct.Table, Attributes: []model.Attribute{}}
	var fks []model.ForeignKey

	for _, def := range ct.Definitions {
		col, ok := def.(*ColumnDef)
		if !ok {
			continue
		}
		attr := model.Attribute{
			Name:            col.Name,
			Type:            model.Normal,
			DataType:        model.NormalizeDataType(col.RawType),
			IsNotNull:       col.NotNull,
			IsUnique:        col.Unique,
			IsAutoIncrement: col.AutoIncrement,
			DefaultValue:    col.Default,
		}
		if col.PrimaryKey {
			attr.MarkPrimaryKey()
		}
		if ref := col.References; ref != nil {
			refCol := ""
			if len(ref.Columns) > 0 {
				refCol = ref.Columns[0]
			}
			attr.SetReference(ref.Table, refCol)
			if refCol != "" {
				fks = append(fks, model.ForeignKey{
					Table:            t.Name,
					Column:           col.Name,
					ReferencedTable:  ref.Table,
					ReferencedColumn: refCol,
				})
			}
		}
		t.Attributes = append(t.Attributes, attr)
	}

	for _, def := range ct.Definitions {
		cons, ok := def.(*ConstraintDef)
		if !ok {
			continue
		}
		switch cons.Type {
		case PrimaryKey:
			for _, name := range cons.Columns {
				if a := t.Attribute(name); a != nil {
					a.MarkPrimaryKey()
				}
			}
		case Unique:
			for _, name := range cons.Columns {
				if a := t.Attribute(name); a != nil {
					a.IsUnique = true
				}
			}
		case ForeignKey:
			recs, err := foreignKeyRecords(t.Name, cons)
			if err != nil {
				return Contribution{}, err
			}
			for _, fk := range recs {
				if a := t.Attribute(fk.Column); a != nil {
					a.SetReference(fk.ReferencedTable, fk.ReferencedColumn)
				}
			}
			fks = append(fks, recs...)
		}
	}

	return Contribution{Tables: []model.Table{t}, ForeignKeys: fks}, nil
}

// AlterForeignKeys records the foreign keys of an ALTER TABLE. Attributes are
// not touched here; the assembler applies them.
func AlterForeignKeys(at *AlterTableStmt) (Contribution, error) {
	var fks []model.ForeignKey
	for _, cons := range at.Constraints {
		if cons.Type != ForeignKey {
			continue
		}
		recs, err := foreignKeyRecords(at.Table, cons)
		if err != nil {
			return Contribution{}, err
		}
		fks = append(fks, recs...)
	}
	return Contribution{ForeignKeys: fks}, nil
}

// foreignKeyRecords pairs local and referenced columns by position.
func foreignKeyRecords(table string, cons *ConstraintDef) ([]model.ForeignKey, error) {
	if cons.References == nil || cons.References.Table == "" {
		return nil, fmt.Errorf("foreign key constraint on %s: referenced table missing", table)
	}
	refCols := cons.References.Columns
	if len(refCols) != len(cons.Columns) {
		return nil, fmt.Errorf("%w: table %s lists %d column(s) %v but references %d column(s) %v in %s",
			ErrKeyColumnMismatch, table, len(cons.Columns), cons.Columns, len(refCols), refCols, cons.References.Table)
	}

	recs := make([]model.ForeignKey, 0, len(cons.Columns))
	for i, col := range cons.Columns {
		recs = append(recs, model.ForeignKey{
			Table:            table,
			Column:           col,
			ReferencedTable:  cons.References.Table,
			ReferencedColumn: refCols[i],
		})
	}
	return recs, nil
}

// Fold merges per-statement contributions in statement order.
func Fold(parts []Contribution) Contribution {
	var out Contribution
	for _, p := range parts {
		out.Tables = append(out.Tables, p.Tables...)
		out.ForeignKeys = append(out.ForeignKeys, p.ForeignKeys...)
	}
	return out
}
