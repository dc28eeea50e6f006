package sqlschema

import "erdsketch/internal/model"

// Assemble applies foreign key records to a copy of tables. A record wins
// over whatever the attribute held before, so inline and ALTER TABLE keys
// end up identical. Records whose table or column is unknown are skipped;
// dangling targets are reported by Validate.
func Assemble(tables []model.Table, fks []model.ForeignKey) []model.Table {
	out := make([]model.Table, len(tables))
	for i, t := range tables {
		out[i] = t.Clone()
	}

	for _, fk := range fks {
		for i := range out {
			if out[i].Name != fk.Table {
				continue
			}
			if a := out[i].Attribute(fk.Column); a != nil {
				a.SetReference(fk.ReferencedTable, fk.ReferencedColumn)
			}
			break
		}
	}
	return out
}
