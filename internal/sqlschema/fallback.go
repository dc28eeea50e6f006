package sqlschema

import (
	"errors"
	"regexp"
	"strings"
)

// FallbackStrategy recovers CREATE TABLE statements the grammar rejects,
// typically MySQL or SQL Server flavored DDL. It is heuristic: it finds the
// table name, takes everything between the first "(" and the last ")" as the
// body and classifies each top-level clause on its own. ALTER TABLE
// statements only yield the foreign keys they add.
type FallbackStrategy struct{}

func (FallbackStrategy) Name() string { return "fallback" }

const identExpr = "[`\"\\[]?[\\w$]+[`\"\\]]?"

var (
	fbTableName  = regexp.MustCompile(`(?is)^\s*CREATE\s+TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?((?:` + identExpr + `\.)?` + identExpr + `)\s*\(`)
	fbAlterTable = regexp.MustCompile(`(?is)^\s*ALTER\s+TABLE\s+(?:ONLY\s+)?(?:IF\s+EXISTS\s+)?((?:` + identExpr + `\.)?` + identExpr + `)\s+(.*?)\s*;?\s*$`)
	fbAdd        = regexp.MustCompile(`(?i)^ADD\s+`)
	fbBody       = regexp.MustCompile(`(?s)\(([\s\S]*)\)`)

	fbConstraintName = regexp.MustCompile(`(?i)^CONSTRAINT\s+` + identExpr + `\s+`)
	fbForeignKey     = regexp.MustCompile(`(?i)^FOREIGN\s+KEY\s*(?:` + identExpr + `\s*)?\(([^)]*)\)\s*REFERENCES\s+((?:` + identExpr + `\.)?` + identExpr + `)\s*\(([^)]*)\)`)
	fbPrimaryKey     = regexp.MustCompile(`(?i)^PRIMARY\s+KEY\s*(?:CLUSTERED\s+|NONCLUSTERED\s+)?\(([^)]*)\)`)
	fbUnique         = regexp.MustCompile(`(?i)^UNIQUE\s*(?:KEY\s+|INDEX\s+)?(?:` + identExpr + `\s*)?\(([^)]*)\)`)
	// "KEY idx (col)" is an index, "key VARCHAR(10)" is a column named key
	fbIndex   = regexp.MustCompile(`(?i)^(?:(?:FULLTEXT|SPATIAL)\s+)?(?:KEY|INDEX)\s*(?:` + identExpr + `\s*)?\(\s*[^\d\s]`)
	fbSkipped = regexp.MustCompile(`(?i)^(?:CHECK\s*\(|EXCLUDE\b)`)

	fbColumn     = regexp.MustCompile(`(?s)^(` + identExpr + `)\s+([^\s(,]+(?:\s*\([^)]*\))?)(.*)$`)
	fbReferences = regexp.MustCompile(`(?i)REFERENCES\s+((?:` + identExpr + `\.)?` + identExpr + `)\s*\(\s*(` + identExpr + `)\s*\)`)
	fbDefault    = regexp.MustCompile(`(?i)\bDEFAULT\s+('[^']*'|[^,\s]+(?:\([^)]*\))?)`)
	fbNotNull    = regexp.MustCompile(`(?i)\bNOT\s+NULL\b`)
	fbPKMarker   = regexp.MustCompile(`(?i)\bPRIMARY\s+KEY\b`)
	fbUniqMarker = regexp.MustCompile(`(?i)\bUNIQUE\b`)
	fbAutoIncr   = regexp.MustCompile(`(?i)\b(?:IDENTITY|AUTO_INCREMENT|AUTOINCREMENT)\b`)
)

var (
	errNoTableName = errors.New("cannot parse CREATE TABLE: table name not found")
	errNoBody      = errors.New("cannot parse CREATE TABLE: column list not found")
	errNoAlterFK   = errors.New("cannot parse ALTER TABLE: no foreign key constraint found")
)

func (FallbackStrategy) Parse(stmt string) Result {
	if m := fbAlterTable.FindStringSubmatch(stmt); m != nil {
		return parseAlterTable(m[1], m[2])
	}

	m := fbTableName.FindStringSubmatch(stmt)
	if m == nil {
		return failed(errNoTableName)
	}
	body := fbBody.FindStringSubmatch(stmt)
	if body == nil {
		return failed(errNoBody)
	}

	ct := &CreateTableStmt{Table: unqualify(m[1])}
	for _, clause := range SplitByCommas(body[1]) {
		if def := classifyClause(clause); def != nil {
			ct.Definitions = append(ct.Definitions, def)
		}
	}
	return parsed(ct)
}

// parseAlterTable keeps the ADD [CONSTRAINT x] FOREIGN KEY actions of an
// ALTER TABLE; other actions are dropped.
func parseAlterTable(table, actions string) Result {
	at := &AlterTableStmt{Table: unqualify(table)}
	for _, action := range SplitByCommas(actions) {
		loc := fbAdd.FindStringIndex(action)
		if loc == nil {
			continue
		}
		if def, ok := classifyClause(action[loc[1]:]).(*ConstraintDef); ok && def.Type == ForeignKey {
			at.Constraints = append(at.Constraints, def)
		}
	}
	if len(at.Constraints) == 0 {
		return failed(errNoAlterFK)
	}
	return parsed(at)
}

func classifyClause(clause string) Definition {
	name := ""
	if loc := fbConstraintName.FindStringIndex(clause); loc != nil {
		name = unquote(strings.Fields(clause[:loc[1]])[1])
		clause = clause[loc[1]:]
	}

	if m := fbForeignKey.FindStringSubmatch(clause); m != nil {
		return &ConstraintDef{
			Type:       ForeignKey,
			Name:       name,
			Columns:    identList(m[1]),
			References: &Reference{Table: unqualify(m[2]), Columns: identList(m[3])},
		}
	}
	if m := fbPrimaryKey.FindStringSubmatch(clause); m != nil {
		return &ConstraintDef{Type: PrimaryKey, Name: name, Columns: identList(m[1])}
	}
	if m := fbUnique.FindStringSubmatch(clause); m != nil {
		return &ConstraintDef{Type: Unique, Name: name, Columns: identList(m[1])}
	}
	if name != "" || fbIndex.MatchString(clause) || fbSkipped.MatchString(clause) {
		return nil
	}
	return parseColumnClause(clause)
}

func parseColumnClause(clause string) *ColumnDef {
	m := fbColumn.FindStringSubmatch(clause)
	if m == nil {
		return nil
	}

	col := &ColumnDef{Name: unquote(m[1]), RawType: strings.TrimSpace(m[2])}
	rest := m[3]

	if r := fbReferences.FindStringSubmatch(rest); r != nil {
		col.References = &Reference{Table: unqualify(r[1]), Columns: []string{unquote(r[2])}}
	}
	if fbPKMarker.MatchString(rest) {
		col.PrimaryKey = true
		col.NotNull = true
	}
	if fbNotNull.MatchString(rest) {
		col.NotNull = true
	}
	if fbUniqMarker.MatchString(rest) {
		col.Unique = true
	}
	if fbAutoIncr.MatchString(rest) || fbAutoIncr.MatchString(col.RawType) {
		col.AutoIncrement = true
	}
	if d := fbDefault.FindStringSubmatch(rest); d != nil {
		v := d[1]
		col.Default = &v
	}
	return col
}

func identList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		// drop index options such as "name(10)" lengths or ASC/DESC
		f := strings.Fields(p)
		if len(f) == 0 {
			continue
		}
		out = append(out, unquote(f[0]))
	}
	return out
}

func unquote(s string) string {
	return strings.Trim(s, "`\"[]")
}

// unqualify drops a schema prefix: "dbo.users" -> "users".
func unqualify(s string) string {
	if i := strings.LastIndex(s, "."); i >= 0 {
		s = s[i+1:]
	}
	return unquote(s)
}
