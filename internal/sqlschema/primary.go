package sqlschema

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// PrimaryStrategy parses statements with the PostgreSQL grammar.
type PrimaryStrategy struct{}

func (PrimaryStrategy) Name() string { return "primary" }

func (PrimaryStrategy) Parse(stmt string) Result {
	tree, err := pg_query.Parse(stmt)
	if err != nil {
		return failed(fmt.Errorf("syntax error: %w", err))
	}

	c := newSource(stmt)
	var out []Statement
	for _, raw := range tree.Stmts {
		if raw.Stmt == nil {
			continue
		}
		switch n := raw.Stmt.Node.(type) {
		case *pg_query.Node_CreateStmt:
			out = append(out, c.createTable(n.CreateStmt))
		case *pg_query.Node_AlterTableStmt:
			out = append(out, c.alterTable(n.AlterTableStmt))
		default:
			out = append(out, &IgnoredStmt{What: strings.TrimPrefix(fmt.Sprintf("%T", n), "*pg_query.Node_")})
		}
	}
	return parsed(out...)
}

// token is an identifier-like word of the source text at byte offset pos.
type token struct {
	pos    int
	text   string
	quoted bool
}

// folded is the name the grammar gives the token: unquoted words are lower
// cased, quoted ones kept exact.
func (t token) folded() string {
	if t.quoted {
		return t.text
	}
	return strings.ToLower(t.text)
}

var dollarTag = regexp.MustCompile(`^\$[A-Za-z_]*\$`)

func isIdentStart(ch byte) bool {
	return ch == '_' || ch >= 0x80 || (ch|0x20 >= 'a' && ch|0x20 <= 'z')
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || ch == '$' || (ch >= '0' && ch <= '9')
}

// closingQuote returns the index of the quote ending the literal opened at
// i, or -1. A doubled quote is an escaped one.
func closingQuote(s string, i int) int {
	q := s[i]
	for j := i + 1; j < len(s); j++ {
		if s[j] != q {
			continue
		}
		if j+1 < len(s) && s[j+1] == q {
			j++
			continue
		}
		return j
	}
	return -1
}

// identTokens lists the words of stmt that can name something. String
// literals, dollar quoted bodies, numbers and comments are skipped.
func identTokens(stmt string) []token {
	var out []token
	for i := 0; i < len(stmt); {
		ch := stmt[i]
		switch {
		case ch == '\'':
			end := closingQuote(stmt, i)
			if end < 0 {
				return out
			}
			i = end + 1
		case ch == '"':
			end := closingQuote(stmt, i)
			if end < 0 {
				return out
			}
			out = append(out, token{pos: i, text: strings.ReplaceAll(stmt[i+1:end], `""`, `"`), quoted: true})
			i = end + 1
		case strings.HasPrefix(stmt[i:], "--"):
			j := strings.IndexByte(stmt[i:], '\n')
			if j < 0 {
				return out
			}
			i += j + 1
		case strings.HasPrefix(stmt[i:], "/*"):
			j := strings.Index(stmt[i+2:], "*/")
			if j < 0 {
				return out
			}
			i += j + 4
		case ch == '$':
			tag := dollarTag.FindString(stmt[i:])
			if tag == "" {
				i++
				continue
			}
			j := strings.Index(stmt[i+len(tag):], tag)
			if j < 0 {
				return out
			}
			i += len(tag) + j + len(tag)
		case ch >= '0' && ch <= '9':
			for i++; i < len(stmt) && (isIdentPart(stmt[i]) || stmt[i] == '.'); i++ {
			}
		case isIdentStart(ch):
			j := i + 1
			for j < len(stmt) && isIdentPart(stmt[j]) {
				j++
			}
			out = append(out, token{pos: i, text: stmt[i:j]})
			i = j
		default:
			i++
		}
	}
	return out
}

// source restores the spelling of identifiers the grammar folded to lower
// case by reading them back from the statement at the node's location.
type source struct {
	text   string
	tokens []token
}

func newSource(stmt string) *source {
	return &source{text: stmt, tokens: identTokens(stmt)}
}

// find returns the first token at or after from that the grammar reads as
// name, and its offset. Unknown locations (-1) search the whole statement.
func (s *source) find(name string, from int) (string, int) {
	for _, t := range s.tokens {
		if t.pos >= from && t.folded() == name {
			return t.text, t.pos
		}
	}
	return name, -1
}

func (s *source) ident(name string, loc int32) string {
	text, _ := s.find(name, int(loc))
	return text
}

// names spells a key list, searching left to right from the location of the
// owning clause since list entries carry no location of their own.
func (s *source) names(nodes []*pg_query.Node, from int32) []string {
	out := make([]string, 0, len(nodes))
	pos := int(from)
	for _, n := range nodes {
		str := n.GetString_()
		if str == nil {
			continue
		}
		text, at := s.find(str.Sval, pos)
		if at >= 0 {
			pos = at + 1
		}
		out = append(out, text)
	}
	return out
}

func (s *source) relation(rv *pg_query.RangeVar) string {
	if rv == nil {
		return ""
	}
	return s.ident(rv.Relname, rv.Location)
}

func (s *source) reference(cons *pg_query.Constraint) *Reference {
	from := cons.Location
	if cons.Pktable != nil && cons.Pktable.Location >= 0 {
		from = cons.Pktable.Location + 1
	}
	return &Reference{Table: s.relation(cons.Pktable), Columns: s.names(cons.PkAttrs, from)}
}

// the grammar reads both FLOAT and DOUBLE PRECISION as float8
var doublePrecision = regexp.MustCompile(`(?i)^double\s+precision\b`)

// renderType renders tn, reading the source where the grammar maps two
// spellings onto one internal name.
func (s *source) renderType(tn *pg_query.TypeName) string {
	name := renderType(tn)
	loc := int(tn.Location)
	if strings.HasPrefix(name, "float") && loc >= 0 && loc < len(s.text) && doublePrecision.MatchString(s.text[loc:]) {
		return "double precision"
	}
	return name
}

func (c *source) createTable(cs *pg_query.CreateStmt) Statement {
	ct := &CreateTableStmt{Table: c.relation(cs.Relation)}

	for _, elt := range cs.TableElts {
		switch e := elt.Node.(type) {
		case *pg_query.Node_ColumnDef:
			ct.Definitions = append(ct.Definitions, c.column(e.ColumnDef))
		case *pg_query.Node_Constraint:
			if def := c.constraint(e.Constraint); def != nil {
				ct.Definitions = append(ct.Definitions, def)
			}
		}
	}
	return ct
}

func (c *source) column(cd *pg_query.ColumnDef) *ColumnDef {
	col := &ColumnDef{Name: c.ident(cd.Colname, cd.Location)}
	if cd.TypeName != nil {
		col.RawType = c.renderType(cd.TypeName)
		if strings.Contains(col.RawType, "serial") {
			col.AutoIncrement = true
		}
	}

	for _, n := range cd.Constraints {
		cons := n.GetConstraint()
		if cons == nil {
			continue
		}
		switch cons.Contype {
		case pg_query.ConstrType_CONSTR_NOTNULL:
			col.NotNull = true
		case pg_query.ConstrType_CONSTR_PRIMARY:
			col.PrimaryKey = true
			col.NotNull = true
		case pg_query.ConstrType_CONSTR_UNIQUE:
			col.Unique = true
		case pg_query.ConstrType_CONSTR_IDENTITY:
			col.AutoIncrement = true
			col.NotNull = true
		case pg_query.ConstrType_CONSTR_DEFAULT:
			if v, ok := renderDefault(cons.RawExpr); ok {
				col.Default = &v
			}
		case pg_query.ConstrType_CONSTR_FOREIGN:
			col.References = c.reference(cons)
		}
	}
	return col
}

func (c *source) constraint(cons *pg_query.Constraint) *ConstraintDef {
	switch cons.Contype {
	case pg_query.ConstrType_CONSTR_PRIMARY:
		return &ConstraintDef{Type: PrimaryKey, Name: cons.Conname, Columns: c.names(cons.Keys, cons.Location)}
	case pg_query.ConstrType_CONSTR_UNIQUE:
		return &ConstraintDef{Type: Unique, Name: cons.Conname, Columns: c.names(cons.Keys, cons.Location)}
	case pg_query.ConstrType_CONSTR_FOREIGN:
		return &ConstraintDef{
			Type:       ForeignKey,
			Name:       cons.Conname,
			Columns:    c.names(cons.FkAttrs, cons.Location),
			References: c.reference(cons),
		}
	}
	return nil
}

func (c *source) alterTable(as *pg_query.AlterTableStmt) Statement {
	if as.Objtype != pg_query.ObjectType_OBJECT_TABLE {
		return &IgnoredStmt{What: "AlterStmt " + as.Objtype.String()}
	}

	at := &AlterTableStmt{Table: c.relation(as.Relation)}
	for _, n := range as.Cmds {
		cmd := n.GetAlterTableCmd()
		if cmd == nil || cmd.Subtype != pg_query.AlterTableType_AT_AddConstraint {
			continue
		}
		cons := cmd.GetDef().GetConstraint()
		if cons == nil || cons.Contype != pg_query.ConstrType_CONSTR_FOREIGN {
			continue
		}
		at.Constraints = append(at.Constraints, c.constraint(cons))
	}
	if len(at.Constraints) == 0 {
		return &IgnoredStmt{What: "AlterTableStmt without foreign keys"}
	}
	return at
}

// grammar-internal type names mapped back to their common spelling
var typeAliases = map[string]string{
	"int2":        "smallint",
	"int4":        "integer",
	"int8":        "bigint",
	"float4":      "float",
	"float8":      "float",
	"bool":        "boolean",
	"bpchar":      "char",
	"timestamptz": "timestamp",
	"timetz":      "time",
}

// CanonicalTypeName maps a PostgreSQL internal type name such as int4 or
// bpchar to its common spelling. Other names are returned unchanged.
func CanonicalTypeName(name string) string {
	if alias, ok := typeAliases[name]; ok {
		return alias
	}
	return name
}

func renderType(tn *pg_query.TypeName) string {
	var name string
	for _, n := range tn.Names {
		if s := n.GetString_(); s != nil && s.Sval != "pg_catalog" {
			name = s.Sval
		}
	}
	name = CanonicalTypeName(name)

	var mods []string
	for _, m := range tn.Typmods {
		if ac := m.GetAConst(); ac != nil {
			if iv := ac.GetIval(); iv != nil {
				mods = append(mods, strconv.Itoa(int(iv.Ival)))
			}
		}
	}
	if len(mods) > 0 {
		name += "(" + strings.Join(mods, ",") + ")"
	}
	return name
}

func renderDefault(expr *pg_query.Node) (string, bool) {
	if expr == nil {
		return "", false
	}

	switch e := expr.Node.(type) {
	case *pg_query.Node_AConst:
		if e.AConst.Isnull {
			return "NULL", true
		}
		switch v := e.AConst.Val.(type) {
		case *pg_query.A_Const_Sval:
			return "'" + v.Sval.Sval + "'", true
		case *pg_query.A_Const_Ival:
			return strconv.FormatInt(int64(v.Ival.Ival), 10), true
		case *pg_query.A_Const_Fval:
			return v.Fval.Fval, true
		case *pg_query.A_Const_Boolval:
			return strconv.FormatBool(v.Boolval.Boolval), true
		}
	case *pg_query.Node_TypeCast:
		return renderDefault(e.TypeCast.Arg)
	case *pg_query.Node_FuncCall:
		var parts []string
		for _, p := range e.FuncCall.Funcname {
			if s := p.GetString_(); s != nil {
				parts = append(parts, s.Sval)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, ".") + "()", true
		}
	case *pg_query.Node_ColumnRef:
		for _, f := range e.ColumnRef.Fields {
			if s := f.GetString_(); s != nil {
				return s.Sval, true
			}
		}
	case *pg_query.Node_SqlvalueFunction:
		switch e.SqlvalueFunction.Op {
		case pg_query.SQLValueFunctionOp_SVFOP_CURRENT_DATE:
			return "CURRENT_DATE", true
		case pg_query.SQLValueFunctionOp_SVFOP_CURRENT_TIME, pg_query.SQLValueFunctionOp_SVFOP_CURRENT_TIME_N:
			return "CURRENT_TIME", true
		case pg_query.SQLValueFunctionOp_SVFOP_CURRENT_TIMESTAMP, pg_query.SQLValueFunctionOp_SVFOP_CURRENT_TIMESTAMP_N:
			return "CURRENT_TIMESTAMP", true
		}
	}
	return "", false
}
