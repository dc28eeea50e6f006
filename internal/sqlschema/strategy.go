package sqlschema

// Strategy turns one statement into typed statements.
type Strategy interface {
	Name() string
	Parse(stmt string) Result
}

// Result is the outcome of a Strategy. A failed parse is a value with Err set.
type Result struct {
	Statements []Statement
	Err        error
}

// OK reports whether the strategy succeeded.
func (r Result) OK() bool { return r.Err == nil }

func failed(err error) Result { return Result{Err: err} }

func parsed(stmts ...Statement) Result { return Result{Statements: stmts} }
