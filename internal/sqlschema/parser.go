// Package sqlschema turns SQL DDL text into a validated table model.
//
// Each statement is tried with the grammar based PrimaryStrategy first. A
// CREATE TABLE the grammar rejects is handed to the FallbackStrategy. Every
// statement yields a Contribution; contributions are folded, foreign keys are
// assembled onto their columns and the result is validated as a whole.
package sqlschema

import (
	"errors"
	"regexp"

	"erdsketch/internal/logger"
	"erdsketch/internal/model"
)

// Import is the result of parsing one SQL text.
type Import struct {
	Schema      model.Schema
	ForeignKeys []model.ForeignKey
	ParseErrors []*ParseError
	Warnings    []string
	// FallbackStatements lists the 1-based positions recovered by the fallback.
	FallbackStatements []int
}

// Parser runs the two-stage parse over a SQL text.
type Parser struct {
	primary  Strategy
	fallback Strategy
}

// Option configures a Parser.
type Option func(*Parser)

// WithPrimary replaces the grammar based strategy.
func WithPrimary(s Strategy) Option {
	return func(p *Parser) { p.primary = s }
}

// WithFallback replaces the heuristic strategy.
func WithFallback(s Strategy) Option {
	return func(p *Parser) { p.fallback = s }
}

// NewParser returns a parser using PrimaryStrategy and FallbackStrategy.
func NewParser(opts ...Option) *Parser {
	p := &Parser{primary: PrimaryStrategy{}, fallback: FallbackStrategy{}}
	for _, o := range opts {
		o(p)
	}
	return p
}

var defaultParser = NewParser()

// Parse parses sqlText with the default parser.
func Parse(sqlText string) (*Import, error) {
	return defaultParser.Parse(sqlText)
}

// statements worth a second, heuristic attempt
var fallbackCandidate = regexp.MustCompile(`(?is)^\s*(?:CREATE\s+TABLE\b|ALTER\s+TABLE\b.*\bFOREIGN\s+KEY\b)`)

// statementOutcome is what parsing one statement produced.
type statementOutcome struct {
	contribution Contribution
	fallback     bool
	errs         []*ParseError
}

func (p *Parser) parseStatement(index int, stmt string) statementOutcome {
	res := p.primary.Parse(stmt)
	strategy := p.primary.Name()
	var out statementOutcome

	if !res.OK() {
		out.errs = append(out.errs, &ParseError{Index: index, Strategy: strategy, Statement: stmt, Err: res.Err})
		if !fallbackCandidate.MatchString(stmt) {
			logger.Warn("statement %d skipped: %v", index, res.Err)
			return out
		}
		logger.Info("statement %d: %v, trying %s parser", index, res.Err, p.fallback.Name())
		res = p.fallback.Parse(stmt)
		strategy = p.fallback.Name()
		if !res.OK() {
			out.errs = append(out.errs, &ParseError{Index: index, Strategy: strategy, Statement: stmt, Err: res.Err})
			return out
		}
		out.fallback = true
	}

	parts := make([]Contribution, 0, len(res.Statements))
	for _, s := range res.Statements {
		c, err := Contribute(s)
		if err != nil {
			out.errs = append(out.errs, &ParseError{Index: index, Strategy: strategy, Statement: stmt, Err: err})
			continue
		}
		parts = append(parts, c)
	}
	out.contribution = Fold(parts)
	return out
}

// Parse splits sqlText into statements, parses each one, and assembles and
// validates the resulting schema. Statement failures are kept in
// Import.ParseErrors unless no table could be parsed at all, in which case a
// *NoTablesError is returned. Validation failures are always returned.
func (p *Parser) Parse(sqlText string) (*Import, error) {
	stmts, err := SplitStatements(sqlText)
	if err != nil {
		return nil, err
	}

	imp := &Import{}
	parts := make([]Contribution, 0, len(stmts))
	for i, stmt := range stmts {
		o := p.parseStatement(i+1, stmt)
		parts = append(parts, o.contribution)
		imp.ParseErrors = append(imp.ParseErrors, o.errs...)
		if o.fallback {
			imp.FallbackStatements = append(imp.FallbackStatements, i+1)
		}
	}

	all := Fold(parts)
	if len(all.Tables) == 0 {
		return nil, &NoTablesError{ParseErrors: imp.ParseErrors}
	}

	tables := Assemble(all.Tables, all.ForeignKeys)
	warnings, err := Validate(tables)
	if err != nil {
		return nil, err
	}

	imp.Schema = model.Schema{Tables: tables}
	imp.ForeignKeys = all.ForeignKeys
	imp.Warnings = warnings
	logger.Debug("parsed %d table(s), %d foreign key(s) from %d statement(s)", len(tables), len(all.ForeignKeys), len(stmts))
	return imp, nil
}

// IsInputError reports whether err means the text had nothing to parse.
func IsInputError(err error) bool {
	return errors.Is(err, ErrEmptyInput) || errors.Is(err, ErrNoTableDefinition)
}
