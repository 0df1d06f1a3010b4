package querysql

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/roach88/filterkit/internal/ir"
	"github.com/roach88/filterkit/internal/queryir"
)

// identPattern accepts bare and dot-qualified identifiers. Identifiers are
// interpolated into the statement, so anything else is rejected.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// columnPattern additionally accepts "*" and "table.*" in the select list.
var columnPattern = regexp.MustCompile(`^(\*|[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*(\.\*)?)$`)

// Compiler compiles lowered queries to parameterized SQL.
//
// CRITICAL: All values are parameterized (never interpolated).
// Identifiers are validated, not quoted.
type Compiler struct {
	// Dialect selects placeholders and dialect-specific operators.
	// The zero value is SQLite.
	Dialect Dialect

	// Columns is the select list. Empty means "*".
	Columns []string
}

// NewCompiler creates a Compiler for the given dialect.
func NewCompiler(d Dialect) *Compiler {
	return &Compiler{Dialect: d}
}

// Compile converts a queryir query to parameterized SQL.
// Returns (sql, params, error) tuple. Failures are *CompileError.
func (c *Compiler) Compile(q queryir.Query) (string, []any, error) {
	if q == nil {
		return "", nil, compileErrorf("", "cannot compile nil query")
	}

	switch query := q.(type) {
	case queryir.Select:
		return c.compileSelect(query)
	case *queryir.Select:
		return c.compileSelect(*query)
	default:
		return "", nil, compileErrorf("", "unsupported query type: %T", q)
	}
}

// CompileJSON lowers a modifier sequence over table and compiles it.
func (c *Compiler) CompileJSON(table string, q ir.JsonQuery) (string, []any, error) {
	sel, err := queryir.Lower(table, q)
	if err != nil {
		return "", nil, err
	}
	return c.Compile(sel)
}

func (c *Compiler) compileSelect(q queryir.Select) (string, []any, error) {
	if !identPattern.MatchString(q.From) {
		return "", nil, compileErrorf(q.From, "invalid table name")
	}

	columns := c.Columns
	if len(columns) == 0 {
		columns = []string{"*"}
	}
	for _, col := range columns {
		if !columnPattern.MatchString(col) {
			return "", nil, compileErrorf(col, "invalid column in select list")
		}
	}

	builder := c.Dialect.statementBuilder().Select(columns...).From(q.From)

	for _, j := range q.Joins {
		clause, err := c.compileJoin(j)
		if err != nil {
			return "", nil, err
		}
		builder = builder.JoinClause(clause)
	}

	if q.Filter != nil {
		where, err := c.compilePredicate(q.Filter)
		if err != nil {
			return "", nil, err
		}
		builder = builder.Where(where)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return "", nil, &CompileError{Message: err.Error()}
	}
	if args == nil {
		args = []any{}
	}
	return sql, args, nil
}

func (c *Compiler) compileJoin(j queryir.JoinSpec) (squirrel.Sqlizer, error) {
	var keyword string
	switch j.Kind {
	case ir.JoinInner:
		keyword = "INNER JOIN"
	case ir.JoinLeft:
		keyword = "LEFT JOIN"
	case ir.JoinRight:
		keyword = "RIGHT JOIN"
	default:
		return nil, compileErrorf(j.Table, "unsupported join kind %q", j.Kind)
	}
	if !identPattern.MatchString(j.Table) {
		return nil, compileErrorf(j.Table, "invalid table name")
	}

	clause := joinClause{keyword: keyword, table: j.Table}
	if j.On != nil {
		on, err := c.compilePredicate(j.On)
		if err != nil {
			return nil, err
		}
		clause.on = on
	}
	return clause, nil
}

// compilePredicate compiles a predicate tree to a squirrel expression.
// CRITICAL: Values NEVER interpolated - always placeholders.
func (c *Compiler) compilePredicate(p queryir.Predicate) (squirrel.Sqlizer, error) {
	switch pred := p.(type) {
	case queryir.Compare:
		return c.compileCompare(pred)
	case *queryir.Compare:
		return c.compileCompare(*pred)
	case queryir.Match:
		return c.compileMatch(pred)
	case *queryir.Match:
		return c.compileMatch(*pred)
	case queryir.ColumnCompare:
		return c.compileColumnCompare(pred)
	case *queryir.ColumnCompare:
		return c.compileColumnCompare(*pred)
	case queryir.And:
		return c.compileConj(pred.Predicates, false)
	case *queryir.And:
		return c.compileConj(pred.Predicates, false)
	case queryir.Or:
		return c.compileConj(pred.Predicates, true)
	case *queryir.Or:
		return c.compileConj(pred.Predicates, true)
	case queryir.Not:
		return c.compileNot(pred)
	case *queryir.Not:
		return c.compileNot(*pred)
	case nil:
		return nil, compileErrorf("", "nil predicate")
	default:
		return nil, compileErrorf("", "unsupported predicate type: %T", p)
	}
}

func (c *Compiler) compileConj(preds []queryir.Predicate, or bool) (squirrel.Sqlizer, error) {
	parts := make([]squirrel.Sqlizer, 0, len(preds))
	for _, p := range preds {
		s, err := c.compilePredicate(p)
		if err != nil {
			return nil, err
		}
		parts = append(parts, s)
	}
	if or {
		return squirrel.Or(parts), nil
	}
	return squirrel.And(parts), nil
}

func (c *Compiler) compileNot(n queryir.Not) (squirrel.Sqlizer, error) {
	inner, err := c.compilePredicate(n.Predicate)
	if err != nil {
		return nil, err
	}
	return notExpr{inner: inner, parenthesized: isConj(inner)}, nil
}

func (c *Compiler) compileCompare(cmp queryir.Compare) (squirrel.Sqlizer, error) {
	if !identPattern.MatchString(cmp.Field) {
		return nil, compileErrorf(cmp.Field, "invalid field name")
	}

	op := queryir.NormalizeOperator(cmp.Operator)
	value := cmp.Value
	if value == nil {
		value = ir.Null{}
	}
	_, isNull := value.(ir.Null)
	list, isList := value.(ir.List)

	switch op {
	case queryir.OpIn, queryir.OpNotIn:
		if !isList {
			return nil, compileErrorf(cmp.Field, "operator %q requires a list value", op)
		}
		params, err := listParams(cmp.Field, list)
		if err != nil {
			return nil, err
		}
		if op == queryir.OpIn {
			return squirrel.Eq{cmp.Field: params}, nil
		}
		return squirrel.NotEq{cmp.Field: params}, nil

	case queryir.OpIs, queryir.OpIsNot:
		negate := op == queryir.OpIsNot
		switch v := value.(type) {
		case ir.Null:
			if negate {
				return squirrel.NotEq{cmp.Field: nil}, nil
			}
			return squirrel.Eq{cmp.Field: nil}, nil
		case ir.Bool:
			return squirrel.Expr(fmt.Sprintf("%s %s %s", cmp.Field, strings.ToUpper(op), boolLiteral(bool(v)))), nil
		default:
			return nil, compileErrorf(cmp.Field, "operator %q accepts only null or a boolean, got %T", op, value)
		}
	}

	if isList {
		return nil, compileErrorf(cmp.Field, "operator %q does not accept a list; use in / not in", op)
	}

	param := ir.Native(value)
	switch op {
	case queryir.OpEq:
		return squirrel.Eq{cmp.Field: param}, nil
	case queryir.OpNe, queryir.OpNeAlt:
		return squirrel.NotEq{cmp.Field: param}, nil
	}

	if isNull {
		return nil, compileErrorf(cmp.Field, "cannot compare NULL with %q; use is / is not", op)
	}

	switch op {
	case queryir.OpLt:
		return squirrel.Lt{cmp.Field: param}, nil
	case queryir.OpLe:
		return squirrel.LtOrEq{cmp.Field: param}, nil
	case queryir.OpGt:
		return squirrel.Gt{cmp.Field: param}, nil
	case queryir.OpGe:
		return squirrel.GtOrEq{cmp.Field: param}, nil
	case queryir.OpLike:
		return squirrel.Like{cmp.Field: param}, nil
	case queryir.OpNotLike:
		return squirrel.NotLike{cmp.Field: param}, nil
	case queryir.OpILike:
		pattern, ok := value.(ir.String)
		if !ok {
			return nil, compileErrorf(cmp.Field, "operator %q requires a string pattern", op)
		}
		return c.Dialect.caseInsensitiveLike(cmp.Field, string(pattern)), nil
	default:
		return nil, compileErrorf(cmp.Field, "unsupported operator %q", cmp.Operator)
	}
}

// compileMatch renders the object shorthand. Keys are sorted so output is
// deterministic; lists become IN and null becomes IS NULL.
func (c *Compiler) compileMatch(m queryir.Match) (squirrel.Sqlizer, error) {
	keys := make([]string, 0, len(m.Values))
	for k := range m.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]squirrel.Sqlizer, 0, len(keys))
	for _, k := range keys {
		if !identPattern.MatchString(k) {
			return nil, compileErrorf(k, "invalid field name")
		}
		var param any
		switch v := m.Values[k].(type) {
		case ir.List:
			params, err := listParams(k, v)
			if err != nil {
				return nil, err
			}
			param = params
		default:
			param = ir.Native(v)
		}
		parts = append(parts, squirrel.Eq{k: param})
	}

	switch len(parts) {
	case 0:
		return squirrel.And{}, nil
	case 1:
		return parts[0], nil
	default:
		return squirrel.And(parts), nil
	}
}

// columnOperators maps normalized operators to SQL for column comparisons.
var columnOperators = map[string]string{
	queryir.OpEq:      "=",
	queryir.OpNe:      "<>",
	queryir.OpNeAlt:   "<>",
	queryir.OpLt:      "<",
	queryir.OpLe:      "<=",
	queryir.OpGt:      ">",
	queryir.OpGe:      ">=",
	queryir.OpLike:    "LIKE",
	queryir.OpNotLike: "NOT LIKE",
}

func (c *Compiler) compileColumnCompare(cc queryir.ColumnCompare) (squirrel.Sqlizer, error) {
	if !identPattern.MatchString(cc.Field) {
		return nil, compileErrorf(cc.Field, "invalid field name")
	}
	if !identPattern.MatchString(cc.Column) {
		return nil, compileErrorf(cc.Column, "invalid column name")
	}

	op := queryir.NormalizeOperator(cc.Operator)
	if op == queryir.OpILike {
		return c.Dialect.columnLike(cc.Field, cc.Column), nil
	}
	sqlOp, ok := columnOperators[op]
	if !ok {
		return nil, compileErrorf(cc.Field, "unsupported column operator %q", cc.Operator)
	}
	return squirrel.Expr(fmt.Sprintf("%s %s %s", cc.Field, sqlOp, cc.Column)), nil
}

// listParams converts list elements to parameters. Elements must be scalars.
func listParams(field string, list ir.List) ([]any, error) {
	params := make([]any, len(list))
	for i, elem := range list {
		switch elem.(type) {
		case ir.Null, nil:
			return nil, compileErrorf(field, "list element %d is null", i)
		case ir.List:
			return nil, compileErrorf(field, "list element %d is a nested list", i)
		}
		params[i] = ir.Native(elem)
	}
	return params, nil
}

func boolLiteral(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func isConj(s squirrel.Sqlizer) bool {
	switch s.(type) {
	case squirrel.And, squirrel.Or:
		return true
	default:
		return false
	}
}

// notExpr negates an expression. Conjunctions already render parenthesized.
type notExpr struct {
	inner         squirrel.Sqlizer
	parenthesized bool
}

func (n notExpr) ToSql() (string, []any, error) {
	sql, args, err := n.inner.ToSql()
	if err != nil {
		return "", nil, err
	}
	if n.parenthesized {
		return "NOT " + sql, args, nil
	}
	return "NOT (" + sql + ")", args, nil
}

// joinClause renders "<KIND> JOIN table ON cond". A join without
// on-clauses joins every row.
type joinClause struct {
	keyword string
	table   string
	on      squirrel.Sqlizer
}

func (j joinClause) ToSql() (string, []any, error) {
	if j.on == nil {
		return fmt.Sprintf("%s %s ON (1=1)", j.keyword, j.table), nil, nil
	}
	sql, args, err := j.on.ToSql()
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("%s %s ON %s", j.keyword, j.table, sql), args, nil
}
