package filter

import (
	"github.com/roach88/filterkit/internal/ir"
)

// JoinConditionBuilder collects the on-clauses of exactly one join.
// It is only valid inside the join callback it was passed to.
type JoinConditionBuilder struct {
	clauses []ir.OnClause
	taken   bool
}

// On appends "from = to", implicitly combined with AND.
func (j *JoinConditionBuilder) On(from, to string) *JoinConditionBuilder {
	return j.add(from, ir.DefaultOperator, to, "")
}

// OnOp appends "from <operator> to", implicitly combined with AND.
func (j *JoinConditionBuilder) OnOp(from, operator, to string) *JoinConditionBuilder {
	return j.add(from, operator, to, "")
}

// OrOn appends "from = to" combined with OR.
func (j *JoinConditionBuilder) OrOn(from, to string) *JoinConditionBuilder {
	return j.add(from, ir.DefaultOperator, to, ir.Or)
}

// OrOnOp appends "from <operator> to" combined with OR.
func (j *JoinConditionBuilder) OrOnOp(from, operator, to string) *JoinConditionBuilder {
	return j.add(from, operator, to, ir.Or)
}

func (j *JoinConditionBuilder) add(from, operator, to string, logical ir.LogicalOperator) *JoinConditionBuilder {
	if j.taken {
		panic("filter: join condition builder used after its callback returned")
	}
	j.clauses = append(j.clauses, ir.OnClause{
		From:            from,
		Operator:        operator,
		To:              to,
		LogicalOperator: logical,
	})
	return j
}

// take hands the clauses to the parent join exactly once.
func (j *JoinConditionBuilder) take() []ir.OnClause {
	clauses := j.clauses
	j.clauses = nil
	j.taken = true
	return clauses
}
