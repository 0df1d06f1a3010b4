package ir

// Method discriminates the top-level Modifier variants.
type Method string

const (
	MethodWhere Method = "where"
	MethodJoin  Method = "join"
)

// WhereKind sub-discriminates where-modifiers.
type WhereKind string

const (
	KindSimple  WhereKind = "simple"
	KindObject  WhereKind = "object"
	KindColumn  WhereKind = "column"
	KindGrouped WhereKind = "grouped"
)

// LogicalOperator records both the connective to the previous sibling and
// whether the condition is negated.
type LogicalOperator string

const (
	And    LogicalOperator = "and"
	Or     LogicalOperator = "or"
	AndNot LogicalOperator = "andNot"
	OrNot  LogicalOperator = "orNot"
)

// ValidLogicalOperators defines allowed where-modifier logical operators.
var ValidLogicalOperators = map[LogicalOperator]bool{
	And:    true,
	Or:     true,
	AndNot: true,
	OrNot:  true,
}

// Negated reports whether the condition is wrapped in NOT.
func (op LogicalOperator) Negated() bool {
	return op == AndNot || op == OrNot
}

// Connective returns the plain connective (And or Or) without negation.
func (op LogicalOperator) Connective() LogicalOperator {
	if op == Or || op == OrNot {
		return Or
	}
	return And
}

// JoinKind is the kind of a join modifier.
type JoinKind string

const (
	JoinInner JoinKind = "inner"
	JoinLeft  JoinKind = "left"
	JoinRight JoinKind = "right"
)

// DefaultOperator is the comparison used when a call omits the operator.
const DefaultOperator = "="

// Modifier is one normalized unit of filter or join intent.
// Concrete types: WhereSimple, WhereObject, WhereColumn, WhereGrouped, Join.
type Modifier interface {
	Method() Method
	modifier() // Sealed
}

// WhereModifier is a Modifier with Method() == MethodWhere.
type WhereModifier interface {
	Modifier
	Kind() WhereKind
	Logical() LogicalOperator
}

// WhereSimple compares a field to a literal value.
// An empty Operator means equality.
type WhereSimple struct {
	Key             string
	Operator        string
	Value           Value
	LogicalOperator LogicalOperator
}

// WhereObject is shorthand for several equality conditions sharing one
// logical operator.
type WhereObject struct {
	Values          map[string]Value
	LogicalOperator LogicalOperator
}

// WhereColumn compares two fields.
// An empty Operator means equality.
type WhereColumn struct {
	Key             string
	Operator        string
	Column          string
	LogicalOperator LogicalOperator
}

// WhereGrouped is a parenthesized sub-predicate. Children are where-modifiers only.
type WhereGrouped struct {
	LogicalOperator LogicalOperator
	Children        []WhereModifier
}

// Join joins a table on an ordered sequence of on-clauses.
type Join struct {
	Kind  JoinKind
	Table string
	On    []OnClause
}

// OnClause is one join-condition comparison.
// An empty LogicalOperator means an implicit "and" with the previous clause;
// the only explicit value is Or.
type OnClause struct {
	From            string          `json:"from"`
	Operator        string          `json:"operator,omitempty"`
	To              string          `json:"to"`
	LogicalOperator LogicalOperator `json:"logicalOperator,omitempty"`
}

// JsonQuery is the serialized IR handed to a downstream query compiler.
type JsonQuery struct {
	Modifiers []Modifier
}

func (WhereSimple) Method() Method  { return MethodWhere }
func (WhereObject) Method() Method  { return MethodWhere }
func (WhereColumn) Method() Method  { return MethodWhere }
func (WhereGrouped) Method() Method { return MethodWhere }
func (Join) Method() Method         { return MethodJoin }

func (WhereSimple) modifier()  {}
func (WhereObject) modifier()  {}
func (WhereColumn) modifier()  {}
func (WhereGrouped) modifier() {}
func (Join) modifier()         {}

func (WhereSimple) Kind() WhereKind  { return KindSimple }
func (WhereObject) Kind() WhereKind  { return KindObject }
func (WhereColumn) Kind() WhereKind  { return KindColumn }
func (WhereGrouped) Kind() WhereKind { return KindGrouped }

func (m WhereSimple) Logical() LogicalOperator  { return m.LogicalOperator }
func (m WhereObject) Logical() LogicalOperator  { return m.LogicalOperator }
func (m WhereColumn) Logical() LogicalOperator  { return m.LogicalOperator }
func (m WhereGrouped) Logical() LogicalOperator { return m.LogicalOperator }

// Clone returns a deep copy of the query. Values are immutable and shared.
func (q JsonQuery) Clone() JsonQuery {
	return JsonQuery{Modifiers: cloneModifiers(q.Modifiers)}
}

func cloneModifiers(mods []Modifier) []Modifier {
	if mods == nil {
		return []Modifier{}
	}
	out := make([]Modifier, len(mods))
	for i, m := range mods {
		out[i] = cloneModifier(m)
	}
	return out
}

func cloneModifier(m Modifier) Modifier {
	switch mod := m.(type) {
	case WhereObject:
		values := make(map[string]Value, len(mod.Values))
		for k, v := range mod.Values {
			values[k] = v
		}
		mod.Values = values
		return mod
	case WhereGrouped:
		children := make([]WhereModifier, len(mod.Children))
		for i, c := range mod.Children {
			children[i] = cloneModifier(c).(WhereModifier)
		}
		mod.Children = children
		return mod
	case Join:
		on := make([]OnClause, len(mod.On))
		copy(on, mod.On)
		mod.On = on
		return mod
	default:
		return m
	}
}
