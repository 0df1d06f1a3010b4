package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// The wire format field names and tag strings are a contract with downstream
// compilers and must not change.

type simpleJSON struct {
	Method          Method          `json:"method"`
	Kind            WhereKind       `json:"kind"`
	Key             string          `json:"key"`
	Operator        string          `json:"operator,omitempty"`
	Value           Value           `json:"value"`
	LogicalOperator LogicalOperator `json:"logicalOperator"`
}

type objectJSON struct {
	Method          Method           `json:"method"`
	Kind            WhereKind        `json:"kind"`
	Values          map[string]Value `json:"values"`
	LogicalOperator LogicalOperator  `json:"logicalOperator"`
}

type columnJSON struct {
	Method          Method          `json:"method"`
	Kind            WhereKind       `json:"kind"`
	Key             string          `json:"key"`
	Operator        string          `json:"operator,omitempty"`
	Column          string          `json:"column"`
	LogicalOperator LogicalOperator `json:"logicalOperator"`
}

type groupedJSON struct {
	Method          Method          `json:"method"`
	Kind            WhereKind       `json:"kind"`
	LogicalOperator LogicalOperator `json:"logicalOperator"`
	Children        []WhereModifier `json:"children"`
}

type joinJSON struct {
	Method Method     `json:"method"`
	Kind   JoinKind   `json:"kind"`
	Table  string     `json:"table"`
	On     []OnClause `json:"on"`
}

// MarshalJSON implements json.Marshaler for WhereSimple.
func (m WhereSimple) MarshalJSON() ([]byte, error) {
	value := m.Value
	if value == nil {
		value = Null{}
	}
	return marshalNoEscape(simpleJSON{
		Method:          MethodWhere,
		Kind:            KindSimple,
		Key:             m.Key,
		Operator:        m.Operator,
		Value:           value,
		LogicalOperator: m.LogicalOperator,
	})
}

// MarshalJSON implements json.Marshaler for WhereObject.
func (m WhereObject) MarshalJSON() ([]byte, error) {
	values := m.Values
	if values == nil {
		values = map[string]Value{}
	}
	return marshalNoEscape(objectJSON{
		Method:          MethodWhere,
		Kind:            KindObject,
		Values:          values,
		LogicalOperator: m.LogicalOperator,
	})
}

// MarshalJSON implements json.Marshaler for WhereColumn.
func (m WhereColumn) MarshalJSON() ([]byte, error) {
	return marshalNoEscape(columnJSON{
		Method:          MethodWhere,
		Kind:            KindColumn,
		Key:             m.Key,
		Operator:        m.Operator,
		Column:          m.Column,
		LogicalOperator: m.LogicalOperator,
	})
}

// MarshalJSON implements json.Marshaler for WhereGrouped.
func (m WhereGrouped) MarshalJSON() ([]byte, error) {
	children := m.Children
	if children == nil {
		children = []WhereModifier{}
	}
	return marshalNoEscape(groupedJSON{
		Method:          MethodWhere,
		Kind:            KindGrouped,
		LogicalOperator: m.LogicalOperator,
		Children:        children,
	})
}

// MarshalJSON implements json.Marshaler for Join.
func (m Join) MarshalJSON() ([]byte, error) {
	on := m.On
	if on == nil {
		on = []OnClause{}
	}
	return marshalNoEscape(joinJSON{
		Method: MethodJoin,
		Kind:   m.Kind,
		Table:  m.Table,
		On:     on,
	})
}

// MarshalJSON implements json.Marshaler for JsonQuery.
// An empty query serializes as {"modifiers":[]}, never null.
func (q JsonQuery) MarshalJSON() ([]byte, error) {
	mods := q.Modifiers
	if mods == nil {
		mods = []Modifier{}
	}
	return marshalNoEscape(struct {
		Modifiers []Modifier `json:"modifiers"`
	}{Modifiers: mods})
}

// Encode serializes a query without HTML escaping, so operators such as
// ">" appear literally. json.Marshal re-escapes Marshaler output; use Encode
// wherever the IR is handed to another process. A non-empty indent
// pretty-prints.
func Encode(q JsonQuery, indent string) ([]byte, error) {
	data, err := q.MarshalJSON()
	if err != nil {
		return nil, err
	}
	if indent == "" {
		return data, nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// marshalNoEscape is json.Marshal with HTML escaping disabled.
func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// UnmarshalJSON implements json.Unmarshaler for JsonQuery.
func (q *JsonQuery) UnmarshalJSON(data []byte) error {
	var raw struct {
		Modifiers []json.RawMessage `json:"modifiers"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	mods := make([]Modifier, 0, len(raw.Modifiers))
	for i, r := range raw.Modifiers {
		m, err := unmarshalModifier(r)
		if err != nil {
			return fmt.Errorf("modifiers[%d]: %w", i, err)
		}
		mods = append(mods, m)
	}
	q.Modifiers = mods
	return nil
}

// ParseQuery decodes serialized IR.
func ParseQuery(data []byte) (JsonQuery, error) {
	var q JsonQuery
	if err := json.Unmarshal(data, &q); err != nil {
		return JsonQuery{}, fmt.Errorf("parse query: %w", err)
	}
	return q, nil
}

// modifierEnvelope is the union of every modifier field, used for decoding.
type modifierEnvelope struct {
	Method          Method                     `json:"method"`
	Kind            string                     `json:"kind"`
	Key             string                     `json:"key"`
	Operator        string                     `json:"operator"`
	Value           json.RawMessage            `json:"value"`
	Values          map[string]json.RawMessage `json:"values"`
	Column          string                     `json:"column"`
	LogicalOperator LogicalOperator            `json:"logicalOperator"`
	Children        []json.RawMessage          `json:"children"`
	Table           string                     `json:"table"`
	On              []OnClause                 `json:"on"`
}

func unmarshalModifier(data []byte) (Modifier, error) {
	var env modifierEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}

	switch env.Method {
	case MethodWhere:
		return unmarshalWhere(env)
	case MethodJoin:
		return unmarshalJoin(env)
	default:
		return nil, fmt.Errorf("unknown modifier method %q", env.Method)
	}
}

func unmarshalWhere(env modifierEnvelope) (WhereModifier, error) {
	if !ValidLogicalOperators[env.LogicalOperator] {
		return nil, fmt.Errorf("invalid logicalOperator %q", env.LogicalOperator)
	}

	switch WhereKind(env.Kind) {
	case KindSimple:
		if len(env.Value) == 0 {
			return nil, fmt.Errorf("simple where %q: missing value", env.Key)
		}
		val, err := UnmarshalValue(env.Value)
		if err != nil {
			return nil, fmt.Errorf("simple where %q: %w", env.Key, err)
		}
		return WhereSimple{
			Key:             env.Key,
			Operator:        env.Operator,
			Value:           val,
			LogicalOperator: env.LogicalOperator,
		}, nil

	case KindObject:
		values := make(map[string]Value, len(env.Values))
		for k, raw := range env.Values {
			val, err := UnmarshalValue(raw)
			if err != nil {
				return nil, fmt.Errorf("object where %q: %w", k, err)
			}
			values[k] = val
		}
		return WhereObject{Values: values, LogicalOperator: env.LogicalOperator}, nil

	case KindColumn:
		return WhereColumn{
			Key:             env.Key,
			Operator:        env.Operator,
			Column:          env.Column,
			LogicalOperator: env.LogicalOperator,
		}, nil

	case KindGrouped:
		children := make([]WhereModifier, 0, len(env.Children))
		for i, raw := range env.Children {
			child, err := unmarshalModifier(raw)
			if err != nil {
				return nil, fmt.Errorf("children[%d]: %w", i, err)
			}
			wm, ok := child.(WhereModifier)
			if !ok {
				return nil, fmt.Errorf("children[%d]: grouped where contains %q modifier", i, child.Method())
			}
			children = append(children, wm)
		}
		return WhereGrouped{LogicalOperator: env.LogicalOperator, Children: children}, nil

	default:
		return nil, fmt.Errorf("unknown where kind %q", env.Kind)
	}
}

func unmarshalJoin(env modifierEnvelope) (Join, error) {
	kind := JoinKind(env.Kind)
	switch kind {
	case JoinInner, JoinLeft, JoinRight:
	default:
		return Join{}, fmt.Errorf("unknown join kind %q", env.Kind)
	}

	for i, on := range env.On {
		if on.LogicalOperator != "" && on.LogicalOperator != Or {
			return Join{}, fmt.Errorf("join %q on[%d]: invalid logicalOperator %q", env.Table, i, on.LogicalOperator)
		}
	}

	on := env.On
	if on == nil {
		on = []OnClause{}
	}
	return Join{Kind: kind, Table: env.Table, On: on}, nil
}
