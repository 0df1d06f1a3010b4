package document

import (
	"fmt"
	"sort"

	"cuelang.org/go/cue/token"
)

// rawStep is a decoded step value with the position of its source node.
type rawStep struct {
	value any
	pos   token.Pos
}

func parseSteps(path string, raws []rawStep) ([]Step, error) {
	steps := make([]Step, 0, len(raws))
	for i, raw := range raws {
		step, err := parseStep(fmt.Sprintf("%s[%d]", path, i), raw.value, raw.pos)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// parseStep decodes {<kind>: <arguments>}.
func parseStep(path string, v any, pos token.Pos) (Step, error) {
	m, ok := v.(map[string]any)
	if !ok || len(m) != 1 {
		return Step{}, &CompileError{
			Field:   path,
			Message: "step must be a mapping with exactly one key",
			Pos:     pos,
		}
	}

	var key string
	var arg any
	for k, a := range m {
		key, arg = k, a
	}

	kind := StepKind(key)
	if !ValidStepKinds[kind] {
		return Step{}, &CompileError{
			Field:   path,
			Message: fmt.Sprintf("unknown step %q (valid: %s)", key, validKinds()),
			Pos:     pos,
		}
	}

	step := Step{Kind: kind, Pos: pos}
	field := path + "." + key
	var err error
	switch kind {
	case StepWhere, StepOrWhere, StepWhereNot, StepOrWhereNot:
		err = parseWhere(field, arg, &step)
	case StepWhereColumn, StepOrWhereColumn:
		step.Key, step.Operator, step.Column, err = parseComparison(field, arg, pos)
	case StepJoin, StepLeftJoin, StepRightJoin:
		err = parseJoin(field, arg, &step)
	}
	if err != nil {
		return Step{}, err
	}
	return step, nil
}

// parseWhere accepts a positional list, {values: {...}}, {group: [...]}, or a
// single scalar argument.
func parseWhere(field string, arg any, step *Step) error {
	switch a := arg.(type) {
	case []any:
		step.Args = a
		return nil

	case map[string]any:
		if len(a) != 1 {
			break
		}
		if values, ok := a["values"]; ok {
			m, ok := values.(map[string]any)
			if !ok {
				return &CompileError{Field: field + ".values", Message: "values must be a mapping", Pos: step.Pos}
			}
			step.Values = m
			return nil
		}
		if group, ok := a["group"]; ok {
			list, ok := group.([]any)
			if !ok {
				return &CompileError{Field: field + ".group", Message: "group must be a list of steps", Pos: step.Pos}
			}
			raws := make([]rawStep, len(list))
			for i, child := range list {
				raws[i] = rawStep{value: child, pos: step.Pos}
			}
			children, err := parseSteps(field+".group", raws)
			if err != nil {
				return err
			}
			step.Group = children
			return nil
		}

	default:
		step.Args = []any{arg}
		return nil
	}

	return &CompileError{
		Field:   field,
		Message: "expected an argument list, {values: {...}} or {group: [...]}",
		Pos:     step.Pos,
	}
}

// parseComparison decodes [left, right] or [left, operator, right].
func parseComparison(field string, arg any, pos token.Pos) (left, operator, right string, err error) {
	list, ok := arg.([]any)
	if !ok || (len(list) != 2 && len(list) != 3) {
		return "", "", "", &CompileError{
			Field:   field,
			Message: "expected [left, right] or [left, operator, right]",
			Pos:     pos,
		}
	}

	parts := make([]string, len(list))
	for i, item := range list {
		s, ok := item.(string)
		if !ok || s == "" {
			return "", "", "", &CompileError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Message: fmt.Sprintf("expected a non-empty string, got %T", item),
				Pos:     pos,
			}
		}
		parts[i] = s
	}

	if len(parts) == 2 {
		return parts[0], "", parts[1], nil
	}
	return parts[0], parts[1], parts[2], nil
}

// parseJoin decodes {table: name, on: [clause...]}. A clause is a comparison
// list, or {or: list} / {and: list}.
func parseJoin(field string, arg any, step *Step) error {
	m, ok := arg.(map[string]any)
	if !ok {
		return &CompileError{Field: field, Message: "join must be a mapping with table and on", Pos: step.Pos}
	}
	for k := range m {
		if k != "table" && k != "on" {
			return &CompileError{Field: field + "." + k, Message: "unknown join field", Pos: step.Pos}
		}
	}

	table, ok := m["table"].(string)
	if !ok || table == "" {
		return &CompileError{Field: field + ".table", Message: "table is required", Pos: step.Pos}
	}
	step.Table = table

	rawOn, present := m["on"]
	if !present || rawOn == nil {
		return nil
	}
	list, ok := rawOn.([]any)
	if !ok {
		return &CompileError{Field: field + ".on", Message: "on must be a list of clauses", Pos: step.Pos}
	}

	step.On = make([]OnStep, 0, len(list))
	for i, item := range list {
		clauseField := fmt.Sprintf("%s.on[%d]", field, i)
		or := false
		if wrapped, ok := item.(map[string]any); ok {
			inner, isOr := wrapped["or"]
			if !isOr {
				inner, ok = wrapped["and"]
				if !ok || len(wrapped) != 1 {
					return &CompileError{Field: clauseField, Message: "expected {or: [...]} or {and: [...]}", Pos: step.Pos}
				}
			} else if len(wrapped) != 1 {
				return &CompileError{Field: clauseField, Message: "expected {or: [...]} or {and: [...]}", Pos: step.Pos}
			}
			item, or = inner, isOr
		}

		from, op, to, err := parseComparison(clauseField, item, step.Pos)
		if err != nil {
			return err
		}
		step.On = append(step.On, OnStep{From: from, Operator: op, To: to, Or: or})
	}
	return nil
}

func validKinds() string {
	kinds := make([]string, 0, len(ValidStepKinds))
	for k := range ValidStepKinds {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	return fmt.Sprint(kinds)
}
