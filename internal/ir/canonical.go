package ir

import (
	"bytes"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces RFC 8785 canonical JSON for a query.
// CRITICAL: This is the ONLY serialization that should be used for
// content-addressed identity (QueryHash) and golden snapshots.
//
// Key differences from standard json.Marshal:
//  1. Object keys sorted by UTF-16 code units (not UTF-8 bytes)
//  2. No HTML escaping (< > & are NOT escaped), U+2028/U+2029 literal
//  3. Strings are NFC normalized
//  4. Floats use the shortest ECMAScript representation; NaN/Inf rejected
//
// Modifier and on-clause order is preserved exactly; only object keys sort.
func MarshalCanonical(q JsonQuery) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, queryTree(q)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// queryTree converts a query to a generic tree of map[string]any, []any and Values.
func queryTree(q JsonQuery) map[string]any {
	mods := make([]any, len(q.Modifiers))
	for i, m := range q.Modifiers {
		mods[i] = modifierTree(m)
	}
	return map[string]any{"modifiers": mods}
}

func modifierTree(m Modifier) map[string]any {
	switch mod := m.(type) {
	case WhereSimple:
		t := map[string]any{
			"method":          string(MethodWhere),
			"kind":            string(KindSimple),
			"key":             mod.Key,
			"value":           mod.Value,
			"logicalOperator": string(mod.LogicalOperator),
		}
		if mod.Operator != "" {
			t["operator"] = mod.Operator
		}
		return t
	case WhereObject:
		values := make(map[string]any, len(mod.Values))
		for k, v := range mod.Values {
			values[k] = v
		}
		return map[string]any{
			"method":          string(MethodWhere),
			"kind":            string(KindObject),
			"values":          values,
			"logicalOperator": string(mod.LogicalOperator),
		}
	case WhereColumn:
		t := map[string]any{
			"method":          string(MethodWhere),
			"kind":            string(KindColumn),
			"key":             mod.Key,
			"column":          mod.Column,
			"logicalOperator": string(mod.LogicalOperator),
		}
		if mod.Operator != "" {
			t["operator"] = mod.Operator
		}
		return t
	case WhereGrouped:
		children := make([]any, len(mod.Children))
		for i, c := range mod.Children {
			children[i] = modifierTree(c)
		}
		return map[string]any{
			"method":          string(MethodWhere),
			"kind":            string(KindGrouped),
			"logicalOperator": string(mod.LogicalOperator),
			"children":        children,
		}
	case Join:
		on := make([]any, len(mod.On))
		for i, c := range mod.On {
			clause := map[string]any{"from": c.From, "to": c.To}
			if c.Operator != "" {
				clause["operator"] = c.Operator
			}
			if c.LogicalOperator != "" {
				clause["logicalOperator"] = string(c.LogicalOperator)
			}
			on[i] = clause
		}
		return map[string]any{
			"method": string(MethodJoin),
			"kind":   string(mod.Kind),
			"table":  mod.Table,
			"on":     on,
		}
	default:
		return map[string]any{"method": fmt.Sprintf("unknown:%T", m)}
	}
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil, Null:
		buf.WriteString("null")
	case string:
		writeCanonicalString(buf, val)
	case String:
		writeCanonicalString(buf, string(val))
	case Int:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
	case Float:
		b, err := formatFloat(float64(val))
		if err != nil {
			return err
		}
		buf.Write(b)
	case Bool:
		buf.WriteString(strconv.FormatBool(bool(val)))
	case List:
		items := make([]any, len(val))
		for i, elem := range val {
			items[i] = elem
		}
		return writeCanonicalArray(buf, items)
	case []any:
		return writeCanonicalArray(buf, val)
	case map[string]any:
		return writeCanonicalObject(buf, val)
	default:
		return fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
	return nil
}

func writeCanonicalArray(buf *bytes.Buffer, items []any) error {
	buf.WriteByte('[')
	for i, elem := range items {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeCanonical(buf, elem); err != nil {
			return fmt.Errorf("array[%d]: %w", i, err)
		}
	}
	buf.WriteByte(']')
	return nil
}

func writeCanonicalObject(buf *bytes.Buffer, obj map[string]any) error {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeCanonicalString(buf, k)
		buf.WriteByte(':')
		if err := writeCanonical(buf, obj[k]); err != nil {
			return fmt.Errorf("value for key %q: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

// writeCanonicalString writes an NFC-normalized JSON string.
// Only the quote, the backslash and control characters (U+0000-U+001F) are escaped.
func writeCanonicalString(buf *bytes.Buffer, s string) {
	s = norm.NFC.String(s)
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(buf, `\u%04x`, r)
			} else {
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
}

// compareKeysRFC8785 compares strings using UTF-16 code unit ordering.
// CRITICAL: Go's default string comparison uses UTF-8 which produces DIFFERENT order.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	for i := 0; i < len(a16) && i < len(b16); i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	return len(a16) - len(b16)
}

// formatFloat renders a float the way ECMAScript Number.prototype.toString does:
// plain decimal notation for 1e-6 <= |f| < 1e21, exponent notation otherwise.
func formatFloat(f float64) ([]byte, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("non-finite float is not representable in JSON: %v", f)
	}
	if f == 0 {
		return []byte("0"), nil
	}

	abs := math.Abs(f)
	if abs >= 1e-6 && abs < 1e21 {
		return []byte(strconv.FormatFloat(f, 'f', -1, 64)), nil
	}

	s := strconv.FormatFloat(f, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	sign := exp[0]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return []byte(mantissa + "e" + string(sign) + digits), nil
}
