// Package filter provides the fluent builders that accumulate where and join
// conditions into an ir.JsonQuery.
//
// A Builder owns an append-only sequence of modifiers. Each where-family call
// normalizes one call shape into exactly one modifier:
//
//	q, err := filter.New().
//		Where(filter.Eq("status", "active")).
//		OrWhere(filter.Cmp("age", ">", 30)).
//		WhereNot(filter.Group(func(g *filter.Builder) {
//			g.Where(filter.Eq("banned", true)).OrWhere(filter.Match(map[string]any{"role": "guest"}))
//		})).
//		Join("orders", func(j *filter.JoinConditionBuilder) {
//			j.On("customers.id", "orders.customer_id")
//		}).
//		ToJSON()
//
// # Call Shapes
//
// Shapes are explicit values (Eq, Cmp, Match, Group). Callers holding
// loosely typed arguments (documents, scripts) use Resolve, which applies a
// fixed decision table:
//
//	args                          shape
//	----                          -----
//	(string, non-empty string, v) Cmp(key, op, v)
//	(map, _, _)                   Match(map)     third argument unusable
//	(string, truthy v)            Eq(key, v)
//	(func(*Builder))              Group(fn)
//	(map) / (map, _)              Match(map)
//	anything else                 no shape
//
// An unmatched shape is a tolerated no-op on builders from New and an
// *UnmatchedShapeError on builders from NewStrict.
//
// # Errors
//
// Builders use a sticky error: the first failure (for example an
// *InconsistentGroupError from a group callback that adds a join) aborts that
// call, turns every later mutation into a no-op, and is reported by Err and
// ToJSON.
//
// # Ownership
//
// Group and join callbacks receive fresh builders whose contents are copied
// into the parent when the callback returns. Using such a builder after its
// callback has returned panics.
package filter
