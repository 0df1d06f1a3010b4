// Package document loads filter documents and replays them through the
// filter builders.
//
// A document is a named, ordered list of builder steps over a base table:
//
//	name: active_customers
//	table: customers
//	steps:
//	  - where: [status, active]
//	  - orWhere: [age, ">", 30]
//	  - whereNot: {values: {banned: true}}
//	  - where: {group: [{where: [a, 1]}, {orWhere: [b, 2]}]}
//	  - whereColumn: [updated_at, ">", created_at]
//	  - join: {table: orders, on: [[customers.id, orders.customer_id], {or: [a, "!=", b]}]}
//
// Documents are written in YAML (.yaml, .yml, .json) or CUE (.cue, with the
// document under a top-level "document" field). Positional where arguments
// are resolved with filter.Resolve, so documents follow the same call-shape
// rules as dynamic Go callers.
//
// Every error carries the step path and, when known, the source position.
package document
