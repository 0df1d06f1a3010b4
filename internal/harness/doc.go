// Package harness provides scenario testing for filter documents.
//
// A scenario pairs a filter document with the outcome it must produce: the
// IR modifiers, the compiled SQL and parameters, portability, or an error.
//
// # Scenario Format
//
// Scenarios are YAML files with the following structure:
//
//	name: precedence
//	description: "AND binds tighter than OR"
//	dialect: sqlite
//	document:
//	  table: customers
//	  steps:
//	    - where: [status, active]
//	    - orWhere: [age, ">", 30]
//	expect:
//	  modifiers:
//	    - {method: where, kind: simple, key: status, value: active, logicalOperator: and}
//	    - {method: where, kind: simple, key: age, operator: ">", value: 30, logicalOperator: or}
//	  sql: "SELECT * FROM customers WHERE (status = ? OR age > ?)"
//	  params: [active, 30]
//	  portable: true
//
// The document may instead live in its own file, referenced with
// document_file (relative to the scenario). Every expectation is optional,
// but a scenario must state at least one.
//
// # Expectations
//
//   - modifiers: the IR in wire format; compared as canonical JSON
//   - sql, params: the compiled statement for the scenario's dialect
//   - portable: the queryir.Validate verdict
//   - error: a substring of the build or compile error; the scenario fails
//     if no error occurs
//
// # Golden Files
//
// RunWithGolden snapshots the canonical IR under testdata/golden. To
// regenerate golden files, run:
//
//	go test ./internal/harness -update
package harness
