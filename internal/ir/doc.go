// Package ir provides the filter intermediate representation (IR) for filterkit.
//
// This package contains the IR type definitions and their serializations.
// All other internal packages import ir; ir imports nothing internal.
//
// The IR is a JsonQuery: an ordered sequence of Modifiers, each a tagged
// variant discriminated by method ("where" or "join") and kind. The JSON field
// names and tag strings are a contract with downstream query compilers:
//
//	{"modifiers":[
//	  {"method":"where","kind":"simple","key":"a","value":1,"logicalOperator":"and"},
//	  {"method":"join","kind":"inner","table":"t","on":[{"from":"x","operator":"=","to":"y"}]}
//	]}
//
// Key design constraints:
//   - Sequence order of modifiers and on-clauses is semantically meaningful
//     and is never reordered, by any serialization
//   - Comparison values are the sealed Value types only
//   - Canonical JSON (RFC 8785) is used for hashing and golden snapshots
package ir
