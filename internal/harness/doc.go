// Package harness runs YAML conformance scenarios against persisted lists.
//
// Each scenario gets a fresh in-memory store with sequential object ids
// ("obj-1", "obj-2", ...), so runs are reproducible and traces can be
// compared against golden files.
//
// # Scenario Format
//
//	name: splice_replace
//	description: "splice removes two dogs and inserts two"
//	schemas: ../schemas          # or an inline CUE document under schema:
//	objects:
//	  - type: Dog
//	    value: { _id: A, name: Rex }
//	  - type: Person
//	    value: { _id: alice, name: Alice, dogs: [{ _id: A }] }
//	list:
//	  owner: alice
//	  property: dogs
//	steps:
//	  - op: splice
//	    args: [1, 2, { _id: X }]
//	    expect:
//	      outcome: handled
//	      ids: [B, C]
//	      size: 3
//	assertions:
//	  - type: list_ids
//	    ids: [A, X, D]
//
// Objects are created in one committed transaction. The steps then run in a
// new write transaction that is never committed unless a step does so.
//
// # Step Operations
//
//   - push, pop, shift, unshift, splice: list methods, dispatched through Call
//   - get, set: element access by key, including "length"
//   - keys: the list's index property names
//   - begin, commit, rollback: the write transaction
//   - create: create an object of a type
//   - delete: delete an object, unlinking it everywhere
//
// A step without an expect clause must succeed. Expected errors are given by
// code: list codes such as INDEX_OUT_OF_RANGE and DETACHED, and store codes
// NO_WRITE_TRANSACTION, TRANSACTION_ACTIVE, OBJECT_NOT_FOUND and
// OBJECT_EXISTS.
//
// # Assertion Types
//
//   - trace_contains: an op appears in the trace, optionally with an error
//   - trace_order: ops appear in the given order
//   - trace_count: an op appears exactly N times
//   - list_ids: a list holds exactly the given ids
//   - list_size: a list holds N elements
//   - detached: a list reports itself detached
//   - object_count: a type has N stored objects
//
// # Traces
//
// Every step produces one TraceEvent with the list's size and digest after
// the step. RunWithGolden marshals the trace as canonical JSON and compares
// it with testdata/golden/<name>.golden.
package harness
