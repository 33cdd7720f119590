// Package list implements an ordered, transactional list of references to
// persisted objects with scripting-array semantics.
//
// A List is a view over a storage-backed link collection (Links) owned by a
// Session. Every operation first checks that the list is still attached;
// every mutation additionally checks that the session has an active write
// transaction. Neither check acquires anything: the list only observes the
// session and refuses when the precondition does not hold.
//
// # Keys
//
// The keyed surface (Get, Set) takes property-key strings, resolved into one
// of three kinds:
//
//   - "length": the list size, read-only
//   - an integer index
//   - anything else: not an index; the list reports NotHandled so an outer
//     dispatcher may resolve the key some other way
//
// # Outcomes and errors
//
// Expected absence is never an error. Reads past the end, pop or shift on an
// empty list, and non-index keys are reported as an Outcome (Absent or
// NotHandled). Definite failures are returned as *Error with a Code.
//
// # Atomicity
//
// Guards, argument checks, index checks, and the encoding and decoding of
// every element involved run before the first structural change, so a
// failing call leaves the list untouched.
//
// # Concurrency
//
// A List is used from a single goroutine, the one that owns its session.
// The size is re-read from Links on every call and never cached.
package list
