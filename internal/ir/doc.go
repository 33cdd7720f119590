// Package ir defines the value and reference types shared by every other
// linkview package.
//
// IRValue is the opaque value that crosses the list boundary: callers hand
// IRValues to list operations and receive IRValues back. ObjectRef names a
// persisted object without carrying its data, and ObjectSchema describes the
// shape of one object type.
//
// Constraints:
//   - No float values anywhere; numbers are int64
//   - Stored payloads and traces use canonical JSON (RFC 8785)
//   - ir imports nothing internal
package ir
