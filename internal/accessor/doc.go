// Package accessor converts between caller values and stored objects.
//
// Accessor is the list.Codec used in production. A value passed to a list
// is resolved to an object of the list's element type:
//
//   - {"_id": id} refers to an existing object, whose type must match
//   - any other object literal creates a new object; nested list and
//     object properties are resolved the same way, recursively
//   - everything else is a MismatchError
//
// Decoding produces {"_id", "_type", <scalar properties>}; single-object
// properties decode to {"_id": id} and list properties are omitted.
package accessor
