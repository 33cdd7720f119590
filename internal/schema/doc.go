// Package schema compiles object schemas written in CUE.
//
// Schemas live under a top-level "object" struct, one field per type.
// Scalar properties are declared with their CUE kind; link properties are
// a struct naming the target type:
//
//	object: Person: {
//		name:      string
//		nickname?: string
//		dogs:      {list: "Dog"}
//		best?:     {object: "Dog"}
//	}
//
// Optional fields (trailing ?) may be absent from a stored object.
// Float and number kinds are rejected.
package schema
