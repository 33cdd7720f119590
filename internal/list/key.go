package list

import (
	"errors"
	"strconv"
)

// LengthKey is the property key that reads the list size.
const LengthKey = "length"

// KeyKind classifies a property key.
type KeyKind int

const (
	KeyNotIndex KeyKind = iota
	KeyLength
	KeyIndex
)

// Key is a resolved property key. Index is set only for KeyIndex and may be
// negative or larger than any list; callers compare it against the size.
type Key struct {
	Kind  KeyKind
	Index int64
}

// ResolveKey classifies a property-key string.
//
// The whole string must parse as a base-10 integer to be an index. Negative
// integers are indexes too, never NotIndex: reads of them are Absent and
// writes fail with INDEX_OUT_OF_RANGE. Integers that overflow int64
// saturate, so they stay indexes that are out of range for every list.
func ResolveKey(s string) Key {
	if s == LengthKey {
		return Key{Kind: KeyLength}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return Key{Kind: KeyNotIndex}
	}
	return Key{Kind: KeyIndex, Index: n}
}

// InRange reports whether the key addresses an existing element of a list
// with the given size.
func (k Key) InRange(size int) bool {
	return k.Kind == KeyIndex && k.Index >= 0 && k.Index < int64(size)
}
