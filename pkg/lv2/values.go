package lv2

import "encoding/json"

// Values is an ordered, immutable sequence of query results. The order is
// the engine's result order, stable for a given query and data snapshot.
//
// A nil *Values behaves as an empty collection.
type Values struct {
	items []string
}

// NewValues copies items into a new collection
func NewValues(items ...string) *Values {
	v := &Values{items: make([]string, len(items))}
	copy(v.items, items)
	return v
}

// Size returns the number of values
func (v *Values) Size() int {
	if v == nil {
		return 0
	}
	return len(v.items)
}

// IsEmpty reports whether the collection has no values
func (v *Values) IsEmpty() bool {
	return v.Size() == 0
}

// At returns the value at index i
func (v *Values) At(i int) (string, bool) {
	if i < 0 || i >= v.Size() {
		return "", false
	}
	return v.items[i], true
}

// First returns the first value in result order
func (v *Values) First() (string, bool) {
	return v.At(0)
}

// Slice returns a copy of the values
func (v *Values) Slice() []string {
	out := make([]string, v.Size())
	if v != nil {
		copy(out, v.items)
	}
	return out
}

// Contains reports whether s is one of the values
func (v *Values) Contains(s string) bool {
	for i := 0; i < v.Size(); i++ {
		if v.items[i] == s {
			return true
		}
	}
	return false
}

// Release drops the values. The collection is empty afterwards; releasing
// twice is harmless.
func (v *Values) Release() {
	if v == nil {
		return
	}
	v.items = nil
}

// MarshalJSON encodes the values as a JSON array
func (v *Values) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Slice())
}
