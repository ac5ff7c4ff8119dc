package lv2

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestValues(t *testing.T) {
	items := []string{"a", "b", "c"}
	v := NewValues(items...)
	items[0] = "changed"

	assert.Equal(t, 3, v.Size())
	assert.False(t, v.IsEmpty())

	first, ok := v.First()
	require.True(t, ok)
	assert.Equal(t, "a", first)

	last, ok := v.At(2)
	require.True(t, ok)
	assert.Equal(t, "c", last)

	_, ok = v.At(3)
	assert.False(t, ok)
	_, ok = v.At(-1)
	assert.False(t, ok)

	assert.True(t, v.Contains("b"))
	assert.False(t, v.Contains("changed"))

	s := v.Slice()
	s[1] = "x"
	assert.Equal(t, []string{"a", "b", "c"}, v.Slice())
}

func TestValuesRelease(t *testing.T) {
	v := NewValues("a")
	v.Release()
	v.Release()
	assert.Equal(t, 0, v.Size())
	_, ok := v.First()
	assert.False(t, ok)
}

func TestNilValues(t *testing.T) {
	var v *Values
	assert.Equal(t, 0, v.Size())
	assert.True(t, v.IsEmpty())
	assert.Empty(t, v.Slice())
	assert.False(t, v.Contains(""))
	v.Release()
}

func TestValuesJSON(t *testing.T) {
	data, err := json.Marshal(NewValues("x", "y"))
	require.NoError(t, err)
	assert.JSONEq(t, `["x","y"]`, string(data))

	data, err = json.Marshal(NewValues())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestValuesProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		items := rapid.SliceOf(rapid.String()).Draw(t, "items")
		v := NewValues(items...)

		if v.Size() != len(items) {
			t.Fatalf("size %d, want %d", v.Size(), len(items))
		}
		for i, want := range items {
			got, ok := v.At(i)
			if !ok || got != want {
				t.Fatalf("At(%d) = %q, %v; want %q", i, got, ok, want)
			}
			if !v.Contains(want) {
				t.Fatalf("Contains(%q) = false", want)
			}
		}
		first, ok := v.First()
		if ok != (len(items) > 0) || (ok && first != items[0]) {
			t.Fatalf("First() = %q, %v", first, ok)
		}
	})
}
