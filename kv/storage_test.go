package kv

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStorage(t *testing.T) {
	getHeaders := func() *Storage {
		return New().
			Add("Foo", "bar").
			Add("Hello", "World").
			Add("Lorem", "ipsum").
			Add("hello", "Pavlo")
	}

	t.Run("get", func(t *testing.T) {
		kv := getHeaders()
		value, found := kv.Get("HELLO")
		require.True(t, found)
		require.Equal(t, "World", value)

		_, found = kv.Get("missing")
		require.False(t, found)
		require.Equal(t, "default", kv.ValueOr("missing", "default"))
		require.Empty(t, kv.Value("missing"))
	})

	t.Run("duplicates are kept in order", func(t *testing.T) {
		kv := getHeaders()
		require.Equal(t, []string{"World", "Pavlo"}, slices.Collect(kv.Values("hElLo")))
		require.Equal(t, 4, kv.Len())
	})

	t.Run("keys", func(t *testing.T) {
		kv := getHeaders()
		require.Equal(t, []string{"Foo", "Hello", "Lorem"}, slices.Collect(kv.Keys()))
	})

	t.Run("pairs", func(t *testing.T) {
		kv := getHeaders()
		var pairs []Pair
		for key, value := range kv.Pairs() {
			pairs = append(pairs, Pair{key, value})
		}

		require.Equal(t, kv.Expose(), pairs)
	})

	t.Run("long keys", func(t *testing.T) {
		key := "X-A-Very-Long-Header-Name-Which-Exceeds-The-Scratch-Buffer"
		kv := New().Add(key, "1")
		require.True(t, kv.Has("x-a-very-long-header-name-which-exceeds-the-scratch-buffer"))
		require.False(t, kv.Has("x-a-very-long-header-name-which-exceeds-the-scratch-buffe"))
	})

	t.Run("clone", func(t *testing.T) {
		kv := getHeaders()
		clone := kv.Clone()
		kv.Clear()
		require.True(t, kv.Empty())
		require.Equal(t, 4, clone.Len())
		require.Equal(t, "bar", clone.Value("foo"))
	})

	t.Run("clear", func(t *testing.T) {
		kv := getHeaders().Clear()
		require.True(t, kv.Empty())
		require.False(t, kv.Has("foo"))
		kv.Add("foo", "baz")
		require.Equal(t, "baz", kv.Value("FOO"))
	})

	t.Run("from map", func(t *testing.T) {
		kv := NewFromMap(map[string][]string{
			"Accept": {"one", "two"},
		})
		require.Equal(t, []string{"one", "two"}, slices.Collect(kv.Values("accept")))
	})
}
