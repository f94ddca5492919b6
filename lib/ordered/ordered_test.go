package ordered

import (
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSet(t *testing.T) {
	s := NewOrderedSet[int]()
	for _, k := range []int{5, 1, 4, 1, 3} {
		s.Insert(k)
	}
	require.Equal(t, 4, s.Len())
	require.True(t, s.Contains(4))
	require.False(t, s.Contains(2))
	require.False(t, s.Insert(5), "duplicate insert must be rejected")

	require.Equal(t, []int{1, 3, 4, 5}, slices.Collect(s.All()))
	require.Equal(t, []int{3, 4}, slices.Collect(s.Range(2, 5)))

	minK, ok := s.Min()
	require.True(t, ok)
	require.Equal(t, 1, minK)
	maxK, ok := s.Max()
	require.True(t, ok)
	require.Equal(t, 5, maxK)

	require.True(t, s.Erase(3))
	require.False(t, s.Erase(3))
	require.NoError(t, s.Tree().Validate())

	s.Clear()
	_, ok = s.Min()
	require.False(t, ok)
}

func TestMultiSet(t *testing.T) {
	s := NewMultiSet[string](func(a, b string) bool {
		return strings.ToLower(a) < strings.ToLower(b)
	})
	for _, k := range []string{"b", "a", "B", "A", "c"} {
		s.Insert(k)
	}
	require.Equal(t, 5, s.Len())
	require.Equal(t, 2, s.Count("b"))
	require.Equal(t, []string{"a", "A", "b", "B", "c"}, slices.Collect(s.All()))

	require.True(t, s.EraseOne("B"))
	require.Equal(t, []string{"a", "A", "B", "c"}, slices.Collect(s.All()))
	require.Equal(t, 2, s.EraseAll("a"))
	require.False(t, s.EraseOne("a"))
	require.Equal(t, 2, s.Len())
	require.NoError(t, s.Tree().Validate())
}

func TestMap(t *testing.T) {
	m := NewOrderedMap[string, int]()
	require.True(t, m.Set("b", 2))
	require.True(t, m.Set("a", 1))
	require.False(t, m.Set("b", 20), "set on existing key assigns")

	v, ok := m.Get("b")
	require.True(t, ok)
	require.Equal(t, 20, v)

	v, added := m.SetIfAbsent("b", 99)
	require.False(t, added)
	require.Equal(t, 20, v)
	v, added = m.SetIfAbsent("c", 3)
	require.True(t, added)
	require.Equal(t, 3, v)

	p := m.GetOrInsert("d")
	require.Equal(t, 0, *p)
	*p += 4
	*m.GetOrInsert("d") += 1
	v, _ = m.Get("d")
	require.Equal(t, 5, v)

	k, v, ok := m.Ceil("bb")
	require.True(t, ok)
	require.Equal(t, "c", k)
	require.Equal(t, 3, v)
	k, _, ok = m.Floor("bb")
	require.True(t, ok)
	require.Equal(t, "b", k)
	_, _, ok = m.Ceil("z")
	require.False(t, ok)

	var keys []string
	for k := range m.Backward() {
		keys = append(keys, k)
	}
	require.Equal(t, []string{"d", "c", "b", "a"}, keys)

	keys = keys[:0]
	for k := range m.Range("b", "d") {
		keys = append(keys, k)
	}
	require.Equal(t, []string{"b", "c"}, keys)

	require.True(t, m.Delete("a"))
	require.False(t, m.Delete("a"))
	require.False(t, m.Has("a"))
	require.Equal(t, 3, m.Len())
	require.NoError(t, m.Tree().Validate())
}

func TestMultiMap(t *testing.T) {
	m := NewOrderedMultiMap[uint64, string]()
	m.Insert(30, "x")
	c := m.Insert(10, "first")
	m.Insert(10, "second")
	m.Insert(20, "y")
	m.Insert(10, "third")

	require.Equal(t, []string{"first", "second", "third"}, m.Values(10))
	require.Equal(t, 3, m.Count(10))
	require.Nil(t, m.Values(15))

	m.EraseAt(c)
	require.Equal(t, []string{"second", "third"}, m.Values(10))

	k, v, ok := m.PeekMin()
	require.True(t, ok)
	require.Equal(t, uint64(10), k)
	require.Equal(t, "second", v)

	var popped []string
	for m.Len() > 0 {
		_, v, _ := m.PopMin()
		popped = append(popped, v)
	}
	require.Equal(t, []string{"second", "third", "y", "x"}, popped)
	_, _, ok = m.PopMin()
	require.False(t, ok)

	m.Insert(1, "a")
	m.Insert(1, "b")
	require.Equal(t, 2, m.DeleteAll(1))
	require.Zero(t, m.Len())
}
