package rbtree

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func collectKeys[K, V any](t *Tree[K, V]) []K {
	out := make([]K, 0, t.Len())
	for k := range t.Keys() {
		out = append(out, k)
	}
	return out
}

func mustValidate[K, V any](t *testing.T, tree *Tree[K, V]) {
	t.Helper()
	if err := tree.Validate(); err != nil {
		t.Fatalf("invalid tree: %v", err)
	}
}

// expectViolation runs fn and fails unless it panics with a
// *PreconditionViolation.
func expectViolation(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		err, ok := r.(error)
		var pv *PreconditionViolation
		if !ok || !errors.As(err, &pv) {
			t.Fatalf("expected precondition violation, got %v", r)
		}
	}()
	fn()
}

func TestScenarios(t *testing.T) {
	t.Run("UniqueOrder", func(t *testing.T) {
		tree := NewOrdered[int, struct{}](Unique)
		for _, k := range []int{50, 20, 80, 10, 40, 70, 60, 30} {
			tree.Insert(k, struct{}{})
			mustValidate(t, tree)
		}
		want := []int{10, 20, 30, 40, 50, 60, 70, 80}
		if diff := cmp.Diff(want, collectKeys(tree)); diff != "" {
			t.Errorf("traversal mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("UniqueDuplicate", func(t *testing.T) {
		tree := NewOrdered[int, string](Unique)
		first, ok := tree.Insert(10, "a")
		if !ok {
			t.Fatal("first insert rejected")
		}
		second, ok := tree.Insert(10, "b")
		if ok {
			t.Error("second insert of equivalent key accepted")
		}
		if !second.Equal(first) {
			t.Error("rejected insert should return the existing element")
		}
		if second.Value() != "a" {
			t.Errorf("existing value overwritten: %q", second.Value())
		}
		if tree.Len() != 1 {
			t.Errorf("expected size 1, got %d", tree.Len())
		}
	})

	t.Run("MultiEraseKey", func(t *testing.T) {
		tree := NewOrdered[int, struct{}](Multi)
		for _, k := range []int{10, 20, 20, 30} {
			tree.Insert(k, struct{}{})
		}
		if c := tree.Count(20); c != 2 {
			t.Fatalf("expected count(20)=2, got %d", c)
		}
		if n := tree.EraseKey(20); n != 2 {
			t.Errorf("expected 2 removed, got %d", n)
		}
		if tree.Len() != 2 {
			t.Errorf("expected size 2, got %d", tree.Len())
		}
		mustValidate(t, tree)
	})

	t.Run("MultiEraseCursor", func(t *testing.T) {
		tree := NewOrdered[int, struct{}](Multi)
		for _, k := range []int{10, 20, 20, 30} {
			tree.Insert(k, struct{}{})
		}
		tree.Erase(tree.Find(20))
		if c := tree.Count(20); c != 1 {
			t.Errorf("expected count(20)=1, got %d", c)
		}
		if tree.Len() != 3 {
			t.Errorf("expected size 3, got %d", tree.Len())
		}
		mustValidate(t, tree)
	})

	t.Run("Bounds", func(t *testing.T) {
		tree := NewOrdered[int, struct{}](Unique)
		for _, k := range []int{10, 20, 30, 40, 50} {
			tree.Insert(k, struct{}{})
		}
		if k := tree.LowerBound(25).Key(); k != 30 {
			t.Errorf("lowerBound(25) = %d, want 30", k)
		}
		if k := tree.UpperBound(30).Key(); k != 40 {
			t.Errorf("upperBound(30) = %d, want 40", k)
		}
		if !tree.LowerBound(51).IsEnd() {
			t.Error("lowerBound past the maximum should be End")
		}
		if k := tree.LowerBound(5).Key(); k != 10 {
			t.Errorf("lowerBound(5) = %d, want 10", k)
		}
		if k := tree.Floor(35).Key(); k != 30 {
			t.Errorf("floor(35) = %d, want 30", k)
		}
		if !tree.Floor(5).IsEnd() {
			t.Error("floor below the minimum should be End")
		}
	})
}

func TestMultiStability(t *testing.T) {
	tree := NewOrdered[int, string](Multi)
	tree.Insert(10, "10")
	tree.Insert(20, "20a")
	tree.Insert(30, "30")
	tree.Insert(20, "20b")
	tree.Insert(20, "20c")

	var got []string
	first, last := tree.EqualRange(20)
	for c := range tree.Range(first, last) {
		got = append(got, c.Value())
	}
	if diff := cmp.Diff([]string{"20a", "20b", "20c"}, got); diff != "" {
		t.Errorf("class order mismatch (-want +got):\n%s", diff)
	}
	if v := tree.Find(20).Value(); v != "20a" {
		t.Errorf("find should return the first of the class, got %q", v)
	}

	// Rebalancing caused by unrelated inserts must keep the class order.
	for i := 0; i < 200; i++ {
		tree.Insert(i*3, "x")
	}
	got = got[:0]
	first, last = tree.EqualRange(20)
	for c := range tree.Range(first, last) {
		if c.Value() != "x" {
			got = append(got, c.Value())
		}
	}
	if diff := cmp.Diff([]string{"20a", "20b", "20c"}, got); diff != "" {
		t.Errorf("class order changed after rebalancing (-want +got):\n%s", diff)
	}
	mustValidate(t, tree)
}

func TestEraseIdempotent(t *testing.T) {
	for _, policy := range []Policy{Unique, Multi} {
		t.Run(policy.String(), func(t *testing.T) {
			tree := NewOrdered[int, int](policy)
			if n := tree.EraseKey(1); n != 0 {
				t.Errorf("erase on empty tree removed %d", n)
			}
			for i := 0; i < 10; i++ {
				tree.Insert(i, i)
			}
			before := collectKeys(tree)
			if n := tree.EraseKey(42); n != 0 {
				t.Errorf("erase of missing key removed %d", n)
			}
			if diff := cmp.Diff(before, collectKeys(tree)); diff != "" {
				t.Errorf("tree changed (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInsertEraseRoundTrip(t *testing.T) {
	tree := NewOrdered[int, int](Multi)
	for i := 0; i < 64; i++ {
		tree.Insert(i%8, i)
	}
	before := collectKeys(tree)
	c, ok := tree.Insert(4, -1)
	if !ok {
		t.Fatal("multi insert rejected")
	}
	tree.Erase(c)
	if diff := cmp.Diff(before, collectKeys(tree)); diff != "" {
		t.Errorf("round trip changed the tree (-want +got):\n%s", diff)
	}
	mustValidate(t, tree)
}

func TestCursorWrapAround(t *testing.T) {
	tree := NewOrdered[int, int](Unique)
	if !tree.Begin().Equal(tree.End()) {
		t.Error("begin of empty tree should be end")
	}
	if !tree.End().Next().IsEnd() || !tree.End().Prev().IsEnd() {
		t.Error("stepping from end of an empty tree should stay at end")
	}

	for _, k := range []int{3, 1, 2} {
		tree.Insert(k, k*10)
	}
	if k := tree.End().Next().Key(); k != 1 {
		t.Errorf("end.Next() = %d, want 1", k)
	}
	if k := tree.End().Prev().Key(); k != 3 {
		t.Errorf("end.Prev() = %d, want 3", k)
	}
	if !tree.RBegin().Next().IsEnd() {
		t.Error("last.Next() should be end")
	}
	if !tree.Begin().Prev().Equal(tree.REnd()) {
		t.Error("first.Prev() should be rend")
	}

	var back []int
	for c := tree.RBegin(); !c.Equal(tree.REnd()); c = c.Prev() {
		back = append(back, c.Key())
	}
	if diff := cmp.Diff([]int{3, 2, 1}, back); diff != "" {
		t.Errorf("reverse walk mismatch (-want +got):\n%s", diff)
	}
}

func TestCursorStability(t *testing.T) {
	tree := NewOrdered[int, int](Unique)
	cursors := make(map[int]Cursor[int, int])
	for i := 0; i < 500; i++ {
		c, _ := tree.Insert(i, i)
		cursors[i] = c
	}
	ptr := tree.Find(250).ValuePtr()

	// erase every node with two children first, the case that moves nodes
	for i := 0; i < 500; i += 2 {
		if i == 250 {
			continue
		}
		tree.Erase(cursors[i])
		delete(cursors, i)
	}
	mustValidate(t, tree)

	for k, c := range cursors {
		if !c.Valid() {
			t.Fatalf("cursor to %d invalidated", k)
		}
		if c.Key() != k || c.Value() != k {
			t.Fatalf("cursor to %d now reads %d=%d", k, c.Key(), c.Value())
		}
	}
	*ptr = -250
	if v := tree.Find(250).Value(); v != -250 {
		t.Errorf("value pointer detached, got %d", v)
	}
}

func TestPreconditionViolations(t *testing.T) {
	tree := NewOrdered[int, int](Unique)
	c, _ := tree.Insert(1, 1)
	tree.Insert(2, 2)

	expectViolation(t, func() { tree.End().Key() })
	expectViolation(t, func() { tree.Erase(tree.End()) })
	expectViolation(t, func() { Cursor[int, int]{}.Next() })

	tree.Erase(c)
	if c.Valid() {
		t.Error("erased cursor still reports valid")
	}
	expectViolation(t, func() { c.Value() })
	expectViolation(t, func() { c.Next() })
	expectViolation(t, func() { tree.Erase(c) })

	other := NewOrdered[int, int](Unique)
	oc, _ := other.Insert(5, 5)
	expectViolation(t, func() { tree.Erase(oc) })
	expectViolation(t, func() { New[int, int](nil, Unique) })
}

func TestEraseRange(t *testing.T) {
	tree := NewOrdered[int, int](Multi)
	for i := 0; i < 20; i++ {
		tree.Insert(i/2, i)
	}
	last := tree.EraseRange(tree.LowerBound(3), tree.LowerBound(7))
	if last.Key() != 7 {
		t.Errorf("expected returned cursor at 7, got %d", last.Key())
	}
	want := []int{0, 0, 1, 1, 2, 2, 7, 7, 8, 8, 9, 9}
	if diff := cmp.Diff(want, collectKeys(tree)); diff != "" {
		t.Errorf("erase range mismatch (-want +got):\n%s", diff)
	}
	mustValidate(t, tree)

	tree.EraseRange(tree.Begin(), tree.End())
	if !tree.Empty() {
		t.Errorf("full range erase left %d elements", tree.Len())
	}
}

func TestClearSwapClone(t *testing.T) {
	a := NewOrdered[string, int](Unique)
	b := NewOrdered[string, int](Unique)
	for i, k := range []string{"d", "b", "a", "c"} {
		a.Insert(k, i)
	}
	b.Insert("z", 0)

	clone := a.Clone()
	mustValidate(t, clone)
	if clone.Height() != a.Height() || clone.BlackHeight() != a.BlackHeight() {
		t.Error("clone changed the tree shape")
	}

	a.Swap(b)
	if diff := cmp.Diff([]string{"z"}, collectKeys(a)); diff != "" {
		t.Errorf("swap mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b", "c", "d"}, collectKeys(b)); diff != "" {
		t.Errorf("swap mismatch (-want +got):\n%s", diff)
	}

	c := b.Find("a")
	b.Clear()
	if !b.Empty() || b.Len() != 0 {
		t.Error("clear left elements behind")
	}
	if c.Valid() {
		t.Error("cursor survived clear")
	}
	if clone.Len() != 4 {
		t.Error("clear affected the clone")
	}
}

func TestIterators(t *testing.T) {
	tree := NewOrdered[int, int](Unique)
	for i := 1; i <= 10; i++ {
		tree.Insert(i, i*i)
	}

	var got []int
	for k := range tree.Ascend(3, 7) {
		got = append(got, k)
	}
	if diff := cmp.Diff([]int{3, 4, 5, 6}, got); diff != "" {
		t.Errorf("ascend mismatch (-want +got):\n%s", diff)
	}

	got = got[:0]
	for k := range tree.Descend(4) {
		got = append(got, k)
	}
	if diff := cmp.Diff([]int{4, 3, 2, 1}, got); diff != "" {
		t.Errorf("descend mismatch (-want +got):\n%s", diff)
	}

	got = got[:0]
	for k := range tree.Ascend(7, 3) {
		got = append(got, k)
	}
	if len(got) != 0 {
		t.Errorf("inverted range yielded %v", got)
	}

	// erasing the yielded element is allowed
	for k := range tree.All() {
		if k%2 == 0 {
			tree.EraseKey(k)
		}
	}
	if diff := cmp.Diff([]int{1, 3, 5, 7, 9}, collectKeys(tree)); diff != "" {
		t.Errorf("erase during iteration (-want +got):\n%s", diff)
	}

	got = got[:0]
	for k, v := range tree.Backward() {
		if v != k*k {
			t.Errorf("value for %d is %d", k, v)
		}
		got = append(got, k)
		if k == 5 {
			break
		}
	}
	if diff := cmp.Diff([]int{9, 7, 5}, got); diff != "" {
		t.Errorf("backward mismatch (-want +got):\n%s", diff)
	}

	if k, _, ok := tree.Min(); !ok || k != 1 {
		t.Errorf("min = %d, %v", k, ok)
	}
	if k, _, ok := tree.Max(); !ok || k != 9 {
		t.Errorf("max = %d, %v", k, ok)
	}
}

func TestCustomComparator(t *testing.T) {
	// descending order with case folding to exercise equivalence
	less := func(a, b string) bool {
		return lower(a) > lower(b)
	}
	tree := New[string, int](less, Multi)
	for i, k := range []string{"b", "A", "a", "c", "B"} {
		tree.Insert(k, i)
	}
	want := []string{"c", "b", "B", "A", "a"}
	if diff := cmp.Diff(want, collectKeys(tree)); diff != "" {
		t.Errorf("custom order mismatch (-want +got):\n%s", diff)
	}
	if n := tree.Count("A"); n != 2 {
		t.Errorf("count(A) = %d, want 2", n)
	}
	mustValidate(t, tree)
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}

func TestValidateDetectsCorruption(t *testing.T) {
	tree := NewOrdered[int, int](Unique)
	for i := 0; i < 16; i++ {
		tree.Insert(i, i)
	}
	mustValidate(t, tree)

	tree.root.color = red
	if tree.Validate() == nil {
		t.Error("red root not reported")
	}
	tree.root.color = black

	tree.size++
	if tree.Validate() == nil {
		t.Error("size mismatch not reported")
	}
	tree.size--

	tree.root.left.key, tree.root.right.key = tree.root.right.key, tree.root.left.key
	if tree.Validate() == nil {
		t.Error("order violation not reported")
	}
}
