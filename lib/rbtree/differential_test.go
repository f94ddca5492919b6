package rbtree

import (
	"math/rand"
	"testing"

	"github.com/google/btree"
	"github.com/google/go-cmp/cmp"
)

// item is the oracle's element: seq breaks ties in insertion order, which
// is exactly the order a Multi tree keeps inside a class.
type item struct {
	Key int
	Seq int
}

func itemLess(a, b item) bool {
	if a.Key != b.Key {
		return a.Key < b.Key
	}
	return a.Seq < b.Seq
}

func oracleItems(o *btree.BTreeG[item]) []item {
	out := make([]item, 0, o.Len())
	o.Ascend(func(it item) bool {
		out = append(out, it)
		return true
	})
	return out
}

func treeItems(t *Tree[int, int]) []item {
	out := make([]item, 0, t.Len())
	for k, v := range t.All() {
		out = append(out, item{Key: k, Seq: v})
	}
	return out
}

// oracleClass returns the items with the given key in order.
func oracleClass(o *btree.BTreeG[item], key int) []item {
	var out []item
	o.AscendRange(item{Key: key, Seq: -1}, item{Key: key + 1, Seq: -1}, func(it item) bool {
		out = append(out, it)
		return true
	})
	return out
}

func TestDifferentialAgainstBTree(t *testing.T) {
	for _, policy := range []Policy{Unique, Multi} {
		t.Run(policy.String(), func(t *testing.T) {
			rng := rand.New(rand.NewSource(42))
			tree := NewOrdered[int, int](policy)
			oracle := btree.NewG[item](8, itemLess)
			keySpace := 300

			for step := 0; step < 20000; step++ {
				key := rng.Intn(keySpace)
				switch op := rng.Intn(10); {
				case op < 5:
					_, inserted := tree.Insert(key, step)
					exists := len(oracleClass(oracle, key)) > 0
					if policy == Unique && inserted == exists {
						t.Fatalf("step %d: insert(%d) inserted=%v, oracle has key=%v", step, key, inserted, exists)
					}
					if inserted {
						oracle.ReplaceOrInsert(item{Key: key, Seq: step})
					}
				case op < 7:
					class := oracleClass(oracle, key)
					if n := tree.EraseKey(key); n != len(class) {
						t.Fatalf("step %d: eraseKey(%d) removed %d, want %d", step, key, n, len(class))
					}
					for _, it := range class {
						oracle.Delete(it)
					}
				case op < 9:
					c := tree.Find(key)
					class := oracleClass(oracle, key)
					if c.IsEnd() != (len(class) == 0) {
						t.Fatalf("step %d: find(%d) end=%v, oracle class size %d", step, key, c.IsEnd(), len(class))
					}
					if c.IsEnd() {
						continue
					}
					if c.Value() != class[0].Seq {
						t.Fatalf("step %d: find(%d) returned seq %d, want first %d", step, key, c.Value(), class[0].Seq)
					}
					tree.Erase(c)
					oracle.Delete(class[0])
				default:
					lb := tree.LowerBound(key)
					var want *item
					oracle.AscendGreaterOrEqual(item{Key: key, Seq: -1}, func(it item) bool {
						want = &it
						return false
					})
					if lb.IsEnd() != (want == nil) || (want != nil && lb.Value() != want.Seq) {
						t.Fatalf("step %d: lowerBound(%d) mismatch", step, key)
					}
				}

				if tree.Len() != oracle.Len() {
					t.Fatalf("step %d: size %d, oracle %d", step, tree.Len(), oracle.Len())
				}
				if step%500 == 0 {
					mustValidate(t, tree)
					if diff := cmp.Diff(oracleItems(oracle), treeItems(tree)); diff != "" {
						t.Fatalf("step %d: contents diverged (-oracle +tree):\n%s", step, diff)
					}
				}
			}
			mustValidate(t, tree)
			if diff := cmp.Diff(oracleItems(oracle), treeItems(tree)); diff != "" {
				t.Fatalf("contents diverged (-oracle +tree):\n%s", diff)
			}
		})
	}
}

func TestHeightIsLogarithmic(t *testing.T) {
	tree := NewOrdered[int, struct{}](Unique)
	const n = 1 << 14
	// sorted input is the worst case for an unbalanced tree
	for i := 0; i < n; i++ {
		tree.Insert(i, struct{}{})
	}
	// h <= 2*log2(n+1)
	if h := tree.Height(); h > 2*15 {
		t.Errorf("height %d exceeds the red-black bound for %d nodes", h, n)
	}
	for i := 0; i < n; i += 3 {
		tree.EraseKey(i)
	}
	mustValidate(t, tree)
	if h := tree.Height(); h > 2*15 {
		t.Errorf("height %d exceeds the red-black bound after erase", h)
	}
}

func BenchmarkInsert(b *testing.B) {
	tree := NewOrdered[int, int](Unique)
	rng := rand.New(rand.NewSource(1))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tree.Insert(rng.Int(), i)
	}
}

func BenchmarkLowerBound(b *testing.B) {
	tree := NewOrdered[int, int](Unique)
	for i := 0; i < 1<<16; i++ {
		tree.Insert(i*2, i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tree.LowerBound(i & (1<<17 - 1))
	}
}
