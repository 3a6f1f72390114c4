package lexval

import "testing"

func TestCollectionPreservesInsertionOrder(t *testing.T) {
	c := NewCollection()
	c.Set("b", Int(2))
	c.Set("a", Int(1))
	c.Set("c", Int(3))

	keys := c.Keys()
	want := []string{"b", "a", "c"}
	for i, k := range want {
		if keys[i] != k {
			t.Fatalf("key order mismatch at %d: got %s want %s", i, keys[i], k)
		}
	}
}

func TestCollectionExtendToCreatesContiguousDefaults(t *testing.T) {
	c := NewCollection()
	c.Set("arr.0", Int(10))
	oldMax := c.Len()

	c.ExtendTo("arr", 4, Zero(Integer))

	if c.Len()-oldMax != 4 {
		t.Fatalf("expected 4 new entries, got %d", c.Len()-oldMax)
	}
	for i := 1; i <= 4; i++ {
		key := "arr." + string(rune('0'+i))
		if _, ok := c.Get(key); !ok {
			t.Fatalf("missing contiguous key %s", key)
		}
	}
}

func TestCollectionCloneIsDeep(t *testing.T) {
	inner := NewCollection()
	inner.Set("x", Int(1))
	c := NewCollection()
	c.Set("inner", Coll(inner))

	clone := c.Clone()
	innerClone, _ := clone.Get("inner")
	innerClone.Col.Set("x", Int(99))

	orig, _ := c.Get("inner")
	v, _ := orig.Col.Get("x")
	if v.I != 1 {
		t.Fatalf("clone mutation leaked into original: %+v", v)
	}
}
