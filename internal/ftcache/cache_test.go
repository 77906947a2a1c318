package ftcache

import "testing"

func intClass(initCalls *int) Class {
	return Class{
		Hash:  func(k any) uint32 { return uint32(k.(int)) },
		Equal: func(a, b any) bool { return a.(int) == b.(int) },
		Init: func(k any, m *Manager) (any, error) {
			if initCalls != nil {
				*initCalls++
			}
			return k.(int) * 10, nil
		},
		Weight: func(k, v any) int64 { return 1 },
	}
}

func TestCacheLookupCachesOnSecondCall(t *testing.T) {
	mgr := NewManager(nil, 0, 0, 0)
	calls := 0
	c, err := mgr.RegisterCache(intClass(&calls))
	if err != nil {
		t.Fatal(err)
	}
	v, err := c.Lookup(5, false)
	if err != nil || v.(int) != 50 {
		t.Fatalf("got %v, %v", v, err)
	}
	v, err = c.Lookup(5, false)
	if err != nil || v.(int) != 50 {
		t.Fatalf("got %v, %v", v, err)
	}
	if calls != 1 {
		t.Fatalf("expected Init called once, got %d", calls)
	}
}

func TestCacheGrowsBucketsPastLoadFactor(t *testing.T) {
	mgr := NewManager(nil, 0, 0, 0)
	c, err := mgr.RegisterCache(intClass(nil))
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < initialBuckets*3+1; i++ {
		if _, err := c.Lookup(i, false); err != nil {
			t.Fatal(err)
		}
	}
	if len(c.buckets) <= initialBuckets {
		t.Fatalf("expected bucket growth, still at %d", len(c.buckets))
	}
	// Every key must still be reachable after rehash.
	for i := 0; i < initialBuckets*3+1; i++ {
		v, err := c.Lookup(i, false)
		if err != nil || v.(int) != i*10 {
			t.Fatalf("key %d lost after rehash: %v, %v", i, v, err)
		}
	}
}

func TestCacheShrinksAfterEvictions(t *testing.T) {
	mgr := NewManager(nil, 0, 0, 0)
	c, err := mgr.RegisterCache(intClass(nil))
	if err != nil {
		t.Fatal(err)
	}
	n := initialBuckets*3 + 5
	for i := 0; i < n; i++ {
		if _, err := c.Lookup(i, false); err != nil {
			t.Fatal(err)
		}
	}
	grown := len(c.buckets)
	if grown <= initialBuckets {
		t.Fatalf("expected growth first, got %d buckets", grown)
	}
	// Walk and evict all but one node via evictNode.
	var all []*Node
	for _, head := range c.buckets {
		for node := head; node != nil; node = node.bucketNext {
			all = append(all, node)
		}
	}
	for _, node := range all[1:] {
		c.evictNode(node)
	}
	if len(c.buckets) >= grown {
		t.Fatalf("expected shrink after evictions, still %d buckets (was %d)", len(c.buckets), grown)
	}
}

func TestPinAndReleaseRefCount(t *testing.T) {
	mgr := NewManager(nil, 0, 0, 0)
	c, err := mgr.RegisterCache(intClass(nil))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Lookup(1, true); err != nil {
		t.Fatal(err)
	}
	node := c.buckets[1%len(c.buckets)]
	for node != nil && !c.class.Equal(node.key, 1) {
		node = node.bucketNext
	}
	if node == nil {
		t.Fatal("node not found")
	}
	if node.RefCount() != 1 {
		t.Fatalf("expected refcount 1 after pinning Lookup, got %d", node.RefCount())
	}
	c.Pin(node)
	if node.RefCount() != 2 {
		t.Fatalf("expected refcount 2, got %d", node.RefCount())
	}
	c.Release(node)
	c.Release(node)
	if node.RefCount() != 0 {
		t.Fatalf("expected refcount 0, got %d", node.RefCount())
	}
	c.Release(node) // must not go negative
	if node.RefCount() != 0 {
		t.Fatalf("expected refcount to stay 0, got %d", node.RefCount())
	}
}
