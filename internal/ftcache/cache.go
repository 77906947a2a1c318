package ftcache

const initialBuckets = 8

// Cache is one typed, hash-bucketed table registered with a Manager. Its
// nodes also live in the Manager's single global LRU list and share one
// global weight budget, so eviction decisions are made by the Manager, not
// by the Cache itself (spec.md §4.6: "a cache never evicts in isolation").
type Cache struct {
	mgr      *Manager
	index    int
	class    Class
	buckets  []*Node
	numNodes int
}

// Lookup finds or creates the node for key, returning its value. When pin
// is true the node's reference count is incremented. Lookup hands back only
// the value, not the *Node that Release takes, so a pin taken here is not
// released through Release: the node stays exempt from budget eviction
// until ResetFace or cache teardown removes it.
func (c *Cache) Lookup(key any, pin bool) (any, error) {
	h := c.class.Hash(key)
	idx := int(h) % len(c.orBuckets())

	for n := c.buckets[idx]; n != nil; n = n.bucketNext {
		if c.class.Equal(n.key, key) {
			c.mgr.touchLRU(n)
			if pin {
				n.refCount++
			}
			return n.value, nil
		}
	}

	value, err := c.class.Init(key, c.mgr)
	if err != nil {
		return nil, err
	}
	weight := c.class.Weight(key, value)
	n := &Node{cacheIndex: c.index, key: key, value: value, weight: weight}
	if pin {
		n.refCount = 1
	}

	idx = int(h) % len(c.buckets)
	n.bucketNext = c.buckets[idx]
	c.buckets[idx] = n

	c.mgr.pushLRUFront(n)
	c.mgr.curWeight += weight
	c.mgr.numNodes++
	c.numNodes++
	c.maybeGrow()
	c.mgr.compressIfOverBudget(n)
	return value, nil
}

// Pin increments n's reference count, keeping it exempt from
// compressIfOverBudget eviction until a matching Release.
func (c *Cache) Pin(n *Node) { n.refCount++ }

// Release decrements n's reference count and, once it reaches zero, lets
// the node compete for eviction again on the next budget check.
func (c *Cache) Release(n *Node) {
	if n.refCount > 0 {
		n.refCount--
	}
}

// orBuckets lazily allocates the initial bucket array.
func (c *Cache) orBuckets() []*Node {
	if c.buckets == nil {
		c.buckets = make([]*Node, initialBuckets)
	}
	return c.buckets
}

// maybeGrow triples the bucket count once occupancy passes a 3x load
// factor, and maybeShrink (called from evictNode) divides it back down
// once occupancy falls under a ninth, the "explicit 3x ratio" growth rule
// spec.md §4.6 assigns to the bucket array instead of Go's built-in map
// (whose growth policy is opaque and would make the bucket-count invariant
// untestable).
func (c *Cache) maybeGrow() {
	if c.numNodes > len(c.buckets)*3 {
		c.rehash(len(c.buckets) * 3)
	}
}

func (c *Cache) maybeShrink() {
	if len(c.buckets) > initialBuckets && c.numNodes*9 < len(c.buckets) {
		n := len(c.buckets) / 3
		if n < initialBuckets {
			n = initialBuckets
		}
		c.rehash(n)
	}
}

func (c *Cache) rehash(newSize int) {
	newBuckets := make([]*Node, newSize)
	for _, head := range c.buckets {
		for n := head; n != nil; {
			next := n.bucketNext
			h := c.class.Hash(n.key)
			idx := int(h) % newSize
			n.bucketNext = newBuckets[idx]
			newBuckets[idx] = n
			n = next
		}
	}
	c.buckets = newBuckets
}

// evictNode removes n from this cache's bucket chain and the Manager's
// global LRU list, calls the class's Done hook, and adjusts both the
// cache's and the Manager's bookkeeping.
func (c *Cache) evictNode(n *Node) {
	h := c.class.Hash(n.key)
	idx := int(h) % len(c.buckets)
	if c.buckets[idx] == n {
		c.buckets[idx] = n.bucketNext
	} else {
		for p := c.buckets[idx]; p != nil; p = p.bucketNext {
			if p.bucketNext == n {
				p.bucketNext = n.bucketNext
				break
			}
		}
	}
	c.mgr.unlinkLRU(n)
	c.mgr.curWeight -= n.weight
	c.mgr.numNodes--
	c.numNodes--
	if c.class.Done != nil {
		_ = c.class.Done(n.key, n.value)
	}
	c.maybeShrink()
}

// evictByFace removes every node in this cache whose key implements
// FaceKeyed and names faceID, unconditionally (bypassing refCount): a live
// pin does not save a node from a face reset, it only adds to the
// Manager's zombie counter (spec.md §4.6 reset_face invalidation).
func (c *Cache) evictByFace(faceID FaceID) {
	for idx := range c.buckets {
		var prev *Node
		n := c.buckets[idx]
		for n != nil {
			next := n.bucketNext
			fk, ok := n.key.(FaceKeyed)
			if ok && fk.FaceIDOf() == faceID {
				if prev != nil {
					prev.bucketNext = next
				} else {
					c.buckets[idx] = next
				}
				c.mgr.unlinkLRU(n)
				c.mgr.curWeight -= n.weight
				c.mgr.numNodes--
				c.numNodes--
				if n.refCount > 0 {
					c.mgr.zombieCount++
				}
				if c.class.Done != nil {
					_ = c.class.Done(n.key, n.value)
				}
			} else {
				prev = n
			}
			n = next
		}
	}
	c.maybeShrink()
}
