package ftcache

import (
	"errors"
	"testing"

	"github.com/foxglyph/ftcore/internal/ftcore/face"
)

func TestRegisterCacheEnforcesMaxCaches(t *testing.T) {
	mgr := NewManager(nil, 0, 0, 0)
	for i := 0; i < MaxCaches; i++ {
		if _, err := mgr.RegisterCache(Class{
			Hash:   func(k any) uint32 { return 0 },
			Equal:  func(a, b any) bool { return a == b },
			Init:   func(k any, m *Manager) (any, error) { return k, nil },
			Weight: func(k, v any) int64 { return 1 },
		}); err != nil {
			t.Fatalf("register %d: %v", i, err)
		}
	}
	if _, err := mgr.RegisterCache(Class{
		Hash:   func(k any) uint32 { return 0 },
		Equal:  func(a, b any) bool { return a == b },
		Init:   func(k any, m *Manager) (any, error) { return k, nil },
		Weight: func(k, v any) int64 { return 1 },
	}); err == nil {
		t.Fatal("expected error registering beyond MaxCaches")
	}
}

func TestLookupFaceEvictsOldestOverMaxFaces(t *testing.T) {
	opened := map[string]int{}
	closed := map[string]int{}
	requester := func(id FaceID) (*face.Face, error) {
		name := id.(string)
		opened[name]++
		if name == "bad" {
			return nil, errors.New("boom")
		}
		return &face.Face{}, nil
	}
	mgr := NewManager(requester, 2, 0, 0)

	if _, err := mgr.LookupFace("a"); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.LookupFace("b"); err != nil {
		t.Fatal(err)
	}
	// Touch "a" again so it is the most-recently-used, then add "c": "b"
	// should be the one evicted.
	if _, err := mgr.LookupFace("a"); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.LookupFace("c"); err != nil {
		t.Fatal(err)
	}
	if opened["a"] != 1 || opened["b"] != 1 || opened["c"] != 1 {
		t.Fatalf("unexpected open counts: %v", opened)
	}
	// Looking up "b" again should reopen it (it was evicted).
	if _, err := mgr.LookupFace("b"); err != nil {
		t.Fatal(err)
	}
	if opened["b"] != 2 {
		t.Fatalf("expected b to be reopened, got opens=%d", opened["b"])
	}
	_ = closed
}

func TestLookupFacePropagatesRequesterError(t *testing.T) {
	requester := func(id FaceID) (*face.Face, error) { return nil, errors.New("no such face") }
	mgr := NewManager(requester, 0, 0, 0)
	if _, err := mgr.LookupFace("missing"); err == nil {
		t.Fatal("expected error")
	}
}

func TestResetFaceSweepsRegisteredCaches(t *testing.T) {
	requester := func(id FaceID) (*face.Face, error) { return &face.Face{}, nil }
	mgr := NewManager(requester, 0, 0, 0)

	done := 0
	c, err := mgr.RegisterCache(Class{
		Hash:  func(k any) uint32 { return hashFaceID(k.(keyedKey).face) },
		Equal: func(a, b any) bool { return a.(keyedKey) == b.(keyedKey) },
		Init:  func(k any, m *Manager) (any, error) { return k, nil },
		Done:  func(k, v any) error { done++; return nil },
		Weight: func(k, v any) int64 {
			return 1
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	kfa := keyedKey{face: "fa"}
	_, _ = c.Lookup(kfa, false)
	kfb := keyedKey{face: "fb"}
	_, _ = c.Lookup(kfb, false)

	if _, err := mgr.LookupFace("fa"); err != nil {
		t.Fatal(err)
	}
	mgr.ResetFace("fa")

	if c.numNodes != 1 {
		t.Fatalf("expected 1 node remaining after ResetFace, got %d", c.numNodes)
	}
	if done != 1 {
		t.Fatalf("expected Done called once, got %d", done)
	}
}

// keyedKey is a minimal FaceKeyed test key.
type keyedKey struct{ face FaceID }

func (k keyedKey) FaceIDOf() FaceID { return k.face }

func TestCompressIfOverBudgetEvictsUnpinnedOldest(t *testing.T) {
	mgr := NewManager(nil, 0, 0, 2)
	var doneKeys []int
	c, err := mgr.RegisterCache(Class{
		Hash:  func(k any) uint32 { return uint32(k.(int)) },
		Equal: func(a, b any) bool { return a.(int) == b.(int) },
		Init:  func(k any, m *Manager) (any, error) { return k, nil },
		Done:  func(k, v any) error { doneKeys = append(doneKeys, k.(int)); return nil },
		Weight: func(k, v any) int64 {
			return 1
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	_, _ = c.Lookup(1, false)
	_, _ = c.Lookup(2, false)
	_, _ = c.Lookup(3, false)

	if mgr.curWeight > mgr.maxWeight {
		t.Fatalf("weight budget exceeded: %d > %d", mgr.curWeight, mgr.maxWeight)
	}
	if len(doneKeys) == 0 || doneKeys[0] != 1 {
		t.Fatalf("expected node 1 (oldest) evicted first, got %v", doneKeys)
	}
}

func TestPinProtectsFromBudgetEviction(t *testing.T) {
	mgr := NewManager(nil, 0, 0, 1)
	var doneKeys []int
	c, err := mgr.RegisterCache(Class{
		Hash:   func(k any) uint32 { return uint32(k.(int)) },
		Equal:  func(a, b any) bool { return a.(int) == b.(int) },
		Init:   func(k any, m *Manager) (any, error) { return k, nil },
		Done:   func(k, v any) error { doneKeys = append(doneKeys, k.(int)); return nil },
		Weight: func(k, v any) int64 { return 1 },
	})
	if err != nil {
		t.Fatal(err)
	}
	_, _ = c.Lookup(1, true) // pinned, must survive
	_, _ = c.Lookup(2, false)
	for _, k := range doneKeys {
		if k == 1 {
			t.Fatal("pinned node 1 was evicted")
		}
	}
}
