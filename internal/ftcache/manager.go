// Package ftcache implements the bounded, reference-counted cache manager
// of spec.md §4.6: a face LRU, a size LRU, up to MaxCaches registered typed
// caches sharing one global weight budget and one global LRU list, and
// reset_face invalidation that sweeps every registered cache.
//
// The bucket/node/weight eviction machinery here is new code, written in
// the teacher's idiom (typed structs, explicit Init/Done lifecycle
// methods, no generics-heavy abstraction beyond what internal/array and
// internal/basics already use) — nothing in the example pack implements a
// bounded, weighted LRU, so this is not attributed to a teacher source it
// doesn't have; see DESIGN.md. The glyph-payload storage underneath it
// (internal/array.BlockAllocator-backed byte pages in BitmapSetCache)
// mirrors the teacher's FmanCachedGlyphs node-array allocation idiom.
package ftcache

import (
	"github.com/foxglyph/ftcore/internal/ftcore/face"
	"github.com/foxglyph/ftcore/internal/ftcore/ferrors"
)

// Defaults mirror original_source/ftcmanag.h's FTC_*_DEFAULT constants.
const (
	MaxFacesDefault  = 2
	MaxSizesDefault  = 4
	MaxWeightDefault = 100000
	MaxCaches        = 16
)

// FaceID names a face the Manager can (re)open on demand; any comparable
// value works (a file path, a struct key), matching spec.md §4.6's
// "opaque face identifier" requirement.
type FaceID any

// FaceRequester opens (or reopens) the face named by id. The Manager calls
// it at most once per id while the face is resident; it evicts the
// least-recently-used open face first when MaxFaces is exceeded.
type FaceRequester func(id FaceID) (*face.Face, error)

// SizeID names one pixel size of one face.
type SizeID struct {
	FaceID        FaceID
	Width, Height uint
}

// FaceKeyed lets a cache key declare which face it belongs to, so
// ResetFace can find and evict it without the Manager knowing the key's
// concrete shape (spec.md §4.6: "reset_face invalidates every node across
// every registered cache whose key names that face").
type FaceKeyed interface {
	FaceIDOf() FaceID
}

// Class is the per-cache-type contract a registered Cache dispatches to.
// Hash/Equal key the bucket table; Init/Done produce and release a node's
// value; Weight charges the global budget.
type Class struct {
	Init   func(key any, mgr *Manager) (value any, err error)
	Done   func(key, value any) error
	Weight func(key, value any) int64
	Hash   func(key any) uint32
	Equal  func(a, b any) bool
}

// Node is one cached (key, value) pair, living simultaneously in its
// Cache's hash bucket chain and the Manager's global LRU list.
type Node struct {
	cacheIndex int
	key        any
	value      any
	weight     int64
	refCount   int32

	bucketNext *Node
	lruPrev    *Node
	lruNext    *Node
}

// RefCount reports how many outstanding Lookup pins hold this node; a node
// with RefCount()==0 is eligible for eviction.
func (n *Node) RefCount() int32 { return n.refCount }

type faceEntry struct {
	id       FaceID
	face     *face.Face
	lruPrev  *faceEntry
	lruNext  *faceEntry
}

type sizeEntry struct {
	id      SizeID
	size    *face.Size
	lruPrev *sizeEntry
	lruNext *sizeEntry
}

// Manager is the cache manager of spec.md §4.6.
type Manager struct {
	requester FaceRequester
	maxFaces  int
	maxSizes  int
	maxWeight int64

	faces       map[any]*faceEntry
	faceLRUHead *faceEntry
	faceLRUTail *faceEntry
	numFaces    int

	sizes       map[SizeID]*sizeEntry
	sizeLRUHead *sizeEntry
	sizeLRUTail *sizeEntry
	numSizes    int

	caches    [MaxCaches]*Cache
	numCaches int

	curWeight   int64
	numNodes    int
	lruHead     *Node
	lruTail     *Node
	zombieCount int
}

// NewManager builds a Manager; zero maxFaces/maxSizes/maxWeight select the
// original_source/ftcmanag.h defaults.
func NewManager(requester FaceRequester, maxFaces, maxSizes int, maxWeight int64) *Manager {
	if maxFaces <= 0 {
		maxFaces = MaxFacesDefault
	}
	if maxSizes <= 0 {
		maxSizes = MaxSizesDefault
	}
	if maxWeight <= 0 {
		maxWeight = MaxWeightDefault
	}
	return &Manager{
		requester: requester,
		maxFaces:  maxFaces,
		maxSizes:  maxSizes,
		maxWeight: maxWeight,
		faces:     make(map[any]*faceEntry),
		sizes:     make(map[SizeID]*sizeEntry),
	}
}

// RegisterCache installs a new typed cache under class and returns it. At
// most MaxCaches caches may be registered, matching FTC_MAX_CACHES.
func (m *Manager) RegisterCache(class Class) (*Cache, error) {
	if m.numCaches >= MaxCaches {
		return nil, ferrors.New("ftcache", ferrors.CodeTooManyCaches)
	}
	c := &Cache{mgr: m, index: m.numCaches, class: class}
	m.caches[m.numCaches] = c
	m.numCaches++
	return c, nil
}

// LookupFace resolves id to a live *face.Face, opening it via the
// Manager's FaceRequester on a miss and evicting the LRU face if the
// MaxFaces budget would be exceeded (spec.md §4.6 face LRU).
func (m *Manager) LookupFace(id FaceID) (*face.Face, error) {
	if e, ok := m.faces[id]; ok {
		m.touchFaceLRU(e)
		return e.face, nil
	}
	f, err := m.requester(id)
	if err != nil {
		return nil, err
	}
	if m.numFaces >= m.maxFaces {
		m.evictOldestFace()
	}
	e := &faceEntry{id: id, face: f}
	m.faces[id] = e
	m.pushFaceLRUFront(e)
	m.numFaces++
	return f, nil
}

// LookupSize resolves (faceID, width, height) to a live *face.Size,
// looking up or opening the face first and calling SetPixelSizes on a
// miss, evicting the LRU size if MaxSizes would be exceeded (spec.md §4.6
// size LRU).
func (m *Manager) LookupSize(faceID FaceID, width, height uint) (*face.Size, error) {
	sid := SizeID{FaceID: faceID, Width: width, Height: height}
	if e, ok := m.sizes[sid]; ok {
		m.touchSizeLRU(e)
		return e.size, nil
	}
	f, err := m.LookupFace(faceID)
	if err != nil {
		return nil, err
	}
	if m.numSizes >= m.maxSizes {
		m.evictOldestSize()
	}
	if err := f.SetPixelSizes(width, height); err != nil {
		return nil, err
	}
	sz := f.CurrentSize()
	e := &sizeEntry{id: sid, size: sz}
	m.sizes[sid] = e
	m.pushSizeLRUFront(e)
	m.numSizes++
	return sz, nil
}

// ResetFace closes face id and evicts every node, in every registered
// cache, whose key reports that FaceID via FaceKeyed (spec.md §4.6
// "reset_face invalidation"). Nodes with an outstanding pin (RefCount>0)
// are still removed from their cache and bumped to the zombie count
// instead of retained: Go's GC reclaims the node once the last pin drops,
// so there is no retained zombie list to walk later, only the counter.
func (m *Manager) ResetFace(id FaceID) {
	for i := 0; i < m.numCaches; i++ {
		c := m.caches[i]
		if c == nil {
			continue
		}
		c.evictByFace(id)
	}
	if fe, ok := m.faces[id]; ok {
		m.removeFaceLRU(fe)
		delete(m.faces, id)
		m.numFaces--
		fe.face.Done()
	}
	for sid, se := range m.sizes {
		if sid.FaceID == id {
			m.removeSizeLRU(se)
			delete(m.sizes, sid)
			m.numSizes--
		}
	}
}

// ZombieCount reports nodes evicted while pinned (refCount>0) by a
// ResetFace call; it is a diagnostic counter, not a retained list (see
// ResetFace's doc comment).
func (m *Manager) ZombieCount() int { return m.zombieCount }

// compressIfOverBudget evicts from the global LRU tail until curWeight is
// back at or under maxWeight, never evicting protect (the node the caller
// just looked up, which must survive its own insertion) or any pinned
// node, per spec.md §4.6 "compress_if_over_budget".
func (m *Manager) compressIfOverBudget(protect *Node) {
	n := m.lruTail
	for m.curWeight > m.maxWeight && n != nil {
		prev := n.lruPrev
		if n != protect && n.refCount == 0 {
			c := m.caches[n.cacheIndex]
			c.evictNode(n)
		}
		n = prev
	}
}

func (m *Manager) adjustWeight(n *Node, newWeight int64) {
	m.curWeight += newWeight - n.weight
	n.weight = newWeight
}

// -- global LRU list --

func (m *Manager) touchLRU(n *Node) {
	if m.lruHead == n {
		return
	}
	m.unlinkLRU(n)
	m.pushLRUFront(n)
}

func (m *Manager) pushLRUFront(n *Node) {
	n.lruPrev = nil
	n.lruNext = m.lruHead
	if m.lruHead != nil {
		m.lruHead.lruPrev = n
	}
	m.lruHead = n
	if m.lruTail == nil {
		m.lruTail = n
	}
}

func (m *Manager) unlinkLRU(n *Node) {
	if n.lruPrev != nil {
		n.lruPrev.lruNext = n.lruNext
	} else if m.lruHead == n {
		m.lruHead = n.lruNext
	}
	if n.lruNext != nil {
		n.lruNext.lruPrev = n.lruPrev
	} else if m.lruTail == n {
		m.lruTail = n.lruPrev
	}
	n.lruPrev, n.lruNext = nil, nil
}

// -- face LRU --

func (m *Manager) touchFaceLRU(e *faceEntry) {
	if m.faceLRUHead == e {
		return
	}
	m.removeFaceLRU(e)
	m.pushFaceLRUFront(e)
}

func (m *Manager) pushFaceLRUFront(e *faceEntry) {
	e.lruPrev = nil
	e.lruNext = m.faceLRUHead
	if m.faceLRUHead != nil {
		m.faceLRUHead.lruPrev = e
	}
	m.faceLRUHead = e
	if m.faceLRUTail == nil {
		m.faceLRUTail = e
	}
}

func (m *Manager) removeFaceLRU(e *faceEntry) {
	if e.lruPrev != nil {
		e.lruPrev.lruNext = e.lruNext
	} else if m.faceLRUHead == e {
		m.faceLRUHead = e.lruNext
	}
	if e.lruNext != nil {
		e.lruNext.lruPrev = e.lruPrev
	} else if m.faceLRUTail == e {
		m.faceLRUTail = e.lruPrev
	}
	e.lruPrev, e.lruNext = nil, nil
}

func (m *Manager) evictOldestFace() {
	e := m.faceLRUTail
	if e == nil {
		return
	}
	m.ResetFace(e.id)
}

// -- size LRU --

func (m *Manager) touchSizeLRU(e *sizeEntry) {
	if m.sizeLRUHead == e {
		return
	}
	m.removeSizeLRU(e)
	m.pushSizeLRUFront(e)
}

func (m *Manager) pushSizeLRUFront(e *sizeEntry) {
	e.lruPrev = nil
	e.lruNext = m.sizeLRUHead
	if m.sizeLRUHead != nil {
		m.sizeLRUHead.lruPrev = e
	}
	m.sizeLRUHead = e
	if m.sizeLRUTail == nil {
		m.sizeLRUTail = e
	}
}

func (m *Manager) evictOldestSize() {
	e := m.sizeLRUTail
	if e == nil {
		return
	}
	m.removeSizeLRU(e)
	delete(m.sizes, e.id)
	m.numSizes--
}

func (m *Manager) removeSizeLRU(e *sizeEntry) {
	if e.lruPrev != nil {
		e.lruPrev.lruNext = e.lruNext
	} else if m.sizeLRUHead == e {
		m.sizeLRUHead = e.lruNext
	}
	if e.lruNext != nil {
		e.lruNext.lruPrev = e.lruPrev
	} else if m.sizeLRUTail == e {
		m.sizeLRUTail = e.lruPrev
	}
	e.lruPrev, e.lruNext = nil, nil
}
