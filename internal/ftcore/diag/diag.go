// Package diag provides the debug-hook table that the loader and cache
// manager call into at state transitions. It mirrors the event-callback
// table AGG's platform backends expose for input/resize/paint events,
// adapted to the glyph pipeline's own checkpoints.
package diag

import "fmt"

// Event names a checkpoint in the glyph loading or caching pipeline.
type Event int

const (
	EventFaceOpened Event = iota
	EventSizeRequested
	EventGlyphLoadStart
	EventGlyphLoadOutline
	EventGlyphHinted
	EventGlyphRendered
	EventGlyphLoadDone
	EventCacheHit
	EventCacheMiss
	EventCacheEvict
)

func (e Event) String() string {
	switch e {
	case EventFaceOpened:
		return "face_opened"
	case EventSizeRequested:
		return "size_requested"
	case EventGlyphLoadStart:
		return "glyph_load_start"
	case EventGlyphLoadOutline:
		return "glyph_load_outline"
	case EventGlyphHinted:
		return "glyph_hinted"
	case EventGlyphRendered:
		return "glyph_rendered"
	case EventGlyphLoadDone:
		return "glyph_load_done"
	case EventCacheHit:
		return "cache_hit"
	case EventCacheMiss:
		return "cache_miss"
	case EventCacheEvict:
		return "cache_evict"
	default:
		return "unknown_event"
	}
}

// Hook receives pipeline checkpoints. detail is event-specific and may be
// nil; implementations must not block the caller for long since loader and
// cache operations run synchronously on the calling goroutine.
type Hook func(ev Event, detail any)

// Table is a fan-out of zero or more hooks, so a library consumer and an
// internal test probe can both observe the same pipeline without stepping
// on each other.
type Table struct {
	hooks []Hook
}

// NewTable builds an empty hook table.
func NewTable() *Table {
	return &Table{}
}

// Add registers a hook and returns its index in the table; Table has no
// method to remove a hook once added.
func (t *Table) Add(h Hook) int {
	t.hooks = append(t.hooks, h)
	return len(t.hooks) - 1
}

// Fire invokes every registered hook in registration order. A nil Table is
// valid and a no-op, so callers need not guard every call site.
func (t *Table) Fire(ev Event, detail any) {
	if t == nil {
		return
	}
	for _, h := range t.hooks {
		if h != nil {
			h(ev, detail)
		}
	}
}

// Verbose, when non-nil, is installed by callers that want a default
// fmt-based trace of every event without writing their own Hook.
func Verbose() Hook {
	return func(ev Event, detail any) {
		if detail != nil {
			fmt.Printf("[ftcore] %s: %v\n", ev, detail)
		} else {
			fmt.Printf("[ftcore] %s\n", ev)
		}
	}
}
