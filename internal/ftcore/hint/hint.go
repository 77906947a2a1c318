// Package hint defines the single capability shared by the two hinters that
// coexist in the pipeline: a driver's own PostScript-style stem-hint
// executor and the format-independent auto-hinter. Both are "consume an
// outline and scale, emit a hinted outline and optional diagnostics" (see
// DESIGN.md "PS hints and auto-hinter decoupling"); the loader selects
// between them by driver capability and the force_autohint flag without
// needing to know which concrete hinter it got.
package hint

import "github.com/foxglyph/ftcore/internal/ftcore/geom"

// Scale carries the per-size scale factors a hinter needs, independent of
// the driver-specific SizeMetrics payload.
type Scale struct {
	XScale, YScale int32 // 16.16, font units -> 1/64 pixel
	XPpem, YPpem   uint
}

// DiagSink receives optional hinter diagnostics (e.g. for debug overlays);
// nil is always valid.
type DiagSink func(event string, detail any)

// Hinter is the shared capability: hint an outline, in place, at scale.
type Hinter interface {
	Hint(outline *geom.Outline, scale Scale, diag DiagSink) error
}
