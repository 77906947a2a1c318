package ftautohint

import (
	"github.com/foxglyph/ftcore/internal/ftcore/geom"
	"github.com/foxglyph/ftcore/internal/ftcore/hint"
)

// Config holds the four boolean toggles spec.md §4.4.6 lists as the auto-
// hinter's tunables, each disabling one stage rather than changing its
// behavior. DisableMetricHinting is carried for callers but is not read by
// Hint, which only ever sees the outline, not the advance vector, nor by
// any other code in this module; the other three gate stages inside Hint
// itself.
type Config struct {
	DisableWeakInterpolation      bool
	DisableStrongInterpolation    bool
	DisableMetricHinting          bool
	DisableSyntheticExtremumEdges bool
}

// Hinter implements internal/ftcore/hint.Hinter: outline analysis, blue-zone
// snapping, and grid-fitting driven by a single face-wide FaceGlobals.
type Hinter struct {
	Globals *FaceGlobals
	Config  Config
}

// New builds a Hinter for one face's globals with default (all stages
// enabled) configuration.
func New(globals *FaceGlobals) *Hinter {
	return &Hinter{Globals: globals}
}

var _ hint.Hinter = (*Hinter)(nil)

// Hint runs the full pipeline of spec.md §4.4 in place on outline, which
// the loader has already scaled to device 26.6 space: analyze into
// points/segments/edges, snap blue zones, grid-fit the remaining edges,
// then interpolate every point's final position from its governing edges.
func (h *Hinter) Hint(outline *geom.Outline, sc hint.Scale, diag hint.DiagSink) error {
	if len(outline.Points) == 0 {
		return nil
	}
	scale := Scale{XScale: sc.XScale, YScale: sc.YScale, XPpem: sc.XPpem, YPpem: sc.YPpem}
	h.Globals.Rescale(scale)

	a := BuildOutline(outline)
	a.BuildSegments()

	if !h.Config.DisableSyntheticExtremumEdges {
		addExtremumEdges(a)
	}

	snapBlueEdges(a.HorzEdges, h.Globals)
	gridFitAxis(a.HorzEdges, h.Globals.Scaled.Heights)
	gridFitAxis(a.VertEdges, h.Globals.Scaled.Widths)

	interpolatePoints(a, h.Config)

	a.WriteBack(outline)
	if diag != nil {
		diag("autohint", a)
	}
	return nil
}

// addExtremumEdges seeds a single-segment edge for any local-extremum point
// spec.md §4.4.3 flags that coalesce didn't already capture into an edge on
// its axis, so isolated round extrema (e.g. the top of an "O") still get a
// grid-fit position instead of relying purely on interpolation.
func addExtremumEdges(a *AnalyzedOutline) {
	covered := func(edges []*Edge, i int) bool {
		for _, e := range edges {
			for s := e.First; s != nil; s = s.NextInEdge {
				if within(s, i) {
					return true
				}
			}
		}
		return false
	}
	for i, p := range a.Points {
		if p.Flags.Has(FlagExtremumY) && !covered(a.HorzEdges, i) {
			seg := &Segment{Dir: DirRight, First: i, Last: i, Pos: p.OY, MinCoord: p.OX, MaxCoord: p.OX}
			e := &Edge{Dir: DirRight, Opos: p.OY, Pos: roundPix(p.OY), First: seg, NumSegs: 1, Flags: EdgeRound}
			seg.Edge = e
			a.HorzEdges = append(a.HorzEdges, e)
		}
		if p.Flags.Has(FlagExtremumX) && !covered(a.VertEdges, i) {
			seg := &Segment{Dir: DirUp, First: i, Last: i, Pos: p.OX, MinCoord: p.OY, MaxCoord: p.OY}
			e := &Edge{Dir: DirUp, Opos: p.OX, Pos: roundPix(p.OX), First: seg, NumSegs: 1, Flags: EdgeRound}
			seg.Edge = e
			a.VertEdges = append(a.VertEdges, e)
		}
	}
}

func within(s *Segment, i int) bool {
	if s.First <= s.Last {
		return i >= s.First && i <= s.Last
	}
	return i >= s.First || i <= s.Last // wrapped run
}

// gridFitAxis rounds every not-yet-snapped edge to the pixel grid, pairing
// stems (Link) so the pair's width snaps to the nearest standard width
// before the first edge is placed, per spec.md §4.4.5 steps 1-2.
func gridFitAxis(edges []*Edge, widths []int32) {
	done := make(map[*Edge]bool, len(edges))
	for _, e := range edges {
		if done[e] || e.Flags.hasRound() {
			done[e] = true
			continue
		}
		if e.Link != nil && !done[e.Link] {
			left, right := e, e.Link
			if left.Opos > right.Opos {
				left, right = right, left
			}
			width := right.Opos - left.Opos
			snapped, _ := nearestStandard(widths, width, edgeTolerance*2)
			snapped = roundPix(snapped)
			if snapped < 64 {
				snapped = 64 // never collapse a stem to less than one pixel
			}
			left.Pos = roundPix(left.Opos)
			right.Pos = left.Pos + snapped
			done[left] = true
			done[right] = true
			continue
		}
		e.Pos = roundPix(e.Opos)
		done[e] = true
	}
}

func (f EdgeFlags) hasRound() bool { return f&EdgeRound != 0 }

// interpolatePoints assigns every point's final hinted X/Y from the edges
// that govern it, spec.md §4.4.5 steps 3-4: points lying exactly on a
// hinted edge ("strong" points) take that edge's Pos outright; points
// between two edges on an axis interpolate proportionally to their
// original position between the edges' original positions; points governed
// by no edge on an axis (interior curve control points) get a weak
// interpolation that simply carries the nearest strong point's correction.
func interpolatePoints(a *AnalyzedOutline, cfg Config) {
	interpolateAxis(a, a.HorzEdges, cfg, true)
	interpolateAxis(a, a.VertEdges, cfg, false)
}

func interpolateAxis(a *AnalyzedOutline, edges []*Edge, cfg Config, horiz bool) {
	if len(edges) == 0 {
		return
	}
	touched := make([]bool, len(a.Points))
	for _, e := range edges {
		for s := e.First; s != nil; s = s.NextInEdge {
			for i := s.First; ; {
				if horiz {
					a.Points[i].Y = e.Pos
					a.Points[i].Flags |= FlagTouchY
				} else {
					a.Points[i].X = e.Pos
					a.Points[i].Flags |= FlagTouchX
				}
				touched[i] = true
				if i == s.Last {
					break
				}
				i = a.nextIndexInContour(i)
			}
		}
	}
	if cfg.DisableStrongInterpolation && cfg.DisableWeakInterpolation {
		return
	}

	for i := range a.Points {
		if touched[i] {
			continue
		}
		lo, hi := boundingEdges(edges, a.Points[i], horiz)
		switch {
		case lo != nil && hi != nil && !cfg.DisableStrongInterpolation:
			strongInterpolate(&a.Points[i], lo, hi, horiz)
		case !cfg.DisableWeakInterpolation:
			weakInterpolate(&a.Points[i], lo, hi, horiz)
		}
	}
}

func axisOrig(p Point, horiz bool) int32 {
	if horiz {
		return p.OY
	}
	return p.OX
}

func boundingEdges(edges []*Edge, p Point, horiz bool) (lo, hi *Edge) {
	v := axisOrig(p, horiz)
	for _, e := range edges {
		if e.Opos <= v && (lo == nil || e.Opos > lo.Opos) {
			lo = e
		}
		if e.Opos >= v && (hi == nil || e.Opos < hi.Opos) {
			hi = e
		}
	}
	return lo, hi
}

// strongInterpolate places p proportionally between lo and hi, preserving
// its fractional position in original space (spec.md §4.4.5 step 3).
func strongInterpolate(p *Point, lo, hi *Edge, horiz bool) {
	v := axisOrig(*p, horiz)
	span := hi.Opos - lo.Opos
	var ratio int64
	if span != 0 {
		ratio = int64(v-lo.Opos) * 1024 / int64(span)
	}
	hinted := int32(int64(lo.Pos) + ratio*int64(hi.Pos-lo.Pos)/1024)
	if horiz {
		p.Y = hinted
	} else {
		p.X = hinted
	}
	p.Flags |= FlagWeak // a derived position, not an anchor for further propagation
}

// weakInterpolate shifts p by the nearest governing edge's correction
// (hinted-minus-original delta), the "carry the displacement" fallback for
// points with no bracketing edge pair at all (spec.md §4.4.5 step 4).
func weakInterpolate(p *Point, lo, hi *Edge, horiz bool) {
	ref := lo
	if ref == nil {
		ref = hi
	}
	if ref == nil {
		return
	}
	delta := ref.Pos - ref.Opos
	if horiz {
		p.Y += delta
	} else {
		p.X += delta
	}
	p.Flags |= FlagWeak
}
