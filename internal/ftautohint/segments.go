package ftautohint

import "sort"

// EdgeFlags marks an edge's shape classification, spec.md §4.4.3.
type EdgeFlags uint8

const (
	EdgeNormal EdgeFlags = 0
	EdgeRound  EdgeFlags = 1 << iota
	EdgeSerif
)

// Segment is a maximal run of consecutive contour points moving along one
// dominant axis and sign, spec.md §4.4.2's segment record: "dir, first,
// last point index, min/max coordinate along the run, and a position along
// the perpendicular axis".
type Segment struct {
	Dir      Direction
	Contour  int
	First    int // index into AnalyzedOutline.Points
	Last     int
	Pos      int32 // perpendicular-axis device (26.6) coordinate (~constant)
	MinCoord int32 // along-axis span, min (26.6)
	MaxCoord int32 // along-axis span, max (26.6)

	Edge       *Edge
	NextInEdge *Segment // singly-linked chain of segments merged into Edge
}

// Edge is one or more Segments coalesced within the coordinate tolerance of
// spec.md §4.4.3 ("coalesce parallel segments whose axis position differs
// by less than a tolerance derived from scale"). Link pairs an edge with
// its stem partner, the opposite-winding edge enclosing a stroke; an edge
// whose chain mixes winding directions is additionally marked EdgeSerif
// (a closing stroke rather than a plain stem wall) rather than tracked with
// a separate pointer, a simplification from the full serif-offset model
// noted in DESIGN.md.
type Edge struct {
	Dir     Direction
	Flags   EdgeFlags
	Opos    int32 // scaled, unhinted device position (26.6), average of its segments
	Pos     int32 // hinted position (26.6) -- filled by grid-fit
	First   *Segment
	Link    *Edge
	NumSegs int
}

// edgeTolerance is the coalescing window for nearby segments, a quarter
// device pixel, kept well under a full stem width so edges never merge
// across a stroke (spec.md §4.4.3).
const edgeTolerance int32 = 16 // 0.25px in 26.6

// direction classifies the travel from a point to its successor into one of
// the four cardinal Directions, or DirNone when neither axis clearly
// dominates (spec.md §4.4.2: "ambiguous points are left unclassified").
func direction(dx, dy int32) Direction {
	adx, ady := dx, dy
	if adx < 0 {
		adx = -adx
	}
	if ady < 0 {
		ady = -ady
	}
	switch {
	case adx == 0 && ady == 0:
		return DirNone
	case adx >= ady*2:
		if dx > 0 {
			return DirRight
		}
		return DirLeft
	case ady >= adx*2:
		if dy > 0 {
			return DirUp
		}
		return DirDown
	default:
		return DirNone
	}
}

func isHorizontal(d Direction) bool { return d == DirLeft || d == DirRight }

// BuildSegments walks every contour's control polygon (including off-curve
// points, an approximation documented in DESIGN.md) and produces the four
// segment/edge arrays, then links stem pairs on the vertical axis (spec.md
// §4.4.3's "pair adjacent opposite-winding edges as a stem").
func (a *AnalyzedOutline) BuildSegments() {
	start := 0
	for ci, end := range a.Contours {
		n := end - start + 1
		if n >= 2 {
			a.walkContour(ci, start, end, n)
		}
		start = end + 1
	}
	a.coalesce()
	a.linkStems()
}

func (a *AnalyzedOutline) walkContour(contour, start, end, n int) {
	idx := func(i int) int { return start + ((i-start)%n+n)%n }
	dirAt := func(i int) Direction {
		p, nx := a.Points[idx(i)], a.Points[idx(i+1)]
		return direction(nx.OX-p.OX, nx.OY-p.OY)
	}

	// Find a boundary to start the walk: a point whose incoming and
	// outgoing directions differ. If the whole contour has one uniform
	// direction (degenerate, e.g. a 2-point contour), start anywhere.
	boundary := start
	for i := start; i <= end; i++ {
		if dirAt(i) != dirAt(i-1) {
			boundary = i
			break
		}
	}

	i := boundary
	for consumed := 0; consumed < n; {
		dir := dirAt(i)
		if dir == DirNone {
			i = idx(i + 1)
			consumed++
			continue
		}
		first := idx(i)
		j := i
		for dirAt(j) == dir && consumed < n {
			j = idx(j + 1)
			consumed++
		}
		last := idx(j)
		a.addSegment(contour, first, last, dir)
		i = j
	}
}

func (a *AnalyzedOutline) addSegment(contour, first, last int, dir Direction) {
	p0 := a.Points[first]
	var pos, minC, maxC int32
	if isHorizontal(dir) {
		pos = p0.OY
		minC, maxC = p0.OX, p0.OX
	} else {
		pos = p0.OX
		minC, maxC = p0.OY, p0.OY
	}
	for i := first; ; {
		p := a.Points[i]
		var c int32
		if isHorizontal(dir) {
			c = p.OX
		} else {
			c = p.OY
		}
		if c < minC {
			minC = c
		}
		if c > maxC {
			maxC = c
		}
		if i == last {
			break
		}
		i = a.nextIndexInContour(i)
	}
	seg := &Segment{Dir: dir, Contour: contour, First: first, Last: last, Pos: pos, MinCoord: minC, MaxCoord: maxC}
	if isHorizontal(dir) {
		a.HorzSegments = append(a.HorzSegments, seg)
	} else {
		a.VertSegments = append(a.VertSegments, seg)
	}
}

// nextIndexInContour advances i by one point, wrapping at the contour this
// point index belongs to.
func (a *AnalyzedOutline) nextIndexInContour(i int) int {
	start := 0
	for _, end := range a.Contours {
		if i >= start && i <= end {
			if i == end {
				return start
			}
			return i + 1
		}
		start = end + 1
	}
	return i
}

// coalesce merges each axis's segments into Edges, sorted by perpendicular
// position, absorbing any segment within edgeTolerance of an existing
// edge's running average (spec.md §4.4.3).
func (a *AnalyzedOutline) coalesce() {
	a.HorzEdges = coalesceAxis(a.HorzSegments)
	a.VertEdges = coalesceAxis(a.VertSegments)
}

func coalesceAxis(segs []*Segment) []*Edge {
	ordered := append([]*Segment(nil), segs...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Pos < ordered[j].Pos })

	var edges []*Edge
	for _, s := range ordered {
		var best *Edge
		for _, e := range edges {
			d := e.Opos - s.Pos
			if d < 0 {
				d = -d
			}
			if d <= edgeTolerance {
				best = e
				break
			}
		}
		if best == nil {
			e := &Edge{Dir: s.Dir, Opos: s.Pos, First: s, NumSegs: 1}
			s.Edge = e
			edges = append(edges, e)
			continue
		}
		// Fold s into best, updating the running average position and
		// appending s to the edge's segment chain.
		best.Opos = (best.Opos*int32(best.NumSegs) + s.Pos) / int32(best.NumSegs+1)
		best.NumSegs++
		tail := best.First
		for tail.NextInEdge != nil {
			tail = tail.NextInEdge
		}
		tail.NextInEdge = s
		s.Edge = best
		if s.Dir != best.Dir {
			// Opposite-winding segments sharing a coordinate mark a
			// serif-style closing edge rather than a plain stem wall.
			best.Flags |= EdgeSerif
		}
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].Opos < edges[j].Opos })
	return edges
}

// linkStems pairs consecutive vertical edges of alternating winding
// direction as stem partners (spec.md §4.4.3: "two facing edges enclosing a
// stroke of roughly standard width form a stem"). Horizontal edges are not
// stem-linked; they are snapped individually by blue zones or anchor rules.
func (a *AnalyzedOutline) linkStems() {
	for i := 0; i+1 < len(a.VertEdges); i++ {
		e0, e1 := a.VertEdges[i], a.VertEdges[i+1]
		if e0.Link != nil || e1.Link != nil {
			continue
		}
		if e0.Dir != e1.Dir {
			e0.Link = e1
			e1.Link = e0
		}
	}
}
