package ftautohint

// snapBlueEdges aligns each horizontal edge whose position lies within the
// blue-zone flat/rounded threshold of a reference/shoot pair to that zone's
// rounded device-pixel position, spec.md §4.4.4: "an edge within a blue
// zone's capture range is snapped to the zone's flat reference, not
// independently rounded." Edges not captured by any zone are left for the
// general grid-fit pass.
func snapBlueEdges(edges []*Edge, g *FaceGlobals) {
	for _, e := range edges {
		for i := 0; i < BlueMax; i++ {
			if !g.Scaled.HasBlue[i] {
				continue
			}
			ref := g.Scaled.BlueRefs[i]
			shoot := g.Scaled.BlueShoots[i]
			lo, hi := ref, shoot
			if lo > hi {
				lo, hi = hi, lo
			}
			// Capture range: the zone's own span, widened by a quarter
			// pixel on each side so near-miss edges still snap.
			const margin = 16 // quarter pixel in 26.6
			if e.Opos >= lo-margin && e.Opos <= hi+margin {
				e.Pos = roundPix(ref)
				e.Flags |= EdgeRound
				break
			}
		}
	}
}

// roundPix rounds a 26.6 device coordinate to the nearest whole pixel.
func roundPix(v int32) int32 {
	if v >= 0 {
		return (v + 32) &^ 63
	}
	return -((-v + 32) &^ 63)
}
