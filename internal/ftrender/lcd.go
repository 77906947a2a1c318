package ftrender

// LCDFilter receives one row of three (or, for vertical LCD, three
// consecutive) subpixel coverage values in place and may redistribute
// coverage across them to reduce color fringing, per spec.md §4.3: "the
// rendering contract does NOT require a specific filter, only that when a
// filter is installed it sees one row of triplets at a time."
type LCDFilter func(triplet []byte)

// DefaultLCDFilter returns the teacher-style fixed-weight 5-tap low-pass
// (FreeType's FIR5 default weights [0x08, 0x4D, 0x56, 0x4D, 0x08], summing
// to 256), applied here degenerately over a single triplet by clamping the
// two missing neighbor taps to zero, matching the shape of the teacher's
// internal/pixfmt/gamma pluggable function-value pattern
// (internal/pixfmt/gamma/functions.go): a default weight table a caller can
// override by installing their own LCDFilter.
func DefaultLCDFilter() LCDFilter {
	weights := [5]int{0x08, 0x4D, 0x56, 0x4D, 0x08}
	return func(triplet []byte) {
		if len(triplet) != 3 {
			return
		}
		in := [5]int{0, int(triplet[0]), int(triplet[1]), int(triplet[2]), 0}
		var out [3]int
		for i := 0; i < 3; i++ {
			sum := 0
			for k := 0; k < 5; k++ {
				idx := i + k - 1
				if idx < 0 || idx >= 5 {
					continue
				}
				sum += in[idx] * weights[k]
			}
			out[i] = sum >> 8
			if out[i] > 255 {
				out[i] = 255
			}
		}
		triplet[0], triplet[1], triplet[2] = byte(out[0]), byte(out[1]), byte(out[2])
	}
}
