package field

// Slice is the byte range a field occupies in its owning buffer.
//
// Start and Stop are signed offsets; negative values count from the buffer
// end. Open means the range extends to the end of the buffer, in which case
// Stop carries no meaning. Signed offsets are what make one dynamic field
// possible anywhere in a message: fields behind it keep fixed from-the-end
// addresses that hold for any total message length.
type Slice struct {
	Start int
	Stop  int
	Open  bool
}

// Bounds resolves the slice against a concrete buffer length, returning
// absolute [lo, hi) byte indexes clamped to the buffer.
func (s Slice) Bounds(total int) (lo, hi int) {
	lo = s.Start
	if lo < 0 {
		lo += total
	}

	if s.Open {
		hi = total
	} else {
		hi = s.Stop
		if hi < 0 {
			hi += total
		}
	}

	lo = clamp(lo, 0, total)
	hi = clamp(hi, lo, total)

	return lo, hi
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}

	return v
}
