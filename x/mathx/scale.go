package mathx

import "golang.org/x/exp/constraints"

// ScaleU8 maps v from [0, full] onto [0, 255], saturating above full.
// A zero full scale yields 0.
func ScaleU8[T constraints.Unsigned](v, full T) uint8 {
	if full == 0 {
		return 0
	}
	s := uint64(v) * 255 / uint64(full)
	return uint8(Clamp(s, 0, 255))
}
