package debug

import "github.com/Faultbox/showroom/internal/engine/picking"

// BoxLines returns the 12 edges of b as line-list vertices, xyz per vertex.
func BoxLines(b picking.AABB) []float32 {
	if b.IsEmpty() {
		return nil
	}
	lo, hi := b.Min, b.Max
	corner := func(i int) [3]float32 {
		c := [3]float32{lo[0], lo[1], lo[2]}
		if i&1 != 0 {
			c[0] = hi[0]
		}
		if i&2 != 0 {
			c[1] = hi[1]
		}
		if i&4 != 0 {
			c[2] = hi[2]
		}
		return c
	}

	out := make([]float32, 0, 24*3)
	for i := 0; i < 8; i++ {
		for bit := 1; bit < 8; bit <<= 1 {
			// Each edge once: from the corner with the bit cleared.
			if i&bit != 0 {
				continue
			}
			a, c := corner(i), corner(i|bit)
			out = append(out, a[0], a[1], a[2], c[0], c[1], c[2])
		}
	}
	return out
}
