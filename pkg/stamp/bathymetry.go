package stamp

import (
	"github.com/Faultbox/terrastamp/pkg/math"
	"github.com/Faultbox/terrastamp/pkg/tin"
)

const (
	// clipSamples is the number of base samples taken along each slope segment.
	clipSamples = 64
	// clipIterations bounds the bisection that locates a crossing.
	clipIterations = 60
)

// clipStation cuts both side slopes of st where they meet base.
func clipStation(st *station, base *tin.Tin, mode StampingType) {
	for side := range st.sides {
		clipChain(&st.sides[side], base, mode)
	}
}

// clipChain walks the slope from the shoulder outward and stops it at the
// first place it passes through base in the direction mode cares about.
// Every point past the crossing collapses onto it. Stretches outside the
// base domain never count as crossings.
func clipChain(c *chain, base *tin.Tin, mode StampingType) {
	diffAt := func(p math.Vec3) (float64, bool) {
		zb, err := base.ElevationAt(p.X, p.Y)
		if err != nil {
			return 0, false
		}
		return p.Z - zb, true
	}

	var (
		prev     math.Vec3
		prevDiff float64
		prevOK   bool
	)
	for k := c.shoulder; k+1 < len(c.pts); k++ {
		start := 1
		if k == c.shoulder {
			start = 0
		}
		for s := start; s <= clipSamples; s++ {
			p := lerp3(c.pts[k], c.pts[k+1], float64(s)/clipSamples)
			diff, ok := diffAt(p)
			if ok && prevOK && crossesBase(prevDiff, diff, mode) {
				x := bisectCrossing(prev, p, diff < 0, diffAt)
				for j := k + 1; j < len(c.pts); j++ {
					c.pts[j] = x
				}
				return
			}
			prev, prevDiff, prevOK = p, diff, ok
		}
	}
}

func crossesBase(from, to float64, mode StampingType) bool {
	down := from >= 0 && to < 0
	up := from <= 0 && to > 0
	switch mode {
	case Fill:
		return down
	case Cut:
		return up
	}
	return down || up
}

// bisectCrossing narrows [lo, hi] onto the point where the slope meets the
// base. below tells whether hi lies under the base.
func bisectCrossing(lo, hi math.Vec3, below bool, diffAt func(math.Vec3) (float64, bool)) math.Vec3 {
	for range clipIterations {
		mid := lerp3(lo, hi, 0.5)
		d, ok := diffAt(mid)
		if !ok || (d < 0) != below {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lerp3(lo, hi, 0.5)
}

func lerp3(a, b math.Vec3, t float64) math.Vec3 {
	return a.Add(b.Sub(a).Scale(t))
}
