package stamp

import (
	"github.com/Faultbox/terrastamp/pkg/math"
)

// maxMiter bounds the lateral stretch at sharp bends.
const maxMiter = 4.0

// planEpsilon is the shortest plan distance treated as a real segment.
const planEpsilon = 1e-12

// Placement is the local frame of one centerline station.
type Placement struct {
	Index    int
	Anchor   math.Vec3
	Tangent  math.Vec2 // unit, along the centerline
	Normal   math.Vec2 // unit, pointing to the left side
	Miter    float64   // lateral stretch keeping strips parallel at bends
	Distance float64   // plan distance from the first station
	Outward  math.Vec2 // unit direction away from the path at a terminus, zero elsewhere
}

// IsTerminus reports whether p is the first or last station.
func (p Placement) IsTerminus() bool {
	return p.Outward != (math.Vec2{})
}

// SamplePath returns one placement per centerline point, in order.
// Interior tangents bisect the adjacent segments.
func SamplePath(centerline []math.Vec3) ([]Placement, error) {
	n := len(centerline)
	if n < 2 {
		return nil, invalid("centerline", "needs at least 2 points, got %d", n)
	}
	dirs := make([]math.Vec2, n-1)
	for i := range dirs {
		d := centerline[i+1].XY().Sub(centerline[i].XY())
		if d.Length() <= planEpsilon {
			return nil, invalid("centerline", "points %d and %d coincide in plan", i, i+1)
		}
		dirs[i] = d.Normalize()
	}

	out := make([]Placement, n)
	dist := 0.0
	for i := range out {
		if i > 0 {
			dist += centerline[i].PlanDistance(centerline[i-1])
		}
		p := Placement{Index: i, Anchor: centerline[i], Miter: 1, Distance: dist}
		switch i {
		case 0:
			p.Tangent = dirs[0]
			p.Outward = dirs[0].Scale(-1)
		case n - 1:
			p.Tangent = dirs[n-2]
			p.Outward = dirs[n-2]
		default:
			in, outDir := dirs[i-1], dirs[i]
			t := in.Add(outDir)
			if t.Length() <= planEpsilon {
				// reversal: keep the incoming direction
				t = in
			}
			p.Tangent = t.Normalize()
			if c := p.Tangent.Dot(in); c > 1/maxMiter {
				p.Miter = 1 / c
			} else {
				p.Miter = maxMiter
			}
		}
		p.Normal = p.Tangent.Perp()
		out[i] = p
	}
	return out, nil
}
