package stamp

import (
	"slices"

	"github.com/Faultbox/terrastamp/pkg/math"
)

// hasProfile reports whether cs carries a usable profile. Entries without
// one are filled in from their neighbours.
func hasProfile(cs *CrossSection) bool {
	return cs != nil && (len(cs.Left) > 1 || len(cs.Right) > 1)
}

// InterpolateMissing returns one template per centerline point. Entries
// without a profile are copied from the nearest template before the first
// or after the last usable one, and blended by plan distance between two
// usable neighbours otherwise. Shoulder indices of 0 are moved to 1 on
// every template with a profile.
func InterpolateMissing(centerline []math.Vec3, sections []*CrossSection) ([]*CrossSection, error) {
	if len(sections) != len(centerline) {
		return nil, invalid("cross_sections", "have %d entries for %d centerline points", len(sections), len(centerline))
	}
	out := make([]*CrossSection, len(sections))
	for i, cs := range sections {
		out[i] = cs.Clone()
		if !hasProfile(out[i]) {
			continue
		}
		if out[i].LeftShoulder < 1 && len(out[i].Left) > 1 {
			out[i].LeftShoulder = 1
		}
		if out[i].RightShoulder < 1 && len(out[i].Right) > 1 {
			out[i].RightShoulder = 1
		}
	}

	first := slices.IndexFunc(out, hasProfile)
	if first < 0 {
		return out, nil
	}
	last := len(out) - 1
	for !hasProfile(out[last]) {
		last--
	}
	for i := 0; i < first; i++ {
		out[i] = out[first].Clone()
	}
	for i := last + 1; i < len(out); i++ {
		out[i] = out[last].Clone()
	}

	prev := first
	for i := first + 1; i < last; i++ {
		if hasProfile(out[i]) {
			prev = i
			continue
		}
		next := i + 1
		for !hasProfile(out[next]) {
			next++
		}
		prevDist := centerline[prev].PlanDistance(centerline[i])
		nextDist := centerline[i].PlanDistance(centerline[next])
		percent := 0.0
		if d := prevDist + nextDist; d > 0 {
			percent = prevDist / d
		}
		out[i] = InterpolateCrossSection(out[prev], out[next], percent)
	}
	return out, nil
}

// InterpolateCrossSection blends prev toward next by percent (0 returns a
// copy of prev's shape, 1 of next's). Each side is blended in two parts,
// centerline to shoulder and shoulder to end, so shoulders stay aligned.
func InterpolateCrossSection(prev, next *CrossSection, percent float64) *CrossSection {
	first := func(cs *CrossSection) math.Vec2 {
		switch {
		case len(cs.Left) > 0:
			return cs.Left[0]
		case len(cs.Right) > 0:
			return cs.Right[0]
		}
		return math.Vec2{}
	}
	origin := blend(first(prev), first(next), percent)

	out := &CrossSection{
		Left:     []math.Vec2{origin},
		Right:    []math.Vec2{origin},
		LeftMax:  prev.LeftMax - percent*(prev.LeftMax-next.LeftMax),
		RightMax: prev.RightMax - percent*(prev.RightMax-next.RightMax),
	}
	out.Left, out.LeftShoulder = interpolateSide(out.Left, prev.Left, prev.LeftShoulder, next.Left, next.LeftShoulder, percent)
	out.Right, out.RightShoulder = interpolateSide(out.Right, prev.Right, prev.RightShoulder, next.Right, next.RightShoulder, percent)
	return out
}

func interpolateSide(dst, a []math.Vec2, sa int, b []math.Vec2, sb int, percent float64) ([]math.Vec2, int) {
	dst = interpolateRange(dst, a, 0, sa, b, 0, sb, percent)
	shoulder := max(0, len(dst)-1)
	dst = interpolateRange(dst, a, sa, len(a)-1, b, sb, len(b)-1, percent)
	return dst, shoulder
}

// interpolateRange appends blended points for the union of the
// normalized offsets of a[begA..endA] and b[begB..endB], excluding 0.
func interpolateRange(dst, a []math.Vec2, begA, endA int, b []math.Vec2, begB, endB int, percent float64) []math.Vec2 {
	ta := tValues(a, begA, endA)
	tb := tValues(b, begB, endB)
	ts := append(append([]float64(nil), ta...), tb...)
	slices.Sort(ts)
	ts = slices.Compact(ts)
	for _, t := range ts {
		if t == 0 {
			continue
		}
		dst = append(dst, blend(pointAtT(a, begA, ta, t), pointAtT(b, begB, tb, t), percent))
	}
	return dst
}

// tValues maps the offsets of v[beg..end] onto [0, 1]. A zero-width range
// falls back to evenly spaced values.
func tValues(v []math.Vec2, beg, end int) []float64 {
	if len(v) == 0 {
		return nil
	}
	t := []float64{0}
	width := v[end].X - v[beg].X
	for i := beg + 1; i <= end; i++ {
		if width == 0 {
			t = append(t, float64(i-beg)/float64(end-beg))
			continue
		}
		t = append(t, (v[i].X-v[beg].X)/width)
	}
	return t
}

func pointAtT(v []math.Vec2, beg int, t []float64, tv float64) math.Vec2 {
	if len(v) == 0 {
		return math.Vec2{}
	}
	if len(t) == 1 {
		return v[beg]
	}
	for i := 1; i < len(t); i++ {
		if tv == t[i] {
			return v[beg+i]
		}
		if tv < t[i] {
			t1, t2 := t[i-1], t[i]
			if t2 == t1 {
				return v[beg+i]
			}
			return v[beg+i-1].Lerp(v[beg+i], (tv-t1)/(t2-t1))
		}
	}
	return v[beg+len(t)-1]
}

func blend(a, b math.Vec2, percent float64) math.Vec2 {
	return math.Vec2{
		X: a.X - percent*(a.X-b.X),
		Y: a.Y - percent*(a.Y-b.Y),
	}
}
