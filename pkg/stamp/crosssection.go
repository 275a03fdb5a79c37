package stamp

import (
	stdmath "math"

	"github.com/Faultbox/terrastamp/pkg/math"
)

// CrossSection is a lateral profile template. Each side is a sequence of
// (offset, elevation) pairs stored as Vec2{X: offset, Y: elevation},
// starting at the centerline. Elevations are relative: the first point of
// a side sits at the centerline elevation.
type CrossSection struct {
	Left          []math.Vec2
	Right         []math.Vec2
	LeftMax       float64 // clamp extent of the left side, 0 for none
	RightMax      float64 // clamp extent of the right side, 0 for none
	LeftShoulder  int
	RightShoulder int
}

// NewCrossSection copies both profiles into a new template and validates it.
func NewCrossSection(left, right []math.Vec2, leftShoulder, rightShoulder int) (*CrossSection, error) {
	cs := &CrossSection{
		Left:          clonePts(left),
		Right:         clonePts(right),
		LeftShoulder:  leftShoulder,
		RightShoulder: rightShoulder,
	}
	if err := cs.Validate(); err != nil {
		return nil, err
	}
	return cs, nil
}

// SetLeft replaces the left profile with a copy of pts.
func (cs *CrossSection) SetLeft(pts []math.Vec2) error {
	if err := validateProfile("left", pts, cs.LeftShoulder); err != nil {
		return err
	}
	cs.Left = clonePts(pts)
	return nil
}

// SetRight replaces the right profile with a copy of pts.
func (cs *CrossSection) SetRight(pts []math.Vec2) error {
	if err := validateProfile("right", pts, cs.RightShoulder); err != nil {
		return err
	}
	cs.Right = clonePts(pts)
	return nil
}

// Validate checks offset ordering, shoulder ranges and clamps. An empty side
// is accepted here so that templates can feed interpolation; stamping
// requires at least one point per side.
func (cs *CrossSection) Validate() error {
	if err := validateProfile("left", cs.Left, cs.LeftShoulder); err != nil {
		return err
	}
	if err := validateProfile("right", cs.Right, cs.RightShoulder); err != nil {
		return err
	}
	if cs.LeftMax < 0 || stdmath.IsNaN(cs.LeftMax) {
		return invalid("left_max", "must be >= 0, got %v", cs.LeftMax)
	}
	if cs.RightMax < 0 || stdmath.IsNaN(cs.RightMax) {
		return invalid("right_max", "must be >= 0, got %v", cs.RightMax)
	}
	return nil
}

func validateProfile(field string, pts []math.Vec2, shoulder int) error {
	for i, p := range pts {
		if stdmath.IsNaN(p.X) || stdmath.IsNaN(p.Y) || stdmath.IsInf(p.X, 0) || stdmath.IsInf(p.Y, 0) {
			return invalid(field, "point %d is not finite", i)
		}
		if i > 0 && p.X < pts[i-1].X {
			return invalid(field, "offsets must be non-decreasing, %v follows %v at point %d", p.X, pts[i-1].X, i)
		}
	}
	if len(pts) == 0 {
		if shoulder != 0 {
			return invalid(field+"_shoulder", "index %d set on an empty side", shoulder)
		}
		return nil
	}
	if shoulder < 0 || shoulder >= len(pts) {
		return invalid(field+"_shoulder", "index %d out of range [0, %d)", shoulder, len(pts))
	}
	return nil
}

// Clone returns a deep copy.
func (cs *CrossSection) Clone() *CrossSection {
	if cs == nil {
		return nil
	}
	out := *cs
	out.Left = clonePts(cs.Left)
	out.Right = clonePts(cs.Right)
	return &out
}

// Equal reports field-wise equality.
func (cs *CrossSection) Equal(other *CrossSection) bool {
	if cs == nil || other == nil {
		return cs == other
	}
	return equalPts(cs.Left, other.Left) && equalPts(cs.Right, other.Right) &&
		cs.LeftMax == other.LeftMax && cs.RightMax == other.RightMax &&
		cs.LeftShoulder == other.LeftShoulder && cs.RightShoulder == other.RightShoulder
}

// Clamp returns a copy whose sides end exactly at LeftMax and RightMax.
// A short side has its last segment extended; a long side is cut at the
// clamp offset. Sides with a zero clamp are left alone.
func (cs *CrossSection) Clamp() *CrossSection {
	out := cs.Clone()
	if cs.LeftMax > 0 {
		out.Left, out.LeftShoulder = clampProfile(out.Left, out.LeftShoulder, cs.LeftMax)
	}
	if cs.RightMax > 0 {
		out.Right, out.RightShoulder = clampProfile(out.Right, out.RightShoulder, cs.RightMax)
	}
	return out
}

func clampProfile(pts []math.Vec2, shoulder int, maxX float64) ([]math.Vec2, int) {
	n := len(pts)
	if n == 0 {
		return pts, shoulder
	}
	last := pts[n-1]
	switch {
	case last.X == maxX:
		return pts, shoulder
	case last.X < maxX:
		if n == 1 || last.X == pts[n-2].X || shoulder == n-1 {
			return append(pts, math.Vec2{X: maxX, Y: last.Y}), shoulder
		}
		prev := pts[n-2]
		slope := (last.Y - prev.Y) / (last.X - prev.X)
		pts[n-1] = math.Vec2{X: maxX, Y: prev.Y + slope*(maxX-prev.X)}
		return pts, shoulder
	}
	for i := 1; i < n; i++ {
		if pts[i].X < maxX {
			continue
		}
		a, b := pts[i-1], pts[i]
		t := (maxX - a.X) / (b.X - a.X)
		out := append(pts[:i:i], math.Vec2{X: maxX, Y: a.Y + t*(b.Y-a.Y)})
		return out, min(shoulder, len(out)-1)
	}
	// Every offset beyond the clamp: only the centerline point survives.
	return pts[:1], 0
}

// elevationAt evaluates the profile at offset x, extrapolating the last segment.
func elevationAt(pts []math.Vec2, x float64) float64 {
	n := len(pts)
	switch {
	case n == 0:
		return 0
	case n == 1:
		return pts[0].Y
	}
	for i := 1; i < n; i++ {
		if x <= pts[i].X || i == n-1 {
			a, b := pts[i-1], pts[i]
			if b.X == a.X {
				return b.Y
			}
			return a.Y + (x-a.X)*(b.Y-a.Y)/(b.X-a.X)
		}
	}
	return pts[n-1].Y
}

func clonePts(pts []math.Vec2) []math.Vec2 {
	if pts == nil {
		return nil
	}
	return append([]math.Vec2(nil), pts...)
}

func equalPts(a, b []math.Vec2) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
