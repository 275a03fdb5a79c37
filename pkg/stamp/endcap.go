package stamp

import (
	stdmath "math"

	"github.com/Faultbox/terrastamp/pkg/math"
)

// MaxEndCapAngle bounds EndCap.Angle in degrees, both ways.
const MaxEndCapAngle = 45.0

// Cap is one of the end cap variants: *Guidebank, *SlopedAbutment or *WingWall.
type Cap interface {
	Kind() CapKind
	Validate() error
	// Local returns the variant geometry in the terminus frame, where u
	// points away from the path and v to the left of the centerline.
	Local() Transition

	clone() Cap
	equal(Cap) bool
}

// Transition is the geometry an end cap adds at a terminus.
type Transition struct {
	Kind   CapKind
	Points []math.Vec2 // local (u, v) coordinates
	Rise   []float64   // elevation offset per point
	Frame  math.Mat3   // local to world plan transform, identity until placed
}

// World returns Points mapped through Frame.
func (t Transition) World() []math.Vec2 {
	out := make([]math.Vec2, len(t.Points))
	for i, p := range t.Points {
		out[i] = t.Frame.TransformPoint(p)
	}
	return out
}

// Guidebank bends a training levee away from the terminus on one side.
type Guidebank struct {
	Side      Side
	Radius1   float64 // along the outward direction
	Radius2   float64 // across, toward Side
	Width     float64 // crest width
	NumPoints int
}

func (g *Guidebank) Kind() CapKind { return KindGuidebank }

func (g *Guidebank) Validate() error {
	switch {
	case g.Side != Left && g.Side != Right:
		return &ConfigurationError{Field: "side", Value: g.Side.String(), Valid: sideNames}
	case g.Radius1 < 0 || stdmath.IsNaN(g.Radius1):
		return invalid("radius1", "must be >= 0, got %v", g.Radius1)
	case g.Radius2 < 0 || stdmath.IsNaN(g.Radius2):
		return invalid("radius2", "must be >= 0, got %v", g.Radius2)
	case g.Width < 0 || stdmath.IsNaN(g.Width):
		return invalid("width", "must be >= 0, got %v", g.Width)
	case g.NumPoints < 2:
		return invalid("n_points", "must be >= 2, got %d", g.NumPoints)
	}
	return nil
}

// Local samples a quarter ellipse from the terminus: Radius1 along u and
// Radius2 across toward Side. Two points give a straight chamfer.
func (g *Guidebank) Local() Transition {
	tr := Transition{Kind: KindGuidebank, Frame: math.Identity()}
	sign := g.Side.Sign()
	for j := range g.NumPoints {
		t := stdmath.Pi / 2 * float64(j) / float64(g.NumPoints-1)
		s, c := stdmath.Sincos(t)
		tr.Points = append(tr.Points, math.Vec2{X: g.Radius1 * s, Y: sign * g.Radius2 * (1 - c)})
		tr.Rise = append(tr.Rise, 0)
	}
	return tr
}

func (g *Guidebank) clone() Cap { c := *g; return &c }

func (g *Guidebank) equal(o Cap) bool {
	other, ok := o.(*Guidebank)
	return ok && *g == *other
}

// SlopedAbutment rounds the terminus with a cone whose crest falls off
// along a piecewise (offset, elevation) profile up to MaxX.
type SlopedAbutment struct {
	MaxX  float64
	Slope []math.Vec2
}

func (a *SlopedAbutment) Kind() CapKind { return KindSlopedAbutment }

func (a *SlopedAbutment) Validate() error {
	if a.MaxX < 0 || stdmath.IsNaN(a.MaxX) {
		return invalid("max_x", "must be >= 0, got %v", a.MaxX)
	}
	return validateProfile("slope", a.Slope, 0)
}

// Local returns the profile sampled along u from 0 to MaxX, with Rise
// relative to the first control point. An empty profile is flat.
func (a *SlopedAbutment) Local() Transition {
	tr := Transition{Kind: KindSlopedAbutment, Frame: math.Identity()}
	if len(a.Slope) == 0 {
		tr.Points = []math.Vec2{{}, {X: a.MaxX}}
		tr.Rise = []float64{0, 0}
		return tr
	}
	e0 := elevationAt(a.Slope, 0)
	tr.Points = append(tr.Points, math.Vec2{})
	tr.Rise = append(tr.Rise, 0)
	for _, p := range a.Slope {
		if p.X <= 0 || p.X >= a.MaxX {
			continue
		}
		tr.Points = append(tr.Points, math.Vec2{X: p.X})
		tr.Rise = append(tr.Rise, p.Y-e0)
	}
	tr.Points = append(tr.Points, math.Vec2{X: a.MaxX})
	tr.Rise = append(tr.Rise, elevationAt(a.Slope, a.MaxX)-e0)
	return tr
}

// Drop returns the elevation change across the full MaxX run.
func (a *SlopedAbutment) Drop() float64 {
	if len(a.Slope) == 0 {
		return 0
	}
	return elevationAt(a.Slope, a.MaxX) - elevationAt(a.Slope, 0)
}

func (a *SlopedAbutment) clone() Cap {
	return &SlopedAbutment{MaxX: a.MaxX, Slope: clonePts(a.Slope)}
}

func (a *SlopedAbutment) equal(o Cap) bool {
	other, ok := o.(*SlopedAbutment)
	return ok && a.MaxX == other.MaxX && equalPts(a.Slope, other.Slope)
}

// WingWall swings the side slopes beyond the shoulders back toward the
// path by WingWallAngle degrees.
type WingWall struct {
	WingWallAngle float64
}

func (w *WingWall) Kind() CapKind { return KindWingWall }

func (w *WingWall) Validate() error {
	if stdmath.IsNaN(w.WingWallAngle) || stdmath.Abs(w.WingWallAngle) >= 90 {
		return invalid("wing_wall_angle", "must be within (-90, 90), got %v", w.WingWallAngle)
	}
	return nil
}

// Local returns the left wing as a unit segment from the terminus. The
// right wing mirrors it across u.
func (w *WingWall) Local() Transition {
	s, c := stdmath.Sincos(math.Deg2Rad(w.WingWallAngle))
	return Transition{
		Kind:   KindWingWall,
		Points: []math.Vec2{{}, {X: -s, Y: c}},
		Rise:   []float64{0, 0},
		Frame:  math.Identity(),
	}
}

func (w *WingWall) clone() Cap { c := *w; return &c }

func (w *WingWall) equal(o Cap) bool {
	other, ok := o.(*WingWall)
	return ok && *w == *other
}

// EndCap describes the treatment of one end of the path.
type EndCap struct {
	Angle float64 // degrees, rotates the terminus cross section and cap
	Cap   Cap
}

// DefaultEndCap returns a square wing wall end.
func DefaultEndCap() EndCap {
	return EndCap{Cap: &WingWall{}}
}

// NewEndCap selects the variant held by payload and validates the result.
func NewEndCap(payload any, angle float64) (EndCap, error) {
	e := EndCap{Angle: angle}
	if err := e.SetCap(payload); err != nil {
		return EndCap{}, err
	}
	if err := e.Validate(); err != nil {
		return EndCap{}, err
	}
	return e, nil
}

// SetCap stores a copy of payload, replacing the previous variant. Any
// value that is not one of the three variants is rejected.
func (e *EndCap) SetCap(payload any) error {
	switch v := payload.(type) {
	case *Guidebank:
		e.Cap = v.clone()
	case Guidebank:
		e.Cap = v.clone()
	case *SlopedAbutment:
		e.Cap = v.clone()
	case SlopedAbutment:
		e.Cap = v.clone()
	case *WingWall:
		e.Cap = v.clone()
	case WingWall:
		e.Cap = v.clone()
	default:
		return invalid("endcap", "unsupported end cap type %T", payload)
	}
	return nil
}

// Validate checks the angle range and the selected variant.
func (e EndCap) Validate() error {
	if stdmath.IsNaN(e.Angle) || e.Angle < -MaxEndCapAngle || e.Angle > MaxEndCapAngle {
		return invalid("angle", "must be within [-%g, %g], got %v", MaxEndCapAngle, MaxEndCapAngle, e.Angle)
	}
	if e.Cap == nil {
		return invalid("endcap", "no end cap variant selected")
	}
	return e.Cap.Validate()
}

// Clone returns a deep copy.
func (e EndCap) Clone() EndCap {
	if e.Cap != nil {
		e.Cap = e.Cap.clone()
	}
	return e
}

// Equal reports whether both describe the same treatment.
func (e EndCap) Equal(other EndCap) bool {
	if e.Angle != other.Angle {
		return false
	}
	if e.Cap == nil || other.Cap == nil {
		return e.Cap == nil && other.Cap == nil
	}
	return e.Cap.equal(other.Cap)
}

// Frame returns the transform from the terminus frame of p to world plan
// coordinates, including the Angle rotation about the anchor.
func (e EndCap) Frame(p Placement) math.Mat3 {
	anchor := p.Anchor.XY()
	return math.RotateAbout(anchor, math.Deg2Rad(e.Angle)).
		Mul(math.Basis(anchor, p.Outward, p.Normal))
}

// Generate places the variant geometry at terminus p.
func (e EndCap) Generate(p Placement) (Transition, error) {
	if err := e.Validate(); err != nil {
		return Transition{}, err
	}
	if !p.IsTerminus() {
		return Transition{}, invalid("placement", "station %d is not a terminus", p.Index)
	}
	tr := e.Cap.Local()
	tr.Frame = e.Frame(p)
	return tr, nil
}
