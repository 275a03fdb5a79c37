package stamp

import (
	"errors"
	stdmath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/terrastamp/pkg/math"
)

func TestEndCap_AngleBounds(t *testing.T) {
	_, err := NewEndCap(&WingWall{}, 45)
	require.NoError(t, err)
	_, err = NewEndCap(&WingWall{}, -45)
	require.NoError(t, err)

	_, err = NewEndCap(&WingWall{}, 45.0001)
	var inv *InvalidInputError
	require.True(t, errors.As(err, &inv))
	assert.Equal(t, "angle", inv.Field)
}

func TestEndCap_SetCap(t *testing.T) {
	e := DefaultEndCap()
	assert.Equal(t, KindWingWall, e.Cap.Kind())

	g := &Guidebank{Side: Right, Radius1: 5, Radius2: 2, Width: 1, NumPoints: 3}
	require.NoError(t, e.SetCap(g))
	assert.Equal(t, KindGuidebank, e.Cap.Kind())
	g.Radius1 = 99
	assert.Equal(t, 5.0, e.Cap.(*Guidebank).Radius1, "payload is copied")

	require.NoError(t, e.SetCap(SlopedAbutment{MaxX: 3}))
	assert.Equal(t, KindSlopedAbutment, e.Cap.Kind())

	err := e.SetCap("wingwall")
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, KindSlopedAbutment, e.Cap.Kind(), "rejected payload keeps the previous variant")

	require.ErrorIs(t, EndCap{}.Validate(), ErrInvalidInput)
}

func TestEndCap_CloneEqual(t *testing.T) {
	a := EndCap{Angle: 10, Cap: &SlopedAbutment{MaxX: 4, Slope: []math.Vec2{{X: 0, Y: 1}, {X: 2, Y: 0}}}}
	b := a.Clone()
	assert.True(t, a.Equal(b))

	b.Cap.(*SlopedAbutment).Slope[1].Y = 7
	assert.False(t, a.Equal(b))
	assert.False(t, a.Equal(EndCap{Angle: 10, Cap: &WingWall{}}))
	assert.True(t, EndCap{}.Equal(EndCap{}))
}

func TestGuidebank_Validate(t *testing.T) {
	ok := Guidebank{Side: Left, Radius1: 1, Radius2: 1, NumPoints: 2}
	require.NoError(t, ok.Validate())

	tests := []struct {
		name  string
		mod   func(*Guidebank)
		field string
	}{
		{"negative radius1", func(g *Guidebank) { g.Radius1 = -1 }, "radius1"},
		{"negative radius2", func(g *Guidebank) { g.Radius2 = -0.5 }, "radius2"},
		{"negative width", func(g *Guidebank) { g.Width = -2 }, "width"},
		{"too few points", func(g *Guidebank) { g.NumPoints = 1 }, "n_points"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := ok
			tc.mod(&g)
			var inv *InvalidInputError
			require.True(t, errors.As(g.Validate(), &inv))
			assert.Equal(t, tc.field, inv.Field)
		})
	}

	bad := ok
	bad.Side = Side(7)
	require.ErrorIs(t, bad.Validate(), ErrConfiguration)
}

func TestGuidebank_Local(t *testing.T) {
	g := &Guidebank{Side: Right, Radius1: 30, Radius2: 15, NumPoints: 10}
	tr := g.Local()
	require.Len(t, tr.Points, 10)
	assert.Equal(t, math.Vec2{}, tr.Points[0])
	last := tr.Points[9]
	assert.InDelta(t, 30, last.X, 1e-9)
	assert.InDelta(t, -15, last.Y, 1e-9)

	chamfer := (&Guidebank{Side: Left, Radius1: 4, Radius2: 3, NumPoints: 2}).Local()
	require.Len(t, chamfer.Points, 2)
	assert.InDelta(t, 4, chamfer.Points[1].X, 1e-9)
	assert.InDelta(t, 3, chamfer.Points[1].Y, 1e-9)
}

func TestSlopedAbutment_Local(t *testing.T) {
	a := &SlopedAbutment{MaxX: 10, Slope: []math.Vec2{{X: 0, Y: 15}, {X: 1, Y: 14}}}
	tr := a.Local()
	assert.Equal(t, []math.Vec2{{}, {X: 1}, {X: 10}}, tr.Points)
	assert.InDeltaSlice(t, []float64{0, -1, -10}, tr.Rise, 1e-9)
	assert.InDelta(t, -10, a.Drop(), 1e-9)

	flat := (&SlopedAbutment{MaxX: 5}).Local()
	assert.Equal(t, []float64{0, 0}, flat.Rise)
	require.NoError(t, (&SlopedAbutment{}).Validate())
	require.ErrorIs(t, (&SlopedAbutment{MaxX: -1}).Validate(), ErrInvalidInput)
}

func TestWingWall_Local(t *testing.T) {
	tr := (&WingWall{WingWallAngle: 30}).Local()
	require.Len(t, tr.Points, 2)
	assert.InDelta(t, -0.5, tr.Points[1].X, 1e-9)
	assert.InDelta(t, stdmath.Sqrt(3)/2, tr.Points[1].Y, 1e-9)
	require.ErrorIs(t, (&WingWall{WingWallAngle: 90}).Validate(), ErrInvalidInput)
}

func TestEndCap_Generate(t *testing.T) {
	placements, err := SamplePath([]math.Vec3{{}, {X: 10}})
	require.NoError(t, err)

	e := EndCap{Angle: 90 / 2, Cap: &Guidebank{Side: Left, Radius1: 2, Radius2: 1, NumPoints: 2}}
	tr, err := e.Generate(placements[1])
	require.NoError(t, err)
	w := tr.World()
	assert.InDelta(t, 10, w[0].X, 1e-9)
	assert.InDelta(t, 0, w[0].Y, 1e-9)
	// local (2, 1) is 2 along +x and 1 along +y, then rotated 45 degrees
	s := stdmath.Sqrt2 / 2
	assert.InDelta(t, 10+2*s-1*s, w[1].X, 1e-9)
	assert.InDelta(t, 2*s+1*s, w[1].Y, 1e-9)

	_, err = e.Generate(Placement{Index: 3})
	require.ErrorIs(t, err, ErrInvalidInput)
}
