package stamp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/terrastamp/pkg/math"
)

func embankment() *CrossSection {
	pts := []math.Vec2{{X: 0, Y: 15}, {X: 5, Y: 15}, {X: 6, Y: 14}}
	return &CrossSection{
		Left: pts, Right: append([]math.Vec2(nil), pts...),
		LeftShoulder: 1, RightShoulder: 1,
		LeftMax: 20, RightMax: 20,
	}
}

func pairIo(a, b math.Vec3, cs *CrossSection) *Io {
	io := NewIo()
	io.Centerline = []math.Vec3{a, b}
	io.CrossSections = []*CrossSection{cs, cs.Clone()}
	return io
}

func assertPts3(t *testing.T, want, got []math.Vec3, tol float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.True(t, want[i].ApproxEqual(got[i], tol), "point %d: want %v, got %v", i, want[i], got[i])
	}
}

var straightBreaklines = [][]int{{0, 1}, {3, 2, 0, 6, 7}, {5, 4, 1, 8, 9}, {3, 5}, {7, 9}, {2, 4}, {6, 8}}

func TestBuildPatch_FillEmbankment(t *testing.T) {
	io := pairIo(math.Vec3{Z: 15}, math.Vec3{Y: 10, Z: 15}, embankment())

	p, err := BuildPatch(io)
	require.NoError(t, err)

	assertPts3(t, []math.Vec3{
		{X: 0, Y: 0, Z: 15}, {X: 0, Y: 10, Z: 15}, {X: -5, Y: 0, Z: 15}, {X: -20, Y: 0, Z: 0}, {X: -5, Y: 10, Z: 15},
		{X: -20, Y: 10, Z: 0}, {X: 5, Y: 0, Z: 15}, {X: 20, Y: 0, Z: 0}, {X: 5, Y: 10, Z: 15}, {X: 20, Y: 10, Z: 0},
	}, p.Points, 1e-9)
	assert.Equal(t, straightBreaklines, p.Lines())
	assert.Equal(t, []BreaklineKind{
		CenterlineBreak, CrossSectionBreak, CrossSectionBreak,
		LeftToeBreak, RightToeBreak, LeftShoulderBreak, RightShoulderBreak,
	}, kinds(p.Breaklines))
	assert.Len(t, p.Triangles, 8)

	surface, err := p.Tin()
	require.NoError(t, err)
	z, err := surface.ElevationAt(-12.5, 5)
	require.NoError(t, err)
	assert.InDelta(t, 7.5, z, 1e-9)
}

func TestBuildPatch_CutEmbankment(t *testing.T) {
	pts := []math.Vec2{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 6, Y: 1}}
	cs := &CrossSection{Left: pts, Right: pts, LeftShoulder: 1, RightShoulder: 1, LeftMax: 20, RightMax: 20}
	io := pairIo(math.Vec3{}, math.Vec3{Y: 10}, cs)
	io.StampingType = Cut

	p, err := BuildPatch(io)
	require.NoError(t, err)
	assertPts3(t, []math.Vec3{
		{X: 0, Y: 0, Z: 0}, {X: 0, Y: 10, Z: 0}, {X: -5, Y: 0, Z: 0}, {X: -20, Y: 0, Z: 15}, {X: -5, Y: 10, Z: 0},
		{X: -20, Y: 10, Z: 15}, {X: 5, Y: 0, Z: 0}, {X: 20, Y: 0, Z: 15}, {X: 5, Y: 10, Z: 0}, {X: 20, Y: 10, Z: 15},
	}, p.Points, 1e-9)
	assert.Equal(t, straightBreaklines, p.Lines())
}

func TestBuildPatch_WingWall(t *testing.T) {
	io := pairIo(math.Vec3{Z: 15}, math.Vec3{X: 20, Y: 20, Z: 15}, embankment())
	io.FirstEndCap = EndCap{Angle: 15, Cap: &WingWall{WingWallAngle: 15}}
	io.LastEndCap = EndCap{Angle: -15, Cap: &WingWall{WingWallAngle: 10}}

	p, err := BuildPatch(io)
	require.NoError(t, err)
	assertPts3(t, []math.Vec3{
		{X: 0, Y: 0, Z: 15}, {X: 20, Y: 20, Z: 15}, {X: -4.5, Y: 2.6, Z: 15}, {X: -15.1, Y: 13.2, Z: 0},
		{X: 17.4, Y: 24.5, Z: 15}, {X: 7.7, Y: 36, Z: 0}, {X: 4.5, Y: -2.6, Z: 15}, {X: 21.2, Y: -7.1, Z: 0},
		{X: 22.6, Y: 15.5, Z: 15}, {X: 28.2, Y: 0, Z: 0},
	}, p.Points, 0.1)
	assert.Equal(t, straightBreaklines, p.Lines())
}

func TestBuildPatch_SlopedAbutment(t *testing.T) {
	io := pairIo(math.Vec3{Z: 15}, math.Vec3{X: 20, Y: 20, Z: 15}, embankment())
	abutment := &SlopedAbutment{MaxX: 10, Slope: []math.Vec2{{X: 0, Y: 15}, {X: 1, Y: 14}}}
	io.FirstEndCap = EndCap{Cap: abutment}
	io.LastEndCap = EndCap{Angle: 20, Cap: abutment.clone()}

	p, err := BuildPatch(io)
	require.NoError(t, err)
	assertPts3(t, []math.Vec3{
		{X: 0, Y: 0, Z: 15}, {X: 20, Y: 20, Z: 15}, {X: -3.5, Y: 3.5, Z: 15}, {X: -14.1, Y: 14.1, Z: 0},
		{X: 15.2, Y: 22.2, Z: 15}, {X: 4.6, Y: 32.9, Z: 0}, {X: 3.5, Y: -3.5, Z: 15}, {X: 14.1, Y: -14.1, Z: 0},
		{X: 24.8, Y: 17.8, Z: 15}, {X: 35.4, Y: 7.1, Z: 0}, {X: -10.6, Y: -3.5, Z: 5}, {X: -12.9, Y: -1.9, Z: 4.2},
		{X: -14.8, Y: 0.5, Z: 3.3}, {X: -16, Y: 3.5, Z: 2.5}, {X: -16.4, Y: 7, Z: 1.7}, {X: -15.8, Y: 10.6, Z: 0.8},
		{X: -3.5, Y: -10.6, Z: 5.0}, {X: -1.9, Y: -12.9, Z: 4.2}, {X: 0.5, Y: -14.8, Z: 3.3}, {X: 3.5, Y: -16.0, Z: 2.5},
		{X: 7.0, Y: -16.4, Z: 1.7}, {X: 10.6, Y: -15.8, Z: 0.8}, {X: 19.4, Y: 31.3, Z: 5}, {X: 16.6, Y: 33.4, Z: 3.8},
		{X: 13, Y: 34.6, Z: 2.5}, {X: 8.8, Y: 34.4, Z: 1.3}, {X: 29, Y: 26.8, Z: 5}, {X: 31.8, Y: 25.9, Z: 4.3},
		{X: 34.3, Y: 24.1, Z: 3.6}, {X: 36.4, Y: 21.5, Z: 2.9}, {X: 37.7, Y: 18.2, Z: 2.1}, {X: 38, Y: 14.6, Z: 1.4},
		{X: 37.3, Y: 10.8, Z: 0.7},
	}, p.Points, 0.1)

	lines := p.Lines()
	require.Len(t, lines, 9)
	assert.Equal(t, straightBreaklines, lines[:7])
	// left toe, reversed left arc, right arc, right toe
	assert.Equal(t, []int{3, 15, 14, 13, 12, 11, 10, 16, 17, 18, 19, 20, 21, 7}, lines[7])
	assert.Equal(t, EndCapBreak, p.Breaklines[8].Kind)

	surface, err := p.Tin()
	require.NoError(t, err)
	z, err := surface.ElevationAt(-2.4, -2.3)
	require.NoError(t, err, "front of the first abutment is covered")
	assert.True(t, z > 5 && z < 15, "z=%v", z)
}

func TestBuildPatch_SlopedAbutmentEmptySlope(t *testing.T) {
	io := pairIo(math.Vec3{Z: 15}, math.Vec3{Y: 10, Z: 15}, embankment())
	io.FirstEndCap = EndCap{Cap: &SlopedAbutment{MaxX: 10}}
	io.LastEndCap = EndCap{Cap: &SlopedAbutment{MaxX: 10}}

	p, err := BuildPatch(io)
	require.NoError(t, err)

	wing, err := BuildPatch(pairIo(math.Vec3{Z: 15}, math.Vec3{Y: 10, Z: 15}, embankment()))
	require.NoError(t, err)

	assertPts3(t, wing.Points, p.Points, 1e-9)
	assert.Len(t, p.Triangles, len(wing.Triangles))
	assert.Equal(t, straightBreaklines, p.Lines())
	assert.NotContains(t, kinds(p.Breaklines), EndCapBreak)
	for i, pt := range p.Points {
		assert.True(t, pt.Y >= 0 && pt.Y <= 10, "point %d %v lies beyond the ends", i, pt)
	}
}

func TestBuildPatch_Guidebank(t *testing.T) {
	cs := embankment()
	cs.LeftMax, cs.RightMax = 10, 10
	io := pairIo(math.Vec3{Z: 15}, math.Vec3{X: 50, Y: 50, Z: 15}, cs)
	gb := &Guidebank{Side: Left, Radius1: 30, Radius2: 15, Width: 6, NumPoints: 10}
	io.FirstEndCap = EndCap{Cap: gb}
	io.LastEndCap = EndCap{Angle: 10, Cap: gb.clone()}

	p, err := BuildPatch(io)
	require.NoError(t, err)
	// 10 main points plus two levees of 10 stations with 5 points each
	assert.Len(t, p.Points, 110)

	capLines := 0
	for _, b := range p.Breaklines {
		if b.Kind == EndCapBreak {
			capLines++
		}
	}
	assert.Equal(t, 10, capLines, "centerline, toes and shoulders of each levee")

	for i, pt := range p.Points {
		assert.True(t, pt.Z >= -1e-9 && pt.Z <= 15+1e-9, "point %d z=%v", i, pt.Z)
	}
	// the levee starts at the terminus and runs away from the path
	assert.True(t, p.Points[10].ApproxEqual(math.Vec3{Z: 15}, 1e-9))

	surface, err := p.Tin()
	require.NoError(t, err)
	assert.Greater(t, surface.NumTriangles(), 16)
}

func TestBuildPatch_Errors(t *testing.T) {
	t.Run("short centerline", func(t *testing.T) {
		io := NewIo()
		io.Centerline = []math.Vec3{{}}
		io.CrossSections = []*CrossSection{embankment()}
		_, err := BuildPatch(io)
		require.ErrorIs(t, err, ErrInvalidInput)
	})
	t.Run("empty side", func(t *testing.T) {
		cs := embankment()
		cs.Right, cs.RightShoulder = nil, 0
		io := pairIo(math.Vec3{}, math.Vec3{X: 1}, cs)
		_, err := BuildPatch(io)
		require.ErrorIs(t, err, ErrInvalidInput)
	})
	t.Run("template count", func(t *testing.T) {
		io := pairIo(math.Vec3{}, math.Vec3{X: 1}, embankment())
		io.CrossSections = append(io.CrossSections, embankment())
		_, err := BuildPatch(io)
		require.ErrorIs(t, err, ErrInvalidInput)
	})
	t.Run("unset end cap", func(t *testing.T) {
		io := pairIo(math.Vec3{}, math.Vec3{X: 1}, embankment())
		io.LastEndCap = EndCap{}
		_, err := BuildPatch(io)
		require.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestBuildPatch_ShoulderBreaklinesPerStation(t *testing.T) {
	io := NewIo()
	io.Centerline = []math.Vec3{{Z: 15}, {X: 10, Z: 15}, {X: 20, Y: 5, Z: 15}, {X: 25, Y: 15, Z: 14}, {X: 24, Y: 30, Z: 13}}
	io.CrossSections = []*CrossSection{embankment()}

	p, err := BuildPatch(io, WithWorkers(2))
	require.NoError(t, err)
	for _, b := range p.Breaklines {
		switch b.Kind {
		case LeftShoulderBreak, RightShoulderBreak, LeftToeBreak, RightToeBreak, CenterlineBreak:
			assert.Len(t, b.Indices, len(io.Centerline), b.Kind.String())
		}
	}
}

func kinds(lines []Breakline) []BreaklineKind {
	out := make([]BreaklineKind, len(lines))
	for i, b := range lines {
		out[i] = b.Kind
	}
	return out
}
