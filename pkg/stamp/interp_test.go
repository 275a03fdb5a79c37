package stamp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/terrastamp/pkg/math"
)

func straightLine() []math.Vec3 {
	return []math.Vec3{{X: 0}, {X: 5}, {X: 10}, {X: 15}, {X: 20}, {X: 25}}
}

func symmetric(pts []math.Vec2, shoulder int, maxX float64) *CrossSection {
	return &CrossSection{
		Left: pts, Right: append([]math.Vec2(nil), pts...),
		LeftShoulder: shoulder, RightShoulder: shoulder,
		LeftMax: maxX, RightMax: maxX,
	}
}

func assertPts(t *testing.T, want, got []math.Vec2, tol float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i].X, got[i].X, tol, "x of point %d", i)
		assert.InDelta(t, want[i].Y, got[i].Y, tol, "y of point %d", i)
	}
}

var (
	lowProfile  = []math.Vec2{{X: 0, Y: 10}, {X: 1, Y: 11}, {X: 2, Y: 12}, {X: 4, Y: 11}, {X: 5, Y: 10}, {X: 10, Y: 5}, {X: 15, Y: 0}}
	highProfile = []math.Vec2{{X: 0, Y: 20}, {X: 4, Y: 19}, {X: 6, Y: 18}, {X: 8, Y: 18}, {X: 10, Y: 20}, {X: 15, Y: 15}, {X: 20, Y: 10}}
)

func TestInterpolateMissing_NoProfiles(t *testing.T) {
	sections := make([]*CrossSection, 6)
	out, err := InterpolateMissing(straightLine(), sections)
	require.NoError(t, err)
	for _, cs := range out {
		assert.Nil(t, cs)
	}
}

func TestInterpolateMissing_WrongCount(t *testing.T) {
	_, err := InterpolateMissing(straightLine(), make([]*CrossSection, 2))
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestInterpolateMissing_Symmetric(t *testing.T) {
	sections := make([]*CrossSection, 6)
	sections[1] = symmetric(lowProfile, 4, 16)
	sections[4] = symmetric(highProfile, 4, 19)

	out, err := InterpolateMissing(straightLine(), sections)
	require.NoError(t, err)

	assert.True(t, out[0].Equal(out[1]))
	assert.True(t, out[5].Equal(out[4]))
	assert.Equal(t, 4, out[0].RightShoulder)

	want2 := []math.Vec2{{X: 0, Y: 13.33}, {X: 1.33, Y: 13.83}, {X: 2.67, Y: 14.33}, {X: 4.0, Y: 13.67},
		{X: 5.33, Y: 13.33}, {X: 6.67, Y: 13.33}, {X: 11.67, Y: 8.33}, {X: 16.67, Y: 3.33}}
	assertPts(t, want2, out[2].Left, 1e-2)
	assertPts(t, want2, out[2].Right, 1e-2)
	assert.Equal(t, 5, out[2].LeftShoulder)
	assert.Equal(t, 5, out[2].RightShoulder)

	want3 := []math.Vec2{{X: 0, Y: 16.67}, {X: 1.67, Y: 16.67}, {X: 3.33, Y: 16.67}, {X: 5.0, Y: 15.83},
		{X: 6.67, Y: 15.67}, {X: 8.33, Y: 16.67}, {X: 13.33, Y: 11.67}, {X: 18.33, Y: 6.67}}
	assertPts(t, want3, out[3].Left, 1e-2)
	assertPts(t, want3, out[3].Right, 1e-2)
	assert.Equal(t, 5, out[3].LeftShoulder)

	// inputs are untouched
	assert.Nil(t, sections[2])
}

func TestInterpolateMissing_EmptyLeft(t *testing.T) {
	low := symmetric(lowProfile, 4, 16)
	low.Left, low.LeftShoulder, low.LeftMax = nil, 0, 0

	sections := make([]*CrossSection, 6)
	sections[1] = low
	sections[4] = symmetric(highProfile, 4, 19)

	out, err := InterpolateMissing(straightLine(), sections)
	require.NoError(t, err)

	assertPts(t, []math.Vec2{{X: 0, Y: 13.33}, {X: 1.33, Y: 13.83}, {X: 2.67, Y: 14.33}, {X: 4.0, Y: 13.67},
		{X: 5.33, Y: 13.33}, {X: 6.67, Y: 13.33}, {X: 11.67, Y: 8.33}, {X: 16.67, Y: 3.33}}, out[2].Right, 1e-2)
	assert.Equal(t, 5, out[2].RightShoulder)
	assertPts(t, []math.Vec2{{X: 0, Y: 13.33}, {X: 1.33, Y: 6.33}, {X: 2, Y: 6}, {X: 2.67, Y: 6},
		{X: 3.33, Y: 6.67}, {X: 5, Y: 5}, {X: 6.67, Y: 3.33}}, out[2].Left, 1e-2)
	assert.InDelta(t, 6.33, out[2].LeftMax, 1e-2)

	assertPts(t, []math.Vec2{{X: 0, Y: 16.67}, {X: 2.67, Y: 12.67}, {X: 4, Y: 12}, {X: 5.33, Y: 12},
		{X: 6.67, Y: 13.33}, {X: 10, Y: 10}, {X: 13.33, Y: 6.67}}, out[3].Left, 1e-2)
	assert.InDelta(t, 12.66, out[3].LeftMax, 1e-2)
}

func TestInterpolateMissing_ShoulderBump(t *testing.T) {
	sections := make([]*CrossSection, 6)
	sections[1] = symmetric(lowProfile, 0, 0)
	sections[4] = symmetric(highProfile, 4, 0)

	out, err := InterpolateMissing(straightLine(), sections)
	require.NoError(t, err)

	assert.Equal(t, 1, out[0].LeftShoulder)
	assert.Equal(t, 1, out[0].RightShoulder)
	assert.Equal(t, 4, out[5].LeftShoulder)
	assert.Equal(t, 0, sections[1].LeftShoulder)

	want2 := []math.Vec2{{X: 0, Y: 13.33}, {X: 1.60, Y: 13.27}, {X: 2.40, Y: 13.07}, {X: 3.20, Y: 13.20},
		{X: 4.00, Y: 14.00}, {X: 4.90, Y: 14.43}, {X: 6.71, Y: 13.29}, {X: 7.62, Y: 12.38},
		{X: 10.33, Y: 9.67}, {X: 12.14, Y: 7.86}, {X: 16.67, Y: 3.33}}
	assertPts(t, want2, out[2].Left, 1e-2)
	assertPts(t, want2, out[2].Right, 1e-2)
	assert.Equal(t, 4, out[2].LeftShoulder)

	want3 := []math.Vec2{{X: 0, Y: 16.67}, {X: 2.80, Y: 16.13}, {X: 4.20, Y: 15.53}, {X: 5.60, Y: 15.60},
		{X: 7.00, Y: 17.00}, {X: 7.81, Y: 16.86}, {X: 9.43, Y: 15.57}, {X: 10.24, Y: 14.76},
		{X: 12.67, Y: 12.33}, {X: 14.29, Y: 10.71}, {X: 18.33, Y: 6.67}}
	assertPts(t, want3, out[3].Left, 1e-2)
	assert.Equal(t, 4, out[3].RightShoulder)
}

func TestInterpolateMissing_SingleTemplate(t *testing.T) {
	for _, at := range []int{0, 5} {
		sections := make([]*CrossSection, 6)
		sections[at] = symmetric(lowProfile, 0, 0)

		out, err := InterpolateMissing(straightLine(), sections)
		require.NoError(t, err)
		for i, cs := range out {
			require.NotNil(t, cs, "station %d", i)
			assert.Equal(t, lowProfile, cs.Left)
			assert.Equal(t, 1, cs.LeftShoulder)
			assert.Equal(t, 1, cs.RightShoulder)
		}
	}
}

func TestInterpolateMissing_Tutorial(t *testing.T) {
	sections := make([]*CrossSection, 6)
	sections[1] = symmetric(lowProfile, 2, 0)
	sections[4] = symmetric(highProfile, 3, 0)

	out, err := InterpolateMissing(straightLine(), sections)
	require.NoError(t, err)

	for i, want := range []int{2, 2, 3, 3, 3, 3} {
		assert.Equal(t, want, out[i].LeftShoulder, "left shoulder %d", i)
		assert.Equal(t, want, out[i].RightShoulder, "right shoulder %d", i)
	}
	assert.Equal(t, out[1].Left, out[0].Left)
	assert.Equal(t, out[4].Right, out[5].Right)

	want2 := []math.Vec2{{X: 0, Y: 13.33}, {X: 2, Y: 13.66}, {X: 3, Y: 13.66}, {X: 4, Y: 14}, {X: 5.94, Y: 13.94},
		{X: 6.11, Y: 13.88}, {X: 6.92, Y: 13.07}, {X: 11.38, Y: 8.61}, {X: 11.79, Y: 8.20}, {X: 16.66, Y: 3.33}}
	assertPts(t, want2, out[2].Left, 0.02)
	assertPts(t, want2, out[2].Right, 0.02)

	want3 := []math.Vec2{{X: 0, Y: 16.66}, {X: 3, Y: 16.33}, {X: 4.5, Y: 15.83}, {X: 6, Y: 16}, {X: 7.89, Y: 16.89},
		{X: 8.05, Y: 16.94}, {X: 8.84, Y: 16.15}, {X: 13.19, Y: 11.80}, {X: 13.58, Y: 11.41}, {X: 18.33, Y: 6.66}}
	assertPts(t, want3, out[3].Left, 0.02)
	assertPts(t, want3, out[3].Right, 0.02)
}

func TestInterpolateCrossSection_SameShape(t *testing.T) {
	low := symmetric(lowProfile, 4, 16)

	mid := InterpolateCrossSection(low, low.Clone(), 0.5)
	assertPts(t, lowProfile, mid.Left, 1e-9)
	assertPts(t, lowProfile, mid.Right, 1e-9)
	assert.Equal(t, 4, mid.LeftShoulder)
	assert.InDelta(t, 16, mid.RightMax, 1e-9)
}
