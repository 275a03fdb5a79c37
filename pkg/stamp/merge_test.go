package stamp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/terrastamp/pkg/math"
	"github.com/Faultbox/terrastamp/pkg/tin"
)

func squarePatch(half, z float64) *Patch {
	return &Patch{
		Points: []math.Vec3{
			{X: -half, Y: -half, Z: z}, {X: half, Y: -half, Z: z},
			{X: half, Y: half, Z: z}, {X: -half, Y: half, Z: z},
		},
		Triangles:  []tin.Triangle{{0, 1, 2}, {0, 2, 3}},
		Breaklines: []Breakline{{Kind: EndCapBreak, Indices: []int{0, 1, 2, 3, 0}}},
	}
}

func flatBase(t *testing.T, half, z float64, extra ...math.Vec3) *tin.Tin {
	t.Helper()
	pts := append([]math.Vec3{
		{X: -half, Y: -half, Z: z}, {X: half, Y: -half, Z: z},
		{X: half, Y: half, Z: z}, {X: -half, Y: half, Z: z},
	}, extra...)
	base, err := tin.Triangulate(pts)
	require.NoError(t, err)
	return base
}

func TestMerge_NoBase(t *testing.T) {
	p := squarePatch(1, 7)
	out, lines, err := Merge(p, nil, Fill)
	require.NoError(t, err)
	assert.Equal(t, 4, out.NumPoints())
	assert.Equal(t, 2, out.NumTriangles())
	require.Len(t, lines, 1)

	lines[0].Indices[0] = 99
	assert.Equal(t, 0, p.Breaklines[0].Indices[0], "breaklines are copied")
}

func TestMerge_Modes(t *testing.T) {
	tests := []struct {
		mode   StampingType
		center float64
	}{
		{Cut, 7},
		{Fill, 10},
		{Both, 7},
	}
	for _, tc := range tests {
		t.Run(tc.mode.String(), func(t *testing.T) {
			out, lines, err := Merge(squarePatch(1, 7), flatBase(t, 10, 10), tc.mode)
			require.NoError(t, err)
			assert.Equal(t, 8, out.NumPoints())

			z, err := out.ElevationAt(0, 0)
			require.NoError(t, err)
			assert.InDelta(t, tc.center, z, 1e-9)

			z, err = out.ElevationAt(9, 8)
			require.NoError(t, err)
			assert.True(t, z >= 7 && z <= 10, "z=%v", z)

			require.Len(t, lines, 1)
			assert.Equal(t, []int{0, 1, 2, 3, 0}, lines[0].Indices)
			for i := 0; i < 4; i++ {
				assert.True(t, out.HasEdge(i, (i+1)%4), "patch boundary edge %d kept", i)
			}
		})
	}
}

func TestMerge_BasePointsInsideFootprint(t *testing.T) {
	inner := math.Vec3{X: 0.25, Y: 0.5, Z: 10}

	out, _, err := Merge(squarePatch(1, 7), flatBase(t, 10, 10, inner), Both)
	require.NoError(t, err)
	assert.Equal(t, 8, out.NumPoints(), "both drops base points under the patch")

	out, _, err = Merge(squarePatch(1, 7), flatBase(t, 10, 10, inner), Cut)
	require.NoError(t, err)
	require.Equal(t, 9, out.NumPoints())
	assert.InDelta(t, 7, out.Point(8).Z, 1e-9)

	out, _, err = Merge(squarePatch(1, 7), flatBase(t, 10, 10, inner), Fill)
	require.NoError(t, err)
	assert.InDelta(t, 10, out.Point(8).Z, 1e-9)
}

func TestMerge_SharedVertices(t *testing.T) {
	p := squarePatch(1, 7)
	// a second copy of corner 2 at a different height
	p.Points = append(p.Points, math.Vec3{X: 1, Y: 1, Z: 8})
	p.Breaklines = append(p.Breaklines, Breakline{Kind: CenterlineBreak, Indices: []int{0, 4}})

	out, lines, err := Merge(p, flatBase(t, 10, 10), Both)
	require.NoError(t, err)
	assert.Equal(t, 8, out.NumPoints())
	assert.Equal(t, []int{0, 2}, lines[1].Indices)
	assert.InDelta(t, 8, out.Point(2).Z, 1e-9)
}

func TestMerge_NoOverlap(t *testing.T) {
	far := []math.Vec3{{X: 100, Y: 100}, {X: 110, Y: 100}, {X: 110, Y: 110}}
	base, err := tin.Triangulate(far)
	require.NoError(t, err)

	_, _, err = Merge(squarePatch(1, 7), base, Fill)
	require.ErrorIs(t, err, ErrGeometry)
	var ge *GeometryError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, "merge", ge.Stage)
}
