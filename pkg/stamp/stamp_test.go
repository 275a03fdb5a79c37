package stamp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/terrastamp/pkg/math"
	"github.com/Faultbox/terrastamp/pkg/tin"
)

func TestStamp_FillEmbankmentRaster(t *testing.T) {
	io := pairIo(math.Vec3{Z: 15}, math.Vec3{Y: 10, Z: 15}, embankment())
	raster, err := NewEmptyRaster(41, 11, 1, 1, math.Vec2{X: -20}, GridNoData)
	require.NoError(t, err)
	io.Raster = raster

	core, logs := observer.New(zap.DebugLevel)
	res, err := Stamp(io, WithLogger(zap.New(core)), WithWorkers(4))
	require.NoError(t, err)

	assert.Equal(t, 10, res.Tin.NumPoints())
	assert.Equal(t, straightBreaklines, (&Patch{Breaklines: res.Breaklines}).Lines())
	require.NotNil(t, res.Raster)
	for _, v := range res.Raster.Vals {
		assert.False(t, res.Raster.IsNoData(v), "footprint covers the raster")
		assert.True(t, v >= 0 && v <= 15)
	}
	assert.True(t, io.Raster.IsNoData(io.Raster.Vals[0]), "input raster untouched")
	assert.Equal(t, 1, logs.FilterMessage("stamp complete").Len())
}

func TestStamp_IntersectBathymetry(t *testing.T) {
	base, err := tin.New(
		[]math.Vec3{{X: -1, Y: 25, Z: 6}, {X: -15, Y: 11, Z: 6}, {X: 5, Y: -11, Z: 10}, {X: 20, Y: 4, Z: 10}},
		[]tin.Triangle{{0, 1, 2}, {1, 3, 2}},
	)
	require.NoError(t, err)
	io := pairIo(math.Vec3{Z: 15}, math.Vec3{X: 10, Y: 10, Z: 15}, embankment())
	io.Bathymetry = base

	res, err := Stamp(io)
	require.NoError(t, err)

	want := []math.Vec3{
		{X: 0, Y: 0, Z: 15}, {X: 10, Y: 10, Z: 15}, {X: -3.54, Y: 3.54, Z: 15},
		{X: -9.42, Y: 9.42, Z: 6.68}, {X: 6.46, Y: 13.54, Z: 15}, {X: -4.14, Y: 24.14, Z: 0},
		{X: 3.54, Y: -3.54, Z: 15}, {X: 7.18, Y: -7.18, Z: 9.84}, {X: 13.54, Y: 6.46, Z: 15},
		{X: 17.18, Y: 2.82, Z: 9.84},
	}
	got := res.Tin.Points()
	require.GreaterOrEqual(t, len(got), len(want))
	assertPts3(t, want, got[:len(want)], 1e-2)
	assert.Equal(t, 4, base.NumPoints(), "base terrain is only read")

	z, err := res.Tin.ElevationAt(0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 15, z, 1e-9)
}

func TestStamp_InputsUnchanged(t *testing.T) {
	io := NewIo()
	io.Centerline = []math.Vec3{{X: 0, Z: 15}, {X: 5, Z: 15}, {X: 10, Y: 2, Z: 15}}
	io.CrossSections = []*CrossSection{embankment(), nil, embankment()}
	before := io.Clone()

	_, err := Stamp(io)
	require.NoError(t, err)
	assert.Nil(t, io.CrossSections[1], "missing template is filled on a copy")
	assert.True(t, before.CrossSections[0].Equal(io.CrossSections[0]))
	assert.Equal(t, before.Centerline, io.Centerline)
}

func TestStamp_Failures(t *testing.T) {
	io := pairIo(math.Vec3{Z: 15}, math.Vec3{Y: 10, Z: 15}, embankment())
	io.FirstEndCap.Angle = 45.0001
	res, err := Stamp(io)
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Nil(t, res)

	io = pairIo(math.Vec3{Z: 15}, math.Vec3{Y: 10, Z: 15}, embankment())
	io.Bathymetry, err = tin.Triangulate([]math.Vec3{{X: 500, Y: 500}, {X: 510, Y: 500}, {X: 500, Y: 510}})
	require.NoError(t, err)
	res, err = Stamp(io)
	require.ErrorIs(t, err, ErrGeometry)
	assert.Nil(t, res)
}
