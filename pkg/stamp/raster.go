package stamp

import (
	"fmt"
	stdmath "math"

	"github.com/Faultbox/terrastamp/pkg/math"
	"github.com/Faultbox/terrastamp/pkg/tin"
)

// GridNoData is the no-data value assumed for ASCII grids whose header
// carries no NODATA_value. Rasters built in code default to NaN.
const GridNoData = -9999.0

// StampRaster is a regular elevation grid. MinPoint is the center of the
// lower-left cell. Vals run row by row from the top-left cell to the
// bottom-right cell.
type StampRaster struct {
	NumPixelsX int
	NumPixelsY int
	PixelSizeX float64
	PixelSizeY float64
	MinPoint   math.Vec2
	Vals       []float64
	NoData     float64
}

// NewStampRaster copies vals into a validated raster.
func NewStampRaster(nx, ny int, dx, dy float64, minPt math.Vec2, vals []float64, noData float64) (*StampRaster, error) {
	r := &StampRaster{
		NumPixelsX: nx,
		NumPixelsY: ny,
		PixelSizeX: dx,
		PixelSizeY: dy,
		MinPoint:   minPt,
		Vals:       append([]float64(nil), vals...),
		NoData:     noData,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// NewEmptyRaster returns a raster of the given shape filled with noData.
func NewEmptyRaster(nx, ny int, dx, dy float64, minPt math.Vec2, noData float64) (*StampRaster, error) {
	if nx <= 0 || ny <= 0 {
		return nil, invalid("raster", "dimensions must be positive, got %dx%d", nx, ny)
	}
	vals := make([]float64, nx*ny)
	for i := range vals {
		vals[i] = noData
	}
	return NewStampRaster(nx, ny, dx, dy, minPt, vals, noData)
}

// Validate checks the grid shape.
func (r *StampRaster) Validate() error {
	switch {
	case r.NumPixelsX <= 0 || r.NumPixelsY <= 0:
		return invalid("raster", "dimensions must be positive, got %dx%d", r.NumPixelsX, r.NumPixelsY)
	case !(r.PixelSizeX > 0) || !(r.PixelSizeY > 0):
		return invalid("raster", "pixel sizes must be positive, got %vx%v", r.PixelSizeX, r.PixelSizeY)
	case len(r.Vals) != r.NumPixelsX*r.NumPixelsY:
		return invalid("raster", "have %d values for %dx%d cells", len(r.Vals), r.NumPixelsX, r.NumPixelsY)
	}
	return nil
}

// CellIndex returns the index of (col, row), or -1 outside the grid.
// Row 0 is the top row.
func (r *StampRaster) CellIndex(col, row int) int {
	if col < 0 || row < 0 || col >= r.NumPixelsX || row >= r.NumPixelsY {
		return -1
	}
	return row*r.NumPixelsX + col
}

// ColRow returns the column and row of a cell index, or (-1, -1) outside the grid.
func (r *StampRaster) ColRow(index int) (int, int) {
	if index < 0 || index >= r.NumPixelsX*r.NumPixelsY {
		return -1, -1
	}
	return index % r.NumPixelsX, index / r.NumPixelsX
}

// CellCenter returns the plan location of a cell center.
func (r *StampRaster) CellCenter(index int) math.Vec2 {
	col, row := r.ColRow(index)
	return math.Vec2{
		X: r.MinPoint.X + float64(col)*r.PixelSizeX,
		Y: r.MinPoint.Y + float64(r.NumPixelsY-1-row)*r.PixelSizeY,
	}
}

// IsNoData reports whether v is the no-data sentinel. A NaN sentinel
// matches NaN values.
func (r *StampRaster) IsNoData(v float64) bool {
	if stdmath.IsNaN(r.NoData) {
		return stdmath.IsNaN(v)
	}
	return v == r.NoData
}

// Clone returns a deep copy.
func (r *StampRaster) Clone() *StampRaster {
	if r == nil {
		return nil
	}
	out := *r
	out.Vals = append([]float64(nil), r.Vals...)
	return &out
}

// Equal compares shape and values, treating NaN as equal to NaN.
func (r *StampRaster) Equal(other *StampRaster) bool {
	if r == nil || other == nil {
		return r == other
	}
	if r.NumPixelsX != other.NumPixelsX || r.NumPixelsY != other.NumPixelsY ||
		r.PixelSizeX != other.PixelSizeX || r.PixelSizeY != other.PixelSizeY ||
		r.MinPoint != other.MinPoint || !sameFloat(r.NoData, other.NoData) ||
		len(r.Vals) != len(other.Vals) {
		return false
	}
	for i := range r.Vals {
		if !sameFloat(r.Vals[i], other.Vals[i]) {
			return false
		}
	}
	return true
}

func (r *StampRaster) String() string {
	return fmt.Sprintf("StampRaster{pixels: %dx%d, size: %gx%g, min: (%g, %g), no_data: %g}",
		r.NumPixelsX, r.NumPixelsY, r.PixelSizeX, r.PixelSizeY, r.MinPoint.X, r.MinPoint.Y, r.NoData)
}

func sameFloat(a, b float64) bool {
	return a == b || (stdmath.IsNaN(a) && stdmath.IsNaN(b))
}

// ToTin triangulates the cell centers, two triangles per block of four
// valid neighbouring cells. No-data cells leave holes.
func (r *StampRaster) ToTin() (*tin.Tin, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	ids := make([]int, len(r.Vals))
	var points []math.Vec3
	for i, v := range r.Vals {
		ids[i] = -1
		if r.IsNoData(v) {
			continue
		}
		ids[i] = len(points)
		points = append(points, r.CellCenter(i).Vec3(v))
	}

	var tris []tin.Triangle
	for row := 0; row+1 < r.NumPixelsY; row++ {
		for col := 0; col+1 < r.NumPixelsX; col++ {
			tl := ids[r.CellIndex(col, row)]
			tr := ids[r.CellIndex(col+1, row)]
			bl := ids[r.CellIndex(col, row+1)]
			br := ids[r.CellIndex(col+1, row+1)]
			if tl < 0 || tr < 0 || bl < 0 || br < 0 {
				continue
			}
			tris = append(tris, tin.Triangle{bl, br, tr}, tin.Triangle{bl, tr, tl})
		}
	}
	return tin.New(points, tris)
}
