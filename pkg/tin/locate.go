package tin

import (
	"fmt"
	stdmath "math"

	"github.com/paulmach/orb"

	"github.com/Faultbox/terrastamp/pkg/math"
)

// baryTolerance admits points on triangle edges despite rounding.
const baryTolerance = 1e-9

// gridIndex buckets triangles by the uniform grid cells their bounding boxes touch.
type gridIndex struct {
	minX, minY   float64
	cellW, cellH float64
	nx, ny       int
	cells        [][]int32
}

func (t *Tin) spatialIndex() *gridIndex {
	t.indexOnce.Do(func() {
		t.index = buildGridIndex(t)
	})
	return t.index
}

func buildGridIndex(t *Tin) *gridIndex {
	b := t.Bounds()
	side := int(stdmath.Sqrt(float64(len(t.triangles))/2)) + 1
	side = min(max(side, 1), 1024)

	g := &gridIndex{
		minX:  b.Min[0],
		minY:  b.Min[1],
		nx:    side,
		ny:    side,
		cellW: (b.Max[0] - b.Min[0]) / float64(side),
		cellH: (b.Max[1] - b.Min[1]) / float64(side),
	}
	if g.cellW <= 0 {
		g.cellW = 1
	}
	if g.cellH <= 0 {
		g.cellH = 1
	}
	g.cells = make([][]int32, g.nx*g.ny)

	for i, tri := range t.triangles {
		tb := orb.Bound{Min: orb.Point{t.points[tri[0]].X, t.points[tri[0]].Y}}
		tb.Max = tb.Min
		tb = tb.Extend(orb.Point{t.points[tri[1]].X, t.points[tri[1]].Y})
		tb = tb.Extend(orb.Point{t.points[tri[2]].X, t.points[tri[2]].Y})
		c0, r0 := g.cell(tb.Min[0], tb.Min[1])
		c1, r1 := g.cell(tb.Max[0], tb.Max[1])
		for r := r0; r <= r1; r++ {
			for c := c0; c <= c1; c++ {
				g.cells[r*g.nx+c] = append(g.cells[r*g.nx+c], int32(i))
			}
		}
	}
	return g
}

func (g *gridIndex) cell(x, y float64) (int, int) {
	c := int((x - g.minX) / g.cellW)
	r := int((y - g.minY) / g.cellH)
	return min(max(c, 0), g.nx-1), min(max(r, 0), g.ny-1)
}

func (g *gridIndex) candidates(x, y float64) []int32 {
	if x < g.minX-g.cellW || y < g.minY-g.cellH ||
		x > g.minX+g.cellW*float64(g.nx+1) || y > g.minY+g.cellH*float64(g.ny+1) {
		return nil
	}
	c, r := g.cell(x, y)
	return g.cells[r*g.nx+c]
}

// TriangleAt returns the index of a triangle containing (x, y).
func (t *Tin) TriangleAt(x, y float64) (int, bool) {
	if len(t.triangles) == 0 {
		return -1, false
	}
	for _, id := range t.spatialIndex().candidates(x, y) {
		if _, ok := t.barycentric(int(id), x, y); ok {
			return int(id), true
		}
	}
	return -1, false
}

// Contains reports whether (x, y) falls inside the triangulated domain.
func (t *Tin) Contains(x, y float64) bool {
	_, ok := t.TriangleAt(x, y)
	return ok
}

// ElevationAt interpolates the surface elevation at (x, y) from the
// barycentric weights of the containing triangle.
func (t *Tin) ElevationAt(x, y float64) (float64, error) {
	id, ok := t.TriangleAt(x, y)
	if !ok {
		return 0, fmt.Errorf("%w: (%.3f, %.3f)", ErrOutsideDomain, x, y)
	}
	w, _ := t.barycentric(id, x, y)
	a, b, c := t.corners(id)
	return w[0]*a.Z + w[1]*b.Z + w[2]*c.Z, nil
}

// AllElevationsAt returns the elevation of every triangle covering (x, y).
// Overlapping surfaces yield more than one value.
func (t *Tin) AllElevationsAt(x, y float64) []float64 {
	if len(t.triangles) == 0 {
		return nil
	}
	var out []float64
	for _, id := range t.spatialIndex().candidates(x, y) {
		w, ok := t.barycentric(int(id), x, y)
		if !ok {
			continue
		}
		a, b, c := t.corners(int(id))
		out = append(out, w[0]*a.Z+w[1]*b.Z+w[2]*c.Z)
	}
	return out
}

// ElevationsAt samples every location, writing NaN where a location lies
// outside the domain.
func (t *Tin) ElevationsAt(locations []math.Vec2) []float64 {
	out := make([]float64, len(locations))
	for i, p := range locations {
		z, err := t.ElevationAt(p.X, p.Y)
		if err != nil {
			z = stdmath.NaN()
		}
		out[i] = z
	}
	return out
}

func (t *Tin) barycentric(id int, px, py float64) ([3]float64, bool) {
	a, b, c := t.corners(id)
	den := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
	if den == 0 {
		return [3]float64{}, false
	}
	wa := ((b.Y-c.Y)*(px-c.X) + (c.X-b.X)*(py-c.Y)) / den
	wb := ((c.Y-a.Y)*(px-c.X) + (a.X-c.X)*(py-c.Y)) / den
	wc := 1 - wa - wb
	if wa < -baryTolerance || wb < -baryTolerance || wc < -baryTolerance {
		return [3]float64{}, false
	}
	return [3]float64{wa, wb, wc}, true
}
