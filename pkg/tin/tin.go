// Package tin implements triangulated irregular networks: Delaunay and
// constrained triangulation, elevation queries and structural copies.
package tin

import (
	"errors"
	"fmt"
	stdmath "math"
	"sort"
	"sync"

	"github.com/paulmach/orb"

	"github.com/Faultbox/terrastamp/pkg/math"
)

// TIN errors.
var (
	ErrOutsideDomain   = errors.New("tin: location outside triangulated domain")
	ErrTooFewPoints    = errors.New("tin: at least 3 non-collinear points required")
	ErrInvalidTriangle = errors.New("tin: triangle references a missing vertex")
)

// Triangle holds three vertex indices in counter-clockwise plan order.
type Triangle [3]int

// Edge is an undirected edge between two vertex indices, A < B.
type Edge struct {
	A, B int
}

// MakeEdge returns the edge between a and b with ordered endpoints.
func MakeEdge(a, b int) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{a, b}
}

// Tin is an immutable triangulated surface.
// The zero value is an empty surface.
type Tin struct {
	points      []math.Vec3
	triangles   []Triangle
	constraints []Edge

	indexOnce sync.Once
	index     *gridIndex
}

// New builds a Tin from explicit points and triangles.
// Both slices are copied. Clockwise triangles are reoriented and
// zero-area triangles are dropped.
func New(points []math.Vec3, triangles []Triangle) (*Tin, error) {
	t := &Tin{
		points:    append([]math.Vec3(nil), points...),
		triangles: make([]Triangle, 0, len(triangles)),
	}
	eps := areaEpsilon(points)
	for i, tri := range triangles {
		for _, v := range tri {
			if v < 0 || v >= len(points) {
				return nil, fmt.Errorf("%w: triangle %d vertex %d", ErrInvalidTriangle, i, v)
			}
		}
		o := orient(points[tri[0]].XY(), points[tri[1]].XY(), points[tri[2]].XY())
		if stdmath.Abs(o) <= eps {
			continue
		}
		if o < 0 {
			tri[1], tri[2] = tri[2], tri[1]
		}
		t.triangles = append(t.triangles, tri)
	}
	return t, nil
}

// NumPoints returns the number of vertices.
func (t *Tin) NumPoints() int { return len(t.points) }

// NumTriangles returns the number of triangles.
func (t *Tin) NumTriangles() int { return len(t.triangles) }

// Point returns vertex i.
func (t *Tin) Point(i int) math.Vec3 { return t.points[i] }

// Triangle returns triangle i.
func (t *Tin) Triangle(i int) Triangle { return t.triangles[i] }

// Points returns a copy of the vertices.
func (t *Tin) Points() []math.Vec3 {
	return append([]math.Vec3(nil), t.points...)
}

// Triangles returns a copy of the triangles.
func (t *Tin) Triangles() []Triangle {
	return append([]Triangle(nil), t.triangles...)
}

// Constraints returns the constrained edges the surface was built with.
func (t *Tin) Constraints() []Edge {
	return append([]Edge(nil), t.constraints...)
}

// Clone returns a deep copy that shares no memory with t.
func (t *Tin) Clone() *Tin {
	return &Tin{
		points:      append([]math.Vec3(nil), t.points...),
		triangles:   append([]Triangle(nil), t.triangles...),
		constraints: append([]Edge(nil), t.constraints...),
	}
}

// Equal reports whether t and other have identical vertices and triangles.
func (t *Tin) Equal(other *Tin) bool {
	if t == nil || other == nil {
		return t == other
	}
	if len(t.points) != len(other.points) || len(t.triangles) != len(other.triangles) {
		return false
	}
	for i := range t.points {
		if t.points[i] != other.points[i] {
			return false
		}
	}
	for i := range t.triangles {
		if t.triangles[i] != other.triangles[i] {
			return false
		}
	}
	return true
}

// Bounds returns the plan bounding box of all vertices.
func (t *Tin) Bounds() orb.Bound {
	if len(t.points) == 0 {
		return orb.Bound{}
	}
	b := orb.Bound{
		Min: orb.Point{t.points[0].X, t.points[0].Y},
		Max: orb.Point{t.points[0].X, t.points[0].Y},
	}
	for _, p := range t.points[1:] {
		b = b.Extend(orb.Point{p.X, p.Y})
	}
	return b
}

// Edges returns every triangle edge once, sorted.
func (t *Tin) Edges() []Edge {
	seen := make(map[Edge]struct{}, len(t.triangles)*3/2)
	for _, tri := range t.triangles {
		for k := range 3 {
			seen[MakeEdge(tri[k], tri[(k+1)%3])] = struct{}{}
		}
	}
	return sortedEdges(seen)
}

// BoundaryEdges returns the edges used by exactly one triangle, sorted.
func (t *Tin) BoundaryEdges() []Edge {
	count := make(map[Edge]int, len(t.triangles)*3/2)
	for _, tri := range t.triangles {
		for k := range 3 {
			count[MakeEdge(tri[k], tri[(k+1)%3])]++
		}
	}
	boundary := make(map[Edge]struct{})
	for e, n := range count {
		if n == 1 {
			boundary[e] = struct{}{}
		}
	}
	return sortedEdges(boundary)
}

// HasEdge reports whether a and b are joined by a triangle edge.
func (t *Tin) HasEdge(a, b int) bool {
	for _, tri := range t.triangles {
		for k := range 3 {
			if MakeEdge(tri[k], tri[(k+1)%3]) == MakeEdge(a, b) {
				return true
			}
		}
	}
	return false
}

// Filter returns a new Tin with the same vertices and only the triangles
// for which keep returns true.
func (t *Tin) Filter(keep func(i int, tri Triangle) bool) *Tin {
	out := &Tin{
		points:      append([]math.Vec3(nil), t.points...),
		constraints: append([]Edge(nil), t.constraints...),
	}
	for i, tri := range t.triangles {
		if keep(i, tri) {
			out.triangles = append(out.triangles, tri)
		}
	}
	return out
}

// TriangleArea returns the 3D surface area of triangle i.
func (t *Tin) TriangleArea(i int) float64 {
	a, b, c := t.corners(i)
	return b.Sub(a).Cross(c.Sub(a)).Length() / 2
}

// TriangleNormal returns the unit normal of triangle i.
func (t *Tin) TriangleNormal(i int) math.Vec3 {
	a, b, c := t.corners(i)
	return b.Sub(a).Cross(c.Sub(a)).Normalize()
}

// Centroid returns the plan centroid of triangle i.
func (t *Tin) Centroid(i int) math.Vec2 {
	a, b, c := t.corners(i)
	return math.Vec2{X: (a.X + b.X + c.X) / 3, Y: (a.Y + b.Y + c.Y) / 3}
}

func (t *Tin) corners(i int) (math.Vec3, math.Vec3, math.Vec3) {
	tri := t.triangles[i]
	return t.points[tri[0]], t.points[tri[1]], t.points[tri[2]]
}

// Summary holds surface statistics.
type Summary struct {
	Points    int
	Triangles int
	Edges     int
	MinZ      float64
	MaxZ      float64
	MeanZ     float64
	Area      float64
}

// String formats the summary for display.
func (s Summary) String() string {
	return fmt.Sprintf("points=%d triangles=%d edges=%d z=[%.3f, %.3f] mean=%.3f area=%.3f",
		s.Points, s.Triangles, s.Edges, s.MinZ, s.MaxZ, s.MeanZ, s.Area)
}

// Summary computes elevation and area statistics.
func (t *Tin) Summary() Summary {
	s := Summary{
		Points:    len(t.points),
		Triangles: len(t.triangles),
		Edges:     len(t.Edges()),
	}
	if len(t.points) > 0 {
		s.MinZ, s.MaxZ = t.points[0].Z, t.points[0].Z
		var sum float64
		for _, p := range t.points {
			s.MinZ = stdmath.Min(s.MinZ, p.Z)
			s.MaxZ = stdmath.Max(s.MaxZ, p.Z)
			sum += p.Z
		}
		s.MeanZ = sum / float64(len(t.points))
	}
	for i := range t.triangles {
		s.Area += t.TriangleArea(i)
	}
	return s
}

func sortedEdges(set map[Edge]struct{}) []Edge {
	edges := make([]Edge, 0, len(set))
	for e := range set {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].A != edges[j].A {
			return edges[i].A < edges[j].A
		}
		return edges[i].B < edges[j].B
	})
	return edges
}

// orient returns twice the signed area of abc; positive when counter-clockwise.
func orient(a, b, c math.Vec2) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (c.X-a.X)*(b.Y-a.Y)
}

// areaEpsilon scales the zero-area threshold to the extent of pts.
func areaEpsilon(pts []math.Vec3) float64 {
	if len(pts) == 0 {
		return 0
	}
	minX, minY, maxX, maxY := pts[0].X, pts[0].Y, pts[0].X, pts[0].Y
	for _, p := range pts {
		minX, maxX = stdmath.Min(minX, p.X), stdmath.Max(maxX, p.X)
		minY, maxY = stdmath.Min(minY, p.Y), stdmath.Max(maxY, p.Y)
	}
	d := stdmath.Max(maxX-minX, maxY-minY)
	if d == 0 {
		d = 1
	}
	return 1e-12 * d * d
}
