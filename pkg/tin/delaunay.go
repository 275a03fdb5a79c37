package tin

import (
	"errors"
	stdmath "math"
	"sort"

	"github.com/Faultbox/terrastamp/pkg/math"
)

// superScale sizes the enclosing triangle relative to the point extent.
const superScale = 100

// mesh is the mutable triangulation used while building a Tin. Vertices
// past the input points are the three enclosing super vertices.
type mesh struct {
	pts   []math.Vec2
	n     int
	tris  []Triangle
	dead  []bool
	edges map[[2]int]int
	fixed map[Edge]bool
	last  int
	eps   float64
}

// Triangulate builds the Delaunay triangulation of points in plan.
// Points sharing a plan location with an earlier point are left unreferenced.
func Triangulate(points []math.Vec3) (*Tin, error) {
	t, _, err := TriangulateConstrained(points, nil)
	return t, err
}

// TriangulateConstrained builds a Delaunay triangulation of points and then
// forces every constraint edge into it. Constraints passing through other
// vertices are split at them. Constraints that would cross an already
// enforced constraint are returned as skipped and left out.
func TriangulateConstrained(points []math.Vec3, constraints []Edge) (*Tin, []Edge, error) {
	if len(points) < 3 {
		return nil, nil, ErrTooFewPoints
	}
	m := newMesh(points)
	alias := make([]int, len(points))
	for i := range points {
		alias[i] = m.insert(i)
	}

	var skipped []Edge
	var enforced []Edge
	for _, c := range constraints {
		if c.A < 0 || c.B < 0 || c.A >= len(points) || c.B >= len(points) {
			skipped = append(skipped, c)
			continue
		}
		ok := true
		for _, part := range m.split(alias[c.A], alias[c.B], alias) {
			if err := m.enforce(part.A, part.B); err != nil {
				ok = false
				continue
			}
			enforced = append(enforced, part)
		}
		if !ok {
			skipped = append(skipped, c)
		}
	}

	t := &Tin{points: append([]math.Vec3(nil), points...)}
	for id, tri := range m.tris {
		if m.dead[id] || tri[0] >= m.n || tri[1] >= m.n || tri[2] >= m.n {
			continue
		}
		if orient(m.pts[tri[0]], m.pts[tri[1]], m.pts[tri[2]]) <= m.eps {
			continue
		}
		t.triangles = append(t.triangles, canonical(tri))
	}
	if len(t.triangles) == 0 {
		return nil, nil, ErrTooFewPoints
	}
	sort.Slice(t.triangles, func(i, j int) bool {
		a, b := t.triangles[i], t.triangles[j]
		for k := range 3 {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return false
	})
	seen := make(map[Edge]struct{}, len(enforced))
	for _, e := range enforced {
		if _, dup := seen[e]; !dup && e.A != e.B {
			seen[e] = struct{}{}
			t.constraints = append(t.constraints, e)
		}
	}
	return t, skipped, nil
}

func newMesh(points []math.Vec3) *mesh {
	n := len(points)
	m := &mesh{
		pts:   make([]math.Vec2, n, n+3),
		n:     n,
		edges: make(map[[2]int]int, n*6),
		fixed: make(map[Edge]bool),
	}
	minX, minY := stdmath.Inf(1), stdmath.Inf(1)
	maxX, maxY := stdmath.Inf(-1), stdmath.Inf(-1)
	for i, p := range points {
		m.pts[i] = p.XY()
		minX, maxX = stdmath.Min(minX, p.X), stdmath.Max(maxX, p.X)
		minY, maxY = stdmath.Min(minY, p.Y), stdmath.Max(maxY, p.Y)
	}
	d := stdmath.Max(maxX-minX, maxY-minY)
	if d == 0 {
		d = 1
	}
	m.eps = 1e-12 * d * d
	midX, midY := (minX+maxX)/2, (minY+maxY)/2
	m.pts = append(m.pts,
		math.Vec2{X: midX - superScale*d, Y: midY - d},
		math.Vec2{X: midX + superScale*d, Y: midY - d},
		math.Vec2{X: midX, Y: midY + superScale*d},
	)
	m.addTri(n, n+1, n+2)
	return m
}

func (m *mesh) addTri(a, b, c int) int {
	id := len(m.tris)
	m.tris = append(m.tris, Triangle{a, b, c})
	m.dead = append(m.dead, false)
	m.edges[[2]int{a, b}] = id
	m.edges[[2]int{b, c}] = id
	m.edges[[2]int{c, a}] = id
	m.last = id
	return id
}

func (m *mesh) removeTri(id int) {
	t := m.tris[id]
	m.dead[id] = true
	for k := range 3 {
		e := [2]int{t[k], t[(k+1)%3]}
		if m.edges[e] == id {
			delete(m.edges, e)
		}
	}
}

// across returns the triangle on the other side of directed edge a->b.
func (m *mesh) across(a, b int) (int, bool) {
	id, ok := m.edges[[2]int{b, a}]
	return id, ok
}

func (m *mesh) hasEdge(a, b int) bool {
	_, ok := m.edges[[2]int{a, b}]
	if !ok {
		_, ok = m.edges[[2]int{b, a}]
	}
	return ok
}

// locate walks from the last created triangle toward p.
func (m *mesh) locate(p math.Vec2) int {
	id := m.last
	for steps := 0; steps <= len(m.tris); steps++ {
		t := m.tris[id]
		moved := false
		for k := range 3 {
			a, b := t[k], t[(k+1)%3]
			if orient(m.pts[a], m.pts[b], p) < 0 {
				if next, ok := m.across(a, b); ok {
					id = next
					moved = true
					break
				}
			}
		}
		if !moved {
			return id
		}
	}
	for id, t := range m.tris {
		if m.dead[id] {
			continue
		}
		if orient(m.pts[t[0]], m.pts[t[1]], p) >= 0 &&
			orient(m.pts[t[1]], m.pts[t[2]], p) >= 0 &&
			orient(m.pts[t[2]], m.pts[t[0]], p) >= 0 {
			return id
		}
	}
	return -1
}

// insert adds vertex i with Bowyer-Watson and returns the vertex that now
// represents its location, which differs from i for duplicates.
func (m *mesh) insert(i int) int {
	p := m.pts[i]
	start := m.locate(p)
	if start < 0 {
		return i
	}
	for _, v := range m.tris[start] {
		if v < m.n && m.pts[v].Distance(p) <= stdmath.Sqrt(m.eps) {
			return v
		}
	}

	bad := map[int]bool{start: true}
	queue := []int{start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		t := m.tris[id]
		for k := range 3 {
			a, b := t[k], t[(k+1)%3]
			next, ok := m.across(a, b)
			if !ok || bad[next] {
				continue
			}
			if m.inCircle(next, p) {
				bad[next] = true
				queue = append(queue, next)
			}
		}
	}

	// Shrink the cavity until every boundary edge sees p on its left.
	var boundary [][2]int
	for attempt := 0; attempt <= len(bad); attempt++ {
		boundary = boundary[:0]
		offender := -1
		for id := range bad {
			t := m.tris[id]
			for k := range 3 {
				a, b := t[k], t[(k+1)%3]
				if next, ok := m.across(a, b); ok && bad[next] {
					continue
				}
				boundary = append(boundary, [2]int{a, b})
				if orient(m.pts[a], m.pts[b], p) <= 0 && id != start && offender < 0 {
					offender = id
				}
			}
		}
		if offender < 0 {
			break
		}
		delete(bad, offender)
	}

	for id := range bad {
		m.removeTri(id)
	}
	for _, e := range boundary {
		m.addTri(e[0], e[1], i)
	}
	return i
}

// inCircle reports whether p lies strictly inside the circumcircle of triangle id.
func (m *mesh) inCircle(id int, p math.Vec2) bool {
	t := m.tris[id]
	a, b, c := m.pts[t[0]].Sub(p), m.pts[t[1]].Sub(p), m.pts[t[2]].Sub(p)
	det := (a.X*a.X+a.Y*a.Y)*(b.X*c.Y-c.X*b.Y) -
		(b.X*b.X+b.Y*b.Y)*(a.X*c.Y-c.X*a.Y) +
		(c.X*c.X+c.Y*c.Y)*(a.X*b.Y-b.X*a.Y)
	return det > 0
}

var (
	errConstraintCrossing = errors.New("tin: constraint crosses an enforced constraint")
	errConstraintStuck    = errors.New("tin: constraint could not be recovered")
)

// split breaks a->b at every other vertex lying on the segment.
func (m *mesh) split(a, b int, alias []int) []Edge {
	if a == b {
		return nil
	}
	pa, pb := m.pts[a], m.pts[b]
	seg := pb.Sub(pa)
	length2 := seg.Dot(seg)
	tol := stdmath.Sqrt(m.eps)

	type stop struct {
		t float64
		v int
	}
	var stops []stop
	for v := 0; v < m.n; v++ {
		if alias[v] != v || v == a || v == b {
			continue
		}
		d := m.pts[v].Sub(pa)
		t := d.Dot(seg) / length2
		if t <= 0 || t >= 1 {
			continue
		}
		if stdmath.Abs(seg.Cross(d))/stdmath.Sqrt(length2) <= tol {
			stops = append(stops, stop{t, v})
		}
	}
	sort.Slice(stops, func(i, j int) bool { return stops[i].t < stops[j].t })

	parts := make([]Edge, 0, len(stops)+1)
	prev := a
	for _, s := range stops {
		parts = append(parts, MakeEdge(prev, s.v))
		prev = s.v
	}
	return append(parts, MakeEdge(prev, b))
}

// enforce recovers edge a-b by flipping the edges that cross it.
func (m *mesh) enforce(a, b int) error {
	if a == b {
		return nil
	}
	e := MakeEdge(a, b)
	if m.hasEdge(a, b) {
		m.fixed[e] = true
		return nil
	}
	pa, pb := m.pts[a], m.pts[b]

	var queue [][2]int
	seen := make(map[Edge]bool)
	for id, t := range m.tris {
		if m.dead[id] {
			continue
		}
		for k := range 3 {
			u, v := t[k], t[(k+1)%3]
			ue := MakeEdge(u, v)
			if seen[ue] || u == a || u == b || v == a || v == b {
				continue
			}
			if crosses(pa, pb, m.pts[u], m.pts[v]) {
				if m.fixed[ue] {
					return errConstraintCrossing
				}
				seen[ue] = true
				queue = append(queue, [2]int{u, v})
			}
		}
	}

	var created [][2]int
	limit := 50*len(queue) + 100
	for iter := 0; len(queue) > 0; iter++ {
		if iter > limit {
			return errConstraintStuck
		}
		u, v := queue[0][0], queue[0][1]
		queue = queue[1:]
		t1, ok1 := m.edges[[2]int{u, v}]
		t2, ok2 := m.edges[[2]int{v, u}]
		if !ok1 || !ok2 {
			continue
		}
		w := third(m.tris[t1], u, v)
		x := third(m.tris[t2], v, u)
		if !m.convex(u, x, v, w) {
			queue = append(queue, [2]int{u, v})
			continue
		}
		m.removeTri(t1)
		m.removeTri(t2)
		m.addTri(u, x, w)
		m.addTri(x, v, w)
		if crosses(pa, pb, m.pts[w], m.pts[x]) {
			queue = append(queue, [2]int{w, x})
		} else {
			created = append(created, [2]int{w, x})
		}
	}
	if !m.hasEdge(a, b) {
		return errConstraintStuck
	}
	m.fixed[e] = true

	for pass := 0; pass < len(created)+1; pass++ {
		changed := false
		for i, ce := range created {
			w, x := ce[0], ce[1]
			if MakeEdge(w, x) == e || m.fixed[MakeEdge(w, x)] {
				continue
			}
			t1, ok1 := m.edges[[2]int{w, x}]
			t2, ok2 := m.edges[[2]int{x, w}]
			if !ok1 || !ok2 {
				continue
			}
			p := third(m.tris[t1], w, x)
			q := third(m.tris[t2], x, w)
			if m.inCircle(t1, m.pts[q]) && m.convex(w, q, x, p) {
				m.removeTri(t1)
				m.removeTri(t2)
				m.addTri(w, q, p)
				m.addTri(q, x, p)
				created[i] = [2]int{p, q}
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return nil
}

// convex reports whether quad abcd, given counter-clockwise, is strictly convex.
func (m *mesh) convex(a, b, c, d int) bool {
	pa, pb, pc, pd := m.pts[a], m.pts[b], m.pts[c], m.pts[d]
	return orient(pa, pb, pc) > m.eps && orient(pb, pc, pd) > m.eps &&
		orient(pc, pd, pa) > m.eps && orient(pd, pa, pb) > m.eps
}

// third returns the vertex of t opposite the directed edge u->v.
func third(t Triangle, u, v int) int {
	for k := range 3 {
		if t[k] == u && t[(k+1)%3] == v {
			return t[(k+2)%3]
		}
	}
	return -1
}

// crosses reports whether segments ab and cd intersect at a single interior point.
func crosses(a, b, c, d math.Vec2) bool {
	o1 := orient(a, b, c)
	o2 := orient(a, b, d)
	o3 := orient(c, d, a)
	o4 := orient(c, d, b)
	return ((o1 > 0 && o2 < 0) || (o1 < 0 && o2 > 0)) &&
		((o3 > 0 && o4 < 0) || (o3 < 0 && o4 > 0))
}

// canonical rotates t so its smallest index comes first.
func canonical(t Triangle) Triangle {
	switch {
	case t[1] < t[0] && t[1] < t[2]:
		return Triangle{t[1], t[2], t[0]}
	case t[2] < t[0] && t[2] < t[1]:
		return Triangle{t[2], t[0], t[1]}
	}
	return t
}
