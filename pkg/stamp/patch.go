package stamp

import (
	"fmt"
	stdmath "math"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/terrastamp/pkg/math"
	"github.com/Faultbox/terrastamp/pkg/tin"
)

// BreaklineKind tells which feature of the patch a breakline traces.
type BreaklineKind int

// Breakline kinds, in the order they are emitted.
const (
	CenterlineBreak BreaklineKind = iota
	CrossSectionBreak
	LeftToeBreak
	RightToeBreak
	LeftShoulderBreak
	RightShoulderBreak
	EndCapBreak
)

var breaklineKindNames = []string{
	"centerline", "cross_section", "left_toe", "right_toe",
	"left_shoulder", "right_shoulder", "end_cap",
}

func (k BreaklineKind) String() string {
	if k < 0 || int(k) >= len(breaklineKindNames) {
		return fmt.Sprintf("BreaklineKind(%d)", int(k))
	}
	return breaklineKindNames[k]
}

// Breakline is an ordered chain of point indices that triangulation must keep.
type Breakline struct {
	Kind    BreaklineKind
	Indices []int
}

// Patch is the stamped surface before it is merged with the base terrain.
// Points are laid out as centerline anchors, then every station's left
// side, then every right side, then end cap geometry.
type Patch struct {
	Points     []math.Vec3
	Triangles  []tin.Triangle
	Breaklines []Breakline
}

// Tin returns the patch surface.
func (p *Patch) Tin() (*tin.Tin, error) {
	return tin.New(p.Points, p.Triangles)
}

// Lines returns the breakline index chains.
func (p *Patch) Lines() [][]int {
	out := make([][]int, len(p.Breaklines))
	for i, b := range p.Breaklines {
		out[i] = b.Indices
	}
	return out
}

// chain is one side of a placed station. pts[0] is the anchor.
type chain struct {
	pts      []math.Vec3
	shoulder int
}

func (c chain) toe() math.Vec3      { return c.pts[len(c.pts)-1] }
func (c chain) shoulderPt() math.Vec3 { return c.pts[c.shoulder] }

type station struct {
	place Placement
	sides [2]chain // indexed by Side
}

// BuildPatch turns the centerline and templates of io into a patch.
// When io.Bathymetry is set, side slopes are cut where they meet it.
func BuildPatch(io *Io, opts ...Option) (*Patch, error) {
	o := newOptions(opts)
	placements, err := SamplePath(io.Centerline)
	if err != nil {
		return nil, err
	}
	templates, err := stationTemplates(io)
	if err != nil {
		return nil, err
	}

	caps := map[int]EndCap{0: io.FirstEndCap, len(placements) - 1: io.LastEndCap}
	stations := make([]station, len(placements))
	var g errgroup.Group
	g.SetLimit(o.workers)
	for i, pl := range placements {
		g.Go(func() error {
			var ec *EndCap
			if c, ok := caps[i]; ok {
				ec = &c
			}
			st, err := placeStation(pl, templates[i], ec)
			if err != nil {
				return fmt.Errorf("station %d: %w", i, err)
			}
			if io.Bathymetry != nil {
				clipStation(&st, io.Bathymetry, io.StampingType)
			}
			stations[i] = st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	b := &patchBuilder{}
	idx := b.addStations(stations, true)

	ends := []struct {
		st  station
		ids [2][]int
		cap EndCap
		cs  *CrossSection
	}{
		{stations[0], idx[0], io.FirstEndCap, templates[0]},
		{stations[len(stations)-1], idx[len(idx)-1], io.LastEndCap, templates[len(templates)-1]},
	}
	for _, end := range ends {
		tr, err := end.cap.Generate(end.st.place)
		if err != nil {
			return nil, err
		}
		switch c := end.cap.Cap.(type) {
		case *SlopedAbutment:
			// an empty slope profile only flattens the end
			if len(c.Slope) > 0 {
				b.addAbutment(end.st, end.ids, tr, c)
			}
		case *Guidebank:
			if err := b.addGuidebank(end.st, tr, c, end.cs, io); err != nil {
				return nil, err
			}
		}
	}

	o.logger.Debug("patch built",
		zap.Int("stations", len(stations)),
		zap.Int("points", len(b.patch.Points)),
		zap.Int("triangles", len(b.patch.Triangles)),
		zap.Int("breaklines", len(b.patch.Breaklines)))
	return &b.patch, nil
}

// stationTemplates resolves one clamped template per centerline point.
func stationTemplates(io *Io) ([]*CrossSection, error) {
	n := len(io.Centerline)
	var resolved []*CrossSection
	switch len(io.CrossSections) {
	case 1:
		if io.CrossSections[0] == nil {
			return nil, invalid("cross_sections", "shared template is missing")
		}
		resolved = make([]*CrossSection, n)
		for i := range resolved {
			resolved[i] = io.CrossSections[0]
		}
	case n:
		var err error
		if resolved, err = InterpolateMissing(io.Centerline, io.CrossSections); err != nil {
			return nil, err
		}
	default:
		return nil, invalid("cross_sections", "need 1 or %d templates, got %d", n, len(io.CrossSections))
	}
	out := make([]*CrossSection, n)
	for i, cs := range resolved {
		if cs == nil {
			return nil, invalid("cross_sections", "no template for station %d", i)
		}
		if len(cs.Left) < 1 || len(cs.Right) < 1 {
			return nil, invalid("cross_sections", "station %d needs at least one point per side", i)
		}
		if err := cs.Validate(); err != nil {
			return nil, fmt.Errorf("station %d: %w", i, err)
		}
		out[i] = cs.Clamp()
	}
	return out, nil
}

// wingWallMinCos keeps wing wall slopes from running parallel to the wall.
const wingWallMinCos = 0.1

// placeStation maps a template into world space. ec is nil for interior stations.
func placeStation(pl Placement, cs *CrossSection, ec *EndCap) (station, error) {
	st := station{place: pl}
	for _, side := range []Side{Left, Right} {
		profile, shoulder := cs.Left, cs.LeftShoulder
		if side == Right {
			profile, shoulder = cs.Right, cs.RightShoulder
		}
		if len(profile) == 0 {
			return station{}, invalid(side.String(), "needs at least one point")
		}

		sideNormal := pl.Normal.Scale(side.Sign())
		lateral, scale := sideNormal, pl.Miter
		beyond, stretch := sideNormal, pl.Miter
		if ec != nil {
			frame := ec.Frame(pl)
			lateral = frame.TransformVec(math.Vec2{Y: side.Sign()})
			scale = 1 / stdmath.Cos(math.Deg2Rad(ec.Angle))
			beyond, stretch = sideNormal, 1
			if ww, ok := ec.Cap.(*WingWall); ok {
				d := ww.Local().Points[1]
				d.Y *= side.Sign()
				beyond = frame.TransformVec(d).Normalize()
				stretch = 1 / max(beyond.Dot(sideNormal), wingWallMinCos)
			}
		}
		st.sides[side] = placeSide(pl.Anchor, profile, shoulder, lateral, scale, beyond, stretch)
	}
	return st, nil
}

func placeSide(anchor math.Vec3, profile []math.Vec2, shoulder int, lateral math.Vec2, scale float64, beyond math.Vec2, stretch float64) chain {
	c := chain{pts: make([]math.Vec3, len(profile)), shoulder: shoulder}
	x0, e0 := profile[0].X, profile[0].Y
	c.pts[0] = anchor
	var sh math.Vec2
	for k := 1; k < len(profile); k++ {
		p := profile[k]
		var xy math.Vec2
		if k <= shoulder {
			xy = anchor.XY().Add(lateral.Scale((p.X - x0) * scale))
			if k == shoulder {
				sh = xy
			}
		} else {
			if shoulder == 0 {
				sh = anchor.XY()
			}
			xy = sh.Add(beyond.Scale((p.X - profile[shoulder].X) * stretch))
		}
		c.pts[k] = xy.Vec3(anchor.Z + p.Y - e0)
	}
	return c
}

type patchBuilder struct {
	patch Patch
}

func (b *patchBuilder) add(p math.Vec3) int {
	b.patch.Points = append(b.patch.Points, p)
	return len(b.patch.Points) - 1
}

func (b *patchBuilder) tri(i, j, k int) {
	if i == j || j == k || i == k {
		return
	}
	b.patch.Triangles = append(b.patch.Triangles, tin.Triangle{i, j, k})
}

func (b *patchBuilder) line(kind BreaklineKind, idx []int) {
	if len(idx) < 2 {
		return
	}
	b.patch.Breaklines = append(b.patch.Breaklines, Breakline{Kind: kind, Indices: idx})
}

// addStations appends the anchors, both sides, the strips between
// consecutive stations and the longitudinal breaklines. It returns the
// point indices of every station side, anchor first.
func (b *patchBuilder) addStations(stations []station, crossLines bool) [][2][]int {
	idx := make([][2][]int, len(stations))
	centerline := make([]int, len(stations))
	for i, st := range stations {
		centerline[i] = b.add(st.place.Anchor)
		idx[i][Left] = []int{centerline[i]}
		idx[i][Right] = []int{centerline[i]}
	}
	for _, side := range []Side{Left, Right} {
		for i, st := range stations {
			for _, p := range st.sides[side].pts[1:] {
				idx[i][side] = append(idx[i][side], b.add(p))
			}
		}
	}

	b.line(CenterlineBreak, centerline)
	if crossLines {
		for i := range stations {
			left := idx[i][Left]
			line := make([]int, 0, len(left)+len(idx[i][Right])-1)
			for k := len(left) - 1; k >= 0; k-- {
				line = append(line, left[k])
			}
			line = append(line, idx[i][Right][1:]...)
			b.line(CrossSectionBreak, line)
		}
	}
	toes := [2][]int{}
	shoulders := [2][]int{}
	for i, st := range stations {
		for _, side := range []Side{Left, Right} {
			ids := idx[i][side]
			toes[side] = append(toes[side], ids[len(ids)-1])
			shoulders[side] = append(shoulders[side], ids[st.sides[side].shoulder])
		}
	}
	b.line(LeftToeBreak, toes[Left])
	b.line(RightToeBreak, toes[Right])
	b.line(LeftShoulderBreak, shoulders[Left])
	b.line(RightShoulderBreak, shoulders[Right])

	for i := 0; i+1 < len(stations); i++ {
		for _, side := range []Side{Left, Right} {
			a, c := idx[i][side], idx[i+1][side]
			sa, sc := stations[i].sides[side].shoulder, stations[i+1].sides[side].shoulder
			b.zip(a[:sa+1], c[:sc+1])
			b.zip(a[sa:], c[sc:])
		}
	}
	return idx
}

// zip triangulates the band between two index chains, advancing along
// whichever chain is behind in normalized length.
func (b *patchBuilder) zip(a, c []int) {
	ta, tc := b.params(a), b.params(c)
	i, j := 0, 0
	for i < len(a)-1 || j < len(c)-1 {
		if j == len(c)-1 || (i < len(a)-1 && ta[i+1] <= tc[j+1]) {
			b.tri(a[i], a[i+1], c[j])
			i++
			continue
		}
		b.tri(a[i], c[j+1], c[j])
		j++
	}
}

func (b *patchBuilder) params(ids []int) []float64 {
	t := make([]float64, len(ids))
	total := 0.0
	for k := 1; k < len(ids); k++ {
		total += b.patch.Points[ids[k]].PlanDistance(b.patch.Points[ids[k-1]])
		t[k] = total
	}
	for k := range t {
		if total > planEpsilon {
			t[k] /= total
		} else {
			t[k] = float64(k) / float64(max(len(ids)-1, 1))
		}
	}
	return t
}
