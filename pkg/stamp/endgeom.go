package stamp

import (
	"fmt"
	stdmath "math"

	"github.com/Faultbox/terrastamp/pkg/math"
)

// arcStep is the largest angular step of an abutment arc.
var arcStep = math.Deg2Rad(15)

// addAbutment rounds a terminus: on each side an arc sweeps from the front
// crest corner to the toe while its radius and elevation blend from the
// front values to the toe values. The arcs are fanned from the shoulders
// and the front crest is closed between the two front corners.
func (b *patchBuilder) addAbutment(st station, ids [2][]int, tr Transition, a *SlopedAbutment) {
	outward := tr.Frame.TransformVec(math.Vec2{X: 1}).Normalize()
	drop := a.Drop()

	var arcs [2][]int
	for _, side := range []Side{Left, Right} {
		ch := st.sides[side]
		sh, toe := ch.shoulderPt(), ch.toe()
		front := sh.XY().Add(outward.Scale(a.MaxX)).Vec3(sh.Z + drop)

		toeDir := toe.XY().Sub(sh.XY())
		reach := toeDir.Length()
		if reach <= planEpsilon {
			toeDir = st.place.Normal.Scale(side.Sign())
		} else {
			toeDir = toeDir.Scale(1 / reach)
		}
		sweep := outward.Angle(toeDir)
		n := max(1, int(stdmath.Abs(sweep)/arcStep))
		for k := range n {
			f := float64(k) / float64(n)
			r := a.MaxX + (reach-a.MaxX)*f
			z := front.Z + (toe.Z-front.Z)*f
			p := sh.XY().Add(outward.Rotate(sweep * f).Scale(r))
			arcs[side] = append(arcs[side], b.add(p.Vec3(z)))
		}

		shIdx, toeIdx := ids[side][ch.shoulder], ids[side][len(ids[side])-1]
		fan := append(append([]int(nil), arcs[side]...), toeIdx)
		for k := 0; k+1 < len(fan); k++ {
			b.tri(shIdx, fan[k], fan[k+1])
		}
	}

	left, right := ids[Left], ids[Right]
	crest := make([]int, 0, st.sides[Left].shoulder+st.sides[Right].shoulder+1)
	for k := st.sides[Left].shoulder; k >= 0; k-- {
		crest = append(crest, left[k])
	}
	crest = append(crest, right[1:st.sides[Right].shoulder+1]...)
	lf, rf := arcs[Left][0], arcs[Right][0]
	for k := 0; k+1 < len(crest); k++ {
		b.tri(lf, crest[k], crest[k+1])
	}
	b.tri(lf, crest[len(crest)-1], rf)

	outline := []int{left[len(left)-1]}
	for k := len(arcs[Left]) - 1; k >= 0; k-- {
		outline = append(outline, arcs[Left][k])
	}
	outline = append(outline, arcs[Right]...)
	outline = append(outline, right[len(right)-1])
	b.line(EndCapBreak, outline)
}

// addGuidebank stamps a levee along the guidebank curve. Its crest is
// Width wide at the shoulder elevation of the terminus template and its
// side slopes continue that template beyond the shoulder.
func (b *patchBuilder) addGuidebank(st station, tr Transition, g *Guidebank, cs *CrossSection, io *Io) error {
	if g.Radius1 <= planEpsilon && g.Radius2 <= planEpsilon {
		return nil
	}
	sub := &CrossSection{
		Left:          guidebankProfile(cs.Left, cs.LeftShoulder, g.Width),
		Right:         guidebankProfile(cs.Right, cs.RightShoulder, g.Width),
		LeftShoulder:  1,
		RightShoulder: 1,
	}
	crestProfile, crestShoulder := cs.Left, cs.LeftShoulder
	if g.Side == Right {
		crestProfile, crestShoulder = cs.Right, cs.RightShoulder
	}
	z := st.place.Anchor.Z + crestProfile[crestShoulder].Y - crestProfile[0].Y

	world := tr.World()
	center := make([]math.Vec3, len(world))
	for i, p := range world {
		center[i] = p.Vec3(z)
	}
	placements, err := SamplePath(center)
	if err != nil {
		return &GeometryError{Stage: "guidebank", Reason: err.Error()}
	}
	stations := make([]station, len(placements))
	for i, pl := range placements {
		s, err := placeStation(pl, sub, nil)
		if err != nil {
			return fmt.Errorf("guidebank station %d: %w", i, err)
		}
		if io.Bathymetry != nil {
			clipStation(&s, io.Bathymetry, io.StampingType)
		}
		stations[i] = s
	}

	mark := len(b.patch.Breaklines)
	b.addStations(stations, false)
	for i := mark; i < len(b.patch.Breaklines); i++ {
		b.patch.Breaklines[i].Kind = EndCapBreak
	}
	return nil
}

// guidebankProfile builds a crest of the given width at the shoulder
// elevation followed by the slope beyond the shoulder.
func guidebankProfile(profile []math.Vec2, shoulder int, width float64) []math.Vec2 {
	sh := profile[shoulder]
	out := []math.Vec2{{Y: sh.Y}, {X: width / 2, Y: sh.Y}}
	for _, p := range profile[shoulder+1:] {
		out = append(out, math.Vec2{X: p.X - sh.X + width/2, Y: p.Y})
	}
	return out
}
