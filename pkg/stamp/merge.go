package stamp

import (
	stdmath "math"

	"go.uber.org/zap"

	"github.com/Faultbox/terrastamp/pkg/math"
	"github.com/Faultbox/terrastamp/pkg/tin"
)

// snap is the plan tolerance under which two points are the same vertex.
const snap = 1e-6

type planKey [2]int64

func keyOf(p math.Vec3) planKey {
	return planKey{int64(stdmath.Round(p.X / snap)), int64(stdmath.Round(p.Y / snap))}
}

// resolve picks the winning elevation among candidates for mode.
func resolve(mode StampingType, zs ...float64) float64 {
	z := zs[0]
	for _, v := range zs[1:] {
		if mode == Cut {
			z = min(z, v)
		} else {
			z = max(z, v)
		}
	}
	return z
}

// Merge folds patch into base and returns the combined surface with the
// patch breaklines renumbered into it. A nil base returns the patch
// surface. Within the patch footprint, Cut keeps the lower of the two
// surfaces, Fill the higher, and Both always keeps the patch.
func Merge(patch *Patch, base *tin.Tin, mode StampingType, opts ...Option) (*tin.Tin, []Breakline, error) {
	o := newOptions(opts)
	surface, err := patch.Tin()
	if err != nil {
		return nil, nil, &GeometryError{Stage: "merge", Reason: err.Error()}
	}
	if base == nil || base.NumTriangles() == 0 {
		return surface, cloneBreaklines(patch.Breaklines), nil
	}

	// unique patch vertices, first occurrence wins the slot
	remap := make([]int, len(patch.Points))
	seen := make(map[planKey]int, len(patch.Points))
	var points []math.Vec3
	for i, p := range patch.Points {
		k := keyOf(p)
		if j, ok := seen[k]; ok {
			remap[i] = j
			points[j].Z = resolve(patchMode(mode), points[j].Z, p.Z)
			continue
		}
		seen[k] = len(points)
		remap[i] = len(points)
		points = append(points, p)
	}

	overlap := false
	for i, p := range points {
		z := p.Z
		if zs := surface.AllElevationsAt(p.X, p.Y); len(zs) > 0 {
			z = resolve(patchMode(mode), append(zs, z)...)
		}
		if zb, err := base.ElevationAt(p.X, p.Y); err == nil {
			overlap = true
			if mode != Both {
				z = resolve(mode, z, zb)
			}
		}
		points[i].Z = z
	}
	nPatch := len(points)

	dropped := 0
	for _, q := range base.Points() {
		if _, ok := seen[keyOf(q)]; ok {
			dropped++
			continue
		}
		zs := surface.AllElevationsAt(q.X, q.Y)
		if len(zs) == 0 {
			points = append(points, q)
			continue
		}
		overlap = true
		if mode == Both {
			dropped++
			continue
		}
		q.Z = resolve(mode, q.Z, resolve(patchMode(mode), zs...))
		points = append(points, q)
	}
	if !overlap {
		return nil, nil, &GeometryError{Stage: "merge", Reason: "patch does not overlap the base terrain"}
	}

	lines := make([]Breakline, 0, len(patch.Breaklines))
	constraintSet := make(map[tin.Edge]struct{})
	var constraints []tin.Edge
	addConstraint := func(a, b int) {
		if a == b {
			return
		}
		e := tin.MakeEdge(a, b)
		if _, ok := constraintSet[e]; ok {
			return
		}
		constraintSet[e] = struct{}{}
		constraints = append(constraints, e)
	}
	for _, bl := range patch.Breaklines {
		var ids []int
		for _, i := range bl.Indices {
			j := remap[i]
			if len(ids) > 0 && ids[len(ids)-1] == j {
				continue
			}
			if len(ids) > 0 {
				addConstraint(ids[len(ids)-1], j)
			}
			ids = append(ids, j)
		}
		lines = append(lines, Breakline{Kind: bl.Kind, Indices: ids})
	}
	for _, e := range surface.BoundaryEdges() {
		addConstraint(remap[e.A], remap[e.B])
	}

	merged, skipped, err := tin.TriangulateConstrained(points, constraints)
	if err != nil {
		return nil, nil, &GeometryError{Stage: "merge", Reason: err.Error()}
	}
	if len(skipped) > 0 {
		o.logger.Warn("breakline segments not honored",
			zap.Int("skipped", len(skipped)),
			zap.Int("constraints", len(constraints)))
	}

	out := merged.Filter(func(i int, _ tin.Triangle) bool {
		c := merged.Centroid(i)
		return surface.Contains(c.X, c.Y) || base.Contains(c.X, c.Y)
	})
	o.logger.Debug("merged patch into base",
		zap.Stringer("mode", mode),
		zap.Int("patch_points", nPatch),
		zap.Int("base_points", base.NumPoints()),
		zap.Int("base_points_dropped", dropped),
		zap.Int("triangles", out.NumTriangles()))
	return out, lines, nil
}

// patchMode is how overlapping parts of the patch itself are resolved.
func patchMode(mode StampingType) StampingType {
	if mode == Cut {
		return Cut
	}
	return Fill
}

func cloneBreaklines(in []Breakline) []Breakline {
	out := make([]Breakline, len(in))
	for i, b := range in {
		out[i] = Breakline{Kind: b.Kind, Indices: append([]int(nil), b.Indices...)}
	}
	return out
}
