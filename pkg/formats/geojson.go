package formats

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/Faultbox/terrastamp/pkg/stamp"
	"github.com/Faultbox/terrastamp/pkg/tin"
)

// GeoJSON has no third coordinate in orb, so elevations travel in the
// "z" property of each feature, one value per vertex.

// BreaklinesGeoJSON returns one LineString feature per breakline, with
// its kind in the "kind" property.
func BreaklinesGeoJSON(surface *tin.Tin, lines []stamp.Breakline) (*geojson.FeatureCollection, error) {
	fc := geojson.NewFeatureCollection()
	for i, bl := range lines {
		ls := make(orb.LineString, len(bl.Indices))
		zs := make([]float64, len(bl.Indices))
		for j, idx := range bl.Indices {
			if idx < 0 || idx >= surface.NumPoints() {
				return nil, fmt.Errorf("breakline %d: index %d out of range", i, idx)
			}
			p := surface.Point(idx)
			ls[j] = orb.Point{p.X, p.Y}
			zs[j] = p.Z
		}
		f := geojson.NewFeature(ls)
		f.Properties["kind"] = bl.Kind.String()
		f.Properties["z"] = zs
		fc.Append(f)
	}
	return fc, nil
}

// TinGeoJSON returns one Polygon feature per triangle.
func TinGeoJSON(surface *tin.Tin) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for i := 0; i < surface.NumTriangles(); i++ {
		tri := surface.Triangle(i)
		ring := make(orb.Ring, 0, 4)
		zs := make([]float64, 0, 4)
		for _, idx := range append(tri[:], tri[0]) {
			p := surface.Point(idx)
			ring = append(ring, orb.Point{p.X, p.Y})
			zs = append(zs, p.Z)
		}
		f := geojson.NewFeature(orb.Polygon{ring})
		f.Properties["z"] = zs
		fc.Append(f)
	}
	return fc
}

// WriteGeoJSONFile writes the breaklines, followed by the triangles when
// withTriangles is set, to a GeoJSON file.
func WriteGeoJSONFile(path string, surface *tin.Tin, lines []stamp.Breakline, withTriangles bool) error {
	fc, err := BreaklinesGeoJSON(surface, lines)
	if err != nil {
		return err
	}
	if withTriangles {
		fc.Features = append(fc.Features, TinGeoJSON(surface).Features...)
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encoding geojson: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
