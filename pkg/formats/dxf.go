package formats

import (
	"fmt"
	"strings"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"

	"github.com/Faultbox/terrastamp/pkg/stamp"
	"github.com/Faultbox/terrastamp/pkg/tin"
)

// TinLayer is the DXF layer holding surface faces.
const TinLayer = "TIN"

// breaklineColors gives each breakline layer a distinct ACI color.
var breaklineColors = map[stamp.BreaklineKind]color.ColorNumber{
	stamp.CenterlineBreak:    color.Red,
	stamp.CrossSectionBreak:  color.White,
	stamp.LeftToeBreak:       color.Green,
	stamp.RightToeBreak:      color.Green,
	stamp.LeftShoulderBreak:  color.Yellow,
	stamp.RightShoulderBreak: color.Yellow,
	stamp.EndCapBreak:        color.Magenta,
}

// LayerName returns the DXF layer used for a breakline kind.
func LayerName(k stamp.BreaklineKind) string {
	return "BRK_" + strings.ToUpper(k.String())
}

// WriteDXFFile writes breaklines as 3-D LINE entities, one layer per kind,
// and the triangles as 3DFACE entities on TinLayer when withTriangles is set.
func WriteDXFFile(path string, surface *tin.Tin, lines []stamp.Breakline, withTriangles bool) error {
	d := dxf.NewDrawing()
	d.Header().LtScale = 1.0

	layers := make(map[stamp.BreaklineKind]bool)
	for i, bl := range lines {
		name := LayerName(bl.Kind)
		if !layers[bl.Kind] {
			cl, ok := breaklineColors[bl.Kind]
			if !ok {
				cl = color.White
			}
			if _, err := d.AddLayer(name, cl, dxf.DefaultLineType, false); err != nil {
				return fmt.Errorf("adding layer %s: %w", name, err)
			}
			layers[bl.Kind] = true
		}
		if err := d.ChangeLayer(name); err != nil {
			return err
		}
		for j := 1; j < len(bl.Indices); j++ {
			a, b := bl.Indices[j-1], bl.Indices[j]
			if a < 0 || b < 0 || a >= surface.NumPoints() || b >= surface.NumPoints() {
				return fmt.Errorf("breakline %d: index out of range", i)
			}
			p, q := surface.Point(a), surface.Point(b)
			if _, err := d.Line(p.X, p.Y, p.Z, q.X, q.Y, q.Z); err != nil {
				return err
			}
		}
	}

	if withTriangles {
		if _, err := d.AddLayer(TinLayer, color.Cyan, dxf.DefaultLineType, false); err != nil {
			return fmt.Errorf("adding layer %s: %w", TinLayer, err)
		}
		if err := d.ChangeLayer(TinLayer); err != nil {
			return err
		}
		for i := 0; i < surface.NumTriangles(); i++ {
			tri := surface.Triangle(i)
			face := make([][]float64, 0, 4)
			for _, idx := range append(tri[:], tri[2]) {
				p := surface.Point(idx)
				face = append(face, []float64{p.X, p.Y, p.Z})
			}
			if _, err := d.ThreeDFace(face); err != nil {
				return err
			}
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("saving dxf: %w", err)
	}
	return nil
}
