package formats

import (
	"fmt"
	"io"

	"github.com/Faultbox/terrastamp/pkg/stamp"
	"github.com/Faultbox/terrastamp/pkg/tin"
)

// ReadGridTerrain reads an ArcInfo ASCII grid and triangulates it. Cells
// touching no-data are left out of the surface.
func ReadGridTerrain(r io.Reader) (*tin.Tin, error) {
	grid, err := stamp.ReadGrid(r)
	if err != nil {
		return nil, err
	}
	return gridTin(grid)
}

// LoadGridTerrain reads a grid file from disk and triangulates it.
func LoadGridTerrain(path string) (*tin.Tin, error) {
	grid, err := stamp.ReadGridFile(path)
	if err != nil {
		return nil, err
	}
	t, err := gridTin(grid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func gridTin(grid *stamp.StampRaster) (*tin.Tin, error) {
	t, err := grid.ToTin()
	if err != nil {
		return nil, err
	}
	if t.NumTriangles() == 0 {
		return nil, fmt.Errorf("grid %s has no valid cells", grid)
	}
	return t, nil
}
