package stamp

import (
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/terrastamp/pkg/tin"
)

// Project samples surface at every cell center of r and returns the
// filled raster. Cells outside the surface get r.NoData. r is not modified.
func Project(surface *tin.Tin, r *StampRaster, opts ...Option) (*StampRaster, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	o := newOptions(opts)
	out := r.Clone()

	var g errgroup.Group
	g.SetLimit(o.workers)
	for row := range out.NumPixelsY {
		g.Go(func() error {
			for col := range out.NumPixelsX {
				i := out.CellIndex(col, row)
				c := out.CellCenter(i)
				z, err := surface.ElevationAt(c.X, c.Y)
				if err != nil {
					z = out.NoData
				}
				out.Vals[i] = z
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	o.logger.Debug("raster projected",
		zap.Int("cols", out.NumPixelsX),
		zap.Int("rows", out.NumPixelsY))
	return out, nil
}
