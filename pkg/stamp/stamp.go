// Package stamp builds terrain features such as embankments, channels and
// bridge approaches along a 3-D centerline and merges them into a base
// terrain model.
package stamp

import (
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/terrastamp/pkg/tin"
)

// Option configures a stamping run.
type Option func(*options)

type options struct {
	logger  *zap.Logger
	workers int
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithWorkers bounds parallel station placement and raster rows.
// Values below 1 select the number of CPUs.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

func newOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = runtime.NumCPU()
	}
	return o
}

// Result is the output of a stamping run.
type Result struct {
	Tin        *tin.Tin
	Breaklines []Breakline
	Raster     *StampRaster // nil when no raster was requested
	Patch      *Patch
}

// Stamp runs the full pipeline: validate, build the patch, merge it into
// the base terrain and project it onto the raster. The inputs are not
// modified and nothing is returned on failure.
func Stamp(in *Io, opts ...Option) (*Result, error) {
	o := newOptions(opts)
	start := time.Now()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	io := in.Clone()

	patch, err := BuildPatch(io, opts...)
	if err != nil {
		return nil, err
	}
	surface, lines, err := Merge(patch, io.Bathymetry, io.StampingType, opts...)
	if err != nil {
		return nil, err
	}
	res := &Result{Tin: surface, Breaklines: lines, Patch: patch}

	if io.Raster != nil {
		if res.Raster, err = Project(surface, io.Raster, opts...); err != nil {
			return nil, err
		}
	}

	o.logger.Info("stamp complete",
		zap.Stringer("type", io.StampingType),
		zap.Int("stations", len(io.Centerline)),
		zap.Int("points", surface.NumPoints()),
		zap.Int("triangles", surface.NumTriangles()),
		zap.Int("breaklines", len(lines)),
		zap.Duration("elapsed", time.Since(start)))
	return res, nil
}
