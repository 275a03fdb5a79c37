package stamp

import (
	"fmt"
	stdmath "math"

	"go.uber.org/multierr"

	"github.com/Faultbox/terrastamp/pkg/math"
	"github.com/Faultbox/terrastamp/pkg/tin"
)

// Io holds the inputs of one stamping run.
type Io struct {
	Centerline   []math.Vec3
	StampingType StampingType
	// CrossSections holds either one template shared by every station or
	// one entry per centerline point. Nil entries are interpolated.
	CrossSections []*CrossSection
	FirstEndCap   EndCap
	LastEndCap    EndCap
	// Bathymetry is the base terrain. It is only read.
	Bathymetry *tin.Tin
	// Raster, when set, receives the stamped surface.
	Raster *StampRaster
}

// NewIo returns inputs with square wing wall ends and fill stamping.
func NewIo() *Io {
	return &Io{
		StampingType: Fill,
		FirstEndCap:  DefaultEndCap(),
		LastEndCap:   DefaultEndCap(),
	}
}

// Validate reports every problem with the inputs at once.
func (io *Io) Validate() error {
	var errs error
	if len(io.Centerline) < 2 {
		errs = multierr.Append(errs, invalid("centerline", "needs at least 2 points, got %d", len(io.Centerline)))
	}
	for i, p := range io.Centerline {
		if !finite(p.X) || !finite(p.Y) || !finite(p.Z) {
			errs = multierr.Append(errs, invalid("centerline", "point %d is not finite", i))
		}
	}
	if io.StampingType < Cut || io.StampingType > Both {
		errs = multierr.Append(errs, &ConfigurationError{
			Field: "stamping_type", Value: io.StampingType.String(), Valid: stampingTypeNames,
		})
	}

	switch n := len(io.CrossSections); {
	case n == 0:
		errs = multierr.Append(errs, invalid("cross_sections", "at least one template is required"))
	case n != 1 && n != len(io.Centerline):
		errs = multierr.Append(errs, invalid("cross_sections", "need 1 or %d templates, got %d", len(io.Centerline), n))
	}
	usable := false
	for i, cs := range io.CrossSections {
		if cs == nil {
			continue
		}
		usable = true
		if err := cs.Validate(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("cross_sections[%d]: %w", i, err))
		}
	}
	if len(io.CrossSections) > 0 && !usable {
		errs = multierr.Append(errs, invalid("cross_sections", "every template is missing"))
	}

	if err := io.FirstEndCap.Validate(); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("first_end_cap: %w", err))
	}
	if err := io.LastEndCap.Validate(); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("last_end_cap: %w", err))
	}
	if io.Raster != nil {
		if err := io.Raster.Validate(); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// Clone copies everything except the base terrain, which is shared.
func (io *Io) Clone() *Io {
	out := *io
	out.Centerline = append([]math.Vec3(nil), io.Centerline...)
	out.CrossSections = make([]*CrossSection, len(io.CrossSections))
	for i, cs := range io.CrossSections {
		out.CrossSections[i] = cs.Clone()
	}
	out.FirstEndCap = io.FirstEndCap.Clone()
	out.LastEndCap = io.LastEndCap.Clone()
	out.Raster = io.Raster.Clone()
	return &out
}

func finite(v float64) bool {
	return !stdmath.IsNaN(v) && !stdmath.IsInf(v, 0)
}
