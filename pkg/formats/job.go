// Package formats reads stamping jobs and base terrain and writes stamping
// results in exchange formats (YAML, ArcInfo ASCII grid, GeoJSON, DXF).
package formats

import (
	"errors"
	"fmt"
	stdmath "math"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/terrastamp/pkg/math"
	"github.com/Faultbox/terrastamp/pkg/stamp"
	"github.com/Faultbox/terrastamp/pkg/tin"
)

// Job format errors.
var (
	ErrEmptyJob      = errors.New("empty job file")
	ErrAmbiguousBase = errors.New("base terrain sets both grid and points")
)

// Job is the YAML form of a stamping run.
type Job struct {
	Name          string              `yaml:"name,omitempty"`
	StampingType  *stamp.StampingType `yaml:"stamping_type,omitempty"` // nil = fill
	Centerline    [][3]float64        `yaml:"centerline"`
	CrossSections []*JobCrossSection  `yaml:"cross_sections"`
	FirstEndCap   *JobEndCap          `yaml:"first_end_cap,omitempty"`
	LastEndCap    *JobEndCap          `yaml:"last_end_cap,omitempty"`
	Base          *JobBase            `yaml:"base,omitempty"`
	Raster        *JobRaster          `yaml:"raster,omitempty"`
	Output        map[string]string   `yaml:"output,omitempty"` // format token -> path

	dir string // directory of the job file, for relative paths
}

// JobCrossSection is one template. A null list entry marks a station whose
// template is interpolated.
type JobCrossSection struct {
	Left          [][2]float64 `yaml:"left"`
	Right         [][2]float64 `yaml:"right"`
	LeftMax       float64      `yaml:"left_max"`
	RightMax      float64      `yaml:"right_max"`
	LeftShoulder  int          `yaml:"left_shoulder"`
	RightShoulder int          `yaml:"right_shoulder"`
}

// JobEndCap selects one cap variant by Type; only the matching block is read.
// A missing Type means a wing wall.
type JobEndCap struct {
	Type           *stamp.CapKind     `yaml:"type,omitempty"`
	Angle          float64            `yaml:"angle"`
	Guidebank      *JobGuidebank      `yaml:"guidebank,omitempty"`
	SlopedAbutment *JobSlopedAbutment `yaml:"sloped_abutment,omitempty"`
	WingWall       *JobWingWall       `yaml:"wingwall,omitempty"`
}

// JobGuidebank holds guidebank parameters.
type JobGuidebank struct {
	Side      stamp.Side `yaml:"side"`
	Radius1   float64    `yaml:"radius1"`
	Radius2   float64    `yaml:"radius2"`
	Width     float64    `yaml:"width"`
	NumPoints int        `yaml:"n_points"`
}

// JobSlopedAbutment holds sloped abutment parameters.
type JobSlopedAbutment struct {
	MaxX  float64      `yaml:"max_x"`
	Slope [][2]float64 `yaml:"slope"`
}

// JobWingWall holds wing wall parameters.
type JobWingWall struct {
	Angle float64 `yaml:"wingwall_angle"`
}

// JobBase describes the base terrain. Grid names an ArcInfo ASCII grid;
// otherwise Points are used, triangulated when Triangles is empty.
type JobBase struct {
	Grid      string       `yaml:"grid,omitempty"`
	Points    [][3]float64 `yaml:"points,omitempty"`
	Triangles [][3]int     `yaml:"triangles,omitempty"`
}

// JobRaster describes the output raster grid. A missing no_data means NaN.
type JobRaster struct {
	NumPixelsX int        `yaml:"num_pixels_x"`
	NumPixelsY int        `yaml:"num_pixels_y"`
	PixelSizeX float64    `yaml:"pixel_size_x"`
	PixelSizeY float64    `yaml:"pixel_size_y"`
	MinPoint   [2]float64 `yaml:"min_point"`
	NoData     *float64   `yaml:"no_data,omitempty"`
}

// ParseJob parses a job from YAML.
func ParseJob(data []byte) (*Job, error) {
	if len(data) == 0 {
		return nil, ErrEmptyJob
	}
	job := &Job{}
	if err := yaml.Unmarshal(data, job); err != nil {
		return nil, fmt.Errorf("parsing job: %w", err)
	}
	return job, nil
}

// ParseJobFile parses a job file from disk. Relative grid paths are resolved
// against the file's directory.
func ParseJobFile(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading job file: %w", err)
	}
	job, err := ParseJob(data)
	if err != nil {
		return nil, err
	}
	job.dir = filepath.Dir(path)
	return job, nil
}

// Marshal encodes the job as YAML.
func (j *Job) Marshal() ([]byte, error) {
	return yaml.Marshal(j)
}

// Io converts the job to stamping input and loads the base terrain. End caps
// are checked as they are built; the rest is left to (*stamp.Io).Validate.
func (j *Job) Io() (*stamp.Io, error) {
	io := stamp.NewIo()
	if j.StampingType != nil {
		io.StampingType = *j.StampingType
	}
	io.Centerline = vec3s(j.Centerline)

	io.CrossSections = make([]*stamp.CrossSection, len(j.CrossSections))
	for i, cs := range j.CrossSections {
		if cs != nil {
			io.CrossSections[i] = cs.crossSection()
		}
	}

	var err error
	if j.FirstEndCap != nil {
		if io.FirstEndCap, err = j.FirstEndCap.endCap(); err != nil {
			return nil, fmt.Errorf("first_end_cap: %w", err)
		}
	}
	if j.LastEndCap != nil {
		if io.LastEndCap, err = j.LastEndCap.endCap(); err != nil {
			return nil, fmt.Errorf("last_end_cap: %w", err)
		}
	}

	if j.Base != nil {
		if io.Bathymetry, err = j.Base.load(j.dir); err != nil {
			return nil, fmt.Errorf("base: %w", err)
		}
	}
	if j.Raster != nil {
		if io.Raster, err = j.Raster.raster(); err != nil {
			return nil, fmt.Errorf("raster: %w", err)
		}
	}
	return io, nil
}

func (c *JobCrossSection) crossSection() *stamp.CrossSection {
	return &stamp.CrossSection{
		Left:          vec2s(c.Left),
		Right:         vec2s(c.Right),
		LeftMax:       c.LeftMax,
		RightMax:      c.RightMax,
		LeftShoulder:  c.LeftShoulder,
		RightShoulder: c.RightShoulder,
	}
}

func (e *JobEndCap) endCap() (stamp.EndCap, error) {
	kind := stamp.KindWingWall
	if e.Type != nil {
		kind = *e.Type
	}
	var payload any
	switch kind {
	case stamp.KindGuidebank:
		if e.Guidebank == nil {
			return stamp.EndCap{}, fmt.Errorf("type %s has no guidebank block", kind)
		}
		g := e.Guidebank
		payload = &stamp.Guidebank{Side: g.Side, Radius1: g.Radius1, Radius2: g.Radius2, Width: g.Width, NumPoints: g.NumPoints}
	case stamp.KindSlopedAbutment:
		if e.SlopedAbutment == nil {
			return stamp.EndCap{}, fmt.Errorf("type %s has no sloped_abutment block", kind)
		}
		payload = &stamp.SlopedAbutment{MaxX: e.SlopedAbutment.MaxX, Slope: vec2s(e.SlopedAbutment.Slope)}
	default:
		w := &stamp.WingWall{}
		if e.WingWall != nil {
			w.WingWallAngle = e.WingWall.Angle
		}
		payload = w
	}
	return stamp.NewEndCap(payload, e.Angle)
}

func (b *JobBase) load(dir string) (*tin.Tin, error) {
	switch {
	case b.Grid != "" && len(b.Points) > 0:
		return nil, ErrAmbiguousBase
	case b.Grid != "":
		path := b.Grid
		if !filepath.IsAbs(path) && dir != "" {
			path = filepath.Join(dir, path)
		}
		return LoadGridTerrain(path)
	case len(b.Triangles) > 0:
		tris := make([]tin.Triangle, len(b.Triangles))
		for i, t := range b.Triangles {
			tris[i] = tin.Triangle(t)
		}
		return tin.New(vec3s(b.Points), tris)
	case len(b.Points) > 0:
		return tin.Triangulate(vec3s(b.Points))
	}
	return nil, nil
}

func (r *JobRaster) raster() (*stamp.StampRaster, error) {
	noData := stdmath.NaN()
	if r.NoData != nil {
		noData = *r.NoData
	}
	return stamp.NewEmptyRaster(r.NumPixelsX, r.NumPixelsY, r.PixelSizeX, r.PixelSizeY,
		math.Vec2{X: r.MinPoint[0], Y: r.MinPoint[1]}, noData)
}

func vec2s(in [][2]float64) []math.Vec2 {
	if in == nil {
		return nil
	}
	out := make([]math.Vec2, len(in))
	for i, p := range in {
		out[i] = math.Vec2{X: p[0], Y: p[1]}
	}
	return out
}

func vec3s(in [][3]float64) []math.Vec3 {
	if in == nil {
		return nil
	}
	out := make([]math.Vec3, len(in))
	for i, p := range in {
		out[i] = math.Vec3{X: p[0], Y: p[1], Z: p[2]}
	}
	return out
}
