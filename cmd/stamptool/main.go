// stamptool is a CLI utility for stamping terrain features into base terrain.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/terrastamp/internal/config"
	"github.com/Faultbox/terrastamp/internal/logger"
	"github.com/Faultbox/terrastamp/pkg/formats"
	"github.com/Faultbox/terrastamp/pkg/stamp"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "stamp", "run":
		cmdStamp(args)
	case "validate", "check":
		cmdValidate(args)
	case "info":
		cmdInfo(args)
	case "grid":
		cmdGrid(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`stamptool - terrain stamping utility

Usage:
  stamptool <command> [options]

Commands:
  stamp [flags] <job.yaml>       Stamp the job and write results
  validate [flags] <job.yaml>    Check a job and list every problem
  info [flags] <job.yaml>        Show job and base terrain information
  grid [-tin] <dem.asc>          Show ArcInfo ASCII grid information

Flags (stamp, validate, info):
  -config <file>   Config file (default ./stamptool.yaml, then $TERRASTAMP_CONFIG)
  -debug           Enable debug logging
  -workers <n>     Worker goroutines (0 = one per CPU)
  -out <dir>       Output directory

Examples:
  stamptool stamp -out results approach.yaml
  stamptool validate approach.yaml
  stamptool grid -tin dem.asc`)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// setup parses the shared flags, loads the config and starts logging for
// one run. It returns the job path.
func setup(args []string, usage string) (*config.Config, string) {
	rest, err := config.ParseFlags(args)
	if err != nil {
		fail(err)
	}
	if len(rest) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: "+usage)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fail(err)
	}
	if err := logger.Init(cfg.Logging.Options(true)); err != nil {
		fail(err)
	}
	logger.WithRunID(uuid.NewString())
	logger.Debug("config loaded", zap.String("level", cfg.Logging.Level), zap.Int("workers", cfg.Stamp.Workers))
	return cfg, rest[0]
}

func cmdStamp(args []string) {
	cfg, jobPath := setup(args, "stamptool stamp [flags] <job.yaml>")
	defer logger.Sync()

	job, io := loadJob(cfg, jobPath)

	logger.Info("stamping", zap.String("job", jobPath), zap.Stringer("type", io.StampingType))
	res, err := stamp.Stamp(io, stamp.WithLogger(logger.Named("stamp")), stamp.WithWorkers(cfg.Stamp.Workers))
	if err != nil {
		logger.Error("stamp failed", zap.Error(err))
		fail(err)
	}

	written, err := writeOutputs(cfg, job, jobName(job, jobPath), res)
	if err != nil {
		logger.Error("writing results failed", zap.Error(err))
		fail(err)
	}
	logger.Info("results written", zap.Strings("files", written))

	fmt.Printf("Job:        %s\n", jobPath)
	fmt.Printf("Type:       %s\n", io.StampingType)
	fmt.Printf("Stations:   %d\n", len(io.Centerline))
	fmt.Printf("Surface:    %s\n", res.Tin.Summary())
	fmt.Printf("Breaklines: %d\n", len(res.Breaklines))
	for _, path := range written {
		fmt.Printf("Wrote:      %s\n", path)
	}
}

// jobName picks the base name for result files.
func jobName(job *formats.Job, path string) string {
	if job.Name != "" {
		return job.Name
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// outputPath resolves the file for a format token. Paths named in the job
// win over the default name; relative paths land in the output directory.
func outputPath(cfg *config.Config, job *formats.Job, name, token, ext string) string {
	path := name + ext
	if p, ok := job.Output[token]; ok && p != "" {
		path = p
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(cfg.Output.Dir, path)
}

// writeOutputs writes the raster and every configured breakline format and
// returns the paths written.
func writeOutputs(cfg *config.Config, job *formats.Job, name string, res *stamp.Result) ([]string, error) {
	if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	var written []string
	if res.Raster != nil {
		path := outputPath(cfg, job, name, stamp.ArcInfoASCII.String(), ".asc")
		err := res.Raster.WriteGridFile(path, stamp.ArcInfoASCII.String(), stamp.GridPrecision(cfg.Output.RasterPrecision))
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}

	for _, format := range cfg.Output.Breaklines {
		var err error
		var path string
		switch format {
		case config.FormatGeoJSON:
			path = outputPath(cfg, job, name, format, ".geojson")
			err = formats.WriteGeoJSONFile(path, res.Tin, res.Breaklines, cfg.Output.Triangles)
		case config.FormatDXF:
			path = outputPath(cfg, job, name, format, ".dxf")
			err = formats.WriteDXFFile(path, res.Tin, res.Breaklines, cfg.Output.Triangles)
		default:
			err = fmt.Errorf("unknown breakline format %q", format)
		}
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// loadJob reads the job, applies the configured default stamping type and
// loads its base terrain.
func loadJob(cfg *config.Config, path string) (*formats.Job, *stamp.Io) {
	job, err := formats.ParseJobFile(path)
	if err != nil {
		logger.Error("reading job failed", zap.String("job", path), zap.Error(err))
		fail(err)
	}
	if job.StampingType == nil {
		t := cfg.Stamp.DefaultType
		job.StampingType = &t
	}
	io, err := job.Io()
	if err != nil {
		logger.Error("loading job failed", zap.String("job", path), zap.Error(err))
		fail(err)
	}
	logger.Debug("job loaded",
		zap.String("job", path),
		zap.Int("stations", len(io.Centerline)),
		zap.Int("templates", len(io.CrossSections)),
		zap.Bool("base", io.Bathymetry != nil),
		zap.Bool("raster", io.Raster != nil))
	return job, io
}

// problemKind names the error class of one validation problem.
func problemKind(err error) string {
	switch {
	case errors.Is(err, stamp.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, stamp.ErrConfiguration):
		return "config"
	case errors.Is(err, stamp.ErrGeometry):
		return "geometry"
	}
	return "error"
}

func cmdValidate(args []string) {
	cfg, jobPath := setup(args, "stamptool validate [flags] <job.yaml>")
	defer logger.Sync()

	_, io := loadJob(cfg, jobPath)
	err := io.Validate()
	if err == nil {
		fmt.Printf("%s: ok\n", jobPath)
		return
	}

	errs := multierr.Errors(err)
	for _, e := range errs {
		kind := problemKind(e)
		logger.Warn("job problem", zap.String("job", jobPath), zap.String("kind", kind), zap.Error(e))
		fmt.Printf("  %-8s %v\n", kind, e)
	}
	fmt.Fprintf(os.Stderr, "\n(%d problems found)\n", len(errs))
	logger.Sync()
	os.Exit(1)
}

func cmdInfo(args []string) {
	cfg, jobPath := setup(args, "stamptool info [flags] <job.yaml>")
	defer logger.Sync()

	job, io := loadJob(cfg, jobPath)

	missing := 0
	for _, cs := range io.CrossSections {
		if cs == nil {
			missing++
		}
	}

	fmt.Printf("Job:        %s\n", jobName(job, jobPath))
	fmt.Printf("Type:       %s\n", io.StampingType)
	fmt.Printf("Stations:   %d\n", len(io.Centerline))
	fmt.Printf("Templates:  %d (%d interpolated)\n", len(io.CrossSections), missing)
	fmt.Printf("First cap:  %s\n", describeCap(io.FirstEndCap))
	fmt.Printf("Last cap:   %s\n", describeCap(io.LastEndCap))
	if io.Bathymetry != nil {
		fmt.Printf("Base:       %s\n", io.Bathymetry.Summary())
	} else {
		fmt.Println("Base:       (none)")
	}
	if io.Raster != nil {
		fmt.Printf("Raster:     %s\n", io.Raster)
	}
	if placements, err := stamp.SamplePath(io.Centerline); err == nil {
		fmt.Printf("Length:     %.3f\n", placements[len(placements)-1].Distance)
	}
}

func describeCap(e stamp.EndCap) string {
	if e.Cap == nil {
		return "(none)"
	}
	return fmt.Sprintf("%s at %g deg", e.Cap.Kind(), e.Angle)
}

func cmdGrid(args []string) {
	fs := flag.NewFlagSet("grid", flag.ExitOnError)
	asTin := fs.Bool("tin", false, "Triangulate the grid and show surface statistics")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: stamptool grid [-tin] <dem.asc>")
		os.Exit(1)
	}

	grid, err := stamp.ReadGridFile(fs.Arg(0))
	if err != nil {
		fail(err)
	}

	valid := 0
	for _, v := range grid.Vals {
		if !grid.IsNoData(v) {
			valid++
		}
	}

	fmt.Printf("Grid:   %s\n", fs.Arg(0))
	fmt.Printf("Header: %s\n", grid)
	fmt.Printf("Cells:  %d (%d with data)\n", len(grid.Vals), valid)

	if *asTin {
		surface, err := formats.LoadGridTerrain(fs.Arg(0))
		if err != nil {
			fail(err)
		}
		fmt.Printf("TIN:    %s\n", surface.Summary())
	}
}
