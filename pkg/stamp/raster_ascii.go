package stamp

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// GridOption tunes grid output.
type GridOption func(*gridOptions)

type gridOptions struct {
	precision int
}

// GridPrecision sets the number of decimals written per value. A negative
// precision writes the shortest exact representation.
func GridPrecision(n int) GridOption {
	return func(o *gridOptions) { o.precision = n }
}

// WriteGridFile writes r to path in the named format.
func (r *StampRaster) WriteGridFile(path, format string, opts ...GridOption) error {
	f, err := ParseRasterFormat(format)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating grid file: %w", err)
	}
	if err := r.WriteGrid(file, f, opts...); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// WriteGrid writes r in format f.
func (r *StampRaster) WriteGrid(w io.Writer, f RasterFormat, opts ...GridOption) error {
	if f != ArcInfoASCII {
		return &ConfigurationError{Field: "raster_format", Value: f.String(), Valid: rasterFormatNames}
	}
	if err := r.Validate(); err != nil {
		return err
	}
	o := gridOptions{precision: -1}
	for _, opt := range opts {
		opt(&o)
	}
	num := func(v float64) string { return strconv.FormatFloat(v, 'f', o.precision, 64) }

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "ncols         %d\n", r.NumPixelsX)
	fmt.Fprintf(bw, "nrows         %d\n", r.NumPixelsY)
	fmt.Fprintf(bw, "xllcenter     %s\n", num(r.MinPoint.X))
	fmt.Fprintf(bw, "yllcenter     %s\n", num(r.MinPoint.Y))
	if r.PixelSizeX == r.PixelSizeY {
		fmt.Fprintf(bw, "cellsize      %s\n", num(r.PixelSizeX))
	} else {
		fmt.Fprintf(bw, "dx            %s\n", num(r.PixelSizeX))
		fmt.Fprintf(bw, "dy            %s\n", num(r.PixelSizeY))
	}
	fmt.Fprintf(bw, "NODATA_value  %s\n", num(r.NoData))
	for row := range r.NumPixelsY {
		for col := range r.NumPixelsX {
			if col > 0 {
				bw.WriteByte(' ')
			}
			v := r.Vals[r.CellIndex(col, row)]
			if r.IsNoData(v) {
				v = r.NoData
			}
			bw.WriteString(num(v))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// ReadGrid parses an ArcInfo ASCII grid. Corner-registered headers are
// shifted to cell centers.
func ReadGrid(rd io.Reader) (*StampRaster, error) {
	sc := bufio.NewScanner(rd)
	sc.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	sc.Split(bufio.ScanWords)

	header := map[string]float64{}
	var first string
	for sc.Scan() {
		key := strings.ToLower(sc.Text())
		if _, err := strconv.ParseFloat(key, 64); err == nil {
			first = sc.Text()
			break
		}
		if !sc.Scan() {
			return nil, invalid("grid", "header %q has no value", key)
		}
		v, err := strconv.ParseFloat(sc.Text(), 64)
		if err != nil {
			return nil, invalid("grid", "header %q: %v", key, err)
		}
		header[key] = v
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading grid: %w", err)
	}

	nx, ny := int(header["ncols"]), int(header["nrows"])
	dx, dy := header["cellsize"], header["cellsize"]
	if v, ok := header["dx"]; ok {
		dx = v
	}
	if v, ok := header["dy"]; ok {
		dy = v
	}
	noData, ok := header["nodata_value"]
	if !ok {
		noData = GridNoData
	}
	r := &StampRaster{NumPixelsX: nx, NumPixelsY: ny, PixelSizeX: dx, PixelSizeY: dy, NoData: noData}
	switch x, ok := header["xllcenter"]; {
	case ok:
		r.MinPoint.X = x
	default:
		r.MinPoint.X = header["xllcorner"] + dx/2
	}
	switch y, ok := header["yllcenter"]; {
	case ok:
		r.MinPoint.Y = y
	default:
		r.MinPoint.Y = header["yllcorner"] + dy/2
	}
	if nx <= 0 || ny <= 0 {
		return nil, invalid("grid", "dimensions must be positive, got %dx%d", nx, ny)
	}

	r.Vals = make([]float64, 0, nx*ny)
	parse := func(s string) error {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return invalid("grid", "value %d: %v", len(r.Vals), err)
		}
		r.Vals = append(r.Vals, v)
		return nil
	}
	if first != "" {
		if err := parse(first); err != nil {
			return nil, err
		}
	}
	for len(r.Vals) < nx*ny && sc.Scan() {
		if err := parse(sc.Text()); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading grid: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// ReadGridFile reads an ArcInfo ASCII grid from disk.
func ReadGridFile(path string) (*StampRaster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening grid file: %w", err)
	}
	defer f.Close()
	return ReadGrid(f)
}
