// Package gribio reads WMO GRIB2 files through github.com/mmp/squall.
// A GRIB2 file has no datatype discriminator; the whole file reads as a
// catalog from which single fields are fetched by product and level and
// optionally projected onto a caller-supplied LatLonGrid coverage.
package gribio

import (
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strings"

	grib "github.com/mmp/squall"

	"github.com/banshee-data/rapio/internal/dataio"
	"github.com/banshee-data/rapio/internal/grid"
)

// FormatKey is the builder key for GRIB2 files.
const FormatKey = "grib2"

// Builder is the GRIB2 file-family handler.
type Builder struct{}

func init() {
	dataio.RegisterBuilder(FormatKey, &Builder{})
}

// Catalog is the DataType a GRIB2 read produces: the decoded message list
// plus fetch and projection operations over it.
type Catalog struct {
	grid.DataGrid

	fields []*grib.GRIB2
}

// CreateDataType scans every message in the file into a Catalog.
func (b *Builder) CreateDataType(filename string, keys map[string]string) (grid.DataType, error) {
	fh, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("grib2: open %s: %w", filename, err)
	}
	defer fh.Close()

	fields, err := grib.Read(fh)
	if err != nil {
		return nil, fmt.Errorf("grib2: parse %s: %w", filename, err)
	}
	c := &Catalog{fields: fields}
	c.DataGrid = *grid.NewDataGrid()
	c.SetDataType("GribDataType")
	if len(fields) > 0 {
		c.SetTime(grid.TimeFrom(fields[0].ReferenceTime))
	}
	return c, nil
}

// EncodeDataType is unsupported; GRIB2 output is out of scope.
func (b *Builder) EncodeDataType(dt grid.DataType, filename string, keys map[string]string) error {
	return fmt.Errorf("grib2: writing GRIB2 files is not supported")
}

// NumFields returns the number of decoded fields.
func (c *Catalog) NumFields() int { return len(c.fields) }

// PrintCatalog lists every field one per line, wgrib2 style.
func (c *Catalog) PrintCatalog(w io.Writer) {
	for i, f := range c.fields {
		fmt.Fprintf(w, "%d:%s:%s:%v:%dx%d\n",
			i+1, f.Parameter, f.Level, f.ReferenceTime.UTC(), f.GridNi, f.GridNj)
	}
}

// matchField finds the first field whose parameter and level contain the
// given strings, case-insensitively. An empty level matches any.
func (c *Catalog) matchField(product, level string) (*grib.GRIB2, error) {
	product = strings.ToLower(product)
	level = strings.ToLower(level)
	for _, f := range c.fields {
		if !strings.Contains(strings.ToLower(f.Parameter.String()), product) {
			continue
		}
		if level != "" && !strings.Contains(strings.ToLower(f.Level), level) {
			continue
		}
		return f, nil
	}
	return nil, fmt.Errorf("grib2: no field matches product %q level %q", product, level)
}

// FetchGrid returns a single field matched by (product, level) as a 2-D
// grid on its native layout, with per-cell Latitude/Longitude arrays.
func (c *Catalog) FetchGrid(product, level string) (*grid.DataGrid, error) {
	f, err := c.matchField(product, level)
	if err != nil {
		return nil, err
	}
	nj, ni := f.GridNj, f.GridNi
	if nj*ni != len(f.Data) {
		return nil, fmt.Errorf("grib2: field %s has %d points for a %dx%d grid",
			f.Parameter, len(f.Data), nj, ni)
	}
	g := grid.NewDataGrid()
	g.SetDataType("DataGrid")
	g.SetTypeName(f.Parameter.String())
	g.SetTime(grid.TimeFrom(f.ReferenceTime))
	g.SetDims([]int{nj, ni}, []string{grid.DimLat, grid.DimLon})

	primary := g.AddFloat2D(grid.PrimaryName, "dimensionless", []int{0, 1})
	copy(primary.Array().Float32s(), f.Data)
	for i, v := range primary.Array().Float32s() {
		if math.IsNaN(float64(v)) {
			primary.Array().SetFlatValue(grid.MissingData, i)
		}
	}
	lat := g.AddFloat2D("Latitude", "Degrees", []int{0, 1})
	copy(lat.Array().Float32s(), f.Latitudes)
	lon := g.AddFloat2D("Longitude", "Degrees", []int{0, 1})
	copy(lon.Array().Float32s(), f.Longitudes)
	return g, nil
}

// FetchLatLonGrid fetches a field and projects it nearest-neighbor onto
// the given coverage: NW corner, positive spacings and counts. Cells
// outside the source grid receive DataUnavailable; NaN source values map
// to MissingData.
func (c *Catalog) FetchLatLonGrid(product, level string,
	nwLat, nwLon, latSpacing, lonSpacing float64, numLats, numLons int) (*grid.LatLonGrid, error) {

	f, err := c.matchField(product, level)
	if err != nil {
		return nil, err
	}
	out := grid.NewLatLonGrid(f.Parameter.String(), "dimensionless",
		grid.LLH{LatDegs: nwLat, LonDegs: nwLon}, grid.TimeFrom(f.ReferenceTime),
		latSpacing, lonSpacing, numLats, numLons)

	projectField(f, out)
	return out, nil
}

// sourceLayout derives the regular lat/lon layout of a field from its
// coordinate arrays. GRIB2 lat/lon grids store coordinates per point in
// scan order, row-major.
type sourceLayout struct {
	lat0, dLat float64
	lon0, dLon float64
	ni, nj     int
}

func layoutOf(f *grib.GRIB2) (sourceLayout, error) {
	l := sourceLayout{ni: f.GridNi, nj: f.GridNj}
	if l.ni < 2 || l.nj < 2 || len(f.Latitudes) < l.ni*l.nj {
		return l, fmt.Errorf("grib2: field too small to derive layout")
	}
	l.lat0 = float64(f.Latitudes[0])
	l.lon0 = float64(f.Longitudes[0])
	l.dLat = float64(f.Latitudes[l.ni]) - l.lat0
	l.dLon = float64(f.Longitudes[1]) - l.lon0
	if l.dLat == 0 || l.dLon == 0 {
		return l, fmt.Errorf("grib2: degenerate source spacing")
	}
	return l, nil
}

// cellFor maps a destination (lat, lon) to the nearest source index, or
// -1 when outside the source grid.
func (l sourceLayout) cellFor(latDegs, lonDegs float64) int {
	row := int(math.Round((latDegs - l.lat0) / l.dLat))
	if row < 0 || row >= l.nj {
		return -1
	}
	// GRIB2 longitudes run 0..360; normalize the query into the source
	// span.
	lon := lonDegs
	for lon < l.lon0 {
		lon += 360
	}
	for lon >= l.lon0+360 {
		lon -= 360
	}
	col := int(math.Round((lon - l.lon0) / l.dLon))
	if col < 0 || col >= l.ni {
		return -1
	}
	return row*l.ni + col
}

// projectField fills the destination grid nearest-neighbor from the
// source field.
func projectField(f *grib.GRIB2, out *grid.LatLonGrid) {
	layout, err := layoutOf(f)
	if err != nil {
		log.Printf("grib2: %v, destination left unavailable", err)
		out.Primary().Array().Fill(grid.DataUnavailable)
		return
	}
	dst := out.Primary().Array()
	nw := out.Location()
	for x := 0; x < out.NumLats(); x++ {
		lat := nw.LatDegs - float64(x)*out.LatSpacingDegs()
		for y := 0; y < out.NumLons(); y++ {
			lon := nw.LonDegs + float64(y)*out.LonSpacingDegs()
			at := layout.cellFor(lat, lon)
			switch {
			case at < 0 || at >= len(f.Data):
				dst.SetValue(grid.DataUnavailable, x, y)
			case math.IsNaN(float64(f.Data[at])):
				dst.SetValue(grid.MissingData, x, y)
			default:
				dst.SetValue(float64(f.Data[at]), x, y)
			}
		}
	}
}
