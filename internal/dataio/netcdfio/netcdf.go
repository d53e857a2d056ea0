// Package netcdfio reads and writes the MRMS NetCDF conventions through
// the pure-Go classic-format codec github.com/ctessum/cdf.
//
// The builder opens the file, reads the global "DataType" discriminator
// and dispatches to a specializer; files without the discriminator fall
// back to the generic DataGrid path. Writes follow the netCDF-3
// discipline: every dimension, variable and attribute is declared before
// any data lands.
package netcdfio

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/ctessum/cdf"

	"github.com/banshee-data/rapio/internal/dataio"
	"github.com/banshee-data/rapio/internal/grid"
	"github.com/banshee-data/rapio/internal/version"
)

// FormatKey is the builder key and the keys-map handle namespace.
const FormatKey = "netcdf"

// Specializer is one (datatype tag) reader/writer within the NetCDF
// builder.
type Specializer interface {
	Read(f *cdf.File, keys map[string]string) (grid.DataType, error)
	Write(dt grid.DataType, w *writeSession, keys map[string]string) error
}

// Builder is the NetCDF file-family handler.
type Builder struct {
	specializers *dataio.SpecializerSet[Specializer]
}

func init() {
	b := &Builder{specializers: dataio.NewSpecializerSet[Specializer]()}
	b.specializers.Introduce("DataGrid", &DataGridSpecializer{})
	b.specializers.Introduce("RadialSet", &RadialSetSpecializer{})
	b.specializers.Introduce("SparseRadialSet", &RadialSetSpecializer{})
	b.specializers.Introduce("LatLonGrid", &LatLonGridSpecializer{})
	b.specializers.Introduce("SparseLatLonGrid", &LatLonGridSpecializer{})
	b.specializers.Introduce("LatLonHeightGrid", &LatLonHeightGridSpecializer{})
	b.specializers.Introduce("SparseLatLonHeightGrid", &LatLonHeightGridSpecializer{})
	b.specializers.Introduce("BinaryTable", &BinaryTableSpecializer{})
	b.specializers.Introduce("RObsBinaryTable", &BinaryTableSpecializer{})
	dataio.RegisterBuilder(FormatKey, b)
}

// CreateDataType opens the NetCDF file, reads the DataType discriminator
// and delegates to the matching specializer.
func (b *Builder) CreateDataType(filename string, keys map[string]string) (grid.DataType, error) {
	fh, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("netcdf: open %s: %w", filename, err)
	}
	defer fh.Close()

	f, err := cdf.Open(fh)
	if err != nil {
		return nil, fmt.Errorf("netcdf: not a NetCDF classic file %s: %w", filename, err)
	}

	tag := "DataGrid"
	if v, ok := f.Header.GetAttribute("", grid.AttrDataType).(string); ok && v != "" {
		tag = v
	} else {
		log.Printf("netcdf: no DataType attribute in %s, trying generic reader", filename)
	}

	spec, ok := b.specializers.FindOrFallback(tag, "DataGrid")
	if !ok {
		return nil, fmt.Errorf("netcdf: no specializer for datatype %q", tag)
	}
	keys[grid.KeyNetcdfURL] = filename
	return spec.Read(f, keys)
}

// EncodeDataType writes dt to filename, bracketing the encode with the
// PreWrite/PostWrite lifecycle. The sparse conversion is requested by
// default, matching the MRMS convention; callers turn it off by setting
// MakeSparse to anything but "on".
func (b *Builder) EncodeDataType(dt grid.DataType, filename string, keys map[string]string) error {
	tag := dt.DataType()
	spec, ok := b.specializers.FindOrFallback(tag, "DataGrid")
	if !ok {
		return fmt.Errorf("netcdf: no writer for datatype %q", tag)
	}

	if _, present := keys[grid.KeyMakeSparse]; !present {
		keys[grid.KeyMakeSparse] = "on"
	}
	if lvl, err := strconv.Atoi(keys[grid.KeyDeflateLevel]); err == nil && lvl >= 0 && lvl <= 9 {
		dataio.GzipLevel = lvl
	}
	if flags := keys[grid.KeyNcFlags]; flags != "" {
		// The classic encoder has one creation mode; the key is accepted
		// for compatibility with callers tuned for the C library.
		log.Printf("netcdf: ignoring ncflags=%s, classic format only", flags)
	}

	dt.PreWrite(keys)
	defer dt.PostWrite(keys)

	w := &writeSession{filename: filename}
	return spec.Write(dt, w, keys)
}

// writeSession accumulates the header declarations and the deferred data
// writes of one file, so the netCDF-3 define/data split holds no matter
// how specializers compose.
type writeSession struct {
	filename string
	dimNames []string
	dimSizes []int
	vars     []pendingVar
}

type pendingVar struct {
	name  string
	dims  []string
	attrs *grid.AttributeList
	data  interface{}
}

func (w *writeSession) addDim(name string, size int) {
	for _, n := range w.dimNames {
		if n == name {
			return
		}
	}
	w.dimNames = append(w.dimNames, name)
	w.dimSizes = append(w.dimSizes, size)
}

func (w *writeSession) addVar(name string, dims []string, attrs *grid.AttributeList, data interface{}) {
	w.vars = append(w.vars, pendingVar{name: name, dims: dims, attrs: attrs, data: data})
}

// prototype returns the slice literal cdf uses to pick the variable type.
func prototype(data interface{}) (interface{}, error) {
	switch data.(type) {
	case []float32:
		return []float32{0}, nil
	case []float64:
		return []float64{0}, nil
	case []int32:
		return []int32{0}, nil
	case []int16:
		return []int16{0}, nil
	case []int8:
		return []int8{0}, nil
	case []byte:
		return []int8{0}, nil
	}
	return nil, fmt.Errorf("netcdf: unsupported variable data type %T", data)
}

func attrValue(a grid.Attribute) interface{} {
	switch a.Type {
	case grid.AttrString:
		return a.StringValue()
	case grid.AttrLong:
		return []int32{int32(a.LongValue())}
	case grid.AttrFloat:
		return []float32{float32(a.FloatValue())}
	case grid.AttrDouble:
		return []float64{a.FloatValue()}
	}
	return nil
}

// commit declares everything, creates the file and writes the data.
func (w *writeSession) commit(globals *grid.AttributeList) error {
	h := cdf.NewHeader(w.dimNames, w.dimSizes)

	for _, a := range globals.Attrs() {
		h.AddAttribute("", a.Name, attrValue(a))
	}
	h.AddAttribute("", grid.AttrWriterInfo, version.WriterInfo())

	for _, v := range w.vars {
		proto, err := prototype(v.data)
		if err != nil {
			return err
		}
		h.AddVariable(v.name, v.dims, proto)
		if v.attrs != nil {
			for _, a := range v.attrs.Attrs() {
				if a.Name == grid.HiddenAttr {
					continue
				}
				h.AddAttribute(v.name, a.Name, attrValue(a))
			}
		}
	}

	h.Define()
	for _, err := range h.Check() {
		return fmt.Errorf("netcdf: header: %v", err)
	}

	fh, err := os.Create(w.filename)
	if err != nil {
		return fmt.Errorf("netcdf: create %s: %w", w.filename, err)
	}
	defer fh.Close()

	f, err := cdf.Create(fh, h)
	if err != nil {
		return fmt.Errorf("netcdf: create header %s: %w", w.filename, err)
	}

	for _, v := range w.vars {
		data := v.data
		if b, ok := data.([]byte); ok {
			signed := make([]int8, len(b))
			for i, c := range b {
				signed[i] = int8(c)
			}
			data = signed
		}
		end := h.Lengths(v.name)
		begin := make([]int, len(end))
		wr := f.Writer(v.name, begin, end)
		if _, err := wr.Write(data); err != nil {
			return fmt.Errorf("netcdf: writing variable %s: %w", v.name, err)
		}
	}
	if err := cdf.UpdateNumRecs(fh); err != nil {
		return fmt.Errorf("netcdf: finalizing %s: %w", w.filename, err)
	}
	return nil
}

// declareGrid queues the grid's dimensions and every non-hidden array
// into the session. The primary array is stored under the grid's
// TypeName.
func declareGrid(w *writeSession, g *grid.DataGrid) error {
	for _, d := range g.Dims() {
		w.addDim(d.Name, d.Size)
	}
	for _, n := range g.Arrays() {
		if n.Hidden() {
			continue
		}
		name := n.Name()
		if name == grid.PrimaryName {
			name = g.TypeName()
		}
		dims := make([]string, 0, len(n.DimIndexes()))
		for _, di := range n.DimIndexes() {
			dims = append(dims, g.Dims()[di].Name)
		}
		w.addVar(name, dims, n.Attributes(), n.Array().Data())
	}
	return nil
}

// readGrid fills a DataGrid generically from an open file: dimensions,
// every variable with its typed attributes, and the primary rename. The
// sparse pixel arrays, when present, are read like any other variable and
// expanded later by PostRead.
func readGrid(f *cdf.File, g *grid.DataGrid) error {
	// Prefer the file's own dimension table: sparse files declare the
	// spatial dimensions even though only the pixel arrays span them.
	dimNames := f.Header.Dimensions("")
	dimSizes := f.Header.Lengths("")
	if len(dimNames) == 0 || len(dimNames) != len(dimSizes) {
		// Fall back to the union over the variables, first-seen order.
		dimNames, dimSizes = nil, nil
		seen := map[string]bool{}
		for _, v := range f.Header.Variables() {
			dims := f.Header.Dimensions(v)
			lens := f.Header.Lengths(v)
			for i, d := range dims {
				if seen[d] {
					continue
				}
				seen[d] = true
				dimNames = append(dimNames, d)
				dimSizes = append(dimSizes, lens[i])
			}
		}
	}
	g.SetDims(dimSizes, dimNames)

	readAttributes(f, "", g.GlobalAttributes())
	if !g.InitFromGlobalAttributes() {
		log.Printf("netcdf: missing standard global attributes, reading as plain grid")
	}
	typeName := g.TypeName()

	for _, v := range f.Header.Variables() {
		lens := f.Header.Lengths(v)
		n := 1
		for _, l := range lens {
			n *= l
		}
		start := make([]int, len(lens))
		r := f.Reader(v, start, lens)
		buf := r.Zero(n)
		if _, err := r.Read(buf); err != nil {
			return fmt.Errorf("netcdf: reading variable %s: %w", v, err)
		}
		arr, err := grid.ArrayFromData(buf, lens...)
		if err != nil {
			log.Printf("netcdf: skipping variable %q: %v", v, err)
			continue
		}

		name := v
		if typeName != "" && v == typeName {
			name = grid.PrimaryName
		}
		dimIdx := make([]int, 0, len(lens))
		for _, d := range f.Header.Dimensions(v) {
			dimIdx = append(dimIdx, g.DimIndex(d))
		}
		node, err := g.AttachArray(name, "dimensionless", arr, dimIdx)
		if err != nil {
			log.Printf("netcdf: skipping variable %q: %v", v, err)
			continue
		}
		readAttributes(f, v, node.Attributes())
		if u, ok := node.Attributes().GetString(grid.UnitsAttr); ok {
			node.SetUnits(u)
		}
	}
	return nil
}

// readAttributes copies every attribute of a variable ("" for globals)
// into the list, remapping the legacy lowercase "units" to "Units".
func readAttributes(f *cdf.File, v string, list *grid.AttributeList) {
	for _, name := range f.Header.Attributes(v) {
		outName := name
		if name == "units" {
			outName = grid.UnitsAttr
		}
		switch val := f.Header.GetAttribute(v, name).(type) {
		case string:
			list.PutString(outName, val)
		case []int32:
			if len(val) > 0 {
				list.PutLong(outName, int64(val[0]))
			}
		case []int16:
			if len(val) > 0 {
				list.PutLong(outName, int64(val[0]))
			}
		case []float32:
			if len(val) > 0 {
				list.PutFloat(outName, val[0])
			}
		case []float64:
			if len(val) > 0 {
				list.PutDouble(outName, val[0])
			}
		default:
			log.Printf("netcdf: unhandled attribute type %T for %q, ignoring", val, name)
		}
	}
}
