package grid

import (
	"fmt"
	"log"
)

// Dimension is one axis of a DataGrid: a unique name and a size, curiously
// like a NetCDF dimension. Sizes of zero are allowed for empty grids.
type Dimension struct {
	Name string
	Size int
}

// DataGrid is a named collection of typed arrays sharing a dimension
// table, plus a global attribute list. It is the generic container behind
// RadialSet, LatLonGrid and LatLonHeightGrid and can hold any NetCDF-style
// file generically.
//
// Lifecycle: created empty, populated by a format specializer or by user
// code, then read-only to consumers. The sparse codec re-mutates the grid
// during PreWrite and restores it in PostWrite.
type DataGrid struct {
	dataType    string
	typeName    string
	location    LLH
	time        Time
	readFactory string

	dims  []Dimension
	nodes []*DataArray
	attrs *AttributeList
}

// NewDataGrid returns an empty grid tagged "DataGrid".
func NewDataGrid() *DataGrid {
	return &DataGrid{
		dataType: "DataGrid",
		attrs:    NewAttributeList(),
	}
}

// DataType returns the data-type tag, such as "RadialSet".
func (g *DataGrid) DataType() string { return g.dataType }

// SetDataType sets the data-type tag. Specialisations set their own tag at
// construction.
func (g *DataGrid) SetDataType(t string) { g.dataType = t }

// TypeName returns the product name, such as "Reflectivity". The primary
// array is stored on disk under this name.
func (g *DataGrid) TypeName() string { return g.typeName }

// SetTypeName sets the product name.
func (g *DataGrid) SetTypeName(t string) { g.typeName = t }

// Units returns the units of the primary array, or "" when there is none.
func (g *DataGrid) Units() string {
	if n := g.Node(PrimaryName); n != nil {
		return n.Units()
	}
	return ""
}

// Location returns the grid's reference location: the radar center for a
// RadialSet, the NW corner for lat/lon grids.
func (g *DataGrid) Location() LLH { return g.location }

// SetLocation sets the reference location.
func (g *DataGrid) SetLocation(l LLH) { g.location = l }

// Time returns the grid's timestamp.
func (g *DataGrid) Time() Time { return g.time }

// SetTime sets the grid's timestamp.
func (g *DataGrid) SetTime(t Time) { g.time = t }

// ReadFactory returns the factory key that read this grid, if any. Writers
// use it to pick a default output format.
func (g *DataGrid) ReadFactory() string { return g.readFactory }

// SetReadFactory records the factory key that read this grid.
func (g *DataGrid) SetReadFactory(f string) { g.readFactory = f }

// GlobalAttributes returns the global attribute list.
func (g *DataGrid) GlobalAttributes() *AttributeList { return g.attrs }

// SetDims declares the dimension table. It may be called once; names must
// be unique and sizes non-negative. Violations are programming errors.
func (g *DataGrid) SetDims(sizes []int, names []string) {
	if len(g.dims) != 0 {
		panic("grid: dimensions already declared")
	}
	if len(sizes) != len(names) {
		panic("grid: dimension sizes and names differ in length")
	}
	seen := make(map[string]bool, len(names))
	for i, name := range names {
		if seen[name] {
			panic(fmt.Sprintf("grid: duplicate dimension name %q", name))
		}
		seen[name] = true
		if sizes[i] < 0 {
			panic(fmt.Sprintf("grid: negative size for dimension %q", name))
		}
		g.dims = append(g.dims, Dimension{Name: name, Size: sizes[i]})
	}
}

// Dims returns the dimension table. The returned slice must not be
// modified.
func (g *DataGrid) Dims() []Dimension { return g.dims }

// DimIndex returns the index of the named dimension, or -1.
func (g *DataGrid) DimIndex(name string) int {
	for i, d := range g.dims {
		if d.Name == name {
			return i
		}
	}
	return -1
}

// addDim appends a dimension outside SetDims. Reserved for the sparse
// codec, which introduces the transient "pixel" dimension during writes.
func (g *DataGrid) addDim(name string, size int) int {
	if g.DimIndex(name) >= 0 {
		panic(fmt.Sprintf("grid: duplicate dimension name %q", name))
	}
	g.dims = append(g.dims, Dimension{Name: name, Size: size})
	return len(g.dims) - 1
}

// removeDim drops the named dimension and renumbers the dim indexes of the
// remaining arrays. Any array still spanning the dimension must be removed
// first.
func (g *DataGrid) removeDim(name string) {
	at := g.DimIndex(name)
	if at < 0 {
		return
	}
	for _, n := range g.nodes {
		for _, di := range n.dimIndexes {
			if di == at {
				// Some file carried extra variables on this dimension;
				// keep it rather than corrupt their indexes.
				log.Printf("grid: dimension %q still used by array %q, keeping it", name, n.name)
				return
			}
		}
	}
	g.dims = append(g.dims[:at], g.dims[at+1:]...)
	for _, n := range g.nodes {
		for i, di := range n.dimIndexes {
			if di > at {
				n.dimIndexes[i] = di - 1
			}
		}
	}
}

// AddArray allocates a zeroed array of the given element type spanning the
// given dimensions, registers it under name (replacing any prior array of
// that name, the primary included) and returns its node. Referencing an
// unknown dimension is a programming error.
func (g *DataGrid) AddArray(name, units string, etype ElementType, dimIndexes []int) *DataArray {
	shape := make([]int, len(dimIndexes))
	for i, di := range dimIndexes {
		if di < 0 || di >= len(g.dims) {
			panic(fmt.Sprintf("grid: array %q references unknown dimension index %d", name, di))
		}
		shape[i] = g.dims[di].Size
	}
	node := newDataArray(name, units, etype, dimIndexes, NewArray(etype, shape...))
	g.putNode(node)
	return node
}

// AttachArray registers a pre-built Array under name. The array's shape
// must match the referenced dimensions.
func (g *DataGrid) AttachArray(name, units string, arr *Array, dimIndexes []int) (*DataArray, error) {
	if arr.Rank() != len(dimIndexes) {
		return nil, fmt.Errorf("grid: array %q rank %d does not match %d dimension indexes",
			name, arr.Rank(), len(dimIndexes))
	}
	for i, di := range dimIndexes {
		if di < 0 || di >= len(g.dims) {
			return nil, fmt.Errorf("grid: array %q references unknown dimension index %d", name, di)
		}
		if arr.Shape()[i] != g.dims[di].Size {
			return nil, fmt.Errorf("grid: array %q axis %d has size %d, dimension %q has size %d",
				name, i, arr.Shape()[i], g.dims[di].Name, g.dims[di].Size)
		}
	}
	node := newDataArray(name, units, arr.ElementType(), dimIndexes, arr)
	g.putNode(node)
	return node, nil
}

func (g *DataGrid) putNode(node *DataArray) {
	for i, n := range g.nodes {
		if n.name == node.name {
			g.nodes[i] = node
			return
		}
	}
	g.nodes = append(g.nodes, node)
}

// AddFloat1D allocates a float32 vector spanning one dimension.
func (g *DataGrid) AddFloat1D(name, units string, dim int) *DataArray {
	return g.AddArray(name, units, Float32, []int{dim})
}

// AddFloat2D allocates a float32 matrix spanning two dimensions.
func (g *DataGrid) AddFloat2D(name, units string, dims []int) *DataArray {
	return g.AddArray(name, units, Float32, dims)
}

// AddFloat3D allocates a float32 cube spanning three dimensions.
func (g *DataGrid) AddFloat3D(name, units string, dims []int) *DataArray {
	return g.AddArray(name, units, Float32, dims)
}

// AddDouble1D allocates a float64 vector spanning one dimension.
func (g *DataGrid) AddDouble1D(name, units string, dim int) *DataArray {
	return g.AddArray(name, units, Float64, []int{dim})
}

// AddInt1D allocates an int32 vector spanning one dimension.
func (g *DataGrid) AddInt1D(name, units string, dim int) *DataArray {
	return g.AddArray(name, units, Int32, []int{dim})
}

// AddShort1D allocates an int16 vector spanning one dimension.
func (g *DataGrid) AddShort1D(name, units string, dim int) *DataArray {
	return g.AddArray(name, units, Int16, []int{dim})
}

// AddByte1D allocates a byte vector spanning one dimension.
func (g *DataGrid) AddByte1D(name, units string, dim int) *DataArray {
	return g.AddArray(name, units, Byte, []int{dim})
}

// Node returns the named DataArray, or nil.
func (g *DataGrid) Node(name string) *DataArray {
	for _, n := range g.nodes {
		if n.name == name {
			return n
		}
	}
	return nil
}

// Primary returns the primary DataArray, or nil.
func (g *DataGrid) Primary() *DataArray { return g.Node(PrimaryName) }

// Arrays returns all DataArrays in registration order. The returned slice
// must not be modified.
func (g *DataGrid) Arrays() []*DataArray { return g.nodes }

// RemoveArray drops the named array if present.
func (g *DataGrid) RemoveArray(name string) {
	for i, n := range g.nodes {
		if n.name == name {
			g.nodes = append(g.nodes[:i], g.nodes[i+1:]...)
			return
		}
	}
}

// renameArray changes an array's registered name in place, preserving
// order. Used by the sparse codec to stash and restore the primary.
func (g *DataGrid) renameArray(from, to string) {
	if n := g.Node(from); n != nil {
		n.name = to
	}
}

// Validate checks the structural invariant that every array's shape
// matches the dimensions it references.
func (g *DataGrid) Validate() error {
	for _, n := range g.nodes {
		if n.arr.Rank() != len(n.dimIndexes) {
			return fmt.Errorf("grid: array %q rank %d does not match %d dim indexes",
				n.name, n.arr.Rank(), len(n.dimIndexes))
		}
		for i, di := range n.dimIndexes {
			if di < 0 || di >= len(g.dims) {
				return fmt.Errorf("grid: array %q references unknown dimension index %d", n.name, di)
			}
			if n.arr.Shape()[i] != g.dims[di].Size {
				return fmt.Errorf("grid: array %q axis %d size %d != dimension %q size %d",
					n.name, i, n.arr.Shape()[i], g.dims[di].Name, g.dims[di].Size)
			}
		}
	}
	return nil
}

// UpdateGlobalAttributes syncs the identity fields into the global
// attribute list the way writers persist them.
func (g *DataGrid) UpdateGlobalAttributes(tag string) {
	g.attrs.PutString(AttrDataType, tag)
	g.attrs.PutString(AttrTypeName, g.typeName)
	g.attrs.PutDouble(AttrLatitude, g.location.LatDegs)
	g.attrs.PutDouble(AttrLongitude, g.location.LonDegs)
	g.attrs.PutDouble(AttrHeight, g.location.HeightKM*1000.0)
	g.attrs.PutLong(AttrTime, g.time.Epoch)
	g.attrs.PutDouble(AttrFractionalTime, g.time.Fractional)
	g.attrs.PutFloat(AttrMissingData, MissingData)
	g.attrs.PutFloat(AttrRangeFolded, RangeFolded)
}

// InitFromGlobalAttributes syncs the identity fields back from the global
// attribute list after a read. It returns false when required attributes
// are missing or malformed; optional attributes default quietly.
func (g *DataGrid) InitFromGlobalAttributes() bool {
	typeName, ok := g.attrs.GetString(AttrTypeName)
	if !ok {
		log.Printf("grid: missing global attribute %s", AttrTypeName)
		return false
	}
	g.typeName = typeName
	if dt, ok := g.attrs.GetString(AttrDataType); ok {
		g.dataType = dt
	}
	lat, okLat := g.attrs.GetDouble(AttrLatitude)
	lon, okLon := g.attrs.GetDouble(AttrLongitude)
	if !okLat || !okLon {
		log.Printf("grid: missing global %s/%s attributes", AttrLatitude, AttrLongitude)
		return false
	}
	heightM, _ := g.attrs.GetDouble(AttrHeight)
	g.location = LLH{LatDegs: lat, LonDegs: lon, HeightKM: heightM / 1000.0}
	if epoch, ok := g.attrs.GetLong(AttrTime); ok {
		g.time.Epoch = epoch
	}
	if frac, ok := g.attrs.GetDouble(AttrFractionalTime); ok {
		if frac < 0 || frac >= 1 {
			log.Printf("grid: ignoring out of range %s %g", AttrFractionalTime, frac)
		} else {
			g.time.Fractional = frac
		}
	}
	return true
}

// PostRead materialises a sparse primary when the grid carries the MRMS
// pixel encoding. The generic path locates the spatial dimensions by
// excluding the pixel dimension.
func (g *DataGrid) PostRead(keys map[string]string) {
	g.unsparseAuto()
}

// PreWrite converts the primary to the sparse pixel encoding when the
// MakeSparse key is "on".
func (g *DataGrid) PreWrite(keys map[string]string) {
	if keys[KeyMakeSparse] == "on" {
		g.sparseAuto()
	}
}

// PostWrite restores the dense primary stashed by PreWrite. Safe to call
// when no sparse conversion happened.
func (g *DataGrid) PostWrite(keys map[string]string) {
	g.UnsparseRestore()
}
