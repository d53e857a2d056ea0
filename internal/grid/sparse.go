package grid

import (
	"log"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// The MRMS sparse pixel convention: a mostly-background 2-D or 3-D field
// is persisted as parallel vectors of run starts and values along a
// row-major walk. The names below are fixed by the file format.
const (
	PixelDim        = "pixel"
	PixelX          = "pixel_x"
	PixelY          = "pixel_y"
	PixelZ          = "pixel_z"
	PixelCount      = "pixel_count"
	BackgroundValue = "BackgroundValue"

	// stashedPrimary holds the dense primary while the sparse pixel
	// arrays stand in for it during a write.
	stashedPrimary = "DisabledPrimary"
)

// IsSparse reports whether the grid currently carries the pixel encoding
// in place of a dense primary.
func (g *DataGrid) IsSparse() bool {
	p := g.Primary()
	return p != nil && p.Array().Rank() == 1 &&
		g.Node(PixelX) != nil && g.Node(PixelY) != nil
}

// unsparseAuto materialises the primary when the pixel encoding is
// present, inferring the spatial dimensions by excluding the pixel
// dimension. Grids of other ranks are left untouched.
func (g *DataGrid) unsparseAuto() {
	if !g.IsSparse() {
		return
	}
	var spatial []int
	for i, d := range g.dims {
		if d.Name != PixelDim {
			spatial = append(spatial, i)
		}
	}
	switch len(spatial) {
	case 2:
		g.Unsparse2D(spatial[0], spatial[1])
	case 3:
		g.Unsparse3D(spatial[0], spatial[1], spatial[2])
	default:
		log.Printf("grid: sparse data with %d spatial dimensions, cannot expand", len(spatial))
	}
}

// sparseAuto converts the dense primary into the pixel encoding based on
// its rank. Non-2-D/3-D primaries are left dense.
func (g *DataGrid) sparseAuto() {
	p := g.Primary()
	if p == nil {
		return
	}
	switch p.Array().Rank() {
	case 2:
		g.Sparse2D()
	case 3:
		g.Sparse3D()
	}
}

func (g *DataGrid) fileSentinels() (missing, folded float64) {
	missing, folded = MissingData, RangeFolded
	if v, ok := g.attrs.GetFloat(AttrMissingData); ok {
		missing = float64(v)
	}
	if v, ok := g.attrs.GetFloat(AttrRangeFolded); ok {
		folded = float64(v)
	}
	return missing, folded
}

// Unsparse2D replaces the 1-D pixel-encoded primary with a dense 2-D
// array spanning the two given dimensions. Corrupt input is recovered
// from: runs starting out of bounds are skipped and run lengths larger
// than the remaining cells are clamped, with one warning per non-zero
// counter.
func (g *DataGrid) Unsparse2D(xDim, yDim int) {
	p := g.Primary()
	if p == nil || p.Array().Rank() != 1 {
		return
	}
	numX := g.dims[xDim].Size
	numY := g.dims[yDim].Size

	background := float64(MissingData)
	if v, ok := p.Attributes().GetFloat(BackgroundValue); ok {
		background = float64(v)
	}
	fileMissing, fileFolded := g.fileSentinels()

	dense := NewArray(Float32, numX, numY)
	dense.Fill(background)

	values := p.Array()
	px, py := g.Node(PixelX), g.Node(PixelY)
	if px != nil && py != nil {
		counts := g.Node(PixelCount)
		numPixels := values.Len()
		if px.Array().Len() < numPixels {
			numPixels = px.Array().Len()
		}
		if py.Array().Len() < numPixels {
			numPixels = py.Array().Len()
		}

		pixelSkipped, pixelOverflow := 0, 0
		for i := 0; i < numPixels; i++ {
			x := int(px.Array().FlatValue(i))
			y := int(py.Array().FlatValue(i))
			// A run starting outside the grid has no anchor; every cell
			// it would touch is suspect, so the whole run is dropped.
			if x < 0 || x >= numX || y < 0 || y >= numY {
				pixelSkipped++
				continue
			}
			v := values.FlatValue(i)
			if IsSentinel(v, fileMissing) {
				v = MissingData
			} else if IsSentinel(v, fileFolded) {
				v = RangeFolded
			}
			dense.SetValue(v, x, y)

			c := 1
			if counts != nil && i < counts.Array().Len() {
				c = int(counts.Array().FlatValue(i))
			}
			if c < 0 {
				log.Printf("grid: corrupt? nonpositive pixel count %d", c)
				continue
			}
			remaining := (numX-x)*numY - y
			if c > remaining {
				pixelOverflow++
				c = remaining
			}
			for j := 1; j < c; j++ {
				y++
				if y == numY {
					y = 0
					x++
				}
				dense.SetValue(v, x, y)
			}
		}
		if pixelSkipped > 0 {
			log.Printf("grid: corrupt? skipped a total of %d pixels", pixelSkipped)
		}
		if pixelOverflow > 0 {
			log.Printf("grid: corrupt? trimmed a total of %d runlengths", pixelOverflow)
		}
	}

	units := p.Units()
	xName, yName := g.dims[xDim].Name, g.dims[yDim].Name
	g.dropPixelArrays()
	// Dropping the pixel dimension renumbers the table.
	node, err := g.AttachArray(PrimaryName, units, dense,
		[]int{g.DimIndex(xName), g.DimIndex(yName)})
	if err != nil {
		// Shape was built from the same dimension table; cannot happen.
		panic(err)
	}
	node.Attributes().Remove(BackgroundValue)
}

// Unsparse3D is the three-dimensional variant, rolling y into x and x
// into z along the plane-major walk. The 3-D pixel format is treated as
// experimental.
func (g *DataGrid) Unsparse3D(zDim, xDim, yDim int) {
	p := g.Primary()
	if p == nil || p.Array().Rank() != 1 {
		return
	}
	numZ := g.dims[zDim].Size
	numX := g.dims[xDim].Size
	numY := g.dims[yDim].Size

	background := float64(MissingData)
	if v, ok := p.Attributes().GetFloat(BackgroundValue); ok {
		background = float64(v)
	}
	fileMissing, fileFolded := g.fileSentinels()

	dense := NewArray(Float32, numZ, numX, numY)
	dense.Fill(background)

	values := p.Array()
	px, py, pz := g.Node(PixelX), g.Node(PixelY), g.Node(PixelZ)
	if px != nil && py != nil {
		counts := g.Node(PixelCount)
		numPixels := values.Len()
		if px.Array().Len() < numPixels {
			numPixels = px.Array().Len()
		}

		pixelSkipped, pixelOverflow := 0, 0
		for i := 0; i < numPixels; i++ {
			x := int(px.Array().FlatValue(i))
			y := int(py.Array().FlatValue(i))
			z := 0
			if pz != nil && i < pz.Array().Len() {
				z = int(pz.Array().FlatValue(i))
			}
			if x < 0 || x >= numX || y < 0 || y >= numY || z < 0 || z >= numZ {
				pixelSkipped++
				continue
			}
			v := values.FlatValue(i)
			if IsSentinel(v, fileMissing) {
				v = MissingData
			} else if IsSentinel(v, fileFolded) {
				v = RangeFolded
			}
			dense.SetValue(v, z, x, y)

			c := 1
			if counts != nil && i < counts.Array().Len() {
				c = int(counts.Array().FlatValue(i))
			}
			if c < 0 {
				log.Printf("grid: corrupt? nonpositive pixel count %d", c)
				continue
			}
			remaining := (numZ-z)*numX*numY - x*numY - y
			if c > remaining {
				pixelOverflow++
				c = remaining
			}
			for j := 1; j < c; j++ {
				y++
				if y == numY {
					y = 0
					x++
					if x == numX {
						x = 0
						z++
					}
				}
				dense.SetValue(v, z, x, y)
			}
		}
		if pixelSkipped > 0 {
			log.Printf("grid: corrupt? skipped a total of %d pixels", pixelSkipped)
		}
		if pixelOverflow > 0 {
			log.Printf("grid: corrupt? trimmed a total of %d runlengths", pixelOverflow)
		}
	}

	units := p.Units()
	zName, xName, yName := g.dims[zDim].Name, g.dims[xDim].Name, g.dims[yDim].Name
	g.dropPixelArrays()
	node, err := g.AttachArray(PrimaryName, units, dense,
		[]int{g.DimIndex(zName), g.DimIndex(xName), g.DimIndex(yName)})
	if err != nil {
		panic(err)
	}
	node.Attributes().Remove(BackgroundValue)
}

func (g *DataGrid) dropPixelArrays() {
	g.RemoveArray(PrimaryName)
	g.RemoveArray(PixelX)
	g.RemoveArray(PixelY)
	g.RemoveArray(PixelZ)
	g.RemoveArray(PixelCount)
	g.removeDim(PixelDim)
}

// chooseBackground picks the fill value for a dense-to-sparse conversion:
// MissingData when any cell carries it, otherwise the most common value.
func chooseBackground(a *Array) float64 {
	n := a.Len()
	vals := make([]float64, n)
	for i := 0; i < n; i++ {
		v := a.FlatValue(i)
		if IsSentinel(v, MissingData) {
			return MissingData
		}
		vals[i] = v
	}
	if n == 0 {
		return MissingData
	}
	sort.Float64s(vals)
	mode, _ := stat.Mode(vals, nil)
	return mode
}

type sparseRun struct {
	z, x, y int
	value   float64
	count   int
}

// collectRuns walks the array in row-major (plane-major for rank three)
// order and emits one run per maximal span of equal non-background values
// within a row.
func collectRuns(a *Array, background float64) []sparseRun {
	var runs []sparseRun
	shape := a.Shape()
	numZ, numX, numY := 1, shape[0], shape[1]
	if len(shape) == 3 {
		numZ, numX, numY = shape[0], shape[1], shape[2]
	}
	flat := 0
	for z := 0; z < numZ; z++ {
		for x := 0; x < numX; x++ {
			for y := 0; y < numY; y++ {
				v := a.FlatValue(flat)
				flat++
				if v == background {
					continue
				}
				if len(runs) > 0 {
					last := &runs[len(runs)-1]
					if last.value == v && last.z == z && last.x == x &&
						last.y+last.count == y {
						last.count++
						continue
					}
				}
				runs = append(runs, sparseRun{z: z, x: x, y: y, value: v, count: 1})
			}
		}
	}
	return runs
}

// Sparse2D converts the dense 2-D primary to the pixel encoding: the
// dense array is stashed (hidden from writers) and 1-D pixel_x, pixel_y,
// pixel_count and value arrays spanning a new pixel dimension stand in as
// the primary. PostWrite restores the dense state via UnsparseRestore.
func (g *DataGrid) Sparse2D() {
	g.sparsify(false)
}

// Sparse3D is the three-dimensional variant, adding pixel_z. The on-disk
// 3-D pixel format is experimental; writing it is logged.
func (g *DataGrid) Sparse3D() {
	log.Printf("grid: writing experimental 3-D sparse encoding for %s", g.typeName)
	g.sparsify(true)
}

func (g *DataGrid) sparsify(threeD bool) {
	p := g.Primary()
	wantRank := 2
	if threeD {
		wantRank = 3
	}
	if p == nil || p.Array().Rank() != wantRank {
		return
	}
	if g.Node(stashedPrimary) != nil {
		// Already sparse; PreWrite ran twice without a PostWrite.
		return
	}
	dense := p.Array()
	units := p.Units()
	etype := dense.ElementType()
	background := chooseBackground(dense)
	runs := collectRuns(dense, background)

	g.renameArray(PrimaryName, stashedPrimary)
	g.Node(stashedPrimary).SetHidden(true)

	pixelDim := g.addDim(PixelDim, len(runs))

	values := g.AddArray(PrimaryName, units, etype, []int{pixelDim})
	values.Attributes().PutFloat(BackgroundValue, float32(background))
	px := g.AddShort1D(PixelX, "dimensionless", pixelDim)
	py := g.AddShort1D(PixelY, "dimensionless", pixelDim)
	pc := g.AddInt1D(PixelCount, "dimensionless", pixelDim)
	var pzArr *Array
	if threeD {
		pzArr = g.AddShort1D(PixelZ, "dimensionless", pixelDim).Array()
	}
	for i, r := range runs {
		values.Array().SetFlatValue(r.value, i)
		px.Array().SetFlatValue(float64(r.x), i)
		py.Array().SetFlatValue(float64(r.y), i)
		pc.Array().SetFlatValue(float64(r.count), i)
		if pzArr != nil {
			pzArr.SetFlatValue(float64(r.z), i)
		}
	}
}

// UnsparseRestore undoes Sparse2D/Sparse3D, dropping the pixel arrays and
// reinstating the stashed dense primary. It is a no-op when the grid is
// not sparse, so writers can run it unconditionally on every exit path.
func (g *DataGrid) UnsparseRestore() {
	stash := g.Node(stashedPrimary)
	if stash == nil {
		return
	}
	g.dropPixelArrays()
	g.renameArray(stashedPrimary, PrimaryName)
	stash.SetHidden(false)
}
