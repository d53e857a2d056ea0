package grid

import (
	"fmt"
	"io"
)

// ElementType tags the scalar storage type of an Array. The set matches
// the types the file formats can round trip.
type ElementType int

const (
	Byte ElementType = iota
	Int16
	Int32
	Float32
	Float64
)

// String returns the conventional type name used in text dumps.
func (e ElementType) String() string {
	switch e {
	case Byte:
		return "byte"
	case Int16:
		return "short"
	case Int32:
		return "int"
	case Float32:
		return "float"
	case Float64:
		return "double"
	}
	return "unknown"
}

// Array is a typed N-dimensional row-major buffer of fixed shape. Exactly
// one backing slice is allocated, matching the element type. Element access
// goes through float64 for generality; bulk I/O uses Data to reach the
// typed slice directly and must honor the declared shape.
type Array struct {
	etype  ElementType
	shape  []int
	stride []int

	b   []byte
	i16 []int16
	i32 []int32
	f32 []float32
	f64 []float64
}

// NewArray allocates a zeroed array of the given element type and shape.
// Zero-sized dimensions are accepted and produce an empty buffer.
func NewArray(etype ElementType, shape ...int) *Array {
	n := 1
	for _, s := range shape {
		if s < 0 {
			panic(fmt.Sprintf("grid: negative dimension size %d", s))
		}
		n *= s
	}
	a := &Array{etype: etype, shape: append([]int(nil), shape...)}
	a.stride = make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		a.stride[i] = acc
		acc *= shape[i]
	}
	switch etype {
	case Byte:
		a.b = make([]byte, n)
	case Int16:
		a.i16 = make([]int16, n)
	case Int32:
		a.i32 = make([]int32, n)
	case Float32:
		a.f32 = make([]float32, n)
	case Float64:
		a.f64 = make([]float64, n)
	default:
		panic(fmt.Sprintf("grid: unknown element type %d", etype))
	}
	return a
}

// ArrayFromData wraps an existing typed slice as an Array of the given
// shape. The slice length must equal the product of the shape. Used by
// readers that receive bulk buffers from format libraries.
func ArrayFromData(data interface{}, shape ...int) (*Array, error) {
	n := 1
	for _, s := range shape {
		n *= s
	}
	a := &Array{shape: append([]int(nil), shape...)}
	a.stride = make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		a.stride[i] = acc
		acc *= shape[i]
	}
	var got int
	switch d := data.(type) {
	case []byte:
		a.etype, a.b, got = Byte, d, len(d)
	case []int8:
		// NetCDF "byte" surfaces as int8 in some libraries.
		b := make([]byte, len(d))
		for i, v := range d {
			b[i] = byte(v)
		}
		a.etype, a.b, got = Byte, b, len(d)
	case []int16:
		a.etype, a.i16, got = Int16, d, len(d)
	case []int32:
		a.etype, a.i32, got = Int32, d, len(d)
	case []float32:
		a.etype, a.f32, got = Float32, d, len(d)
	case []float64:
		a.etype, a.f64, got = Float64, d, len(d)
	default:
		return nil, fmt.Errorf("grid: unsupported array data type %T", data)
	}
	if got != n {
		return nil, fmt.Errorf("grid: data length %d does not match shape %v", got, shape)
	}
	return a, nil
}

// ElementType returns the scalar tag of the array.
func (a *Array) ElementType() ElementType { return a.etype }

// Rank returns the number of dimensions.
func (a *Array) Rank() int { return len(a.shape) }

// Shape returns the dimension sizes. The returned slice must not be
// modified.
func (a *Array) Shape() []int { return a.shape }

// Len returns the total element count.
func (a *Array) Len() int {
	n := 1
	for _, s := range a.shape {
		n *= s
	}
	return n
}

// Data returns the typed backing slice ([]byte, []int16, []int32,
// []float32 or []float64). This is the raw escape hatch for bulk codec
// use; there is no bounds checking on this path.
func (a *Array) Data() interface{} {
	switch a.etype {
	case Byte:
		return a.b
	case Int16:
		return a.i16
	case Int32:
		return a.i32
	case Float32:
		return a.f32
	case Float64:
		return a.f64
	}
	return nil
}

// Float32s returns the backing slice when the element type is Float32,
// else nil.
func (a *Array) Float32s() []float32 { return a.f32 }

// Float64s returns the backing slice when the element type is Float64,
// else nil.
func (a *Array) Float64s() []float64 { return a.f64 }

// Int16s returns the backing slice when the element type is Int16, else nil.
func (a *Array) Int16s() []int16 { return a.i16 }

// Int32s returns the backing slice when the element type is Int32, else nil.
func (a *Array) Int32s() []int32 { return a.i32 }

// Bytes returns the backing slice when the element type is Byte, else nil.
func (a *Array) Bytes() []byte { return a.b }

func (a *Array) offset(idx ...int) int {
	if len(idx) != len(a.shape) {
		panic(fmt.Sprintf("grid: index rank %d does not match array rank %d", len(idx), len(a.shape)))
	}
	off := 0
	for i, x := range idx {
		if x < 0 || x >= a.shape[i] {
			panic(fmt.Sprintf("grid: index %d out of range for dimension %d (size %d)", x, i, a.shape[i]))
		}
		off += x * a.stride[i]
	}
	return off
}

// Value returns the element at the given index tuple as a float64.
func (a *Array) Value(idx ...int) float64 {
	return a.at(a.offset(idx...))
}

// SetValue stores v (narrowed to the element type) at the given index
// tuple.
func (a *Array) SetValue(v float64, idx ...int) {
	a.set(a.offset(idx...), v)
}

// FlatValue returns the element at a row-major flat offset.
func (a *Array) FlatValue(i int) float64 { return a.at(i) }

// SetFlatValue stores v at a row-major flat offset.
func (a *Array) SetFlatValue(v float64, i int) { a.set(i, v) }

func (a *Array) at(i int) float64 {
	switch a.etype {
	case Byte:
		return float64(a.b[i])
	case Int16:
		return float64(a.i16[i])
	case Int32:
		return float64(a.i32[i])
	case Float32:
		return float64(a.f32[i])
	case Float64:
		return a.f64[i]
	}
	return 0
}

func (a *Array) set(i int, v float64) {
	switch a.etype {
	case Byte:
		a.b[i] = byte(v)
	case Int16:
		a.i16[i] = int16(v)
	case Int32:
		a.i32[i] = int32(v)
	case Float32:
		a.f32[i] = float32(v)
	case Float64:
		a.f64[i] = v
	}
}

// Fill sets every element to v (narrowed to the element type).
func (a *Array) Fill(v float64) {
	n := a.Len()
	for i := 0; i < n; i++ {
		a.set(i, v)
	}
}

// Equal reports whether b has the same element type, shape and elements.
func (a *Array) Equal(b *Array) bool {
	if b == nil || a.etype != b.etype || len(a.shape) != len(b.shape) {
		return false
	}
	for i := range a.shape {
		if a.shape[i] != b.shape[i] {
			return false
		}
	}
	n := a.Len()
	for i := 0; i < n; i++ {
		if a.at(i) != b.at(i) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the array.
func (a *Array) Clone() *Array {
	c := NewArray(a.etype, a.shape...)
	switch a.etype {
	case Byte:
		copy(c.b, a.b)
	case Int16:
		copy(c.i16, a.i16)
	case Int32:
		copy(c.i32, a.i32)
	case Float32:
		copy(c.f32, a.f32)
	case Float64:
		copy(c.f64, a.f64)
	}
	return c
}

// PrintTo writes the array elements space-separated, one row per line for
// rank two and above. Trailing separators are suppressed.
func (a *Array) PrintTo(w io.Writer) {
	n := a.Len()
	if n == 0 {
		return
	}
	rowLen := n
	if len(a.shape) >= 2 {
		rowLen = a.shape[len(a.shape)-1]
	}
	if rowLen == 0 {
		return
	}
	for i := 0; i < n; i++ {
		if i > 0 {
			if i%rowLen == 0 {
				fmt.Fprint(w, "\n")
			} else {
				fmt.Fprint(w, " ")
			}
		}
		switch a.etype {
		case Byte:
			fmt.Fprintf(w, "%d", a.b[i])
		case Int16:
			fmt.Fprintf(w, "%d", a.i16[i])
		case Int32:
			fmt.Fprintf(w, "%d", a.i32[i])
		case Float32:
			fmt.Fprintf(w, "%g", a.f32[i])
		case Float64:
			fmt.Fprintf(w, "%g", a.f64[i])
		}
	}
	fmt.Fprint(w, "\n")
}
