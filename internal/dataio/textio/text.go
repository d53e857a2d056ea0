// Package textio writes an ncdump-like text rendition of any
// DataGrid-backed DataType: dimensions, variables with their dimension
// lists and attributes, global attributes, then the array data.
package textio

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/banshee-data/rapio/internal/dataio"
	"github.com/banshee-data/rapio/internal/grid"
)

// FormatKey is the builder key for text dumps.
const FormatKey = "text"

// Builder is the text file-family handler. It only writes.
type Builder struct{}

func init() {
	dataio.RegisterBuilder(FormatKey, &Builder{})
}

// CreateDataType is unsupported; text dumps are not parsed back.
func (b *Builder) CreateDataType(filename string, keys map[string]string) (grid.DataType, error) {
	return nil, fmt.Errorf("text: reading text dumps is not supported")
}

// EncodeDataType dumps dt to the file, or to stdout when the console key
// is set.
func (b *Builder) EncodeDataType(dt grid.DataType, filename string, keys map[string]string) error {
	if keys[grid.KeyConsole] != "" {
		return Dump(dt, os.Stdout)
	}
	fh, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("text: create %s: %w", filename, err)
	}
	defer fh.Close()
	w := bufio.NewWriter(fh)
	if err := Dump(dt, w); err != nil {
		return err
	}
	return w.Flush()
}

// Dump writes the text rendition of dt.
func Dump(dt grid.DataType, w io.Writer) error {
	gb, ok := dt.(grid.GridBacked)
	if !ok {
		return fmt.Errorf("text: datatype %s is not grid backed", dt.DataType())
	}
	g := gb.Grid()
	g.UpdateGlobalAttributes(dt.DataType())

	fmt.Fprintf(w, "RAPIO/MRMS DataGrid\n")
	fmt.Fprintf(w, "netcdf {\n")
	fmt.Fprintf(w, "dimensions:\n")
	for _, d := range g.Dims() {
		fmt.Fprintf(w, "\t%s = %d ;\n", d.Name, d.Size)
	}

	fmt.Fprintf(w, "variables:\n")
	for _, n := range g.Arrays() {
		name := storedName(g, n)
		fmt.Fprintf(w, "\t%s %s(", n.ElementType(), name)
		for i, di := range n.DimIndexes() {
			if i > 0 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprint(w, g.Dims()[di].Name)
		}
		fmt.Fprintf(w, ") ;\n")
		dumpAttributes(w, n.Attributes(), name)
	}

	fmt.Fprintf(w, "\n// global attributes:\n")
	dumpAttributes(w, g.GlobalAttributes(), "")
	fmt.Fprintf(w, "data:\n\n")

	for _, n := range g.Arrays() {
		fmt.Fprintf(w, " %s = \n\n", storedName(g, n))
		n.Array().PrintTo(w)
		fmt.Fprintf(w, " ;\n")
	}
	fmt.Fprintf(w, "}\n")
	return nil
}

// storedName maps the in-memory primary name to the on-disk TypeName.
func storedName(g *grid.DataGrid, n *grid.DataArray) string {
	if n.Name() == grid.PrimaryName && g.TypeName() != "" {
		return g.TypeName()
	}
	return n.Name()
}

func dumpAttributes(w io.Writer, list *grid.AttributeList, header string) {
	for _, a := range list.Attrs() {
		fmt.Fprintf(w, "\t\t%s:%s = ", header, a.Name)
		switch a.Type {
		case grid.AttrString:
			fmt.Fprintf(w, "%q", a.StringValue())
		case grid.AttrLong:
			fmt.Fprintf(w, "%d", a.LongValue())
		case grid.AttrFloat, grid.AttrDouble:
			fmt.Fprintf(w, "%g", a.FloatValue())
		default:
			fmt.Fprint(w, "unknown type")
		}
		fmt.Fprintf(w, " ;\n")
	}
}
